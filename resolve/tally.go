package resolve

// Tally counts transform outcomes. Its Observe method can be used directly
// as a Transformer's Observer.
type Tally struct {
	Leaves   int
	Resolved int
	Blank    int
	// Unresolved lists the paths of leaves whose token was not blank but
	// produced no lookup match.
	Unresolved []string
}

// Observe records one leaf.
func (t *Tally) Observe(path string, o Outcome) {
	t.Leaves++
	switch {
	case o.Found:
		t.Resolved++
	case o.Token.Strategy == StrategyEmpty:
		t.Blank++
	default:
		t.Unresolved = append(t.Unresolved, path)
	}
}
