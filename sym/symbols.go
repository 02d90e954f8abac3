// Package sym defines the glyphs corrfill uses to mark its stages in CLI
// help text and structured logs. They are stable across commands and docs.
package sym

// Command glyphs, one per top-level command.
const (
	AM      = "≡" // am: configuration and system settings
	Fill    = "✎" // fill: resolve a template against a record
	Merge   = "⊕" // merge: assemble the LetterData payload
	Resolve = "⋈" // resolve: inspect a single token
	History = "✦" // history: past fill runs
)

// System glyphs. Used as a log field, never as a command.
const (
	Fetch = "⇣" // data service fetch
	Watch = "꩜" // template watcher
	DB    = "⊔" // run ledger storage
)

// SymbolToCommand maps each command glyph to its command name.
var SymbolToCommand = map[string]string{
	AM:      "am",
	Fill:    "fill",
	Merge:   "merge",
	Resolve: "resolve",
	History: "history",
}

// CommandToSymbol is the inverse of SymbolToCommand.
var CommandToSymbol = func() map[string]string {
	m := make(map[string]string, len(SymbolToCommand))
	for glyph, cmd := range SymbolToCommand {
		m[cmd] = glyph
	}
	return m
}()

// CommandDescriptions gives the one-line description shown next to each glyph.
var CommandDescriptions = map[string]string{
	"am":      "Configuration",
	"fill":    "Fill a letter template from a CDS record",
	"merge":   "Merge fragments into LetterData",
	"resolve": "Resolve a single placeholder token",
	"history": "Show past fill runs",
}

// Short prefixes a command description with its glyph, e.g. "✎ Fill a template".
func Short(command, text string) string {
	if glyph, ok := CommandToSymbol[command]; ok {
		return glyph + " " + text
	}
	return text
}
