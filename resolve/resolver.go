package resolve

import (
	"strings"

	"github.com/teranos/corrfill/jsonv"
)

// peoplePrefix marks a token addressed to a person in the people array.
const peoplePrefix = "PEOPLE_"

// Strategy says how a token is looked up.
type Strategy uint8

const (
	// StrategyEmpty is a blank token. It resolves to "".
	StrategyEmpty Strategy = iota
	// StrategyRoot is a token without underscores, looked up among the
	// record's top-level members.
	StrategyRoot
	// StrategyPeople is PEOPLE_<ROLE>_<FIELD>.
	StrategyPeople
	// StrategyMalformed is a PEOPLE_ token with no second underscore.
	StrategyMalformed
	// StrategyUnresolved is any other token containing an underscore.
	StrategyUnresolved
)

func (s Strategy) String() string {
	switch s {
	case StrategyEmpty:
		return "empty"
	case StrategyRoot:
		return "root"
	case StrategyPeople:
		return "people"
	case StrategyMalformed:
		return "malformed"
	case StrategyUnresolved:
		return "unresolved"
	}
	return "unknown"
}

// Token is a classified placeholder.
type Token struct {
	Raw      string
	Strategy Strategy
	// Role is set for StrategyPeople, in the token's uppercased spelling.
	Role string
	// Field is the name to search for. For StrategyPeople it is everything
	// after the role, underscores included; Normalize drops them at match
	// time, so FIRST_NAME matches FirstName.
	Field string
}

// Classify decides how token is resolved without touching a record.
func Classify(token string) Token {
	t := Token{Raw: token}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		t.Strategy = StrategyEmpty
		return t
	}

	upper := strings.ToUpper(trimmed)
	if strings.HasPrefix(upper, peoplePrefix) {
		role, field, ok := strings.Cut(upper[len(peoplePrefix):], "_")
		if !ok {
			t.Strategy = StrategyMalformed
			return t
		}
		t.Strategy = StrategyPeople
		t.Role = role
		t.Field = field
		return t
	}

	if !strings.Contains(trimmed, "_") {
		t.Strategy = StrategyRoot
		t.Field = trimmed
		return t
	}

	t.Strategy = StrategyUnresolved
	return t
}

// Outcome is the result of resolving one token.
type Outcome struct {
	Token Token
	Value string
	// Found is true when a lookup matched a member, even one whose value
	// renders as "".
	Found bool
}

// Evaluate classifies token and looks it up in record.
func Evaluate(token string, record jsonv.Value) Outcome {
	t := Classify(token)
	o := Outcome{Token: t}

	switch t.Strategy {
	case StrategyRoot:
		o.Value, o.Found = LookupRootField(record, t.Field)
	case StrategyPeople:
		o.Value, o.Found = lookupPeopleField(record, t.Role, t.Field)
	}
	return o
}

// Resolve returns the text that replaces token. Anything that cannot be
// resolved yields "".
func Resolve(token string, record jsonv.Value) string {
	return Evaluate(token, record).Value
}
