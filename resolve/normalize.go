// Package resolve fills letter templates from CDS records.
//
// A template is any JSON document whose string leaves are placeholder
// tokens. Each token is resolved against a record, a policy object that may
// carry a "people" array of role-tagged person objects:
//
//	ContractNumber              root-level field (no underscore allowed)
//	PEOPLE_PRIMOWNER_FIRSTNAME  field FIRSTNAME anywhere inside the first
//	                            person whose Role is PRIMOWNER
//	anything else with "_"      unresolved
//
// All name matching goes through Normalize, so "Contract Number",
// "contractnumber" and "CONTRACTNUMBER" are the same name. Resolution never
// fails: whatever cannot be resolved becomes "". Every function here is a
// pure function of its arguments.
package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize returns the canonical form of a field, role or token name:
// uppercased with full Unicode case mapping ("ß" becomes "SS"), with every
// whitespace rune and every underscore removed.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	// a Caser holds state, so each call gets its own
	s = cases.Upper(language.Und).String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isSpace(r) || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isSpace is unicode.IsSpace plus the information separators U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// SameName reports whether a and b normalize to the same canonical form.
func SameName(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
