package resolve

import "github.com/teranos/corrfill/jsonv"

// Scalar converts a record value into the string written to the output.
//
//   - null → ""
//   - array → its first string element, or "" when it has none (an Email
//     list surfaces the primary address; lists are never stringified)
//   - string, number, bool → the value itself; numbers keep their literal
//   - object → its compact JSON encoding
func Scalar(v jsonv.Value) string {
	switch v.Kind() {
	case jsonv.KindNull:
		return ""
	case jsonv.KindArray:
		for _, elem := range v.Elems() {
			if s, ok := elem.AsString(); ok {
				return s
			}
		}
		return ""
	case jsonv.KindString:
		s, _ := v.AsString()
		return s
	case jsonv.KindNumber:
		lit, _ := v.Literal()
		return lit
	case jsonv.KindBool:
		if b, _ := v.AsBool(); b {
			return "true"
		}
		return "false"
	default:
		return v.String()
	}
}
