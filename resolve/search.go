package resolve

import "github.com/teranos/corrfill/jsonv"

// LookupRootField looks for target among the immediate members of record,
// comparing normalized names. It does not descend. The second result is
// false when record is not an object or no member matches.
func LookupRootField(record jsonv.Value, target string) (string, bool) {
	want := Normalize(target)

	var (
		value string
		found bool
	)
	record.Object().Each(func(key string, v jsonv.Value) bool {
		if Normalize(key) == want {
			value, found = Scalar(v), true
			return false
		}
		return true
	})
	return value, found
}

// FindValue searches node depth-first for a member named target.
//
// At each object the member names are checked in order first; a match
// returns Scalar of its value without looking inside it. Only when no name
// at that level matches does the search descend into the member values, in
// order, then array elements in order. The first hit anywhere wins, so a
// shallower match always beats a deeper one under the same object.
func FindValue(node jsonv.Value, target string) (string, bool) {
	return findNormalized(node, Normalize(target))
}

func findNormalized(node jsonv.Value, want string) (string, bool) {
	switch node.Kind() {
	case jsonv.KindObject:
		obj := node.Object()

		var (
			value string
			found bool
		)
		obj.Each(func(key string, v jsonv.Value) bool {
			if Normalize(key) == want {
				value, found = Scalar(v), true
				return false
			}
			return true
		})
		if found {
			return value, true
		}

		obj.Each(func(_ string, v jsonv.Value) bool {
			value, found = findNormalized(v, want)
			return !found
		})
		return value, found

	case jsonv.KindArray:
		for _, elem := range node.Elems() {
			if value, ok := findNormalized(elem, want); ok {
				return value, true
			}
		}
	}

	return "", false
}
