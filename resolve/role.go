package resolve

import "github.com/teranos/corrfill/jsonv"

// RoleKey is the person attribute matched against a token's role part.
const RoleKey = "Role"

// PeopleKey is the record member holding the person list.
const PeopleKey = "people"

// FindPersonByRole returns the first person whose Role normalizes to role.
// Entries that are not objects, or whose Role is missing or not a string,
// are skipped. Ties go to the earliest entry.
func FindPersonByRole(people []jsonv.Value, role string) (jsonv.Value, bool) {
	want := Normalize(role)

	for _, person := range people {
		roleValue, ok := person.Object().Get(RoleKey)
		if !ok {
			continue
		}
		name, ok := roleValue.AsString()
		if !ok {
			continue
		}
		if Normalize(name) == want {
			return person, true
		}
	}
	return jsonv.Value{}, false
}

// lookupPeopleField resolves field inside the person holding role.
func lookupPeopleField(record jsonv.Value, role, field string) (string, bool) {
	people, ok := record.Object().Get(PeopleKey)
	if !ok || people.Kind() != jsonv.KindArray {
		return "", false
	}

	person, ok := FindPersonByRole(people.Elems(), role)
	if !ok {
		return "", false
	}
	return FindValue(person, field)
}
