package family

import "strings"

// Filter narrows a list of people on the client.
//
// Name matches case-insensitively anywhere in the full name; an empty Name
// matches everyone. Gender must equal the person's gender exactly unless it
// is empty or [GenderAll].
type Filter struct {
	Name   string
	Gender string
}

// Active reports whether the filter excludes anyone.
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Name) != "" || !f.allGenders()
}

// Matches reports whether p passes the filter.
func (f Filter) Matches(p Person) bool {
	return MatchesName(p.FullName, f.Name) && (f.allGenders() || string(p.Gender) == f.Gender)
}

func (f Filter) allGenders() bool {
	return f.Gender == "" || f.Gender == GenderAll
}

// MatchesName reports whether query occurs in name, ignoring case.
func MatchesName(name, query string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(query))
}

// FilterPersons returns the people matching f, preserving order.
func FilterPersons(people []Person, f Filter) []Person {
	out := make([]Person, 0, len(people))
	for _, p := range people {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}
