// Package family defines the records exchanged with the family-tree service.
//
// # Overview
//
// The remote service stores two kinds of records:
//
//   - [Person]: a family member with optional birth/death dates and photo
//   - [Relationship]: a typed edge between two people (spouse or parent/child)
//
// Read endpoints return richer, nested views of a person:
//
//   - [PersonDetail]: a person with resolved spouses, parents and children
//   - [FamilyTreePerson]: a person with spouses (each carrying the children
//     shared with the root) and all of the root's children
//
// At most two generations are materialized in a [FamilyTreePerson]. The
// structure is shallow and bounded, so traversal never needs cycle tracking
// beyond de-duplication by id.
//
// # Search and Filter
//
// [Filter] implements the list screen's client-side filter: a
// case-insensitive substring match on the full name combined with an exact
// gender match (or [GenderAll]):
//
//	visible := family.FilterPersons(people, family.Filter{Name: "ann", Gender: "F"})
//
// # Lookup
//
// [FindPerson] locates a record inside a [FamilyTreePerson] by id, in the
// same order the chart adapter emits nodes: root, spouses, each spouse's
// children, root's children, then parents.
//
// # Dates
//
// Calendar dates travel as "YYYY-MM-DD" strings. [Date] wraps time.Time with
// that JSON encoding; the zero Date marshals as null and is omitted from
// records via the omitzero tag option.
package family
