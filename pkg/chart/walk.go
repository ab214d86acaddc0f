package chart

import (
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
)

// FirstMarriageID is the marriage id given to the first spouse.
const FirstMarriageID = 1000

// Member is one person in a walked tree.
type Member struct {
	family.Person

	// Kind is one of graph.KindRoot, KindSpouse, KindChild, KindParent.
	Kind string
	// Parents lists the ids of this member's parents within the view:
	// [root, spouse] or [root] for children, the parents' ids for the root.
	Parents []string
	// MarriageID is set on spouses only.
	MarriageID int
	// Divorced is set on spouses whose marriage ended.
	Divorced bool
	// SpouseOf is the spouse id a child was reached through, if any.
	SpouseOf string
}

// Walk flattens a tree into members in canonical order, dropping repeated ids.
// A nil tree yields nil.
func Walk(tree *family.FamilyTreePerson) []Member {
	if tree == nil {
		return nil
	}

	rootID := tree.ID
	seen := map[string]bool{rootID: true}
	members := []Member{{Person: tree.Person, Kind: graph.KindRoot}}

	marriageID := FirstMarriageID
	for _, s := range tree.Spouses {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		members = append(members, Member{
			Person:     s.Person,
			Kind:       graph.KindSpouse,
			MarriageID: marriageID,
			Divorced:   !s.DivorceDate.IsZero(),
		})
		marriageID++

		for _, c := range s.Children {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			members = append(members, Member{
				Person:   c,
				Kind:     graph.KindChild,
				Parents:  []string{rootID, s.ID},
				SpouseOf: s.ID,
			})
		}
	}

	for _, c := range tree.Children {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		members = append(members, Member{
			Person:  c,
			Kind:    graph.KindChild,
			Parents: []string{rootID},
		})
	}

	for _, p := range tree.Parents {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		members = append(members, Member{Person: p, Kind: graph.KindParent})
		members[0].Parents = append(members[0].Parents, p.ID)
	}

	return members
}

func birthYear(p family.Person) string { return p.DateOfBirth.YearString() }
