package family

// FindPerson returns the record with the given id from a tree view.
//
// The search order mirrors the chart adapter: root, each spouse followed by
// that spouse's children, the root's children, then parents. The first match
// wins; ok is false when no record has the id.
func FindPerson(tree *FamilyTreePerson, id string) (p Person, ok bool) {
	if tree == nil || id == "" {
		return Person{}, false
	}
	if tree.ID == id {
		return tree.Person, true
	}
	for _, s := range tree.Spouses {
		if s.ID == id {
			return s.Person, true
		}
		for _, c := range s.Children {
			if c.ID == id {
				return c, true
			}
		}
	}
	for _, c := range tree.Children {
		if c.ID == id {
			return c, true
		}
	}
	for _, parent := range tree.Parents {
		if parent.ID == id {
			return parent, true
		}
	}
	return Person{}, false
}

// FindSpouse returns the spouse entry with the given id.
func FindSpouse(tree *FamilyTreePerson, id string) (*Spouse, bool) {
	if tree == nil {
		return nil, false
	}
	for i := range tree.Spouses {
		if tree.Spouses[i].ID == id {
			return &tree.Spouses[i], true
		}
	}
	return nil, false
}
