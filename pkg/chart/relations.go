package chart

import (
	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
)

// Datum is one entry of the family-chart "data/rels" shape.
type Datum struct {
	ID   string    `json:"id"`
	Data DatumData `json:"data"`
	Rels Rels      `json:"rels"`
	Main bool      `json:"main,omitempty"`
}

// DatumData holds the displayed fields of a Datum.
type DatumData struct {
	FullName string `json:"full_name"`
	Gender   string `json:"gender"`
	Birth    string `json:"birth"`
	Avatar   string `json:"avatar"`
}

// Rels links a Datum to others by id. Slices are never nil so they encode
// as [] rather than null.
type Rels struct {
	Spouses  []string `json:"spouses"`
	Children []string `json:"children"`
	Father   string   `json:"father,omitempty"`
	Mother   string   `json:"mother,omitempty"`
}

// ToRelations builds the relations shape for members. The root is marked
// Main. Father and mother are assigned from each parent's gender; when that
// slot is taken or the gender is other, the parent takes whichever slot is
// still free, so every parent listing a child is linked back from it.
func ToRelations(members []Member) []Datum {
	if len(members) == 0 {
		return nil
	}

	byID := make(map[string]*Member, len(members))
	for i := range members {
		byID[members[i].ID] = &members[i]
	}

	out := make([]Datum, len(members))
	index := make(map[string]int, len(members))
	for i, m := range members {
		index[m.ID] = i
		out[i] = Datum{
			ID: m.ID,
			Data: DatumData{
				FullName: m.FullName,
				Gender:   string(m.Gender),
				Birth:    birthYear(m.Person),
				Avatar:   m.ProfilePhoto,
			},
			Rels: Rels{Spouses: []string{}, Children: []string{}},
			Main: m.Kind == graph.KindRoot,
		}
	}

	rootID := members[0].ID
	for _, m := range members {
		if m.Kind == graph.KindSpouse {
			link(&out[index[rootID]].Rels.Spouses, m.ID)
			link(&out[index[m.ID]].Rels.Spouses, rootID)
		}
		for _, pid := range m.Parents {
			parent, ok := byID[pid]
			if !ok {
				continue
			}
			link(&out[index[pid]].Rels.Children, m.ID)
			setParent(&out[index[m.ID]].Rels, pid, parent.Gender)
		}
	}
	return out
}

func link(ids *[]string, id string) {
	for _, existing := range *ids {
		if existing == id {
			return
		}
	}
	*ids = append(*ids, id)
}

func setParent(r *Rels, id string, g family.Gender) {
	switch {
	case g == family.GenderMale && r.Father == "":
		r.Father = id
	case g == family.GenderFemale && r.Mother == "":
		r.Mother = id
	case r.Father == "":
		r.Father = id
	case r.Mother == "":
		r.Mother = id
	}
}
