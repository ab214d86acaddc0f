package chart

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/familytree/pkg/family"
	"github.com/matzehuels/familytree/pkg/graph"
)

func person(id, name string, g family.Gender) family.Person {
	return family.Person{ID: id, FullName: name, Gender: g}
}

// sampleTree: root R married to S1 (child C1) and S2 (divorced, no children);
// R also lists C1 and C2 directly, and has parents P1 and P2.
func sampleTree() *family.FamilyTreePerson {
	root := person("R", "Root", family.GenderFemale)
	root.DateOfBirth = family.NewDate(1950, time.April, 1)
	root.ProfilePhoto = "http://img/r.jpg"

	return &family.FamilyTreePerson{
		Person: root,
		Spouses: []family.Spouse{
			{
				Person:   person("S1", "Spouse One", family.GenderMale),
				Children: []family.Person{person("C1", "Shared Child", family.GenderOther)},
			},
			{
				Person:      person("S2", "Spouse Two", family.GenderMale),
				DivorceDate: family.NewDate(1990, time.January, 1),
			},
		},
		Children: []family.Person{
			person("C1", "Shared Child", family.GenderOther),
			person("C2", "Root Child", family.GenderFemale),
		},
		Parents: []family.Person{
			person("P1", "Father", family.GenderMale),
			person("P2", "Mother", family.GenderFemale),
		},
	}
}

func ids(members []Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.ID
	}
	return out
}

func TestWalkOrderAndDedupe(t *testing.T) {
	members := Walk(sampleTree())

	want := []string{"R", "S1", "C1", "S2", "C2", "P1", "P2"}
	if got := ids(members); !reflect.DeepEqual(got, want) {
		t.Fatalf("Walk order = %v, want %v", got, want)
	}

	kinds := []string{graph.KindRoot, graph.KindSpouse, graph.KindChild, graph.KindSpouse, graph.KindChild, graph.KindParent, graph.KindParent}
	for i, m := range members {
		if m.Kind != kinds[i] {
			t.Errorf("%s kind = %s, want %s", m.ID, m.Kind, kinds[i])
		}
	}
}

func TestWalkParentsAndMarriages(t *testing.T) {
	members := Walk(sampleTree())
	byID := map[string]Member{}
	for _, m := range members {
		byID[m.ID] = m
	}

	if got := byID["C1"].Parents; !reflect.DeepEqual(got, []string{"R", "S1"}) {
		t.Errorf("shared child parents = %v, want [R S1]", got)
	}
	if got := byID["C2"].Parents; !reflect.DeepEqual(got, []string{"R"}) {
		t.Errorf("root-only child parents = %v, want [R]", got)
	}
	if got := byID["R"].Parents; !reflect.DeepEqual(got, []string{"P1", "P2"}) {
		t.Errorf("root parents = %v, want [P1 P2]", got)
	}
	if byID["S1"].MarriageID != 1000 || byID["S2"].MarriageID != 1001 {
		t.Errorf("marriage ids = %d, %d", byID["S1"].MarriageID, byID["S2"].MarriageID)
	}
	if byID["S1"].Divorced || !byID["S2"].Divorced {
		t.Error("divorce flags wrong")
	}
}

func TestWalkEdgeCases(t *testing.T) {
	if Walk(nil) != nil {
		t.Error("nil tree should walk to nil")
	}

	lone := &family.FamilyTreePerson{Person: person("R", "Root", family.GenderMale)}
	if got := ids(Walk(lone)); !reflect.DeepEqual(got, []string{"R"}) {
		t.Errorf("lone root = %v", got)
	}

	// A child listed under two spouses keeps its first parents.
	twice := &family.FamilyTreePerson{
		Person: person("R", "Root", family.GenderMale),
		Spouses: []family.Spouse{
			{Person: person("S1", "A", family.GenderFemale), Children: []family.Person{person("C", "C", family.GenderMale)}},
			{Person: person("S2", "B", family.GenderFemale), Children: []family.Person{person("C", "C", family.GenderMale)}},
		},
		Children: []family.Person{person("R", "Root again", family.GenderMale)},
	}
	members := Walk(twice)
	if got := ids(members); !reflect.DeepEqual(got, []string{"R", "S1", "C", "S2"}) {
		t.Fatalf("ids = %v", got)
	}
	if !reflect.DeepEqual(members[2].Parents, []string{"R", "S1"}) {
		t.Errorf("first spouse should win: %v", members[2].Parents)
	}
}

func TestToNodes(t *testing.T) {
	nodes := ToNodes(Walk(sampleTree()))

	if len(nodes) != 7 {
		t.Fatalf("got %d nodes", len(nodes))
	}
	root := nodes[0]
	if root.Birth != "1950" || root.Img != "http://img/r.jpg" || root.Gender != "F" {
		t.Errorf("root node = %+v", root)
	}
	if nodes[1].MID != 1000 || nodes[3].MID != 1001 {
		t.Errorf("mids = %d, %d", nodes[1].MID, nodes[3].MID)
	}
	if nodes[2].Birth != "" || nodes[2].Img != "" {
		t.Errorf("missing birth/photo should be empty: %+v", nodes[2])
	}

	data, err := json.Marshal(nodes[1])
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	if _, ok := m["pids"]; ok {
		t.Error("spouse node should omit pids")
	}
	if m["img"] != "" || m["birth"] != "" {
		t.Errorf("img and birth are always present: %s", data)
	}
}

func TestToNodesDedupeProperty(t *testing.T) {
	nodes := ToNodes(Walk(sampleTree()))
	seen := map[string]bool{}
	for _, n := range nodes {
		if seen[n.ID] {
			t.Fatalf("duplicate node id %s", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestToRelations(t *testing.T) {
	data := ToRelations(Walk(sampleTree()))
	byID := map[string]Datum{}
	for _, d := range data {
		byID[d.ID] = d
	}

	root := byID["R"]
	if !root.Main {
		t.Error("root should be main")
	}
	if !reflect.DeepEqual(root.Rels.Spouses, []string{"S1", "S2"}) {
		t.Errorf("root spouses = %v", root.Rels.Spouses)
	}
	if !reflect.DeepEqual(root.Rels.Children, []string{"C1", "C2"}) {
		t.Errorf("root children = %v", root.Rels.Children)
	}
	if root.Rels.Father != "P1" || root.Rels.Mother != "P2" {
		t.Errorf("root parents = %s/%s", root.Rels.Father, root.Rels.Mother)
	}

	c1 := byID["C1"]
	if c1.Rels.Mother != "R" || c1.Rels.Father != "S1" {
		t.Errorf("C1 parents = father %s mother %s", c1.Rels.Father, c1.Rels.Mother)
	}
	if !reflect.DeepEqual(byID["S1"].Rels.Children, []string{"C1"}) {
		t.Errorf("S1 children = %v", byID["S1"].Rels.Children)
	}
	if !reflect.DeepEqual(byID["S2"].Rels.Spouses, []string{"R"}) || len(byID["S2"].Rels.Children) != 0 {
		t.Errorf("S2 rels = %+v", byID["S2"].Rels)
	}

	raw, _ := json.Marshal(byID["C2"])
	var m map[string]map[string]any
	_ = json.Unmarshal(raw, &m)
	if m["rels"]["spouses"] == nil {
		t.Error("empty spouses should encode as []")
	}

	if ToRelations(nil) != nil {
		t.Error("no members, no relations")
	}
}

func TestSetParentUnknownGender(t *testing.T) {
	var r Rels
	setParent(&r, "a", family.GenderOther)
	setParent(&r, "b", family.GenderOther)
	if r.Father != "a" || r.Mother != "b" {
		t.Errorf("other-gender parents fill free slots: %+v", r)
	}
	setParent(&r, "c", family.GenderMale)
	if r.Father != "a" {
		t.Error("occupied slot must not be overwritten")
	}
}

func TestSetParentSameGender(t *testing.T) {
	for _, g := range []family.Gender{family.GenderMale, family.GenderFemale} {
		var r Rels
		setParent(&r, "a", g)
		setParent(&r, "b", g)
		if r.Father == "" || r.Mother == "" || r.Father == r.Mother {
			t.Errorf("gender %s: both parents must be linked, got %+v", g, r)
		}
		setParent(&r, "c", g)
		if r.Father == "c" || r.Mother == "c" {
			t.Errorf("gender %s: third parent must not replace a linked one: %+v", g, r)
		}
	}
}

func TestToRelationsSameGenderParents(t *testing.T) {
	tree := &family.FamilyTreePerson{
		Person: person("R", "Root", family.GenderMale),
		Spouses: []family.Spouse{{
			Person:   person("S", "Spouse", family.GenderMale),
			Children: []family.Person{person("C", "Child", family.GenderFemale)},
		}},
	}

	byID := map[string]Datum{}
	for _, d := range ToRelations(Walk(tree)) {
		byID[d.ID] = d
	}

	// Every parent listing a child must be reachable from the child.
	for _, parent := range []string{"R", "S"} {
		if !reflect.DeepEqual(byID[parent].Rels.Children, []string{"C"}) {
			t.Fatalf("%s children = %v", parent, byID[parent].Rels.Children)
		}
		c := byID["C"].Rels
		if c.Father != parent && c.Mother != parent {
			t.Errorf("child lost parent %s: father %q mother %q", parent, c.Father, c.Mother)
		}
	}
}

func TestToGraph(t *testing.T) {
	g := ToGraph(Walk(sampleTree()))

	if err := g.Validate(); err != nil {
		t.Fatalf("graph invalid: %v", err)
	}
	if g.Root != "R" || len(g.Nodes) != 7 {
		t.Fatalf("root=%s nodes=%d", g.Root, len(g.Nodes))
	}

	want := []graph.Edge{
		{From: "R", To: "S1", Kind: graph.EdgeSpouse},
		{From: "R", To: "C1", Kind: graph.EdgeParent},
		{From: "S1", To: "C1", Kind: graph.EdgeParent},
		{From: "R", To: "S2", Kind: graph.EdgeSpouse, Ended: true},
		{From: "R", To: "C2", Kind: graph.EdgeParent},
	}
	// Root's own parent edges come first, since the root is walked first.
	wantAll := append([]graph.Edge{
		{From: "P1", To: "R", Kind: graph.EdgeParent},
		{From: "P2", To: "R", Kind: graph.EdgeParent},
	}, want...)
	if !reflect.DeepEqual(g.Edges, wantAll) {
		t.Errorf("edges =\n%+v\nwant\n%+v", g.Edges, wantAll)
	}

	if (ToGraph(nil).Root) != "" {
		t.Error("empty members should give an empty graph")
	}
}
