package chart_test

import (
	"fmt"

	"github.com/matzehuels/familytree/pkg/chart"
	"github.com/matzehuels/familytree/pkg/family"
)

func ExampleToNodes() {
	tree := &family.FamilyTreePerson{
		Person: family.Person{ID: "anna", FullName: "Anna", Gender: family.GenderFemale},
		Spouses: []family.Spouse{{
			Person:   family.Person{ID: "karl", FullName: "Karl", Gender: family.GenderMale},
			Children: []family.Person{{ID: "lena", FullName: "Lena", Gender: family.GenderFemale}},
		}},
		Children: []family.Person{
			{ID: "lena", FullName: "Lena", Gender: family.GenderFemale},
			{ID: "tom", FullName: "Tom", Gender: family.GenderMale},
		},
	}

	for _, n := range chart.ToNodes(chart.Walk(tree)) {
		fmt.Println(n.ID, n.MID, n.PIDs)
	}
	// Output:
	// anna 0 []
	// karl 1000 []
	// lena 0 [anna karl]
	// tom 0 [anna]
}
