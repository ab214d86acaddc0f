package chart

import (
	"github.com/matzehuels/familytree/pkg/graph"
)

// ToGraph builds the node-link graph for members. Spouse edges run from the
// root to each spouse; parent edges run from each listed parent to the
// member.
func ToGraph(members []Member) graph.Graph {
	if len(members) == 0 {
		return graph.Graph{}
	}

	g := graph.Graph{
		Root:  members[0].ID,
		Nodes: make([]graph.Node, 0, len(members)),
	}
	for _, m := range members {
		g.Nodes = append(g.Nodes, graph.Node{
			ID:     m.ID,
			Label:  m.FullName,
			Kind:   m.Kind,
			Gender: string(m.Gender),
			Birth:  birthYear(m.Person),
			Death:  m.DateOfDeath.YearString(),
			Photo:  m.ProfilePhoto,
		})
	}

	for _, m := range members {
		if m.Kind == graph.KindSpouse {
			g.Edges = append(g.Edges, graph.Edge{From: g.Root, To: m.ID, Kind: graph.EdgeSpouse, Ended: m.Divorced})
		}
		for _, pid := range m.Parents {
			g.Edges = append(g.Edges, graph.Edge{From: pid, To: m.ID, Kind: graph.EdgeParent})
		}
	}
	return g
}
