package graph

// Node kinds, relative to the tree's root person.
const (
	KindRoot   = "root"
	KindSpouse = "spouse"
	KindChild  = "child"
	KindParent = "parent"
)

// Edge kinds.
const (
	EdgeSpouse = "spouse" // root to spouse, undirected in meaning
	EdgeParent = "parent" // parent to child
)

// Graph is the node-link serialization of a family tree view.
// Used for JSON export, Graphviz rendering and artifact caching.
type Graph struct {
	Root  string `json:"root"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one person in the graph.
type Node struct {
	ID     string `json:"id"`
	Label  string `json:"label,omitempty"` // Display name (defaults to ID)
	Kind   string `json:"kind"`
	Gender string `json:"gender,omitempty"`
	Birth  string `json:"birth,omitempty"` // Year of birth
	Death  string `json:"death,omitempty"` // Year of death
	Photo  string `json:"photo,omitempty"` // Profile photo URL
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Lifespan returns "1950–2010", "b. 1950", "d. 2010" or "".
func (n *Node) Lifespan() string {
	switch {
	case n.Birth != "" && n.Death != "":
		return n.Birth + "–" + n.Death
	case n.Birth != "":
		return "b. " + n.Birth
	case n.Death != "":
		return "d. " + n.Death
	default:
		return ""
	}
}

// Edge connects two nodes. For parent edges From is the parent.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
	// Ended marks a spouse edge whose marriage ended in divorce.
	Ended bool `json:"ended,omitempty"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Children returns the ids of nodes reached from id by parent edges, in edge
// order.
func (g *Graph) Children(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.Kind == EdgeParent && e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}
