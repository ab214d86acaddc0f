package chart

// Node is one entry of the family-chart node list.
type Node struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Gender string   `json:"gender"`
	Img    string   `json:"img"`
	Birth  string   `json:"birth"`
	MID    int      `json:"mid,omitempty"`
	PIDs   []string `json:"pids,omitempty"`
}

// ToNodes builds the node list for members. Birth is the year of birth or
// empty; Img is the photo URL or empty.
func ToNodes(members []Member) []Node {
	nodes := make([]Node, 0, len(members))
	for _, m := range members {
		nodes = append(nodes, Node{
			ID:     m.ID,
			Name:   m.FullName,
			Gender: string(m.Gender),
			Img:    m.ProfilePhoto,
			Birth:  birthYear(m.Person),
			MID:    m.MarriageID,
			PIDs:   m.Parents,
		})
	}
	return nodes
}
