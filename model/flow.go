package model

// FlowDefinition is the persisted wire shape of a workflow graph. Every
// edge's Source and Target must reference an existing node id.
type FlowDefinition struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

type Node struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// Clone returns a copy safe for structural mutation: node and edge slices are
// fresh and node data maps are shallow-copied.
func (f FlowDefinition) Clone() FlowDefinition {
	nodes := make([]Node, len(f.Nodes))
	for i, n := range f.Nodes {
		data := make(map[string]any, len(n.Data))
		for k, v := range n.Data {
			data[k] = v
		}
		nodes[i] = Node{ID: n.ID, Type: n.Type, Data: data}
	}
	edges := make([]Edge, len(f.Edges))
	copy(edges, f.Edges)
	return FlowDefinition{Nodes: nodes, Edges: edges}
}

// NodeByID returns a pointer into the definition's node slice, or nil.
func (f *FlowDefinition) NodeByID(id string) *Node {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i]
		}
	}
	return nil
}
