package graph

import "fmt"

// DesignGraph is the top-level immutable data structure produced by
// evaluation. It is never mutated after evaluation returns; each
// evaluation produces a new graph.
type DesignGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Order     []NodeID          `json:"order"`
	Version   uint64            `json:"version"`
}

// New creates an empty DesignGraph.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *DesignGraph) AddNode(n *Node) {
	if _, ok := g.Nodes[n.ID]; !ok {
		g.Order = append(g.Order, n.ID)
	}
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// SetName names an existing node and registers it in the name index.
func (g *DesignGraph) SetName(id NodeID, name string) error {
	n := g.Nodes[id]
	if n == nil {
		return fmt.Errorf("graph: no node %s", id.Short())
	}
	if n.Name != "" && n.Name != name {
		return fmt.Errorf("graph: node %s is already named %q", id.Short(), n.Name)
	}
	if other, ok := g.NameIndex[name]; ok && other != id {
		return fmt.Errorf("graph: name %q is already in use", name)
	}
	n.Name = name
	g.NameIndex[name] = id
	return nil
}

// AddRoot registers a node ID as a root of the graph.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Objects returns the named root nodes in creation order. These are the
// document objects a user can select.
func (g *DesignGraph) Objects() []*Node {
	var objs []*Node
	for _, id := range g.Roots {
		if n := g.Nodes[id]; n != nil && n.Name != "" {
			objs = append(objs, n)
		}
	}
	return objs
}

// Parts returns all primitive nodes in creation order.
func (g *DesignGraph) Parts() []*Node {
	return g.ofKind(NodePrimitive)
}

// Joins returns all join nodes in creation order.
func (g *DesignGraph) Joins() []*Node {
	return g.ofKind(NodeJoin)
}

func (g *DesignGraph) ofKind(kind NodeKind) []*Node {
	var out []*Node
	for _, id := range g.Order {
		if n := g.Nodes[id]; n != nil && n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Consumers returns the join nodes that use id as base or tool.
func (g *DesignGraph) Consumers(id NodeID) []*Node {
	var out []*Node
	for _, n := range g.Joins() {
		if jd, ok := n.Data.(JoinData); ok && (jd.Base == id || jd.Tool == id) {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the child nodes of the given node.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}
