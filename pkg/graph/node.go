package graph

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // box, cylinder, sphere
	NodeTransform                 // spatial transformation (place)
	NodeJoin                      // join feature (connect, embed, cutout, join)
	NodeGroup                     // logical grouping (assembly)
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeTransform:
		return "transform"
	case NodeJoin:
		return "join"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID          NodeID      `json:"id"`
	Kind        NodeKind    `json:"kind"`
	Name        string      `json:"name,omitempty"`
	ContentHash ContentHash `json:"content_hash"`
	Children    []NodeID    `json:"children,omitempty"`
	Data        NodeData    `json:"data"`

	// Hidden is the visual state of the object. It does not affect
	// geometry and is not part of the content hash.
	Hidden bool `json:"hidden,omitempty"`
}

// Label returns the node's name, or its short ID when it has none.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
