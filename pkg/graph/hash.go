package graph

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// ComputeHashes fills in ContentHash for every node. A node's hash covers
// its kind, its data and the hashes of its children, but not its name or
// visibility. The graph must be acyclic.
func ComputeHashes(g *DesignGraph) error {
	done := make(map[NodeID]bool, len(g.Nodes))
	visiting := make(map[NodeID]bool)

	var visit func(id NodeID) (ContentHash, error)
	visit = func(id NodeID) (ContentHash, error) {
		n := g.Nodes[id]
		if n == nil {
			return ContentHash{}, fmt.Errorf("graph: hash: dangling reference %s", id.Short())
		}
		if done[id] {
			return n.ContentHash, nil
		}
		if visiting[id] {
			return ContentHash{}, fmt.Errorf("graph: hash: cycle through %s", n.Label())
		}
		visiting[id] = true

		data, err := json.Marshal(n.Data)
		if err != nil {
			return ContentHash{}, fmt.Errorf("graph: hash %s: %w", n.Label(), err)
		}
		h := sha256.New()
		fmt.Fprintf(h, "%s\x00%T\x00", n.Kind, n.Data)
		h.Write(data)
		for _, cid := range n.Children {
			ch, err := visit(cid)
			if err != nil {
				return ContentHash{}, err
			}
			h.Write(ch[:])
		}

		copy(n.ContentHash[:], h.Sum(nil))
		visiting[id] = false
		done[id] = true
		return n.ContentHash, nil
	}

	for _, id := range g.Order {
		if _, err := visit(id); err != nil {
			return err
		}
	}
	for id := range g.Nodes {
		if _, err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
