package recompute

import (
	"fmt"

	"github.com/chazu/joinery/pkg/graph"
	"github.com/chazu/joinery/pkg/kernel"
)

// State is the computed state of one object after a recompute.
type State int

const (
	// Valid objects have a fresh solid.
	Valid State = iota
	// Invalid objects failed to compute. Their error is set.
	Invalid
	// Blocked objects were skipped because an input is not valid.
	Blocked
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	case Blocked:
		return "blocked"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Status describes the outcome for one node.
type Status struct {
	State State
	Err   error
	// Stale is set when the solid is the last good output of a previous
	// recompute rather than a fresh result.
	Stale bool
}

// Object is one node's result.
type Object struct {
	Node   *graph.Node
	Solid  kernel.Solid
	Status Status
}

// Stats counts the work done by one recompute.
type Stats struct {
	Computed int
	Cached   int
}

// Result is the outcome of recomputing one design graph.
type Result struct {
	Graph   *graph.DesignGraph
	Objects map[graph.NodeID]*Object
	Stats   Stats
}

// Get returns the result for the named object, or nil.
func (r *Result) Get(name string) *Object {
	n := r.Graph.Lookup(name)
	if n == nil {
		return nil
	}
	return r.Objects[n.ID]
}

// Documents returns the results for the document objects in creation order.
func (r *Result) Documents() []*Object {
	var out []*Object
	for _, n := range r.Graph.Objects() {
		if o := r.Objects[n.ID]; o != nil {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the document objects that are not valid.
func (r *Result) Failed() []*Object {
	var out []*Object
	for _, o := range r.Documents() {
		if o.Status.State != Valid {
			out = append(out, o)
		}
	}
	return out
}

// OK reports whether every document object is valid.
func (r *Result) OK() bool { return len(r.Failed()) == 0 }
