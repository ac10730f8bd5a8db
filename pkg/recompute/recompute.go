// Package recompute computes the solid of every node in a design graph
// with a geometry kernel. Join nodes run as join features. Results are
// cached by content hash, and a failing feature keeps its last good
// output as a stale solid.
package recompute

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/joinery/pkg/graph"
	"github.com/chazu/joinery/pkg/join"
	"github.com/chazu/joinery/pkg/kernel"
	"go.uber.org/zap"
)

// DefaultSegments is the cylinder tessellation used when a cylinder does
// not set its own.
const DefaultSegments = 32

// ErrBlocked wraps the reason an object was not computed.
var ErrBlocked = errors.New("recompute: input is not valid")

// Recomputer evaluates design graphs against a kernel. It is safe for
// concurrent use; recomputes are serialized.
type Recomputer struct {
	k   kernel.Kernel
	log *zap.Logger

	mu       sync.Mutex
	cache    map[graph.ContentHash]kernel.Solid
	lastGood map[string]kernel.Solid
}

// Option configures a Recomputer.
type Option func(*Recomputer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recomputer) {
		if l != nil {
			r.log = l
		}
	}
}

// New returns a Recomputer for k.
func New(k kernel.Kernel, opts ...Option) *Recomputer {
	r := &Recomputer{
		k:        k,
		log:      zap.NewNop(),
		cache:    make(map[graph.ContentHash]kernel.Solid),
		lastGood: make(map[string]kernel.Solid),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Kernel returns the kernel the recomputer uses.
func (r *Recomputer) Kernel() kernel.Kernel { return r.k }

// Recompute computes every node of g. Object failures are reported in the
// result; the error return is for graphs that cannot be walked at all.
func (r *Recomputer) Recompute(g *graph.DesignGraph) (*Result, error) {
	if g == nil {
		return nil, errors.New("recompute: nil graph")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w := &walker{
		r:      r,
		g:      g,
		res:    &Result{Graph: g, Objects: make(map[graph.NodeID]*Object, len(g.Nodes))},
		cache:    make(map[graph.ContentHash]kernel.Solid),
		lastGood: make(map[string]kernel.Solid),
		features: make(map[graph.NodeID]*join.Feature),
		active:   make(map[graph.NodeID]bool),
	}
	for _, id := range g.Order {
		n := g.Get(id)
		if n == nil {
			continue
		}
		if _, err := w.visit(n); err != nil {
			return nil, err
		}
	}

	// Keep only what this graph used, so the cache and the stale outputs
	// track the document. A name that left the document forgets its solid.
	r.cache = w.cache
	r.lastGood = w.lastGood

	r.log.Debug("recompute finished",
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("computed", w.res.Stats.Computed),
		zap.Int("cached", w.res.Stats.Cached),
		zap.Int("failed", len(w.res.Failed())),
	)
	return w.res, nil
}

// walker holds the state of one recompute.
type walker struct {
	r        *Recomputer
	g        *graph.DesignGraph
	res      *Result
	cache    map[graph.ContentHash]kernel.Solid
	lastGood map[string]kernel.Solid
	features map[graph.NodeID]*join.Feature
	active   map[graph.NodeID]bool
}

// visit computes n after its children. The returned error is fatal; object
// failures are recorded in the Object status.
func (w *walker) visit(n *graph.Node) (*Object, error) {
	if o, ok := w.res.Objects[n.ID]; ok {
		return o, nil
	}
	if w.active[n.ID] {
		return nil, fmt.Errorf("recompute: cycle through %s", n.Label())
	}
	w.active[n.ID] = true
	defer delete(w.active, n.ID)

	inputs := make([]*Object, 0, len(n.Children))
	for _, cid := range n.Children {
		c := w.g.Get(cid)
		if c == nil {
			return nil, fmt.Errorf("recompute: %s: dangling reference %s", n.Label(), cid.Short())
		}
		o, err := w.visit(c)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, o)
	}

	o := &Object{Node: n}
	w.res.Objects[n.ID] = o

	for _, in := range inputs {
		if in.Status.State != Valid {
			w.fail(o, Blocked, fmt.Errorf("%w: %q is %s", ErrBlocked, in.Node.Label(), in.Status.State))
			return o, nil
		}
	}

	if !n.ContentHash.IsZero() {
		if s, ok := w.r.cache[n.ContentHash]; ok {
			w.cache[n.ContentHash] = s
			w.res.Stats.Cached++
			w.succeed(o, s)
			return o, nil
		}
	}

	s, err := w.compute(n, inputs)
	if err != nil {
		w.fail(o, Invalid, err)
		return o, nil
	}
	w.res.Stats.Computed++
	if !n.ContentHash.IsZero() {
		w.cache[n.ContentHash] = s
	}
	w.succeed(o, s)
	return o, nil
}

func (w *walker) succeed(o *Object, s kernel.Solid) {
	o.Solid = s
	o.Status = Status{State: Valid}
	if o.Node.Name != "" {
		w.lastGood[o.Node.Name] = s
	}
}

// previous returns the output a failing node keeps showing. A join feature
// owns its output slot; other named nodes fall back to the last good solid
// of the previous run.
func (w *walker) previous(n *graph.Node) kernel.Solid {
	if f, ok := w.features[n.ID]; ok {
		return f.Output()
	}
	if n.Name == "" {
		return nil
	}
	return w.r.lastGood[n.Name]
}

func (w *walker) fail(o *Object, state State, err error) {
	o.Status = Status{State: state, Err: err}
	if prev := w.previous(o.Node); prev != nil {
		o.Solid = prev
		o.Status.Stale = true
		if o.Node.Name != "" {
			w.lastGood[o.Node.Name] = prev
		}
	}
	if o.Node.Name != "" {
		w.r.log.Warn("object failed to recompute",
			zap.String("object", o.Node.Name),
			zap.Stringer("state", state),
			zap.Bool("stale", o.Status.Stale),
			zap.Error(err),
		)
	}
}

// compute builds the solid for one node from its already computed inputs.
func (w *walker) compute(n *graph.Node, inputs []*Object) (kernel.Solid, error) {
	switch n.Kind {
	case graph.NodePrimitive:
		return w.handlePrimitive(n)
	case graph.NodeTransform:
		return w.handleTransform(n, inputs)
	case graph.NodeGroup:
		return w.handleGroup(n, inputs)
	case graph.NodeJoin:
		return w.handleJoin(n, inputs)
	}
	return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
}

func (w *walker) handlePrimitive(n *graph.Node) (kernel.Solid, error) {
	k := w.r.k
	switch d := n.Data.(type) {
	case graph.BoxData:
		return k.Box(d.Size.X, d.Size.Y, d.Size.Z), nil
	case graph.CylinderData:
		segments := d.Segments
		if segments <= 0 {
			segments = DefaultSegments
		}
		return k.Cylinder(d.Height, d.Radius, segments), nil
	case graph.SphereData:
		return k.Sphere(d.Radius), nil
	}
	return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.Label(), n.Data)
}

// handleTransform applies rotation first, then translation.
func (w *walker) handleTransform(n *graph.Node, inputs []*Object) (kernel.Solid, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.Label(), n.Data)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("transform node %s needs exactly one child, has %d", n.Label(), len(inputs))
	}

	s := inputs[0].Solid
	if td.Rotation != nil && !td.Rotation.IsZero() {
		s = w.r.k.Rotate(s, td.Rotation.X, td.Rotation.Y, td.Rotation.Z)
	}
	if td.Translation != nil && !td.Translation.IsZero() {
		s = w.r.k.Translate(s, td.Translation.X, td.Translation.Y, td.Translation.Z)
	}
	return s, nil
}

// handleGroup returns the compound of the children.
func (w *walker) handleGroup(n *graph.Node, inputs []*Object) (kernel.Solid, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("group %s has no members", n.Label())
	}
	solids := make([]kernel.Solid, len(inputs))
	for i, in := range inputs {
		solids[i] = in.Solid
	}
	return w.r.k.Compound(solids...), nil
}

// nodeSource feeds an already computed node into a join feature.
type nodeSource struct {
	id    graph.NodeID
	solid kernel.Solid
}

func (s nodeSource) Solid() (kernel.Solid, error) { return s.solid, nil }

func (w *walker) handleJoin(n *graph.Node, inputs []*Object) (kernel.Solid, error) {
	jd, ok := n.Data.(graph.JoinData)
	if !ok {
		return nil, fmt.Errorf("join node %s has unexpected data type %T", n.Label(), n.Data)
	}
	if len(inputs) != 2 {
		return nil, fmt.Errorf("join node %s needs a base and a tool, has %d inputs", n.Label(), len(inputs))
	}

	f, err := join.NewFeature(n.Label(), join.Config{
		Mode:       jd.Mode,
		Base:       nodeSource{id: jd.Base, solid: inputs[0].Solid},
		Tool:       nodeSource{id: jd.Tool, solid: inputs[1].Solid},
		Refine:     jd.Refine,
		Degenerate: jd.Degenerate,
	})
	if err != nil {
		return nil, err
	}
	if prev, ok := w.r.lastGood[n.Name]; ok {
		f.SetOutput(prev)
	}
	w.features[n.ID] = f

	w.r.log.Debug("executing join",
		zap.String("object", n.Label()),
		zap.Stringer("mode", jd.Mode),
		zap.Bool("refine", jd.Refine),
		zap.Stringer("degenerate", jd.Degenerate),
	)
	return f.Execute(w.r.k)
}
