package recompute

import (
	"sync"

	"github.com/chazu/joinery/pkg/kernel"
)

type fakeSolid struct {
	name     string
	vol      float64
	children []kernel.Solid
}

func (s *fakeSolid) BoundingBox() (min, max [3]float64) { return }
func (s *fakeSolid) Volume() float64                    { return s.vol }
func (s *fakeSolid) IsCompound() bool                   { return s.children != nil }
func (s *fakeSolid) Children() []kernel.Solid           { return s.children }

// fakeKernel builds volume-only solids. When split is set, every cut
// breaks into two equal pieces.
type fakeKernel struct {
	mu    sync.Mutex
	split bool
	calls map[string]int
}

func newFakeKernel() *fakeKernel { return &fakeKernel{calls: map[string]int{}} }

func (k *fakeKernel) count(op string) {
	k.mu.Lock()
	k.calls[op]++
	k.mu.Unlock()
}

func (k *fakeKernel) setSplit(v bool) {
	k.mu.Lock()
	k.split = v
	k.mu.Unlock()
}

func (k *fakeKernel) Box(x, y, z float64) kernel.Solid {
	k.count("box")
	return &fakeSolid{name: "box", vol: x * y * z}
}

func (k *fakeKernel) Cylinder(h, r float64, _ int) kernel.Solid {
	k.count("cylinder")
	return &fakeSolid{name: "cylinder", vol: 3 * h * r * r}
}

func (k *fakeKernel) Sphere(r float64) kernel.Solid {
	k.count("sphere")
	return &fakeSolid{name: "sphere", vol: 4 * r * r * r}
}

func (k *fakeKernel) Union(a, b kernel.Solid) kernel.Solid {
	k.count("union")
	return &fakeSolid{name: "union", vol: a.Volume() + b.Volume()}
}

func (k *fakeKernel) Difference(a, b kernel.Solid) kernel.Solid {
	k.count("difference")
	k.mu.Lock()
	split := k.split
	k.mu.Unlock()
	v := a.Volume() / 2
	if split {
		return &fakeSolid{name: "cut", vol: a.Volume(), children: []kernel.Solid{
			&fakeSolid{name: "half", vol: v},
			&fakeSolid{name: "half", vol: v},
		}}
	}
	return &fakeSolid{name: "cut", vol: v, children: []kernel.Solid{&fakeSolid{name: "piece", vol: v}}}
}

func (k *fakeKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	k.count("intersection")
	return &fakeSolid{name: "common", vol: 1}
}

func (k *fakeKernel) MultiUnion(first kernel.Solid, rest ...kernel.Solid) kernel.Solid {
	k.count("fuse")
	v := first.Volume()
	for _, s := range rest {
		v += s.Volume()
	}
	return &fakeSolid{name: "fuse", vol: v}
}

func (k *fakeKernel) Compound(solids ...kernel.Solid) kernel.Solid {
	k.count("compound")
	c := &fakeSolid{name: "compound", children: []kernel.Solid{}}
	for _, s := range solids {
		c.children = append(c.children, s)
		c.vol += s.Volume()
	}
	return c
}

func (k *fakeKernel) Refine(s kernel.Solid) kernel.Solid {
	k.count("refine")
	return s
}

func (k *fakeKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	k.count("translate")
	return &fakeSolid{name: "moved", vol: s.Volume(), children: s.Children()}
}

func (k *fakeKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	k.count("rotate")
	return &fakeSolid{name: "rotated", vol: s.Volume(), children: s.Children()}
}

func (k *fakeKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	k.count("mesh")
	return &kernel.Mesh{Vertices: []float32{0, 0, 0}, Indices: []uint32{0, 0, 0}}, nil
}
