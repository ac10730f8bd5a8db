package join

import (
	"fmt"
	"strings"

	"github.com/chazu/joinery/pkg/kernel"
)

// fakeSolid is a named solid with a scripted volume.
type fakeSolid struct {
	name     string
	vol      float64
	children []kernel.Solid
	compound bool
}

func solid(name string, vol float64) *fakeSolid {
	return &fakeSolid{name: name, vol: vol}
}

func compound(name string, vols ...float64) *fakeSolid {
	c := &fakeSolid{name: name, compound: true}
	for i, v := range vols {
		c.children = append(c.children, solid(fmt.Sprintf("%s[%d]", name, i), v))
		c.vol += v
	}
	return c
}

func (s *fakeSolid) BoundingBox() (min, max [3]float64) { return }
func (s *fakeSolid) Volume() float64                    { return s.vol }
func (s *fakeSolid) IsCompound() bool                   { return s.compound }
func (s *fakeSolid) Children() []kernel.Solid           { return s.children }
func (s *fakeSolid) String() string                     { return s.name }

// fakeKernel answers Difference and Intersection from scripted tables and
// records every call.
type fakeKernel struct {
	diff   map[string]kernel.Solid
	common map[string]kernel.Solid
	calls  []string
}

func newFakeKernel() *fakeKernel {
	return &fakeKernel{diff: map[string]kernel.Solid{}, common: map[string]kernel.Solid{}}
}

func name(s kernel.Solid) string {
	if f, ok := s.(*fakeSolid); ok {
		return f.name
	}
	return "?"
}

func (k *fakeKernel) record(format string, args ...any) {
	k.calls = append(k.calls, fmt.Sprintf(format, args...))
}

func (k *fakeKernel) Box(x, y, z float64) kernel.Solid { return solid("box", x*y*z) }
func (k *fakeKernel) Cylinder(h, r float64, _ int) kernel.Solid {
	return solid("cylinder", h*r*r*3)
}
func (k *fakeKernel) Sphere(r float64) kernel.Solid { return solid("sphere", 4*r*r*r) }

func (k *fakeKernel) Union(a, b kernel.Solid) kernel.Solid {
	k.record("union(%s,%s)", name(a), name(b))
	return solid("union("+name(a)+","+name(b)+")", a.Volume()+b.Volume())
}

func (k *fakeKernel) Difference(a, b kernel.Solid) kernel.Solid {
	key := name(a) + "-" + name(b)
	k.record("cut(%s)", key)
	if s, ok := k.diff[key]; ok {
		return s
	}
	return compound(key, a.Volume())
}

func (k *fakeKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	key := name(a) + "&" + name(b)
	k.record("common(%s)", key)
	if s, ok := k.common[key]; ok {
		return s
	}
	return solid(key, 0)
}

func (k *fakeKernel) MultiUnion(first kernel.Solid, rest ...kernel.Solid) kernel.Solid {
	names := []string{name(first)}
	vol := first.Volume()
	for _, s := range rest {
		names = append(names, name(s))
		vol += s.Volume()
	}
	n := "fuse(" + strings.Join(names, ",") + ")"
	k.record("%s", n)
	return solid(n, vol)
}

func (k *fakeKernel) Compound(solids ...kernel.Solid) kernel.Solid {
	names := make([]string, len(solids))
	c := &fakeSolid{compound: true}
	for i, s := range solids {
		names[i] = name(s)
		c.children = append(c.children, s)
		c.vol += s.Volume()
	}
	c.name = "compound(" + strings.Join(names, ",") + ")"
	k.record("%s", c.name)
	return c
}

func (k *fakeKernel) Refine(s kernel.Solid) kernel.Solid {
	k.record("refine(%s)", name(s))
	return solid("refine("+name(s)+")", s.Volume())
}

func (k *fakeKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid { return s }
func (k *fakeKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid    { return s }
func (k *fakeKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error)            { return &kernel.Mesh{}, nil }
