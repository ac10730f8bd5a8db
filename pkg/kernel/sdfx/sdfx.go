// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// SDFs carry no topology, so volume and compound decomposition are
// derived from a uniform voxel sampling of the distance field.
package sdfx

import (
	"fmt"
	"math"
	"sync"

	"github.com/chazu/joinery/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ kernel.Kernel   = (*SdfxKernel)(nil)
	_ kernel.Exporter = (*SdfxKernel)(nil)
	_ kernel.Solid    = (*sdfxSolid)(nil)
)

const (
	// DefaultMeshCells controls marching cubes tessellation resolution.
	DefaultMeshCells = 200
	// DefaultVolumeCells controls the voxel resolution used for volume
	// and decomposition queries.
	DefaultVolumeCells = 64
)

type solidKind int

const (
	kindPlain    solidKind = iota
	kindCompound           // explicit list of disjoint solids
	kindSplit              // boolean result, decomposed into voxel components
)

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s     sdf.SDF3
	kind  solidKind
	parts []kernel.Solid
	cells int

	once  sync.Once
	vol   float64
	comps []kernel.Solid
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Volume returns the sampled volume.
func (s *sdfxSolid) Volume() float64 {
	s.analyze()
	return s.vol
}

// IsCompound reports whether the solid has constituent components.
func (s *sdfxSolid) IsCompound() bool {
	return s.kind != kindPlain
}

// Children returns the compound's parts or the voxel components of a
// boolean result.
func (s *sdfxSolid) Children() []kernel.Solid {
	switch s.kind {
	case kindCompound:
		return s.parts
	case kindSplit:
		s.analyze()
		return s.comps
	}
	return nil
}

func (s *sdfxSolid) analyze() {
	s.once.Do(func() {
		if s.kind == kindCompound {
			for _, p := range s.parts {
				s.vol += p.Volume()
			}
			return
		}
		g := sampleGrid(s.s, s.cells)
		s.vol = g.volume()
		if s.kind != kindSplit {
			return
		}
		labels, comps := g.label()
		s.comps = make([]kernel.Solid, 0, len(comps))
		for _, c := range comps {
			m := &maskSDF{parent: s.s, g: g, labels: labels, label: c.label, bb: g.componentBox(c)}
			child := &sdfxSolid{s: m, kind: kindPlain, cells: s.cells}
			vol := float64(c.count) * g.cellVolume()
			child.once.Do(func() { child.vol = vol })
			s.comps = append(s.comps, child)
		}
	})
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	meshCells   int
	volumeCells int
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes resolution.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.meshCells = n
		}
	}
}

// WithVolumeCells sets the voxel resolution for volume queries.
func WithVolumeCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.volumeCells = n
		}
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{meshCells: DefaultMeshCells, volumeCells: DefaultVolumeCells}
	for _, o := range opts {
		o(k)
	}
	return k
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

func (k *SdfxKernel) wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s, kind: kindPlain, cells: k.volumeCells}
}

// Box creates a box with the given dimensions. The resulting solid has its
// minimum corner at the origin (0,0,0) so that placement translations work
// intuitively. sdf.Box3D centers the box at the origin, so we translate by
// half-dimensions.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return k.wrap(sdf.Transform3D(s, m))
}

// Cylinder creates a cylinder with the given height and radius, centered
// at the origin. The segments parameter is ignored since SDF represents
// smooth surfaces.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return k.wrap(s)
}

// Sphere creates a sphere centered at the origin.
func (k *SdfxKernel) Sphere(radius float64) kernel.Solid {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Sphere3D: %v", err))
	}
	return k.wrap(s)
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return k.wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// MultiUnion fuses all given solids in a single union.
func (k *SdfxKernel) MultiUnion(first kernel.Solid, rest ...kernel.Solid) kernel.Solid {
	if len(rest) == 0 {
		return first
	}
	all := make([]sdf.SDF3, 0, len(rest)+1)
	all = append(all, unwrap(first))
	for _, s := range rest {
		all = append(all, unwrap(s))
	}
	return k.wrap(sdf.Union3D(all...))
}

// Difference returns the difference a - b. The result is a compound whose
// children are its connected pieces.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return &sdfxSolid{
		s:     sdf.Difference3D(unwrap(a), unwrap(b)),
		kind:  kindSplit,
		cells: k.volumeCells,
	}
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return k.wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Compound groups solids without fusing them. Rendering draws the union
// of the parts; Volume sums the parts.
func (k *SdfxKernel) Compound(solids ...kernel.Solid) kernel.Solid {
	parts := make([]kernel.Solid, len(solids))
	copy(parts, solids)
	fields := make([]sdf.SDF3, len(solids))
	for i, s := range solids {
		fields[i] = unwrap(s)
	}
	return &sdfxSolid{
		s:     sdf.Union3D(fields...),
		kind:  kindCompound,
		parts: parts,
		cells: k.volumeCells,
	}
}

// Refine flattens a compound into a single fused solid. Distance field
// unions have no internal faces, so there is nothing else to remove.
func (k *SdfxKernel) Refine(s kernel.Solid) kernel.Solid {
	if !s.IsCompound() {
		return s
	}
	return k.wrap(unwrap(s))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return k.wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return k.wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	if s == nil {
		return nil, fmt.Errorf("sdfx: ToMesh: nil solid")
	}
	if s.Volume() == 0 {
		return &kernel.Mesh{}, nil
	}

	triangles := render.ToTriangles(unwrap(s), render.NewMarchingCubesUniform(k.meshCells))

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
