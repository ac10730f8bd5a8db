// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, manifold) provide solid modeling and
// boolean operations behind this interface. The kernel abstraction
// allows swapping backends without changing the join features built on it.
package kernel

import "fmt"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)

	// Volume returns the enclosed volume in cubic model units.
	// For a compound this is the sum of its children's volumes.
	Volume() float64

	// IsCompound reports whether the solid is an aggregate of
	// disjoint sub-solids (for example the result of a cut that
	// split its base into pieces).
	IsCompound() bool

	// Children returns the constituent components of a compound.
	// It returns nil for a plain solid.
	Children() []Solid
}

// Kernel is the abstract geometry kernel interface.
// Implementations (sdfx, manifold) provide solid modeling behind this interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid
	Sphere(radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid // cut: a minus b
	Intersection(a, b Solid) Solid
	MultiUnion(first Solid, rest ...Solid) Solid

	// Compound returns the disjoint union of the given solids without
	// any boolean computation.
	Compound(solids ...Solid) Solid

	// Refine removes redundant internal seams (splitter faces) from a
	// boolean result.
	Refine(s Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Format is a solid export file format.
type Format string

const (
	FormatSTL Format = "stl"
	Format3MF Format = "3mf"
)

// ParseFormat converts a file format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatSTL, Format3MF:
		return Format(s), nil
	}
	return "", fmt.Errorf("kernel: unknown export format %q, expected stl or 3mf", s)
}

// Exporter is implemented by kernels that can write a solid to disk.
type Exporter interface {
	Export(s Solid, path string, format Format) error
}

// Leaves returns the plain (non-compound) solids making up s, descending
// into nested compounds depth first.
func Leaves(s Solid) []Solid {
	if !s.IsCompound() {
		return []Solid{s}
	}
	var out []Solid
	for _, c := range s.Children() {
		out = append(out, Leaves(c)...)
	}
	return out
}
