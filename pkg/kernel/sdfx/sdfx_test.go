package sdfx

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/joinery/pkg/kernel"
)

// volumeTol is generous: volumes are voxel estimates.
func approx(got, want, relTol float64) bool {
	return math.Abs(got-want) <= relTol*math.Abs(want)
}

func TestBox(t *testing.T) {
	k := New()
	box := k.Box(100, 50, 25)
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
}

func TestBoundingBox(t *testing.T) {
	k := New()
	box := k.Box(100, 50, 25)
	min, max := box.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{0, 0, 0}
	expectMax := [3]float64{100, 50, 25}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	box := k.Box(10, 10, 10)
	translated := k.Translate(box, 100, 200, 300)

	min, max := translated.BoundingBox()

	const tol = 0.5
	expectMin := [3]float64{100, 200, 300}
	expectMax := [3]float64{110, 210, 310}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestBoxVolume(t *testing.T) {
	k := New()
	box := k.Box(100, 50, 25)
	if got, want := box.Volume(), 100.0*50*25; !approx(got, want, 0.02) {
		t.Errorf("Volume() = %f, want ~%f", got, want)
	}
	if box.IsCompound() {
		t.Error("plain box should not be a compound")
	}
	if box.Children() != nil {
		t.Error("plain box should have no children")
	}
}

func TestSphereVolume(t *testing.T) {
	k := New()
	s := k.Sphere(10)
	want := 4.0 / 3.0 * math.Pi * 1000
	if got := s.Volume(); !approx(got, want, 0.05) {
		t.Errorf("Volume() = %f, want ~%f", got, want)
	}
}

func TestDifferenceSingleComponent(t *testing.T) {
	k := New()
	base := k.Box(100, 100, 100)
	// Tool fully outside the base: nothing is removed.
	tool := k.Translate(k.Box(10, 10, 10), 200, 0, 0)

	cut := k.Difference(base, tool)
	if !cut.IsCompound() {
		t.Fatal("difference result should be a compound")
	}
	children := cut.Children()
	if len(children) != 1 {
		t.Fatalf("children = %d, want 1", len(children))
	}
	if !approx(children[0].Volume(), base.Volume(), 1e-9) {
		t.Errorf("child volume = %f, want base volume %f", children[0].Volume(), base.Volume())
	}
}

func TestDifferenceSplitsIntoPieces(t *testing.T) {
	k := New()
	base := k.Box(100, 20, 20)
	// A slab crossing the base splits it into a 30mm and a 60mm piece.
	tool := k.Translate(k.Box(10, 40, 40), 30, -10, -10)

	cut := k.Difference(base, tool)
	children := cut.Children()
	if len(children) != 2 {
		t.Fatalf("children = %d, want 2", len(children))
	}
	small, large := children[0].Volume(), children[1].Volume()
	if small > large {
		small, large = large, small
	}
	if !approx(small, 30*20*20, 0.1) {
		t.Errorf("small piece volume = %f, want ~%f", small, 30.0*20*20)
	}
	if !approx(large, 60*20*20, 0.1) {
		t.Errorf("large piece volume = %f, want ~%f", large, 60.0*20*20)
	}
	if !approx(cut.Volume(), small+large, 1e-9) {
		t.Errorf("compound volume = %f, want sum of pieces %f", cut.Volume(), small+large)
	}
}

func TestDifferenceSymmetricSplitHasEqualPieces(t *testing.T) {
	k := New()
	base := k.Box(100, 20, 20)
	tool := k.Translate(k.Box(10, 40, 40), 45, -10, -10)

	children := k.Difference(base, tool).Children()
	if len(children) != 2 {
		t.Fatalf("children = %d, want 2", len(children))
	}
	if children[0].Volume() != children[1].Volume() {
		t.Errorf("symmetric pieces differ: %f vs %f", children[0].Volume(), children[1].Volume())
	}
}

func TestDifferenceEmpty(t *testing.T) {
	k := New()
	base := k.Box(10, 10, 10)
	tool := k.Translate(k.Box(30, 30, 30), -10, -10, -10)

	cut := k.Difference(base, tool)
	if n := len(cut.Children()); n != 0 {
		t.Errorf("children = %d, want 0 for a fully removed base", n)
	}
	if cut.Volume() != 0 {
		t.Errorf("Volume() = %f, want 0", cut.Volume())
	}
}

func TestCompound(t *testing.T) {
	k := New()
	a := k.Box(10, 10, 10)
	b := k.Translate(k.Box(10, 10, 10), 5, 0, 0) // overlapping on purpose
	c := k.Compound(a, b)

	if !c.IsCompound() {
		t.Fatal("Compound() should be a compound")
	}
	if len(c.Children()) != 2 {
		t.Fatalf("children = %d, want 2", len(c.Children()))
	}
	if !approx(c.Volume(), a.Volume()+b.Volume(), 1e-9) {
		t.Errorf("compound volume = %f, want sum %f", c.Volume(), a.Volume()+b.Volume())
	}
}

func TestRefineFlattensCompound(t *testing.T) {
	k := New()
	c := k.Compound(k.Box(10, 10, 10), k.Translate(k.Box(10, 10, 10), 20, 0, 0))
	r := k.Refine(c)
	if r.IsCompound() {
		t.Error("refined solid should not be a compound")
	}

	plain := k.Box(5, 5, 5)
	if k.Refine(plain) != plain {
		t.Error("Refine of a plain solid should return it unchanged")
	}
}

func TestMultiUnion(t *testing.T) {
	k := New()
	a := k.Box(10, 10, 10)
	b := k.Translate(k.Box(10, 10, 10), 10, 0, 0)
	c := k.Translate(k.Box(10, 10, 10), 20, 0, 0)

	u := k.MultiUnion(a, b, c)
	if u.IsCompound() {
		t.Error("fused solid should not be a compound")
	}
	if !approx(u.Volume(), 3000, 0.05) {
		t.Errorf("Volume() = %f, want ~3000", u.Volume())
	}
	if k.MultiUnion(a) != a {
		t.Error("MultiUnion of a single solid should return it")
	}
}

func TestIntersectionVolume(t *testing.T) {
	k := New()
	box1 := k.Box(100, 100, 100)
	box2 := k.Translate(k.Box(100, 100, 100), 50, 0, 0)
	inter := k.Intersection(box1, box2)
	if !approx(inter.Volume(), 50*100*100, 0.05) {
		t.Errorf("Volume() = %f, want ~%f", inter.Volume(), 50.0*100*100)
	}
}

func TestComponentMesh(t *testing.T) {
	k := New(WithMeshCells(64))
	base := k.Box(100, 20, 20)
	tool := k.Translate(k.Box(10, 40, 40), 30, -10, -10)

	for i, child := range k.Difference(base, tool).Children() {
		mesh, err := k.ToMesh(child)
		if err != nil {
			t.Fatalf("ToMesh(child %d) failed: %v", i, err)
		}
		if mesh.IsEmpty() {
			t.Errorf("child %d mesh is empty", i)
		}
	}
}

func TestToMeshEmptySolid(t *testing.T) {
	k := New()
	base := k.Box(10, 10, 10)
	tool := k.Translate(k.Box(30, 30, 30), -10, -10, -10)
	mesh, err := k.ToMesh(k.Difference(base, tool))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if !mesh.IsEmpty() {
		t.Error("expected empty mesh for an empty solid")
	}
}

func TestExportSTL(t *testing.T) {
	k := New(WithMeshCells(32))
	path := filepath.Join(t.TempDir(), "box.stl")
	if err := k.Export(k.Box(10, 10, 10), path, kernel.FormatSTL); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("exported STL is empty")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	k := New()
	err := k.Export(k.Box(1, 1, 1), filepath.Join(t.TempDir(), "x"), kernel.Format("obj"))
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestOptions(t *testing.T) {
	k := New(WithMeshCells(10), WithVolumeCells(8), WithMeshCells(-1))
	if k.meshCells != 10 {
		t.Errorf("meshCells = %d, want 10", k.meshCells)
	}
	if k.volumeCells != 8 {
		t.Errorf("volumeCells = %d, want 8", k.volumeCells)
	}
}
