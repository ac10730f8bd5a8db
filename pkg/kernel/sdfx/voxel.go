package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// grid is an inside/outside sampling of an SDF that tiles its bounding box
// exactly. Cell (i,j,k) is inside when the SDF is negative at the cell center.
type grid struct {
	start      v3.Vec // minimum corner of cell (0,0,0)
	step       v3.Vec // cell size per axis
	nx, ny, nz int
	inside     []bool
	count      int
}

// sampleGrid samples s with cells along the longest bounding box axis and
// roughly cubic cells on the other axes. A degenerate bounding box yields an
// empty grid.
func sampleGrid(s sdf.SDF3, cells int) *grid {
	bb := s.BoundingBox()
	size := bb.Max.Sub(bb.Min)
	if !(size.X > 0 && size.Y > 0 && size.Z > 0) {
		return &grid{}
	}
	longest := math.Max(size.X, math.Max(size.Y, size.Z))
	target := longest / float64(cells)

	g := &grid{
		start: bb.Min,
		nx:    cellsFor(size.X, target),
		ny:    cellsFor(size.Y, target),
		nz:    cellsFor(size.Z, target),
	}
	g.step = v3.Vec{
		X: size.X / float64(g.nx),
		Y: size.Y / float64(g.ny),
		Z: size.Z / float64(g.nz),
	}

	g.inside = make([]bool, g.nx*g.ny*g.nz)
	for k := 0; k < g.nz; k++ {
		for j := 0; j < g.ny; j++ {
			for i := 0; i < g.nx; i++ {
				if s.Evaluate(g.center(i, j, k)) < 0 {
					g.inside[g.idx(i, j, k)] = true
					g.count++
				}
			}
		}
	}
	return g
}

func cellsFor(extent, target float64) int {
	n := int(math.Round(extent / target))
	if n < 1 {
		n = 1
	}
	return n
}

func (g *grid) idx(i, j, k int) int {
	return (k*g.ny+j)*g.nx + i
}

func (g *grid) center(i, j, k int) v3.Vec {
	return v3.Vec{
		X: g.start.X + (float64(i)+0.5)*g.step.X,
		Y: g.start.Y + (float64(j)+0.5)*g.step.Y,
		Z: g.start.Z + (float64(k)+0.5)*g.step.Z,
	}
}

// cellOf returns the cell containing p, or ok=false outside the lattice.
func (g *grid) cellOf(p v3.Vec) (i, j, k int, ok bool) {
	if g.inside == nil {
		return 0, 0, 0, false
	}
	i = int(math.Floor((p.X - g.start.X) / g.step.X))
	j = int(math.Floor((p.Y - g.start.Y) / g.step.Y))
	k = int(math.Floor((p.Z - g.start.Z) / g.step.Z))
	ok = i >= 0 && j >= 0 && k >= 0 && i < g.nx && j < g.ny && k < g.nz
	return i, j, k, ok
}

func (g *grid) cellVolume() float64 {
	return g.step.X * g.step.Y * g.step.Z
}

// minStep is the smallest cell edge.
func (g *grid) minStep() float64 {
	return math.Min(g.step.X, math.Min(g.step.Y, g.step.Z))
}

func (g *grid) volume() float64 {
	return float64(g.count) * g.cellVolume()
}

// component is one 6-connected region of inside cells.
type component struct {
	label    int32
	count    int
	min, max [3]int // inclusive cell index bounds
}

// label assigns a component label (1-based) to every inside cell.
// Components are numbered in scan order, so labelling is deterministic.
func (g *grid) label() ([]int32, []component) {
	labels := make([]int32, len(g.inside))
	var comps []component
	var queue [][3]int

	neighbors := [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}

	for k := 0; k < g.nz; k++ {
		for j := 0; j < g.ny; j++ {
			for i := 0; i < g.nx; i++ {
				start := g.idx(i, j, k)
				if !g.inside[start] || labels[start] != 0 {
					continue
				}
				c := component{
					label: int32(len(comps) + 1),
					min:   [3]int{i, j, k},
					max:   [3]int{i, j, k},
				}
				labels[start] = c.label
				queue = append(queue[:0], [3]int{i, j, k})
				for len(queue) > 0 {
					cur := queue[len(queue)-1]
					queue = queue[:len(queue)-1]
					c.count++
					for a := 0; a < 3; a++ {
						if cur[a] < c.min[a] {
							c.min[a] = cur[a]
						}
						if cur[a] > c.max[a] {
							c.max[a] = cur[a]
						}
					}
					for _, d := range neighbors {
						ni, nj, nk := cur[0]+d[0], cur[1]+d[1], cur[2]+d[2]
						if ni < 0 || nj < 0 || nk < 0 || ni >= g.nx || nj >= g.ny || nk >= g.nz {
							continue
						}
						n := g.idx(ni, nj, nk)
						if g.inside[n] && labels[n] == 0 {
							labels[n] = c.label
							queue = append(queue, [3]int{ni, nj, nk})
						}
					}
				}
				comps = append(comps, c)
			}
		}
	}
	return labels, comps
}

// maskSDF restricts a parent SDF to one labelled component. Points in cells
// owned by another component evaluate as outside.
type maskSDF struct {
	parent sdf.SDF3
	g      *grid
	labels []int32
	label  int32
	bb     sdf.Box3
}

// Evaluate returns the parent distance near the component and a positive
// distance elsewhere.
func (m *maskSDF) Evaluate(p v3.Vec) float64 {
	d := m.parent.Evaluate(p)
	i, j, k, ok := m.g.cellOf(p)
	if !ok {
		return d
	}
	switch m.labels[m.g.idx(i, j, k)] {
	case m.label:
		return d
	case 0:
		if m.touches(i, j, k) {
			return d
		}
	}
	return math.Max(d, m.g.minStep())
}

// touches reports whether any cell in the 26-neighborhood carries the label.
func (m *maskSDF) touches(i, j, k int) bool {
	g := m.g
	for dk := -1; dk <= 1; dk++ {
		for dj := -1; dj <= 1; dj++ {
			for di := -1; di <= 1; di++ {
				ni, nj, nk := i+di, j+dj, k+dk
				if ni < 0 || nj < 0 || nk < 0 || ni >= g.nx || nj >= g.ny || nk >= g.nz {
					continue
				}
				if m.labels[g.idx(ni, nj, nk)] == m.label {
					return true
				}
			}
		}
	}
	return false
}

// BoundingBox returns the component's cell bounds grown by one cell.
func (m *maskSDF) BoundingBox() sdf.Box3 {
	return m.bb
}

// componentBox converts a component's cell bounds to model space.
func (g *grid) componentBox(c component) sdf.Box3 {
	lo := g.center(c.min[0]-1, c.min[1]-1, c.min[2]-1)
	hi := g.center(c.max[0]+1, c.max[1]+1, c.max[2]+1)
	half := g.step.MulScalar(0.5)
	return sdf.Box3{Min: lo.Sub(half), Max: hi.Add(half)}
}
