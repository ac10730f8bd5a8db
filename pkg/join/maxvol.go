package join

import (
	"math"

	"github.com/chazu/joinery/pkg/kernel"
)

// VolumeTolerance is the absolute tolerance for comparing piece volumes.
const VolumeTolerance = 1e-8

// ShapeOfMaxVol returns the child of a compound with the largest volume.
// A non-compound solid is returned unchanged.
//
// Volumes within VolumeTolerance of the running maximum count as ties. A
// tie for the largest volume returns *AmbiguousVolumeError. A compound with
// no child of volume greater than zero returns ErrEmptyShape.
func ShapeOfMaxVol(s kernel.Solid) (kernel.Solid, error) {
	if s == nil {
		return nil, ErrEmptyShape
	}
	if !s.IsCompound() {
		return s, nil
	}

	var (
		best  kernel.Solid
		max   float64
		count int
	)
	for _, child := range s.Children() {
		v := child.Volume()
		switch {
		case v > max+VolumeTolerance:
			best, max, count = child, v, 1
		case math.Abs(v-max) <= VolumeTolerance:
			count++
		}
	}

	if best == nil {
		return nil, ErrEmptyShape
	}
	if count > 1 {
		return nil, &AmbiguousVolumeError{Volume: max, Count: count}
	}
	return best, nil
}
