package join

import (
	"errors"
	"fmt"
)

var (
	// ErrAmbiguousVolume is returned when two or more pieces of a cut
	// tie for the largest volume.
	ErrAmbiguousVolume = errors.New("join: ambiguous choice between pieces of equal volume")

	// ErrEmptyShape is returned when a compound has no piece with
	// positive volume.
	ErrEmptyShape = errors.New("join: compound has no piece with positive volume")

	// ErrDegenerateInput is returned under DegenerateFail (or
	// DegenerateSkip with nothing left) when an operand or an
	// intermediate result is empty.
	ErrDegenerateInput = errors.New("join: degenerate input")

	// ErrInvalidConfig is returned when a feature's configuration is
	// incomplete or inconsistent.
	ErrInvalidConfig = errors.New("join: invalid configuration")
)

// AmbiguousVolumeError carries the tied volume and how many pieces share it.
type AmbiguousVolumeError struct {
	Volume float64
	Count  int
}

func (e *AmbiguousVolumeError) Error() string {
	return fmt.Sprintf("join: ambiguous choice between %d pieces of equal volume %g", e.Count, e.Volume)
}

func (e *AmbiguousVolumeError) Unwrap() error {
	return ErrAmbiguousVolume
}
