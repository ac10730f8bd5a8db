package join

import (
	"errors"
	"fmt"

	"github.com/chazu/joinery/pkg/kernel"
)

// Options tunes a single Combine call.
type Options struct {
	// Refine applies the kernel's splitter removal to the result.
	// It has no effect on Bypass.
	Refine bool
	// Degenerate decides how empty pieces and non-overlapping operands
	// are handled.
	Degenerate DegeneratePolicy
}

// Combine applies mode's recipe to base and tool and returns the result.
// Inputs are never modified. Any failing step aborts the recipe.
func Combine(k kernel.Kernel, base, tool kernel.Solid, mode Mode, opts Options) (kernel.Solid, error) {
	if k == nil {
		return nil, fmt.Errorf("%w: nil kernel", ErrInvalidConfig)
	}
	if base == nil || tool == nil {
		return nil, fmt.Errorf("%w: base and tool are required", ErrInvalidConfig)
	}

	var (
		out kernel.Solid
		err error
	)
	switch mode {
	case Bypass:
		return k.Compound(base, tool), nil
	case Cutout:
		out, err = cutout(k, base, tool, opts.Degenerate)
	case Embed:
		out, err = embed(k, base, tool, opts.Degenerate)
	case Connect:
		out, err = connect(k, base, tool, opts.Degenerate)
	default:
		return nil, fmt.Errorf("%w: unknown mode %s", ErrInvalidConfig, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mode, err)
	}

	if opts.Refine {
		out = k.Refine(out)
	}
	return out, nil
}

func cutout(k kernel.Kernel, base, tool kernel.Solid, policy DegeneratePolicy) (kernel.Solid, error) {
	cut1, err := mainPiece(k.Difference(base, tool), "base - tool", policy)
	if err != nil {
		return nil, err
	}
	if cut1 == nil {
		return nil, fmt.Errorf("%w: cutting the tool removes the whole base", ErrDegenerateInput)
	}
	return cut1, nil
}

func embed(k kernel.Kernel, base, tool kernel.Solid, policy DegeneratePolicy) (kernel.Solid, error) {
	cut1, err := mainPiece(k.Difference(base, tool), "base - tool", policy)
	if err != nil {
		return nil, err
	}
	if policy == DegenerateFail {
		if err := requireOverlap(k, base, tool); err != nil {
			return nil, err
		}
	}
	if cut1 == nil {
		return tool, nil
	}
	return k.Union(cut1, tool), nil
}

func connect(k kernel.Kernel, base, tool kernel.Solid, policy DegeneratePolicy) (kernel.Solid, error) {
	cut1, err := mainPiece(k.Difference(base, tool), "base - tool", policy)
	if err != nil {
		return nil, err
	}
	cut2, err := mainPiece(k.Difference(tool, base), "tool - base", policy)
	if err != nil {
		return nil, err
	}
	common := k.Intersection(base, tool)

	switch policy {
	case DegenerateFail:
		if isEmpty(common) {
			return nil, fmt.Errorf("%w: base and tool do not overlap", ErrDegenerateInput)
		}
	case DegenerateSkip:
		if isEmpty(common) {
			common = nil
		}
	}
	return fuse(k, cut1, cut2, common)
}

// mainPiece disambiguates a cut result. Under DegenerateSkip an empty
// result yields a nil solid and no error.
func mainPiece(cut kernel.Solid, what string, policy DegeneratePolicy) (kernel.Solid, error) {
	piece, err := ShapeOfMaxVol(cut)
	if err == nil && isEmpty(piece) && policy != DegenerateKernel {
		err = ErrEmptyShape
	}
	if err == nil {
		return piece, nil
	}
	if !errors.Is(err, ErrEmptyShape) {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	switch policy {
	case DegenerateFail:
		return nil, fmt.Errorf("%w: %s is empty", ErrDegenerateInput, what)
	case DegenerateSkip:
		return nil, nil
	}
	return nil, fmt.Errorf("%s: %w", what, err)
}

func requireOverlap(k kernel.Kernel, base, tool kernel.Solid) error {
	if isEmpty(k.Intersection(base, tool)) {
		return fmt.Errorf("%w: base and tool do not overlap", ErrDegenerateInput)
	}
	return nil
}

// fuse unions the non-nil solids in a single multi-way fuse.
func fuse(k kernel.Kernel, solids ...kernel.Solid) (kernel.Solid, error) {
	parts := make([]kernel.Solid, 0, len(solids))
	for _, s := range solids {
		if s != nil {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: nothing left to fuse", ErrDegenerateInput)
	}
	return k.MultiUnion(parts[0], parts[1:]...), nil
}

func isEmpty(s kernel.Solid) bool {
	return s == nil || s.Volume() <= VolumeTolerance
}
