package join

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/chazu/joinery/pkg/kernel"
)

// Source is a handle to a previously computed solid, typically another
// document object.
type Source interface {
	Solid() (kernel.Solid, error)
}

// SolidSource adapts a plain solid to Source.
type SolidSource struct {
	S kernel.Solid
}

func (s SolidSource) Solid() (kernel.Solid, error) {
	if s.S == nil {
		return nil, errors.New("join: empty solid source")
	}
	return s.S, nil
}

// Config is the full parameter set of a join feature.
type Config struct {
	Mode       Mode
	Base       Source
	Tool       Source
	Refine     bool
	Degenerate DegeneratePolicy
}

// Validate reports the first problem that would prevent execution.
func (c Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidConfig, int(c.Mode))
	}
	if c.Base == nil {
		return fmt.Errorf("%w: base is not set", ErrInvalidConfig)
	}
	if c.Tool == nil {
		return fmt.Errorf("%w: tool is not set", ErrInvalidConfig)
	}
	if sameSource(c.Base, c.Tool) {
		return fmt.Errorf("%w: base and tool are the same object", ErrInvalidConfig)
	}
	if c.Degenerate < DegenerateKernel || c.Degenerate > DegenerateSkip {
		return fmt.Errorf("%w: unknown degenerate policy %d", ErrInvalidConfig, int(c.Degenerate))
	}
	return nil
}

func sameSource(a, b Source) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}

// Feature is a parametric join object. Its output slot holds the result
// of the last successful Execute.
type Feature struct {
	name string
	cfg  Config

	mu  sync.Mutex
	out kernel.Solid
}

// NewFeature validates cfg and returns a feature with an empty output.
func NewFeature(name string, cfg Config) (*Feature, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: feature name is empty", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("feature %q: %w", name, err)
	}
	return &Feature{name: name, cfg: cfg}, nil
}

func (f *Feature) Name() string   { return f.name }
func (f *Feature) Config() Config { return f.cfg }

// Output returns the last successful result, or nil if there is none.
func (f *Feature) Output() kernel.Solid {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out
}

// SetOutput seeds the output slot, for example with a result kept from a
// previous evaluation of the same object.
func (f *Feature) SetOutput(s kernel.Solid) {
	f.mu.Lock()
	f.out = s
	f.mu.Unlock()
}

// Execute resolves the operands and runs the recipe. On success the
// result replaces the output slot. On failure the slot is left unchanged.
func (f *Feature) Execute(k kernel.Kernel) (kernel.Solid, error) {
	base, err := f.cfg.Base.Solid()
	if err != nil {
		return nil, fmt.Errorf("feature %q: base: %w", f.name, err)
	}
	tool, err := f.cfg.Tool.Solid()
	if err != nil {
		return nil, fmt.Errorf("feature %q: tool: %w", f.name, err)
	}

	out, err := Combine(k, base, tool, f.cfg.Mode, Options{
		Refine:     f.cfg.Refine,
		Degenerate: f.cfg.Degenerate,
	})
	if err != nil {
		return nil, fmt.Errorf("feature %q: %w", f.name, err)
	}

	f.SetOutput(out)
	return out, nil
}
