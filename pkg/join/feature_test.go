package join

import (
	"errors"
	"testing"

	"github.com/chazu/joinery/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errSource struct{ err error }

func (e errSource) Solid() (kernel.Solid, error) { return nil, e.err }

func TestConfigValidate(t *testing.T) {
	base := SolidSource{S: solid("base", 1)}
	tool := SolidSource{S: solid("tool", 1)}

	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", Config{Mode: Connect, Base: base, Tool: tool}, true},
		{"bad mode", Config{Mode: Mode(8), Base: base, Tool: tool}, false},
		{"no base", Config{Mode: Embed, Tool: tool}, false},
		{"no tool", Config{Mode: Embed, Base: base}, false},
		{"same object", Config{Mode: Cutout, Base: base, Tool: base}, false},
		{"bad policy", Config{Mode: Cutout, Base: base, Tool: tool, Degenerate: DegeneratePolicy(5)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewFeature(t *testing.T) {
	cfg := Config{Mode: Embed, Base: SolidSource{S: solid("b", 1)}, Tool: SolidSource{S: solid("t", 1)}, Refine: true}
	f, err := NewFeature("Embed", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Embed", f.Name())
	assert.Equal(t, cfg, f.Config())
	assert.Nil(t, f.Output())

	_, err = NewFeature("", cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFeatureExecuteStoresOutput(t *testing.T) {
	k := newFakeKernel()
	f, err := NewFeature("Cutout", Config{
		Mode: Cutout,
		Base: SolidSource{S: solid("base", 10)},
		Tool: SolidSource{S: solid("tool", 3)},
	})
	require.NoError(t, err)

	out, err := f.Execute(k)
	require.NoError(t, err)
	assert.Same(t, out, f.Output())
}

func TestFeatureFailureKeepsPreviousOutput(t *testing.T) {
	k := newFakeKernel()
	k.diff["base-tool"] = compound("split", 4, 4)
	f, err := NewFeature("Cutout", Config{
		Mode: Cutout,
		Base: SolidSource{S: solid("base", 10)},
		Tool: SolidSource{S: solid("tool", 2)},
	})
	require.NoError(t, err)

	previous := solid("previous", 9)
	f.SetOutput(previous)

	out, err := f.Execute(k)
	require.ErrorIs(t, err, ErrAmbiguousVolume)
	assert.Contains(t, err.Error(), `feature "Cutout"`)
	assert.Nil(t, out)
	assert.Same(t, previous, f.Output())
}

func TestFeatureSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	f, err := NewFeature("Connect", Config{
		Mode: Connect,
		Base: errSource{err: boom},
		Tool: SolidSource{S: solid("tool", 1)},
	})
	require.NoError(t, err)

	_, err = f.Execute(newFakeKernel())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "base")

	_, err = SolidSource{}.Solid()
	assert.Error(t, err)
}
