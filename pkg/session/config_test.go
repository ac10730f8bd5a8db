package session

import (
	"testing"
	"time"

	"github.com/chazu/joinery/pkg/config"
	"github.com/chazu/joinery/pkg/engine"
	"github.com/chazu/joinery/pkg/join"
	"github.com/chazu/joinery/pkg/kernel/sdfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEngineOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Join.RefineModel = true
	cfg.Join.Degenerate = "skip"
	cfg.Engine.Timeout = 2 * time.Second

	opts, err := EngineOptions(*cfg)
	require.NoError(t, err)
	assert.Equal(t, engine.Options{RefineDefault: true, Degenerate: join.DegenerateSkip, Timeout: 2 * time.Second}, opts)

	cfg.Join.Degenerate = "sometimes"
	_, err = EngineOptions(*cfg)
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	s, err := FromConfig(*config.Default(), sdfx.New(), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, s.HasActiveDocument())
}
