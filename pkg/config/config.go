// Package config loads joinery settings from YAML.
//
// Every setting has a default, so an empty or missing file is valid.
// Values are injected into the kernel, engine and session explicitly;
// nothing reads configuration from global state.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chazu/joinery/pkg/join"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Kernel KernelConfig `yaml:"kernel"`
	Join   JoinConfig   `yaml:"join"`
	Engine EngineConfig `yaml:"engine"`
	Log    LogConfig    `yaml:"log"`
}

// KernelConfig selects and tunes the geometry backend.
type KernelConfig struct {
	// Backend is "sdfx" or "manifold".
	Backend string `yaml:"backend"`
	// MeshCells is the marching cubes resolution (sdfx only).
	MeshCells int `yaml:"mesh_cells"`
	// VolumeCells is the voxel resolution for volume and decomposition
	// queries (sdfx only).
	VolumeCells int `yaml:"volume_cells"`
}

// JoinConfig holds defaults applied when join features are created.
type JoinConfig struct {
	// RefineModel is the preference copied into the Refine flag of every
	// newly created join feature. Existing features keep their own flag.
	RefineModel bool `yaml:"refine_model"`
	// Degenerate names the policy for empty cut pieces and non-overlapping
	// inputs: "kernel", "fail" or "skip".
	Degenerate string `yaml:"degenerate"`
}

// EngineConfig tunes script evaluation.
type EngineConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Backend names.
const (
	BackendSdfx     = "sdfx"
	BackendManifold = "manifold"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Kernel: KernelConfig{
			Backend:     BackendSdfx,
			MeshCells:   200,
			VolumeCells: 64,
		},
		Join: JoinConfig{
			RefineModel: false,
			Degenerate:  "kernel",
		},
		Engine: EngineConfig{
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the
// defaults when path is empty; a named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	switch c.Kernel.Backend {
	case BackendSdfx, BackendManifold:
	default:
		errs = append(errs, fmt.Errorf("kernel.backend %q: expected %s or %s", c.Kernel.Backend, BackendSdfx, BackendManifold))
	}
	if c.Kernel.MeshCells <= 0 {
		errs = append(errs, fmt.Errorf("kernel.mesh_cells must be positive, got %d", c.Kernel.MeshCells))
	}
	if c.Kernel.VolumeCells <= 0 {
		errs = append(errs, fmt.Errorf("kernel.volume_cells must be positive, got %d", c.Kernel.VolumeCells))
	}
	if _, err := join.ParseDegeneratePolicy(c.Join.Degenerate); err != nil {
		errs = append(errs, fmt.Errorf("join.degenerate: %w", err))
	}
	if c.Engine.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("engine.timeout must be positive, got %s", c.Engine.Timeout))
	}
	return errors.Join(errs...)
}
