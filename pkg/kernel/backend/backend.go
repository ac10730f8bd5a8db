// Package backend opens the geometry kernel named in the configuration.
package backend

import (
	"fmt"

	"github.com/chazu/joinery/pkg/config"
	"github.com/chazu/joinery/pkg/kernel"
	"github.com/chazu/joinery/pkg/kernel/manifold"
	"github.com/chazu/joinery/pkg/kernel/sdfx"
)

// Open returns the kernel selected by cfg.Backend.
func Open(cfg config.KernelConfig) (kernel.Kernel, error) {
	switch cfg.Backend {
	case config.BackendSdfx, "":
		return sdfx.New(sdfx.WithMeshCells(cfg.MeshCells), sdfx.WithVolumeCells(cfg.VolumeCells)), nil
	case config.BackendManifold:
		k, err := manifold.New()
		if err != nil {
			return nil, fmt.Errorf("backend: %w", err)
		}
		return k, nil
	}
	return nil, fmt.Errorf("backend: unknown kernel %q", cfg.Backend)
}
