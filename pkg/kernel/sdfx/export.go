package sdfx

import (
	"fmt"

	"github.com/chazu/joinery/pkg/kernel"
	"github.com/deadsy/sdfx/render"
)

// Export writes a solid to path. STL output goes through SaveSTL so write
// errors are reported; 3MF output is rendered by sdfx's go3mf writer.
func (k *SdfxKernel) Export(s kernel.Solid, path string, format kernel.Format) error {
	if s == nil {
		return fmt.Errorf("sdfx: export %s: nil solid", path)
	}
	renderer := render.NewMarchingCubesUniform(k.meshCells)

	switch format {
	case kernel.FormatSTL:
		triangles := render.ToTriangles(unwrap(s), renderer)
		if err := render.SaveSTL(path, triangles); err != nil {
			return fmt.Errorf("sdfx: export %s: %w", path, err)
		}
		return nil
	case kernel.Format3MF:
		render.To3MF(unwrap(s), path, renderer)
		return nil
	}
	return fmt.Errorf("sdfx: export %s: unsupported format %q", path, format)
}
