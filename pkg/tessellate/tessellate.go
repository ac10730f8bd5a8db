// Package tessellate converts recomputed document objects into triangle
// meshes for display.
package tessellate

import (
	"context"
	"fmt"
	"runtime"

	"github.com/chazu/joinery/pkg/graph"
	"github.com/chazu/joinery/pkg/kernel"
	"github.com/chazu/joinery/pkg/recompute"
	"golang.org/x/sync/errgroup"
)

// Tessellate meshes every displayed object of res, in document order.
//
// An object is displayed when it is not hidden, has a solid, and is not
// already drawn as a member of a displayed assembly. Objects whose solid is
// the stale output of a failed recompute yield meshes with Stale set.
// Empty solids produce no mesh. Meshing runs in parallel, bounded by the
// number of CPUs.
func Tessellate(ctx context.Context, res *recompute.Result, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if res == nil || res.Graph == nil {
		return nil, nil
	}

	objects := Displayed(res)
	meshes := make([]*kernel.Mesh, len(objects))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, o := range objects {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := k.ToMesh(o.Solid)
			if err != nil {
				return fmt.Errorf("tessellate: %s: %w", o.Node.Label(), err)
			}
			m.Object = o.Node.Label()
			m.Stale = o.Status.Stale
			meshes[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := meshes[:0]
	for _, m := range meshes {
		if m.TriangleCount() > 0 {
			out = append(out, m)
		}
	}
	return out, nil
}

// Displayed returns the objects of res that Tessellate would mesh.
func Displayed(res *recompute.Result) []*recompute.Object {
	docs := res.Documents()
	covered := make(map[graph.NodeID]bool)
	for _, o := range docs {
		if o.Node.Kind == graph.NodeGroup && !o.Node.Hidden && o.Solid != nil {
			cover(res.Graph, o.Node, covered)
		}
	}

	var out []*recompute.Object
	for _, o := range docs {
		if o.Node.Hidden || o.Solid == nil || covered[o.Node.ID] {
			continue
		}
		out = append(out, o)
	}
	return out
}

// cover marks the nodes drawn as part of group n. Joins are opaque: their
// operands are separate objects.
func cover(g *graph.DesignGraph, n *graph.Node, covered map[graph.NodeID]bool) {
	for _, c := range g.Children(n) {
		if covered[c.ID] {
			continue
		}
		covered[c.ID] = true
		if c.Kind == graph.NodeGroup || c.Kind == graph.NodeTransform {
			cover(g, c, covered)
		}
	}
}
