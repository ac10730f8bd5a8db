package graph

import (
	"fmt"

	"github.com/chazu/joinery/pkg/join"
)

// ---------------------------------------------------------------------------
// Tier 2: Geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateNonZeroDimensions(g)...)
	warnings = append(warnings, validateDuplicateJoins(g)...)

	return errs, warnings
}

// validateNonZeroDimensions checks that every primitive has positive
// dimensions.
func validateNonZeroDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	check := func(node *Node, what string, v float64) {
		if v <= 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s is %.4f, must be positive", what, v),
				Severity: SeverityError,
			})
		}
	}

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case BoxData:
			check(node, "box dimension X", d.Size.X)
			check(node, "box dimension Y", d.Size.Y)
			check(node, "box dimension Z", d.Size.Z)
		case CylinderData:
			check(node, "cylinder height", d.Height)
			check(node, "cylinder radius", d.Radius)
		case SphereData:
			check(node, "sphere radius", d.Radius)
		}
	}

	return errs
}

// joinKey identifies a join by its mode and ordered operands. Unlike a
// fuse, a join is not symmetric: base and tool play different roles.
type joinKey struct {
	mode       join.Mode
	base, tool NodeID
}

// validateDuplicateJoins warns when two joins combine the same operands
// in the same mode.
func validateDuplicateJoins(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	seen := make(map[joinKey]*Node)

	for _, node := range g.Joins() {
		jd := node.Data.(JoinData)
		key := joinKey{mode: jd.Mode, base: jd.Base, tool: jd.Tool}
		if first, exists := seen[key]; exists {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("duplicate %s join: same base and tool already joined by %q", jd.Mode, first.Label()),
			})
			continue
		}
		seen[key] = node
	}

	return warnings
}

// ---------------------------------------------------------------------------
// Tier 3: Document warnings
// ---------------------------------------------------------------------------

// validateDocument runs all Tier 3 advisory checks.
func validateDocument(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	warnings = append(warnings, validateBypassRefine(g)...)
	warnings = append(warnings, validateHiddenObjects(g)...)
	return warnings
}

// validateBypassRefine warns when refine is requested on a bypass join,
// where it has no effect.
func validateBypassRefine(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, node := range g.Joins() {
		jd := node.Data.(JoinData)
		if jd.Mode == join.Bypass && jd.Refine {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("join %q: refine has no effect in Bypass mode", node.Label()),
			})
		}
	}
	return warnings
}

// validateHiddenObjects warns about hidden objects that no join consumes.
// Such objects are invisible and contribute to nothing.
func validateHiddenObjects(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, node := range g.Objects() {
		if node.Hidden && len(g.Consumers(node.ID)) == 0 {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("object %q is hidden but not used by any join", node.Label()),
			})
		}
	}
	return warnings
}
