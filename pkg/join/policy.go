package join

import (
	"fmt"
	"strings"
)

// DegeneratePolicy decides what happens when the common part of the two
// operands is empty or a cut leaves nothing behind.
type DegeneratePolicy int

const (
	// DegenerateKernel leaves empty operands to the kernel. Booleans on
	// empty solids pass through and only an empty pick is an error.
	DegenerateKernel DegeneratePolicy = iota
	// DegenerateFail rejects empty intersections and empty cut pieces.
	DegenerateFail
	// DegenerateSkip drops empty operands from the final fusion.
	DegenerateSkip
)

var policyNames = [...]string{
	DegenerateKernel: "kernel",
	DegenerateFail:   "fail",
	DegenerateSkip:   "skip",
}

func (p DegeneratePolicy) String() string {
	if p >= DegenerateKernel && p <= DegenerateSkip {
		return policyNames[p]
	}
	return fmt.Sprintf("DegeneratePolicy(%d)", int(p))
}

// ParseDegeneratePolicy converts a policy name, ignoring case. The empty
// string is DegenerateKernel.
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	if s == "" {
		return DegenerateKernel, nil
	}
	for i, name := range policyNames {
		if strings.EqualFold(s, name) {
			return DegeneratePolicy(i), nil
		}
	}
	return DegenerateKernel, fmt.Errorf("join: unknown degenerate policy %q, expected kernel, fail or skip", s)
}
