// Package engine provides the Lisp evaluation engine for joinery.
// It wraps zygomys in a sandboxed environment and produces a DesignGraph
// from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/joinery/pkg/graph"
	"github.com/chazu/joinery/pkg/join"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or a blocking
// validation finding.
type EvalError struct {
	Line    int
	Col     int
	Message string
	NodeID  graph.NodeID
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	NodeID  graph.NodeID
}

// EvalResult bundles the full output of an evaluation for use by UI bindings.
type EvalResult struct {
	Graph    *graph.DesignGraph
	Errors   []EvalError
	Warnings []EvalWarning
}

// Options configures an Engine. The zero value is usable.
type Options struct {
	// RefineDefault is the Refine flag given to join forms that omit
	// :refine. It is captured once when the engine is built.
	RefineDefault bool
	// Degenerate is the policy given to join forms that omit :degenerate.
	Degenerate join.DegeneratePolicy
	// Timeout bounds a single evaluation. Zero means EvalTimeout.
	Timeout time.Duration
}

// Engine wraps the zygomys interpreter for joinery evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	opts Options

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine(opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = EvalTimeout
	}
	return &Engine{opts: opts}
}

// Options returns the options the engine was built with.
func (e *Engine) Options() Options { return e.opts }

// Evaluate takes Lisp source code and produces a new DesignGraph.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns graph + nil errors + nil error
//   - On parse/eval/validation failure: returns nil graph + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*graph.DesignGraph, []EvalError, error) {
	res, err := e.Run(source)
	if err != nil {
		return nil, nil, err
	}
	return res.Graph, res.Errors, nil
}

// Run is Evaluate with warnings. On evaluation errors the result carries
// the errors and a nil graph.
func (e *Engine) Run(source string) (*EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res := e.evaluate(source)
		ch <- evalResult{result: res}
	}()

	return waitWithTimeout(ch, gen, e.opts.Timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) *EvalResult {
	g := graph.New()

	// Empty source is a valid program that produces an empty graph.
	if strings.TrimSpace(source) == "" {
		return &EvalResult{Graph: g}
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, g, e.opts)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return &EvalResult{Errors: parseZygomysError(err)}
	}
	if _, err := env.Run(); err != nil {
		return &EvalResult{Errors: parseZygomysError(err)}
	}

	return finish(g)
}

// finish validates and hashes a freshly built graph.
func finish(g *graph.DesignGraph) *EvalResult {
	res := &EvalResult{}
	vr := graph.ValidateAll(g)
	for _, ve := range vr.Errors {
		res.Errors = append(res.Errors, EvalError{Message: ve.Error(), NodeID: ve.NodeID})
	}
	for _, w := range vr.Warnings {
		res.Warnings = append(res.Warnings, EvalWarning{Message: w.Message, NodeID: w.NodeID})
	}
	if len(res.Errors) > 0 {
		return res
	}

	if err := graph.ComputeHashes(g); err != nil {
		res.Errors = append(res.Errors, EvalError{Message: err.Error()})
		return res
	}
	res.Graph = g
	return res
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{
			Line:    line,
			Message: strings.TrimSpace(m[2]),
		}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{
			Line:    line,
			Message: strings.TrimSpace(m[2]),
		}}
	}

	return []EvalError{{
		Message: strings.TrimSpace(msg),
	}}
}
