package engine

import (
	"strings"
	"testing"

	"github.com/chazu/joinery/pkg/graph"
	"github.com/chazu/joinery/pkg/join"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(sphere :radius 5)`,
			expect: `(sphere "__kw_radius" 5)`,
		},
		{
			name:   "multiple keywords",
			input:  `(box :x 400 :y 200)`,
			expect: `(box "__kw_x" 400 "__kw_y" 200)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(make-base :degenerate :skip)`,
			expect: `(make_base "__kw_degenerate" "__kw_skip")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:refine-model`,
			expect: `"__kw_refine-model"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mustEval(t *testing.T, eng *Engine, source string) *graph.DesignGraph {
	t.Helper()
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if g == nil {
		t.Fatal("expected non-nil graph")
	}
	return g
}

func mustFail(t *testing.T, eng *Engine, source, want string) {
	t.Helper()
	g, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if g != nil {
		t.Fatal("expected nil graph")
	}
	for _, e := range evalErrs {
		if strings.Contains(e.Message, want) {
			return
		}
	}
	t.Fatalf("expected an error containing %q, got %v", want, evalErrs)
}

func joinData(t *testing.T, g *graph.DesignGraph, name string) graph.JoinData {
	t.Helper()
	n := g.Lookup(name)
	if n == nil {
		t.Fatalf("no object named %q", name)
	}
	if n.Kind != graph.NodeJoin {
		t.Fatalf("%q is %s, want join", name, n.Kind)
	}
	jd, ok := n.Data.(graph.JoinData)
	if !ok {
		t.Fatalf("expected JoinData, got %T", n.Data)
	}
	return jd
}

const twoParts = `
(defpart "base" (box :x 100 :y 20 :z 20))
(defpart "tool" (place (sphere 15) :at (vec3 50 10 10)))
`

// ---------------------------------------------------------------------------
// Primitive tests
// ---------------------------------------------------------------------------

func TestSimpleBox(t *testing.T) {
	g := mustEval(t, NewEngine(Options{}), `(defpart "block" (box :x 600 :y 300 :z 19))`)

	if g.NodeCount() != 1 {
		t.Fatalf("expected 1 node, got %d", g.NodeCount())
	}
	block := g.Lookup("block")
	if block == nil {
		t.Fatal("expected node named 'block'")
	}
	if block.Kind != graph.NodePrimitive {
		t.Errorf("expected NodePrimitive, got %s", block.Kind)
	}
	bd, ok := block.Data.(graph.BoxData)
	if !ok {
		t.Fatalf("expected BoxData, got %T", block.Data)
	}
	if bd.Size != (graph.Vec3{X: 600, Y: 300, Z: 19}) {
		t.Errorf("size = %v, want (600, 300, 19)", bd.Size)
	}
	if block.ContentHash.IsZero() {
		t.Error("evaluated nodes should carry a content hash")
	}
	if len(g.Roots) != 1 || g.Roots[0] != block.ID {
		t.Error("defpart should register a root object")
	}
}

func TestPositionalPrimitives(t *testing.T) {
	g := mustEval(t, NewEngine(Options{}), `
(defpart "b" (box 1 2 3))
(defpart "c" (cylinder 10 2 :segments 48))
(defpart "s" (sphere 4))
`)
	if bd := g.MustLookup("b").Data.(graph.BoxData); bd.Size != (graph.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("box size = %v", bd.Size)
	}
	cd := g.MustLookup("c").Data.(graph.CylinderData)
	if cd.Height != 10 || cd.Radius != 2 || cd.Segments != 48 {
		t.Errorf("cylinder = %+v", cd)
	}
	if sd := g.MustLookup("s").Data.(graph.SphereData); sd.Radius != 4 {
		t.Errorf("sphere radius = %g", sd.Radius)
	}
}

func TestVariableReference(t *testing.T) {
	g := mustEval(t, NewEngine(Options{}), `
(def t 19)
(defpart "side" (box :x 300 :y 200 :z t))
`)
	if bd := g.MustLookup("side").Data.(graph.BoxData); bd.Size.Z != 19 {
		t.Errorf("expected z=19, got %g", bd.Size.Z)
	}
}

func TestPrimitiveMissingDimension(t *testing.T) {
	mustFail(t, NewEngine(Options{}), `(defpart "b" (box :x 1 :y 2))`, "box: missing z")
}

func TestZeroDimensionFailsValidation(t *testing.T) {
	mustFail(t, NewEngine(Options{}), `(defpart "b" (box 0 2 3))`, "must be positive")
}

// ---------------------------------------------------------------------------
// Placement tests
// ---------------------------------------------------------------------------

func TestPlaceNamesTransform(t *testing.T) {
	g := mustEval(t, NewEngine(Options{}), `
(defpart "base" (box 10 10 10))
(defpart "moved" (place (part "base") :at (vec3 5 0 0) :rotate (vec3 0 0 90)))
`)
	moved := g.MustLookup("moved")
	if moved.Kind != graph.NodeTransform {
		t.Fatalf("expected transform, got %s", moved.Kind)
	}
	td := moved.Data.(graph.TransformData)
	if td.Translation == nil || *td.Translation != (graph.Vec3{X: 5}) {
		t.Errorf("translation = %v", td.Translation)
	}
	if td.Rotation == nil || td.Rotation.Z != 90 {
		t.Errorf("rotation = %v", td.Rotation)
	}
	if len(moved.Children) != 1 || moved.Children[0] != g.MustLookup("base").ID {
		t.Error("transform should have base as its child")
	}
	if len(g.Objects()) != 2 {
		t.Errorf("expected 2 objects, got %d", len(g.Objects()))
	}
}

func TestPlaceInlinePrimitive(t *testing.T) {
	g := mustEval(t, NewEngine(Options{}), twoParts)
	tool := g.MustLookup("tool")
	children := g.Children(tool)
	if len(children) != 1 || children[0].Kind != graph.NodePrimitive || children[0].Name != "" {
		t.Fatalf("expected one anonymous primitive child, got %v", children)
	}
}

func TestDefpartRejectsNamedBody(t *testing.T) {
	mustFail(t, NewEngine(Options{}), `
(defpart "a" (box 1 1 1))
(defpart "b" (part "a"))
`, "already an object")
}

func TestDuplicateObjectName(t *testing.T) {
	mustFail(t, NewEngine(Options{}), `
(defpart "a" (box 1 1 1))
(defpart "a" (sphere 1))
`, `"a" already exists`)
}

func TestPartUnknown(t *testing.T) {
	mustFail(t, NewEngine(Options{}), `(place (part "ghost") :at (vec3 0 0 0))`, `no object named "ghost"`)
}

// ---------------------------------------------------------------------------
// Join tests
// ---------------------------------------------------------------------------

func TestJoinForms(t *testing.T) {
	tests := []struct {
		form string
		mode join.Mode
	}{
		{"connect", join.Connect},
		{"embed", join.Embed},
		{"cutout", join.Cutout},
	}
	for _, tt := range tests {
		t.Run(tt.form, func(t *testing.T) {
			g := mustEval(t, NewEngine(Options{}), twoParts+`(`+tt.form+` "F" (part "base") (part "tool"))`)
			jd := joinData(t, g, "F")
			if jd.Mode != tt.mode {
				t.Errorf("mode = %s, want %s", jd.Mode, tt.mode)
			}
			if jd.Base != g.MustLookup("base").ID || jd.Tool != g.MustLookup("tool").ID {
				t.Error("base/tool wired to the wrong objects")
			}
			f := g.MustLookup("F")
			if len(f.Children) != 2 || f.Children[0] != jd.Base || f.Children[1] != jd.Tool {
				t.Error("join children should be base then tool")
			}
		})
	}
}

func TestJoinOperandsByName(t *testing.T) {
	g := mustEval(t, NewEngine(Options{}), twoParts+`(cutout "Cutout" "base" "tool")`)
	jd := joinData(t, g, "Cutout")
	if jd.Base != g.MustLookup("base").ID {
		t.Error("string operand should resolve to the named object")
	}
}

func TestRefineDefaultInjected(t *testing.T) {
	src := twoParts + `(connect "C" "base" "tool")`

	g := mustEval(t, NewEngine(Options{}), src)
	if joinData(t, g, "C").Refine {
		t.Error("refine should default to false")
	}

	g = mustEval(t, NewEngine(Options{RefineDefault: true}), src)
	if !joinData(t, g, "C").Refine {
		t.Error("refine should follow the injected default")
	}
}

func TestRefineExplicitWins(t *testing.T) {
	eng := NewEngine(Options{RefineDefault: true})
	g := mustEval(t, eng, twoParts+`
(connect "Off" "base" "tool" :refine false)
(embed "On" "base" "tool" :refine :true)
`)
	if joinData(t, g, "Off").Refine {
		t.Error(":refine false should override the default")
	}
	if !joinData(t, g, "On").Refine {
		t.Error(":refine :true should set refine")
	}
}

func TestDegeneratePolicy(t *testing.T) {
	g := mustEval(t, NewEngine(Options{Degenerate: join.DegenerateFail}), twoParts+`
(connect "A" "base" "tool")
(connect "B" "base" "tool" :degenerate :skip)
`)
	if got := joinData(t, g, "A").Degenerate; got != join.DegenerateFail {
		t.Errorf("A policy = %s, want fail", got)
	}
	if got := joinData(t, g, "B").Degenerate; got != join.DegenerateSkip {
		t.Errorf("B policy = %s, want skip", got)
	}

	mustFail(t, NewEngine(Options{}), twoParts+`(connect "C" "base" "tool" :degenerate :ignore)`, "unknown degenerate policy")
}

func TestGenericJoinForm(t *testing.T) {
	g := mustEval(t, NewEngine(Options{}), twoParts+`
(join "J" :mode :bypass :base (part "base") :tool (part "tool"))
(join "K" :mode :embed :base "base" :tool "tool")
`)
	if got := joinData(t, g, "J").Mode; got != join.Bypass {
		t.Errorf("J mode = %s, want Bypass", got)
	}
	if got := joinData(t, g, "K").Mode; got != join.Embed {
		t.Errorf("K mode = %s, want Embed", got)
	}

	mustFail(t, NewEngine(Options{}), twoParts+`(join "J" :mode :glue :base "base" :tool "tool")`, "unknown mode")
	mustFail(t, NewEngine(Options{}), twoParts+`(join "J" :base "base")`, ":tool is required")
}

func TestJoinArgumentErrors(t *testing.T) {
	eng := NewEngine(Options{})
	mustFail(t, eng, twoParts+`(connect "C" "base")`, "requires a name, a base and a tool")
	mustFail(t, eng, twoParts+`(connect "C" "base" "base")`, "different objects")
	mustFail(t, eng, twoParts+`(connect "C" "base" "ghost")`, `no object named "ghost"`)
	mustFail(t, eng, twoParts+`(connect "C" "base" "tool" :refine 3)`, "expected true or false")
}

func TestJoinOfJoin(t *testing.T) {
	g := mustEval(t, NewEngine(Options{}), twoParts+`
(defpart "plug" (place (cylinder 30 3) :at (vec3 20 10 10)))
(connect "C" "base" "tool")
(cutout "Cut" "C" "plug")
`)
	jd := joinData(t, g, "Cut")
	if jd.Base != g.MustLookup("C").ID {
		t.Error("a join should accept another join as its base")
	}
}

// ---------------------------------------------------------------------------
// Visibility and assembly tests
// ---------------------------------------------------------------------------

func TestHide(t *testing.T) {
	g := mustEval(t, NewEngine(Options{}), twoParts+`
(connect "C" "base" "tool")
(hide "base" (part "tool"))
`)
	if !g.MustLookup("base").Hidden || !g.MustLookup("tool").Hidden {
		t.Error("hide should mark both inputs hidden")
	}
	if g.MustLookup("C").Hidden {
		t.Error("the join should stay visible")
	}
}

func TestHideUnusedObjectWarns(t *testing.T) {
	res, err := NewEngine(Options{}).Run(twoParts + `(hide "base")`)
	if err != nil {
		t.Fatal(err)
	}
	if res.Graph == nil {
		t.Fatalf("warnings must not block evaluation: %v", res.Errors)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, `"base" is hidden`) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected hidden-object warning, got %v", res.Warnings)
	}
}

func TestAssembly(t *testing.T) {
	g := mustEval(t, NewEngine(Options{}), twoParts+`(assembly "all" (part "base") "tool")`)
	all := g.MustLookup("all")
	if all.Kind != graph.NodeGroup || len(all.Children) != 2 {
		t.Fatalf("assembly = %+v", all)
	}
	objs := g.Objects()
	if objs[len(objs)-1].Name != "all" {
		t.Error("assembly should be the last object")
	}
}

func TestEvaluationIsDeterministic(t *testing.T) {
	eng := NewEngine(Options{})
	src := twoParts + `(connect "C" "base" "tool")`
	g1 := mustEval(t, eng, src)
	g2 := mustEval(t, eng, src)

	for id, n := range g1.Nodes {
		other := g2.Get(id)
		if other == nil {
			t.Fatalf("node %s missing from second evaluation", n.Label())
		}
		if other.ContentHash != n.ContentHash {
			t.Errorf("node %s hash differs between evaluations", n.Label())
		}
	}
}
