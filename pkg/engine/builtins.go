package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/joinery/pkg/graph"
	"github.com/chazu/joinery/pkg/join"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builder holds the per-evaluation state shared by the builtins.
type builder struct {
	g    *graph.DesignGraph
	opts Options
	anon int
}

// anonID returns a fresh ID for an unnamed node. The counter is per
// evaluation, so the same source always yields the same IDs.
func (b *builder) anonID(prefix string) graph.NodeID {
	b.anon++
	return graph.NewNodeID(fmt.Sprintf("%s/_anon_%d", prefix, b.anon))
}

// primitiveNode adds an unnamed node for a primitive value.
func (b *builder) primitiveNode(p *sexpPrimitive) graph.NodeID {
	id := b.anonID("primitive")
	b.g.AddNode(&graph.Node{ID: id, Kind: graph.NodePrimitive, Data: p.data})
	return id
}

// operand resolves a solid-producing argument: a node reference, the name
// of an existing object, or an inline primitive.
func (b *builder) operand(s zygo.Sexp) (graph.NodeID, error) {
	switch v := s.(type) {
	case *sexpNodeRef:
		return v.id, nil
	case *sexpPrimitive:
		return b.primitiveNode(v), nil
	case *zygo.SexpStr:
		if _, isKeyword := isKW(v); isKeyword {
			break
		}
		n := b.g.Lookup(v.S)
		if n == nil {
			return graph.ZeroID, fmt.Errorf("no object named %q", v.S)
		}
		return n.ID, nil
	}
	return graph.ZeroID, fmt.Errorf("expected object, got %T (%s)", s, s.SexpString(nil))
}

// object creates a named root node, rejecting duplicate names.
func (b *builder) object(kind graph.NodeKind, prefix, name string, children []graph.NodeID, data graph.NodeData) (*sexpNodeRef, error) {
	if name == "" {
		return nil, fmt.Errorf("name must not be empty")
	}
	if b.g.Lookup(name) != nil {
		return nil, fmt.Errorf("an object named %q already exists", name)
	}
	id := graph.NewNodeID(prefix + "/" + name)
	b.g.AddNode(&graph.Node{ID: id, Kind: kind, Name: name, Children: children, Data: data})
	b.g.AddRoot(id)
	return &sexpNodeRef{id: id, name: name}, nil
}

// dims reads named dimensions from keyword arguments, falling back to
// positional arguments in order.
func dims(form string, pa kwArgs, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	pos := 0
	for i, name := range names {
		v, ok := pa.kw[name]
		if !ok {
			if pos >= len(pa.positional) {
				return nil, fmt.Errorf("%s: missing %s", form, name)
			}
			v = pa.positional[pos]
			pos++
		}
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", form, name, err)
		}
		out[i] = f
	}
	return out, nil
}

// joinOptions reads :refine and :degenerate, applying the engine defaults
// for whichever is absent.
func (b *builder) joinOptions(form string, pa kwArgs) (bool, join.DegeneratePolicy, error) {
	refine := b.opts.RefineDefault
	if v, ok := pa.kw["refine"]; ok {
		r, err := toBool(v)
		if err != nil {
			return false, 0, fmt.Errorf("%s: refine: %w", form, err)
		}
		refine = r
	}
	policy := b.opts.Degenerate
	if v, ok := pa.kw["degenerate"]; ok {
		name, err := toKeywordString(v)
		if err != nil {
			return false, 0, fmt.Errorf("%s: degenerate: %w", form, err)
		}
		p, err := join.ParseDegeneratePolicy(name)
		if err != nil {
			return false, 0, fmt.Errorf("%s: %w", form, err)
		}
		policy = p
	}
	return refine, policy, nil
}

// addJoin creates a join feature node.
func (b *builder) addJoin(form string, mode join.Mode, name string, base, tool zygo.Sexp, pa kwArgs) (zygo.Sexp, error) {
	baseID, err := b.operand(base)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: base: %w", form, err)
	}
	toolID, err := b.operand(tool)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: tool: %w", form, err)
	}
	if baseID == toolID {
		return zygo.SexpNull, fmt.Errorf("%s: base and tool must be different objects", form)
	}
	refine, policy, err := b.joinOptions(form, pa)
	if err != nil {
		return zygo.SexpNull, err
	}

	ref, err := b.object(graph.NodeJoin, "join", name, []graph.NodeID{baseID, toolID}, graph.JoinData{
		Mode:       mode,
		Base:       baseID,
		Tool:       toolID,
		Refine:     refine,
		Degenerate: policy,
	})
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", form, err)
	}
	return ref, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all joinery DSL builtins into a zygomys
// environment. The builtins operate on the provided DesignGraph, populating
// it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph, opts Options) {
	b := &builder{g: g, opts: opts}

	// -----------------------------------------------------------------------
	// (box :x 100 :y 50 :z 25) or (box 100 50 25)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := dims("box", parseArgs(args), "x", "y", "z")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPrimitive{data: graph.BoxData{Size: graph.Vec3{X: d[0], Y: d[1], Z: d[2]}}}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 20 :radius 5 :segments 64)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := dims("cylinder", pa, "height", "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		cd := graph.CylinderData{Height: d[0], Radius: d[1]}
		if v, ok := pa.kw["segments"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
			cd.Segments = n
		}
		return &sexpPrimitive{data: cd}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 10) or (sphere 10)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d, err := dims("sphere", parseArgs(args), "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPrimitive{data: graph.SphereData{Radius: d[0]}}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: graph.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (place (part "tool") :at (vec3 0 0 19) :rotate (vec3 0 0 90))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires an object as first argument")
		}

		childID, err := b.operand(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		td := graph.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate: %w", err)
			}
			td.Rotation = &vec
		}

		id := b.anonID("place")
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeTransform,
			Children: []graph.NodeID{childID},
			Data:     td,
		})

		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (defpart "name" (box ...)) or (defpart "name" (place ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a body expression")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}

		switch body := args[1].(type) {
		case *sexpPrimitive:
			ref, err := b.object(graph.NodePrimitive, "defpart", partName, nil, body.data)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defpart: %w", err)
			}
			return ref, nil
		case *sexpNodeRef:
			if body.name != "" {
				return zygo.SexpNull, fmt.Errorf("defpart: %q is already an object; use place to derive a new one", body.name)
			}
			if g.Lookup(partName) != nil {
				return zygo.SexpNull, fmt.Errorf("defpart: an object named %q already exists", partName)
			}
			if err := g.SetName(body.id, partName); err != nil {
				return zygo.SexpNull, fmt.Errorf("defpart: %w", err)
			}
			g.AddRoot(body.id)
			return &sexpNodeRef{id: body.id, name: partName}, nil
		}
		return zygo.SexpNull, fmt.Errorf("defpart: expected a primitive or placed object, got %T", args[1])
	})

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}

		n := g.Lookup(partName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("part: no object named %q", partName)
		}

		return &sexpNodeRef{id: n.ID, name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (connect "Connect" base tool :refine true :degenerate :skip)
	// (embed "Embed" base tool ...)
	// (cutout "Cutout" base tool ...)
	// -----------------------------------------------------------------------
	for _, mode := range []join.Mode{join.Connect, join.Embed, join.Cutout} {
		form := strings.ToLower(mode.String())
		env.AddFunction(form, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 3 {
				return zygo.SexpNull, fmt.Errorf("%s requires a name, a base and a tool, got %d arguments", form, len(pa.positional))
			}
			featName, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: name: %w", form, err)
			}
			return b.addJoin(form, mode, featName, pa.positional[1], pa.positional[2], pa)
		})
	}

	// -----------------------------------------------------------------------
	// (join "Join" :mode :bypass :base b :tool t :refine false)
	// -----------------------------------------------------------------------
	env.AddFunction("join", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("join requires a name")
		}
		featName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("join: name: %w", err)
		}

		mode := join.Bypass
		if v, ok := pa.kw["mode"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("join: mode: %w", err)
			}
			if mode, err = join.ParseMode(s); err != nil {
				return zygo.SexpNull, err
			}
		}
		base, ok := pa.kw["base"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("join: :base is required")
		}
		tool, ok := pa.kw["tool"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("join: :tool is required")
		}
		return b.addJoin("join", mode, featName, base, tool, pa)
	})

	// -----------------------------------------------------------------------
	// (hide "base" "tool") or (hide (part "base"))
	// -----------------------------------------------------------------------
	env.AddFunction("hide", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var targets []zygo.Sexp
		for _, a := range args {
			if items, err := sexpListToSlice(a); err == nil {
				targets = append(targets, items...)
				continue
			}
			targets = append(targets, a)
		}
		for _, t := range targets {
			id, err := b.operand(t)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("hide: %w", err)
			}
			g.Get(id).Hidden = true
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (assembly "name" (part "a") (place ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("assembly", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("assembly requires a name argument")
		}

		asmName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: name: %w", err)
		}

		var children []graph.NodeID
		for i := 1; i < len(args); i++ {
			id, err := b.operand(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("assembly: child %d: %w", i, err)
			}
			children = append(children, id)
		}

		ref, err := b.object(graph.NodeGroup, "assembly", asmName, children, graph.GroupData{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: %w", err)
		}
		return ref, nil
	})
}
