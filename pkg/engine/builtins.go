package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/meshlint/pkg/kernel"
	"github.com/chazu/meshlint/pkg/mesh"
	"github.com/chazu/meshlint/pkg/scene"
	"github.com/chazu/meshlint/pkg/tessellate"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: my-cube -> my_cube
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a mesh.Vec3.
type sexpVec3 struct {
	vec mesh.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps an explicit polygon mesh built by `mesh`, `grid` or `cube`.
type sexpMesh struct {
	m *mesh.Mesh
}

func (m *sexpMesh) SexpString(ps *zygo.PrintState) string {
	c := m.m.Counts()
	return fmt.Sprintf("(mesh %dv %de %df)", c.Vertices, c.Edges, c.Faces)
}
func (m *sexpMesh) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel solid; it is tessellated when attached to an object.
type sexpSolid struct {
	solid kernel.Solid
	desc  string
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return "(solid " + s.desc + ")"
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpObjectRef refers to an object already added to the scene.
type sexpObjectRef struct {
	name string
}

func (o *sexpObjectRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(object %q)", o.name)
}
func (o *sexpObjectRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// number returns the keyword argument if present, else the positional
// argument at pos. ok is false when neither form was given.
func (pa kwArgs) number(key string, pos int) (float64, bool, error) {
	if v, present := pa.kw[key]; present {
		f, err := toFloat64(v)
		return f, true, err
	}
	if pos >= 0 && pos < len(pa.positional) {
		f, err := toFloat64(pa.positional[pos])
		return f, true, err
	}
	return 0, false, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toIndex extracts a non-negative integer from a Sexp.
func toIndex(s zygo.Sexp) (int, error) {
	v, ok := s.(*zygo.SexpInt)
	if !ok {
		return 0, fmt.Errorf("expected integer index, got %T (%s)", s, s.SexpString(nil))
	}
	if v.Val < 0 {
		return 0, fmt.Errorf("index %d is negative", v.Val)
	}
	return int(v.Val), nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3 or a list of three numbers.
func toVec3(s zygo.Sexp) (mesh.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil || len(items) != 3 {
		return mesh.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
	}
	var c [3]float64
	for i, item := range items {
		if c[i], err = toFloat64(item); err != nil {
			return mesh.Vec3{}, err
		}
	}
	return mesh.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// toSolid extracts a kernel solid from a sexpSolid.
func toSolid(s zygo.Sexp) (*sexpSolid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toObjectName accepts an object reference or a plain name.
func toObjectName(s zygo.Sexp) (string, error) {
	if ref, ok := s.(*sexpObjectRef); ok {
		return ref.name, nil
	}
	return toString(s)
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toIndexLists converts a list of index lists, e.g. faces or edges.
func toIndexLists(s zygo.Sexp) ([][]int, error) {
	outer, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([][]int, 0, len(outer))
	for i, item := range outer {
		inner, err := sexpListToSlice(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		idx := make([]int, len(inner))
		for j, v := range inner {
			if idx[j], err = toIndex(v); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
		}
		out = append(out, idx)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Scene construction
// ---------------------------------------------------------------------------

// sceneBuilder collects the objects declared by a program. The active
// object is resolved after the program runs so `active` may name an object
// declared further down.
type sceneBuilder struct {
	kernel kernel.Kernel
	scene  *scene.Scene
	active string
}

func newSceneBuilder(k kernel.Kernel) *sceneBuilder {
	return &sceneBuilder{kernel: k, scene: scene.New()}
}

func (b *sceneBuilder) requireKernel(fn string) (kernel.Kernel, error) {
	if b.kernel == nil {
		return nil, fmt.Errorf("%s: no geometry kernel configured", fn)
	}
	return b.kernel, nil
}

func (b *sceneBuilder) finish() (*scene.Scene, error) {
	if b.active != "" {
		if err := b.scene.SetActive(b.active); err != nil {
			return nil, fmt.Errorf("active: %w", err)
		}
	}
	return b.scene, nil
}

// positive reads a required, strictly positive dimension.
func positive(pa kwArgs, fn, key string, pos int) (float64, error) {
	v, ok, err := pa.number(key, pos)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	if !ok {
		return 0, fmt.Errorf("%s: missing %s", fn, key)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s: %s must be positive, got %g", fn, key, v)
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene builtins into a zygomys environment.
// The builtins populate the provided sceneBuilder during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *sceneBuilder) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: mesh.Vec3{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (mesh :verts (list (vec3 0 0 0) ...) :faces (list (list 0 1 2) ...)
	//       :edges (list (list 0 1) ...))
	// -----------------------------------------------------------------------
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var verts []mesh.Vec3
		if v, ok := pa.kw["verts"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: verts: %w", err)
			}
			for i, item := range items {
				p, err := toVec3(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("mesh: vertex %d: %w", i, err)
				}
				verts = append(verts, p)
			}
		}

		var edges, faces [][]int
		if v, ok := pa.kw["edges"]; ok {
			var err error
			if edges, err = toIndexLists(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: edges: %w", err)
			}
		}
		if v, ok := pa.kw["faces"]; ok {
			var err error
			if faces, err = toIndexLists(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: faces: %w", err)
			}
		}

		return &sexpMesh{m: mesh.FromIndexLists(verts, edges, faces)}, nil
	})

	// -----------------------------------------------------------------------
	// (grid :x 4 :y 2)   (cube)
	// -----------------------------------------------------------------------
	env.AddFunction("grid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		dims := [2]int{1, 1}
		for i, key := range []string{"x", "y"} {
			v, ok, err := pa.number(key, i)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grid: %s: %w", key, err)
			}
			if ok {
				if v < 1 {
					return zygo.SexpNull, fmt.Errorf("grid: %s must be at least 1, got %g", key, v)
				}
				dims[i] = int(v)
			}
		}
		return &sexpMesh{m: mesh.Grid(dims[0], dims[1])}, nil
	})

	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &sexpMesh{m: mesh.Cube()}, nil
	})

	// -----------------------------------------------------------------------
	// Kernel solids: (box 10 20 30) (cylinder :height 50 :radius 10)
	// (sphere 5) (union a b ...) (difference a b) (intersect a b)
	// (translate s (vec3 ...)) (rotate s (vec3 ...)) (scale s (vec3 ...))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		k, err := b.requireKernel("box")
		if err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)
		var d [3]float64
		for i, key := range []string{"x", "y", "z"} {
			if d[i], err = positive(pa, "box", key, i); err != nil {
				return zygo.SexpNull, err
			}
		}
		return &sexpSolid{solid: k.Box(d[0], d[1], d[2]), desc: "box"}, nil
	})

	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		k, err := b.requireKernel("cylinder")
		if err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)
		height, err := positive(pa, "cylinder", "height", 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		radius, err := positive(pa, "cylinder", "radius", 1)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: k.Cylinder(height, radius, 32), desc: "cylinder"}, nil
	})

	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		k, err := b.requireKernel("sphere")
		if err != nil {
			return zygo.SexpNull, err
		}
		radius, err := positive(parseArgs(args), "sphere", "radius", 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: k.Sphere(radius), desc: "sphere"}, nil
	})

	csg := func(fn string, op func(k kernel.Kernel, a, c kernel.Solid) kernel.Solid, variadic bool) {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			k, err := b.requireKernel(fn)
			if err != nil {
				return zygo.SexpNull, err
			}
			if len(args) < 2 || (!variadic && len(args) != 2) {
				return zygo.SexpNull, fmt.Errorf("%s: expected 2 solids, got %d arguments", fn, len(args))
			}
			acc, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: argument 1: %w", fn, err)
			}
			out := acc.solid
			for i, arg := range args[1:] {
				next, err := toSolid(arg)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: argument %d: %w", fn, i+2, err)
				}
				out = op(k, out, next.solid)
			}
			return &sexpSolid{solid: out, desc: fn}, nil
		})
	}
	csg("union", func(k kernel.Kernel, a, c kernel.Solid) kernel.Solid { return k.Union(a, c) }, true)
	csg("difference", func(k kernel.Kernel, a, c kernel.Solid) kernel.Solid { return k.Difference(a, c) }, false)
	csg("intersect", func(k kernel.Kernel, a, c kernel.Solid) kernel.Solid { return k.Intersection(a, c) }, true)

	transform := func(fn string, op func(k kernel.Kernel, s kernel.Solid, v mesh.Vec3) (kernel.Solid, error)) {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			k, err := b.requireKernel(fn)
			if err != nil {
				return zygo.SexpNull, err
			}
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s: expected a solid and a vec3, got %d arguments", fn, len(args))
			}
			s, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			v, err := toVec3(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			out, err := op(k, s.solid, v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			return &sexpSolid{solid: out, desc: s.desc}, nil
		})
	}
	transform("translate", func(k kernel.Kernel, s kernel.Solid, v mesh.Vec3) (kernel.Solid, error) {
		return k.Translate(s, v.X, v.Y, v.Z), nil
	})
	transform("rotate", func(k kernel.Kernel, s kernel.Solid, v mesh.Vec3) (kernel.Solid, error) {
		return k.Rotate(s, v.X, v.Y, v.Z), nil
	})
	transform("scale", func(k kernel.Kernel, s kernel.Solid, v mesh.Vec3) (kernel.Solid, error) {
		if v.X <= 0 || v.Y <= 0 || v.Z <= 0 {
			return nil, fmt.Errorf("factors must be positive, got (%g, %g, %g)", v.X, v.Y, v.Z)
		}
		return k.Scale(s, v.X, v.Y, v.Z), nil
	})

	// -----------------------------------------------------------------------
	// (object "Widget" :mesh (cube) :scale (vec3 1 1 1))
	//
	// :mesh takes an explicit mesh or a solid, which is tessellated here.
	// Without :mesh the object is not a mesh object (a lamp, a camera).
	// -----------------------------------------------------------------------
	env.AddFunction("object", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("object requires a name argument")
		}
		objName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("object: name: %w", err)
		}

		obj := scene.NewObject(objName, nil)
		if v, ok := pa.kw["scale"]; ok {
			if obj.Scale, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("object %q: scale: %w", objName, err)
			}
		}
		if v, ok := pa.kw["mesh"]; ok {
			switch body := v.(type) {
			case *sexpMesh:
				obj.Mesh = body.m
			case *sexpSolid:
				m, err := tessellate.ToMesh(b.kernel, body.solid)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("object %q: %w", objName, err)
				}
				obj.Mesh = m
			default:
				return zygo.SexpNull, fmt.Errorf("object %q: mesh: expected mesh or solid, got %T (%s)",
					objName, v, v.SexpString(nil))
			}
		}

		if err := b.scene.Add(obj); err != nil {
			return zygo.SexpNull, fmt.Errorf("object: %w", err)
		}
		return &sexpObjectRef{name: objName}, nil
	})

	// -----------------------------------------------------------------------
	// (active "Widget")
	// -----------------------------------------------------------------------
	env.AddFunction("active", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("active requires exactly 1 argument, got %d", len(args))
		}
		objName, err := toObjectName(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("active: %w", err)
		}
		b.active = objName
		return zygo.SexpNull, nil
	})
}
