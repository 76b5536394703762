package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/lamina/pkg/geom"
	"github.com/chazu/lamina/pkg/profile"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource transforms lamina Lisp source before it reaches zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keywords need no global symbol registration and cannot collide with
//     user variables.
//
//  2. Kebab-case to underscore: profile-cut -> profile_cut. zygomys reads
//     a hyphen inside an identifier as subtraction.
//
//  3. Comment conversion: ; line comments become // comments, which is
//     what zygomys expects.
//
// String literals (double-quoted and backtick) pass through untouched.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	b := []byte(source)
	for i := 0; i < len(b); {
		switch {
		case b[i] == '"':
			i = copyQuoted(&out, b, i)
		case b[i] == '`':
			i = copyBacktick(&out, b, i)
		case b[i] == ';':
			// Collapse any run of semicolons (;; style) into one //.
			out.WriteString("//")
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out.WriteByte(b[i])
				i++
			}
		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			// := is zygomys assignment, leave it alone.
			out.WriteString(":=")
			i += 2
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.Write(b[i+1 : j])
			out.WriteByte('"')
			i = j
		case b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]):
			// Hyphen between identifier characters is part of a kebab-case
			// name, not a minus operator.
			out.WriteByte('_')
			i++
		default:
			out.WriteByte(b[i])
			i++
		}
	}
	return out.String()
}

// copyQuoted copies a double-quoted string literal starting at b[i],
// honoring backslash escapes, and returns the index past it.
func copyQuoted(out *strings.Builder, b []byte, i int) int {
	out.WriteByte(b[i])
	i++
	for i < len(b) && b[i] != '"' {
		if b[i] == '\\' && i+1 < len(b) {
			out.WriteByte(b[i])
			i++
		}
		out.WriteByte(b[i])
		i++
	}
	if i < len(b) {
		out.WriteByte(b[i])
		i++
	}
	return i
}

// copyBacktick copies a backtick string literal starting at b[i] and
// returns the index past it. Backtick strings have no escapes.
func copyBacktick(out *strings.Builder, b []byte, i int) int {
	out.WriteByte(b[i])
	i++
	for i < len(b) && b[i] != '`' {
		out.WriteByte(b[i])
		i++
	}
	if i < len(b) {
		out.WriteByte(b[i])
		i++
	}
	return i
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

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a geom.Vec.
type sexpVec3 struct {
	vec geom.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpCorner wraps a geom.Point so `corner` results can flow into `polygon`.
type sexpCorner struct {
	point geom.Point
}

func (c *sexpCorner) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(corner %.1f %.1f :radius %.1f)", c.point.Pos.X, c.point.Pos.Y, c.point.Radius)
}
func (c *sexpCorner) Type() *zygo.RegisteredType { return nil }

// sexpOutline is the result of `polygon`: a named closed contour with no
// depth attached yet. `pad` and `pocket` turn it into an element.
type sexpOutline struct {
	name   string
	points []geom.Point
}

func (o *sexpOutline) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(polygon %q %d corners)", o.name, len(o.points))
}
func (o *sexpOutline) Type() *zygo.RegisteredType { return nil }

// sexpDisc is the result of `circle`: a center and diameter with no depth
// attached yet. `hole` turns it into an element.
type sexpDisc struct {
	name     string
	center   geom.Point
	diameter float64
	flat     bool
}

func (d *sexpDisc) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(circle %q d=%.1f)", d.name, d.diameter)
}
func (d *sexpDisc) Type() *zygo.RegisteredType { return nil }

// sexpElement wraps a finished profile.Element for collection by `drawing`.
type sexpElement struct {
	elem profile.Element
}

func (e *sexpElement) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(element %q)", e.elem.Name())
}
func (e *sexpElement) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwArgs holds a parsed mixed positional+keyword argument list for one
// builtin call. The who field names the builtin for error messages.
type kwArgs struct {
	who        string
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(who string, args []zygo.Sexp) kwArgs {
	pa := kwArgs{who: who, kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); {
		name, ok := keywordName(args[i])
		if !ok {
			pa.positional = append(pa.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			pa.kw[name] = args[i+1]
			i += 2
		} else {
			// Trailing keyword with no value acts as a flag.
			pa.kw[name] = zygo.SexpNull
			i++
		}
	}
	return pa
}

// keywordName checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func keywordName(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// float returns the named keyword argument as a float64, or def when absent.
func (pa kwArgs) float(name string, def float64) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", pa.who, name, err)
	}
	return f, nil
}

// str returns the named keyword argument as a string, or def when absent.
func (pa kwArgs) str(name, def string) (string, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	s, err := toString(v)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", pa.who, name, err)
	}
	return s, nil
}

// flag reports whether the named keyword argument is present and not false.
func (pa kwArgs) flag(name string) bool {
	v, ok := pa.kw[name]
	if !ok {
		return false
	}
	if b, isBool := v.(*zygo.SexpBool); isBool {
		return b.Val
	}
	return true
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

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec extracts a geom.Vec from a sexpVec3.
func toVec(s zygo.Sexp) (geom.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toCorner accepts either a corner or a bare vec3 (radius 0).
func toCorner(s zygo.Sexp) (geom.Point, error) {
	switch v := s.(type) {
	case *sexpCorner:
		return v.point, nil
	case *sexpVec3:
		return geom.Point{Pos: v.vec}, nil
	}
	return geom.Point{}, fmt.Errorf("expected corner or vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the lamina DSL builtins into a zygomys
// environment. The builtins append finished drawings to prog as `drawing`
// forms are evaluated.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, prog *Program) {

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
		return &sexpVec3{vec: geom.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (corner 0 0 :radius 5 :name "sw")
	// -----------------------------------------------------------------------
	env.AddFunction("corner", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("corner", args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("corner requires x and y, got %d positional arguments", len(pa.positional))
		}
		x, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("corner: x: %w", err)
		}
		y, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("corner: y: %w", err)
		}
		radius, err := pa.float("radius", 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		cname, err := pa.str("name", "")
		if err != nil {
			return zygo.SexpNull, err
		}

		p, err := geom.NewCorner(x, y, 0, radius, cname)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("corner: %w", err)
		}
		return &sexpCorner{point: p}, nil
	})

	// -----------------------------------------------------------------------
	// (polygon :name "contour" (corner ...) (corner ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("polygon", args)
		pname, err := pa.str("name", "")
		if err != nil {
			return zygo.SexpNull, err
		}

		points := make([]geom.Point, 0, len(pa.positional))
		for i, arg := range pa.positional {
			p, err := toCorner(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: corner %d: %w", i, err)
			}
			points = append(points, p)
		}
		if len(points) < 3 {
			return zygo.SexpNull, fmt.Errorf("polygon %q: need at least 3 corners, got %d", pname, len(points))
		}
		return &sexpOutline{name: pname, points: points}, nil
	})

	// -----------------------------------------------------------------------
	// (circle (vec3 50 50 0) 10 :name "bore" :flat true)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("circle", args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("circle requires center and diameter, got %d positional arguments", len(pa.positional))
		}
		center, err := toVec(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: center: %w", err)
		}
		diameter, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: diameter: %w", err)
		}
		cname, err := pa.str("name", "")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpDisc{
			name:     cname,
			center:   geom.Point{Pos: center, Name: cname},
			diameter: diameter,
			flat:     pa.flag("flat"),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (pad outline depth) -- the exterior contour of a drawing
	// -----------------------------------------------------------------------
	env.AddFunction("pad", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		outline, depth, err := shapeAndDepth("pad", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		o, ok := outline.(*sexpOutline)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("pad: expected polygon, got %T (%s)", outline, outline.SexpString(nil))
		}
		poly, err := profile.NewPolygon(o.points, depth, true, o.name)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pad: %w", err)
		}
		return &sexpElement{elem: poly}, nil
	})

	// -----------------------------------------------------------------------
	// (pocket outline depth) -- interior material removal
	// -----------------------------------------------------------------------
	env.AddFunction("pocket", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		outline, depth, err := shapeAndDepth("pocket", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		o, ok := outline.(*sexpOutline)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("pocket: expected polygon, got %T (%s)", outline, outline.SexpString(nil))
		}
		poly, err := profile.NewPolygon(o.points, depth, false, o.name)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pocket: %w", err)
		}
		return &sexpElement{elem: poly}, nil
	})

	// -----------------------------------------------------------------------
	// (hole circle depth) -- a drilled circular bore
	// -----------------------------------------------------------------------
	env.AddFunction("hole", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		shape, depth, err := shapeAndDepth("hole", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		d, ok := shape.(*sexpDisc)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("hole: expected circle, got %T (%s)", shape, shape.SexpString(nil))
		}
		c, err := profile.NewCircle(d.center, d.diameter, depth, d.flat, false, d.name)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hole: %w", err)
		}
		return &sexpElement{elem: c}, nil
	})

	// -----------------------------------------------------------------------
	// (drawing :name "bracket" :contact (vec3 0 0 0) :normal (vec3 0 0 1)
	//          (pad ...) (pocket ...) (hole ...))
	// -----------------------------------------------------------------------
	env.AddFunction("drawing", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs("drawing", args)
		dname, err := pa.str("name", "")
		if err != nil {
			return zygo.SexpNull, err
		}

		contact := geom.Vec{}
		if v, ok := pa.kw["contact"]; ok {
			contact, err = toVec(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("drawing: contact: %w", err)
			}
		}
		normal := geom.Vec{Z: 1}
		if v, ok := pa.kw["normal"]; ok {
			normal, err = toVec(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("drawing: normal: %w", err)
			}
		}

		var elements []profile.Element
		var exterior profile.Element
		for i, arg := range pa.positional {
			se, ok := arg.(*sexpElement)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("drawing: element %d: expected pad/pocket/hole result, got %T (%s)",
					i, arg, arg.SexpString(nil))
			}
			if se.elem.Exterior() {
				if exterior != nil {
					return zygo.SexpNull, fmt.Errorf("drawing %q: more than one pad", dname)
				}
				exterior = se.elem
			}
			elements = append(elements, se.elem)
		}
		if exterior == nil {
			return zygo.SexpNull, fmt.Errorf("drawing %q: no pad element", dname)
		}

		d, err := profile.NewDrawing(contact, normal, elements, exterior, dname)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("drawing: %w", err)
		}
		prog.Drawings = append(prog.Drawings, d)

		return &zygo.SexpStr{S: dname}, nil
	})
}

// shapeAndDepth parses the common (builtin shape depth) form shared by
// pad, pocket, and hole.
func shapeAndDepth(who string, args []zygo.Sexp) (zygo.Sexp, float64, error) {
	pa := parseArgs(who, args)
	if len(pa.positional) != 2 {
		return nil, 0, fmt.Errorf("%s requires a shape and a depth, got %d positional arguments", who, len(pa.positional))
	}
	depth, err := toFloat64(pa.positional[1])
	if err != nil {
		return nil, 0, fmt.Errorf("%s: depth: %w", who, err)
	}
	if depth <= 0 {
		return nil, 0, fmt.Errorf("%s: depth %g must be positive", who, depth)
	}
	return pa.positional[0], depth, nil
}
