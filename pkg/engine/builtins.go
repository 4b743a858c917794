package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/linkage/pkg/geom"
	"github.com/chazu/linkage/pkg/linkage"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites mechanism source into something zygomys reads:
//
//  1. ; line comments become // comments.
//  2. :keyword becomes the string literal "__kw_keyword", so keywords never
//     collide with user variables.
//  3. kebab-case identifiers become snake_case, since zygomys reads a bare
//     hyphen as subtraction.
//
// String literals pass through untouched.
func preprocessSource(source string) string {
	s := &scanner{src: source}
	s.out.Grow(len(source) + len(source)/4)
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; {
		case c == '"':
			s.quoted('"', true)
		case c == '`':
			s.quoted('`', false)
		case c == ';':
			s.comment()
		case c == ':' && s.peek(1) == '=':
			s.copy(2)
		case c == ':' && isLetter(s.peek(1)):
			s.keyword()
		case c == '-' && s.pos > 0 && isIdentChar(s.src[s.pos-1]) && isLetter(s.peek(1)):
			s.out.WriteByte('_')
			s.pos++
		default:
			s.copy(1)
		}
	}
	return s.out.String()
}

type scanner struct {
	src string
	pos int
	out strings.Builder
}

func (s *scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

func (s *scanner) copy(n int) {
	end := min(s.pos+n, len(s.src))
	s.out.WriteString(s.src[s.pos:end])
	s.pos = end
}

// quoted copies a literal through its closing delimiter.
func (s *scanner) quoted(delim byte, escapes bool) {
	s.copy(1)
	for s.pos < len(s.src) && s.src[s.pos] != delim {
		if escapes && s.src[s.pos] == '\\' {
			s.copy(2)
			continue
		}
		s.copy(1)
	}
	s.copy(1)
}

func (s *scanner) comment() {
	s.out.WriteString("//")
	for s.pos < len(s.src) && s.src[s.pos] == ';' {
		s.pos++
	}
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.copy(1)
	}
}

func (s *scanner) keyword() {
	start := s.pos + 1
	end := start
	for end < len(s.src) && isKWChar(s.src[end]) {
		end++
	}
	fmt.Fprintf(&s.out, "%q", kwPrefix+s.src[start:end])
	s.pos = end
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isKWChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpPoint is the value of (vec2 x y).
type sexpPoint struct {
	p geom.Point
}

func (v *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.p.X, v.p.Y)
}
func (v *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpRef names a point of the mechanism under construction.
type sexpRef struct {
	ref  linkage.Ref
	name string
}

func (r *sexpRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(point %q)", r.name)
}
func (r *sexpRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a parsed mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// trailing keyword with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	out := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			out.positional = append(out.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			out.kw[name] = args[i+1]
			i++
		} else {
			out.kw[name] = zygo.SexpNull
		}
	}
	return out
}

func (a kwArgs) number(name string) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return 0, fmt.Errorf(":%s is required", name)
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf(":%s: %w", name, err)
	}
	return f, nil
}

func (a kwArgs) numberOr(name string, def float64) (float64, error) {
	if _, ok := a.kw[name]; !ok {
		return def, nil
	}
	return a.number(name)
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toPoint accepts (vec2 x y) or a two-element list of numbers.
func toPoint(s zygo.Sexp) (geom.Point, error) {
	if v, ok := s.(*sexpPoint); ok {
		return v.p, nil
	}
	var items []zygo.Sexp
	switch v := s.(type) {
	case *zygo.SexpPair:
		arr, err := zygo.ListToArray(v)
		if err != nil {
			return geom.Point{}, err
		}
		items = arr
	case *zygo.SexpArray:
		items = v.Val
	}
	if len(items) != 2 {
		return geom.Point{}, fmt.Errorf("expected (vec2 x y), got %T (%s)", s, s.SexpString(nil))
	}
	x, err := toFloat64(items[0])
	if err != nil {
		return geom.Point{}, err
	}
	y, err := toFloat64(items[1])
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Pt(x, y), nil
}

// ---------------------------------------------------------------------------
// Mechanism builder
// ---------------------------------------------------------------------------

// builder accumulates the spec declared by a program. Point names map to
// refs in order of first appearance.
type builder struct {
	spec   linkage.Spec
	names  map[string]linkage.Ref
	ground map[linkage.Ref]bool
}

func newBuilder() *builder {
	return &builder{
		names:  make(map[string]linkage.Ref),
		ground: make(map[linkage.Ref]bool),
	}
}

func (b *builder) intern(name string) *sexpRef {
	ref, ok := b.names[name]
	if !ok {
		ref = linkage.Ref(len(b.names))
		b.names[name] = ref
	}
	return &sexpRef{ref: ref, name: name}
}

// point resolves a keyword argument naming a point, either by string or
// by a value returned from another builtin.
func (b *builder) point(a kwArgs, key string) (*sexpRef, error) {
	v, ok := a.kw[key]
	if !ok {
		return nil, fmt.Errorf(":%s is required", key)
	}
	if r, ok := v.(*sexpRef); ok {
		return r, nil
	}
	name, err := toString(v)
	if err != nil {
		return nil, fmt.Errorf(":%s: %w", key, err)
	}
	if name == "" {
		return nil, fmt.Errorf(":%s: empty point name", key)
	}
	return b.intern(name), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

type builtinFunc func(b *builder, a kwArgs) (zygo.Sexp, error)

// registerBuiltins installs the mechanism vocabulary into env. Every
// builtin reports failures as "name: message" errors.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	builtins := map[string]builtinFunc{
		"vec2":   builtinVec2,
		"point":  builtinPoint,
		"ground": builtinGround,
		"rotary": builtinRotary,
		"hinge":  builtinHinge,
		"slider": builtinSlider,
	}
	for name, fn := range builtins {
		fn := fn
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			out, err := fn(b, parseArgs(args))
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return out, nil
		})
	}
}

// (vec2 x y)
func builtinVec2(_ *builder, a kwArgs) (zygo.Sexp, error) {
	if len(a.positional) != 2 {
		return nil, fmt.Errorf("expected 2 arguments, got %d", len(a.positional))
	}
	x, err := toFloat64(a.positional[0])
	if err != nil {
		return nil, err
	}
	y, err := toFloat64(a.positional[1])
	if err != nil {
		return nil, err
	}
	return &sexpPoint{p: geom.Pt(x, y)}, nil
}

// (point "name")
func builtinPoint(b *builder, a kwArgs) (zygo.Sexp, error) {
	if len(a.positional) != 1 {
		return nil, fmt.Errorf("expected a point name")
	}
	name, err := toString(a.positional[0])
	if err != nil {
		return nil, err
	}
	return b.intern(name), nil
}

// (ground "name" :at (vec2 x y))
func builtinGround(b *builder, a kwArgs) (zygo.Sexp, error) {
	if len(a.positional) != 1 {
		return nil, fmt.Errorf("expected a point name")
	}
	name, err := toString(a.positional[0])
	if err != nil {
		return nil, err
	}
	at, ok := a.kw["at"]
	if !ok {
		return nil, fmt.Errorf(":at is required")
	}
	p, err := toPoint(at)
	if err != nil {
		return nil, fmt.Errorf(":at: %w", err)
	}
	r := b.intern(name)
	if b.ground[r.ref] {
		return nil, fmt.Errorf("%q is already grounded", name)
	}
	b.ground[r.ref] = true
	b.spec.Grounds = append(b.spec.Grounds, linkage.Ground{Ref: r.ref, P: p})
	return r, nil
}

// (rotary :from "a" :to "b" :len 0.2 :phase 0)
func builtinRotary(b *builder, a kwArgs) (zygo.Sexp, error) {
	from, err := b.point(a, "from")
	if err != nil {
		return nil, err
	}
	to, err := b.point(a, "to")
	if err != nil {
		return nil, err
	}
	length, err := a.number("len")
	if err != nil {
		return nil, err
	}
	phase, err := a.numberOr("phase", 0)
	if err != nil {
		return nil, err
	}
	b.spec.Rotaries = append(b.spec.Rotaries, linkage.Rotary{
		P1: from.ref, P2: to.ref, Len: length, Phase: phase,
	})
	return to, nil
}

// (hinge :p1 "a" :p2 "b" :p3 "c" :len1 0.4 :len2 0.4)
func builtinHinge(b *builder, a kwArgs) (zygo.Sexp, error) {
	var refs [3]*sexpRef
	for i, key := range []string{"p1", "p2", "p3"} {
		r, err := b.point(a, key)
		if err != nil {
			return nil, err
		}
		refs[i] = r
	}
	len1, err := a.number("len1")
	if err != nil {
		return nil, err
	}
	len2, err := a.number("len2")
	if err != nil {
		return nil, err
	}
	b.spec.Hinges = append(b.spec.Hinges, linkage.Hinge{
		P1: refs[0].ref, P2: refs[1].ref, P3: refs[2].ref, Len1: len1, Len2: len2,
	})
	return refs[2], nil
}

// (slider :p1 "a" :p2 "b" :p3 "c" :len 0.5)
func builtinSlider(b *builder, a kwArgs) (zygo.Sexp, error) {
	var refs [3]*sexpRef
	for i, key := range []string{"p1", "p2", "p3"} {
		r, err := b.point(a, key)
		if err != nil {
			return nil, err
		}
		refs[i] = r
	}
	length, err := a.number("len")
	if err != nil {
		return nil, err
	}
	b.spec.Sliders = append(b.spec.Sliders, linkage.Slider{
		P1: refs[0].ref, P2: refs[1].ref, P3: refs[2].ref, Len: length,
	})
	return refs[2], nil
}
