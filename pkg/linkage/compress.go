package linkage

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/chazu/linkage/pkg/geom"
)

// ErrMalformed is returned by Decompress for payloads that do not describe
// a mechanism.
var ErrMalformed = errors.New("linkage: malformed compressed mechanism")

// Compressed is the columnar form of a mechanism. Refs are dense indices
// stored as numbers; ground i is ref i.
type Compressed struct {
	X        []float64    `json:"x"`
	Y        []float64    `json:"y"`
	Rotaries [][4]float64 `json:"r"` // p1, p2, len, phase
	Hinges   [][5]float64 `json:"h"` // p1, p2, p3, len1, len2
	Sliders  [][4]float64 `json:"s"` // p1, p2, p3, len
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// Compress renumbers refs by first appearance (grounds, rotaries, hinges,
// sliders) and rounds every real to three decimals.
func Compress(s Spec) Compressed {
	index := make(map[Ref]float64)
	for i, r := range s.Refs() {
		index[r] = float64(i)
	}

	return Compressed{
		X: lo.Map(s.Grounds, func(g Ground, _ int) float64 { return round3(g.P.X) }),
		Y: lo.Map(s.Grounds, func(g Ground, _ int) float64 { return round3(g.P.Y) }),
		Rotaries: lo.Map(s.Rotaries, func(r Rotary, _ int) [4]float64 {
			return [4]float64{index[r.P1], index[r.P2], round3(r.Len), round3(r.Phase)}
		}),
		Hinges: lo.Map(s.Hinges, func(h Hinge, _ int) [5]float64 {
			return [5]float64{index[h.P1], index[h.P2], index[h.P3], round3(h.Len1), round3(h.Len2)}
		}),
		Sliders: lo.Map(s.Sliders, func(sl Slider, _ int) [4]float64 {
			return [4]float64{index[sl.P1], index[sl.P2], index[sl.P3], round3(sl.Len)}
		}),
	}
}

// Decompress rebuilds a spec from its columnar form. Refs come back as
// their dense indices, so ground i is Ref(i).
func Decompress(c Compressed) (Spec, error) {
	if len(c.X) != len(c.Y) {
		return Spec{}, fmt.Errorf("%w: %d x coordinates, %d y coordinates", ErrMalformed, len(c.X), len(c.Y))
	}

	// Compress numbers refs densely, so no index can reach the number of
	// ref slots the payload has.
	limit := len(c.X) + 2*len(c.Rotaries) + 3*len(c.Hinges) + 3*len(c.Sliders)

	var s Spec
	for i := range c.X {
		p := geom.Pt(c.X[i], c.Y[i])
		if !geom.Finite(p) {
			return Spec{}, fmt.Errorf("%w: ground %d is not finite", ErrMalformed, i)
		}
		s.Grounds = append(s.Grounds, Ground{Ref: Ref(i), P: p})
	}

	for i, r := range c.Rotaries {
		refs, err := indices(r[:2], limit)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: rotary %d: %v", ErrMalformed, i, err)
		}
		if err := finite(r[2:]); err != nil {
			return Spec{}, fmt.Errorf("%w: rotary %d: %v", ErrMalformed, i, err)
		}
		s.Rotaries = append(s.Rotaries, Rotary{P1: refs[0], P2: refs[1], Len: r[2], Phase: r[3]})
	}

	for i, h := range c.Hinges {
		refs, err := indices(h[:3], limit)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: hinge %d: %v", ErrMalformed, i, err)
		}
		if err := finite(h[3:]); err != nil {
			return Spec{}, fmt.Errorf("%w: hinge %d: %v", ErrMalformed, i, err)
		}
		s.Hinges = append(s.Hinges, Hinge{P1: refs[0], P2: refs[1], P3: refs[2], Len1: h[3], Len2: h[4]})
	}

	for i, sl := range c.Sliders {
		refs, err := indices(sl[:3], limit)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: slider %d: %v", ErrMalformed, i, err)
		}
		if err := finite(sl[3:]); err != nil {
			return Spec{}, fmt.Errorf("%w: slider %d: %v", ErrMalformed, i, err)
		}
		s.Sliders = append(s.Sliders, Slider{P1: refs[0], P2: refs[1], P3: refs[2], Len: sl[3]})
	}

	return s, nil
}

func indices(xs []float64, limit int) ([]Ref, error) {
	refs := make([]Ref, len(xs))
	for i, x := range xs {
		if x < 0 || x != math.Trunc(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("ref index %v is not a non-negative integer", x)
		}
		if x >= float64(limit) {
			return nil, fmt.Errorf("ref index %v out of range [0, %d)", x, limit)
		}
		refs[i] = Ref(x)
	}
	return refs, nil
}

func finite(xs []float64) error {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("value %v is not finite", x)
		}
	}
	return nil
}
