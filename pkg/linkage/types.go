package linkage

import (
	"fmt"

	"github.com/chazu/linkage/pkg/geom"
)

// Ref identifies a point within one mechanism. Refs are minted from a
// monotonically increasing counter and never reused.
type Ref int

// String renders the canonical name of a ref, e.g. "p3".
func (r Ref) String() string {
	return fmt.Sprintf("p%d", int(r))
}

// Ground is a fixed anchor point, independent of the drive angle.
type Ground struct {
	Ref Ref        `json:"ref" yaml:"ref"`
	P   geom.Point `json:"p" yaml:"p"`
}

// Rotary drives P2 around the ground P1 at radius Len, offset by Phase
// from the drive angle.
type Rotary struct {
	P1    Ref     `json:"p1" yaml:"p1"`
	P2    Ref     `json:"p2" yaml:"p2"`
	Len   float64 `json:"len" yaml:"len"`
	Phase float64 `json:"phase" yaml:"phase"`
}

// Hinge places P3 at distance Len1 from P1 and Len2 from P2.
type Hinge struct {
	P1   Ref     `json:"p1" yaml:"p1"`
	P2   Ref     `json:"p2" yaml:"p2"`
	P3   Ref     `json:"p3" yaml:"p3"`
	Len1 float64 `json:"len1" yaml:"len1"`
	Len2 float64 `json:"len2" yaml:"len2"`
}

// Slider places P3 on the ray from P1 through P2, at distance Len from
// P1 and beyond P2.
type Slider struct {
	P1  Ref     `json:"p1" yaml:"p1"`
	P2  Ref     `json:"p2" yaml:"p2"`
	P3  Ref     `json:"p3" yaml:"p3"`
	Len float64 `json:"len" yaml:"len"`
}

// Spec is the declarative form of a mechanism. Joints may be listed in
// any order; the solver resolves dependencies.
type Spec struct {
	Grounds  []Ground `json:"grounds" yaml:"grounds"`
	Rotaries []Rotary `json:"rotaries" yaml:"rotaries"`
	Hinges   []Hinge  `json:"hinges" yaml:"hinges"`
	Sliders  []Slider `json:"sliders" yaml:"sliders"`
}

// Refs returns every ref mentioned by the spec in first-appearance order:
// grounds, then rotaries, then hinges, then sliders.
func (s Spec) Refs() []Ref {
	seen := make(map[Ref]bool)
	var refs []Ref
	add := func(rs ...Ref) {
		for _, r := range rs {
			if !seen[r] {
				seen[r] = true
				refs = append(refs, r)
			}
		}
	}
	for _, g := range s.Grounds {
		add(g.Ref)
	}
	for _, r := range s.Rotaries {
		add(r.P1, r.P2)
	}
	for _, h := range s.Hinges {
		add(h.P1, h.P2, h.P3)
	}
	for _, sl := range s.Sliders {
		add(sl.P1, sl.P2, sl.P3)
	}
	return refs
}

// clone returns a deep copy of the spec.
func (s Spec) clone() Spec {
	return Spec{
		Grounds:  append([]Ground(nil), s.Grounds...),
		Rotaries: append([]Rotary(nil), s.Rotaries...),
		Hinges:   append([]Hinge(nil), s.Hinges...),
		Sliders:  append([]Slider(nil), s.Sliders...),
	}
}

// DefaultSpec is the four-bar-like starter mechanism: a crank at the
// origin coupled to a ground on the right, plus a spare ground on the left.
func DefaultSpec() Spec {
	return Spec{
		Grounds: []Ground{
			{Ref: 1, P: geom.Pt(0, 0)},
			{Ref: 4, P: geom.Pt(0.3, 0)},
			{Ref: 5, P: geom.Pt(-0.3, 0)},
		},
		Rotaries: []Rotary{
			{P1: 1, P2: 2, Len: 0.2, Phase: 0},
		},
		Hinges: []Hinge{
			{P1: 2, P2: 4, P3: 3, Len1: 0.4, Len2: 0.4},
		},
	}
}
