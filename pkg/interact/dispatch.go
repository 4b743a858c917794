package interact

import (
	"fmt"

	"github.com/chazu/linkage/pkg/geom"
	"github.com/chazu/linkage/pkg/linkage"
)

// Op names the construction operation a dispatch performed.
type Op int

const (
	OpNone Op = iota
	OpRotary
	OpJoint
	OpCoupler
	OpSlider
)

func (o Op) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpRotary:
		return "rotary"
	case OpJoint:
		return "joint"
	case OpCoupler:
		return "coupler"
	case OpSlider:
		return "slider"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Result describes a dispatch. Ref is the newly created point when OK.
type Result struct {
	Op  Op
	Ref linkage.Ref
	OK  bool
}

// Dispatch runs the construction operation described by a complete click
// state and returns the next state. Incomplete states are returned as is,
// except GG in rotary mode, which builds a rotary from its two points.
//
// A three-input state with no operation is a construction bug and panics.
func Dispatch(m *linkage.Mechanism, mode Mode, theta float64, s State) (State, Result) {
	switch s := s.(type) {
	case GGP:
		return None{}, joint(m.AddJoint(theta, s.Ref, s.P1, s.P2))
	case GPG:
		return None{}, joint(m.AddJoint(theta, s.Ref, s.P1, s.P2))

	case PGG:
		if mode == ModeSlider {
			ref, ok := m.AddSlider(theta, s.Ref, s.P1, s.P2)
			return None{}, Result{Op: OpSlider, Ref: ref, OK: ok}
		}
		return None{}, joint(m.AddJoint(theta, s.Ref, s.P2, s.P1))

	case GPP:
		return None{}, coupler(m, theta, s.Ref1, s.Ref2, s.P)
	case PGP:
		return None{}, coupler(m, theta, s.Ref1, s.Ref2, s.P)
	case PPG:
		return None{}, coupler(m, theta, s.Ref1, s.Ref2, s.P)

	case GG:
		if mode == ModeRotary {
			_, driven := m.AddRotary(theta, s.P1, s.P2)
			return None{}, Result{Op: OpRotary, Ref: driven, OK: true}
		}
	}

	if s.Arity() == 3 {
		panic(fmt.Sprintf("interact: click state %s not handled in %s mode", s.Kind(), mode))
	}
	return s, Result{}
}

func joint(ref linkage.Ref, ok bool) Result {
	return Result{Op: OpJoint, Ref: ref, OK: ok}
}

func coupler(m *linkage.Mechanism, theta float64, ref1, ref2 linkage.Ref, p geom.Point) Result {
	ref, ok := m.AddCoupler(theta, ref1, ref2, p)
	return Result{Op: OpCoupler, Ref: ref, OK: ok}
}

// Preview returns the rubber-band polyline shown for a partial click
// state while the pointer is at mouse, or nil when there is none.
// points holds the solved positions of the current frame.
func Preview(s State, mouse geom.Point, points map[linkage.Ref]geom.Point) []geom.Point {
	at := func(r linkage.Ref) (geom.Point, bool) {
		p, ok := points[r]
		return p, ok
	}
	switch s := s.(type) {
	case P:
		if a, ok := at(s.Ref); ok {
			return []geom.Point{a, mouse}
		}
	case G:
		return []geom.Point{s.P, mouse}
	case GP:
		if a, ok := at(s.Ref); ok {
			return []geom.Point{s.P, mouse, a}
		}
	case PG:
		if a, ok := at(s.Ref); ok {
			return []geom.Point{a, s.P, mouse}
		}
	case PP:
		a, okA := at(s.Ref1)
		b, okB := at(s.Ref2)
		if okA && okB {
			return []geom.Point{a, mouse, b}
		}
	case GG:
		return []geom.Point{s.P1, s.P2, mouse}
	}
	return nil
}
