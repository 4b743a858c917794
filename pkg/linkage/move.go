package linkage

import (
	"fmt"

	"github.com/chazu/linkage/pkg/geom"
)

// MovePoint reconciles a drag of ref to target at drive angle theta back
// into the mechanism's parameters.
//
//   - A ground is overwritten with target.
//   - The driven point of a rotary gets a new len and phase so the rotary
//     reproduces target at theta.
//   - A point touching hinges or sliders has every length anchored to it
//     recomputed from the solved positions of the other endpoints.
//
// changed is false, with a nil error, when the mechanism is infeasible at
// theta and nothing was touched. ErrInvalidReference is returned for a ref
// that plays none of these roles. The change callback fires exactly once
// per successful call.
func (m *Mechanism) MovePoint(theta float64, ref Ref, target geom.Point) (changed bool, err error) {
	if i := m.groundIndex(ref); i >= 0 {
		m.Grounds[i].P = target
		m.NotifyChange()
		return true, nil
	}

	for i, r := range m.Rotaries {
		if r.P2 != ref {
			continue
		}
		ground, ok := m.Ground(r.P1)
		if !ok {
			return false, fmt.Errorf("linkage: rotary %s is anchored to %s: %w", r.P2, r.P1, ErrInvalidReference)
		}
		m.Rotaries[i].Len = geom.Dist(target, ground)
		m.Rotaries[i].Phase = geom.NormAngle(geom.Angle(ground, target)) - theta
		m.NotifyChange()
		return true, nil
	}

	if !m.anchorsJoint(ref) {
		return false, fmt.Errorf("linkage: move %s: %w", ref, ErrInvalidReference)
	}

	sol, ok := m.Solve(theta)
	if !ok {
		return false, nil
	}
	// Every distance below is measured against the pre-move solution, so
	// updating one joint never feeds into another within this call.
	dist := func(other Ref) (float64, bool) {
		p, ok := sol.Points[other]
		if !ok {
			return 0, false
		}
		return geom.Dist(target, p), true
	}

	for i, h := range m.Hinges {
		switch ref {
		case h.P1:
			if d, ok := dist(h.P3); ok {
				m.Hinges[i].Len1 = d
			}
		case h.P2:
			if d, ok := dist(h.P3); ok {
				m.Hinges[i].Len2 = d
			}
		case h.P3:
			if d, ok := dist(h.P1); ok {
				m.Hinges[i].Len1 = d
			}
			if d, ok := dist(h.P2); ok {
				m.Hinges[i].Len2 = d
			}
		}
	}
	for i, s := range m.Sliders {
		switch ref {
		case s.P3:
			if d, ok := dist(s.P1); ok {
				m.Sliders[i].Len = d
			}
		case s.P1:
			if d, ok := dist(s.P3); ok {
				m.Sliders[i].Len = d
			}
		}
	}

	m.NotifyChange()
	return true, nil
}

// anchorsJoint reports whether ref is an endpoint or output of any hinge,
// or the base or output of any slider.
func (m *Mechanism) anchorsJoint(ref Ref) bool {
	for _, h := range m.Hinges {
		if h.P1 == ref || h.P2 == ref || h.P3 == ref {
			return true
		}
	}
	for _, s := range m.Sliders {
		if s.P1 == ref || s.P3 == ref {
			return true
		}
	}
	return false
}
