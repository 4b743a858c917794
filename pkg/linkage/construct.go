package linkage

import (
	"github.com/chazu/linkage/pkg/geom"
)

// JointTolerance is how close a candidate hinge must land to the requested
// point for an ordering to be accepted.
const JointTolerance = 1e-6

// ---------------------------------------------------------------------------
// Construction operations
//
// Each operation is evaluated against the mechanism solved at theta, mints
// its refs only on success, and fires the change callback once.
// ---------------------------------------------------------------------------

// AddRotary adds a ground at p1 and a rotary whose driven point sits at p2
// at drive angle theta.
func (m *Mechanism) AddRotary(theta float64, p1, p2 geom.Point) (ground, driven Ref) {
	ground = m.nextRef()
	driven = m.nextRef()
	m.Grounds = append(m.Grounds, Ground{Ref: ground, P: p1})
	m.Rotaries = append(m.Rotaries, Rotary{
		P1:    ground,
		P2:    driven,
		Len:   geom.Dist(p1, p2),
		Phase: geom.NormAngle(geom.Angle(p1, p2)) - theta,
	})
	m.NotifyChange()
	return ground, driven
}

// AddJoint adds a ground at free1 and a hinge joining it and the existing
// point ref at a new point located at free3. Both orderings of the hinge
// inputs are tried; the one whose solution reproduces free3 wins. When
// neither does, nothing is added and ok is false.
func (m *Mechanism) AddJoint(theta float64, ref Ref, free1, free3 geom.Point) (p3 Ref, ok bool) {
	sol, ok := m.Solve(theta)
	if !ok {
		return 0, false
	}
	pe, ok := sol.Points[ref]
	if !ok {
		return 0, false
	}

	// The ground ref is assigned once the ordering is known.
	const pending Ref = -1
	h, ok := orientHinge(ref, pe, pending, free1, free3)
	if !ok {
		return 0, false
	}
	g := m.nextRef()
	p3 = m.nextRef()
	if h.P1 == pending {
		h.P1 = g
	} else {
		h.P2 = g
	}
	h.P3 = p3

	m.Grounds = append(m.Grounds, Ground{Ref: g, P: free1})
	m.Hinges = append(m.Hinges, h)
	m.NotifyChange()
	return p3, true
}

// AddCoupler adds a hinge linking the existing points ref1 and ref2
// through a new point at free3, using the same ordering rule as AddJoint.
func (m *Mechanism) AddCoupler(theta float64, ref1, ref2 Ref, free3 geom.Point) (p3 Ref, ok bool) {
	sol, ok := m.Solve(theta)
	if !ok {
		return 0, false
	}
	a, okA := sol.Points[ref1]
	b, okB := sol.Points[ref2]
	if !okA || !okB {
		return 0, false
	}

	h, ok := orientHinge(ref1, a, ref2, b, free3)
	if !ok {
		return 0, false
	}
	h.P3 = m.nextRef()
	m.Hinges = append(m.Hinges, h)
	m.NotifyChange()
	return h.P3, true
}

// AddSlider adds a ground at free2 and a slider from the existing point
// ref through that ground, ending at free3. The addition is speculative:
// if the mechanism no longer solves at theta it is rolled back, leaving
// the grounds, the sliders and the ref counter as they were.
func (m *Mechanism) AddSlider(theta float64, ref Ref, free2, free3 geom.Point) (p3 Ref, ok bool) {
	sol, ok := m.Solve(theta)
	if !ok {
		return 0, false
	}
	pe, ok := sol.Points[ref]
	if !ok {
		return 0, false
	}

	nGrounds, nSliders, refCount := len(m.Grounds), len(m.Sliders), m.refCount
	rollback := func() {
		m.Grounds = m.Grounds[:nGrounds]
		m.Sliders = m.Sliders[:nSliders]
		m.refCount = refCount
	}

	g := m.nextRef()
	p3 = m.nextRef()
	m.Grounds = append(m.Grounds, Ground{Ref: g, P: free2})
	m.Sliders = append(m.Sliders, Slider{P1: ref, P2: g, P3: p3, Len: geom.Dist(pe, free3)})

	after, ok := m.Solve(theta)
	if !ok {
		rollback()
		return 0, false
	}
	if _, ok := after.Points[p3]; !ok {
		rollback()
		return 0, false
	}
	m.NotifyChange()
	return p3, true
}

// orientHinge builds the hinge whose output lands on target, trying (a, b)
// then (b, a) as its inputs. P3 is left for the caller to assign.
func orientHinge(aRef Ref, a geom.Point, bRef Ref, b geom.Point, target geom.Point) (Hinge, bool) {
	la, lb := geom.Dist(a, target), geom.Dist(b, target)
	candidates := []Hinge{
		{P1: aRef, P2: bRef, Len1: la, Len2: lb},
		{P1: bRef, P2: aRef, Len1: lb, Len2: la},
	}
	points := map[Ref]geom.Point{aRef: a, bRef: b}
	for _, h := range candidates {
		p, ok := CalcHinge(points[h.P1], points[h.P2], h.Len1, h.Len2)
		if ok && geom.Near(p, target, JointTolerance) {
			return h, true
		}
	}
	return Hinge{}, false
}
