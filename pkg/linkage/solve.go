package linkage

import (
	"math"
	"sort"

	"github.com/chazu/linkage/pkg/geom"
)

// Solution holds every resolved point at one drive angle and the
// polylines that draw the mechanism: one per rotary ([p1 p2]), hinge
// ([p1 p3 p2]) and slider ([p1 p2 p3]), in resolution order.
type Solution struct {
	Points map[Ref]geom.Point
	Lines  [][]geom.Point
}

// Point returns the solved position of ref.
func (s *Solution) Point(ref Ref) (geom.Point, bool) {
	p, ok := s.Points[ref]
	return p, ok
}

// ---------------------------------------------------------------------------
// Joint primitives
// ---------------------------------------------------------------------------

// CalcRotary returns the driven point of a crank anchored at ground.
func CalcRotary(theta float64, ground geom.Point, length, phase float64) geom.Point {
	return geom.Polar(ground, length, theta+phase)
}

// CalcHinge intersects the circle of radius l1 around p1 with the circle
// of radius l2 around p2. It always returns the theta1+theta2 branch. ok is
// false when the triangle inequality fails or round-off leaves the acos
// argument outside its domain.
func CalcHinge(p1, p2 geom.Point, l1, l2 float64) (geom.Point, bool) {
	l3 := geom.Dist(p1, p2)
	if l3 > l1+l2 || l1 > l3+l2 || l2 > l3+l1 {
		return geom.Point{}, false
	}
	theta1 := geom.Angle(p1, p2)
	theta2 := math.Acos((l2*l2 - l1*l1 - l3*l3) / (-2 * l1 * l3))
	if math.IsNaN(theta2) {
		return geom.Point{}, false
	}
	p3 := geom.Polar(p1, l1, theta1+theta2)
	if !geom.Finite(p3) {
		return geom.Point{}, false
	}
	return p3, true
}

// CalcSlider returns the point at distance length from p1 along the ray
// through p2. Sliders only extend outward: ok is false unless the result
// lies strictly farther from p1 than p2 does.
func CalcSlider(p1, p2 geom.Point, length float64) (geom.Point, bool) {
	d := geom.Dist(p1, p2)
	if d == 0 || !(length > d) {
		return geom.Point{}, false
	}
	p3 := geom.Polar(p1, length, geom.Angle(p1, p2))
	if !geom.Finite(p3) {
		return geom.Point{}, false
	}
	return p3, true
}

// ---------------------------------------------------------------------------
// Whole-mechanism solve
// ---------------------------------------------------------------------------

// Solve computes every joint position at drive angle theta. ok is false
// when any hinge or slider whose inputs are known cannot be satisfied.
//
// Hinges and sliders are resolved by a fixpoint over the joint lists: each
// pass resolves every joint whose inputs are known and whose output is
// not, until a pass makes no progress. Joints whose inputs never become
// known (dangling or cyclic refs) are left out of the solution silently;
// Diagnose reports them.
func (m *Mechanism) Solve(theta float64) (*Solution, bool) {
	points := make(map[Ref]geom.Point, len(m.Grounds)+len(m.Rotaries)+len(m.Hinges)+len(m.Sliders))
	var lines [][]geom.Point

	for _, g := range m.Grounds {
		points[g.Ref] = g.P
	}

	for _, r := range m.Rotaries {
		ground, ok := points[r.P1]
		if !ok {
			continue
		}
		p2 := CalcRotary(theta, ground, r.Len, r.Phase)
		if !geom.Finite(p2) {
			return nil, false
		}
		points[r.P2] = p2
		lines = append(lines, []geom.Point{ground, p2})
	}

	hingeDone := make([]bool, len(m.Hinges))
	sliderDone := make([]bool, len(m.Sliders))

	// Each productive pass resolves at least one joint, so the loop is
	// bounded by the joint count.
	for pass := 0; pass <= len(m.Hinges)+len(m.Sliders); pass++ {
		progress := false

		for i, h := range m.Hinges {
			if hingeDone[i] {
				continue
			}
			if _, known := points[h.P3]; known {
				continue
			}
			a, okA := points[h.P1]
			b, okB := points[h.P2]
			if !okA || !okB {
				continue
			}
			p3, ok := CalcHinge(a, b, h.Len1, h.Len2)
			if !ok {
				return nil, false
			}
			points[h.P3] = p3
			lines = append(lines, []geom.Point{a, p3, b})
			hingeDone[i] = true
			progress = true
		}

		for i, s := range m.Sliders {
			if sliderDone[i] {
				continue
			}
			if _, known := points[s.P3]; known {
				continue
			}
			a, okA := points[s.P1]
			b, okB := points[s.P2]
			if !okA || !okB {
				continue
			}
			p3, ok := CalcSlider(a, b, s.Len)
			if !ok {
				return nil, false
			}
			points[s.P3] = p3
			lines = append(lines, []geom.Point{a, b, p3})
			sliderDone[i] = true
			progress = true
		}

		if !progress {
			break
		}
	}

	return &Solution{Points: points, Lines: lines}, true
}

// Path samples the position of ref at n drive angles evenly spaced over
// [0, 2pi). Samples where the mechanism is infeasible or ref is unresolved
// are omitted, so the result may be shorter than n.
func (m *Mechanism) Path(ref Ref, n int) []geom.Point {
	if n <= 0 {
		return nil
	}
	path := make([]geom.Point, 0, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		sol, ok := m.Solve(theta)
		if !ok {
			continue
		}
		if p, ok := sol.Points[ref]; ok {
			path = append(path, p)
		}
	}
	return path
}

// PointAt returns the solved point nearest to p within threshold. Ties go
// to the lower ref.
func (m *Mechanism) PointAt(theta float64, p geom.Point, threshold float64) (Ref, bool) {
	sol, ok := m.Solve(theta)
	if !ok {
		return 0, false
	}
	refs := make([]Ref, 0, len(sol.Points))
	for r := range sol.Points {
		refs = append(refs, r)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })

	best, found := Ref(0), false
	bestDist := threshold
	for _, r := range refs {
		if d := geom.Dist(sol.Points[r], p); d < bestDist {
			best, bestDist, found = r, d, true
		}
	}
	return best, found
}
