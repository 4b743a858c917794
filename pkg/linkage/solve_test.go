package linkage

import (
	"math"
	"testing"

	"github.com/chazu/linkage/pkg/geom"
)

const eps = 1e-9

func near(a, b geom.Point, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// ---------------------------------------------------------------------------
// Joint primitives
// ---------------------------------------------------------------------------

func TestCalcRotary(t *testing.T) {
	tests := []struct {
		name  string
		theta float64
		want  geom.Point
	}{
		{"zero", 0, geom.Pt(1, 0)},
		{"quarter turn", math.Pi / 2, geom.Pt(0, 1)},
		{"half turn", math.Pi, geom.Pt(-1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcRotary(tt.theta, geom.Pt(0, 0), 1, 0)
			if !near(got, tt.want, eps) {
				t.Errorf("CalcRotary(%v) = %v, want %v", tt.theta, got, tt.want)
			}
		})
	}
}

func TestCalcRotaryPhaseAndOffset(t *testing.T) {
	got := CalcRotary(math.Pi/4, geom.Pt(1, 2), 2, math.Pi/4)
	if !near(got, geom.Pt(1, 4), eps) {
		t.Errorf("got %v, want (1, 4)", got)
	}
}

func TestCalcHingeTriangleInequality(t *testing.T) {
	tests := []struct {
		name   string
		p2     geom.Point
		l1, l2 float64
	}{
		{"too far apart", geom.Pt(3, 0), 1, 1},
		{"l1 too long", geom.Pt(1, 0), 3, 1},
		{"l2 too long", geom.Pt(1, 0), 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p, ok := CalcHinge(geom.Pt(0, 0), tt.p2, tt.l1, tt.l2); ok {
				t.Errorf("expected infeasible, got %v", p)
			}
		})
	}
}

func TestCalcHingeDeterministicBranch(t *testing.T) {
	for i := 0; i < 3; i++ {
		got, ok := CalcHinge(geom.Pt(0, 0), geom.Pt(2, 0), math.Sqrt2, math.Sqrt2)
		if !ok {
			t.Fatal("expected feasible hinge")
		}
		if !near(got, geom.Pt(1, 1), eps) {
			t.Fatalf("call %d: got %v, want (1, 1)", i, got)
		}
	}
}

func TestCalcHingeRejectsNaN(t *testing.T) {
	if p, ok := CalcHinge(geom.Pt(0, 0), geom.Pt(1, 0), math.NaN(), 1); ok {
		t.Errorf("expected infeasible for NaN length, got %v", p)
	}
	// Coincident inputs leave the acos argument undefined.
	if p, ok := CalcHinge(geom.Pt(1, 1), geom.Pt(1, 1), 1, 1); ok {
		t.Errorf("expected infeasible for coincident inputs, got %v", p)
	}
}

func TestCalcSlider(t *testing.T) {
	if p, ok := CalcSlider(geom.Pt(0, 0), geom.Pt(1, 0), 0.5); ok {
		t.Errorf("len 0.5: expected infeasible, got %v", p)
	}
	if p, ok := CalcSlider(geom.Pt(0, 0), geom.Pt(1, 0), 1); ok {
		t.Errorf("len equal to base: expected infeasible, got %v", p)
	}
	got, ok := CalcSlider(geom.Pt(0, 0), geom.Pt(1, 0), 2)
	if !ok {
		t.Fatal("len 2: expected feasible")
	}
	if !near(got, geom.Pt(2, 0), eps) {
		t.Errorf("len 2: got %v, want (2, 0)", got)
	}
	if _, ok := CalcSlider(geom.Pt(1, 1), geom.Pt(1, 1), 2); ok {
		t.Error("coincident base: expected infeasible")
	}
}

// ---------------------------------------------------------------------------
// Solve
// ---------------------------------------------------------------------------

func TestSolveDefaultMechanism(t *testing.T) {
	m := New(DefaultSpec())
	sol, ok := m.Solve(0)
	if !ok {
		t.Fatal("default mechanism should solve at theta 0")
	}
	if p2 := sol.Points[2]; !near(p2, geom.Pt(0.2, 0), eps) {
		t.Errorf("p2 = %v, want (0.2, 0)", p2)
	}
	p3, ok := sol.Point(3)
	if !ok {
		t.Fatal("p3 unresolved")
	}
	if d := geom.Dist(p3, sol.Points[2]); math.Abs(d-0.4) > eps {
		t.Errorf("|p3-p2| = %v, want 0.4", d)
	}
	if d := geom.Dist(p3, sol.Points[4]); math.Abs(d-0.4) > eps {
		t.Errorf("|p3-p4| = %v, want 0.4", d)
	}
	if p3.Y <= 0 {
		t.Errorf("p3 = %v, want the upper intersection", p3)
	}
	if len(sol.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(sol.Lines))
	}
	if len(sol.Lines[0]) != 2 || len(sol.Lines[1]) != 3 {
		t.Errorf("line shapes = %d, %d; want 2, 3", len(sol.Lines[0]), len(sol.Lines[1]))
	}
	if !near(sol.Lines[1][1], p3, eps) {
		t.Errorf("hinge line middle = %v, want p3 %v", sol.Lines[1][1], p3)
	}
}

// chainSpec declares a hinge before the hinge that produces its input.
func chainSpec() Spec {
	return Spec{
		Grounds: []Ground{
			{Ref: 0, P: geom.Pt(0, 0)},
			{Ref: 1, P: geom.Pt(2, 0)},
		},
		Hinges: []Hinge{
			{P1: 2, P2: 1, P3: 3, Len1: 1, Len2: 1},
			{P1: 0, P2: 1, P3: 2, Len1: math.Sqrt2, Len2: math.Sqrt2},
		},
	}
}

func TestSolveOutOfOrderJoints(t *testing.T) {
	m := New(chainSpec())
	sol, ok := m.Solve(0)
	if !ok {
		t.Fatal("expected feasible")
	}
	if !near(sol.Points[2], geom.Pt(1, 1), eps) {
		t.Errorf("p2 = %v, want (1, 1)", sol.Points[2])
	}
	p3, ok := sol.Points[3]
	if !ok {
		t.Fatal("p3 should resolve on the second pass")
	}
	if d := geom.Dist(p3, geom.Pt(1, 1)); math.Abs(d-1) > eps {
		t.Errorf("|p3-p2| = %v, want 1", d)
	}
	if len(sol.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(sol.Lines))
	}
	if !near(sol.Lines[0][1], geom.Pt(1, 1), eps) {
		t.Errorf("first line should be the hinge resolved first, got %v", sol.Lines[0])
	}
}

func TestSolveSilentPartialResults(t *testing.T) {
	tests := []struct {
		name    string
		hinges  []Hinge
		missing []Ref
	}{
		{
			name:    "dangling",
			hinges:  []Hinge{{P1: 0, P2: 9, P3: 2, Len1: 1, Len2: 1}},
			missing: []Ref{2},
		},
		{
			name:    "dangling far ref",
			hinges:  []Hinge{{P1: 0, P2: 30000000, P3: 2, Len1: 1, Len2: 1}},
			missing: []Ref{2, 30000000},
		},
		{
			name: "cycle",
			hinges: []Hinge{
				{P1: 0, P2: 3, P3: 2, Len1: 1, Len2: 1},
				{P1: 1, P2: 2, P3: 3, Len1: 1, Len2: 1},
			},
			missing: []Ref{2, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Spec{
				Grounds: []Ground{{Ref: 0, P: geom.Pt(0, 0)}, {Ref: 1, P: geom.Pt(1, 0)}},
				Hinges:  tt.hinges,
			})
			sol, ok := m.Solve(0)
			if !ok {
				t.Fatal("unresolved joints must not fail the solve")
			}
			for _, r := range tt.missing {
				if _, ok := sol.Points[r]; ok {
					t.Errorf("%s should be unresolved", r)
				}
			}
			if len(sol.Lines) != 0 {
				t.Errorf("lines = %d, want 0", len(sol.Lines))
			}
		})
	}
}

func TestSolveInfeasibleJointFailsWholeSolve(t *testing.T) {
	spec := DefaultSpec()
	spec.Hinges[0].Len1, spec.Hinges[0].Len2 = 0.01, 0.01
	if _, ok := New(spec).Solve(0); ok {
		t.Error("expected infeasible")
	}

	spec = DefaultSpec()
	spec.Sliders = []Slider{{P1: 1, P2: 4, P3: 6, Len: 0.1}}
	if _, ok := New(spec).Solve(0); ok {
		t.Error("expected slider to fail the solve")
	}
}

func TestSolveSlider(t *testing.T) {
	spec := DefaultSpec()
	spec.Sliders = []Slider{{P1: 2, P2: 5, P3: 6, Len: 0.7}}
	sol, ok := New(spec).Solve(0)
	if !ok {
		t.Fatal("expected feasible")
	}
	if !near(sol.Points[6], geom.Pt(-0.5, 0), eps) {
		t.Errorf("p6 = %v, want (-0.5, 0)", sol.Points[6])
	}
	last := sol.Lines[len(sol.Lines)-1]
	if len(last) != 3 || !near(last[1], geom.Pt(-0.3, 0), eps) {
		t.Errorf("slider line = %v, want [p2 p5 p6]", last)
	}
}

// ---------------------------------------------------------------------------
// Path and hit testing
// ---------------------------------------------------------------------------

func TestPathFullTurn(t *testing.T) {
	m := New(DefaultSpec())
	path := m.Path(2, 100)
	if len(path) != 100 {
		t.Fatalf("len = %d, want 100", len(path))
	}
	if !near(path[0], geom.Pt(0.2, 0), eps) {
		t.Errorf("path[0] = %v, want (0.2, 0)", path[0])
	}
	if !near(path[25], geom.Pt(0, 0.2), eps) {
		t.Errorf("path[25] = %v, want (0, 0.2)", path[25])
	}
}

func TestPathOmitsInfeasibleSamples(t *testing.T) {
	spec := DefaultSpec()
	spec.Hinges[0].Len1, spec.Hinges[0].Len2 = 0.1, 0.1
	path := New(spec).Path(3, 100)
	if len(path) == 0 || len(path) >= 100 {
		t.Errorf("len = %d, want a partial path", len(path))
	}
}

func TestPathUnresolvedRef(t *testing.T) {
	if path := New(DefaultSpec()).Path(42, 10); len(path) != 0 {
		t.Errorf("len = %d, want 0", len(path))
	}
}

func TestPathNonPositiveSamples(t *testing.T) {
	m := New(DefaultSpec())
	for _, n := range []int{0, -1, -100} {
		if path := m.Path(2, n); path != nil {
			t.Errorf("Path(2, %d) = %v, want nil", n, path)
		}
	}
}

func TestPointAt(t *testing.T) {
	m := New(DefaultSpec())
	tests := []struct {
		name   string
		p      geom.Point
		want   Ref
		wantOK bool
	}{
		{"near driven point", geom.Pt(0.21, 0), 2, true},
		{"right ground", geom.Pt(0.26, 0), 4, true},
		{"driven point from the right", geom.Pt(0.24, 0), 2, true},
		{"ground", geom.Pt(-0.3, 0.01), 5, true},
		{"miss", geom.Pt(0.6, 0.6), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.PointAt(0, tt.p, 0.05)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Errorf("PointAt(%v) = %s, %v; want %s, %v", tt.p, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPointAtPrefersNearest(t *testing.T) {
	m := New(DefaultSpec())
	// Both p2 (0.2, 0) and p4 (0.3, 0) are within the threshold.
	got, ok := m.PointAt(0, geom.Pt(0.27, 0), 0.2)
	if !ok || got != 4 {
		t.Errorf("got %s, %v; want p4", got, ok)
	}
}
