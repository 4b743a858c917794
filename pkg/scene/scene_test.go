package scene_test

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/chazu/linkage/pkg/geom"
	"github.com/chazu/linkage/pkg/interact"
	"github.com/chazu/linkage/pkg/linkage"
	"github.com/chazu/linkage/pkg/optimize"
	"github.com/chazu/linkage/pkg/render"
	"github.com/chazu/linkage/pkg/scene"
)

// newController wraps spec in a quiet controller.
func newController(spec linkage.Spec) *interact.Controller {
	m := linkage.New(spec)
	opts := interact.DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return interact.NewController(m, optimize.New(m, rand.NewSource(1)), opts)
}

func draw(ctrl *interact.Controller, mouse geom.Point) *render.Frame {
	f := &render.Frame{}
	scene.Draw(ctrl, 0, mouse, f)
	return f
}

// assertFinite fails if any recorded coordinate is NaN or infinite.
func assertFinite(t *testing.T, f *render.Frame) {
	t.Helper()
	for i, p := range f.Polylines {
		for j, q := range p.Points {
			if !geom.Finite(q) {
				t.Errorf("polyline %d point %d is %v", i, j, q)
			}
		}
	}
	for i, c := range f.Circles {
		if !geom.Finite(c.Center) || math.IsNaN(c.R) {
			t.Errorf("circle %d is %+v", i, c)
		}
	}
}

var (
	away = geom.Pt(0.8, 0.8)
	atP2 = geom.Pt(0.2, 0)
)

func TestDrawDefaultMechanism(t *testing.T) {
	f := draw(newController(linkage.DefaultSpec()), away)
	assertFinite(t, f)

	// Two axes, the crank and the hinge.
	if got := len(f.Polylines); got != 4 {
		t.Fatalf("polylines = %d, want 4", got)
	}
	axis := f.Polylines[0].Points
	if axis[0] != geom.Pt(-0.9, 0) || axis[1] != geom.Pt(0.9, 0) {
		t.Errorf("x axis = %v", axis)
	}
	if got := len(f.Polylines[3].Points); got != 3 {
		t.Errorf("hinge polyline has %d points, want 3", got)
	}

	// Only the pointer circle.
	if len(f.Circles) != 1 {
		t.Fatalf("circles = %d, want 1", len(f.Circles))
	}
	if c := f.Circles[0]; c.Center != away || c.R != interact.DefaultOptions().ClickThreshold {
		t.Errorf("pointer circle = %+v", c)
	}
}

func TestDrawHitMarker(t *testing.T) {
	f := draw(newController(linkage.DefaultSpec()), atP2)
	assertFinite(t, f)

	if len(f.Circles) != 2 {
		t.Fatalf("circles = %d, want hit marker and pointer", len(f.Circles))
	}
	hit := f.Circles[0]
	if !geom.Near(hit.Center, atP2, 1e-9) || hit.R != scene.DefaultOptions().HitMarkerRadius {
		t.Errorf("hit marker = %+v", hit)
	}
}

func TestDrawTrace(t *testing.T) {
	ctrl := newController(linkage.DefaultSpec())
	ctrl.Click(0, interact.Click{Hit: true, Ref: 3, P: geom.Pt(0.25, 0.4)})
	ctrl.Key(interact.KeyTrace)
	if _, on := ctrl.Trace(); !on {
		t.Fatal("trace not enabled")
	}

	f := draw(ctrl, away)
	assertFinite(t, f)
	if got := len(f.Polylines); got != 5 {
		t.Fatalf("polylines = %d, want 5", got)
	}
	if got := len(f.Polylines[4].Points); got != scene.DefaultOptions().TraceSamples {
		t.Errorf("trace has %d samples, want %d", got, scene.DefaultOptions().TraceSamples)
	}
}

func TestDrawPreview(t *testing.T) {
	ctrl := newController(linkage.DefaultSpec())
	ctrl.Click(0, interact.Click{P: geom.Pt(0.5, 0.5)})

	f := draw(ctrl, geom.Pt(0.6, 0.6))
	assertFinite(t, f)
	if got := len(f.Polylines); got != 5 {
		t.Fatalf("polylines = %d, want 5", got)
	}
	preview := f.Polylines[4].Points
	if len(preview) != 2 || preview[0] != geom.Pt(0.5, 0.5) || preview[1] != geom.Pt(0.6, 0.6) {
		t.Errorf("preview = %v", preview)
	}
}

func TestDrawCapturePath(t *testing.T) {
	ctrl := newController(linkage.DefaultSpec())
	ctrl.Click(0, interact.Click{Hit: true, Ref: 3, P: geom.Pt(0.25, 0.4)})
	ctrl.Key(interact.KeyTrace)
	ctrl.Key(interact.KeyOptimize)
	ctrl.MouseDown(0, geom.Pt(0.5, 0.5))
	if err := ctrl.MouseMove(0, geom.Pt(0.55, 0.5)); err != nil {
		t.Fatal(err)
	}

	f := draw(ctrl, geom.Pt(0.55, 0.5))
	assertFinite(t, f)
	last := f.Polylines[len(f.Polylines)-1].Points
	if len(last) != 2 || last[1] != geom.Pt(0.55, 0.5) {
		t.Errorf("capture polyline = %v", last)
	}
}

func TestDrawInfeasible(t *testing.T) {
	spec := linkage.Spec{
		Grounds: []linkage.Ground{{Ref: 0, P: geom.Pt(0, 0)}, {Ref: 1, P: geom.Pt(1, 0)}},
		Hinges:  []linkage.Hinge{{P1: 0, P2: 1, P3: 2, Len1: 0.1, Len2: 0.1}},
	}
	f := draw(newController(spec), geom.Pt(0, 0))
	assertFinite(t, f)

	if got := len(f.Polylines); got != 2 {
		t.Errorf("polylines = %d, want only the axes", got)
	}
	if got := len(f.Circles); got != 1 {
		t.Errorf("circles = %d, want only the pointer", got)
	}
}

func TestDrawInfeasibleHidesTrace(t *testing.T) {
	// The hinge only closes once p2 swings at least 0.25 away from p4,
	// so the frame at theta 0 is infeasible but the traced path is not empty.
	spec := linkage.DefaultSpec()
	spec.Hinges[0].Len1, spec.Hinges[0].Len2 = 0.4, 0.15
	if path := linkage.New(spec).Path(3, scene.DefaultOptions().TraceSamples); len(path) < 2 {
		t.Fatalf("trace has %d samples, want a drawable path", len(path))
	}

	ctrl := newController(spec)
	ctrl.Click(0, interact.Click{Hit: true, Ref: 3, P: geom.Pt(0.25, 0.4)})
	ctrl.Key(interact.KeyTrace)
	if _, on := ctrl.Trace(); !on {
		t.Fatal("trace not enabled")
	}

	f := draw(ctrl, away)
	assertFinite(t, f)
	if got := len(f.Polylines); got != 2 {
		t.Errorf("polylines = %d, want only the axes", got)
	}
	if got := len(f.Circles); got != 1 {
		t.Errorf("circles = %d, want only the pointer", got)
	}
}

func TestDrawNonFiniteMouse(t *testing.T) {
	f := draw(newController(linkage.DefaultSpec()), geom.Pt(math.NaN(), 0))
	assertFinite(t, f)
	if len(f.Circles) != 0 {
		t.Errorf("circles = %+v, want none", f.Circles)
	}
}

func TestOptionsDraw(t *testing.T) {
	o := scene.DefaultOptions()
	o.AxisExtent = 0.5
	f := &render.Frame{}
	o.Draw(newController(linkage.Spec{}), 0, away, f)
	if got := f.Polylines[0].Points[1]; got != geom.Pt(0.5, 0) {
		t.Errorf("axis end = %v, want (0.5, 0)", got)
	}
}
