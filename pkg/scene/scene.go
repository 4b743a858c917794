// Package scene turns controller state into drawing calls. It reads the
// mechanism and never mutates it.
package scene

import (
	"time"

	"github.com/samber/lo"

	"github.com/chazu/linkage/pkg/geom"
	"github.com/chazu/linkage/pkg/interact"
	"github.com/chazu/linkage/pkg/linkage"
	"github.com/chazu/linkage/pkg/render"
)

// Options controls what Draw emits besides the mechanism itself.
type Options struct {
	AxisExtent      float64 // half-length of the two axis lines
	TraceSamples    int     // samples in the traced path of the selected point
	HitMarkerRadius float64 // circle drawn on the point under the pointer
}

// DefaultOptions returns the stock scene settings.
func DefaultOptions() Options {
	return Options{
		AxisExtent:      0.9,
		TraceSamples:    100,
		HitMarkerRadius: 0.01,
	}
}

// Draw paints one frame with DefaultOptions.
func Draw(ctrl *interact.Controller, elapsed time.Duration, mouse geom.Point, s render.Surface) {
	DefaultOptions().Draw(ctrl, elapsed, mouse, s)
}

// Draw paints one frame in this order: axes, mechanism links, traced
// path, hit marker, click preview, captured path, pointer circle. Links,
// traced path, hit marker and preview are skipped while the mechanism has no
// solution.
func (o Options) Draw(ctrl *interact.Controller, elapsed time.Duration, mouse geom.Point, s render.Surface) {
	m := ctrl.Mechanism()
	theta := ctrl.Theta(elapsed)
	threshold := ctrl.Options().ClickThreshold

	e := o.AxisExtent
	polyline(s, []geom.Point{geom.Pt(-e, 0), geom.Pt(e, 0)})
	polyline(s, []geom.Point{geom.Pt(0, -e), geom.Pt(0, e)})

	if sol, ok := m.Solve(theta); ok {
		for _, l := range sol.Lines {
			polyline(s, l)
		}
		if ref, on := ctrl.Trace(); on {
			polyline(s, m.Path(ref, o.TraceSamples))
		}
		o.hitMarker(m, sol, theta, mouse, threshold, s)
		polyline(s, ctrl.Preview(sol, mouse))
	}

	if _, path := ctrl.Capture(); len(path) > 0 {
		polyline(s, path)
	}

	if geom.Finite(mouse) {
		s.Circle(mouse, threshold)
	}
}

func (o Options) hitMarker(m *linkage.Mechanism, sol *linkage.Solution, theta float64, mouse geom.Point, threshold float64, s render.Surface) {
	ref, hit := m.PointAt(theta, mouse, threshold)
	if !hit {
		return
	}
	if p, ok := sol.Point(ref); ok {
		s.Circle(p, o.HitMarkerRadius)
	}
}

// polyline drops non-finite points and draws what is left if it still
// forms at least one segment.
func polyline(s render.Surface, pts []geom.Point) {
	pts = lo.Filter(pts, func(p geom.Point, _ int) bool { return geom.Finite(p) })
	if len(pts) > 1 {
		s.Polyline(pts)
	}
}
