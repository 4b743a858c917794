// Package render defines the drawing surface the scene paints onto.
// Implementations (Frame, sdfx) receive polylines and circles in
// mechanism coordinates; nothing here knows about pixels.
package render

import (
	"math"

	"github.com/chazu/linkage/pkg/geom"
)

// Surface receives the primitives of one frame in draw order.
type Surface interface {
	// Polyline draws connected segments through pts.
	Polyline(pts []geom.Point)
	// Circle draws the outline of a circle.
	Circle(center geom.Point, r float64)
}

// Polyline is a recorded Surface.Polyline call.
type Polyline struct {
	Points []geom.Point `json:"points"`
}

// Circle is a recorded Surface.Circle call.
type Circle struct {
	Center geom.Point `json:"center"`
	R      float64    `json:"r"`
}

// Frame is an in-memory Surface. The App binding ships frames to the
// front end as JSON.
type Frame struct {
	Polylines []Polyline `json:"polylines"`
	Circles   []Circle   `json:"circles"`
}

var _ Surface = (*Frame)(nil)

// Polyline records a copy of pts.
func (f *Frame) Polyline(pts []geom.Point) {
	f.Polylines = append(f.Polylines, Polyline{Points: append([]geom.Point(nil), pts...)})
}

// Circle records a circle.
func (f *Frame) Circle(center geom.Point, r float64) {
	f.Circles = append(f.Circles, Circle{Center: center, R: r})
}

// SegmentCount returns the number of line segments across all polylines.
func (f *Frame) SegmentCount() int {
	n := 0
	for _, p := range f.Polylines {
		if len(p.Points) > 1 {
			n += len(p.Points) - 1
		}
	}
	return n
}

// IsEmpty returns true if nothing was drawn.
func (f *Frame) IsEmpty() bool {
	return len(f.Polylines) == 0 && len(f.Circles) == 0
}

// Replay draws the recorded frame onto s in the original order within
// each primitive kind: polylines first, then circles.
func (f *Frame) Replay(s Surface) {
	for _, p := range f.Polylines {
		s.Polyline(p.Points)
	}
	for _, c := range f.Circles {
		s.Circle(c.Center, c.R)
	}
}

// Bounds returns the axis-aligned box around everything drawn. ok is
// false for an empty frame.
func (f *Frame) Bounds() (lo, hi geom.Point, ok bool) {
	add := func(p geom.Point) {
		if !ok {
			lo, hi, ok = p, p, true
			return
		}
		lo = geom.Pt(min(lo.X, p.X), min(lo.Y, p.Y))
		hi = geom.Pt(max(hi.X, p.X), max(hi.Y, p.Y))
	}
	for _, p := range f.Polylines {
		for _, q := range p.Points {
			add(q)
		}
	}
	for _, c := range f.Circles {
		add(geom.Pt(c.Center.X-c.R, c.Center.Y-c.R))
		add(geom.Pt(c.Center.X+c.R, c.Center.Y+c.R))
	}
	return lo, hi, ok
}

// CirclePolygon approximates a circle with n segments, at least three.
// The result is closed: the last point equals the first.
func CirclePolygon(center geom.Point, r float64, n int) []geom.Point {
	n = max(n, 3)
	pts := make([]geom.Point, 0, n+1)
	for i := 0; i < n; i++ {
		pts = append(pts, geom.Polar(center, r, 2*math.Pi*float64(i)/float64(n)))
	}
	return append(pts, pts[0])
}
