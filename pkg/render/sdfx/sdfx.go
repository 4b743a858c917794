// Package sdfx implements render.Surface on top of the 2D exporters in
// github.com/deadsy/sdfx/render, producing SVG and DXF drawings.
package sdfx

import (
	"fmt"

	sdfxrender "github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/linkage/pkg/geom"
	"github.com/chazu/linkage/pkg/render"
)

// Compile-time interface checks.
var (
	_ render.Surface = (*SVG)(nil)
	_ render.Surface = (*DXF)(nil)
)

// CircleSegments is the polygon resolution used for circles in SVG output.
const CircleSegments = 16

// DefaultScale maps one mechanism unit to SVG user units. The sdfx SVG
// writer rounds to integers, so the normalized space needs scaling up.
const DefaultScale = 500

// DefaultLineStyle is the stroke used for every SVG line.
const DefaultLineStyle = "fill:none;stroke:black;stroke-width:1"

func vec(p geom.Point, scale float64) v2.Vec {
	return v2.Vec{X: p.X * scale, Y: p.Y * scale}
}

// segments calls line for each consecutive pair of pts, skipping pairs
// with a non-finite end.
func segments(pts []geom.Point, line func(a, b geom.Point)) {
	for i := 1; i < len(pts); i++ {
		if geom.Finite(pts[i-1]) && geom.Finite(pts[i]) {
			line(pts[i-1], pts[i])
		}
	}
}

// ---------------------------------------------------------------------------
// SVG
// ---------------------------------------------------------------------------

// SVG writes a frame as an SVG file.
type SVG struct {
	path  string
	scale float64
	svg   *sdfxrender.SVG
	lines int
}

// NewSVG returns a surface that will write to path on Save. A scale of
// zero means DefaultScale.
func NewSVG(path string, scale float64) *SVG {
	if scale == 0 {
		scale = DefaultScale
	}
	return &SVG{
		path:  path,
		scale: scale,
		svg:   sdfxrender.NewSVG(path, DefaultLineStyle),
	}
}

// Polyline adds one SVG line per segment.
func (s *SVG) Polyline(pts []geom.Point) {
	segments(pts, func(a, b geom.Point) {
		s.svg.Line(vec(a, s.scale), vec(b, s.scale))
		s.lines++
	})
}

// Circle adds a CircleSegments-gon.
func (s *SVG) Circle(center geom.Point, r float64) {
	s.Polyline(render.CirclePolygon(center, r, CircleSegments))
}

// Lines returns the number of lines drawn so far.
func (s *SVG) Lines() int { return s.lines }

// Save writes the file. A drawing with no lines is an error since sdfx
// cannot size an empty canvas.
func (s *SVG) Save() error {
	if s.lines == 0 {
		return fmt.Errorf("sdfx: %s: nothing to draw", s.path)
	}
	if err := s.svg.Save(); err != nil {
		return fmt.Errorf("sdfx: save svg: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// DXF
// ---------------------------------------------------------------------------

// DXF writes a frame as a DXF drawing in mechanism units.
type DXF struct {
	path string
	dxf  *sdfxrender.DXF
	n    int
}

// NewDXF returns a surface that will write to path on Save.
func NewDXF(path string) *DXF {
	return &DXF{path: path, dxf: sdfxrender.NewDXF(path)}
}

// Polyline adds one DXF LINE entity per segment.
func (d *DXF) Polyline(pts []geom.Point) {
	segments(pts, func(a, b geom.Point) {
		d.dxf.Line(&sdf.Line2{vec(a, 1), vec(b, 1)})
		d.n++
	})
}

// Circle adds a DXF circle entity.
func (d *DXF) Circle(center geom.Point, r float64) {
	if !geom.Finite(center) {
		return
	}
	d.dxf.Points(v2.VecSet{vec(center, 1)}, r)
	d.n++
}

// Entities returns the number of entities drawn so far.
func (d *DXF) Entities() int { return d.n }

// Save writes the file.
func (d *DXF) Save() error {
	if err := d.dxf.Save(); err != nil {
		return fmt.Errorf("sdfx: save dxf: %w", err)
	}
	return nil
}
