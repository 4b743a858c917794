// Package geom provides the planar point primitives shared by the solver,
// the optimizer and the rendering layer.
package geom

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a position in the mechanism's normalized coordinate space.
type Point = r2.Vec

// ErrPathLength is returned when two paths with different sample counts are compared.
var ErrPathLength = errors.New("geom: path lengths must be equal")

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// Polar returns the point at distance r from origin in direction angle (radians).
func Polar(origin Point, r, angle float64) Point {
	return r2.Add(origin, r2.Scale(r, Point{X: math.Cos(angle), Y: math.Sin(angle)}))
}

// Angle returns the direction from a to b in radians, in (-pi, pi].
func Angle(a, b Point) float64 {
	d := r2.Sub(b, a)
	return math.Atan2(d.Y, d.X)
}

// NormAngle wraps an angle into [0, 2pi).
func NormAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Finite reports whether both coordinates are neither NaN nor infinite.
func Finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Near reports whether a and b are within tol of each other.
func Near(a, b Point, tol float64) bool {
	return Dist(a, b) < tol
}

// PathError sums the per-sample distances between two equally long paths.
func PathError(a, b []Point) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrPathLength, len(a), len(b))
	}
	d := make([]float64, len(a))
	for i := range a {
		d[i] = Dist(a[i], b[i])
	}
	return floats.Sum(d), nil
}
