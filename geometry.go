package musclearm

import (
	"math"

	"zappem.net/pub/math/geom"
)

// Point is a planar location in meters. X increases to the right and
// Y increases upwards.
type Point struct {
	X, Y float64
}

// Add returns the component-wise sum p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the component-wise difference p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// R returns the distance of p from the origin.
func (p Point) R() float64 {
	return math.Hypot(p.X, p.Y)
}

// Equals compares two points to within geom.Zeroish precision.
func (p Point) Equals(q Point) bool {
	return geom.Zeroish(p.X-q.X) && geom.Zeroish(p.Y-q.Y)
}

// PolarToCartesian converts a radius and an angle in degrees,
// measured counter-clockwise from the +X axis, into a point. A
// negative radius points the opposite way.
func PolarToCartesian(radius, degrees float64) Point {
	a := geom.Degrees(degrees)
	return Point{X: radius * a.C(), Y: radius * a.S()}
}

// Rotate turns p about the origin by degrees. Positive angles rotate
// clockwise, so Rotate(p, -a) undoes Rotate(p, a).
func Rotate(p Point, degrees float64) Point {
	a := geom.Degrees(degrees)
	s, c := a.S(), a.C()
	return Point{
		X: p.X*c + p.Y*s,
		Y: -p.X*s + p.Y*c,
	}
}
