// Package geometry provides the 2D primitives shared by the contour extractor,
// the mesh builder and the renderer.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D point or vector
type Point struct {
	X, Y float64
}

// Vec returns the point as a gonum vector
func (p Point) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// FromVec converts a gonum vector back to a Point
func FromVec(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }

// Less reports whether p sorts before q. Points are ordered
// lexicographically by X, then by Y. This order is the welding key and the
// canonical edge order used during interpolation.
func (p Point) Less(q Point) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	return p.Y < q.Y
}

// Equal reports exact floating-point equality
func (p Point) Equal(q Point) bool {
	return p.X == q.X && p.Y == q.Y
}

// Compare returns -1, 0 or +1 following Less
func (p Point) Compare(q Point) int {
	switch {
	case p.Less(q):
		return -1
	case q.Less(p):
		return 1
	default:
		return 0
	}
}

func (p Point) Add(q Point) Point { return FromVec(r2.Add(p.Vec(), q.Vec())) }

func (p Point) Sub(q Point) Point { return FromVec(r2.Sub(p.Vec(), q.Vec())) }

func (p Point) Scale(f float64) Point { return FromVec(r2.Scale(f, p.Vec())) }

func (p Point) Dot(q Point) float64 { return r2.Dot(p.Vec(), q.Vec()) }

// Length returns the Euclidean norm
func (p Point) Length() float64 { return r2.Norm(p.Vec()) }

// Normalize returns the unit vector in the direction of p.
// The zero vector is returned unchanged.
func (p Point) Normalize() Point {
	if p.Length() == 0 {
		return p
	}
	return FromVec(r2.Unit(p.Vec()))
}

// Perp rotates p by 90 degrees counter-clockwise: (x, y) -> (-y, x)
func (p Point) Perp() Point {
	return Point{X: -p.Y, Y: p.X}
}

// Distance returns the Euclidean distance between p and q
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Midpoint returns the point halfway between p and q
func Midpoint(p, q Point) Point {
	return p.Add(q).Scale(0.5)
}
