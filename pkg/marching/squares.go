// Package marching implements marching squares: it turns a scalar field into
// an unordered soup of line segments along an iso-contour.
package marching

import (
	"contourdim/pkg/geometry"
)

// SaddleResolution selects how the ambiguous masks 5 and 10 are triangulated
type SaddleResolution int

const (
	// AlwaysSplit separates the two inside corners of a saddle cell. No
	// asymptotic decider is applied, so the true topology at a saddle point
	// can be misclassified.
	AlwaysSplit SaddleResolution = iota
)

func (s SaddleResolution) String() string {
	switch s {
	case AlwaysSplit:
		return "always-split"
	default:
		return "unknown"
	}
}

// Cell is one grid square. Corners are ordered clockwise:
//
//	0 3
//	1 2
//
// i.e. top-left, bottom-left, bottom-right, top-right.
type Cell struct {
	Corner [4]geometry.Point
	Value  [4]float64
}

// Mask returns the 4-bit inclusion mask. Bit i is set when corner i is at or
// above the isovalue.
func (c *Cell) Mask(isovalue float64) int {
	mask := 0
	for i := 0; i < 4; i++ {
		if c.Value[i] >= isovalue {
			mask |= 1 << i
		}
	}
	return mask
}

// Interpolate returns the point where the isovalue crosses the edge p1-p2.
// The endpoints are put in canonical order first so that two cells sharing
// an edge compute a bit-identical crossing point.
func Interpolate(p1, p2 geometry.Point, v1, v2, isovalue float64) geometry.Point {
	if p2.Less(p1) {
		p1, p2 = p2, p1
		v1, v2 = v2, v1
	}

	mu := (isovalue - v1) / (v2 - v1)
	return geometry.Point{
		X: p1.X + mu*(p2.X-p1.X),
		Y: p1.Y + mu*(p2.Y-p1.Y),
	}
}

// edge interpolates along the cell edge joining corners i and j
func (c *Cell) edge(i, j int, isovalue float64) geometry.Point {
	return Interpolate(c.Corner[i], c.Corner[j], c.Value[i], c.Value[j], isovalue)
}

// Extract returns the 0, 1 or 2 segments the cell contributes to the contour.
// Every mask is handled; masks 0 and 15 produce nothing.
func (c *Cell) Extract(isovalue float64, saddle SaddleResolution) []geometry.Segment {
	return c.AppendSegments(nil, isovalue, saddle)
}

// AppendSegments is Extract appending into dst
func (c *Cell) AppendSegments(dst []geometry.Segment, isovalue float64, saddle SaddleResolution) []geometry.Segment {
	seg := func(a, b geometry.Point) {
		dst = append(dst, geometry.NewSegment(a, b))
	}

	switch c.Mask(isovalue) {
	// One corner inside
	case 1:
		seg(c.edge(0, 1, isovalue), c.edge(0, 3, isovalue))
	case 2:
		seg(c.edge(1, 0, isovalue), c.edge(1, 2, isovalue))
	case 4:
		seg(c.edge(2, 1, isovalue), c.edge(2, 3, isovalue))
	case 8:
		seg(c.edge(3, 0, isovalue), c.edge(3, 2, isovalue))

	// Two adjacent corners inside
	case 3:
		seg(c.edge(0, 3, isovalue), c.edge(1, 2, isovalue))
	case 6:
		seg(c.edge(1, 0, isovalue), c.edge(2, 3, isovalue))
	case 9:
		seg(c.edge(0, 1, isovalue), c.edge(3, 2, isovalue))
	case 12:
		seg(c.edge(3, 0, isovalue), c.edge(2, 1, isovalue))

	// Saddles
	case 5:
		c.saddle(seg, [2][2]int{{0, 1}, {0, 3}}, [2][2]int{{2, 1}, {2, 3}}, isovalue, saddle)
	case 10:
		c.saddle(seg, [2][2]int{{1, 0}, {1, 2}}, [2][2]int{{3, 0}, {3, 2}}, isovalue, saddle)

	// Three corners inside
	case 7:
		seg(c.edge(0, 3, isovalue), c.edge(2, 3, isovalue))
	case 11:
		seg(c.edge(1, 2, isovalue), c.edge(3, 2, isovalue))
	case 13:
		seg(c.edge(0, 1, isovalue), c.edge(2, 1, isovalue))
	case 14:
		seg(c.edge(1, 0, isovalue), c.edge(3, 0, isovalue))

	default:
		// 0: all outside, 15: all inside
	}

	return dst
}

// saddle emits the two segments of an ambiguous cell. Each pair lists the
// two edges cut around one of the inside corners.
func (c *Cell) saddle(seg func(a, b geometry.Point), first, second [2][2]int, isovalue float64, _ SaddleResolution) {
	// AlwaysSplit is the only policy; anything else falls back to it.
	seg(c.edge(first[0][0], first[0][1], isovalue), c.edge(first[1][0], first[1][1], isovalue))
	seg(c.edge(second[0][0], second[0][1], isovalue), c.edge(second[1][0], second[1][1], isovalue))
}
