// Package mesh reconstructs the topology of a marching squares segment soup.
//
// Build welds coincident endpoints into indexed vertices, links every segment
// to its two neighbours, walks each closed loop to discover connected
// components and assigns every segment an oriented unit normal. The soup must
// be a union of simple closed curves: every vertex shared by exactly two
// segments. A soup marched from a field with a dark one-pixel border always
// satisfies this; anything else fails with ErrTopology.
package mesh

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"contourdim/pkg/geometry"
)

// Options controls mesh reconstruction
type Options struct {
	// WeldTolerance merges endpoints closer than this distance. Zero welds
	// bit-identical points only.
	WeldTolerance float64
}

// Triple is one step of a component walk: the segment being visited and the
// segments before and after it along the loop
type Triple struct {
	Prev, Curr, Next int
}

// Mesh is the reconstructed contour. It is built once and never modified.
type Mesh struct {
	// Vertices holds the welded points; a vertex index is its position here
	Vertices []geometry.Point

	// Segments are the input segments with welded vertex indices
	Segments []geometry.Segment

	// Neighbours lists the two neighbouring segments of each segment. Slot 0
	// is the neighbour across the segment's lower vertex index, slot 1 across
	// the higher one.
	Neighbours [][2]int

	// Normals holds one unit normal per segment, oriented consistently along
	// each component
	Normals []geometry.Point

	// Triples records the walk in visiting order
	Triples []Triple

	// Components lists each closed loop's segments in walk order
	Components [][]int

	component []int
}

// Build reconstructs the mesh of a segment soup. The input slice is not
// modified. An empty soup yields an empty mesh.
func Build(segments []geometry.Segment, opts Options) (*Mesh, error) {
	m := &Mesh{
		Segments: make([]geometry.Segment, len(segments)),
	}
	copy(m.Segments, segments)

	if len(m.Segments) == 0 {
		return m, nil
	}

	m.Vertices = weld(m.Segments, opts.WeldTolerance)

	if err := m.buildNeighbours(); err != nil {
		return nil, err
	}

	if err := m.walk(); err != nil {
		return nil, err
	}

	return m, nil
}

// ObjectCount returns the number of disconnected closed contours
func (m *Mesh) ObjectCount() int {
	return len(m.Components)
}

// Empty reports whether the mesh has no segments
func (m *Mesh) Empty() bool {
	return len(m.Segments) == 0
}

// ComponentOf returns the component index of a segment
func (m *Mesh) ComponentOf(segment int) int {
	return m.component[segment]
}

// Length returns the total contour length
func (m *Mesh) Length() float64 {
	length := 0.0
	for _, s := range m.Segments {
		length += s.Length()
	}
	return length
}

// Bounds returns the axis-aligned bounding box of the welded vertices.
// An empty mesh returns NaN bounds.
func (m *Mesh) Bounds() (min, max geometry.Point) {
	if len(m.Vertices) == 0 {
		nan := math.NaN()
		return geometry.Point{X: nan, Y: nan}, geometry.Point{X: nan, Y: nan}
	}

	xs := make([]float64, len(m.Vertices))
	ys := make([]float64, len(m.Vertices))
	for i, v := range m.Vertices {
		xs[i] = v.X
		ys[i] = v.Y
	}

	min = geometry.Point{X: floats.Min(xs), Y: floats.Min(ys)}
	max = geometry.Point{X: floats.Max(xs), Y: floats.Max(ys)}
	return min, max
}
