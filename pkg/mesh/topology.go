package mesh

import (
	"contourdim/pkg/geometry"
)

// ends returns a segment's welded vertex indices, lower first
func ends(s geometry.Segment) (int, int) {
	if s.Index[0] < s.Index[1] {
		return s.Index[0], s.Index[1]
	}
	return s.Index[1], s.Index[0]
}

// buildNeighbours links each pair of segments sharing a vertex. Every vertex
// must be touched by exactly two segments.
func (m *Mesh) buildNeighbours() error {
	touching := make([][]int, len(m.Vertices))

	for i, s := range m.Segments {
		lo, hi := ends(s)
		if lo == hi {
			return &TopologyError{
				Vertex:  lo,
				Segment: i,
				Degree:  1,
				Reason:  "segment endpoints weld to the same vertex",
			}
		}
		touching[lo] = append(touching[lo], i)
		touching[hi] = append(touching[hi], i)
	}

	m.Neighbours = make([][2]int, len(m.Segments))
	filled := make([]int, len(m.Segments))

	// Vertices are visited in ascending order, so a segment's lower vertex
	// fills slot 0 before its higher vertex fills slot 1.
	for v, segs := range touching {
		if len(segs) != 2 {
			seg := NoIndex
			if len(segs) > 0 {
				seg = segs[0]
			}
			return &TopologyError{
				Vertex:  v,
				Segment: seg,
				Degree:  len(segs),
				Reason:  "contour is open or self-touching",
			}
		}

		a, b := segs[0], segs[1]
		m.Neighbours[a][filled[a]] = b
		filled[a]++
		m.Neighbours[b][filled[b]] = a
		filled[b]++
	}

	for i, n := range filled {
		if n != 2 {
			return &TopologyError{
				Vertex:  NoIndex,
				Segment: i,
				Degree:  n,
				Reason:  "segment does not have two neighbours",
			}
		}
	}

	return nil
}

// across returns the neighbour of segment s on the far side of vertex v
func (m *Mesh) across(s, v int) int {
	lo, _ := ends(m.Segments[s])
	if v == lo {
		return m.Neighbours[s][0]
	}
	return m.Neighbours[s][1]
}

// far returns the endpoint of segment s that is not vertex v
func (m *Mesh) far(s, v int) geometry.Point {
	other, _ := m.Segments[s].Other(v)
	return m.Vertices[other]
}

// walk discovers the connected components and assigns normals. Seeds are
// taken in ascending segment order. Each walk enters a segment through one
// vertex and leaves through the other, which keeps the direction of travel,
// and therefore the normal orientation, consistent along the loop.
func (m *Mesh) walk() error {
	n := len(m.Segments)
	processed := make([]bool, n)
	m.Normals = make([]geometry.Point, n)
	m.Triples = make([]Triple, 0, n)
	m.component = make([]int, n)

	for seed := 0; seed < n; seed++ {
		if processed[seed] {
			continue
		}

		componentID := len(m.Components)
		var loop []int

		entry, _ := ends(m.Segments[seed])
		prev := m.across(seed, entry)
		curr := seed

		for {
			if processed[curr] {
				return &TopologyError{
					Vertex:  entry,
					Segment: curr,
					Degree:  2,
					Reason:  "walk re-entered a finished loop",
				}
			}

			exit, _ := m.Segments[curr].Other(entry)
			next := m.across(curr, exit)

			m.Triples = append(m.Triples, Triple{Prev: prev, Curr: curr, Next: next})
			m.Normals[curr] = m.far(next, exit).Sub(m.far(prev, entry)).Perp().Normalize()
			m.component[curr] = componentID
			processed[curr] = true
			loop = append(loop, curr)

			if next == seed {
				break
			}
			prev, curr, entry = curr, next, exit
		}

		m.Components = append(m.Components, loop)
	}

	return nil
}
