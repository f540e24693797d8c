package geometry

// Unwelded marks a segment endpoint that has not been assigned a vertex index
const Unwelded = -1

// Segment is an undirected line segment between two points. Index holds the
// welded vertex index of each endpoint once the mesh builder has run.
type Segment struct {
	Vertex [2]Point
	Index  [2]int
}

// NewSegment creates an unwelded segment from a to b
func NewSegment(a, b Point) Segment {
	return Segment{
		Vertex: [2]Point{a, b},
		Index:  [2]int{Unwelded, Unwelded},
	}
}

// Length returns the distance between the two endpoints
func (s Segment) Length() float64 {
	return s.Vertex[0].Distance(s.Vertex[1])
}

// Midpoint returns the centre of the segment
func (s Segment) Midpoint() Point {
	return Midpoint(s.Vertex[0], s.Vertex[1])
}

// Welded reports whether both endpoints carry a vertex index
func (s Segment) Welded() bool {
	return s.Index[0] != Unwelded && s.Index[1] != Unwelded
}

// Other returns the vertex index at the opposite end from v, and false when
// v is not an endpoint of the segment.
func (s Segment) Other(v int) (int, bool) {
	switch v {
	case s.Index[0]:
		return s.Index[1], true
	case s.Index[1]:
		return s.Index[0], true
	default:
		return Unwelded, false
	}
}
