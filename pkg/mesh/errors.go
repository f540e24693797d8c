package mesh

import (
	"errors"
	"fmt"
)

// ErrTopology is returned when the segment soup is not a union of simple
// closed curves. Match it with errors.Is; the concrete error is a
// *TopologyError carrying the offending vertex and segment.
var ErrTopology = errors.New("mesh: topology invariant violated")

// NoIndex marks an unknown vertex or segment in a TopologyError
const NoIndex = -1

// TopologyError reports which vertex or segment broke the two-neighbour rule
type TopologyError struct {
	Vertex  int
	Segment int

	// Degree is the number of segments found where exactly two were required
	Degree int

	Reason string
}

func (e *TopologyError) Error() string {
	switch {
	case e.Vertex != NoIndex && e.Segment != NoIndex:
		return fmt.Sprintf("%v: vertex %d (segment %d) has degree %d: %s", ErrTopology, e.Vertex, e.Segment, e.Degree, e.Reason)
	case e.Vertex != NoIndex:
		return fmt.Sprintf("%v: vertex %d has degree %d: %s", ErrTopology, e.Vertex, e.Degree, e.Reason)
	default:
		return fmt.Sprintf("%v: segment %d has degree %d: %s", ErrTopology, e.Segment, e.Degree, e.Reason)
	}
}

func (e *TopologyError) Unwrap() error { return ErrTopology }
