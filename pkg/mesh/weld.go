package mesh

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"contourdim/pkg/geometry"
)

// sortedDistinct returns every endpoint of the soup, sorted and deduplicated
// by exact equality
func sortedDistinct(segments []geometry.Segment) []geometry.Point {
	points := make([]geometry.Point, 0, 2*len(segments))
	for _, s := range segments {
		points = append(points, s.Vertex[0], s.Vertex[1])
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })

	distinct := points[:0]
	for i, p := range points {
		if i == 0 || !p.Equal(distinct[len(distinct)-1]) {
			distinct = append(distinct, p)
		}
	}
	return distinct
}

// search returns the position of p in a sorted distinct point list
func search(points []geometry.Point, p geometry.Point) int {
	return sort.Search(len(points), func(i int) bool { return !points[i].Less(p) })
}

// weld assigns every segment endpoint a vertex index and returns the vertex
// positions. With tolerance 0 points weld only when bit-identical; otherwise
// points within tolerance of an earlier representative share its index.
// Indices follow the sorted order of the representatives.
func weld(segments []geometry.Segment, tolerance float64) []geometry.Point {
	distinct := sortedDistinct(segments)

	var vertices []geometry.Point
	var rep []int
	if tolerance > 0 {
		vertices, rep = clusterWithin(distinct, tolerance)
	} else {
		vertices = distinct
	}

	for i := range segments {
		for k := 0; k < 2; k++ {
			idx := search(distinct, segments[i].Vertex[k])
			if rep != nil {
				idx = rep[idx]
			}
			segments[i].Index[k] = idx
		}
	}

	return vertices
}

// clusterWithin groups sorted distinct points into representatives. rep[i]
// is the vertex index of distinct[i].
func clusterWithin(distinct []geometry.Point, tolerance float64) ([]geometry.Point, []int) {
	nodes := make(weldNodes, len(distinct))
	for i, p := range distinct {
		nodes[i] = weldNode{Point: p, id: i}
	}
	// kdtree.New reorders its input
	tree := kdtree.New(append(weldNodes(nil), nodes...), false)

	rep := make([]int, len(distinct))
	for i := range rep {
		rep[i] = geometry.Unwelded
	}

	var vertices []geometry.Point
	for i, p := range distinct {
		if rep[i] != geometry.Unwelded {
			continue
		}

		idx := len(vertices)
		vertices = append(vertices, p)
		rep[i] = idx

		keeper := kdtree.NewDistKeeper(tolerance * tolerance)
		tree.NearestSet(keeper, nodes[i])
		for _, cd := range keeper.Heap {
			// The keeper is seeded with a sentinel entry
			if cd.Comparable == nil {
				continue
			}
			n := cd.Comparable.(weldNode)
			if rep[n.id] == geometry.Unwelded {
				rep[n.id] = idx
			}
		}
	}

	return vertices, rep
}

// weldNode is a point stored in the welding kd-tree
type weldNode struct {
	geometry.Point
	id int
}

// Compare implements the kdtree.Comparable interface
func (p weldNode) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(weldNode)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		panic("illegal dimension")
	}
}

func (p weldNode) Dims() int { return 2 }

// Distance returns the squared Euclidean distance
func (p weldNode) Distance(c kdtree.Comparable) float64 {
	q := c.(weldNode)
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// weldNodes satisfies kdtree.Interface
type weldNodes []weldNode

func (p weldNodes) Index(i int) kdtree.Comparable        { return p[i] }
func (p weldNodes) Len() int                             { return len(p) }
func (p weldNodes) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p weldNodes) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(weldPlane{weldNodes: p, Dim: d}, kdtree.MedianOfRandoms(weldPlane{weldNodes: p, Dim: d}, 100))
}

// weldPlane implements kdtree.SortSlicer for weldNodes
type weldPlane struct {
	weldNodes
	kdtree.Dim
}

func (p weldPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.weldNodes[i].X < p.weldNodes[j].X
	case 1:
		return p.weldNodes[i].Y < p.weldNodes[j].Y
	default:
		panic("illegal dimension")
	}
}

func (p weldPlane) Slice(start, end int) kdtree.SortSlicer {
	return weldPlane{weldNodes: p.weldNodes[start:end], Dim: p.Dim}
}

func (p weldPlane) Swap(i, j int) {
	p.weldNodes[i], p.weldNodes[j] = p.weldNodes[j], p.weldNodes[i]
}
