// Package dimension estimates the fractal dimension of an extracted contour,
// once by box counting over the marching grid and once from the alignment of
// neighbouring segment normals.
package dimension

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"contourdim/pkg/mesh"
)

var (
	// ErrEmpty is returned when there is no contour to measure
	ErrEmpty = errors.New("dimension: no contour")

	// ErrInvalidStep is returned for a grid step outside (0, 1)
	ErrInvalidStep = errors.New("dimension: step size must be in (0, 1)")
)

// BoxCounting returns ln(boxCount) / ln(1/stepSize), a single-resolution
// box-counting estimate from the number of grid cells the contour crosses.
func BoxCounting(boxCount int, stepSize float64) (float64, error) {
	if boxCount <= 0 {
		return 0, ErrEmpty
	}
	if !(stepSize > 0 && stepSize < 1) {
		return 0, fmt.Errorf("%w: got %g", ErrInvalidStep, stepSize)
	}
	return math.Log(float64(boxCount)) / math.Log(1/stepSize), nil
}

// CurvatureEstimate is the result of the normal-alignment estimator
type CurvatureEstimate struct {
	// K is the mean of the per-segment curvature samples
	K float64

	// StdDev is the standard deviation of the samples
	StdDev float64

	// Dimension is 1 + K
	Dimension float64

	// Samples holds k_i for every segment, indexed like the mesh segments
	Samples []float64
}

// Curvature measures how far each segment's normal turns away from its two
// neighbours':
//
//	d_i = (N_i·N_n0 + N_i·N_n1) / 2
//	k_i = (1 - d_i) / 2
//
// Straight co-oriented chains give k_i = 0; a chain that reverses at every
// step gives k_i = 1. The dimension estimate is 1 + mean(k_i).
func Curvature(m *mesh.Mesh) (*CurvatureEstimate, error) {
	if m == nil || m.Empty() {
		return nil, ErrEmpty
	}

	samples := make([]float64, len(m.Segments))
	for i := range m.Segments {
		n := m.Normals[i]
		n0 := m.Normals[m.Neighbours[i][0]]
		n1 := m.Normals[m.Neighbours[i][1]]

		d := (n.Dot(n0) + n.Dot(n1)) / 2
		samples[i] = (1 - d) / 2
	}

	est := &CurvatureEstimate{Samples: samples}
	if len(samples) == 1 {
		est.K = samples[0]
	} else {
		est.K, est.StdDev = stat.MeanStdDev(samples, nil)
	}
	est.Dimension = 1 + est.K

	return est, nil
}
