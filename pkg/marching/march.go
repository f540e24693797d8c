package marching

import (
	"fmt"
	"runtime"
	"sync"

	"contourdim/internal/models"
	"contourdim/pkg/geometry"
)

// Options controls a march over a field
type Options struct {
	// Workers is the number of goroutines used. Values below 1 use all CPUs.
	Workers int

	// Saddle is the disambiguation rule for masks 5 and 10
	Saddle SaddleResolution
}

// Result is the output of a march
type Result struct {
	// Segments is the unordered segment soup, in row-major cell order
	Segments []geometry.Segment

	// BoxCount is the number of cells that emitted at least one segment
	BoxCount int

	// Cells is the number of cells visited
	Cells int
}

// band is the output of one worker's contiguous block of rows
type band struct {
	segments []geometry.Segment
	boxCount int
}

// March extracts the iso-contour of the whole field. Rows are split into
// contiguous bands, one per worker; the bands are concatenated in row order so
// the result does not depend on the worker count.
func March(field *models.Field, isovalue float64, opts Options) (*Result, error) {
	if field == nil {
		return nil, fmt.Errorf("%w: nil field", models.ErrInvalidField)
	}
	if field.Width < 3 || field.Height < 3 {
		return nil, fmt.Errorf("%w: got %dx%d", models.ErrFieldTooSmall, field.Width, field.Height)
	}

	cellsX, cellsY := field.GridSquares()

	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > cellsY {
		workers = cellsY
	}

	rowsPerWorker := (cellsY + workers - 1) / workers
	bands := make([]band, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := start + rowsPerWorker
		if end > cellsY {
			end = cellsY
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			bands[w] = marchRows(field, isovalue, opts.Saddle, start, end)
		}(w, start, end)
	}
	wg.Wait()

	result := &Result{Cells: cellsX * cellsY}
	total := 0
	for _, b := range bands {
		total += len(b.segments)
	}
	result.Segments = make([]geometry.Segment, 0, total)
	for _, b := range bands {
		result.Segments = append(result.Segments, b.segments...)
		result.BoxCount += b.boxCount
	}

	return result, nil
}

// marchRows processes cell rows [start, end)
func marchRows(field *models.Field, isovalue float64, saddle SaddleResolution, start, end int) band {
	var b band
	cellsX, _ := field.GridSquares()

	for y := start; y < end; y++ {
		for x := 0; x < cellsX; x++ {
			cell := CellAt(field, x, y)

			before := len(b.segments)
			b.segments = cell.AppendSegments(b.segments, isovalue, saddle)
			if len(b.segments) != before {
				b.boxCount++
			}
		}
	}

	return b
}

// CellAt builds the grid square whose top-left sample is (x, y)
func CellAt(field *models.Field, x, y int) Cell {
	return Cell{
		Corner: [4]geometry.Point{
			field.Position(x, y),
			field.Position(x, y+1),
			field.Position(x+1, y+1),
			field.Position(x+1, y),
		},
		Value: [4]float64{
			field.At(x, y),
			field.At(x, y+1),
			field.At(x+1, y+1),
			field.At(x+1, y),
		},
	}
}
