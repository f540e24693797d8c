package models

import (
	"errors"
	"fmt"

	"contourdim/pkg/geometry"
)

// Input-shape errors. These are reported before any extraction begins.
var (
	ErrFieldTooSmall = errors.New("field must be at least 3x3 samples")
	ErrNotSquare     = errors.New("field must have equal width and height")
	ErrInvalidField  = errors.New("invalid field")
)

// Field is a rectangular grid of scalar samples (normally luma in [0,1])
// laid out in row-major order. Row 0 is the top row of the image.
type Field struct {
	// Width and Height are the sample counts along x and y
	Width  int
	Height int

	// Values holds Width*Height samples
	Values []float64

	// TemplateWidth is the physical width spanned by the samples
	TemplateWidth float64
}

// NewField validates the shape and wraps the samples. The values slice is
// retained, not copied; callers must not modify it afterwards.
func NewField(width, height int, values []float64, templateWidth float64) (*Field, error) {
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrFieldTooSmall, width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d samples", ErrInvalidField, len(values), width, height)
	}
	if !(templateWidth > 0) {
		return nil, fmt.Errorf("%w: template width must be positive, got %g", ErrInvalidField, templateWidth)
	}

	return &Field{
		Width:         width,
		Height:        height,
		Values:        values,
		TemplateWidth: templateWidth,
	}, nil
}

// RequireSquare returns ErrNotSquare unless Width == Height
func (f *Field) RequireSquare() error {
	if f.Width != f.Height {
		return fmt.Errorf("%w: got %dx%d", ErrNotSquare, f.Width, f.Height)
	}
	return nil
}

// At returns the sample at column x, row y
func (f *Field) At(x, y int) float64 {
	return f.Values[y*f.Width+x]
}

// StepSize is the physical distance between neighbouring samples
func (f *Field) StepSize() float64 {
	return f.TemplateWidth / float64(f.Width-1)
}

// TemplateHeight assumes square pixels
func (f *Field) TemplateHeight() float64 {
	return f.StepSize() * float64(f.Height-1)
}

// Origin is the physical position of sample (0, 0). The template is centred
// on the origin with y pointing up.
func (f *Field) Origin() geometry.Point {
	return geometry.Point{X: -f.TemplateWidth / 2, Y: f.TemplateHeight() / 2}
}

// Position returns the physical position of sample (x, y). Positions are
// computed from the indices, never accumulated, so every cell sharing a
// corner sees the same coordinates.
func (f *Field) Position(x, y int) geometry.Point {
	o := f.Origin()
	step := f.StepSize()
	return geometry.Point{
		X: o.X + float64(x)*step,
		Y: o.Y - float64(y)*step,
	}
}

// GridSquares returns the number of marching cells along x and y
func (f *Field) GridSquares() (int, int) {
	return f.Width - 1, f.Height - 1
}
