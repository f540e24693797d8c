package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/vector"

	"contourdim/pkg/geometry"
	"contourdim/pkg/mesh"
)

var (
	backgroundColour = color.RGBA{A: 255}
	segmentColour    = color.RGBA{B: 255, A: 255}
	normalColour     = color.RGBA{R: 255, G: 128, A: 255}
)

// Viewer draws a contour mesh and its face normals into an image.
// The template is centred on the origin with y pointing up; it is scaled so
// the template width fills the image width.
type Viewer struct {
	mesh *mesh.Mesh

	// template extent in physical units
	templateWidth  float64
	templateHeight float64

	// output size in pixels
	width  int
	height int

	// LineWidth is the stroke width of segments, in pixels
	LineWidth float64

	// NormalLength is the drawn length of a normal, in pixels. Zero hides normals.
	NormalLength float64
}

// NewViewer creates a viewer producing images size pixels wide
func NewViewer(m *mesh.Mesh, templateWidth, templateHeight float64, size int) (*Viewer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("image size must be positive, got %d", size)
	}
	if templateWidth <= 0 || templateHeight <= 0 {
		return nil, fmt.Errorf("template extent must be positive, got %gx%g", templateWidth, templateHeight)
	}

	height := int(float64(size)*templateHeight/templateWidth + 0.5)
	if height < 1 {
		height = 1
	}

	return &Viewer{
		mesh:           m,
		templateWidth:  templateWidth,
		templateHeight: templateHeight,
		width:          size,
		height:         height,
		LineWidth:      2,
		NormalLength:   float64(size) / 100,
	}, nil
}

// Size returns the output image dimensions
func (v *Viewer) Size() (int, int) {
	return v.width, v.height
}

// toPixel maps a template point to image coordinates
func (v *Viewer) toPixel(p geometry.Point) (float64, float64) {
	scale := float64(v.width) / v.templateWidth
	x := (p.X + v.templateWidth/2) * scale
	y := (v.templateHeight/2 - p.Y) * scale
	return x, y
}

// Render draws the background, every segment and, at each segment midpoint,
// its normal
func (v *Viewer) Render() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, v.width, v.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColour), image.Point{}, draw.Src)

	if v.mesh == nil {
		return img
	}

	z := vector.NewRasterizer(v.width, v.height)
	for _, s := range v.mesh.Segments {
		ax, ay := v.toPixel(s.Vertex[0])
		bx, by := v.toPixel(s.Vertex[1])
		v.line(z, img, ax, ay, bx, by, v.LineWidth, segmentColour)
	}

	if v.NormalLength > 0 && len(v.mesh.Normals) == len(v.mesh.Segments) {
		for i, s := range v.mesh.Segments {
			mx, my := v.toPixel(s.Midpoint())
			n := v.mesh.Normals[i]
			// Image y grows downwards
			v.line(z, img, mx, my, mx+n.X*v.NormalLength, my-n.Y*v.NormalLength, v.LineWidth/2, normalColour)
		}
	}

	return img
}

// line rasterizes a stroke of the given width as a quad
func (v *Viewer) line(z *vector.Rasterizer, dst *image.RGBA, ax, ay, bx, by, width float64, c color.Color) {
	dir := geometry.Point{X: bx - ax, Y: by - ay}
	if dir.Length() == 0 {
		return
	}
	off := dir.Normalize().Perp().Scale(width / 2)

	z.Reset(v.width, v.height)
	z.DrawOp = draw.Over
	z.MoveTo(float32(ax+off.X), float32(ay+off.Y))
	z.LineTo(float32(bx+off.X), float32(by+off.Y))
	z.LineTo(float32(bx-off.X), float32(by-off.Y))
	z.LineTo(float32(ax-off.X), float32(ay-off.Y))
	z.ClosePath()
	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// SaveImage writes an image as PNG, or JPEG for .jpg/.jpeg paths
func SaveImage(img image.Image, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	default:
		return png.Encode(file, img)
	}
}
