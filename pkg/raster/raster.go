// Package raster loads images into luma grids ready to be marched.
//
// Uncompressed 24-bit Targa files are decoded directly, with the row-order
// and channel-order normalisation the format needs. PNG, JPEG and BMP go
// through image.Decode.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"

	"contourdim/internal/models"
)

// ErrUnsupported is returned for image variants the loader cannot decode
var ErrUnsupported = errors.New("raster: unsupported image")

// Options controls how pixel data is normalised
type Options struct {
	// ReverseRows flips Targa rows, which are stored bottom-up
	ReverseRows bool

	// SwapChannels reads Targa pixels as BGR instead of RGB
	SwapChannels bool

	// BlackBorder forces the outermost ring of pixels to zero so every
	// contour closes inside the image
	BlackBorder bool
}

// DefaultOptions matches how Targa files are normally laid out
func DefaultOptions() Options {
	return Options{
		ReverseRows:  true,
		SwapChannels: true,
		BlackBorder:  true,
	}
}

// Image is a grayscale raster with samples in [0, 1], row 0 at the top
type Image struct {
	Width  int
	Height int
	Luma   []float64
}

// Luma converts an 8-bit RGB triple to a grayscale value in [0, 1]
func Luma(r, g, b uint8) float64 {
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255.0
}

// Load reads an image file. The format is chosen by extension: .tga uses the
// Targa decoder, anything else image.Decode.
func Load(path string, opts Options) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	var img *Image
	if strings.ToLower(filepath.Ext(path)) == ".tga" {
		img, err = DecodeTGA(file, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
		}
		return img, nil
	}

	decoded, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return FromImage(decoded, opts), nil
}

// FromImage converts any image to luma. Only BlackBorder applies; decoded
// images are already top-down RGB.
func FromImage(src image.Image, opts Options) *Image {
	bounds := src.Bounds()
	img := &Image{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Luma:   make([]float64, bounds.Dx()*bounds.Dy()),
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			img.Luma[y*img.Width+x] = Luma(c.R, c.G, c.B)
		}
	}

	if opts.BlackBorder {
		img.blackBorder()
	}
	return img
}

// blackBorder zeroes the outermost ring of pixels
func (img *Image) blackBorder() {
	for x := 0; x < img.Width; x++ {
		img.Luma[x] = 0
		img.Luma[(img.Height-1)*img.Width+x] = 0
	}
	for y := 0; y < img.Height; y++ {
		img.Luma[y*img.Width] = 0
		img.Luma[y*img.Width+img.Width-1] = 0
	}
}

// Field wraps the luma samples as a scalar field spanning templateWidth.
// With requireSquare set, non-square images are rejected.
func (img *Image) Field(templateWidth float64, requireSquare bool) (*models.Field, error) {
	field, err := models.NewField(img.Width, img.Height, img.Luma, templateWidth)
	if err != nil {
		return nil, err
	}
	if requireSquare {
		if err := field.RequireSquare(); err != nil {
			return nil, err
		}
	}
	return field, nil
}

// Gray renders the luma grid as an 8-bit grayscale image
func (img *Image) Gray() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	for i, v := range img.Luma {
		out.Pix[i] = uint8(clamp01(v)*255 + 0.5)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
