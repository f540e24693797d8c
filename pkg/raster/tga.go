package raster

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Targa data type codes
const (
	tgaUncompressedRGB = 2
)

// tgaHeader is the fixed 18-byte Targa header
type tgaHeader struct {
	IDLength        uint8
	ColourMapType   uint8
	DataTypeCode    uint8
	ColourMapOrigin uint16
	ColourMapLength uint16
	ColourMapDepth  uint8
	XOrigin         uint16
	YOrigin         uint16
	Width           uint16
	Height          uint16
	BitsPerPixel    uint8
	ImageDescriptor uint8
}

// DecodeTGA reads a 24-bit uncompressed Targa image
func DecodeTGA(r io.Reader, opts Options) (*Image, error) {
	var h tgaHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	if h.DataTypeCode != tgaUncompressedRGB {
		return nil, fmt.Errorf("%w: data type %d, only uncompressed RGB (2) is supported", ErrUnsupported, h.DataTypeCode)
	}
	if h.BitsPerPixel != 24 {
		return nil, fmt.Errorf("%w: %d bits per pixel, only 24 is supported", ErrUnsupported, h.BitsPerPixel)
	}
	if h.Width == 0 || h.Height == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupported)
	}

	// Skip the image ID and any colour map
	skip := int64(h.IDLength)
	if h.ColourMapType == 1 {
		skip += int64(h.ColourMapLength) * int64((int(h.ColourMapDepth)+7)/8)
	}
	if _, err := io.CopyN(io.Discard, r, skip); err != nil {
		return nil, fmt.Errorf("error skipping header fields: %w", err)
	}

	width, height := int(h.Width), int(h.Height)
	pixels := make([]byte, width*height*3)
	if _, err := io.ReadFull(r, pixels); err != nil {
		return nil, fmt.Errorf("error reading pixel data: %w", err)
	}

	img := &Image{
		Width:  width,
		Height: height,
		Luma:   make([]float64, width*height),
	}

	for y := 0; y < height; y++ {
		srcRow := y
		if opts.ReverseRows {
			srcRow = height - 1 - y
		}
		for x := 0; x < width; x++ {
			p := pixels[(srcRow*width+x)*3:]
			r, g, b := p[0], p[1], p[2]
			if opts.SwapChannels {
				r, b = b, r
			}
			img.Luma[y*width+x] = Luma(r, g, b)
		}
	}

	if opts.BlackBorder {
		img.blackBorder()
	}
	return img, nil
}

// EncodeTGA writes rgb rows (top row first, 3 bytes per pixel in RGB order)
// as an uncompressed bottom-up BGR Targa file, the layout DecodeTGA reads
// with DefaultOptions.
func EncodeTGA(w io.Writer, width, height int, rgb []byte) error {
	if len(rgb) != width*height*3 {
		return fmt.Errorf("%w: %d bytes for %dx%d pixels", ErrUnsupported, len(rgb), width, height)
	}

	h := tgaHeader{
		DataTypeCode: tgaUncompressedRGB,
		Width:        uint16(width),
		Height:       uint16(height),
		BitsPerPixel: 24,
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	row := make([]byte, width*3)
	for y := height - 1; y >= 0; y-- {
		src := rgb[y*width*3 : (y+1)*width*3]
		for x := 0; x < width; x++ {
			row[x*3+0] = src[x*3+2]
			row[x*3+1] = src[x*3+1]
			row[x*3+2] = src[x*3+0]
		}
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("error writing pixel data: %w", err)
		}
	}
	return nil
}
