package visualization

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"contourdim/pkg/geometry"
	"contourdim/pkg/mesh"
)

// squareMesh returns a closed square loop centred on the origin
func squareMesh(t *testing.T, half float64) *mesh.Mesh {
	t.Helper()
	p := []geometry.Point{{X: -half, Y: -half}, {X: half, Y: -half}, {X: half, Y: half}, {X: -half, Y: half}}
	segments := make([]geometry.Segment, 4)
	for i := range p {
		segments[i] = geometry.NewSegment(p[i], p[(i+1)%4])
	}
	m, err := mesh.Build(segments, mesh.Options{})
	if err != nil {
		t.Fatalf("Failed to build mesh: %v", err)
	}
	return m
}

// TestNewViewer verifies that a new viewer is created with the correct parameters
func TestNewViewer(t *testing.T) {
	viewer, err := NewViewer(nil, 1.0, 0.5, 200)
	if err != nil {
		t.Fatalf("NewViewer failed: %v", err)
	}

	width, height := viewer.Size()
	if width != 200 || height != 100 {
		t.Errorf("Expected 200x100, got %dx%d", width, height)
	}

	if _, err := NewViewer(nil, 1.0, 1.0, 0); err == nil {
		t.Error("Expected error for zero size")
	}
	if _, err := NewViewer(nil, 0, 1.0, 100); err == nil {
		t.Error("Expected error for zero template width")
	}
}

// TestRender verifies segments are drawn where the mesh lies
func TestRender(t *testing.T) {
	m := squareMesh(t, 0.25)
	viewer, err := NewViewer(m, 1.0, 1.0, 100)
	if err != nil {
		t.Fatalf("NewViewer failed: %v", err)
	}
	viewer.NormalLength = 0

	img := viewer.Render()

	// The bottom edge y = -0.25 maps to row 75, between columns 25 and 75
	if c := img.RGBAAt(50, 75); c.B < 128 {
		t.Errorf("Expected a segment pixel at (50,75), got %v", c)
	}

	// The centre and the corners stay background
	for _, p := range []image.Point{{50, 50}, {2, 2}, {97, 97}} {
		if c := img.RGBAAt(p.X, p.Y); c.B != 0 || c.R != 0 {
			t.Errorf("Expected background at %v, got %v", p, c)
		}
	}
}

// TestRenderNormals verifies normals are drawn off the segment midpoints
func TestRenderNormals(t *testing.T) {
	m := squareMesh(t, 0.25)
	viewer, err := NewViewer(m, 1.0, 1.0, 100)
	if err != nil {
		t.Fatalf("NewViewer failed: %v", err)
	}
	viewer.NormalLength = 10

	img := viewer.Render()

	// Each normal starts at a side midpoint, so some orange appears within
	// ten pixels of the bottom edge midpoint (50, 75)
	found := false
	for dy := -10; dy <= 10 && !found; dy++ {
		if c := img.RGBAAt(50, 75+dy); c.R > 64 {
			found = true
		}
	}
	if !found {
		t.Error("Expected a normal drawn near the bottom edge midpoint")
	}
}

// TestSaveImage verifies images are written in the requested format
func TestSaveImage(t *testing.T) {
	tmpDir := t.TempDir()

	viewer, err := NewViewer(squareMesh(t, 0.25), 1.0, 1.0, 64)
	if err != nil {
		t.Fatalf("NewViewer failed: %v", err)
	}
	img := viewer.Render()

	for _, name := range []string{"mesh.png", "nested/mesh.jpg"} {
		path := filepath.Join(tmpDir, name)
		if err := SaveImage(img, path); err != nil {
			t.Fatalf("Failed to save %s: %v", name, err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("Failed to open %s: %v", name, err)
		}
		decoded, format, err := image.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("Failed to decode %s: %v", name, err)
		}

		want := "png"
		if filepath.Ext(name) == ".jpg" {
			want = "jpeg"
		}
		if format != want {
			t.Errorf("%s: expected format %s, got %s", name, want, format)
		}
		if decoded.Bounds().Dx() != 64 {
			t.Errorf("%s: expected width 64, got %d", name, decoded.Bounds().Dx())
		}
	}
}
