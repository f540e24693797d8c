// Package analysis runs the contour dimension pipeline: load an image, march
// its iso-contour, rebuild the contour topology and estimate its fractal
// dimension.
package analysis

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"contourdim/internal/models"
	"contourdim/pkg/dimension"
	"contourdim/pkg/geometry"
	"contourdim/pkg/marching"
	"contourdim/pkg/mesh"
	"contourdim/pkg/raster"
	"contourdim/pkg/visualization"
)

// DefaultRenderSize is the render width used when Params.RenderSize is unset
const DefaultRenderSize = 800

// Params holds the pipeline configuration
type Params struct {
	// InputFile is the image to analyse: 24-bit Targa, PNG, JPEG or BMP
	InputFile string

	// RenderFile, when set, receives a picture of the contour and its normals
	RenderFile string

	// TemplateWidth is the physical width spanned by the image
	TemplateWidth float64

	// Isovalue is the luma threshold of the contour
	Isovalue float64

	// NumCores is the number of goroutines marching the field
	NumCores int

	// RequireSquare rejects non-square images
	RequireSquare bool

	// WeldTolerance merges contour vertices closer than this distance
	WeldTolerance float64

	// Image controls pixel normalisation on load
	Image raster.Options

	// SaveIntermediaryResults writes the field and contour images to IntermediaryDir
	SaveIntermediaryResults bool

	// IntermediaryDir is where intermediary results are written
	IntermediaryDir string

	// RenderSize is the width in pixels of rendered contour images
	RenderSize int
}

// Metrics is everything the pipeline measures about one image
type Metrics struct {
	// Template
	TemplateWidth  float64
	TemplateHeight float64
	StepSize       float64

	// Grid
	GridWidth  int
	GridHeight int
	Cells      int

	// Primitives
	Segments   int
	Vertices   int
	Components int
	Length     float64
	Min, Max   geometry.Point

	// Empty is set when the image has no contour at the isovalue. The
	// dimension estimates are then left at zero.
	Empty bool

	// BoxCount is the number of grid cells the contour crosses
	BoxCount     int
	BoxDimension float64

	// Curvature is the mean normal-alignment sample K, with its spread
	Curvature          float64
	CurvatureStdDev    float64
	CurvatureDimension float64

	// Duration is the wall time of the last run
	Duration time.Duration
}

// Analyzer runs the pipeline for one image. It is not safe for concurrent use.
type Analyzer struct {
	params *Params

	image  *raster.Image
	field  *models.Field
	march  *marching.Result
	mesh   *mesh.Mesh
	metric Metrics
}

// NewAnalyzer creates an analyzer with the given parameters
func NewAnalyzer(params *Params) *Analyzer {
	return &Analyzer{params: params}
}

// Process runs the complete pipeline on Params.InputFile
func (a *Analyzer) Process() error {
	log := Logger()

	log.Info("loading image", "file", a.params.InputFile)
	img, err := raster.Load(a.params.InputFile, a.params.Image)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	a.image = img
	log.Debug("image loaded", "width", img.Width, "height", img.Height)

	if err := a.saveIntermediaryResult("01_field.png", img.Gray()); err != nil {
		log.Warn("failed to save field image", "error", err)
	}

	field, err := img.Field(a.params.TemplateWidth, a.params.RequireSquare)
	if err != nil {
		return fmt.Errorf("invalid field: %w", err)
	}

	return a.ProcessField(field)
}

// ProcessField runs every stage after loading on an existing field
func (a *Analyzer) ProcessField(field *models.Field) error {
	log := Logger()
	start := time.Now()

	a.field = field
	a.metric = Metrics{}

	if field != nil && a.params.RequireSquare {
		if err := field.RequireSquare(); err != nil {
			return fmt.Errorf("invalid field: %w", err)
		}
	}

	log.Info("marching squares", "isovalue", a.params.Isovalue, "workers", a.params.NumCores)
	result, err := marching.March(field, a.params.Isovalue, marching.Options{
		Workers: a.params.NumCores,
		Saddle:  marching.AlwaysSplit,
	})
	if err != nil {
		return fmt.Errorf("failed to extract contour: %w", err)
	}
	a.march = result
	log.Debug("contour extracted", "segments", len(result.Segments), "boxes", result.BoxCount)

	log.Info("building mesh", "segments", len(result.Segments))
	m, err := mesh.Build(result.Segments, mesh.Options{WeldTolerance: a.params.WeldTolerance})
	if err != nil {
		return fmt.Errorf("failed to build mesh: %w", err)
	}
	a.mesh = m
	log.Debug("mesh built", "vertices", len(m.Vertices), "components", m.ObjectCount())

	a.collectPrimitives()

	if m.Empty() {
		log.Info("no contour at isovalue", "isovalue", a.params.Isovalue)
	} else if err := a.estimate(); err != nil {
		return err
	}

	if err := a.render(); err != nil {
		return err
	}

	a.metric.Duration = time.Since(start)
	return nil
}

// collectPrimitives fills the template, grid and primitive metrics
func (a *Analyzer) collectPrimitives() {
	f := a.field
	cellsX, cellsY := f.GridSquares()

	a.metric.TemplateWidth = f.TemplateWidth
	a.metric.TemplateHeight = f.TemplateHeight()
	a.metric.StepSize = f.StepSize()
	a.metric.GridWidth = cellsX
	a.metric.GridHeight = cellsY
	a.metric.Cells = a.march.Cells
	a.metric.BoxCount = a.march.BoxCount

	a.metric.Segments = len(a.mesh.Segments)
	a.metric.Vertices = len(a.mesh.Vertices)
	a.metric.Components = a.mesh.ObjectCount()
	a.metric.Length = a.mesh.Length()
	a.metric.Min, a.metric.Max = a.mesh.Bounds()
	a.metric.Empty = a.mesh.Empty()
}

// estimate runs both dimension estimators
func (a *Analyzer) estimate() error {
	log := Logger()

	log.Info("estimating dimension")
	box, err := dimension.BoxCounting(a.march.BoxCount, a.field.StepSize())
	if err != nil {
		return fmt.Errorf("box-counting estimate: %w", err)
	}
	a.metric.BoxDimension = box

	curv, err := dimension.Curvature(a.mesh)
	if err != nil {
		return fmt.Errorf("curvature estimate: %w", err)
	}
	a.metric.Curvature = curv.K
	a.metric.CurvatureStdDev = curv.StdDev
	a.metric.CurvatureDimension = curv.Dimension

	log.Debug("dimension estimated", "box", box, "curvature", curv.Dimension, "k", curv.K, "stddev", curv.StdDev)
	return nil
}

// render draws the contour when a render file or intermediary results are
// requested
func (a *Analyzer) render() error {
	if a.params.RenderFile == "" && !a.params.SaveIntermediaryResults {
		return nil
	}

	size := a.params.RenderSize
	if size <= 0 {
		size = DefaultRenderSize
	}

	viewer, err := visualization.NewViewer(a.mesh, a.field.TemplateWidth, a.field.TemplateHeight(), size)
	if err != nil {
		return fmt.Errorf("failed to create viewer: %w", err)
	}
	img := viewer.Render()

	if err := a.saveIntermediaryResult("02_contour.png", img); err != nil {
		Logger().Warn("failed to save contour image", "error", err)
	}

	if a.params.RenderFile != "" {
		Logger().Info("saving render", "file", a.params.RenderFile)
		if err := visualization.SaveImage(img, a.params.RenderFile); err != nil {
			return fmt.Errorf("failed to save render: %w", err)
		}
	}
	return nil
}

// saveIntermediaryResult writes one stage image into the intermediary directory
func (a *Analyzer) saveIntermediaryResult(name string, img image.Image) error {
	if !a.params.SaveIntermediaryResults {
		return nil
	}

	if err := os.MkdirAll(a.params.IntermediaryDir, 0755); err != nil {
		return fmt.Errorf("failed to create intermediary directory: %w", err)
	}

	filename := filepath.Join(a.params.IntermediaryDir, name)
	Logger().Debug("saving intermediary result", "file", filename)
	return visualization.SaveImage(img, filename)
}

// GetMetrics returns the metrics of the last run
func (a *Analyzer) GetMetrics() Metrics {
	return a.metric
}

// GetMesh returns the reconstructed contour of the last run
func (a *Analyzer) GetMesh() *mesh.Mesh {
	return a.mesh
}

// GetField returns the scalar field of the last run
func (a *Analyzer) GetField() *models.Field {
	return a.field
}
