package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"contourdim/pkg/analysis"
	"contourdim/pkg/config"
	"contourdim/pkg/raster"
)

func main() {
	// Parse command line arguments
	inputFile := flag.String("input", "", "Image to analyse (24-bit TGA, PNG, JPEG or BMP)")
	configFile := flag.String("config", "", "YAML configuration file")
	writeConfig := flag.String("write-config", "", "Write the default configuration to this path and exit")
	isovalue := flag.Float64("isovalue", 0.5, "Luma threshold of the contour, in (0, 1)")
	templateWidth := flag.Float64("width", 1.0, "Physical width spanned by the image")
	numCores := flag.Int("cores", runtime.NumCPU(), "Number of CPU cores to use (default: all available)")
	renderFile := flag.String("render", "", "Save a picture of the contour and its normals (PNG or JPEG)")
	renderSize := flag.Int("render-size", 800, "Width in pixels of rendered images")
	requireSquare := flag.Bool("square", false, "Reject non-square images")
	weldTolerance := flag.Float64("weld-tolerance", 0, "Merge contour vertices closer than this distance")
	saveIntermediary := flag.Bool("save-intermediary", false, "Save intermediary results during processing")
	intermediaryDir := flag.String("intermediary-dir", "intermediary_results", "Directory to save intermediary results")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *writeConfig)
		return
	}

	// Validate inputs
	if *inputFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}

	// Flags given explicitly override the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "isovalue":
			cfg.Processing.Isovalue = *isovalue
		case "width":
			cfg.Processing.TemplateWidth = *templateWidth
		case "cores":
			cfg.Processing.NumCores = *numCores
		case "square":
			cfg.Processing.RequireSquare = *requireSquare
		case "weld-tolerance":
			cfg.Processing.WeldTolerance = *weldTolerance
		case "render-size":
			cfg.Output.RenderSize = *renderSize
		case "save-intermediary":
			cfg.Output.SaveIntermediaryResults = *saveIntermediary
		case "intermediary-dir":
			cfg.Output.IntermediaryDir = *intermediaryDir
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	level := slog.LevelInfo
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	analysis.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	params := &analysis.Params{
		InputFile:     *inputFile,
		RenderFile:    *renderFile,
		TemplateWidth: cfg.Processing.TemplateWidth,
		Isovalue:      cfg.Processing.Isovalue,
		NumCores:      cfg.Processing.NumCores,
		RequireSquare: cfg.Processing.RequireSquare,
		WeldTolerance: cfg.Processing.WeldTolerance,
		Image: raster.Options{
			ReverseRows:  cfg.Image.ReverseRows,
			SwapChannels: cfg.Image.SwapChannels,
			BlackBorder:  cfg.Image.BlackBorder,
		},
		SaveIntermediaryResults: cfg.Output.SaveIntermediaryResults,
		IntermediaryDir:         cfg.Output.IntermediaryDir,
		RenderSize:              cfg.Output.RenderSize,
	}

	analyzer := analysis.NewAnalyzer(params)
	if err := analyzer.Process(); err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	m := analyzer.GetMetrics()

	fmt.Println("Template info:")
	fmt.Printf("  Width:  %g\n", m.TemplateWidth)
	fmt.Printf("  Height: %g\n", m.TemplateHeight)
	fmt.Println()

	fmt.Println("Grid info:")
	fmt.Printf("  Squares:   %d x %d (%d)\n", m.GridWidth, m.GridHeight, m.Cells)
	fmt.Printf("  Step size: %g\n", m.StepSize)
	fmt.Printf("  Isovalue:  %g\n", cfg.Processing.Isovalue)
	fmt.Println()

	fmt.Println("Primitive info:")
	if m.Empty {
		fmt.Println("  No contour at this isovalue")
		return
	}
	fmt.Printf("  Min: %g, %g\n", m.Min.X, m.Min.Y)
	fmt.Printf("  Max: %g, %g\n", m.Max.X, m.Max.Y)
	fmt.Printf("  Segments: %d\n", m.Segments)
	fmt.Printf("  Vertices: %d\n", m.Vertices)
	fmt.Printf("  Length:   %g\n", m.Length)
	fmt.Println()

	fmt.Printf("Object count: %d\n", m.Components)
	fmt.Println()

	fmt.Printf("Dot product dimension:    %.6f (K = %.6f, stddev %.6f)\n",
		m.CurvatureDimension, m.Curvature, m.CurvatureStdDev)
	fmt.Printf("Box-counting dimension:   %.6f (%d boxes)\n", m.BoxDimension, m.BoxCount)
	fmt.Printf("\nCompleted in %.3f seconds\n", m.Duration.Seconds())

	if *renderFile != "" {
		fmt.Printf("Contour render saved to: %s\n", *renderFile)
	}
	if cfg.Output.SaveIntermediaryResults {
		fmt.Printf("Intermediary results saved to: %s\n", cfg.Output.IntermediaryDir)
	}
}
