// Package pipeline runs a complete scan: load a project, build its
// dependency graph, analyze it for conflicts, and render the requested
// artifacts.
//
// The CLI is the only caller today, but nothing here depends on it; a
// Runner holds no per-scan state and may be shared between goroutines.
//
// # Usage
//
//	reg := npm.NewClient(cache.NewNullCache(), time.Hour)
//	runner := pipeline.NewRunner(reg, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Dir:     ".",
//	    Formats: []string{"json", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(result.Report.Conflicts), "conflicts")
//
// Stages can also be run on their own: [Runner.Load], [Runner.Build],
// [Runner.Analyze] and [Render].
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/peerscan/pkg/conflict"
	"github.com/matzehuels/peerscan/pkg/deps/javascript"
	"github.com/matzehuels/peerscan/pkg/graph"
	pkgio "github.com/matzehuels/peerscan/pkg/io"
)

// =============================================================================
// Formats
// =============================================================================

const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported artifact formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPDF:  true,
	FormatPNG:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg, pdf, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options configures a scan.
type Options struct {
	// Dir holds package.json and package-lock.json. Defaults to ".".
	Dir string

	// Manifest and Lockfile override the file locations under Dir.
	Manifest string
	Lockfile string

	// Singletons overrides conflict.DefaultSingletons when non-nil.
	Singletons  []string
	Concurrency int

	// Formats lists the artifacts to render. Empty renders nothing.
	Formats []string

	// PNGScale is the rasterization scale for PNG output.
	PNGScale float64

	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Dir == "" {
		o.Dir = "."
	}
	for i, f := range o.Formats {
		o.Formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("concurrency must be positive, got %d", o.Concurrency)
	}
	if o.Concurrency == 0 {
		o.Concurrency = conflict.DefaultConcurrency
	}
	if o.PNGScale <= 0 {
		o.PNGScale = 2.0
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result holds everything a scan produced.
type Result struct {
	Project *javascript.Project
	Graph   *graph.DependencyGraph
	Stats   graph.Stats
	Report  *conflict.Report

	// Document is the serializable report, also rendered as the json artifact.
	Document *pkgio.Report

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Timing Timing
}

// Timing records how long each stage took.
type Timing struct {
	Load    time.Duration
	Build   time.Duration
	Analyze time.Duration
	Render  time.Duration
}

// Total is the sum of all stages.
func (t Timing) Total() time.Duration {
	return t.Load + t.Build + t.Analyze + t.Render
}
