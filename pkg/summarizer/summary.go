package summarizer

import (
	"time"

	"github.com/user/sceneshow/pkg/rendererr"
)

// Summary contains all data collected during a render.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Input
	Source SourceInfo

	// Render settings
	Settings Settings

	// Output details
	Output OutputInfo

	// Recovered conditions
	Warnings WarningInfo
}

// SourceInfo describes what was rendered.
type SourceInfo struct {
	Path string
	Kind string // scene, timeline, ad or deck
}

// Settings contains the render configuration.
type Settings struct {
	Preset   string
	Quality  string
	Codec    string
	Template string
	Workers  int
	FPS      float64
}

// OutputInfo contains information about the written files.
type OutputInfo struct {
	Paths        []string
	CanvasWidth  int
	CanvasHeight int
	Pages        int

	// Video only
	FrameCount int
	DurationMs int
	CRF        int
	OutroMs    int

	FileSize int64
}

// IsVideo reports whether the output is an animation.
func (o OutputInfo) IsVideo() bool {
	return o.FrameCount > 0
}

// WarningInfo counts warnings by kind.
type WarningInfo struct {
	Total  int
	ByKind map[rendererr.Kind]int
	Items  []rendererr.Warning
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets the rendered input.
func (b *Builder) WithSource(path, kind string) *Builder {
	b.summary.Source = SourceInfo{Path: path, Kind: kind}
	return b
}

// WithSettings sets render settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithOutput sets output information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// WithReport records the warnings of a render. A nil report means none.
func (b *Builder) WithReport(report *rendererr.Report) *Builder {
	info := WarningInfo{ByKind: map[rendererr.Kind]int{}}
	if report != nil {
		info.Items = report.All()
		info.Total = len(info.Items)
		info.ByKind = report.Counts()
	}
	b.summary.Warnings = info
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
