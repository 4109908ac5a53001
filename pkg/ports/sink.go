package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
// It allows saving intermediate processing results for debugging purposes.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveSceneJSON saves the parsed scene document as JSON.
	SaveSceneJSON(data []byte) error

	// SaveLayoutJSON saves the resolved page layouts as JSON.
	SaveLayoutJSON(data []byte) error

	// SaveLayer saves one rendered element layer.
	SaveLayer(page int, element string, img image.Image) error

	// SavePage saves a composited page.
	SavePage(index int, img image.Image) error

	// SaveFrame saves a composited animation frame.
	SaveFrame(index int, img image.Image) error

	// SaveReportJSON saves the warning report.
	SaveReportJSON(data []byte) error
}
