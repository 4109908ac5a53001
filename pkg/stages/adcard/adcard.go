// Package adcard implements the ad card stage: it lays out a product record
// with its template and returns a scene document or, for animated templates,
// a timeline.
package adcard

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/sceneshow/pkg/adrecord"
	"github.com/user/sceneshow/pkg/pipeline"
	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/rendererr"
)

const stageName = "adcard"

// Options configures the ad card stage.
type Options struct {
	// RichBadge draws the badge as an html element. It needs an HTML
	// capturer in the element stage.
	RichBadge bool
	// Duration of animated templates in seconds.
	Duration float64
}

// Stage builds ad cards from records.
type Stage struct {
	insight ports.InsightGenerator
	sink    ports.DebugSink
	logger  ports.Logger
	opts    Options
}

// NewStage creates a new ad card stage. insight may be nil.
func NewStage(insight ports.InsightGenerator, sink ports.DebugSink, logger ports.Logger, opts Options) *Stage {
	return &Stage{
		insight: insight,
		sink:    sink,
		logger:  logger.WithComponent("adcard"),
		opts:    opts,
	}
}

// Execute composes the record. A missing tagline is asked from the insight
// generator when one is configured.
func (s *Stage) Execute(ctx context.Context, input pipeline.AdCardInput) (pipeline.AdCardResult, error) {
	result := pipeline.AdCardResult{}

	if ctx.Err() != nil {
		return result, rendererr.Cancelled(ctx)
	}

	record := input.Record
	width, height := input.Width, input.Height
	if width <= 0 || height <= 0 {
		def := pipeline.DefaultLayoutInput()
		width, height = def.DefaultWidth, def.DefaultHeight
	}

	if strings.TrimSpace(record.Tagline) == "" && s.insight != nil {
		if text, ok := s.insight.Summarize(ctx, record); ok {
			record.Tagline = strings.TrimSpace(text)
			s.logger.Debug("Tagline from insight: %q", record.Tagline)
		} else {
			s.logger.Debug("No insight for %q", record.Name)
		}
	}
	result.Tagline = record.Tagline

	c, err := adrecord.Compose(record, width, height)
	if err != nil {
		return result, rendererr.Wrap(stageName, 0, "", err)
	}
	result.Warnings = append(result.Warnings, c.Warnings...)

	if s.opts.RichBadge {
		if err := richBadge(c); err != nil {
			return result, rendererr.Wrap(stageName, 0, "badge", fmt.Errorf("render badge: %w", err))
		}
	}

	s.logger.Debug("Composed %s ad %dx%d with %d slots", c.Template, width, height, len(c.Slots))

	doc := c.Document()
	if s.sink.Enabled() {
		if data, err := doc.MarshalIndent(); err == nil {
			_ = s.sink.SaveSceneJSON(data)
		}
	}

	if c.Template.Animated() {
		tl, err := Animate(c, input.FPS, s.opts.Duration)
		if err != nil {
			return result, rendererr.Wrap(stageName, 0, "", err)
		}
		result.Animation = tl
		return result, nil
	}

	result.Document = doc
	return result, nil
}

var _ pipeline.Stage[pipeline.AdCardInput, pipeline.AdCardResult] = (*Stage)(nil)
