// Package layout implements the layout resolution stage.
package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/user/sceneshow/pkg/pipeline"
	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/rendererr"
	"github.com/user/sceneshow/pkg/scene"
)

const stageName = "layout"

// Stage resolves page sizes and element paint order.
// The computation itself is pure; the stage only adds logging and debug output.
type Stage struct {
	sink   ports.DebugSink
	logger ports.Logger
}

// NewStage creates a new layout stage.
func NewStage(sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		sink:   sink,
		logger: logger.WithComponent("layout"),
	}
}

// Execute resolves the layout of every page.
func (s *Stage) Execute(ctx context.Context, input pipeline.LayoutInput) (pipeline.LayoutResult, error) {
	if ctx.Err() != nil {
		return pipeline.LayoutResult{}, rendererr.Cancelled(ctx)
	}

	result, err := ComputeLayout(input)
	if err != nil {
		return pipeline.LayoutResult{}, err
	}

	for _, p := range result.Pages {
		s.logger.Debug("Page %d: %dx%d, %d elements", p.Index, p.Width, p.Height, len(p.Elements))
	}

	if s.sink.Enabled() {
		if data, err := json.MarshalIndent(result.Pages, "", "  "); err == nil {
			s.sink.SaveLayoutJSON(data)
		}
	}
	return result, nil
}

// ComputeLayout resolves the document into page layouts.
// This is exposed as a standalone function for testing and reuse.
//
// Page size: page override, then document size, then the input defaults.
// Elements: invisible ones are dropped, the rest are ordered by z-index with
// document position breaking ties.
func ComputeLayout(input pipeline.LayoutInput) (pipeline.LayoutResult, error) {
	doc := input.Document
	if doc == nil || len(doc.Pages) == 0 {
		return pipeline.LayoutResult{}, rendererr.Wrap(stageName, -1, "", fmt.Errorf("%w: document has no pages", rendererr.ErrInvalidDocument))
	}

	pages := make([]pipeline.PageLayout, 0, len(doc.Pages))
	for i, page := range doc.Pages {
		w, h := doc.Size(i, input.DefaultWidth, input.DefaultHeight)
		if w <= 0 || h <= 0 {
			return pipeline.LayoutResult{}, rendererr.Wrap(stageName, i, "", fmt.Errorf("%w: page size %dx%d", rendererr.ErrInvalidDocument, w, h))
		}

		visible := make([]scene.Element, 0, len(page.Children))
		for _, e := range page.Children {
			if e.Visible {
				visible = append(visible, e)
			}
		}

		pages = append(pages, pipeline.PageLayout{
			Index:             i,
			ID:                page.ID,
			Width:             w,
			Height:            h,
			Background:        doc.BackgroundOf(i),
			DefaultBackground: input.DefaultBackground,
			Elements:          Order(visible),
		})
	}

	return pipeline.LayoutResult{Pages: pages}, nil
}

// Order returns elements sorted into paint order: ascending z-index, and
// document position for equal or missing z-indexes. The input is not modified.
func Order(elements []scene.Element) []scene.Element {
	out := make([]scene.Element, len(elements))
	copy(out, elements)
	sort.SliceStable(out, func(i, j int) bool {
		zi, zj := zOf(out[i]), zOf(out[j])
		if zi != zj {
			return zi < zj
		}
		return out[i].Index < out[j].Index
	})
	return out
}

func zOf(e scene.Element) int {
	if e.ZIndex != nil {
		return *e.ZIndex
	}
	return e.Index
}
