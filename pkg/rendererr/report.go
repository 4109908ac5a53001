package rendererr

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
)

// Kind classifies a non-fatal render condition.
type Kind string

const (
	KindInvalidGeometry   Kind = "invalid-geometry"
	KindSourceUnavailable Kind = "source-unavailable"
	KindOverflow          Kind = "overflow"
	KindFallback          Kind = "fallback"
	KindUnsupported       Kind = "unsupported"
)

// Warning is a recovered element-level condition surfaced next to the artifact.
type Warning struct {
	Kind    Kind   `json:"kind"`
	Page    int    `json:"page"`
	Element string `json:"element,omitempty"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// KindOf maps a recovered error to its warning kind.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidGeometry):
		return KindInvalidGeometry
	case errors.Is(err, ErrSourceUnavailable):
		return KindSourceUnavailable
	default:
		return KindUnsupported
	}
}

// Report collects warnings from concurrent stages.
type Report struct {
	mu       sync.Mutex
	warnings []Warning
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends warnings.
func (r *Report) Add(ws ...Warning) {
	if len(ws) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, ws...)
}

// Len returns the number of collected warnings.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings)
}

// All returns a copy of the warnings ordered by page, then element, then kind.
// Duplicate warnings (same page, element, kind and message) are folded, which
// happens when the same page is rendered once per animation frame.
func (r *Report) All() []Warning {
	r.mu.Lock()
	out := make([]Warning, 0, len(r.warnings))
	seen := make(map[Warning]bool, len(r.warnings))
	for _, w := range r.warnings {
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		if out[i].Element != out[j].Element {
			return out[i].Element < out[j].Element
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Overflows returns only the overflow warnings.
func (r *Report) Overflows() []Warning {
	return r.ByKind(KindOverflow)
}

// ByKind returns the warnings of one kind.
func (r *Report) ByKind(kind Kind) []Warning {
	var out []Warning
	for _, w := range r.All() {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// Counts returns the number of distinct warnings per kind.
func (r *Report) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, w := range r.All() {
		counts[w.Kind]++
	}
	return counts
}

// MarshalJSON encodes the folded warning list.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Warnings []Warning `json:"warnings"`
	}{Warnings: r.All()})
}
