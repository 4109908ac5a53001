// Package adrecord describes product ad records and lays them out with
// fixed templates.
package adrecord

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/sceneshow/pkg/rendererr"
)

// Template identifies an ad layout.
type Template string

const (
	TemplateMinimal Template = "minimal"
	TemplateBold    Template = "bold"
	TemplateLuxury  Template = "luxury"
	TemplateTikTok  Template = "tiktok"
)

// Templates returns every template name.
func Templates() []Template {
	return []Template{TemplateMinimal, TemplateBold, TemplateLuxury, TemplateTikTok}
}

// StaticTemplates returns the templates that produce a single image.
func StaticTemplates() []Template {
	return []Template{TemplateMinimal, TemplateBold, TemplateLuxury}
}

// ParseTemplate normalizes a template name. Empty means minimal.
func ParseTemplate(s string) (Template, error) {
	t := Template(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TemplateMinimal, nil
	}
	for _, known := range Templates() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown template %q", s)
}

// Animated reports whether the template renders to video.
func (t Template) Animated() bool {
	return t == TemplateTikTok
}

// Position overrides where a named field is drawn. Width and Height of zero
// keep the template size.
type Position struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

// Record is one product to advertise.
type Record struct {
	Image     string              `json:"image" yaml:"image"`
	Name      string              `json:"name" yaml:"name"`
	Price     string              `json:"price" yaml:"price"`
	Template  Template            `json:"template" yaml:"template"`
	Overrides map[string]Position `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	Tagline   string              `json:"tagline,omitempty" yaml:"tagline,omitempty"`
	URL       string              `json:"url,omitempty" yaml:"url,omitempty"`
	Currency  string              `json:"currency,omitempty" yaml:"currency,omitempty"`
	Badge     string              `json:"badge,omitempty" yaml:"badge,omitempty"`
}

// Parse reads a JSON record.
func Parse(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", rendererr.ErrInvalidDocument, err)
	}
	return r.normalize()
}

// ParseYAML reads a YAML record.
func ParseYAML(data []byte) (Record, error) {
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", rendererr.ErrInvalidDocument, err)
	}
	return r.normalize()
}

func (r Record) normalize() (Record, error) {
	t, err := ParseTemplate(string(r.Template))
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", rendererr.ErrInvalidDocument, err)
	}
	r.Template = t
	r.Name = strings.TrimSpace(r.Name)
	r.Price = strings.TrimSpace(r.Price)
	return r, r.Validate()
}

// Validate checks the fields every template needs.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.Image) == "":
		return fmt.Errorf("%w: record has no image", rendererr.ErrInvalidDocument)
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("%w: record has no name", rendererr.ErrInvalidDocument)
	}
	return nil
}
