package adcard

import (
	"bytes"
	"fmt"
	"html/template"
	"math"

	"github.com/user/sceneshow/pkg/adrecord"
	"github.com/user/sceneshow/pkg/scene"
)

// BadgeVars contains variables for the badge HTML template.
type BadgeVars struct {
	Width    int
	Height   int
	Label    string
	Fill     string
	Color    string
	FontSize int
	Round    bool
}

// RenderBadgeHTML renders the badge template.
func RenderBadgeHTML(vars BadgeVars) (string, error) {
	tmpl, err := template.New("badge").Parse(badgeHTMLTemplate)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// richBadge replaces the badge slot of c with one html element carrying a
// gradient and shadow. The slot keeps its box.
func richBadge(c *adrecord.Composition) error {
	slot, ok := c.Slot(adrecord.FieldBadge)
	if !ok || len(slot.Elements) < 2 {
		return nil
	}
	bg, label := slot.Elements[0], slot.Elements[1]
	if bg.Shape == nil || label.Text == nil {
		return nil
	}

	html, err := RenderBadgeHTML(BadgeVars{
		Width:    int(math.Round(bg.Width)),
		Height:   int(math.Round(bg.Height)),
		Label:    label.Text.Text,
		Fill:     bg.Shape.Fill,
		Color:    label.Text.Fill,
		FontSize: int(math.Round(label.Text.FontSize)),
		Round:    bg.Shape.SubType == scene.ShapeEllipse,
	})
	if err != nil {
		return err
	}

	slot.Elements = []scene.Element{{
		ID:      "badge",
		Kind:    scene.KindHTML,
		X:       bg.X,
		Y:       bg.Y,
		Width:   bg.Width,
		Height:  bg.Height,
		Opacity: 1,
		Visible: true,
		HTML:    &scene.HTMLSpec{Markup: html},
	}}
	return nil
}

const badgeHTMLTemplate = `<html>
  <head>
    <style>
      * {
        margin: 0;
        padding: 0;
        box-sizing: border-box;
      }
      html, body {
        background: transparent;
      }
      .badge {
        width: {{.Width}}px;
        height: {{.Height}}px;
        display: flex;
        align-items: center;
        justify-content: center;
        text-align: center;
        font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
        font-size: {{.FontSize}}px;
        font-weight: 800;
        letter-spacing: 0.04em;
        color: {{.Color}};
        background: linear-gradient(135deg, {{.Fill}}, {{.Fill}}cc);
        box-shadow: inset 0 -6px 12px rgba(0, 0, 0, 0.25);
        border-radius: {{if .Round}}50%{{else}}{{.Height}}px{{end}};
      }
    </style>
  </head>
  <body>
    <div class="badge">{{.Label}}</div>
  </body>
</html>`
