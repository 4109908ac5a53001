package summarizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/user/sceneshow/pkg/rendererr"
)

// maxListedWarnings caps the warning table; the counts still cover all.
const maxListedWarnings = 20

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator translates headings and labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		if t != nil {
			f.translate = t
		}
	}
}

// WithVersion adds the generator version to the footer.
func WithVersion(v string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = v
	}
}

// NewMarkdownFormatter creates a formatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{translate: func(s string) string { return s }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Render Summary"))

	b.WriteString(row(t("Source"), s.Source.Path))
	b.WriteString(row(t("Kind"), s.Source.Kind))
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Output"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	tableRow(&b, t("Canvas"), fmt.Sprintf("%dx%d", s.Output.CanvasWidth, s.Output.CanvasHeight))
	if s.Output.IsVideo() {
		tableRow(&b, t("Frames"), fmt.Sprintf("%d", s.Output.FrameCount))
		tableRow(&b, t("Duration"), fmt.Sprintf("%.2f s", float64(s.Output.DurationMs)/1000))
		tableRow(&b, t("CRF"), fmt.Sprintf("%d", s.Output.CRF))
		if s.Output.OutroMs > 0 {
			tableRow(&b, t("Outro"), fmt.Sprintf("%d ms", s.Output.OutroMs))
		}
	} else {
		tableRow(&b, t("Pages"), fmt.Sprintf("%d", s.Output.Pages))
	}
	tableRow(&b, t("File Size"), formatBytes(s.Output.FileSize))
	for _, p := range s.Output.Paths {
		tableRow(&b, t("File"), "`"+p+"`")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	tableRow(&b, t("Preset"), orDash(s.Settings.Preset))
	tableRow(&b, t("Quality"), orDash(s.Settings.Quality))
	if s.Settings.Template != "" {
		tableRow(&b, t("Template"), s.Settings.Template)
	}
	if s.Output.IsVideo() {
		tableRow(&b, t("Codec"), orDash(s.Settings.Codec))
		tableRow(&b, t("Frame Rate"), fmt.Sprintf("%g fps", s.Settings.FPS))
	}
	if s.Settings.Workers > 0 {
		tableRow(&b, t("Workers"), fmt.Sprintf("%d", s.Settings.Workers))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## %s\n\n", t("Warnings"))
	if s.Warnings.Total == 0 {
		fmt.Fprintf(&b, "%s\n\n", t("No warnings"))
	} else {
		kinds := make([]string, 0, len(s.Warnings.ByKind))
		for k := range s.Warnings.ByKind {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(&b, "- %s: %d\n", k, s.Warnings.ByKind[rendererr.Kind(k)])
		}
		b.WriteString("\n")

		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n|---|---|---|---|\n", t("Page"), t("Element"), t("Kind"), t("Message"))
		for i, w := range s.Warnings.Items {
			if i == maxListedWarnings {
				fmt.Fprintf(&b, "\n%s\n", fmt.Sprintf(t("and %d more"), len(s.Warnings.Items)-maxListedWarnings))
				break
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", w.Page, orDash(w.Element), w.Kind, escapeCell(w.Message))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if f.version != "" {
		footer += " · sceneshow " + f.version
	}
	b.WriteString(footer + "\n")

	return b.String()
}

func row(label, value string) string {
	return fmt.Sprintf("- **%s**: %s\n", label, orDash(value))
}

func tableRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", label, value)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// formatBytes formats a size with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}
