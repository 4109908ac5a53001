// Package fontprovider resolves font families to parsed OpenType fonts.
//
// Resolution order:
//  1. the explicit family map from configuration
//  2. <Family>-<Weight>.ttf / .otf in the configured font directories
//  3. the embedded Go fonts, chosen by weight
package fontprovider

import (
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/user/sceneshow/pkg/assets"
	"github.com/user/sceneshow/pkg/ports"
)

// Weight names used in file names and cache keys.
const (
	WeightRegular    = "regular"
	WeightMedium     = "medium"
	WeightBold       = "bold"
	WeightItalic     = "italic"
	WeightBoldItalic = "bolditalic"
)

var embedded = map[string][]byte{
	WeightRegular:    goregular.TTF,
	WeightMedium:     gomedium.TTF,
	WeightBold:       gobold.TTF,
	WeightItalic:     goitalic.TTF,
	WeightBoldItalic: gobolditalic.TTF,
}

// Families that always mean the embedded fonts.
var builtinFamilies = map[string]bool{
	"":           true,
	"go":         true,
	"sans-serif": true,
	"sans":       true,
	"default":    true,
}

// Provider implements ports.FontProvider.
type Provider struct {
	fs       ports.FileSystem
	families map[string]string
	dirs     []string
	logger   ports.Logger
	cache    *assets.Cache[resolved]
}

type resolved struct {
	font     *opentype.Font
	fallback bool
}

// New creates a provider. families maps a family name (optionally suffixed
// with "-<weight>") to a font file path.
func New(fs ports.FileSystem, families map[string]string, dirs []string, logger ports.Logger) *Provider {
	normalized := make(map[string]string, len(families))
	for k, v := range families {
		normalized[normalize(k)] = v
	}
	return &Provider{
		fs:       fs,
		families: normalized,
		dirs:     dirs,
		logger:   logger.WithComponent("fonts"),
		cache:    assets.NewCache[resolved](),
	}
}

// Resolve returns the font for family and weight. The boolean is true when
// the family could not be found and an embedded font was substituted.
func (p *Provider) Resolve(family, weight string) (*opentype.Font, bool) {
	w := NormalizeWeight(weight)
	key := normalize(family) + "/" + w
	if r, ok := p.cache.Get(key); ok {
		return r.font, r.fallback
	}

	r := resolved{}
	if builtinFamilies[strings.ToLower(strings.TrimSpace(family))] {
		r.font = Default(w)
	} else if f := p.lookup(family, w); f != nil {
		r.font = f
	} else {
		p.logger.Debug("Font %s (%s) not found, using the default font", family, w)
		r.font = Default(w)
		r.fallback = true
	}
	p.cache.Put(key, r)
	return r.font, r.fallback
}

func (p *Provider) lookup(family, weight string) *opentype.Font {
	candidates := []string{normalize(family + "-" + weight)}
	if weight == WeightRegular {
		candidates = append(candidates, normalize(family))
	}

	for _, c := range candidates {
		if path, ok := p.families[c]; ok {
			if f := p.load(path); f != nil {
				return f
			}
		}
	}

	for _, dir := range p.dirs {
		names, err := p.fs.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, name := range names {
			ext := strings.ToLower(filepath.Ext(name))
			if ext != ".ttf" && ext != ".otf" {
				continue
			}
			base := normalize(strings.TrimSuffix(name, filepath.Ext(name)))
			for _, c := range candidates {
				if base == c {
					if f := p.load(filepath.Join(dir, name)); f != nil {
						return f
					}
				}
			}
		}
	}
	return nil
}

func (p *Provider) load(path string) *opentype.Font {
	data, err := p.fs.ReadFile(path)
	if err != nil {
		p.logger.Debug("Failed to read font %s: %v", path, err)
		return nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		p.logger.Debug("Failed to parse font %s: %v", path, err)
		return nil
	}
	return f
}

// Default returns the embedded Go font for a normalized weight.
func Default(weight string) *opentype.Font {
	data, ok := embedded[weight]
	if !ok {
		data = goregular.TTF
	}
	f, err := opentype.Parse(data)
	if err != nil {
		// The embedded fonts are known-good.
		panic(err)
	}
	return f
}

// NormalizeWeight maps CSS-style weights ("bold", "700", "italic",
// "bold italic") to one of the weight names.
func NormalizeWeight(weight string) string {
	w := strings.ToLower(strings.TrimSpace(weight))
	italic := strings.Contains(w, "italic") || strings.Contains(w, "oblique")
	w = strings.NewReplacer("italic", "", "oblique", "", " ", "", "-", "").Replace(w)

	bold := false
	medium := false
	switch w {
	case "bold", "bolder", "black", "heavy", "extrabold", "semibold":
		bold = true
	case "medium":
		medium = true
	default:
		if n, err := strconv.Atoi(w); err == nil {
			bold = n >= 600
			medium = n == 500
		}
	}

	switch {
	case bold && italic:
		return WeightBoldItalic
	case bold:
		return WeightBold
	case italic:
		return WeightItalic
	case medium:
		return WeightMedium
	default:
		return WeightRegular
	}
}

func normalize(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

var _ ports.FontProvider = (*Provider)(nil)
