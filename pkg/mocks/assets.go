package mocks

import (
	"context"
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/rendererr"
)

// AssetFetcher is a mock implementation of ports.AssetFetcher serving bytes
// from an in-memory map.
type AssetFetcher struct {
	mu     sync.Mutex
	assets map[string][]byte

	FetchFunc func(ctx context.Context, src string) ([]byte, error)

	// Recorded fetches per source
	Calls map[string]int
}

// NewAssetFetcher creates a fetcher serving the given assets.
func NewAssetFetcher(assets map[string][]byte) *AssetFetcher {
	if assets == nil {
		assets = make(map[string][]byte)
	}
	return &AssetFetcher{assets: assets, Calls: make(map[string]int)}
}

func (m *AssetFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	m.mu.Lock()
	m.Calls[src]++
	data, ok := m.assets[src]
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, src)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", rendererr.ErrSourceUnavailable, src)
	}
	return data, nil
}

// CallCount returns how often src was fetched.
func (m *AssetFetcher) CallCount(src string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[src]
}

var _ ports.AssetFetcher = (*AssetFetcher)(nil)

// FontProvider is a mock implementation of ports.FontProvider that always
// returns Go Regular. Families in Known resolve without a fallback.
type FontProvider struct {
	Known map[string]bool

	mu    sync.Mutex
	Calls []string
}

// NewFontProvider creates a font provider that knows the listed families.
func NewFontProvider(known ...string) *FontProvider {
	m := &FontProvider{Known: make(map[string]bool)}
	for _, k := range known {
		m.Known[k] = true
	}
	return m
}

func (m *FontProvider) Resolve(family, weight string) (*opentype.Font, bool) {
	m.mu.Lock()
	m.Calls = append(m.Calls, family+"/"+weight)
	m.mu.Unlock()

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
	return f, family != "" && !m.Known[family]
}

var _ ports.FontProvider = (*FontProvider)(nil)

// DocumentRasterizer is a mock implementation of ports.DocumentRasterizer.
type DocumentRasterizer struct {
	Pages         int
	PageCountFunc func(data []byte) (int, error)
	RasterizeFunc func(ctx context.Context, data []byte, page int, dpi float64) (image.Image, error)

	mu             sync.Mutex
	RasterizeCalls []int
}

func (m *DocumentRasterizer) PageCount(data []byte) (int, error) {
	if m.PageCountFunc != nil {
		return m.PageCountFunc(data)
	}
	return m.Pages, nil
}

func (m *DocumentRasterizer) Rasterize(ctx context.Context, data []byte, page int, dpi float64) (image.Image, error) {
	m.mu.Lock()
	m.RasterizeCalls = append(m.RasterizeCalls, page)
	m.mu.Unlock()
	if m.RasterizeFunc != nil {
		return m.RasterizeFunc(ctx, data, page, dpi)
	}
	if page < 0 || page >= m.Pages {
		return nil, fmt.Errorf("page %d out of range", page)
	}
	return image.NewRGBA(image.Rect(0, 0, 160, 90)), nil
}

var _ ports.DocumentRasterizer = (*DocumentRasterizer)(nil)

// InsightGenerator is a mock implementation of ports.InsightGenerator.
type InsightGenerator struct {
	Text string
	OK   bool

	Calls int
}

func (m *InsightGenerator) Summarize(ctx context.Context, data any) (string, bool) {
	m.Calls++
	return m.Text, m.OK
}

var _ ports.InsightGenerator = (*InsightGenerator)(nil)
