// Package assetfetch resolves asset references to bytes: data URIs, http(s)
// URLs, file URLs, plain paths and generated QR codes.
package assetfetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/user/sceneshow/pkg/ports"
	"github.com/user/sceneshow/pkg/rendererr"
)

// QRPrefix marks a source whose payload is rendered as a QR code.
const QRPrefix = "qr:"

// Options configures the fetcher.
type Options struct {
	// BaseDir resolves relative paths. Empty means the working directory.
	BaseDir string
	// MaxBytes caps a download. Zero means 50 MiB.
	MaxBytes int64
	// Timeout bounds one HTTP request. Zero means 30 seconds.
	Timeout time.Duration
	// UserAgent is sent with HTTP requests.
	UserAgent string
	// QRSize is the side of generated QR codes in pixels. Zero means 512.
	QRSize int
}

// Fetcher implements ports.AssetFetcher.
type Fetcher struct {
	fs     ports.FileSystem
	client *http.Client
	opts   Options
	logger ports.Logger
}

// New creates a fetcher reading local files through fs.
func New(fs ports.FileSystem, opts Options, logger ports.Logger) *Fetcher {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 50 << 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.QRSize <= 0 {
		opts.QRSize = 512
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "sceneshow"
	}
	return &Fetcher{
		fs:     fs,
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		logger: logger.WithComponent("assetfetch"),
	}
}

var _ ports.AssetFetcher = (*Fetcher)(nil)

// Fetch returns the bytes behind src. Every error wraps
// rendererr.ErrSourceUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "data:"):
		data, err = decodeDataURI(src)
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		data, err = f.fetchHTTP(ctx, src)
	case strings.HasPrefix(lower, QRPrefix):
		data, err = qrcode.Encode(src[len(QRPrefix):], qrcode.Medium, f.opts.QRSize)
	case strings.HasPrefix(lower, "file://"):
		data, err = f.readFileURL(src)
	default:
		data, err = f.fs.ReadFile(f.resolve(src))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rendererr.ErrSourceUnavailable, err)
	}
	return data, nil
}

func (f *Fetcher) resolve(path string) string {
	if filepath.IsAbs(path) || f.opts.BaseDir == "" {
		return path
	}
	return filepath.Join(f.opts.BaseDir, path)
}

func (f *Fetcher) readFileURL(src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse file url: %w", err)
	}
	path := u.Path
	if u.Host != "" && u.Host != "localhost" {
		path = u.Host + path
	}
	return f.fs.ReadFile(f.resolve(filepath.FromSlash(path)))
}

// fetchHTTP downloads src. The body is closed before returning and reads
// stop at MaxBytes.
func (f *Fetcher) fetchHTTP(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: %s", src, resp.Status)
	}
	if resp.ContentLength > f.opts.MaxBytes {
		return nil, fmt.Errorf("GET %s: %d bytes exceeds limit of %d", src, resp.ContentLength, f.opts.MaxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	if int64(len(data)) > f.opts.MaxBytes {
		return nil, fmt.Errorf("GET %s: body exceeds limit of %d bytes", src, f.opts.MaxBytes)
	}
	f.logger.Debug("Fetched %s (%d bytes) in %v", src, len(data), time.Since(start).Round(time.Millisecond))
	return data, nil
}

// decodeDataURI decodes data:[<mediatype>][;base64],<payload>.
func decodeDataURI(src string) ([]byte, error) {
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data uri")
	}
	meta, payload := src[len("data:"):comma], src[comma+1:]

	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
			return data, nil
		}
		data, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("decode base64 data uri: %w", err)
		}
		return data, nil
	}

	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return []byte(data), nil
}
