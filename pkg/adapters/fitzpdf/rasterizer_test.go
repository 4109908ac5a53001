package fitzpdf

import (
	"context"
	"errors"
	"testing"
)

// onePage is a minimal single-page PDF, 72x36 points. MuPDF rebuilds the
// missing cross-reference table.
const onePage = `%PDF-1.4
1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj
2 0 obj << /Type /Pages /Kids [3 0 R] /Count 1 >> endobj
3 0 obj << /Type /Page /Parent 2 0 R /MediaBox [0 0 72 36] >> endobj
trailer << /Root 1 0 R >>
%%EOF
`

func TestRasterizer(t *testing.T) {
	r := New()

	n, err := r.PageCount([]byte(onePage))
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("PageCount() = %d, want 1", n)
	}

	img, err := r.Rasterize(context.Background(), []byte(onePage), 0, 144)
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 144 || b.Dy() != 72 {
		t.Errorf("page at 144 dpi = %dx%d, want 144x72", b.Dx(), b.Dy())
	}

	if _, err := r.Rasterize(context.Background(), []byte(onePage), 1, 72); err == nil {
		t.Error("expected an error for a page out of range")
	}
}

func TestRasterizer_Errors(t *testing.T) {
	r := New()
	if _, err := r.PageCount([]byte("not a pdf")); err == nil {
		t.Error("expected an error for invalid data")
	}
	if _, err := r.Rasterize(context.Background(), []byte(onePage), 0, 0); err == nil {
		t.Error("expected an error for zero dpi")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Rasterize(ctx, []byte(onePage), 0, 72); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
