package insightcmd

import (
	"context"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/user/sceneshow/pkg/adapters/logger"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestNew_Disabled(t *testing.T) {
	if New(Options{}, logger.NewNoop()) != nil {
		t.Error("no command must disable the generator")
	}
}

func TestSummarize(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name   string
		script string
		max    int
		want   string
		ok     bool
	}{
		{"reads stdin", `grep -o '"name":"[^"]*"' | cut -d'"' -f4`, 0, "Premium Sofa", true},
		{"collapses whitespace", `printf '  Sink   in\n comfort \n'`, 0, "Sink in comfort", true},
		{"truncates", `echo abcdefghij`, 5, "abcd…", true},
		{"empty output", `true`, 0, "", false},
		{"failure", `echo oops; exit 3`, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(Options{Command: "sh", Args: []string{"-c", tt.script}, MaxLength: tt.max}, logger.NewNoop())
			got, ok := g.Summarize(context.Background(), map[string]string{"name": "Premium Sofa"})
			if got != tt.want || ok != tt.ok {
				t.Errorf("Summarize() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSummarize_Timeout(t *testing.T) {
	requireShell(t)
	g := New(Options{Command: "sh", Args: []string{"-c", "sleep 5"}, Timeout: 50 * time.Millisecond}, logger.NewNoop())

	start := time.Now()
	if _, ok := g.Summarize(context.Background(), nil); ok {
		t.Error("a timed out command must not produce text")
	}
	if time.Since(start) > 3*time.Second {
		t.Error("timeout not applied")
	}
}

func TestSummarize_UnencodableInput(t *testing.T) {
	g := New(Options{Command: "true"}, logger.NewNoop())
	if _, ok := g.Summarize(context.Background(), func() {}); ok {
		t.Error("unencodable data must fail")
	}
}

func TestSummarize_NilGenerator(t *testing.T) {
	var g *Generator
	if _, ok := g.Summarize(context.Background(), nil); ok {
		t.Error("a nil generator must not produce text")
	}
}
