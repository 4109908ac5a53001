package capturehtml

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestResolveChromePath_Precedence(t *testing.T) {
	t.Setenv("CHROME_PATH", "/env/chrome")

	if got := ResolveChromePath("/explicit/chrome"); got != "/explicit/chrome" {
		t.Errorf("explicit path must win, got %s", got)
	}
	if got := ResolveChromePath(""); got != "/env/chrome" {
		t.Errorf("CHROME_PATH must be used, got %s", got)
	}
}

func TestResolveChromePath_FromPATH(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script executables are unix only")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "chromium")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHROME_PATH", "")
	t.Setenv("PATH", dir)

	if runtime.GOOS == "linux" {
		if got := ResolveChromePath(""); got != bin {
			t.Errorf("expected %s, got %s", bin, got)
		}
	}
}

func TestLookExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	tests := []struct {
		name  string
		input string
		found bool
	}{
		{"absolute existing", "/bin/sh", true},
		{"absolute missing", "/definitely/not/here/chrome", false},
		{"command on PATH", "sh", true},
		{"unknown command", "definitely-not-a-real-command-xyz123", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lookExecutable(tt.input); (got != "") != tt.found {
				t.Errorf("lookExecutable(%q) = %q", tt.input, got)
			}
		})
	}
}

func TestChromeCandidates_ChromiumFirst(t *testing.T) {
	for _, goos := range []string{"linux", "darwin"} {
		c := chromeCandidates(goos)
		if len(c) == 0 || filepath.Base(c[0]) != "chromium" && filepath.Base(c[0]) != "Chromium" {
			t.Errorf("%s: chromium must come first, got %v", goos, c)
		}
	}
}
