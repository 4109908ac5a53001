// Package insightcmd produces short marketing text by running an external
// command. The data is written to its stdin as JSON and its trimmed stdout
// is the result.
package insightcmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"time"

	"github.com/user/sceneshow/pkg/ports"
)

// Generator implements ports.InsightGenerator.
type Generator struct {
	command string
	args    []string
	timeout time.Duration
	maxLen  int
	logger  ports.Logger
}

// Options configures the generator.
type Options struct {
	Command string
	Args    []string
	// Timeout bounds one run. Zero means 20 seconds.
	Timeout time.Duration
	// MaxLength truncates the result in runes. Zero means 120.
	MaxLength int
}

// New creates a generator. It returns nil when no command is configured, so
// callers can treat a nil generator as disabled.
func New(opts Options, logger ports.Logger) *Generator {
	if opts.Command == "" {
		return nil
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = 120
	}
	return &Generator{
		command: opts.Command,
		args:    opts.Args,
		timeout: opts.Timeout,
		maxLen:  opts.MaxLength,
		logger:  logger.WithComponent("insight"),
	}
}

var _ ports.InsightGenerator = (*Generator)(nil)

// Summarize runs the command. Any failure, or a nil generator, yields
// ("", false).
func (g *Generator) Summarize(ctx context.Context, data any) (string, bool) {
	if g == nil {
		return "", false
	}
	input, err := json.Marshal(data)
	if err != nil {
		g.logger.Debug("Cannot encode insight input: %v", err)
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.command, g.args...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		g.logger.Debug("Insight command failed: %v: %s", err, strings.TrimSpace(stderr.String()))
		return "", false
	}

	text := strings.Join(strings.Fields(stdout.String()), " ")
	if text == "" {
		return "", false
	}
	if r := []rune(text); len(r) > g.maxLen {
		text = strings.TrimSpace(string(r[:g.maxLen-1])) + "…"
	}
	return text, true
}
