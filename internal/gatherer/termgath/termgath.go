// Package termgath prints judge progress to a terminal.
package termgath

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/gatherer"
	"github.com/programme-lv/cpkit/internal/models"
)

type TerminalGatherer struct {
	out       io.Writer
	verbose   bool
	StartedAt time.Time

	ok   *color.Color
	bad  *color.Color
	warn *color.Color
	dim  *color.Color
}

type Option func(*TerminalGatherer)

// WithVerbose also prints input, expected and actual output of failed tests.
func WithVerbose(v bool) Option {
	return func(t *TerminalGatherer) { t.verbose = v }
}

func WithWriter(w io.Writer) Option {
	return func(t *TerminalGatherer) { t.out = w }
}

func New(opts ...Option) *TerminalGatherer {
	t := &TerminalGatherer{
		out:       color.Output,
		StartedAt: time.Now(),
		ok:        color.New(color.FgGreen, color.Bold),
		bad:       color.New(color.FgRed, color.Bold),
		warn:      color.New(color.FgYellow, color.Bold),
		dim:       color.New(color.Faint),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.out != color.Output && t.out != os.Stdout {
		for _, c := range []*color.Color{t.ok, t.bad, t.warn, t.dim} {
			c.DisableColor()
		}
	}
	return t
}

func (t *TerminalGatherer) StartCompile(source string) {
	t.StartedAt = time.Now()
	t.dim.Fprintf(t.out, "-- Compiling %s --\n", source)
}

func (t *TerminalGatherer) FinishCompile(data *api.RuntimeData) {
	if data == nil {
		t.dim.Fprintln(t.out, "-- Nothing to compile --")
		return
	}
	t.dim.Fprintf(t.out, "-- Compiled in %dms --\n", data.WallMillis)
	if data.Stderr != "" {
		t.warn.Fprintln(t.out, "compiler warnings:")
		fmt.Fprintln(t.out, gatherer.TrimToRect(data.Stderr, api.MaxRuntimeDataHeight, api.MaxRuntimeDataWidth))
	}
}

func (t *TerminalGatherer) CompileError(msg string) {
	t.bad.Fprintln(t.out, "== Compilation error ==")
	fmt.Fprintln(t.out, gatherer.TrimToRect(msg, api.MaxRuntimeDataHeight, api.MaxRuntimeDataWidth))
}

func (t *TerminalGatherer) ReachTest(idx int, tc models.TestCase) {}

func (t *TerminalGatherer) FinishTest(idx int, tc models.TestCase) {
	fmt.Fprintf(t.out, "Test %-3d ", idx+1)
	t.verdictColor(tc.Status).Fprintf(t.out, "%-4s", tc.Status.Short())

	var details []string
	if tc.ExecutionTime != nil {
		details = append(details, fmt.Sprintf("%dms", tc.ExecutionTime.Milliseconds()))
	}
	if tc.MemoryUsed != nil {
		details = append(details, fmt.Sprintf("%dKiB", *tc.MemoryUsed))
	}
	t.dim.Fprintf(t.out, " %s\n", strings.Join(details, " "))

	if tc.Status == models.Accepted || tc.Status == models.CompilationError {
		return
	}
	if tc.ErrorMessage != nil && *tc.ErrorMessage != "" {
		fmt.Fprintf(t.out, "  %s\n", firstLine(*tc.ErrorMessage))
	}
	if t.verbose {
		t.block("input", tc.Input)
		t.block("expected", tc.ExpectedOutput)
		if tc.ActualOutput != nil {
			t.block("actual", *tc.ActualOutput)
		}
	}
}

func (t *TerminalGatherer) FinishBatch(stats models.Statistics) {
	dur := time.Since(t.StartedAt).Round(time.Millisecond)
	c := t.bad
	if stats.AllPassed() {
		c = t.ok
	}
	c.Fprintf(t.out, "== %d/%d passed (%.1f%%) ==", stats.Passed, stats.Total, stats.SuccessRate())
	t.dim.Fprintf(t.out, " in %s\n", dur)

	var parts []string
	for _, p := range []struct {
		n int
		s models.TestStatus
	}{
		{stats.WrongAnswer, models.WrongAnswer},
		{stats.RuntimeError, models.RuntimeError},
		{stats.TimeLimitExceeded, models.TimeLimitExceeded},
		{stats.MemoryLimitExceeded, models.MemoryLimitExceeded},
		{stats.CompilationError, models.CompilationError},
	} {
		if p.n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", p.s.Short(), p.n))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintln(t.out, strings.Join(parts, ", "))
	}
}

func (t *TerminalGatherer) verdictColor(s models.TestStatus) *color.Color {
	switch s {
	case models.Accepted:
		return t.ok
	case models.TimeLimitExceeded, models.MemoryLimitExceeded:
		return t.warn
	}
	return t.bad
}

func (t *TerminalGatherer) block(title, body string) {
	t.dim.Fprintf(t.out, "  %s:\n", title)
	trimmed := gatherer.TrimToRect(strings.TrimRight(body, "\n"), 10, api.MaxRuntimeDataWidth)
	for _, l := range strings.Split(trimmed, "\n") {
		fmt.Fprintf(t.out, "    %s\n", l)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " [...]"
	}
	return s
}
