// Package executor runs a compiled artifact once against one test input.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/programme-lv/cpkit/internal/cancel"
	"github.com/programme-lv/cpkit/internal/compiler"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/programme-lv/cpkit/internal/process"
)

// MemoryExceededError is set on results killed for crossing the memory limit.
const MemoryExceededError = "Memory limit exceeded"

// Limits for one run; zero values disable the respective limit.
type Limits struct {
	Time      time.Duration
	MemoryKiB uint64
}

type Runner struct {
	driver *process.Driver
	log    *slog.Logger
}

func NewRunner(driver *process.Driver, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{driver: driver, log: log.With("component", "executor")}
}

// Run never returns an error: every failure is folded into the result's
// Outcome and Error fields.
func (r *Runner) Run(ctx context.Context, art *compiler.Artifact, input string, lim Limits, sig *cancel.Signal) models.ExecutionResult {
	start := time.Now()
	if art == nil || len(art.RunCmd) == 0 {
		return failed(models.StartFailed, "no runnable artifact", 0)
	}

	dir := art.Dir
	if dir == "" {
		dir = filepath.Dir(art.Source)
	}
	cmd := process.Command{
		Path:           art.RunCmd[0],
		Args:           art.RunCmd[1:],
		Dir:            dir,
		Stdin:          []byte(input),
		TimeLimit:      lim.Time,
		MemoryLimitKiB: lim.MemoryKiB,
	}

	res, err := r.driver.Run(ctx, cmd, sig)
	if err != nil {
		elapsed := time.Since(start)
		switch {
		case errors.Is(err, process.ErrCancelled):
			r.log.Debug("run interrupted", "artifact", art.Path)
			return failed(models.Interrupted, models.InterruptedError, elapsed)
		case errors.Is(err, process.ErrStartFailed):
			r.log.Warn("failed to start artifact", "artifact", art.Path, "error", err)
			return failed(models.StartFailed, err.Error(), elapsed)
		default:
			r.log.Error("run failed", "artifact", art.Path, "error", err)
			return failed(models.StartFailed, fmt.Sprintf("execution failed: %v", err), elapsed)
		}
	}

	out := models.ExecutionResult{
		Output:        string(res.Stdout),
		ExitCode:      res.ExitCode,
		ExecutionTime: res.Elapsed,
		MemoryUsed:    res.PeakMemoryKiB,
		Outcome:       models.Completed,
	}
	switch {
	case res.TimedOut:
		out.Outcome = models.TimedOut
		out.Error = ptr(models.TimeoutError)
	case res.MemoryExceeded:
		out.Outcome = models.MemoryExceeded
		out.Error = ptr(MemoryExceededError)
	case len(res.Stderr) > 0:
		out.Error = ptr(string(res.Stderr))
	}
	return out
}

func failed(o models.Outcome, msg string, elapsed time.Duration) models.ExecutionResult {
	return models.ExecutionResult{
		ExitCode:      -1,
		ExecutionTime: elapsed,
		Error:         &msg,
		Outcome:       o,
	}
}

func ptr[T any](v T) *T {
	return &v
}
