// Package judge compiles a solution and drives test cases through their
// status state machine.
package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/cancel"
	"github.com/programme-lv/cpkit/internal/compiler"
	"github.com/programme-lv/cpkit/internal/executor"
	"github.com/programme-lv/cpkit/internal/gatherer"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/programme-lv/cpkit/internal/process"
	"golang.org/x/sync/semaphore"
)

const DefaultTimeLimit = 2 * time.Second

var (
	ErrNotCompiled = errors.New("no compiled artifact, compile first")
	ErrCancelled   = process.ErrCancelled
)

// Judge owns at most one cached artifact. Only one operation runs at a time;
// concurrent callers wait for their turn.
type Judge struct {
	compiler *compiler.Compiler
	runner   *executor.Runner
	limits   executor.Limits
	gath     gatherer.Gatherer
	log      *slog.Logger

	sem      *semaphore.Weighted
	artifact *compiler.Artifact
}

type Option func(*Judge)

func WithTimeLimit(d time.Duration) Option {
	return func(j *Judge) {
		if d > 0 {
			j.limits.Time = d
		}
	}
}

// WithMemoryLimit sets the peak resident memory limit; zero disables it.
func WithMemoryLimit(kib uint64) Option {
	return func(j *Judge) { j.limits.MemoryKiB = kib }
}

func WithGatherer(g gatherer.Gatherer) Option {
	return func(j *Judge) {
		if g != nil {
			j.gath = g
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(j *Judge) {
		if l != nil {
			j.log = l
		}
	}
}

func New(c *compiler.Compiler, r *executor.Runner, opts ...Option) *Judge {
	j := &Judge{
		compiler: c,
		runner:   r,
		limits:   executor.Limits{Time: DefaultTimeLimit},
		gath:     gatherer.Nop{},
		log:      slog.Default(),
		sem:      semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(j)
	}
	j.log = j.log.With("component", "judge")
	return j
}

func (j *Judge) Limits() executor.Limits {
	return j.limits
}

// Compiled reports whether an artifact is cached.
func (j *Judge) Compiled() bool {
	if err := j.sem.Acquire(context.Background(), 1); err != nil {
		return false
	}
	defer j.sem.Release(1)
	return j.artifact != nil
}

// CompileOnce compiles source and caches the artifact for RunTest. A
// previously cached artifact is removed first.
func (j *Judge) CompileOnce(ctx context.Context, source string, sig *cancel.Signal) error {
	if err := j.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	defer j.sem.Release(1)

	j.dropArtifact()
	art, err := j.compile(ctx, source, sig)
	if err != nil {
		return err
	}
	j.artifact = art
	return nil
}

// RunTest runs tc on the cached artifact. Judging outcomes are recorded on
// tc; only interruption and a missing artifact are returned as errors.
func (j *Judge) RunTest(ctx context.Context, tc *models.TestCase, sig *cancel.Signal) error {
	if err := j.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	defer j.sem.Release(1)

	if j.artifact == nil {
		return ErrNotCompiled
	}
	if interrupted := j.runOne(ctx, 0, j.artifact, tc, sig); interrupted {
		return ErrCancelled
	}
	return nil
}

// JudgeTest compiles source fresh, runs tc and removes the artifact. The
// cached artifact is left alone. A rejected source is recorded on tc as a
// compilation error and does not produce an error.
func (j *Judge) JudgeTest(ctx context.Context, source string, tc *models.TestCase, sig *cancel.Signal) error {
	if err := j.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	defer j.sem.Release(1)

	art, err := j.compile(ctx, source, sig)
	if err != nil {
		switch {
		case errors.Is(err, ErrCancelled):
			markInterrupted(tc)
		default:
			markCompilationError(tc, err)
		}
		j.gath.FinishTest(0, *tc)
		var cerr *compiler.Error
		if errors.As(err, &cerr) {
			return nil
		}
		return err
	}
	defer j.remove(art)

	if interrupted := j.runOne(ctx, 0, art, tc, sig); interrupted {
		return ErrCancelled
	}
	return nil
}

// JudgeAllTests compiles source once and runs tests strictly in order. When
// compilation is rejected every test ends in CompilationError. When no
// toolchain can be used the tests are left untouched and the error is
// returned. After a cancellation the remaining tests are marked interrupted
// without being run and ErrCancelled is returned with the statistics.
func (j *Judge) JudgeAllTests(ctx context.Context, source string, tests []models.TestCase, sig *cancel.Signal) (models.Statistics, error) {
	if err := j.sem.Acquire(ctx, 1); err != nil {
		return models.Statistics{}, fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	defer j.sem.Release(1)

	j.dropArtifact()
	defer j.dropArtifact()

	stats := models.Statistics{Total: len(tests)}
	art, err := j.compile(ctx, source, sig)
	if err != nil {
		var cerr *compiler.Error
		switch {
		case errors.As(err, &cerr):
			for i := range tests {
				markCompilationError(&tests[i], cerr)
				stats.Record(tests[i].Status)
				j.gath.FinishTest(i, tests[i])
			}
			j.gath.FinishBatch(stats)
			return stats, nil
		case errors.Is(err, ErrCancelled):
			for i := range tests {
				markInterrupted(&tests[i])
				stats.Record(tests[i].Status)
				j.gath.FinishTest(i, tests[i])
			}
			j.gath.FinishBatch(stats)
			return stats, err
		default:
			return models.Statistics{}, err
		}
	}
	j.artifact = art

	cancelled := false
	for i := range tests {
		tc := &tests[i]
		if !cancelled && (sig.Requested() || ctx.Err() != nil) {
			cancelled = true
		}
		if cancelled {
			markInterrupted(tc)
			j.gath.FinishTest(i, *tc)
		} else if j.runOne(ctx, i, art, tc, sig) {
			cancelled = true
		}
		stats.Record(tc.Status)
	}

	j.log.Info("batch finished", "source", source, "passed", stats.Passed, "total", stats.Total)
	j.gath.FinishBatch(stats)
	if cancelled {
		return stats, ErrCancelled
	}
	return stats, nil
}

// Cleanup removes the cached artifact. It is safe to call at any time and
// waits for an operation in flight.
func (j *Judge) Cleanup() error {
	if err := j.sem.Acquire(context.Background(), 1); err != nil {
		return err
	}
	defer j.sem.Release(1)

	if j.artifact == nil {
		return nil
	}
	err := j.artifact.Remove()
	j.artifact = nil
	return err
}

func (j *Judge) compile(ctx context.Context, source string, sig *cancel.Signal) (*compiler.Artifact, error) {
	j.gath.StartCompile(source)
	art, res, err := j.compiler.Compile(ctx, source, sig)
	if err != nil {
		var cerr *compiler.Error
		if errors.As(err, &cerr) {
			j.gath.CompileError(cerr.Error())
		} else if !errors.Is(err, ErrCancelled) {
			j.log.Error("compilation could not run", "source", source, "error", err)
		}
		return nil, err
	}
	j.gath.FinishCompile(runtimeData(res))
	return art, nil
}

// runOne drives tc from Pending through Running to a terminal status and
// reports whether the run was interrupted.
func (j *Judge) runOne(ctx context.Context, idx int, art *compiler.Artifact, tc *models.TestCase, sig *cancel.Signal) bool {
	tc.Reset()
	tc.Status = models.Running
	j.gath.ReachTest(idx, *tc)

	res := j.runner.Run(ctx, art, tc.Input, j.limits, sig)
	applyResult(tc, res, j.limits)

	j.log.Debug("test finished", "idx", idx, "status", tc.Status, "elapsed", res.ExecutionTime)
	j.gath.FinishTest(idx, *tc)
	return res.Outcome == models.Interrupted
}

func (j *Judge) dropArtifact() {
	if j.artifact == nil {
		return
	}
	j.remove(j.artifact)
	j.artifact = nil
}

func (j *Judge) remove(art *compiler.Artifact) {
	if err := art.Remove(); err != nil {
		j.log.Warn("failed to remove artifact", "error", err)
	}
}

func runtimeData(res *process.Result) *api.RuntimeData {
	if res == nil {
		return nil
	}
	d := &api.RuntimeData{
		Stdout:     string(res.Stdout),
		Stderr:     string(res.Stderr),
		ExitCode:   int64(res.ExitCode),
		WallMillis: res.Elapsed.Milliseconds(),
		TimedOut:   res.TimedOut,
	}
	if res.PeakMemoryKiB != nil {
		kib := int64(*res.PeakMemoryKiB)
		d.MemKiBytes = &kib
	}
	return d
}
