package behave

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/cancel"
	"github.com/programme-lv/cpkit/internal/compiler"
	"github.com/programme-lv/cpkit/internal/executor"
	"github.com/programme-lv/cpkit/internal/gatherer"
	"github.com/programme-lv/cpkit/internal/gatherer/respbuilder"
	"github.com/programme-lv/cpkit/internal/judge"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/programme-lv/cpkit/internal/process"
	"github.com/programme-lv/cpkit/internal/toolchain"
)

// Result of one scenario. Mismatches is empty when the scenario passed.
type Result struct {
	Name       string
	Report     api.Report
	Mismatches []string
}

func (r Result) Passed() bool {
	return len(r.Mismatches) == 0
}

type Runner struct {
	driver  *process.Driver
	base    *toolchain.Registry
	workDir string
	gath    gatherer.Gatherer
	log     *slog.Logger
}

// NewRunner runs scenarios with the toolchains of base plus those defined by
// each suite. g also receives every judge event; it may be nil.
func NewRunner(driver *process.Driver, base *toolchain.Registry, workDir string, g gatherer.Gatherer, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	if g == nil {
		g = gatherer.Nop{}
	}
	return &Runner{driver: driver, base: base, workDir: workDir, gath: g, log: log.With("component", "behave")}
}

// RunSuite runs every case in order. It stops early only on errors that are
// not judging outcomes, such as a missing toolchain or a cancellation.
func (r *Runner) RunSuite(ctx context.Context, s *Suite, sig *cancel.Signal) ([]Result, error) {
	reg, err := toolchain.NewRegistry(append(r.base.All(), s.Toolchains...)...)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(s.Cases))
	for _, c := range s.Cases {
		res, err := r.run(ctx, reg, c, sig)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", c.Name, err)
		}
		r.log.Info("scenario finished", "name", c.Name, "passed", res.Passed())
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) run(ctx context.Context, reg *toolchain.Registry, c Case, sig *cancel.Signal) (Result, error) {
	tc, ok := reg.Get(c.Toolchain)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", toolchain.ErrUnknownLanguage, c.Toolchain)
	}
	if len(tc.Extensions) == 0 {
		return Result{}, fmt.Errorf("toolchain %s has no source extension", tc.Name)
	}

	if r.workDir != "" {
		if err := os.MkdirAll(r.workDir, 0o755); err != nil {
			return Result{}, fmt.Errorf("failed to create work dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(r.workDir, "cpkit-behave-*")
	if err != nil {
		return Result{}, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "main"+tc.Extensions[0])
	if err := os.WriteFile(src, []byte(c.Code), 0o644); err != nil {
		return Result{}, fmt.Errorf("failed to write source: %w", err)
	}

	b := respbuilder.New(uuid.NewString())
	j := judge.New(
		compiler.New(r.driver, reg, compiler.WithWorkDir(dir), compiler.WithLogger(r.log)),
		executor.NewRunner(r.driver, r.log),
		judge.WithTimeLimit(c.TimeLimit),
		judge.WithMemoryLimit(c.MemKiB),
		judge.WithGatherer(gatherer.NewMulti(b, r.gath)),
		judge.WithLogger(r.log),
	)

	tests := make([]models.TestCase, len(c.Tests))
	copy(tests, c.Tests)
	if _, err := j.JudgeAllTests(ctx, src, tests, sig); err != nil {
		return Result{}, err
	}

	rep := b.Report()
	return Result{Name: c.Name, Report: rep, Mismatches: compare(c.Expect, rep, tests)}, nil
}

func compare(exp SpecExpect, rep api.Report, tests []models.TestCase) []string {
	var res []string
	want := api.ExecStatus(exp.Status)
	if want == "" {
		want = api.StatusSuccess
	}
	if rep.Status != want {
		res = append(res, fmt.Sprintf("status: expected %s, got %s", want, rep.Status))
	}
	if len(exp.TestResults) == 0 {
		return res
	}
	if len(exp.TestResults) != len(tests) {
		res = append(res, fmt.Sprintf("expected %d verdicts, got %d tests", len(exp.TestResults), len(tests)))
		return res
	}
	for i, v := range exp.TestResults {
		st, _ := models.ParseStatus(v.Verdict)
		if tests[i].Status != st {
			res = append(res, fmt.Sprintf("test %d: expected %s, got %s", i+1, st.Short(), tests[i].Status.Short()))
		}
	}
	return res
}
