package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/programme-lv/cpkit/internal/compiler"
	"github.com/programme-lv/cpkit/internal/executor"
	"github.com/programme-lv/cpkit/internal/gatherer"
	"github.com/programme-lv/cpkit/internal/gatherer/natsgath"
	"github.com/programme-lv/cpkit/internal/gatherer/respbuilder"
	"github.com/programme-lv/cpkit/internal/gatherer/sqsgath"
	"github.com/programme-lv/cpkit/internal/gatherer/termgath"
	"github.com/programme-lv/cpkit/internal/judge"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/programme-lv/cpkit/internal/storage"
	"github.com/programme-lv/cpkit/internal/xdg"
	"github.com/urfave/cli/v3"
)

var limitFlags = []cli.Flag{
	&cli.IntFlag{Name: "time-limit", Aliases: []string{"t"}, Usage: "time limit per test in milliseconds"},
	&cli.IntFlag{Name: "memory-limit", Aliases: []string{"m"}, Usage: "memory limit per test in MB, 0 disables it"},
}

func judgeCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "judge",
		Usage:     "compile a solution and run it against all of its tests",
		ArgsUsage: "<source>",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "problem", Aliases: []string{"p"}, Usage: "judge against this problem instead of the sidecar tests"},
			&cli.BoolFlag{Name: "json", Usage: "print a JSON report instead of progress"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "show input and outputs of failed tests"},
		}, limitFlags...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := checkLimitFlags(cmd); err != nil {
				return err
			}
			src, err := sourceArg(cmd)
			if err != nil {
				return err
			}
			set, err := a.loadTests(src, cmd.String("problem"))
			if err != nil {
				return err
			}
			if len(set.tests) == 0 {
				return fmt.Errorf("no tests for %s, add some with 'cpkit tests add' or import a problem", src)
			}

			jobID := uuid.NewString()
			var report *respbuilder.Builder
			var gs []gatherer.Gatherer
			if cmd.Bool("json") {
				report = respbuilder.New(jobID)
				gs = append(gs, report)
			} else {
				gs = append(gs, termgath.New(termgath.WithVerbose(cmd.Bool("verbose"))))
			}
			remote, closeRemote, err := a.remoteGatherers(ctx, jobID)
			if err != nil {
				return err
			}
			defer closeRemote()
			gs = append(gs, remote...)

			j, err := a.newJudge(set.limits(a, cmd), gatherer.NewMulti(gs...))
			if err != nil {
				return err
			}
			defer j.Cleanup()

			stats, err := j.JudgeAllTests(ctx, src, set.tests, a.sig)
			if err != nil && !errors.Is(err, judge.ErrCancelled) {
				return err
			}
			if serr := set.save(src); serr != nil {
				return serr
			}
			if report != nil {
				if perr := printJSON(os.Stdout, report.Report()); perr != nil {
					return perr
				}
			}
			if err != nil {
				return cli.Exit("judging interrupted", 130)
			}
			if !stats.AllPassed() {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func runCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a solution on one stored test, or on standard input",
		ArgsUsage: "<source>",
		Flags: append([]cli.Flag{
			&cli.IntFlag{Name: "test", Aliases: []string{"n"}, Usage: "1-based test number, 0 reads input from stdin"},
			&cli.StringFlag{Name: "problem", Aliases: []string{"p"}, Usage: "take tests from this problem"},
		}, limitFlags...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := checkLimitFlags(cmd); err != nil {
				return err
			}
			src, err := sourceArg(cmd)
			if err != nil {
				return err
			}
			n := cmd.Int("test")
			if n == 0 {
				return a.runStdin(ctx, cmd, src)
			}

			set, err := a.loadTests(src, cmd.String("problem"))
			if err != nil {
				return err
			}
			if n < 0 || int(n) > len(set.tests) {
				return fmt.Errorf("test %d does not exist, there are %d tests", n, len(set.tests))
			}
			j, err := a.newJudge(set.limits(a, cmd), termgath.New(termgath.WithVerbose(true)))
			if err != nil {
				return err
			}
			defer j.Cleanup()

			tc := &set.tests[n-1]
			if err := j.JudgeTest(ctx, src, tc, a.sig); err != nil && !errors.Is(err, judge.ErrCancelled) {
				return err
			}
			return set.save(src)
		},
	}
}

// runStdin compiles src and runs it once on standard input, printing what the
// program wrote.
func (a *app) runStdin(ctx context.Context, cmd *cli.Command, src string) error {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	comp, err := a.newCompiler()
	if err != nil {
		return err
	}
	art, _, err := comp.Compile(ctx, src, a.sig)
	if err != nil {
		var cerr *compiler.Error
		if errors.As(err, &cerr) {
			fmt.Fprintln(os.Stderr, cerr.Output)
		}
		return err
	}
	defer art.Remove()

	res := executor.NewRunner(a.driver, a.log).Run(ctx, art, string(input), a.configLimits(cmd), a.sig)
	fmt.Print(res.Output)
	if res.Error != nil {
		fmt.Fprintln(os.Stderr, *res.Error)
	}
	a.log.Info("run finished", "outcome", res.Outcome, "exit_code", res.ExitCode, "elapsed", res.ExecutionTime)
	if !res.IsSuccess() {
		return cli.Exit("", 1)
	}
	return nil
}

func (a *app) newCompiler() (*compiler.Compiler, error) {
	if a.cfg.WorkDir != "" {
		if err := xdg.EnsureDir(a.cfg.WorkDir); err != nil {
			return nil, err
		}
	}
	return compiler.New(a.driver, a.registry,
		compiler.WithWorkDir(a.cfg.WorkDir),
		compiler.WithTimeout(a.cfg.CompileTimeout()),
		compiler.WithLogger(a.log),
	), nil
}

func (a *app) newJudge(lim executor.Limits, g gatherer.Gatherer) (*judge.Judge, error) {
	comp, err := a.newCompiler()
	if err != nil {
		return nil, err
	}
	return judge.New(comp, executor.NewRunner(a.driver, a.log),
		judge.WithTimeLimit(lim.Time),
		judge.WithMemoryLimit(lim.MemoryKiB),
		judge.WithGatherer(g),
		judge.WithLogger(a.log),
	), nil
}

// configLimits are the configured limits with command line overrides.
func (a *app) configLimits(cmd *cli.Command) executor.Limits {
	lim := executor.Limits{Time: a.cfg.TimeLimit(), MemoryKiB: a.cfg.MemoryLimitKiB()}
	return overrideLimits(lim, cmd)
}

// checkLimitFlags rejects negative limits before they are converted to
// unsigned values.
func checkLimitFlags(cmd *cli.Command) error {
	for _, name := range []string{"time-limit", "memory-limit"} {
		if cmd.IsSet(name) && cmd.Int(name) < 0 {
			return fmt.Errorf("--%s must not be negative, got %d", name, cmd.Int(name))
		}
	}
	if cmd.IsSet("time-limit") && cmd.Int("time-limit") == 0 {
		return fmt.Errorf("--time-limit must be positive")
	}
	return nil
}

func overrideLimits(lim executor.Limits, cmd *cli.Command) executor.Limits {
	if cmd.IsSet("time-limit") {
		lim.Time = time.Duration(cmd.Int("time-limit")) * time.Millisecond
	}
	if cmd.IsSet("memory-limit") {
		lim.MemoryKiB = uint64(cmd.Int("memory-limit")) * 1024
	}
	return lim
}

// remoteGatherers connects the configured progress streams. The returned
// func flushes and closes them.
func (a *app) remoteGatherers(ctx context.Context, jobID string) ([]gatherer.Gatherer, func(), error) {
	var gs []gatherer.Gatherer
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if a.cfg.NATS.URL != "" {
		nc, err := natsgath.Connect(a.cfg.NATS.URL)
		if err != nil {
			return nil, closeAll, err
		}
		gs = append(gs, natsgath.New(nc, jobID, a.cfg.NATS.Subject, a.log))
		closers = append(closers, func() {
			fctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := natsgath.Flush(fctx, nc); err != nil {
				a.log.Warn("failed to flush NATS messages", "error", err)
			}
			nc.Close()
		})
	}
	if a.cfg.SQS.QueueURL != "" {
		client, err := sqsgath.NewClient(ctx, a.cfg.SQS.Region)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		gs = append(gs, sqsgath.New(client, jobID, a.cfg.SQS.QueueURL, a.log))
	}
	return gs, closeAll, nil
}

// testSet is where the tests of one judging run come from and go back to.
type testSet struct {
	tests   []models.TestCase
	problem *models.Problem
	store   *storage.ProblemStore
}

// loadTests prefers the sidecar tests of src. Without them the named
// problem, or else the current one, supplies the tests and is linked to src.
func (a *app) loadTests(src, problemRef string) (*testSet, error) {
	if problemRef == "" {
		tests, err := storage.LoadTests(src)
		if err != nil {
			return nil, err
		}
		if len(tests) > 0 {
			return &testSet{tests: tests}, nil
		}
	}

	store, err := a.problems()
	if err != nil {
		return nil, err
	}
	var p *models.Problem
	if problemRef != "" {
		if p, err = store.Find(problemRef); err != nil {
			return nil, err
		}
	} else {
		cur, ok := store.Current()
		if !ok {
			return &testSet{}, nil
		}
		p = cur
	}
	tests := make([]models.TestCase, len(p.Tests))
	copy(tests, p.Tests)
	return &testSet{tests: tests, problem: p, store: store}, nil
}

func (s *testSet) limits(a *app, cmd *cli.Command) executor.Limits {
	if s.problem == nil {
		return a.configLimits(cmd)
	}
	lim := executor.Limits{Time: s.problem.TimeLimit(), MemoryKiB: s.problem.MemoryLimitKiB()}
	return overrideLimits(lim, cmd)
}

func (s *testSet) save(src string) error {
	if s.problem == nil {
		return storage.SaveTests(src, s.tests)
	}
	now := time.Now().UTC()
	s.problem.Tests = s.tests
	s.problem.SourceFile = &src
	s.problem.LastRun = &now
	return s.store.Update(s.problem)
}

func sourceArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("expected exactly one source file")
	}
	src, err := filepath.Abs(cmd.Args().First())
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(src); err != nil {
		return "", err
	}
	return src, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
