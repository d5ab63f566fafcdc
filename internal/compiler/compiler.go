// Package compiler turns a source file into a runnable artifact using the
// toolchain detected for it.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/programme-lv/cpkit/internal/cancel"
	"github.com/programme-lv/cpkit/internal/process"
	"github.com/programme-lv/cpkit/internal/toolchain"
)

const DefaultTimeout = 30 * time.Second

var (
	ErrToolchainNotFound = toolchain.ErrToolchainNotFound
	ErrCompilationFailed = errors.New("compilation failed")
)

// Error carries the compiler's diagnostics for a rejected source.
type Error struct {
	Toolchain string
	ExitCode  int
	TimedOut  bool
	Output    string
}

func (e *Error) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s compilation timed out", e.Toolchain)
	}
	msg := fmt.Sprintf("%s compilation failed with exit code %d", e.Toolchain, e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ":\n" + out
	}
	return msg
}

func (e *Error) Unwrap() error {
	return ErrCompilationFailed
}

// Artifact is something runnable produced by Compile. The caller owns it and
// must call Remove.
type Artifact struct {
	Toolchain string
	Compiler  string
	Source    string
	Path      string
	// Dir is the work directory created for the artifact, empty when
	// nothing was built.
	Dir    string
	RunCmd []string
}

func (a *Artifact) Remove() error {
	if a == nil || a.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(a.Dir); err != nil {
		return fmt.Errorf("failed to remove artifact dir %s: %w", a.Dir, err)
	}
	a.Dir = ""
	return nil
}

type Compiler struct {
	driver   *process.Driver
	registry *toolchain.Registry
	workDir  string
	timeout  time.Duration
	log      *slog.Logger
}

type Option func(*Compiler)

// WithWorkDir sets where build directories are created; empty means the
// system temp dir.
func WithWorkDir(dir string) Option {
	return func(c *Compiler) { c.workDir = dir }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Compiler) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.log = l
		}
	}
}

func New(driver *process.Driver, registry *toolchain.Registry, opts ...Option) *Compiler {
	c := &Compiler{
		driver:   driver,
		registry: registry,
		timeout:  DefaultTimeout,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "compiler")
	return c
}

func (c *Compiler) Registry() *toolchain.Registry {
	return c.registry
}

// Compile builds source. The returned process result describes the compiler
// run and is nil for interpreted toolchains or when the compiler never
// started.
func (c *Compiler) Compile(ctx context.Context, source string, sig *cancel.Signal) (*Artifact, *process.Result, error) {
	if sig.Requested() {
		return nil, nil, process.ErrCancelled
	}

	source, err := filepath.Abs(source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve source path: %w", err)
	}
	if _, err := os.Stat(source); err != nil {
		return nil, nil, fmt.Errorf("failed to stat source file: %w", err)
	}

	tc, err := c.registry.Detect(source)
	if err != nil {
		return nil, nil, err
	}
	compilerPath, err := tc.Resolve()
	if err != nil {
		return nil, nil, err
	}

	if tc.Interpreted() {
		c.log.Info("no compilation needed", "toolchain", tc.Name, "interpreter", compilerPath)
		return &Artifact{
			Toolchain: tc.Name,
			Compiler:  compilerPath,
			Source:    source,
			Path:      source,
			RunCmd: toolchain.Expand(tc.RunCmd, toolchain.Vars{
				Compiler: compilerPath,
				Source:   source,
				Artifact: source,
				Dir:      filepath.Dir(source),
			}),
		}, nil, nil
	}

	if c.workDir != "" {
		if err := os.MkdirAll(c.workDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create work dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(c.workDir, "cpkit-build-*")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create build dir: %w", err)
	}

	vars := toolchain.Vars{
		Compiler: compilerPath,
		Source:   source,
		Artifact: filepath.Join(dir, tc.ArtifactName),
		Dir:      dir,
	}
	cmd := process.Command{
		Path:      compilerPath,
		Args:      toolchain.Expand(tc.CompileArgs, vars),
		Dir:       dir,
		TimeLimit: c.timeout,
	}

	c.log.Info("compiling", "toolchain", tc.Name, "compiler", compilerPath, "source", source)
	res, err := c.driver.Run(ctx, cmd, sig)
	if err != nil {
		_ = os.RemoveAll(dir)
		if errors.Is(err, process.ErrCancelled) {
			c.log.Info("compilation interrupted", "source", source)
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to run compiler: %w", err)
	}

	if res.TimedOut || res.ExitCode != 0 {
		_ = os.RemoveAll(dir)
		cerr := &Error{
			Toolchain: tc.Name,
			ExitCode:  res.ExitCode,
			TimedOut:  res.TimedOut,
			Output:    string(res.Stderr) + string(res.Stdout),
		}
		c.log.Info("compilation failed", "source", source, "exit", res.ExitCode)
		return nil, res, cerr
	}

	if _, err := os.Stat(vars.Artifact); err != nil {
		_ = os.RemoveAll(dir)
		return nil, res, &Error{
			Toolchain: tc.Name,
			Output:    fmt.Sprintf("compiler produced no artifact %s", tc.ArtifactName),
		}
	}

	c.log.Info("compilation finished", "artifact", vars.Artifact, "elapsed", res.Elapsed)
	return &Artifact{
		Toolchain: tc.Name,
		Compiler:  compilerPath,
		Source:    source,
		Path:      vars.Artifact,
		Dir:       dir,
		RunCmd:    toolchain.Expand(tc.RunCmd, vars),
	}, res, nil
}
