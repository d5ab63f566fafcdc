// Package process spawns a single child process, feeds it input and waits for
// it while watching for cancellation, a time limit and a memory limit.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/programme-lv/cpkit/internal/cancel"
	psprocess "github.com/shirou/gopsutil/v3/process"
)

const DefaultPollInterval = 50 * time.Millisecond

// waitDelay bounds how long input and output are still copied after the
// child exited while a descendant escaped the process group kill.
const waitDelay = 200 * time.Millisecond

var (
	ErrCancelled   = errors.New("interrupted by user")
	ErrStartFailed = errors.New("failed to start process")
)

type Command struct {
	Path  string
	Args  []string
	Dir   string
	Stdin []byte

	// zero means no limit
	TimeLimit      time.Duration
	MemoryLimitKiB uint64
}

func (c Command) String() string {
	return fmt.Sprintf("%s %v", c.Path, c.Args)
}

type Result struct {
	ExitCode      int
	Elapsed       time.Duration
	Stdout        []byte
	Stderr        []byte
	PeakMemoryKiB *uint64

	TimedOut       bool
	MemoryExceeded bool
}

type Driver struct {
	pollInterval time.Duration
	log          *slog.Logger
}

type Option func(*Driver)

func WithPollInterval(d time.Duration) Option {
	return func(drv *Driver) {
		if d > 0 {
			drv.pollInterval = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(drv *Driver) {
		if l != nil {
			drv.log = l
		}
	}
}

func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		pollInterval: DefaultPollInterval,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "process")
	return d
}

func (d *Driver) PollInterval() time.Duration {
	return d.pollInterval
}

// Run executes cmd and returns once the process exited, hit a limit or was
// cancelled. On cancellation the collected output is dropped and
// ErrCancelled is returned. The process group is always killed and reaped
// before Run returns.
func (d *Driver) Run(ctx context.Context, cmd Command, sig *cancel.Signal) (*Result, error) {
	if sig.Requested() {
		return nil, ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdin = bytes.NewReader(cmd.Stdin)
	c.WaitDelay = waitDelay
	setProcessGroup(c)

	// The child writes into real pipes so Wait returns when the leader
	// exits, not when every descendant has closed its copy of the pipes.
	out, err := newCapture()
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrStartFailed, cmd.Path, err)
	}
	defer out.close()
	c.Stdout = out.stdoutW
	c.Stderr = out.stderrW

	start := time.Now()
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrStartFailed, cmd.Path, err)
	}
	out.startCopying()
	pid := c.Process.Pid
	d.log.Debug("started process", "pid", pid, "cmd", cmd.String())

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- c.Wait()
	}()

	sampler := newMemorySampler(pid)

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if cmd.TimeLimit > 0 {
		timer := time.NewTimer(cmd.TimeLimit)
		defer timer.Stop()
		deadline = timer.C
	}

	res := &Result{}
	var waitErr error
loop:
	for {
		select {
		case waitErr = <-waitCh:
			break loop
		case <-ticker.C:
			sampler.sample()
			if cmd.MemoryLimitKiB > 0 && sampler.peak > cmd.MemoryLimitKiB {
				d.log.Debug("memory limit exceeded", "pid", pid, "peak_kib", sampler.peak)
				res.MemoryExceeded = true
				waitErr = d.terminate(c, waitCh)
				break loop
			}
		case <-deadline:
			d.log.Debug("time limit exceeded", "pid", pid, "limit", cmd.TimeLimit)
			res.TimedOut = true
			waitErr = d.terminate(c, waitCh)
			break loop
		case <-sig.Done():
			d.log.Info("stop requested, killing process", "pid", pid)
			d.terminate(c, waitCh)
			return nil, ErrCancelled
		case <-ctx.Done():
			d.log.Info("context done, killing process", "pid", pid)
			d.terminate(c, waitCh)
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
	}
	res.Elapsed = time.Since(start)

	// descendants may outlive the group leader
	killProcessGroup(c)

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
			return nil, fmt.Errorf("failed to wait for process %d: %w", pid, waitErr)
		}
	}

	res.ExitCode = c.ProcessState.ExitCode()
	res.Stdout, res.Stderr = out.collect(waitDelay)

	peak := sampler.peak
	if rss, ok := maxRSSKiB(c.ProcessState); ok && rss > peak {
		peak = rss
	}
	if peak > 0 {
		res.PeakMemoryKiB = &peak
	}

	d.log.Debug("process finished", "pid", pid,
		"exit", res.ExitCode, "elapsed", res.Elapsed, "timed_out", res.TimedOut)
	return res, nil
}

// terminate kills the whole process tree and waits for the reaper goroutine.
func (d *Driver) terminate(c *exec.Cmd, waitCh <-chan error) error {
	killProcessGroup(c)
	if err := c.Process.Kill(); err != nil && !errors.Is(err, errProcessDone) {
		d.log.Debug("failed to kill process", "pid", c.Process.Pid, "error", err)
	}
	return <-waitCh
}

type memorySampler struct {
	proc *psprocess.Process
	peak uint64
}

func newMemorySampler(pid int) *memorySampler {
	proc, err := psprocess.NewProcess(int32(pid))
	if err != nil {
		return &memorySampler{}
	}
	return &memorySampler{proc: proc}
}

// sample is best-effort; the process may already be gone.
func (m *memorySampler) sample() {
	if m.proc == nil {
		return
	}
	info, err := m.proc.MemoryInfo()
	if err != nil {
		return
	}
	if kib := info.RSS / 1024; kib > m.peak {
		m.peak = kib
	}
}

// capture collects stdout and stderr of a child through os pipes.
type capture struct {
	stdoutR, stdoutW *os.File
	stderrR, stderrW *os.File

	stdout, stderr bytes.Buffer
	wg             sync.WaitGroup
}

func newCapture() (*capture, error) {
	c := &capture{}
	var err error
	if c.stdoutR, c.stdoutW, err = os.Pipe(); err != nil {
		return nil, err
	}
	if c.stderrR, c.stderrW, err = os.Pipe(); err != nil {
		c.stdoutR.Close()
		c.stdoutW.Close()
		return nil, err
	}
	return c, nil
}

// startCopying drops the parent's write ends, which the child now holds, and
// starts reading.
func (c *capture) startCopying() {
	c.stdoutW.Close()
	c.stderrW.Close()
	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		_, _ = io.Copy(&c.stdout, c.stdoutR)
	}()
	go func() {
		defer c.wg.Done()
		_, _ = io.Copy(&c.stderr, c.stderrR)
	}()
}

// collect waits up to grace for the writers to go away, then cuts the pipes
// and returns what was read.
func (c *capture) collect(grace time.Duration) ([]byte, []byte) {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		c.stdoutR.Close()
		c.stderrR.Close()
		<-done
	}
	return c.stdout.Bytes(), c.stderr.Bytes()
}

// close releases every pipe end. Closing twice is harmless.
func (c *capture) close() {
	for _, f := range []*os.File{c.stdoutR, c.stdoutW, c.stderrR, c.stderrW} {
		_ = f.Close()
	}
}
