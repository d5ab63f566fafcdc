package models

import "time"

// Outcome tells how a single process run ended.
type Outcome int

const (
	Completed Outcome = iota
	TimedOut
	MemoryExceeded
	Interrupted
	StartFailed
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed out"
	case MemoryExceeded:
		return "memory exceeded"
	case Interrupted:
		return "interrupted"
	case StartFailed:
		return "start failed"
	}
	return "unknown"
}

const (
	TimeoutError     = "Timeout"
	InterruptedError = "Interrupted by user"
)

// ExecutionResult is produced by one run of a program and consumed
// immediately to update a TestCase.
type ExecutionResult struct {
	Output        string
	ExitCode      int
	ExecutionTime time.Duration
	MemoryUsed    *uint64
	Error         *string
	Outcome       Outcome
}

func (r ExecutionResult) IsSuccess() bool {
	return r.Outcome == Completed && r.ExitCode == 0 && r.Error == nil
}
