package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMemoryLimitMB = 256
	DefaultTimeLimitMs   = 2000
	DefaultToolchain     = "cpp"
)

// Problem is a task imported from a problem source or created by hand.
type Problem struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Group         string     `json:"group"`
	URL           string     `json:"url"`
	Interactive   bool       `json:"interactive"`
	MemoryLimitMB uint64     `json:"memory_limit"`
	TimeLimitMs   uint64     `json:"time_limit"`
	Tests         []TestCase `json:"tests"`
	SourceFile    *string    `json:"source_file"`
	Toolchain     string     `json:"language"`
	CreatedAt     time.Time  `json:"created_at"`
	LastRun       *time.Time `json:"last_run"`
}

func NewProblem(name, group, url string) Problem {
	return Problem{
		ID:            uuid.New(),
		Name:          name,
		Group:         group,
		URL:           url,
		MemoryLimitMB: DefaultMemoryLimitMB,
		TimeLimitMs:   DefaultTimeLimitMs,
		Tests:         []TestCase{},
		Toolchain:     DefaultToolchain,
		CreatedAt:     time.Now().UTC(),
	}
}

func (p *Problem) AddTest(input, output string) {
	p.Tests = append(p.Tests, NewTestCase(input, output))
}

func (p *Problem) TimeLimit() time.Duration {
	if p.TimeLimitMs == 0 {
		return DefaultTimeLimitMs * time.Millisecond
	}
	return time.Duration(p.TimeLimitMs) * time.Millisecond
}

func (p *Problem) MemoryLimitKiB() uint64 {
	return p.MemoryLimitMB * 1024
}
