// Package gatherer receives progress events from the judge.
package gatherer

import (
	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/models"
)

//go:generate mockgen -destination=mocks/mock_gatherer.go -package=mocks . Gatherer

// Gatherer observes one judging operation. Methods are called from the
// judging goroutine in order and must not block for long. idx is the
// zero-based position of the test in its batch.
type Gatherer interface {
	StartCompile(source string)
	FinishCompile(data *api.RuntimeData)
	CompileError(msg string)
	ReachTest(idx int, tc models.TestCase)
	FinishTest(idx int, tc models.TestCase)
	FinishBatch(stats models.Statistics)
}

type Nop struct{}

func (Nop) StartCompile(string) {}
func (Nop) FinishCompile(*api.RuntimeData) {}
func (Nop) CompileError(string) {}
func (Nop) ReachTest(int, models.TestCase) {}
func (Nop) FinishTest(int, models.TestCase) {}
func (Nop) FinishBatch(models.Statistics) {}

// Multi forwards every event to each gatherer in order.
type Multi []Gatherer

func NewMulti(gs ...Gatherer) Multi {
	res := make(Multi, 0, len(gs))
	for _, g := range gs {
		if g != nil {
			res = append(res, g)
		}
	}
	return res
}

func (m Multi) StartCompile(source string) {
	for _, g := range m {
		g.StartCompile(source)
	}
}

func (m Multi) FinishCompile(data *api.RuntimeData) {
	for _, g := range m {
		g.FinishCompile(data)
	}
}

func (m Multi) CompileError(msg string) {
	for _, g := range m {
		g.CompileError(msg)
	}
}

func (m Multi) ReachTest(idx int, tc models.TestCase) {
	for _, g := range m {
		g.ReachTest(idx, tc)
	}
}

func (m Multi) FinishTest(idx int, tc models.TestCase) {
	for _, g := range m {
		g.FinishTest(idx, tc)
	}
}

func (m Multi) FinishBatch(stats models.Statistics) {
	for _, g := range m {
		g.FinishBatch(stats)
	}
}
