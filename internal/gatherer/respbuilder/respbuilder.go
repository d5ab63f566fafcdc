package respbuilder

import (
	"time"

	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/gatherer"
	"github.com/programme-lv/cpkit/internal/models"
)

// Builder gathers judge events and builds a complete api.Report.
type Builder struct {
	jobID  string
	source string

	started  time.Time
	finished *time.Time

	compileResult api.CompileResult
	testResults   []api.TestResult
	summary       *api.Summary

	status api.ExecStatus
}

func New(jobID string) *Builder {
	return &Builder{
		jobID:   jobID,
		started: time.Now(),
		status:  api.StatusSuccess,
	}
}

func (b *Builder) StartCompile(source string) {
	b.source = source
}

func (b *Builder) FinishCompile(data *api.RuntimeData) {
	b.compileResult.Success = true
	if data != nil {
		wall := data.WallMillis
		b.compileResult.WallMillis = &wall
	}
}

func (b *Builder) CompileError(msg string) {
	b.status = api.StatusCompileError
	b.compileResult.Success = false
	b.compileResult.Error = &msg
}

func (b *Builder) ReachTest(idx int, tc models.TestCase) {}

func (b *Builder) FinishTest(idx int, tc models.TestCase) {
	msg := gatherer.FinishTestMsg(b.jobID, idx, tc)
	tr := api.TestResult{
		TestIdx:      idx,
		TestID:       msg.TestID,
		Status:       msg.Status,
		Verdict:      msg.Verdict,
		WallMillis:   msg.WallMillis,
		MemKiBytes:   msg.MemKiBytes,
		Output:       msg.Output,
		ErrorMessage: msg.ErrorMessage,
	}
	if tc.ErrorMessage != nil && *tc.ErrorMessage == models.InterruptedError && b.status == api.StatusSuccess {
		b.status = api.StatusInterrupted
	}
	b.testResults = append(b.testResults, tr)
}

func (b *Builder) FinishBatch(stats models.Statistics) {
	now := time.Now()
	b.finished = &now
	s := gatherer.SummaryOf(stats)
	b.summary = &s
}

// Report builds the api.Report from gathered data.
func (b *Builder) Report() api.Report {
	start := b.started.Format(time.RFC3339)
	finish := start
	total := int64(0)
	if b.finished != nil {
		finish = b.finished.Format(time.RFC3339)
		total = b.finished.Sub(b.started).Milliseconds()
	}
	results := b.testResults
	if results == nil {
		results = []api.TestResult{}
	}
	return api.Report{
		JobID:       b.jobID,
		Source:      b.source,
		Status:      b.status,
		Compilation: b.compileResult,
		TestResults: results,
		Summary:     b.summary,
		StartTime:   start,
		FinishTime:  finish,
		TotalTimeMs: total,
	}
}
