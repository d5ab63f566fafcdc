package respbuilder_test

import (
	"testing"

	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/gatherer/respbuilder"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportForSuccessfulBatch(t *testing.T) {
	b := respbuilder.New("job")
	b.StartCompile("/tmp/a.cpp")
	b.FinishCompile(&api.RuntimeData{WallMillis: 800})

	tc := models.NewTestCase("1", "1")
	tc.Status = models.Accepted
	b.ReachTest(0, tc)
	b.FinishTest(0, tc)
	b.FinishBatch(models.Statistics{Total: 1, Passed: 1})

	r := b.Report()
	assert.Equal(t, api.StatusSuccess, r.Status)
	assert.Equal(t, "/tmp/a.cpp", r.Source)
	assert.True(t, r.Compilation.Success)
	require.NotNil(t, r.Compilation.WallMillis)
	assert.EqualValues(t, 800, *r.Compilation.WallMillis)
	require.Len(t, r.TestResults, 1)
	assert.Equal(t, "AC", r.TestResults[0].Verdict)
	require.NotNil(t, r.Summary)
	assert.InDelta(t, 100.0, r.Summary.SuccessRate, 0.001)
}

func TestReportForCompileError(t *testing.T) {
	b := respbuilder.New("job")
	b.StartCompile("a.cpp")
	b.CompileError("expected ';'")

	r := b.Report()
	assert.Equal(t, api.StatusCompileError, r.Status)
	assert.False(t, r.Compilation.Success)
	require.NotNil(t, r.Compilation.Error)
	assert.Equal(t, "expected ';'", *r.Compilation.Error)
	assert.NotNil(t, r.TestResults)
	assert.Nil(t, r.Summary)
}

func TestReportMarksInterrupted(t *testing.T) {
	b := respbuilder.New("job")
	tc := models.NewTestCase("", "")
	tc.Status = models.RuntimeError
	tc.SetError(models.InterruptedError)
	b.FinishTest(0, tc)

	assert.Equal(t, api.StatusInterrupted, b.Report().Status)
}
