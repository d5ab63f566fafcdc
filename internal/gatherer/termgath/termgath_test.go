package termgath_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/programme-lv/cpkit/internal/gatherer/termgath"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPrintsVerdictsAndSummary(t *testing.T) {
	var buf bytes.Buffer
	g := termgath.New(termgath.WithWriter(&buf), termgath.WithVerbose(true))

	g.StartCompile("main.cpp")

	ac := models.NewTestCase("1\n", "1\n")
	ac.Status = models.Accepted
	d := 12 * time.Millisecond
	ac.ExecutionTime = &d
	g.FinishTest(0, ac)

	wa := models.NewTestCase("3\n1 2 3\n", "5")
	out := "6\n"
	wa.Status = models.WrongAnswer
	wa.ActualOutput = &out
	g.FinishTest(1, wa)

	g.FinishBatch(models.Statistics{Total: 2, Passed: 1, WrongAnswer: 1})

	s := buf.String()
	assert.Contains(t, s, "Compiling main.cpp")
	assert.Contains(t, s, "Test 1   AC")
	assert.Contains(t, s, "12ms")
	assert.Contains(t, s, "Test 2   WA")
	assert.Contains(t, s, "expected:\n    5\n")
	assert.Contains(t, s, "actual:\n    6\n")
	assert.Contains(t, s, "1/2 passed (50.0%)")
	assert.Contains(t, s, "WA 1")
	assert.NotContains(t, s, "\x1b[", "colours are off for non-terminal writers")
}

func TestCompileError(t *testing.T) {
	var buf bytes.Buffer
	g := termgath.New(termgath.WithWriter(&buf))
	g.CompileError("main.cpp:1:1: error: expected ';'")
	assert.Contains(t, buf.String(), "Compilation error")
	assert.Contains(t, buf.String(), "expected ';'")
}
