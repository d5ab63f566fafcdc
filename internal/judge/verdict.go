package judge

import (
	"fmt"
	"strings"

	"github.com/programme-lv/cpkit/internal/checkers"
	"github.com/programme-lv/cpkit/internal/executor"
	"github.com/programme-lv/cpkit/internal/models"
)

// applyResult records res on tc and sets its terminal status. Precedence:
// interruption, start failure, timeout, memory limit, non-zero exit, then
// the output comparison.
func applyResult(tc *models.TestCase, res models.ExecutionResult, lim executor.Limits) {
	elapsed := res.ExecutionTime
	tc.ExecutionTime = &elapsed
	tc.MemoryUsed = res.MemoryUsed

	switch res.Outcome {
	case models.Interrupted:
		tc.Status = models.RuntimeError
		tc.SetError(models.InterruptedError)
		return
	case models.StartFailed:
		tc.Status = models.RuntimeError
		tc.SetError(errorText(res, "failed to start program"))
		return
	}

	out := res.Output
	tc.ActualOutput = &out

	switch {
	case res.Outcome == models.TimedOut:
		tc.Status = models.TimeLimitExceeded
		tc.SetError(fmt.Sprintf("Time limit of %s exceeded", lim.Time))
	case res.Outcome == models.MemoryExceeded:
		tc.Status = models.MemoryLimitExceeded
		tc.SetError(fmt.Sprintf("Memory limit of %d KiB exceeded", lim.MemoryKiB))
	case res.ExitCode != 0:
		tc.Status = models.RuntimeError
		msg := fmt.Sprintf("Process exited with code %d", res.ExitCode)
		if res.Error != nil && strings.TrimSpace(*res.Error) != "" {
			msg += ": " + strings.TrimSpace(*res.Error)
		}
		tc.SetError(msg)
	default:
		if checkers.Equal(tc.ExpectedOutput, res.Output) {
			tc.Status = models.Accepted
		} else {
			tc.Status = models.WrongAnswer
		}
		// stderr of a clean exit is advisory
		if res.Error != nil && *res.Error != "" {
			tc.SetError(*res.Error)
		}
	}
}

func markInterrupted(tc *models.TestCase) {
	tc.Reset()
	tc.Status = models.RuntimeError
	tc.SetError(models.InterruptedError)
}

func markCompilationError(tc *models.TestCase, err error) {
	tc.Reset()
	tc.Status = models.CompilationError
	tc.SetError(err.Error())
}

func errorText(res models.ExecutionResult, fallback string) string {
	if res.Error != nil && *res.Error != "" {
		return *res.Error
	}
	return fallback
}
