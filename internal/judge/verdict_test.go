package judge

import (
	"testing"
	"time"

	"github.com/programme-lv/cpkit/internal/executor"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestApplyResult(t *testing.T) {
	lim := executor.Limits{Time: time.Second, MemoryKiB: 1024}
	mem := uint64(900)

	tests := []struct {
		name     string
		expected string
		res      models.ExecutionResult
		status   models.TestStatus
		output   *string
		errMsg   string
	}{
		{
			name:     "accepted",
			expected: "6",
			res:      models.ExecutionResult{Output: "6\n", Outcome: models.Completed},
			status:   models.Accepted,
			output:   strp("6\n"),
		},
		{
			name:     "wrong answer keeps output",
			expected: "5",
			res:      models.ExecutionResult{Output: "6\n", Outcome: models.Completed},
			status:   models.WrongAnswer,
			output:   strp("6\n"),
		},
		{
			name:     "stderr on clean exit is advisory",
			expected: "6",
			res:      models.ExecutionResult{Output: "6\n", Error: strp("debug\n"), Outcome: models.Completed},
			status:   models.Accepted,
			output:   strp("6\n"),
			errMsg:   "debug\n",
		},
		{
			name:     "non-zero exit overrides a matching answer",
			expected: "6",
			res:      models.ExecutionResult{Output: "6\n", ExitCode: 3, Error: strp("boom\n"), Outcome: models.Completed},
			status:   models.RuntimeError,
			output:   strp("6\n"),
			errMsg:   "Process exited with code 3: boom",
		},
		{
			name:   "timeout",
			res:    models.ExecutionResult{Error: strp(models.TimeoutError), Outcome: models.TimedOut},
			status: models.TimeLimitExceeded,
			output: strp(""),
			errMsg: "Time limit of 1s exceeded",
		},
		{
			name:   "memory",
			res:    models.ExecutionResult{Outcome: models.MemoryExceeded, MemoryUsed: &mem},
			status: models.MemoryLimitExceeded,
			output: strp(""),
			errMsg: "Memory limit of 1024 KiB exceeded",
		},
		{
			name:   "interrupted",
			res:    models.ExecutionResult{Error: strp(models.InterruptedError), Outcome: models.Interrupted},
			status: models.RuntimeError,
			errMsg: models.InterruptedError,
		},
		{
			name:   "start failure",
			res:    models.ExecutionResult{Error: strp("permission denied"), Outcome: models.StartFailed},
			status: models.RuntimeError,
			errMsg: "permission denied",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := models.NewTestCase("", tt.expected)
			tt.res.ExecutionTime = 10 * time.Millisecond
			applyResult(&tc, tt.res, lim)

			assert.Equal(t, tt.status, tc.Status)
			assert.Equal(t, tt.output, tc.ActualOutput)
			require.NotNil(t, tc.ExecutionTime)
			assert.Equal(t, 10*time.Millisecond, *tc.ExecutionTime)
			if tt.errMsg == "" {
				assert.Nil(t, tc.ErrorMessage)
			} else {
				require.NotNil(t, tc.ErrorMessage)
				assert.Equal(t, tt.errMsg, *tc.ErrorMessage)
			}
		})
	}
}
