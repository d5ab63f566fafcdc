package models

import (
	"time"

	"github.com/google/uuid"
)

// TestCase is one sample input / expected output pair together with the
// outcome of its latest run.
type TestCase struct {
	ID             uuid.UUID      `json:"id"`
	Input          string         `json:"input"`
	ExpectedOutput string         `json:"expected_output"`
	ActualOutput   *string        `json:"actual_output"`
	Status         TestStatus     `json:"status"`
	ExecutionTime  *time.Duration `json:"execution_time"`
	MemoryUsed     *uint64        `json:"memory_used"` // KiB
	ErrorMessage   *string        `json:"error_message"`
}

func NewTestCase(input, expectedOutput string) TestCase {
	return TestCase{
		ID:             uuid.New(),
		Input:          input,
		ExpectedOutput: expectedOutput,
		Status:         Pending,
	}
}

// Reset returns the test to Pending and drops every run field.
// Identity, input and expected output are kept.
func (t *TestCase) Reset() {
	t.ActualOutput = nil
	t.Status = Pending
	t.ExecutionTime = nil
	t.MemoryUsed = nil
	t.ErrorMessage = nil
}

func (t *TestCase) SetError(msg string) {
	t.ErrorMessage = &msg
}
