package api

// Simple, non-streaming report of one judging job

type ExecStatus string

const (
	StatusSuccess      ExecStatus = "success"
	StatusCompileError ExecStatus = "compile_error"
	StatusInterrupted  ExecStatus = "interrupted"
)

// TestResult represents the result of a single test case
type TestResult struct {
	TestIdx int    `json:"test_idx"`
	TestID  string `json:"test_id"`
	Status  string `json:"status"`
	Verdict string `json:"verdict"`

	WallMillis *int64 `json:"wall_ms,omitempty"`
	MemKiBytes *int64 `json:"mem_kib,omitempty"`

	Output       *string `json:"output,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

// CompileResult represents compilation outcome
type CompileResult struct {
	Success bool    `json:"success"`
	Error   *string `json:"error,omitempty"`

	WallMillis *int64 `json:"wall_ms,omitempty"`
}

// Report is a complete account of a judged batch
type Report struct {
	JobID  string     `json:"job_id"`
	Source string     `json:"source"`
	Status ExecStatus `json:"status"`

	Compilation CompileResult `json:"compilation"`
	TestResults []TestResult  `json:"test_results"`
	Summary     *Summary      `json:"summary,omitempty"`

	StartTime   string `json:"start_time"`
	FinishTime  string `json:"finish_time"`
	TotalTimeMs int64  `json:"total_time_ms"`
}
