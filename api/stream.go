package api

import "time"

// MsgType is a message type for streaming responses
type MsgType string

// Streaming message type constants
const (
	StartCompileMsg  MsgType = "compile_start"
	FinishCompileMsg MsgType = "compile_finish"
	CompileErrorMsg  MsgType = "compile_error"
	ReachTestMsg     MsgType = "test_reach"
	FinishTestMsg    MsgType = "test_finish"
	FinishBatchMsg   MsgType = "batch_finish"
)

// Runtime data size constraints for streaming
const (
	MaxRuntimeDataHeight = 40
	MaxRuntimeDataWidth  = 80
)

// Header is the common header for all streaming response messages
type Header struct {
	JobID   string  `json:"job_id"`
	MsgType MsgType `json:"msg_type"`
}

// StartCompile message sent when compilation begins
type StartCompile struct {
	Header
	Source      string `json:"source"`
	StartedTime string `json:"started_time"`
}

// FinishCompile message sent when the compiler exits successfully
type FinishCompile struct {
	Header
	RuntimeData *RuntimeData `json:"runtime_data"`
}

// CompileError message sent when the source could not be compiled
type CompileError struct {
	Header
	ErrorMessage string `json:"error_message"`
}

// ReachTest message sent when a test starts running
type ReachTest struct {
	Header
	TestIdx int     `json:"test_idx"`
	TestID  string  `json:"test_id"`
	Input   *string `json:"input"`
	Answer  *string `json:"answer"`
}

// FinishTest message sent when a test reaches a terminal status
type FinishTest struct {
	Header
	TestIdx      int     `json:"test_idx"`
	TestID       string  `json:"test_id"`
	Status       string  `json:"status"`
	Verdict      string  `json:"verdict"`
	Output       *string `json:"output"`
	ErrorMessage *string `json:"error_message"`
	WallMillis   *int64  `json:"wall_ms"`
	MemKiBytes   *int64  `json:"mem_kib"`
}

// Summary counts terminal statuses of a batch
type Summary struct {
	Total               int     `json:"total"`
	Passed              int     `json:"passed"`
	WrongAnswer         int     `json:"wrong_answer"`
	RuntimeError        int     `json:"runtime_error"`
	TimeLimitExceeded   int     `json:"time_limit_exceeded"`
	MemoryLimitExceeded int     `json:"memory_limit_exceeded"`
	CompilationError    int     `json:"compilation_error"`
	SuccessRate         float64 `json:"success_rate"`
}

// FinishBatch message sent after the last test of a batch
type FinishBatch struct {
	Header
	Summary      Summary `json:"summary"`
	FinishedTime string  `json:"finished_time"`
}

// Helper function to create a header
func NewHeader(jobID string, msgType MsgType) Header {
	return Header{
		JobID:   jobID,
		MsgType: msgType,
	}
}

// Helper functions to create specific streaming message types
func NewStartCompile(jobID, source string) StartCompile {
	return StartCompile{
		Header:      NewHeader(jobID, StartCompileMsg),
		Source:      source,
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewFinishCompile(jobID string, runtimeData *RuntimeData) FinishCompile {
	return FinishCompile{
		Header:      NewHeader(jobID, FinishCompileMsg),
		RuntimeData: runtimeData,
	}
}

func NewCompileError(jobID, msg string) CompileError {
	return CompileError{
		Header:       NewHeader(jobID, CompileErrorMsg),
		ErrorMessage: msg,
	}
}

func NewReachTest(jobID string, idx int, testID string, input, answer *string) ReachTest {
	return ReachTest{
		Header:  NewHeader(jobID, ReachTestMsg),
		TestIdx: idx,
		TestID:  testID,
		Input:   input,
		Answer:  answer,
	}
}

func NewFinishTest(jobID string, idx int, testID string) FinishTest {
	return FinishTest{
		Header:  NewHeader(jobID, FinishTestMsg),
		TestIdx: idx,
		TestID:  testID,
	}
}

func NewFinishBatch(jobID string, summary Summary) FinishBatch {
	return FinishBatch{
		Header:       NewHeader(jobID, FinishBatchMsg),
		Summary:      summary,
		FinishedTime: time.Now().Format(time.RFC3339),
	}
}
