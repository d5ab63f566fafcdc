package models

// Statistics aggregates terminal statuses of one batch.
type Statistics struct {
	Total               int `json:"total"`
	Passed              int `json:"passed"`
	WrongAnswer         int `json:"wrong_answer"`
	RuntimeError        int `json:"runtime_error"`
	TimeLimitExceeded   int `json:"time_limit_exceeded"`
	MemoryLimitExceeded int `json:"memory_limit_exceeded"`
	CompilationError    int `json:"compilation_error"`
}

func (s *Statistics) Record(status TestStatus) {
	switch status {
	case Accepted:
		s.Passed++
	case WrongAnswer:
		s.WrongAnswer++
	case RuntimeError:
		s.RuntimeError++
	case TimeLimitExceeded:
		s.TimeLimitExceeded++
	case MemoryLimitExceeded:
		s.MemoryLimitExceeded++
	case CompilationError:
		s.CompilationError++
	}
}

func (s Statistics) AllPassed() bool {
	return s.Total > 0 && s.Passed == s.Total
}

// SuccessRate is the share of accepted tests in percent.
func (s Statistics) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total) * 100
}
