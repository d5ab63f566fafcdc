package models

// TestStatus is the judging state of a single test case.
type TestStatus string

const (
	Pending             TestStatus = "Pending"
	Running             TestStatus = "Running"
	Accepted            TestStatus = "Accepted"
	WrongAnswer         TestStatus = "WrongAnswer"
	RuntimeError        TestStatus = "RuntimeError"
	TimeLimitExceeded   TestStatus = "TimeLimitExceeded"
	MemoryLimitExceeded TestStatus = "MemoryLimitExceeded"
	CompilationError    TestStatus = "CompilationError"
)

// AllStatuses lists every status in state machine order.
var AllStatuses = []TestStatus{
	Pending,
	Running,
	Accepted,
	WrongAnswer,
	RuntimeError,
	TimeLimitExceeded,
	MemoryLimitExceeded,
	CompilationError,
}

// IsTerminal reports whether a run ends in this status.
func (s TestStatus) IsTerminal() bool {
	switch s {
	case Accepted, WrongAnswer, RuntimeError,
		TimeLimitExceeded, MemoryLimitExceeded, CompilationError:
		return true
	}
	return false
}

func (s TestStatus) Text() string {
	switch s {
	case Pending:
		return "Pending"
	case Running:
		return "Running"
	case Accepted:
		return "Accepted"
	case WrongAnswer:
		return "Wrong Answer"
	case RuntimeError:
		return "Runtime Error"
	case TimeLimitExceeded:
		return "Time Limit Exceeded"
	case MemoryLimitExceeded:
		return "Memory Limit Exceeded"
	case CompilationError:
		return "Compilation Error"
	}
	return string(s)
}

// Short returns the two or three letter verdict code used by online judges.
func (s TestStatus) Short() string {
	switch s {
	case Pending:
		return "..."
	case Running:
		return "RUN"
	case Accepted:
		return "AC"
	case WrongAnswer:
		return "WA"
	case RuntimeError:
		return "RE"
	case TimeLimitExceeded:
		return "TLE"
	case MemoryLimitExceeded:
		return "MLE"
	case CompilationError:
		return "CE"
	}
	return "?"
}

// ParseStatus accepts both the identifier ("WrongAnswer") and the short code ("WA").
func ParseStatus(s string) (TestStatus, bool) {
	for _, st := range AllStatuses {
		if string(st) == s || st.Short() == s {
			return st, true
		}
	}
	return "", false
}
