package gatherer

import (
	"strings"

	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/models"
)

// TrimToRect cuts s to at most maxHeight lines of maxWidth bytes, marking
// every cut with "[...]".
func TrimToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	cut := len(lines) > maxHeight
	if cut {
		lines = lines[:maxHeight]
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if len(line) > maxWidth {
			b.WriteString(line[:maxWidth])
			b.WriteString("[...]")
		} else {
			b.WriteString(line)
		}
	}
	if cut {
		b.WriteString("\n[...]")
	}
	return b.String()
}

func trim(s string) string {
	return TrimToRect(s, api.MaxRuntimeDataHeight, api.MaxRuntimeDataWidth)
}

func trimPtr(s string) *string {
	t := trim(s)
	if t == "" {
		return nil
	}
	return &t
}

func TrimRuntimeData(data *api.RuntimeData) *api.RuntimeData {
	if data == nil {
		return nil
	}
	res := *data
	res.Stdin = trim(data.Stdin)
	res.Stdout = trim(data.Stdout)
	res.Stderr = trim(data.Stderr)
	return &res
}

func ReachTestMsg(jobID string, idx int, tc models.TestCase) api.ReachTest {
	return api.NewReachTest(jobID, idx, tc.ID.String(), trimPtr(tc.Input), trimPtr(tc.ExpectedOutput))
}

func FinishTestMsg(jobID string, idx int, tc models.TestCase) api.FinishTest {
	msg := api.NewFinishTest(jobID, idx, tc.ID.String())
	msg.Status = string(tc.Status)
	msg.Verdict = tc.Status.Short()
	if tc.ActualOutput != nil {
		out := trim(*tc.ActualOutput)
		msg.Output = &out
	}
	if tc.ErrorMessage != nil {
		msg.ErrorMessage = trimPtr(*tc.ErrorMessage)
	}
	if tc.ExecutionTime != nil {
		ms := tc.ExecutionTime.Milliseconds()
		msg.WallMillis = &ms
	}
	if tc.MemoryUsed != nil {
		kib := int64(*tc.MemoryUsed)
		msg.MemKiBytes = &kib
	}
	return msg
}

func SummaryOf(s models.Statistics) api.Summary {
	return api.Summary{
		Total:               s.Total,
		Passed:              s.Passed,
		WrongAnswer:         s.WrongAnswer,
		RuntimeError:        s.RuntimeError,
		TimeLimitExceeded:   s.TimeLimitExceeded,
		MemoryLimitExceeded: s.MemoryLimitExceeded,
		CompilationError:    s.CompilationError,
		SuccessRate:         s.SuccessRate(),
	}
}
