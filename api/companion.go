package api

// CompanionProblem is the payload the Competitive Companion browser
// extension POSTs for every parsed problem.
type CompanionProblem struct {
	Name        string          `json:"name"`
	Group       string          `json:"group"`
	URL         string          `json:"url"`
	Interactive bool            `json:"interactive"`
	MemoryLimit uint64          `json:"memoryLimit"` // MB
	TimeLimit   uint64          `json:"timeLimit"`   // ms
	Tests       []CompanionTest `json:"tests"`
}

type CompanionTest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}
