// Package behave runs judging scenarios described in TOML files.
package behave

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/cpkit/api"
	"github.com/programme-lv/cpkit/internal/models"
	"github.com/programme-lv/cpkit/internal/toolchain"
)

// SpecTest is a single test case in the behaviour file
type SpecTest struct {
	In  string `toml:"in"`
	Ans string `toml:"ans"`
}

// SpecLimits describes limits for a scenario request
type SpecLimits struct {
	TimeMs int64  `toml:"time_ms"`
	MemKiB uint64 `toml:"mem_kib"`
}

// SpecRequest represents a request block inside a scenario entry
type SpecRequest struct {
	Toolchain string     `toml:"toolchain"`
	Code      string     `toml:"code"`
	Tests     []SpecTest `toml:"tests"`
	Limits    SpecLimits `toml:"limits"`
}

// SpecTestVerdict represents an expected verdict for a test result
type SpecTestVerdict struct {
	Verdict string `toml:"verdict"`
}

// SpecExpect describes expected overall status and per-test verdicts
type SpecExpect struct {
	Status      string            `toml:"status"`
	TestResults []SpecTestVerdict `toml:"test_results"`
}

// specSuite maps to [[scenarios]] entries. The request is written as an
// array of tables, only the first element is used.
type specSuite struct {
	Description string        `toml:"description"`
	RequestAOT  []SpecRequest `toml:"request"`
	Expect      SpecExpect    `toml:"expect"`
}

type specRoot struct {
	Suites []specSuite `toml:"scenarios"`
	// Optional toolchains available to the scenarios by name, in the
	// toolchain file format.
	Toolchains []toolchain.Toolchain `toml:"toolchains"`
}

// Case is a runnable scenario converted from TOML
type Case struct {
	Name      string
	Toolchain string
	Code      string
	TimeLimit time.Duration
	MemKiB    uint64
	Tests     []models.TestCase
	Expect    SpecExpect
}

// Suite is everything one behaviour file defines.
type Suite struct {
	Cases      []Case
	Toolchains []toolchain.Toolchain
}

const defaultTimeLimit = 2 * time.Second

// Parse reads a behaviour TOML file and converts it to runnable cases
func Parse(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read behaviour file: %w", err)
	}
	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	for _, tc := range root.Toolchains {
		if err := tc.Validate(); err != nil {
			return nil, fmt.Errorf("invalid toolchain in %s: %w", path, err)
		}
	}

	suite := &Suite{
		Cases:      make([]Case, 0, len(root.Suites)),
		Toolchains: root.Toolchains,
	}
	for i, s := range root.Suites {
		if len(s.RequestAOT) == 0 {
			return nil, fmt.Errorf("scenario %d (%q) is missing request block", i+1, s.Description)
		}
		req := s.RequestAOT[0]
		if req.Toolchain == "" {
			return nil, fmt.Errorf("scenario %d (%q) names no toolchain", i+1, s.Description)
		}
		switch api.ExecStatus(s.Expect.Status) {
		case "", api.StatusSuccess, api.StatusCompileError:
		default:
			return nil, fmt.Errorf("scenario %d (%q) expects unknown status %q", i+1, s.Description, s.Expect.Status)
		}
		for _, v := range s.Expect.TestResults {
			if _, ok := models.ParseStatus(v.Verdict); !ok {
				return nil, fmt.Errorf("scenario %d (%q) expects unknown verdict %q", i+1, s.Description, v.Verdict)
			}
		}

		tests := make([]models.TestCase, 0, len(req.Tests))
		for _, t := range req.Tests {
			tests = append(tests, models.NewTestCase(t.In, t.Ans))
		}

		limit := defaultTimeLimit
		if req.Limits.TimeMs > 0 {
			limit = time.Duration(req.Limits.TimeMs) * time.Millisecond
		}

		suite.Cases = append(suite.Cases, Case{
			Name:      s.Description,
			Toolchain: req.Toolchain,
			Code:      req.Code,
			TimeLimit: limit,
			MemKiB:    req.Limits.MemKiB,
			Tests:     tests,
			Expect:    s.Expect,
		})
	}
	return suite, nil
}
