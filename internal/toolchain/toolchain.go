// Package toolchain describes how to compile and run a source file. Every
// supported language is a Toolchain value; nothing else branches on the
// language.
package toolchain

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var ErrToolchainNotFound = errors.New("toolchain not found")

// Placeholders expanded in CompileArgs and RunCmd.
const (
	PhCompiler = "{compiler}"
	PhSource   = "{source}"
	PhArtifact = "{artifact}"
	PhDir      = "{dir}"
)

type Toolchain struct {
	Name       string   `toml:"name"`
	Extensions []string `toml:"extensions"`
	// Compilers are tried in order, the first one found on PATH wins.
	Compilers []string `toml:"compilers"`
	// CompileArgs empty means the source is run directly by the compiler
	// binary (an interpreter).
	CompileArgs  []string `toml:"compile_args"`
	ArtifactName string   `toml:"artifact_name"`
	RunCmd       []string `toml:"run_cmd"`
}

func (t Toolchain) Interpreted() bool {
	return len(t.CompileArgs) == 0
}

func (t Toolchain) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("toolchain name is empty")
	}
	if len(t.Compilers) == 0 {
		return fmt.Errorf("toolchain %s lists no compilers", t.Name)
	}
	if len(t.RunCmd) == 0 {
		return fmt.Errorf("toolchain %s has no run command", t.Name)
	}
	if !t.Interpreted() && t.ArtifactName == "" {
		return fmt.Errorf("toolchain %s compiles but names no artifact", t.Name)
	}
	return nil
}

// Resolve returns the absolute path of the first available compiler.
func (t Toolchain) Resolve() (string, error) {
	for _, c := range t.Compilers {
		if p, err := exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s (tried %s)", ErrToolchainNotFound,
		t.Name, strings.Join(t.Compilers, ", "))
}

// Vars holds the values substituted into command templates.
type Vars struct {
	Compiler string
	Source   string
	Artifact string
	Dir      string
}

func Expand(tmpl []string, v Vars) []string {
	r := strings.NewReplacer(
		PhCompiler, v.Compiler,
		PhSource, v.Source,
		PhArtifact, v.Artifact,
		PhDir, v.Dir,
	)
	out := make([]string, len(tmpl))
	for i, arg := range tmpl {
		out[i] = r.Replace(arg)
	}
	return out
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
