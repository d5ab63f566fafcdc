package toolchain

import (
	"errors"
	"fmt"
	"os"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pelletier/go-toml/v2"
)

var ErrUnknownLanguage = errors.New("no toolchain handles this file extension")

// Defaults returns the built-in toolchains in detection order.
func Defaults() []Toolchain {
	return []Toolchain{
		{
			Name:         "cpp",
			Extensions:   []string{".cpp", ".cc", ".cxx"},
			Compilers:    []string{"g++", "clang++"},
			CompileArgs:  []string{PhSource, "-o", PhArtifact, "-O2", "-std=c++20", "-Wall"},
			ArtifactName: executableName("a"),
			RunCmd:       []string{PhArtifact},
		},
		{
			Name:         "c",
			Extensions:   []string{".c"},
			Compilers:    []string{"gcc", "clang"},
			CompileArgs:  []string{PhSource, "-o", PhArtifact, "-O2", "-std=c17", "-Wall", "-lm"},
			ArtifactName: executableName("a"),
			RunCmd:       []string{PhArtifact},
		},
		{
			Name:         "rust",
			Extensions:   []string{".rs"},
			Compilers:    []string{"rustc"},
			CompileArgs:  []string{"-O", "--edition", "2021", "-o", PhArtifact, PhSource},
			ArtifactName: executableName("a"),
			RunCmd:       []string{PhArtifact},
		},
		{
			Name:         "go",
			Extensions:   []string{".go"},
			Compilers:    []string{"go"},
			CompileArgs:  []string{"build", "-o", PhArtifact, PhSource},
			ArtifactName: executableName("a"),
			RunCmd:       []string{PhArtifact},
		},
		{
			Name:       "python",
			Extensions: []string{".py"},
			Compilers:  []string{"python3", "python"},
			RunCmd:     []string{PhCompiler, PhSource},
		},
	}
}

type Registry struct {
	order  []string
	byName map[string]Toolchain
	byExt  map[string]string
}

func NewRegistry(tcs ...Toolchain) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Toolchain),
		byExt:  make(map[string]string),
	}
	for _, tc := range tcs {
		if err := r.Register(tc); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func DefaultRegistry() *Registry {
	r, err := NewRegistry(Defaults()...)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in toolchains: %v", err))
	}
	return r
}

// Register adds tc or replaces the toolchain with the same name. Extensions
// move to the newly registered toolchain.
func (r *Registry) Register(tc Toolchain) error {
	if err := tc.Validate(); err != nil {
		return err
	}
	exts := make([]string, len(tc.Extensions))
	for i, ext := range tc.Extensions {
		exts[i] = normalizeExt(ext)
	}
	tc.Extensions = exts
	if old, ok := r.byName[tc.Name]; ok {
		for _, ext := range old.Extensions {
			if r.byExt[ext] == tc.Name {
				delete(r.byExt, ext)
			}
		}
	} else {
		r.order = append(r.order, tc.Name)
	}
	r.byName[tc.Name] = tc
	for _, ext := range tc.Extensions {
		r.byExt[ext] = tc.Name
	}
	return nil
}

func (r *Registry) Get(name string) (Toolchain, bool) {
	tc, ok := r.byName[name]
	return tc, ok
}

// Detect picks the toolchain for a source file by its extension.
func (r *Registry) Detect(source string) (Toolchain, error) {
	ext := extOf(source)
	name, ok := r.byExt[ext]
	if !ok {
		return Toolchain{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, ext)
	}
	return r.byName[name], nil
}

func (r *Registry) All() []Toolchain {
	res := make([]Toolchain, 0, len(r.order))
	for _, name := range r.order {
		res = append(res, r.byName[name])
	}
	return res
}

func (r *Registry) Extensions() mapset.Set[string] {
	exts := mapset.NewSet[string]()
	for ext := range r.byExt {
		exts.Add(ext)
	}
	return exts
}

type toolchainFile struct {
	Toolchains []Toolchain `toml:"toolchains"`
}

// LoadFile merges the [[toolchains]] of a TOML file into the registry.
// Entries with a known name override it.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read toolchain file: %w", err)
	}
	var f toolchainFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse toolchain file %s: %w", path, err)
	}

	seen := mapset.NewSet[string]()
	for _, tc := range f.Toolchains {
		for i, ext := range tc.Extensions {
			tc.Extensions[i] = normalizeExt(ext)
		}
		for _, ext := range tc.Extensions {
			if !seen.Add(ext) {
				return fmt.Errorf("extension %s claimed twice in %s", ext, path)
			}
		}
		if base, ok := r.byName[tc.Name]; ok {
			tc = overlay(base, tc)
		}
		if err := r.Register(tc); err != nil {
			return fmt.Errorf("invalid toolchain in %s: %w", path, err)
		}
	}
	return nil
}

// overlay fills the fields left empty in o from base.
func overlay(base, o Toolchain) Toolchain {
	if len(o.Extensions) == 0 {
		o.Extensions = slices.Clone(base.Extensions)
	}
	if len(o.Compilers) == 0 {
		o.Compilers = slices.Clone(base.Compilers)
	}
	if len(o.CompileArgs) == 0 {
		o.CompileArgs = slices.Clone(base.CompileArgs)
	}
	if o.ArtifactName == "" {
		o.ArtifactName = base.ArtifactName
	}
	if len(o.RunCmd) == 0 {
		o.RunCmd = slices.Clone(base.RunCmd)
	}
	return o
}
