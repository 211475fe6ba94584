package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cellang/interpreter-go/pkg/ast"
)

// Module is one decoded package program.
type Module struct {
	Package     string
	AST         *ast.Module
	Files       []string
	Manifest    *Manifest
	NodeOrigins map[ast.Node]string
}

// Program holds the entry package and every dependency, dependencies first.
type Program struct {
	Entry         *Module
	Modules       []*Module
	EntryFunction string
}

// Definitions flattens the modules in execution order.
func (p *Program) Definitions() []*ast.Definition {
	var out []*ast.Definition
	for _, mod := range p.Modules {
		if mod == nil || mod.AST == nil {
			continue
		}
		out = append(out, mod.AST.Definitions...)
	}
	return out
}

// NodeOrigins merges the per-module origin tables.
func (p *Program) NodeOrigins() map[ast.Node]string {
	out := make(map[ast.Node]string)
	for _, mod := range p.Modules {
		for node, path := range mod.NodeOrigins {
			out[node] = path
		}
	}
	return out
}

// Loader resolves a package and its dependencies into a Program.
type Loader struct {
	fetcher Fetcher
}

// NewLoader constructs a loader. A nil fetcher rejects git dependencies.
func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Load accepts a package directory, a package.yml, or a bare program file.
// A program file with no manifest next to it runs standalone with the
// default entry function.
func (l *Loader) Load(target string) (*Program, error) {
	if target == "" {
		return nil, fmt.Errorf("loader: empty entry path")
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve entry path: %w", err)
	}
	info, err := os.Stat(absTarget)
	if err != nil {
		return nil, fmt.Errorf("loader: stat entry %s: %w", absTarget, err)
	}

	manifestPath := ""
	switch {
	case info.IsDir():
		manifestPath = filepath.Join(absTarget, ManifestFileName)
	case filepath.Base(absTarget) == ManifestFileName:
		manifestPath = absTarget
	default:
		sibling := filepath.Join(filepath.Dir(absTarget), ManifestFileName)
		if _, err := os.Stat(sibling); err == nil {
			manifest, err := LoadManifest(sibling)
			if err != nil {
				return nil, err
			}
			if manifest.ProgramPath() == absTarget {
				manifestPath = sibling
			}
		}
		if manifestPath == "" {
			return loadStandalone(absTarget)
		}
	}

	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	state := &loadState{
		loader:     l,
		loaded:     make(map[string]*Module),
		inProgress: make(map[string]bool),
	}
	entry, err := state.loadPackage(manifest, nil)
	if err != nil {
		return nil, err
	}
	return &Program{Entry: entry, Modules: state.ordered, EntryFunction: manifest.Entry}, nil
}

func loadStandalone(path string) (*Program, error) {
	mod, err := decodeModule(path, "")
	if err != nil {
		return nil, err
	}
	return &Program{Entry: mod, Modules: []*Module{mod}, EntryFunction: defaultEntry}, nil
}

type loadState struct {
	loader     *Loader
	loaded     map[string]*Module
	inProgress map[string]bool
	ordered    []*Module
}

// loadPackage loads dependencies depth-first in sorted name order, then the
// package itself, so every module follows the modules it depends on.
func (s *loadState) loadPackage(manifest *Manifest, chain []string) (*Module, error) {
	key := manifest.Path
	if mod, ok := s.loaded[key]; ok {
		return mod, nil
	}
	chain = append(chain, manifest.Name)
	if s.inProgress[key] {
		return nil, fmt.Errorf("loader: dependency cycle detected: %s", strings.Join(chain, " -> "))
	}
	s.inProgress[key] = true
	defer delete(s.inProgress, key)

	for _, name := range manifest.DependencyNames() {
		spec := manifest.Dependencies[name]
		dir, err := s.loader.resolveDependency(manifest, name, spec)
		if err != nil {
			return nil, err
		}
		depManifest, err := LoadManifest(filepath.Join(dir, ManifestFileName))
		if err != nil {
			return nil, fmt.Errorf("loader: dependency %q of %s: %w", name, manifest.Name, err)
		}
		if depManifest.Name != name {
			return nil, fmt.Errorf("loader: dependency %q of %s resolves to package %q", name, manifest.Name, depManifest.Name)
		}
		if _, err := s.loadPackage(depManifest, chain); err != nil {
			return nil, err
		}
	}

	mod, err := decodeModule(manifest.ProgramPath(), manifest.Name)
	if err != nil {
		return nil, err
	}
	mod.Manifest = manifest
	s.loaded[key] = mod
	s.ordered = append(s.ordered, mod)
	return mod, nil
}

func (l *Loader) resolveDependency(manifest *Manifest, name string, spec *DependencySpec) (string, error) {
	if spec == nil {
		return "", fmt.Errorf("loader: dependency %q of %s has no source", name, manifest.Name)
	}
	if spec.Path != "" {
		dir := filepath.FromSlash(spec.Path)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(manifest.Root(), dir)
		}
		return filepath.Clean(dir), nil
	}
	if l.fetcher == nil {
		return "", fmt.Errorf("loader: dependency %q of %s needs git but no fetcher is configured", name, manifest.Name)
	}
	dir, err := l.fetcher.Fetch(name, spec)
	if err != nil {
		return "", fmt.Errorf("loader: %w", err)
	}
	return dir, nil
}

func decodeModule(path, pkg string) (*Module, error) {
	mod, err := LoadProgramFile(path)
	if err != nil {
		var diagErr *ProgramDiagnosticError
		if errors.As(err, &diagErr) {
			return nil, err
		}
		return nil, fmt.Errorf("loader: %w", err)
	}
	if pkg == "" {
		pkg = mod.Name
	}
	return &Module{
		Package:     pkg,
		AST:         mod,
		Files:       []string{path},
		NodeOrigins: ast.AnnotateOrigins(mod, path, nil),
	}, nil
}
