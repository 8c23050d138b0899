// Package loader finds and parses the Go packages accessors are
// generated for.
package loader

import (
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/tools/go/packages"
)

// Package is a parsed Go package.
type Package struct {
	// Path is the import path.
	Path string
	Dir  string
	Name string

	// Files are the absolute paths of the non test Go files, Syntax
	// their syntax trees.
	Files  []string
	Syntax []*ast.File
	Fset   *token.FileSet

	importNames map[string]string
}

// ImportName returns the package name of an import path of the package,
// or "" when it is unknown.
func (p *Package) ImportName(path string) string {
	return p.importNames[path]
}

// Loader loads and caches packages by directory. Concurrent loads of
// the same directory share one call to go/packages.
type Loader struct {
	cache map[string]*Package
	mu    sync.RWMutex
	group singleflight.Group
	log   *slog.Logger
}

func New(log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{
		cache: make(map[string]*Package),
		log:   log,
	}
}

// Load loads the package in dir.
func (l *Loader) Load(dir string) (*Package, error) {
	l.mu.RLock()
	if pkg, ok := l.cache[dir]; ok {
		l.mu.RUnlock()
		return pkg, nil
	}
	l.mu.RUnlock()

	v, err, _ := l.group.Do(dir, func() (any, error) {
		pkg, err := l.load(dir)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[dir] = pkg
		l.mu.Unlock()
		return pkg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Package), nil
}

func (l *Loader) load(dir string) (*Package, error) {
	// Types are not needed: records are read from syntax, and a package
	// calling accessors which are not generated yet does not type check.
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedSyntax,
		Dir:  dir,
		Fset: token.NewFileSet(),
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load package in %q: %w", dir, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no package found in %q", dir)
	}
	p := pkgs[0]
	for _, e := range p.Errors {
		if e.Kind == packages.ParseError {
			return nil, fmt.Errorf("failed to parse package %q: %w", p.PkgPath, e)
		}
		l.log.Debug("package load error", "package", p.PkgPath, "error", e)
	}

	pkg := &Package{
		Path:        p.PkgPath,
		Dir:         dir,
		Name:        p.Name,
		Files:       p.GoFiles,
		Syntax:      p.Syntax,
		Fset:        cfg.Fset,
		importNames: make(map[string]string, len(p.Imports)),
	}
	if err := l.loadImportNames(pkg, p.Imports); err != nil {
		return nil, err
	}
	l.log.Debug("loaded package", "package", pkg.Path, "files", len(pkg.Files))
	return pkg, nil
}

// loadImportNames records the package names of the imports of pkg.
// Without NeedDeps the imported packages only carry their ID, so their
// names are listed in a second, name only, query.
func (l *Loader) loadImportNames(pkg *Package, imports map[string]*packages.Package) error {
	paths := make([]string, 0, len(imports))
	for path, imp := range imports {
		if imp.Name != "" {
			pkg.importNames[path] = imp.Name
			continue
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil
	}
	slices.Sort(paths)
	cfg := &packages.Config{Mode: packages.NeedName, Dir: pkg.Dir}
	deps, err := packages.Load(cfg, paths...)
	if err != nil {
		return fmt.Errorf("failed to list imports of %q: %w", pkg.Path, err)
	}
	for _, dep := range deps {
		if dep.Name != "" {
			pkg.importNames[dep.PkgPath] = dep.Name
		}
	}
	return nil
}

// FileOf returns the path of the file f was parsed from.
func (p *Package) FileOf(f *ast.File) string {
	return p.Fset.Position(f.Pos()).Filename
}
