package loader

import (
	"fmt"
	"go/build"
	"io/fs"
	"path/filepath"
	"strings"
)

// Dir is a directory holding a buildable Go package.
type Dir struct {
	Path       string
	ImportPath string
	Name       string
}

// Discover returns the package directories under dir. Without recursive
// only dir itself is considered. Hidden directories, vendor and testdata
// are skipped.
func Discover(dir string, recursive bool) ([]Dir, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %q: %w", dir, err)
	}

	var dirs []Dir
	visited := make(map[string]bool)
	err = filepath.WalkDir(absDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != absDir {
			base := d.Name()
			if !recursive || strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") ||
				base == "vendor" || base == "testdata" {
				return filepath.SkipDir
			}
		}

		pkg, err := build.ImportDir(path, 0)
		if err != nil || len(pkg.GoFiles) == 0 {
			return nil
		}
		if visited[path] {
			return nil
		}
		visited[path] = true
		dirs = append(dirs, Dir{Path: path, ImportPath: pkg.ImportPath, Name: pkg.Name})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", dir, err)
	}
	return dirs, nil
}
