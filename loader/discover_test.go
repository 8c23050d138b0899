package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"feed.go":            "package feed\n",
		"feed_test.go":       "package feed\n",
		"store/store.go":     "package store\n",
		"store/sql/sql.go":   "package sql\n",
		"tests/only_test.go": "package tests\n",
		".hidden/h.go":       "package hidden\n",
		"_work/w.go":         "package work\n",
		"testdata/td.go":     "package td\n",
		"vendor/x/x.go":      "package x\n",
		"docs/README.md":     "docs\n",
	})

	names := func(dirs []Dir) []string {
		var res []string
		for _, d := range dirs {
			rel, err := filepath.Rel(root, d.Path)
			if err != nil {
				t.Fatal(err)
			}
			res = append(res, rel+":"+d.Name)
		}
		return res
	}

	dirs, err := Discover(root, false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{".:feed"}, names(dirs)); diff != "" {
		t.Errorf("non recursive mismatch (-want +got):\n%s", diff)
	}

	dirs, err = Discover(root, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{".:feed", "store:store", "store/sql:sql"}
	if diff := cmp.Diff(want, names(dirs)); diff != "" {
		t.Errorf("recursive mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "nope"), true); err == nil {
		t.Error("Discover of a missing directory succeeded")
	}
}
