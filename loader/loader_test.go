package loader

import (
	"os/exec"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"go.mod": "module example.com/feed\n\ngo 1.22\n",
		"feed.go": `package feed

import (
	"database/sql"
	str "strings"
)

//getters:generate
type NewsFeed struct {
	name string
	cat  sql.NullString
}

func (f *NewsFeed) Title() string { return str.ToUpper(f.name) }
`,
		"feed_test.go": "package feed\n",
		// Calls an accessor which is not generated yet.
		"use.go": "package feed\n\nfunc use(f *NewsFeed) string { return f.Name() }\n",
	})

	ld := New(nil)
	pkg, err := ld.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if pkg.Path != "example.com/feed" || pkg.Name != "feed" {
		t.Errorf("path, name = %q, %q", pkg.Path, pkg.Name)
	}
	var files []string
	for _, f := range pkg.Syntax {
		files = append(files, filepath.Base(pkg.FileOf(f)))
	}
	sort.Strings(files)
	if diff := cmp.Diff([]string{"feed.go", "use.go"}, files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	if got := pkg.ImportName("database/sql"); got != "sql" {
		t.Errorf("ImportName(database/sql) = %q", got)
	}
	if got := pkg.ImportName("strings"); got != "strings" {
		t.Errorf("ImportName(strings) = %q", got)
	}

	again, err := ld.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if again != pkg {
		t.Error("second Load did not hit the cache")
	}
}
