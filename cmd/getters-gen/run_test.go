package main

import (
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/go-getters/diag"
	"github.com/signadot/go-getters/loader"
)

func setupModule(t *testing.T, files map[string]string) loader.Dir {
	t.Helper()
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}
	root := t.TempDir()
	files["go.mod"] = "module example.com/feed\n\ngo 1.22\n"
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	dirs, err := loader.Discover(root, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 1 {
		t.Fatalf("discovered %d packages, want 1", len(dirs))
	}
	return dirs[0]
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const feedSrc = `package feed

import "database/sql"

//getters:generate
type NewsFeed struct {
	name string
	url  string
	//getter:name=category
	cat sql.NullString
}

type Plain struct {
	n int
}
`

func TestProcessPackage(t *testing.T) {
	dir := setupModule(t, map[string]string{"feed.go": feedSrc})
	cfg := &Config{}

	res, err := cfg.processPackage(loader.New(discard()), nil, dir, discard())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.diags)
	}
	out := filepath.Join(dir.Path, "feed_getters.go")
	if res.written != out {
		t.Fatalf("written = %q, want %q", res.written, out)
	}
	src, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"func (n *NewsFeed) Name() string",
		"func (n *NewsFeed) URL() string",
		"func (n *NewsFeed) Category() (string, bool)",
	} {
		if !strings.Contains(string(src), want) {
			t.Errorf("generated file lacks %q:\n%s", want, src)
		}
	}
	if strings.Contains(string(src), "Plain") {
		t.Errorf("unmarked struct got accessors:\n%s", src)
	}

	// A second run, which sees the generated file, is a no-op.
	check := &Config{Check: true}
	res, err = check.processPackage(loader.New(discard()), nil, dir, discard())
	if err != nil {
		t.Fatal(err)
	}
	if res.diff != "" || res.written != "" {
		t.Errorf("second run changed output: diff %q, written %q", res.diff, res.written)
	}
}

func TestProcessPackageCheck(t *testing.T) {
	dir := setupModule(t, map[string]string{
		"feed.go":         feedSrc,
		"feed_getters.go": "// Code generated by getters-gen. DO NOT EDIT.\n\npackage feed\n",
	})
	cfg := &Config{Check: true, Types: "Plain"}
	res, err := cfg.processPackage(loader.New(discard()), nil, dir, discard())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.diff, "+func (p *Plain) N() *int {") {
		t.Errorf("diff lacks the Plain accessor:\n%s", res.diff)
	}
	if res.written != "" {
		t.Errorf("check mode wrote %q", res.written)
	}
	if got := strings.Join(res.found, ","); got != "NewsFeed,Plain" {
		t.Errorf("found = %s", got)
	}
}

func TestProcessPackageErrors(t *testing.T) {
	dir := setupModule(t, map[string]string{"feed.go": `package feed

//getters:generate
type Feed struct {
	//getter:vis=private
	id int ` + "`getter:\"vis=public\"`" + `
	//getter:name="title"
	t string
}

//getters:generate
type Bad struct {
	Feed
}
`})
	cfg := &Config{}
	res, err := cfg.processPackage(loader.New(discard()), nil, dir, discard())
	if err != nil {
		t.Fatal(err)
	}
	var codes []string
	for _, d := range res.diags {
		codes = append(codes, d.Code.String())
	}
	want := strings.Join([]string{
		diag.RedundantArgument.String(),
		diag.DeprecatedNameSyntax.String(),
		diag.Structural.String(),
	}, ",")
	if got := strings.Join(codes, ","); got != want {
		t.Errorf("codes = %s, want %s", got, want)
	}
	if res.written != "" {
		t.Errorf("wrote %q despite errors", res.written)
	}
	if _, err := os.Stat(filepath.Join(dir.Path, "feed_getters.go")); err == nil {
		t.Error("output file exists")
	}
}

func TestProcessPackageConfig(t *testing.T) {
	dir := setupModule(t, map[string]string{
		"feed.go": `package feed

//getters:generate
type Feed struct {
	//getter:name=label
	title Label
}

type Label string
`,
		".getters.yaml": "default_vis: private\nreceiver: self\noutput_suffix: _access.go\ntext_types: [Label]\n",
	})
	cfg := &Config{}
	res, err := cfg.processPackage(loader.New(discard()), nil, dir, discard())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(res.written) != "feed_access.go" {
		t.Fatalf("written = %q", res.written)
	}
	src, err := os.ReadFile(res.written)
	if err != nil {
		t.Fatal(err)
	}
	if want := "func (self *Feed) label() string {\n\treturn string(self.title)\n}"; !strings.Contains(string(src), want) {
		t.Errorf("generated file lacks\n%s\n\n%s", want, src)
	}
}

func TestTypes(t *testing.T) {
	cfg := &Config{Types: " A, ,B,"}
	if got := strings.Join(cfg.types(), "|"); got != "A|B" {
		t.Errorf("types = %q", got)
	}
}

const appFeedSrc = `package main

import (
	"database/sql"
)

//getters:generate
type NewsFeed struct {
	name string
	url  string
	//getter:name=category
	cat  sql.NullString
	when sql.NullTime
	hits sql.Null[int]
	ref  *int
}

//getters:generate
type Box[T any, K comparable] struct {
	items []T
	keys  map[K]T
	first T
}
`

const appScheduleSrc = `package main

import . "time"

//getters:generate
type Schedule struct {
	every Duration
	days  map[Weekday]bool
}
`

const appMainSrc = `package main

import (
	"database/sql"
	"fmt"
	"time"
)

func main() {
	ref := 7
	f := &NewsFeed{
		name: "NewPipe Blog",
		url:  "https://newpipe.net/blog",
		cat:  sql.NullString{String: "OSS", Valid: true},
		when: sql.NullTime{Time: time.Unix(0, 0), Valid: true},
		hits: sql.Null[int]{V: 3, Valid: true},
		ref:  &ref,
	}
	var empty NewsFeed

	cat, ok := f.Category()
	fmt.Println(f.Name(), f.URL(), cat, ok)
	cat, ok = empty.Category()
	fmt.Printf("%q %v\n", cat, ok)
	fmt.Println(f.When() != nil, empty.When() == nil, *f.Hits(), empty.Hits() == nil, *f.Ref(), empty.Ref() == nil)
	*f.Hits() = 4
	fmt.Println(f.hits.V, f.hits.Valid)

	b := &Box[string, int]{items: []string{"a"}, keys: map[int]string{1: "b"}, first: "c"}
	fmt.Println(b.Items(), b.Keys()[1], *b.First())

	s := &Schedule{every: 2 * time.Minute, days: map[time.Weekday]bool{time.Monday: true}}
	fmt.Println(*s.Every(), s.Days()[time.Monday])
}
`

func TestGeneratedAccessorsRun(t *testing.T) {
	dir := setupModule(t, map[string]string{
		"feed.go":     appFeedSrc,
		"schedule.go": appScheduleSrc,
		"main.go":     appMainSrc,
	})
	cfg := &Config{}
	res, err := cfg.processPackage(loader.New(discard()), nil, dir, discard())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.diags)
	}
	if filepath.Base(res.written) != "main_getters.go" {
		t.Fatalf("written = %q", res.written)
	}

	cmd := exec.Command("go", "run", ".")
	cmd.Dir = dir.Path
	out, err := cmd.CombinedOutput()
	if err != nil {
		src, _ := os.ReadFile(res.written)
		t.Fatalf("go run: %v\n%s\ngenerated:\n%s", err, out, src)
	}
	want := []string{
		"NewPipe Blog https://newpipe.net/blog OSS true",
		`"" false`,
		"true true 3 true 7 true",
		"4 true",
		"[a] b c",
		"2m0s true",
	}
	got := strings.Split(strings.TrimSpace(string(out)), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}
