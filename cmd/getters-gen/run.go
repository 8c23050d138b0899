package main

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"go/ast"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/scott-cotton/cli"
	"golang.org/x/sync/errgroup"

	"github.com/signadot/go-getters/accessor"
	"github.com/signadot/go-getters/config"
	"github.com/signadot/go-getters/diag"
	"github.com/signadot/go-getters/emit"
	"github.com/signadot/go-getters/loader"
	"github.com/signadot/go-getters/record"
)

const defaultJobs = 4

// pkgResult is what processing one package produced. Results are
// reported in discovery order once all packages are done.
type pkgResult struct {
	path    string
	diags   diag.List
	found   []string
	diff    string
	written string
}

func (cfg *Config) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: unexpected arguments %v", cli.ErrUsage, args)
	}
	log := newLogger(os.Stderr, cfg.Verbose)

	dir := cfg.Dir
	if dir == "" {
		dir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
	}
	var conf *config.Config
	if cfg.ConfigFile != "" {
		conf, err = config.Load(cfg.ConfigFile)
		if err != nil {
			return err
		}
	}

	dirs, err := loader.Discover(dir, cfg.Recursive)
	if err != nil {
		return fmt.Errorf("failed to discover packages: %w", err)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no Go packages found in %q", dir)
	}

	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = defaultJobs
	}
	ld := loader.New(log)
	results := make([]*pkgResult, len(dirs))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, d := range dirs {
		g.Go(func() error {
			res, err := cfg.processPackage(ld, conf, d, log)
			if err != nil {
				return fmt.Errorf("failed to process package %q: %w", d.ImportPath, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	printer := diag.NewPrinter(os.Stderr, cfg.Color)
	failed := false
	found := map[string]bool{}
	for _, res := range results {
		if err := printer.Print(res.diags); err != nil {
			return err
		}
		if res.diags.HasErrors() || (cfg.Strict && len(res.diags.Warnings()) > 0) {
			failed = true
		}
		for _, name := range res.found {
			found[name] = true
		}
		if res.diff != "" {
			fmt.Fprint(cc.Out, res.diff)
			failed = true
		}
		if res.written != "" {
			log.Info("wrote accessors", "package", res.path, "file", res.written)
		}
	}
	for _, name := range cfg.types() {
		if !found[name] {
			fmt.Fprintf(os.Stderr, "type %s not found\n", name)
			failed = true
		}
	}
	if failed {
		return cli.ExitCodeErr(1)
	}
	return nil
}

func (cfg *Config) processPackage(ld *loader.Loader, conf *config.Config, dir loader.Dir, log *slog.Logger) (*pkgResult, error) {
	if conf == nil {
		conf = config.Default()
		if path := config.Find(dir.Path); path != "" {
			var err error
			if conf, err = config.Load(path); err != nil {
				return nil, err
			}
		}
	}
	pkg, err := ld.Load(dir.Path)
	if err != nil {
		return nil, err
	}
	classifier, err := conf.Classifier(pkg.Path)
	if err != nil {
		return nil, err
	}

	outPath := cfg.OutputFile
	if outPath == "" {
		outPath = pkg.Name + conf.OutputSuffix
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(pkg.Dir, outPath)
	}
	inPackage := filepath.Dir(outPath) == filepath.Clean(pkg.Dir)
	isOutput := func(name string) bool {
		if inPackage {
			return filepath.Base(name) == filepath.Base(outPath)
		}
		return filepath.Clean(name) == outPath
	}

	res := &pkgResult{path: pkg.Path}
	methods := record.Methods(pkg.Fset, pkg.Syntax, isOutput)
	opts := record.Options{
		Types:       cfg.types(),
		PackageName: pkg.ImportName,
		Declared:    record.Declarations(pkg.Fset, pkg.Syntax, isOutput),
	}
	genOpts := []accessor.Option{
		accessor.WithClassifier(classifier),
		accessor.WithDefaultVisibility(conf.Visibility()),
		accessor.WithReceiver(conf.Receiver),
		accessor.WithLogger(log),
	}

	var outs []*accessor.Outcome
	for _, file := range pkg.Syntax {
		name := pkg.FileOf(file)
		if isOutput(name) || ast.IsGenerated(file) {
			continue
		}
		for _, rec := range record.Extract(pkg.Fset, file, name, opts) {
			res.found = append(res.found, rec.Name)
			rec.Methods = methods[rec.Name]
			out, err := accessor.Generate(rec, genOpts...)
			var (
				structural *accessor.StructuralError
				diags      diag.List
			)
			switch {
			case errors.As(err, &structural):
				res.diags.Add(structural.Diagnostic())
			case errors.As(err, &diags):
				res.diags = append(res.diags, diags...)
			case err != nil:
				return nil, err
			default:
				res.diags = append(res.diags, out.Warnings...)
				outs = append(outs, out)
				log.Debug("generated", "package", pkg.Path, "outcome", out)
			}
		}
	}
	res.diags.Sort()
	if res.diags.HasErrors() || len(outs) == 0 {
		return res, nil
	}
	slices.SortStableFunc(outs, func(a, b *accessor.Outcome) int {
		return cmp.Or(
			cmp.Compare(a.Record.FilePath, b.Record.FilePath),
			cmp.Compare(a.Record.Pos, b.Record.Pos))
	})

	src, err := emit.Render(pkg.Name, outs, emit.Options{})
	if err != nil {
		return nil, err
	}
	old, err := os.ReadFile(outPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %q: %w", outPath, err)
	}
	if bytes.Equal(old, src) {
		log.Debug("up to date", "file", outPath)
		return res, nil
	}
	if cfg.Check {
		name := outPath
		if rel, err := filepath.Rel(pkg.Dir, outPath); err == nil {
			name = filepath.Join(filepath.Base(pkg.Dir), rel)
		}
		res.diff = emit.Diff(name, old, src)
		return res, nil
	}
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %q: %w", outPath, err)
	}
	res.written = outPath
	return res, nil
}
