// Package emit renders accessor plans into a Go source file.
//
// Rendering is done with jennifer, which takes care of the imports and
// of gofmt formatting of the result.
package emit

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/signadot/go-getters/accessor"
	"github.com/signadot/go-getters/classify"
)

// DefaultCommand names the generator in the header of generated files.
const DefaultCommand = "getters-gen"

type Options struct {
	// Command names the generator in the DO NOT EDIT header.
	Command string
}

// Render returns the source of a file of package pkg holding the
// accessors of outs, in order.
func Render(pkg string, outs []*accessor.Outcome, opts Options) ([]byte, error) {
	if opts.Command == "" {
		opts.Command = DefaultCommand
	}
	f := jen.NewFile(pkg)
	f.HeaderComment(fmt.Sprintf("Code generated by %s. DO NOT EDIT.", opts.Command))
	importNames(f, outs)
	for _, out := range outs {
		renderOutcome(f, out)
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render package %s: %w", pkg, err)
	}
	return buf.Bytes(), nil
}

// importNames tells jennifer the package names the records' files use,
// so qualifiers match the hand written code where possible. Dot imports
// have no name to reuse and are named by jennifer.
func importNames(f *jen.File, outs []*accessor.Outcome) {
	names := map[string]string{}
	for _, out := range outs {
		for name, path := range out.Record.Imports {
			if strings.HasPrefix(name, ".") {
				continue
			}
			if _, ok := names[path]; !ok {
				names[path] = name
			}
		}
	}
	paths := make([]string, 0, len(names))
	for path := range names {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		f.ImportName(path, names[path])
	}
}

func renderOutcome(f *jen.File, out *accessor.Outcome) {
	rec := out.Record
	recvType := jen.Id(rec.Name)
	if names := rec.TypeParamNames(); len(names) > 0 {
		params := make([]jen.Code, 0, len(names))
		for _, n := range names {
			params = append(params, jen.Id(n))
		}
		recvType = recvType.Types(params...)
	}
	for _, p := range out.Plans {
		c := newConverter(rec.Imports, p.Result.Imports)
		f.Comment(docComment(out.Receiver, p))
		fn := f.Func().
			Params(jen.Id(out.Receiver).Op("*").Add(recvType.Clone())).
			Id(p.Name).
			Params()
		returns := c.exprs(p.Result.Returns)
		if len(returns) == 1 {
			fn.Add(returns[0])
		} else {
			fn.Params(returns...)
		}
		fn.Block(c.stmts(p.Body(out.Receiver))...)
		f.Line()
	}
}

func docComment(recv string, p *accessor.Plan) string {
	switch p.Result.Kind {
	case classify.KindOptionalText:
		return fmt.Sprintf("%s returns %s.%s and whether it is set.", p.Name, recv, p.Field)
	case classify.KindOptional:
		return fmt.Sprintf("%s returns a pointer to the value of %s.%s, nil when it is not set.", p.Name, recv, p.Field)
	case classify.KindFallback:
		return fmt.Sprintf("%s returns a pointer to %s.%s.", p.Name, recv, p.Field)
	}
	return fmt.Sprintf("%s returns %s.%s.", p.Name, recv, p.Field)
}
