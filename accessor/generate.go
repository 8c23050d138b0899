package accessor

import (
	"errors"
	"fmt"
	"go/token"
	"log/slog"
	"slices"
	"strings"

	"github.com/signadot/go-getters/classify"
	"github.com/signadot/go-getters/diag"
	"github.com/signadot/go-getters/directive"
	"github.com/signadot/go-getters/record"
)

// Outcome is the result of a successful generation pass over one record.
type Outcome struct {
	Record *record.Record

	// Receiver is the receiver identifier shared by the accessors.
	Receiver string

	// Plans holds one plan per field, in declaration order.
	Plans []*Plan

	// Warnings are the deprecation warnings of the plans.
	Warnings diag.List
}

// StructuralError reports a record which is not a struct with a flat set
// of named fields. It aborts the pass for that record.
type StructuralError struct {
	Record string
	Shape  record.Shape
	Pos    token.Position
}

func (e *StructuralError) Error() string {
	return e.Diagnostic().Error()
}

// Diagnostic returns e as an error diagnostic.
func (e *StructuralError) Diagnostic() *diag.Diagnostic {
	return diag.Errorf(e.Pos, diag.Structural,
		"cannot generate getters for %s: %s, need a struct with named fields only", e.Record, e.Shape)
}

type generator struct {
	classifier *classify.Classifier
	vis        directive.Visibility
	receiver   string
	log        *slog.Logger
}

// Option configures Generate.
type Option func(*generator)

// WithClassifier sets the type classifier, classify.New() by default.
func WithClassifier(c *classify.Classifier) Option {
	return func(g *generator) { g.classifier = c }
}

// WithDefaultVisibility sets the visibility of accessors whose field has
// no vis directive. The default is directive.Public.
func WithDefaultVisibility(v directive.Visibility) Option {
	return func(g *generator) { g.vis = v }
}

// WithReceiver sets the preferred receiver name.
func WithReceiver(name string) Option {
	return func(g *generator) { g.receiver = name }
}

// WithLogger sets the logger of debug traces, slog.Default() by default.
func WithLogger(l *slog.Logger) Option {
	return func(g *generator) { g.log = l }
}

// Generate runs one generation pass over rec.
//
// A record which is not a flat struct with named fields fails at once
// with a *StructuralError. Otherwise every field is processed in
// declaration order and every field-scoped problem is collected: if any
// is found Generate returns a diag.List holding all of them, along with
// any warnings, and no plans.
func Generate(rec *record.Record, opts ...Option) (*Outcome, error) {
	g := &generator{vis: directive.Public, log: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	if g.classifier == nil {
		g.classifier = classify.New()
	}
	if rec.Shape != record.ShapeOK {
		return nil, &StructuralError{Record: rec.Name, Shape: rec.Shape, Pos: rec.Position(rec.ShapePos)}
	}

	out := &Outcome{
		Record:   rec,
		Receiver: receiverName(g.receiver, rec.Name, rec.Imports, rec.TypeParamNames()),
	}
	var diags diag.List
	for _, f := range rec.Fields {
		d, errs := g.resolve(rec, f)
		if len(errs) > 0 {
			diags = append(diags, errs...)
			continue
		}
		if d.Name != nil && len(f.Group) > 1 {
			// Reported once, on the first name of the list.
			if f.Name == f.Group[0] {
				diags.Add(diag.Errorf(rec.Position(d.Name.Pos), diag.MalformedValue,
					"field %s: %s directive on a field list with several names (%s), declare the fields separately",
					f.Name, directive.KeyName, strings.Join(f.Group, ", ")))
			}
			continue
		}
		typ, unresolved := qualifyType(rec, f.Type)
		if len(unresolved) > 0 {
			slices.Sort(unresolved)
			diags.Add(diag.Errorf(rec.Position(f.Type.Pos()), diag.UnresolvedType,
				"field %s: %s may come from any of several dot imports, qualify the type",
				f.Name, strings.Join(slices.Compact(unresolved), ", ")))
			continue
		}
		res := g.classifier.Classify(typ, rec.Imports)
		p := Synthesize(rec, f, d, res, g.vis)
		if p.Deprecation != nil {
			out.Warnings.Add(p.Deprecation)
			diags.Add(p.Deprecation)
		}
		out.Plans = append(out.Plans, p)
		g.log.Debug("planned accessor", "record", rec.Name, "field", f.Name, "name", p.Name, "kind", res.Kind)
	}
	diags = append(diags, checkNames(rec, out.Plans)...)
	if diags.HasErrors() {
		diags.Sort()
		return nil, diags
	}
	out.Warnings.Sort()
	return out, nil
}

// resolve parses every annotation of f and merges them. Occurrences
// which fail are reported and skipped so that the others are still
// checked.
func (g *generator) resolve(rec *record.Record, f *record.Field) (*directive.Directive, diag.List) {
	var (
		merged = &directive.Directive{}
		errs   diag.List
	)
	for _, a := range f.Annotations {
		d, err := directive.Parse(a.Text, a.Pos)
		if err != nil {
			errs.Add(directiveDiag(rec, f, err))
			continue
		}
		m, err := directive.Merge(merged, d)
		if err != nil {
			errs.Add(directiveDiag(rec, f, err))
			continue
		}
		merged = m
	}
	return merged, errs
}

func directiveDiag(rec *record.Record, f *record.Field, err error) *diag.Diagnostic {
	var de *directive.Error
	if !errors.As(err, &de) {
		return diag.Errorf(rec.Position(f.Pos), diag.MalformedValue, "field %s: %v", f.Name, err)
	}
	code := diag.MalformedValue
	switch de.Kind {
	case directive.UnknownKey:
		code = diag.UnknownKey
	case directive.Redundant:
		code = diag.RedundantArgument
	}
	d := diag.Errorf(rec.Position(de.Pos), code, "field %s: %s", f.Name, de.Msg)
	if de.Kind == directive.Redundant {
		d.WithNote(rec.Position(de.Prev), "%s first set here", de.Key)
	}
	return d
}

// checkNames reports accessor names Go would reject: names which do not
// have the requested visibility, and names clashing with a field, an
// existing method or another accessor of the record.
func checkNames(rec *record.Record, plans []*Plan) diag.List {
	var errs diag.List
	fields := make(map[string]bool, len(rec.Fields))
	for _, f := range rec.Fields {
		fields[f.Name] = true
	}
	methods := make(map[string]bool, len(rec.Methods))
	for _, m := range rec.Methods {
		methods[m] = true
	}
	seen := make(map[string]*Plan, len(plans))
	for _, p := range plans {
		pos := rec.Position(p.NamePos)
		if p.Vis == directive.Public && !token.IsExported(p.Name) {
			errs.Add(diag.Errorf(pos, diag.MalformedValue,
				"field %s: accessor name %s cannot be exported", p.Field, p.Name))
			continue
		}
		switch {
		case fields[p.Name]:
			errs.Add(diag.Errorf(pos, diag.NameCollision,
				"field %s: accessor %s collides with field %s.%s, set %s or %s",
				p.Field, p.Name, rec.Name, p.Name, directive.KeyName, directive.KeyVis))
		case methods[p.Name]:
			errs.Add(diag.Errorf(pos, diag.NameCollision,
				"field %s: accessor %s collides with method %s.%s", p.Field, p.Name, rec.Name, p.Name))
		}
		if prev, ok := seen[p.Name]; ok {
			errs.Add(diag.Errorf(pos, diag.NameCollision,
				"field %s: accessor %s is also generated for field %s", p.Field, p.Name, prev.Field).
				WithNote(rec.Position(prev.NamePos), "accessor for %s named here", prev.Field))
			continue
		}
		seen[p.Name] = p
	}
	return errs
}

// String describes o for logging.
func (o *Outcome) String() string {
	return fmt.Sprintf("%s: %d accessors", o.Record.Name, len(o.Plans))
}
