package accessor

import (
	"go/ast"
	"go/token"
	"strconv"

	"github.com/signadot/go-getters/classify"
	"github.com/signadot/go-getters/diag"
	"github.com/signadot/go-getters/directive"
	"github.com/signadot/go-getters/record"
)

// Plan is the fully resolved shape of one accessor.
type Plan struct {
	// Field is the name of the field read by the accessor.
	Field string

	// Name is the accessor name, its case matching Vis.
	Name string

	// NamePos locates where Name comes from: the name directive value
	// when set, the field identifier otherwise.
	NamePos token.Pos

	Vis directive.Visibility

	// Result holds the return types and body shape.
	Result classify.Result

	// Deprecation is a warning carried for emission when the name was
	// given in the deprecated quoted form.
	Deprecation *diag.Diagnostic
}

// Body returns the statements of the accessor for receiver recv.
func (p *Plan) Body(recv string) []ast.Stmt {
	return p.Result.Body(recv, p.Field)
}

// Synthesize combines the merged directive of field f with its
// classification into a plan. def is the visibility used when the
// directive does not set one.
func Synthesize(rec *record.Record, f *record.Field, d *directive.Directive, res classify.Result, def directive.Visibility) *Plan {
	p := &Plan{
		Field:   f.Name,
		Name:    f.Name,
		NamePos: f.Pos,
		Vis:     def,
		Result:  res,
	}
	if d == nil {
		d = &directive.Directive{}
	}
	if d.Name != nil {
		p.Name = d.Name.Text
		p.NamePos = d.Name.Pos
	}
	if d.Vis != nil {
		p.Vis = d.Visibility
	}
	p.Name = applyVisibility(p.Name, p.Vis)
	if d.Legacy && d.Name != nil {
		p.Deprecation = diag.Warnf(rec.Position(d.Name.Pos), diag.DeprecatedNameSyntax,
			"field %s: quoted accessor name %s is deprecated, use %s = %s",
			f.Name, strconv.Quote(d.Name.Text), directive.KeyName, d.Name.Text)
	}
	return p
}
