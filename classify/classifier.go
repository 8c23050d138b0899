package classify

import (
	"go/ast"
	"strings"
)

// Wrapper describes an optional type: a struct holding a payload field
// and a boolean field reporting whether the payload is present.
type Wrapper struct {
	// Import is the import path declaring the type, empty for types
	// declared in the package of the record.
	Import string
	Name   string

	// Generic wrappers take the payload type as their single type
	// argument. Other wrappers carry it in Elem.
	Generic bool
	Elem    ast.Expr

	// ElemImports lists packages referenced by Elem by local name.
	ElemImports map[string]string

	Payload string
	Valid   string
}

// SQLWrappers are the optional types of database/sql.
var SQLWrappers = []Wrapper{
	{Import: "database/sql", Name: "Null", Generic: true, Payload: "V", Valid: "Valid"},
	sqlNull("NullString", "String", ast.NewIdent("string")),
	sqlNull("NullInt64", "Int64", ast.NewIdent("int64")),
	sqlNull("NullInt32", "Int32", ast.NewIdent("int32")),
	sqlNull("NullInt16", "Int16", ast.NewIdent("int16")),
	sqlNull("NullByte", "Byte", ast.NewIdent("byte")),
	sqlNull("NullFloat64", "Float64", ast.NewIdent("float64")),
	sqlNull("NullBool", "Bool", ast.NewIdent("bool")),
	{
		Import:      "database/sql",
		Name:        "NullTime",
		Elem:        &ast.SelectorExpr{X: ast.NewIdent("time"), Sel: ast.NewIdent("Time")},
		ElemImports: map[string]string{"time": "time"},
		Payload:     "Time",
		Valid:       "Valid",
	},
}

func sqlNull(name, payload string, elem ast.Expr) Wrapper {
	return Wrapper{Import: "database/sql", Name: name, Elem: elem, Payload: payload, Valid: "Valid"}
}

// TypeRef names a declared type, Import being empty for the package of
// the record.
type TypeRef struct {
	Import string
	Name   string
}

// ParseTypeRef parses "Name" or "import/path.Name".
func ParseTypeRef(s string) TypeRef {
	i := strings.LastIndex(s, ".")
	if i < 0 {
		return TypeRef{Name: s}
	}
	return TypeRef{Import: s[:i], Name: s[i+1:]}
}

func (r TypeRef) String() string {
	if r.Import == "" {
		return r.Name
	}
	return r.Import + "." + r.Name
}

// Classifier classifies declared field types.
type Classifier struct {
	wrappers  []Wrapper
	textTypes map[TypeRef]bool
}

type Option func(*Classifier)

// WithWrapper registers an additional optional wrapper.
func WithWrapper(w Wrapper) Option {
	return func(c *Classifier) {
		c.wrappers = append(c.wrappers, w)
	}
}

// WithTextType registers a named type whose underlying type is string.
func WithTextType(ref TypeRef) Option {
	return func(c *Classifier) {
		c.textTypes[ref] = true
	}
}

// New returns a classifier knowing the database/sql wrappers and the
// given additions.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		wrappers:  append([]Wrapper(nil), SQLWrappers...),
		textTypes: map[TypeRef]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify classifies the declared type expr of a field. imports maps
// the local package names of the declaring file to import paths, dot
// imports being keyed "." + path.
//
// Rules are tried in order:
//
//  1. pointers, slices, maps, channels, funcs and interfaces are
//     references and returned as is;
//  2. string and registered text types are returned as string;
//  3. wrappers around text are returned as (string, bool);
//  4. other wrappers are returned as a pointer to their payload;
//  5. anything else is returned as a pointer to the field.
func (c *Classifier) Classify(expr ast.Expr, imports map[string]string) Result {
	res := Result{Type: expr}
	t := unparen(expr)
	switch x := t.(type) {
	case *ast.StarExpr, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.InterfaceType:
		return reference(res)
	case *ast.ArrayType:
		if x.Len == nil {
			return reference(res)
		}
	case *ast.Ident:
		switch x.Name {
		case "any", "error":
			return reference(res)
		}
	}
	if text, named := c.isText(t, imports); text {
		res.Kind = KindText
		res.Convert = named
		res.Returns = []ast.Expr{ast.NewIdent("string")}
		return res
	}
	if w, elem, ok := c.wrapper(t, imports); ok {
		res.Payload = w.Payload
		res.Valid = w.Valid
		if text, named := c.isText(elem, imports); text {
			res.Kind = KindOptionalText
			res.Convert = named
			res.Returns = []ast.Expr{ast.NewIdent("string"), ast.NewIdent("bool")}
			return res
		}
		res.Kind = KindOptional
		res.Returns = []ast.Expr{&ast.StarExpr{X: elem}}
		if !w.Generic {
			res.Imports = w.ElemImports
		}
		return res
	}
	res.Kind = KindFallback
	res.Returns = []ast.Expr{&ast.StarExpr{X: expr}}
	return res
}

func reference(res Result) Result {
	res.Kind = KindReference
	res.Returns = []ast.Expr{res.Type}
	return res
}

// isText reports whether t is string or a registered text type, and in
// the latter case that a conversion is needed.
func (c *Classifier) isText(t ast.Expr, imports map[string]string) (text, named bool) {
	t = unparen(t)
	if id, ok := t.(*ast.Ident); ok && id.Name == "string" {
		return true, false
	}
	for _, ref := range resolve(t, imports) {
		if c.textTypes[ref] {
			return true, true
		}
	}
	return false, false
}

func (c *Classifier) wrapper(t ast.Expr, imports map[string]string) (Wrapper, ast.Expr, bool) {
	generic := false
	var elem ast.Expr
	if ix, ok := t.(*ast.IndexExpr); ok {
		generic = true
		t, elem = ix.X, ix.Index
	}
	for _, ref := range resolve(t, imports) {
		for _, w := range c.wrappers {
			if w.Generic != generic || w.Import != ref.Import || w.Name != ref.Name {
				continue
			}
			if !generic {
				elem = w.Elem
			}
			return w, elem, true
		}
	}
	return Wrapper{}, nil, false
}

// resolve returns the declared types a type name may refer to.
func resolve(t ast.Expr, imports map[string]string) []TypeRef {
	switch x := t.(type) {
	case *ast.Ident:
		refs := []TypeRef{{Name: x.Name}}
		for name, path := range imports {
			if strings.HasPrefix(name, ".") {
				refs = append(refs, TypeRef{Import: path, Name: x.Name})
			}
		}
		return refs
	case *ast.SelectorExpr:
		pkg, ok := x.X.(*ast.Ident)
		if !ok {
			return nil
		}
		path, ok := imports[pkg.Name]
		if !ok {
			return nil
		}
		return []TypeRef{{Import: path, Name: x.Sel.Name}}
	}
	return nil
}

func unparen(t ast.Expr) ast.Expr {
	for {
		p, ok := t.(*ast.ParenExpr)
		if !ok {
			return t
		}
		t = p.X
	}
}
