package emit

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"

	"github.com/dave/jennifer/jen"
)

// converter turns the go/ast nodes of accessor plans into jennifer code.
// Selectors on an imported package name become qualified references so
// that jennifer manages the imports of the generated file.
type converter struct {
	imports map[string]string
}

func newConverter(layers ...map[string]string) *converter {
	c := &converter{imports: map[string]string{}}
	for _, m := range layers {
		for name, path := range m {
			c.imports[name] = path
		}
	}
	return c
}

func (c *converter) exprs(es []ast.Expr) []jen.Code {
	res := make([]jen.Code, 0, len(es))
	for _, e := range es {
		res = append(res, c.expr(e))
	}
	return res
}

func (c *converter) expr(e ast.Expr) jen.Code {
	switch x := e.(type) {
	case *ast.Ident:
		return jen.Id(x.Name)
	case *ast.BasicLit:
		return jen.Op(x.Value)
	case *ast.SelectorExpr:
		if id, ok := x.X.(*ast.Ident); ok {
			if path, ok := c.imports[id.Name]; ok {
				return jen.Qual(path, x.Sel.Name)
			}
		}
		return jen.Add(c.expr(x.X)).Dot(x.Sel.Name)
	case *ast.StarExpr:
		return jen.Op("*").Add(c.expr(x.X))
	case *ast.UnaryExpr:
		return jen.Op(x.Op.String()).Add(c.expr(x.X))
	case *ast.BinaryExpr:
		return jen.Add(c.expr(x.X)).Op(x.Op.String()).Add(c.expr(x.Y))
	case *ast.ParenExpr:
		return jen.Parens(c.expr(x.X))
	case *ast.CallExpr:
		return jen.Add(c.expr(x.Fun)).Call(c.exprs(x.Args)...)
	case *ast.Ellipsis:
		return jen.Op("...").Add(c.expr(x.Elt))
	case *ast.ArrayType:
		switch l := x.Len.(type) {
		case nil:
			return jen.Index().Add(c.expr(x.Elt))
		case *ast.Ellipsis:
			return jen.Index(jen.Op("...")).Add(c.expr(x.Elt))
		default:
			return jen.Index(c.expr(l)).Add(c.expr(x.Elt))
		}
	case *ast.MapType:
		return jen.Map(c.expr(x.Key)).Add(c.expr(x.Value))
	case *ast.ChanType:
		switch x.Dir {
		case ast.RECV:
			return jen.Op("<-").Chan().Add(c.expr(x.Value))
		case ast.SEND:
			return jen.Chan().Op("<-").Add(c.expr(x.Value))
		}
		return jen.Chan().Add(c.expr(x.Value))
	case *ast.IndexExpr:
		return jen.Add(c.expr(x.X)).Types(c.expr(x.Index))
	case *ast.IndexListExpr:
		return jen.Add(c.expr(x.X)).Types(c.exprs(x.Indices)...)
	case *ast.FuncType:
		return c.signature(jen.Func(), x)
	case *ast.InterfaceType:
		var elems []jen.Code
		for _, m := range x.Methods.List {
			if ft, ok := m.Type.(*ast.FuncType); ok && len(m.Names) > 0 {
				for _, n := range m.Names {
					elems = append(elems, c.signature(jen.Id(n.Name), ft))
				}
				continue
			}
			elems = append(elems, c.expr(m.Type))
		}
		return jen.Interface(elems...)
	case *ast.StructType:
		var fields []jen.Code
		for _, f := range x.Fields.List {
			fields = append(fields, c.field(f)...)
		}
		return jen.Struct(fields...)
	}
	return jen.Op(source(e))
}

func (c *converter) field(f *ast.Field) []jen.Code {
	var tag jen.Code = jen.Null()
	if f.Tag != nil {
		tag = jen.Op(f.Tag.Value)
	}
	if len(f.Names) == 0 {
		return []jen.Code{jen.Add(c.expr(f.Type)).Add(tag)}
	}
	res := make([]jen.Code, 0, len(f.Names))
	for _, n := range f.Names {
		res = append(res, jen.Id(n.Name).Add(c.expr(f.Type)).Add(tag))
	}
	return res
}

func (c *converter) params(fl *ast.FieldList) []jen.Code {
	if fl == nil {
		return nil
	}
	var res []jen.Code
	for _, f := range fl.List {
		if len(f.Names) == 0 {
			res = append(res, c.expr(f.Type))
			continue
		}
		for _, n := range f.Names {
			res = append(res, jen.Id(n.Name).Add(c.expr(f.Type)))
		}
	}
	return res
}

// signature appends the parameters and results of ft to s.
func (c *converter) signature(s *jen.Statement, ft *ast.FuncType) *jen.Statement {
	s = s.Params(c.params(ft.Params)...)
	results := ft.Results
	switch {
	case results == nil || len(results.List) == 0:
		return s
	case len(results.List) == 1 && len(results.List[0].Names) == 0:
		return s.Add(c.expr(results.List[0].Type))
	}
	return s.Params(c.params(results)...)
}

func (c *converter) stmts(ss []ast.Stmt) []jen.Code {
	res := make([]jen.Code, 0, len(ss))
	for _, s := range ss {
		res = append(res, c.stmt(s))
	}
	return res
}

func (c *converter) stmt(s ast.Stmt) jen.Code {
	switch x := s.(type) {
	case *ast.ReturnStmt:
		return jen.Return(c.exprs(x.Results)...)
	case *ast.IfStmt:
		return jen.If(c.expr(x.Cond)).Block(c.stmts(x.Body.List)...)
	case *ast.ExprStmt:
		return c.expr(x.X)
	}
	return jen.Op(source(s))
}

// source prints a node the converter has no rule for.
func source(n ast.Node) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, token.NewFileSet(), n); err != nil {
		return "/* " + err.Error() + " */"
	}
	return buf.String()
}
