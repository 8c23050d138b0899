package accessor

import (
	"go/ast"
	"go/types"
	"sort"
	"strings"

	"github.com/signadot/go-getters/record"
)

// qualifier rewrites the names of a field type which come from a dot
// import into selectors on that import's key in the record imports. The
// generated file has no dot import, so such names must be qualified.
type qualifier struct {
	rec   *record.Record
	local map[string]bool
	dots  []string

	// unresolved are names several dot imports may declare.
	unresolved []string
}

// qualifyType returns t with dot imported names qualified, along with
// the names it could not attribute to a single dot import.
func qualifyType(rec *record.Record, t ast.Expr) (ast.Expr, []string) {
	q := &qualifier{rec: rec, local: map[string]bool{}}
	for key := range rec.Imports {
		if strings.HasPrefix(key, ".") {
			q.dots = append(q.dots, key)
		}
	}
	if len(q.dots) == 0 || rec.Declared == nil {
		return t, nil
	}
	sort.Strings(q.dots)
	for _, n := range rec.TypeParamNames() {
		q.local[n] = true
	}
	res := q.expr(t)
	return res, q.unresolved
}

func (q *qualifier) ident(id *ast.Ident) ast.Expr {
	name := id.Name
	if name == "_" || q.local[name] || q.rec.Declared[name] || types.Universe.Lookup(name) != nil {
		return id
	}
	if len(q.dots) > 1 {
		q.unresolved = append(q.unresolved, name)
		return id
	}
	return &ast.SelectorExpr{X: &ast.Ident{NamePos: id.NamePos, Name: q.dots[0]}, Sel: id}
}

func (q *qualifier) expr(e ast.Expr) ast.Expr {
	switch x := e.(type) {
	case *ast.Ident:
		return q.ident(x)
	case *ast.StarExpr:
		return &ast.StarExpr{Star: x.Star, X: q.expr(x.X)}
	case *ast.ParenExpr:
		return &ast.ParenExpr{Lparen: x.Lparen, X: q.expr(x.X), Rparen: x.Rparen}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{OpPos: x.OpPos, Op: x.Op, X: q.expr(x.X)}
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{X: q.expr(x.X), OpPos: x.OpPos, Op: x.Op, Y: q.expr(x.Y)}
	case *ast.CallExpr:
		return &ast.CallExpr{Fun: q.expr(x.Fun), Lparen: x.Lparen, Args: q.exprs(x.Args), Ellipsis: x.Ellipsis, Rparen: x.Rparen}
	case *ast.Ellipsis:
		return &ast.Ellipsis{Ellipsis: x.Ellipsis, Elt: q.expr(x.Elt)}
	case *ast.ArrayType:
		return &ast.ArrayType{Lbrack: x.Lbrack, Len: q.expr(x.Len), Elt: q.expr(x.Elt)}
	case *ast.MapType:
		return &ast.MapType{Map: x.Map, Key: q.expr(x.Key), Value: q.expr(x.Value)}
	case *ast.ChanType:
		return &ast.ChanType{Begin: x.Begin, Arrow: x.Arrow, Dir: x.Dir, Value: q.expr(x.Value)}
	case *ast.IndexExpr:
		return &ast.IndexExpr{X: q.expr(x.X), Lbrack: x.Lbrack, Index: q.expr(x.Index), Rbrack: x.Rbrack}
	case *ast.IndexListExpr:
		return &ast.IndexListExpr{X: q.expr(x.X), Lbrack: x.Lbrack, Indices: q.exprs(x.Indices), Rbrack: x.Rbrack}
	case *ast.FuncType:
		return &ast.FuncType{Func: x.Func, Params: q.fields(x.Params), Results: q.fields(x.Results)}
	case *ast.InterfaceType:
		return &ast.InterfaceType{Interface: x.Interface, Methods: q.fields(x.Methods), Incomplete: x.Incomplete}
	case *ast.StructType:
		return &ast.StructType{Struct: x.Struct, Fields: q.fields(x.Fields), Incomplete: x.Incomplete}
	}
	// Selectors name a package member and literals hold no names.
	return e
}

func (q *qualifier) exprs(es []ast.Expr) []ast.Expr {
	res := make([]ast.Expr, 0, len(es))
	for _, e := range es {
		res = append(res, q.expr(e))
	}
	return res
}

// fields rewrites the types of fl, leaving field and method names alone.
func (q *qualifier) fields(fl *ast.FieldList) *ast.FieldList {
	if fl == nil {
		return nil
	}
	res := &ast.FieldList{Opening: fl.Opening, Closing: fl.Closing}
	for _, f := range fl.List {
		c := *f
		c.Type = q.expr(f.Type)
		res.List = append(res.List, &c)
	}
	return res
}
