// Package classify decides the shape of the accessor generated for a
// field from the field's declared type.
//
// Classification is total: every type expression falls into exactly one
// Kind, with KindFallback catching whatever no other rule matched.
package classify

import (
	"go/ast"
	"go/token"
)

// Kind is the shape of an accessor.
type Kind uint8

const (
	// KindReference types are returned as they are.
	KindReference Kind = iota
	// KindText types are returned as string.
	KindText
	// KindOptionalText wrappers are returned as (string, bool).
	KindOptionalText
	// KindOptional wrappers are returned as a pointer to the payload,
	// nil when absent.
	KindOptional
	// KindFallback types are returned as a pointer to the field.
	KindFallback
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindText:
		return "text"
	case KindOptionalText:
		return "optional-text"
	case KindOptional:
		return "optional"
	case KindFallback:
		return "fallback"
	}
	return "unknown"
}

// Result is the outcome of classifying one declared type.
type Result struct {
	Kind Kind

	// Type is the declared type.
	Type ast.Expr

	// Returns holds the accessor result types.
	Returns []ast.Expr

	// Convert is set for named text types, read through string(...).
	Convert bool

	// Payload and Valid name the wrapper fields of optional kinds.
	Payload string
	Valid   string

	// Imports lists packages referenced by Returns which may not be
	// imported by the file declaring the field, by local name.
	Imports map[string]string
}

// Body returns the accessor body reading field through the receiver
// named recv. The statements always type check against Returns.
func (r Result) Body(recv, field string) []ast.Stmt {
	sel := &ast.SelectorExpr{X: ast.NewIdent(recv), Sel: ast.NewIdent(field)}
	switch r.Kind {
	case KindReference:
		return []ast.Stmt{ret(sel)}
	case KindText:
		if r.Convert {
			return []ast.Stmt{ret(&ast.CallExpr{Fun: ast.NewIdent("string"), Args: []ast.Expr{sel}})}
		}
		return []ast.Stmt{ret(sel)}
	case KindOptionalText:
		val := payload(sel, r.Payload)
		if r.Convert {
			val = &ast.CallExpr{Fun: ast.NewIdent("string"), Args: []ast.Expr{val}}
		}
		return []ast.Stmt{
			ifAbsent(sel, r.Valid, &ast.BasicLit{Kind: token.STRING, Value: `""`}, ast.NewIdent("false")),
			ret(val, ast.NewIdent("true")),
		}
	case KindOptional:
		return []ast.Stmt{
			ifAbsent(sel, r.Valid, ast.NewIdent("nil")),
			ret(&ast.UnaryExpr{Op: token.AND, X: payload(sel, r.Payload)}),
		}
	case KindFallback:
		return []ast.Stmt{ret(&ast.UnaryExpr{Op: token.AND, X: sel})}
	}
	panic("classify: unknown kind " + r.Kind.String())
}

func ret(results ...ast.Expr) *ast.ReturnStmt {
	return &ast.ReturnStmt{Results: results}
}

func payload(sel ast.Expr, name string) ast.Expr {
	return &ast.SelectorExpr{X: sel, Sel: ast.NewIdent(name)}
}

// ifAbsent is: if !sel.valid { return zero... }
func ifAbsent(sel ast.Expr, valid string, zero ...ast.Expr) *ast.IfStmt {
	return &ast.IfStmt{
		Cond: &ast.UnaryExpr{Op: token.NOT, X: payload(sel, valid)},
		Body: &ast.BlockStmt{List: []ast.Stmt{ret(zero...)}},
	}
}
