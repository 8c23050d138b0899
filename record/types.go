package record

import (
	"go/ast"
	"go/token"
)

// Source tells where an annotation was written.
type Source uint8

const (
	// SourceComment annotations come from //getter: comment lines.
	SourceComment Source = iota
	// SourceTag annotations come from the getter struct tag.
	SourceTag
)

func (s Source) String() string {
	if s == SourceTag {
		return "tag"
	}
	return "comment"
}

// Annotation is one raw getter directive attached to a field.
type Annotation struct {
	// Text is the directive body, without the //getter: prefix or the
	// tag key.
	Text string

	// Pos is the file position of the first byte of Text.
	Pos token.Pos

	Source Source
}

// Field holds one named struct field.
type Field struct {
	// Name is the field identifier.
	Name string

	// Type is the declared type expression.
	Type ast.Expr

	// Annotations are the getter directives on the field, in source
	// order: doc comment lines, line comment, then struct tag.
	Annotations []Annotation

	// Pos is the position of the field identifier.
	Pos token.Pos

	// Group lists the names declared together with the field, blank
	// names excluded. Fields declared alone have a group of one.
	Group []string
}

// Shape tells whether a record is a flat struct with named fields.
type Shape uint8

const (
	ShapeOK Shape = iota
	// ShapeNotStruct is a selected type that is not a struct.
	ShapeNotStruct
	// ShapeEmbedded is a struct with an embedded field.
	ShapeEmbedded
	// ShapeEmpty is a struct without named fields.
	ShapeEmpty
)

func (s Shape) String() string {
	switch s {
	case ShapeOK:
		return "struct"
	case ShapeNotStruct:
		return "not a struct type"
	case ShapeEmbedded:
		return "struct with embedded fields"
	case ShapeEmpty:
		return "struct without named fields"
	}
	return "unknown"
}

// Record holds the structural description of one struct type selected
// for accessor generation.
type Record struct {
	// Name is the struct type name.
	Name string

	// Package is the package name the struct belongs to.
	Package string

	// FilePath is the path to the source file containing the struct.
	FilePath string

	// Fset is the file set positions refer to.
	Fset *token.FileSet

	// Pos is the position of the type name.
	Pos token.Pos

	// TypeParams is the type parameter list, nil for non generic types.
	TypeParams *ast.FieldList

	// Fields are the named fields in declaration order.
	Fields []*Field

	// Imports maps local package names of the declaring file to
	// import paths. Dot imports are keyed "." + path.
	Imports map[string]string

	// Shape reports a structural problem, ShapePos locating it.
	Shape    Shape
	ShapePos token.Pos

	// Methods are the names of methods already declared on the type.
	Methods []string

	// Declared holds the package level identifiers of the record's
	// package. Type names which are neither declared there nor
	// predeclared come from a dot import.
	Declared map[string]bool
}

// TypeParamNames returns the names of the type parameters in order.
func (r *Record) TypeParamNames() []string {
	if r.TypeParams == nil {
		return nil
	}
	var names []string
	for _, f := range r.TypeParams.List {
		for _, n := range f.Names {
			names = append(names, n.Name)
		}
	}
	return names
}

// Position resolves pos against the record's file set.
func (r *Record) Position(pos token.Pos) token.Position {
	if r.Fset == nil || !pos.IsValid() {
		return token.Position{Filename: r.FilePath}
	}
	return r.Fset.Position(pos)
}
