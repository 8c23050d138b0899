package record

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

const (
	// GenerateDirective marks a struct type for accessor generation.
	GenerateDirective = "//getters:generate"

	// FieldDirective prefixes a getter directive comment on a field.
	FieldDirective = "//getter:"

	// TagKey is the struct tag key holding a getter directive.
	TagKey = "getter"
)

// ParseFile parses a Go source file and returns its AST.
func ParseFile(filename string) (*ast.File, *token.FileSet, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse file %q: %w", filename, err)
	}
	return file, fset, nil
}

// Options controls record selection.
type Options struct {
	// Types selects struct types by name in addition to those
	// carrying the //getters:generate directive.
	Types []string

	// PackageName returns the package name of an import path, or ""
	// when unknown; the name is then guessed from the path.
	PackageName func(path string) string

	// Declared holds the package level identifiers of the package. When
	// nil, those of the extracted file are used.
	Declared map[string]bool
}

func (o *Options) selected(name string) bool {
	for _, t := range o.Types {
		if t == name {
			return true
		}
	}
	return false
}

// Extract returns the records selected in file, in declaration order.
func Extract(fset *token.FileSet, file *ast.File, filePath string, opts Options) []*Record {
	var records []*Record
	imports := ExtractImports(file, opts.PackageName)
	declared := opts.Declared
	if declared == nil {
		declared = Declarations(fset, []*ast.File{file}, nil)
	}

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			marked := hasDirective(genDecl.Doc) || hasDirective(typeSpec.Doc)
			if !marked && !opts.selected(typeSpec.Name.Name) {
				continue
			}
			rec := &Record{
				Name:       typeSpec.Name.Name,
				Package:    file.Name.Name,
				FilePath:   filePath,
				Fset:       fset,
				Pos:        typeSpec.Name.Pos(),
				TypeParams: typeSpec.TypeParams,
				Imports:    imports,
				Declared:   declared,
			}
			structType, ok := typeSpec.Type.(*ast.StructType)
			if !ok || typeSpec.Assign.IsValid() {
				rec.Shape, rec.ShapePos = ShapeNotStruct, typeSpec.Type.Pos()
			} else {
				extractFields(rec, structType)
			}
			records = append(records, rec)
		}
	}
	return records
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == GenerateDirective {
			return true
		}
	}
	return false
}

// extractFields fills the fields of rec, recording the first shape
// problem found.
func extractFields(rec *Record, structType *ast.StructType) {
	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			if rec.Shape == ShapeOK {
				rec.Shape, rec.ShapePos = ShapeEmbedded, field.Type.Pos()
			}
			continue
		}
		annotations := ExtractAnnotations(field)
		var group []string
		for _, name := range field.Names {
			// Blank fields are padding and cannot be read.
			if name.Name != "_" {
				group = append(group, name.Name)
			}
		}
		for _, name := range field.Names {
			if name.Name == "_" {
				continue
			}
			rec.Fields = append(rec.Fields, &Field{
				Name:        name.Name,
				Type:        field.Type,
				Annotations: annotations,
				Pos:         name.Pos(),
				Group:       group,
			})
		}
	}
	if rec.Shape == ShapeOK && len(rec.Fields) == 0 {
		rec.Shape, rec.ShapePos = ShapeEmpty, structType.Pos()
	}
}

// ExtractAnnotations returns the getter directives of a field: every
// //getter: line of its doc comment, then of its line comment, then the
// getter struct tag.
func ExtractAnnotations(field *ast.Field) []Annotation {
	var res []Annotation
	for _, group := range []*ast.CommentGroup{field.Doc, field.Comment} {
		if group == nil {
			continue
		}
		for _, c := range group.List {
			if !strings.HasPrefix(c.Text, FieldDirective) {
				continue
			}
			res = append(res, Annotation{
				Text:   c.Text[len(FieldDirective):],
				Pos:    c.Slash + token.Pos(len(FieldDirective)),
				Source: SourceComment,
			})
		}
	}
	if a, ok := tagAnnotation(field.Tag); ok {
		res = append(res, a)
	}
	return res
}

func tagAnnotation(tag *ast.BasicLit) (Annotation, bool) {
	if tag == nil {
		return Annotation{}, false
	}
	raw, err := strconv.Unquote(tag.Value)
	if err != nil {
		return Annotation{}, false
	}
	value, ok := reflect.StructTag(raw).Lookup(TagKey)
	if !ok {
		return Annotation{}, false
	}
	// Positions are exact for raw string tags, which is how tags are
	// written in practice.
	pos := tag.ValuePos
	if off := tagValueOffset(tag.Value); off >= 0 {
		pos += token.Pos(off)
	}
	return Annotation{Text: value, Pos: pos, Source: SourceTag}, true
}

// tagValueOffset returns the offset in lit of the first byte of the
// getter tag value, or -1.
func tagValueOffset(lit string) int {
	prefix := TagKey + `:"`
	for from := 0; ; {
		i := strings.Index(lit[from:], prefix)
		if i < 0 {
			return -1
		}
		i += from
		if i == 0 || strings.ContainsRune(" \t`\"", rune(lit[i-1])) {
			return i + len(prefix)
		}
		from = i + 1
	}
}

// ExtractImports returns a map of package name -> import path for file.
// Dot imports are keyed "." + path and blank imports are left out.
func ExtractImports(file *ast.File, pkgName func(string) string) map[string]string {
	imports := make(map[string]string)
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		var name string
		switch {
		case imp.Name != nil && imp.Name.Name == "_":
			continue
		case imp.Name != nil && imp.Name.Name == ".":
			name = "." + path
		case imp.Name != nil:
			name = imp.Name.Name
		case pkgName != nil && pkgName(path) != "":
			name = pkgName(path)
		default:
			name = GuessPackageName(path)
		}
		imports[name] = path
	}
	return imports
}

var versionElem = regexp.MustCompile(`^v[0-9]+$`)

// GuessPackageName guesses the package name of an import path from its
// last element, skipping major version suffixes.
func GuessPackageName(path string) string {
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]
	if versionElem.MatchString(name) && len(parts) > 1 {
		name = parts[len(parts)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	name = strings.TrimSuffix(name, "-go")
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return -1
		}
		return r
	}, name)
}

// Methods returns the method names declared in files by receiver type
// name. skip excludes files from the scan.
func Methods(fset *token.FileSet, files []*ast.File, skip func(filename string) bool) map[string][]string {
	res := make(map[string][]string)
	for _, file := range files {
		if skip != nil && fset != nil && skip(fset.Position(file.Pos()).Filename) {
			continue
		}
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
				continue
			}
			if name := receiverTypeName(fn.Recv.List[0].Type); name != "" {
				res[name] = append(res[name], fn.Name.Name)
			}
		}
	}
	return res
}

// Declarations returns the package level identifiers declared in files.
// skip excludes files from the scan.
func Declarations(fset *token.FileSet, files []*ast.File, skip func(filename string) bool) map[string]bool {
	res := make(map[string]bool)
	for _, file := range files {
		if skip != nil && fset != nil && skip(fset.Position(file.Pos()).Filename) {
			continue
		}
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if d.Recv == nil {
					res[d.Name.Name] = true
				}
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					switch s := spec.(type) {
					case *ast.TypeSpec:
						res[s.Name.Name] = true
					case *ast.ValueSpec:
						for _, n := range s.Names {
							res[n.Name] = true
						}
					}
				}
			}
		}
	}
	return res
}

func receiverTypeName(expr ast.Expr) string {
	switch x := expr.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.StarExpr:
		return receiverTypeName(x.X)
	case *ast.ParenExpr:
		return receiverTypeName(x.X)
	case *ast.IndexExpr:
		return receiverTypeName(x.X)
	case *ast.IndexListExpr:
		return receiverTypeName(x.X)
	}
	return ""
}
