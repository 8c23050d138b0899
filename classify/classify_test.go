package classify

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	e, err := parser.ParseExpr(src)
	if err != nil {
		t.Fatalf("ParseExpr(%q): %v", src, err)
	}
	return e
}

// render prints node on a single line.
func render(t *testing.T, node any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, token.NewFileSet(), node); err != nil {
		t.Fatal(err)
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

func renderAll(t *testing.T, es []ast.Expr) string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, render(t, e))
	}
	return strings.Join(parts, ", ")
}

var testImports = map[string]string{
	"sql":   "database/sql",
	"dbsql": "database/sql",
	"time":  "time",
	"pq":    "github.com/lib/pq",
	"model": "example.com/app/model",
}

func TestClassify(t *testing.T) {
	c := New(
		WithTextType(TypeRef{Name: "Label"}),
		WithTextType(TypeRef{Import: "example.com/app/model", Name: "Slug"}),
		WithWrapper(Wrapper{Name: "Maybe", Generic: true, Payload: "Value", Valid: "OK"}),
	)
	tests := []struct {
		typ     string
		kind    Kind
		returns string
		convert bool
		imports map[string]string
	}{
		{typ: "*int", kind: KindReference, returns: "*int"},
		{typ: "*string", kind: KindReference, returns: "*string"},
		{typ: "[]byte", kind: KindReference, returns: "[]byte"},
		{typ: "map[string]int", kind: KindReference, returns: "map[string]int"},
		{typ: "chan<- int", kind: KindReference, returns: "chan<- int"},
		{typ: "func() error", kind: KindReference, returns: "func() error"},
		{typ: "interface{}", kind: KindReference, returns: "interface{}"},
		{typ: "any", kind: KindReference, returns: "any"},
		{typ: "error", kind: KindReference, returns: "error"},

		{typ: "string", kind: KindText, returns: "string"},
		{typ: "(string)", kind: KindText, returns: "string"},
		{typ: "Label", kind: KindText, returns: "string", convert: true},
		{typ: "model.Slug", kind: KindText, returns: "string", convert: true},

		{typ: "sql.NullString", kind: KindOptionalText, returns: "string, bool"},
		{typ: "dbsql.NullString", kind: KindOptionalText, returns: "string, bool"},
		{typ: "sql.Null[string]", kind: KindOptionalText, returns: "string, bool"},
		{typ: "sql.Null[Label]", kind: KindOptionalText, returns: "string, bool", convert: true},
		{typ: "Maybe[string]", kind: KindOptionalText, returns: "string, bool"},

		{typ: "sql.NullInt64", kind: KindOptional, returns: "*int64"},
		{typ: "sql.NullBool", kind: KindOptional, returns: "*bool"},
		{typ: "sql.NullTime", kind: KindOptional, returns: "*time.Time", imports: map[string]string{"time": "time"}},
		{typ: "sql.Null[float64]", kind: KindOptional, returns: "*float64"},
		{typ: "sql.Null[time.Time]", kind: KindOptional, returns: "*time.Time"},
		{typ: "Maybe[int]", kind: KindOptional, returns: "*int"},

		{typ: "int", kind: KindFallback, returns: "*int"},
		{typ: "[4]byte", kind: KindFallback, returns: "*[4]byte"},
		{typ: "time.Time", kind: KindFallback, returns: "*time.Time"},
		{typ: "NullString", kind: KindFallback, returns: "*NullString"},
		{typ: "pq.NullString", kind: KindFallback, returns: "*pq.NullString"},
		{typ: "sql.NullString[int]", kind: KindFallback, returns: "*sql.NullString[int]"},
		{typ: "struct{}", kind: KindFallback, returns: "*struct{}"},
		{typ: "T", kind: KindFallback, returns: "*T"},
	}
	for _, tc := range tests {
		t.Run(tc.typ, func(t *testing.T) {
			res := c.Classify(mustParseExpr(t, tc.typ), testImports)
			if res.Kind != tc.kind {
				t.Errorf("kind = %v, want %v", res.Kind, tc.kind)
			}
			if got := renderAll(t, res.Returns); got != tc.returns {
				t.Errorf("returns = %q, want %q", got, tc.returns)
			}
			if res.Convert != tc.convert {
				t.Errorf("convert = %v, want %v", res.Convert, tc.convert)
			}
			if diff := cmp.Diff(tc.imports, res.Imports); diff != "" {
				t.Errorf("imports mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifyDotImport(t *testing.T) {
	imports := map[string]string{".database/sql": "database/sql"}
	res := New().Classify(mustParseExpr(t, "NullString"), imports)
	if res.Kind != KindOptionalText {
		t.Errorf("kind = %v, want %v", res.Kind, KindOptionalText)
	}
}

func TestClassifyUnregisteredTextType(t *testing.T) {
	res := New().Classify(mustParseExpr(t, "Label"), nil)
	if res.Kind != KindFallback {
		t.Errorf("kind = %v, want %v", res.Kind, KindFallback)
	}
}

func TestBody(t *testing.T) {
	c := New(WithTextType(TypeRef{Name: "Label"}))
	tests := []struct {
		typ  string
		want string
	}{
		{typ: "[]string", want: "return r.f"},
		{typ: "string", want: "return r.f"},
		{typ: "Label", want: "return string(r.f)"},
		{typ: "sql.NullString", want: `if !r.f.Valid { return "", false } return r.f.String, true`},
		{typ: "sql.Null[Label]", want: `if !r.f.Valid { return "", false } return string(r.f.V), true`},
		{typ: "sql.NullInt64", want: "if !r.f.Valid { return nil } return &r.f.Int64"},
		{typ: "sql.Null[int]", want: "if !r.f.Valid { return nil } return &r.f.V"},
		{typ: "int", want: "return &r.f"},
	}
	for _, tc := range tests {
		t.Run(tc.typ, func(t *testing.T) {
			res := c.Classify(mustParseExpr(t, tc.typ), testImports)
			if got := render(t, res.Body("r", "f")); got != tc.want {
				t.Errorf("body = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseTypeRef(t *testing.T) {
	tests := []struct {
		in   string
		want TypeRef
	}{
		{in: "Label", want: TypeRef{Name: "Label"}},
		{in: "database/sql.NullString", want: TypeRef{Import: "database/sql", Name: "NullString"}},
		{in: "gopkg.in/yaml.v3.Node", want: TypeRef{Import: "gopkg.in/yaml.v3", Name: "Node"}},
	}
	for _, tc := range tests {
		got := ParseTypeRef(tc.in)
		if got != tc.want {
			t.Errorf("ParseTypeRef(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
		if got.String() != tc.in {
			t.Errorf("String() = %q, want %q", got.String(), tc.in)
		}
	}
}
