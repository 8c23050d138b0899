// Package config loads the optional getters configuration file.
package config

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/signadot/go-getters/classify"
	"github.com/signadot/go-getters/directive"
)

// FileName is the configuration file looked up in package directories.
const FileName = ".getters.yaml"

// DefaultOutputSuffix is appended to the package name to name the
// generated file.
const DefaultOutputSuffix = "_getters.go"

type Config struct {
	// DefaultVis is the visibility of accessors without a vis
	// directive: public or private.
	DefaultVis string `yaml:"default_vis"`

	// Receiver is the preferred receiver name.
	Receiver string `yaml:"receiver"`

	// OutputSuffix names the generated file, <package><suffix>.
	OutputSuffix string `yaml:"output_suffix"`

	// TextTypes lists named string types, "Name" for types of the
	// package itself or "import/path.Name".
	TextTypes []string `yaml:"text_types"`

	Optionals []Optional `yaml:"optionals"`
}

// Optional declares an optional wrapper type.
type Optional struct {
	// Type is "Name" or "import/path.Name".
	Type string `yaml:"type"`

	// Generic wrappers take their payload type as type argument.
	Generic bool `yaml:"generic"`

	// Elem is the payload type of non generic wrappers, as a Go type
	// expression, ElemImport the import path of its qualifier if any.
	Elem       string `yaml:"elem"`
	ElemImport string `yaml:"elem_import"`

	Payload string `yaml:"payload"`
	Valid   string `yaml:"valid"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	return &Config{
		DefaultVis:   directive.Public.String(),
		OutputSuffix: DefaultOutputSuffix,
	}
}

// Load reads the configuration at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Find returns the configuration file of dir, or "" if there is none.
func Find(dir string) string {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (c *Config) Validate() error {
	var errs []error
	if _, ok := directive.ParseVisibility(c.DefaultVis); !ok {
		errs = append(errs, fmt.Errorf("default_vis: unknown visibility %q", c.DefaultVis))
	}
	if c.Receiver != "" && !token.IsIdentifier(c.Receiver) {
		errs = append(errs, fmt.Errorf("receiver: %q is not an identifier", c.Receiver))
	}
	if c.OutputSuffix == "" || !strings.HasSuffix(c.OutputSuffix, ".go") || strings.HasSuffix(c.OutputSuffix, "_test.go") {
		errs = append(errs, fmt.Errorf("output_suffix: %q must end in .go and not _test.go", c.OutputSuffix))
	}
	for _, t := range c.TextTypes {
		if !token.IsIdentifier(classify.ParseTypeRef(t).Name) {
			errs = append(errs, fmt.Errorf("text_types: invalid type %q", t))
		}
	}
	for i, o := range c.Optionals {
		if err := o.validate(); err != nil {
			errs = append(errs, fmt.Errorf("optionals[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (o *Optional) validate() error {
	switch {
	case !token.IsIdentifier(classify.ParseTypeRef(o.Type).Name):
		return fmt.Errorf("invalid type %q", o.Type)
	case !token.IsIdentifier(o.Payload):
		return fmt.Errorf("invalid payload field %q", o.Payload)
	case !token.IsIdentifier(o.Valid):
		return fmt.Errorf("invalid valid field %q", o.Valid)
	case o.Generic && o.Elem != "":
		return fmt.Errorf("generic wrapper %s cannot have elem", o.Type)
	case !o.Generic && o.Elem == "":
		return fmt.Errorf("wrapper %s needs elem", o.Type)
	}
	if o.Elem != "" {
		if _, err := parser.ParseExpr(o.Elem); err != nil {
			return fmt.Errorf("elem %q: %w", o.Elem, err)
		}
	}
	return nil
}

// Visibility returns the default accessor visibility.
func (c *Config) Visibility() directive.Visibility {
	v, _ := directive.ParseVisibility(c.DefaultVis)
	return v
}

// Classifier returns a classifier knowing the configured text types and
// wrappers. pkgPath is the import path of the package being generated:
// types configured with that path are treated as local.
func (c *Config) Classifier(pkgPath string) (*classify.Classifier, error) {
	var opts []classify.Option
	for _, t := range c.TextTypes {
		opts = append(opts, classify.WithTextType(local(classify.ParseTypeRef(t), pkgPath)))
	}
	for _, o := range c.Optionals {
		w, err := o.wrapper(pkgPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, classify.WithWrapper(w))
	}
	return classify.New(opts...), nil
}

func (o *Optional) wrapper(pkgPath string) (classify.Wrapper, error) {
	ref := local(classify.ParseTypeRef(o.Type), pkgPath)
	w := classify.Wrapper{
		Import:  ref.Import,
		Name:    ref.Name,
		Generic: o.Generic,
		Payload: o.Payload,
		Valid:   o.Valid,
	}
	if o.Generic {
		return w, nil
	}
	elem, err := parser.ParseExpr(o.Elem)
	if err != nil {
		return w, fmt.Errorf("optional %s: elem %q: %w", o.Type, o.Elem, err)
	}
	w.Elem = elem
	if o.ElemImport != "" {
		if sel, ok := elem.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				w.ElemImports = map[string]string{id.Name: o.ElemImport}
			}
		}
	}
	return w, nil
}

func local(ref classify.TypeRef, pkgPath string) classify.TypeRef {
	if pkgPath != "" && ref.Import == pkgPath {
		ref.Import = ""
	}
	return ref
}
