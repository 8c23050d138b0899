// Package directive parses and merges per-field getter directives.
//
// A directive is written as a comma separated list of key = value entries,
// either in a comment on the field:
//
//	//getter:name=category, vis=private
//
// or in a struct tag:
//
//	Cat sql.NullString `getter:"name=category"`
//
// Two keys are recognised. name overrides the accessor name and takes a
// bare identifier; the older quoted form (name="category") is still
// accepted but flagged as legacy. vis overrides the accessor visibility.
package directive

import (
	"go/token"
	"strings"
)

const (
	KeyName = "name"
	KeyVis  = "vis"
)

// Visibility is the visibility of a generated accessor. Go encodes it in
// the case of the first letter of the accessor name.
type Visibility uint8

const (
	Public Visibility = iota
	Package
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Package:
		return "package"
	}
	return "unknown"
}

// ParseVisibility maps a visibility specifier to a Visibility.
func ParseVisibility(s string) (Visibility, bool) {
	switch strings.ToLower(s) {
	case "public", "pub", "exported":
		return Public, true
	case "private", "package", "unexported":
		return Package, true
	}
	return 0, false
}

// Value is one key = value entry of a directive.
type Value struct {
	// Text is the value with quotes removed.
	Text string

	// KeyPos is the position of the key token.
	KeyPos token.Pos

	// Pos and End delimit the value token as written.
	Pos token.Pos
	End token.Pos

	// Quoted is set when the value was written as a string literal.
	Quoted bool
}

// Directive is the configuration resolved for one field.
type Directive struct {
	// Name overrides the accessor name when set.
	Name *Value

	// Vis overrides the accessor visibility when set; the parsed
	// value is in Visibility.
	Vis        *Value
	Visibility Visibility

	// Legacy is set when any contributing name was written in the
	// deprecated quoted form.
	Legacy bool
}

// Empty reports whether d sets no key.
func (d *Directive) Empty() bool {
	return d == nil || (d.Name == nil && d.Vis == nil)
}

// Merge combines two directives. A key set on both sides is an error of
// kind Redundant which refers to the earlier occurrence as Prev, whatever
// the order of a and b.
func Merge(a, b *Directive) (*Directive, error) {
	if a == nil {
		a = &Directive{}
	}
	if b == nil {
		b = &Directive{}
	}
	name, err := mergeValue(KeyName, a.Name, b.Name)
	if err != nil {
		return nil, err
	}
	vis, err := mergeValue(KeyVis, a.Vis, b.Vis)
	if err != nil {
		return nil, err
	}
	res := &Directive{
		Name:   name,
		Vis:    vis,
		Legacy: a.Legacy || b.Legacy,
	}
	switch {
	case a.Vis != nil:
		res.Visibility = a.Visibility
	case b.Vis != nil:
		res.Visibility = b.Visibility
	}
	return res, nil
}

func mergeValue(key string, a, b *Value) (*Value, error) {
	switch {
	case a == nil:
		return b, nil
	case b == nil:
		return a, nil
	}
	first, second := a, b
	if second.KeyPos < first.KeyPos {
		first, second = second, first
	}
	return nil, &Error{
		Kind: Redundant,
		Key:  key,
		Pos:  second.KeyPos,
		End:  second.End,
		Prev: first.KeyPos,
		Msg:  "redundant " + key + " argument",
	}
}
