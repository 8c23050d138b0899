// Package diag holds positioned diagnostics produced while generating
// accessors.
//
// A [List] collects every diagnostic of a generation pass. It implements
// error so that a failed pass can be returned as a single value carrying
// all field-scoped problems at once.
//
// # Related Packages
//
//   - github.com/signadot/go-getters/accessor - produces diagnostics
//   - github.com/signadot/go-getters/directive - directive parse errors
package diag

import (
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevWarning Severity = iota
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// Code identifies the kind of problem a diagnostic reports.
type Code uint16

const (
	UnknownCode Code = iota
	Structural
	UnknownKey
	MalformedValue
	RedundantArgument
	NameCollision
	DeprecatedNameSyntax
	// UnresolvedType is a field type name several dot imports may
	// declare.
	UnresolvedType
)

func (c Code) String() string {
	switch c {
	case Structural:
		return "structural"
	case UnknownKey:
		return "unknown-key"
	case MalformedValue:
		return "malformed-value"
	case RedundantArgument:
		return "redundant-argument"
	case NameCollision:
		return "name-collision"
	case DeprecatedNameSyntax:
		return "deprecated-name-syntax"
	case UnresolvedType:
		return "unresolved-type"
	}
	return "unknown"
}

// Note is a secondary location attached to a diagnostic.
type Note struct {
	Pos token.Position
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Pos      token.Position
	Notes    []Note
}

// Errorf returns an error diagnostic at pos.
func Errorf(pos token.Position, code Code, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	}
}

// Warnf returns a warning diagnostic at pos.
func Warnf(pos token.Position, code Code, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SevWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	}
}

// WithNote appends a note and returns d.
func (d *Diagnostic) WithNote(pos token.Position, format string, args ...any) *Diagnostic {
	d.Notes = append(d.Notes, Note{Pos: pos, Msg: fmt.Sprintf(format, args...)})
	return d
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.Pos.IsValid() {
		b.WriteString(d.Pos.String())
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s[%s]: %s", d.Severity, d.Code, d.Message)
	return b.String()
}

// List is an ordered collection of diagnostics.
type List []*Diagnostic

// Add appends d to the list.
func (l *List) Add(d *Diagnostic) {
	*l = append(*l, d)
}

// HasErrors reports whether any diagnostic has error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}

// Errors returns the error diagnostics of l.
func (l List) Errors() List {
	return l.filter(SevError)
}

// Warnings returns the warning diagnostics of l.
func (l List) Warnings() List {
	return l.filter(SevWarning)
}

func (l List) filter(sev Severity) List {
	var res List
	for _, d := range l {
		if d.Severity == sev {
			res = append(res, d)
		}
	}
	return res
}

// Sort orders the list by file, line, column, then severity (errors
// first) and code, for stable output.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		pi, pj := l[i].Pos, l[j].Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		if pi.Column != pj.Column {
			return pi.Column < pj.Column
		}
		if l[i].Severity != l[j].Severity {
			return l[i].Severity > l[j].Severity
		}
		return l[i].Code < l[j].Code
	})
}

// Err returns l as an error if it contains at least one error
// diagnostic, nil otherwise.
func (l List) Err() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].Error()
	}
	errs := len(l.Errors())
	return fmt.Sprintf("%s (and %d more, %d errors total)", l[0].Error(), len(l)-1, errs)
}
