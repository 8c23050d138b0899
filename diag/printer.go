package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Printer writes diagnostics one per line in the familiar
// file:line:col form, followed by their notes.
type Printer struct {
	w io.Writer

	pos  *color.Color
	sev  map[Severity]*color.Color
	note *color.Color
}

// NewPrinter returns a printer writing to w. Colour is used when force
// is set or when w is a terminal.
func NewPrinter(w io.Writer, force bool) *Printer {
	p := &Printer{
		w:    w,
		pos:  color.New(color.Bold),
		note: color.New(color.FgCyan),
		sev: map[Severity]*color.Color{
			SevWarning: color.New(color.FgYellow, color.Bold),
			SevError:   color.New(color.FgRed, color.Bold),
		},
	}
	enable := force || isTerminal(w)
	for _, c := range p.all() {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) all() []*color.Color {
	return []*color.Color{p.pos, p.note, p.sev[SevWarning], p.sev[SevError]}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Print writes every diagnostic of l in order.
func (p *Printer) Print(l List) error {
	for _, d := range l {
		if err := p.PrintOne(d); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) PrintOne(d *Diagnostic) error {
	sev, ok := p.sev[d.Severity]
	if !ok {
		sev = p.pos
	}
	prefix := ""
	if d.Pos.IsValid() {
		prefix = p.pos.Sprint(d.Pos.String()) + ": "
	}
	_, err := fmt.Fprintf(p.w, "%s%s: %s\n", prefix, sev.Sprintf("%s[%s]", d.Severity, d.Code), d.Message)
	if err != nil {
		return err
	}
	for _, n := range d.Notes {
		loc := ""
		if n.Pos.IsValid() {
			loc = n.Pos.String() + ": "
		}
		if _, err := fmt.Fprintf(p.w, "\t%s%s %s\n", loc, p.note.Sprint("note:"), n.Msg); err != nil {
			return err
		}
	}
	return nil
}
