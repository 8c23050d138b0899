package directive

import (
	"fmt"
	"go/scanner"
	"go/token"
	"strconv"
)

// Parse parses the text of one directive occurrence. base is the file
// position of the first byte of text; positions in the result and in
// errors are relative to it.
//
// Entries are folded together with Merge as they are read, so a key
// repeated within one occurrence is a Redundant error. Parsing stops at
// the first error. An empty text yields an empty directive.
func Parse(text string, base token.Pos) (*Directive, error) {
	p := newParser(text, base)
	return p.parse()
}

type parser struct {
	s    scanner.Scanner
	file *token.File
	base token.Pos
	err  *Error

	pos token.Pos
	tok token.Token
	lit string
}

func newParser(text string, base token.Pos) *parser {
	p := &parser{base: base}
	fset := token.NewFileSet()
	p.file = fset.AddFile("", -1, len(text))
	p.s.Init(p.file, []byte(text), p.scanError, 0)
	return p
}

func (p *parser) scanError(pos token.Position, msg string) {
	if p.err != nil {
		return
	}
	at := p.base + token.Pos(pos.Offset)
	p.err = &Error{Kind: Malformed, Msg: msg, Pos: at, End: at + 1}
}

// abs translates a scanner position to a position relative to base.
func (p *parser) abs(pos token.Pos) token.Pos {
	return p.base + token.Pos(p.file.Offset(pos))
}

func (p *parser) next() {
	pos, tok, lit := p.s.Scan()
	if tok == token.SEMICOLON && lit == "\n" {
		tok = token.EOF
	}
	p.pos, p.tok, p.lit = p.abs(pos), tok, lit
}

// end returns the position just past the current token.
func (p *parser) end() token.Pos {
	n := len(p.lit)
	if n == 0 {
		n = len(p.tok.String())
	}
	return p.pos + token.Pos(n)
}

func (p *parser) text() string {
	if p.lit != "" {
		return p.lit
	}
	return p.tok.String()
}

func (p *parser) errorf(kind ErrorKind, key, format string, args ...any) *Error {
	return &Error{
		Kind: kind,
		Key:  key,
		Msg:  fmt.Sprintf(format, args...),
		Pos:  p.pos,
		End:  p.end(),
	}
}

func (p *parser) parse() (*Directive, error) {
	res := &Directive{}
	p.next()
	for {
		if p.err != nil {
			return nil, p.err
		}
		if p.tok == token.EOF {
			return res, nil
		}
		entry, err := p.entry()
		if err != nil {
			return nil, err
		}
		res, err = Merge(res, entry)
		if err != nil {
			return nil, err
		}
		p.next()
		if p.err != nil {
			return nil, p.err
		}
		switch p.tok {
		case token.EOF:
			return res, nil
		case token.COMMA:
			p.next()
		default:
			return nil, p.errorf(Malformed, "", "expected , or end of directive, found %q", p.text())
		}
	}
}

// entry parses key = value starting at the current token.
func (p *parser) entry() (*Directive, error) {
	if p.tok == token.COMMA {
		return nil, p.errorf(Malformed, "", "empty directive entry")
	}
	if p.tok != token.IDENT && !p.tok.IsKeyword() {
		return nil, p.errorf(Malformed, "", "expected key, found %q", p.text())
	}
	key, keyPos := p.lit, p.pos
	if key != KeyName && key != KeyVis {
		return nil, p.errorf(UnknownKey, key, "unknown key %q, expected %s or %s", key, KeyName, KeyVis)
	}
	p.next()
	if p.err != nil {
		return nil, p.err
	}
	if p.tok != token.ASSIGN {
		return nil, p.errorf(Malformed, key, "expected = after %s, found %q", key, p.text())
	}
	p.next()
	if p.err != nil {
		return nil, p.err
	}
	if p.tok == token.EOF || p.tok == token.COMMA {
		return nil, p.errorf(Malformed, key, "missing value")
	}
	if key == KeyName {
		return p.name(keyPos)
	}
	return p.vis(keyPos)
}

func (p *parser) name(keyPos token.Pos) (*Directive, error) {
	v := &Value{KeyPos: keyPos, Pos: p.pos, End: p.end()}
	switch {
	case p.tok == token.IDENT:
		v.Text = p.lit
	case p.tok == token.STRING:
		s, err := strconv.Unquote(p.lit)
		if err != nil {
			return nil, p.errorf(Malformed, KeyName, "invalid string %s", p.lit)
		}
		if !token.IsIdentifier(s) {
			return nil, p.errorf(Malformed, KeyName, "%s is not a valid identifier", p.lit)
		}
		v.Text = s
		v.Quoted = true
	case p.tok.IsKeyword():
		return nil, p.errorf(Malformed, KeyName, "keyword %q cannot name an accessor", p.lit)
	default:
		return nil, p.errorf(Malformed, KeyName, "expected identifier, found %q", p.text())
	}
	if v.Text == "_" {
		return nil, p.errorf(Malformed, KeyName, "blank identifier cannot name an accessor")
	}
	return &Directive{Name: v, Legacy: v.Quoted}, nil
}

func (p *parser) vis(keyPos token.Pos) (*Directive, error) {
	if p.tok != token.IDENT && !p.tok.IsKeyword() {
		return nil, p.errorf(Malformed, KeyVis, "expected visibility, found %q", p.text())
	}
	vis, ok := ParseVisibility(p.lit)
	if !ok {
		return nil, p.errorf(Malformed, KeyVis, "unknown visibility %q, expected public or private", p.lit)
	}
	v := &Value{Text: p.lit, KeyPos: keyPos, Pos: p.pos, End: p.end()}
	return &Directive{Vis: v, Visibility: vis}, nil
}
