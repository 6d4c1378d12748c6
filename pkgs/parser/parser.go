// Package parser reads Egg grammar source into a grammar tree. The parser is
// itself a recursive-descent PEG over the streaming buffer, built from the
// same primitive matchers the generated parsers use: every production saves
// the read head on entry and restores it on failure.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/egglang/egg/pkgs/ast"
	"github.com/egglang/egg/pkgs/buffer"
	"github.com/egglang/egg/pkgs/peg"
)

// Parser holds the input buffer and the non-positional errors collected while
// parsing (duplicate rule names and the like).
type Parser struct {
	ps   *buffer.Buffer
	errs []string
}

// Parse reads an Egg grammar from r. On a syntax error it returns a
// *ParseError locating the furthest position the parser examined.
func Parse(r io.Reader) (*ast.Grammar, error) {
	p := &Parser{ps: buffer.New(r)}
	res := p.grammar()
	if !res.Ok() {
		return nil, Report(p.ps)
	}
	if len(p.errs) > 0 {
		return nil, fmt.Errorf("parsing failed:\n- %s", strings.Join(p.errs, "\n- "))
	}
	return res.Value(), nil
}

// --- Low-level helpers ---

// peek returns the byte at the read head without consuming it.
func (p *Parser) peek() byte {
	c, err := p.ps.At(p.ps.Pos)
	if err != nil {
		return buffer.EOF
	}
	return c
}

// peekAt returns the byte off positions ahead of the read head.
func (p *Parser) peekAt(off int) byte {
	c, err := p.ps.At(p.ps.Pos + off)
	if err != nil {
		return buffer.EOF
	}
	return c
}

// eat consumes one byte equal to c.
func (p *Parser) eat(c byte) bool {
	return peg.Matches(p.ps, c).Ok()
}

// skip consumes whitespace and '#' line comments. It always succeeds.
func (p *Parser) skip() {
	for {
		switch p.peek() {
		case ' ', '\t', '\n', '\r':
			p.ps.Pos++
		case '#':
			for {
				c := p.peek()
				if c == buffer.EOF || c == '\n' {
					break
				}
				p.ps.Pos++
			}
		default:
			return
		}
	}
}

// atGrammarEnd probes, without consuming, whether only whitespace and
// comments remain before end of input.
func (p *Parser) atGrammarEnd() bool {
	mark := p.ps.Pos
	p.skip()
	end := p.peek() == buffer.EOF
	p.ps.Pos = mark
	return end
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// ident matches [A-Za-z_][A-Za-z_0-9]*.
func (p *Parser) ident() (string, bool) {
	if !isIdentStart(p.peek()) {
		return "", false
	}
	start := p.ps.Pos
	p.ps.Pos++
	for isIdentChar(p.peek()) {
		p.ps.Pos++
	}
	s, _ := p.ps.Substring(start, p.ps.Pos-start)
	return s, true
}

// --- Grammar productions ---

// grammar := _ action? _ (rule _)+ action? _ EOF
//
// The leading action is the pre block, the trailing one the post block.
func (p *Parser) grammar() peg.Result[*ast.Grammar] {
	g := ast.NewGrammar()
	p.skip()
	if a := p.action(); a.Ok() {
		g.Pre = a.Value().Text
		p.skip()
	}
	count := 0
	for {
		r := p.rule()
		if !r.Ok() {
			break
		}
		if g.Add(r.Value()) {
			p.errs = append(p.errs, fmt.Sprintf("rule %q defined more than once", r.Value().Name))
		}
		count++
		p.skip()
	}
	if count == 0 {
		return peg.Fail[*ast.Grammar]()
	}
	if a := p.action(); a.Ok() {
		g.Post = a.Value().Text
		p.skip()
	}
	if p.peek() != buffer.EOF {
		return peg.Fail[*ast.Grammar]()
	}
	return peg.Match(g)
}

// rule := ident _ (':' type)? '=' _ alt
//
// The type is everything between the ':' and the '=', trimmed, verbatim.
func (p *Parser) rule() peg.Result[*ast.Rule] {
	mark := p.ps.Pos
	name, ok := p.ident()
	if !ok {
		return peg.Fail[*ast.Rule]()
	}
	p.skip()
	typ := ""
	if p.eat(':') {
		start := p.ps.Pos
		for p.peek() != '=' {
			if p.peek() == buffer.EOF {
				p.ps.Pos = mark
				return peg.Fail[*ast.Rule]()
			}
			p.ps.Pos++
		}
		t, _ := p.ps.Substring(start, p.ps.Pos-start)
		typ = strings.TrimSpace(t)
	}
	if !p.eat('=') {
		p.ps.Pos = mark
		return peg.Fail[*ast.Rule]()
	}
	p.skip()
	body := p.alt()
	if !body.Ok() {
		p.ps.Pos = mark
		return peg.Fail[*ast.Rule]()
	}
	return peg.Match(&ast.Rule{Name: name, Type: typ, Body: body.Value()})
}

// alt := seq (_ '|' _ seq)*
func (p *Parser) alt() peg.Result[*ast.Matcher] {
	first := p.seq()
	if !first.Ok() {
		return first
	}
	branches := []*ast.Matcher{first.Value()}
	for {
		mark := p.ps.Pos
		p.skip()
		if !p.eat('|') {
			p.ps.Pos = mark
			break
		}
		p.skip()
		next := p.seq()
		if !next.Ok() {
			p.ps.Pos = mark
			break
		}
		branches = append(branches, next.Value())
	}
	return peg.Match(ast.Alt(branches...))
}

// seq := term (_ term)*
//
// A continuation action on its own line where only trailing whitespace
// remains is not absorbed; the grammar level picks it up as the post block.
// An action on the same line as the rule body always belongs to the rule.
func (p *Parser) seq() peg.Result[*ast.Matcher] {
	first := p.term()
	if !first.Ok() {
		return first
	}
	terms := []*ast.Matcher{first.Value()}
	for {
		mark := p.ps.Pos
		p.skip()
		gap, _ := p.ps.Substring(mark, p.ps.Pos-mark)
		t := p.term()
		if !t.Ok() {
			p.ps.Pos = mark
			break
		}
		if t.Value().Kind == ast.KindAction && strings.Contains(gap, "\n") && p.atGrammarEnd() {
			p.ps.Pos = mark
			break
		}
		terms = append(terms, t.Value())
	}
	return peg.Match(ast.Seq(terms...))
}

// term := ('&' _ | '!' _)? unary
func (p *Parser) term() peg.Result[*ast.Matcher] {
	mark := p.ps.Pos
	switch p.peek() {
	case '&':
		p.ps.Pos++
		p.skip()
		m := p.unary()
		if !m.Ok() {
			p.ps.Pos = mark
			return m
		}
		return peg.Match(ast.Look(m.Value()))
	case '!':
		p.ps.Pos++
		p.skip()
		m := p.unary()
		if !m.Ok() {
			p.ps.Pos = mark
			return m
		}
		return peg.Match(ast.Not(m.Value()))
	}
	return p.unary()
}

// unary := atom ('?' | '*' | '+')?
func (p *Parser) unary() peg.Result[*ast.Matcher] {
	m := p.atom()
	if !m.Ok() {
		return m
	}
	switch p.peek() {
	case '?':
		p.ps.Pos++
		return peg.Match(ast.Opt(m.Value()))
	case '*':
		p.ps.Pos++
		return peg.Match(ast.Many(m.Value()))
	case '+':
		p.ps.Pos++
		return peg.Match(ast.Some(m.Value()))
	}
	return m
}

// atom := group | capture | action | primitive
func (p *Parser) atom() peg.Result[*ast.Matcher] {
	switch p.peek() {
	case '(':
		return p.group()
	case '<':
		return p.capture()
	case '{':
		return p.action()
	case '\'':
		return p.charLit()
	case '"':
		return p.strLit()
	case '[':
		return p.charClass()
	case '.':
		p.ps.Pos++
		return peg.Match(ast.Any())
	case ';':
		p.ps.Pos++
		return peg.Match(ast.Empty())
	}
	return p.ruleRef()
}

// group := '(' _ alt _ ')'
func (p *Parser) group() peg.Result[*ast.Matcher] {
	mark := p.ps.Pos
	if !p.eat('(') {
		return peg.Fail[*ast.Matcher]()
	}
	p.skip()
	inner := p.alt()
	if !inner.Ok() {
		p.ps.Pos = mark
		return peg.Fail[*ast.Matcher]()
	}
	p.skip()
	if !p.eat(')') {
		p.ps.Pos = mark
		return peg.Fail[*ast.Matcher]()
	}
	return inner
}

// capture := '<' _ alt _ '>'
func (p *Parser) capture() peg.Result[*ast.Matcher] {
	mark := p.ps.Pos
	if !p.eat('<') {
		return peg.Fail[*ast.Matcher]()
	}
	p.skip()
	inner := p.alt()
	if !inner.Ok() {
		p.ps.Pos = mark
		return peg.Fail[*ast.Matcher]()
	}
	p.skip()
	if !p.eat('>') {
		p.ps.Pos = mark
		return peg.Fail[*ast.Matcher]()
	}
	return peg.Match(ast.Capt(inner.Value()))
}

// action := '{' balanced '}'
//
// The text between the outer braces is taken verbatim, nested braces
// included. Braces inside target-language string literals are not understood;
// they count toward the balance.
func (p *Parser) action() peg.Result[*ast.Matcher] {
	mark := p.ps.Pos
	if !p.eat('{') {
		return peg.Fail[*ast.Matcher]()
	}
	start := p.ps.Pos
	depth := 0
	for {
		c := p.peek()
		if c == buffer.EOF {
			p.ps.Pos = mark
			return peg.Fail[*ast.Matcher]()
		}
		if c == '{' {
			depth++
		}
		if c == '}' {
			if depth == 0 {
				break
			}
			depth--
		}
		p.ps.Pos++
	}
	src, _ := p.ps.Substring(start, p.ps.Pos-start)
	p.ps.Pos++
	return peg.Match(ast.Action(src))
}

// litChar matches one character of a literal or class body: an escape, or any
// byte other than the active delimiter and backslash.
func (p *Parser) litChar(delim byte) (byte, bool) {
	c := p.peek()
	switch c {
	case buffer.EOF, delim:
		return 0, false
	case '\\':
		var v byte
		switch e := p.peekAt(1); e {
		case 'n':
			v = '\n'
		case 'r':
			v = '\r'
		case 't':
			v = '\t'
		case '\'', '"', '\\', '[', ']':
			v = e
		default:
			return 0, false
		}
		p.ps.Pos += 2
		return v, true
	}
	p.ps.Pos++
	return c, true
}

// char_lit := "'" char "'"
func (p *Parser) charLit() peg.Result[*ast.Matcher] {
	mark := p.ps.Pos
	if !p.eat('\'') {
		return peg.Fail[*ast.Matcher]()
	}
	c, ok := p.litChar('\'')
	if !ok || !p.eat('\'') {
		p.ps.Pos = mark
		return peg.Fail[*ast.Matcher]()
	}
	return peg.Match(ast.Char(c))
}

// str_lit := '"' char* '"'
func (p *Parser) strLit() peg.Result[*ast.Matcher] {
	mark := p.ps.Pos
	if !p.eat('"') {
		return peg.Fail[*ast.Matcher]()
	}
	var bs []byte
	for {
		c, ok := p.litChar('"')
		if !ok {
			break
		}
		bs = append(bs, c)
	}
	if !p.eat('"') {
		p.ps.Pos = mark
		return peg.Fail[*ast.Matcher]()
	}
	return peg.Match(ast.Str(string(bs)))
}

// char_class := '[' (char ('-' char)?)* ']'
//
// A '-' that is not followed by a class character is an ordinary member.
func (p *Parser) charClass() peg.Result[*ast.Matcher] {
	mark := p.ps.Pos
	if !p.eat('[') {
		return peg.Fail[*ast.Matcher]()
	}
	var spans []ast.Span
	for p.peek() != ']' {
		lo, ok := p.litChar(']')
		if !ok {
			p.ps.Pos = mark
			return peg.Fail[*ast.Matcher]()
		}
		hi := lo
		if p.peek() == '-' {
			dash := p.ps.Pos
			p.ps.Pos++
			if h, ok := p.litChar(']'); ok {
				hi = h
			} else {
				p.ps.Pos = dash
			}
		}
		spans = append(spans, ast.Span{Lo: lo, Hi: hi})
	}
	p.ps.Pos++
	return peg.Match(ast.Ranges(spans...))
}

// rule_ref := ident (':' _ ident)?
//
// An identifier that turns out to start the next rule header is rejected so
// the enclosing sequence ends before it.
func (p *Parser) ruleRef() peg.Result[*ast.Matcher] {
	mark := p.ps.Pos
	name, ok := p.ident()
	if !ok {
		return peg.Fail[*ast.Matcher]()
	}
	bind := ""
	if p.peek() == ':' {
		colon := p.ps.Pos
		p.ps.Pos++
		p.skip()
		if b, ok := p.ident(); ok {
			bind = b
		} else {
			p.ps.Pos = colon
		}
	}
	if p.headerFollows() {
		p.ps.Pos = mark
		return peg.Fail[*ast.Matcher]()
	}
	if bind != "" {
		return peg.Match(ast.Bind(name, bind))
	}
	return peg.Match(ast.Ref(name))
}

// headerFollows probes, without consuming, whether the input ahead reads as
// the remainder of a rule header: an optional type expression followed by
// '='. When it does, the identifier just parsed begins the next rule rather
// than referencing one in the current body. The probe stays on the current
// line; a type expression never crosses a newline.
func (p *Parser) headerFollows() bool {
	for i := p.ps.Pos; ; i++ {
		c, err := p.ps.At(i)
		if err != nil || c == buffer.EOF {
			return false
		}
		switch {
		case c == '=':
			return true
		case c == ' ' || c == '\t':
		case isTypeChar(c):
		default:
			return false
		}
	}
}

// isTypeChar reports bytes that may appear in a verbatim type expression.
func isTypeChar(c byte) bool {
	if isIdentChar(c) {
		return true
	}
	switch c {
	case ':', '<', '>', '*', '&', ',', '[', ']', '(', ')':
		return true
	}
	return false
}
