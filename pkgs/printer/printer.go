// Package printer re-emits a grammar tree in Egg syntax. Its output parses
// back to an equal tree, which makes it the debugging dual of the generator.
package printer

import (
	"fmt"
	"strings"

	"github.com/egglang/egg/pkgs/ast"
)

// Matcher precedence, loosest first. Parentheses are inserted whenever a
// child binds looser than its context requires.
const (
	precAlt = iota
	precSeq
	precUnary
)

// Print renders g as Egg grammar source.
func Print(g *ast.Grammar) string {
	var b strings.Builder
	if g.Pre != "" {
		fmt.Fprintf(&b, "{%s}\n\n", g.Pre)
	}
	for _, r := range g.Rules {
		if r.Type != "" {
			fmt.Fprintf(&b, "%s : %s = ", r.Name, r.Type)
		} else {
			fmt.Fprintf(&b, "%s = ", r.Name)
		}
		writeMatcher(&b, r.Body, precAlt)
		b.WriteByte('\n')
	}
	if g.Post != "" {
		fmt.Fprintf(&b, "\n{%s}\n", g.Post)
	}
	return b.String()
}

func writeMatcher(b *strings.Builder, m *ast.Matcher, context int) {
	switch m.Kind {
	case ast.KindChar:
		fmt.Fprintf(b, "'%s'", escapeChar(m.Ch))

	case ast.KindStr:
		b.WriteByte('"')
		for i := 0; i < len(m.Text); i++ {
			b.WriteString(escapeChar(m.Text[i]))
		}
		b.WriteByte('"')

	case ast.KindRange:
		b.WriteByte('[')
		for _, s := range m.Spans {
			b.WriteString(escapeChar(s.Lo))
			if s.Hi != s.Lo {
				b.WriteByte('-')
				b.WriteString(escapeChar(s.Hi))
			}
		}
		b.WriteByte(']')

	case ast.KindRule:
		b.WriteString(m.Name)
		if m.Bind != "" {
			b.WriteByte(':')
			b.WriteString(m.Bind)
		}

	case ast.KindAny:
		b.WriteByte('.')

	case ast.KindEmpty:
		b.WriteByte(';')

	case ast.KindAction:
		b.WriteByte('{')
		b.WriteString(m.Text)
		b.WriteByte('}')

	case ast.KindOpt:
		writeMatcher(b, m.Child, precUnary)
		b.WriteByte('?')

	case ast.KindMany:
		writeMatcher(b, m.Child, precUnary)
		b.WriteByte('*')

	case ast.KindSome:
		writeMatcher(b, m.Child, precUnary)
		b.WriteByte('+')

	case ast.KindLook:
		b.WriteByte('&')
		writeMatcher(b, m.Child, precUnary)

	case ast.KindNot:
		b.WriteByte('!')
		writeMatcher(b, m.Child, precUnary)

	case ast.KindCapt:
		b.WriteString("< ")
		writeMatcher(b, m.Child, precAlt)
		b.WriteString(" >")

	case ast.KindSeq:
		if context > precSeq {
			b.WriteByte('(')
			defer b.WriteByte(')')
		}
		for i, c := range m.Children {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeMatcher(b, c, precSeq)
		}

	case ast.KindAlt:
		if context > precAlt {
			b.WriteByte('(')
			defer b.WriteByte(')')
		}
		for i, c := range m.Children {
			if i > 0 {
				b.WriteString(" | ")
			}
			writeMatcher(b, c, precSeq)
		}
	}
}

// escapeChar renders one byte for a literal or class body. Every escapable
// byte is escaped regardless of the surrounding delimiter, which is always
// accepted on re-parse.
func escapeChar(c byte) string {
	switch c {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\\', '\'', '"', '[', ']':
		return `\` + string(c)
	}
	return string(c)
}
