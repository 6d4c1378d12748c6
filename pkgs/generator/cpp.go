package generator

import (
	"fmt"
	"strings"

	"github.com/egglang/egg/pkgs/ast"
)

// ruleEmitter writes the body of one rule function. Every matcher form saves
// the read head where it must be able to roll back, and failure is routed
// through goto targets whose handlers restore the position they saved; a
// failing matcher therefore always leaves ps.pos where the enclosing matcher
// saw it on entry.
type ruleEmitter struct {
	w *writer
	n int // counter for unique labels and locals
}

func newRuleEmitter(w *writer) *ruleEmitter {
	return &ruleEmitter{w: w}
}

func (e *ruleEmitter) next() int {
	e.n++
	return e.n
}

// emitRule writes the full function for r:
//
//	Result<T> name(state& ps) {
//		auto psStart = ps.pos;
//		T psVal{};
//		... body, failures jump to psFail0 ...
//		return match(psVal);
//	psFail0:
//		ps.pos = psStart;
//		return fail<T>();
//	}
//
// psStart, psVal and ps are in scope for semantic actions.
func (e *ruleEmitter) emitRule(r *ast.Rule) {
	typ := returnType(r)
	e.w.linef("Result<%s> %s(state& ps) {", typ, r.Name)
	e.w.in()
	e.w.line("auto psStart = ps.pos;")
	e.w.linef("%s psVal{};", typ)
	e.w.line("{")
	e.w.in()
	e.emit(r.Body, "psFail0")
	e.w.out()
	e.w.line("}")
	e.w.line("return match(psVal);")
	e.w.label("psFail0")
	e.w.line("ps.pos = psStart;")
	e.w.linef("return fail<%s>();", typ)
	e.w.out()
	e.w.line("}")
}

// emit writes the code for m. On failure control jumps to the fail label; the
// handler behind that label restores ps.pos, so partial consumption on the
// failure path needs no local cleanup.
func (e *ruleEmitter) emit(m *ast.Matcher, fail string) {
	switch m.Kind {
	case ast.KindChar:
		e.w.linef("if (ps[ps.pos] != %s) goto %s;", cppChar(m.Ch), fail)
		e.w.line("++ps.pos;")

	case ast.KindStr:
		for i := 0; i < len(m.Text); i++ {
			if i == 0 {
				e.w.linef("if (ps[ps.pos] != %s) goto %s;", cppChar(m.Text[0]), fail)
			} else {
				e.w.linef("if (ps[ps.pos + %d] != %s) goto %s;", i, cppChar(m.Text[i]), fail)
			}
		}
		e.w.linef("ps.pos += %d;", len(m.Text))

	case ast.KindRange:
		if len(m.Spans) == 0 {
			e.w.linef("goto %s;", fail)
			return
		}
		id := e.next()
		e.w.line("{")
		e.w.in()
		e.w.linef("auto psChr%d = ps[ps.pos];", id)
		e.w.linef("if (!(%s)) goto %s;", spanTest(fmt.Sprintf("psChr%d", id), m.Spans), fail)
		e.w.line("++ps.pos;")
		e.w.out()
		e.w.line("}")

	case ast.KindAny:
		e.w.linef("if (ps[ps.pos] == '\\0') goto %s;", fail)
		e.w.line("++ps.pos;")

	case ast.KindEmpty:
		// Matches without consuming; nothing beyond the surrounding
		// scaffolding.

	case ast.KindAction:
		e.w.line("{")
		e.w.in()
		e.w.raw(m.Text)
		e.w.out()
		e.w.line("}")

	case ast.KindRule:
		if m.Bind == "" {
			e.w.linef("if (!%s(ps).ok) goto %s;", m.Name, fail)
			return
		}
		id := e.next()
		e.w.linef("auto psRes%d = %s(ps);", id, m.Name)
		e.w.linef("if (!psRes%d.ok) goto %s;", id, fail)
		e.w.linef("auto %s = psRes%d.value;", m.Bind, id)

	case ast.KindOpt:
		id := e.next()
		e.w.line("{")
		e.w.in()
		e.w.linef("auto psPos%d = ps.pos;", id)
		e.w.line("{")
		e.w.in()
		e.emit(m.Child, fmt.Sprintf("psFail%d", id))
		e.w.out()
		e.w.line("}")
		e.w.linef("goto psOk%d;", id)
		e.w.label(fmt.Sprintf("psFail%d", id))
		e.w.linef("ps.pos = psPos%d;", id)
		e.w.labelEnd(fmt.Sprintf("psOk%d", id))
		e.w.out()
		e.w.line("}")

	case ast.KindMany:
		e.emitLoop(m.Child)

	case ast.KindSome:
		e.emit(m.Child, fail)
		e.emitLoop(m.Child)

	case ast.KindSeq:
		for _, c := range m.Children {
			e.emit(c, fail)
		}

	case ast.KindAlt:
		id := e.next()
		e.w.line("{")
		e.w.in()
		e.w.linef("auto psPos%d = ps.pos;", id)
		for bi, branch := range m.Children {
			branchFail := fmt.Sprintf("psFail%d_%d", id, bi)
			e.w.line("{")
			e.w.in()
			e.emit(branch, branchFail)
			e.w.linef("goto psOk%d;", id)
			e.w.out()
			e.w.line("}")
			e.w.label(branchFail)
			e.w.linef("ps.pos = psPos%d;", id)
		}
		e.w.linef("goto %s;", fail)
		e.w.labelEnd(fmt.Sprintf("psOk%d", id))
		e.w.out()
		e.w.line("}")

	case ast.KindLook:
		id := e.next()
		e.w.line("{")
		e.w.in()
		e.w.linef("auto psPos%d = ps.pos;", id)
		e.w.line("{")
		e.w.in()
		e.emit(m.Child, fail)
		e.w.out()
		e.w.line("}")
		e.w.linef("ps.pos = psPos%d;", id)
		e.w.out()
		e.w.line("}")

	case ast.KindNot:
		id := e.next()
		e.w.line("{")
		e.w.in()
		e.w.linef("auto psPos%d = ps.pos;", id)
		e.w.line("{")
		e.w.in()
		e.emit(m.Child, fmt.Sprintf("psFail%d", id))
		e.w.out()
		e.w.line("}")
		e.w.linef("ps.pos = psPos%d;", id)
		e.w.linef("goto %s;", fail)
		e.w.label(fmt.Sprintf("psFail%d", id))
		e.w.linef("ps.pos = psPos%d;", id)
		e.w.out()
		e.w.line("}")

	case ast.KindCapt:
		e.w.line("auto psCatch = ps.pos;")
		e.emit(m.Child, fail)
		e.w.line("auto psCatchLen = ps.pos - psCatch;")
		e.w.line("auto psCapture = ps.string(psCatch, psCatchLen);")
	}
}

// emitLoop writes the greedy repetition of m: iterate until m fails, rolling
// each failed iteration back to its own start.
func (e *ruleEmitter) emitLoop(m *ast.Matcher) {
	id := e.next()
	e.w.line("for (;;) {")
	e.w.in()
	e.w.linef("auto psPos%d = ps.pos;", id)
	e.w.line("{")
	e.w.in()
	e.emit(m, fmt.Sprintf("psFail%d", id))
	e.w.out()
	e.w.line("}")
	e.w.line("continue;")
	e.w.label(fmt.Sprintf("psFail%d", id))
	e.w.linef("ps.pos = psPos%d;", id)
	e.w.line("break;")
	e.w.out()
	e.w.line("}")
}

// spanTest renders the membership test of a character class.
func spanTest(v string, spans []ast.Span) string {
	tests := make([]string, 0, len(spans))
	for _, s := range spans {
		if s.Lo == s.Hi {
			tests = append(tests, fmt.Sprintf("%s == %s", v, cppChar(s.Lo)))
		} else {
			tests = append(tests, fmt.Sprintf("(%s >= %s && %s <= %s)", v, cppChar(s.Lo), v, cppChar(s.Hi)))
		}
	}
	return strings.Join(tests, " || ")
}

// cppChar renders a byte as a C++ character literal.
func cppChar(c byte) string {
	switch c {
	case '\n':
		return `'\n'`
	case '\r':
		return `'\r'`
	case '\t':
		return `'\t'`
	case '\'':
		return `'\''`
	case '\\':
		return `'\\'`
	case 0:
		return `'\0'`
	}
	if c >= 0x20 && c < 0x7f {
		return "'" + string(c) + "'"
	}
	return fmt.Sprintf(`'\x%02x'`, c)
}
