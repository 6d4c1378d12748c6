package generator

import (
	"fmt"
	"strings"
)

// writer accumulates generated source with indentation tracking. Labels are
// written one level shallower than the statements around them.
type writer struct {
	buf    strings.Builder
	depth  int
	indent string
}

func newWriter(indent string) *writer {
	return &writer{indent: indent}
}

func (w *writer) in()  { w.depth++ }
func (w *writer) out() { w.depth-- }

// line writes one indented line. An empty string writes a blank line.
func (w *writer) line(s string) {
	if s != "" {
		w.buf.WriteString(strings.Repeat(w.indent, w.depth))
		w.buf.WriteString(s)
	}
	w.buf.WriteByte('\n')
}

func (w *writer) linef(format string, args ...any) {
	w.line(fmt.Sprintf(format, args...))
}

// label writes a label line at one indent level less than the current depth.
func (w *writer) label(name string) {
	if w.depth > 0 {
		w.buf.WriteString(strings.Repeat(w.indent, w.depth-1))
	}
	w.buf.WriteString(name)
	w.buf.WriteString(":\n")
}

// labelEnd writes a label bound to an empty statement, for labels that close
// a block.
func (w *writer) labelEnd(name string) {
	if w.depth > 0 {
		w.buf.WriteString(strings.Repeat(w.indent, w.depth-1))
	}
	w.buf.WriteString(name)
	w.buf.WriteString(":;\n")
}

// raw writes a multi-line block verbatim at the current indent.
func (w *writer) raw(text string) {
	for _, l := range strings.Split(text, "\n") {
		w.line(strings.TrimRight(l, " \t"))
	}
}

func (w *writer) String() string {
	return w.buf.String()
}
