package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/egglang/egg/pkgs/buffer"
)

// ParseError describes a failed grammar parse in terms of the furthest input
// position the parser examined.
type ParseError struct {
	Offset   int    // bytes into the input
	Line     int    // 1-based line number
	LineText string // the offending line, without its newline
	Column   int    // 0-based column of Offset within the line
}

// Error renders the three-line report: the failure offset, the offending line
// with its line number, and a caret under the failure column.
func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Parse failure %d bytes into the input:\n", e.Offset)
	prefix := fmt.Sprintf("line %d: ", e.Line)
	b.WriteString(prefix)
	b.WriteString(e.LineText)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", len(prefix)+e.Column))
	b.WriteByte('^')
	return b.String()
}

// Report maps the buffer's furthest read position to a line-and-column error.
// The backward scan for the line start is the one access that can step into a
// forgotten range; the buffer's discarded-newline counter keeps the line
// number correct when it does.
func Report(ps *buffer.Buffer) *ParseError {
	end := ps.MaxRead()

	lineStart := 0
	for i := end - 1; i >= 0; i-- {
		c, err := ps.At(i)
		if err != nil {
			var fr *buffer.ForgottenRangeError
			if errors.As(err, &fr) {
				lineStart = fr.Available
			}
			break
		}
		if c == '\n' {
			lineStart = i + 1
			break
		}
	}

	lineEnd := lineStart
	for {
		c, err := ps.At(lineEnd)
		if err != nil || c == '\n' || c == buffer.EOF {
			break
		}
		lineEnd++
	}
	text, _ := ps.Substring(lineStart, lineEnd-lineStart)

	line := 1
	for i := 0; i < lineStart; {
		c, err := ps.At(i)
		if err != nil {
			var fr *buffer.ForgottenRangeError
			if !errors.As(err, &fr) {
				break
			}
			line += fr.NewlinesDiscarded
			i = fr.Available
			continue
		}
		if c == '\n' {
			line++
		}
		i++
	}

	return &ParseError{Offset: end, Line: line, LineText: text, Column: end - lineStart}
}
