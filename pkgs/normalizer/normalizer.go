// Package normalizer rewrites grammar trees into canonical form. The
// rewrites preserve PEG semantics exactly: choice order, repetition greed and
// failure points are unchanged, and semantic actions keep their position
// between their neighbors.
package normalizer

import "github.com/egglang/egg/pkgs/ast"

// Normalize canonicalizes every rule body in place.
func Normalize(g *ast.Grammar) {
	for _, r := range g.Rules {
		r.Body = normalize(r.Body)
	}
}

// normalize rewrites bottom-up, applying the local rules at each node until
// none fires.
func normalize(m *ast.Matcher) *ast.Matcher {
	switch m.Kind {
	case ast.KindOpt, ast.KindMany, ast.KindSome, ast.KindLook, ast.KindNot, ast.KindCapt:
		m.Child = normalize(m.Child)
	case ast.KindSeq, ast.KindAlt:
		for i, c := range m.Children {
			m.Children[i] = normalize(c)
		}
	}
	for {
		n, changed := rewrite(m)
		if !changed {
			return n
		}
		m = n
	}
}

// rewrite applies one round of local rules to m. Children are already in
// canonical form.
func rewrite(m *ast.Matcher) (*ast.Matcher, bool) {
	switch m.Kind {
	case ast.KindStr:
		// A zero-length literal matches without consuming.
		if m.Text == "" {
			return ast.Empty(), true
		}

	case ast.KindOpt, ast.KindMany, ast.KindSome:
		if m.Child.Kind == ast.KindEmpty {
			return ast.Empty(), true
		}

	case ast.KindLook:
		if m.Child.Kind == ast.KindEmpty {
			return ast.Empty(), true
		}
		// Not(Empty) is the canonical always-fail matcher and stays as is.

	case ast.KindSeq:
		if flat, changed := splice(m.Children, ast.KindSeq); changed {
			return ast.Seq(flat...), true
		}
		if merged, changed := mergeLiterals(m.Children); changed {
			return ast.Seq(merged...), true
		}
		if len(m.Children) == 0 {
			return ast.Empty(), true
		}
		if len(m.Children) == 1 {
			return m.Children[0], true
		}

	case ast.KindAlt:
		if flat, changed := splice(m.Children, ast.KindAlt); changed {
			return ast.Alt(flat...), true
		}
		if merged, changed := mergeRanges(m.Children); changed {
			return ast.Alt(merged...), true
		}
		if len(m.Children) == 1 {
			return m.Children[0], true
		}
	}
	return m, false
}

// splice replaces children of the given kind by their grandchildren in place.
func splice(children []*ast.Matcher, kind ast.Kind) ([]*ast.Matcher, bool) {
	nested := false
	for _, c := range children {
		if c.Kind == kind {
			nested = true
			break
		}
	}
	if !nested {
		return children, false
	}
	flat := make([]*ast.Matcher, 0, len(children))
	for _, c := range children {
		if c.Kind == kind {
			flat = append(flat, c.Children...)
		} else {
			flat = append(flat, c)
		}
	}
	return flat, true
}

// mergeLiterals fuses neighboring Char and Str children of a sequence into a
// single Str. Anything else, actions and bound references included, breaks
// adjacency and is left untouched.
func mergeLiterals(children []*ast.Matcher) ([]*ast.Matcher, bool) {
	merged := make([]*ast.Matcher, 0, len(children))
	changed := false
	for _, c := range children {
		if len(merged) > 0 {
			prev := merged[len(merged)-1]
			if pt, ok := literalText(prev); ok {
				if ct, ok := literalText(c); ok {
					merged[len(merged)-1] = ast.Str(pt + ct)
					changed = true
					continue
				}
			}
		}
		merged = append(merged, c)
	}
	return merged, changed
}

// literalText extracts the matched text of a Char or Str node.
func literalText(m *ast.Matcher) (string, bool) {
	switch m.Kind {
	case ast.KindChar:
		return string(m.Ch), true
	case ast.KindStr:
		return m.Text, true
	}
	return "", false
}

// mergeRanges fuses neighboring Range and single-Char branches of a choice
// into one Range holding their union.
func mergeRanges(children []*ast.Matcher) ([]*ast.Matcher, bool) {
	merged := make([]*ast.Matcher, 0, len(children))
	changed := false
	for _, c := range children {
		spans, ok := rangeSpans(c)
		if ok && len(merged) > 0 {
			prev := merged[len(merged)-1]
			if pspans, pok := rangeSpans(prev); pok {
				union := pspans
				for _, s := range spans {
					union = addSpan(union, s)
				}
				merged[len(merged)-1] = ast.Ranges(union...)
				changed = true
				continue
			}
		}
		merged = append(merged, c)
	}
	return merged, changed
}

// rangeSpans views a Range or single-Char node as a span list.
func rangeSpans(m *ast.Matcher) ([]ast.Span, bool) {
	switch m.Kind {
	case ast.KindChar:
		return []ast.Span{{Lo: m.Ch, Hi: m.Ch}}, true
	case ast.KindRange:
		return m.Spans, true
	}
	return nil, false
}

// addSpan adds s to the list, combining it into the first overlapping or
// touching interval. Surviving intervals keep their insertion order; an
// absorption that bridges to later intervals cascades.
func addSpan(spans []ast.Span, s ast.Span) []ast.Span {
	for i, t := range spans {
		if !touches(t, s) {
			continue
		}
		if s.Lo < t.Lo {
			t.Lo = s.Lo
		}
		if s.Hi > t.Hi {
			t.Hi = s.Hi
		}
		out := append(spans[:i:i], t)
		for _, u := range spans[i+1:] {
			out = addSpan(out, u)
		}
		return out
	}
	return append(spans, s)
}

// touches reports whether two inclusive intervals overlap or are adjacent.
func touches(a, b ast.Span) bool {
	lo, hi := b.Lo, b.Hi
	if lo > 0 {
		lo--
	}
	if hi < 255 {
		hi++
	}
	return a.Lo <= hi && a.Hi >= lo
}
