package ast

// Builder helpers for constructing matcher trees. The parser assembles every
// grammar through these, and tests use them to state expected trees tersely.

// Char creates a single-byte matcher.
func Char(c byte) *Matcher {
	return &Matcher{Kind: KindChar, Ch: c}
}

// Str creates a literal string matcher.
func Str(s string) *Matcher {
	return &Matcher{Kind: KindStr, Text: s}
}

// Ranges creates a character-class matcher over the given intervals.
func Ranges(spans ...Span) *Matcher {
	return &Matcher{Kind: KindRange, Spans: spans}
}

// Ref creates an unbound rule reference.
func Ref(name string) *Matcher {
	return &Matcher{Kind: KindRule, Name: name}
}

// Bind creates a rule reference whose return value is bound to v.
func Bind(name, v string) *Matcher {
	return &Matcher{Kind: KindRule, Name: name, Bind: v}
}

// Any creates the any-byte matcher.
func Any() *Matcher {
	return &Matcher{Kind: KindAny}
}

// Empty creates the matcher that succeeds without consuming.
func Empty() *Matcher {
	return &Matcher{Kind: KindEmpty}
}

// Action creates a semantic action carrying verbatim source text.
func Action(src string) *Matcher {
	return &Matcher{Kind: KindAction, Text: src}
}

// Opt wraps m in zero-or-one.
func Opt(m *Matcher) *Matcher {
	return &Matcher{Kind: KindOpt, Child: m}
}

// Many wraps m in greedy zero-or-more.
func Many(m *Matcher) *Matcher {
	return &Matcher{Kind: KindMany, Child: m}
}

// Some wraps m in greedy one-or-more.
func Some(m *Matcher) *Matcher {
	return &Matcher{Kind: KindSome, Child: m}
}

// Seq concatenates matchers. A singleton sequence simplifies to its sole
// element and an empty one to Empty.
func Seq(ms ...*Matcher) *Matcher {
	switch len(ms) {
	case 0:
		return Empty()
	case 1:
		return ms[0]
	}
	return &Matcher{Kind: KindSeq, Children: ms}
}

// Alt builds an ordered choice. A singleton choice simplifies to its sole
// branch.
func Alt(ms ...*Matcher) *Matcher {
	if len(ms) == 1 {
		return ms[0]
	}
	return &Matcher{Kind: KindAlt, Children: ms}
}

// Look wraps m in a positive lookahead.
func Look(m *Matcher) *Matcher {
	return &Matcher{Kind: KindLook, Child: m}
}

// Not wraps m in a negative lookahead.
func Not(m *Matcher) *Matcher {
	return &Matcher{Kind: KindNot, Child: m}
}

// Capt wraps m in a capture.
func Capt(m *Matcher) *Matcher {
	return &Matcher{Kind: KindCapt, Child: m}
}
