// Package ast defines the grammar tree: matchers, rules, and the grammar
// itself. The tree is data-only; the parser builds it, the normalizer rewrites
// it in place, and the generator and printer traverse it read-only.
package ast

import "fmt"

// Kind selects the matcher variant. Exactly one tag per node.
type Kind int

const (
	KindChar   Kind = iota // match one byte equal to Ch
	KindStr                // match Text byte-for-byte
	KindRange              // match one byte in the union of Spans
	KindRule               // invoke rule Name, optionally binding to Bind
	KindAny                // match any one byte except end of input
	KindEmpty              // match without consuming
	KindAction             // verbatim target-language source in Text
	KindOpt                // zero-or-one of Child
	KindMany               // zero-or-more of Child, greedy
	KindSome               // one-or-more of Child, greedy
	KindSeq                // concatenation of Children
	KindAlt                // ordered choice of Children
	KindLook               // positive lookahead, zero-width
	KindNot                // negative lookahead, zero-width
	KindCapt               // capture the substring matched by Child
)

var kindNames = [...]string{
	KindChar:   "Char",
	KindStr:    "Str",
	KindRange:  "Range",
	KindRule:   "Rule",
	KindAny:    "Any",
	KindEmpty:  "Empty",
	KindAction: "Action",
	KindOpt:    "Opt",
	KindMany:   "Many",
	KindSome:   "Some",
	KindSeq:    "Seq",
	KindAlt:    "Alt",
	KindLook:   "Look",
	KindNot:    "Not",
	KindCapt:   "Capt",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Span is one inclusive byte interval of a character class. Single characters
// have Lo == Hi.
type Span struct {
	Lo, Hi byte
}

// Matcher is one node of a grammar tree. Kind selects the variant; only that
// variant's payload fields are meaningful. Subtrees are owned by their parent
// and never shared.
type Matcher struct {
	Kind Kind

	Ch    byte   // KindChar
	Text  string // KindStr literal, KindAction source
	Spans []Span // KindRange
	Name  string // KindRule target
	Bind  string // KindRule bind variable, empty when unbound

	Child    *Matcher   // KindOpt, KindMany, KindSome, KindLook, KindNot, KindCapt
	Children []*Matcher // KindSeq, KindAlt
}

// Rule is a named, optionally typed matcher. An empty Type means the rule
// returns the unit value.
type Rule struct {
	Name string
	Type string // verbatim target-language type expression
	Body *Matcher
}

// Grammar is an ordered sequence of rules with a name index, plus the
// verbatim pre and post blocks emitted around the generated code.
type Grammar struct {
	Rules []*Rule
	Index map[string]*Rule
	Pre   string
	Post  string
}

// NewGrammar creates an empty grammar.
func NewGrammar() *Grammar {
	return &Grammar{Index: make(map[string]*Rule)}
}

// Add appends r to the ordered rule list and indexes it by name. It reports
// whether the name was already defined; on a duplicate the index entry is
// overwritten while the earlier rule stays in the list.
func (g *Grammar) Add(r *Rule) (duplicate bool) {
	_, duplicate = g.Index[r.Name]
	g.Rules = append(g.Rules, r)
	g.Index[r.Name] = r
	return duplicate
}

// Lookup resolves a rule by name.
func (g *Grammar) Lookup(name string) (*Rule, bool) {
	r, ok := g.Index[name]
	return r, ok
}
