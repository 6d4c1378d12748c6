// Package generator emits a self-contained C++ header implementing a grammar
// as a recursive-descent PEG parser. Each rule becomes one function over the
// shared parser state; the header links only against the runtime in
// parse.hpp.
package generator

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/egglang/egg/pkgs/ast"
)

// Options configures one generation run.
type Options struct {
	// GrammarName names the emitted namespace. When empty, no namespace
	// block is emitted.
	GrammarName string
}

// headerTemplate is the static scaffolding around the generated rules: the
// include guard, the runtime include, the optional namespace, the verbatim
// pre and post blocks and the forward declarations that let rules refer to
// each other in either order.
const headerTemplate = `#ifndef {{.Guard}}
#define {{.Guard}}

#include "parse.hpp"
{{if .Namespace}}
namespace {{.Namespace}} {
{{end}}{{if .Pre}}
{{.Pre}}
{{end}}
{{- range .Decls}}
{{.}}
{{- end}}

{{.Body}}
{{- if .Post}}
{{.Post}}
{{end}}
{{- if .Namespace}}
} // namespace {{.Namespace}}
{{end}}
#endif // {{.Guard}}
`

type headerData struct {
	Guard     string
	Namespace string
	Pre       string
	Post      string
	Decls     []string
	Body      string
}

// Generate compiles g into a C++ header. Every rule reference must resolve;
// an unresolved one is reported instead of emitting code that cannot compile.
func Generate(g *ast.Grammar, opts Options) (string, error) {
	if err := checkReferences(g); err != nil {
		return "", err
	}

	decls := make([]string, 0, len(g.Rules))
	for _, r := range g.Rules {
		decls = append(decls, fmt.Sprintf("Result<%s> %s(state& ps);", returnType(r), r.Name))
	}

	w := newWriter("\t")
	for i, r := range g.Rules {
		if i > 0 {
			w.line("")
		}
		newRuleEmitter(w).emitRule(r)
	}

	tmpl, err := template.New("header").Parse(headerTemplate)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	err = tmpl.Execute(&out, headerData{
		Guard:     guardName(opts.GrammarName),
		Namespace: opts.GrammarName,
		Pre:       strings.TrimSpace(g.Pre),
		Post:      strings.TrimSpace(g.Post),
		Decls:     decls,
		Body:      strings.TrimRight(w.String(), "\n"),
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// returnType maps a rule to the C++ type its function returns. Untyped rules
// return the unit value.
func returnType(r *ast.Rule) string {
	if r.Type == "" {
		return "value"
	}
	return r.Type
}

// guardName derives the include guard from the grammar name.
func guardName(name string) string {
	if name == "" {
		return "EGG_PARSER_HPP"
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return "EGG_" + b.String() + "_HPP"
}

// checkReferences verifies that every rule reference resolves in the index.
func checkReferences(g *ast.Grammar) error {
	for _, r := range g.Rules {
		if err := checkMatcherRefs(g, r.Name, r.Body); err != nil {
			return err
		}
	}
	return nil
}

func checkMatcherRefs(g *ast.Grammar, rule string, m *ast.Matcher) error {
	switch m.Kind {
	case ast.KindRule:
		if _, ok := g.Lookup(m.Name); !ok {
			return newUnresolvedRefError(rule, m.Name)
		}
	case ast.KindOpt, ast.KindMany, ast.KindSome, ast.KindLook, ast.KindNot, ast.KindCapt:
		return checkMatcherRefs(g, rule, m.Child)
	case ast.KindSeq, ast.KindAlt:
		for _, c := range m.Children {
			if err := checkMatcherRefs(g, rule, c); err != nil {
				return err
			}
		}
	}
	return nil
}
