package generator

import (
	"errors"
	"strings"
	"testing"

	"github.com/egglang/egg/pkgs/parser"
)

// generate parses input and compiles it, failing the test on either error.
func generate(t *testing.T, input, name string) string {
	t.Helper()
	g, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse failed: %v\nInput:\n%s", err, input)
	}
	out, err := Generate(g, Options{GrammarName: name})
	if err != nil {
		t.Fatalf("generate failed: %v\nInput:\n%s", err, input)
	}
	return out
}

// assertContains checks each fragment in order-independent fashion.
func assertContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, f := range fragments {
		if !strings.Contains(out, f) {
			t.Errorf("generated header is missing %q\n---\n%s", f, out)
		}
	}
}

func TestGenerateHeaderScaffold(t *testing.T) {
	out := generate(t, "S = 'a'", "calc")

	assertContains(t, out,
		"#ifndef EGG_CALC_HPP",
		"#define EGG_CALC_HPP",
		`#include "parse.hpp"`,
		"namespace calc {",
		"} // namespace calc",
		"#endif // EGG_CALC_HPP",
	)
}

func TestGenerateWithoutNamespace(t *testing.T) {
	out := generate(t, "S = 'a'", "")

	if strings.Contains(out, "namespace") {
		t.Errorf("namespace emitted for empty grammar name:\n%s", out)
	}
	assertContains(t, out, "#ifndef EGG_PARSER_HPP")
}

func TestGenerateForwardDeclarations(t *testing.T) {
	// Mutual recursion in either order relies on the forward declarations.
	out := generate(t, "a = b | 'x'\nb = a\n", "")

	decls := strings.Index(out, "Result<value> a(state& ps);")
	body := strings.Index(out, "Result<value> a(state& ps) {")
	if decls == -1 || body == -1 || decls > body {
		t.Errorf("forward declaration must precede the definition:\n%s", out)
	}
	assertContains(t, out, "Result<value> b(state& ps);")
}

func TestGenerateRuleShape(t *testing.T) {
	out := generate(t, "S = 'a'* 'b'", "")

	assertContains(t, out,
		"Result<value> S(state& ps) {",
		"auto psStart = ps.pos;",
		"value psVal{};",
		"for (;;) {",
		"if (ps[ps.pos] != 'a') goto psFail1;",
		"if (ps[ps.pos] != 'b') goto psFail0;",
		"return match(psVal);",
		"ps.pos = psStart;",
		"return fail<value>();",
	)
}

func TestGenerateTypedRuleWithCapture(t *testing.T) {
	out := generate(t, "num : int = < [0-9]+ > { psVal = atoi(psCapture.c_str()); }", "")

	assertContains(t, out,
		"Result<int> num(state& ps) {",
		"int psVal{};",
		"auto psCatch = ps.pos;",
		"auto psCatchLen = ps.pos - psCatch;",
		"auto psCapture = ps.string(psCatch, psCatchLen);",
		"psVal = atoi(psCapture.c_str());",
		"return fail<int>();",
	)
}

func TestGenerateBoundReference(t *testing.T) {
	out := generate(t, "num : int = [0-9]\nuse : int = num:n { psVal = n; }", "")

	assertContains(t, out,
		"auto psRes1 = num(ps);",
		"if (!psRes1.ok) goto psFail0;",
		"auto n = psRes1.value;",
	)
}

func TestGenerateUnboundReference(t *testing.T) {
	out := generate(t, "a = b\nb = 'x'", "")

	assertContains(t, out, "if (!b(ps).ok) goto psFail0;")
}

func TestGenerateStringLiteral(t *testing.T) {
	out := generate(t, `S = "abc"`, "")

	assertContains(t, out,
		"if (ps[ps.pos] != 'a') goto psFail0;",
		"if (ps[ps.pos + 1] != 'b') goto psFail0;",
		"if (ps[ps.pos + 2] != 'c') goto psFail0;",
		"ps.pos += 3;",
	)
}

func TestGenerateCharClass(t *testing.T) {
	out := generate(t, "S = [a-z_]", "")

	assertContains(t, out,
		"auto psChr1 = ps[ps.pos];",
		"if (!((psChr1 >= 'a' && psChr1 <= 'z') || psChr1 == '_')) goto psFail0;",
	)
}

func TestGenerateAlternation(t *testing.T) {
	out := generate(t, "S = 'a' | 'b'", "")

	assertContains(t, out,
		"auto psPos1 = ps.pos;",
		"goto psOk1;",
		"psFail1_0:",
		"ps.pos = psPos1;",
		"psFail1_1:",
		"goto psFail0;",
		"psOk1:;",
	)
}

func TestGenerateLookahead(t *testing.T) {
	out := generate(t, "S = &'a' !'b' .", "")

	// Both lookaheads restore the entry position on success.
	if got := strings.Count(out, "ps.pos = psPos"); got < 3 {
		t.Errorf("expected at least 3 position restores, got %d:\n%s", got, out)
	}
	assertContains(t, out,
		"if (ps[ps.pos] == '\\0') goto psFail0;",
	)
}

func TestGenerateEscapedChars(t *testing.T) {
	out := generate(t, `S = '\n' '\t' '\\' '\''`, "")

	assertContains(t, out,
		`if (ps[ps.pos] != '\n') goto psFail0;`,
		`if (ps[ps.pos] != '\t') goto psFail0;`,
		`if (ps[ps.pos] != '\\') goto psFail0;`,
		`if (ps[ps.pos] != '\'') goto psFail0;`,
	)
}

func TestGeneratePrePostBlocks(t *testing.T) {
	out := generate(t, "{ #include <cstdlib> }\nS = 'a'\n\n{ int main() { return 0; } }\n", "")

	pre := strings.Index(out, "#include <cstdlib>")
	decl := strings.Index(out, "Result<value> S(state& ps);")
	post := strings.Index(out, "int main() { return 0; }")
	if pre == -1 || decl == -1 || post == -1 {
		t.Fatalf("missing pre, declaration or post:\n%s", out)
	}
	if !(pre < decl && decl < post) {
		t.Errorf("emission order wrong: pre=%d decl=%d post=%d\n%s", pre, decl, post, out)
	}
}

func TestGenerateUnresolvedReference(t *testing.T) {
	g, err := parser.Parse(strings.NewReader("a = nope"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Generate(g, Options{})
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *GenerationError", err)
	}
	if gerr.Rule != "a" || gerr.Ref != "nope" {
		t.Errorf("GenerationError = %+v, want rule a / ref nope", gerr)
	}
}

func TestRuntimeSource(t *testing.T) {
	src := RuntimeSource()
	for _, want := range []string{
		"EGG_PARSE_HPP",
		"struct state",
		"struct value",
		"struct Result",
		"forget_to",
		"in_range",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("runtime header is missing %q", want)
		}
	}
}
