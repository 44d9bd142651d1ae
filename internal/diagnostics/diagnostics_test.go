package diagnostics

import (
	"strings"
	"testing"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeLexical, 1},
		{CodeSyntax, 2},
		{CodeUndefinedSymbol, 3},
		{CodeRedefinition, 4},
		{CodeArgument, 5},
		{CodeExpressionType, 6},
		{CodeSemanticOther, 10},
		{CodeRuntimeArgType, 25},
		{CodeRuntimeTypeMismatch, 26},
		{CodeInternal, 99},
	}
	for _, c := range cases {
		e := New(c.code, Position{Line: 1}, "boom", "", "", "")
		if e.ExitCode() != c.want {
			t.Fatalf("code %v: exit = %d, want %d", c.code, e.ExitCode(), c.want)
		}
	}
}

func TestFormatIncludesCaret(t *testing.T) {
	e := New(CodeSyntax, Position{Line: 2, Column: 5}, "unexpected token", "IDENT(x)", "class Main {\n  x\n}", "prog.ifj")
	out := e.Format(false)
	if !containsAll(out, "prog.ifj:2:5", "x", "^", "unexpected token", "IDENT(x)") {
		t.Fatalf("format output missing expected parts:\n%s", out)
	}
}

func TestFormatWithoutColumnOmitsCaretLine(t *testing.T) {
	e := New(CodeInternal, Position{Line: 1}, "bug", "", "", "")
	out := e.Format(false)
	if containsAll(out, "^") {
		t.Fatalf("did not expect a caret without a column:\n%s", out)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
