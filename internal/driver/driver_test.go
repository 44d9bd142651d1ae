package driver

import (
	"strings"
	"testing"

	"github.com/ifj25/ifjc/internal/ast"
	"github.com/ifj25/ifjc/internal/diagnostics"
)

const prologue = "import \"ifj25\" for Ifj\n"

func TestNewScopesPrimesEveryBuiltinDeclared(t *testing.T) {
	scopes := NewScopes()
	for _, name := range []string{
		"Ifj.write$1", "Ifj.read_str$0", "Ifj.read_num$0", "Ifj.floor$1",
		"Ifj.str$1", "Ifj.length$1", "Ifj.strcmp$2", "Ifj.ord$2",
		"Ifj.chr$1", "Ifj.substring$3",
	} {
		sym := scopes.Global().Find(name)
		if sym == nil {
			t.Fatalf("missing builtin symbol %q", name)
		}
		if !sym.Declared {
			t.Fatalf("builtin %q must be declared=true", name)
		}
	}
}

func TestCompileEmitsProgramForMinimalSource(t *testing.T) {
	src := prologue + "class Main {\n  static main() {\n    return 0\n  }\n}\n"
	var out strings.Builder
	if err := Compile(strings.NewReader(src), &out, "main.ifj"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := out.String()
	for _, want := range []string{".IFJcode25", "LABEL main$0", "CALL main$0", "EXIT int@0"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q; got:\n%s", want, text)
		}
	}
}

func TestCompileRejectsMissingPrologue(t *testing.T) {
	var out strings.Builder
	err := Compile(strings.NewReader("class Main {\n}\n"), &out, "main.ifj")
	if err == nil {
		t.Fatal("expected a syntax error for a missing prologue")
	}
	if err.Code != diagnostics.CodeSyntax {
		t.Fatalf("code = %v, want CodeSyntax", err.Code)
	}
}

func TestCompileReportsUndefinedSymbol(t *testing.T) {
	src := prologue + "class Main {\n  static main() {\n    return missing\n  }\n}\n"
	var out strings.Builder
	err := Compile(strings.NewReader(src), &out, "main.ifj")
	if err == nil {
		t.Fatal("expected an undefined-symbol error")
	}
	if err.Code != diagnostics.CodeUndefinedSymbol {
		t.Fatalf("code = %v, want CodeUndefinedSymbol", err.Code)
	}
}

func TestParseStopsBeforeSemanticErrors(t *testing.T) {
	// A read of an undeclared variable is a semantic error, not a
	// syntax error, so Parse alone (what `ifjc parse` runs) must succeed
	// even though a full Compile on the same source would fail later.
	src := prologue + "class Main {\n  static main() {\n    return missing\n  }\n}\n"
	root, scopes, deferred, err := Parse(strings.NewReader(src), "main.ifj")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if root.Kind != ast.KindClass {
		t.Fatalf("root kind = %v, want KindClass", root.Kind)
	}
	if scopes.Global() == nil {
		t.Fatal("expected a primed global scope")
	}
	if deferred == nil {
		t.Fatal("expected a non-nil deferred list")
	}
}
