package parser

import (
	"strings"
	"testing"

	"github.com/ifj25/ifjc/internal/ast"
	"github.com/ifj25/ifjc/internal/lexer"
	"github.com/ifj25/ifjc/internal/symtab"
)

const prologue = "import \"ifj25\" for Ifj\n"

// primeBuiltins installs the handful of Ifj.* builtins exercised by these
// tests, matching the arities the driver primes before parsing begins
// (spec §4.5).
func primeBuiltins(global *symtab.Scope) {
	write := symtab.NewSymbol("Ifj.write", symtab.Func, 1)
	write.Declared = true
	write.ParamTypes = []ast.ExprType{ast.Unknown}
	write.Type = ast.Null
	global.Add(write)

	length := symtab.NewSymbol("Ifj.length", symtab.Func, 1)
	length.Declared = true
	length.ParamTypes = []ast.ExprType{ast.String}
	length.Type = ast.Int
	global.Add(length)
}

func newParser(t *testing.T, src string) (*Parser, *symtab.Stack) {
	t.Helper()
	lex := lexer.New(strings.NewReader(prologue+src), "test.ifj")
	if err := lex.ReadPrologue(); err != nil {
		t.Fatalf("prologue: %v", err)
	}
	scopes := symtab.NewStack()
	scopes.Push()
	primeBuiltins(scopes.Global())
	deferred := symtab.NewDeferred()
	return New(lex, scopes, deferred), scopes
}

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	p, _ := newParser(t, src)
	root, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return root
}

func TestParseEmptyClass(t *testing.T) {
	root := mustParse(t, "class Main {\n}\n")
	if root.Kind != ast.KindClass {
		t.Fatalf("kind = %v, want Class", root.Kind)
	}
	if len(root.Children) != 0 {
		t.Fatalf("expected no declarations, got %d", len(root.Children))
	}
}

func TestParseFunctionDeclAndReturnType(t *testing.T) {
	root := mustParse(t, "class Main {\nstatic main() {\nreturn 1\n}\n}\n")
	fn := root.Children[0]
	if fn.Kind != ast.KindFuncDecl {
		t.Fatalf("kind = %v, want FuncDecl", fn.Kind)
	}
	if fn.Mangled != "main$0" {
		t.Fatalf("mangled = %q, want main$0", fn.Mangled)
	}
}

func TestParseFunctionDuplicateParamIsRedefinition(t *testing.T) {
	p, _ := newParser(t, "class Main {\nstatic f(a, a) {\nreturn a\n}\n}\n")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected a redefinition error for a duplicate parameter")
	}
	if err.Code != 4 {
		t.Fatalf("code = %d, want 4 (redefinition)", err.Code)
	}
}

func TestParseDuplicateFunctionIsRedefinition(t *testing.T) {
	p, _ := newParser(t, "class Main {\nstatic f(a) {\nreturn a\n}\nstatic f(a) {\nreturn a\n}\n}\n")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected a redefinition error")
	}
}

func TestParseSetterWrongArity(t *testing.T) {
	p, _ := newParser(t, "class Main {\nstatic x = () {\nreturn null\n}\n}\n")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected a syntax error for a zero-parameter setter")
	}
}

func TestParseGetterDecl(t *testing.T) {
	root := mustParse(t, "class Main {\nstatic count {\nreturn 1\n}\n}\n")
	get := root.Children[0]
	if get.Kind != ast.KindGetterDecl {
		t.Fatalf("kind = %v, want GetterDecl", get.Kind)
	}
	if get.Mangled != "count#get" {
		t.Fatalf("mangled = %q, want count#get", get.Mangled)
	}
}

func TestParseIfElseChain(t *testing.T) {
	src := "class Main {\nstatic main() {\nvar x\nif (x == 1) {\nreturn 1\n} else if (x == 2) {\nreturn 2\n} else {\nreturn 3\n}\n}\n}\n"
	root := mustParse(t, src)
	fn := root.Children[0]
	body := fn.Right
	var ifElse *ast.Node
	for _, stmt := range body.Children {
		if stmt.Kind == ast.KindIfElse {
			ifElse = stmt
		}
	}
	if ifElse == nil {
		t.Fatal("expected an IfElse node in the function body")
	}
}

func TestParseBareTrailingElseIsSyntaxError(t *testing.T) {
	p, _ := newParser(t, "class Main {\nstatic main() {\nelse {\nreturn 1\n}\n}\n}\n")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected a syntax error for a solitary 'else'")
	}
	if err.Code != 2 {
		t.Fatalf("code = %d, want 2 (syntax)", err.Code)
	}
}

func TestParseMalformedElseTailIsSyntaxError(t *testing.T) {
	p, _ := newParser(t, "class Main {\nstatic main() {\nif (1 == 1) {\nreturn 1\n} else return 2\n}\n}\n")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected a syntax error for 'else' not followed by 'if' or '{'")
	}
}

func TestParseWhileLoop(t *testing.T) {
	src := "class Main {\nstatic main() {\nvar x\nwhile (x < 10) {\nx = x + 1\n}\nreturn x\n}\n}\n"
	root := mustParse(t, src)
	body := root.Children[0].Right
	var while *ast.Node
	for _, stmt := range body.Children {
		if stmt.Kind == ast.KindWhile {
			while = stmt
		}
	}
	if while == nil {
		t.Fatal("expected a While node")
	}
}

func TestParseNestedBlockShadowing(t *testing.T) {
	src := "class Main {\nstatic main() {\nvar x\n{\nvar x\n}\nreturn x\n}\n}\n"
	root := mustParse(t, src)
	body := root.Children[0].Right
	var inner *ast.Node
	for _, stmt := range body.Children {
		if stmt.Kind == ast.KindBlock {
			inner = stmt
		}
	}
	if inner == nil {
		t.Fatal("expected a nested block statement")
	}
	outer := body.Children[0] // var x
	innerDecl := inner.Children[0]
	if outer.Depth == innerDecl.Depth {
		t.Fatalf("expected distinct depths for shadowing locals, both got %d", outer.Depth)
	}
}

func TestParseRedeclareSameScopeIsRedefinition(t *testing.T) {
	p, _ := newParser(t, "class Main {\nstatic main() {\nvar x\nvar x\n}\n}\n")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected a redefinition error")
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	// 1 + 2 * 3 should bind as 1 + (2 * 3): the outer node is '+'.
	src := "class Main {\nstatic main() {\nvar x\nx = 1 + 2 * 3\nreturn x\n}\n}\n"
	root := mustParse(t, src)
	body := root.Children[0].Right
	var assign *ast.Node
	for _, stmt := range body.Children {
		if stmt.Kind == ast.KindAssign {
			assign = stmt
		}
	}
	if assign == nil {
		t.Fatal("expected an assignment statement")
	}
	add := assign.Right
	if add.Kind != ast.KindBinary || add.Tok.Type != lexer.PLUS {
		t.Fatalf("outer node = %v %v, want Binary '+'", add.Kind, add.Tok.Type)
	}
	if add.Right.Kind != ast.KindBinary || add.Right.Tok.Type != lexer.ASTERISK {
		t.Fatalf("right operand = %v %v, want Binary '*'", add.Right.Kind, add.Right.Tok.Type)
	}
}

func TestParseChainedRelationalIsSyntaxError(t *testing.T) {
	p, _ := newParser(t, "class Main {\nstatic main() {\nvar x\nx = 1 < 2 < 3\nreturn x\n}\n}\n")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected a syntax error for non-chaining relational operators")
	}
}

func TestParseIsRequiresTypeKeyword(t *testing.T) {
	p, _ := newParser(t, "class Main {\nstatic main() {\nvar x\nx = 1 is x\nreturn x\n}\n}\n")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected a syntax error: 'is' requires a type keyword lookahead")
	}
}

func TestParseUnaryNotBindsTighterThanAnd(t *testing.T) {
	src := "class Main {\nstatic main() {\nvar x\nx = !true && false\nreturn x\n}\n}\n"
	root := mustParse(t, src)
	body := root.Children[0].Right
	var assign *ast.Node
	for _, stmt := range body.Children {
		if stmt.Kind == ast.KindAssign {
			assign = stmt
		}
	}
	and := assign.Right
	if and.Kind != ast.KindBinary || and.Tok.Type != lexer.AND {
		t.Fatalf("outer node = %v %v, want Binary '&&'", and.Kind, and.Tok.Type)
	}
	if and.Left.Kind != ast.KindUnary {
		t.Fatalf("left operand = %v, want Unary", and.Left.Kind)
	}
}

func TestParseCallResolvesImmediatelyWhenAlreadyDeclared(t *testing.T) {
	src := "class Main {\nstatic g(a) {\nreturn a\n}\nstatic main() {\nvar x\nx = g(1)\nreturn x\n}\n}\n"
	p, _ := newParser(t, src)
	root, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if p.Deferred().Len() != 0 {
		t.Fatalf("deferred list should be empty, got %d entries", p.Deferred().Len())
	}
	main := root.Children[1]
	body := main.Right
	var assign *ast.Node
	for _, stmt := range body.Children {
		if stmt.Kind == ast.KindAssign {
			assign = stmt
		}
	}
	if assign.Right.Mangled != "g$1" {
		t.Fatalf("mangled = %q, want g$1", assign.Right.Mangled)
	}
}

// TestParseForwardCallIsDeferred mirrors testable-property scenario (d): a
// top-level call to g(1) precedes static g(a) { return a }.
func TestParseForwardCallIsDeferred(t *testing.T) {
	src := "class Main {\nstatic main() {\ng(1)\n}\nstatic g(a) {\nreturn a\n}\n}\n"
	p, _ := newParser(t, src)
	_, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if p.Deferred().Len() != 1 {
		t.Fatalf("deferred list length = %d, want 1", p.Deferred().Len())
	}
	if p.Deferred().Nodes()[0].Kind != ast.KindCall {
		t.Fatalf("deferred node kind = %v, want Call", p.Deferred().Nodes()[0].Kind)
	}
}

func TestParseBareCallStatement(t *testing.T) {
	root := mustParse(t, "class Main {\nstatic g(a) {\nreturn a\n}\nstatic main() {\ng(1)\n}\n}\n")
	main := root.Children[1]
	body := main.Right
	if len(body.Children) != 1 || body.Children[0].Kind != ast.KindCall {
		t.Fatalf("expected a single bare Call statement, got %v", body.Children)
	}
}

func TestParseIfjCall(t *testing.T) {
	root := mustParse(t, "class Main {\nstatic main() {\nIfj.write(1)\n}\n}\n")
	body := root.Children[0].Right
	if len(body.Children) != 1 || body.Children[0].Kind != ast.KindIfjCall {
		t.Fatalf("expected a single IfjCall statement, got %v", body.Children)
	}
	if body.Children[0].Mangled != "Ifj.write$1" {
		t.Fatalf("mangled = %q, want Ifj.write$1", body.Children[0].Mangled)
	}
}

func TestParseIfjCallWrongArityIsArgumentError(t *testing.T) {
	p, _ := newParser(t, "class Main {\nstatic main() {\nIfj.write(1, 2)\n}\n}\n")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected an argument-count error")
	}
	if err.Code != 5 {
		t.Fatalf("code = %d, want 5 (argument)", err.Code)
	}
}

func TestParseUndeclaredIfjBuiltinIsUndefinedSymbol(t *testing.T) {
	p, _ := newParser(t, "class Main {\nstatic main() {\nIfj.frobnicate(1)\n}\n}\n")
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected an undefined-symbol error")
	}
	if err.Code != 3 {
		t.Fatalf("code = %d, want 3 (undefined symbol)", err.Code)
	}
}
