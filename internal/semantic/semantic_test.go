package semantic

import (
	"testing"

	"github.com/ifj25/ifjc/internal/ast"
	"github.com/ifj25/ifjc/internal/lexer"
	"github.com/ifj25/ifjc/internal/symtab"
)

func identTok(name string) lexer.Token {
	return lexer.Token{Type: lexer.IDENT, HasPayload: true, StrVal: name}
}

func intTok(v int64) lexer.Token {
	return lexer.Token{Type: lexer.INT, HasPayload: true, IntVal: v}
}

func newGlobalStack() *symtab.Stack {
	s := symtab.NewStack()
	s.Push()
	return s
}

func TestResolveCallNodeSucceeds(t *testing.T) {
	s := newGlobalStack()
	sym := symtab.NewSymbol("g", symtab.Func, 1)
	sym.Declared = true
	sym.Type = ast.Int
	sym.ParamTypes = []ast.ExprType{ast.Int}
	s.Global().Add(sym)

	arg := &ast.Node{Kind: ast.KindIntLit, Tok: intTok(1), Type: ast.Int}
	args := ast.NewList(ast.KindArgs, lexer.Token{}, arg)
	call := ast.NewPair(ast.KindCall, identTok("g"), nil, args)

	if err := ResolveCallNode(s.Global(), call, "g"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.Mangled != "g$1" {
		t.Fatalf("mangled = %q, want g$1", call.Mangled)
	}
	if call.Type != ast.Int {
		t.Fatalf("type = %v, want INT", call.Type)
	}
}

func TestResolveCallNodeUndefined(t *testing.T) {
	s := newGlobalStack()
	call := ast.NewPair(ast.KindCall, identTok("missing"), nil, ast.NewList(ast.KindArgs, lexer.Token{}))
	err := ResolveCallNode(s.Global(), call, "missing")
	if err == nil {
		t.Fatal("expected an undefined-function error")
	}
}

func TestResolveCallNodeArityMismatch(t *testing.T) {
	s := newGlobalStack()
	sym := symtab.NewSymbol("g", symtab.Func, 2)
	sym.Declared = true
	s.Global().Add(sym)

	call := ast.NewPair(ast.KindCall, identTok("g"), nil, ast.NewList(ast.KindArgs, lexer.Token{}))
	err := ResolveCallNode(s.Global(), call, "g")
	if err == nil {
		t.Fatal("expected an argument-count error")
	}
}

func TestResolveCallNodeSetterAsCall(t *testing.T) {
	s := newGlobalStack()
	sym := symtab.NewSymbol("x", symtab.Set, 1)
	sym.Declared = true
	s.Global().Add(sym)

	call := ast.NewPair(ast.KindCall, identTok("x"), nil, ast.NewList(ast.KindArgs, lexer.Token{}, &ast.Node{Kind: ast.KindIntLit, Tok: intTok(1), Type: ast.Int}))
	err := ResolveCallNode(s.Global(), call, "x")
	if err == nil {
		t.Fatal("expected a setter-called-as-function error")
	}
}

// TestResolveForwardCall mirrors testable-property scenario (d): a call to
// g(1) is queued during parsing before g's declaration is seen, and the
// deferred pass resolves it once every static declaration is known.
func TestResolveForwardCall(t *testing.T) {
	s := newGlobalStack()
	sym := symtab.NewSymbol("g", symtab.Func, 1)
	sym.Declared = true
	sym.Type = ast.Int
	sym.ParamTypes = []ast.ExprType{ast.Unknown}
	s.Global().Add(sym)
	mainSym := symtab.NewSymbol("main", symtab.Func, 0)
	mainSym.Declared = true
	s.Global().Add(mainSym)

	arg := &ast.Node{Kind: ast.KindIntLit, Tok: intTok(1), Type: ast.Int}
	args := ast.NewList(ast.KindArgs, lexer.Token{}, arg)
	call := ast.NewPair(ast.KindCall, identTok("g"), nil, args)

	deferred := symtab.NewDeferred()
	deferred.Add(call)

	root := ast.NewList(ast.KindBlock, lexer.Token{}, call)
	if err := Resolve(s, deferred, root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.Mangled != "g$1" {
		t.Fatalf("mangled = %q, want g$1", call.Mangled)
	}
	if call.Type != ast.Int {
		t.Fatalf("type = %v, want INT", call.Type)
	}
}

func TestCheckDeclaredCatchesUndeclaredFunction(t *testing.T) {
	s := newGlobalStack()
	sym := symtab.NewSymbol("h", symtab.Func, 0)
	// Never marked Declared = true: stands in for a forward reference
	// whose call resolved but whose own body was never parsed.
	s.Global().Add(sym)

	deferred := symtab.NewDeferred()
	root := ast.NewList(ast.KindBlock, lexer.Token{})
	err := Resolve(s, deferred, root)
	if err == nil {
		t.Fatal("expected an undefined-symbol error from the declared-function check")
	}
}

func TestCheckTypesRejectsBoolPlusInt(t *testing.T) {
	left := &ast.Node{Kind: ast.KindBoolLit, Tok: lexer.Token{Type: lexer.TRUE}, Type: ast.Bool}
	right := &ast.Node{Kind: ast.KindIntLit, Tok: intTok(1), Type: ast.Int}
	add := ast.NewPair(ast.KindBinary, lexer.Token{Type: lexer.PLUS}, left, right)

	if err := checkTypes(add); err == nil {
		t.Fatal("expected a type error for BOOL + INT")
	}
}

func TestCheckTypesComputesFloatPromotion(t *testing.T) {
	left := &ast.Node{Kind: ast.KindIntLit, Tok: intTok(1), Type: ast.Int}
	right := &ast.Node{Kind: ast.KindFloatLit, Tok: lexer.Token{Type: lexer.FLOAT, HasPayload: true, FloatVal: 2.5}, Type: ast.Float}
	mul := ast.NewPair(ast.KindBinary, lexer.Token{Type: lexer.ASTERISK}, left, right)

	if err := checkTypes(mul); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mul.Type != ast.Float {
		t.Fatalf("type = %v, want FLOAT", mul.Type)
	}
}

func TestCheckTypesUnknownOperandIsPermissive(t *testing.T) {
	left := &ast.Node{Kind: ast.KindIdent, Tok: identTok("x"), Type: ast.Unknown}
	right := &ast.Node{Kind: ast.KindBoolLit, Tok: lexer.Token{Type: lexer.TRUE}, Type: ast.Bool}
	and := ast.NewPair(ast.KindBinary, lexer.Token{Type: lexer.AND}, left, right)

	if err := checkTypes(and); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if and.Type != ast.Bool {
		t.Fatalf("type = %v, want BOOL", and.Type)
	}
}
