package ast

import (
	"testing"

	"github.com/ifj25/ifjc/internal/lexer"
)

func TestExprTypeUnionString(t *testing.T) {
	ty := String | Null
	if ty.String() != "STRING|NULL" && ty.String() != "NULL|STRING" {
		t.Fatalf("got %q", ty.String())
	}
	if !ty.Has(String) || !ty.Has(Null) {
		t.Fatalf("Has failed for %v", ty)
	}
	if ty.Has(Int) {
		t.Fatalf("union should not have INT")
	}
}

func TestUnknownNeverCombinesMeaningfully(t *testing.T) {
	if Unknown.String() != "UNKNOWN" {
		t.Fatalf("got %q", Unknown.String())
	}
}

func TestLeafStringDump(t *testing.T) {
	tok := lexer.Token{Type: lexer.IDENT, HasPayload: true, StrVal: "x"}
	n := New(KindIdent, tok)
	if got := n.String(); got != "(Ident x)" {
		t.Fatalf("got %q", got)
	}
}

func TestPairStringDump(t *testing.T) {
	left := New(KindIdent, lexer.Token{Type: lexer.IDENT, HasPayload: true, StrVal: "a"})
	right := New(KindIntLit, lexer.Token{Type: lexer.INT, HasPayload: true, IntVal: 1})
	n := NewPair(KindAssign, lexer.Token{Type: lexer.ASSIGN}, left, right)
	if got := n.String(); got != "(Assign (Ident a) (IntLit 1))" {
		t.Fatalf("got %q", got)
	}
}

func TestListStringDump(t *testing.T) {
	a := New(KindIdent, lexer.Token{Type: lexer.IDENT, HasPayload: true, StrVal: "a"})
	b := New(KindIdent, lexer.Token{Type: lexer.IDENT, HasPayload: true, StrVal: "b"})
	n := NewList(KindParams, lexer.Token{}, a, b)
	if got := n.String(); got != "(Params (Ident a) (Ident b))" {
		t.Fatalf("got %q", got)
	}
}
