package lexer

import (
	"strings"
	"testing"
)

func collect(t *testing.T, src string) []Token {
	t.Helper()
	l := New(strings.NewReader(src), "")
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks
}

func types(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestPrologueTokens(t *testing.T) {
	// Invariant 7: the canonical prologue produces exactly these five
	// tokens before EOF.
	toks := collect(t, "import \"ifj25\" for Ifj\n")
	got := types(toks)
	want := []TokenType{IMPORT, STRING, FOR, IFJ, EOL, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if toks[1].StrVal != "ifj25" {
		t.Fatalf("string payload = %q, want ifj25", toks[1].StrVal)
	}
}

func TestConsecutiveEOLCollapsed(t *testing.T) {
	toks := collect(t, "var x\n\n\n\nvar y\n")
	for i := 1; i < len(toks); i++ {
		if toks[i-1].Type == EOL && toks[i].Type == EOL {
			t.Fatalf("two consecutive EOL tokens at %d,%d", i-1, i)
		}
	}
}

func TestIdentifierVsGlobalVsKeyword(t *testing.T) {
	toks := collect(t, "foo __bar class\n")
	if toks[0].Type != IDENT || toks[0].StrVal != "foo" {
		t.Fatalf("token 0 = %+v", toks[0])
	}
	if toks[1].Type != GLOBAL_IDENT || toks[1].StrVal != "__bar" {
		t.Fatalf("token 1 = %+v", toks[1])
	}
	if toks[2].Type != CLASS {
		t.Fatalf("token 2 = %+v", toks[2])
	}
}

func TestIntFloatHex(t *testing.T) {
	toks := collect(t, "123 1.5 1e10 1E-3 0x7B\n")
	if toks[0].Type != INT || toks[0].IntVal != 123 {
		t.Fatalf("token0 = %+v", toks[0])
	}
	if toks[1].Type != FLOAT || toks[1].FloatVal != 1.5 {
		t.Fatalf("token1 = %+v", toks[1])
	}
	if toks[2].Type != FLOAT || toks[2].FloatVal != 1e10 {
		t.Fatalf("token2 = %+v", toks[2])
	}
	if toks[3].Type != FLOAT || toks[3].FloatVal != 1e-3 {
		t.Fatalf("token3 = %+v", toks[3])
	}
	if toks[4].Type != INT || toks[4].IntVal != 0x7B {
		t.Fatalf("token4 = %+v", toks[4])
	}
}

func TestHexWithNoDigitsIsLexicalError(t *testing.T) {
	// Boundary behaviour 11.
	l := New(strings.NewReader("0x\n"), "")
	_, err := l.Next()
	if err == nil || err.Code != 1 {
		t.Fatalf("expected lexical error, got %v", err)
	}
}

func TestDotNotFollowedByDigitIsSeparateToken(t *testing.T) {
	toks := collect(t, "5.foo\n")
	if toks[0].Type != INT || toks[0].IntVal != 5 {
		t.Fatalf("token0 = %+v", toks[0])
	}
	if toks[1].Type != DOT {
		t.Fatalf("token1 = %+v, want DOT", toks[1])
	}
	if toks[2].Type != IDENT || toks[2].StrVal != "foo" {
		t.Fatalf("token2 = %+v", toks[2])
	}
}

func TestStringEscapes(t *testing.T) {
	toks := collect(t, `"a\nb\t\x41\"c"` + "\n")
	if toks[0].Type != STRING {
		t.Fatalf("token0 = %+v", toks[0])
	}
	want := "a\nb\tA\"c"
	if toks[0].StrVal != want {
		t.Fatalf("string payload = %q, want %q", toks[0].StrVal, want)
	}
}

func TestEmptyStringIsNotMultiline(t *testing.T) {
	toks := collect(t, `"" x` + "\n")
	if toks[0].Type != STRING || toks[0].StrVal != "" {
		t.Fatalf("token0 = %+v", toks[0])
	}
	if toks[1].Type != IDENT || toks[1].StrVal != "x" {
		t.Fatalf("token1 = %+v, want IDENT x", toks[1])
	}
}

func TestControlByteInStringIsLexicalError(t *testing.T) {
	l := New(strings.NewReader("\"a\nb\"\n"), "")
	_, err := l.Next()
	if err == nil || err.Code != 1 {
		t.Fatalf("expected lexical error for raw newline in string, got %v", err)
	}
}

func TestMultilineStringDropsFirstLineFeed(t *testing.T) {
	// Boundary behaviour 12: the body is the literal byte '"' followed by
	// a newline - not the two-character escape \".
	toks := collect(t, "\"\"\"\n\"\n\"\"\"\n")
	if toks[0].Type != MLSTRING {
		t.Fatalf("token0 = %+v", toks[0])
	}
	want := "\"\n"
	if toks[0].StrVal != want {
		t.Fatalf("multiline string payload = %q, want %q", toks[0].StrVal, want)
	}
}

func TestTwoCharOperators(t *testing.T) {
	toks := collect(t, "== != <= >= && || < > = ! + - * /\n")
	want := []TokenType{EQ, NEQ, LE, GE, AND, OR, LT, GT, ASSIGN, NOT, PLUS, MINUS, ASTERISK, SLASH, EOL, EOF}
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLoneAmpersandIsLexicalError(t *testing.T) {
	l := New(strings.NewReader("a & b\n"), "")
	l.Next() // 'a'
	_, err := l.Next()
	if err == nil || err.Code != 1 {
		t.Fatalf("expected lexical error for lone '&', got %v", err)
	}
}

func TestLineComments(t *testing.T) {
	toks := collect(t, "var x // comment\nvar y\n")
	got := types(toks)
	want := []TokenType{VAR, IDENT, EOL, VAR, IDENT, EOL, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNestedBlockComments(t *testing.T) {
	toks := collect(t, "var /* outer /* inner */ still outer */ x\n")
	got := types(toks)
	want := []TokenType{VAR, IDENT, EOL, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPeekAndDispose(t *testing.T) {
	l := New(strings.NewReader("var x\n"), "")
	p1, err := l.Peek()
	if err != nil || p1.Type != VAR {
		t.Fatalf("peek = %+v, %v", p1, err)
	}
	p2, _ := l.Peek()
	if p2.Type != VAR {
		t.Fatalf("second peek should be stable, got %+v", p2)
	}
	n, _ := l.Next()
	if n.Type != VAR {
		t.Fatalf("next after peek = %+v", n)
	}
	n2, _ := l.Next()
	if n2.Type != IDENT {
		t.Fatalf("next should advance past the peeked token, got %+v", n2)
	}
}

func TestReadPrologueRejectsDeviation(t *testing.T) {
	l := New(strings.NewReader("import \"other\" for Ifj\n"), "")
	if err := l.ReadPrologue(); err == nil || err.Code != 2 {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

func TestReadPrologueSkipsLeadingEOLs(t *testing.T) {
	l := New(strings.NewReader("\n\nimport \"ifj25\" for Ifj\n"), "")
	if err := l.ReadPrologue(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
