package lexer

import (
	"strings"
	"testing"
)

func TestCharSourceLineCounting(t *testing.T) {
	cs := NewCharSource(strings.NewReader("ab\ncd\n"))
	var got []byte
	for {
		b, ok := cs.Next()
		if !ok {
			break
		}
		got = append(got, b)
	}
	if string(got) != "ab\ncd\n" {
		t.Fatalf("got %q", got)
	}
	if cs.Line() != 3 {
		t.Fatalf("line = %d, want 3", cs.Line())
	}
}

func TestCharSourcePushBack(t *testing.T) {
	cs := NewCharSource(strings.NewReader("xyz"))
	b1, _ := cs.Next()
	if b1 != 'x' {
		t.Fatalf("first byte = %q", b1)
	}
	cs.PushBack(b1)
	b2, _ := cs.Next()
	if b2 != 'x' {
		t.Fatalf("re-read byte = %q, want x", b2)
	}
	b3, _ := cs.Next()
	if b3 != 'y' {
		t.Fatalf("next byte = %q, want y", b3)
	}
}

func TestCharSourceEOF(t *testing.T) {
	cs := NewCharSource(strings.NewReader(""))
	_, ok := cs.Next()
	if ok {
		t.Fatalf("expected EOF immediately")
	}
}
