package lexer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ifj25/ifjc/internal/diagnostics"
)

// Lexer turns a byte stream into a token stream with one-token lookahead
// (spec §4.1). It owns the CharSource and the retained source text used
// for diagnostic source-line extraction.
type Lexer struct {
	cs   *CharSource
	file string

	// source accumulates every byte read so far, so a diagnostic raised
	// mid-stream can still render the offending line; stdin is not
	// seekable, so this is the only way to recover source context.
	source strings.Builder

	peeked     *Token
	peekErr    *diagnostics.CompilerError
	lastWasEOL bool

	// pending is the lexer's own lookahead buffer, a LIFO stack of bytes
	// already pulled from the character source but not yet consumed as
	// part of a token. The character source itself only guarantees one
	// character of pushback; a couple of lexical rules (the optional '.'
	// in a number, which must be un-read together with the character
	// after it when no digit follows) need to put back more than one
	// character at a time, so the lexer layers its own buffer on top.
	pending []pendingByte

	// lastLine/lastCol is the position of the byte most recently returned
	// by readByte, from whichever source (the buffer or the character
	// source); pos() reports this so a pushed-back-then-reread byte keeps
	// reporting the same position it had the first time.
	lastLine, lastCol int

	// handlers dispatches single-character punctuation and the first
	// character of operators that may extend to two characters, mirroring
	// the teacher's map[byte]tokenHandler lexing idiom. Built once in New,
	// closing over the Lexer itself.
	handlers map[byte]func() (Token, *diagnostics.CompilerError)
}

// New creates a Lexer reading from r. file is used only in diagnostic
// headers; pass "" for stdin.
func New(r io.Reader, file string) *Lexer {
	l := &Lexer{
		cs:   NewCharSource(r),
		file: file,
	}
	l.handlers = map[byte]func() (Token, *diagnostics.CompilerError){
		'(': l.lexSingle(LPAREN),
		')': l.lexSingle(RPAREN),
		'{': l.lexSingle(LBRACE),
		'}': l.lexSingle(RBRACE),
		',': l.lexSingle(COMMA),
		'.': l.lexSingle(DOT),
		'+': l.lexSingle(PLUS),
		'-': l.lexSingle(MINUS),
		'*': l.lexSingle(ASTERISK),
		'/': l.lexSlash,
		'=': l.lexTwoCharOr('=', EQ, ASSIGN),
		'!': l.lexTwoCharOr('=', NEQ, NOT),
		'<': l.lexTwoCharOr('=', LE, LT),
		'>': l.lexTwoCharOr('=', GE, GT),
		'&': l.lexAmpOrPipe('&', AND),
		'|': l.lexAmpOrPipe('|', OR),
		'"': l.doLexString,
	}
	return l
}

// pendingByte is one character sitting in the lexer's own lookahead
// buffer, tagged with the position it had when first read from the
// character source.
type pendingByte struct {
	b    byte
	line int
	col  int
}

func (l *Lexer) readByte() (byte, bool) {
	if n := len(l.pending); n > 0 {
		pb := l.pending[n-1]
		l.pending = l.pending[:n-1]
		l.lastLine, l.lastCol = pb.line, pb.col
		l.source.WriteByte(pb.b)
		return pb.b, true
	}
	b, ok := l.cs.Next()
	if !ok {
		return 0, false
	}
	l.lastLine, l.lastCol = l.cs.Line(), l.cs.Column()
	l.source.WriteByte(b)
	return b, true
}

// pushBack returns b to the lexer's own buffer. Callers that need to
// return more than one character do so with successive calls, most
// recently read byte first, so they come back out in original stream
// order.
func (l *Lexer) pushBack(b byte) {
	l.pending = append(l.pending, pendingByte{b: b, line: l.lastLine, col: l.lastCol})
	s := l.source.String()
	if len(s) > 0 {
		l.source.Reset()
		l.source.WriteString(s[:len(s)-1])
	}
}

// peekByte returns the next byte without consuming it.
func (l *Lexer) peekByte() (byte, bool) {
	b, ok := l.readByte()
	if !ok {
		return 0, false
	}
	l.pushBack(b)
	return b, true
}

func (l *Lexer) pos() diagnostics.Position {
	return diagnostics.Position{Line: l.lastLine, Column: l.lastCol}
}

// Source returns every byte read so far, for a later phase (the parser)
// that wants to build a diagnostic with the same source-line-plus-caret
// rendering the lexer itself uses.
func (l *Lexer) Source() string {
	return l.source.String()
}

// File returns the file name this lexer was constructed with ("" for
// stdin).
func (l *Lexer) File() string {
	return l.file
}

func (l *Lexer) errf(code diagnostics.ErrorCode, tok string, format string, args ...any) *diagnostics.CompilerError {
	return diagnostics.New(code, l.pos(), fmt.Sprintf(format, args...), tok, l.source.String(), l.file)
}

// Next consumes and returns one token, draining the peek buffer first if
// one was buffered by Peek.
func (l *Lexer) Next() (Token, *diagnostics.CompilerError) {
	if l.peeked != nil {
		t := *l.peeked
		e := l.peekErr
		l.peeked, l.peekErr = nil, nil
		return t, e
	}
	return l.scan()
}

// Peek buffers one token and returns it without consuming it; a subsequent
// Next or Peek returns the same token until Dispose or Next is called to
// release it.
func (l *Lexer) Peek() (Token, *diagnostics.CompilerError) {
	if l.peeked == nil {
		t, e := l.scan()
		l.peeked, l.peekErr = &t, e
	}
	return *l.peeked, l.peekErr
}

// Dispose discards the buffered peek token, if any, without returning it.
func (l *Lexer) Dispose() {
	l.peeked, l.peekErr = nil, nil
}

// ReadPrologue consumes exactly `import "ifj25" for Ifj <EOL|EOF>`,
// skipping leading EOLs (spec §4.1). Any deviation is a syntax error.
func (l *Lexer) ReadPrologue() *diagnostics.CompilerError {
	tok, err := l.Next()
	if err != nil {
		return err
	}
	for tok.Type == EOL {
		tok, err = l.Next()
		if err != nil {
			return err
		}
	}
	if tok.Type != IMPORT {
		return l.errf(diagnostics.CodeSyntax, tok.String(), "expected prologue 'import \"ifj25\" for Ifj', got %s", tok.Type)
	}
	if tok, err = l.Next(); err != nil {
		return err
	}
	if tok.Type != STRING || tok.StrVal != "ifj25" {
		return l.errf(diagnostics.CodeSyntax, tok.String(), "expected string literal \"ifj25\" in prologue")
	}
	if tok, err = l.Next(); err != nil {
		return err
	}
	if tok.Type != FOR {
		return l.errf(diagnostics.CodeSyntax, tok.String(), "expected 'for' in prologue")
	}
	if tok, err = l.Next(); err != nil {
		return err
	}
	if tok.Type != IFJ {
		return l.errf(diagnostics.CodeSyntax, tok.String(), "expected 'Ifj' in prologue")
	}
	if tok, err = l.Next(); err != nil {
		return err
	}
	if tok.Type != EOL && tok.Type != EOF {
		return l.errf(diagnostics.CodeSyntax, tok.String(), "expected end of line after prologue")
	}
	return nil
}

// scan is the core token-producing loop: skip whitespace/comments, collapse
// runs of EOL into one, then dispatch on the first significant character.
func (l *Lexer) scan() (Token, *diagnostics.CompilerError) {
	for {
		b, ok := l.readByte()
		if !ok {
			l.lastWasEOL = false
			return Token{Type: EOF, Line: l.cs.Line(), Column: l.cs.Column()}, nil
		}

		switch {
		case b == '\r':
			continue
		case b == '\n':
			if l.lastWasEOL {
				continue
			}
			l.lastWasEOL = true
			pos := l.pos()
			return Token{Type: EOL, Line: pos.Line, Column: pos.Column}, nil
		case b == ' ' || b == '\t':
			continue
		case b == '/' && l.peekIs('/'):
			l.readByte()
			l.skipLineComment()
			continue
		case b == '/' && l.peekIs('*'):
			l.readByte()
			if err := l.skipBlockComment(); err != nil {
				return Token{}, err
			}
			continue
		default:
			l.lastWasEOL = false
			l.pushBack(b)
			return l.scanToken()
		}
	}
}

func (l *Lexer) peekIs(want byte) bool {
	b, ok := l.peekByte()
	return ok && b == want
}

func (l *Lexer) skipLineComment() {
	for {
		b, ok := l.readByte()
		if !ok || b == '\n' {
			if ok {
				l.pushBack(b)
			}
			return
		}
	}
}

// skipBlockComment consumes a /* ... */ comment with unbounded nesting
// (spec §4.1): every "/*" seen while inside increments depth, every "*/"
// decrements it, and the comment ends when depth returns to zero.
func (l *Lexer) skipBlockComment() *diagnostics.CompilerError {
	depth := 1
	for {
		b, ok := l.readByte()
		if !ok {
			return l.errf(diagnostics.CodeLexical, "", "unterminated block comment")
		}
		switch {
		case b == '/' && l.peekIs('*'):
			l.readByte()
			depth++
		case b == '*' && l.peekIs('/'):
			l.readByte()
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
}

// scanToken dispatches on the first character of a token that is known not
// to be whitespace, EOL, or a comment opener.
func (l *Lexer) scanToken() (Token, *diagnostics.CompilerError) {
	b, _ := l.readByte()

	switch {
	case isLetter(b):
		l.pushBack(b)
		return l.lexIdentifier()
	case isDigit(b):
		l.pushBack(b)
		return l.lexNumber()
	}

	if h, ok := l.handlers[b]; ok {
		l.pushBack(b)
		return h()
	}

	return Token{}, l.errf(diagnostics.CodeLexical, string(b), "unexpected character %q", b)
}

func isLetter(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// lexIdentifier reads [A-Za-z_][A-Za-z0-9_]*, classifying it as a global
// identifier (prefix "__"), a keyword, or a plain identifier (spec §4.1).
func (l *Lexer) lexIdentifier() (Token, *diagnostics.CompilerError) {
	first, _ := l.readByte()
	pos := l.pos()
	var sb strings.Builder
	sb.WriteByte(first)
	for {
		b, ok := l.readByte()
		if !ok {
			break
		}
		if !isLetter(b) && !isDigit(b) {
			l.pushBack(b)
			break
		}
		sb.WriteByte(b)
	}
	name := sb.String()

	if strings.HasPrefix(name, "__") {
		return Token{Type: GLOBAL_IDENT, Line: pos.Line, Column: pos.Column, HasPayload: true, StrVal: name}, nil
	}
	kind := LookupIdent(name)
	if kind != IDENT {
		return Token{Type: kind, Line: pos.Line, Column: pos.Column}, nil
	}
	return Token{Type: IDENT, Line: pos.Line, Column: pos.Column, HasPayload: true, StrVal: name}, nil
}

// lexNumber reads the numeric grammar of spec §4.1: a decimal integer that
// may upgrade to float via '.' digits or an exponent, or a 0x/0X hex
// integer.
func (l *Lexer) lexNumber() (Token, *diagnostics.CompilerError) {
	var sb strings.Builder

	first, _ := l.readByte()
	pos := l.pos()
	sb.WriteByte(first)

	if first == '0' {
		if b, ok := l.readByte(); ok && (b == 'x' || b == 'X') {
			var hex strings.Builder
			for {
				b, ok := l.readByte()
				if !ok || !isHexDigit(b) {
					if ok {
						l.pushBack(b)
					}
					break
				}
				hex.WriteByte(b)
			}
			if hex.Len() == 0 {
				return Token{}, l.errf(diagnostics.CodeLexical, "0x", "hex literal has no digits")
			}
			v, err := strconv.ParseInt(hex.String(), 16, 64)
			if err != nil {
				return Token{}, l.errf(diagnostics.CodeLexical, hex.String(), "invalid hex literal: %s", err)
			}
			return Token{Type: INT, Line: pos.Line, Column: pos.Column, HasPayload: true, IntVal: v}, nil
		} else if ok {
			l.pushBack(b)
		}
	}

	for {
		b, ok := l.readByte()
		if !ok || !isDigit(b) {
			if ok {
				l.pushBack(b)
			}
			break
		}
		sb.WriteByte(b)
	}

	isFloat := false

	if b, ok := l.readByte(); ok && b == '.' {
		if next, ok2 := l.readByte(); ok2 && isDigit(next) {
			isFloat = true
			sb.WriteByte('.')
			sb.WriteByte(next)
			for {
				b, ok := l.readByte()
				if !ok || !isDigit(b) {
					if ok {
						l.pushBack(b)
					}
					break
				}
				sb.WriteByte(b)
			}
		} else {
			if ok2 {
				l.pushBack(next)
			}
			l.pushBack(b)
		}
	} else if ok {
		l.pushBack(b)
	}

	if b, ok := l.readByte(); ok && (b == 'e' || b == 'E') {
		var exp strings.Builder
		exp.WriteByte(b)
		if sign, ok2 := l.readByte(); ok2 && (sign == '+' || sign == '-') {
			exp.WriteByte(sign)
			if digit, ok3 := l.readByte(); ok3 && isDigit(digit) {
				exp.WriteByte(digit)
			} else {
				return Token{}, l.errf(diagnostics.CodeLexical, exp.String(), "malformed exponent")
			}
		} else if ok2 && isDigit(sign) {
			exp.WriteByte(sign)
		} else {
			return Token{}, l.errf(diagnostics.CodeLexical, exp.String(), "malformed exponent")
		}
		for {
			b, ok := l.readByte()
			if !ok || !isDigit(b) {
				if ok {
					l.pushBack(b)
				}
				break
			}
			exp.WriteByte(b)
		}
		isFloat = true
		sb.WriteString(exp.String())
	} else if ok {
		l.pushBack(b)
	}

	if isFloat {
		v, err := strconv.ParseFloat(sb.String(), 64)
		if err != nil {
			return Token{}, l.errf(diagnostics.CodeLexical, sb.String(), "invalid float literal: %s", err)
		}
		return Token{Type: FLOAT, Line: pos.Line, Column: pos.Column, HasPayload: true, FloatVal: v}, nil
	}
	v, err := strconv.ParseInt(sb.String(), 10, 64)
	if err != nil {
		return Token{}, l.errf(diagnostics.CodeLexical, sb.String(), "invalid integer literal: %s", err)
	}
	return Token{Type: INT, Line: pos.Line, Column: pos.Column, HasPayload: true, IntVal: v}, nil
}

// doLexString reads either a single-line "..." string or, when the opener
// is immediately followed by two more quotes, a triple-quoted multi-line
// string (spec §4.1).
func (l *Lexer) doLexString() (Token, *diagnostics.CompilerError) {
	l.readByte() // consume opening quote
	pos := l.pos()

	// A second '"' immediately after the opening quote is either the
	// close of an empty string or the second quote of a triple-quote
	// opener; peeking the third character (without consuming it unless
	// it confirms a triple quote) distinguishes the two without ever
	// needing to un-consume the already-closed empty string (spec §4.1:
	// "An empty \"\" is a valid empty string, not the start of a
	// multi-line").
	if b, ok := l.readByte(); ok && b == '"' {
		if b2, ok2 := l.peekByte(); ok2 && b2 == '"' {
			l.readByte() // consume the confirmed third quote
			return l.lexMultilineString(pos)
		}
		return Token{Type: STRING, Line: pos.Line, Column: pos.Column, HasPayload: true, StrVal: ""}, nil
	} else if ok {
		l.pushBack(b)
	}

	var sb strings.Builder
	for {
		b, ok := l.readByte()
		if !ok {
			return Token{}, l.errf(diagnostics.CodeLexical, sb.String(), "unterminated string literal")
		}
		if b == '"' {
			break
		}
		if b < 32 {
			return Token{}, l.errf(diagnostics.CodeLexical, sb.String(), "illegal control byte %d in string literal", b)
		}
		if b != '\\' {
			sb.WriteByte(b)
			continue
		}
		esc, ok := l.readByte()
		if !ok {
			return Token{}, l.errf(diagnostics.CodeLexical, sb.String(), "unterminated escape sequence")
		}
		switch esc {
		case '"':
			sb.WriteByte('"')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\':
			sb.WriteByte('\\')
		case '0':
			sb.WriteByte(0)
		case 'x':
			h1, ok1 := l.readByte()
			h2, ok2 := l.readByte()
			if !ok1 || !ok2 || !isHexDigit(h1) || !isHexDigit(h2) {
				return Token{}, l.errf(diagnostics.CodeLexical, "\\x", "malformed \\x escape")
			}
			v, err := strconv.ParseInt(string([]byte{h1, h2}), 16, 16)
			if err != nil || v > 127 {
				return Token{}, l.errf(diagnostics.CodeLexical, "\\x", "\\x escape value out of range 0..127")
			}
			sb.WriteByte(byte(v))
		default:
			return Token{}, l.errf(diagnostics.CodeLexical, string(esc), "unknown escape sequence \\%c", esc)
		}
	}
	return Token{Type: STRING, Line: pos.Line, Column: pos.Column, HasPayload: true, StrVal: sb.String()}, nil
}

// lexMultilineString reads the body of a triple-quoted string. The opening
// """ has already been consumed. The first line feed immediately after the
// opening is dropped; the string ends at the first """, no escape
// sequences are processed, and inner quotes that do not form a closing
// triple are kept as literal content.
func (l *Lexer) lexMultilineString(pos diagnostics.Position) (Token, *diagnostics.CompilerError) {
	if b, ok := l.readByte(); ok && b == '\n' {
		// dropped: the first line feed after the opening is not part of
		// the string body.
	} else if ok {
		l.pushBack(b)
	}

	var sb strings.Builder
	for {
		b, ok := l.readByte()
		if !ok {
			return Token{}, l.errf(diagnostics.CodeLexical, sb.String(), "unterminated multi-line string literal")
		}
		if b == '"' {
			b2, ok2 := l.readByte()
			if ok2 && b2 == '"' {
				b3, ok3 := l.readByte()
				if ok3 && b3 == '"' {
					return Token{Type: MLSTRING, Line: pos.Line, Column: pos.Column, HasPayload: true, StrVal: sb.String()}, nil
				}
				if ok3 {
					l.pushBack(b3)
				}
				sb.WriteByte('"')
				sb.WriteByte('"')
				continue
			}
			if ok2 {
				l.pushBack(b2)
			}
			sb.WriteByte('"')
			continue
		}
		sb.WriteByte(b)
	}
}

// lexSlash handles '/' itself, after the comment-opener cases ("//", "/*")
// have already been intercepted in scan.
func (l *Lexer) lexSlash() (Token, *diagnostics.CompilerError) {
	l.readByte()
	pos := l.pos()
	return Token{Type: SLASH, Line: pos.Line, Column: pos.Column}, nil
}

// lexSingle returns a handler that consumes exactly one character and
// yields a fixed token kind.
func (l *Lexer) lexSingle(kind TokenType) func() (Token, *diagnostics.CompilerError) {
	return func() (Token, *diagnostics.CompilerError) {
		l.readByte()
		pos := l.pos()
		return Token{Type: kind, Line: pos.Line, Column: pos.Column}, nil
	}
}

// lexTwoCharOr commits the first character then peeks one more; on a match
// against second it consumes both and yields twoKind, else it pushes the
// peeked character back and yields oneKind (spec §4.1).
func (l *Lexer) lexTwoCharOr(second byte, twoKind, oneKind TokenType) func() (Token, *diagnostics.CompilerError) {
	return func() (Token, *diagnostics.CompilerError) {
		l.readByte()
		pos := l.pos()
		if b, ok := l.readByte(); ok && b == second {
			return Token{Type: twoKind, Line: pos.Line, Column: pos.Column}, nil
		} else if ok {
			l.pushBack(b)
		}
		return Token{Type: oneKind, Line: pos.Line, Column: pos.Column}, nil
	}
}

// lexAmpOrPipe requires the character to be doubled ("&&", "||"); a lone
// '&' or '|' is a lexical error (spec §4.1).
func (l *Lexer) lexAmpOrPipe(self byte, kind TokenType) func() (Token, *diagnostics.CompilerError) {
	return func() (Token, *diagnostics.CompilerError) {
		b, _ := l.readByte()
		pos := l.pos()
		if next, ok := l.readByte(); ok && next == self {
			return Token{Type: kind, Line: pos.Line, Column: pos.Column}, nil
		} else if ok {
			l.pushBack(next)
		}
		return Token{}, l.errf(diagnostics.CodeLexical, string(b), "lone %q is not a valid operator", b)
	}
}
