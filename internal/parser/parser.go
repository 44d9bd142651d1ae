// Package parser implements the IFJ25 recursive-descent parser (spec
// §4.2): one token of lookahead, a scope stack mutated in lockstep with
// block structure, and a deferred list for references that cannot be
// resolved on first sight.
package parser

import (
	"fmt"

	"github.com/ifj25/ifjc/internal/ast"
	"github.com/ifj25/ifjc/internal/diagnostics"
	"github.com/ifj25/ifjc/internal/lexer"
	"github.com/ifj25/ifjc/internal/symtab"
)

// Parser owns a reference to the lexer, the scope stack, and the deferred
// list (spec §4.2) - it does not own any of them; the driver constructs
// and tears them down.
type Parser struct {
	lex      *lexer.Lexer
	scopes   *symtab.Stack
	deferred *symtab.Deferred
	cur      lexer.Token

	// sawUnresolved is set by resolveIdentRead/parseCallTail whenever they
	// queue a node into the deferred list, and reset by parseIdentStatement
	// just before it parses an assignment's RHS. An assignment whose RHS set this
	// flag additionally queues the KindAssign node itself, since its
	// left-hand type and owning symbol cannot be stamped until the
	// deferred reference actually resolves (spec §4.3b, "Assignments").
	sawUnresolved bool
}

// New builds a Parser. scopes must already have its global scope pushed
// (index 0) and primed with the Ifj.* builtins by the caller.
func New(lex *lexer.Lexer, scopes *symtab.Stack, deferred *symtab.Deferred) *Parser {
	return &Parser{lex: lex, scopes: scopes, deferred: deferred}
}

// Parse consumes the whole program and returns its root KindClass node.
// Assumes the lexer's prologue has already been read by the caller.
func (p *Parser) Parse() (*ast.Node, *diagnostics.CompilerError) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.EOL {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return p.parseProgram()
}

// Deferred returns the deferred list this parser appended to, for the
// driver to hand to the semantic pass.
func (p *Parser) Deferred() *symtab.Deferred {
	return p.deferred
}

func (p *Parser) advance() *diagnostics.CompilerError {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) diagPos() diagnostics.Position {
	return diagnostics.Position{Line: p.cur.Line, Column: p.cur.Column}
}

func (p *Parser) syntaxErr(format string, args ...any) *diagnostics.CompilerError {
	return diagnostics.New(diagnostics.CodeSyntax, p.diagPos(), fmt.Sprintf(format, args...), p.cur.String(), p.lex.Source(), p.lex.File())
}

func (p *Parser) semanticErr(code diagnostics.ErrorCode, format string, args ...any) *diagnostics.CompilerError {
	return diagnostics.New(code, p.diagPos(), fmt.Sprintf(format, args...), p.cur.String(), p.lex.Source(), p.lex.File())
}

func (p *Parser) redefErr(name string) *diagnostics.CompilerError {
	return p.semanticErr(diagnostics.CodeRedefinition, "redefinition of %q", name)
}

// expectEOL consumes a statement-terminating EOL if present; a following
// '}' or EOF is accepted in its place (the last statement of a block need
// not be followed by a blank line before the closing brace).
func (p *Parser) expectEOL() *diagnostics.CompilerError {
	switch p.cur.Type {
	case lexer.EOL:
		return p.advance()
	case lexer.RBRACE, lexer.EOF:
		return nil
	default:
		return p.syntaxErr("expected end of line, got %s", p.cur.Type)
	}
}

// skipEOLs consumes any run of blank-line tokens sitting at the current
// position.
func (p *Parser) skipEOLs() *diagnostics.CompilerError {
	for p.cur.Type == lexer.EOL {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}
