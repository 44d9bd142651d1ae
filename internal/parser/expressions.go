package parser

import (
	"github.com/ifj25/ifjc/internal/ast"
	"github.com/ifj25/ifjc/internal/diagnostics"
	"github.com/ifj25/ifjc/internal/lexer"
	"github.com/ifj25/ifjc/internal/semantic"
	"github.com/ifj25/ifjc/internal/symtab"
)

// The expression grammar (spec §4.2.1) is implemented as a tower of one
// function per precedence class, highest-binding at the bottom, rather
// than a single Pratt/precedence-climbing function over a flat precedence
// map. Two classes don't fit a flat map cleanly: relational and equality
// operators are non-chaining (`a < b < c` is a syntax error, so each level
// consumes at most one operator, never a loop), and unary `!` sits between
// `is` and `&&` rather than beside the atoms. A tower expresses both
// directly; the spec's own design note permits either strategy as long as
// the grid and the `is TYPE` lookahead rule are preserved.

// parseExpression is the entry point, binding at `||` (lowest precedence).
func (p *Parser) parseExpression() (*ast.Node, *diagnostics.CompilerError) {
	return p.parseOr()
}

func (p *Parser) parseOr() (*ast.Node, *diagnostics.CompilerError) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.OR {
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, rerr := p.parseAnd()
		if rerr != nil {
			return nil, rerr
		}
		left = ast.NewPair(ast.KindBinary, opTok, left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (*ast.Node, *diagnostics.CompilerError) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.AND {
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, rerr := p.parseNot()
		if rerr != nil {
			return nil, rerr
		}
		left = ast.NewPair(ast.KindBinary, opTok, left, right)
	}
	return left, nil
}

// parseNot handles unary `!`, recursing on itself so `!!x` parses as two
// nested KindUnary nodes.
func (p *Parser) parseNot() (*ast.Node, *diagnostics.CompilerError) {
	if p.cur.Type == lexer.NOT {
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.NewPair(ast.KindUnary, opTok, nil, operand), nil
	}
	return p.parseIs()
}

// parseIs is single-use (non-chaining): at most one `is TYPE` suffix, its
// right operand required by lookahead to be a type keyword (spec §4.2.1
// class 7).
func (p *Parser) parseIs() (*ast.Node, *diagnostics.CompilerError) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.IS {
		return left, nil
	}
	opTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if !p.cur.Type.IsTypeKeyword() {
		return nil, p.syntaxErr("expected a type name after 'is', got %s", p.cur.Type)
	}
	typeTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	right := ast.New(ast.KindTypeName, typeTok)
	return ast.NewPair(ast.KindIsExpr, opTok, left, right), nil
}

// parseEquality is single-use: `a == b == c` is a syntax error, enforced
// by consuming at most one operator here instead of looping.
func (p *Parser) parseEquality() (*ast.Node, *diagnostics.CompilerError) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.EQ && p.cur.Type != lexer.NEQ {
		return left, nil
	}
	opTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, rerr := p.parseRelational()
	if rerr != nil {
		return nil, rerr
	}
	return ast.NewPair(ast.KindBinary, opTok, left, right), nil
}

// parseRelational is single-use for the same reason as parseEquality.
func (p *Parser) parseRelational() (*ast.Node, *diagnostics.CompilerError) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	switch p.cur.Type {
	case lexer.LT, lexer.LE, lexer.GT, lexer.GE:
	default:
		return left, nil
	}
	opTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, rerr := p.parseAdditive()
	if rerr != nil {
		return nil, rerr
	}
	return ast.NewPair(ast.KindBinary, opTok, left, right), nil
}

func (p *Parser) parseAdditive() (*ast.Node, *diagnostics.CompilerError) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.PLUS || p.cur.Type == lexer.MINUS {
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, rerr := p.parseMultiplicative()
		if rerr != nil {
			return nil, rerr
		}
		left = ast.NewPair(ast.KindBinary, opTok, left, right)
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (*ast.Node, *diagnostics.CompilerError) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.ASTERISK || p.cur.Type == lexer.SLASH {
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, rerr := p.parsePrimary()
		if rerr != nil {
			return nil, rerr
		}
		left = ast.NewPair(ast.KindBinary, opTok, left, right)
	}
	return left, nil
}

// parsePrimary parses an atom, a parenthesized sub-expression, a call, or
// an Ifj.* builtin call (spec §4.2.1 classes 1-2, §4.2.3).
func (p *Parser) parsePrimary() (*ast.Node, *diagnostics.CompilerError) {
	tok := p.cur
	switch tok.Type {
	case lexer.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != lexer.RPAREN {
			return nil, p.syntaxErr("expected ')', got %s", p.cur.Type)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil

	case lexer.IFJ:
		return p.parseIfjCall()

	case lexer.IDENT, lexer.GLOBAL_IDENT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type == lexer.LPAREN {
			return p.parseCallTail(tok)
		}
		return p.resolveIdentRead(tok), nil

	case lexer.INT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode(ast.KindIntLit, tok, ast.Int), nil

	case lexer.FLOAT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode(ast.KindFloatLit, tok, ast.Float), nil

	case lexer.STRING, lexer.MLSTRING:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode(ast.KindStrLit, tok, ast.String), nil

	case lexer.TRUE, lexer.FALSE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode(ast.KindBoolLit, tok, ast.Bool), nil

	case lexer.NULL:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode(ast.KindNullLit, tok, ast.Null), nil

	default:
		return nil, p.syntaxErr("unexpected token %s in expression", tok.Type)
	}
}

func literalNode(kind ast.Kind, tok lexer.Token, typ ast.ExprType) *ast.Node {
	n := ast.New(kind, tok)
	n.Type = typ
	return n
}

// resolveIdentRead resolves a bare identifier against the live scope
// stack, then a declared getter, matching spec §4.2.2. Local variables are
// always resolvable immediately - `var` must precede any read of it in the
// same linear statement stream - so only a getter declared later in the
// file, or a genuinely undefined name, reaches the unresolved branch;
// both are indistinguishable until the whole class body has been parsed,
// so resolution is deferred rather than raising "undefined variable"
// here (spec §4.3b).
func (p *Parser) resolveIdentRead(tok lexer.Token) *ast.Node {
	n := ast.New(ast.KindIdent, tok)
	if sym := p.scopes.Resolve(tok.StrVal); sym != nil {
		n.Type = sym.Type
		n.Depth = sym.Depth
		return n
	}
	if getter := p.scopes.Global().Find(symtab.Mangle(symtab.Get, tok.StrVal, 0)); getter != nil && getter.Declared {
		n.Mangled = getter.Name
		n.Type = getter.Type
		return n
	}
	n.Type = ast.Unknown
	p.deferred.Add(n)
	p.sawUnresolved = true
	return n
}

// parseArgs parses a parenthesized, comma-separated argument list with cur
// positioned on the opening '(' (spec §4.2.3: "Arguments are restricted to
// atoms: identifier or literal").
func (p *Parser) parseArgs() (*ast.Node, *diagnostics.CompilerError) {
	openTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args []*ast.Node
	for p.cur.Type != lexer.RPAREN {
		if len(args) > 0 {
			if p.cur.Type != lexer.COMMA {
				return nil, p.syntaxErr("expected ',' or ')' in argument list, got %s", p.cur.Type)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseArgAtom()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if err := p.advance(); err != nil { // consume ')'
		return nil, err
	}
	return ast.NewList(ast.KindArgs, openTok, args...), nil
}

func (p *Parser) parseArgAtom() (*ast.Node, *diagnostics.CompilerError) {
	tok := p.cur
	switch tok.Type {
	case lexer.IDENT, lexer.GLOBAL_IDENT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.resolveIdentRead(tok), nil
	case lexer.INT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode(ast.KindIntLit, tok, ast.Int), nil
	case lexer.FLOAT:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode(ast.KindFloatLit, tok, ast.Float), nil
	case lexer.STRING, lexer.MLSTRING:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode(ast.KindStrLit, tok, ast.String), nil
	case lexer.TRUE, lexer.FALSE:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode(ast.KindBoolLit, tok, ast.Bool), nil
	case lexer.NULL:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode(ast.KindNullLit, tok, ast.Null), nil
	default:
		return nil, p.syntaxErr("expected an identifier or literal argument, got %s", tok.Type)
	}
}

// parseCallTail parses `( args )` after an identifier already consumed,
// resolving immediately against the global scope when a matching function
// is already declared, and deferring the node for a second look otherwise
// (spec §4.2.3: "if no matching base$arity exists yet, the node is
// appended to the deferred list").
func (p *Parser) parseCallTail(nameTok lexer.Token) (*ast.Node, *diagnostics.CompilerError) {
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	call := ast.NewPair(ast.KindCall, nameTok, nil, args)

	base := nameTok.StrVal
	arity := 0
	if args != nil {
		arity = len(args.Children)
	}
	if sym := p.scopes.Global().Find(symtab.Mangle(symtab.Func, base, arity)); sym != nil && sym.Declared {
		if rerr := semantic.ResolveCallNode(p.scopes.Global(), call, base); rerr != nil {
			return nil, rerr
		}
		return call, nil
	}

	p.deferred.Add(call)
	p.sawUnresolved = true
	return call, nil
}

// parseIfjCall parses `Ifj . IDENT ( args )`. Builtins are primed into the
// global scope as already-declared FUNC symbols before parsing begins, so
// this always resolves immediately; it can still fail on wrong arity or an
// unknown builtin name.
func (p *Parser) parseIfjCall() (*ast.Node, *diagnostics.CompilerError) {
	if err := p.advance(); err != nil { // consume 'Ifj'
		return nil, err
	}
	if p.cur.Type != lexer.DOT {
		return nil, p.syntaxErr("expected '.' after 'Ifj', got %s", p.cur.Type)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.IDENT {
		return nil, p.syntaxErr("expected a builtin name after 'Ifj.', got %s", p.cur.Type)
	}
	nameTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.LPAREN {
		return nil, p.syntaxErr("expected '(' after Ifj.%s", nameTok.StrVal)
	}
	args, aerr := p.parseArgs()
	if aerr != nil {
		return nil, aerr
	}
	call := ast.NewPair(ast.KindIfjCall, nameTok, nil, args)
	if rerr := semantic.ResolveCallNode(p.scopes.Global(), call, "Ifj."+nameTok.StrVal); rerr != nil {
		return nil, rerr
	}
	return call, nil
}
