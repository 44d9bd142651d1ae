package parser

import (
	"github.com/ifj25/ifjc/internal/ast"
	"github.com/ifj25/ifjc/internal/diagnostics"
	"github.com/ifj25/ifjc/internal/lexer"
	"github.com/ifj25/ifjc/internal/symtab"
)

// parseProgram parses `class IDENTIFIER { static-decl* } <EOL?> <EOF>`
// (spec §4.2).
func (p *Parser) parseProgram() (*ast.Node, *diagnostics.CompilerError) {
	if p.cur.Type != lexer.CLASS {
		return nil, p.syntaxErr("expected 'class', got %s", p.cur.Type)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.IDENT {
		return nil, p.syntaxErr("expected class name, got %s", p.cur.Type)
	}
	classTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.LBRACE {
		return nil, p.syntaxErr("expected '{' after class name, got %s", p.cur.Type)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var decls []*ast.Node
	for {
		if err := p.skipEOLs(); err != nil {
			return nil, err
		}
		if p.cur.Type == lexer.RBRACE {
			break
		}
		if p.cur.Type == lexer.EOF {
			return nil, p.syntaxErr("unexpected end of file inside class body")
		}
		decl, err := p.parseStaticDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	if err := p.advance(); err != nil { // consume '}'
		return nil, err
	}
	if err := p.skipEOLs(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.EOF {
		return nil, p.syntaxErr("expected end of file after class body, got %s", p.cur.Type)
	}
	return ast.NewList(ast.KindClass, classTok, decls...), nil
}

// parseStaticDecl dispatches on what follows `static IDENT` to tell apart
// a function, a setter, and a getter (spec §4.2).
func (p *Parser) parseStaticDecl() (*ast.Node, *diagnostics.CompilerError) {
	if p.cur.Type != lexer.STATIC {
		return nil, p.syntaxErr("expected 'static', got %s", p.cur.Type)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.IDENT {
		return nil, p.syntaxErr("expected identifier after 'static', got %s", p.cur.Type)
	}
	nameTok := p.cur
	base := nameTok.StrVal
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch p.cur.Type {
	case lexer.LPAREN:
		return p.parseFunctionDecl(nameTok, base)
	case lexer.ASSIGN:
		return p.parseSetterDecl(nameTok, base)
	case lexer.LBRACE:
		return p.parseGetterDecl(nameTok, base)
	default:
		return nil, p.syntaxErr("expected '(', '=', or '{' after static member name, got %s", p.cur.Type)
	}
}

// declareGlobal installs a FUNC/GET/SET symbol in the global scope,
// reporting a redefinition error if the same mangled name was already
// declared (spec §4.2 step ii).
func (p *Parser) declareGlobal(kind symtab.Kind, base string, numParams int) (*symtab.Symbol, *diagnostics.CompilerError) {
	mangled := symtab.Mangle(kind, base, numParams)
	if existing := p.scopes.Global().Find(mangled); existing != nil && existing.Declared {
		return nil, p.redefErr(mangled)
	}
	sym := symtab.NewSymbol(base, kind, numParams)
	sym.Declared = true
	p.scopes.Global().Add(sym)
	return sym, nil
}

// parseFunctionDecl parses `static IDENT ( params ) block` with cur sitting
// on the opening '(' (spec §4.2 steps i-iii).
func (p *Parser) parseFunctionDecl(nameTok lexer.Token, base string) (*ast.Node, *diagnostics.CompilerError) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	var params []*ast.Node
	for p.cur.Type != lexer.RPAREN {
		if len(params) > 0 {
			if p.cur.Type != lexer.COMMA {
				return nil, p.syntaxErr("expected ',' or ')' in parameter list, got %s", p.cur.Type)
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if p.cur.Type != lexer.IDENT {
			return nil, p.syntaxErr("expected parameter name, got %s", p.cur.Type)
		}
		params = append(params, ast.New(ast.KindIdent, p.cur))
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.advance(); err != nil { // consume ')'
		return nil, err
	}

	sym, err := p.declareGlobal(symtab.Func, base, len(params))
	if err != nil {
		return nil, err
	}

	p.scopes.Push()
	depth := p.scopes.Depth() - 1
	for _, param := range params {
		pname := param.Tok.StrVal
		if p.scopes.Current().Find(pname) != nil {
			p.scopes.Pop()
			return nil, p.redefErr(pname)
		}
		p.scopes.Current().Add(symtab.NewSymbol(pname, symtab.Param, 0))
		param.Depth = depth
	}

	body, returnType, perr := p.parseBlockCollectingReturns()
	p.scopes.Pop()
	if perr != nil {
		return nil, perr
	}
	sym.Type = returnType

	fn := ast.NewPair(ast.KindFuncDecl, nameTok, ast.NewList(ast.KindParams, lexer.Token{}, params...), body)
	fn.Mangled = sym.Name
	return fn, nil
}

// parseSetterDecl parses `static IDENT = ( IDENT ) block`, enforcing
// exactly one parameter at parse time (spec §4.2).
func (p *Parser) parseSetterDecl(nameTok lexer.Token, base string) (*ast.Node, *diagnostics.CompilerError) {
	if err := p.advance(); err != nil { // consume '='
		return nil, err
	}
	if p.cur.Type != lexer.LPAREN {
		return nil, p.syntaxErr("expected '(' after '=' in setter declaration, got %s", p.cur.Type)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.IDENT {
		return nil, p.syntaxErr("setter declarations take exactly one parameter")
	}
	paramTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.RPAREN {
		return nil, p.syntaxErr("setter declarations take exactly one parameter")
	}
	if err := p.advance(); err != nil { // consume ')'
		return nil, err
	}

	sym, err := p.declareGlobal(symtab.Set, base, 1)
	if err != nil {
		return nil, err
	}

	p.scopes.Push()
	depth := p.scopes.Depth() - 1
	p.scopes.Current().Add(symtab.NewSymbol(paramTok.StrVal, symtab.Param, 0))
	param := ast.New(ast.KindIdent, paramTok)
	param.Depth = depth

	body, returnType, perr := p.parseBlockCollectingReturns()
	p.scopes.Pop()
	if perr != nil {
		return nil, perr
	}
	sym.Type = returnType

	set := ast.NewPair(ast.KindSetterDecl, nameTok, ast.NewList(ast.KindParams, lexer.Token{}, param), body)
	set.Mangled = sym.Name
	return set, nil
}

// parseGetterDecl parses `static IDENT block` - a zero-parameter accessor
// (spec §4.2).
func (p *Parser) parseGetterDecl(nameTok lexer.Token, base string) (*ast.Node, *diagnostics.CompilerError) {
	sym, err := p.declareGlobal(symtab.Get, base, 0)
	if err != nil {
		return nil, err
	}

	p.scopes.Push()
	body, returnType, perr := p.parseBlockCollectingReturns()
	p.scopes.Pop()
	if perr != nil {
		return nil, perr
	}
	sym.Type = returnType

	get := ast.NewPair(ast.KindGetterDecl, nameTok, nil, body)
	get.Mangled = sym.Name
	return get, nil
}

// collectReturnTypes walks a parsed function/getter/setter body and unions
// the static types of every `return` statement's expression (spec §4.2:
// "the parser records ... the union of the static types returned by all
// return statements"). A bare `return` contributes NULL.
func collectReturnTypes(body *ast.Node) ast.ExprType {
	var union ast.ExprType
	var walk func(*ast.Node)
	walk = func(n *ast.Node) {
		if n == nil {
			return
		}
		if n.Kind == ast.KindReturn {
			if n.Right != nil {
				union |= n.Right.Type
			} else {
				union |= ast.Null
			}
			return
		}
		if n.Left != nil {
			walk(n.Left)
		}
		if n.Right != nil {
			walk(n.Right)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(body)
	if union == 0 {
		return ast.Unknown
	}
	return union
}
