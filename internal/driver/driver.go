// Package driver orchestrates one compile: lexer, parser, semantic pass,
// and code generator, wired together the way the teacher's
// cmd/dwscript/cmd/compile.go threads its own phases (spec §4.5). Unlike
// the teacher, which keeps that orchestration inline in a Cobra RunE
// function, this compiler's single no-config entry point (read stdin,
// write stdout, exit on the first fatal diagnostic) is worth its own
// package so `cmd/ifjc`'s subcommands can each run a prefix of the same
// pipeline without duplicating setup.
package driver

import (
	"io"

	"github.com/ifj25/ifjc/internal/ast"
	"github.com/ifj25/ifjc/internal/codegen"
	"github.com/ifj25/ifjc/internal/diagnostics"
	"github.com/ifj25/ifjc/internal/lexer"
	"github.com/ifj25/ifjc/internal/parser"
	"github.com/ifj25/ifjc/internal/semantic"
	"github.com/ifj25/ifjc/internal/symtab"
)

// NewScopes builds a scope stack with the global scope pushed and every
// Ifj.* builtin primed as a declared FUNC symbol (spec §4.5's "primes the
// global scope with the Ifj.* built-ins"). Parse builds its symbol table
// with it, so `ifjc parse`, which stops before semantic resolution, sees
// the same symbol table a full compile uses.
func NewScopes() *symtab.Stack {
	scopes := symtab.NewStack()
	scopes.Push()
	primeBuiltins(scopes.Global())
	return scopes
}

// primeBuiltins installs the Ifj.* namespace (spec §4.4's builtin table)
// with correct arities and parameter-type masks, declared = true so the
// semantic pass's checkDeclared never flags them as missing a body.
func primeBuiltins(global *symtab.Scope) {
	def := func(name string, arity int, params []ast.ExprType, ret ast.ExprType) {
		sym := symtab.NewSymbol("Ifj."+name, symtab.Func, arity)
		sym.Declared = true
		sym.ParamTypes = params
		sym.Type = ret
		global.Add(sym)
	}

	def("write", 1, []ast.ExprType{ast.Unknown}, ast.Null)
	def("read_str", 0, nil, ast.String)
	def("read_num", 0, nil, ast.Float)
	def("floor", 1, []ast.ExprType{ast.Int | ast.Float}, ast.Int)
	def("str", 1, []ast.ExprType{ast.Unknown}, ast.String)
	def("length", 1, []ast.ExprType{ast.String}, ast.Int)
	def("strcmp", 2, []ast.ExprType{ast.String, ast.String}, ast.Int)
	def("ord", 2, []ast.ExprType{ast.String, ast.Int}, ast.Int)
	def("chr", 1, []ast.ExprType{ast.Int}, ast.String)
	def("substring", 3, []ast.ExprType{ast.String, ast.Int, ast.Int}, ast.String|ast.Null)
}

// Parse runs the lexer's prologue check and the parser, returning the
// program root and the scope stack/deferred list the semantic pass (and,
// after it, the code generator) needs. Used directly by `ifjc parse`, which
// stops here.
func Parse(r io.Reader, file string) (*ast.Node, *symtab.Stack, *symtab.Deferred, *diagnostics.CompilerError) {
	lex := lexer.New(r, file)
	if err := lex.ReadPrologue(); err != nil {
		return nil, nil, nil, err
	}

	scopes := NewScopes()
	deferred := symtab.NewDeferred()
	p := parser.New(lex, scopes, deferred)
	root, err := p.Parse()
	if err != nil {
		return nil, scopes, deferred, err
	}
	return root, scopes, p.Deferred(), nil
}

// Compile runs the full pipeline (spec §4.5): lex the prologue, parse,
// resolve, and - if every phase survives - emit IFJcode25 to w. It tears
// down nothing explicitly beyond what Go's garbage collector already
// reclaims once scopes/deferred/root fall out of scope; the teacher's
// "tear down all owned structures in reverse order" has no analogue here
// since nothing in this pipeline holds an OS resource beyond r/w
// themselves, which the caller owns.
func Compile(r io.Reader, w io.Writer, file string) *diagnostics.CompilerError {
	root, scopes, deferred, err := Parse(r, file)
	if err != nil {
		return err
	}

	if err := semantic.Resolve(scopes, deferred, root); err != nil {
		return err
	}

	return codegen.New(w).Emit(root, scopes.Global())
}
