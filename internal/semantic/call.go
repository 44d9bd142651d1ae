// Package semantic implements the IFJ25 semantic pass (spec §4.3): the
// binary-operator static type table, resolution of the deferred-reference
// list, and the final declared-function check. Call resolution is shared
// between the parser (which resolves a call immediately when its callee is
// already declared) and the deferred pass (which resolves the same shape
// of node once every static declaration has been seen), so it lives here
// rather than being duplicated in internal/parser.
package semantic

import (
	"fmt"

	"github.com/ifj25/ifjc/internal/ast"
	"github.com/ifj25/ifjc/internal/diagnostics"
	"github.com/ifj25/ifjc/internal/symtab"
)

func callErr(code diagnostics.ErrorCode, call *ast.Node, format string, args ...any) *diagnostics.CompilerError {
	pos := diagnostics.Position{Line: call.Tok.Line, Column: call.Tok.Column}
	return diagnostics.New(code, pos, fmt.Sprintf(format, args...), call.Tok.Literal(), "", "")
}

// ResolveCallNode resolves a KindCall or KindIfjCall node against the
// global scope: it mangles base by the node's argument count, looks up the
// matching FUNC symbol, and - on success - checks each argument's static
// type against the declared parameter types before stamping the call's
// Mangled and Type fields (spec §4.3b, "Calls").
//
// Failure modes, most specific first: a getter of the same base name
// cannot be called with arguments; a setter cannot be called as a
// function; a function of the same base name exists but not at this
// arity; otherwise the base name is wholly undefined.
func ResolveCallNode(global *symtab.Scope, call *ast.Node, base string) *diagnostics.CompilerError {
	var args []*ast.Node
	if call.Right != nil {
		args = call.Right.Children
	}
	arity := len(args)

	mangled := symtab.Mangle(symtab.Func, base, arity)
	sym := global.Find(mangled)
	if sym == nil || !sym.Declared {
		if g := global.Find(symtab.Mangle(symtab.Get, base, 0)); g != nil && g.Declared {
			return callErr(diagnostics.CodeSemanticOther, call, "getter %q cannot be called with arguments", base)
		}
		if s := global.Find(symtab.Mangle(symtab.Set, base, 1)); s != nil && s.Declared {
			return callErr(diagnostics.CodeSemanticOther, call, "setter %q cannot be called as a function", base)
		}
		if hasOtherArity(global, base) {
			return callErr(diagnostics.CodeArgument, call, "%q takes a different number of arguments", base)
		}
		return callErr(diagnostics.CodeUndefinedSymbol, call, "undefined function %q", base)
	}

	for i, arg := range args {
		if i >= len(sym.ParamTypes) {
			break
		}
		want := sym.ParamTypes[i]
		if want == ast.Unknown || arg.Type == ast.Unknown {
			continue
		}
		if !arg.Type.Intersects(want) {
			return callErr(diagnostics.CodeArgument, call, "argument %d of %q has an incompatible type", i+1, base)
		}
	}

	call.Mangled = mangled
	call.Type = sym.Type
	if call.Type == ast.Unknown {
		// sym.Type itself is unknown when collectReturnTypes saw the
		// function return one of its own (untyped) parameters - the
		// parameter's concrete type at THIS call site is still real
		// information, so widen rather than collapse to bare UNKNOWN
		// (spec §8 scenario (d)).
		for _, arg := range args {
			call.Type |= arg.Type
		}
	}
	return nil
}

// hasOtherArity reports whether any FUNC symbol shares base under a
// different argument count, to tell an arity mismatch apart from a wholly
// undefined function in the diagnostic raised.
func hasOtherArity(global *symtab.Scope, base string) bool {
	prefix := base + "$"
	for _, sym := range global.All() {
		if sym.Kind == symtab.Func && sym.Declared && len(sym.Name) > len(prefix) && sym.Name[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
