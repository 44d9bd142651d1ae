package codegen

import "github.com/ifj25/ifjc/internal/ast"

// genFuncDecl emits a function body: CREATEFRAME/PUSHFRAME, parameters
// popped off the stack in reverse declaration order into fresh locals,
// the body, then a default nil return if control falls off the end
// (spec §4.4, original_source's genFunDec).
func (g *Generator) genFuncDecl(n *ast.Node) {
	g.emitBlank()
	g.emit("LABEL %s", mangledLabel(n.Mangled))
	g.genFunctionBody(n.Left, n.Right)
}

// genGetterDecl emits a zero-parameter accessor body under "<base>_get".
func (g *Generator) genGetterDecl(n *ast.Node) {
	g.emitBlank()
	g.emit("LABEL %s", mangledLabel(n.Mangled))
	g.genFunctionBody(nil, n.Right)
}

// genSetterDecl emits a one-parameter accessor body under "<base>_set".
func (g *Generator) genSetterDecl(n *ast.Node) {
	g.emitBlank()
	g.emit("LABEL %s", mangledLabel(n.Mangled))
	g.genFunctionBody(n.Left, n.Right)
}

// genFunctionBody is shared by all three declaration kinds: bind
// parameters, emit the statement list, then fall through to the default
// "return nil" tail (spec §4.4).
func (g *Generator) genFunctionBody(params *ast.Node, body *ast.Node) {
	g.emit("CREATEFRAME")
	g.emit("PUSHFRAME")
	g.emitBlank()

	if params != nil {
		for i := len(params.Children) - 1; i >= 0; i-- {
			p := params.Children[i]
			g.defvarLocal(p.Tok.StrVal, p.Depth)
			g.emit("POPS %s", frameRef(p))
		}
	}

	g.genBlock(body)

	g.emit("PUSHS nil@nil")
	g.emit("POPFRAME")
	g.emit("RETURN")
	g.emitBlank()
}
