package codegen

import "github.com/ifj25/ifjc/internal/ast"

// genBlock emits every statement in a KindBlock's children in order
// (original_source's genBlock/genNodeChildren). Nested `{...}` blocks
// never push a fresh VM frame of their own - only Depth-suffixed local
// names tell same-named locals at different source nesting apart, so a
// block is just a flat statement sequence here.
func (g *Generator) genBlock(block *ast.Node) {
	if block == nil {
		return
	}
	for _, stmt := range block.Children {
		g.genStmt(stmt)
		if g.err != nil {
			return
		}
	}
}

// genStmt dispatches a single statement node (spec §4.4).
func (g *Generator) genStmt(n *ast.Node) {
	switch n.Kind {
	case ast.KindVarDecl:
		g.genVarDecl(n)
	case ast.KindAssign:
		g.genAssign(n)
	case ast.KindReturn:
		g.genReturn(n)
	case ast.KindIf:
		g.genIf(n)
	case ast.KindIfElse:
		g.genIfElse(n)
	case ast.KindElse:
		g.genBlock(n.Right)
	case ast.KindWhile:
		g.genWhile(n)
	case ast.KindCall, ast.KindIfjCall:
		// A bare call statement: evaluate for effect, discard the result.
		g.genExpr(n)
		discard := g.temp()
		g.defvarLocal(discard, 0)
		g.emit("POPS LF@%s$0", discard)
	default:
		g.fail(n, "unhandled statement kind %s", n.Kind)
	}
}

// genVarDecl emits a local declaration's default nil initialization
// (spec §4.4's "Variable declaration"). KindVarDecl nodes are always
// local - the only globals IFJ25 has arise from an assignment to a
// previously unseen name, never from a `var` statement, since `var` only
// ever appears inside a function/getter/setter body.
func (g *Generator) genVarDecl(n *ast.Node) {
	g.defvarLocal(n.Tok.StrVal, n.Depth)
	g.emit("MOVE LF@%s$%d nil@nil", n.Tok.StrVal, n.Depth)
}

// genAssign evaluates the right-hand side, then either calls the
// matching setter or stores straight into the target's frame slot
// (spec §4.4's "Variable declaration/assignment").
func (g *Generator) genAssign(n *ast.Node) {
	g.genExpr(n.Right)
	target := n.Left
	if target.Mangled != "" {
		g.emit("CALL %s", mangledLabel(target.Mangled))
		return
	}
	g.emit("POPS %s", frameRef(target))
}

// genReturn evaluates the optional return expression (or pushes nil for
// a bare `return`), then unwinds the current frame.
func (g *Generator) genReturn(n *ast.Node) {
	if n.Right != nil {
		g.genExpr(n.Right)
	} else {
		g.emit("PUSHS nil@nil")
	}
	g.emit("POPFRAME")
	g.emit("RETURN")
}

// genCondTemp evaluates cond, pops it into a fresh local, and emits the
// pair of JUMPIFEQ branches that treat both bool@false and nil@nil as
// "not taken" (spec §4.4, original_source's genIfStmt/genWhileStmt). The
// temp lives in its own CREATEFRAME/PUSHFRAME scope, like
// genDynamicArithmetic/genDynamicComparison/genIfjCall, rather than in the
// enclosing frame: genWhile calls this once per loop label but re-enters it
// every iteration, and a DEFVAR straight into LF would redeclare the same
// slot the second time around. POPFRAME runs on every exit path before the
// jump to falseLabel, never after it, so the scratch frame never leaks
// into the caller's frame on the branch-not-taken path.
func (g *Generator) genCondTemp(cond *ast.Node, falseLabel string) {
	g.genExpr(cond)
	g.emit("CREATEFRAME")
	g.emit("PUSHFRAME")
	tmp := g.temp()
	g.defvarLocal(tmp, 0)
	g.emit("POPS LF@%s$0", tmp)

	notFalse := g.label("cond_not_false")
	g.emit("JUMPIFNEQ %s LF@%s$0 bool@false", notFalse, tmp)
	g.emit("POPFRAME")
	g.emit("JUMP %s", falseLabel)
	g.emit("LABEL %s", notFalse)

	notNil := g.label("cond_not_nil")
	g.emit("JUMPIFNEQ %s LF@%s$0 nil@nil", notNil, tmp)
	g.emit("POPFRAME")
	g.emit("JUMP %s", falseLabel)
	g.emit("LABEL %s", notNil)

	g.emit("POPFRAME")
}

// genIf emits a condition-gated block with no else arm.
func (g *Generator) genIf(n *ast.Node) {
	endLabel := g.label("if_end")
	g.genCondTemp(n.Left, endLabel)
	g.genBlock(n.Right)
	g.emit("LABEL %s", endLabel)
}

// genIfElse emits an if/else(-if) chain. n.Left is always the KindIf arm
// just evaluated; n.Right is either a KindElse tail or another nested
// KindIf/KindIfElse continuing the chain (spec §4.2's parseElseTail
// shape).
func (g *Generator) genIfElse(n *ast.Node) {
	ifArm := n.Left
	elseLabel := g.label("if_else")
	endLabel := g.label("if_end")

	g.genCondTemp(ifArm.Left, elseLabel)
	g.genBlock(ifArm.Right)
	g.emit("JUMP %s", endLabel)

	g.emit("LABEL %s", elseLabel)
	g.genStmt(n.Right)
	g.emit("LABEL %s", endLabel)
}

// genWhile emits a condition-gated loop.
func (g *Generator) genWhile(n *ast.Node) {
	startLabel := g.label("while_start")
	endLabel := g.label("while_end")

	g.emit("LABEL %s", startLabel)
	g.genCondTemp(n.Left, endLabel)
	g.genBlock(n.Right)
	g.emit("JUMP %s", startLabel)
	g.emit("LABEL %s", endLabel)
}
