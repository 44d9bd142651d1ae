package codegen

import (
	"github.com/ifj25/ifjc/internal/ast"
	"github.com/ifj25/ifjc/internal/lexer"
)

// genExpr emits code that leaves exactly one value on the data stack
// (spec §4.4).
func (g *Generator) genExpr(n *ast.Node) {
	if n == nil || g.err != nil {
		return
	}
	switch n.Kind {
	case ast.KindIntLit, ast.KindFloatLit, ast.KindStrLit, ast.KindBoolLit, ast.KindNullLit:
		g.emit("PUSHS %s", encodeLiteral(n))
	case ast.KindIdent:
		g.genIdentRead(n)
	case ast.KindCall:
		g.genCall(n)
	case ast.KindIfjCall:
		g.genIfjCall(n)
	case ast.KindBinary:
		g.genBinary(n)
	case ast.KindUnary:
		g.genUnary(n)
	case ast.KindIsExpr:
		g.genIsExpr(n)
	default:
		g.fail(n, "unhandled expression kind %s", n.Kind)
	}
}

// genIdentRead pushes a variable's value: a getter-backed identifier is
// a call, anything else is a direct frame read (spec §4.4, mirroring
// original_source's genIdentifier).
func (g *Generator) genIdentRead(n *ast.Node) {
	if n.Mangled != "" {
		g.emit("CALL %s", mangledLabel(n.Mangled))
		return
	}
	g.emit("PUSHS %s", frameRef(n))
}

// genCall pushes every argument left to right, then calls the resolved
// mangled label. Arguments are always atoms (identifiers or literals -
// spec §4.2.3's grammar never allows a nested expression as an
// argument), so no intermediate temporary is needed the way
// original_source's IFJ-builtin path uses one.
func (g *Generator) genCall(n *ast.Node) {
	if n.Right != nil {
		for _, arg := range n.Right.Children {
			g.genExpr(arg)
		}
	}
	g.emit("CALL %s", mangledLabel(n.Mangled))
}

// genUnary lowers the sole unary operator, logical NOT.
func (g *Generator) genUnary(n *ast.Node) {
	g.genExpr(n.Right)
	g.emit("NOTS")
}

// isTypeString maps a type-keyword token to the runtime TYPE string
// IFJcode25 reports for it, per spec §4.3a's Num/String/Bool/Null
// column and original_source's genType.
func isTypeString(t lexer.TokenType) string {
	switch t {
	case lexer.STRING_TYPE:
		return "string"
	case lexer.BOOL_TYPE:
		return "bool"
	case lexer.NULL_TYPE:
		return "nil"
	default:
		return ""
	}
}

// genIsExpr lowers `expr is TYPE`: Num matches either INT or FLOAT at
// runtime, every other type keyword requires an exact TYPE match (spec
// §4.3a, original_source's KW_IS case in genOperator). The TYPE scratch
// lives in its own CREATEFRAME/PUSHFRAME scope, like genDynamicArithmetic,
// since an `is` expression can sit inside a loop condition and re-enter
// this function every iteration; POPFRAME always runs before the jump to
// trueLabel/falseLabel, never after, so no path leaks the scratch frame.
func (g *Generator) genIsExpr(n *ast.Node) {
	g.genExpr(n.Left)
	g.emit("CREATEFRAME")
	g.emit("PUSHFRAME")
	actual := g.temp()
	g.defvarLocal(actual, 0)
	g.emit("POPS LF@%s$0", actual)
	g.emit("TYPE LF@%s$0 LF@%s$0", actual, actual)

	trueLabel := g.label("is_true")
	falseLabel := g.label("is_false")
	endLabel := g.label("is_end")

	if n.Right.Tok.Type == lexer.NUM_TYPE {
		notInt := g.label("is_not_int")
		g.emit("JUMPIFNEQ %s LF@%s$0 string@int", notInt, actual)
		g.emit("POPFRAME")
		g.emit("JUMP %s", trueLabel)
		g.emit("LABEL %s", notInt)

		notFloat := g.label("is_not_float")
		g.emit("JUMPIFNEQ %s LF@%s$0 string@float", notFloat, actual)
		g.emit("POPFRAME")
		g.emit("JUMP %s", trueLabel)
		g.emit("LABEL %s", notFloat)

		g.emit("POPFRAME")
		g.emit("JUMP %s", falseLabel)
	} else {
		noMatch := g.label("is_no_match")
		g.emit("JUMPIFNEQ %s LF@%s$0 string@%s", noMatch, actual, isTypeString(n.Right.Tok.Type))
		g.emit("POPFRAME")
		g.emit("JUMP %s", trueLabel)
		g.emit("LABEL %s", noMatch)

		g.emit("POPFRAME")
		g.emit("JUMP %s", falseLabel)
	}

	g.emit("LABEL %s", falseLabel)
	g.emit("PUSHS bool@false")
	g.emit("JUMP %s", endLabel)

	g.emit("LABEL %s", trueLabel)
	g.emit("PUSHS bool@true")

	g.emit("LABEL %s", endLabel)
}

// genBinary dispatches the remaining binary operators: && and || get
// their own short-circuit lowering, everything else evaluates both
// operands eagerly and routes through the shared dynamic
// arithmetic/comparison helpers (spec §4.4, original_source's
// genOperator).
func (g *Generator) genBinary(n *ast.Node) {
	switch n.Tok.Type {
	case lexer.AND:
		g.genShortCircuitAnd(n)
		return
	case lexer.OR:
		g.genShortCircuitOr(n)
		return
	}

	g.genExpr(n.Left)
	g.genExpr(n.Right)

	switch n.Tok.Type {
	case lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH:
		g.genDynamicArithmetic(n.Tok.Type)
	case lexer.LT:
		g.genDynamicComparison(lexer.LT)
	case lexer.GT:
		g.genDynamicComparison(lexer.GT)
	case lexer.EQ:
		g.genDynamicComparison(lexer.EQ)
	case lexer.NEQ:
		g.genDynamicComparison(lexer.EQ)
		g.emit("NOTS")
	case lexer.LE:
		g.genDynamicComparison(lexer.GT)
		g.emit("NOTS")
	case lexer.GE:
		g.genDynamicComparison(lexer.LT)
		g.emit("NOTS")
	default:
		g.fail(n, "unhandled binary operator %s", n.Tok.Type)
	}
}

// genShortCircuitAnd evaluates the left operand; if it is false or nil
// it short-circuits to bool@false without touching the right operand
// (spec §4.3a's && row, original_source's LOGICAL_AND case).
func (g *Generator) genShortCircuitAnd(n *ast.Node) {
	falseLabel := g.label("and_false")
	endLabel := g.label("and_end")

	g.genCondTemp(n.Left, falseLabel)
	g.genExpr(n.Right)
	g.emit("JUMP %s", endLabel)

	g.emit("LABEL %s", falseLabel)
	g.emit("PUSHS bool@false")

	g.emit("LABEL %s", endLabel)
}

// genShortCircuitOr evaluates the left operand; true short-circuits to
// bool@true, false or nil falls through to the right operand
// (original_source's LOGICAL_OR case). Like genCondTemp, the left
// operand's scratch temp lives in its own CREATEFRAME/PUSHFRAME scope
// with a POPFRAME on every exit path, so a `||` inside a loop condition
// never redeclares the slot on the second iteration.
func (g *Generator) genShortCircuitOr(n *ast.Node) {
	trueLabel := g.label("or_true")
	calcRight := g.label("or_calc_b")
	endLabel := g.label("or_end")

	g.genExpr(n.Left)
	g.emit("CREATEFRAME")
	g.emit("PUSHFRAME")
	tmp := g.temp()
	g.defvarLocal(tmp, 0)
	g.emit("POPS LF@%s$0", tmp)

	notFalse := g.label("or_not_false")
	g.emit("JUMPIFNEQ %s LF@%s$0 bool@false", notFalse, tmp)
	g.emit("POPFRAME")
	g.emit("JUMP %s", calcRight)
	g.emit("LABEL %s", notFalse)

	notNil := g.label("or_not_nil")
	g.emit("JUMPIFNEQ %s LF@%s$0 nil@nil", notNil, tmp)
	g.emit("POPFRAME")
	g.emit("JUMP %s", calcRight)
	g.emit("LABEL %s", notNil)

	g.emit("POPFRAME")
	g.emit("JUMP %s", trueLabel)

	g.emit("LABEL %s", calcRight)
	g.genExpr(n.Right)
	g.emit("JUMP %s", endLabel)

	g.emit("LABEL %s", trueLabel)
	g.emit("PUSHS bool@true")

	g.emit("LABEL %s", endLabel)
}
