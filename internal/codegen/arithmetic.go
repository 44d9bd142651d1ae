package codegen

import "github.com/ifj25/ifjc/internal/lexer"

// genDynamicArithmetic lowers +, -, *, / (spec §4.3a/§4.4): both
// operands are already on the stack (left, then right). It pops them
// into temporaries, reads their runtime TYPE, and routes to a string
// CONCAT (+ only), an integer path, or a float path that first coerces
// any integer operand with INT2FLOAT. Division always takes the float
// path. Mirrors original_source's genDynamicArithmetic.
func (g *Generator) genDynamicArithmetic(op lexer.TokenType) {
	g.emit("CREATEFRAME")
	g.emit("PUSHFRAME")

	b, a := g.temp(), g.temp()
	tb, ta := g.temp(), g.temp()
	g.defvarLocal(b, 0)
	g.defvarLocal(a, 0)
	g.defvarLocal(tb, 0)
	g.defvarLocal(ta, 0)

	g.emit("POPS LF@%s$0", b)
	g.emit("POPS LF@%s$0", a)
	g.emit("TYPE LF@%s$0 LF@%s$0", tb, b)
	g.emit("TYPE LF@%s$0 LF@%s$0", ta, a)

	endLabel := g.label("op_end")

	if op == lexer.PLUS {
		notStr := g.label("not_str")
		g.emit("JUMPIFNEQ %s LF@%s$0 string@string", notStr, ta)
		g.emit("JUMPIFNEQ %s LF@%s$0 string@string", notStr, tb)
		g.emit("CONCAT LF@%s$0 LF@%s$0 LF@%s$0", a, a, b)
		g.emit("PUSHS LF@%s$0", a)
		g.emit("JUMP %s", endLabel)
		g.emit("LABEL %s", notStr)
	}

	floatLabel := g.label("op_flt")
	intLabel := g.label("op_int")

	if op == lexer.SLASH {
		g.emit("JUMP %s", floatLabel)
	}
	g.emit("JUMPIFEQ %s LF@%s$0 string@float", floatLabel, ta)
	g.emit("JUMPIFEQ %s LF@%s$0 string@float", floatLabel, tb)

	g.emit("LABEL %s", intLabel)
	g.emit("PUSHS LF@%s$0", a)
	g.emit("PUSHS LF@%s$0", b)
	g.emitArithOp(op)
	g.emit("JUMP %s", endLabel)

	g.emit("LABEL %s", floatLabel)
	aOk, bOk := g.label("a_ok"), g.label("b_ok")
	g.emit("JUMPIFEQ %s LF@%s$0 string@float", aOk, ta)
	g.emit("INT2FLOAT LF@%s$0 LF@%s$0", a, a)
	g.emit("LABEL %s", aOk)
	g.emit("JUMPIFEQ %s LF@%s$0 string@float", bOk, tb)
	g.emit("INT2FLOAT LF@%s$0 LF@%s$0", b, b)
	g.emit("LABEL %s", bOk)

	g.emit("PUSHS LF@%s$0", a)
	g.emit("PUSHS LF@%s$0", b)
	g.emitArithOp(op)

	g.emit("LABEL %s", endLabel)
	g.emit("POPFRAME")
}

func (g *Generator) emitArithOp(op lexer.TokenType) {
	switch op {
	case lexer.PLUS:
		g.emit("ADDS")
	case lexer.MINUS:
		g.emit("SUBS")
	case lexer.ASTERISK:
		g.emit("MULS")
	case lexer.SLASH:
		g.emit("DIVS")
	}
}

// genDynamicComparison lowers <, >, == (spec §4.3a): both operands
// already on the stack. Like arithmetic, integer operands are promoted
// to float whenever either side is a float before the comparison runs.
// <=, >=, != are synthesized by the caller as the complementary
// comparison plus NOTS (original_source's genDynamicComparison).
func (g *Generator) genDynamicComparison(op lexer.TokenType) {
	g.emit("CREATEFRAME")
	g.emit("PUSHFRAME")

	b, a := g.temp(), g.temp()
	tb, ta := g.temp(), g.temp()
	g.defvarLocal(b, 0)
	g.defvarLocal(a, 0)
	g.defvarLocal(tb, 0)
	g.defvarLocal(ta, 0)

	g.emit("POPS LF@%s$0", b)
	g.emit("POPS LF@%s$0", a)
	g.emit("TYPE LF@%s$0 LF@%s$0", tb, b)
	g.emit("TYPE LF@%s$0 LF@%s$0", ta, a)

	floatLabel := g.label("cmp_flt")
	endLabel := g.label("cmp_end")

	g.emit("JUMPIFEQ %s LF@%s$0 string@float", floatLabel, ta)
	g.emit("JUMPIFEQ %s LF@%s$0 string@float", floatLabel, tb)

	g.emit("PUSHS LF@%s$0", a)
	g.emit("PUSHS LF@%s$0", b)
	g.emitCompareOp(op)
	g.emit("JUMP %s", endLabel)

	g.emit("LABEL %s", floatLabel)
	aOk, bOk := g.label("cmp_a_ok"), g.label("cmp_b_ok")
	g.emit("JUMPIFEQ %s LF@%s$0 string@float", aOk, ta)
	g.emit("INT2FLOAT LF@%s$0 LF@%s$0", a, a)
	g.emit("LABEL %s", aOk)
	g.emit("JUMPIFEQ %s LF@%s$0 string@float", bOk, tb)
	g.emit("INT2FLOAT LF@%s$0 LF@%s$0", b, b)
	g.emit("LABEL %s", bOk)

	g.emit("PUSHS LF@%s$0", a)
	g.emit("PUSHS LF@%s$0", b)
	g.emitCompareOp(op)

	g.emit("LABEL %s", endLabel)
	g.emit("POPFRAME")
}

func (g *Generator) emitCompareOp(op lexer.TokenType) {
	switch op {
	case lexer.LT:
		g.emit("LTS")
	case lexer.GT:
		g.emit("GTS")
	case lexer.EQ:
		g.emit("EQS")
	}
}
