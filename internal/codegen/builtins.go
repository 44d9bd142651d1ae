package codegen

import "github.com/ifj25/ifjc/internal/ast"

// genIfjCall lowers a call to one of the Ifj.* builtins (spec §4.4's
// builtin template table). Arguments are always atoms, so they are
// evaluated onto the stack and immediately popped into a private,
// freshly pushed frame before the builtin's own logic runs - this keeps
// every builtin self-contained, the way original_source's
// genDynamicArithmetic isolates its own scratch variables, without
// needing to track the enclosing function's real frame depth.
func (g *Generator) genIfjCall(n *ast.Node) {
	var args []*ast.Node
	if n.Right != nil {
		args = n.Right.Children
	}

	for _, arg := range args {
		g.genExpr(arg)
	}

	g.emit("CREATEFRAME")
	g.emit("PUSHFRAME")

	in := make([]string, len(args))
	for i := range in {
		in[i] = g.temp()
		g.defvarLocal(in[i], 0)
	}
	for i := len(in) - 1; i >= 0; i-- {
		g.emit("POPS LF@%s$0", in[i])
	}

	switch n.Tok.StrVal {
	case "write":
		g.emit("WRITE LF@%s$0", in[0])
		g.emit("PUSHS nil@nil")
	case "read_str":
		res := g.temp()
		g.defvarLocal(res, 0)
		g.emit("READ LF@%s$0 string", res)
		g.emit("PUSHS LF@%s$0", res)
	case "read_num":
		res := g.temp()
		g.defvarLocal(res, 0)
		g.emit("READ LF@%s$0 float", res)
		g.emit("PUSHS LF@%s$0", res)
	case "floor":
		g.genIfjFloor(in[0])
	case "str":
		g.genIfjStr(in[0])
	case "length":
		g.genIfjLength(in[0])
	case "strcmp":
		g.genIfjStrcmp(in[0], in[1])
	case "ord":
		g.genIfjOrd(in[0], in[1])
	case "chr":
		g.genIfjChr(in[0])
	case "substring":
		g.genIfjSubstring(in[0], in[1], in[2])
	default:
		g.fail(n, "unknown Ifj builtin %q", n.Tok.StrVal)
	}

	g.emit("POPFRAME")
}

// requireType jumps to okLabel when the runtime type of in matches
// wanted, otherwise exits with the "bad runtime argument type" code
// (spec §6, CodeRuntimeArgType = 25).
func (g *Generator) requireType(in, wanted, okLabel string) {
	typeTmp := g.temp()
	g.defvarLocal(typeTmp, 0)
	g.emit("TYPE LF@%s$0 LF@%s$0", typeTmp, in)
	g.emit("JUMPIFEQ %s LF@%s$0 string@%s", okLabel, typeTmp, wanted)
	g.emit("EXIT int@25")
	g.emit("LABEL %s", okLabel)
}

// genIfjFloor: Int passes through unchanged, Float truncates via
// FLOAT2INT, anything else is a bad-argument-type runtime error.
func (g *Generator) genIfjFloor(in string) {
	res := g.temp()
	g.defvarLocal(res, 0)
	typeTmp := g.temp()
	g.defvarLocal(typeTmp, 0)
	g.emit("TYPE LF@%s$0 LF@%s$0", typeTmp, in)

	isInt := g.label("is_int")
	isFloat := g.label("is_float")
	done := g.label("floor_done")

	g.emit("JUMPIFEQ %s LF@%s$0 string@int", isInt, typeTmp)
	g.emit("JUMPIFEQ %s LF@%s$0 string@float", isFloat, typeTmp)
	g.emit("EXIT int@25")

	g.emit("LABEL %s", isInt)
	g.emit("MOVE LF@%s$0 LF@%s$0", res, in)
	g.emit("JUMP %s", done)

	g.emit("LABEL %s", isFloat)
	g.emit("FLOAT2INT LF@%s$0 LF@%s$0", res, in)

	g.emit("LABEL %s", done)
	g.emit("PUSHS LF@%s$0", res)
}

// genIfjStr converts any of the five runtime types to its string
// rendering. Every dynamic type is covered, so the runtime-type-error
// fallback only guards against an internal-error class of value that
// should never actually occur.
func (g *Generator) genIfjStr(in string) {
	res := g.temp()
	g.defvarLocal(res, 0)
	typeTmp := g.temp()
	g.defvarLocal(typeTmp, 0)
	g.emit("TYPE LF@%s$0 LF@%s$0", typeTmp, in)

	isStr := g.label("is_str")
	isInt := g.label("is_int")
	isFloat := g.label("is_float")
	isBool := g.label("is_bool")
	isNil := g.label("is_nil")
	done := g.label("str_done")

	g.emit("JUMPIFEQ %s LF@%s$0 string@string", isStr, typeTmp)
	g.emit("JUMPIFEQ %s LF@%s$0 string@int", isInt, typeTmp)
	g.emit("JUMPIFEQ %s LF@%s$0 string@float", isFloat, typeTmp)
	g.emit("JUMPIFEQ %s LF@%s$0 string@bool", isBool, typeTmp)
	g.emit("JUMPIFEQ %s LF@%s$0 string@nil", isNil, typeTmp)
	g.emit("EXIT int@26")

	g.emit("LABEL %s", isStr)
	g.emit("MOVE LF@%s$0 LF@%s$0", res, in)
	g.emit("JUMP %s", done)

	g.emit("LABEL %s", isInt)
	g.emit("INT2STR LF@%s$0 LF@%s$0", res, in)
	g.emit("JUMP %s", done)

	g.emit("LABEL %s", isFloat)
	g.emit("FLOAT2STR LF@%s$0 LF@%s$0", res, in)
	g.emit("JUMP %s", done)

	g.emit("LABEL %s", isBool)
	boolTrue := g.label("bool_true")
	g.emit("JUMPIFEQ %s LF@%s$0 bool@true", boolTrue, in)
	g.emit("MOVE LF@%s$0 string@false", res)
	g.emit("JUMP %s", done)
	g.emit("LABEL %s", boolTrue)
	g.emit("MOVE LF@%s$0 string@true", res)
	g.emit("JUMP %s", done)

	g.emit("LABEL %s", isNil)
	g.emit("MOVE LF@%s$0 string@null", res)

	g.emit("LABEL %s", done)
	g.emit("PUSHS LF@%s$0", res)
}

// genIfjLength requires a STRING argument and returns its STRLEN.
func (g *Generator) genIfjLength(in string) {
	ok := g.label("length_ok")
	g.requireType(in, "string", ok)
	res := g.temp()
	g.defvarLocal(res, 0)
	g.emit("STRLEN LF@%s$0 LF@%s$0", res, in)
	g.emit("PUSHS LF@%s$0", res)
}

// genIfjStrcmp requires two STRING arguments and returns -1, 0, or 1
// following the usual C strcmp convention, derived from LT/EQ.
func (g *Generator) genIfjStrcmp(a, b string) {
	okA := g.label("strcmp_ok")
	g.requireType(a, "string", okA)
	okB := g.label("strcmp_ok")
	g.requireType(b, "string", okB)

	res := g.temp()
	g.defvarLocal(res, 0)
	lt := g.label("strcmp_lt")
	eq := g.label("strcmp_eq")
	done := g.label("strcmp_done")

	g.emit("LT LF@%s$0 LF@%s$0 LF@%s$0", res, a, b)
	g.emit("JUMPIFEQ %s LF@%s$0 bool@true", lt, res)
	g.emit("EQ LF@%s$0 LF@%s$0 LF@%s$0", res, a, b)
	g.emit("JUMPIFEQ %s LF@%s$0 bool@true", eq, res)
	g.emit("MOVE LF@%s$0 int@1", res)
	g.emit("JUMP %s", done)
	g.emit("LABEL %s", lt)
	g.emit("MOVE LF@%s$0 int@-1", res)
	g.emit("JUMP %s", done)
	g.emit("LABEL %s", eq)
	g.emit("MOVE LF@%s$0 int@0", res)
	g.emit("LABEL %s", done)

	g.emit("PUSHS LF@%s$0", res)
}

// genIfjOrd requires a STRING and an INT index; an out-of-range index
// returns 0 rather than raising a runtime error (spec's explicit
// decision, matching original_source's ord()).
func (g *Generator) genIfjOrd(s, i string) {
	okS := g.label("ord_ok")
	g.requireType(s, "string", okS)
	okI := g.label("ord_ok")
	g.requireType(i, "int", okI)

	res := g.temp()
	length := g.temp()
	cmp := g.temp()
	g.defvarLocal(res, 0)
	g.defvarLocal(length, 0)
	g.defvarLocal(cmp, 0)
	g.emit("STRLEN LF@%s$0 LF@%s$0", length, s)

	zero := g.label("ord_zero")
	doOrd := g.label("ord_do")

	g.emit("LT LF@%s$0 LF@%s$0 int@0", cmp, i)
	g.emit("JUMPIFEQ %s LF@%s$0 bool@true", zero, cmp)
	g.emit("LT LF@%s$0 LF@%s$0 LF@%s$0", cmp, i, length)
	g.emit("JUMPIFEQ %s LF@%s$0 bool@false", zero, cmp)

	g.emit("STRI2INT LF@%s$0 LF@%s$0 LF@%s$0", res, s, i)
	g.emit("JUMP %s", doOrd)

	g.emit("LABEL %s", zero)
	g.emit("MOVE LF@%s$0 int@0", res)

	g.emit("LABEL %s", doOrd)
	g.emit("PUSHS LF@%s$0", res)
}

// genIfjChr requires an INT and returns its single-character string.
func (g *Generator) genIfjChr(i string) {
	ok := g.label("chr_ok")
	g.requireType(i, "int", ok)
	res := g.temp()
	g.defvarLocal(res, 0)
	g.emit("INT2CHAR LF@%s$0 LF@%s$0", res, i)
	g.emit("PUSHS LF@%s$0", res)
}

// genIfjSubstring requires a STRING and two INT bounds. Any
// out-of-range or inverted bound returns nil@nil rather than raising a
// runtime error; valid bounds build the result character by character
// via GETCHAR/CONCAT (spec's substring template, original_source's
// substring()).
func (g *Generator) genIfjSubstring(s, i, j string) {
	okS := g.label("substr_ok")
	g.requireType(s, "string", okS)
	okI := g.label("substr_ok")
	g.requireType(i, "int", okI)
	okJ := g.label("substr_ok")
	g.requireType(j, "int", okJ)

	length := g.temp()
	cmp := g.temp()
	g.defvarLocal(length, 0)
	g.defvarLocal(cmp, 0)
	g.emit("STRLEN LF@%s$0 LF@%s$0", length, s)

	returnNil := g.label("substr_nil")
	buildLabel := g.label("substr_build")

	g.emit("LT LF@%s$0 LF@%s$0 int@0", cmp, i)
	g.emit("JUMPIFEQ %s LF@%s$0 bool@true", returnNil, cmp)
	g.emit("LT LF@%s$0 LF@%s$0 int@0", cmp, j)
	g.emit("JUMPIFEQ %s LF@%s$0 bool@true", returnNil, cmp)
	g.emit("GT LF@%s$0 LF@%s$0 LF@%s$0", cmp, i, j)
	g.emit("JUMPIFEQ %s LF@%s$0 bool@true", returnNil, cmp)
	g.emit("LT LF@%s$0 LF@%s$0 LF@%s$0", cmp, i, length)
	g.emit("JUMPIFEQ %s LF@%s$0 bool@false", returnNil, cmp)
	g.emit("GT LF@%s$0 LF@%s$0 LF@%s$0", cmp, j, length)
	g.emit("JUMPIFEQ %s LF@%s$0 bool@true", returnNil, cmp)
	g.emit("JUMP %s", buildLabel)

	g.emit("LABEL %s", returnNil)
	g.emit("PUSHS nil@nil")
	doneLabel := g.label("substr_end")
	g.emit("JUMP %s", doneLabel)

	g.emit("LABEL %s", buildLabel)
	res := g.temp()
	idx := g.temp()
	g.defvarLocal(res, 0)
	g.defvarLocal(idx, 0)
	g.emit("MOVE LF@%s$0 string@", res)
	g.emit("MOVE LF@%s$0 LF@%s$0", idx, i)

	loopLabel := g.label("substr_loop")
	loopEnd := g.label("substr_loop_end")
	g.emit("LABEL %s", loopLabel)
	g.emit("LT LF@%s$0 LF@%s$0 LF@%s$0", cmp, idx, j)
	g.emit("JUMPIFEQ %s LF@%s$0 bool@false", loopEnd, cmp)

	ch := g.temp()
	g.defvarLocal(ch, 0)
	g.emit("GETCHAR LF@%s$0 LF@%s$0 LF@%s$0", ch, s, idx)
	g.emit("CONCAT LF@%s$0 LF@%s$0 LF@%s$0", res, res, ch)
	g.emit("ADD LF@%s$0 LF@%s$0 int@1", idx, idx)
	g.emit("JUMP %s", loopLabel)

	g.emit("LABEL %s", loopEnd)
	g.emit("PUSHS LF@%s$0", res)

	g.emit("LABEL %s", doneLabel)
}
