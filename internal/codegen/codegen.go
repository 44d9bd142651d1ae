// Package codegen lowers a resolved IFJ25 AST (spec §3, after
// internal/semantic has run) to IFJcode25 text (spec §4.4). It mirrors
// original_source's codegen.c node-dispatch structure - one function per
// AST_* case, fed by a generator that owns its own label and temporary
// counters - translated into the teacher's struct-plus-methods idiom for a
// single-pass emitter rather than the teacher's byte-code Compiler/Chunk
// pair, since IFJcode25 is a flat line-oriented text format, not a binary
// chunk.
package codegen

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ifj25/ifjc/internal/ast"
	"github.com/ifj25/ifjc/internal/diagnostics"
	"github.com/ifj25/ifjc/internal/symtab"
)

// Generator holds the mutable state threaded through a single emission
// pass: the output sink and the monotonic counters genUniqueLabel/
// genTempVar use in original_source to keep every label and scratch
// variable name distinct across the whole program.
type Generator struct {
	out          *bufio.Writer
	labelCounter map[string]int
	tempCounter  int
	err          *diagnostics.CompilerError
}

// New returns a Generator writing to w.
func New(w io.Writer) *Generator {
	return &Generator{out: bufio.NewWriter(w), labelCounter: make(map[string]int)}
}

// emit writes one instruction line, sprintf-style.
func (g *Generator) emit(format string, args ...any) {
	fmt.Fprintf(g.out, format, args...)
	g.out.WriteByte('\n')
}

// emitBlank writes an empty line, matching the teacher's habit of
// separating function bodies with one (original_source's "\nLABEL ..."
// emits).
func (g *Generator) emitBlank() {
	g.out.WriteByte('\n')
}

// label returns the next unique label for base, e.g. label("if_end") ->
// "$if_end_0", "$if_end_1", ... (original_source's genUniqueLabel).
func (g *Generator) label(base string) string {
	n := g.labelCounter[base]
	g.labelCounter[base] = n + 1
	return fmt.Sprintf("$%s_%d", base, n)
}

// temp returns the next unique scratch variable name. The "$$" prefix
// can never collide with a user identifier (IFJ25 identifiers cannot
// start with '$'), matching original_source's genTempVar.
func (g *Generator) temp() string {
	n := g.tempCounter
	g.tempCounter++
	return fmt.Sprintf("$$tmp_%d", n)
}

// fail records the first internal error hit during generation; later
// calls are no-ops so the walk can unwind without a panic.
func (g *Generator) fail(n *ast.Node, format string, args ...any) {
	if g.err != nil {
		return
	}
	pos := diagnostics.Position{Line: n.Tok.Line, Column: n.Tok.Column}
	g.err = diagnostics.New(diagnostics.CodeInternal, pos, fmt.Sprintf(format, args...), n.Tok.Literal(), "", "")
}

// mangledLabel translates a symtab-mangled name into the textual label codegen
// emits: "count#get" -> "count_get", "count#set" -> "count_set",
// "main$0" is already label-shaped and passes through unchanged.
func mangledLabel(mangled string) string {
	return strings.ReplaceAll(mangled, "#", "_")
}

// defvarLocal emits DEFVAR for a frame slot at the given depth.
func (g *Generator) defvarLocal(name string, depth int) {
	g.emit("DEFVAR LF@%s$%d", name, depth)
}

// frameRef renders the operand referring to an Ident/VarDecl/Params leaf:
// GF@name for a global (Depth 0), LF@name$depth otherwise (spec §4.4
// "Frame depth").
func frameRef(n *ast.Node) string {
	if n.Depth == 0 {
		return "GF@" + n.Tok.StrVal
	}
	return fmt.Sprintf("LF@%s$%d", n.Tok.StrVal, n.Depth)
}

// escapeString applies IFJcode25's \ddd escaping rule: any byte <= 32,
// '#' (35) or '\' (92) is rendered as a three-digit decimal escape,
// everything else passes through literally (spec §4.4, mirroring
// original_source's escapeString/genLiteral STRING_LITERAL case).
func escapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 32 || c == '#' || c == '\\' {
			fmt.Fprintf(&b, "\\%03d", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// encodeLiteral renders a leaf literal node as an IFJcode25 constant
// operand (spec §4.4's per-literal PUSHS table).
func encodeLiteral(n *ast.Node) string {
	switch n.Kind {
	case ast.KindIntLit:
		return fmt.Sprintf("int@%d", n.Tok.IntVal)
	case ast.KindFloatLit:
		return "float@" + strconv.FormatFloat(n.Tok.FloatVal, 'x', -1, 64)
	case ast.KindStrLit:
		return "string@" + escapeString(n.Tok.StrVal)
	case ast.KindBoolLit:
		if n.Ident() == "true" {
			return "bool@true"
		}
		return "bool@false"
	case ast.KindNullLit:
		return "nil@nil"
	default:
		return "nil@nil"
	}
}

// Emit lowers a fully resolved program (spec §4.4's skeleton): forward
// jump over every function body, the bodies themselves, the program
// entry point, global-variable initialization, then the call into
// main$0.
func (g *Generator) Emit(root *ast.Node, global *symtab.Scope) *diagnostics.CompilerError {
	g.emit(".IFJcode25")
	g.emit("JUMP $$main_entry")

	for _, decl := range root.Children {
		switch decl.Kind {
		case ast.KindFuncDecl:
			g.genFuncDecl(decl)
		case ast.KindGetterDecl:
			g.genGetterDecl(decl)
		case ast.KindSetterDecl:
			g.genSetterDecl(decl)
		}
		if g.err != nil {
			return g.err
		}
	}

	g.emitBlank()
	g.emit("LABEL $$main_entry")
	for _, sym := range global.All() {
		if sym.Kind == symtab.Var {
			g.emit("DEFVAR GF@%s", sym.Name)
			g.emit("MOVE GF@%s nil@nil", sym.Name)
		}
	}

	g.emit("CALL main$0")
	g.emit("EXIT int@0")

	if err := g.out.Flush(); err != nil {
		return diagnostics.New(diagnostics.CodeInternal, diagnostics.Position{}, err.Error(), "", "", "")
	}
	return g.err
}
