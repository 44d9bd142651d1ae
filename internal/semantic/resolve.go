package semantic

import (
	"fmt"

	"github.com/ifj25/ifjc/internal/ast"
	"github.com/ifj25/ifjc/internal/diagnostics"
	"github.com/ifj25/ifjc/internal/lexer"
	"github.com/ifj25/ifjc/internal/symtab"
)

// Resolve runs the semantic pass over a fully-parsed program (spec §4.3):
// first it works through the deferred list (calls, then the bare
// identifiers and assignments that depended on them), then it walks the
// whole tree applying the binary-operator type table, and finally it
// checks that every declared FUNC/GET/SET actually got a body.
func Resolve(scopes *symtab.Stack, deferred *symtab.Deferred, root *ast.Node) *diagnostics.CompilerError {
	global := scopes.Global()

	for _, n := range deferred.Nodes() {
		switch n.Kind {
		case ast.KindCall:
			if n.Mangled == "" {
				if err := ResolveCallNode(global, n, n.Tok.StrVal); err != nil {
					return err
				}
			}
		case ast.KindIfjCall:
			if n.Mangled == "" {
				if err := ResolveCallNode(global, n, "Ifj."+n.Tok.StrVal); err != nil {
					return err
				}
			}
		case ast.KindIdent:
			if n.Mangled == "" && n.Type == ast.Unknown {
				if err := resolveDeferredIdent(global, n); err != nil {
					return err
				}
			}
		}
	}

	for _, n := range deferred.Nodes() {
		if n.Kind != ast.KindAssign {
			continue
		}
		target := n.Left
		if target == nil || target.Mangled != "" {
			continue // setter target: nothing to propagate onto a frame slot
		}
		target.Type = n.Right.Type
		if sym := global.Find(target.Tok.StrVal); sym != nil {
			sym.Type = n.Right.Type
		}
	}

	if err := checkTypes(root); err != nil {
		return err
	}

	if err := checkDeclared(global); err != nil {
		return err
	}

	return checkMainExists(global)
}

// resolveDeferredIdent re-tries a bare identifier read once every static
// declaration has been seen: it can only have been deferred because it
// might name a getter declared later in the file (spec §4.2.2 /
// §4.3b) - a local variable always resolves immediately at parse time, so
// by now only the global scope is left to consult.
func resolveDeferredIdent(global *symtab.Scope, n *ast.Node) *diagnostics.CompilerError {
	if getter := global.Find(symtab.Mangle(symtab.Get, n.Tok.StrVal, 0)); getter != nil && getter.Declared {
		n.Mangled = getter.Name
		n.Type = getter.Type
		return nil
	}
	pos := diagnostics.Position{Line: n.Tok.Line, Column: n.Tok.Column}
	return diagnostics.New(diagnostics.CodeUndefinedSymbol, pos,
		fmt.Sprintf("undefined variable %q", n.Tok.StrVal), n.Tok.Literal(), "", "")
}

// checkMainExists enforces spec §3's entry-point invariant: exactly one
// function named main with zero parameters, declared in the global scope.
// Without it, codegen's unconditional `CALL main$0` (spec §8 invariant 4)
// would target a label nothing ever emits. Mirrors original_source's
// parser.c symTableStackFindSymbol(..., "main$0") check, which raises the
// same SEM_UNDEF diagnostic kind used here.
func checkMainExists(global *symtab.Scope) *diagnostics.CompilerError {
	sym := global.Find(symtab.Mangle(symtab.Func, "main", 0))
	if sym == nil || sym.Kind != symtab.Func || !sym.Declared {
		return diagnostics.New(diagnostics.CodeUndefinedSymbol, diagnostics.Position{},
			"missing main function with no parameters", "", "", "")
	}
	return nil
}

// checkDeclared implements spec §4.3c: any FUNC/GET/SET left with
// declared == false after resolution is a reference that never landed on
// a real definition.
func checkDeclared(global *symtab.Scope) *diagnostics.CompilerError {
	for _, sym := range global.All() {
		switch sym.Kind {
		case symtab.Func, symtab.Get, symtab.Set:
			if !sym.Declared {
				return diagnostics.New(diagnostics.CodeUndefinedSymbol, diagnostics.Position{},
					fmt.Sprintf("undefined function or accessor %q", sym.Name), "", "", "")
			}
		}
	}
	return nil
}

// checkTypes walks the whole tree bottom-up, computing and validating the
// type of every KindBinary/KindUnary/KindIsExpr node against the static
// table (spec §4.3a). Every other node kind is walked structurally only.
func checkTypes(n *ast.Node) *diagnostics.CompilerError {
	if n == nil {
		return nil
	}
	if n.Kind == ast.KindBinary || n.Kind == ast.KindUnary || n.Kind == ast.KindIsExpr {
		if n.Kind != ast.KindUnary {
			if err := checkTypes(n.Left); err != nil {
				return err
			}
		}
		if err := checkTypes(n.Right); err != nil {
			return err
		}
		return checkOperator(n)
	}

	if err := checkTypes(n.Left); err != nil {
		return err
	}
	if err := checkTypes(n.Right); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := checkTypes(c); err != nil {
			return err
		}
	}
	return nil
}

func typeErr(n *ast.Node, format string, args ...any) *diagnostics.CompilerError {
	pos := diagnostics.Position{Line: n.Tok.Line, Column: n.Tok.Column}
	return diagnostics.New(diagnostics.CodeExpressionType, pos, fmt.Sprintf(format, args...), n.Tok.Type.String(), "", "")
}

const numeric = ast.Int | ast.Float

func checkOperator(n *ast.Node) *diagnostics.CompilerError {
	switch n.Kind {
	case ast.KindIsExpr:
		n.Type = ast.Bool
		return nil
	case ast.KindUnary:
		operand := n.Right.Type
		if operand != ast.Unknown && !operand.Intersects(ast.Bool) {
			return typeErr(n, "unary '!' requires a BOOL operand")
		}
		n.Type = ast.Bool
		return nil
	}

	left, right := n.Left.Type, n.Right.Type
	permissive := left == ast.Unknown || right == ast.Unknown

	switch n.Tok.Type {
	case lexer.ASTERISK:
		stringInt := (left.Intersects(ast.String) && right.Intersects(ast.Int)) ||
			(right.Intersects(ast.String) && left.Intersects(ast.Int))
		bothNumeric := left.Intersects(numeric) && right.Intersects(numeric)
		if !permissive && !stringInt && !bothNumeric {
			return typeErr(n, "'*' requires numeric operands, or STRING by INT")
		}
		n.Type = numericResult(left, right, left.Intersects(ast.String) || right.Intersects(ast.String))
		return nil

	case lexer.SLASH, lexer.MINUS:
		if !permissive && !(left.Intersects(numeric) && right.Intersects(numeric)) {
			return typeErr(n, "%q requires numeric operands", n.Tok.Type)
		}
		n.Type = numericResult(left, right, false)
		return nil

	case lexer.PLUS:
		bothString := left.Intersects(ast.String) && right.Intersects(ast.String)
		bothNumeric := left.Intersects(numeric) && right.Intersects(numeric)
		if !permissive && !bothString && !bothNumeric {
			return typeErr(n, "'+' requires two numbers or two strings")
		}
		switch {
		case bothString && !left.Intersects(numeric) && !right.Intersects(numeric):
			n.Type = ast.String
		case left.Intersects(ast.Float) || right.Intersects(ast.Float):
			n.Type = ast.Float
		case left.Intersects(ast.Int) || right.Intersects(ast.Int):
			n.Type = ast.Int
		default:
			n.Type = ast.Unknown
		}
		return nil

	case lexer.LT, lexer.LE, lexer.GT, lexer.GE:
		if !permissive && !(left.Intersects(numeric) && right.Intersects(numeric)) {
			return typeErr(n, "%q requires numeric operands", n.Tok.Type)
		}
		n.Type = ast.Bool
		return nil

	case lexer.EQ, lexer.NEQ:
		n.Type = ast.Bool
		return nil

	case lexer.AND, lexer.OR:
		if !permissive && !(left.Intersects(ast.Bool) && right.Intersects(ast.Bool)) {
			return typeErr(n, "%q requires BOOL operands", n.Tok.Type)
		}
		n.Type = ast.Bool
		return nil

	default:
		return diagnostics.New(diagnostics.CodeInternal, diagnostics.Position{Line: n.Tok.Line, Column: n.Tok.Column},
			fmt.Sprintf("unhandled binary operator %s", n.Tok.Type), "", "", "")
	}
}

func numericResult(left, right ast.ExprType, stringCase bool) ast.ExprType {
	switch {
	case left.Intersects(ast.Float) || right.Intersects(ast.Float):
		return ast.Float
	case left.Intersects(ast.Int) || right.Intersects(ast.Int):
		return ast.Int
	case stringCase:
		return ast.String
	default:
		return ast.Unknown
	}
}
