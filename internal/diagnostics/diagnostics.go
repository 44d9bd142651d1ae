// Package diagnostics provides the closed error taxonomy and fatal error
// formatting used across every compiler phase. Unlike a compiler that
// accumulates and reports many errors, this one terminates on the first
// fatal diagnostic: each phase returns at most one *CompilerError, and the
// driver turns it into a process exit code.
package diagnostics

import (
	"fmt"
	"strings"
)

// ErrorCode is the closed taxonomy of compile-time failures, each mapped to
// its own process exit code per the external-interface contract. Codes 25
// and 26 are reserved for the runtime traps the code generator bakes into
// the emitted program; the compiler process itself never raises them.
type ErrorCode int

const (
	// CodeLexical marks a malformed token: bad escape, unterminated string,
	// bad hex literal, stray '&'/'|', and similar scanning failures.
	CodeLexical ErrorCode = 1
	// CodeSyntax marks a grammar violation in the recursive-descent parser
	// or the expression sub-parser, including prologue mismatches.
	CodeSyntax ErrorCode = 2
	// CodeUndefinedSymbol marks a reference that never resolves: an unknown
	// identifier with no deferred resolution path, or a FUNC/GET/SET left
	// undeclared after parsing.
	CodeUndefinedSymbol ErrorCode = 3
	// CodeRedefinition marks a second declaration of the same mangled name
	// in a scope: duplicate function/getter/setter, duplicate parameter,
	// or a variable redeclared in the same scope.
	CodeRedefinition ErrorCode = 4
	// CodeArgument marks a call whose argument count or argument types
	// cannot satisfy any declared overload.
	CodeArgument ErrorCode = 5
	// CodeExpressionType marks a static type-table violation (4.3a) that
	// cannot be excused by an UNKNOWN operand.
	CodeExpressionType ErrorCode = 6
	// CodeSemanticOther covers semantic errors not covered by a more
	// specific code above, e.g. a setter called as a call.
	CodeSemanticOther ErrorCode = 10
	// CodeRuntimeArgType is never raised by the compiler process; it
	// labels the EXIT int@25 sequences baked into emitted Ifj.* templates.
	CodeRuntimeArgType ErrorCode = 25
	// CodeRuntimeTypeMismatch is never raised by the compiler process; it
	// labels the EXIT int@26 sequence baked into the Ifj.str template for
	// an operand of no printable type.
	CodeRuntimeTypeMismatch ErrorCode = 26
	// CodeInternal marks a compiler-bug invariant violation (missing AST
	// child after a reduction, popping an empty stack) rather than a user
	// error on well-formed input.
	CodeInternal ErrorCode = 99
)

// String names the error kind for diagnostic headers.
func (c ErrorCode) String() string {
	switch c {
	case CodeLexical:
		return "lexical error"
	case CodeSyntax:
		return "syntax error"
	case CodeUndefinedSymbol:
		return "undefined symbol"
	case CodeRedefinition:
		return "redefinition error"
	case CodeArgument:
		return "argument error"
	case CodeExpressionType:
		return "expression type error"
	case CodeSemanticOther:
		return "semantic error"
	case CodeRuntimeArgType:
		return "runtime argument type trap"
	case CodeRuntimeTypeMismatch:
		return "runtime type mismatch trap"
	case CodeInternal:
		return "internal compiler error"
	default:
		return "unknown error"
	}
}

// Position locates a diagnostic in the source. Line and Column are 1-based;
// Column is 0 when unknown (e.g. an error synthesised after parsing, with
// no single source column to blame).
type Position struct {
	Line   int
	Column int
}

// CompilerError is the single fatal diagnostic a phase reports. It carries
// enough context to reproduce the original compiler's "line number and,
// when applicable, the offending token's kind and value" message (§7)
// without accumulating a list - there is only ever one.
type CompilerError struct {
	Code    ErrorCode
	Pos     Position
	Message string
	// Token is the textual form of the offending token, if any (its kind
	// and/or literal value); empty when the error is not tied to a single
	// token, e.g. a declared-function check failure.
	Token string
	// Source and File support caret-pointer rendering the way the
	// teacher's errors.Format does; both may be empty when unavailable
	// (e.g. errors synthesised from stdin without line retention).
	Source string
	File   string
}

// New constructs a CompilerError. source and file may be empty.
func New(code ErrorCode, pos Position, message, token, source, file string) *CompilerError {
	return &CompilerError{
		Code:    code,
		Pos:     pos,
		Message: message,
		Token:   token,
		Source:  source,
		File:    file,
	}
}

// Error implements the error interface with the uncolored rendering.
func (e *CompilerError) Error() string {
	return e.Format(false)
}

// ExitCode returns the process exit code this error maps to.
func (e *CompilerError) ExitCode() int {
	return int(e.Code)
}

// Format renders the error as a header, an optional source-line extract
// with a caret under the offending column, and the message - the same
// shape as the teacher's CompilerError.Format, minus the multi-error
// accumulation this compiler's first-error semantics make unnecessary.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	where := e.File
	if where == "" {
		where = "<stdin>"
	}
	if e.Pos.Column > 0 {
		fmt.Fprintf(&sb, "%s:%d:%d: %s: %s\n", where, e.Pos.Line, e.Pos.Column, e.Code, e.Message)
	} else {
		fmt.Fprintf(&sb, "%s:%d: %s: %s\n", where, e.Pos.Line, e.Code, e.Message)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")

		if e.Pos.Column > 0 {
			sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
			if color {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString("^")
			if color {
				sb.WriteString("\033[0m")
			}
			sb.WriteString("\n")
		}
	}

	if e.Token != "" {
		fmt.Fprintf(&sb, "near token: %s\n", e.Token)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (e *CompilerError) sourceLine(n int) string {
	if e.Source == "" || n < 1 {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}
