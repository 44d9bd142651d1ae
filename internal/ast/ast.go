// Package ast defines the single tagged AST node type used throughout the
// IFJ25 compiler (spec §3). Unlike a hierarchy of per-construct Go types,
// every node - declaration, statement, or expression - is one Node value
// distinguished by its Kind; the Kind determines which of the three child
// shapes (pair, list, leaf) is meaningful.
package ast

import (
	"bytes"
	"fmt"

	"github.com/ifj25/ifjc/internal/lexer"
)

// Kind is the closed set of AST node tags (spec §3).
type Kind int

const (
	KindInvalid Kind = iota

	// list shape
	KindClass    // children: static declarations
	KindBlock    // children: statements
	KindParams   // children: Ident leaves (parameter names)
	KindArgs     // children: Ident/literal leaves (call arguments)
	KindDeferred // children: nodes queued for deferred resolution

	// pair shape
	KindFuncDecl   // Left: KindParams, Right: KindBlock
	KindGetterDecl // Left: nil, Right: KindBlock
	KindSetterDecl // Left: KindParams (exactly one param), Right: KindBlock
	KindVarDecl    // Left: nil, Right: nil (Tok carries the identifier)
	KindAssign     // Left: target Ident, Right: value expression
	KindReturn     // Left: nil, Right: optional expression
	KindIf         // Left: condition, Right: KindBlock
	KindIfElse     // Left: KindIf, Right: KindElse, or the nested KindIf/KindIfElse of an `else if`
	KindElse       // Left: empty, Right: KindBlock
	KindWhile      // Left: condition, Right: KindBlock
	KindBinary     // Left, Right: operands; Tok.Type selects the operator
	KindUnary      // Left: nil, Right: operand; Tok.Type selects the operator
	KindIsExpr     // Left: operand, Right: KindTypeName
	KindCall       // Left: nil, Right: KindArgs; Tok carries callee name
	KindIfjCall    // Left: nil, Right: KindArgs; Tok carries the Ifj.<name>

	// leaf shape
	KindIdent    // Tok.StrVal is the identifier spelling
	KindIntLit   // Tok.IntVal
	KindFloatLit // Tok.FloatVal
	KindStrLit   // Tok.StrVal (STRING or MLSTRING)
	KindBoolLit  // Tok.Type is TRUE or FALSE
	KindNullLit  // no payload
	KindTypeName // Tok.Type is one of the type keywords
)

var kindNames = [...]string{
	KindInvalid:    "INVALID",
	KindClass:      "Class",
	KindBlock:      "Block",
	KindParams:     "Params",
	KindArgs:       "Args",
	KindDeferred:   "Deferred",
	KindFuncDecl:   "FuncDecl",
	KindGetterDecl: "GetterDecl",
	KindSetterDecl: "SetterDecl",
	KindVarDecl:    "VarDecl",
	KindAssign:     "Assign",
	KindReturn:     "Return",
	KindIf:         "If",
	KindIfElse:     "IfElse",
	KindElse:       "Else",
	KindWhile:      "While",
	KindBinary:     "Binary",
	KindUnary:      "Unary",
	KindIsExpr:     "IsExpr",
	KindCall:       "Call",
	KindIfjCall:    "IfjCall",
	KindIdent:      "Ident",
	KindIntLit:     "IntLit",
	KindFloatLit:   "FloatLit",
	KindStrLit:     "StrLit",
	KindBoolLit:    "BoolLit",
	KindNullLit:    "NullLit",
	KindTypeName:   "TypeName",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// ExprType is a bitset over the six static type classes (spec §3, §9):
// a small unsigned integer with named bits, not a single enum value, so a
// node can carry a union like STRING|NULL while it is still UNKNOWN before
// resolution.
type ExprType uint8

const (
	Unknown ExprType = 1 << iota
	Int
	String
	Float
	Null
	Bool
)

func (t ExprType) String() string {
	if t == Unknown {
		return "UNKNOWN"
	}
	var names []string
	for bit, name := range map[ExprType]string{Int: "INT", String: "STRING", Float: "FLOAT", Null: "NULL", Bool: "BOOL"} {
		if t&bit != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	out := names[0]
	for _, n := range names[1:] {
		out += "|" + n
	}
	return out
}

// Has reports whether t includes every bit of subset.
func (t ExprType) Has(subset ExprType) bool { return t&subset == subset }

// Intersects reports whether t and other share any bit.
func (t ExprType) Intersects(other ExprType) bool { return t&other != 0 }

// Node is the single tagged AST record (spec §3). Each node exclusively
// owns Left, Right and Children; the tree is acyclic. Which fields are
// meaningful is determined entirely by Kind - see the comments on the
// Kind constants above.
type Node struct {
	Kind     Kind
	Tok      lexer.Token
	Type     ExprType
	Left     *Node
	Right    *Node
	Children []*Node

	// Depth is the scope-stack depth (0 = global, 1 = first function body,
	// deeper for each nested `{...}`) at which a KindVarDecl/KindParams leaf
	// was declared, or at which a KindIdent read/assignment target
	// resolved - the parser stamps this because the scope that held the
	// declaration may already be popped by the time code generation needs
	// it (spec §4.4's "Frame depth" glossary entry).
	Depth int

	// Mangled is the resolved symbol-table key for a node whose identity
	// cannot be read off its token alone: a getter/setter-backed KindIdent
	// (its accessor's mangled name), or a KindCall/KindIfjCall/KindFuncDecl/
	// KindGetterDecl/KindSetterDecl (its own mangled label). Empty until
	// resolution stamps it; a KindIdent with Mangled set is read or written
	// through a getter/setter call rather than a frame slot.
	Mangled string
}

// Pos returns the node's source position, taken from its token.
func (n *Node) Pos() lexer.Position {
	return lexer.Position{Line: n.Tok.Line, Column: n.Tok.Column}
}

// TokenLiteral returns the literal spelling of the node's token, matching
// the teacher's Node.TokenLiteral idiom for debugging output.
func (n *Node) TokenLiteral() string {
	return n.Tok.Literal()
}

// Ident returns the identifier spelling carried by a KindIdent leaf, a
// function/call name, or the base name before mangling (and a string
// literal's payload); for any other token it returns the token type's name.
func (n *Node) Ident() string {
	switch n.Tok.Type {
	case lexer.IDENT, lexer.GLOBAL_IDENT, lexer.STRING, lexer.MLSTRING:
		return n.Tok.StrVal
	default:
		return n.Tok.Type.String()
	}
}

// String renders an s-expression dump of the subtree, used by `ifjc parse`
// and by tests, mirroring the teacher's tree-dump String() methods but
// generalized over the single Node type.
func (n *Node) String() string {
	if n == nil {
		return "()"
	}
	var out bytes.Buffer
	n.writeTo(&out)
	return out.String()
}

func (n *Node) writeTo(out *bytes.Buffer) {
	fmt.Fprintf(out, "(%s", n.Kind)
	if lit := n.leafLiteral(); lit != "" {
		fmt.Fprintf(out, " %s", lit)
	}
	if n.Left != nil {
		out.WriteString(" ")
		n.Left.writeTo(out)
	}
	if n.Right != nil {
		out.WriteString(" ")
		n.Right.writeTo(out)
	}
	for _, c := range n.Children {
		out.WriteString(" ")
		c.writeTo(out)
	}
	out.WriteString(")")
}

func (n *Node) leafLiteral() string {
	switch n.Kind {
	case KindIdent, KindCall, KindIfjCall, KindTypeName:
		return n.Ident()
	case KindIntLit:
		return fmt.Sprintf("%d", n.Tok.IntVal)
	case KindFloatLit:
		return fmt.Sprintf("%g", n.Tok.FloatVal)
	case KindStrLit:
		return fmt.Sprintf("%q", n.Tok.StrVal)
	case KindBoolLit, KindBinary, KindUnary:
		return n.Tok.Type.String()
	default:
		return ""
	}
}

// New constructs a leaf or pair/list node sharing the given token.
func New(kind Kind, tok lexer.Token) *Node {
	return &Node{Kind: kind, Tok: tok}
}

// NewPair constructs a pair-shaped node.
func NewPair(kind Kind, tok lexer.Token, left, right *Node) *Node {
	return &Node{Kind: kind, Tok: tok, Left: left, Right: right}
}

// NewList constructs a list-shaped node.
func NewList(kind Kind, tok lexer.Token, children ...*Node) *Node {
	return &Node{Kind: kind, Tok: tok, Children: children}
}
