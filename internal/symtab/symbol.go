package symtab

import (
	"fmt"

	"github.com/ifj25/ifjc/internal/ast"
)

// Kind is the closed set of symbol kinds a scope can hold (spec §3).
type Kind int

const (
	Var Kind = iota
	Param
	Func
	Get
	Set
	Class
	Const
)

func (k Kind) String() string {
	switch k {
	case Var:
		return "VAR"
	case Param:
		return "PARAM"
	case Func:
		return "FUNC"
	case Get:
		return "GET"
	case Set:
		return "SET"
	case Class:
		return "CLASS"
	case Const:
		return "CONST"
	default:
		return "UNKNOWN"
	}
}

// Symbol is the record a Scope stores (spec §3). For FUNC/GET/SET, Name is
// already mangled - mangling is the sole lookup key, the base name never
// appears unmangled in the table (spec §9 design note).
type Symbol struct {
	Name       string
	Kind       Kind
	Type       ast.ExprType
	ParamTypes []ast.ExprType
	Declared   bool
	NumParams  int

	// Depth is the scope-stack depth a VAR/PARAM was declared at (0 =
	// global). The parser copies this onto every ast.Node that reads or
	// targets the symbol, since the scope holding it may already be popped
	// by the time code generation needs to tell two same-named locals at
	// different depths apart (spec §4.4's "Frame depth").
	Depth int
}

// Mangle computes the stored table key for a FUNC/GET/SET symbol from its
// base (unmangled) name, matching original_source's symbolGetUniqueName:
// functions append "$<arity>", getters "#get", setters "#set".
func Mangle(kind Kind, base string, numParams int) string {
	switch kind {
	case Get:
		return base + "#get"
	case Set:
		return base + "#set"
	default:
		return fmt.Sprintf("%s$%d", base, numParams)
	}
}

// NewSymbol builds a Symbol, mangling its name when kind requires it. VAR,
// PARAM, CLASS and CONST keep the source identifier unmangled.
func NewSymbol(base string, kind Kind, numParams int) *Symbol {
	name := base
	switch kind {
	case Func, Get, Set:
		name = Mangle(kind, base, numParams)
	}
	var params []ast.ExprType
	if numParams > 0 {
		params = make([]ast.ExprType, numParams)
		for i := range params {
			params[i] = ast.Unknown
		}
	}
	return &Symbol{
		Name:       name,
		Kind:       kind,
		Type:       ast.Unknown,
		ParamTypes: params,
		Declared:   false,
		NumParams:  numParams,
	}
}

// update overwrites the mutable fields of dest with those of src, matching
// original_source's symbolUpdate (used when scopeAddSymbol finds an
// existing entry under the same mangled name rather than inserting).
func (dest *Symbol) update(src *Symbol) {
	dest.Kind = src.Kind
	dest.NumParams = src.NumParams
	dest.Type = src.Type
}
