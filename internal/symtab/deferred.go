package symtab

import "github.com/ifj25/ifjc/internal/ast"

// Deferred is the ordered list of AST nodes queued during parsing because
// they contain a forward reference - typically a call whose callee is not
// yet declared, or an assignment whose right side has unresolved type
// (spec §3). Entries are borrowed references into the main tree: the list
// never owns or copies a node, it only remembers where to look again once
// parsing completes. Append-only while the parser runs, iterate-only
// during semantic resolution (spec's "Shared resources" note, §4.5).
type Deferred struct {
	nodes []*ast.Node
}

// NewDeferred returns an empty deferred list.
func NewDeferred() *Deferred {
	return &Deferred{}
}

// Add appends n to the end of the list, preserving the order nodes were
// queued in during parsing.
func (d *Deferred) Add(n *ast.Node) {
	d.nodes = append(d.nodes, n)
}

// Len reports how many nodes are queued.
func (d *Deferred) Len() int {
	return len(d.nodes)
}

// Nodes returns the queued nodes in queue order, for the resolver to walk
// once during semantic analysis.
func (d *Deferred) Nodes() []*ast.Node {
	return d.nodes
}
