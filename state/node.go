package state

import (
	"iter"

	"github.com/redexp/tjs-postfix-lsp/position"
	. "github.com/redexp/tjs-postfix-lsp/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Node is a syntax node of a snapshot. It stays valid until the snapshot is
// released. The zero Node stands for "no node" and answers every query with a
// zero value.
type Node struct {
	node sitter.Node
	snap *Snapshot
}

func wrapNode(snap *Snapshot, node *sitter.Node) Node {
	if node == nil {
		return Node{}
	}

	return Node{node: *node, snap: snap}
}

func (n Node) IsZero() bool {
	return n.snap == nil
}

func (n Node) Snapshot() *Snapshot {
	return n.snap
}

func (n Node) Kind() string {
	if n.IsZero() {
		return ""
	}

	return n.node.Kind()
}

func (n Node) IsNamed() bool {
	return !n.IsZero() && n.node.IsNamed()
}

func (n Node) IsError() bool {
	return !n.IsZero() && n.node.IsError()
}

func (n Node) IsMissing() bool {
	return !n.IsZero() && n.node.IsMissing()
}

func (n Node) HasError() bool {
	return !n.IsZero() && n.node.HasError()
}

func (n Node) Id() uintptr {
	if n.IsZero() {
		return 0
	}

	return n.node.Id()
}

func (n Node) Equal(other Node) bool {
	return n.snap == other.snap && n.Id() == other.Id() && n.StartByte() == other.StartByte() && n.EndByte() == other.EndByte()
}

func (n Node) StartByte() int {
	if n.IsZero() {
		return 0
	}

	return int(n.node.StartByte())
}

func (n Node) EndByte() int {
	if n.IsZero() {
		return 0
	}

	return int(n.node.EndByte())
}

func (n Node) StartPoint() Point {
	if n.IsZero() {
		return Point{}
	}

	return n.node.StartPosition()
}

func (n Node) EndPoint() Point {
	if n.IsZero() {
		return Point{}
	}

	return n.node.EndPosition()
}

func (n Node) Sexp() string {
	if n.IsZero() {
		return ""
	}

	return n.node.ToSexp()
}

// Range is the node's span in LSP coordinates.
func (n Node) Range() Range {
	if n.IsZero() {
		return Range{}
	}

	start, _ := position.ToPosition(n.snap.source, n.StartByte())
	end, _ := position.ToPosition(n.snap.source, n.EndByte())

	return Range{Start: start, End: end}
}

// Text is the source of the node.
func (n Node) Text() string {
	if n.IsZero() {
		return ""
	}

	return n.snap.source.Slice(n.StartByte(), n.EndByte())
}

func (n Node) Parent() Node {
	if n.IsZero() {
		return Node{}
	}

	return wrapNode(n.snap, n.node.Parent())
}

func (n Node) ChildCount() int {
	if n.IsZero() {
		return 0
	}

	return int(n.node.ChildCount())
}

func (n Node) Child(i int) Node {
	if n.IsZero() || i < 0 {
		return Node{}
	}

	return wrapNode(n.snap, n.node.Child(uint(i)))
}

func (n Node) NamedChildCount() int {
	if n.IsZero() {
		return 0
	}

	return int(n.node.NamedChildCount())
}

func (n Node) NamedChild(i int) Node {
	if n.IsZero() || i < 0 {
		return Node{}
	}

	return wrapNode(n.snap, n.node.NamedChild(uint(i)))
}

func (n Node) ChildByFieldName(name string) Node {
	if n.IsZero() {
		return Node{}
	}

	return wrapNode(n.snap, n.node.ChildByFieldName(name))
}

func (n Node) FieldNameForChild(i int) string {
	if n.IsZero() || i < 0 {
		return ""
	}

	return n.node.FieldNameForChild(uint32(i))
}

// Children iterates over all direct children, anonymous ones included.
func (n Node) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for i := range n.ChildCount() {
			if !yield(n.Child(i)) {
				return
			}
		}
	}
}

func (n Node) NamedChildren() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for i := range n.NamedChildCount() {
			if !yield(n.NamedChild(i)) {
				return
			}
		}
	}
}

// Ancestors yields the parent chain, nearest first, root last.
func (n Node) Ancestors() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for p := n.Parent(); !p.IsZero(); p = p.Parent() {
			if !yield(p) {
				return
			}
		}
	}
}
