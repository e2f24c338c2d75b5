package state

import (
	"fmt"
	"sync/atomic"

	"github.com/redexp/tjs-postfix-lsp/position"
	"github.com/redexp/tjs-postfix-lsp/rope"
	. "github.com/redexp/tjs-postfix-lsp/types"
)

// Snapshot is an immutable view of one document: its text and the syntax
// tree parsed from it. Every snapshot returned by Registry.Snapshot must be
// released; the tree is freed once the registry has moved on and the last
// reader is done.
//
// When a reparse fails the snapshot keeps the last good tree together with
// the text it was parsed from (Stale reports true). Tree queries then answer
// in that text.
type Snapshot struct {
	uri        Uri
	version    int32
	languageID string
	language   *Language

	text   *rope.Rope
	source *rope.Rope
	tree   *Tree
	stale  bool

	refs atomic.Int32
}

func newSnapshot(uri Uri, version int32, languageID string, lang *Language, text *rope.Rope, tree *Tree) *Snapshot {
	snap := &Snapshot{
		uri:        uri,
		version:    version,
		languageID: languageID,
		language:   lang,
		text:       text,
		source:     text,
		tree:       tree,
	}

	snap.refs.Store(1)

	return snap
}

// derive returns a copy of snap under a new version.
func (snap *Snapshot) derive(version int32) *Snapshot {
	next := &Snapshot{
		uri:        snap.uri,
		version:    version,
		languageID: snap.languageID,
		language:   snap.language,
		text:       snap.text,
		source:     snap.source,
		stale:      snap.stale,
	}

	if snap.tree != nil {
		next.tree = snap.tree.Clone()
	}

	next.refs.Store(1)

	return next
}

func (snap *Snapshot) acquire() *Snapshot {
	snap.refs.Add(1)

	return snap
}

func (snap *Snapshot) Release() {
	if snap.refs.Add(-1) != 0 {
		return
	}

	if snap.tree != nil {
		snap.tree.Close()
	}
}

func (snap *Snapshot) phase() Phase {
	switch {
	case snap.tree == nil:
		return PhaseNoTree
	case snap.stale:
		return PhaseStale
	}

	return PhaseFresh
}

func (snap *Snapshot) Uri() Uri {
	return snap.uri
}

func (snap *Snapshot) Version() int32 {
	return snap.version
}

func (snap *Snapshot) LanguageID() string {
	return snap.languageID
}

func (snap *Snapshot) Stale() bool {
	return snap.stale
}

func (snap *Snapshot) HasTree() bool {
	return snap.tree != nil
}

func (snap *Snapshot) Rope() *rope.Rope {
	return snap.text
}

func (snap *Snapshot) Text() string {
	return snap.text.String()
}

func (snap *Snapshot) Line(n int) string {
	return snap.text.Line(n)
}

func (snap *Snapshot) OffsetAt(pos Position) (int, error) {
	return position.ToOffset(snap.text, pos)
}

func (snap *Snapshot) PositionAt(offset int) (Position, error) {
	return position.ToPosition(snap.text, offset)
}

func (snap *Snapshot) Root() (Node, error) {
	if snap.tree == nil {
		return Node{}, fmt.Errorf("%s: %w", snap.uri, ErrNoTree)
	}

	return wrapNode(snap, snap.tree.RootNode()), nil
}

// SmallestNamedNodeAt returns the smallest named node that covers pos.
func (snap *Snapshot) SmallestNamedNodeAt(pos Position) (Node, error) {
	if snap.tree == nil {
		return Node{}, fmt.Errorf("%s: %w", snap.uri, ErrNoTree)
	}

	offset, err := position.ToOffset(snap.source, pos)

	if err != nil {
		return Node{}, err
	}

	return snap.SmallestNamedNodeForBytes(offset, offset)
}

func (snap *Snapshot) SmallestNamedNodeForRange(r Range) (Node, error) {
	if snap.tree == nil {
		return Node{}, fmt.Errorf("%s: %w", snap.uri, ErrNoTree)
	}

	start, err := position.ToOffset(snap.source, r.Start)

	if err != nil {
		return Node{}, err
	}

	end, err := position.ToOffset(snap.source, r.End)

	if err != nil {
		return Node{}, err
	}

	return snap.SmallestNamedNodeForBytes(start, end)
}

func (snap *Snapshot) SmallestNamedNodeForBytes(start, end int) (Node, error) {
	if snap.tree == nil {
		return Node{}, fmt.Errorf("%s: %w", snap.uri, ErrNoTree)
	}

	if start < 0 || end < start || end > snap.source.Len() {
		return Node{}, fmt.Errorf("%w: bytes [%d, %d), document has %d", position.ErrOutOfRange, start, end, snap.source.Len())
	}

	root := snap.tree.RootNode()
	node := root.NamedDescendantForByteRange(uint(start), uint(end))

	if node == nil {
		node = root
	}

	return wrapNode(snap, node), nil
}
