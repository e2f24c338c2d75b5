package state

import (
	"fmt"
	"iter"
	"sync"

	. "github.com/redexp/tjs-postfix-lsp/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Query is a tree-sitter query compiled lazily for each language it is run
// against. It is safe for concurrent use.
type Query struct {
	source string

	mu       sync.Mutex
	compiled map[*Language]*sitter.Query
}

type Capture struct {
	Name    string
	Pattern int
	Node    Node
}

func NewQuery(source string) *Query {
	return &Query{
		source:   source,
		compiled: make(map[*Language]*sitter.Query),
	}
}

func (q *Query) compile(lang *Language) (*sitter.Query, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if compiled, ok := q.compiled[lang]; ok {
		return compiled, nil
	}

	compiled, qerr := sitter.NewQuery(lang, q.source)

	if qerr != nil {
		return nil, fmt.Errorf("compile query: %w", qerr)
	}

	q.compiled[lang] = compiled

	return compiled, nil
}

func (q *Query) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for lang, compiled := range q.compiled {
		compiled.Close()
		delete(q.compiled, lang)
	}
}

// Matches runs q over the whole tree of snap. Each match is the list of its
// captures.
func (snap *Snapshot) Matches(q *Query) (matches [][]Capture, err error) {
	if snap.tree == nil {
		return nil, fmt.Errorf("%s: %w", snap.uri, ErrNoTree)
	}

	compiled, err := q.compile(snap.language)

	if err != nil {
		return
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	names := compiled.CaptureNames()
	source := []byte(snap.source.String())
	it := cursor.Matches(compiled, snap.tree.RootNode(), source)

	for m := it.Next(); m != nil; m = it.Next() {
		list := make([]Capture, 0, len(m.Captures))

		for _, c := range m.Captures {
			node := c.Node

			list = append(list, Capture{
				Name:    names[c.Index],
				Pattern: int(m.PatternIndex),
				Node:    wrapNode(snap, &node),
			})
		}

		matches = append(matches, list)
	}

	return
}

// Problems yields the ERROR and MISSING nodes under node, skipping subtrees
// without errors.
func Problems(node Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if !node.HasError() && !node.IsMissing() {
			return
		}

		var walk func(n Node) bool

		walk = func(n Node) bool {
			if n.IsError() || n.IsMissing() {
				return yield(n)
			}

			if !n.HasError() {
				return true
			}

			for child := range n.Children() {
				if !walk(child) {
					return false
				}
			}

			return true
		}

		walk(node)
	}
}

// Grammar is the name of the grammar the snapshot was parsed with.
func (snap *Snapshot) Grammar() string {
	for name, lang := range grammars {
		if lang == snap.language {
			return name
		}
	}

	return ""
}
