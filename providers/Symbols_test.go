package providers

import (
	"testing"

	. "github.com/redexp/tjs-postfix-lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	proto "github.com/tliron/glsp/protocol_3_16"
)

func setupRegistry(t *testing.T) {
	require.NoError(t, Setup(DefaultConfiguration()))
	t.Cleanup(Teardown)
}

func TestSymbols(t *testing.T) {
	setupRegistry(t)

	text := "function f() {}\n" +
		"class A {\n" +
		"  m() { const inner = 1; }\n" +
		"}\n" +
		"interface I {}\n" +
		"type T = string;\n" +
		"enum E { a }\n" +
		"let v = 2;\n"

	require.NoError(t, registry.Open(testUri, "typescript", 1, text))

	snap, err := registry.Snapshot(testUri)
	require.NoError(t, err)
	defer snap.Release()

	list, err := Symbols(snap)
	require.NoError(t, err)

	type item struct {
		Name string
		Kind proto.SymbolKind
	}

	roots := make([]item, len(list))

	for i, s := range list {
		roots[i] = item{s.Name, s.Kind}
	}

	assert.Equal(t, []item{
		{"f", proto.SymbolKindFunction},
		{"A", proto.SymbolKindClass},
		{"I", proto.SymbolKindInterface},
		{"T", proto.SymbolKindTypeParameter},
		{"E", proto.SymbolKindEnum},
		{"v", proto.SymbolKindVariable},
	}, roots)

	class := list[1]
	require.Len(t, class.Children, 1)

	method := class.Children[0]
	assert.Equal(t, "m", method.Name)
	assert.Equal(t, proto.SymbolKindMethod, method.Kind)
	assert.Equal(t, Range{Start: Position{2, 2}, End: Position{2, 3}}, method.SelectionRange)

	require.Len(t, method.Children, 1)
	assert.Equal(t, "inner", method.Children[0].Name)
	assert.Equal(t, proto.SymbolKindConstant, method.Children[0].Kind)

	assert.Equal(t, Range{Start: Position{1, 0}, End: Position{3, 1}}, class.Range)
}

func TestSymbolsJavascript(t *testing.T) {
	setupRegistry(t)

	uri := "file:///project/src/app.js"

	require.NoError(t, registry.Open(uri, "javascript", 1, "function* gen() {}\nconst a = () => 1;\n"))

	snap, err := registry.Snapshot(uri)
	require.NoError(t, err)
	defer snap.Release()

	list, err := Symbols(snap)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "gen", list[0].Name)
	assert.Equal(t, proto.SymbolKindFunction, list[0].Kind)
	assert.Equal(t, "a", list[1].Name)
	assert.Equal(t, proto.SymbolKindConstant, list[1].Kind)
}

func TestSelectionChain(t *testing.T) {
	setupRegistry(t)

	require.NoError(t, registry.Open(testUri, "typescript", 1, "let x = 1;\n"))

	snap, err := registry.Snapshot(testUri)
	require.NoError(t, err)
	defer snap.Release()

	node, err := snap.SmallestNamedNodeAt(Position{0, 4})
	require.NoError(t, err)

	sel := SelectionChain(node)

	ranges := []Range{}

	for s := &sel; s != nil; s = s.Parent {
		ranges = append(ranges, s.Range)
	}

	require.GreaterOrEqual(t, len(ranges), 3)
	assert.Equal(t, Range{Start: Position{0, 4}, End: Position{0, 5}}, ranges[0])
	assert.Equal(t, Range{Start: Position{0, 4}, End: Position{0, 9}}, ranges[1])
	assert.Equal(t, Range{Start: Position{0, 0}, End: Position{0, 10}}, ranges[2])

	for i := 1; i < len(ranges); i++ {
		assert.NotEqual(t, ranges[i-1], ranges[i])
	}
}

func TestToChanges(t *testing.T) {
	r := Range{Start: Position{0, 1}, End: Position{0, 2}}

	list := ToChanges([]any{
		proto.TextDocumentContentChangeEvent{Range: &r, Text: "a"},
		proto.TextDocumentContentChangeEventWhole{Text: "whole"},
		"garbage",
	})

	require.Len(t, list, 2)
	assert.Equal(t, &r, list[0].Range)
	assert.Equal(t, "a", list[0].Text)
	assert.Nil(t, list[1].Range)
	assert.Equal(t, "whole", list[1].Text)
}
