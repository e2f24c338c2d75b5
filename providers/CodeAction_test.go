package providers

import (
	"testing"

	. "github.com/redexp/tjs-postfix-lsp/types"
	"github.com/stretchr/testify/require"
)

func TestCallThisFunction(t *testing.T) {
	setupRegistry(t)

	list := []struct {
		Text   string
		Range  Range
		Expect string
		Target Range
	}{
		{"const r = obj.fn;\n", Range{Start: Position{0, 14}, End: Position{0, 14}}, "fn(obj)", Range{Start: Position{0, 10}, End: Position{0, 16}}},
		{"const r = obj.fn;\n", Range{Start: Position{0, 14}, End: Position{0, 16}}, "fn(obj)", Range{Start: Position{0, 10}, End: Position{0, 16}}},
		{"a.b.c;\n", Range{Start: Position{0, 2}, End: Position{0, 5}}, "b.c(a)", Range{Start: Position{0, 0}, End: Position{0, 5}}},
		{"const r = obj.fn;\n", Range{Start: Position{0, 11}, End: Position{0, 11}}, "", Range{}},
		{"fn(x);\n", Range{Start: Position{0, 0}, End: Position{0, 0}}, "", Range{}},
	}

	for i, item := range list {
		require.NoError(t, registry.Open(testUri, "typescript", 1, item.Text))

		snap, err := registry.Snapshot(testUri)
		require.NoError(t, err)

		edit, ok, err := CallThisFunction(snap, item.Range)

		switch {
		case err != nil:
			t.Errorf("%d - unexpected error: %v", i+1, err)
		case item.Expect == "":
			if ok {
				t.Errorf("%d - got: %s; expect no action", i+1, edit.NewText)
			}
		case !ok:
			t.Errorf("%d - no action; expect: %s", i+1, item.Expect)
		case edit.NewText != item.Expect:
			t.Errorf("%d - got: %s; expect: %s", i+1, edit.NewText, item.Expect)
		case edit.Range != item.Target:
			t.Errorf("%d - got range: %v; expect: %v", i+1, edit.Range, item.Target)
		}

		snap.Release()
	}
}
