package providers

import (
	"fmt"

	. "github.com/redexp/tjs-postfix-lsp/i18n"
	. "github.com/redexp/tjs-postfix-lsp/state"
	. "github.com/redexp/tjs-postfix-lsp/types"
	. "github.com/redexp/tjs-postfix-lsp/utils"
	"github.com/tliron/glsp"
	proto "github.com/tliron/glsp/protocol_3_16"
)

func Hover(context *glsp.Context, params *proto.HoverParams) (h *proto.Hover, err error) {
	uri, err := NormalizeUri(params.TextDocument.URI)

	if err != nil {
		return
	}

	snap, err := registry.Snapshot(uri)

	if err != nil {
		return
	}

	defer snap.Release()

	if !snap.HasTree() {
		return
	}

	node, err := snap.SmallestNamedNodeAt(params.Position)

	if err != nil {
		return
	}

	message := fmt.Sprintf("**%s**", node.Kind())

	if parent := node.Parent(); !parent.IsZero() {
		message = L("node_in", node.Kind(), parent.Kind())
	}

	if snap.Stale() {
		message += "\n\n_" + L("stale_tree") + "_"
	}

	r := node.Range()

	h = &proto.Hover{
		Contents: proto.MarkupContent{
			Kind:  proto.MarkupKindMarkdown,
			Value: message,
		},
		Range: &r,
	}

	return
}

func SelectionRange(ctx *Ctx, params *proto.SelectionRangeParams) (list []proto.SelectionRange, err error) {
	uri, err := NormalizeUri(params.TextDocument.URI)

	if err != nil {
		return
	}

	snap, err := registry.Snapshot(uri)

	if err != nil {
		return
	}

	defer snap.Release()

	list = make([]proto.SelectionRange, 0, len(params.Positions))

	for _, pos := range params.Positions {
		node, err := snap.SmallestNamedNodeAt(pos)

		if err != nil {
			return nil, err
		}

		list = append(list, SelectionChain(node))
	}

	return
}

// SelectionChain returns the range of node with its ancestors as parents,
// skipping ancestors that cover the same range.
func SelectionChain(node Node) proto.SelectionRange {
	chain := []proto.Range{node.Range()}

	for p := range node.Ancestors() {
		r := p.Range()

		if r != chain[len(chain)-1] {
			chain = append(chain, r)
		}
	}

	var parent *proto.SelectionRange

	for i := len(chain) - 1; i > 0; i-- {
		parent = &proto.SelectionRange{
			Range:  chain[i],
			Parent: parent,
		}
	}

	return proto.SelectionRange{
		Range:  chain[0],
		Parent: parent,
	}
}
