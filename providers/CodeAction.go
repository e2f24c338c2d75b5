package providers

import (
	. "github.com/redexp/tjs-postfix-lsp/i18n"
	. "github.com/redexp/tjs-postfix-lsp/state"
	. "github.com/redexp/tjs-postfix-lsp/types"
	. "github.com/redexp/tjs-postfix-lsp/utils"
	proto "github.com/tliron/glsp/protocol_3_16"
)

func CodeAction(ctx *Ctx, params *proto.CodeActionParams) (res any, err error) {
	uri, err := NormalizeUri(params.TextDocument.URI)

	if err != nil {
		return
	}

	snap, err := registry.Snapshot(uri)

	if err != nil {
		return
	}

	defer snap.Release()

	list := make([]proto.CodeAction, 0)

	if !snap.HasTree() || snap.Stale() {
		return list, nil
	}

	edit, ok, err := CallThisFunction(snap, params.Range)

	if err != nil || !ok {
		return list, err
	}

	list = append(list, proto.CodeAction{
		Title:       L("call_function", edit.NewText),
		Kind:        P(proto.CodeActionKindRefactorRewrite),
		IsPreferred: &proto.False,
		Edit: &proto.WorkspaceEdit{
			Changes: map[Uri][]proto.TextEdit{
				params.TextDocument.URI: {edit},
			},
		},
	})

	return list, nil
}

// CallThisFunction rewrites the member expression `obj.fn` selected by r into
// `fn(obj)`. The selection may span several properties: `a.b.c` with `b.c`
// selected becomes `b.c(a)`.
func CallThisFunction(snap *Snapshot, r Range) (edit proto.TextEdit, ok bool, err error) {
	start, err := snap.OffsetAt(r.Start)

	if err != nil {
		return
	}

	end, err := snap.OffsetAt(r.End)

	if err != nil {
		return
	}

	if end > start {
		end--
	}

	first, err := charNode(snap, start)

	if err != nil {
		return
	}

	last, err := charNode(snap, end)

	if err != nil {
		return
	}

	fp, lp := first.Parent(), last.Parent()

	if fp.Kind() != "member_expression" || lp.Kind() != "member_expression" {
		return
	}

	if !fp.ChildByFieldName("property").Equal(first) || !lp.ChildByFieldName("property").Equal(last) {
		return
	}

	object := fp.ChildByFieldName("object")

	if object.IsZero() || first.StartByte() > last.EndByte() {
		return
	}

	fn := snap.Rope().Slice(first.StartByte(), last.EndByte())

	return proto.TextEdit{
		Range:   lp.Range(),
		NewText: fn + "(" + object.Text() + ")",
	}, true, nil
}

// charNode returns the smallest named node covering the character at offset.
func charNode(snap *Snapshot, offset int) (Node, error) {
	next := min(offset+1, snap.Rope().Len())

	return snap.SmallestNamedNodeForBytes(offset, next)
}
