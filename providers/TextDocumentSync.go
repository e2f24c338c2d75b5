package providers

import (
	"errors"

	. "github.com/redexp/tjs-postfix-lsp/state"
	. "github.com/redexp/tjs-postfix-lsp/types"
	. "github.com/redexp/tjs-postfix-lsp/utils"
	proto "github.com/tliron/glsp/protocol_3_16"
)

// Text synchronisation only queues work on the document lane, so the reader
// of the connection never waits for a parse.

func DocOpen(ctx *Ctx, params *proto.DidOpenTextDocumentParams) (err error) {
	uri, err := NormalizeUri(params.TextDocument.URI)

	if err != nil {
		return
	}

	item := params.TextDocument

	lanes.Go(uri, func() {
		err := registry.Open(uri, item.LanguageID, item.Version, item.Text)

		if err != nil {
			log.Errorf("open %s: %s", uri, err)
			return
		}

		scheduleDiagnostic(ctx, uri)
	})

	return
}

func DocChange(ctx *Ctx, params *proto.DidChangeTextDocumentParams) (err error) {
	uri, err := NormalizeUri(params.TextDocument.URI)

	if err != nil {
		return
	}

	version := params.TextDocument.Version
	changes := ToChanges(params.ContentChanges)

	lanes.Go(uri, func() {
		err := registry.Change(uri, version, changes)

		if errors.Is(err, ErrUnknownDocument) {
			log.Warningf("change dropped: %s", err)
			return
		}

		if err != nil {
			log.Errorf("change %s: %s", uri, err)
			return
		}

		scheduleDiagnostic(ctx, uri)
	})

	return
}

func DocClose(ctx *Ctx, params *proto.DidCloseTextDocumentParams) (err error) {
	uri, err := NormalizeUri(params.TextDocument.URI)

	if err != nil {
		return
	}

	lanes.Go(uri, func() {
		err := registry.Close(uri)

		if err != nil {
			log.Warningf("close dropped: %s", err)
			return
		}

		clearDiagnostics(ctx, uri)
	})

	return
}

func DocSave(ctx *Ctx, params *proto.DidSaveTextDocumentParams) (err error) {
	if !currentConfig().AstPreviewOnSave {
		return
	}

	uri, err := NormalizeUri(params.TextDocument.URI)

	if err != nil {
		return
	}

	lanes.Go(uri, func() {
		res, err := AstPreview(uri)

		if err != nil {
			log.Debugf("preview %s: %s", uri, err)
			return
		}

		ctx.Notify(NotificationMethod, res)
	})

	return
}

// ToChanges converts the content changes of a didChange notification, keeping
// their order.
func ToChanges(events []any) []Change {
	list := make([]Change, 0, len(events))

	for _, event := range events {
		switch c := event.(type) {
		case proto.TextDocumentContentChangeEvent:
			list = append(list, Change{
				Range:       c.Range,
				RangeLength: c.RangeLength,
				Text:        c.Text,
			})

		case proto.TextDocumentContentChangeEventWhole:
			list = append(list, Change{Text: c.Text})

		default:
			log.Warningf("unsupported content change %T", event)
		}
	}

	return list
}
