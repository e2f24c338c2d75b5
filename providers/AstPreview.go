package providers

import (
	"encoding/json"

	. "github.com/redexp/tjs-postfix-lsp/state"
	. "github.com/redexp/tjs-postfix-lsp/types"
	. "github.com/redexp/tjs-postfix-lsp/utils"
)

type AstPreviewParams struct {
	Path string `json:"path"`
}

// NotificationParams is the payload of tjs-postfix/notification.
type NotificationParams struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// AstPreview dumps the named nodes of the current tree of uri.
func AstPreview(uri Uri) (res *NotificationParams, err error) {
	snap, err := registry.Snapshot(uri)

	if err != nil {
		return
	}

	defer snap.Release()

	root, err := snap.Root()

	if err != nil {
		return
	}

	return &NotificationParams{
		Title:   uri,
		Message: Dump(root),
	}, nil
}

// DocAstPreview answers the request and also pushes the dump as a
// notification, which is what clients display.
func DocAstPreview(ctx *Ctx, params *AstPreviewParams) (res *NotificationParams, err error) {
	uri, err := NormalizeUri(params.Path)

	if err != nil {
		return
	}

	res, err = AstPreview(uri)

	if err != nil {
		return
	}

	ctx.Notify(NotificationMethod, res)

	return
}

type AstPreviewHandlers struct {
	Preview AstPreviewFunc
}

type AstPreviewFunc func(*Ctx, *AstPreviewParams) (*NotificationParams, error)

func (req *AstPreviewHandlers) Handle(ctx *Ctx) (res any, validMethod bool, validParams bool, err error) {
	switch ctx.Method {
	case AstPreviewMethod:
		validMethod = true

		var params AstPreviewParams
		if err = json.Unmarshal(ctx.Params, &params); err == nil {
			validParams = true
			res, err = req.Preview(ctx, &params)
		}
	}

	return
}
