package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	. "github.com/redexp/tjs-postfix-lsp/types"
	. "github.com/redexp/tjs-postfix-lsp/utils"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/tliron/glsp"
	proto "github.com/tliron/glsp/protocol_3_16"
)

func CreateRequestHandler() *RequestHandler {
	return &RequestHandler{
		Handlers: []glsp.Handler{
			NewProtocolHandlers(),
			&AstPreviewHandlers{
				Preview: DocAstPreview,
			},
			&ConfigurationHandlers{
				Change: ConfigurationChange,
			},
		},
	}
}

func NewProtocolHandlers() *proto.Handler {
	return &proto.Handler{
		Initialize:                      Initialize,
		Initialized:                     Initialized,
		Shutdown:                        Shutdown,
		SetTrace:                        SetTrace,
		CancelRequest:                   CancelRequest,
		TextDocumentDidOpen:             DocOpen,
		TextDocumentDidChange:           DocChange,
		TextDocumentDidClose:            DocClose,
		TextDocumentDidSave:             DocSave,
		TextDocumentCompletion:          Completion,
		TextDocumentCodeAction:          CodeAction,
		TextDocumentHover:               Hover,
		TextDocumentDocumentSymbol:      DocSymbols,
		TextDocumentSelectionRange:      SelectionRange,
		WorkspaceDidChangeConfiguration: DidChangeConfiguration,
	}
}

type RequestHandler struct {
	Handlers []glsp.Handler
}

func (req *RequestHandler) RpcHandle(c context.Context, conn *jsonrpc2.Conn, r *jsonrpc2.Request) (res any, err error) {
	if r.Method == "exit" {
		err = conn.Close()
		return nil, err
	}

	ctx := &glsp.Context{
		Method: r.Method,
		Notify: func(method string, params any) {
			_ = conn.Notify(c, method, params)
		},
		Call: func(method string, params any, result any) {
			_ = conn.Call(c, method, params, result)
		},
	}

	if r.Params != nil {
		ctx.Params = *r.Params
	}

	var validMethod bool
	var validParams bool

	res, validMethod, validParams, err = req.Handle(ctx)

	if !validMethod {
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", r.Method),
		}
	}

	if !validParams {
		e := &jsonrpc2.Error{
			Code: jsonrpc2.CodeInvalidParams,
		}

		if err != nil {
			e.Message = err.Error()
		}

		err = e
	}

	return res, err
}

func (req *RequestHandler) Handle(ctx *Ctx) (res any, validMethod bool, validParams bool, err error) {
	for _, h := range req.Handlers {
		res, validMethod, validParams, err = h.Handle(ctx)

		if validMethod {
			return
		}
	}

	return
}

// Conn returns the handler of a jsonrpc2 connection. Notifications are
// handled on the reading goroutine. A request about a document waits, on its
// own goroutine, for the work queued on that document before it, so the
// reader keeps going while a parse runs.
func (req *RequestHandler) Conn() jsonrpc2.Handler {
	return &connHandler{req: req}
}

type connHandler struct {
	req *RequestHandler
}

func (h *connHandler) Handle(c context.Context, conn *jsonrpc2.Conn, r *jsonrpc2.Request) {
	if r.Notif {
		_, err := h.req.RpcHandle(c, conn, r)

		if err != nil {
			log.Errorf("%s: %s", r.Method, err)
		}

		return
	}

	uri := DocumentKey(r.Params)

	if uri == "" || lanes == nil {
		h.reply(c, conn, r)
		return
	}

	barrier := lanes.Barrier(uri)

	go func() {
		<-barrier
		h.reply(c, conn, r)
	}()
}

func (h *connHandler) reply(c context.Context, conn *jsonrpc2.Conn, r *jsonrpc2.Request) {
	res, err := h.req.RpcHandle(c, conn, r)

	if err == nil {
		err = conn.Reply(c, r.ID, res)
	} else {
		err = conn.ReplyWithError(c, r.ID, toRpcError(err))
	}

	if err != nil && !errors.Is(err, jsonrpc2.ErrClosed) {
		log.Errorf("reply %s: %s", r.Method, err)
	}
}

func toRpcError(err error) *jsonrpc2.Error {
	var e *jsonrpc2.Error

	if errors.As(err, &e) {
		return e
	}

	return &jsonrpc2.Error{
		Code:    jsonrpc2.CodeInternalError,
		Message: err.Error(),
	}
}

// DocumentKey returns the document a request is about, or "" when it is not
// about one.
func DocumentKey(params *json.RawMessage) Uri {
	if params == nil {
		return ""
	}

	var value struct {
		TextDocument struct {
			URI string `json:"uri"`
		} `json:"textDocument"`
		Path string `json:"path"`
	}

	if json.Unmarshal(*params, &value) != nil {
		return ""
	}

	src := value.TextDocument.URI

	if src == "" {
		src = value.Path
	}

	if src == "" {
		return ""
	}

	uri, err := NormalizeUri(src)

	if err != nil {
		return ""
	}

	return uri
}
