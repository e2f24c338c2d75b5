package providers

import (
	"github.com/redexp/tjs-postfix-lsp/state"
	. "github.com/redexp/tjs-postfix-lsp/types"
	proto "github.com/tliron/glsp/protocol_3_16"
)

var Version = "dev"

func Initialize(ctx *Ctx, params *proto.InitializeParams) (any, error) {
	if params.InitializationOptions != nil {
		options, err := GetClientConfiguration(params.InitializationOptions)

		if err != nil {
			log.Warningf("initialization options: %s", err)
		} else if err = ConfigurationChange(ctx, &options); err != nil {
			log.Warningf("initialization options: %s", err)
		}
	}

	syncType := proto.TextDocumentSyncKindIncremental

	res := &proto.InitializeResult{
		ServerInfo: &proto.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &Version,
		},
		Capabilities: proto.ServerCapabilities{
			TextDocumentSync: proto.TextDocumentSyncOptions{
				OpenClose: &proto.True,
				Change:    &syncType,
				Save:      &proto.SaveOptions{IncludeText: &proto.False},
			},
			CompletionProvider: &proto.CompletionOptions{
				TriggerCharacters: []string{".", "'", `"`},
			},
			CodeActionProvider: proto.CodeActionOptions{
				CodeActionKinds: []proto.CodeActionKind{proto.CodeActionKindRefactorRewrite},
			},
			HoverProvider:          true,
			DocumentSymbolProvider: true,
			SelectionRangeProvider: true,
		},
	}

	supportDiagnostics.Store(params.Capabilities.TextDocument != nil && params.Capabilities.TextDocument.PublishDiagnostics != nil)

	return res, nil
}

func Initialized(ctx *Ctx, params *proto.InitializedParams) error {
	log.Infof("initialized, grammars: %s, %s, %s", state.GrammarJavascript, state.GrammarTypescript, state.GrammarTSX)

	return nil
}

func Shutdown(ctx *Ctx) error {
	lanes.Wait()

	return nil
}

func SetTrace(ctx *Ctx, params *proto.SetTraceParams) error {
	return nil
}

func CancelRequest(ctx *Ctx, params *proto.CancelParams) error {
	return nil
}
