package providers

import (
	"errors"
	"sync"
	"time"

	"github.com/bep/debounce"
	. "github.com/redexp/tjs-postfix-lsp/i18n"
	. "github.com/redexp/tjs-postfix-lsp/state"
	. "github.com/redexp/tjs-postfix-lsp/types"
	. "github.com/redexp/tjs-postfix-lsp/utils"
	proto "github.com/tliron/glsp/protocol_3_16"
)

type DocDebouncer struct {
	mu       sync.Mutex
	Docs     map[Uri]*Ctx
	Debounce func(func())
	stopped  bool
}

func createDocDebouncer(delay time.Duration) *DocDebouncer {
	dd := &DocDebouncer{
		Docs: make(map[Uri]*Ctx),
	}

	dd.SetDelay(delay)

	return dd
}

func (dd *DocDebouncer) SetDelay(delay time.Duration) {
	dd.mu.Lock()
	defer dd.mu.Unlock()

	if delay <= 0 {
		dd.Debounce = func(f func()) { f() }
		return
	}

	dd.Debounce = debounce.New(delay)
}

func (dd *DocDebouncer) Set(uri Uri, ctx *Ctx) {
	dd.mu.Lock()

	if dd.stopped {
		dd.mu.Unlock()
		return
	}

	dd.Docs[uri] = ctx
	run := dd.Debounce
	dd.mu.Unlock()

	run(dd.Flush)
}

// Forget drops a pending publication for uri.
func (dd *DocDebouncer) Forget(uri Uri) {
	dd.mu.Lock()
	defer dd.mu.Unlock()

	delete(dd.Docs, uri)
}

// Stop drops pending publications. A timer that fires later publishes
// nothing.
func (dd *DocDebouncer) Stop() {
	dd.mu.Lock()
	defer dd.mu.Unlock()

	dd.stopped = true
	dd.Docs = make(map[Uri]*Ctx)
}

// Flush publishes the pending documents. Each publication is queued on the
// document lane so it never overtakes a change or a close.
func (dd *DocDebouncer) Flush() {
	dd.mu.Lock()
	docs := dd.Docs
	dd.Docs = make(map[Uri]*Ctx)
	dd.mu.Unlock()

	for uri, ctx := range docs {
		lanes.Go(uri, func() {
			PublishDiagnostics(ctx, uri)
		})
	}
}

func scheduleDiagnostic(ctx *Ctx, uri Uri) {
	if !supportDiagnostics.Load() || !currentConfig().Diagnostics {
		return
	}

	diagnostics.Set(uri, ctx)
}

func diagnosticAllDocs(ctx *Ctx) {
	for _, uri := range registry.Uris() {
		if currentConfig().Diagnostics {
			scheduleDiagnostic(ctx, uri)
		} else {
			clearDiagnostics(ctx, uri)
		}
	}
}

func PublishDiagnostics(ctx *Ctx, uri Uri) {
	if !supportDiagnostics.Load() {
		return
	}

	snap, err := registry.Snapshot(uri)

	if errors.Is(err, ErrUnknownDocument) {
		return
	}

	if err != nil {
		log.Debugf("diagnostic error: %s", err)
		return
	}

	defer snap.Release()

	params := proto.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: Diagnostics(snap),
	}

	if v := snap.Version(); v >= 0 {
		params.Version = P(UInteger(v))
	}

	ctx.Notify(proto.ServerTextDocumentPublishDiagnostics, params)
}

// Diagnostics lists the syntax errors of snap. A document without a tree has
// none.
func Diagnostics(snap *Snapshot) []proto.Diagnostic {
	list := make([]proto.Diagnostic, 0)

	root, err := snap.Root()

	if err != nil {
		return list
	}

	for node := range Problems(root) {
		message := L("syntax_error")

		if node.IsMissing() {
			message = L("missing_node", node.Kind())
		}

		list = append(list, proto.Diagnostic{
			Severity: P(proto.DiagnosticSeverityError),
			Source:   P(ServerName),
			Range:    node.Range(),
			Message:  message,
		})
	}

	return list
}

func clearDiagnostics(ctx *Ctx, uri Uri) {
	diagnostics.Forget(uri)

	if !supportDiagnostics.Load() {
		return
	}

	ctx.Notify(proto.ServerTextDocumentPublishDiagnostics, proto.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []proto.Diagnostic{},
	})
}
