package providers

import (
	"sync/atomic"

	"github.com/redexp/tjs-postfix-lsp/scheduler"
	"github.com/redexp/tjs-postfix-lsp/state"
	"github.com/tliron/commonlog"
)

const (
	ServerName = "tjs-postfix"

	AstPreviewMethod   = "tjs-postfix/ast-preview"
	NotificationMethod = "tjs-postfix/notification"
)

var (
	registry    *state.Registry
	lanes       *scheduler.Lanes
	diagnostics *DocDebouncer
	config      atomic.Pointer[ClientConfiguration]

	supportDiagnostics atomic.Bool

	log = commonlog.GetLogger("tjs-postfix.providers")
)

// Setup creates the document registry and the lanes every handler works on.
// It replaces whatever a previous call created.
func Setup(cfg ClientConfiguration) (err error) {
	langs, err := cfg.Grammars()

	if err != nil {
		return
	}

	if registry != nil {
		Teardown()
	}

	config.Store(&cfg)
	supportDiagnostics.Store(false)

	registry = state.NewRegistry(
		state.WithLanguages(langs),
		state.WithDefaultLanguage(cfg.DefaultLanguage),
	)
	lanes = scheduler.New(commonlog.GetLogger("tjs-postfix.scheduler"))
	diagnostics = createDocDebouncer(cfg.Delay())

	return
}

// Teardown waits for queued work and frees every document.
func Teardown() {
	if diagnostics != nil {
		diagnostics.Stop()
	}

	if lanes != nil {
		lanes.Wait()
	}

	if registry != nil {
		registry.Shutdown()
	}
}

func currentConfig() ClientConfiguration {
	if cfg := config.Load(); cfg != nil {
		return *cfg
	}

	return DefaultConfiguration()
}
