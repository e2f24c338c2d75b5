package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redexp/tjs-postfix-lsp/state"
	. "github.com/redexp/tjs-postfix-lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientConfiguration(t *testing.T) {
	list := []struct {
		Src    any
		Expect ClientConfiguration
	}{
		{nil, DefaultConfiguration()},
		{
			map[string]any{"diagnostics": false},
			ClientConfiguration{DefaultLanguage: state.DefaultLanguageID, DiagnosticsDelay: 200},
		},
		{
			map[string]any{
				ServerName: map[string]any{
					"default_language":  "javascript",
					"diagnostics_delay": float64(50),
					"languages":         map[string]any{"vue": "tsx"},
				},
			},
			ClientConfiguration{
				DefaultLanguage:  "javascript",
				Languages:        map[string]string{"vue": "tsx"},
				Diagnostics:      true,
				DiagnosticsDelay: 50,
			},
		},
		{
			map[string]any{"ast_preview_on_save": "true", "diagnostics_delay": "10"},
			ClientConfiguration{
				DefaultLanguage:  state.DefaultLanguageID,
				Diagnostics:      true,
				DiagnosticsDelay: 10,
				AstPreviewOnSave: true,
			},
		},
	}

	for i, item := range list {
		res, err := GetClientConfiguration(item.Src)

		if err != nil {
			t.Errorf("%d - unexpected error: %v", i+1, err)
			continue
		}

		assert.Equal(t, item.Expect, res, "%d", i+1)
	}
}

func TestGrammars(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Languages = map[string]string{"vue": state.GrammarTSX}

	langs, err := cfg.Grammars()
	require.NoError(t, err)

	tsx, err := state.Grammar(state.GrammarTSX)
	require.NoError(t, err)

	assert.Same(t, tsx, langs["vue"])
	assert.Same(t, tsx, langs["typescriptreact"])
	assert.Len(t, state.DefaultGrammars, 4)

	cfg.Languages = map[string]string{"vue": "html"}
	_, err = cfg.Grammars()
	assert.Error(t, err)

	cfg = DefaultConfiguration()
	cfg.DefaultLanguage = "python"
	_, err = cfg.Grammars()
	assert.Error(t, err)
}

func TestDelay(t *testing.T) {
	cfg := DefaultConfiguration()
	assert.Equal(t, 200*time.Millisecond, cfg.Delay())

	cfg.DiagnosticsDelay = -1
	assert.Equal(t, time.Duration(0), cfg.Delay())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tjs-postfix.yaml")

	err := os.WriteFile(path, []byte(`
default_language: javascript
diagnostics: false
diagnostics_delay: 10
languages:
  vue: tsx
`), 0o644)
	require.NoError(t, err)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, ClientConfiguration{
		DefaultLanguage:  "javascript",
		Languages:        map[string]string{"vue": "tsx"},
		Diagnostics:      false,
		DiagnosticsDelay: 10,
	}, cfg)

	require.NoError(t, os.WriteFile(path, []byte("languages: [\n"), 0o644))

	_, err = LoadConfigFile(path)
	assert.Error(t, err)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigurationChange(t *testing.T) {
	setupRegistry(t)

	cfg := DefaultConfiguration()
	cfg.DefaultLanguage = "javascript"
	cfg.Diagnostics = false

	require.NoError(t, ConfigurationChange(&Ctx{}, &cfg))
	assert.Equal(t, cfg, currentConfig())

	require.NoError(t, registry.Open(testUri, "plaintext", 1, "let x = 1;\n"))

	snap, err := registry.Snapshot(testUri)
	require.NoError(t, err)
	defer snap.Release()

	assert.Equal(t, state.GrammarJavascript, snap.Grammar())

	bad := DefaultConfiguration()
	bad.Languages = map[string]string{"x": "nope"}

	assert.Error(t, ConfigurationChange(&Ctx{}, &bad))
	assert.Equal(t, cfg, currentConfig())
}
