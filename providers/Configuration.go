package providers

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/redexp/tjs-postfix-lsp/i18n"
	"github.com/redexp/tjs-postfix-lsp/state"
	. "github.com/redexp/tjs-postfix-lsp/types"
	proto "github.com/tliron/glsp/protocol_3_16"
	"gopkg.in/yaml.v3"
)

type ClientConfiguration struct {
	Locale string `json:"locale" yaml:"locale" mapstructure:"locale"`
	// languageId of documents whose own languageId is unknown
	DefaultLanguage string `json:"default_language" yaml:"default_language" mapstructure:"default_language"`
	// languageId -> grammar name, merged over the default table
	Languages        map[string]string `json:"languages" yaml:"languages" mapstructure:"languages"`
	Diagnostics      bool              `json:"diagnostics" yaml:"diagnostics" mapstructure:"diagnostics"`
	DiagnosticsDelay int               `json:"diagnostics_delay" yaml:"diagnostics_delay" mapstructure:"diagnostics_delay"`
	AstPreviewOnSave bool              `json:"ast_preview_on_save" yaml:"ast_preview_on_save" mapstructure:"ast_preview_on_save"`
}

func DefaultConfiguration() ClientConfiguration {
	return ClientConfiguration{
		DefaultLanguage:  state.DefaultLanguageID,
		Diagnostics:      true,
		DiagnosticsDelay: 200,
	}
}

func (cfg ClientConfiguration) Grammars() (map[string]*Language, error) {
	names := maps.Clone(state.DefaultGrammars)

	for id, name := range cfg.Languages {
		names[id] = name
	}

	if _, ok := names[cfg.DefaultLanguage]; cfg.DefaultLanguage != "" && !ok {
		return nil, fmt.Errorf("default_language %q has no grammar", cfg.DefaultLanguage)
	}

	return state.Languages(names)
}

func (cfg ClientConfiguration) Delay() time.Duration {
	if cfg.DiagnosticsDelay <= 0 {
		return 0
	}

	return time.Duration(cfg.DiagnosticsDelay) * time.Millisecond
}

// GetClientConfiguration decodes settings sent by the client over the
// defaults. Settings nested under the server name are accepted too.
func GetClientConfiguration(src any) (res ClientConfiguration, err error) {
	res = DefaultConfiguration()

	if src == nil {
		return
	}

	if m, ok := src.(map[string]any); ok {
		if nested, ok := m[ServerName]; ok {
			src = nested
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &res,
		WeaklyTypedInput: true,
	})

	if err != nil {
		return
	}

	err = decoder.Decode(src)

	return
}

// LoadConfigFile reads a yaml file with the same keys as the client settings.
func LoadConfigFile(path string) (res ClientConfiguration, err error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return
	}

	raw := make(map[string]any)

	if err = yaml.Unmarshal(data, &raw); err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	return GetClientConfiguration(raw)
}

func DidChangeConfiguration(ctx *Ctx, params *proto.DidChangeConfigurationParams) error {
	cfg, err := GetClientConfiguration(params.Settings)

	if err != nil {
		return err
	}

	return ConfigurationChange(ctx, &cfg)
}

func ConfigurationChange(ctx *Ctx, cfg *ClientConfiguration) (err error) {
	langs, err := cfg.Grammars()

	if err != nil {
		return
	}

	if err = i18n.SetLocale(cfg.Locale); err != nil {
		return
	}

	prev := currentConfig()

	config.Store(cfg)
	registry.SetLanguages(langs, cfg.DefaultLanguage)

	if prev.Delay() != cfg.Delay() {
		diagnostics.SetDelay(cfg.Delay())
	}

	log.Infof("configuration changed: default %s, %d languages", cfg.DefaultLanguage, len(langs))

	diagnosticAllDocs(ctx)

	return
}

type ConfigurationHandlers struct {
	Change ConfigChangeFunc
}

func (req *ConfigurationHandlers) Handle(ctx *Ctx) (res any, validMethod bool, validParams bool, err error) {
	switch ctx.Method {
	case ConfigChangeMethod:
		validMethod = true

		var raw map[string]any
		if err = json.Unmarshal(ctx.Params, &raw); err != nil {
			return
		}

		var params ClientConfiguration
		if params, err = GetClientConfiguration(raw); err == nil {
			validParams = true
			err = req.Change(ctx, &params)
		}
	}

	return
}

const ConfigChangeMethod = "tjs-postfix/config"

type ConfigChangeFunc func(*Ctx, *ClientConfiguration) error
