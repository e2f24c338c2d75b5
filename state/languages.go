package state

import (
	"fmt"

	. "github.com/redexp/tjs-postfix-lsp/types"
	"github.com/redexp/tjs-postfix-lsp/utils"
	sitter "github.com/tree-sitter/go-tree-sitter"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

const (
	GrammarJavascript = "javascript"
	GrammarTypescript = "typescript"
	GrammarTSX        = "tsx"

	DefaultLanguageID = "typescriptreact"
)

var grammars = map[string]*Language{
	GrammarJavascript: sitter.NewLanguage(javascript.Language()),
	GrammarTypescript: sitter.NewLanguage(typescript.LanguageTypescript()),
	GrammarTSX:        sitter.NewLanguage(typescript.LanguageTSX()),
}

// DefaultGrammars maps LSP language identifiers to grammar names.
var DefaultGrammars = map[string]string{
	"javascript":      GrammarJavascript,
	"javascriptreact": GrammarJavascript,
	"typescript":      GrammarTypescript,
	"typescriptreact": GrammarTSX,
}

var extLanguages = map[string]string{
	"js":  "javascript",
	"mjs": "javascript",
	"cjs": "javascript",
	"jsx": "javascriptreact",
	"ts":  "typescript",
	"mts": "typescript",
	"cts": "typescript",
	"tsx": "typescriptreact",
}

// LanguageID guesses the languageId of a file from its extension, falling
// back to DefaultLanguageID.
func LanguageID(path string) string {
	if id, ok := extLanguages[utils.Ext(path)]; ok {
		return id
	}

	return DefaultLanguageID
}

func Grammar(name string) (lang *Language, err error) {
	lang, ok := grammars[name]

	if !ok {
		err = fmt.Errorf("unknown grammar %q", name)
	}

	return
}

// Languages resolves a languageId -> grammar name table.
func Languages(names map[string]string) (langs map[string]*Language, err error) {
	langs = make(map[string]*Language, len(names))

	for id, name := range names {
		langs[id], err = Grammar(name)

		if err != nil {
			return nil, fmt.Errorf("language %q: %w", id, err)
		}
	}

	return
}

func DefaultLanguages() map[string]*Language {
	langs, err := Languages(DefaultGrammars)

	if err != nil {
		panic(err)
	}

	return langs
}
