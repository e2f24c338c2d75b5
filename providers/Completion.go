package providers

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/iancoleman/strcase"
	"github.com/redexp/tjs-postfix-lsp/position"
	. "github.com/redexp/tjs-postfix-lsp/state"
	. "github.com/redexp/tjs-postfix-lsp/types"
	. "github.com/redexp/tjs-postfix-lsp/utils"
	proto "github.com/tliron/glsp/protocol_3_16"
)

var reactImportQuery = NewQuery(`(import_statement
	(import_clause
		[
			(identifier) @name
			(namespace_import (identifier) @name)
		])
	source: (string (string_fragment) @source))`)

func Completion(ctx *Ctx, params *proto.CompletionParams) (res any, err error) {
	uri, err := NormalizeUri(params.TextDocument.URI)

	if err != nil {
		return
	}

	snap, err := registry.Snapshot(uri)

	if err != nil {
		return
	}

	defer snap.Release()

	list := make([]proto.CompletionItem, 0)

	if !snap.HasTree() || snap.Stale() {
		return list, nil
	}

	target, err := PostfixTarget(snap, params.Position)

	if err != nil || target.IsZero() {
		return list, err
	}

	list = append(list, StateCompletion(snap, target, params.Position))

	return list, nil
}

// PostfixTarget returns the expression written before the last dot that
// precedes pos on its line, or a zero Node when the text after that dot is
// not an identifier being typed.
func PostfixTarget(snap *Snapshot, pos Position) (node Node, err error) {
	lineStart, err := snap.OffsetAt(Position{Line: pos.Line})

	if err != nil {
		return
	}

	line := snap.Line(int(pos.Line))
	prefix := line[:position.UTF16ToByte(line, int(pos.Character))]
	dot := strings.LastIndexByte(prefix, '.')

	if dot < 1 || !isIdentifierPart(prefix[dot+1:]) {
		return
	}

	node, err = snap.SmallestNamedNodeForBytes(lineStart+dot-1, lineStart+dot-1)

	if err != nil {
		return
	}

	end := node.EndByte()

	for parent := range node.Ancestors() {
		if node.IsError() || !strings.Contains(parent.Kind(), "expression") || parent.EndByte() != end {
			break
		}

		node = parent
	}

	if node.IsError() || node.EndByte() > lineStart+dot {
		return Node{}, nil
	}

	return
}

// StateCompletion turns `expr.` into a useState declaration named after expr.
func StateCompletion(snap *Snapshot, target Node, pos Position) proto.CompletionItem {
	call := "useState"

	if name := reactImport(snap); name != "" {
		call = name + ".useState"
	}

	name := target.Text()
	text := fmt.Sprintf("const [%s, set%s] = %s(${0})", name, strcase.ToCamel(name), call)

	return proto.CompletionItem{
		Label:            "state",
		Kind:             P(proto.CompletionItemKindSnippet),
		Detail:           P(fmt.Sprintf("const [<expr>, <expr>] = %s()", call)),
		Documentation:    text,
		FilterText:       P(name + ".state"),
		InsertTextFormat: P(proto.InsertTextFormatSnippet),
		TextEdit: proto.TextEdit{
			Range: Range{
				Start: target.Range().Start,
				End:   pos,
			},
			NewText: text,
		},
	}
}

// reactImport returns the local name of a default or namespace import of
// "react".
func reactImport(snap *Snapshot) string {
	matches, err := snap.Matches(reactImportQuery)

	if err != nil {
		log.Debugf("react import: %s", err)
		return ""
	}

	for _, captures := range matches {
		var name, source string

		for _, c := range captures {
			switch c.Name {
			case "name":
				name = c.Node.Text()
			case "source":
				source = c.Node.Text()
			}
		}

		if source == "react" && name != "" {
			return name
		}
	}

	return ""
}

func isIdentifierPart(s string) bool {
	for _, r := range s {
		if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}
