package providers

import (
	"slices"

	. "github.com/redexp/tjs-postfix-lsp/state"
	. "github.com/redexp/tjs-postfix-lsp/types"
	. "github.com/redexp/tjs-postfix-lsp/utils"
	proto "github.com/tliron/glsp/protocol_3_16"
)

// captures: @name is the symbol name, the other capture is the declaration
var symbolsQuery = NewQuery(`
(function_declaration name: (identifier) @name) @function
(generator_function_declaration name: (identifier) @name) @function
(class_declaration name: (_) @name) @class
(method_definition name: (_) @name) @method
(variable_declarator name: (identifier) @name) @variable
`)

var typeSymbolsQuery = NewQuery(`
(abstract_class_declaration name: (_) @name) @class
(interface_declaration name: (_) @name) @interface
(type_alias_declaration name: (_) @name) @type
(enum_declaration name: (_) @name) @enum
`)

var symbolKinds = map[string]proto.SymbolKind{
	"function":  proto.SymbolKindFunction,
	"class":     proto.SymbolKindClass,
	"method":    proto.SymbolKindMethod,
	"variable":  proto.SymbolKindVariable,
	"interface": proto.SymbolKindInterface,
	"type":      proto.SymbolKindTypeParameter,
	"enum":      proto.SymbolKindEnum,
}

type symbolNode struct {
	symbol   proto.DocumentSymbol
	start    int
	end      int
	children []*symbolNode
}

func DocSymbols(ctx *Ctx, params *proto.DocumentSymbolParams) (res any, err error) {
	uri, err := NormalizeUri(params.TextDocument.URI)

	if err != nil {
		return
	}

	snap, err := registry.Snapshot(uri)

	if err != nil {
		return
	}

	defer snap.Release()

	return Symbols(snap)
}

// Symbols lists the declarations of snap, nested by containment.
func Symbols(snap *Snapshot) (list []proto.DocumentSymbol, err error) {
	matches, err := snap.Matches(symbolsQuery)

	if err != nil {
		return
	}

	if snap.Grammar() != GrammarJavascript {
		more, err := snap.Matches(typeSymbolsQuery)

		if err != nil {
			return nil, err
		}

		matches = append(matches, more...)
	}

	nodes := make([]*symbolNode, 0, len(matches))

	for _, match := range matches {
		if item := toSymbolNode(match); item != nil {
			nodes = append(nodes, item)
		}
	}

	slices.SortStableFunc(nodes, func(a, b *symbolNode) int {
		if a.start != b.start {
			return a.start - b.start
		}

		return b.end - a.end
	})

	roots := make([]*symbolNode, 0)
	stack := make([]*symbolNode, 0)

	for _, item := range nodes {
		for len(stack) > 0 && stack[len(stack)-1].end < item.end {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			roots = append(roots, item)
		} else {
			top := stack[len(stack)-1]
			top.children = append(top.children, item)
		}

		stack = append(stack, item)
	}

	return toSymbols(roots), nil
}

func toSymbolNode(match []Capture) *symbolNode {
	var name, decl Node
	var kind proto.SymbolKind

	for _, c := range match {
		if c.Name == "name" {
			name = c.Node
			continue
		}

		k, ok := symbolKinds[c.Name]

		if !ok {
			continue
		}

		decl = c.Node
		kind = k
	}

	if name.IsZero() || decl.IsZero() || name.Text() == "" {
		return nil
	}

	if kind == proto.SymbolKindVariable && decl.Parent().Child(0).Kind() == "const" {
		kind = proto.SymbolKindConstant
	}

	return &symbolNode{
		symbol: proto.DocumentSymbol{
			Name:           name.Text(),
			Kind:           kind,
			Range:          decl.Range(),
			SelectionRange: name.Range(),
		},
		start: decl.StartByte(),
		end:   decl.EndByte(),
	}
}

func toSymbols(nodes []*symbolNode) []proto.DocumentSymbol {
	list := make([]proto.DocumentSymbol, len(nodes))

	for i, item := range nodes {
		list[i] = item.symbol

		if len(item.children) > 0 {
			list[i].Children = toSymbols(item.children)
		}
	}

	return list
}
