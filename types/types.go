package types

import (
	"github.com/tliron/glsp"
	proto "github.com/tliron/glsp/protocol_3_16"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Ctx = glsp.Context
type Uri = proto.DocumentUri
type Position = proto.Position
type Range = proto.Range
type UInteger = proto.UInteger
type Tree = sitter.Tree
type Point = sitter.Point
type InputEdit = sitter.InputEdit
type Language = sitter.Language
