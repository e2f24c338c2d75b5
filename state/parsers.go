package state

import (
	"sync"

	"github.com/redexp/tjs-postfix-lsp/rope"
	. "github.com/redexp/tjs-postfix-lsp/types"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool keeps idle parsers of one language. A parser is owned by a
// single batch at a time; extra parsers created under load are closed once
// the idle list is full.
type ParserPool struct {
	lang *Language
	idle chan *sitter.Parser

	closeOnce sync.Once
}

func NewParserPool(lang *Language, size int) *ParserPool {
	if size < 1 {
		size = 1
	}

	return &ParserPool{
		lang: lang,
		idle: make(chan *sitter.Parser, size),
	}
}

func (pool *ParserPool) Get() (parser *sitter.Parser, err error) {
	select {
	case parser = <-pool.idle:
		return
	default:
	}

	parser = sitter.NewParser()
	err = parser.SetLanguage(pool.lang)

	if err != nil {
		parser.Close()
		parser = nil
	}

	return
}

func (pool *ParserPool) Put(parser *sitter.Parser) {
	select {
	case pool.idle <- parser:
	default:
		parser.Close()
	}
}

// Parse parses text, reading it leaf by leaf. old must already carry every
// edit made since it was produced.
func (pool *ParserPool) Parse(text *rope.Rope, old *Tree) (tree *Tree, err error) {
	parser, err := pool.Get()

	if err != nil {
		return
	}

	defer pool.Put(parser)

	tree = parser.ParseWithOptions(func(offset int, _ Point) []byte {
		return []byte(text.Chunk(offset))
	}, old, nil)

	if tree == nil {
		parser.Reset()
		err = ErrParseFailure
	}

	return
}

func (pool *ParserPool) Close() {
	pool.closeOnce.Do(func() {
		for {
			select {
			case parser := <-pool.idle:
				parser.Close()
			default:
				return
			}
		}
	})
}
