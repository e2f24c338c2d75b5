package state

import (
	"fmt"

	"github.com/redexp/tjs-postfix-lsp/position"
	"github.com/redexp/tjs-postfix-lsp/rope"
	. "github.com/redexp/tjs-postfix-lsp/types"
)

type ByteRange struct {
	Start int
	End   int
}

// Buffer is the working text of a document while a batch is applied. It
// swaps one immutable rope for the next, so ropes taken from it earlier keep
// their content.
type Buffer struct {
	text *rope.Rope
}

func NewBuffer(text string) *Buffer {
	return &Buffer{text: rope.New(text)}
}

func BufferOf(text *rope.Rope) *Buffer {
	return &Buffer{text: text}
}

// Apply replaces the bytes in r with newText.
func (buf *Buffer) Apply(r ByteRange, newText string) error {
	if r.Start < 0 || r.End < r.Start || r.End > buf.text.Len() {
		return fmt.Errorf("%w: bytes [%d, %d), buffer has %d", position.ErrOutOfRange, r.Start, r.End, buf.text.Len())
	}

	buf.text = buf.text.Replace(r.Start, r.End, newText)

	return nil
}

func (buf *Buffer) Reset(text string) {
	buf.text = rope.New(text)
}

func (buf *Buffer) Rope() *rope.Rope {
	return buf.text
}

func (buf *Buffer) Text() string {
	return buf.text.String()
}

func (buf *Buffer) Len() int {
	return buf.text.Len()
}

func (buf *Buffer) Line(n int) string {
	return buf.text.Line(n)
}

func (buf *Buffer) Slice(r ByteRange) string {
	return buf.text.Slice(r.Start, r.End)
}

func (buf *Buffer) Offset(pos Position) (int, error) {
	return position.ToOffset(buf.text, pos)
}

func (buf *Buffer) Position(offset int) (Position, error) {
	return position.ToPosition(buf.text, offset)
}

func (buf *Buffer) Point(offset int) (Point, error) {
	return position.ToPoint(buf.text, offset)
}
