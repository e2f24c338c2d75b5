// Package position converts between the three coordinate systems a document
// is addressed in: LSP positions (line, UTF-16 code unit), tree-sitter points
// (row, UTF-8 byte column) and byte offsets.
//
// It is the only place that knows a column is not a byte count.
package position

import (
	"errors"
	"fmt"
	"unicode/utf8"

	. "github.com/redexp/tjs-postfix-lsp/types"
)

var ErrOutOfRange = errors.New("position out of range")

// ToOffset returns the byte offset of pos in text.
//
// A line past the last one is an error. A character past the end of its line
// is clamped to the line end, and a character that splits a surrogate pair
// resolves to the start of that pair.
func ToOffset(text Text, pos Position) (int, error) {
	line := int(pos.Line)

	if line >= text.LineCount() {
		return 0, fmt.Errorf("%w: line %d, document has %d lines", ErrOutOfRange, pos.Line, text.LineCount())
	}

	return text.LineStart(line) + UTF16ToByte(text.Line(line), int(pos.Character)), nil
}

// ToPosition is the inverse of ToOffset. Any offset in [0, text.Len()] is
// valid; an offset inside a multi-byte sequence maps to the start of it.
func ToPosition(text Text, offset int) (Position, error) {
	if offset < 0 || offset > text.Len() {
		return Position{}, fmt.Errorf("%w: offset %d, document has %d bytes", ErrOutOfRange, offset, text.Len())
	}

	line := text.LineOf(offset)
	content := text.Line(line)
	col := offset - text.LineStart(line)

	if col > len(content) {
		col = len(content)
	}

	for col > 0 && col < len(content) && !utf8.RuneStart(content[col]) {
		col--
	}

	return Position{
		Line:      UInteger(line),
		Character: UInteger(UTF16Len(content[:col])),
	}, nil
}

// ToPoint returns the tree-sitter point of offset. Columns are in bytes.
func ToPoint(text Text, offset int) (Point, error) {
	if offset < 0 || offset > text.Len() {
		return Point{}, fmt.Errorf("%w: offset %d, document has %d bytes", ErrOutOfRange, offset, text.Len())
	}

	row := text.LineOf(offset)

	return Point{
		Row:    uint(row),
		Column: uint(offset - text.LineStart(row)),
	}, nil
}

func PointToOffset(text Text, point Point) (int, error) {
	row := int(point.Row)

	if row >= text.LineCount() {
		return 0, fmt.Errorf("%w: row %d, document has %d lines", ErrOutOfRange, point.Row, text.LineCount())
	}

	col := int(point.Column)

	if end := len(text.Line(row)); col > end {
		col = end
	}

	return text.LineStart(row) + col, nil
}

func PositionToPoint(text Text, pos Position) (Point, error) {
	offset, err := ToOffset(text, pos)

	if err != nil {
		return Point{}, err
	}

	return ToPoint(text, offset)
}

func PointToPosition(text Text, point Point) (Position, error) {
	offset, err := PointToOffset(text, point)

	if err != nil {
		return Position{}, err
	}

	return ToPosition(text, offset)
}

// UTF16Len counts the UTF-16 code units of s.
func UTF16Len(s string) (n int) {
	for _, r := range s {
		n += runeUnits(r)
	}

	return
}

// UTF16ToByte returns the byte index of the units-th UTF-16 code unit of s,
// clamped to len(s).
func UTF16ToByte(s string, units int) int {
	count := 0

	for i, r := range s {
		if count >= units {
			return i
		}

		n := runeUnits(r)

		if count+n > units {
			return i
		}

		count += n
	}

	return len(s)
}

func runeUnits(r rune) int {
	if r >= 0x10000 {
		return 2
	}

	return 1
}
