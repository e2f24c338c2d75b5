package state

import (
	"errors"
	"testing"

	"github.com/redexp/tjs-postfix-lsp/position"
	. "github.com/redexp/tjs-postfix-lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyChange(t *testing.T) {
	list := []struct {
		Start Position
		End   Position
		Text  string
		Test  string
	}{
		{
			Start: Position{0, 0},
			End:   Position{0, 4},
			Text:  "Fam",
			Test:  "Fam\n\nName+Name",
		},
		{
			Start: Position{0, 0},
			End:   Position{1, 0},
			Text:  "",
			Test:  "\nName+Name",
		},
		{
			Start: Position{0, 2},
			End:   Position{2, 1},
			Text:  "",
			Test:  "Teame+Name",
		},
		{
			Start: Position{0, 2},
			End:   Position{2, 2},
			Text:  "+",
			Test:  "Te+me+Name",
		},
		{
			Start: Position{0, 0},
			End:   Position{0, 0},
			Text:  "Fam-",
			Test:  "Fam-Test\n\nName+Name",
		},
		{
			Start: Position{2, 9},
			End:   Position{2, 99},
			Text:  "\nName",
			Test:  "Test\n\nName+Name\nName",
		},
		{
			Start: Position{2, 1},
			End:   Position{2, 1},
			Text:  "tt",
			Test:  "Test\n\nNttame+Name",
		},
	}

	for i, item := range list {
		buf := NewBuffer("Test\n\nName+Name")

		_, err := ApplyChange(buf, Change{Range: &Range{Start: item.Start, End: item.End}, Text: item.Text}, nil)

		if err != nil {
			t.Errorf("%d - unexpected error: %v", i+1, err)
			continue
		}

		if buf.Text() != item.Test {
			t.Errorf("%d - got: %s; expect: %s", i+1, buf.Text(), item.Test)
		}
	}
}

func TestApplyChangeEdit(t *testing.T) {
	list := []struct {
		Text   string
		Change Change
		Edit   Edit
	}{
		{
			Text:   "let x = 1;\n",
			Change: Change{Range: &Range{Start: Position{0, 8}, End: Position{0, 9}}, Text: "42"},
			Edit: Edit{
				StartByte:   8,
				OldEndByte:  9,
				NewEndByte:  10,
				StartPoint:  Point{Row: 0, Column: 8},
				OldEndPoint: Point{Row: 0, Column: 9},
				NewEndPoint: Point{Row: 0, Column: 10},
			},
		},
		{
			Text:   "a😀b",
			Change: Change{Range: &Range{Start: Position{0, 3}, End: Position{0, 4}}, Text: "c\nd"},
			Edit: Edit{
				StartByte:   5,
				OldEndByte:  6,
				NewEndByte:  8,
				StartPoint:  Point{Row: 0, Column: 5},
				OldEndPoint: Point{Row: 0, Column: 6},
				NewEndPoint: Point{Row: 1, Column: 1},
			},
		},
		{
			Text:   "one\ntwo\nthree",
			Change: Change{Range: &Range{Start: Position{0, 1}, End: Position{2, 2}}, Text: ""},
			Edit: Edit{
				StartByte:   1,
				OldEndByte:  10,
				NewEndByte:  1,
				StartPoint:  Point{Row: 0, Column: 1},
				OldEndPoint: Point{Row: 2, Column: 2},
				NewEndPoint: Point{Row: 0, Column: 1},
			},
		},
		{
			Text:   "é\n",
			Change: Change{Text: "whole\ntext"},
			Edit: Edit{
				StartByte:   0,
				OldEndByte:  3,
				NewEndByte:  10,
				OldEndPoint: Point{Row: 1, Column: 0},
				NewEndPoint: Point{Row: 1, Column: 4},
			},
		},
	}

	for i, item := range list {
		buf := NewBuffer(item.Text)

		edit, err := ApplyChange(buf, item.Change, nil)
		require.NoError(t, err)

		if edit != item.Edit {
			t.Errorf("%d - got: %s; expect: %s", i+1, edit, item.Edit)
		}
	}
}

func TestApplyChangeRejects(t *testing.T) {
	list := []*Range{
		{Start: Position{3, 0}, End: Position{3, 0}},
		{Start: Position{0, 0}, End: Position{7, 0}},
		{Start: Position{1, 2}, End: Position{0, 1}},
	}

	for i, r := range list {
		buf := NewBuffer("ab\ncd\n")

		_, err := ApplyChange(buf, Change{Range: r, Text: "x"}, nil)

		if !errors.Is(err, position.ErrOutOfRange) {
			t.Errorf("%d - expected ErrOutOfRange, got %v", i+1, err)
		}

		assert.Equal(t, "ab\ncd\n", buf.Text(), "%d - buffer must stay untouched", i+1)
	}
}

func TestBufferApply(t *testing.T) {
	text := "const a = 'é';\n"
	buf := NewBuffer(text)
	before := buf.Rope()

	require.NoError(t, buf.Apply(ByteRange{6, 7}, "alpha"))

	assert.Equal(t, text[:6]+"alpha"+text[7:], buf.Text())
	assert.Equal(t, text, before.String())
	assert.Equal(t, "const alpha = 'é';", buf.Line(0))
	assert.Equal(t, "", buf.Line(1))

	err := buf.Apply(ByteRange{5, 99}, "")
	assert.ErrorIs(t, err, position.ErrOutOfRange)
}
