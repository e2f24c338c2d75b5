package position

import "sort"

// Text is a line-addressable view over UTF-8 content.
//
// Lines are terminated by '\n' only. A document always has at least one line,
// so LineCount is the number of '\n' plus one.
type Text interface {
	Len() int
	LineCount() int
	LineStart(line int) int
	Line(line int) string
	LineOf(offset int) int
}

// LineIndex is a Text over a plain string. It keeps the byte offset of the
// first byte of every line and answers lookups with a binary search.
type LineIndex struct {
	text   string
	starts []int
}

func NewLineIndex(text string) *LineIndex {
	starts := []int{0}

	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}

	return &LineIndex{
		text:   text,
		starts: starts,
	}
}

func (idx *LineIndex) String() string {
	return idx.text
}

func (idx *LineIndex) Len() int {
	return len(idx.text)
}

func (idx *LineIndex) LineCount() int {
	return len(idx.starts)
}

func (idx *LineIndex) LineStart(line int) int {
	if line <= 0 {
		return 0
	}

	if line >= len(idx.starts) {
		return len(idx.text)
	}

	return idx.starts[line]
}

func (idx *LineIndex) Line(line int) string {
	if line < 0 || line >= len(idx.starts) {
		return ""
	}

	start := idx.starts[line]
	end := len(idx.text)

	if line+1 < len(idx.starts) {
		end = idx.starts[line+1] - 1
	}

	return idx.text[start:end]
}

func (idx *LineIndex) LineOf(offset int) int {
	// first line that starts after offset, minus one
	line := sort.Search(len(idx.starts), func(i int) bool {
		return idx.starts[i] > offset
	})

	if line == 0 {
		return 0
	}

	return line - 1
}
