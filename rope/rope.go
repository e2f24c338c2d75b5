// Package rope is the text storage of an open document: a persistent binary
// tree of string leaves. Every operation that changes text returns a new Rope
// sharing untouched subtrees with the old one, so a reader holding the old
// value is never affected by a writer.
package rope

import (
	"fmt"
	"math/bits"
	"strings"
)

const maxLeaf = 1024

type Rope struct {
	root *node
}

type node struct {
	left  *node
	right *node
	text  string

	length int
	lines  int
	depth  int
	leaves int
}

func New(text string) *Rope {
	return &Rope{root: build(text)}
}

func (r *Rope) Len() int {
	return r.root.length
}

// LineCount is the number of '\n' plus one.
func (r *Rope) LineCount() int {
	return r.root.lines + 1
}

func (r *Rope) Depth() int {
	return r.root.depth
}

func (r *Rope) String() string {
	var sb strings.Builder
	sb.Grow(r.root.length)

	r.root.walk(func(leaf string) bool {
		sb.WriteString(leaf)
		return true
	})

	return sb.String()
}

// Slice returns the text in [start, end), clamped to the rope bounds.
func (r *Rope) Slice(start, end int) string {
	start = clamp(start, 0, r.root.length)
	end = clamp(end, start, r.root.length)

	if start == end {
		return ""
	}

	var sb strings.Builder
	sb.Grow(end - start)

	r.root.slice(start, end, &sb)

	return sb.String()
}

// LineStart returns the byte offset of the first byte of line. Lines past the
// end map to Len.
func (r *Rope) LineStart(line int) int {
	if line <= 0 {
		return 0
	}

	if line > r.root.lines {
		return r.root.length
	}

	return r.root.newline(line) + 1
}

// Line returns the content of line without its terminating '\n'.
func (r *Rope) Line(line int) string {
	if line < 0 || line > r.root.lines {
		return ""
	}

	start := r.LineStart(line)
	end := r.root.length

	if line < r.root.lines {
		end = r.root.newline(line + 1)
	}

	return r.Slice(start, end)
}

// LineOf returns the line that contains offset.
func (r *Rope) LineOf(offset int) int {
	offset = clamp(offset, 0, r.root.length)

	return r.root.newlinesBefore(offset)
}

// Chunk returns the rest of the leaf that holds offset. Concatenating chunks
// while advancing offset by their length yields the whole text.
func (r *Rope) Chunk(offset int) string {
	if offset < 0 || offset >= r.root.length {
		return ""
	}

	n := r.root

	for n.left != nil {
		if offset < n.left.length {
			n = n.left
		} else {
			offset -= n.left.length
			n = n.right
		}
	}

	return n.text[offset:]
}

// Replace returns a rope with [start, end) replaced by text. It panics when
// the range is not inside the rope.
func (r *Rope) Replace(start, end int, text string) *Rope {
	if start < 0 || end < start || end > r.root.length {
		panic(fmt.Sprintf("rope: replace [%d, %d) out of bounds [0, %d]", start, end, r.root.length))
	}

	left, rest := r.root.split(start)
	_, right := rest.split(end - start)

	root := concat(concat(left, build(text)), right)

	if root.depth > maxDepth(root.leaves) {
		root = rebuild(root)
	}

	return &Rope{root: root}
}

func (r *Rope) Insert(offset int, text string) *Rope {
	return r.Replace(offset, offset, text)
}

func (r *Rope) Delete(start, end int) *Rope {
	return r.Replace(start, end, "")
}

func leaf(text string) *node {
	return &node{
		text:   text,
		length: len(text),
		lines:  strings.Count(text, "\n"),
		leaves: 1,
	}
}

func join(left, right *node) *node {
	return &node{
		left:   left,
		right:  right,
		length: left.length + right.length,
		lines:  left.lines + right.lines,
		depth:  max(left.depth, right.depth) + 1,
		leaves: left.leaves + right.leaves,
	}
}

func build(text string) *node {
	if len(text) <= maxLeaf {
		return leaf(text)
	}

	list := make([]*node, 0, len(text)/maxLeaf+1)

	for len(text) > 0 {
		n := min(len(text), maxLeaf)
		list = append(list, leaf(text[:n]))
		text = text[n:]
	}

	return merge(list)
}

func merge(list []*node) *node {
	switch len(list) {
	case 0:
		return leaf("")
	case 1:
		return list[0]
	}

	mid := len(list) / 2

	return join(merge(list[:mid]), merge(list[mid:]))
}

// concat joins two subtrees, folding small neighbouring leaves together.
func concat(a, b *node) *node {
	if a.length == 0 {
		return b
	}

	if b.length == 0 {
		return a
	}

	if a.left == nil && b.left == nil && a.length+b.length <= maxLeaf {
		return leaf(a.text + b.text)
	}

	if a.left != nil && a.right.left == nil && b.left == nil && a.right.length+b.length <= maxLeaf {
		return join(a.left, leaf(a.right.text+b.text))
	}

	if b.left != nil && b.left.left == nil && a.left == nil && a.length+b.left.length <= maxLeaf {
		return join(leaf(a.text+b.left.text), b.right)
	}

	return join(a, b)
}

func (n *node) split(at int) (*node, *node) {
	if at <= 0 {
		return leaf(""), n
	}

	if at >= n.length {
		return n, leaf("")
	}

	if n.left == nil {
		return leaf(n.text[:at]), leaf(n.text[at:])
	}

	if at == n.left.length {
		return n.left, n.right
	}

	if at < n.left.length {
		l, r := n.left.split(at)

		return l, concat(r, n.right)
	}

	l, r := n.right.split(at - n.left.length)

	return concat(n.left, l), r
}

func maxDepth(leaves int) int {
	return 2*bits.Len(uint(leaves)) + 4
}

func rebuild(n *node) *node {
	list := make([]*node, 0, n.leaves)
	var pending strings.Builder

	n.walk(func(text string) bool {
		if pending.Len()+len(text) > maxLeaf && pending.Len() > 0 {
			list = append(list, leaf(pending.String()))
			pending.Reset()
		}

		if len(text) >= maxLeaf {
			list = append(list, leaf(text))
			return true
		}

		pending.WriteString(text)

		return true
	})

	if pending.Len() > 0 {
		list = append(list, leaf(pending.String()))
	}

	return merge(list)
}

func (n *node) walk(cb func(string) bool) bool {
	if n.left == nil {
		if n.length == 0 {
			return true
		}

		return cb(n.text)
	}

	return n.left.walk(cb) && n.right.walk(cb)
}

func (n *node) slice(start, end int, sb *strings.Builder) {
	if n.left == nil {
		sb.WriteString(n.text[start:end])
		return
	}

	ll := n.left.length

	if start < ll {
		n.left.slice(start, min(end, ll), sb)
	}

	if end > ll {
		n.right.slice(max(start-ll, 0), end-ll, sb)
	}
}

// newline returns the byte offset of the k-th '\n', counting from 1.
func (n *node) newline(k int) int {
	offset := 0

	for n.left != nil {
		if k <= n.left.lines {
			n = n.left
		} else {
			k -= n.left.lines
			offset += n.left.length
			n = n.right
		}
	}

	for i := 0; i < len(n.text); i++ {
		if n.text[i] != '\n' {
			continue
		}

		k--

		if k == 0 {
			return offset + i
		}
	}

	return offset + len(n.text)
}

func (n *node) newlinesBefore(offset int) (count int) {
	for n.left != nil {
		if offset < n.left.length {
			n = n.left
		} else {
			offset -= n.left.length
			count += n.left.lines
			n = n.right
		}
	}

	count += strings.Count(n.text[:offset], "\n")

	return
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
