package state

import (
	"fmt"

	"github.com/redexp/tjs-postfix-lsp/position"
	. "github.com/redexp/tjs-postfix-lsp/types"
	"github.com/tliron/commonlog"
)

// Change is one content change event of a didChange notification. A nil
// Range replaces the whole document.
type Change struct {
	Range       *Range
	RangeLength *UInteger
	Text        string
}

// Edit describes one change in the byte and point coordinates the syntax
// tree works with.
type Edit struct {
	StartByte   int
	OldEndByte  int
	NewEndByte  int
	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

func (e Edit) InputEdit() *InputEdit {
	return &InputEdit{
		StartByte:      uint(e.StartByte),
		OldEndByte:     uint(e.OldEndByte),
		NewEndByte:     uint(e.NewEndByte),
		StartPosition:  e.StartPoint,
		OldEndPosition: e.OldEndPoint,
		NewEndPosition: e.NewEndPoint,
	}
}

func (e Edit) String() string {
	return fmt.Sprintf(
		"bytes %d-%d -> %d-%d, points [%d, %d] - [%d, %d] -> [%d, %d]",
		e.StartByte, e.OldEndByte, e.StartByte, e.NewEndByte,
		e.StartPoint.Row, e.StartPoint.Column,
		e.OldEndPoint.Row, e.OldEndPoint.Column,
		e.NewEndPoint.Row, e.NewEndPoint.Column,
	)
}

// Phase is where a document is in the edit/parse cycle. PhaseEditedPending
// and PhaseReparsing only last while a batch is applied; PhaseStale is left
// behind when the reparse of a batch failed and the last good tree was kept.
type Phase uint32

const (
	PhaseNoTree Phase = iota
	PhaseFresh
	PhaseEditedPending
	PhaseReparsing
	PhaseStale
)

func (p Phase) String() string {
	switch p {
	case PhaseFresh:
		return "fresh"
	case PhaseEditedPending:
		return "edited-pending"
	case PhaseReparsing:
		return "reparsing"
	case PhaseStale:
		return "stale"
	}

	return "no-tree"
}

// ApplyChange applies change to buf and returns its edit. Start and old end
// are resolved against buf before the change, new end against buf after it.
// On error buf is left untouched.
func ApplyChange(buf *Buffer, change Change, log commonlog.Logger) (edit Edit, err error) {
	if change.Range == nil {
		edit.OldEndByte = buf.Len()
		edit.OldEndPoint, _ = buf.Point(edit.OldEndByte)

		buf.Reset(change.Text)

		edit.NewEndByte = buf.Len()
		edit.NewEndPoint, _ = buf.Point(edit.NewEndByte)

		return
	}

	start, err := buf.Offset(change.Range.Start)

	if err != nil {
		return
	}

	end, err := buf.Offset(change.Range.End)

	if err != nil {
		return
	}

	if end < start {
		err = fmt.Errorf("%w: range end %v is before start %v", position.ErrOutOfRange, change.Range.End, change.Range.Start)
		return
	}

	if change.RangeLength != nil && log != nil {
		units := position.UTF16Len(buf.Slice(ByteRange{start, end}))

		if units != int(*change.RangeLength) {
			log.Debugf("range length %d differs from %d code units in range, using range", *change.RangeLength, units)
		}
	}

	edit.StartByte = start
	edit.OldEndByte = end
	edit.StartPoint, _ = buf.Point(start)
	edit.OldEndPoint, _ = buf.Point(end)

	err = buf.Apply(ByteRange{start, end}, change.Text)

	if err != nil {
		return
	}

	edit.NewEndByte = start + len(change.Text)
	edit.NewEndPoint, _ = buf.Point(edit.NewEndByte)

	return
}

// sync applies one batch on top of prev and parses the result once. It runs
// with the document's edit lock held.
func (r *Registry) sync(doc *document, prev *Snapshot, version int32, changes []Change) *Snapshot {
	uri := prev.uri
	buf := BufferOf(prev.text)

	var hint *Tree

	if prev.tree != nil && !prev.stale {
		hint = prev.tree.Clone()
	}

	defer func() {
		if hint != nil {
			hint.Close()
		}
	}()

	doc.setPhase(PhaseEditedPending)

	applied := 0

	for i, change := range changes {
		edit, err := ApplyChange(buf, change, r.log)

		if err != nil {
			r.log.Warningf("%s: change %d of %d rejected: %s", uri, i+1, len(changes), err)
			continue
		}

		applied++

		if change.Range == nil {
			if hint != nil {
				hint.Close()
				hint = nil
			}

			r.log.Debugf("%s: whole document replaced, %d bytes", uri, edit.NewEndByte)
			continue
		}

		r.log.Debugf("%s: %s", uri, edit)

		if hint != nil {
			hint.Edit(edit.InputEdit())
		}
	}

	if applied == 0 {
		return prev.derive(version)
	}

	doc.setPhase(PhaseReparsing)

	tree, err := r.parse(r.pool(prev.language), buf.Rope(), hint)

	if err != nil {
		r.log.Errorf("%s: reparse after %d changes: %s", uri, applied, err)

		next := &Snapshot{
			uri:        uri,
			version:    version,
			languageID: prev.languageID,
			language:   prev.language,
			text:       buf.Rope(),
			source:     prev.source,
			stale:      prev.tree != nil,
		}

		if prev.tree != nil {
			next.tree = prev.tree.Clone()
		}

		next.refs.Store(1)

		return next
	}

	return newSnapshot(uri, version, prev.languageID, prev.language, buf.Rope(), tree)
}
