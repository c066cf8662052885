// Package sim provides an in-memory stand-in for the native editor engine.
//
// An Editor stores UTF-8 document bytes in a gap buffer, keeps its own line
// table, and delivers Scintilla-style modification notifications
// synchronously to subscribers after every change. It implements both
// native.Document and native.Source, so a line index can be attached to it
// exactly as it would be to a real engine.
//
// Line breaks follow Scintilla: LF, CR, and CR LF (counted once).
package sim

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/lineindex/internal/engine/gapbuffer"
	"github.com/dshills/lineindex/internal/engine/native"
)

// ErrPositionOutOfRange is returned for edits outside the document.
var ErrPositionOutOfRange = errors.New("position out of range")

// Compile-time interface checks.
var (
	_ native.Document = (*Editor)(nil)
	_ native.Source   = (*Editor)(nil)
)

// Option configures an Editor.
type Option func(*Editor)

// WithCapacity sets the initial capacity of the text gap buffer.
func WithCapacity(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.capacity = n
		}
	}
}

// WithText sets the initial document. No notifications are sent for it.
func WithText(s string) Option {
	return func(e *Editor) {
		e.initial = s
	}
}

type subscription struct {
	id      int
	handler native.Handler
}

// Editor is a simulated native editor. It is not safe for concurrent use.
type Editor struct {
	text       *gapbuffer.GapBuffer[byte]
	subs       []subscription
	nextID     int
	starts     []int // line starts plus a trailing entry equal to Length
	foldLevels []int
	capacity   int
	initial    string
}

// New creates an editor.
func New(opts ...Option) *Editor {
	e := &Editor{capacity: 256}
	for _, opt := range opts {
		opt(e)
	}
	e.text = gapbuffer.New[byte](max(e.capacity, len(e.initial)))
	_ = e.text.InsertRange(0, []byte(e.initial)...)
	e.initial = ""
	e.reindex()
	e.foldLevels = make([]int, e.LineCount())
	for i := range e.foldLevels {
		e.foldLevels[i] = native.FoldLevelBase
	}
	return e
}

// Subscribe registers h for notifications.
func (e *Editor) Subscribe(h native.Handler) func() {
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription{id: id, handler: h})
	return func() {
		e.subs = slices.DeleteFunc(e.subs, func(s subscription) bool { return s.id == id })
	}
}

// Length returns the document length in bytes.
func (e *Editor) Length() int {
	return e.text.Len()
}

// ByteAt returns the byte at pos, or 0 when out of range.
func (e *Editor) ByteAt(pos int) byte {
	b, err := e.text.Get(pos)
	if err != nil {
		return 0
	}
	return b
}

// TextRange returns a copy of the bytes in [start, end), clamped to the document.
func (e *Editor) TextRange(start, end int) []byte {
	start = max(0, start)
	end = min(end, e.text.Len())
	if start >= end {
		return []byte{}
	}
	out := make([]byte, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, e.text.At(i))
	}
	return out
}

// Text returns the whole document.
func (e *Editor) Text() string {
	return string(e.text.Slice())
}

// LineCount returns the number of lines.
func (e *Editor) LineCount() int {
	return len(e.starts) - 1
}

// LineStart returns the byte offset of line. Lines past the end return Length.
func (e *Editor) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= len(e.starts) {
		return e.text.Len()
	}
	return e.starts[line]
}

// LineFromPosition returns the line containing pos, clamped to the document.
func (e *Editor) LineFromPosition(pos int) int {
	i, found := slices.BinarySearch(e.starts[:len(e.starts)-1], pos)
	if found {
		return i
	}
	return max(0, i-1)
}

// FoldLevel returns the fold level of line.
func (e *Editor) FoldLevel(line int) int {
	if line < 0 || line >= len(e.foldLevels) {
		return native.FoldLevelBase
	}
	return e.foldLevels[line]
}

// SetFoldLevel changes the fold level of line and notifies subscribers.
func (e *Editor) SetFoldLevel(line, level int) error {
	if line < 0 || line >= len(e.foldLevels) {
		return fmt.Errorf("line %d: %w", line, ErrPositionOutOfRange)
	}
	prev := e.foldLevels[line]
	if prev == level {
		return nil
	}
	e.foldLevels[line] = level
	e.notify(native.Notification{
		Code:             native.CodeModified,
		ModificationType: native.ModChangeFold,
		Line:             line,
		FoldLevelNow:     level,
		FoldLevelPrev:    prev,
	})
	return nil
}

// InsertString inserts s at byte position pos.
func (e *Editor) InsertString(pos int, s string) error {
	return e.InsertBytes(pos, []byte(s))
}

// InsertBytes inserts b at byte position pos.
func (e *Editor) InsertBytes(pos int, b []byte) error {
	if pos < 0 || pos > e.text.Len() {
		return fmt.Errorf("insert at %d with length %d: %w", pos, e.text.Len(), ErrPositionOutOfRange)
	}
	if len(b) == 0 {
		return nil
	}
	text := slices.Clone(b)

	e.notify(native.Notification{
		Code:             native.CodeModified,
		ModificationType: native.ModBeforeInsert | native.PerformedUser,
		Position:         pos,
		Length:           len(text),
		Text:             text,
	})

	before := e.LineCount()
	line := e.LineFromPosition(pos)
	if err := e.text.InsertRange(pos, text...); err != nil {
		return err
	}
	e.reindex()
	added := e.LineCount() - before
	e.adjustFoldLevels(line, added)

	e.notify(native.Notification{
		Code:             native.CodeModified,
		ModificationType: native.ModInsertText | native.PerformedUser,
		Position:         pos,
		Length:           len(text),
		LinesAdded:       added,
		Text:             text,
	})
	return nil
}

// DeleteRange removes length bytes starting at pos.
func (e *Editor) DeleteRange(pos, length int) error {
	if pos < 0 || length < 0 || pos+length > e.text.Len() {
		return fmt.Errorf("delete [%d,%d) with length %d: %w", pos, pos+length, e.text.Len(), ErrPositionOutOfRange)
	}
	if length == 0 {
		return nil
	}
	deleted := e.TextRange(pos, pos+length)

	e.notify(native.Notification{
		Code:             native.CodeModified,
		ModificationType: native.ModBeforeDelete | native.PerformedUser,
		Position:         pos,
		Length:           length,
		Text:             deleted,
	})

	before := e.LineCount()
	line := e.LineFromPosition(pos)
	if err := e.text.RemoveRange(pos, length); err != nil {
		return err
	}
	e.reindex()
	added := e.LineCount() - before
	e.adjustFoldLevels(line, added)

	e.notify(native.Notification{
		Code:             native.CodeModified,
		ModificationType: native.ModDeleteText | native.PerformedUser,
		Position:         pos,
		Length:           length,
		LinesAdded:       added,
		Text:             deleted,
	})
	return nil
}

// SetText replaces the whole document, reported as a delete then an insert.
func (e *Editor) SetText(s string) error {
	if err := e.DeleteRange(0, e.text.Len()); err != nil {
		return err
	}
	return e.InsertString(0, s)
}

func (e *Editor) notify(n native.Notification) {
	// Copy so handlers may unsubscribe while being notified.
	for _, s := range slices.Clone(e.subs) {
		s.handler(n)
	}
}

// reindex rebuilds the line table from the text.
func (e *Editor) reindex() {
	e.starts = e.starts[:0]
	e.starts = append(e.starts, 0)
	n := e.text.Len()
	for i := 0; i < n; i++ {
		switch e.text.At(i) {
		case '\n':
			e.starts = append(e.starts, i+1)
		case '\r':
			if i+1 < n && e.text.At(i+1) == '\n' {
				continue
			}
			e.starts = append(e.starts, i+1)
		}
	}
	e.starts = append(e.starts, n)
}

// adjustFoldLevels keeps one fold level per line after a line count change
// at line.
func (e *Editor) adjustFoldLevels(line, added int) {
	switch {
	case added > 0:
		fill := make([]int, added)
		for i := range fill {
			fill[i] = e.foldLevels[line] &^ native.FoldLevelHeaderFlag
		}
		e.foldLevels = slices.Insert(e.foldLevels, line+1, fill...)
	case added < 0:
		e.foldLevels = slices.Delete(e.foldLevels, line+1, min(len(e.foldLevels), line+1-added))
	}
}
