// Package native defines the boundary between the line index and the native
// editor engine: the modification notification record, its flag values, and
// the interfaces the index uses to read the engine's document and to
// subscribe to its notifications.
//
// Numeric values mirror the Scintilla API so that notifications from a real
// engine can be passed through unchanged.
package native

import "fmt"

// Notification codes.
const (
	CodeModified = 2008 // SCN_MODIFIED
)

// ModificationType flags carried by a CodeModified notification.
const (
	ModInsertText        = 0x1
	ModDeleteText        = 0x2
	ModChangeStyle       = 0x4
	ModChangeFold        = 0x8
	PerformedUser        = 0x10
	PerformedUndo        = 0x20
	PerformedRedo        = 0x40
	MultiStepUndoRedo    = 0x80
	LastStepInUndoRedo   = 0x100
	ModChangeMarker      = 0x200
	ModBeforeInsert      = 0x400
	ModBeforeDelete      = 0x800
	ModChangeMargin      = 0x10000
	ModChangeAnnotation  = 0x20000
	ModInsertCheck       = 0x100000
	ModChangeLineState   = 0x8000
	ModChangeTabStops    = 0x200000
	ModChangeIndicator   = 0x4000
	ModContainer         = 0x40000
	ModLexerState        = 0x80000
	MultiLineUndoRedo    = 0x1000
	StartAction          = 0x2000
	ModChangeEOLAnnotate = 0x400000
)

// Fold level encoding.
const (
	FoldLevelBase       = 0x400
	FoldLevelWhiteFlag  = 0x1000
	FoldLevelHeaderFlag = 0x2000
	FoldLevelNumberMask = 0x0FFF
)

// Notification is a single report from the native engine. Positions and
// lengths are in bytes.
type Notification struct {
	Code             int
	ModificationType int
	Position         int
	Length           int
	LinesAdded       int
	Text             []byte
	Line             int
	FoldLevelNow     int
	FoldLevelPrev    int
}

// Has reports whether all bits of flag are set in the modification type.
func (n Notification) Has(flag int) bool {
	return n.ModificationType&flag == flag
}

// String returns a compact description for logging.
func (n Notification) String() string {
	switch {
	case n.Code != CodeModified:
		return fmt.Sprintf("notification(%d)", n.Code)
	case n.Has(ModInsertText):
		return fmt.Sprintf("insert(pos=%d len=%d lines=%+d)", n.Position, n.Length, n.LinesAdded)
	case n.Has(ModDeleteText):
		return fmt.Sprintf("delete(pos=%d len=%d lines=%+d)", n.Position, n.Length, n.LinesAdded)
	case n.Has(ModChangeFold):
		return fmt.Sprintf("fold(line=%d level=%#x)", n.Line, n.FoldLevelNow)
	default:
		return fmt.Sprintf("modified(type=%#x)", n.ModificationType)
	}
}

// Document is read access to the native engine's text.
// All positions are byte offsets.
type Document interface {
	// Length returns the document length in bytes.
	Length() int
	// ByteAt returns the byte at pos, or 0 when out of range.
	ByteAt(pos int) byte
	// TextRange returns a copy of the bytes in [start, end).
	TextRange(start, end int) []byte
	// LineCount returns the number of lines, at least 1.
	LineCount() int
	// LineStart returns the byte offset where line begins. LineCount
	// returns Length.
	LineStart(line int) int
	// LineFromPosition returns the line containing pos.
	LineFromPosition(pos int) int
}

// Handler receives notifications.
type Handler func(Notification)

// Source delivers notifications synchronously, in order, once each.
type Source interface {
	// Subscribe registers h and returns a function that removes it.
	Subscribe(h Handler) (cancel func())
}
