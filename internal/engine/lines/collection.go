package lines

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/lineindex/internal/engine/charset"
	"github.com/dshills/lineindex/internal/engine/gapbuffer"
	"github.com/dshills/lineindex/internal/engine/native"
	"github.com/dshills/lineindex/internal/logging"
)

// ErrOutOfSync is returned by Verify when the index disagrees with the
// native document.
var ErrOutOfSync = errors.New("line index out of sync with document")

// DefaultCapacity is the initial capacity of the per-line buffer.
const DefaultCapacity = 64

// Option configures a Collection.
type Option func(*Collection)

// WithLogger sets the logger. Structural changes are logged at debug level.
func WithLogger(l *logging.Logger) Option {
	return func(c *Collection) {
		if l != nil {
			c.log = l
		}
	}
}

// WithConsistencyChecks verifies the index against the document after every
// text change. A mismatch is logged and the index is rebuilt from the
// document, which discards per-line markers, annotations and fold state.
func WithConsistencyChecks() Option {
	return func(c *Collection) {
		c.checks = true
	}
}

// WithCapacity sets the initial capacity of the per-line buffer.
func WithCapacity(n int) Option {
	return func(c *Collection) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithAnnotationWrap sets the wrap width used when counting the display rows
// of annotations and margin text. Zero disables wrapping.
func WithAnnotationWrap(width int) Option {
	return func(c *Collection) {
		c.wrapWidth = max(0, width)
	}
}

// Collection is the shadow line table of a native document. It holds one
// PerLine per document line plus a sentinel whose start is the document
// length, in both byte and UTF-16 coordinates.
//
// The table is updated only by HandleNotification, which must see every
// modification notification of the document exactly once and in order.
// A Collection is not safe for concurrent use.
type Collection struct {
	id     string
	doc    native.Document
	cancel func()
	data   *gapbuffer.GapBuffer[PerLine]
	log    *logging.Logger

	// Entries after stepLine have not yet had stepBytes and stepChars
	// added to their starts.
	stepLine  int
	stepBytes int
	stepChars int

	checks    bool
	capacity  int
	wrapWidth int
}

// New creates a collection for doc and subscribes it to src. src may be nil
// when the caller delivers notifications itself. A non-empty document is
// indexed immediately.
func New(doc native.Document, src native.Source, opts ...Option) *Collection {
	c := &Collection{
		id:       uuid.NewString(),
		doc:      doc,
		log:      logging.Nop(),
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("lines").WithField("collection", c.id)
	c.data = gapbuffer.New[PerLine](c.capacity)
	c.reset()

	if doc.Length() > 0 {
		c.Rebuild()
	}
	if src != nil {
		c.cancel = src.Subscribe(c.HandleNotification)
	}
	return c
}

// ID returns the identifier used in this collection's log lines.
func (c *Collection) ID() string {
	return c.id
}

// Close unsubscribes from the notification source.
func (c *Collection) Close() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Collection) reset() {
	c.data.Clear()
	first := newPerLine(0, 0)
	first.multibyte = multibyteNo
	c.data.Append(first)
	c.data.Append(newPerLine(0, 0))
	c.stepLine, c.stepBytes, c.stepChars = 0, 0, 0
}

// Count returns the number of lines, at least 1.
func (c *Collection) Count() int {
	return c.data.Len() - 1
}

// ByteLength returns the document length in bytes.
func (c *Collection) ByteLength() int {
	return c.byteStart(c.Count())
}

// TextLength returns the document length in UTF-16 code units.
func (c *Collection) TextLength() int {
	return c.charStart(c.Count())
}

// byteStart returns the byte start of entry i, applying the pending step.
func (c *Collection) byteStart(i int) int {
	start := c.data.Ptr(i).Start
	if i > c.stepLine {
		start += c.stepBytes
	}
	return start
}

func (c *Collection) charStart(i int) int {
	start := c.data.Ptr(i).CharStart
	if i > c.stepLine {
		start += c.stepChars
	}
	return start
}

func (c *Collection) clampLine(line int) int {
	return Clamp(line, 0, c.Count()-1)
}

// LineStart returns the char position where line begins. Line Count returns
// TextLength.
func (c *Collection) LineStart(line int) int {
	return c.charStart(Clamp(line, 0, c.Count()))
}

// LineByteStart returns the byte position where line begins. Line Count
// returns ByteLength.
func (c *Collection) LineByteStart(line int) int {
	return c.byteStart(Clamp(line, 0, c.Count()))
}

// LineLength returns the length of line in UTF-16 code units, including its
// line break.
func (c *Collection) LineLength(line int) int {
	line = c.clampLine(line)
	return c.charStart(line+1) - c.charStart(line)
}

// LineByteLength returns the length of line in bytes, including its line
// break.
func (c *Collection) LineByteLength(line int) int {
	line = c.clampLine(line)
	return c.byteStart(line+1) - c.byteStart(line)
}

// Starts returns the byte start of every line followed by the sentinel.
func (c *Collection) Starts() []int {
	out := make([]int, c.data.Len())
	for i := range out {
		out[i] = c.byteStart(i)
	}
	return out
}

// CharStarts returns the char start of every line followed by the sentinel.
func (c *Collection) CharStarts() []int {
	out := make([]int, c.data.Len())
	for i := range out {
		out[i] = c.charStart(i)
	}
	return out
}

// LineFromBytePosition returns the line containing the byte position pos.
func (c *Collection) LineFromBytePosition(pos int) int {
	return c.search(pos, c.byteStart)
}

// LineFromPosition returns the line containing the char position pos.
func (c *Collection) LineFromPosition(pos int) int {
	return c.search(pos, c.charStart)
}

// search returns the last line whose start is at or before pos. Line starts
// are strictly increasing except that an empty last line shares its start
// with the sentinel, which is never searched.
func (c *Collection) search(pos int, start func(int) int) int {
	lo, hi := 0, c.Count()-1
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if start(mid) <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// lineBytes returns the native bytes of line including its line break.
func (c *Collection) lineBytes(line int) []byte {
	return c.doc.TextRange(c.byteStart(line), c.byteStart(line+1))
}

// hasMultibyte reports whether line contains a character wider than one
// byte. The flag is set whenever recount touches a line; an unset flag is
// derived from the line's lengths without being stored, so queries never
// write to the table.
func (c *Collection) hasMultibyte(line int) bool {
	switch c.data.Ptr(line).multibyte {
	case multibyteNo:
		return false
	case multibyteYes:
		return true
	}
	return c.byteStart(line+1)-c.byteStart(line) != c.charStart(line+1)-c.charStart(line)
}

// CharToBytePosition converts a char position to a byte position. Input is
// clamped to [0, TextLength]. A position between the halves of a surrogate
// pair maps to the start of that character.
func (c *Collection) CharToBytePosition(pos int) int {
	pos = Clamp(pos, 0, c.TextLength())
	line := c.LineFromPosition(pos)
	start := c.byteStart(line)
	offset := pos - c.charStart(line)
	if !c.hasMultibyte(line) {
		return start + offset
	}
	return start + charset.CharToByteOffset(c.lineBytes(line), offset)
}

// ByteToCharPosition converts a byte position to a char position. Input is
// clamped to [0, ByteLength]. A position inside a multi-byte sequence maps
// to the start of that character.
func (c *Collection) ByteToCharPosition(pos int) int {
	pos = Clamp(pos, 0, c.ByteLength())
	line := c.LineFromBytePosition(pos)
	start := c.byteStart(line)
	if !c.hasMultibyte(line) {
		return c.charStart(line) + pos - start
	}
	return c.charStart(line) + charset.ByteToCharOffset(c.lineBytes(line), pos-start)
}

// moveStep folds the pending delta into entries until the step sits at line.
func (c *Collection) moveStep(line int) {
	if c.stepBytes == 0 && c.stepChars == 0 {
		c.stepLine = line
		return
	}
	for c.stepLine < line {
		c.stepLine++
		p := c.data.Ptr(c.stepLine)
		p.Start += c.stepBytes
		p.CharStart += c.stepChars
	}
	for c.stepLine > line {
		p := c.data.Ptr(c.stepLine)
		p.Start -= c.stepBytes
		p.CharStart -= c.stepChars
		c.stepLine--
	}
	if c.stepLine >= c.data.Len()-1 {
		c.stepBytes, c.stepChars = 0, 0
	}
}

// shiftAfter moves the start of every entry after line by the given deltas.
func (c *Collection) shiftAfter(line, bytes, chars int) {
	c.moveStep(line)
	c.stepBytes += bytes
	c.stepChars += chars
}

// insertLine adds an entry at index with the given byte start. Its char
// start is filled in by recount.
func (c *Collection) insertLine(index, start int) {
	c.moveStep(index)
	_ = c.data.Insert(index, newPerLine(start, 0))
	c.stepLine++
}

// removeLines drops count entries starting at index. The sentinel is never
// removed; it reports whether all count entries existed.
func (c *Collection) removeLines(index, count int) bool {
	avail := c.data.Len() - 1 - index
	n := min(count, max(0, avail))
	for range n {
		c.moveStep(index)
		_ = c.data.RemoveAt(index)
		c.stepLine--
	}
	return n == count
}

// recount recomputes the char starts of lines first+1 through last+1 from
// the document bytes of lines first through last. The step must sit at last.
func (c *Collection) recount(first, last int) {
	for i := first; i <= last; i++ {
		b := c.lineBytes(i)
		units := charset.UTF16LenBytes(b)
		p := c.data.Ptr(i)
		if units == len(b) {
			p.multibyte = multibyteNo
		} else {
			p.multibyte = multibyteYes
		}

		want := c.charStart(i) + units
		if i < last {
			c.data.Ptr(i + 1).CharStart = want
		} else {
			c.stepChars += want - c.charStart(i+1)
		}
	}
}

// affectedLine returns the line an edit at pos applies to. When pos starts
// a line that follows a CR and the document now holds LF at pos, the CR and
// LF have joined into one break and the edit belongs to the previous line.
func (c *Collection) affectedLine(pos int) int {
	line := c.LineFromBytePosition(pos)
	if line > 0 && pos == c.byteStart(line) &&
		c.doc.ByteAt(pos-1) == '\r' && c.doc.ByteAt(pos) == '\n' {
		line--
	}
	return line
}

func (c *Collection) trackInsert(pos, length, linesAdded int) {
	line := c.affectedLine(pos)
	joined := line < c.LineFromBytePosition(pos)
	atLineStart := pos == c.byteStart(line)
	for i := 1; i <= linesAdded; i++ {
		c.insertLine(line+i, c.doc.LineStart(line+i))
	}
	last := line + max(linesAdded, 0)
	if atLineStart && last > line {
		// The line's text now starts on the last inserted line.
		c.moveState(line, last)
	}
	c.shiftAfter(last, length, 0)
	if !joined {
		c.recount(line, last)
		return
	}

	// The inserted LF completed the CR ending line, so the break that began
	// the old next line is gone. That line now starts after the inserted
	// text's last break, not after the inserted text.
	next := last + 1
	c.moveStep(next)
	c.data.Ptr(next).Start = c.doc.LineStart(next)
	c.recount(line, next)
}

// moveState transfers markers, annotation, margin text and fold state from
// one entry to another, leaving the source clean.
func (c *Collection) moveState(from, to int) {
	src, dst := c.data.Ptr(from), c.data.Ptr(to)
	dst.Markers, dst.Annotation, dst.Margin = src.Markers, src.Annotation, src.Margin
	dst.FoldLevel, dst.Expanded, dst.Visible = src.FoldLevel, src.Expanded, src.Visible

	clean := newPerLine(0, 0)
	src.Markers, src.Annotation, src.Margin = 0, nil, nil
	src.FoldLevel, src.Expanded = clean.FoldLevel, clean.Expanded
}

func (c *Collection) trackDelete(pos, length, linesAdded int) {
	line := c.affectedLine(pos)
	removed := max(-linesAdded, 0)
	last := line

	// Deleting from between a CR and its LF leaves the CR as a break of its
	// own, so one line start inside the range survives and moves to pos.
	if next := line + 1 + removed; next < c.Count() && c.byteStart(next) <= pos+length {
		removed++
		last++
	}
	if !c.removeLines(line+1, removed) {
		c.log.Error("delete at %d removes %d lines past the end of the index", pos, removed)
	}
	if last > line {
		c.insertLine(last, c.doc.LineStart(last))
	}
	c.shiftAfter(last, -length, 0)
	c.recount(line, last)
}

// metadataChanges are native changes to per-line data the collection keeps
// itself. They are logged and otherwise ignored.
const metadataChanges = native.ModChangeMarker | native.ModChangeAnnotation | native.ModChangeMargin

// HandleNotification applies one native notification. Text insertions and
// deletions change the table and fold level changes update the line's fold
// state. Marker, annotation and margin changes are logged at Debug; anything
// else is ignored.
func (c *Collection) HandleNotification(n native.Notification) {
	if n.Code != native.CodeModified {
		return
	}

	var structural bool
	if n.ModificationType&native.ModDeleteText != 0 {
		c.trackDelete(n.Position, n.Length, n.LinesAdded)
		structural = true
	}
	if n.ModificationType&native.ModInsertText != 0 {
		c.trackInsert(n.Position, n.Length, n.LinesAdded)
		structural = true
	}
	if n.ModificationType&native.ModChangeFold != 0 {
		c.applyFoldLevel(n.Line, n.FoldLevelNow)
	}
	if n.ModificationType&metadataChanges != 0 {
		c.log.Debug("native metadata change on line %d: %v", n.Line, n)
	}
	if !structural {
		return
	}

	if c.log.Enabled(logging.LevelDebug) {
		c.log.Debug("applied %v: %d lines, %d bytes", n, c.Count(), c.ByteLength())
	}
	if c.checks {
		if err := c.Verify(); err != nil {
			c.log.Warn("%v; rebuilding", err)
			c.Rebuild()
		}
	}
}

// Rebuild discards the table and indexes the whole document again, as if
// its text had just been inserted. Per-line metadata is lost.
func (c *Collection) Rebuild() {
	c.reset()
	if n := c.doc.Length(); n > 0 {
		c.trackInsert(0, n, c.doc.LineCount()-1)
	}
	c.log.Debug("rebuilt: %d lines", c.Count())
}

// Verify compares the table with the document's own line table and length.
// It reads the whole document.
func (c *Collection) Verify() error {
	if got, want := c.Count(), c.doc.LineCount(); got != want {
		return fmt.Errorf("%w: %d lines, document has %d", ErrOutOfSync, got, want)
	}
	for i := 0; i <= c.Count(); i++ {
		if got, want := c.byteStart(i), c.doc.LineStart(i); got != want {
			return fmt.Errorf("%w: line %d starts at byte %d, document says %d", ErrOutOfSync, i, got, want)
		}
	}
	units := charset.UTF16LenBytes(c.doc.TextRange(0, c.doc.Length()))
	if got := c.TextLength(); got != units {
		return fmt.Errorf("%w: text length %d, document has %d", ErrOutOfSync, got, units)
	}
	return nil
}
