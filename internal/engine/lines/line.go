package lines

import "github.com/dshills/lineindex/internal/engine/charset"

// Line is a view of one line of a Collection. It refers to the line by
// index, so after an edit it describes whatever line now has that index.
type Line struct {
	c     *Collection
	index int
}

// Line returns a view of line i, clamped to [0, Count-1].
func (c *Collection) Line(i int) Line {
	return Line{c: c, index: c.clampLine(i)}
}

// All returns views of every line in order.
func (c *Collection) All() []Line {
	out := make([]Line, c.Count())
	for i := range out {
		out[i] = Line{c: c, index: i}
	}
	return out
}

// Index returns the zero-based line number.
func (l Line) Index() int { return l.index }

// Position returns the char position of the line start.
func (l Line) Position() int { return l.c.LineStart(l.index) }

// EndPosition returns the char position after the line break.
func (l Line) EndPosition() int { return l.c.LineStart(l.index + 1) }

// Length returns the length in UTF-16 code units, including the line break.
func (l Line) Length() int { return l.c.LineLength(l.index) }

// ByteStart returns the byte position of the line start.
func (l Line) ByteStart() int { return l.c.LineByteStart(l.index) }

// ByteLength returns the length in bytes, including the line break.
func (l Line) ByteLength() int { return l.c.LineByteLength(l.index) }

// Text returns the line including its line break.
func (l Line) Text() string {
	return charset.GetString(l.c.lineBytes(l.index), charset.UTF8)
}

// Next returns the following line, or l for the last line.
func (l Line) Next() Line { return l.c.Line(l.index + 1) }

// Previous returns the preceding line, or l for the first line.
func (l Line) Previous() Line { return l.c.Line(l.index - 1) }

// MarkerAdd sets marker on the line.
func (l Line) MarkerAdd(marker int) { l.c.MarkerAdd(l.index, marker) }

// MarkerDelete clears marker on the line, or every marker for -1.
func (l Line) MarkerDelete(marker int) { l.c.MarkerDelete(l.index, marker) }

// MarkerGet returns the line's marker mask.
func (l Line) MarkerGet() uint32 { return l.c.MarkerGet(l.index) }

// MarkerNext returns the first line after this one with a marker in mask.
func (l Line) MarkerNext(mask uint32) int { return l.c.MarkerNext(l.index+1, mask) }

// MarkerPrevious returns the last line before this one with a marker in mask.
func (l Line) MarkerPrevious(mask uint32) int { return l.c.MarkerPrevious(l.index-1, mask) }

// Annotation returns the line's annotation.
func (l Line) Annotation() StyledText { return l.c.Annotation(l.index) }

// SetAnnotation replaces the line's annotation. Empty text removes it.
func (l Line) SetAnnotation(text StyledText) { l.c.SetAnnotation(l.index, text) }

// MarginText returns the line's margin text.
func (l Line) MarginText() StyledText { return l.c.MarginText(l.index) }

// SetMarginText replaces the line's margin text. Empty text removes it.
func (l Line) SetMarginText(text StyledText) { l.c.SetMarginText(l.index, text) }

// AnnotationLines returns the display rows of the annotation at the
// collection's wrap width.
func (l Line) AnnotationLines() int { return l.c.AnnotationLines(l.index, l.c.wrapWidth) }

// FoldLevel returns the line's fold level with its flags.
func (l Line) FoldLevel() int { return l.c.FoldLevel(l.index) }

// SetFoldLevel sets the line's fold level.
func (l Line) SetFoldLevel(level int) { l.c.SetFoldLevel(l.index, level) }

// IsFoldHeader reports whether the line opens a fold.
func (l Line) IsFoldHeader() bool { return l.c.IsFoldHeader(l.index) }

// FoldParent returns the header line of the enclosing fold, or -1.
func (l Line) FoldParent() int { return l.c.FoldParent(l.index) }

// LastChild returns the last line of the fold the line heads.
func (l Line) LastChild() int { return l.c.LastChild(l.index) }

// Expanded reports whether the line's fold is open.
func (l Line) Expanded() bool { return l.c.Expanded(l.index) }

// Visible reports whether the line is shown, that is, no enclosing fold is
// contracted.
func (l Line) Visible() bool { return l.c.Visible(l.index) }

// ToggleFold contracts or expands the fold the line heads.
func (l Line) ToggleFold() { l.c.ToggleFold(l.index) }

// EnsureVisible expands every fold hiding the line.
func (l Line) EnsureVisible() { l.c.EnsureVisible(l.index) }
