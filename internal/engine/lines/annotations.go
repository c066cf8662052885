package lines

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/lineindex/internal/engine/charset"
)

// SetAnnotation attaches text to line. Empty text removes the annotation.
func (c *Collection) SetAnnotation(line int, text StyledText) {
	c.data.Ptr(c.clampLine(line)).Annotation = styled(text)
}

// Annotation returns the annotation of line, or the zero value.
func (c *Collection) Annotation(line int) StyledText {
	if a := c.data.Ptr(c.clampLine(line)).Annotation; a != nil {
		return *a
	}
	return StyledText{}
}

// ClearAnnotation removes the annotation of line.
func (c *Collection) ClearAnnotation(line int) {
	c.data.Ptr(c.clampLine(line)).Annotation = nil
}

// AnnotationClearAll removes every annotation.
func (c *Collection) AnnotationClearAll() {
	for i := 0; i < c.Count(); i++ {
		c.data.Ptr(i).Annotation = nil
	}
}

// AnnotationLines returns the number of display rows the annotation of line
// occupies when wrapped at wrapWidth cells. A wrapWidth of zero or less
// counts only explicit line breaks.
func (c *Collection) AnnotationLines(line, wrapWidth int) int {
	a := c.data.Ptr(c.clampLine(line)).Annotation
	if a == nil {
		return 0
	}
	return displayRows(a.Text, wrapWidth)
}

// AnnotationByteStyles returns the annotation styles of line expanded to one
// style per UTF-8 byte, the form the native engine stores.
func (c *Collection) AnnotationByteStyles(line int) []byte {
	a := c.data.Ptr(c.clampLine(line)).Annotation
	if a == nil {
		return nil
	}
	return byteStyles(a)
}

// SetMarginText attaches margin text to line. Empty text removes it.
func (c *Collection) SetMarginText(line int, text StyledText) {
	c.data.Ptr(c.clampLine(line)).Margin = styled(text)
}

// MarginText returns the margin text of line, or the zero value.
func (c *Collection) MarginText(line int) StyledText {
	if m := c.data.Ptr(c.clampLine(line)).Margin; m != nil {
		return *m
	}
	return StyledText{}
}

// ClearMarginText removes the margin text of line.
func (c *Collection) ClearMarginText(line int) {
	c.data.Ptr(c.clampLine(line)).Margin = nil
}

// MarginTextClearAll removes all margin text.
func (c *Collection) MarginTextClearAll() {
	for i := 0; i < c.Count(); i++ {
		c.data.Ptr(i).Margin = nil
	}
}

// MarginByteStyles is AnnotationByteStyles for margin text.
func (c *Collection) MarginByteStyles(line int) []byte {
	m := c.data.Ptr(c.clampLine(line)).Margin
	if m == nil {
		return nil
	}
	return byteStyles(m)
}

func styled(text StyledText) *StyledText {
	if text.Text == "" {
		return nil
	}
	text.Styles = append([]byte(nil), text.Styles...)
	return &text
}

func byteStyles(t *StyledText) []byte {
	if len(t.Styles) == 0 {
		out := make([]byte, len(t.Text))
		for i := range out {
			out[i] = byte(t.Style)
		}
		return out
	}
	return charset.CharToByteStyles(t.Styles, t.Text, charset.UTF8)
}

// displayRows counts the rows text needs: one per LF separated row, plus
// continuation rows when a row is wider than width. Graphemes are never
// split across rows.
func displayRows(text string, width int) int {
	if text == "" {
		return 0
	}
	rows := 0
	for row := range strings.SplitSeq(text, "\n") {
		rows++
		if width <= 0 {
			continue
		}
		used := 0
		g := uniseg.NewGraphemes(row)
		for g.Next() {
			w := g.Width()
			if used > 0 && used+w > width {
				rows++
				used = 0
			}
			used += w
		}
	}
	return rows
}
