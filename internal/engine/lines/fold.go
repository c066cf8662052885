package lines

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/lineindex/internal/engine/native"
)

// FoldAction selects what FoldAll does.
type FoldAction int

const (
	FoldContract FoldAction = iota
	FoldExpand
	FoldToggle
)

// FoldLevel returns the fold level of line, flags included.
func (c *Collection) FoldLevel(line int) int {
	return c.data.Ptr(c.clampLine(line)).FoldLevel
}

// SetFoldLevel sets the fold level of line.
func (c *Collection) SetFoldLevel(line, level int) {
	c.applyFoldLevel(c.clampLine(line), level)
}

// applyFoldLevel records a new level. A contracted header that stops being
// a header is expanded so its former children do not stay hidden.
func (c *Collection) applyFoldLevel(line, level int) {
	if line < 0 || line >= c.Count() {
		c.log.Warn("fold level change for line %d outside %d lines", line, c.Count())
		return
	}
	p := c.data.Ptr(line)
	if !p.Expanded && level&native.FoldLevelHeaderFlag == 0 {
		last := c.LastChild(line)
		p.Expanded = true
		for i := line + 1; i <= last; i++ {
			c.data.Ptr(i).Visible = true
		}
	}
	p.FoldLevel = level
}

func levelNumber(level int) int {
	return level & native.FoldLevelNumberMask
}

// IsFoldHeader reports whether line starts a fold.
func (c *Collection) IsFoldHeader(line int) bool {
	return c.FoldLevel(line)&native.FoldLevelHeaderFlag != 0
}

// FoldParent returns the header line that contains line, or -1.
func (c *Collection) FoldParent(line int) int {
	line = c.clampLine(line)
	level := levelNumber(c.FoldLevel(line))
	for i := line - 1; i >= 0; i-- {
		l := c.data.Ptr(i).FoldLevel
		if l&native.FoldLevelHeaderFlag != 0 && levelNumber(l) < level {
			return i
		}
	}
	return -1
}

// LastChild returns the last line of the fold that line heads. For a line
// that is not a header it returns line.
func (c *Collection) LastChild(line int) int {
	line = c.clampLine(line)
	if !c.IsFoldHeader(line) {
		return line
	}
	level := levelNumber(c.FoldLevel(line))
	i := line + 1
	for ; i < c.Count(); i++ {
		l := c.data.Ptr(i).FoldLevel
		if l&native.FoldLevelWhiteFlag == 0 && levelNumber(l) <= level {
			break
		}
	}
	return i - 1
}

// Expanded reports whether line is expanded. Lines that are not headers are
// always expanded.
func (c *Collection) Expanded(line int) bool {
	return c.data.Ptr(c.clampLine(line)).Expanded
}

// Visible reports whether line is shown, that is, not inside a contracted
// fold.
func (c *Collection) Visible(line int) bool {
	return c.data.Ptr(c.clampLine(line)).Visible
}

// ToggleFold contracts an expanded header or expands a contracted one.
// Lines that are not headers are left alone.
func (c *Collection) ToggleFold(line int) {
	line = c.clampLine(line)
	if !c.IsFoldHeader(line) {
		return
	}
	if c.Expanded(line) {
		c.contract(line)
	} else {
		c.expand(line)
	}
}

func (c *Collection) contract(line int) {
	c.data.Ptr(line).Expanded = false
	last := c.LastChild(line)
	for i := line + 1; i <= last; i++ {
		c.data.Ptr(i).Visible = false
	}
}

// expand shows the children of line, keeping folds nested inside it that
// are themselves contracted.
func (c *Collection) expand(line int) {
	c.data.Ptr(line).Expanded = true
	last := c.LastChild(line)
	for i := line + 1; i <= last; i++ {
		c.data.Ptr(i).Visible = true
		if c.IsFoldHeader(i) && !c.Expanded(i) {
			i = c.LastChild(i)
		}
	}
}

// FoldAll contracts or expands every fold. FoldToggle contracts everything
// when the first header is expanded and expands everything otherwise.
func (c *Collection) FoldAll(action FoldAction) {
	if action == FoldToggle {
		action = FoldExpand
		for i := 0; i < c.Count(); i++ {
			if c.IsFoldHeader(i) {
				if c.Expanded(i) {
					action = FoldContract
				}
				break
			}
		}
	}

	for i := 0; i < c.Count(); i++ {
		p := c.data.Ptr(i)
		p.Expanded = true
		p.Visible = true
	}
	if action == FoldExpand {
		return
	}
	for i := 0; i < c.Count(); i++ {
		if c.IsFoldHeader(i) {
			c.data.Ptr(i).Expanded = false
		}
	}
	for i := 0; i < c.Count(); i++ {
		if c.IsFoldHeader(i) {
			last := c.LastChild(i)
			for j := i + 1; j <= last; j++ {
				c.data.Ptr(j).Visible = false
			}
			i = last
		}
	}
}

// EnsureVisible expands every fold that hides line.
func (c *Collection) EnsureVisible(line int) {
	line = c.clampLine(line)
	var parents []int
	for p := c.FoldParent(line); p >= 0; p = c.FoldParent(p) {
		parents = append(parents, p)
	}
	for i := len(parents) - 1; i >= 0; i-- {
		if !c.Expanded(parents[i]) {
			c.expand(parents[i])
		}
	}
	c.data.Ptr(line).Visible = true
}

// AllLinesVisible reports whether no line is hidden by a fold.
func (c *Collection) AllLinesVisible() bool {
	for i := 0; i < c.Count(); i++ {
		if !c.data.Ptr(i).Visible {
			return false
		}
	}
	return true
}

// VisibleLineCount returns the number of lines not hidden by a fold.
func (c *Collection) VisibleLineCount() int {
	n := 0
	for i := 0; i < c.Count(); i++ {
		if c.data.Ptr(i).Visible {
			n++
		}
	}
	return n
}

// DisplayLineCount returns the visible lines plus the rows their
// annotations take at the collection's annotation wrap width.
func (c *Collection) DisplayLineCount() int {
	n := 0
	for i := 0; i < c.Count(); i++ {
		p := c.data.Ptr(i)
		if !p.Visible {
			continue
		}
		n++
		if p.Annotation != nil {
			n += displayRows(p.Annotation.Text, c.wrapWidth)
		}
	}
	return n
}

// FoldingState returns the contracted header lines joined by sep.
func (c *Collection) FoldingState(sep string) string {
	var parts []string
	for i := 0; i < c.Count(); i++ {
		if !c.data.Ptr(i).Expanded {
			parts = append(parts, strconv.Itoa(i))
		}
	}
	return strings.Join(parts, sep)
}

// SetFoldingState expands every fold and then contracts the header lines
// listed in state. Indexes that are out of range or not headers are
// skipped; entries that are not numbers are reported after the rest have
// been applied.
func (c *Collection) SetFoldingState(state, sep string) error {
	c.FoldAll(FoldExpand)
	if strings.TrimSpace(state) == "" {
		return nil
	}

	var errs []error
	for field := range strings.SplitSeq(state, sep) {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		line, err := strconv.Atoi(field)
		if err != nil {
			errs = append(errs, fmt.Errorf("folding state entry %q: %w", field, err))
			continue
		}
		if line < 0 || line >= c.Count() || !c.IsFoldHeader(line) {
			continue
		}
		c.contract(line)
	}
	return errors.Join(errs...)
}
