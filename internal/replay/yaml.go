package replay

import (
	"context"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/dshills/lineindex/internal/engine"
	"github.com/dshills/lineindex/internal/engine/lines"
	"github.com/dshills/lineindex/internal/engine/native"
)

// YAMLScript is a list of steps read from YAML:
//
//	name: split crlf
//	steps:
//	  - insert: {pos: 0, text: "a\r\nb"}
//	  - delete: {pos: 1, length: 1}
//	  - expect: {lines: 2, starts: [0, 2, 3]}
type YAMLScript struct {
	Title string `yaml:"name"`
	Steps []Step `yaml:"steps"`

	file string
}

// Step holds exactly one operation. Positions are UTF-16 code units and
// lines are zero-based.
type Step struct {
	Insert   *Edit   `yaml:"insert,omitempty"`
	Delete   *Edit   `yaml:"delete,omitempty"`
	Replace  *Edit   `yaml:"replace,omitempty"`
	Append   *string `yaml:"append,omitempty"`
	SetText  *string `yaml:"set_text,omitempty"`
	Mark     *LineOp `yaml:"mark,omitempty"`
	Unmark   *LineOp `yaml:"unmark,omitempty"`
	Fold     *LineOp `yaml:"fold,omitempty"`
	Toggle   *LineOp `yaml:"toggle,omitempty"`
	Annotate *LineOp `yaml:"annotate,omitempty"`
	Verify   *bool   `yaml:"verify,omitempty"`
	Expect   *Expect `yaml:"expect,omitempty"`
}

// Edit is a text change.
type Edit struct {
	Pos    int    `yaml:"pos"`
	Length int    `yaml:"length"`
	Text   string `yaml:"text"`
}

// LineOp addresses one line. Depth is the fold depth above the base level.
type LineOp struct {
	Line   int    `yaml:"line"`
	Marker int    `yaml:"marker"`
	Depth  int    `yaml:"depth"`
	Header bool   `yaml:"header"`
	White  bool   `yaml:"white"`
	Text   string `yaml:"text"`
}

// Expect checks the document and its index. Unset fields are not checked.
type Expect struct {
	Lines      *int    `yaml:"lines"`
	Length     *int    `yaml:"length"`
	Text       *string `yaml:"text"`
	Starts     []int   `yaml:"starts"`
	ByteStarts []int   `yaml:"byte_starts"`
	Visible    *int    `yaml:"visible"`
}

// ParseYAML decodes a step script. file names the source in errors and is
// the default script name.
func ParseYAML(file string, data []byte) (*YAMLScript, error) {
	s := &YAMLScript{file: file}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	for i, step := range s.Steps {
		if _, err := step.kind(); err != nil {
			return nil, fmt.Errorf("%s: step %d: %w", file, i+1, err)
		}
	}
	return s, nil
}

// Name returns the script's name field, or its file name.
func (s *YAMLScript) Name() string {
	if s.Title != "" {
		return s.Title
	}
	return s.file
}

// Run applies the steps in order, stopping at the first failure.
func (s *YAMLScript) Run(ctx context.Context, e *engine.Engine) error {
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		kind, _ := step.kind()
		if err := step.apply(e); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, kind, err)
		}
	}
	return nil
}

// kind names the step's single operation.
func (s Step) kind() (string, error) {
	set := []struct {
		name string
		ok   bool
	}{
		{"insert", s.Insert != nil},
		{"delete", s.Delete != nil},
		{"replace", s.Replace != nil},
		{"append", s.Append != nil},
		{"set_text", s.SetText != nil},
		{"mark", s.Mark != nil},
		{"unmark", s.Unmark != nil},
		{"fold", s.Fold != nil},
		{"toggle", s.Toggle != nil},
		{"annotate", s.Annotate != nil},
		{"verify", s.Verify != nil},
		{"expect", s.Expect != nil},
	}
	var names []string
	for _, op := range set {
		if op.ok {
			names = append(names, op.name)
		}
	}
	switch len(names) {
	case 0:
		return "", fmt.Errorf("%w: no operation", ErrInvalidStep)
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("%w: several operations %v", ErrInvalidStep, names)
	}
}

func (s Step) apply(e *engine.Engine) error {
	switch {
	case s.Insert != nil:
		return e.InsertText(s.Insert.Pos, s.Insert.Text)
	case s.Delete != nil:
		return e.DeleteRange(s.Delete.Pos, s.Delete.Length)
	case s.Replace != nil:
		return e.ReplaceRange(s.Replace.Pos, s.Replace.Length, s.Replace.Text)
	case s.Append != nil:
		return e.AppendText(*s.Append)
	case s.SetText != nil:
		return e.SetText(*s.SetText)
	case s.Mark != nil:
		e.Update(func(c *lines.Collection) { c.MarkerAdd(s.Mark.Line, s.Mark.Marker) })
	case s.Unmark != nil:
		e.Update(func(c *lines.Collection) { c.MarkerDelete(s.Unmark.Line, s.Unmark.Marker) })
	case s.Fold != nil:
		return e.SetFoldLevel(s.Fold.Line, foldLevel(s.Fold.Depth, s.Fold.Header, s.Fold.White))
	case s.Toggle != nil:
		e.Update(func(c *lines.Collection) { c.ToggleFold(s.Toggle.Line) })
	case s.Annotate != nil:
		e.Update(func(c *lines.Collection) {
			c.SetAnnotation(s.Annotate.Line, lines.StyledText{Text: s.Annotate.Text})
		})
	case s.Verify != nil:
		if *s.Verify {
			return e.Verify()
		}
	case s.Expect != nil:
		return s.Expect.check(e)
	}
	return nil
}

func foldLevel(depth int, header, white bool) int {
	level := native.FoldLevelBase + max(0, depth)
	if header {
		level |= native.FoldLevelHeaderFlag
	}
	if white {
		level |= native.FoldLevelWhiteFlag
	}
	return level
}

func (x *Expect) check(e *engine.Engine) error {
	var err error
	fail := func(format string, args ...any) {
		if err == nil {
			err = fmt.Errorf("%w: "+format, append([]any{ErrExpectation}, args...)...)
		}
	}

	e.View(func(c *lines.Collection) {
		if x.Lines != nil && c.Count() != *x.Lines {
			fail("%d lines, want %d", c.Count(), *x.Lines)
		}
		if x.Length != nil && c.TextLength() != *x.Length {
			fail("length %d, want %d", c.TextLength(), *x.Length)
		}
		if x.Starts != nil && !slices.Equal(c.CharStarts(), x.Starts) {
			fail("starts %v, want %v", c.CharStarts(), x.Starts)
		}
		if x.ByteStarts != nil && !slices.Equal(c.Starts(), x.ByteStarts) {
			fail("byte starts %v, want %v", c.Starts(), x.ByteStarts)
		}
		if x.Visible != nil && c.VisibleLineCount() != *x.Visible {
			fail("%d visible lines, want %d", c.VisibleLineCount(), *x.Visible)
		}
	})
	if x.Text != nil {
		if got := e.Text(); got != *x.Text {
			fail("text %q, want %q", got, *x.Text)
		}
	}
	return err
}
