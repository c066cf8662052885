package replay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/lineindex/internal/engine"
	"github.com/dshills/lineindex/internal/engine/native"
)

// Errors returned by replay operations.
var (
	// ErrUnknownFormat indicates a script file extension that is neither
	// YAML nor Lua.
	ErrUnknownFormat = errors.New("unknown script format")

	// ErrInvalidStep indicates a YAML step with no or several operations.
	ErrInvalidStep = errors.New("invalid step")

	// ErrExpectation indicates an expect step or Lua assertion that did not
	// hold.
	ErrExpectation = errors.New("expectation failed")
)

// Script is a sequence of edits and checks applied to an engine.
type Script interface {
	// Name identifies the script in errors and logs.
	Name() string
	// Run applies the script to e.
	Run(ctx context.Context, e *engine.Engine) error
}

// Stats counts the notifications an engine delivered during a run.
type Stats struct {
	Inserts     int
	Deletes     int
	FoldChanges int
	LinesAdded  int
	LinesMerged int
}

// Load reads a script, choosing the format from the file extension:
// .yaml or .yml for step lists, .lua for Lua programs.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(name, data)
	case ".lua":
		return NewLua(name, string(data)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Run applies s to e and reports the notifications it caused.
func Run(ctx context.Context, e *engine.Engine, s Script) (Stats, error) {
	var st Stats
	cancel := e.Subscribe(func(n native.Notification) {
		switch {
		case n.Has(native.ModInsertText):
			st.Inserts++
		case n.Has(native.ModDeleteText):
			st.Deletes++
		case n.Has(native.ModChangeFold):
			st.FoldChanges++
			return
		default:
			return
		}
		if n.LinesAdded > 0 {
			st.LinesAdded += n.LinesAdded
		} else {
			st.LinesMerged -= n.LinesAdded
		}
	})
	defer cancel()

	if err := s.Run(ctx, e); err != nil {
		return st, fmt.Errorf("%s: %w", s.Name(), err)
	}
	return st, nil
}
