package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/lineindex/internal/config"
	"github.com/dshills/lineindex/internal/engine/color"
	"github.com/dshills/lineindex/internal/engine/lines"
	"github.com/dshills/lineindex/internal/logging"
)

// DefaultGapCapacity is the initial gap buffer capacity for both the
// document text and the line table.
const DefaultGapCapacity = lines.DefaultCapacity

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial content of the engine.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithEncoding sets the external encoding used by NewFromReader and WriteTo.
// The document itself is always held as UTF-8.
func WithEncoding(name string) Option {
	return func(e *Engine) {
		e.encodingName = name
	}
}

// WithLogger sets the logger used by the engine and its line index.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithConsistencyChecks verifies the line index after every edit.
func WithConsistencyChecks() Option {
	return func(e *Engine) {
		e.checks = true
	}
}

// WithGapCapacity sets the initial capacity of the gap buffers.
func WithGapCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.gapCapacity = n
		}
	}
}

// WithAnnotationWrap sets the wrap width for annotation and margin text rows.
func WithAnnotationWrap(width int) Option {
	return func(e *Engine) {
		e.wrapWidth = max(0, width)
	}
}

// WithMarker sets the initial definition of one marker.
func WithMarker(marker int, def MarkerDefinition) Option {
	return func(e *Engine) {
		if marker < 0 || marker >= MarkerCount {
			e.optErr = errors.Join(e.optErr, fmt.Errorf("%w: %d", ErrMarkerInvalid, marker))
			return
		}
		e.markers[marker] = def
	}
}

// FromConfig applies the document, index, annotation and marker sections of
// cfg. Invalid marker entries make New fail.
func FromConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		if cfg == nil {
			return
		}
		if cfg.Document.Encoding != "" {
			e.encodingName = cfg.Document.Encoding
		}
		WithGapCapacity(cfg.Document.GapCapacity)(e)
		if cfg.Index.ConsistencyChecks {
			e.checks = true
		}
		WithAnnotationWrap(cfg.Annotations.WrapWidth)(e)

		for _, m := range cfg.Markers {
			def, err := markerFromConfig(m, e.markers)
			if err != nil {
				e.optErr = errors.Join(e.optErr, err)
				continue
			}
			WithMarker(m.Index, def)(e)
		}
	}
}

// markerFromConfig builds a definition from m. Fields left empty keep the
// current definition's values.
func markerFromConfig(m config.MarkerConfig, current [MarkerCount]MarkerDefinition) (MarkerDefinition, error) {
	if m.Index < 0 || m.Index >= MarkerCount {
		return MarkerDefinition{}, fmt.Errorf("%w: %d", ErrMarkerInvalid, m.Index)
	}
	def := current[m.Index]
	var err error
	if m.Symbol != "" {
		if def.Symbol, err = ParseMarkerSymbol(m.Symbol); err != nil {
			return def, fmt.Errorf("marker %d: %w", m.Index, err)
		}
	}
	if m.Fore != "" {
		if def.Fore, err = color.Parse(m.Fore); err != nil {
			return def, fmt.Errorf("marker %d fore: %w", m.Index, err)
		}
	}
	if m.Back != "" {
		if def.Back, err = color.Parse(m.Back); err != nil {
			return def, fmt.Errorf("marker %d back: %w", m.Index, err)
		}
	}
	return def, nil
}
