package engine

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/text/encoding"

	"github.com/dshills/lineindex/internal/engine/charset"
	"github.com/dshills/lineindex/internal/engine/lines"
	"github.com/dshills/lineindex/internal/engine/native"
	"github.com/dshills/lineindex/internal/engine/native/sim"
	"github.com/dshills/lineindex/internal/logging"
)

// Engine combines a native document with its line index and marker
// definitions behind a character-position API. Positions and lengths taken
// and returned by Engine methods are UTF-16 code units unless a name says
// bytes.
//
// All operations are safe for concurrent use. Notification handlers
// registered with Subscribe run while the engine is locked for writing and
// must not call back into it.
type Engine struct {
	mu sync.RWMutex

	doc     *sim.Editor
	lines   *lines.Collection
	markers [MarkerCount]MarkerDefinition
	enc     encoding.Encoding
	log     *logging.Logger
	closed  bool

	// Configuration
	initContent  string
	encodingName string
	gapCapacity  int
	checks       bool
	wrapWidth    int
	optErr       error
}

// New creates an Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		markers:     defaultMarkers(),
		enc:         charset.UTF8,
		log:         logging.Nop(),
		gapCapacity: DefaultGapCapacity,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.optErr != nil {
		return nil, fmt.Errorf("configuring engine: %w", e.optErr)
	}
	if e.encodingName != "" {
		enc, err := charset.Lookup(e.encodingName)
		if err != nil {
			return nil, fmt.Errorf("configuring engine: %w", err)
		}
		e.enc = enc
	}

	e.doc = sim.New(sim.WithCapacity(e.gapCapacity), sim.WithText(e.initContent))

	lineOpts := []lines.Option{
		lines.WithLogger(e.log),
		lines.WithCapacity(e.gapCapacity),
		lines.WithAnnotationWrap(e.wrapWidth),
	}
	if e.checks {
		lineOpts = append(lineOpts, lines.WithConsistencyChecks())
	}
	e.lines = lines.New(e.doc, e.doc, lineOpts...)
	e.log = e.log.WithComponent("engine").WithField("collection", e.lines.ID())
	e.log.Debug("created: %d bytes, %d lines, encoding %s", e.doc.Length(), e.lines.Count(), charset.Name(e.enc))
	return e, nil
}

// NewFromReader creates an Engine whose content is read from r and decoded
// from the configured encoding.
func NewFromReader(r io.Reader, opts ...Option) (*Engine, error) {
	e, err := New(opts...)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if err := e.SetText(charset.GetString(data, e.enc)); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// Close detaches the line index from the document. Later edits return
// ErrClosed. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.lines.Close()
	e.log.Debug("closed")
	return nil
}

// ============================================================================
// Edit Operations
// ============================================================================

// InsertText inserts text at character position pos.
func (e *Engine) InsertText(pos int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkRange(pos, 0); err != nil {
		return err
	}
	return e.doc.InsertString(e.lines.CharToBytePosition(pos), text)
}

// AppendText inserts text at the end of the document.
func (e *Engine) AppendText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.doc.InsertString(e.doc.Length(), text)
}

// DeleteRange removes length characters starting at pos.
func (e *Engine) DeleteRange(pos, length int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkRange(pos, length); err != nil {
		return err
	}
	return e.deleteLocked(pos, length)
}

// ReplaceRange replaces length characters at pos with text. The change is
// reported to subscribers as a delete followed by an insert.
func (e *Engine) ReplaceRange(pos, length int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkRange(pos, length); err != nil {
		return err
	}
	if err := e.deleteLocked(pos, length); err != nil {
		return err
	}
	return e.doc.InsertString(e.lines.CharToBytePosition(pos), text)
}

// SetText replaces the whole document.
func (e *Engine) SetText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.doc.SetText(text)
}

// SetFoldLevel sets the native fold level of line.
func (e *Engine) SetFoldLevel(line, level int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.doc.SetFoldLevel(line, level)
}

func (e *Engine) deleteLocked(pos, length int) error {
	start := e.lines.CharToBytePosition(pos)
	end := e.lines.CharToBytePosition(pos + length)
	return e.doc.DeleteRange(start, end-start)
}

// checkRange validates the character range [pos, pos+length).
func (e *Engine) checkRange(pos, length int) error {
	if e.closed {
		return ErrClosed
	}
	if n := e.lines.TextLength(); pos < 0 || length < 0 || pos > n || length > n-pos {
		return fmt.Errorf("%w: [%d,%d) in %d characters", ErrRangeInvalid, pos, pos+length, n)
	}
	return nil
}

// ============================================================================
// Read Operations
// ============================================================================

// Text returns the full document.
func (e *Engine) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Text()
}

// TextRange returns length characters starting at pos.
func (e *Engine) TextRange(pos, length int) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if n := e.lines.TextLength(); pos < 0 || length < 0 || pos > n || length > n-pos {
		return "", fmt.Errorf("%w: [%d,%d) in %d characters", ErrRangeInvalid, pos, pos+length, n)
	}
	start := e.lines.CharToBytePosition(pos)
	end := e.lines.CharToBytePosition(pos + length)
	return charset.GetString(e.doc.TextRange(start, end), charset.UTF8), nil
}

// Length returns the document length in characters.
func (e *Engine) Length() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lines.TextLength()
}

// ByteLength returns the document length in bytes.
func (e *Engine) ByteLength() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Length()
}

// LineCount returns the number of lines.
func (e *Engine) LineCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lines.Count()
}

// LineFromPosition returns the line containing character position pos.
func (e *Engine) LineFromPosition(pos int) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lines.LineFromPosition(pos)
}

// LineStart returns the character position of the start of line.
func (e *Engine) LineStart(line int) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lines.LineStart(line)
}

// LineText returns line including its line break.
func (e *Engine) LineText(line int) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lines.Line(line).Text()
}

// CharToBytePosition translates a character position to a byte position.
func (e *Engine) CharToBytePosition(pos int) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lines.CharToBytePosition(pos)
}

// ByteToCharPosition translates a byte position to a character position.
func (e *Engine) ByteToCharPosition(pos int) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lines.ByteToCharPosition(pos)
}

// Encoding returns the canonical name of the external encoding.
func (e *Engine) Encoding() string {
	return charset.Name(e.enc)
}

// WriteTo writes the document encoded in the external encoding.
func (e *Engine) WriteTo(w io.Writer) (int64, error) {
	e.mu.RLock()
	data, err := charset.GetBytes(e.doc.Text(), e.enc, false)
	e.mu.RUnlock()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ============================================================================
// Line Index Access
// ============================================================================

// Lines returns the line index. It is not synchronized; concurrent callers
// should use View or Update instead.
func (e *Engine) Lines() *lines.Collection {
	return e.lines
}

// View calls fn with the line index while holding the read lock.
func (e *Engine) View(fn func(*lines.Collection)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.lines)
}

// Update calls fn with the line index while holding the write lock, for
// changes to markers, annotations and fold state.
func (e *Engine) Update(fn func(*lines.Collection)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.lines)
}

// Verify checks the line index against the document.
func (e *Engine) Verify() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lines.Verify()
}

// Subscribe registers h for the document's notifications, delivered after
// the line index has seen them. Neither h nor cancel may be called while a
// notification is being delivered.
func (e *Engine) Subscribe(h native.Handler) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	unsubscribe := e.doc.Subscribe(h)
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		unsubscribe()
	}
}
