// Package engine provides the line index facade for lineindex.
//
// An Engine owns an in-memory native document (package native/sim) and the
// line index that shadows it (package lines). Edits are expressed in UTF-16
// code units, the coordinate space of toolkit bindings, and are translated
// to the document's UTF-8 byte positions by the index before being applied.
// Every edit reaches the index as a native modification notification, the
// same way a real editor component would report it.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - gapbuffer: generic gap buffer used for document text and line entries
//   - charset: UTF-8/UTF-16 offset translation and legacy encodings
//   - native: notification record and document interfaces
//   - native/sim: in-memory document that emits notifications
//   - lines: the per-line index with markers, annotations and fold state
//   - color: marker colors with tcell and go-colorful conversions
//
// # Thread Safety
//
// All Engine methods are safe for concurrent use. Reads share a read lock;
// edits take the write lock and deliver their notifications while holding
// it. The *lines.Collection returned by Lines is not synchronized; use View
// and Update to reach it from several goroutines.
//
// # Basic Usage
//
//	e, err := engine.New(engine.WithContent("héllo\nwörld"))
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//
//	e.InsertText(5, "!")       // "héllo!\nwörld"
//	line := e.LineFromPosition(8) // 1
//	b := e.CharToBytePosition(8)  // 9; "é" is two bytes
//
// # Markers and Folding
//
//	e.Update(func(c *lines.Collection) {
//	    c.MarkerAdd(1, 3)
//	})
//	e.DefineMarker(3, engine.MarkerDefinition{
//	    Symbol: engine.SymbolBookmark,
//	    Back:   color.Red,
//	})
//
// # Configuration
//
// FromConfig applies a loaded config.Config:
//
//	cfg, err := config.Load(path)
//	...
//	e, err := engine.New(engine.FromConfig(cfg), engine.WithLogger(log))
//
// # Error Handling
//
// Edits outside the document return ErrRangeInvalid, edits after Close
// return ErrClosed, and bad marker numbers or symbols return
// ErrMarkerInvalid. Queries never fail: positions are clamped.
package engine
