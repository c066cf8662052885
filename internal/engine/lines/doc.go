// Package lines maintains the shadow line table of a native editor document.
//
// The native engine addresses text in UTF-8 bytes while callers work in
// UTF-16 code units. A Collection keeps, for every line, its start in both
// coordinate spaces together with per-line state the engine reports or the
// caller attaches: markers, annotations, margin text and fold state. It is
// kept current by replaying the engine's modification notifications, so
// queries never rescan the document.
//
// # Updates
//
// Lines live in a gap buffer with one trailing sentinel entry whose start is
// the document length. An insertion adds entries after the line it lands in;
// a deletion removes the entries whose line breaks it consumed and their
// state with them. Offsets of all following lines shift by the edit length.
// That shift is recorded as a pending step and folded into entries lazily as
// later edits and queries move across them, in the manner of Scintilla's
// partitioning, so runs of nearby edits cost time proportional to the lines
// they touch.
//
// # Permissive queries
//
// Line numbers and positions outside the document are clamped, never
// reported as errors. See Clamp.
//
// # Usage
//
//	ed := sim.New(sim.WithText("one\ntwo\n"))
//	c := lines.New(ed, ed)
//	defer c.Close()
//
//	_ = ed.InsertString(0, "zero\n")
//	n := c.Count()                      // 4
//	b := c.CharToBytePosition(7)        // byte offset of "w"
//	line := c.Line(c.LineFromPosition(7))
//	line.MarkerAdd(1)
package lines
