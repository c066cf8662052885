package replay

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"
	"github.com/tidwall/sjson"

	"github.com/dshills/lineindex/internal/engine"
	"github.com/dshills/lineindex/internal/engine/lines"
	"github.com/dshills/lineindex/internal/engine/native"
)

// DumpJSON renders the line table as a JSON document:
//
//	{"encoding":"utf-8","length":5,"byte_length":6,"line_count":2,
//	 "lines":[{"index":0,"start":0,"byte_start":0,"length":2,...},...]}
//
// Markers, fold flags, annotations and margin text appear only on lines
// that carry them.
func DumpJSON(e *engine.Engine) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	set := func(doc []byte, path string, v any) []byte {
		if err != nil {
			return doc
		}
		doc, err = sjson.SetBytes(doc, path, v)
		return doc
	}

	e.View(func(c *lines.Collection) {
		out = set(out, "encoding", e.Encoding())
		out = set(out, "length", c.TextLength())
		out = set(out, "byte_length", c.ByteLength())
		out = set(out, "line_count", c.Count())
		if err == nil {
			out, err = sjson.SetRawBytes(out, "lines", []byte(`[]`))
		}

		for _, l := range c.All() {
			obj := []byte(`{}`)
			obj = set(obj, "index", l.Index())
			obj = set(obj, "start", l.Position())
			obj = set(obj, "byte_start", l.ByteStart())
			obj = set(obj, "length", l.Length())
			obj = set(obj, "byte_length", l.ByteLength())
			obj = set(obj, "fold_level", l.FoldLevel())
			if m := l.MarkerGet(); m != 0 {
				obj = set(obj, "markers", m)
			}
			if l.IsFoldHeader() {
				obj = set(obj, "header", true)
			}
			if !l.Expanded() {
				obj = set(obj, "expanded", false)
			}
			if !l.Visible() {
				obj = set(obj, "visible", false)
			}
			if a := l.Annotation(); a.Text != "" {
				obj = set(obj, "annotation", a.Text)
			}
			if m := l.MarginText(); m.Text != "" {
				obj = set(obj, "margin", m.Text)
			}
			if err == nil {
				out, err = sjson.SetRawBytes(out, "lines.-1", obj)
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("encoding line table: %w", err)
	}
	return out, nil
}

// textColumnWidth bounds the TEXT column, in terminal cells.
const textColumnWidth = 48

// WriteText writes the line table as aligned columns, one row per line.
func WriteText(w io.Writer, e *engine.Engine) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tSTART\tBYTE\tLEN\tMARKERS\tFOLD\tTEXT")
	e.View(func(c *lines.Collection) {
		for _, l := range c.All() {
			markers := "-"
			if m := l.MarkerGet(); m != 0 {
				markers = "0x" + strconv.FormatUint(uint64(m), 16)
			}
			fold := strconv.Itoa(l.FoldLevel() & native.FoldLevelNumberMask)
			if l.IsFoldHeader() {
				fold += "+"
			}
			if !l.Visible() {
				fold += " hidden"
			}
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
				l.Index(), l.Position(), l.ByteStart(), l.Length(), markers, fold, runewidth.Truncate(strconv.Quote(l.Text()), textColumnWidth, "…"))
		}
	})
	return tw.Flush()
}
