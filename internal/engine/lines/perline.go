package lines

import "github.com/dshills/lineindex/internal/engine/native"

// multibyte caches whether a line holds any character wider than one byte.
type multibyte uint8

const (
	multibyteUnknown multibyte = iota
	multibyteNo
	multibyteYes
)

// StyledText is annotation or margin text with its styling. Styles holds one
// style per UTF-16 code unit of Text; when it is empty the whole text uses
// Style.
type StyledText struct {
	Text   string
	Style  int
	Styles []byte
}

// PerLine is the record kept for every line, plus one trailing sentinel.
//
// Start and CharStart are stored relative to the collection's pending step:
// entries past the step line lag by the step delta until the step moves over
// them. Use the Collection accessors rather than reading them directly.
type PerLine struct {
	Start      int
	CharStart  int
	Markers    uint32
	Annotation *StyledText
	Margin     *StyledText
	FoldLevel  int
	Expanded   bool
	Visible    bool

	multibyte multibyte
}

func newPerLine(start, charStart int) PerLine {
	return PerLine{
		Start:     start,
		CharStart: charStart,
		FoldLevel: native.FoldLevelBase,
		Expanded:  true,
		Visible:   true,
	}
}
