package engine

import (
	"fmt"
	"strings"

	"github.com/dshills/lineindex/internal/engine/color"
	"github.com/dshills/lineindex/internal/engine/lines"
)

// MarkerSymbol is the shape drawn for a marker in the symbol margin. Values
// match the native SC_MARK_* constants.
type MarkerSymbol int

// Marker symbols.
const (
	SymbolCircle MarkerSymbol = iota
	SymbolRoundRect
	SymbolArrow
	SymbolSmallRect
	SymbolShortArrow
	SymbolEmpty
	SymbolArrowDown
	SymbolMinus
	SymbolPlus
	SymbolVLine
	SymbolLCorner
	SymbolTCorner
	SymbolBoxPlus
	SymbolBoxPlusConnected
	SymbolBoxMinus
	SymbolBoxMinusConnected
	SymbolLCornerCurve
	SymbolTCornerCurve
	SymbolCirclePlus
	SymbolCirclePlusConnected
	SymbolCircleMinus
	SymbolCircleMinusConnected
	SymbolBackground
	SymbolDotDotDot
	SymbolArrows
	SymbolPixmap
	SymbolFullRect
	SymbolLeftRect
	SymbolAvailable
	SymbolUnderline
	SymbolRGBAImage
	SymbolBookmark
	SymbolVerticalBookmark
)

var symbolNames = []string{
	"circle", "roundrect", "arrow", "smallrect", "shortarrow", "empty",
	"arrowdown", "minus", "plus", "vline", "lcorner", "tcorner", "boxplus",
	"boxplusconnected", "boxminus", "boxminusconnected", "lcornercurve",
	"tcornercurve", "circleplus", "circleplusconnected", "circleminus",
	"circleminusconnected", "background", "dotdotdot", "arrows", "pixmap",
	"fullrect", "leftrect", "available", "underline", "rgbaimage", "bookmark",
	"verticalbookmark",
}

// String returns the symbol name used in configuration files.
func (s MarkerSymbol) String() string {
	if s < 0 || int(s) >= len(symbolNames) {
		return fmt.Sprintf("symbol(%d)", int(s))
	}
	return symbolNames[s]
}

// ParseMarkerSymbol returns the symbol with the given name, ignoring case
// and underscores.
func ParseMarkerSymbol(name string) (MarkerSymbol, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "")
	for i, n := range symbolNames {
		if n == key {
			return MarkerSymbol(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown symbol %q", ErrMarkerInvalid, name)
}

// MarkerDefinition describes how a marker number is drawn.
type MarkerDefinition struct {
	Symbol MarkerSymbol
	Fore   color.Color
	Back   color.Color
}

// MarkerCount is the number of marker slots.
const MarkerCount = lines.MarkerMax + 1

// defaultMarkers returns the native engine's initial definitions: black on
// white circles, with the fold margin slots set up for arrow-style folding.
func defaultMarkers() [MarkerCount]MarkerDefinition {
	var defs [MarkerCount]MarkerDefinition
	for i := range defs {
		defs[i] = MarkerDefinition{Symbol: SymbolCircle, Fore: color.Black, Back: color.White}
	}
	for _, m := range []int{
		lines.MarkerFolderEnd, lines.MarkerFolderOpenMid, lines.MarkerFolderMidTail,
		lines.MarkerFolderTail, lines.MarkerFolderSub,
	} {
		defs[m].Symbol = SymbolEmpty
	}
	defs[lines.MarkerFolder].Symbol = SymbolArrow
	defs[lines.MarkerFolderOpen].Symbol = SymbolArrowDown
	return defs
}

// Markers returns a copy of all marker definitions, indexed by marker number.
func (e *Engine) Markers() []MarkerDefinition {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]MarkerDefinition(nil), e.markers[:]...)
}

// MarkerDefinition returns the definition of marker.
func (e *Engine) MarkerDefinition(marker int) (MarkerDefinition, error) {
	if marker < 0 || marker >= MarkerCount {
		return MarkerDefinition{}, fmt.Errorf("%w: %d", ErrMarkerInvalid, marker)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.markers[marker], nil
}

// DefineMarker replaces the definition of marker.
func (e *Engine) DefineMarker(marker int, def MarkerDefinition) error {
	if marker < 0 || marker >= MarkerCount {
		return fmt.Errorf("%w: %d", ErrMarkerInvalid, marker)
	}
	if def.Symbol < 0 || int(def.Symbol) >= len(symbolNames) {
		return fmt.Errorf("%w: marker %d: %v", ErrMarkerInvalid, marker, def.Symbol)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.markers[marker] = def
	return nil
}
