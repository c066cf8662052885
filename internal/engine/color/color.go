// Package color provides the platform-neutral color used by marker
// definitions and styles, with conversions to the forms other layers need:
// hex strings for configuration, Scintilla's BGR integers for the native
// engine, and tcell colors for terminal front ends.
package color

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned when a color string cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// Color is a packed 0xRRGGBBAA value. The zero value is transparent black.
type Color uint32

// Common colors.
const (
	Black       Color = 0x000000FF
	White       Color = 0xFFFFFFFF
	Red         Color = 0xFF0000FF
	Green       Color = 0x00FF00FF
	Blue        Color = 0x0000FFFF
	Gray        Color = 0x808080FF
	Transparent Color = 0
)

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return RGBA(r, g, b, 0xFF)
}

// RGBA returns a color with the given alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

func (c Color) R() uint8 { return uint8(c >> 24) }
func (c Color) G() uint8 { return uint8(c >> 16) }
func (c Color) B() uint8 { return uint8(c >> 8) }
func (c Color) A() uint8 { return uint8(c) }

// Opaque reports whether the alpha channel is fully set.
func (c Color) Opaque() bool {
	return c.A() == 0xFF
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a uint8) Color {
	return RGBA(c.R(), c.G(), c.B(), a)
}

// Hex returns "#RRGGBB" for opaque colors and "#RRGGBBAA" otherwise.
func (c Color) Hex() string {
	if c.Opaque() {
		return fmt.Sprintf("#%02X%02X%02X", c.R(), c.G(), c.B())
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R(), c.G(), c.B(), c.A())
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// FromHex parses "#RGB", "#RRGGBB" or "#RRGGBBAA", with or without the
// leading '#'.
func FromHex(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	alpha := uint8(0xFF)
	if len(hex) == 8 {
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		alpha = uint8(a)
		hex = hex[:6]
	}
	if len(hex) != 3 && len(hex) != 6 {
		return 0, fmt.Errorf("%w: %q has length %d", ErrInvalidColor, s, len(hex))
	}

	cf, err := colorful.Hex("#" + hex)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return FromColorful(cf).WithAlpha(alpha), nil
}

// Parse accepts a hex color or a color name known to tcell, such as "red"
// or "darkslategray".
func Parse(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidColor)
	}
	if c, err := FromHex(s); err == nil {
		return c, nil
	}
	tc := tcell.GetColor(strings.ToLower(s))
	if tc == tcell.ColorDefault {
		return 0, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c, _ := FromTcell(tc)
	return c, nil
}

// Colorful converts to a go-colorful color, dropping alpha.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R()) / 255,
		G: float64(c.G()) / 255,
		B: float64(c.B()) / 255,
	}
}

// FromColorful converts an opaque go-colorful color, clamping out-of-gamut
// values.
func FromColorful(cf colorful.Color) Color {
	r, g, b := cf.Clamped().RGB255()
	return RGB(r, g, b)
}

// Blend mixes c toward other in CIE L*a*b* space. t is clamped to [0, 1];
// alpha is interpolated linearly.
func (c Color) Blend(other Color, t float64) Color {
	t = max(0, min(1, t))
	mixed := FromColorful(c.Colorful().BlendLab(other.Colorful(), t))
	a := float64(c.A()) + (float64(other.A())-float64(c.A()))*t
	return mixed.WithAlpha(uint8(a + 0.5))
}

// BGR returns the Scintilla colour encoding: red in the low byte.
func (c Color) BGR() int {
	return int(c.R()) | int(c.G())<<8 | int(c.B())<<16
}

// FromBGR converts a Scintilla colour to an opaque Color. Bits above the
// low 24 are ignored.
func FromBGR(v int) Color {
	return RGB(uint8(v), uint8(v>>8), uint8(v>>16))
}

// Tcell converts to a tcell true color. Transparent colors map to
// tcell.ColorDefault.
func (c Color) Tcell() tcell.Color {
	if c.A() == 0 {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(c.R()), int32(c.G()), int32(c.B()))
}

// FromTcell converts a tcell color, including palette colors. It reports
// false for tcell.ColorDefault and other colors without an RGB value.
func FromTcell(tc tcell.Color) (Color, bool) {
	if tc == tcell.ColorDefault {
		return Transparent, false
	}
	r, g, b := tc.RGB()
	if r < 0 || g < 0 || b < 0 {
		return Transparent, false
	}
	return RGB(uint8(r), uint8(g), uint8(b)), true
}
