package color

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestChannels(t *testing.T) {
	c := RGBA(0x12, 0x34, 0x56, 0x78)
	if c.R() != 0x12 || c.G() != 0x34 || c.B() != 0x56 || c.A() != 0x78 {
		t.Errorf("unexpected channels %02x %02x %02x %02x", c.R(), c.G(), c.B(), c.A())
	}
	if c != 0x12345678 {
		t.Errorf("packed value = %#x, want 0x12345678", uint32(c))
	}
	if !RGB(1, 2, 3).Opaque() || c.Opaque() {
		t.Error("Opaque mismatch")
	}
}

func TestFromHex(t *testing.T) {
	tests := []struct {
		hex     string
		want    Color
		wantErr bool
	}{
		{"#FF0000", Red, false},
		{"ff0000", Red, false},
		{"#0f0", Green, false},
		{"#ABC", RGB(0xAA, 0xBB, 0xCC), false},
		{"#11223380", RGBA(0x11, 0x22, 0x33, 0x80), false},
		{" #000000 ", Black, false},
		{"invalid", 0, true},
		{"#GG0000", 0, true},
		{"#12345", 0, true},
		{"#112233ZZ", 0, true},
	}

	for _, tt := range tests {
		got, err := FromHex(tt.hex)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidColor) {
				t.Errorf("FromHex(%q): expected ErrInvalidColor, got %v", tt.hex, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("FromHex(%q): unexpected error: %v", tt.hex, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FromHex(%q) = %v, want %v", tt.hex, got, tt.want)
		}
	}
}

func TestHex(t *testing.T) {
	if got := RGB(0xAB, 0xCD, 0xEF).Hex(); got != "#ABCDEF" {
		t.Errorf("Hex = %q", got)
	}
	if got := RGBA(1, 2, 3, 4).String(); got != "#01020304" {
		t.Errorf("translucent Hex = %q", got)
	}
}

func TestParse(t *testing.T) {
	if c, err := Parse("#00F"); err != nil || c != Blue {
		t.Errorf("Parse(#00F) = %v, %v", c, err)
	}
	c, err := Parse("Red")
	if err != nil {
		t.Fatalf("Parse(Red) failed: %v", err)
	}
	if c.R() != 0xFF || c.G() != 0 || c.B() != 0 {
		t.Errorf("Parse(Red) = %v", c)
	}
	if _, err := Parse("no-such-color"); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("expected ErrInvalidColor, got %v", err)
	}
	if _, err := Parse(""); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("expected ErrInvalidColor for empty input, got %v", err)
	}
}

func TestBGR(t *testing.T) {
	c := RGB(0x11, 0x22, 0x33)
	if got := c.BGR(); got != 0x332211 {
		t.Errorf("BGR = %#x, want 0x332211", got)
	}
	if got := FromBGR(0xFF332211); got != c {
		t.Errorf("FromBGR = %v, want %v", got, c)
	}
}

func TestBlend(t *testing.T) {
	if got := Black.Blend(White, 0); got != Black {
		t.Errorf("Blend(0) = %v, want black", got)
	}
	if got := Black.Blend(White, 1); got != White {
		t.Errorf("Blend(1) = %v, want white", got)
	}
	if got := Black.Blend(White, 5); got != White {
		t.Errorf("Blend should clamp t, got %v", got)
	}
	mid := Black.Blend(White, 0.5)
	if mid.R() <= 0x20 || mid.R() >= 0xE0 || mid.R() != mid.G() {
		t.Errorf("midpoint should be a mid gray, got %v", mid)
	}
	if got := Transparent.Blend(White, 0.5).A(); got != 0x80 {
		t.Errorf("alpha should interpolate linearly, got %#x", got)
	}
}

func TestTcell(t *testing.T) {
	c := RGB(10, 20, 30)
	back, ok := FromTcell(c.Tcell())
	if !ok || back != c {
		t.Errorf("tcell round trip = %v, %v; want %v", back, ok, c)
	}
	if Transparent.Tcell() != tcell.ColorDefault {
		t.Error("transparent should map to the default color")
	}
	if _, ok := FromTcell(tcell.ColorDefault); ok {
		t.Error("default color has no RGB value")
	}
	if got, ok := FromTcell(tcell.ColorRed); !ok || got.R() != 0xFF {
		t.Errorf("palette red = %v, %v", got, ok)
	}
}
