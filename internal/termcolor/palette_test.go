package termcolor

import (
	"testing"

	"github.com/phyten/todohl/internal/colorutil"
)

func TestHeaderStyle(t *testing.T) {
	s := HeaderStyle()
	if !s.Bold || !s.Underline {
		t.Fatalf("header style should enable bold+underline: %+v", s)
	}
}

func TestHighlightStyleProfiles(t *testing.T) {
	pink := colorutil.RGB{R: 0xff, G: 0x77, B: 0xdd}

	tc := HighlightStyle(pink, ProfileTrueColor)
	if tc.BG != TrueColor(0xff, 0x77, 0xdd) {
		t.Fatalf("truecolor background mismatch: %+v", tc)
	}
	if tc.FG != TrueColor(0, 0, 0) {
		t.Fatalf("pink should get black text: %+v", tc)
	}

	c256 := HighlightStyle(pink, ProfileANSI256)
	if c256.BG != Indexed(rgbToANSI256(0xff, 0x77, 0xdd)) {
		t.Fatalf("256 background mismatch: %+v", c256)
	}

	basic := HighlightStyle(pink, ProfileBasic8)
	if basic.BG != Basic(5) || basic.FG != Basic(0) {
		t.Fatalf("pink should map to magenta in 8 colors: %+v", basic)
	}
}

func TestHighlightStyleDarkBackground(t *testing.T) {
	navy := colorutil.RGB{R: 0, G: 0, B: 0x80}
	s := HighlightStyle(navy, ProfileTrueColor)
	if s.FG != TrueColor(255, 255, 255) {
		t.Fatalf("navy should get white text: %+v", s)
	}
}

func TestNearestBasic(t *testing.T) {
	cases := map[colorutil.RGB]int{
		{R: 0, G: 0, B: 0}:       0,
		{R: 255, G: 153, B: 0}:   3,
		{R: 250, G: 250, B: 250}: 7,
		{R: 10, G: 10, B: 230}:   4,
	}
	for in, want := range cases {
		if got := nearestBasic(in); got != want {
			t.Fatalf("nearestBasic(%v)=%d want %d", in, got, want)
		}
	}
}

func TestRGBToANSI256Grays(t *testing.T) {
	if got := rgbToANSI256(0, 0, 0); got != 16 {
		t.Fatalf("black should map to 16, got %d", got)
	}
	if got := rgbToANSI256(255, 255, 255); got != 231 {
		t.Fatalf("white should map to 231, got %d", got)
	}
	if got := rgbToANSI256(128, 128, 128); got < 232 || got > 255 {
		t.Fatalf("mid gray should land on the gray ramp, got %d", got)
	}
}
