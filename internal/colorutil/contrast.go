// Package colorutil parses hex colors and picks readable text colors.
package colorutil

import (
	"math"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

type RGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	black = RGB{0, 0, 0}
	white = RGB{255, 255, 255}
)

// ParseHex parses "#rrggbb" or "#rgb" (the leading '#' is optional).
func ParseHex(raw string) (RGB, error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return RGB{}, errors.Errorf("invalid hex color: %q", raw)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, errors.Errorf("invalid hex color %q: %w", raw, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex formats the color as lowercase "#rrggbb".
func (c RGB) Hex() string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+i*2] = digits[v>>4]
		b[2+i*2] = digits[v&0x0f]
	}
	return string(b)
}

// channel linearizes one sRGB channel.
func channel(v uint8) float64 {
	c := float64(v) / 255
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// Luminance is the WCAG relative luminance of c, from 0 (black) to 1.
func (c RGB) Luminance() float64 {
	return 0.2126*channel(c.R) + 0.7152*channel(c.G) + 0.0722*channel(c.B)
}

// ContrastRatio is the WCAG contrast ratio of two colors, from 1 to 21.
func ContrastRatio(a, b RGB) float64 {
	hi, lo := a.Luminance(), b.Luminance()
	if hi < lo {
		hi, lo = lo, hi
	}
	return (hi + 0.05) / (lo + 0.05)
}

// AutoTextColor picks black or white text for a highlight on bg. Black wins
// ties and any background it reaches AA contrast on.
func AutoTextColor(bg RGB) RGB {
	onBlack := ContrastRatio(black, bg)
	if onBlack >= 4.5 || onBlack >= ContrastRatio(white, bg) {
		return black
	}
	return white
}
