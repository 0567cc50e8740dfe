package termcolor

import (
	"strconv"
	"strings"
)

type colorKind uint8

const (
	colorNone colorKind = iota
	colorBasic
	colorIndexed
	colorRGB
)

// Color is an SGR color in one of the three terminal encodings. The zero
// value leaves the terminal default in place.
type Color struct {
	kind colorKind
	v    [3]uint8
}

// Basic is one of the eight standard colors, 0-7.
func Basic(n int) Color { return Color{kind: colorBasic, v: [3]uint8{uint8(n & 7)}} }

// Indexed is an entry of the 256-color palette.
func Indexed(n int) Color { return Color{kind: colorIndexed, v: [3]uint8{uint8(n)}} }

func TrueColor(r, g, b uint8) Color { return Color{kind: colorRGB, v: [3]uint8{r, g, b}} }

func (c Color) IsZero() bool { return c.kind == colorNone }

// sgr renders c for the foreground (base 3) or background (base 4).
func (c Color) sgr(base int) string {
	b := strconv.Itoa(base)
	switch c.kind {
	case colorBasic:
		return b + strconv.Itoa(int(c.v[0]))
	case colorIndexed:
		return b + "8;5;" + strconv.Itoa(int(c.v[0]))
	case colorRGB:
		return b + "8;2;" + strconv.Itoa(int(c.v[0])) + ";" + strconv.Itoa(int(c.v[1])) + ";" + strconv.Itoa(int(c.v[2]))
	default:
		return ""
	}
}

// Style is a set of SGR attributes.
type Style struct {
	Bold      bool
	Dim       bool
	Underline bool
	Reverse   bool
	FG        Color
	BG        Color
}

func (s Style) IsZero() bool {
	return len(s.codes()) == 0
}

// Apply wraps text in s and a reset. Disabled or empty styles return text
// unchanged.
func Apply(s Style, text string, enabled bool) string {
	if !enabled || text == "" {
		return text
	}
	codes := s.codes()
	if len(codes) == 0 {
		return text
	}
	return "\x1b[" + strings.Join(codes, ";") + "m" + text + "\x1b[0m"
}

func (s Style) codes() []string {
	var codes []string
	for _, a := range []struct {
		on   bool
		code string
	}{{s.Bold, "1"}, {s.Dim, "2"}, {s.Underline, "4"}, {s.Reverse, "7"}} {
		if a.on {
			codes = append(codes, a.code)
		}
	}
	if !s.FG.IsZero() {
		codes = append(codes, s.FG.sgr(3))
	}
	if !s.BG.IsZero() {
		codes = append(codes, s.BG.sgr(4))
	}
	return codes
}
