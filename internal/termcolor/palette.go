package termcolor

import (
	"github.com/phyten/todohl/internal/colorutil"
)

func HeaderStyle() Style {
	return Style{Bold: true, Underline: true}
}

func GutterStyle() Style {
	return Style{Dim: true}
}

func StatusStyle() Style {
	return Style{Reverse: true}
}

// HighlightStyle paints text on bg with a black or white foreground chosen
// for contrast, downsampled to what profile supports.
func HighlightStyle(bg colorutil.RGB, profile Profile) Style {
	fg := colorutil.AutoTextColor(bg)
	switch profile {
	case ProfileTrueColor:
		return Style{FG: TrueColor(fg.R, fg.G, fg.B), BG: TrueColor(bg.R, bg.G, bg.B)}
	case ProfileANSI256:
		return Style{FG: Indexed(rgbToANSI256(fg.R, fg.G, fg.B)), BG: Indexed(rgbToANSI256(bg.R, bg.G, bg.B))}
	default:
		return Style{FG: Basic(nearestBasic(fg)), BG: Basic(nearestBasic(bg))}
	}
}

// basic8 lists the xterm defaults for SGR colors 30-37.
var basic8 = [8]colorutil.RGB{
	{R: 0, G: 0, B: 0},
	{R: 205, G: 0, B: 0},
	{R: 0, G: 205, B: 0},
	{R: 205, G: 205, B: 0},
	{R: 0, G: 0, B: 238},
	{R: 205, G: 0, B: 205},
	{R: 0, G: 205, B: 205},
	{R: 229, G: 229, B: 229},
}

func nearestBasic(c colorutil.RGB) int {
	best, bestDist := 0, -1
	for i, p := range basic8 {
		dr := int(c.R) - int(p.R)
		dg := int(c.G) - int(p.G)
		db := int(c.B) - int(p.B)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func rgbToANSI256(r, g, b uint8) int {
	if r == g && g == b {
		if r < 8 {
			return 16
		}
		if r > 248 {
			return 231
		}
		return 232 + (int(r)-8)*24/247
	}
	rr := int(r) * 5 / 255
	gg := int(g) * 5 / 255
	bb := int(b) * 5 / 255
	return 16 + 36*rr + 6*gg + bb
}
