// Package textutil measures and lays out text by terminal display columns.
package textutil

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// CSI and OSC escape sequences.
var ansiRe = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)

func StripANSI(s string) string {
	if !strings.ContainsRune(s, 0x1b) {
		return s
	}
	return ansiRe.ReplaceAllString(s, "")
}

// VisibleWidth is the number of columns s occupies, ignoring escape
// sequences. Grapheme clusters are measured as a unit.
func VisibleWidth(s string) int {
	width := 0
	g := uniseg.NewGraphemes(StripANSI(s))
	for g.Next() {
		width += runewidth.StringWidth(g.Str())
	}
	return width
}

// Clip returns the longest prefix of s that fits in w columns and its width.
// Grapheme clusters are never split. s must not contain escape sequences.
func Clip(s string, w int) (string, int) {
	if w <= 0 || s == "" {
		return "", 0
	}
	used := 0
	end := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := runewidth.StringWidth(g.Str())
		if used+cw > w {
			break
		}
		used += cw
		_, end = g.Positions()
	}
	return s[:end], used
}

// Truncate shortens s to w columns. When text is dropped, ellipsis replaces
// the tail if it fits.
func Truncate(s string, w int, ellipsis string) string {
	s = StripANSI(s)
	if VisibleWidth(s) <= w {
		return s
	}
	ew := runewidth.StringWidth(ellipsis)
	if ew > w {
		ellipsis, ew = "", 0
	}
	head, _ := Clip(s, w-ew)
	return head + ellipsis
}

// ExpandTabs replaces tabs with spaces up to the next multiple of tabWidth.
// col is the column s starts at and the column after s is returned, so the
// pieces of one line can be expanded in turn.
func ExpandTabs(s string, col, tabWidth int) (string, int) {
	if tabWidth <= 0 {
		tabWidth = 8
	}
	if !strings.ContainsRune(s, '\t') {
		return s, col + VisibleWidth(s)
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		seg := g.Str()
		if seg == "\t" {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteString(seg)
		col += runewidth.StringWidth(seg)
	}
	return b.String(), col
}

// PadLeft right-aligns s in w columns.
func PadLeft(s string, w int) string {
	if pad := w - VisibleWidth(s); pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}

// PadRight appends spaces until s is w columns wide. Escape sequences in s
// take no columns.
func PadRight(s string, w int) string {
	if pad := w - VisibleWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
