package textutil

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func narrowAmbiguous(t *testing.T) {
	t.Helper()
	prev := runewidth.EastAsianWidth
	runewidth.EastAsianWidth = false
	runewidth.DefaultCondition = runewidth.NewCondition()
	t.Cleanup(func() {
		runewidth.EastAsianWidth = prev
		runewidth.DefaultCondition = runewidth.NewCondition()
	})
}

func TestVisibleWidth(t *testing.T) {
	narrowAmbiguous(t)
	cases := map[string]struct {
		in   string
		want int
	}{
		"ascii":     {"// TODO", 7},
		"wide":      {"課題", 4},
		"combining": {"é", 1},
		"colored":   {"\x1b[45m// HACK\x1b[0m", 7},
		"empty":     {"", 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := VisibleWidth(tc.in); got != tc.want {
				t.Fatalf("VisibleWidth(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestClip(t *testing.T) {
	narrowAmbiguous(t)
	cases := []struct {
		in       string
		w        int
		want     string
		wantCols int
	}{
		{"// FIXME", 5, "// FI", 5},
		{"課題あり", 5, "課題", 4},
		{"éx", 1, "é", 1},
		{"abc", 0, "", 0},
		{"abc", 10, "abc", 3},
	}
	for _, tc := range cases {
		got, cols := Clip(tc.in, tc.w)
		if got != tc.want || cols != tc.wantCols {
			t.Fatalf("Clip(%q, %d) = %q,%d want %q,%d", tc.in, tc.w, got, cols, tc.want, tc.wantCols)
		}
	}
}

func TestTruncate(t *testing.T) {
	narrowAmbiguous(t)
	cases := []struct {
		in       string
		w        int
		ellipsis string
		want     string
	}{
		{"TODO Highlighter is running!", 10, "…", "TODO High…"},
		{"short", 10, "…", "short"},
		{"こんにちは世界", 6, "…", "こん…"},
		{"abc", 1, "...", "a"},
		{"\x1b[7mstatus\x1b[0m", 4, "", "stat"},
	}
	for _, tc := range cases {
		got := Truncate(tc.in, tc.w, tc.ellipsis)
		if got != tc.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.w, got, tc.want)
		}
		if VisibleWidth(got) > tc.w {
			t.Fatalf("Truncate(%q, %d) is %d columns wide", tc.in, tc.w, VisibleWidth(got))
		}
	}
}

func TestStripANSI(t *testing.T) {
	cases := map[string]string{
		"plain": "plain",
		"\x1b[38;2;0;0;0;48;2;255;119;221mTODO\x1b[0m":    "TODO",
		"\x1b]8;;https://example.com\x07link\x1b]8;;\x07": "link",
	}
	for in, want := range cases {
		if got := StripANSI(in); got != want {
			t.Fatalf("StripANSI(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPadLeft(t *testing.T) {
	narrowAmbiguous(t)
	if got := PadLeft("7", 3); got != "  7" {
		t.Fatalf("PadLeft = %q", got)
	}
	if got := PadLeft("1234", 3); got != "1234" {
		t.Fatalf("PadLeft must not cut: %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("\x1b[1mID\x1b[0m", 4); got != "\x1b[1mID\x1b[0m  " {
		t.Fatalf("escape codes must not count: %q", got)
	}
	if got := PadRight("漢", 3); got != "漢 " {
		t.Fatalf("wide rune takes two columns: %q", got)
	}
}

func TestExpandTabs(t *testing.T) {
	narrowAmbiguous(t)
	got, col := ExpandTabs("a\tb", 0, 4)
	if got != "a   b" || col != 5 {
		t.Fatalf("ExpandTabs = %q,%d", got, col)
	}
	got, col = ExpandTabs("\tx", 6, 4)
	if got != "  x" || col != 9 {
		t.Fatalf("continued ExpandTabs = %q,%d", got, col)
	}
	got, col = ExpandTabs("plain", 3, 4)
	if got != "plain" || col != 8 {
		t.Fatalf("tab-free ExpandTabs = %q,%d", got, col)
	}
	got, _ = ExpandTabs("\t", 0, 0)
	if got != "        " {
		t.Fatalf("default tab width = %q", got)
	}
}
