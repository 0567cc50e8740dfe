package model

import (
	"sort"
	"unicode/utf8"
)

// ColumnUnit selects how LineIndex counts columns.
type ColumnUnit int

const (
	// Runes counts Unicode code points from the start of the line.
	Runes ColumnUnit = iota
	// Bytes counts UTF-8 bytes from the start of the line.
	Bytes
)

// LineIndex maps byte offsets of an immutable text to line/column positions.
type LineIndex struct {
	text    string
	offsets []int
	unit    ColumnUnit
}

func NewLineIndex(text string, unit ColumnUnit) LineIndex {
	offsets := make([]int, 1, 64)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return LineIndex{text: text, offsets: offsets, unit: unit}
}

// LineCount returns the number of lines; an empty text has one empty line.
func (x LineIndex) LineCount() int {
	return len(x.offsets)
}

// LineStart returns the byte offset at which line begins.
func (x LineIndex) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= len(x.offsets) {
		return len(x.text)
	}
	return x.offsets[line]
}

// PositionAt converts a byte offset into a position. Offsets outside the text
// are clamped to its bounds.
func (x LineIndex) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(x.text) {
		offset = len(x.text)
	}
	idx := sort.Search(len(x.offsets), func(i int) bool { return x.offsets[i] > offset })
	line := idx - 1
	start := x.offsets[line]
	col := offset - start
	if x.unit == Runes {
		col = utf8.RuneCountInString(x.text[start:offset])
	}
	return Position{Line: line, Col: col}
}
