package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineIndexPositionAt(t *testing.T) {
	idx := NewLineIndex("ab\ncd\n\nef", Runes)
	require.Equal(t, 4, idx.LineCount())

	cases := []struct {
		offset int
		want   Position
	}{
		{0, Position{0, 0}},
		{2, Position{0, 2}},
		{3, Position{1, 0}},
		{5, Position{1, 2}},
		{6, Position{2, 0}},
		{7, Position{3, 0}},
		{9, Position{3, 2}},
		{-4, Position{0, 0}},
		{100, Position{3, 2}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, idx.PositionAt(tc.offset), "offset %d", tc.offset)
	}
}

func TestLineIndexColumnUnits(t *testing.T) {
	text := "// é TODO"
	offset := len("// é ")

	runes := NewLineIndex(text, Runes)
	require.Equal(t, Position{Line: 0, Col: 5}, runes.PositionAt(offset))

	bytes := NewLineIndex(text, Bytes)
	require.Equal(t, Position{Line: 0, Col: 6}, bytes.PositionAt(offset))
}

func TestLineIndexEmptyText(t *testing.T) {
	idx := NewLineIndex("", Runes)
	require.Equal(t, 1, idx.LineCount())
	require.Equal(t, Position{}, idx.PositionAt(0))
	require.Equal(t, 0, idx.LineStart(3))
}

func TestSpanOverlaps(t *testing.T) {
	a := Span{Start: 0, End: 4}
	require.True(t, a.Overlaps(Span{Start: 3, End: 6}))
	require.False(t, a.Overlaps(Span{Start: 4, End: 6}))
	require.Equal(t, 4, a.Len())
}
