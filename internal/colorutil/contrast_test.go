package colorutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContrastRatio(t *testing.T) {
	cases := []struct {
		name     string
		fg, bg   RGB
		minRatio float64
	}{
		{"blackOnWhite", RGB{0, 0, 0}, RGB{255, 255, 255}, 4.5},
		{"whiteOnBlack", RGB{255, 255, 255}, RGB{0, 0, 0}, 4.5},
		{"darkRedOnWhite", RGB{185, 28, 28}, RGB{255, 255, 255}, 4.5},
		{"amberOnBlack", RGB{245, 158, 11}, RGB{17, 24, 39}, 4.5},
	}
	for _, tc := range cases {
		ratio := ContrastRatio(tc.fg, tc.bg)
		require.GreaterOrEqual(t, ratio, tc.minRatio, tc.name)
	}
}

func TestLuminanceBounds(t *testing.T) {
	require.InDelta(t, 0.0, black.Luminance(), 1e-9)
	require.InDelta(t, 1.0, white.Luminance(), 1e-9)
	require.InDelta(t, 21.0, ContrastRatio(white, black), 1e-9)
	require.InDelta(t, 1.0, ContrastRatio(RGB{0xbb, 0x88, 0xff}, RGB{0xbb, 0x88, 0xff}), 1e-9)
}

func TestAutoTextColor(t *testing.T) {
	cases := []struct {
		name string
		bg   RGB
		want RGB
	}{
		{"lightBackground", RGB{255, 247, 237}, black},
		{"darkBackground", RGB{15, 23, 42}, white},
		{"medium", RGB{120, 113, 108}, white},
		{"todoPink", RGB{0xff, 0x77, 0xdd}, black},
		{"fixmeOrange", RGB{0xff, 0x99, 0x00}, black},
		{"hackPurple", RGB{0xbb, 0x88, 0xff}, black},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, AutoTextColor(tc.bg), tc.name)
	}
}

func TestParseHex(t *testing.T) {
	got, err := ParseHex("#ff9900")
	require.NoError(t, err)
	require.Equal(t, RGB{0xff, 0x99, 0x00}, got)
	require.Equal(t, "#ff9900", got.Hex())

	short, err := ParseHex("b8f")
	require.NoError(t, err)
	require.Equal(t, RGB{0xbb, 0x88, 0xff}, short)

	for _, bad := range []string{"", "#12345", "#gggggg", "#1234567"} {
		_, err := ParseHex(bad)
		require.Error(t, err, bad)
	}
}
