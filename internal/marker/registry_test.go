package marker

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	require.Equal(t, []string{"TODO", "FIXME", "HACK"}, reg.Names())

	todo, ok := reg.Lookup("TODO")
	require.True(t, ok)
	require.Equal(t, "#ff77dd", todo.Style.Color)

	_, ok = reg.Lookup("todo")
	require.False(t, ok, "lookup is case-sensitive")
}

func TestKeywordPattern(t *testing.T) {
	p := KeywordPattern("FIXME")
	cases := []struct {
		in   string
		want string
	}{
		{"x := 1 // FIXME: broken", "// FIXME: broken"},
		{"//FIXME", "//FIXME"},
		{"//\tFIXME trailing\nnext", "//\tFIXME trailing"},
		{"// FIXME crlf\r\nnext", "// FIXME crlf"},
		{"// fixme lower", ""},
		{"# FIXME hash", ""},
		{"//\nFIXME split", ""},
		{"//\r\nFIXME split", ""},
		{"//\u00a0FIXME nbsp", "//\u00a0FIXME nbsp"},
		{"//\u3000\vFIXME ideographic", "//\u3000\vFIXME ideographic"},
		{"//\u2028FIXME separator", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, p.FindString(tc.in), "input %q", tc.in)
	}
}

func TestDefaultCategoriesAreMutuallyExclusive(t *testing.T) {
	reg := Default()
	for _, c := range reg.Categories() {
		for _, other := range reg.Categories() {
			if c.Name == other.Name {
				continue
			}
			require.False(t, other.Pattern.MatchString("// "+c.Name+" text"), "%s pattern matched %s", other.Name, c.Name)
		}
	}
}

func TestNewRegistryValidation(t *testing.T) {
	good := Category{Name: "NOTE", Pattern: KeywordPattern("NOTE"), Style: Style{Color: "#00ff00"}}

	_, err := NewRegistry(good, good)
	require.ErrorContains(t, err, "duplicate")

	_, err = NewRegistry(Category{Name: " ", Pattern: good.Pattern, Style: good.Style})
	require.Error(t, err)

	_, err = NewRegistry(Category{Name: "X", Style: good.Style})
	require.ErrorContains(t, err, "no pattern")

	_, err = NewRegistry(Category{Name: "X", Pattern: regexp.MustCompile("X"), Style: Style{Color: "pink"}})
	require.Error(t, err)

	reg, err := NewRegistry(good)
	require.NoError(t, err)
	require.Equal(t, 1, reg.Len())
	require.Equal(t, good.Style.Background(), good.Style.BorderColor())
}

func TestCategoriesReturnsCopy(t *testing.T) {
	reg := Default()
	cats := reg.Categories()
	cats[0].Name = "CHANGED"
	require.Equal(t, "TODO", reg.Names()[0])
}
