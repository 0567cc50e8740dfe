package highlight

import (
	"strings"

	"github.com/phyten/todohl/internal/model"
)

// Layer is every range displayed with one style.
type Layer struct {
	Style  string
	Ranges []model.Range
}

// Segment is a run of text drawn with one style; Style is empty for plain text.
type Segment struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}

// Segments splits text into lines of styled runs. Range columns are counted
// in runes. Where layers overlap, the later layer wins.
func Segments(text string, layers []Layer) [][]Segment {
	raw := strings.Split(text, "\n")
	lines := make([][]rune, len(raw))
	styles := make([][]string, len(raw))
	for i, l := range raw {
		lines[i] = []rune(strings.TrimSuffix(l, "\r"))
	}
	for _, layer := range layers {
		for _, rg := range layer.Ranges {
			for ln := max(rg.Start.Line, 0); ln <= rg.End.Line && ln < len(lines); ln++ {
				from, to := 0, len(lines[ln])
				if ln == rg.Start.Line {
					from = rg.Start.Col
				}
				if ln == rg.End.Line {
					to = min(rg.End.Col, to)
				}
				if from >= to {
					continue
				}
				if styles[ln] == nil {
					styles[ln] = make([]string, len(lines[ln]))
				}
				for c := from; c < to; c++ {
					styles[ln][c] = layer.Style
				}
			}
		}
	}

	out := make([][]Segment, len(lines))
	for ln, runes := range lines {
		segs := []Segment{}
		st := styles[ln]
		start := 0
		for i := 1; i <= len(runes); i++ {
			if i < len(runes) && styleAt(st, i) == styleAt(st, start) {
				continue
			}
			segs = append(segs, Segment{Text: string(runes[start:i]), Style: styleAt(st, start)})
			start = i
		}
		out[ln] = segs
	}
	return out
}

func styleAt(styles []string, i int) string {
	if styles == nil {
		return ""
	}
	return styles[i]
}
