// Package highlight turns document text into per-category marker spans and
// pushes them to a host renderer.
package highlight

import (
	"github.com/phyten/todohl/internal/marker"
	"github.com/phyten/todohl/internal/model"
)

// PositionConverter converts byte offsets of one immutable text snapshot.
type PositionConverter interface {
	PositionAt(offset int) model.Position
}

// Entry holds the spans of one category in document order.
type Entry struct {
	Category string       `json:"category"`
	Spans    []model.Span `json:"spans"`
}

// Set is the complete result of one scan, one entry per registry category in
// registry order.
type Set struct {
	Entries []Entry `json:"entries"`
}

// Spans returns the spans of the named category, nil when unknown.
func (s Set) Spans(category string) []model.Span {
	for _, e := range s.Entries {
		if e.Category == category {
			return e.Spans
		}
	}
	return nil
}

// Total returns the number of spans over all categories.
func (s Set) Total() int {
	n := 0
	for _, e := range s.Entries {
		n += len(e.Spans)
	}
	return n
}

// Scan finds every category's matches in text. Matching is global over the
// whole text and left to right; matches of one category never overlap.
// Positions come from conv, which must describe the same text.
//
// Markers inside string literals are found too: this is plain text scanning
// with no notion of the document's language.
func Scan(reg *marker.Registry, text string, conv PositionConverter) Set {
	cats := reg.Categories()
	set := Set{Entries: make([]Entry, 0, len(cats))}
	for _, c := range cats {
		entry := Entry{Category: c.Name, Spans: []model.Span{}}
		if text != "" {
			// FindAllStringIndex keeps no cursor between calls.
			for _, loc := range c.Pattern.FindAllStringIndex(text, -1) {
				if loc[1] == loc[0] {
					continue
				}
				entry.Spans = append(entry.Spans, model.Span{
					Start: loc[0],
					End:   loc[1],
					Range: model.Range{
						Start: conv.PositionAt(loc[0]),
						End:   conv.PositionAt(loc[1]),
					},
				})
			}
		}
		set.Entries = append(set.Entries, entry)
	}
	return set
}
