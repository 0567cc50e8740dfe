package model

// Position is a zero-based line/column location inside a document.
// The column unit is decided by whoever produced the position (see ColumnUnit).
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Range is a [Start, End) pair of positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Span is one matched marker occurrence: the half-open byte range
// [Start, End) of the scanned snapshot together with the host range for it.
type Span struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	Range Range `json:"range"`
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether the two byte ranges share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}
