package host

import "github.com/phyten/todohl/internal/model"

// TextDocument is the Document used by every host in this module.
type TextDocument struct {
	id    string
	text  string
	lines model.LineIndex
}

func NewTextDocument(id, text string, unit model.ColumnUnit) *TextDocument {
	return &TextDocument{id: id, text: text, lines: model.NewLineIndex(text, unit)}
}

func (d *TextDocument) ID() string {
	return d.id
}

func (d *TextDocument) Text() string {
	return d.text
}

func (d *TextDocument) PositionAt(offset int) model.Position {
	return d.lines.PositionAt(offset)
}

// Lines exposes the line index of the snapshot.
func (d *TextDocument) Lines() model.LineIndex {
	return d.lines
}
