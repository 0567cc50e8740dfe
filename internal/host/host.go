// Package host describes the editor surface the highlighter talks to.
//
// A host is split in two halves: a Workspace that owns documents, the active
// view and change events, and a Renderer that owns styles, displayed ranges,
// notifications and user commands. Concrete hosts (neovim, terminal, web)
// implement both, usually by composing a workspace with a renderer.
package host

import (
	"github.com/phyten/todohl/internal/marker"
	"github.com/phyten/todohl/internal/model"
)

// Document is an immutable snapshot of a text document.
type Document interface {
	ID() string
	Text() string
	// PositionAt converts a byte offset of Text into a position.
	PositionAt(offset int) model.Position
}

// Disposable releases a resource acquired from the host.
type Disposable interface {
	Dispose() error
}

// DisposeFunc adapts a function to Disposable.
type DisposeFunc func() error

func (f DisposeFunc) Dispose() error {
	if f == nil {
		return nil
	}
	return f()
}

// StyleHandle is a rendering style created by a Renderer.
type StyleHandle interface {
	Disposable
	Key() string
}

type Workspace interface {
	// ActiveDocument returns the document of the active view, if any.
	ActiveDocument() (Document, bool)
	OnActiveViewChanged(fn func()) Disposable
	OnTextChanged(fn func(doc Document)) Disposable
}

type Renderer interface {
	CreateHighlightStyle(name string, style marker.Style) (StyleHandle, error)
	// ApplyHighlights replaces every range displayed with h in view.
	ApplyHighlights(view string, h StyleHandle, ranges []model.Range) error
	Notify(msg string)
	RegisterCommand(name string, fn func()) (Disposable, error)
}

// Flusher is implemented by renderers that batch ApplyHighlights calls and
// draw once per update. doc is the snapshot the ranges were computed from;
// renderers draw it rather than whatever text the workspace holds by now.
type Flusher interface {
	Flush(doc Document) error
}

type Host interface {
	Workspace
	Renderer
}

type composite struct {
	Workspace
	Renderer
}

type flushingComposite struct {
	composite
	Flusher
}

// Compose joins a workspace and a renderer into a Host. The result is a
// Flusher when r is one.
func Compose(ws Workspace, r Renderer) Host {
	c := composite{Workspace: ws, Renderer: r}
	if f, ok := r.(Flusher); ok {
		return flushingComposite{composite: c, Flusher: f}
	}
	return c
}
