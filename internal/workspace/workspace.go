// Package workspace is a file-backed set of documents with one active view.
// It implements host.Workspace for the terminal and web hosts.
package workspace

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/host"
	"github.com/phyten/todohl/internal/model"
)

type eventKind int

const (
	viewChanged eventKind = iota
	textChanged
	call
)

type event struct {
	kind eventKind
	doc  host.Document
	fn   func()
}

// Workspace holds immutable document snapshots. Events are queued and
// delivered one at a time by Run or Flush, so listeners never overlap.
type Workspace struct {
	fs afero.Fs

	mu      sync.Mutex
	order   []string
	docs    map[string]*host.TextDocument
	active  string
	pending []event
	wake    chan struct{}

	dispatchMu sync.Mutex
	views      host.Listeners[struct{}]
	texts      host.Listeners[host.Document]
}

var _ host.Workspace = (*Workspace)(nil)

func New(fs afero.Fs) *Workspace {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Workspace{
		fs:   fs,
		docs: make(map[string]*host.TextDocument),
		wake: make(chan struct{}, 1),
	}
}

// Open loads path and adds it to the workspace. The first opened document
// becomes active. Opening a known path reloads it.
func (w *Workspace) Open(path string) (host.Document, error) {
	id := filepath.Clean(path)
	data, err := afero.ReadFile(w.fs, id)
	if err != nil {
		return nil, errors.Errorf("open %s: %w", id, err)
	}
	doc := host.NewTextDocument(id, string(data), model.Runes)

	w.mu.Lock()
	_, known := w.docs[id]
	w.docs[id] = doc
	if !known {
		w.order = append(w.order, id)
	}
	becameActive := w.active == ""
	if becameActive {
		w.active = id
	}
	w.mu.Unlock()

	switch {
	case becameActive:
		w.emit(event{kind: viewChanged})
	case known:
		w.emit(event{kind: textChanged, doc: doc})
	}
	return doc, nil
}

// Reload re-reads path and publishes a new snapshot when its content changed.
func (w *Workspace) Reload(path string) error {
	id := filepath.Clean(path)
	data, err := afero.ReadFile(w.fs, id)
	if err != nil {
		return errors.Errorf("reload %s: %w", id, err)
	}
	return w.SetText(id, string(data))
}

// SetText replaces the content of a known document.
func (w *Workspace) SetText(id, text string) error {
	w.mu.Lock()
	old, ok := w.docs[id]
	if !ok {
		w.mu.Unlock()
		return errors.Errorf("unknown document: %s", id)
	}
	if old.Text() == text {
		w.mu.Unlock()
		return nil
	}
	doc := host.NewTextDocument(id, text, model.Runes)
	w.docs[id] = doc
	w.mu.Unlock()

	w.emit(event{kind: textChanged, doc: doc})
	return nil
}

// Close removes a document. Closing the active one activates its successor.
func (w *Workspace) Close(id string) error {
	w.mu.Lock()
	idx := indexOf(w.order, id)
	if idx < 0 {
		w.mu.Unlock()
		return errors.Errorf("unknown document: %s", id)
	}
	delete(w.docs, id)
	w.order = append(w.order[:idx:idx], w.order[idx+1:]...)
	wasActive := w.active == id
	if wasActive {
		w.active = ""
		if len(w.order) > 0 {
			w.active = w.order[min(idx, len(w.order)-1)]
		}
	}
	w.mu.Unlock()

	if wasActive {
		w.emit(event{kind: viewChanged})
	}
	return nil
}

// Activate switches the active view to id.
func (w *Workspace) Activate(id string) error {
	id = filepath.Clean(id)
	w.mu.Lock()
	if _, ok := w.docs[id]; !ok {
		w.mu.Unlock()
		return errors.Errorf("unknown document: %s", id)
	}
	changed := w.active != id
	w.active = id
	w.mu.Unlock()

	if changed {
		w.emit(event{kind: viewChanged})
	}
	return nil
}

// Next activates the document after the active one, wrapping around.
func (w *Workspace) Next() {
	w.step(1)
}

// Prev activates the document before the active one, wrapping around.
func (w *Workspace) Prev() {
	w.step(-1)
}

func (w *Workspace) step(delta int) {
	w.mu.Lock()
	if len(w.order) < 2 {
		w.mu.Unlock()
		return
	}
	idx := indexOf(w.order, w.active)
	idx = (idx + delta + len(w.order)) % len(w.order)
	w.active = w.order[idx]
	w.mu.Unlock()
	w.emit(event{kind: viewChanged})
}

// Documents returns the ids of all documents in opening order.
func (w *Workspace) Documents() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.order...)
}

func (w *Workspace) Document(id string) (host.Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, ok := w.docs[id]
	return doc, ok
}

func (w *Workspace) ActiveDocument() (host.Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == "" {
		return nil, false
	}
	return w.docs[w.active], true
}

func (w *Workspace) OnActiveViewChanged(fn func()) host.Disposable {
	return w.views.Add(func(struct{}) { fn() })
}

func (w *Workspace) OnTextChanged(fn func(doc host.Document)) host.Disposable {
	return w.texts.Add(fn)
}

// Post queues fn behind the pending events. It runs on the goroutine that
// delivers events, so it never overlaps a listener.
func (w *Workspace) Post(fn func()) {
	w.emit(event{kind: call, fn: fn})
}

func (w *Workspace) emit(e event) {
	w.mu.Lock()
	w.pending = append(w.pending, e)
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run delivers queued events until ctx is done.
func (w *Workspace) Run(ctx context.Context) error {
	w.Flush()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.wake:
			w.Flush()
		}
	}
}

// Flush delivers every queued event on the calling goroutine, including
// events queued by listeners while flushing.
func (w *Workspace) Flush() {
	w.dispatchMu.Lock()
	defer w.dispatchMu.Unlock()
	for {
		w.mu.Lock()
		if len(w.pending) == 0 {
			w.mu.Unlock()
			return
		}
		e := w.pending[0]
		w.pending = w.pending[1:]
		w.mu.Unlock()

		switch e.kind {
		case viewChanged:
			w.views.Emit(struct{}{})
		case textChanged:
			w.texts.Emit(e.doc)
		case call:
			e.fn()
		}
	}
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
