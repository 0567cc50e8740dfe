// Package web is a browser host: it keeps the highlights applied to the
// active document and serves them to a small polling UI.
package web

import (
	"sort"
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/highlight"
	"github.com/phyten/todohl/internal/host"
	"github.com/phyten/todohl/internal/marker"
	"github.com/phyten/todohl/internal/model"
)

const maxNotices = 20

// Source provides the document shown by the UI.
type Source interface {
	ActiveDocument() (host.Document, bool)
}

type Notice struct {
	Seq     int       `json:"seq"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Renderer is a host.Renderer whose output is read over HTTP.
type Renderer struct {
	src Source
	now func() time.Time

	mu       sync.RWMutex
	order    []string
	styles   map[string]marker.Style
	ranges   map[string]map[string][]model.Range
	scanned  map[string]host.Document
	commands map[string]func()
	notices  []Notice
	seq      int
	version  uint64
}

var (
	_ host.Renderer = (*Renderer)(nil)
	_ host.Flusher  = (*Renderer)(nil)
)

func NewRenderer(src Source) *Renderer {
	return &Renderer{
		src:      src,
		now:      time.Now,
		styles:   make(map[string]marker.Style),
		ranges:   make(map[string]map[string][]model.Range),
		scanned:  make(map[string]host.Document),
		commands: make(map[string]func()),
	}
}

type webStyle struct {
	r    *Renderer
	name string
}

func (s *webStyle) Key() string {
	return s.name
}

func (s *webStyle) Dispose() error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.styles[s.name]; !ok {
		return errors.Errorf("style %s already released", s.name)
	}
	delete(s.r.styles, s.name)
	for i, n := range s.r.order {
		if n == s.name {
			s.r.order = append(s.r.order[:i:i], s.r.order[i+1:]...)
			break
		}
	}
	for _, byStyle := range s.r.ranges {
		delete(byStyle, s.name)
	}
	s.r.version++
	return nil
}

func (r *Renderer) CreateHighlightStyle(name string, style marker.Style) (host.StyleHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.styles[name]; dup {
		return nil, errors.Errorf("style %s already exists", name)
	}
	r.styles[name] = style
	r.order = append(r.order, name)
	return &webStyle{r: r, name: name}, nil
}

func (r *Renderer) ApplyHighlights(view string, h host.StyleHandle, ranges []model.Range) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.styles[h.Key()]; !ok {
		return errors.Errorf("style %s is not live", h.Key())
	}
	byStyle, ok := r.ranges[view]
	if !ok {
		byStyle = make(map[string][]model.Range)
		r.ranges[view] = byStyle
	}
	byStyle[h.Key()] = append([]model.Range(nil), ranges...)
	return nil
}

// Flush publishes the ranges applied since the last flush to polling clients.
// doc is kept so the ranges are always drawn over the text they came from.
func (r *Renderer) Flush(doc host.Document) error {
	r.mu.Lock()
	r.scanned[doc.ID()] = doc
	r.version++
	r.mu.Unlock()
	return nil
}

func (r *Renderer) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.notices = append(r.notices, Notice{Seq: r.seq, Message: msg, Time: r.now()})
	if len(r.notices) > maxNotices {
		r.notices = append([]Notice(nil), r.notices[len(r.notices)-maxNotices:]...)
	}
	r.version++
}

func (r *Renderer) RegisterCommand(name string, fn func()) (host.Disposable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.commands[name]; dup {
		return nil, errors.Errorf("command %s already registered", name)
	}
	r.commands[name] = fn
	return host.DisposeFunc(func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.commands, name)
		return nil
	}), nil
}

// Run invokes a registered command.
func (r *Renderer) Run(name string) error {
	r.mu.RLock()
	fn, ok := r.commands[name]
	r.mu.RUnlock()
	if !ok {
		return errors.Errorf("unknown command: %s", name)
	}
	fn()
	return nil
}

type StyleView struct {
	Name       string `json:"name"`
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Border     string `json:"border"`
}

// Snapshot is the payload of /api/highlights.
type Snapshot struct {
	View     string                `json:"view"`
	Version  uint64                `json:"version"`
	Styles   []StyleView           `json:"styles"`
	Counts   map[string]int        `json:"counts"`
	Lines    [][]highlight.Segment `json:"lines"`
	Notices  []Notice              `json:"notices"`
	Commands []string              `json:"commands"`
}

// Snapshot returns what the UI should display right now. The active document
// only selects the view; its lines come from the last flushed snapshot, so
// edits that have not been rescanned yet are not shown.
func (r *Renderer) Snapshot() Snapshot {
	doc, ok := r.src.ActiveDocument()

	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := Snapshot{
		Version:  r.version,
		Styles:   make([]StyleView, 0, len(r.order)),
		Counts:   make(map[string]int, len(r.order)),
		Lines:    [][]highlight.Segment{},
		Notices:  append([]Notice{}, r.notices...),
		Commands: make([]string, 0, len(r.commands)),
	}
	for name := range r.commands {
		snap.Commands = append(snap.Commands, name)
	}
	sort.Strings(snap.Commands)
	for _, name := range r.order {
		st := r.styles[name]
		snap.Styles = append(snap.Styles, StyleView{
			Name:       name,
			Background: st.Background().Hex(),
			Foreground: st.Foreground().Hex(),
			Border:     st.BorderColor().Hex(),
		})
	}
	if !ok {
		return snap
	}
	snap.View = doc.ID()
	scanned, ok := r.scanned[snap.View]
	if !ok {
		return snap
	}
	layers := make([]highlight.Layer, 0, len(r.order))
	for _, name := range r.order {
		rs := r.ranges[snap.View][name]
		snap.Counts[name] = len(rs)
		layers = append(layers, highlight.Layer{Style: name, Ranges: rs})
	}
	snap.Lines = highlight.Segments(scanned.Text(), layers)
	return snap
}
