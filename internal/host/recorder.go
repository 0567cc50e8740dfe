package host

import (
	"sort"
	"sync"

	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/marker"
	"github.com/phyten/todohl/internal/model"
)

// Application is one recorded ApplyHighlights call.
type Application struct {
	View   string
	Style  string
	Ranges []model.Range
}

// Recorder is an in-memory Host. It keeps what an editor would currently
// display and logs every call made to it.
type Recorder struct {
	mu       sync.Mutex
	active   Document
	styles   map[string]marker.Style
	current  map[string]map[string][]model.Range
	applied  []Application
	notices  []string
	commands map[string]func()
	released []string

	views Listeners[struct{}]
	texts Listeners[Document]
}

var _ Host = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{
		styles:   make(map[string]marker.Style),
		current:  make(map[string]map[string][]model.Range),
		commands: make(map[string]func()),
	}
}

// Open makes doc the active document and fires the view-changed event.
func (r *Recorder) Open(doc Document) {
	r.mu.Lock()
	r.active = doc
	r.mu.Unlock()
	r.views.Emit(struct{}{})
}

// CloseActive leaves the recorder without an active document.
func (r *Recorder) CloseActive() {
	r.mu.Lock()
	r.active = nil
	r.mu.Unlock()
	r.views.Emit(struct{}{})
}

// Edit publishes a new snapshot of doc. It replaces the active document when
// the ids match and fires the text-changed event either way.
func (r *Recorder) Edit(doc Document) {
	r.mu.Lock()
	if r.active != nil && r.active.ID() == doc.ID() {
		r.active = doc
	}
	r.mu.Unlock()
	r.texts.Emit(doc)
}

func (r *Recorder) ActiveDocument() (Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.active != nil
}

func (r *Recorder) OnActiveViewChanged(fn func()) Disposable {
	return r.views.Add(func(struct{}) { fn() })
}

func (r *Recorder) OnTextChanged(fn func(doc Document)) Disposable {
	return r.texts.Add(fn)
}

type recordedStyle struct {
	r   *Recorder
	key string
}

func (s *recordedStyle) Key() string {
	return s.key
}

func (s *recordedStyle) Dispose() error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if _, ok := s.r.styles[s.key]; !ok {
		return errors.Errorf("style %s already released", s.key)
	}
	delete(s.r.styles, s.key)
	for _, byStyle := range s.r.current {
		delete(byStyle, s.key)
	}
	s.r.released = append(s.r.released, s.key)
	return nil
}

func (r *Recorder) CreateHighlightStyle(name string, style marker.Style) (StyleHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.styles[name]; dup {
		return nil, errors.Errorf("style %s already exists", name)
	}
	r.styles[name] = style
	return &recordedStyle{r: r, key: name}, nil
}

func (r *Recorder) ApplyHighlights(view string, h StyleHandle, ranges []model.Range) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.styles[h.Key()]; !ok {
		return errors.Errorf("style %s is not live", h.Key())
	}
	copied := append([]model.Range(nil), ranges...)
	byStyle, ok := r.current[view]
	if !ok {
		byStyle = make(map[string][]model.Range)
		r.current[view] = byStyle
	}
	byStyle[h.Key()] = copied
	r.applied = append(r.applied, Application{View: view, Style: h.Key(), Ranges: copied})
	return nil
}

func (r *Recorder) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, msg)
}

func (r *Recorder) RegisterCommand(name string, fn func()) (Disposable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.commands[name]; dup {
		return nil, errors.Errorf("command %s already registered", name)
	}
	r.commands[name] = fn
	return DisposeFunc(func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.commands, name)
		return nil
	}), nil
}

// RunCommand invokes a registered command the way a user would.
func (r *Recorder) RunCommand(name string) error {
	r.mu.Lock()
	fn, ok := r.commands[name]
	r.mu.Unlock()
	if !ok {
		return errors.Errorf("unknown command: %s", name)
	}
	fn()
	return nil
}

// Current returns the ranges displayed for style in view.
func (r *Recorder) Current(view, style string) []model.Range {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Range(nil), r.current[view][style]...)
}

func (r *Recorder) Applied() []Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Application(nil), r.applied...)
}

func (r *Recorder) Notices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notices...)
}

func (r *Recorder) Released() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.released...)
}

// Styles returns the keys of live styles, sorted.
func (r *Recorder) Styles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.styles))
	for k := range r.styles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *Recorder) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.commands))
	for k := range r.commands {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ListenerCount returns the number of subscribed event callbacks.
func (r *Recorder) ListenerCount() int {
	return r.views.Len() + r.texts.Len()
}
