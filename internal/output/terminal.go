package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/highlight"
	"github.com/phyten/todohl/internal/host"
	"github.com/phyten/todohl/internal/marker"
	"github.com/phyten/todohl/internal/model"
	"github.com/phyten/todohl/internal/termcolor"
	"github.com/phyten/todohl/internal/textutil"
)

const clearScreen = "\x1b[H\x1b[2J"

type DrawOptions struct {
	Color    termcolor.Settings
	Gutter   bool
	TabWidth int
	// Width clips lines to this many columns. Zero disables clipping.
	Width int
}

const ellipsis = "…"

// Terminal is a host.Renderer that redraws the whole active document on
// every flush.
type Terminal struct {
	out   io.Writer
	opts  DrawOptions
	clear bool

	// wmu keeps redraws and notifications from interleaving on out.
	wmu sync.Mutex

	mu       sync.Mutex
	order    []string
	styles   map[string]marker.Style
	ranges   map[string]map[string][]model.Range
	commands map[string]func()
	status   string
}

var (
	_ host.Renderer = (*Terminal)(nil)
	_ host.Flusher  = (*Terminal)(nil)
)

func NewTerminal(out io.Writer, opts DrawOptions) *Terminal {
	return &Terminal{
		out:      out,
		opts:     opts,
		clear:    opts.Color.Enabled,
		styles:   make(map[string]marker.Style),
		ranges:   make(map[string]map[string][]model.Range),
		commands: make(map[string]func()),
	}
}

type terminalStyle struct {
	t    *Terminal
	name string
}

func (s *terminalStyle) Key() string {
	return s.name
}

func (s *terminalStyle) Dispose() error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	if _, ok := s.t.styles[s.name]; !ok {
		return errors.Errorf("style %s already released", s.name)
	}
	delete(s.t.styles, s.name)
	if i := indexOf(s.t.order, s.name); i >= 0 {
		s.t.order = append(s.t.order[:i:i], s.t.order[i+1:]...)
	}
	for _, byStyle := range s.t.ranges {
		delete(byStyle, s.name)
	}
	return nil
}

func (t *Terminal) CreateHighlightStyle(name string, style marker.Style) (host.StyleHandle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.styles[name]; dup {
		return nil, errors.Errorf("style %s already exists", name)
	}
	t.styles[name] = style
	t.order = append(t.order, name)
	return &terminalStyle{t: t, name: name}, nil
}

func (t *Terminal) ApplyHighlights(view string, h host.StyleHandle, ranges []model.Range) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.styles[h.Key()]; !ok {
		return errors.Errorf("style %s is not live", h.Key())
	}
	byStyle, ok := t.ranges[view]
	if !ok {
		byStyle = make(map[string][]model.Range)
		t.ranges[view] = byStyle
	}
	byStyle[h.Key()] = append([]model.Range(nil), ranges...)
	return nil
}

// Flush draws doc with the ranges applied to its view so far. doc is the
// snapshot those ranges were scanned from.
func (t *Terminal) Flush(doc host.Document) error {
	if doc == nil {
		return errors.New("no document to draw")
	}
	view := doc.ID()

	t.mu.Lock()
	layers := make([]highlight.Layer, 0, len(t.order))
	counts := make([]string, 0, len(t.order))
	for _, name := range t.order {
		rs := t.ranges[view][name]
		layers = append(layers, highlight.Layer{Style: name, Ranges: rs})
		counts = append(counts, fmt.Sprintf("%s %d", name, len(rs)))
	}
	styles := make(map[string]termcolor.Style, len(t.styles))
	for name, st := range t.styles {
		styles[name] = termcolor.HighlightStyle(st.Background(), t.opts.Color.Profile)
	}
	status := t.status
	t.mu.Unlock()

	var b strings.Builder
	if t.clear {
		b.WriteString(clearScreen)
	}
	header := fmt.Sprintf("%s  %s", view, strings.Join(counts, "  "))
	b.WriteString(termcolor.Apply(termcolor.HeaderStyle(), header, t.opts.Color.Enabled))
	b.WriteString("\n")
	drawDocument(&b, doc.Text(), layers, func(name string) termcolor.Style { return styles[name] }, t.opts)
	if status != "" {
		if t.opts.Width > 0 {
			status = textutil.Truncate(status, t.opts.Width, ellipsis)
		}
		b.WriteString(termcolor.Apply(termcolor.StatusStyle(), status, t.opts.Color.Enabled))
		b.WriteString("\n")
	}
	return t.write(b.String())
}

// Notify prints msg right away and keeps it as the status line of later
// redraws.
func (t *Terminal) Notify(msg string) {
	t.mu.Lock()
	t.status = msg
	t.mu.Unlock()
	_ = t.write(termcolor.Apply(termcolor.StatusStyle(), msg, t.opts.Color.Enabled) + "\n")
}

func (t *Terminal) write(s string) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	_, err := io.WriteString(t.out, s)
	return err
}

func (t *Terminal) RegisterCommand(name string, fn func()) (host.Disposable, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.commands[name]; dup {
		return nil, errors.Errorf("command %s already registered", name)
	}
	t.commands[name] = fn
	return host.DisposeFunc(func() error {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.commands, name)
		return nil
	}), nil
}

// Run invokes a registered command.
func (t *Terminal) Run(name string) error {
	t.mu.Lock()
	fn, ok := t.commands[name]
	t.mu.Unlock()
	if !ok {
		return errors.Errorf("unknown command: %s", name)
	}
	fn()
	return nil
}

func (t *Terminal) Commands() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.commands))
	for name := range t.commands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func drawDocument(b *strings.Builder, text string, layers []highlight.Layer, paint func(string) termcolor.Style, opts DrawOptions) {
	lines := highlight.Segments(text, layers)
	if len(lines) > 1 && strings.HasSuffix(text, "\n") {
		lines = lines[:len(lines)-1]
	}
	width := len(strconv.Itoa(len(lines)))
	for i, segs := range lines {
		budget := opts.Width
		if opts.Gutter {
			g := textutil.PadLeft(strconv.Itoa(i+1), width) + " |"
			b.WriteString(termcolor.Apply(termcolor.GutterStyle(), g, opts.Color.Enabled))
			b.WriteString(" ")
			budget -= width + 3
		}
		drawLine(b, segs, paint, opts, budget)
		b.WriteString("\n")
	}
}

// drawLine writes one line of segments. With a positive Width, text past
// budget columns is replaced by an ellipsis.
func drawLine(b *strings.Builder, segs []highlight.Segment, paint func(string) termcolor.Style, opts DrawOptions, budget int) {
	pieces := make([]string, len(segs))
	col := 0
	for i, seg := range segs {
		pieces[i], col = textutil.ExpandTabs(seg.Text, col, opts.TabWidth)
	}
	clipped := opts.Width > 0 && col > budget
	if clipped {
		budget = max(budget-textutil.VisibleWidth(ellipsis), 0)
	}
	for i, seg := range segs {
		s := pieces[i]
		if clipped {
			var w int
			s, w = textutil.Clip(s, budget)
			budget -= w
		}
		if s == "" {
			continue
		}
		if seg.Style != "" {
			s = termcolor.Apply(paint(seg.Style), s, opts.Color.Enabled)
		}
		b.WriteString(s)
	}
	if clipped {
		b.WriteString(termcolor.Apply(termcolor.GutterStyle(), ellipsis, opts.Color.Enabled))
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
