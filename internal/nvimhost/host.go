// Package nvimhost runs the highlighter inside neovim as a remote plugin.
// Buffers are documents, highlight groups are styles and every style owns a
// namespace, so applying a style only ever clears its own highlights.
package nvimhost

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/neovim/go-client/nvim"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/host"
	"github.com/phyten/todohl/internal/marker"
	"github.com/phyten/todohl/internal/model"
)

// Client is the part of the neovim API the host calls. *nvim.Nvim
// implements it.
type Client interface {
	CurrentBuffer() (nvim.Buffer, error)
	BufferLines(buffer nvim.Buffer, start, end int, strict bool) ([][]byte, error)
	CreateNamespace(name string) (int, error)
	ClearBufferNamespace(buffer nvim.Buffer, nsID, lineStart, lineEnd int) error
	AddBufferHighlight(buffer nvim.Buffer, srcID int, hlGroup string, line, startCol, endCol int) (int, error)
	Command(cmd string) error
	WriteOut(str string) error
}

var _ Client = (*nvim.Nvim)(nil)

// Host implements host.Host on top of a neovim client. Columns are bytes,
// as neovim's highlight API expects.
type Host struct {
	ctx context.Context
	c   Client

	mu       sync.Mutex
	styles   map[string]*style
	commands map[string]func()

	views host.Listeners[struct{}]
	texts host.Listeners[host.Document]
}

var _ host.Host = (*Host)(nil)

func New(ctx context.Context, c Client) *Host {
	return &Host{
		ctx:      ctx,
		c:        c,
		styles:   make(map[string]*style),
		commands: make(map[string]func()),
	}
}

// ViewID is the document id used for a buffer.
func ViewID(buf nvim.Buffer) string {
	return strconv.Itoa(int(buf))
}

func parseView(view string) (nvim.Buffer, error) {
	n, err := strconv.Atoi(view)
	if err != nil {
		return 0, errors.Errorf("invalid buffer view %q: %w", view, err)
	}
	return nvim.Buffer(n), nil
}

// Document reads a buffer. Lines are joined with "\n", so offsets and line
// numbers match the buffer exactly.
func (h *Host) Document(buf nvim.Buffer) (host.Document, error) {
	lines, err := h.c.BufferLines(buf, 0, -1, true)
	if err != nil {
		return nil, errors.Errorf("reading buffer %d: %w", buf, err)
	}
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = string(l)
	}
	return host.NewTextDocument(ViewID(buf), strings.Join(parts, "\n"), model.Bytes), nil
}

func (h *Host) ActiveDocument() (host.Document, bool) {
	buf, err := h.c.CurrentBuffer()
	if err != nil {
		zerolog.Ctx(h.ctx).Warn().Err(err).Msg("current buffer")
		return nil, false
	}
	doc, err := h.Document(buf)
	if err != nil {
		zerolog.Ctx(h.ctx).Warn().Err(err).Msg("active document")
		return nil, false
	}
	return doc, true
}

func (h *Host) OnActiveViewChanged(fn func()) host.Disposable {
	return h.views.Add(func(struct{}) { fn() })
}

func (h *Host) OnTextChanged(fn func(doc host.Document)) host.Disposable {
	return h.texts.Add(fn)
}

// ViewChanged delivers a view-changed event to subscribers.
func (h *Host) ViewChanged() {
	h.views.Emit(struct{}{})
}

// TextChanged delivers a text-changed event for buf.
func (h *Host) TextChanged(buf nvim.Buffer) error {
	doc, err := h.Document(buf)
	if err != nil {
		return err
	}
	h.texts.Emit(doc)
	return nil
}

type style struct {
	h       *Host
	name    string
	group   string
	ns      int
	buffers map[nvim.Buffer]struct{}
}

func (s *style) Key() string {
	return s.name
}

// Dispose clears the style's highlights from every buffer it touched and
// removes its highlight group.
func (s *style) Dispose() error {
	s.h.mu.Lock()
	if s.h.styles[s.name] != s {
		s.h.mu.Unlock()
		return errors.Errorf("style %s already released", s.name)
	}
	delete(s.h.styles, s.name)
	bufs := make([]nvim.Buffer, 0, len(s.buffers))
	for b := range s.buffers {
		bufs = append(bufs, b)
	}
	s.h.mu.Unlock()

	sort.Slice(bufs, func(i, j int) bool { return bufs[i] < bufs[j] })
	var errs []error
	for _, b := range bufs {
		if err := s.h.c.ClearBufferNamespace(b, s.ns, 0, -1); err != nil {
			errs = append(errs, errors.Errorf("clearing %s in buffer %d: %w", s.group, b, err))
		}
	}
	if err := s.h.c.Command("highlight clear " + s.group); err != nil {
		errs = append(errs, errors.Errorf("clearing group %s: %w", s.group, err))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// GroupName is the highlight group created for a category.
func GroupName(name string) string {
	var b strings.Builder
	b.WriteString("TodoHl")
	for _, r := range name {
		if r == '_' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (h *Host) CreateHighlightStyle(name string, st marker.Style) (host.StyleHandle, error) {
	h.mu.Lock()
	_, dup := h.styles[name]
	h.mu.Unlock()
	if dup {
		return nil, errors.Errorf("style %s already exists", name)
	}

	group := GroupName(name)
	ns, err := h.c.CreateNamespace("todohl." + name)
	if err != nil {
		return nil, errors.Errorf("creating namespace for %s: %w", name, err)
	}
	cmd := fmt.Sprintf("highlight %s guibg=%s guifg=%s", group, st.Background().Hex(), st.Foreground().Hex())
	if err := h.c.Command(cmd); err != nil {
		return nil, errors.Errorf("defining %s: %w", group, err)
	}

	s := &style{h: h, name: name, group: group, ns: ns, buffers: make(map[nvim.Buffer]struct{})}
	h.mu.Lock()
	h.styles[name] = s
	h.mu.Unlock()
	return s, nil
}

func (h *Host) ApplyHighlights(view string, sh host.StyleHandle, ranges []model.Range) error {
	buf, err := parseView(view)
	if err != nil {
		return err
	}
	h.mu.Lock()
	s, ok := h.styles[sh.Key()]
	if ok {
		s.buffers[buf] = struct{}{}
	}
	h.mu.Unlock()
	if !ok {
		return errors.Errorf("style %s is not live", sh.Key())
	}

	if err := h.c.ClearBufferNamespace(buf, s.ns, 0, -1); err != nil {
		return errors.Errorf("clearing %s: %w", s.group, err)
	}
	for _, rg := range ranges {
		for line := rg.Start.Line; line <= rg.End.Line; line++ {
			start, end := 0, -1
			if line == rg.Start.Line {
				start = rg.Start.Col
			}
			if line == rg.End.Line {
				end = rg.End.Col
			}
			if end >= 0 && end <= start {
				continue
			}
			if _, err := h.c.AddBufferHighlight(buf, s.ns, s.group, line, start, end); err != nil {
				return errors.Errorf("highlighting line %d: %w", line, err)
			}
		}
	}
	return nil
}

func (h *Host) Notify(msg string) {
	if err := h.c.WriteOut(msg + "\n"); err != nil {
		zerolog.Ctx(h.ctx).Warn().Err(err).Msg("notify")
	}
}

func (h *Host) RegisterCommand(name string, fn func()) (host.Disposable, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, dup := h.commands[name]; dup {
		return nil, errors.Errorf("command %s already registered", name)
	}
	h.commands[name] = fn
	return host.DisposeFunc(func() error {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.commands, name)
		return nil
	}), nil
}

// Run invokes a registered command.
func (h *Host) Run(name string) error {
	h.mu.Lock()
	fn, ok := h.commands[name]
	h.mu.Unlock()
	if !ok {
		return errors.Errorf("unknown command: %s", name)
	}
	fn()
	return nil
}
