// Package extension wires the highlighter into a host: it owns the
// activation and deactivation lifecycle.
package extension

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/highlight"
	"github.com/phyten/todohl/internal/host"
	"github.com/phyten/todohl/internal/marker"
)

const (
	HelloCommand = "todohl.hello"
	HelloMessage = "TODO Highlighter is running!"
)

// Extension is an activated highlighter. Every resource it acquired from the
// host is released by Deactivate.
type Extension struct {
	ctx  context.Context
	host host.Host
	hl   *highlight.Highlighter
	subs host.Subscriptions

	mu     sync.Mutex
	closed bool
}

// Activate registers the hello command, creates one style per category,
// subscribes to view and text changes and highlights the active document.
func Activate(ctx context.Context, h host.Host, reg *marker.Registry) (*Extension, error) {
	ext := &Extension{ctx: ctx, host: h}

	cmd, err := h.RegisterCommand(HelloCommand, func() { h.Notify(HelloMessage) })
	if err != nil {
		return nil, errors.Errorf("register %s: %w", HelloCommand, err)
	}
	_ = ext.subs.Add(cmd)

	handles := make(map[string]host.StyleHandle, reg.Len())
	for _, c := range reg.Categories() {
		sh, err := h.CreateHighlightStyle(c.Name, c.Style)
		if err != nil {
			return nil, errors.Join(errors.Errorf("create style %s: %w", c.Name, err), ext.subs.Dispose())
		}
		_ = ext.subs.Add(sh)
		handles[c.Name] = sh
	}
	ext.hl = highlight.NewHighlighter(reg, h, handles)

	_ = ext.subs.Add(h.OnActiveViewChanged(func() {
		ext.update("view changed")
	}))
	_ = ext.subs.Add(h.OnTextChanged(func(doc host.Document) {
		active, ok := h.ActiveDocument()
		if !ok || doc == nil || active.ID() != doc.ID() {
			return
		}
		ext.update("text changed")
	}))

	ext.update("activate")
	zerolog.Ctx(ctx).Info().Strs("categories", reg.Names()).Msg("highlighter activated")
	return ext, nil
}

func (e *Extension) update(reason string) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return
	}
	zerolog.Ctx(e.ctx).Trace().Str("reason", reason).Msg("update")
	// errors are logged by the highlighter; the next event retries
	_ = e.hl.Update(e.ctx)
}

// Refresh forces an update of the active document.
func (e *Extension) Refresh(ctx context.Context) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return errors.New("extension deactivated")
	}
	return e.hl.Update(ctx)
}

// Deactivate releases every style, subscription and command. It is safe to
// call more than once.
func (e *Extension) Deactivate() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()
	if err := e.subs.Dispose(); err != nil {
		return errors.Errorf("deactivate: %w", err)
	}
	zerolog.Ctx(e.ctx).Info().Msg("highlighter deactivated")
	return nil
}
