package nvimhost

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/neovim/go-client/nvim"
	"github.com/neovim/go-client/nvim/plugin"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/extension"
	"github.com/phyten/todohl/internal/marker"
)

const (
	HelloUserCommand = "TodoHighlighterHello"
	autocmdGroup     = "todohl"
)

// Plugin activates the extension on the first neovim event, since the
// client cannot be called back while handlers are being registered.
type Plugin struct {
	ctx  context.Context
	host *Host
	reg  *marker.Registry

	// events serializes handlers so scans never overlap.
	events sync.Mutex
	ext    *extension.Extension
	closed bool
}

func NewPlugin(ctx context.Context, c Client, reg *marker.Registry) *Plugin {
	return &Plugin{ctx: ctx, host: New(ctx, c), reg: reg}
}

// ensure activates the extension once. It reports true on the call that
// activated it, whose initial update already covers the triggering event.
func (p *Plugin) ensure() (bool, error) {
	if p.closed {
		return false, errors.New("plugin is shut down")
	}
	if p.ext != nil {
		return false, nil
	}
	ext, err := extension.Activate(p.ctx, p.host, p.reg)
	if err != nil {
		return false, err
	}
	p.ext = ext
	return true, nil
}

// OnViewChanged handles BufEnter and WinEnter.
func (p *Plugin) OnViewChanged() error {
	p.events.Lock()
	defer p.events.Unlock()
	fresh, err := p.ensure()
	if err != nil || fresh {
		return err
	}
	p.host.ViewChanged()
	return nil
}

// OnTextChanged handles TextChanged and TextChangedI for the buffer number
// given by <abuf>.
func (p *Plugin) OnTextChanged(abuf string) error {
	n, err := strconv.Atoi(strings.TrimSpace(abuf))
	if err != nil {
		return errors.Errorf("invalid <abuf> %q: %w", abuf, err)
	}
	p.events.Lock()
	defer p.events.Unlock()
	fresh, err := p.ensure()
	if err != nil || fresh {
		return err
	}
	return p.host.TextChanged(nvim.Buffer(n))
}

// OnHello handles :TodoHighlighterHello.
func (p *Plugin) OnHello() error {
	p.events.Lock()
	defer p.events.Unlock()
	if _, err := p.ensure(); err != nil {
		return err
	}
	return p.host.Run(extension.HelloCommand)
}

// Shutdown deactivates the extension. Later events are rejected.
func (p *Plugin) Shutdown() error {
	p.events.Lock()
	defer p.events.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.ext == nil {
		return nil
	}
	return p.ext.Deactivate()
}

// Register wires the plugin's handlers into a neovim remote plugin.
func Register(ctx context.Context, p *plugin.Plugin, reg *marker.Registry) *Plugin {
	pl := NewPlugin(ctx, p.Nvim, reg)
	log := zerolog.Ctx(ctx)

	logged := func(event string, err error) {
		if err != nil {
			log.Error().Err(err).Str("event", event).Msg("handler failed")
		}
	}
	for _, ev := range []string{"BufEnter", "WinEnter"} {
		ev := ev
		p.HandleAutocmd(&plugin.AutocmdOptions{Event: ev, Group: autocmdGroup, Pattern: "*"}, func() {
			logged(ev, pl.OnViewChanged())
		})
	}
	for _, ev := range []string{"TextChanged", "TextChangedI"} {
		ev := ev
		p.HandleAutocmd(&plugin.AutocmdOptions{Event: ev, Group: autocmdGroup, Pattern: "*", Eval: "expand('<abuf>')"}, func(abuf string) {
			logged(ev, pl.OnTextChanged(abuf))
		})
	}
	p.HandleAutocmd(&plugin.AutocmdOptions{Event: "VimLeavePre", Group: autocmdGroup, Pattern: "*"}, func() {
		logged("VimLeavePre", pl.Shutdown())
	})
	p.HandleCommand(&plugin.CommandOptions{Name: HelloUserCommand}, func() error {
		return pl.OnHello()
	})
	return pl
}
