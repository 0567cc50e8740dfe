package highlight

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/phyten/todohl/internal/host"
	"github.com/phyten/todohl/internal/marker"
)

// Highlighter rescans the active document and pushes the result to the host.
// It keeps no state between updates besides the style handles it was given.
type Highlighter struct {
	reg     *marker.Registry
	host    host.Host
	handles map[string]host.StyleHandle
}

func NewHighlighter(reg *marker.Registry, h host.Host, handles map[string]host.StyleHandle) *Highlighter {
	return &Highlighter{reg: reg, host: h, handles: handles}
}

// Update runs one scan-and-apply cycle. Without an active document it does
// nothing and returns nil.
func (hl *Highlighter) Update(ctx context.Context) error {
	doc, ok := hl.host.ActiveDocument()
	if !ok || doc == nil {
		zerolog.Ctx(ctx).Debug().Msg("no active document, skipping update")
		return nil
	}
	set := Scan(hl.reg, doc.Text(), doc)
	if err := Apply(hl.host, doc, hl.handles, set); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("document", doc.ID()).Msg("applying highlights")
		return err
	}
	ev := zerolog.Ctx(ctx).Debug().Str("document", doc.ID())
	for _, e := range set.Entries {
		ev = ev.Int(e.Category, len(e.Spans))
	}
	ev.Msg("highlights updated")
	return nil
}
