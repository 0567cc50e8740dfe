package highlight

import (
	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/host"
	"github.com/phyten/todohl/internal/model"
)

// Apply replaces, for every entry of set, the ranges the renderer shows in the
// view of doc with the style registered under the entry's category. Entries
// without spans are applied too, so stale highlights are cleared. set must
// have been scanned from doc.
func Apply(r host.Renderer, doc host.Document, handles map[string]host.StyleHandle, set Set) error {
	view := doc.ID()
	var errs []error
	for _, e := range set.Entries {
		h, ok := handles[e.Category]
		if !ok {
			errs = append(errs, errors.Errorf("no style for category %s", e.Category))
			continue
		}
		ranges := make([]model.Range, len(e.Spans))
		for i, sp := range e.Spans {
			ranges[i] = sp.Range
		}
		if err := r.ApplyHighlights(view, h, ranges); err != nil {
			errs = append(errs, errors.Errorf("apply %s: %w", e.Category, err))
		}
	}
	if f, ok := r.(host.Flusher); ok {
		if err := f.Flush(doc); err != nil {
			errs = append(errs, errors.Errorf("flush %s: %w", view, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
