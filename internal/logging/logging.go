// Package logging builds the zerolog logger shared through context.Context.
package logging

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

type Options struct {
	Level string
	// Console selects the human readable writer instead of JSON lines.
	Console bool
	NoColor bool
}

func New(w io.Writer, opts Options) (zerolog.Logger, error) {
	raw := strings.ToLower(strings.TrimSpace(opts.Level))
	if raw == "" {
		raw = "info"
	}
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.Nop(), errors.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	if opts.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: opts.NoColor}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// WithLogger attaches l to ctx for zerolog.Ctx.
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}
