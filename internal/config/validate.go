package config

import (
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/output"
	"github.com/phyten/todohl/internal/termcolor"
)

const (
	maxTabWidth   = 16
	maxDebounceMS = 10000
)

// Normalize canonicalizes s and reports every invalid value at once.
func Normalize(s Settings) (Settings, error) {
	var errs []error

	level := strings.ToLower(strings.TrimSpace(s.LogLevel))
	if level == "" {
		level = "info"
	}
	if _, err := zerolog.ParseLevel(level); err != nil {
		errs = append(errs, errors.Errorf("invalid log_level: %s", s.LogLevel))
	}
	s.LogLevel = level

	mode, err := termcolor.ParseMode(s.Color)
	if err != nil {
		errs = append(errs, err)
	}
	s.Color = mode.String()

	format, err := output.ParseFormat(s.Output)
	if err != nil {
		errs = append(errs, err)
	}
	s.Output = string(format)

	if _, err := output.ResolveFields(s.Fields); err != nil {
		errs = append(errs, errors.Errorf("invalid fields: %w", err))
	}
	if err := checkRange(s.TabWidth, "tab_width", 1, maxTabWidth); err != nil {
		errs = append(errs, err)
	}
	if err := checkRange(s.DebounceMS, "debounce_ms", 0, maxDebounceMS); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(s.Addr) == "" {
		errs = append(errs, errors.New("addr cannot be empty"))
	}

	if len(errs) > 0 {
		return s, errors.Join(errs...)
	}
	return s, nil
}
