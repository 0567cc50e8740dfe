package config

import (
	"math"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const EnvPrefix = "TODOHL_"

// EnvConfigPath names a config file and disables the search.
const EnvConfigPath = EnvPrefix + "CONFIG"

func FromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	var cfg Config
	var errs []error

	setString := func(target **string, key string) {
		raw := strings.TrimSpace(getenv(EnvPrefix + key))
		if raw == "" {
			return
		}
		value := raw
		*target = &value
	}
	setBool := func(target **bool, key string) {
		raw := strings.TrimSpace(getenv(EnvPrefix + key))
		if raw == "" {
			return
		}
		v, err := ParseBool(raw, EnvPrefix+key)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*target = &v
	}
	setInt := func(target **int, key string, min, max int) {
		raw := strings.TrimSpace(getenv(EnvPrefix + key))
		if raw == "" {
			return
		}
		v, err := ParseIntInRange(raw, EnvPrefix+key, min, max)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*target = &v
	}

	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.UI.Color, "COLOR")
	setString(&cfg.UI.Output, "OUTPUT")
	setString(&cfg.UI.Fields, "FIELDS")
	setBool(&cfg.UI.Gutter, "GUTTER")
	// Bounds are checked by Normalize so every layer reports the same error.
	setInt(&cfg.UI.TabWidth, "TAB_WIDTH", 0, math.MaxInt)
	setInt(&cfg.Watch.DebounceMS, "DEBOUNCE_MS", 0, math.MaxInt)
	setString(&cfg.Serve.Addr, "ADDR")
	setBool(&cfg.Serve.OpenBrowser, "OPEN_BROWSER")

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}
