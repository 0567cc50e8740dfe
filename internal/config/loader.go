package config

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Keys accepted inside each section, with their aliases. Every key is also
// accepted at the top level.
var (
	uiKeyMap = map[string]string{
		"color":     "color",
		"output":    "output",
		"format":    "output",
		"fields":    "fields",
		"gutter":    "gutter",
		"tab_width": "tab_width",
		"tabwidth":  "tab_width",
	}
	watchKeyMap = map[string]string{
		"debounce_ms": "debounce_ms",
		"debounce":    "debounce_ms",
	}
	serveKeyMap = map[string]string{
		"addr":         "addr",
		"address":      "addr",
		"open_browser": "open_browser",
		"open":         "open_browser",
	}
	rootKeyMap = map[string]string{
		"log_level": "log_level",
		"log":       "log_level",
	}
)

// Load reads a config file. The format follows the extension: .yaml/.yml,
// .toml or .json. Unknown keys are errors. An empty path yields an empty
// Config.
func Load(fs afero.Fs, path string) (Config, error) {
	var cfg Config
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, errors.Errorf("read %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	var raw map[string]any
	switch ext {
	case ".yaml", ".yml":
		if decodeErr := yaml.Unmarshal(data, &raw); decodeErr != nil {
			return cfg, errors.Errorf("parse %s: %w", path, decodeErr)
		}
	case ".toml":
		if decodeErr := toml.Unmarshal(data, &raw); decodeErr != nil {
			return cfg, errors.Errorf("parse %s: %w", path, decodeErr)
		}
	case ".json":
		if decodeErr := json.Unmarshal(data, &raw); decodeErr != nil {
			return cfg, errors.Errorf("parse %s: %w", path, decodeErr)
		}
	default:
		return cfg, errors.Errorf("unsupported config extension: %s", ext)
	}
	if raw == nil {
		return cfg, nil
	}
	decoded, err := decodeConfigMap(raw)
	if err != nil {
		return cfg, errors.Errorf("%s: %w", path, err)
	}
	return decoded, nil
}

func decodeConfigMap(raw map[string]any) (Config, error) {
	var cfg Config
	sections := map[string]map[string]any{
		"ui":    {},
		"watch": {},
		"serve": {},
		"root":  {},
	}
	keyMaps := map[string]map[string]string{
		"ui":    uiKeyMap,
		"watch": watchKeyMap,
		"serve": serveKeyMap,
	}

	for key, value := range raw {
		norm := normalizeKey(key)
		if allowed, ok := keyMaps[norm]; ok {
			sub, err := toStringKeyMap(value)
			if err != nil {
				return cfg, errors.Errorf("%s: %w", norm, err)
			}
			if err := fillSection(sections[norm], sub, allowed, norm); err != nil {
				return cfg, err
			}
			continue
		}
		placed := false
		for _, name := range []string{"ui", "watch", "serve"} {
			if canonical, ok := keyMaps[name][norm]; ok {
				sections[name][canonical] = value
				placed = true
				break
			}
		}
		if canonical, ok := rootKeyMap[norm]; ok {
			sections["root"][canonical] = value
			placed = true
		}
		if !placed {
			return cfg, errors.Errorf("unknown config key: %s", key)
		}
	}

	if v, ok := sections["root"]["log_level"]; ok {
		str, err := expectString(v, "log_level")
		if err != nil {
			return cfg, err
		}
		cfg.LogLevel = &str
	}
	if err := assignUI(sections["ui"], &cfg.UI); err != nil {
		return cfg, errors.Errorf("ui: %w", err)
	}
	if err := assignWatch(sections["watch"], &cfg.Watch); err != nil {
		return cfg, errors.Errorf("watch: %w", err)
	}
	if err := assignServe(sections["serve"], &cfg.Serve); err != nil {
		return cfg, errors.Errorf("serve: %w", err)
	}
	return cfg, nil
}

func fillSection(dst, src map[string]any, allowed map[string]string, section string) error {
	for key, value := range src {
		canonical, ok := allowed[normalizeKey(key)]
		if !ok {
			return errors.Errorf("unknown %s key: %s", section, key)
		}
		dst[canonical] = value
	}
	return nil
}

func assignUI(section map[string]any, dst *UIConfig) error {
	for key, value := range section {
		switch key {
		case "color", "output", "fields":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			trimmed := strings.TrimSpace(str)
			switch key {
			case "color":
				dst.Color = &trimmed
			case "output":
				dst.Output = &trimmed
			default:
				dst.Fields = &trimmed
			}
		case "gutter":
			b, err := expectBool(value, key)
			if err != nil {
				return err
			}
			dst.Gutter = &b
		case "tab_width":
			n, err := expectInt(value, key)
			if err != nil {
				return err
			}
			dst.TabWidth = &n
		default:
			return errors.Errorf("unknown key: %s", key)
		}
	}
	return nil
}

func assignWatch(section map[string]any, dst *WatchConfig) error {
	for key, value := range section {
		switch key {
		case "debounce_ms":
			n, err := expectInt(value, key)
			if err != nil {
				return err
			}
			dst.DebounceMS = &n
		default:
			return errors.Errorf("unknown key: %s", key)
		}
	}
	return nil
}

func assignServe(section map[string]any, dst *ServeConfig) error {
	for key, value := range section {
		switch key {
		case "addr":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			trimmed := strings.TrimSpace(str)
			dst.Addr = &trimmed
		case "open_browser":
			b, err := expectBool(value, key)
			if err != nil {
				return err
			}
			dst.OpenBrowser = &b
		default:
			return errors.Errorf("unknown key: %s", key)
		}
	}
	return nil
}

func expectString(value any, field string) (string, error) {
	if value == nil {
		return "", errors.Errorf("%s cannot be null", field)
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return "", errors.Errorf("expected string for %s, got %T", field, value)
}

func expectBool(value any, field string) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return ParseBool(v, field)
	default:
		return false, errors.Errorf("expected bool for %s, got %T", field, value)
	}
}

func expectInt(value any, field string) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, errors.Errorf("expected integer for %s, got %v", field, value)
		}
		return int(v), nil
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, errors.Errorf("invalid integer value for %s: %v", field, value)
		}
		return n, nil
	case string:
		return parseInt(v, field)
	default:
		return 0, errors.Errorf("expected integer for %s, got %T", field, value)
	}
}

func toStringKeyMap(v any) (map[string]any, error) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, value := range typed {
			key, ok := k.(string)
			if !ok {
				return nil, errors.Errorf("non-string key: %v", k)
			}
			out[key] = value
		}
		return out, nil
	default:
		return nil, errors.Errorf("expected map, got %T", v)
	}
}

func normalizeKey(key string) string {
	norm := strings.ToLower(strings.TrimSpace(key))
	norm = strings.ReplaceAll(norm, "-", "_")
	return norm
}
