package config

import "strings"

// Merge applies layers over base in order.
func Merge(base Settings, layers ...Config) Settings {
	out := base
	for _, layer := range layers {
		out.LogLevel = ResolveAndTrim(out.LogLevel, layer.LogLevel)
		out.Color = ResolveAndTrim(out.Color, layer.UI.Color)
		out.Output = ResolveAndTrim(out.Output, layer.UI.Output)
		out.Fields = ResolveAndTrim(out.Fields, layer.UI.Fields)
		out.Gutter = ResolveBool(out.Gutter, layer.UI.Gutter)
		out.TabWidth = ResolveInt(out.TabWidth, layer.UI.TabWidth)
		out.DebounceMS = ResolveInt(out.DebounceMS, layer.Watch.DebounceMS)
		out.Addr = ResolveAndTrim(out.Addr, layer.Serve.Addr)
		out.OpenBrowser = ResolveBool(out.OpenBrowser, layer.Serve.OpenBrowser)
	}
	if out.Output == "" {
		out.Output = "table"
	}
	if out.Color == "" {
		out.Color = "auto"
	}
	return out
}

func ResolveString(def string, values ...*string) string {
	result := def
	for _, v := range values {
		if v != nil {
			result = *v
		}
	}
	return result
}

func ResolveInt(def int, values ...*int) int {
	result := def
	for _, v := range values {
		if v != nil {
			result = *v
		}
	}
	return result
}

func ResolveBool(def bool, values ...*bool) bool {
	result := def
	for _, v := range values {
		if v != nil {
			result = *v
		}
	}
	return result
}

func ResolveAndTrim(def string, values ...*string) string {
	return strings.TrimSpace(ResolveString(def, values...))
}
