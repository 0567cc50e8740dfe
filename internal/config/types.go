// Package config loads layered settings: defaults, a config file, the
// environment and finally command line flags, later layers winning.
package config

// Each layer leaves unset values nil.
type Config struct {
	LogLevel *string     `yaml:"log_level" toml:"log_level" json:"log_level"`
	UI       UIConfig    `yaml:"ui" toml:"ui" json:"ui"`
	Watch    WatchConfig `yaml:"watch" toml:"watch" json:"watch"`
	Serve    ServeConfig `yaml:"serve" toml:"serve" json:"serve"`
}

type UIConfig struct {
	Color    *string `yaml:"color" toml:"color" json:"color"`
	Output   *string `yaml:"output" toml:"output" json:"output"`
	Fields   *string `yaml:"fields" toml:"fields" json:"fields"`
	Gutter   *bool   `yaml:"gutter" toml:"gutter" json:"gutter"`
	TabWidth *int    `yaml:"tab_width" toml:"tab_width" json:"tab_width"`
}

type WatchConfig struct {
	DebounceMS *int `yaml:"debounce_ms" toml:"debounce_ms" json:"debounce_ms"`
}

type ServeConfig struct {
	Addr        *string `yaml:"addr" toml:"addr" json:"addr"`
	OpenBrowser *bool   `yaml:"open_browser" toml:"open_browser" json:"open_browser"`
}

// Settings is the fully resolved configuration.
type Settings struct {
	LogLevel    string
	Color       string
	Output      string
	Fields      string
	Gutter      bool
	TabWidth    int
	DebounceMS  int
	Addr        string
	OpenBrowser bool
}

func Defaults() Settings {
	return Settings{
		LogLevel:    "info",
		Color:       "auto",
		Output:      "table",
		Fields:      "",
		Gutter:      true,
		TabWidth:    4,
		DebounceMS:  150,
		Addr:        "127.0.0.1:8080",
		OpenBrowser: false,
	}
}
