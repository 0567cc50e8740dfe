package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

var (
	configFilenames = []string{
		".todohl.yaml",
		".todohl.yml",
		".todohl.toml",
		".todohl.json",
	}
	xdgFilenames = []string{
		"config.yaml",
		"config.yml",
		"config.toml",
		"config.json",
	}
)

// Locations tells Find where to look.
type Locations struct {
	Explicit string
	Cwd      string
	XDGHome  string
	Home     string
}

// Find returns the config file to load and where it was found: "explicit",
// "cwd-up", "xdg" or "home". An empty path means no file exists.
func Find(fs afero.Fs, loc Locations) (string, string, error) {
	if explicit := strings.TrimSpace(loc.Explicit); explicit != "" {
		candidate := explicit
		if !filepath.IsAbs(candidate) && loc.Cwd != "" {
			candidate = filepath.Join(loc.Cwd, candidate)
		}
		info, err := fs.Stat(candidate)
		if err != nil {
			return "", "", errors.Errorf("config %s: %w", candidate, err)
		}
		if info.IsDir() {
			return "", "", errors.Errorf("%s %q points to a directory", EnvConfigPath, candidate)
		}
		return candidate, "explicit", nil
	}

	start := strings.TrimSpace(loc.Cwd)
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", "", errors.Errorf("resolving %s: %w", start, err)
	}
	for {
		for _, name := range configFilenames {
			candidate := filepath.Join(dir, name)
			if fileExists(fs, candidate) {
				return candidate, "cwd-up", nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	home := strings.TrimSpace(loc.Home)
	xdgRoot := strings.TrimSpace(loc.XDGHome)
	if xdgRoot == "" && home != "" {
		xdgRoot = filepath.Join(home, ".config")
	}
	if xdgRoot != "" {
		for _, name := range xdgFilenames {
			candidate := filepath.Join(xdgRoot, "todohl", name)
			if fileExists(fs, candidate) {
				return candidate, "xdg", nil
			}
		}
	}

	if home != "" {
		for _, name := range configFilenames {
			candidate := filepath.Join(home, name)
			if fileExists(fs, candidate) {
				return candidate, "home", nil
			}
		}
	}

	return "", "", nil
}

func fileExists(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
