// Package termcolor decides whether and how to color terminal output and
// renders SGR styles.
package termcolor

import (
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/term"
)

type ColorMode int

const (
	ModeAuto ColorMode = iota
	ModeAlways
	ModeNever
)

var modeNames = map[ColorMode]string{
	ModeAuto:   "auto",
	ModeAlways: "always",
	ModeNever:  "never",
}

func (m ColorMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "auto"
}

func ParseMode(v string) (ColorMode, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return ModeAuto, nil
	}
	for m, name := range modeNames {
		if name == v {
			return m, nil
		}
	}
	return ModeAuto, errors.Errorf("unknown color mode: %s", v)
}

// Profile is the richest color encoding a terminal understands.
type Profile int

const (
	ProfileBasic8 Profile = iota
	ProfileANSI256
	ProfileTrueColor
)

func (p Profile) String() string {
	switch p {
	case ProfileTrueColor:
		return "truecolor"
	case ProfileANSI256:
		return "ansi256"
	default:
		return "basic8"
	}
}

// Settings is the resolved color decision for one output stream.
type Settings struct {
	Enabled bool
	Profile Profile
}

// Resolve turns a configured mode into Settings for out.
func Resolve(mode ColorMode, out *os.File, env map[string]string) Settings {
	if mode == ModeAuto {
		mode = DetectMode(out, env)
	}
	return Settings{Enabled: Enabled(mode, out), Profile: DetectProfile(env)}
}

// EnvMap splits KEY=VALUE entries as returned by os.Environ.
func EnvMap(values []string) map[string]string {
	env := make(map[string]string, len(values))
	for _, entry := range values {
		if entry == "" {
			continue
		}
		k, v, _ := strings.Cut(entry, "=")
		env[k] = v
	}
	return env
}

type envRule struct {
	key   string
	match func(v string) bool
	mode  ColorMode
}

// First matching rule wins.
var envRules = []envRule{
	{"TERM", func(v string) bool { return strings.EqualFold(v, "dumb") }, ModeNever},
	{"NO_COLOR", func(v string) bool { return v != "" }, ModeNever},
	{"CLICOLOR", func(v string) bool { return v == "0" }, ModeNever},
	{"CLICOLOR_FORCE", forceColor, ModeAlways},
	{"FORCE_COLOR", forceColor, ModeAlways},
}

// DetectMode applies the TERM, NO_COLOR, CLICOLOR, CLICOLOR_FORCE and
// FORCE_COLOR conventions, in that order, and falls back to a TTY check on
// stdout. A nil stdout never gets colors.
func DetectMode(stdout *os.File, env map[string]string) ColorMode {
	if stdout == nil {
		return ModeNever
	}
	for _, r := range envRules {
		if r.match(strings.TrimSpace(env[r.key])) {
			return r.mode
		}
	}
	if isTerminal(stdout) {
		return ModeAlways
	}
	return ModeNever
}

// Enabled reports whether mode emits colors on stdout. Only ModeAuto looks
// at the stream.
func Enabled(mode ColorMode, stdout *os.File) bool {
	switch mode {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	default:
		return isTerminal(stdout)
	}
}

// DetectProfile reads COLORTERM and TERM.
func DetectProfile(env map[string]string) Profile {
	colorterm := strings.ToLower(strings.TrimSpace(env["COLORTERM"]))
	switch {
	case strings.Contains(colorterm, "truecolor"), strings.Contains(colorterm, "24bit"), strings.Contains(colorterm, "24-bit"):
		return ProfileTrueColor
	case strings.Contains(strings.ToLower(env["TERM"]), "256color"):
		return ProfileANSI256
	default:
		return ProfileBasic8
	}
}

// Width returns the column count of the terminal behind f, or 0 when f is
// not a terminal.
func Width(f *os.File) int {
	if !isTerminal(f) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return 0
	}
	return w
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

func forceColor(v string) bool {
	return v != "" && v != "0"
}
