package main

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/browser"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/config"
	"github.com/phyten/todohl/internal/logging"
	"github.com/phyten/todohl/internal/termcolor"
)

// app carries the process environment so commands can run against fakes.
type app struct {
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	fs      afero.Fs
	environ []string
	cwd     string
	home    string
	// watchFiles is false when fs has no real files behind it.
	watchFiles bool
	openURL    func(string) error
	// served is called with the UI URL once the server listens.
	served func(url string)

	configPath string
	settings   config.Settings
}

func newApp() *app {
	cwd, _ := os.Getwd()
	home, _ := os.UserHomeDir()
	return &app{
		in:         os.Stdin,
		out:        os.Stdout,
		errOut:     os.Stderr,
		fs:         afero.NewOsFs(),
		environ:    os.Environ(),
		cwd:        cwd,
		home:       home,
		watchFiles: true,
		openURL:    browser.OpenURL,
	}
}

func (a *app) env() map[string]string {
	return termcolor.EnvMap(a.environ)
}

func (a *app) getenv(key string) string {
	return a.env()[key]
}

// colorFor resolves the configured color mode for w. Only real files can be
// terminals.
func (a *app) colorFor(w io.Writer) termcolor.Settings {
	mode, _ := termcolor.ParseMode(a.settings.Color)
	f, _ := w.(*os.File)
	return termcolor.Resolve(mode, f, a.env())
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "todohl",
		Short:         "Highlight TODO, FIXME and HACK comments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: search .todohl.* upward, then XDG and home)")
	pf.String("log-level", "", "trace|debug|info|warn|error")
	pf.String("color", "", "auto|always|never")

	root.AddCommand(
		newScanCommand(a),
		newWatchCommand(a),
		newServeCommand(a),
		newNvimCommand(a),
		newVersionCommand(),
	)
	return root
}

// setup resolves settings (defaults < file < env < flags) and puts the
// logger into the command context.
func (a *app) setup(cmd *cobra.Command) error {
	explicit := a.configPath
	if explicit == "" {
		explicit = a.getenv(config.EnvConfigPath)
	}
	path, source, err := config.Find(a.fs, config.Locations{
		Explicit: explicit,
		Cwd:      a.cwd,
		XDGHome:  a.getenv("XDG_CONFIG_HOME"),
		Home:     a.home,
	})
	if err != nil {
		return err
	}
	var fileCfg config.Config
	if path != "" {
		if fileCfg, err = config.Load(a.fs, path); err != nil {
			return err
		}
	}
	envCfg, err := config.FromEnv(a.getenv)
	if err != nil {
		return err
	}
	s, err := config.Normalize(config.Merge(config.Defaults(), fileCfg, envCfg, flagLayer(cmd)))
	if err != nil {
		return errors.Errorf("invalid configuration: %w", err)
	}
	a.settings = s

	logger, err := logging.New(a.errOut, logging.Options{
		Level:   s.LogLevel,
		Console: true,
		NoColor: !a.colorFor(a.errOut).Enabled,
	})
	if err != nil {
		return err
	}
	ev := logger.Debug().Str("command", cmd.Name())
	if path != "" {
		ev = ev.Str("config", path).Str("source", source)
	}
	ev.Msg("configuration loaded")
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	return nil
}

// flagLayer turns the flags given on the command line into a config layer.
// Flags that were not set stay nil so lower layers show through.
func flagLayer(cmd *cobra.Command) config.Config {
	fl := cmd.Flags()
	changed := func(name string) (string, bool) {
		f := fl.Lookup(name)
		if f == nil || !f.Changed {
			return "", false
		}
		return f.Value.String(), true
	}
	str := func(name string) *string {
		v, ok := changed(name)
		if !ok {
			return nil
		}
		return &v
	}
	boolean := func(name string) *bool {
		v, ok := changed(name)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil
		}
		return &b
	}
	integer := func(name string) *int {
		v, ok := changed(name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil
		}
		return &n
	}

	var cfg config.Config
	cfg.LogLevel = str("log-level")
	cfg.UI.Color = str("color")
	cfg.UI.Output = str("output")
	cfg.UI.Fields = str("fields")
	cfg.UI.Gutter = boolean("gutter")
	cfg.UI.TabWidth = integer("tab-width")
	cfg.Watch.DebounceMS = integer("debounce-ms")
	cfg.Serve.Addr = str("addr")
	cfg.Serve.OpenBrowser = boolean("open")
	return cfg
}

func logger(cmd *cobra.Command) *zerolog.Logger {
	return zerolog.Ctx(cmd.Context())
}

func absPaths(cwd string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if !filepath.IsAbs(p) && cwd != "" {
			p = filepath.Join(cwd, p)
		}
		out[i] = filepath.Clean(p)
	}
	return out
}
