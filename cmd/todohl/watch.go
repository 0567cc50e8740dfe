package main

import (
	"bufio"
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/extension"
	"github.com/phyten/todohl/internal/host"
	"github.com/phyten/todohl/internal/marker"
	"github.com/phyten/todohl/internal/output"
	"github.com/phyten/todohl/internal/termcolor"
	"github.com/phyten/todohl/internal/workspace"
)

const watchHelp = "commands: next, prev, open PATH, close, refresh, hello, help, quit"

func newWatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch FILE...",
		Short: "Highlight files in the terminal and redraw on change",
		Long: "Open the given files, draw the active one with its markers highlighted and\n" +
			"redraw whenever a file changes on disk. Read commands from stdin:\n" + watchHelp,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd, args)
		},
	}
	fl := cmd.Flags()
	fl.Bool("gutter", true, "show line numbers")
	fl.Int("tab-width", 4, "tab stop width")
	fl.Int("debounce-ms", 150, "delay before reloading a changed file")
	return cmd
}

// session is an activated extension over a file workspace. Its event loop
// delivers workspace events until stop is called.
type session struct {
	ws      *workspace.Workspace
	ext     *extension.Extension
	watcher *workspace.Watcher
	cancel  context.CancelFunc
	done    chan error
}

func (a *app) openWorkspace(paths []string) (*workspace.Workspace, error) {
	ws := workspace.New(a.fs)
	for _, p := range absPaths(a.cwd, paths) {
		if _, err := ws.Open(p); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

func (a *app) startSession(ctx context.Context, ws *workspace.Workspace, r host.Renderer) (*session, error) {
	ext, err := extension.Activate(ctx, host.Compose(ws, r), marker.Default())
	if err != nil {
		return nil, err
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s := &session{ws: ws, ext: ext, cancel: cancel, done: make(chan error, 1)}

	if a.watchFiles {
		w, err := workspace.NewWatcher(ws, workspace.WatcherConfig{
			Debounce: time.Duration(a.settings.DebounceMS) * time.Millisecond,
		})
		if err == nil {
			err = w.Start(loopCtx)
		}
		if err != nil {
			cancel()
			return nil, errors.Join(err, ext.Deactivate())
		}
		s.watcher = w
	}
	go func() { s.done <- ws.Run(loopCtx) }()
	return s, nil
}

// stop ends the event loop, delivers what is still queued and releases
// every resource.
func (s *session) stop() error {
	s.cancel()
	<-s.done
	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Stop())
	}
	s.ws.Flush()
	errs = append(errs, s.ext.Deactivate())
	return errors.Join(errs...)
}

// post runs fn on the event loop and reports its error on the status line.
func (s *session) post(term *output.Terminal, fn func() error) {
	s.ws.Post(func() {
		if err := fn(); err != nil {
			term.Notify(err.Error())
		}
	})
}

func (a *app) watch(cmd *cobra.Command, paths []string) error {
	ctx := cmd.Context()
	ws, err := a.openWorkspace(paths)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	f, _ := out.(*os.File)
	term := output.NewTerminal(out, output.DrawOptions{
		Color:    a.colorFor(out),
		Gutter:   a.settings.Gutter,
		TabWidth: a.settings.TabWidth,
		Width:    termcolor.Width(f),
	})
	s, err := a.startSession(ctx, ws, term)
	if err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	log := zerolog.Ctx(ctx)
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			quit, err := a.watchCommand(ctx, s, term, line)
			if err != nil {
				term.Notify(err.Error())
				log.Debug().Err(err).Str("input", line).Msg("command failed")
			}
			if quit {
				break loop
			}
		}
	}
	return s.stop()
}

// watchCommand runs one line of stdin input. It reports true when the
// session should end.
func (a *app) watchCommand(ctx context.Context, s *session, term *output.Terminal, line string) (bool, error) {
	ws := s.ws
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "":
		return false, nil
	case "q", "quit", "exit":
		return true, nil
	case "n", "next":
		ws.Next()
	case "p", "prev":
		ws.Prev()
	case "open":
		if arg == "" {
			return false, errors.New("open: missing path")
		}
		doc, err := ws.Open(absPaths(a.cwd, []string{arg})[0])
		if err != nil {
			return false, err
		}
		return false, ws.Activate(doc.ID())
	case "close":
		doc, ok := ws.ActiveDocument()
		if !ok {
			return false, errors.New("close: no active document")
		}
		return false, ws.Close(doc.ID())
	case "r", "refresh":
		s.post(term, func() error { return s.ext.Refresh(ctx) })
	case "hello":
		s.post(term, func() error { return term.Run(extension.HelloCommand) })
	case "help", "?":
		term.Notify(watchHelp)
	default:
		return false, errors.Errorf("unknown command %q (%s)", name, watchHelp)
	}
	return false, nil
}
