package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/web"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve FILE...",
		Short: "Serve highlighted files to a browser",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd, args)
		},
	}
	fl := cmd.Flags()
	fl.String("addr", "127.0.0.1:8080", "listen address")
	fl.Bool("open", false, "open the UI in the default browser")
	fl.Int("debounce-ms", 150, "delay before reloading a changed file")
	return cmd
}

func (a *app) serve(cmd *cobra.Command, paths []string) (err error) {
	ctx := cmd.Context()
	log := logger(cmd)

	ws, err := a.openWorkspace(paths)
	if err != nil {
		return err
	}
	renderer := web.NewRenderer(ws)
	s, err := a.startSession(ctx, ws, renderer)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.stop()) }()

	ready := func(addr string) {
		url := "http://" + addr + "/"
		fmt.Fprintf(cmd.ErrOrStderr(), "todohl: serving %d file(s) on %s\n", len(paths), url)
		if a.settings.OpenBrowser && a.openURL != nil {
			if err := a.openURL(url); err != nil {
				log.Warn().Err(err).Str("url", url).Msg("could not open browser")
			}
		}
		if a.served != nil {
			a.served(url)
		}
	}
	return web.ListenAndServe(ctx, a.settings.Addr, renderer.Handler(), ready)
}
