package main

import (
	"os"

	"github.com/neovim/go-client/nvim"
	"github.com/neovim/go-client/nvim/plugin"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/marker"
	"github.com/phyten/todohl/internal/nvimhost"
)

func newNvimCommand(a *app) *cobra.Command {
	var manifest string
	cmd := &cobra.Command{
		Use:   "nvim",
		Short: "Run as a neovim remote plugin",
		Long: "Serve the neovim msgpack-rpc protocol on stdin/stdout. With --manifest,\n" +
			"print the plugin manifest for the given host name instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if manifest != "" {
				return a.nvimManifest(cmd, manifest)
			}
			return a.nvimServe(cmd)
		},
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", "print the manifest for host `NAME` and exit")
	return cmd
}

func (a *app) nvimManifest(cmd *cobra.Command, hostName string) error {
	p := plugin.New(nil)
	nvimhost.Register(cmd.Context(), p, marker.Default())
	_, err := cmd.OutOrStdout().Write(p.Manifest(hostName))
	return err
}

// nvimServe blocks until neovim closes the connection. Stdout carries the
// RPC stream, so nothing else may write to it.
func (a *app) nvimServe(cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := logger(cmd)

	v, err := nvim.New(os.Stdin, os.Stdout, os.Stdout, func(format string, args ...any) {
		log.Debug().Msgf(format, args...)
	})
	if err != nil {
		return errors.Errorf("connect to neovim: %w", err)
	}
	p := plugin.New(v)
	pl := nvimhost.Register(ctx, p, marker.Default())

	go func() {
		<-ctx.Done()
		_ = v.Close()
	}()
	log.Info().Msg("neovim plugin serving")
	serveErr := v.Serve()
	if err := pl.Shutdown(); err != nil {
		log.Debug().Err(err).Msg("shutdown after disconnect")
	}
	if serveErr != nil && ctx.Err() == nil {
		return errors.Errorf("neovim rpc: %w", serveErr)
	}
	return nil
}
