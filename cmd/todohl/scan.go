package main

import (
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/highlight"
	"github.com/phyten/todohl/internal/host"
	"github.com/phyten/todohl/internal/marker"
	"github.com/phyten/todohl/internal/model"
	"github.com/phyten/todohl/internal/output"
)

const stdinID = "<stdin>"

func newScanCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [FILE|-]",
		Short: "Print the markers of one file",
		Long:  "Scan one file (or stdin) once and print its TODO, FIXME and HACK spans.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return a.scan(cmd, path)
		},
	}
	fl := cmd.Flags()
	fl.StringP("output", "o", "", "table|tsv|json|ndjson|csv|md|ansi")
	fl.String("fields", "", "comma separated columns: category,file,line,col,location,start,end,text")
	fl.Bool("gutter", true, "show line numbers with --output ansi")
	fl.Int("tab-width", 4, "tab stop width with --output ansi")
	return cmd
}

func (a *app) readDocument(path string) (host.Document, error) {
	if path == "-" {
		data, err := io.ReadAll(a.in)
		if err != nil {
			return nil, errors.Errorf("read stdin: %w", err)
		}
		return host.NewTextDocument(stdinID, string(data), model.Runes), nil
	}
	id := absPaths(a.cwd, []string{path})[0]
	data, err := afero.ReadFile(a.fs, id)
	if err != nil {
		return nil, errors.Errorf("read %s: %w", path, err)
	}
	return host.NewTextDocument(path, string(data), model.Runes), nil
}

func (a *app) scan(cmd *cobra.Command, path string) error {
	s := a.settings
	format, err := output.ParseFormat(s.Output)
	if err != nil {
		return err
	}
	fields, err := output.ResolveFields(s.Fields)
	if err != nil {
		return err
	}
	doc, err := a.readDocument(path)
	if err != nil {
		return err
	}

	reg := marker.Default()
	set := highlight.Scan(reg, doc.Text(), doc)
	logger(cmd).Debug().Str("document", doc.ID()).Int("spans", set.Total()).Msg("scanned")

	return output.Write(cmd.OutOrStdout(), format, output.Report{Doc: doc, Registry: reg, Set: set}, output.Options{
		Fields:   fields,
		Color:    a.colorFor(cmd.OutOrStdout()),
		Gutter:   s.Gutter,
		TabWidth: s.TabWidth,
	})
}
