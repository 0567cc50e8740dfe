// Package output renders scan results: report formats for the scan command
// and a terminal renderer for the watch command.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/phyten/todohl/internal/highlight"
	"github.com/phyten/todohl/internal/host"
	"github.com/phyten/todohl/internal/marker"
	"github.com/phyten/todohl/internal/model"
	"github.com/phyten/todohl/internal/termcolor"
	"github.com/phyten/todohl/internal/textutil"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatTSV      Format = "tsv"
	FormatJSON     Format = "json"
	FormatNDJSON   Format = "ndjson"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatANSI     Format = "ansi"
)

func ParseFormat(v string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "table":
		return FormatTable, nil
	case "tsv":
		return FormatTSV, nil
	case "json":
		return FormatJSON, nil
	case "ndjson", "jsonl":
		return FormatNDJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "ansi":
		return FormatANSI, nil
	default:
		return "", errors.Errorf("unknown output format: %s", v)
	}
}

// Row is one highlighted span of a scanned document.
type Row struct {
	Category string      `json:"category"`
	File     string      `json:"file"`
	Start    int         `json:"start"`
	End      int         `json:"end"`
	Range    model.Range `json:"range"`
	Text     string      `json:"text"`
}

// Location formats the start of the span as 1-based file:line:col.
func (r Row) Location() string {
	return fmt.Sprintf("%s:%d:%d", r.File, r.Range.Start.Line+1, r.Range.Start.Col+1)
}

// Rows flattens set into document order. Spans starting at the same offset
// keep registry order.
func Rows(doc host.Document, set highlight.Set) []Row {
	text := doc.Text()
	rows := make([]Row, 0, set.Total())
	for _, e := range set.Entries {
		for _, sp := range e.Spans {
			rows = append(rows, Row{
				Category: e.Category,
				File:     doc.ID(),
				Start:    sp.Start,
				End:      sp.End,
				Range:    sp.Range,
				Text:     text[sp.Start:sp.End],
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Start < rows[j].Start })
	return rows
}

// Report is everything one scan produced.
type Report struct {
	Doc      host.Document
	Registry *marker.Registry
	Set      highlight.Set
}

type Options struct {
	Fields   []Field
	Color    termcolor.Settings
	Gutter   bool
	TabWidth int
}

// Write renders rep in format f.
func Write(w io.Writer, f Format, rep Report, opts Options) error {
	fields := opts.Fields
	if len(fields) == 0 {
		fields, _ = ResolveFields("")
	}
	rows := Rows(rep.Doc, rep.Set)
	switch f {
	case FormatTable:
		return WriteTable(w, rows, fields, opts.Color)
	case FormatTSV:
		return WriteTSV(w, rows, fields)
	case FormatJSON:
		return WriteJSON(w, rep.Doc.ID(), rep.Set, rows)
	case FormatNDJSON:
		return WriteNDJSON(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows, fields)
	case FormatMarkdown:
		return WriteMarkdownTable(w, rows, fields)
	case FormatANSI:
		return WriteANSI(w, rep.Doc.Text(), rep.Registry, rep.Set, DrawOptions{
			Color:    opts.Color,
			Gutter:   opts.Gutter,
			TabWidth: opts.TabWidth,
		})
	default:
		return errors.Errorf("unknown output format: %s", f)
	}
}

const tableGap = 2

// WriteTable renders rows as aligned columns. The header is styled when
// color is enabled; columns are sized on display width, so escape codes and
// wide characters do not shift them.
func WriteTable(w io.Writer, rows []Row, fields []Field, color termcolor.Settings) error {
	headers := Headers(fields)
	cells := make([][]string, 0, len(rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = textutil.VisibleWidth(h)
	}
	for _, r := range rows {
		values := RowValues(r, fields)
		for i, v := range values {
			widths[i] = max(widths[i], textutil.VisibleWidth(v))
		}
		cells = append(cells, values)
	}

	line := func(values []string, style func(string) string) string {
		var b strings.Builder
		for i, v := range values {
			if i < len(values)-1 {
				v = textutil.PadRight(v, widths[i]+tableGap)
			}
			b.WriteString(style(v))
		}
		return b.String()
	}
	header := line(headers, func(s string) string {
		// padding stays outside the escape codes
		trimmed := strings.TrimRight(s, " ")
		return termcolor.Apply(termcolor.HeaderStyle(), trimmed, color.Enabled) + s[len(trimmed):]
	})
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	plain := func(s string) string { return s }
	for _, values := range cells {
		if _, err := fmt.Fprintln(w, line(values, plain)); err != nil {
			return err
		}
	}
	return nil
}

func WriteTSV(w io.Writer, rows []Row, fields []Field) error {
	if _, err := fmt.Fprintln(w, strings.Join(Headers(fields), "\t")); err != nil {
		return err
	}
	for _, r := range rows {
		vals := RowValues(r, fields)
		for i := range vals {
			vals[i] = strings.ReplaceAll(vals[i], "\t", " ")
		}
		if _, err := fmt.Fprintln(w, strings.Join(vals, "\t")); err != nil {
			return err
		}
	}
	return nil
}

type jsonReport struct {
	File    string            `json:"file"`
	Total   int               `json:"total"`
	Counts  []jsonCount       `json:"counts"`
	Items   []Row             `json:"items"`
	Entries []highlight.Entry `json:"entries"`
}

type jsonCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// WriteJSON writes a single JSON document with per-category counts in
// registry order.
func WriteJSON(w io.Writer, file string, set highlight.Set, rows []Row) error {
	rep := jsonReport{File: file, Total: set.Total(), Items: rows, Entries: set.Entries}
	for _, e := range set.Entries {
		rep.Counts = append(rep.Counts, jsonCount{Category: e.Category, Count: len(e.Spans)})
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteNDJSON streams rows as newline-delimited JSON objects.
func WriteNDJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV renders rows as RFC 4180 compliant CSV (including CRLF endings).
func WriteCSV(w io.Writer, rows []Row, fields []Field) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	if err := writer.Write(Headers(fields)); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write(RowValues(r, fields)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMarkdownTable renders rows as a GitHub Flavored Markdown table.
func WriteMarkdownTable(w io.Writer, rows []Row, fields []Field) error {
	headers := Headers(fields)
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(headers, " | ")); err != nil {
		return err
	}
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(sep, " | ")); err != nil {
		return err
	}
	for _, r := range rows {
		vals := RowValues(r, fields)
		for i := range vals {
			vals[i] = escapeMarkdownCell(vals[i])
		}
		if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(vals, " | ")); err != nil {
			return err
		}
	}
	return nil
}

func escapeMarkdownCell(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "<br>")
	s = strings.ReplaceAll(s, "|", "\\|")
	return s
}

// WriteANSI prints the whole document with every span painted in its
// category color.
func WriteANSI(w io.Writer, text string, reg *marker.Registry, set highlight.Set, opts DrawOptions) error {
	layers := make([]highlight.Layer, 0, len(set.Entries))
	for _, e := range set.Entries {
		ranges := make([]model.Range, len(e.Spans))
		for i, sp := range e.Spans {
			ranges[i] = sp.Range
		}
		layers = append(layers, highlight.Layer{Style: e.Category, Ranges: ranges})
	}
	paint := func(name string) termcolor.Style {
		c, ok := reg.Lookup(name)
		if !ok {
			return termcolor.Style{}
		}
		return termcolor.HighlightStyle(c.Style.Background(), opts.Color.Profile)
	}
	var b strings.Builder
	drawDocument(&b, text, layers, paint, opts)
	_, err := io.WriteString(w, b.String())
	return err
}
