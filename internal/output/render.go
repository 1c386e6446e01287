package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
)

// NoResults is printed by human formats when there is nothing to show.
const NoResults = "No results"

// Formats lists the accepted format names.
func Formats() []string {
	return []string{FormatTable, FormatJSON, FormatCSV, FormatMarkdown, FormatYAML}
}

// Options tunes rendering.
type Options struct {
	// Colorize enables ANSI styling of table headers.
	Colorize bool
}

// ShouldColorize reports whether w is an interactive terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Render writes records to w in the named format.
func Render(w io.Writer, format string, records []Record, opts Options) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatTable:
		return renderTabular(w, records, opts, (table.Writer).Render)
	case FormatMarkdown:
		return renderTabular(w, records, Options{}, (table.Writer).RenderMarkdown)
	case FormatCSV:
		return renderCSV(w, records)
	case FormatJSON:
		return renderJSON(w, records)
	case FormatYAML:
		return renderYAML(w, records)
	default:
		return fmt.Errorf("unknown output format %q (choose from %s)", format, strings.Join(Formats(), ", "))
	}
}

// ValidFormat reports whether format is one Render accepts.
func ValidFormat(format string) bool {
	return slices.Contains(Formats(), strings.ToLower(strings.TrimSpace(format)))
}

func renderTabular(w io.Writer, records []Record, opts Options, render func(table.Writer) string) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, NoResults)
		return err
	}
	headers := columns(records)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	if opts.Colorize {
		tw.Style().Color.Header = text.Colors{text.Bold}
	}

	header := make(table.Row, len(headers))
	for i, name := range headers {
		header[i] = name
	}
	tw.AppendHeader(header)

	for _, record := range records {
		row := make(table.Row, len(headers))
		for i, name := range headers {
			value, _ := record.Get(name)
			row[i] = cell(value)
		}
		tw.AppendRow(row)
	}

	_, err := fmt.Fprintln(w, render(tw))
	return err
}

// renderCSV writes RFC 4180 rows; go-pretty's CSV mode backslash-escapes
// commas inside quoted cells, which csv readers keep as literal text.
func renderCSV(w io.Writer, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	headers := columns(records)
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	row := make([]string, len(headers))
	for _, record := range records {
		for i, name := range headers {
			value, _ := record.Get(name)
			row[i] = cell(value)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

func renderYAML(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
