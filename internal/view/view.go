// Package view renders API snapshots for the terminal.
//
// Every renderer is a pure function of the values passed in: text mode
// writes aligned tables, JSON mode writes the values as indented JSON.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formats lists the accepted formats.
var Formats = []Format{FormatText, FormatJSON}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q: must be one of %v", s, Formats)
}

const dateLayout = "2006-01-02"

var printer = message.NewPrinter(language.English)

// Money formats an amount with thousands grouping and two decimals.
func Money(d decimal.Decimal) string {
	return printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

// Renderer writes views to W in the chosen format.
type Renderer struct {
	W      io.Writer
	Format Format
}

// New returns a renderer for w.
func New(w io.Writer, format Format) *Renderer {
	if format == "" {
		format = FormatText
	}
	return &Renderer{W: w, Format: format}
}

func (r *Renderer) json(v any) error {
	enc := json.NewEncoder(r.W)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Message prints a one-line confirmation in text mode, or v in JSON mode.
func (r *Renderer) Message(v any, format string, args ...any) error {
	if r.Format == FormatJSON {
		return r.json(v)
	}
	_, err := fmt.Fprintf(r.W, format+"\n", args...)
	return err
}

type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, headers ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(headers...)
	return t
}

func (t *table) row(cells ...string) {
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.tw.Flush()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}
