// Package export writes hand receipts as PDF and property registers as HTML
// or CSV.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bekirdag/propbook/internal/datatable"
	"github.com/bekirdag/propbook/internal/inventory"
)

var (
	ErrNoRows        = errors.New("export: nothing to export")
	ErrUnknownFormat = errors.New("export: unknown format")
)

// Format is an output document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	FormatCSV  Format = "csv"
)

// Formats lists the supported formats.
var Formats = []Format{FormatPDF, FormatHTML, FormatCSV}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// Ext is the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Report is a titled grid of plain text cells.
type Report struct {
	Title     string
	Unit      string
	Generated time.Time
	Headers   []string
	Rows      [][]string
}

// DateLayout is used for every date printed in a document.
const DateLayout = "02 Jan 2006"

// FromTable builds a report from rows using the columns of a table, so the
// document matches what the screen shows in the same order.
func FromTable[T any](title string, cols []datatable.Column[T], rows []T) Report {
	r := Report{Title: title, Generated: time.Now()}
	for _, c := range cols {
		r.Headers = append(r.Headers, c.Label)
	}
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = Plain(datatable.CellValue(c, row))
		}
		r.Rows = append(r.Rows, cells)
	}
	return r
}

// Plain formats a cell value without terminal styling.
func Plain(v any) string {
	switch v := v.(type) {
	case time.Time:
		if v.IsZero() {
			return datatable.EmptyCell
		}
		return v.Format(DateLayout)
	case float64:
		return fmt.Sprintf("%.2f", v)
	}
	return datatable.FormatValue(v)
}

// HandReceipt transfers responsibility for Items from From to To.
type HandReceipt struct {
	Number string
	Unit   string
	From   string
	To     string
	Date   time.Time
	Items  []inventory.Equipment
}

var handReceiptHeaders = []string{"LIN", "NSN", "Nomenclature", "Serial", "Qty", "Value"}

// Report flattens the receipt into a register.
func (h HandReceipt) Report() Report {
	r := Report{
		Title:     "Hand Receipt " + h.Number,
		Unit:      h.Unit,
		Generated: h.Date,
		Headers:   handReceiptHeaders,
	}
	for _, e := range h.Items {
		r.Rows = append(r.Rows, []string{e.LIN, e.NSN, e.Nomenclature, e.Serial, fmt.Sprint(e.Quantity), Plain(e.Value())})
	}
	return r
}

// Total is the summed value of all items.
func (h HandReceipt) Total() float64 {
	var t float64
	for _, e := range h.Items {
		t += e.Value()
	}
	return t
}

// Write renders h in format f.
func Write(w io.Writer, f Format, h HandReceipt) error {
	switch f {
	case FormatPDF:
		return HandReceiptPDF(w, h)
	case FormatHTML:
		return RegisterHTML(w, h.Report())
	case FormatCSV:
		return RegisterCSV(w, h.Report())
	}
	return fmt.Errorf("%q: %w", f, ErrUnknownFormat)
}
