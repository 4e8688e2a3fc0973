package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bekirdag/propbook/internal/datatable"
	"github.com/bekirdag/propbook/internal/inventory"
)

func receipt(t *testing.T) HandReceipt {
	t.Helper()
	d, err := inventory.Seed()
	require.NoError(t, err)
	return HandReceipt{
		Number: "HR-0042",
		Unit:   "B Co, 1-22 IN",
		From:   "CPT Diaz",
		To:     "SSG Alvarez",
		Date:   time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC),
		Items:  d.Equipment,
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, ".pdf", f.Ext())

	_, err = ParseFormat("docx")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestHandReceiptPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HandReceiptPDF(&buf, receipt(t)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, buf.String(), "/Subtype /Image")
}

func TestHandReceiptPDFManyPages(t *testing.T) {
	hr := receipt(t)
	for i := 0; i < 5; i++ {
		hr.Items = append(hr.Items, hr.Items...)
	}
	var buf bytes.Buffer
	require.NoError(t, HandReceiptPDF(&buf, hr))
	assert.Greater(t, strings.Count(buf.String(), "/Type /Page\n"), 1)
}

func TestHandReceiptPDFErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, HandReceiptPDF(&buf, HandReceipt{}), ErrNoRows)

	hr := receipt(t)
	hr.Items = []inventory.Equipment{{Serial: "SN-é", Quantity: 1}}
	err := HandReceiptPDF(&buf, hr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SN-é")
}

func TestRegisterHTMLEscapes(t *testing.T) {
	r := Report{
		Title:     "Register",
		Generated: time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC),
		Headers:   []string{"Serial", "Note"},
		Rows:      [][]string{{"W1", "<script>alert(1)</script>"}},
	}
	var buf bytes.Buffer
	require.NoError(t, RegisterHTML(&buf, r))
	out := buf.String()
	assert.Contains(t, out, "<th>Serial</th>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, "20 Apr 2024")

	assert.ErrorIs(t, RegisterHTML(&buf, Report{}), ErrNoRows)
}

func TestWrite(t *testing.T) {
	hr := receipt(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatHTML, hr))
	assert.Contains(t, buf.String(), "Hand Receipt HR-0042")
	assert.Contains(t, buf.String(), "PVS14-22071")

	assert.ErrorIs(t, Write(&buf, Format("xml"), hr), ErrUnknownFormat)
}

func TestRegisterCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, receipt(t)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "LIN,NSN,Nomenclature,Serial,Qty,Value", lines[0])
	assert.Len(t, lines, 1+len(receipt(t).Items))

	assert.ErrorIs(t, RegisterCSV(&buf, Report{}), ErrNoRows)
}

func TestFromTable(t *testing.T) {
	type row struct {
		ID   string    `table:"id"`
		When time.Time `table:"when"`
		Cost float64   `table:"cost"`
		Lost *string   `table:"lost"`
	}
	cols := []datatable.Column[row]{
		{ID: "id", Label: "ID"},
		{ID: "when", Label: "When"},
		{ID: "cost", Label: "Cost", Numeric: true},
		{ID: "lost", Label: "Lost"},
		{ID: "flag", Label: "Flag", GetValue: func(r row) any { return r.Cost > 1 }},
	}
	rows := []row{{ID: "a", When: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Cost: 2}}
	r := FromTable("Items", cols, rows)

	assert.Equal(t, []string{"ID", "When", "Cost", "Lost", "Flag"}, r.Headers)
	if diff := cmp.Diff([][]string{{"a", "02 Jan 2024", "2.00", datatable.EmptyCell, "Yes"}}, r.Rows); diff != "" {
		t.Fatalf("rows (-want +got):\n%s", diff)
	}
}

func TestHandReceiptTotal(t *testing.T) {
	hr := HandReceipt{Items: []inventory.Equipment{{Quantity: 2, UnitPrice: 1.5}, {Quantity: 1, UnitPrice: 4}}}
	assert.InDelta(t, 7.0, hr.Total(), 1e-9)
	assert.Equal(t, "3.00", hr.Report().Rows[0][5])
}
