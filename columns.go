package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bekirdag/propbook/internal/datatable"
	"github.com/bekirdag/propbook/internal/export"
	"github.com/bekirdag/propbook/internal/inventory"
)

func equipmentColumns() []datatable.Column[inventory.Equipment] {
	return []datatable.Column[inventory.Equipment]{
		{ID: "serial", Label: "Serial"},
		{ID: "nomenclature", Label: "Nomenclature", Width: 30},
		{ID: "status", Label: "Status"},
		{ID: "holder", Label: "Holder"},
		{ID: "location", Label: "Location"},
		{ID: "quantity", Label: "Qty", Numeric: true},
		{ID: "value", Label: "Value", Numeric: true},
		{ID: "nextServiceDate", Label: "Next service"},
	}
}

func sensitiveColumns() []datatable.Column[inventory.SensitiveItem] {
	return []datatable.Column[inventory.SensitiveItem]{
		{ID: "serial", Label: "Serial"},
		{ID: "nomenclature", Label: "Nomenclature", Width: 30},
		{ID: "category", Label: "Category"},
		{ID: "custodian", Label: "Custodian"},
		{ID: "vault", Label: "Vault"},
		{ID: "status", Label: "Status"},
		{ID: "lastVerifiedDate", Label: "Last verified"},
		{ID: "verified", Label: "Verified"},
	}
}

func activityColumns() []datatable.Column[inventory.Activity] {
	return []datatable.Column[inventory.Activity]{
		{ID: "timestamp", Label: "When"},
		{ID: "actor", Label: "Actor"},
		{ID: "action", Label: "Action"},
		{ID: "subject", Label: "Subject"},
		{ID: "details", Label: "Details", DisableSort: true, Width: 36},
	}
}

const (
	dateLayout      = "02 Jan 2006"
	timestampLayout = "02 Jan 2006 15:04"
)

func formatDate(v any) string {
	t, ok := v.(time.Time)
	if !ok || t.IsZero() {
		return datatable.FormatValue(v)
	}
	return t.Format(dateLayout)
}

func formatNumber(v any) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", n)
	case int:
		return fmt.Sprintf("%d", n)
	}
	return datatable.FormatValue(v)
}

// cellRenderers returns the shared renderer set. A nil styles renders plain
// text for non-interactive output.
func cellRenderers[T any](s *styles) datatable.CellRenderers[T] {
	r := datatable.CellRenderers[T]{
		Custom: map[string]datatable.CellRenderer[T]{
			"timestamp": func(v any, _ T, _ int) string {
				if t, ok := v.(time.Time); ok {
					return t.Local().Format(timestampLayout)
				}
				return datatable.FormatValue(v)
			},
		},
		Status: func(v any, _ T, _ int) string {
			if s == nil || v == nil {
				return datatable.FormatValue(v)
			}
			return s.statusPill(fmt.Sprint(v))
		},
		Date:    func(v any, _ T, _ int) string { return formatDate(v) },
		Numeric: func(v any, _ T, _ int) string { return formatNumber(v) },
		Boolean: func(v any, _ T, _ int) string {
			b, _ := v.(bool)
			text := "No"
			if b {
				text = "Yes"
			}
			if s == nil {
				return text
			}
			if b {
				return s.toast.Render("✓ " + text)
			}
			return s.toastErr.Render("✗ " + text)
		},
	}
	return r
}

// listQuery drives the non-interactive list output.
type listQuery struct {
	SortBy  string
	Order   datatable.Order
	Page    int
	PerPage int
	Search  string
	Status  string
}

// tableRows sorts, filters and pages rows through the table engine and
// returns header labels and plain cell text.
func tableRows[T datatable.Fielder](cols []datatable.Column[T], rows []T, searchFields []string, q listQuery) ([]string, [][]string, error) {
	if err := datatable.ValidateColumns(cols); err != nil {
		return nil, nil, err
	}
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = cols[0].ID
	}
	if !slices.ContainsFunc(cols, func(c datatable.Column[T]) bool { return c.ID == sortBy && c.Sortable() }) {
		return nil, nil, fmt.Errorf("cannot sort by %q", sortBy)
	}
	var statuses map[string]bool
	if q.Status != "" {
		statuses = map[string]bool{strings.ToUpper(q.Status): true}
	}
	rows = inventory.Filter(rows, q.Search, statuses, searchFields...)
	rows = datatable.SortRows(rows, sortBy, q.Order)
	if q.PerPage > 0 {
		rows, _ = datatable.Paginate(rows, q.Page, q.PerPage)
	}

	renderers := cellRenderers[T](nil)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Label
	}
	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		cells := make([]string, len(cols))
		for ci, c := range cols {
			cells[ci] = renderers.Render(c, datatable.CellValue(c, row), row, i)
		}
		out = append(out, cells)
	}
	return headers, out, nil
}

// datasetNames are the datasets accepted by the list command.
var datasetNames = []string{"equipment", "sensitive", "activity"}

func datasetRows(d inventory.Dataset, name string, q listQuery) ([]string, [][]string, error) {
	switch name {
	case "equipment":
		return tableRows(equipmentColumns(), d.Equipment, inventory.EquipmentSearchFields, q)
	case "sensitive", "sensitive-items":
		return tableRows(sensitiveColumns(), d.SensitiveItems, inventory.SensitiveSearchFields, q)
	case "activity":
		return tableRows(activityColumns(), d.Activity, inventory.ActivitySearchFields, q)
	}
	return nil, nil, fmt.Errorf("unknown dataset %q (want one of %v)", name, datasetNames)
}

// handReceiptFor builds a hand receipt for the given equipment ids in the
// order the ids are given.
func handReceiptFor(d inventory.Dataset, ids []string, unit, from string, at time.Time) export.HandReceipt {
	byID := make(map[string]inventory.Equipment, len(d.Equipment))
	for _, e := range d.Equipment {
		byID[e.ID] = e
	}
	hr := export.HandReceipt{
		Number: at.Format("20060102-1504"),
		Unit:   unit,
		From:   from,
		Date:   at,
	}
	holders := map[string]bool{}
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			hr.Items = append(hr.Items, e)
			holders[e.Holder] = true
		}
	}
	if len(holders) == 1 {
		for h := range holders {
			hr.To = h
		}
	}
	return hr
}
