package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bekirdag/propbook/internal/datatable"
	"github.com/bekirdag/propbook/internal/export"
	"github.com/bekirdag/propbook/internal/inventory"
	"github.com/bekirdag/propbook/internal/routes"
)

const (
	pathDashboard = "/"
	pathEquipment = "/equipment"
	pathSensitive = "/sensitive-items"
	pathActivity  = "/activity"
	pathHelp      = "/help"
)

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func newEquipmentPage(app *appContext) (routes.Page, error) {
	p := newTablePage(app, pathEquipment, "Equipment", "Property book lines on hand receipt",
		func(d inventory.Dataset) []inventory.Equipment { return d.Equipment },
		inventory.EquipmentSearchFields)
	p.detail = equipmentDetail

	notStatus := func(status string) func(inventory.Equipment) bool {
		return func(e inventory.Equipment) bool { return e.Status != status }
	}
	err := p.build(datatable.Config[inventory.Equipment]{
		Columns:           equipmentColumns(),
		Title:             "Property book",
		Selectable:        true,
		Searchable:        true,
		Filterable:        true,
		DefaultSortColumn: "serial",
		EmptyMessage:      "No equipment matches the current search",
		Actions: []datatable.Action{
			{Label: "Refresh", Key: "r", OnClick: func() tea.Cmd { return emit(reloadMsg{}) }},
		},
		SelectionActions: []datatable.SelectionAction{
			{Label: "Hand receipt (PDF)", OnClick: func(ids []string) tea.Cmd {
				return emit(exportRequestMsg{format: export.FormatPDF, ids: ids})
			}},
			{Label: "Register (HTML)", OnClick: func(ids []string) tea.Cmd {
				return emit(exportRequestMsg{format: export.FormatHTML, ids: ids})
			}},
			{Label: "Register (CSV)", OnClick: func(ids []string) tea.Cmd {
				return emit(exportRequestMsg{format: export.FormatCSV, ids: ids})
			}},
			{Label: "Copy serials", OnClick: func([]string) tea.Cmd {
				var serials []string
				for _, e := range p.table.SelectedRows() {
					if e.Serial != "" {
						serials = append(serials, e.Serial)
					}
				}
				return emit(copySerialsMsg{serials: serials})
			}},
			{Label: "Mark FMC", OnClick: func(ids []string) tea.Cmd {
				return emit(statusChangeMsg{ids: ids, status: inventory.FMC})
			}},
		},
		RowActions: []datatable.RowAction[inventory.Equipment]{
			{Label: "Details", OnClick: p.showDetail},
			{Label: "Mark FMC", Visible: notStatus(inventory.FMC), OnClick: func(e inventory.Equipment) tea.Cmd {
				return emit(statusChangeMsg{ids: []string{e.ID}, status: inventory.FMC})
			}},
			{Label: "Deadline", Visible: notStatus(inventory.NMC), OnClick: func(e inventory.Equipment) tea.Cmd {
				return emit(statusChangeMsg{ids: []string{e.ID}, status: inventory.NMC})
			}},
		},
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func equipmentDetail(e inventory.Equipment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", e.Nomenclature)
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	rows := [][2]string{
		{"Serial", e.Serial},
		{"NSN", e.NSN},
		{"LIN", e.LIN},
		{"Status", e.Status},
		{"Holder", e.Holder},
		{"Location", e.Location},
		{"Quantity", fmt.Sprint(e.Quantity)},
		{"Unit price", formatNumber(e.UnitPrice)},
		{"Last inventory", export.Plain(e.LastInventoryDate)},
		{"Next service", export.Plain(e.NextServiceDate)},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", r[0], r[1])
	}
	if e.Sensitive {
		b.WriteString("\n**Sensitive item.** Serial must be verified on each inventory.\n")
	}
	return b.String()
}

func newSensitivePage(app *appContext) (routes.Page, error) {
	p := newTablePage(app, pathSensitive, "Sensitive Items", "Weapons, optics and COMSEC by vault",
		func(d inventory.Dataset) []inventory.SensitiveItem { return d.SensitiveItems },
		inventory.SensitiveSearchFields)

	verify := func(ids []string) tea.Cmd { return emit(verifyMsg{ids: ids}) }
	cfg := datatable.Config[inventory.SensitiveItem]{
		Columns:           sensitiveColumns(),
		Title:             "Sensitive items",
		Selectable:        true,
		Searchable:        true,
		Filterable:        true,
		DefaultSortColumn: "vault",
		EmptyMessage:      "No sensitive items",
		Actions: []datatable.Action{
			{Label: "Export CSV", Key: "e", OnClick: p.exportRegister},
		},
		SelectionActions: []datatable.SelectionAction{
			{Label: "Verify", OnClick: verify},
		},
		RowActions: []datatable.RowAction[inventory.SensitiveItem]{
			{
				Label:   "Verify",
				Visible: func(it inventory.SensitiveItem) bool { return !it.Verified },
				OnClick: func(it inventory.SensitiveItem) tea.Cmd { return verify([]string{it.ID}) },
			},
		},
	}
	for i, c := range cfg.Columns {
		if c.ID == "lastVerifiedDate" {
			cfg.Columns[i].RenderCell = app.verifiedCell
		}
	}
	if err := p.build(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// verificationWindow is how long a serial check stays current.
const verificationWindow = 30 * 24 * time.Hour

// verifiedCell flags serial checks older than verificationWindow.
func (a *appContext) verifiedCell(v any, _ inventory.SensitiveItem, _ int) string {
	t, ok := v.(time.Time)
	if !ok {
		return a.styles.toastErr.Render("never")
	}
	text := formatDate(t)
	if a.now().Sub(t) > verificationWindow {
		return a.styles.toastErr.Render(text + " (overdue)")
	}
	return text
}

func newActivityPage(app *appContext) (routes.Page, error) {
	p := newTablePage(app, pathActivity, "Activity Log", "Recorded property actions, newest first",
		func(d inventory.Dataset) []inventory.Activity { return d.Activity },
		inventory.ActivitySearchFields)
	err := p.build(datatable.Config[inventory.Activity]{
		Columns:              activityColumns(),
		Title:                "Activity",
		Searchable:           true,
		DefaultSortColumn:    "timestamp",
		DefaultSortDirection: datatable.Desc,
		EmptyMessage:         "No activity recorded",
		Actions: []datatable.Action{
			{Label: "Refresh", Key: "r", OnClick: func() tea.Cmd { return emit(reloadMsg{}) }},
			{Label: "Export CSV", Key: "e", OnClick: p.exportRegister},
		},
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
