package main

import (
	"fmt"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bekirdag/propbook/internal/datatable"
	"github.com/bekirdag/propbook/internal/inventory"
	"github.com/bekirdag/propbook/internal/routes"
)

const (
	recentActivityRows = 5
	chartWidth         = 30
)

type dashboardPage struct {
	app    *appContext
	recent *datatable.Model[inventory.Activity]
	width  int
	height int
}

func newDashboardPage(app *appContext) (routes.Page, error) {
	st := app.styles.tableStyles()
	cols := activityColumns()[:4]
	recent, err := datatable.New(datatable.Config[inventory.Activity]{
		Columns:              cols,
		Title:                "Recent activity",
		DefaultSortColumn:    "timestamp",
		DefaultSortDirection: datatable.Desc,
		CellRenderers:        cellRenderers[inventory.Activity](&app.styles),
		EmptyMessage:         "No activity recorded",
		Loading:              !app.loaded,
		Dense:                app.cfg.Dense,
		Styles:               &st,
		Logger:               app.logger,
		OnRowClick: func(inventory.Activity, int) tea.Cmd {
			return emit(navigateMsg{path: pathActivity})
		},
	})
	if err != nil {
		return nil, fmt.Errorf("recent activity table: %w", err)
	}
	d := &dashboardPage{app: app, recent: recent}
	d.reload()
	return d, nil
}

// latest returns the n newest activity entries.
func latest(entries []inventory.Activity, n int) []inventory.Activity {
	sorted := datatable.SortRows(entries, "timestamp", datatable.Desc)
	return sorted[:min(n, len(sorted))]
}

func (d *dashboardPage) reload() tea.Cmd {
	d.recent.SetData(latest(d.app.data.Activity, recentActivityRows))
	if d.app.err != nil {
		d.recent.SetError(d.app.err.Error())
	} else {
		d.recent.SetError("")
	}
	return d.recent.SetLoading(!d.app.loaded)
}

func (d *dashboardPage) Init() tea.Cmd { return d.recent.Init() }

func (d *dashboardPage) Update(msg tea.Msg) (routes.Page, tea.Cmd) {
	switch msg.(type) {
	case dataChangedMsg:
		return d, d.reload()
	case themeChangedMsg:
		d.recent.SetStyles(d.app.styles.tableStyles())
		return d, nil
	}
	_, cmd := d.recent.Update(msg)
	return d, cmd
}

func (d *dashboardPage) SetSize(width, height int) {
	d.width, d.height = width, height
	d.recent.SetWidth(width)
}

// SetOrigin places the recent activity table below the cards and chart.
func (d *dashboardPage) SetOrigin(x, y int) {
	above := lipgloss.Height(d.header()) + lipgloss.Height(d.cards()) + lipgloss.Height(d.chart())
	d.recent.SetOrigin(x, y+above)
}

func (d *dashboardPage) header() string {
	s := d.app.styles
	unit := d.app.cfg.Unit
	if unit == "" {
		unit = "Property book overview"
	}
	return s.pageTitle.Render("Dashboard") + "\n" + s.pageSubtitle.Render(unit)
}

func (d *dashboardPage) cards() string {
	s := d.app.styles
	sum := d.app.data.Summary(d.app.now())
	card := func(label, value string) string {
		return s.card.Width(18).Render(s.cardLabel.Render(label) + "\n" + s.cardValue.Render(value))
	}
	last := "—"
	if !sum.LastActivity.IsZero() {
		last = sum.LastActivity.Local().Format(timestampLayout)
	}
	return flow(d.width, []string{
		card("Lines", fmt.Sprint(len(d.app.data.Equipment))),
		card("Items on hand", fmt.Sprint(sum.TotalItems)),
		card("Readiness", percent(sum.Readiness)),
		card("Book value", "$"+formatNumber(sum.TotalValue)),
		card("Serials verified", fmt.Sprintf("%d/%d", sum.Verified, sum.Sensitive)),
		card("Service due", fmt.Sprint(sum.ServiceDueSoon)),
		card("Last activity", last),
	})
}

// flow lays blocks left to right, wrapping to a new row at width. A zero
// width keeps a single row.
func flow(width int, blocks []string) string {
	var rows []string
	var row []string
	used := 0
	for _, b := range blocks {
		w := lipgloss.Width(b)
		if width > 0 && used > 0 && used+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, used = nil, 0
		}
		row = append(row, b)
		used += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func percent(f float64) string { return fmt.Sprintf("%.0f%%", f*100) }

// chart draws one horizontal bar per readiness code.
func (d *dashboardPage) chart() string {
	s := d.app.styles
	sum := d.app.data.Summary(d.app.now())
	total := len(d.app.data.Equipment)

	lines := []string{s.cardLabel.Render("Readiness by status")}
	for _, st := range inventory.Statuses {
		n := sum.ByStatus[st]
		w := 0
		if total > 0 {
			w = int(math.Round(float64(n) / float64(total) * chartWidth))
		}
		bar := lipgloss.NewStyle().Foreground(s.palette.StatusColor(st)).Render(strings.Repeat("█", w))
		rest := s.muted.Render(strings.Repeat("░", chartWidth-w))
		lines = append(lines, fmt.Sprintf("%s %s%s %d", st, bar, rest, n))
	}
	if other := total - sumValues(sum.ByStatus, inventory.Statuses); other > 0 {
		lines = append(lines, s.muted.Render(fmt.Sprintf("%d lines with an unknown status", other)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func sumValues(m map[string]int, keys []string) int {
	n := 0
	for k, v := range m {
		if slices.Contains(keys, k) {
			n += v
		}
	}
	return n
}

func (d *dashboardPage) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, d.header(), d.cards(), d.chart(), d.recent.View())
}
