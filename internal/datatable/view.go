package datatable

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	maxAutoColumnWidth = 40
	checkboxWidth      = 4
)

type span struct{ start, end int }

type tableLayout struct {
	checkboxW int
	widths    []int
	pads      []int
	cols      []span
	actionsX  int
	totalW    int
	borderX   int
	headerY   int
	bodyY     int
}

func (l tableLayout) columnAt(x int) int {
	for i, s := range l.cols {
		if x >= s.start && x < s.end {
			return i
		}
	}
	return -1
}

func (m *Model[T]) padding(col Column[T]) int {
	if m.cfg.Dense || col.DisablePadding {
		return 0
	}
	return 1
}

func (m *Model[T]) layout() tableLayout {
	l := tableLayout{}
	if m.cfg.Selectable {
		l.checkboxW = checkboxWidth
	}
	if m.cfg.Elevation > 0 {
		l.borderX = 1
	}

	rows := m.VisibleRows()
	x := l.checkboxW
	for _, col := range m.cfg.Columns {
		w := col.Width
		if w <= 0 {
			w = lipgloss.Width(col.Label) + 2
			for ri, row := range rows {
				w = max(w, lipgloss.Width(m.renderCell(col, row, ri)))
			}
			w = min(w, maxAutoColumnWidth)
		}
		pad := m.padding(col)
		l.widths = append(l.widths, w)
		l.pads = append(l.pads, pad)
		l.cols = append(l.cols, span{start: x, end: x + w + 2*pad})
		x += w + 2*pad
	}
	l.actionsX = x
	l.totalW = x
	if len(m.cfg.RowActions) > 0 {
		widest := 0
		for _, row := range rows {
			widest = max(widest, lipgloss.Width(m.renderActions(row)))
		}
		l.totalW += widest
	}

	l.headerY = 1 + m.filterLines()
	if m.cfg.Elevation > 0 {
		l.headerY++
	}
	l.bodyY = l.headerY + 2
	return l
}

func (m *Model[T]) filterLines() int {
	if !m.filterOpen || m.cfg.FilterView == nil {
		return 0
	}
	return lipgloss.Height(m.styles.FilterPanel.Render(m.cfg.FilterView()))
}

func (m *Model[T]) renderCell(col Column[T], row T, index int) string {
	return m.cfg.CellRenderers.Render(col, CellValue(col, row), row, index)
}

func (m *Model[T]) button(k, label string) string {
	if k == "" {
		return m.styles.Button.Render("[" + label + "]")
	}
	return m.styles.Button.Render("[" + k + " " + label + "]")
}

func (m *Model[T]) renderActions(row T) string {
	var parts []string
	for i, a := range m.VisibleRowActions(row) {
		parts = append(parts, "["+fmt.Sprint(i+1)+" "+a.Label+"]")
	}
	return strings.Join(parts, " ")
}

// rowActionAt maps an x offset inside the actions region to an action index.
func (m *Model[T]) rowActionAt(index, x int) int {
	rows := m.VisibleRows()
	if index < 0 || index >= len(rows) {
		return -1
	}
	pos := 0
	for i, a := range m.VisibleRowActions(rows[index]) {
		w := len("["+fmt.Sprint(i+1)+" ") + lipgloss.Width(a.Label) + 1
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}

func fit(s string, w int, right bool) string {
	if lipgloss.Width(s) > w {
		s = ansi.Truncate(s, w, "…")
	}
	pos := lipgloss.Left
	if right {
		pos = lipgloss.Right
	}
	return lipgloss.PlaceHorizontal(w, pos, s)
}

// View renders toolbar, optional filter panel, table and footer.
func (m *Model[T]) View() string {
	var b strings.Builder
	b.WriteString(m.viewToolbar())
	b.WriteRune('\n')
	if m.filterOpen && m.cfg.FilterView != nil {
		b.WriteString(m.styles.FilterPanel.Render(m.cfg.FilterView()))
		b.WriteRune('\n')
	}

	switch m.State() {
	case StateLoading:
		b.WriteString(m.spinner.View() + " Loading…")
		return b.String()
	case StateError:
		b.WriteString(m.styles.Error.Render(m.cfg.Error))
		return b.String()
	case StateEmpty:
		b.WriteString(m.styles.Empty.Render(m.cfg.EmptyMessage))
		return b.String()
	}

	l := m.layout()
	block := m.viewTable(l)
	switch {
	case m.cfg.Elevation == 1:
		block = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(m.styles.Border).Render(block)
	case m.cfg.Elevation > 1:
		block = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(m.styles.Border).Render(block)
	}
	b.WriteString(block)
	if m.cfg.Pagination {
		b.WriteRune('\n')
		b.WriteString(m.viewFooter())
	}
	return b.String()
}

func (m *Model[T]) viewToolbar() string {
	if n := m.selection.Len(); n > 0 {
		parts := []string{m.styles.SelectionBar.Render(fmt.Sprintf("%d selected", n))}
		for i, a := range m.cfg.SelectionActions {
			k := ""
			if i < len(selectionActionKeys) {
				k = selectionActionKeys[i]
			}
			parts = append(parts, m.button(k, a.Label))
		}
		return m.styles.Toolbar.Render(strings.Join(parts, "  "))
	}

	var parts []string
	if m.cfg.Title != "" {
		parts = append(parts, m.styles.Title.Render(m.cfg.Title))
	}
	if m.cfg.Searchable {
		switch {
		case m.searching:
			parts = append(parts, m.search.View())
		case m.search.Value() != "":
			parts = append(parts, m.styles.Hint.Render("/ "+m.search.Value()))
		default:
			parts = append(parts, m.styles.Hint.Render("/ search"))
		}
	}
	if m.cfg.Filterable {
		label := "Filter"
		if m.filterOpen {
			label = "Filter ▾"
		}
		parts = append(parts, m.button("f", label))
	}
	for _, a := range m.cfg.Actions {
		parts = append(parts, m.button(a.Key, a.Label))
	}
	return m.styles.Toolbar.Render(strings.Join(parts, "  "))
}

func (m *Model[T]) checkbox(state CheckState) string {
	switch state {
	case Checked:
		return "[x] "
	case Indeterminate:
		return "[-] "
	}
	return "[ ] "
}

func (m *Model[T]) viewTable(l tableLayout) string {
	var lines []string

	var header strings.Builder
	if l.checkboxW > 0 {
		header.WriteString(m.checkbox(m.HeaderCheck()))
	}
	for i, col := range m.cfg.Columns {
		label := col.Label
		if col.Sortable() && m.sort.OrderBy == col.ID {
			if m.sort.Order == Desc {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		pad := strings.Repeat(" ", l.pads[i])
		cell := pad + fit(label, l.widths[i], col.Numeric) + pad
		style := m.styles.Header
		switch {
		case i == m.colCursor:
			style = m.styles.HeaderFocused
		case m.sort.OrderBy == col.ID:
			style = m.styles.HeaderSorted
		}
		header.WriteString(style.Render(cell))
	}
	lines = append(lines, header.String())
	lines = append(lines, m.styles.Separator.Render(strings.Repeat("─", max(l.totalW, 1))))

	for ri, row := range m.VisibleRows() {
		var line strings.Builder
		id := m.RowID(row)
		if l.checkboxW > 0 {
			state := Unchecked
			if m.selection.IsSelected(id) {
				state = Checked
			}
			line.WriteString(m.checkbox(state))
		}
		for ci, col := range m.cfg.Columns {
			pad := strings.Repeat(" ", l.pads[ci])
			line.WriteString(pad + fit(m.renderCell(col, row, ri), l.widths[ci], col.Numeric) + pad)
		}
		if actions := m.renderActions(row); actions != "" {
			line.WriteString(m.styles.RowAction.Render(actions))
		}
		text := line.String()
		switch {
		case ri == m.cursor:
			text = m.styles.CursorRow.Render(text)
		case m.selection.IsSelected(id):
			text = m.styles.SelectedRow.Render(text)
		default:
			text = m.styles.Cell.Render(text)
		}
		lines = append(lines, text)
	}
	for i := 0; i < m.EmptyRows(); i++ {
		lines = append(lines, strings.Repeat(" ", max(l.totalW, 1)))
	}

	out := strings.Join(lines, "\n")
	if m.width > 0 {
		out = lipgloss.NewStyle().MaxWidth(m.width).Render(out)
	}
	return out
}

func (m *Model[T]) viewFooter() string {
	total := len(m.data)
	rpp := m.page.RowsPerPage
	from, to := 0, 0
	if start := m.page.Page * rpp; start < total {
		from, to = start+1, min(start+rpp, total)
	}

	p := paginator.New()
	p.Type = paginator.Dots
	p.PerPage = rpp
	p.SetTotalPages(total)
	p.Page = min(m.page.Page, p.TotalPages-1)

	text := fmt.Sprintf("Rows per page: %d  ·  %d–%d of %d  ·  page %d/%d  %s",
		rpp, from, to, total, m.page.Page+1, m.PageCount(), p.View())
	return m.styles.Footer.Render(text)
}
