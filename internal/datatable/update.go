package datatable

import (
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update routes keyboard, mouse and spinner messages.
func (m *Model[T]) Update(msg tea.Msg) (*Model[T], tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.cfg.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		if m.searching {
			return m, m.updateSearch(msg)
		}
		return m, m.handleKey(msg)
	}
	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model[T]) updateSearch(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.LeaveSearch) {
		m.searching = false
		m.search.Blur()
		return nil
	}
	prev := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	query := m.search.Value()
	if query == prev || m.cfg.OnSearch == nil {
		return cmd
	}
	return tea.Batch(cmd, m.cfg.OnSearch(query))
}

func (m *Model[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	pressed := msg.String()
	for _, a := range m.cfg.Actions {
		if a.Key != "" && a.Key == pressed && a.OnClick != nil {
			return a.OnClick()
		}
	}
	if i := slices.Index(selectionActionKeys, pressed); i >= 0 {
		return m.RunSelectionAction(i)
	}
	if n, err := strconv.Atoi(pressed); err == nil && n >= 1 && n <= 9 {
		return m.RunRowAction(m.cursor, n-1)
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		if !m.cfg.Searchable {
			return nil
		}
		m.searching = true
		return m.search.Focus()
	case key.Matches(msg, m.keys.Filter):
		return m.ToggleFilter()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.VisibleRows())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Left):
		if m.colCursor > 0 {
			m.colCursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.colCursor < len(m.cfg.Columns)-1 {
			m.colCursor++
		}
	case key.Matches(msg, m.keys.Sort):
		if m.colCursor < len(m.cfg.Columns) {
			m.ToggleSort(m.cfg.Columns[m.colCursor].ID)
		}
	case key.Matches(msg, m.keys.ToggleRow):
		if row, ok := m.CurrentRow(); ok {
			m.ToggleRow(m.RowID(row))
		}
	case key.Matches(msg, m.keys.ToggleAll):
		if m.cfg.Selectable {
			m.ToggleAll()
		}
	case key.Matches(msg, m.keys.Activate):
		return m.ClickRow(m.cursor, false)
	case key.Matches(msg, m.keys.NextPage):
		m.NextPage()
	case key.Matches(msg, m.keys.PrevPage):
		m.PrevPage()
	case key.Matches(msg, m.keys.MorePerPage):
		m.stepRowsPerPage(1)
	case key.Matches(msg, m.keys.LessPerPage):
		m.stepRowsPerPage(-1)
	}
	return nil
}

func (m *Model[T]) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.State() != StateReady {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return nil
	case tea.MouseButtonWheelDown:
		if m.cursor < len(m.VisibleRows())-1 {
			m.cursor++
		}
		return nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	l := m.layout()
	x := msg.X - m.originX - l.borderX
	y := msg.Y - m.originY

	switch {
	case y == l.headerY:
		if l.checkboxW > 0 && x >= 0 && x < l.checkboxW {
			m.ToggleAll()
			return nil
		}
		if i := l.columnAt(x); i >= 0 {
			m.colCursor = i
			m.ToggleSort(m.cfg.Columns[i].ID)
		}
		return nil
	case y >= l.bodyY && y < l.bodyY+len(m.VisibleRows()):
		index := y - l.bodyY
		if x >= l.actionsX && len(m.cfg.RowActions) > 0 {
			if n := m.rowActionAt(index, x-l.actionsX); n >= 0 {
				m.cursor = index
				return m.RunRowAction(index, n)
			}
		}
		onCheckbox := l.checkboxW > 0 && x >= 0 && x < l.checkboxW
		return m.ClickRow(index, onCheckbox)
	}
	return nil
}
