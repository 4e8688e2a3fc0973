package datatable

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowClicked struct {
	id    string
	index int
}

type bulk struct{ ids []string }

func itemColumns() []Column[item] {
	return []Column[item]{
		{ID: "id", Label: "ID"},
		{ID: "v", Label: "Value", Numeric: true},
	}
}

func newTable(t *testing.T, cfg Config[item]) *Model[item] {
	t.Helper()
	if cfg.Columns == nil {
		cfg.Columns = itemColumns()
	}
	m, err := New(cfg)
	require.NoError(t, err)
	return m
}

func press(m *Model[item], keys ...string) tea.Cmd {
	var last tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, last = m.Update(msg)
	}
	return last
}

func visible(m *Model[item]) []string { return ids(m.VisibleRows()) }

func TestNewRejectsBadColumns(t *testing.T) {
	_, err := New(Config[item]{Columns: []Column[item]{{ID: ""}}})
	assert.True(t, errors.Is(err, ErrEmptyColumnID))

	_, err = New(Config[item]{Columns: []Column[item]{{ID: "v"}, {ID: "v"}}})
	assert.True(t, errors.Is(err, ErrDuplicateColumn))
}

func TestNewDefaults(t *testing.T) {
	m := newTable(t, Config[item]{DefaultRowsPerPage: 7})
	assert.Equal(t, SortState{OrderBy: "id", Order: Asc}, m.Sort())
	assert.Equal(t, PageState{Page: 0, RowsPerPage: 5}, m.Page())
	assert.Equal(t, StateEmpty, m.State())
}

func TestEmptyTableShowsMessageWithoutHeader(t *testing.T) {
	m := newTable(t, Config[item]{Title: "Items", Pagination: true})
	out := ansi.Strip(m.View())
	assert.Contains(t, out, "No data available")
	assert.NotContains(t, out, "Value")
	assert.NotContains(t, out, "Rows per page")

	m = newTable(t, Config[item]{EmptyMessage: "Nothing on hand"})
	assert.Contains(t, ansi.Strip(m.View()), "Nothing on hand")
}

func TestLoadingAndErrorWinOverData(t *testing.T) {
	m := newTable(t, Config[item]{Data: []item{{"a", 1}}, Loading: true, Error: "boom"})
	assert.Equal(t, StateLoading, m.State())
	assert.Contains(t, ansi.Strip(m.View()), "Loading")
	assert.NotNil(t, m.Init())

	m.SetLoading(false)
	assert.Equal(t, StateError, m.State())
	assert.Contains(t, ansi.Strip(m.View()), "boom")

	m.SetError("")
	assert.Equal(t, StateReady, m.State())
	assert.Contains(t, ansi.Strip(m.View()), "Value ▲")
}

func TestToggleSort(t *testing.T) {
	cols := []Column[item]{
		{ID: "id", Label: "ID", DisableSort: true},
		{ID: "v", Label: "Value"},
	}
	m := newTable(t, Config[item]{
		Columns:              cols,
		Data:                 []item{{"a", 3}, {"b", 1}, {"c", 1}},
		DefaultSortColumn:    "v",
		DefaultSortDirection: Desc,
	})
	assert.Equal(t, []string{"a", "b", "c"}, visible(m))

	m.ToggleSort("v")
	assert.Equal(t, SortState{OrderBy: "v", Order: Asc}, m.Sort())
	assert.Equal(t, []string{"b", "c", "a"}, visible(m))

	m.ToggleSort("id")
	assert.Equal(t, SortState{OrderBy: "v", Order: Asc}, m.Sort(), "non-sortable column ignored")

	m.ToggleSort("missing")
	assert.Equal(t, "v", m.Sort().OrderBy)
}

func TestToggleSortNewColumnStartsAscending(t *testing.T) {
	m := newTable(t, Config[item]{
		Data:                 []item{{"b", 1}, {"a", 2}},
		DefaultSortColumn:    "v",
		DefaultSortDirection: Desc,
	})
	m.ToggleSort("id")
	assert.Equal(t, SortState{OrderBy: "id", Order: Asc}, m.Sort())
	assert.Equal(t, []string{"a", "b"}, visible(m))
}

func TestPaginationThroughModel(t *testing.T) {
	m := newTable(t, Config[item]{
		Data:               []item{{"row1", 1}, {"row2", 2}, {"row3", 3}},
		DefaultSortColumn:  "v",
		Pagination:         true,
		RowsPerPageOptions: []int{2, 4},
		DefaultRowsPerPage: 2,
	})
	m.SetPage(1)
	assert.Equal(t, []string{"row3"}, visible(m))
	assert.Equal(t, 1, m.EmptyRows())
	assert.Contains(t, ansi.Strip(m.View()), "3–3 of 3")

	require.NoError(t, m.SetRowsPerPage(4))
	assert.Equal(t, PageState{Page: 0, RowsPerPage: 4}, m.Page())
	assert.Error(t, m.SetRowsPerPage(3))

	press(m, "-")
	assert.Equal(t, 2, m.Page().RowsPerPage)
	press(m, "n")
	assert.Equal(t, 1, m.Page().Page)
	press(m, "n")
	assert.Equal(t, 1, m.Page().Page, "next page stops at last page")
	press(m, "p")
	assert.Equal(t, 0, m.Page().Page)

	m.SetPage(5)
	assert.Empty(t, visible(m))
	footer := ansi.Strip(m.viewFooter())
	assert.Contains(t, footer, "0–0 of 3")
	assert.Contains(t, footer, "page 6/2")
}

func TestWithoutPaginationAllRowsVisible(t *testing.T) {
	var rows []item
	for i := 0; i < 30; i++ {
		rows = append(rows, item{ID: string(rune('A' + i)), V: i})
	}
	m := newTable(t, Config[item]{Data: rows, DefaultSortColumn: "v"})
	assert.Len(t, m.VisibleRows(), 30)
	assert.Zero(t, m.EmptyRows())
}

func TestSelectionAcrossPages(t *testing.T) {
	m := newTable(t, Config[item]{
		Data:               []item{{"a", 1}, {"b", 2}, {"c", 3}},
		DefaultSortColumn:  "v",
		Selectable:         true,
		Pagination:         true,
		RowsPerPageOptions: []int{2},
	})
	assert.Equal(t, Unchecked, m.HeaderCheck())

	m.ToggleAll()
	assert.Equal(t, []string{"a", "b", "c"}, m.SelectedIDs(), "select all covers every page")
	assert.Equal(t, Checked, m.HeaderCheck())

	m.ToggleRow("b")
	assert.Equal(t, []string{"a", "c"}, m.SelectedIDs())
	assert.Equal(t, Indeterminate, m.HeaderCheck())

	m.ToggleSort("v")
	m.NextPage()
	assert.Equal(t, []string{"a", "c"}, m.SelectedIDs(), "sort and page keep selection")

	m.ToggleAll()
	assert.Equal(t, Checked, m.HeaderCheck())
	m.ToggleAll()
	assert.Empty(t, m.SelectedIDs())
}

func TestToggleRowIgnoredWhenNotSelectable(t *testing.T) {
	m := newTable(t, Config[item]{Data: []item{{"a", 1}}})
	m.ToggleRow("a")
	m.SelectAll()
	assert.Empty(t, m.SelectedIDs())
}

func TestSetDataPrunesSelectionAndClampsPage(t *testing.T) {
	m := newTable(t, Config[item]{
		Data:               []item{{"a", 1}, {"b", 2}, {"c", 3}, {"d", 4}, {"e", 5}},
		DefaultSortColumn:  "v",
		Selectable:         true,
		Pagination:         true,
		RowsPerPageOptions: []int{2},
	})
	m.SelectAll()
	m.SetPage(2)

	m.SetData([]item{{"a", 1}, {"e", 5}})
	assert.Equal(t, []string{"a", "e"}, m.SelectedIDs())
	assert.Equal(t, 0, m.Page().Page)
	assert.Equal(t, Checked, m.HeaderCheck())
}

func TestClickRow(t *testing.T) {
	var clicks []rowClicked
	m := newTable(t, Config[item]{
		Data:              []item{{"a", 2}, {"b", 1}},
		DefaultSortColumn: "v",
		Selectable:        true,
		OnRowClick: func(r item, i int) tea.Cmd {
			clicks = append(clicks, rowClicked{r.ID, i})
			return nil
		},
	})

	m.ClickRow(1, true)
	assert.Equal(t, []string{"a"}, m.SelectedIDs())
	assert.Empty(t, clicks, "checkbox click must not fire the row click")

	m.ClickRow(0, false)
	assert.Equal(t, []rowClicked{{"b", 0}}, clicks)
	assert.Equal(t, []string{"a"}, m.SelectedIDs())

	assert.Nil(t, m.ClickRow(9, false))
}

func TestRowActionsVisibilityAndKeys(t *testing.T) {
	var opened, deleted []string
	m := newTable(t, Config[item]{
		Data:              []item{{"a", 1}, {"b", 2}},
		DefaultSortColumn: "v",
		RowActions: []RowAction[item]{
			{Label: "Open", OnClick: func(r item) tea.Cmd { opened = append(opened, r.ID); return nil }},
			{Label: "Delete", Visible: func(r item) bool { return r.V > 1 }, OnClick: func(r item) tea.Cmd { deleted = append(deleted, r.ID); return nil }},
			{Label: "Hidden", Visible: Show[item](false)},
		},
	})

	rows := m.VisibleRows()
	assert.Len(t, m.VisibleRowActions(rows[0]), 1)
	assert.Len(t, m.VisibleRowActions(rows[1]), 2)

	out := ansi.Strip(m.View())
	assert.Contains(t, out, "[1 Open] [2 Delete]")
	assert.NotContains(t, out, "Hidden")

	press(m, "2")
	assert.Empty(t, deleted, "row a has no second action")
	press(m, "j", "2", "1")
	assert.Equal(t, []string{"b"}, deleted)
	assert.Equal(t, []string{"b"}, opened)
}

func TestSelectionActionsReceiveSortedIDs(t *testing.T) {
	m := newTable(t, Config[item]{
		Data:       []item{{"c", 1}, {"a", 2}, {"b", 3}},
		Selectable: true,
		SelectionActions: []SelectionAction{
			{Label: "Export", OnClick: func(ids []string) tea.Cmd {
				return func() tea.Msg { return bulk{ids} }
			}},
		},
	})
	assert.Nil(t, press(m, "!"), "no action without a selection")

	press(m, "a")
	out := ansi.Strip(m.View())
	assert.Contains(t, out, "3 selected")
	assert.Contains(t, out, "[! Export]")

	cmd := press(m, "!")
	require.NotNil(t, cmd)
	if diff := cmp.Diff(bulk{[]string{"a", "b", "c"}}, cmd(), cmp.AllowUnexported(bulk{})); diff != "" {
		t.Fatalf("bulk ids (-want +got):\n%s", diff)
	}
}

func TestToolbarActionByKey(t *testing.T) {
	fired := false
	m := newTable(t, Config[item]{
		Title:   "Hand receipt",
		Actions: []Action{{Label: "Add", Key: "+", OnClick: func() tea.Cmd { fired = true; return nil }}},
	})
	assert.Contains(t, ansi.Strip(m.View()), "[+ Add]")
	press(m, "+")
	assert.True(t, fired, "toolbar action key wins over rows-per-page binding")
}

func TestKeyboardSortAndSelect(t *testing.T) {
	m := newTable(t, Config[item]{
		Data:       []item{{"a", 3}, {"b", 1}, {"c", 2}},
		Selectable: true,
	})
	assert.Equal(t, []string{"a", "b", "c"}, visible(m))

	press(m, "l", "s")
	assert.Equal(t, []string{"b", "c", "a"}, visible(m))
	press(m, "s")
	assert.Equal(t, []string{"a", "c", "b"}, visible(m))

	press(m, "j", " ")
	assert.Equal(t, []string{"c"}, m.SelectedIDs())
}

func TestSearchEmitsQuery(t *testing.T) {
	type searched struct{ q string }
	var queries []string
	m := newTable(t, Config[item]{
		Searchable: true,
		OnSearch: func(q string) tea.Cmd {
			queries = append(queries, q)
			return func() tea.Msg { return searched{q} }
		},
	})

	press(m, "/")
	require.True(t, m.Searching())
	press(m, "m", "4")
	assert.Equal(t, []string{"m", "m4"}, queries)
	assert.Equal(t, "m4", m.SearchQuery())

	press(m, "esc")
	assert.False(t, m.Searching())
	press(m, "s")
	assert.Equal(t, "m4", m.SearchQuery(), "keys after leaving search are table keys")
}

func TestSearchDisabled(t *testing.T) {
	m := newTable(t, Config[item]{})
	press(m, "/")
	assert.False(t, m.Searching())
	assert.NotContains(t, ansi.Strip(m.View()), "search")
}

func TestFilterToggle(t *testing.T) {
	calls := 0
	m := newTable(t, Config[item]{
		Data:       []item{{"a", 1}},
		Filterable: true,
		OnFilter:   func() tea.Cmd { calls++; return nil },
		FilterView: func() string { return "status: FMC" },
	})
	press(m, "f")
	assert.True(t, m.FilterOpen())
	assert.Equal(t, 1, calls)
	assert.Contains(t, ansi.Strip(m.View()), "status: FMC")

	press(m, "f")
	assert.False(t, m.FilterOpen())
	assert.NotContains(t, ansi.Strip(m.View()), "status: FMC")
}

func TestMouseHeaderAndRows(t *testing.T) {
	var clicks []rowClicked
	m := newTable(t, Config[item]{
		Data:              []item{{"a", 3}, {"b", 1}},
		DefaultSortColumn: "v",
		Selectable:        true,
		OnRowClick: func(r item, i int) tea.Cmd {
			clicks = append(clicks, rowClicked{r.ID, i})
			return nil
		},
	})
	l := m.layout()
	click := func(x, y int) {
		m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	}

	click(l.cols[1].start, l.headerY)
	assert.Equal(t, SortState{OrderBy: "v", Order: Desc}, m.Sort())

	click(0, l.headerY)
	assert.Equal(t, Checked, m.HeaderCheck())
	click(0, l.headerY)
	assert.Equal(t, Unchecked, m.HeaderCheck())

	click(1, l.bodyY+1)
	assert.Equal(t, []string{"b"}, m.SelectedIDs())
	assert.Empty(t, clicks)

	click(l.cols[0].start+1, l.bodyY)
	assert.Equal(t, []rowClicked{{"a", 0}}, clicks)
}

func TestViewRendersRowsInOrder(t *testing.T) {
	m := newTable(t, Config[item]{
		Data:              []item{{"alpha", 2}, {"bravo", 1}},
		DefaultSortColumn: "v",
		Elevation:         1,
		CellRenderers: CellRenderers[item]{
			Numeric: func(v any, _ item, _ int) string { return "#" + strings.Repeat("*", v.(int)) },
		},
	})
	out := ansi.Strip(m.View())
	assert.Less(t, strings.Index(out, "bravo"), strings.Index(out, "alpha"))
	assert.Contains(t, out, "#**")
	assert.Contains(t, out, "┌")
}
