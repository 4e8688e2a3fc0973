package datatable

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// DefaultEmptyMessage is shown when the table has no rows.
const DefaultEmptyMessage = "No data available"

// Action is a toolbar button.
type Action struct {
	Label   string
	Key     string
	OnClick func() tea.Cmd
}

// SelectionAction is a bulk action shown while rows are selected. It receives
// the selected ids in lexical order.
type SelectionAction struct {
	Label   string
	OnClick func(ids []string) tea.Cmd
}

// RowAction is a per-row button. A nil Visible means always visible.
type RowAction[T any] struct {
	Label   string
	Visible func(row T) bool
	OnClick func(row T) tea.Cmd
}

// Show returns a Visible predicate with a constant answer.
func Show[T any](visible bool) func(T) bool {
	return func(T) bool { return visible }
}

func (a RowAction[T]) visibleFor(row T) bool {
	return a.Visible == nil || a.Visible(row)
}

// Config is the full set of inputs of a table.
type Config[T any] struct {
	Data    []T
	Columns []Column[T]
	Title   string

	Selectable bool

	Searchable bool
	OnSearch   func(query string) tea.Cmd

	Filterable bool
	OnFilter   func() tea.Cmd
	FilterView func() string

	Pagination         bool
	RowsPerPageOptions []int
	DefaultRowsPerPage int

	IDField string

	Actions          []Action
	SelectionActions []SelectionAction
	RowActions       []RowAction[T]

	DefaultSortColumn    string
	DefaultSortDirection Order

	CellRenderers CellRenderers[T]

	Loading      bool
	EmptyMessage string
	Error        string

	Elevation int
	Dense     bool

	OnRowClick func(row T, index int) tea.Cmd

	Styles *Styles
	Keys   *KeyMap
	Logger *zap.Logger
}

// CheckState is the tri-state of the header "select all" checkbox.
type CheckState int

const (
	Unchecked CheckState = iota
	Indeterminate
	Checked
)

// State is what the body region shows.
type State int

const (
	StateReady State = iota
	StateLoading
	StateError
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateEmpty:
		return "empty"
	default:
		return "ready"
	}
}

// Model is a table instance. It owns its sort, page and selection state and
// never mutates the rows it is given.
type Model[T any] struct {
	cfg       Config[T]
	keys      KeyMap
	styles    Styles
	logger    *zap.Logger
	data      []T
	sorted    []T
	sort      SortState
	page      PageState
	selection *Selection

	cursor    int
	colCursor int

	search     textinput.Model
	searching  bool
	filterOpen bool
	spinner    spinner.Model

	width   int
	originX int
	originY int
}

// New validates cfg and builds a table.
func New[T any](cfg Config[T]) (*Model[T], error) {
	if err := ValidateColumns(cfg.Columns); err != nil {
		return nil, err
	}
	if cfg.IDField == "" {
		cfg.IDField = "id"
	}
	if len(cfg.RowsPerPageOptions) == 0 {
		cfg.RowsPerPageOptions = DefaultRowsPerPageOptions
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = DefaultEmptyMessage
	}

	m := &Model[T]{
		cfg:       cfg,
		styles:    DefaultStyles(),
		logger:    cfg.Logger,
		selection: NewSelection(),
	}
	if cfg.Styles != nil {
		m.styles = *cfg.Styles
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if cfg.Keys != nil {
		m.keys = *cfg.Keys
	} else {
		m.keys = DefaultKeyMap()
	}

	m.sort = SortState{OrderBy: cfg.DefaultSortColumn, Order: cfg.DefaultSortDirection}
	if m.sort.OrderBy == "" && len(cfg.Columns) > 0 {
		m.sort.OrderBy = cfg.Columns[0].ID
	}
	if m.sort.Order == "" {
		m.sort.Order = Asc
	}

	rpp := cfg.DefaultRowsPerPage
	if !slices.Contains(cfg.RowsPerPageOptions, rpp) {
		rpp = cfg.RowsPerPageOptions[0]
	}
	m.page = PageState{RowsPerPage: rpp}

	m.search = textinput.New()
	m.search.Prompt = "/ "
	m.search.Placeholder = "Search"
	m.search.CharLimit = 128
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))

	m.data = cfg.Data
	m.resort()
	return m, nil
}

// Init starts the spinner when the table is created in the loading state.
func (m *Model[T]) Init() tea.Cmd {
	if m.cfg.Loading {
		return m.spinner.Tick
	}
	return nil
}

func (m *Model[T]) resort() {
	if m.sort.OrderBy == "" {
		m.sorted = slices.Clone(m.data)
	} else {
		m.sorted = SortRows(m.data, m.sort.OrderBy, m.sort.Order)
	}
	m.clampCursor()
}

func (m *Model[T]) clampCursor() {
	n := len(m.VisibleRows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// SetData replaces the rows. Selected ids missing from rows are dropped and
// the page index is clamped to the last page.
func (m *Model[T]) SetData(rows []T) {
	m.data = rows
	m.selection.Retain(m.allIDs())
	m.page.Page = ClampPage(m.page.Page, len(rows), m.page.RowsPerPage)
	m.resort()
}

func (m *Model[T]) Data() []T { return m.data }

func (m *Model[T]) SetLoading(loading bool) tea.Cmd {
	m.cfg.Loading = loading
	if loading {
		return m.spinner.Tick
	}
	return nil
}

func (m *Model[T]) SetError(msg string) { m.cfg.Error = msg }

func (m *Model[T]) SetStyles(s Styles) { m.styles = s }

// SetWidth bounds the rendered width; zero means unbounded.
func (m *Model[T]) SetWidth(w int) { m.width = w }

// SetOrigin records where the table is drawn so mouse events can be mapped.
func (m *Model[T]) SetOrigin(x, y int) { m.originX, m.originY = x, y }

func (m *Model[T]) Columns() []Column[T] { return m.cfg.Columns }

// State reports what the body shows; loading, error and empty are checked in
// that order.
func (m *Model[T]) State() State {
	switch {
	case m.cfg.Loading:
		return StateLoading
	case m.cfg.Error != "":
		return StateError
	case len(m.data) == 0:
		return StateEmpty
	}
	return StateReady
}

func (m *Model[T]) Sort() SortState { return m.sort }

func (m *Model[T]) Page() PageState { return m.page }

// SortedRows returns all rows in the current sort order.
func (m *Model[T]) SortedRows() []T { return m.sorted }

// ToggleSort applies a header click: the active column flips direction, any
// other sortable column becomes active ascending.
func (m *Model[T]) ToggleSort(columnID string) {
	col, ok := m.column(columnID)
	if !ok || !col.Sortable() {
		return
	}
	if m.sort.OrderBy == columnID {
		m.sort.Order = m.sort.Order.Toggle()
	} else {
		m.sort = SortState{OrderBy: columnID, Order: Asc}
	}
	m.logger.Debug("table sort changed",
		zap.String("table", m.cfg.Title),
		zap.String("order_by", m.sort.OrderBy),
		zap.String("order", string(m.sort.Order)))
	m.resort()
}

func (m *Model[T]) column(id string) (Column[T], bool) {
	for _, c := range m.cfg.Columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column[T]{}, false
}

// VisibleRows is the sorted page window, or every row when pagination is off.
func (m *Model[T]) VisibleRows() []T {
	if !m.cfg.Pagination {
		return m.sorted
	}
	rows, _ := Paginate(m.sorted, m.page.Page, m.page.RowsPerPage)
	return rows
}

// EmptyRows is the number of filler rows on the current page.
func (m *Model[T]) EmptyRows() int {
	if !m.cfg.Pagination {
		return 0
	}
	_, empty := Paginate(m.sorted, m.page.Page, m.page.RowsPerPage)
	return empty
}

func (m *Model[T]) PageCount() int {
	return PageCount(len(m.data), m.page.RowsPerPage)
}

// SetPage moves to page p. Values outside the data are kept as given so the
// window can be empty, matching a caller that drives pages directly.
func (m *Model[T]) SetPage(p int) {
	if p < 0 {
		p = 0
	}
	m.page.Page = p
	m.clampCursor()
}

func (m *Model[T]) NextPage() {
	if m.page.Page+1 < m.PageCount() {
		m.SetPage(m.page.Page + 1)
	}
}

func (m *Model[T]) PrevPage() {
	if m.page.Page > 0 {
		m.SetPage(m.page.Page - 1)
	}
}

// SetRowsPerPage accepts only configured options and resets the page to 0.
func (m *Model[T]) SetRowsPerPage(n int) error {
	if !slices.Contains(m.cfg.RowsPerPageOptions, n) {
		return fmt.Errorf("rows per page %d not in %v", n, m.cfg.RowsPerPageOptions)
	}
	m.page = PageState{Page: 0, RowsPerPage: n}
	m.clampCursor()
	return nil
}

func (m *Model[T]) stepRowsPerPage(delta int) {
	opts := m.cfg.RowsPerPageOptions
	i := slices.Index(opts, m.page.RowsPerPage)
	next := i + delta
	if next < 0 || next >= len(opts) {
		return
	}
	_ = m.SetRowsPerPage(opts[next])
}

func (m *Model[T]) allIDs() []string {
	ids := make([]string, len(m.data))
	for i, r := range m.data {
		ids[i] = RowID(r, m.cfg.IDField)
	}
	return ids
}

func (m *Model[T]) RowID(row T) string { return RowID(row, m.cfg.IDField) }

// IsSelected reports whether the row with id is selected.
func (m *Model[T]) IsSelected(id string) bool { return m.selection.IsSelected(id) }

func (m *Model[T]) SelectedIDs() []string { return m.selection.IDs() }

// SelectedRows returns the selected rows in sorted order.
func (m *Model[T]) SelectedRows() []T {
	var out []T
	for _, r := range m.sorted {
		if m.selection.IsSelected(m.RowID(r)) {
			out = append(out, r)
		}
	}
	return out
}

// ToggleRow flips the selection of one row. It is a no-op when the table is
// not selectable.
func (m *Model[T]) ToggleRow(id string) {
	if !m.cfg.Selectable {
		return
	}
	m.selection.Toggle(id)
}

// SelectAll selects every loaded row, not only the visible page.
func (m *Model[T]) SelectAll() {
	if m.cfg.Selectable {
		m.selection.SelectAll(m.allIDs())
	}
}

func (m *Model[T]) DeselectAll() { m.selection.DeselectAll() }

// ToggleAll mirrors a click on the header checkbox.
func (m *Model[T]) ToggleAll() {
	if m.HeaderCheck() == Checked {
		m.DeselectAll()
		return
	}
	m.SelectAll()
}

// HeaderCheck derives the header checkbox state from the selection size.
func (m *Model[T]) HeaderCheck() CheckState {
	n, total := m.selection.Len(), len(m.data)
	switch {
	case n == 0:
		return Unchecked
	case n < total:
		return Indeterminate
	}
	return Checked
}

// ClickRow handles a click on a visible row. Checkbox clicks only toggle the
// selection and never reach OnRowClick.
func (m *Model[T]) ClickRow(index int, onCheckbox bool) tea.Cmd {
	rows := m.VisibleRows()
	if index < 0 || index >= len(rows) {
		return nil
	}
	m.cursor = index
	row := rows[index]
	if onCheckbox {
		m.ToggleRow(m.RowID(row))
		return nil
	}
	if m.cfg.OnRowClick == nil {
		return nil
	}
	return m.cfg.OnRowClick(row, index)
}

// VisibleRowActions returns the row actions shown for row.
func (m *Model[T]) VisibleRowActions(row T) []RowAction[T] {
	var out []RowAction[T]
	for _, a := range m.cfg.RowActions {
		if a.visibleFor(row) {
			out = append(out, a)
		}
	}
	return out
}

// RunRowAction runs the n-th visible action of the visible row at index.
func (m *Model[T]) RunRowAction(index, n int) tea.Cmd {
	rows := m.VisibleRows()
	if index < 0 || index >= len(rows) {
		return nil
	}
	actions := m.VisibleRowActions(rows[index])
	if n < 0 || n >= len(actions) || actions[n].OnClick == nil {
		return nil
	}
	return actions[n].OnClick(rows[index])
}

// RunSelectionAction runs bulk action n with the current selection.
func (m *Model[T]) RunSelectionAction(n int) tea.Cmd {
	if m.selection.Len() == 0 || n < 0 || n >= len(m.cfg.SelectionActions) {
		return nil
	}
	a := m.cfg.SelectionActions[n]
	if a.OnClick == nil {
		return nil
	}
	return a.OnClick(m.selection.IDs())
}

// Cursor is the highlighted visible row.
func (m *Model[T]) Cursor() int { return m.cursor }

// CurrentRow returns the highlighted row.
func (m *Model[T]) CurrentRow() (T, bool) {
	rows := m.VisibleRows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		var zero T
		return zero, false
	}
	return rows[m.cursor], true
}

// Searching reports whether the search box has focus.
func (m *Model[T]) Searching() bool { return m.searching }

func (m *Model[T]) SearchQuery() string { return m.search.Value() }

func (m *Model[T]) FilterOpen() bool { return m.filterOpen }

// ToggleFilter opens or closes the filter panel and notifies OnFilter.
func (m *Model[T]) ToggleFilter() tea.Cmd {
	if !m.cfg.Filterable {
		return nil
	}
	m.filterOpen = !m.filterOpen
	if m.cfg.OnFilter != nil {
		return m.cfg.OnFilter()
	}
	return nil
}

// Keys exposes the bindings for help views.
func (m *Model[T]) Keys() KeyMap { return m.keys }
