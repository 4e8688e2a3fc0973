package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bekirdag/propbook/internal/datatable"
	"github.com/bekirdag/propbook/internal/export"
	"github.com/bekirdag/propbook/internal/inventory"
	"github.com/bekirdag/propbook/internal/routes"
)

// searchDebounce is how long typing must pause before a search is applied.
const searchDebounce = 200 * time.Millisecond

// pageHeaderLines is the height of the title block above a page's table.
const pageHeaderLines = 2

type searchDebouncedMsg struct {
	path  string
	seq   int
	query string
}

// tablePage is a routed page built around one datatable. The page owns
// search and status filtering; the table owns sort, paging and selection.
type tablePage[T datatable.Fielder] struct {
	app      *appContext
	path     string
	title    string
	subtitle string
	table    *datatable.Model[T]
	rows     func(inventory.Dataset) []T
	fields   []string
	detail   func(T) string

	query      string
	seq        int
	statuses   map[string]bool
	filterable bool
	open       *T

	width, height int
}

func newTablePage[T datatable.Fielder](app *appContext, path, title, subtitle string, rows func(inventory.Dataset) []T, fields []string) *tablePage[T] {
	return &tablePage[T]{
		app:      app,
		path:     path,
		title:    title,
		subtitle: subtitle,
		rows:     rows,
		fields:   fields,
		statuses: make(map[string]bool),
	}
}

// build fills the shared parts of cfg and creates the table.
func (p *tablePage[T]) build(cfg datatable.Config[T]) error {
	st := p.app.styles.tableStyles()
	cfg.Styles = &st
	cfg.Logger = p.app.logger
	cfg.CellRenderers = cellRenderers[T](&p.app.styles)
	cfg.Dense = p.app.cfg.Dense
	cfg.Pagination = true
	cfg.RowsPerPageOptions = p.app.cfg.RowsPerPageOptions
	cfg.DefaultRowsPerPage = p.app.cfg.RowsPerPage
	cfg.Elevation = 1
	if cfg.Searchable {
		cfg.OnSearch = p.debounceSearch
	}
	if cfg.Filterable {
		p.filterable = true
		cfg.FilterView = p.filterView
	}
	if p.detail != nil && cfg.OnRowClick == nil {
		cfg.OnRowClick = func(row T, _ int) tea.Cmd { return p.showDetail(row) }
	}
	cfg.Data = p.filtered()
	cfg.Loading = !p.app.loaded
	if p.app.err != nil {
		cfg.Error = p.app.err.Error()
	}

	t, err := datatable.New(cfg)
	if err != nil {
		return fmt.Errorf("%s table: %w", p.title, err)
	}
	p.table = t
	return nil
}

func (p *tablePage[T]) filtered() []T {
	return inventory.Filter(p.rows(p.app.data), p.query, p.statuses, p.fields...)
}

func (p *tablePage[T]) debounceSearch(query string) tea.Cmd {
	p.seq++
	seq, path := p.seq, p.path
	return tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchDebouncedMsg{path: path, seq: seq, query: query}
	})
}

// exportRegister emits every row that passes the search and filter, in the
// table's sort order, as a register export.
func (p *tablePage[T]) exportRegister() tea.Cmd {
	r := export.FromTable(p.title, p.table.Columns(), p.table.SortedRows())
	r.Unit = p.app.cfg.Unit
	r.Generated = p.app.now()
	return emit(registerExportMsg{name: strings.TrimPrefix(p.path, "/"), report: r})
}

func (p *tablePage[T]) showDetail(row T) tea.Cmd {
	if p.detail == nil {
		return nil
	}
	p.open = &row
	return nil
}

// reload re-reads the dataset into the table.
func (p *tablePage[T]) reload() tea.Cmd {
	var cmd tea.Cmd
	switch {
	case !p.app.loaded:
		cmd = p.table.SetLoading(true)
	case p.app.err != nil:
		p.table.SetLoading(false)
		p.table.SetError(p.app.err.Error())
	default:
		p.table.SetLoading(false)
		p.table.SetError("")
	}
	p.table.SetData(p.filtered())

	if p.open != nil {
		id := p.table.RowID(*p.open)
		p.open = nil
		for _, r := range p.table.Data() {
			if p.table.RowID(r) == id {
				row := r
				p.open = &row
				break
			}
		}
	}
	return cmd
}

func (p *tablePage[T]) filterView() string {
	var parts []string
	for _, st := range inventory.Statuses {
		mark := "[ ]"
		if p.statuses[st] {
			mark = "[x]"
		}
		parts = append(parts, fmt.Sprintf("%s %s (%s)", mark, st, st[:1]))
	}
	parts = append(parts, "X clear")
	return "Status  " + strings.Join(parts, "  ")
}

func (p *tablePage[T]) toggleStatus(status string) {
	if p.statuses[status] {
		delete(p.statuses, status)
	} else {
		p.statuses[status] = true
	}
}

func (p *tablePage[T]) Init() tea.Cmd { return p.table.Init() }

// Capturing reports whether the page is consuming raw text input.
func (p *tablePage[T]) Capturing() bool { return p.table.Searching() }

func (p *tablePage[T]) Update(msg tea.Msg) (routes.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case dataChangedMsg:
		return p, p.reload()
	case themeChangedMsg:
		p.table.SetStyles(p.app.styles.tableStyles())
		return p, nil
	case searchDebouncedMsg:
		if msg.path != p.path || msg.seq != p.seq {
			return p, nil
		}
		p.query = msg.query
		return p, p.reload()
	case tea.KeyMsg:
		if !p.table.Searching() {
			if cmd, ok := p.handleKey(msg); ok {
				return p, cmd
			}
		}
	}
	_, cmd := p.table.Update(msg)
	return p, cmd
}

func (p *tablePage[T]) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k := msg.String()
	if k == "esc" && p.open != nil {
		p.open = nil
		return nil, true
	}
	if !p.filterable || !p.table.FilterOpen() {
		return nil, false
	}
	switch k {
	case "F":
		p.toggleStatus(inventory.FMC)
	case "P":
		p.toggleStatus(inventory.PMC)
	case "N":
		p.toggleStatus(inventory.NMC)
	case "X":
		clear(p.statuses)
	default:
		return nil, false
	}
	return p.reload(), true
}

func (p *tablePage[T]) SetSize(width, height int) {
	p.width, p.height = width, height
	p.table.SetWidth(width)
}

// SetOrigin records where the page is drawn on screen.
func (p *tablePage[T]) SetOrigin(x, y int) {
	p.table.SetOrigin(x, y+pageHeaderLines)
}

func (p *tablePage[T]) View() string {
	s := p.app.styles
	header := s.pageTitle.Render(p.title) + "\n" + s.pageSubtitle.Render(p.subtitle)
	body := p.table.View()
	if p.open != nil && p.detail != nil {
		pane := s.detail.Width(max(p.width-4, 20)).Render(strings.TrimSpace(RenderMarkdown(p.detail(*p.open))))
		body = lipgloss.JoinVertical(lipgloss.Left, body, pane)
	}
	return header + "\n" + body
}
