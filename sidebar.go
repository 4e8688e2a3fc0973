package main

import (
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bekirdag/propbook/internal/prefs"
	"github.com/bekirdag/propbook/internal/routes"
)

const (
	sidebarWidth          = 26
	sidebarCollapsedWidth = 5
)

// navEntry is a sidebar line: either a section header or a route.
type navEntry struct {
	section  string
	route    routes.Route
	header   bool
	expanded bool
}

func (e navEntry) Title() string {
	if e.header {
		marker := "▸"
		if e.expanded {
			marker = "▾"
		}
		return marker + " " + e.section
	}
	return "  " + e.route.Icon + " " + e.route.Title
}

func (e navEntry) Description() string { return "" }
func (e navEntry) FilterValue() string { return e.Title() }

// navDelegate draws one line per entry.
type navDelegate struct {
	styles    *styles
	current   *string
	collapsed *bool
}

func (d navDelegate) Height() int                         { return 1 }
func (d navDelegate) Spacing() int                        { return 0 }
func (d navDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d navDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	e, ok := item.(navEntry)
	if !ok {
		return
	}
	text := e.Title()
	if *d.collapsed {
		text = e.route.Icon
		if e.header {
			text = "─"
		}
	}
	style := d.styles.navItem
	switch {
	case e.header:
		style = d.styles.navSection
	case index == m.Index():
		style = d.styles.navSel
	case e.route.Path == *d.current:
		style = d.styles.navItem.Bold(true)
	}
	_, _ = w.Write([]byte(style.Render(text)))
}

type sidebar struct {
	list      list.Model
	sections  []routes.Section
	expanded  map[string]bool
	collapsed bool
	current   string
	height    int
	store     prefs.Store
	styles    *styles
}

func newSidebar(sections []routes.Section, store prefs.Store, s *styles) *sidebar {
	sb := &sidebar{
		sections:  sections,
		expanded:  make(map[string]bool),
		collapsed: prefs.Bool(store, prefs.KeySidebarCollapsed, false),
		store:     store,
		styles:    s,
	}
	saved := prefs.Strings(store, prefs.KeyExpandedSections)
	for _, sec := range sections {
		sb.expanded[sec.Name] = saved == nil || slices.Contains(saved, sec.Name)
	}

	m := list.New(nil, navDelegate{styles: s, current: &sb.current, collapsed: &sb.collapsed}, sidebarWidth, 20)
	m.SetShowTitle(false)
	m.SetShowStatusBar(false)
	m.SetFilteringEnabled(false)
	m.SetShowHelp(false)
	m.SetShowPagination(false)
	m.KeyMap.Quit.SetEnabled(false)
	m.KeyMap.ForceQuit.SetEnabled(false)
	sb.list = m
	sb.refresh()
	return sb
}

func (sb *sidebar) entries() []list.Item {
	var items []list.Item
	for _, sec := range sb.sections {
		open := sb.expanded[sec.Name] || sb.collapsed
		if sec.Name != "" {
			items = append(items, navEntry{section: sec.Name, header: true, expanded: open})
		}
		if !open && sec.Name != "" {
			continue
		}
		for _, r := range sec.Routes {
			items = append(items, navEntry{section: sec.Name, route: r})
		}
	}
	return items
}

func (sb *sidebar) refresh() {
	idx := sb.list.Index()
	sb.list.SetItems(sb.entries())
	if idx >= len(sb.list.Items()) {
		idx = len(sb.list.Items()) - 1
	}
	sb.list.Select(max(idx, 0))
}

func (sb *sidebar) Width() int {
	if sb.collapsed {
		return sidebarCollapsedWidth
	}
	return sidebarWidth
}

func (sb *sidebar) SetHeight(h int) {
	sb.height = h
	sb.list.SetSize(sb.Width()-2, max(h-2, 1))
}

// ToggleCollapsed flips between the full and the icon-only sidebar and
// persists the choice.
func (sb *sidebar) ToggleCollapsed() error {
	sb.collapsed = !sb.collapsed
	sb.SetHeight(sb.height)
	sb.refresh()
	return prefs.SetBool(sb.store, prefs.KeySidebarCollapsed, sb.collapsed)
}

func (sb *sidebar) toggleSection(name string) error {
	sb.expanded[name] = !sb.expanded[name]
	sb.refresh()
	var open []string
	for n, ok := range sb.expanded {
		if ok {
			open = append(open, n)
		}
	}
	return prefs.SetStrings(sb.store, prefs.KeyExpandedSections, open)
}

// SetCurrent highlights path and moves the cursor to it.
func (sb *sidebar) SetCurrent(path string) {
	sb.current = path
	for i, it := range sb.list.Items() {
		if e, ok := it.(navEntry); ok && !e.header && e.route.Path == path {
			sb.list.Select(i)
			return
		}
	}
}

// Update moves the cursor. Enter on a route returns a navigateMsg; enter on
// a section header expands or collapses it.
func (sb *sidebar) Update(msg tea.Msg) (tea.Cmd, error) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "enter" {
		e, ok := sb.list.SelectedItem().(navEntry)
		if !ok {
			return nil, nil
		}
		if e.header {
			if sb.collapsed {
				return nil, nil
			}
			return nil, sb.toggleSection(e.section)
		}
		path := e.route.Path
		return func() tea.Msg { return navigateMsg{path: path} }, nil
	}
	var cmd tea.Cmd
	sb.list, cmd = sb.list.Update(msg)
	return cmd, nil
}

// sidebarListTop is the row of the first entry inside the sidebar.
const sidebarListTop = 2

// Click activates the entry drawn at row y relative to the sidebar top.
func (sb *sidebar) Click(y int) (tea.Cmd, error) {
	row := y - sidebarListTop
	if row < 0 || row >= sb.list.Paginator.ItemsOnPage(len(sb.list.Items())) {
		return nil, nil
	}
	sb.list.Select(sb.list.Paginator.Page*sb.list.Paginator.PerPage + row)
	return sb.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func (sb *sidebar) View(focused bool) string {
	title := "PROPBOOK"
	if sb.collapsed {
		title = "PB"
	}
	head := sb.styles.sidebarTitle.Render(title)
	if focused {
		head = sb.styles.sidebarTitle.Underline(true).Render(title)
	}
	body := lipgloss.JoinVertical(lipgloss.Left, head, "", sb.list.View())
	return sb.styles.sidebar.Width(sb.Width() - 1).Height(max(sb.height, 1)).Render(strings.TrimRight(body, "\n"))
}
