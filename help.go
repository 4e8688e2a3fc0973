package main

import (
	_ "embed"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bekirdag/propbook/internal/routes"
)

//go:embed docs/help.md
var helpMarkdown string

type helpPage struct {
	app      *appContext
	viewport viewport.Model
	width    int
}

func newHelpPage(app *appContext) (routes.Page, error) {
	h := &helpPage{app: app, viewport: viewport.New(80, 20)}
	h.render()
	return h, nil
}

func (h *helpPage) render() {
	if h.width > 0 {
		setMarkdownWordWrap(h.width - 2)
	}
	h.viewport.SetContent(RenderMarkdown(helpMarkdown))
}

func (h *helpPage) Init() tea.Cmd { return nil }

func (h *helpPage) Update(msg tea.Msg) (routes.Page, tea.Cmd) {
	if _, ok := msg.(themeChangedMsg); ok {
		h.render()
		return h, nil
	}
	var cmd tea.Cmd
	h.viewport, cmd = h.viewport.Update(msg)
	return h, cmd
}

func (h *helpPage) SetSize(width, height int) {
	h.width = width
	h.viewport.Width = width
	h.viewport.Height = max(height, 1)
	h.render()
}

func (h *helpPage) View() string { return h.viewport.View() }

type notFoundPage struct {
	app  *appContext
	path func() string
}

func newNotFoundPage(app *appContext, path func() string) routes.Factory {
	return func() (routes.Page, error) {
		return &notFoundPage{app: app, path: path}, nil
	}
}

func (n *notFoundPage) Init() tea.Cmd                         { return nil }
func (n *notFoundPage) Update(tea.Msg) (routes.Page, tea.Cmd) { return n, nil }
func (n *notFoundPage) SetSize(int, int)                      {}

func (n *notFoundPage) View() string {
	s := n.app.styles
	return s.pageTitle.Render("Page not found") + "\n" +
		s.pageSubtitle.Render("Nothing is registered at "+n.path()+". Pick a page from the sidebar.")
}
