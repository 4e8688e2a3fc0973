package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bekirdag/propbook/internal/datatable"
	"github.com/bekirdag/propbook/internal/theme"
)

type styles struct {
	palette theme.Palette

	app, topBar, brand, topStatus    lipgloss.Style
	sidebar, sidebarTitle            lipgloss.Style
	navSection, navItem, navSel      lipgloss.Style
	body, pageTitle, pageSubtitle    lipgloss.Style
	card, cardLabel, cardValue       lipgloss.Style
	statusBar, statusSeg, statusHint lipgloss.Style
	toast, toastErr                  lipgloss.Style
	muted, detail                    lipgloss.Style
}

func newStyles(mode theme.Mode) styles {
	p := theme.For(mode)
	base := lipgloss.NewStyle()
	panelBorder := lipgloss.NormalBorder()
	sp := theme.DefaultTokens

	return styles{
		palette:      p,
		app:          base,
		topBar:       base.Padding(sp.None, sp.XS).Background(p.Primary).Foreground(p.Background),
		brand:        base.Bold(true),
		topStatus:    base,
		sidebar:      base.BorderStyle(panelBorder).BorderRight(true).BorderForeground(p.Border).Padding(sp.None, sp.XS),
		sidebarTitle: base.Bold(true).Foreground(p.Primary),
		navSection:   base.Bold(true).Foreground(p.Muted),
		navItem:      base.Padding(sp.None, sp.XS),
		navSel:       base.Padding(sp.None, sp.XS).Bold(true).Foreground(p.Background).Background(p.Primary),
		body:         base.Padding(sp.None, sp.XS),
		pageTitle:    base.Bold(true).Foreground(p.Primary),
		pageSubtitle: base.Foreground(p.Muted),
		card:         base.Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(sp.None, sp.XS),
		cardLabel:    base.Foreground(p.Muted),
		cardValue:    base.Bold(true).Foreground(p.Foreground),
		statusBar:    base.Padding(sp.None, sp.XS),
		statusSeg:    base.Padding(sp.None, sp.XS).MarginRight(sp.XS),
		statusHint:   base.Faint(true),
		toast:        base.Foreground(p.Success),
		toastErr:     base.Foreground(p.Danger).Bold(true),
		muted:        base.Foreground(p.Muted),
		detail:       base.Border(lipgloss.NormalBorder()).BorderForeground(p.Accent).Padding(sp.None, sp.XS),
	}
}

// tableStyles colors the datatable with the active palette.
func (s styles) tableStyles() datatable.Styles {
	p := s.palette
	t := datatable.DefaultStyles()
	t.Title = t.Title.Foreground(p.Primary)
	t.SelectionBar = t.SelectionBar.Foreground(p.Accent)
	t.Button = t.Button.Foreground(p.Info)
	t.Hint = t.Hint.Foreground(p.Muted)
	t.HeaderSorted = t.HeaderSorted.Foreground(p.Primary)
	t.HeaderFocused = t.HeaderFocused.Foreground(p.Accent)
	t.Separator = t.Separator.Foreground(p.Border)
	t.SelectedRow = t.SelectedRow.Background(p.Selection)
	t.RowAction = t.RowAction.Foreground(p.Info)
	t.Footer = t.Footer.Foreground(p.Muted)
	t.Empty = t.Empty.Foreground(p.Muted)
	t.Error = t.Error.Foreground(p.Danger)
	t.Border = p.Border
	return t
}

// statusPill renders a readiness code in its status color.
func (s styles) statusPill(status string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(s.palette.StatusColor(status)).Render("● " + status)
}
