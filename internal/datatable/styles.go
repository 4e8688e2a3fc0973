package datatable

import "github.com/charmbracelet/lipgloss"

// Styles controls the look of every table region.
type Styles struct {
	Title         lipgloss.Style
	Toolbar       lipgloss.Style
	SelectionBar  lipgloss.Style
	Button        lipgloss.Style
	Hint          lipgloss.Style
	FilterPanel   lipgloss.Style
	Header        lipgloss.Style
	HeaderSorted  lipgloss.Style
	HeaderFocused lipgloss.Style
	Separator     lipgloss.Style
	Cell          lipgloss.Style
	CursorRow     lipgloss.Style
	SelectedRow   lipgloss.Style
	RowAction     lipgloss.Style
	Footer        lipgloss.Style
	Empty         lipgloss.Style
	Error         lipgloss.Style
	Border        lipgloss.Color
}

// DefaultStyles uses only attributes, no colors, so output is stable in tests.
func DefaultStyles() Styles {
	base := lipgloss.NewStyle()
	return Styles{
		Title:         base.Bold(true),
		Toolbar:       base,
		SelectionBar:  base.Bold(true),
		Button:        base,
		Hint:          base.Faint(true),
		FilterPanel:   base,
		Header:        base.Bold(true),
		HeaderSorted:  base.Bold(true).Underline(true),
		HeaderFocused: base.Bold(true).Reverse(true),
		Separator:     base.Faint(true),
		Cell:          base,
		CursorRow:     base.Reverse(true),
		SelectedRow:   base.Bold(true),
		RowAction:     base.Faint(true),
		Footer:        base.Faint(true),
		Empty:         base.Italic(true),
		Error:         base.Bold(true),
	}
}
