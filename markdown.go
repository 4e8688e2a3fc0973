package main

import (
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/bekirdag/propbook/internal/theme"
)

var (
	markdownMu       sync.Mutex
	markdownRenderer *glamour.TermRenderer
	markdownErr      error
	markdownStyle    = theme.Light
	markdownWordWrap = 80
)

// RenderMarkdown returns Glamour-rendered terminal output for the provided Markdown.
func RenderMarkdown(content string) string {
	renderer := ensureMarkdownRenderer()
	if renderer == nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

func ensureMarkdownRenderer() *glamour.TermRenderer {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	if markdownRenderer != nil && markdownErr == nil {
		return markdownRenderer
	}
	options := []glamour.TermRendererOption{
		glamour.WithStandardStyle(string(markdownStyle)),
		glamour.WithWordWrap(max(markdownWordWrap, 0)),
	}
	markdownRenderer, markdownErr = glamour.NewTermRenderer(options...)
	if markdownErr != nil {
		return nil
	}
	return markdownRenderer
}

func setMarkdownWordWrap(width int) {
	markdownMu.Lock()
	if width < 0 {
		width = 0
	}
	if markdownWordWrap != width {
		markdownWordWrap = width
		markdownRenderer = nil
		markdownErr = nil
	}
	markdownMu.Unlock()
}

// setMarkdownTheme follows the app theme; glamour ships "light" and "dark"
// standard styles under the same names as theme.Mode.
func setMarkdownTheme(mode theme.Mode) {
	markdownMu.Lock()
	if markdownStyle != mode {
		markdownStyle = mode
		markdownRenderer = nil
		markdownErr = nil
	}
	markdownMu.Unlock()
}
