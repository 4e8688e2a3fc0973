// Package routes maps dashboard paths to lazily built pages.
package routes

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// ErrNotFound is returned for paths with no registered route.
var ErrNotFound = errors.New("route not found")

// LoadingText is shown while a page is being built.
const LoadingText = "Loading…"

// Page is a screen the shell can show.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Page, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Factory builds a page on first visit.
type Factory func() (Page, error)

// Route is one navigable entry.
type Route struct {
	Path    string
	Title   string
	Section string
	Icon    string
}

// Section groups routes under a sidebar heading, in registration order.
type Section struct {
	Name   string
	Routes []Route
}

// BuildMsg asks the router to build the page at Path. Navigate's command
// delivers it; pass it to Build from the update loop, since factories read
// application state.
type BuildMsg struct {
	Path string
}

type Router struct {
	routes    []Route
	factories map[string]Factory
	pages     map[string]Page
	loading   map[string]bool
	notFound  Factory
	current   string
	width     int
	height    int
	logger    *zap.Logger
}

func NewRouter(notFound Factory, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		factories: make(map[string]Factory),
		pages:     make(map[string]Page),
		loading:   make(map[string]bool),
		notFound:  notFound,
		logger:    logger,
	}
}

// Register adds a route. Registering a path twice replaces its factory and
// drops any built page.
func (r *Router) Register(route Route, f Factory) {
	if _, ok := r.factories[route.Path]; ok {
		for i := range r.routes {
			if r.routes[i].Path == route.Path {
				r.routes[i] = route
			}
		}
		delete(r.pages, route.Path)
	} else {
		r.routes = append(r.routes, route)
	}
	r.factories[route.Path] = f
}

func (r *Router) Routes() []Route { return r.routes }

// Lookup returns the route registered at path.
func (r *Router) Lookup(path string) (Route, error) {
	for _, rt := range r.routes {
		if rt.Path == path {
			return rt, nil
		}
	}
	return Route{}, fmt.Errorf("%q: %w", path, ErrNotFound)
}

// Sections groups routes by Section in first-seen order.
func (r *Router) Sections() []Section {
	var out []Section
	index := make(map[string]int)
	for _, rt := range r.routes {
		i, ok := index[rt.Section]
		if !ok {
			i = len(out)
			index[rt.Section] = i
			out = append(out, Section{Name: rt.Section})
		}
		out[i].Routes = append(out[i].Routes, rt)
	}
	return out
}

// Current is the active path.
func (r *Router) Current() string { return r.current }

// Navigate makes path current. Pages are built once, on first visit, when
// the BuildMsg from the returned command reaches Build.
func (r *Router) Navigate(path string) tea.Cmd {
	r.current = path
	if _, ok := r.pages[path]; ok || r.loading[path] {
		return nil
	}
	r.loading[path] = true
	return func() tea.Msg { return BuildMsg{Path: path} }
}

// Build runs the factory for msg.Path, stores the page and returns its Init
// command. Unknown paths get the not-found page and an ErrNotFound error; a
// failing factory stores nothing.
func (r *Router) Build(msg BuildMsg) (tea.Cmd, error) {
	if !r.loading[msg.Path] {
		return nil, nil
	}
	delete(r.loading, msg.Path)

	f, ok := r.factories[msg.Path]
	var err error
	if !ok {
		f = r.notFound
		err = fmt.Errorf("%q: %w", msg.Path, ErrNotFound)
		r.logger.Warn("unknown route", zap.String("path", msg.Path))
	}
	if f == nil {
		return nil, err
	}
	page, buildErr := f()
	if buildErr != nil {
		r.logger.Error("page failed to load", zap.String("path", msg.Path), zap.Error(buildErr))
		return nil, fmt.Errorf("build page %q: %w", msg.Path, buildErr)
	}
	r.pages[msg.Path] = page
	page.SetSize(r.width, r.height)
	r.logger.Debug("page loaded", zap.String("path", msg.Path))
	return page.Init(), err
}

// Page returns the built page at the current path.
func (r *Router) Page() (Page, bool) {
	p, ok := r.pages[r.current]
	return p, ok
}

// Loading reports whether the current page is waiting for its BuildMsg.
func (r *Router) Loading() bool { return r.loading[r.current] }

// Update forwards msg to the current page.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	p, ok := r.Page()
	if !ok {
		return nil
	}
	next, cmd := p.Update(msg)
	r.pages[r.current] = next
	return cmd
}

// Broadcast forwards msg to every built page.
func (r *Router) Broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for path, p := range r.pages {
		next, cmd := p.Update(msg)
		r.pages[path] = next
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// SetSize resizes every built page.
func (r *Router) SetSize(width, height int) {
	r.width, r.height = width, height
	for _, p := range r.pages {
		p.SetSize(width, height)
	}
}

// View renders the current page or the loading fallback.
func (r *Router) View() string {
	if p, ok := r.Page(); ok {
		return p.View()
	}
	return LoadingText
}
