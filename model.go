package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/bekirdag/propbook/internal/export"
	"github.com/bekirdag/propbook/internal/prefs"
	"github.com/bekirdag/propbook/internal/routes"
	"github.com/bekirdag/propbook/internal/theme"
)

const toastTTL = 4 * time.Second

var errQueueFull = errors.New("export queue is full")

type focusArea int

const (
	focusSidebar focusArea = iota
	focusPage
)

func (f focusArea) String() string {
	if f == focusSidebar {
		return "NAV"
	}
	return "PAGE"
}

// capturer is implemented by pages that consume raw text input, such as a
// focused search box.
type capturer interface {
	Capturing() bool
}

// originSetter is implemented by pages that map mouse positions.
type originSetter interface {
	SetOrigin(x, y int)
}

type keyMap struct {
	quit          key.Binding
	nextFocus     key.Binding
	toggleSidebar key.Binding
	toggleTheme   key.Binding
	cancelJob     key.Binding
	openHelp      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		nextFocus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch panel"),
		),
		toggleSidebar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "sidebar"),
		),
		toggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "theme"),
		),
		cancelJob: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "cancel export"),
		),
		openHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextFocus, k.toggleSidebar, k.toggleTheme, k.openHelp, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextFocus, k.toggleSidebar, k.toggleTheme},
		{k.cancelJob, k.openHelp, k.quit},
	}
}

type model struct {
	app      *appContext
	ctx      context.Context
	store    prefs.Store
	keys     keyMap
	help     help.Model
	router   *routes.Router
	sidebar  *sidebar
	jobs     *jobManager
	spinner  spinner.Model
	jobWatch stopwatch.Model

	focus    focusArea
	toast    string
	toastErr bool
	toastSeq int

	width  int
	height int
}

func newModel(ctx context.Context, app *appContext, store prefs.Store) *model {
	m := &model{
		app:      app,
		ctx:      ctx,
		store:    store,
		keys:     newKeyMap(),
		help:     help.New(),
		jobs:     newJobManager(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		jobWatch: stopwatch.NewWithInterval(time.Second),
		focus:    focusPage,
	}

	var router *routes.Router
	router = routes.NewRouter(newNotFoundPage(app, func() string { return router.Current() }), app.logger)
	page := func(build func(*appContext) (routes.Page, error)) routes.Factory {
		return func() (routes.Page, error) { return build(app) }
	}
	router.Register(routes.Route{Path: pathDashboard, Title: "Dashboard", Section: "Overview", Icon: "◆"}, page(newDashboardPage))
	router.Register(routes.Route{Path: pathEquipment, Title: "Equipment", Section: "Property", Icon: "▤"}, page(newEquipmentPage))
	router.Register(routes.Route{Path: pathSensitive, Title: "Sensitive Items", Section: "Property", Icon: "⚿"}, page(newSensitivePage))
	router.Register(routes.Route{Path: pathActivity, Title: "Activity Log", Section: "Records", Icon: "≡"}, page(newActivityPage))
	router.Register(routes.Route{Path: pathHelp, Title: "Help", Section: "Support", Icon: "?"}, page(newHelpPage))
	m.router = router

	m.sidebar = newSidebar(router.Sections(), store, &app.styles)
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadDataCmd(m.ctx, m.app.cfg.DataDir, m.app.logger),
		m.navigate(pathDashboard),
	)
}

func (m *model) navigate(path string) tea.Cmd {
	cmd := m.router.Navigate(path)
	m.sidebar.SetCurrent(path)
	m.layout()
	return cmd
}

// Geometry: a one-line top bar, the sidebar and page side by side, and a
// one-line status bar.
func (m *model) bodyHeight() int { return max(m.height-2, 1) }

func (m *model) pageX() int { return m.sidebar.Width() + 1 }

func (m *model) pageWidth() int { return max(m.width-m.sidebar.Width()-2, 10) }

func (m *model) layout() {
	m.sidebar.SetHeight(m.bodyHeight())
	m.router.SetSize(m.pageWidth(), m.bodyHeight())
	if p, ok := m.router.Page(); ok {
		if o, ok := p.(originSetter); ok {
			o.SetOrigin(m.pageX(), 1)
		}
	}
	m.help.Width = m.width
}

func (m *model) capturing() bool {
	p, ok := m.router.Page()
	if !ok {
		return false
	}
	c, ok := p.(capturer)
	return ok && c.Capturing()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, tea.Batch(cmd, m.router.Broadcast(msg))

	case stopwatch.TickMsg, stopwatch.StartStopMsg, stopwatch.ResetMsg:
		var cmd tea.Cmd
		m.jobWatch, cmd = m.jobWatch.Update(msg)
		return m, cmd

	case routes.BuildMsg:
		cmd, err := m.router.Build(msg)
		m.layout()
		if err != nil && !errors.Is(err, routes.ErrNotFound) {
			return m, tea.Batch(cmd, toastError(err))
		}
		return m, cmd

	case navigateMsg:
		m.focus = focusPage
		return m, m.navigate(msg.path)

	case dataLoadedMsg:
		return m, m.dataLoaded(msg)

	case diskChangedMsg:
		m.app.logger.Info("data dir changed, reloading")
		return m, tea.Batch(toast("Data changed on disk, reloading"), loadDataCmd(m.ctx, m.app.cfg.DataDir, m.app.logger))

	case reloadMsg:
		return m, loadDataCmd(m.ctx, m.app.cfg.DataDir, m.app.logger)

	case searchDebouncedMsg:
		return m, m.router.Broadcast(msg)

	case toastMsg:
		m.toast, m.toastErr = msg.text, msg.err
		m.toastSeq++
		seq := m.toastSeq
		return m, tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case exportRequestMsg:
		return m, m.startExport(msg)

	case registerExportMsg:
		return m, m.startRegisterExport(msg)

	case copySerialsMsg:
		return m, m.copySerials(msg.serials)

	case statusChangeMsg:
		n := m.app.setStatus(msg.ids, msg.status)
		return m, tea.Batch(toast(fmt.Sprintf("%s marked %s", plural(n, "line"), msg.status)), m.dataChanged())

	case verifyMsg:
		n := m.app.verify(msg.ids)
		return m, tea.Batch(toast(plural(n, "serial")+" verified"), m.dataChanged())

	case jobMsg:
		return m, m.handleJob(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, m.router.Update(msg)
}

func (m *model) dataLoaded(msg dataLoadedMsg) tea.Cmd {
	m.app.loaded = true
	m.app.err = msg.err
	if msg.err != nil {
		m.app.logger.Error("load data", zap.Error(msg.err))
		return tea.Batch(toastError(msg.err), m.dataChanged())
	}
	m.app.data = msg.data
	m.app.data.Activity = append(m.app.data.Activity, m.app.session...)
	m.app.logger.Info("data loaded",
		zap.Int("equipment", len(msg.data.Equipment)),
		zap.Int("sensitive", len(msg.data.SensitiveItems)),
		zap.Int("activity", len(msg.data.Activity)))
	return m.dataChanged()
}

func (m *model) dataChanged() tea.Cmd {
	cmd := m.router.Broadcast(dataChangedMsg{})
	m.layout()
	return cmd
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.capturing() {
		if msg.String() == "ctrl+c" {
			return tea.Quit
		}
		return m.router.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.nextFocus):
		if m.focus == focusSidebar {
			m.focus = focusPage
		} else {
			m.focus = focusSidebar
		}
		return nil
	case key.Matches(msg, m.keys.toggleSidebar):
		err := m.sidebar.ToggleCollapsed()
		m.layout()
		if err != nil {
			m.app.logger.Warn("save sidebar state", zap.Error(err))
			return toastError(err)
		}
		return nil
	case key.Matches(msg, m.keys.toggleTheme):
		return m.toggleTheme()
	case key.Matches(msg, m.keys.cancelJob):
		if m.jobs.Cancel() {
			return toast("Cancelling export")
		}
		return nil
	case key.Matches(msg, m.keys.openHelp):
		m.focus = focusPage
		return m.navigate(pathHelp)
	}

	if m.focus == focusSidebar {
		cmd, err := m.sidebar.Update(msg)
		if err != nil {
			m.app.logger.Warn("save sidebar sections", zap.Error(err))
			return tea.Batch(cmd, toastError(err))
		}
		return cmd
	}
	return m.router.Update(msg)
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Y < 1 || msg.Y > m.bodyHeight() {
		return nil
	}
	if msg.X < m.sidebar.Width() {
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return nil
		}
		m.focus = focusSidebar
		cmd, err := m.sidebar.Click(msg.Y - 1)
		if err != nil {
			return toastError(err)
		}
		return cmd
	}
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		m.focus = focusPage
	}
	return m.router.Update(msg)
}

func (m *model) toggleTheme() tea.Cmd {
	m.app.mode = m.app.mode.Toggle()
	m.app.styles = newStyles(m.app.mode)
	setMarkdownTheme(m.app.mode)
	cmds := []tea.Cmd{m.router.Broadcast(themeChangedMsg{})}
	if err := theme.Save(m.store, m.app.mode); err != nil {
		m.app.logger.Warn("save theme", zap.Error(err))
		cmds = append(cmds, toastError(err))
	}
	return tea.Batch(cmds...)
}

func (m *model) copySerials(serials []string) tea.Cmd {
	if len(serials) == 0 {
		return toastError(export.ErrNoRows)
	}
	if err := m.app.copy(strings.Join(serials, "\n")); err != nil {
		m.app.logger.Warn("copy serials", zap.Error(err))
		return toastError(fmt.Errorf("copy serials: %w", err))
	}
	m.app.record("Serials copied", plural(len(serials), "serial"), strings.Join(serials, ", "))
	return tea.Batch(toast("Copied "+plural(len(serials), "serial")), m.dataChanged())
}

func (m *model) startExport(msg exportRequestMsg) tea.Cmd {
	hr := handReceiptFor(m.app.data, msg.ids, m.app.cfg.Unit, m.app.cfg.Actor, m.app.now())
	if len(hr.Items) == 0 {
		return toastError(export.ErrNoRows)
	}
	path := filepath.Join(m.app.cfg.ExportDir, "hand-receipt-"+hr.Number+msg.format.Ext())
	return m.enqueueExport(jobRequest{
		title: "Export " + strings.ToUpper(string(msg.format)),
		run: func(ctx context.Context) (string, error) {
			return path, writeExport(ctx, path, msg.format, hr)
		},
		onFinish: m.exportFinished("Hand receipt exported", plural(len(hr.Items), "line")),
	})
}

func (m *model) startRegisterExport(msg registerExportMsg) tea.Cmd {
	r := msg.report
	if len(r.Rows) == 0 {
		return toastError(export.ErrNoRows)
	}
	path := filepath.Join(m.app.cfg.ExportDir, msg.name+"-"+r.Generated.Format("20060102-1504")+export.FormatCSV.Ext())
	return m.enqueueExport(jobRequest{
		title: "Export register",
		run: func(ctx context.Context) (string, error) {
			return path, writeFile(ctx, path, func(w io.Writer) error { return export.RegisterCSV(w, r) })
		},
		onFinish: m.exportFinished("Register exported", plural(len(r.Rows), "row")),
	})
}

// exportFinished records a written export in the audit trail.
func (m *model) exportFinished(action, details string) func(string, error) tea.Cmd {
	return func(result string, err error) tea.Cmd {
		if err != nil {
			m.app.logger.Error("export", zap.String("path", result), zap.Error(err))
			return toastError(fmt.Errorf("export failed: %w", err))
		}
		m.app.record(action, filepath.Base(result), details)
		return tea.Batch(toast("Wrote "+result), m.dataChanged())
	}
}

func (m *model) enqueueExport(req jobRequest) tea.Cmd {
	cmd, ok := m.jobs.Enqueue(req)
	if !ok {
		return toastError(errQueueFull)
	}
	if pending := m.jobs.Pending(); pending > 0 {
		return tea.Batch(cmd, toast(fmt.Sprintf("Export queued (%d waiting)", pending)))
	}
	return cmd
}

func (m *model) handleJob(msg jobMsg) tea.Cmd {
	cmd := m.jobs.Handle(msg)
	switch msg := msg.(type) {
	case jobStartedMsg:
		m.app.logger.Info("job started", zap.String("title", msg.Title), zap.Int("id", msg.ID))
		return tea.Batch(cmd, m.jobWatch.Reset(), m.jobWatch.Start())
	case jobFinishedMsg:
		m.app.logger.Info("job finished", zap.String("title", msg.Title), zap.Int("id", msg.ID), zap.Error(msg.Err))
		return tea.Batch(cmd, m.jobWatch.Stop())
	}
	return cmd
}

// writeExport renders hr to path.
func writeExport(ctx context.Context, path string, f export.Format, hr export.HandReceipt) error {
	return writeFile(ctx, path, func(w io.Writer) error { return export.Write(w, f, hr) })
}

// writeFile runs write against a temporary file next to path and renames it
// into place once complete.
func writeFile(ctx context.Context, path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".propbook-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move export into place: %w", err)
	}
	return nil
}

func (m *model) View() string {
	s := m.app.styles
	if m.width == 0 {
		return routes.LoadingText
	}

	title := "PROPBOOK"
	if rt, err := m.router.Lookup(m.router.Current()); err == nil {
		title += " • " + rt.Title
	}
	if m.app.cfg.Unit != "" {
		title += " • " + m.app.cfg.Unit
	}
	right := string(m.app.mode)
	switch {
	case !m.app.loaded:
		right = m.spinner.View() + " loading data • " + right
	case m.router.Loading():
		right = m.spinner.View() + " " + right
	}
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(right)-2, 1)
	top := s.topBar.Width(m.width).Render(s.brand.Render(title) + strings.Repeat(" ", gap) + s.topStatus.Render(right))

	page := m.router.View()
	pageBox := s.body.Width(m.width - m.sidebar.Width()).Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(page)
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(m.focus == focusSidebar), pageBox)

	return s.app.Render(lipgloss.JoinVertical(lipgloss.Left, top, body, m.renderStatus()))
}

func (m *model) renderStatus() string {
	s := m.app.styles
	segs := []string{s.statusSeg.Bold(true).Render(m.focus.String())}
	if title, ok := m.jobs.Running(); ok {
		job := m.spinner.View() + " " + title + " " + m.jobWatch.View()
		if n := m.jobs.Pending(); n > 0 {
			job += fmt.Sprintf(" (+%d)", n)
		}
		segs = append(segs, s.statusSeg.Render(job))
	}
	switch {
	case m.toast != "" && m.toastErr:
		segs = append(segs, s.toastErr.Render(m.toast))
	case m.toast != "":
		segs = append(segs, s.toast.Render(m.toast))
	default:
		segs = append(segs, s.statusHint.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	}
	return s.statusBar.Width(m.width).MaxHeight(1).Render(strings.Join(segs, " "))
}
