package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bekirdag/propbook/internal/config"
	"github.com/bekirdag/propbook/internal/datatable"
	"github.com/bekirdag/propbook/internal/export"
	"github.com/bekirdag/propbook/internal/inventory"
	"github.com/bekirdag/propbook/internal/prefs"
	"github.com/bekirdag/propbook/internal/routes"
	"github.com/bekirdag/propbook/internal/theme"
)

type testShell struct {
	m       *model
	store   *prefs.MemoryStore
	copied  []string
	copyErr error
}

func newTestShell(t *testing.T) *testShell {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.ExportDir = filepath.Join(dir, "exports")
	cfg.Actor = "CPT Diaz"
	cfg.Unit = "B Co, 1-22 IN"

	ts := &testShell{store: prefs.NewMemoryStore()}
	app := &appContext{
		cfg:    cfg,
		data:   seed(t),
		loaded: true,
		mode:   theme.Light,
		styles: newStyles(theme.Light),
		logger: zap.NewNop(),
		audit:  newAuditLogger(cfg.AuditFile, "test", cfg.Actor, nil),
		now:    func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		copy: func(s string) error {
			if ts.copyErr != nil {
				return ts.copyErr
			}
			ts.copied = append(ts.copied, s)
			return nil
		},
	}
	ts.m = newModel(context.Background(), app, ts.store)
	ts.m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return ts
}

// open navigates to path and delivers the built page.
func (ts *testShell) open(t *testing.T, path string) {
	t.Helper()
	_, cmd := ts.m.Update(navigateMsg{path: path})
	if cmd != nil {
		ts.m.Update(cmd())
	}
	_, ok := ts.m.router.Page()
	require.True(t, ok, "page %s not built", path)
}

func (ts *testShell) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = ts.m.Update(keyPress(k))
	}
	return cmd
}

func (ts *testShell) equipmentPage(t *testing.T) *tablePage[inventory.Equipment] {
	t.Helper()
	p, ok := ts.m.router.Page()
	require.True(t, ok)
	ep, ok := p.(*tablePage[inventory.Equipment])
	require.True(t, ok)
	return ep
}

func TestShellRendersEquipmentPage(t *testing.T) {
	ts := newTestShell(t)
	ts.open(t, pathEquipment)

	view := ts.m.View()
	assert.Contains(t, view, "Property book")
	assert.Contains(t, view, "CCO-55120")
	assert.Contains(t, view, "Equipment")
	assert.Equal(t, pathEquipment, ts.m.sidebar.current)
}

func TestShellBulkExport(t *testing.T) {
	ts := newTestShell(t)
	ts.open(t, pathEquipment)

	ts.press("a")
	var req exportRequestMsg
	for _, msg := range drain(ts.m.jobs, ts.press("!")) {
		if r, ok := msg.(exportRequestMsg); ok {
			req = r
		}
	}
	assert.Equal(t, export.FormatPDF, req.format)
	assert.Len(t, req.ids, 8)
	assert.True(t, slices.IsSorted(req.ids))

	_, cmd := ts.m.Update(req)
	msgs := drain(ts.m.jobs, cmd)

	var wrote string
	for _, msg := range msgs {
		if tm, ok := msg.(toastMsg); ok && strings.HasPrefix(tm.text, "Wrote ") {
			wrote = strings.TrimPrefix(tm.text, "Wrote ")
		}
	}
	require.NotEmpty(t, wrote, "no completion toast in %v", msgs)
	assert.Equal(t, ".pdf", filepath.Ext(wrote))
	data, err := os.ReadFile(wrote)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))

	require.Len(t, ts.m.app.session, 1)
	assert.Equal(t, "Hand receipt exported", ts.m.app.session[0].Action)
	assert.Equal(t, "CPT Diaz", ts.m.app.session[0].Actor)
}

func TestShellExportWithoutRows(t *testing.T) {
	ts := newTestShell(t)
	_, cmd := ts.m.Update(exportRequestMsg{format: export.FormatHTML, ids: []string{"missing"}})
	require.NotNil(t, cmd)
	msg, ok := cmd().(toastMsg)
	require.True(t, ok)
	assert.True(t, msg.err)
	assert.Contains(t, msg.text, export.ErrNoRows.Error())
}

func TestShellStatusChangeAndVerify(t *testing.T) {
	ts := newTestShell(t)
	ts.m.Update(statusChangeMsg{ids: []string{"eq-004", "eq-001"}, status: inventory.FMC})

	for _, e := range ts.m.app.data.Equipment {
		if e.ID == "eq-004" {
			assert.Equal(t, inventory.FMC, e.Status)
		}
	}
	require.Len(t, ts.m.app.session, 1, "eq-001 was already FMC")
	assert.Equal(t, "PRC117-0091", ts.m.app.session[0].Subject)

	ts.m.Update(verifyMsg{ids: []string{"si-004"}})
	for _, it := range ts.m.app.data.SensitiveItems {
		if it.ID == "si-004" {
			assert.True(t, it.Verified)
			assert.Equal(t, ts.m.app.now(), it.LastVerifiedDate)
		}
	}
	assert.Len(t, ts.m.app.session, 2)
}

func TestShellCopySerials(t *testing.T) {
	ts := newTestShell(t)
	ts.open(t, pathEquipment)
	p := ts.equipmentPage(t)
	p.table.ToggleRow("eq-001")
	p.table.ToggleRow("eq-003")

	var req copySerialsMsg
	for _, msg := range drain(ts.m.jobs, ts.press("$")) {
		if r, ok := msg.(copySerialsMsg); ok {
			req = r
		}
	}
	assert.Equal(t, []string{"PVS14-22071", "W1234567"}, req.serials, "serials follow the table sort")

	_, cmd := ts.m.Update(req)
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"PVS14-22071\nW1234567"}, ts.copied)
	require.Len(t, ts.m.app.session, 1)

	ts.copyErr = errors.New("no clipboard")
	_, cmd = ts.m.Update(copySerialsMsg{serials: []string{"W1234567"}})
	msg, ok := cmd().(toastMsg)
	require.True(t, ok)
	assert.True(t, msg.err)
	assert.Contains(t, msg.text, "no clipboard")
}

func TestShellRegisterExport(t *testing.T) {
	ts := newTestShell(t)
	ts.open(t, pathActivity)

	var req registerExportMsg
	for _, msg := range drain(ts.m.jobs, ts.press("e")) {
		if r, ok := msg.(registerExportMsg); ok {
			req = r
		}
	}
	require.Len(t, req.report.Rows, len(seed(t).Activity))
	assert.Equal(t, []string{"When", "Actor", "Action", "Subject", "Details"}, req.report.Headers)
	assert.Equal(t, "B Co, 1-22 IN", req.report.Unit)

	_, cmd := ts.m.Update(req)
	var wrote string
	for _, msg := range drain(ts.m.jobs, cmd) {
		if tm, ok := msg.(toastMsg); ok && strings.HasPrefix(tm.text, "Wrote ") {
			wrote = strings.TrimPrefix(tm.text, "Wrote ")
		}
	}
	require.NotEmpty(t, wrote)
	assert.Equal(t, "activity-20240501-1200.csv", filepath.Base(wrote))
	data, err := os.ReadFile(wrote)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 1+len(seed(t).Activity))
	assert.Equal(t, "When,Actor,Action,Subject,Details", lines[0])

	require.Len(t, ts.m.app.session, 1)
	assert.Equal(t, "Register exported", ts.m.app.session[0].Action)
}

func TestShellThemeToggle(t *testing.T) {
	ts := newTestShell(t)
	ts.open(t, pathEquipment)
	ts.press("ctrl+t")
	assert.Equal(t, theme.Dark, ts.m.app.mode)
	assert.Equal(t, theme.Dark, theme.Load(ts.store, theme.Light))
	assert.Equal(t, theme.For(theme.Dark), ts.m.app.styles.palette)
}

func TestShellSearchCapturesKeys(t *testing.T) {
	ts := newTestShell(t)
	ts.open(t, pathEquipment)
	p := ts.equipmentPage(t)

	ts.press("/", "q")
	assert.True(t, ts.m.capturing())
	assert.Equal(t, "q", p.table.SearchQuery())

	ts.press("esc")
	assert.False(t, ts.m.capturing())
	cmd := ts.press("q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestShellSearchDebounce(t *testing.T) {
	ts := newTestShell(t)
	ts.open(t, pathEquipment)
	p := ts.equipmentPage(t)

	ts.press("/", "m", "4")
	stale := searchDebouncedMsg{path: pathEquipment, seq: p.seq - 1, query: "m"}
	ts.m.Update(stale)
	assert.Len(t, p.table.Data(), 8, "stale debounce must not filter")

	ts.m.Update(searchDebouncedMsg{path: pathEquipment, seq: p.seq, query: "m4"})
	require.Len(t, p.table.Data(), 1)
	assert.Equal(t, "eq-001", p.table.Data()[0].ID)
}

func TestShellStatusFilter(t *testing.T) {
	ts := newTestShell(t)
	ts.open(t, pathEquipment)
	p := ts.equipmentPage(t)

	ts.press("f", "N")
	assert.Len(t, p.table.Data(), 2)
	assert.Contains(t, ts.m.View(), "[x] NMC")

	ts.press("X")
	assert.Len(t, p.table.Data(), 8)
}

func TestShellMouseSelectsRow(t *testing.T) {
	ts := newTestShell(t)
	ts.open(t, pathEquipment)
	p := ts.equipmentPage(t)

	// Page content starts one column right of the sidebar and one row below
	// the top bar; the table's first body row is six rows further down.
	x := ts.m.pageX() + 1
	y := 1 + pageHeaderLines + 4
	ts.m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, []string{"eq-007"}, p.table.SelectedIDs())
	assert.Equal(t, focusPage, ts.m.focus)
}

func TestShellSidebarCollapseAndFocus(t *testing.T) {
	ts := newTestShell(t)
	ts.press("ctrl+b")
	assert.True(t, prefs.Bool(ts.store, prefs.KeySidebarCollapsed, false))
	assert.Equal(t, sidebarCollapsedWidth+1, ts.m.pageX())

	ts.press("tab")
	assert.Equal(t, focusSidebar, ts.m.focus)
	ts.press("tab")
	assert.Equal(t, focusPage, ts.m.focus)
}

func TestShellUnknownRoute(t *testing.T) {
	ts := newTestShell(t)
	ts.open(t, "/nowhere")
	view := ts.m.View()
	assert.Contains(t, view, "Page not found")
	assert.Contains(t, view, "/nowhere")
}

func TestShellReloadKeepsSessionActivity(t *testing.T) {
	ts := newTestShell(t)
	ts.open(t, pathActivity)
	ts.m.Update(statusChangeMsg{ids: []string{"eq-002"}, status: inventory.NMC})

	ts.m.Update(dataLoadedMsg{data: seed(t)})
	assert.Len(t, ts.m.app.data.Activity, len(seed(t).Activity)+1)
	assert.Contains(t, ts.m.View(), "Status changed to NMC")
}

func TestShellLoadErrorRecovers(t *testing.T) {
	ts := newTestShell(t)
	ts.open(t, pathEquipment)
	ep := ts.equipmentPage(t)
	ts.open(t, pathDashboard)
	p, ok := ts.m.router.Page()
	require.True(t, ok)
	dash, ok := p.(*dashboardPage)
	require.True(t, ok)

	ts.m.Update(dataLoadedMsg{err: errors.New("parse equipment.yaml: bad indent")})
	assert.Equal(t, datatable.StateError, dash.recent.State())
	assert.Equal(t, datatable.StateError, ep.table.State())
	assert.Contains(t, dash.recent.View(), "bad indent")

	ts.m.Update(dataLoadedMsg{data: seed(t)})
	assert.Equal(t, datatable.StateReady, dash.recent.State())
	assert.Equal(t, datatable.StateReady, ep.table.State())
}

func TestShellNavigateWhileLoading(t *testing.T) {
	ts := newTestShell(t)
	ts.m.app.loaded = false
	ts.m.app.data = inventory.Dataset{}

	_, nav := ts.m.Update(navigateMsg{path: pathEquipment})
	require.NotNil(t, nav)
	build := nav()
	assert.Contains(t, ts.m.View(), routes.LoadingText)

	ts.m.Update(dataLoadedMsg{data: seed(t)})
	ts.m.Update(build)

	p := ts.equipmentPage(t)
	assert.Equal(t, datatable.StateReady, p.table.State())
	assert.Len(t, p.table.Data(), 8)
}

func TestWriteExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "out.html")
	hr := handReceiptFor(seed(t), []string{"eq-001"}, "", "", time.Now())

	err := writeExport(ctx, path, export.FormatHTML, hr)
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "cancelled export must not leave a file")
}
