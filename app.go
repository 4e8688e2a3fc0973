package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/bekirdag/propbook/internal/config"
	"github.com/bekirdag/propbook/internal/export"
	"github.com/bekirdag/propbook/internal/inventory"
	"github.com/bekirdag/propbook/internal/theme"
)

// appContext is the state shared by every page.
type appContext struct {
	cfg    config.Config
	data   inventory.Dataset
	loaded bool
	err    error
	mode   theme.Mode
	styles styles
	logger *zap.Logger
	audit  *auditLogger
	now    func() time.Time
	copy   func(string) error

	// session holds activity recorded since start; it survives reloads.
	session []inventory.Activity
}

func (a *appContext) record(action, subject, details string) {
	entry := a.audit.Record(action, subject, details)
	a.session = append(a.session, entry)
	a.data.Activity = append(a.data.Activity, entry)
	a.logger.Info("audit", zap.String("action", action), zap.String("subject", subject))
}

type (
	navigateMsg struct{ path string }

	// dataChangedMsg tells pages to re-read appContext.data.
	dataChangedMsg struct{}

	themeChangedMsg struct{}

	dataLoadedMsg struct {
		data inventory.Dataset
		err  error
	}

	// diskChangedMsg is sent by the data dir watcher.
	diskChangedMsg struct{}

	reloadMsg struct{}

	toastMsg struct {
		text string
		err  bool
	}

	toastExpiredMsg struct{ seq int }

	exportRequestMsg struct {
		format export.Format
		ids    []string
	}

	// registerExportMsg asks for report to be written as a CSV register
	// named after name.
	registerExportMsg struct {
		name   string
		report export.Report
	}

	statusChangeMsg struct {
		ids    []string
		status string
	}

	verifyMsg struct{ ids []string }

	copySerialsMsg struct{ serials []string }
)

func toast(text string) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text} }
}

func toastError(err error) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: err.Error(), err: true} }
}

func loadDataCmd(ctx context.Context, dir string, logger *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		d, err := inventory.Load(ctx, inventory.LoadOptions{Dir: dir, Logger: logger})
		return dataLoadedMsg{data: d, err: err}
	}
}

// setStatus changes the readiness code of the given equipment and returns
// how many lines changed.
func (a *appContext) setStatus(ids []string, status string) int {
	n := 0
	for i := range a.data.Equipment {
		e := &a.data.Equipment[i]
		if slices.Contains(ids, e.ID) && e.Status != status {
			e.Status = status
			n++
			a.record("Status changed to "+status, e.Serial, e.Nomenclature)
		}
	}
	return n
}

// verify marks sensitive items as verified today.
func (a *appContext) verify(ids []string) int {
	now := a.now()
	n := 0
	for i := range a.data.SensitiveItems {
		it := &a.data.SensitiveItems[i]
		if slices.Contains(ids, it.ID) {
			it.Verified = true
			it.LastVerifiedDate = now
			n++
			a.record("Serial verified", it.Serial, it.Vault)
		}
	}
	return n
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
