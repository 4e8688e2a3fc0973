package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bekirdag/propbook/internal/inventory"
)

// auditEntry is one JSONL line of the audit trail.
type auditEntry struct {
	SessionID string `json:"session_id"`
	inventory.Activity
}

// auditLogger appends user actions to a JSONL file. A nil logger or an empty
// path records nothing. Write failures are logged.
type auditLogger struct {
	path      string
	sessionID string
	actor     string
	now       func() time.Time
	logger    *zap.Logger
	mu        sync.Mutex
}

func newAuditLogger(path, sessionID, actor string, logger *zap.Logger) *auditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			logger.Error("create audit dir", zap.String("path", path), zap.Error(err))
		}
	}
	return &auditLogger{
		path:      path,
		sessionID: strings.TrimSpace(sessionID),
		actor:     strings.TrimSpace(actor),
		now:       time.Now,
		logger:    logger,
	}
}

// Record builds an activity entry for the current actor, appends it to the
// file and returns it so callers can add it to the in-memory log.
func (a *auditLogger) Record(action, subject, details string) inventory.Activity {
	if a == nil {
		return inventory.NewActivity(time.Now().UTC(), "", action, subject, details)
	}
	entry := inventory.NewActivity(a.now().UTC(), a.actor, action, subject, details)
	if a.path == "" || strings.TrimSpace(action) == "" {
		return entry
	}
	if err := a.append(entry); err != nil {
		a.logger.Error("audit entry not written",
			zap.String("path", a.path),
			zap.String("action", action),
			zap.String("subject", subject),
			zap.Error(err))
	}
	return entry
}

func (a *auditLogger) append(entry inventory.Activity) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := json.Marshal(auditEntry{SessionID: a.sessionID, Activity: entry})
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}
	data = append(data, '\n')
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write audit file: %w", err)
	}
	return f.Close()
}

// auditSummary aggregates one action across the audit trail.
type auditSummary struct {
	Action   string    `json:"action"`
	Count    int       `json:"count"`
	Actors   []string  `json:"actors"`
	Sessions int       `json:"sessions"`
	Last     time.Time `json:"last"`
}

// auditFilter narrows summarizeAudit to one session or actor.
type auditFilter struct {
	SessionID string
	Actor     string
	Since     time.Time
}

func (f auditFilter) match(e auditEntry) bool {
	if f.SessionID != "" && e.SessionID != f.SessionID {
		return false
	}
	if f.Actor != "" && !strings.EqualFold(e.Actor, f.Actor) {
		return false
	}
	return f.Since.IsZero() || !e.Timestamp.Before(f.Since)
}

// summarizeAudit groups audit lines by action, most frequent first. Lines
// that are not valid entries are skipped and counted.
func summarizeAudit(r io.Reader, f auditFilter) ([]auditSummary, int, error) {
	var (
		scanner  = bufio.NewScanner(r)
		skipped  = 0
		byAction = map[string]*auditSummary{}
		actors   = map[string]map[string]bool{}
		sessions = map[string]map[string]bool{}
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e auditEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil || e.Action == "" {
			skipped++
			continue
		}
		if !f.match(e) {
			continue
		}
		sum, ok := byAction[e.Action]
		if !ok {
			sum = &auditSummary{Action: e.Action}
			byAction[e.Action] = sum
			actors[e.Action] = map[string]bool{}
			sessions[e.Action] = map[string]bool{}
		}
		sum.Count++
		if e.Timestamp.After(sum.Last) {
			sum.Last = e.Timestamp
		}
		if e.Actor != "" {
			actors[e.Action][e.Actor] = true
		}
		sessions[e.Action][e.SessionID] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, err
	}

	out := make([]auditSummary, 0, len(byAction))
	for action, sum := range byAction {
		for a := range actors[action] {
			sum.Actors = append(sum.Actors, a)
		}
		sort.Strings(sum.Actors)
		sum.Sessions = len(sessions[action])
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Action < out[j].Action
	})
	return out, skipped, nil
}
