package main

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditLoggerAppendsJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.jsonl")
	a := newAuditLogger(path, " session-1 ", "SSG Alvarez", nil)
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	a.now = func() time.Time { return at }

	first := a.Record("Serials copied", "2 serials", "W1234567, PVS14-22071")
	a.Record("Hand receipt exported", "hand-receipt.pdf", "3 lines")
	a.Record("  ", "ignored", "")

	assert.Equal(t, "SSG Alvarez", first.Actor)
	assert.Equal(t, at, first.Timestamp)
	assert.NotEmpty(t, first.ID)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []auditEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e auditEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, entries, 2)
	assert.Equal(t, "session-1", entries[0].SessionID)
	assert.Equal(t, "Serials copied", entries[0].Action)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, "hand-receipt.pdf", entries[1].Subject)
}

func TestAuditLoggerWithoutPath(t *testing.T) {
	a := newAuditLogger("", "s", "me", nil)
	entry := a.Record("Serial verified", "W1", "")
	assert.Equal(t, "me", entry.Actor)

	var nilLogger *auditLogger
	entry = nilLogger.Record("Serial verified", "W1", "")
	assert.Equal(t, "Serial verified", entry.Action)
}

func TestAuditLoggerLogsWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "audit")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	core, logs := observer.New(zap.ErrorLevel)
	a := newAuditLogger(filepath.Join(blocker, "audit.jsonl"), "s", "me", zap.New(core))
	entry := a.Record("Serial verified", "W1", "")
	assert.Equal(t, "Serial verified", entry.Action, "the entry is still returned")

	written := logs.FilterMessage("audit entry not written").All()
	require.Len(t, written, 1)
	assert.Equal(t, "Serial verified", written[0].ContextMap()["action"])
	assert.Equal(t, 1, logs.FilterMessage("create audit dir").Len())
}

func TestSummarizeAudit(t *testing.T) {
	lines := []string{
		`{"session_id":"s1","id":"1","timestamp":"2024-05-01T09:00:00Z","actor":"alvarez","action":"Serial verified","subject":"W1"}`,
		`{"session_id":"s1","id":"2","timestamp":"2024-05-01T10:00:00Z","actor":"alvarez","action":"Serial verified","subject":"W2"}`,
		`not json`,
		``,
		`{"session_id":"s2","id":"3","timestamp":"2024-05-02T08:00:00Z","actor":"okafor","action":"Serial verified","subject":"W3"}`,
		`{"session_id":"s2","id":"4","timestamp":"2024-05-02T09:00:00Z","actor":"okafor","action":"Hand receipt exported","subject":"hr.pdf"}`,
		`{"session_id":"s2","id":"5","timestamp":"2024-05-02T09:30:00Z","actor":"okafor"}`,
	}
	input := strings.Join(lines, "\n")

	got, skipped, err := summarizeAudit(strings.NewReader(input), auditFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, got, 2)
	assert.Equal(t, "Serial verified", got[0].Action)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, []string{"alvarez", "okafor"}, got[0].Actors)
	assert.Equal(t, 2, got[0].Sessions)
	assert.Equal(t, time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC), got[0].Last.UTC())

	got, _, err = summarizeAudit(strings.NewReader(input), auditFilter{Actor: "ALVAREZ"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Count)

	got, _, err = summarizeAudit(strings.NewReader(input), auditFilter{SessionID: "s2", Since: time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Hand receipt exported", got[0].Action)
}
