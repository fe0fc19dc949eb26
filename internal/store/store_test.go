package store

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentdesk/internal/domain"
	"github.com/soyeahso/agentdesk/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logging.New(nil, "silent")
	db, err := Open(MemoryPath, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

var base = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func testSnapshot(id, agentID string, ended time.Time) domain.Snapshot {
	agent := domain.Agent{ID: agentID, Name: "Tester AI", Role: "Tester", Status: domain.AgentAvailable}
	return domain.Snapshot{
		SessionID: id,
		Agent:     agent,
		Phase:     domain.PhaseClosed,
		StartedAt: base,
		UpdatedAt: ended,
		Timeline: []domain.Message{
			{ID: 1, Role: domain.RoleAgent, Content: "Hello! I'm Tester AI.", Timestamp: base},
			{
				ID: 2, Role: domain.RoleUser, Content: "Write regression cases for checkout",
				Timestamp:   base.Add(time.Minute),
				Attachments: []domain.AttachmentRef{{Name: "flows.pdf", MimeType: "application/pdf", Size: 2048}},
			},
			{
				ID: 3, Role: domain.RoleAgent, Content: "Here is a first draft.",
				Timestamp: base.Add(time.Minute + 2*time.Second),
				Artifacts: []domain.Artifact{{Kind: domain.ArtifactDraft, Title: "Tester Deliverable Draft", Content: "[Draft content would appear here]"}},
			},
		},
	}
}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
	assert.NotNil(t, db.SQL())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "archive.db")
	db, err := Open(path, logging.New(nil, "silent"))
	require.NoError(t, err)
	require.NoError(t, db.Close())
	assert.FileExists(t, path)
}

func TestOpen_ConnectionPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	db, err := Open(path, logging.New(nil, "silent"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var mode string
	require.NoError(t, db.sql.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk, timeout int
	require.NoError(t, db.sql.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	require.NoError(t, db.sql.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 1, fk)
	assert.Equal(t, 5000, timeout)
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.migrate(context.Background()))

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_TablesExist(t *testing.T) {
	db := testDB(t)

	tables := []string{"transcripts", "transcript_messages", "transcript_fts"}
	for _, table := range tables {
		var name string
		err := db.sql.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

// --- TranscriptStore tests ---

func TestTranscriptStore_ArchiveAndGet(t *testing.T) {
	ts := NewTranscriptStore(testDB(t))
	ctx := context.Background()
	snap := testSnapshot("s-1", "tester", base.Add(5*time.Minute))

	require.NoError(t, ts.Archive(ctx, snap))

	got, err := ts.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, snap.SessionID, got.SessionID)
	assert.Equal(t, snap.Agent, got.Agent)
	require.Len(t, got.Timeline, 3)
	assert.Equal(t, "flows.pdf", got.Timeline[1].Attachments[0].Name)
	assert.Equal(t, "Tester Deliverable Draft", got.Timeline[2].Artifacts[0].Title)
	assert.True(t, snap.UpdatedAt.Equal(got.UpdatedAt))
}

func TestTranscriptStore_GetMissing(t *testing.T) {
	ts := NewTranscriptStore(testDB(t))
	_, err := ts.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTranscriptStore_ArchiveRequiresID(t *testing.T) {
	ts := NewTranscriptStore(testDB(t))
	err := ts.Archive(context.Background(), domain.Snapshot{})
	assert.Error(t, err)
}

func TestTranscriptStore_ArchiveReplaces(t *testing.T) {
	ts := NewTranscriptStore(testDB(t))
	ctx := context.Background()

	snap := testSnapshot("s-1", "tester", base.Add(time.Minute))
	require.NoError(t, ts.Archive(ctx, snap))

	snap.Timeline = snap.Timeline[:1]
	snap.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, ts.Archive(ctx, snap))

	list, err := ts.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].MessageCount)
	assert.Equal(t, 0, list[0].ArtifactCount)
	assert.True(t, base.Add(time.Hour).Equal(list[0].EndedAt))

	matches, err := ts.Search(ctx, "checkout", 0)
	require.NoError(t, err)
	assert.Empty(t, matches, "replaced messages are no longer indexed")
}

func TestTranscriptStore_List(t *testing.T) {
	ts := NewTranscriptStore(testDB(t))
	ctx := context.Background()

	require.NoError(t, ts.Archive(ctx, testSnapshot("old", "tester", base.Add(time.Minute))))
	require.NoError(t, ts.Archive(ctx, testSnapshot("new", "tester", base.Add(time.Hour))))
	dev := testSnapshot("dev", "developer", base.Add(30*time.Minute))
	dev.Agent.Name = "Developer AI"
	require.NoError(t, ts.Archive(ctx, dev))

	all, err := ts.List(ctx, "", 0)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, tr := range all {
		ids[i] = tr.SessionID
	}
	assert.Equal(t, []string{"new", "dev", "old"}, ids)
	assert.Equal(t, 3, all[0].MessageCount)
	assert.Equal(t, 1, all[0].ArtifactCount)
	assert.True(t, base.Equal(all[0].StartedAt))

	testers, err := ts.List(ctx, "tester", 0)
	require.NoError(t, err)
	assert.Len(t, testers, 2)

	limited, err := ts.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].SessionID)
}

func TestTranscriptStore_Search(t *testing.T) {
	ts := NewTranscriptStore(testDB(t))
	ctx := context.Background()
	require.NoError(t, ts.Archive(ctx, testSnapshot("s-1", "tester", base.Add(time.Minute))))

	matches, err := ts.Search(ctx, "regression", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "s-1", matches[0].SessionID)
	assert.Equal(t, "Tester AI", matches[0].AgentName)
	assert.Equal(t, domain.MessageID(2), matches[0].MessageID)
	assert.Equal(t, domain.RoleUser, matches[0].Role)
	assert.Contains(t, matches[0].Snippet, "[regression]")
}

func TestTranscriptStore_SearchBadQuery(t *testing.T) {
	ts := NewTranscriptStore(testDB(t))
	_, err := ts.Search(context.Background(), `"unbalanced`, 0)
	assert.Error(t, err)
}

func TestTranscriptStore_Delete(t *testing.T) {
	ts := NewTranscriptStore(testDB(t))
	ctx := context.Background()
	require.NoError(t, ts.Archive(ctx, testSnapshot("s-1", "tester", base)))

	require.NoError(t, ts.Delete(ctx, "s-1"))
	_, err := ts.Get(ctx, "s-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, ts.Delete(ctx, "s-1"), ErrNotFound)

	matches, err := ts.Search(ctx, "checkout", 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

// --- Export tests ---

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"markdown", FormatMarkdown, false},
		{"MD", FormatMarkdown, false},
		{"", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{" JSON ", FormatJSON, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExport_Markdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, testSnapshot("s-1", "tester", base.Add(time.Hour)), FormatMarkdown))

	out := buf.String()
	assert.Contains(t, out, "# Tester AI (Tester)")
	assert.Contains(t, out, "- Session: `s-1`")
	assert.Contains(t, out, "- Ended: 2025-06-01T10:30:00Z")
	assert.Contains(t, out, "## You · 09:31:00")
	assert.Contains(t, out, "- flows.pdf (2.0 KB)")
	assert.Contains(t, out, "### Tester Deliverable Draft")
}

func TestSpeaker(t *testing.T) {
	agent := domain.Agent{Name: "Tester AI"}
	tests := []struct {
		role domain.Role
		want string
	}{
		{domain.RoleUser, "You"},
		{domain.RoleAgent, "Tester AI"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, speaker(agent, tt.role))
		})
	}
}

func TestExport_MarkdownError(t *testing.T) {
	snap := testSnapshot("s-1", "tester", base)
	snap.Timeline = append(snap.Timeline, domain.Message{
		ID: 4, Role: domain.RoleAgent, Content: "Sorry", Timestamp: base,
		Error: &domain.MessageError{Code: "timeout", Message: "context deadline exceeded"},
	})
	assert.Contains(t, Markdown(snap), "> error `timeout`: context deadline exceeded")
}

func TestExport_JSON(t *testing.T) {
	snap := testSnapshot("s-1", "tester", base)
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, snap, FormatJSON))

	var decoded domain.Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "s-1", decoded.SessionID)
	assert.Len(t, decoded.Timeline, 3)
}

func TestExport_UnknownFormat(t *testing.T) {
	err := Export(&bytes.Buffer{}, domain.Snapshot{}, Format("pdf"))
	assert.Error(t, err)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.n))
	}
}
