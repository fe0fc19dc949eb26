package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/soyeahso/agentdesk/internal/domain"
)

// ErrNotFound is returned when no transcript exists for a session id.
var ErrNotFound = errors.New("transcript not found")

// Transcript is the summary row kept for an ended session.
type Transcript struct {
	SessionID     string    `json:"sessionId"`
	AgentID       string    `json:"agentId"`
	AgentName     string    `json:"agentName"`
	AgentRole     string    `json:"agentRole"`
	MessageCount  int       `json:"messageCount"`
	ArtifactCount int       `json:"artifactCount"`
	StartedAt     time.Time `json:"startedAt"`
	EndedAt       time.Time `json:"endedAt"`
}

// Match is a single full-text search hit inside an archived timeline.
type Match struct {
	SessionID string           `json:"sessionId"`
	AgentName string           `json:"agentName"`
	MessageID domain.MessageID `json:"messageId"`
	Role      domain.Role      `json:"role"`
	Snippet   string           `json:"snippet"`
	Rank      float64          `json:"rank"`
}

// TranscriptStore archives the final snapshot of ended sessions.
// It satisfies session.Archiver.
type TranscriptStore struct {
	db *DB
}

// NewTranscriptStore creates a transcript store using the given database.
func NewTranscriptStore(db *DB) *TranscriptStore {
	return &TranscriptStore{db: db}
}

// Archive stores snap, replacing any earlier copy of the same session.
// The session's end time is taken from the snapshot's last update.
func (s *TranscriptStore) Archive(ctx context.Context, snap domain.Snapshot) error {
	if snap.SessionID == "" {
		return errors.New("archiving transcript: empty session id")
	}
	blob, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	artifacts := 0
	for _, m := range snap.Timeline {
		artifacts += len(m.Artifacts)
	}

	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transcripts (session_id, agent_id, agent_name, agent_role,
		                          message_count, artifact_count, started_at, ended_at, snapshot)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   message_count = excluded.message_count,
		   artifact_count = excluded.artifact_count,
		   ended_at = excluded.ended_at,
		   snapshot = excluded.snapshot`,
		snap.SessionID, snap.Agent.ID, snap.Agent.Name, snap.Agent.Role,
		len(snap.Timeline), artifacts,
		formatTime(snap.StartedAt), formatTime(snap.UpdatedAt), string(blob),
	); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transcript_messages WHERE session_id = ?`, snap.SessionID); err != nil {
		return fmt.Errorf("clearing transcript messages: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transcript_messages (session_id, message_id, role, content, timestamp)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing message insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range snap.Timeline {
		if _, err := stmt.ExecContext(ctx, snap.SessionID, int64(m.ID), string(m.Role), m.Content, formatTime(m.Timestamp)); err != nil {
			return fmt.Errorf("writing message %d: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive: %w", err)
	}
	s.db.log.Debug().
		Str("sessionId", snap.SessionID).
		Int("messages", len(snap.Timeline)).
		Msg("transcript archived")
	return nil
}

// List returns transcripts newest first. An empty agentID lists all agents.
// Limit of 0 defaults to 50.
func (s *TranscriptStore) List(ctx context.Context, agentID string, limit int) ([]Transcript, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if agentID != "" {
		rows, err = s.db.sql.QueryContext(ctx,
			`SELECT session_id, agent_id, agent_name, agent_role, message_count, artifact_count, started_at, ended_at
			 FROM transcripts WHERE agent_id = ?
			 ORDER BY ended_at DESC, session_id LIMIT ?`,
			agentID, limit,
		)
	} else {
		rows, err = s.db.sql.QueryContext(ctx,
			`SELECT session_id, agent_id, agent_name, agent_role, message_count, artifact_count, started_at, ended_at
			 FROM transcripts
			 ORDER BY ended_at DESC, session_id LIMIT ?`,
			limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transcript
	for rows.Next() {
		var t Transcript
		var started, ended string
		if err := rows.Scan(&t.SessionID, &t.AgentID, &t.AgentName, &t.AgentRole,
			&t.MessageCount, &t.ArtifactCount, &started, &ended); err != nil {
			return nil, err
		}
		t.StartedAt = parseTime(started)
		t.EndedAt = parseTime(ended)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get returns the archived snapshot for a session.
func (s *TranscriptStore) Get(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	var blob string
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT snapshot FROM transcripts WHERE session_id = ?`, sessionID,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return domain.Snapshot{}, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(blob), &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decoding snapshot %s: %w", sessionID, err)
	}
	return snap, nil
}

// Search finds archived messages matching an FTS5 query, best first.
// Limit of 0 defaults to 20.
func (s *TranscriptStore) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT tm.session_id, t.agent_name, tm.message_id, tm.role,
		        snippet(transcript_fts, 0, '[', ']', '...', 12), rank
		 FROM transcript_fts
		 JOIN transcript_messages tm ON tm.rowid = transcript_fts.rowid
		 JOIN transcripts t ON t.session_id = tm.session_id
		 WHERE transcript_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching transcripts: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		var id int64
		var role string
		if err := rows.Scan(&m.SessionID, &m.AgentName, &id, &role, &m.Snippet, &m.Rank); err != nil {
			return nil, err
		}
		m.MessageID = domain.MessageID(id)
		m.Role = domain.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Delete removes a transcript and its indexed messages.
func (s *TranscriptStore) Delete(ctx context.Context, sessionID string) error {
	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transcript_messages WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM transcripts WHERE session_id = ?`, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return tx.Commit()
}

// timeLayout has fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
