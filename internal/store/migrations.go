package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create transcripts",
		SQL: `
			CREATE TABLE transcripts (
				session_id      TEXT PRIMARY KEY,
				agent_id        TEXT NOT NULL,
				agent_name      TEXT NOT NULL,
				agent_role      TEXT NOT NULL,
				message_count   INTEGER NOT NULL DEFAULT 0,
				artifact_count  INTEGER NOT NULL DEFAULT 0,
				started_at      TEXT NOT NULL,
				ended_at        TEXT NOT NULL,
				snapshot        TEXT NOT NULL
			);

			CREATE INDEX idx_transcripts_ended ON transcripts (ended_at);
			CREATE INDEX idx_transcripts_agent ON transcripts (agent_id);
		`,
	},
	{
		Version: 2,
		Name:    "create transcript messages with FTS5",
		SQL: `
			CREATE TABLE transcript_messages (
				session_id  TEXT NOT NULL REFERENCES transcripts(session_id) ON DELETE CASCADE,
				message_id  INTEGER NOT NULL,
				role        TEXT NOT NULL,
				content     TEXT NOT NULL,
				timestamp   TEXT NOT NULL,
				PRIMARY KEY (session_id, message_id)
			);

			CREATE VIRTUAL TABLE transcript_fts USING fts5(
				content,
				role,
				content='transcript_messages',
				content_rowid='rowid'
			);

			CREATE TRIGGER transcript_messages_ai AFTER INSERT ON transcript_messages BEGIN
				INSERT INTO transcript_fts(rowid, content, role)
				VALUES (new.rowid, new.content, new.role);
			END;

			CREATE TRIGGER transcript_messages_ad AFTER DELETE ON transcript_messages BEGIN
				INSERT INTO transcript_fts(transcript_fts, rowid, content, role)
				VALUES ('delete', old.rowid, old.content, old.role);
			END;
		`,
	},
}
