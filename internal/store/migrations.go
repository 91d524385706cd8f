package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	run_id       TEXT NOT NULL,
	message_id   TEXT NOT NULL,
	thread_root  TEXT NOT NULL,
	kind         TEXT NOT NULL CHECK(kind IN ('issue', 'wiki')),
	issue_number INTEGER NOT NULL DEFAULT 0,
	subject      TEXT NOT NULL,
	date         DATETIME NOT NULL,
	archived_at  DATETIME NOT NULL,
	PRIMARY KEY (run_id, message_id)
);

CREATE INDEX IF NOT EXISTS idx_messages_thread_root ON messages(thread_root);
CREATE INDEX IF NOT EXISTS idx_messages_kind ON messages(kind);
CREATE INDEX IF NOT EXISTS idx_messages_issue_number ON messages(issue_number);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
