package sqlite

// schema is migration v1. Per SPEC_FULL.md's resolution of Open Question 1,
// every issue column the store code touches is created here directly —
// there is no later "add the rest of the columns" migration. Per Open
// Question 2, issues_fts is declared with explicit issue_id/title/body/notes
// columns (not the external-content form). Per Open Question 3, synced_at
// is an explicit nullable column.
const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS issues (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    issue_type TEXT NOT NULL DEFAULT 'task',
    status TEXT NOT NULL DEFAULT 'open',
    priority TEXT NOT NULL DEFAULT 'p2',
    assignee TEXT,
    author TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now')),
    closed_at TEXT,
    external_ref TEXT,
    estimate_minutes INTEGER,
    design TEXT NOT NULL DEFAULT '',
    acceptance_criteria TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    parent TEXT,
    metadata TEXT,
    spec_id TEXT,
    synced_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_issues_status ON issues(status);
CREATE INDEX IF NOT EXISTS idx_issues_parent ON issues(parent);
CREATE INDEX IF NOT EXISTS idx_issues_created_at ON issues(created_at);

CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    issue_id TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
    body TEXT NOT NULL,
    author TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_comments_issue_id ON comments(issue_id);
CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments(created_at);

CREATE TABLE IF NOT EXISTS labels (
    issue_id TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    PRIMARY KEY (issue_id, label)
);

CREATE INDEX IF NOT EXISTS idx_labels_label ON labels(label);

CREATE TABLE IF NOT EXISTS dependencies (
    from_id TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
    to_id TEXT NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
    dep_type TEXT NOT NULL DEFAULT 'blocks',
    PRIMARY KEY (from_id, to_id)
);

CREATE INDEX IF NOT EXISTS idx_dependencies_to ON dependencies(to_id);
CREATE INDEX IF NOT EXISTS idx_dependencies_to_type ON dependencies(to_id, dep_type);

CREATE VIRTUAL TABLE IF NOT EXISTS issues_fts USING fts5(
    issue_id UNINDEXED,
    title,
    body,
    notes
);

CREATE TABLE IF NOT EXISTS conflicts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    issue_id TEXT NOT NULL,
    local_json TEXT NOT NULL,
    remote_json TEXT NOT NULL,
    detected_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

INSERT INTO schema_version (version)
SELECT 1 WHERE NOT EXISTS (SELECT 1 FROM schema_version WHERE version = 1);
`

// migrations lists the numbered, idempotent migration statements applied
// in order. v1 is the only migration today; future schema changes append
// here, following the teacher's migrations table pattern.
var migrations = []struct {
	version int
	sql     string
}{
	{1, schema},
}
