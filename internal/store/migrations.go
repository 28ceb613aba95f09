package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    fetched_at  DATETIME NOT NULL,
    strategy    TEXT NOT NULL,
    tone        TEXT NOT NULL,
    total_posts INTEGER NOT NULL DEFAULT 0,
    selected    INTEGER NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS entries (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id   INTEGER NOT NULL REFERENCES runs(id),
    category TEXT NOT NULL,
    rank     INTEGER NOT NULL,
    post_id  TEXT NOT NULL,
    author   TEXT NOT NULL DEFAULT '',
    url      TEXT NOT NULL DEFAULT '',
    score    REAL NOT NULL DEFAULT 0,
    excerpt  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entries_run ON entries(run_id);
`
