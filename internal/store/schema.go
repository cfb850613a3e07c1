package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL,
    plan_only BOOLEAN NOT NULL DEFAULT 0,
    fatal BOOLEAN NOT NULL DEFAULT 0,
    fatal_error TEXT,
    eligible INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS backups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    app_id TEXT NOT NULL,
    name TEXT,
    build_id TEXT,
    library TEXT,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_backups_run ON backups(run_id);
CREATE INDEX IF NOT EXISTS idx_backups_app ON backups(app_id);
`
