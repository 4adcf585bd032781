package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS expenses (
    id                   TEXT NOT NULL,
    source_file          TEXT NOT NULL,
    amount               TEXT NOT NULL,
    category             TEXT NOT NULL,
    title                TEXT NOT NULL,
    merchant             TEXT NOT NULL DEFAULT '',
    notes                TEXT NOT NULL DEFAULT '',
    is_impulsive         INTEGER NOT NULL DEFAULT 0,
    is_night_purchase    INTEGER NOT NULL DEFAULT 0,
    ts                   TEXT NOT NULL,
    ts_ns                INTEGER NOT NULL,
    PRIMARY KEY (source_file, id)
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    parse_errors         INTEGER NOT NULL DEFAULT 0,
    location             TEXT NOT NULL DEFAULT '',
    parsed_at            TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_expenses_ts ON expenses(ts_ns);
CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category);
`

// Caches created before file_tracker.location existed get the column with an
// empty zone, which never matches and forces one reparse.
const locationColumnSQL = `ALTER TABLE file_tracker ADD COLUMN location TEXT NOT NULL DEFAULT ''`

const hasLocationColumnSQL = `SELECT COUNT(*) FROM pragma_table_info('file_tracker') WHERE name = 'location'`
