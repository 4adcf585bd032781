// Package store provides a SQLite-backed cache for parsed ledger data.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed expense caching keyed by ledger file.
type Cache struct {
	db *sqlx.DB
}

// expenseRow adds the timestamp columns that model.Expense leaves to the store.
type expenseRow struct {
	model.Expense
	At   string `db:"ts"`
	AtNs int64  `db:"ts_ns"`
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

func migrate(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, hasLocationColumnSQL); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := db.Exec(locationColumnSQL)
	return err
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file, plus the zone its
// zone-less timestamps were read in.
type FileInfo struct {
	MtimeNs     int64  `db:"mtime_ns"`
	SizeBytes   int64  `db:"size_bytes"`
	ParseErrors int    `db:"parse_errors"`
	Location    string `db:"location"`
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	var rows []struct {
		Path string `db:"file_path"`
		FileInfo
	}
	if err := c.db.Select(&rows, "SELECT file_path, mtime_ns, size_bytes, parse_errors, location FROM file_tracker"); err != nil {
		return nil, err
	}

	result := make(map[string]FileInfo, len(rows))
	for _, r := range rows {
		result[r.Path] = r.FileInfo
	}
	return result, nil
}

// SaveFile replaces the cached expenses of one ledger file and records its
// tracking info, in a single transaction.
func (c *Cache) SaveFile(path string, expenses []model.Expense, fi FileInfo) error {
	tx, err := c.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM expenses WHERE source_file = ?", path); err != nil {
		return err
	}

	if len(expenses) > 0 {
		stmt, err := tx.PrepareNamed(`INSERT OR REPLACE INTO expenses
			(id, source_file, amount, category, title, merchant, notes,
			 is_impulsive, is_night_purchase, ts, ts_ns)
			VALUES (:id, :source_file, :amount, :category, :title, :merchant, :notes,
			 :is_impulsive, :is_night_purchase, :ts, :ts_ns)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, e := range expenses {
			e.SourceFile = path
			row := expenseRow{
				Expense: e,
				At:      e.Timestamp.Format(time.RFC3339Nano),
				AtNs:    e.Timestamp.UnixNano(),
			}
			if _, err := stmt.Exec(row); err != nil {
				return fmt.Errorf("inserting expense %s: %w", e.ID, err)
			}
		}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker
		(file_path, mtime_ns, size_bytes, parse_errors, location, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		path, fi.MtimeNs, fi.SizeBytes, fi.ParseErrors, fi.Location, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadAllExpenses reads all cached expenses, oldest first.
func (c *Cache) LoadAllExpenses() ([]model.Expense, error) {
	var rows []expenseRow
	err := c.db.Select(&rows, `SELECT
		id, source_file, amount, category, title, merchant, notes,
		is_impulsive, is_night_purchase, ts, ts_ns
		FROM expenses ORDER BY ts_ns, source_file, id`)
	if err != nil {
		return nil, err
	}

	expenses := make([]model.Expense, 0, len(rows))
	for _, r := range rows {
		e := r.Expense
		ts, err := time.Parse(time.RFC3339Nano, r.At)
		if err != nil {
			ts = time.Unix(0, r.AtNs)
		}
		e.Timestamp = ts
		expenses = append(expenses, e)
	}
	return expenses, nil
}

// DeleteFile removes a ledger file's expenses and its tracking entry.
func (c *Cache) DeleteFile(path string) error {
	tx, err := c.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM expenses WHERE source_file = ?", path); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
		return err
	}
	return tx.Commit()
}

// ExpenseCount returns the number of cached expenses.
func (c *Cache) ExpenseCount() (int, error) {
	var count int
	err := c.db.Get(&count, "SELECT COUNT(*) FROM expenses")
	return count, err
}
