package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/receiptia/receiptia/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sample(id string, amount string, ts time.Time) model.Expense {
	return model.Expense{
		ID:              id,
		Amount:          decimal.RequireFromString(amount),
		Category:        model.CategoryShopping,
		Title:           "Headphones",
		Timestamp:       ts,
		Merchant:        "Amazon",
		Notes:           "gift",
		IsImpulsive:     true,
		IsNightPurchase: true,
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	c := openTestCache(t)
	cet := time.FixedZone("CET", 3600)
	later := time.Date(2025, 6, 2, 23, 30, 0, 0, cet)
	earlier := time.Date(2025, 6, 1, 9, 15, 0, 0, cet)

	err := c.SaveFile("/data/a.jsonl", []model.Expense{
		sample("2", "45.90", later),
		sample("1", "0.10", earlier),
	}, FileInfo{MtimeNs: 100, SizeBytes: 2048, ParseErrors: 1, Location: "Europe/Rome"})
	require.NoError(t, err)

	got, err := c.LoadAllExpenses()
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "1", got[0].ID, "expenses load oldest first")
	first, second := got[0], got[1]
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("0.10")))
	assert.True(t, second.Amount.Equal(decimal.RequireFromString("45.90")))
	assert.True(t, second.Timestamp.Equal(later))
	_, offset := second.Timestamp.Zone()
	assert.Equal(t, 3600, offset, "offset survives the cache")
	assert.Equal(t, model.CategoryShopping, second.Category)
	assert.Equal(t, "Amazon", second.Merchant)
	assert.Equal(t, "gift", second.Notes)
	assert.True(t, second.IsImpulsive)
	assert.True(t, second.IsNightPurchase)
	assert.Equal(t, "/data/a.jsonl", second.SourceFile)

	tracked, err := c.GetTrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, FileInfo{MtimeNs: 100, SizeBytes: 2048, ParseErrors: 1, Location: "Europe/Rome"}, tracked["/data/a.jsonl"])
}

func TestSaveFileReplacesPreviousContent(t *testing.T) {
	c := openTestCache(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, c.SaveFile("/data/a.jsonl", []model.Expense{
		sample("1", "10", ts), sample("2", "20", ts),
	}, FileInfo{MtimeNs: 1, SizeBytes: 10}))
	require.NoError(t, c.SaveFile("/data/b.jsonl", []model.Expense{
		sample("1", "99", ts),
	}, FileInfo{MtimeNs: 1, SizeBytes: 10}))

	// Re-parse of a.jsonl dropped one line.
	require.NoError(t, c.SaveFile("/data/a.jsonl", []model.Expense{
		sample("2", "25", ts),
	}, FileInfo{MtimeNs: 2, SizeBytes: 12}))

	n, err := c.ExpenseCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n, "same ID in different files is kept")

	tracked, err := c.GetTrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, int64(2), tracked["/data/a.jsonl"].MtimeNs)
}

func TestSaveFileEmpty(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.SaveFile("/data/empty.csv", nil, FileInfo{MtimeNs: 5, SizeBytes: 0}))

	tracked, err := c.GetTrackedFiles()
	require.NoError(t, err)
	assert.Contains(t, tracked, "/data/empty.csv")
}

func TestDeleteFile(t *testing.T) {
	c := openTestCache(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, c.SaveFile("/data/a.jsonl", []model.Expense{sample("1", "10", ts)}, FileInfo{MtimeNs: 1, SizeBytes: 1}))

	require.NoError(t, c.DeleteFile("/data/a.jsonl"))

	n, err := c.ExpenseCount()
	require.NoError(t, err)
	assert.Zero(t, n)

	tracked, err := c.GetTrackedFiles()
	require.NoError(t, err)
	assert.Empty(t, tracked)
}

func TestOpenAddsLocationToOldCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE file_tracker (
		file_path TEXT PRIMARY KEY, mtime_ns INTEGER NOT NULL, size_bytes INTEGER NOT NULL,
		parse_errors INTEGER NOT NULL DEFAULT 0, parsed_at TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO file_tracker VALUES ('/data/a.csv', 1, 2, 0, 'then')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	c, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	tracked, err := c.GetTrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, FileInfo{MtimeNs: 1, SizeBytes: 2}, tracked["/data/a.csv"])

	// Reopening an up-to-date cache is a no-op.
	require.NoError(t, c.Close())
	c, err = Open(path)
	require.NoError(t, err)
}
