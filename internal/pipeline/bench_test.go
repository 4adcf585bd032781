package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/receiptia/receiptia/internal/source"
	"github.com/receiptia/receiptia/internal/store"
)

var benchCategories = []string{"food", "transport", "shopping", "entertainment", "bills", "subscriptions"}

// synthLedgers writes files*perFile expenses spread over a year.
func synthLedgers(b *testing.B, files, perFile int) string {
	b.Helper()
	dir := b.TempDir()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for f := 0; f < files; f++ {
		var sb strings.Builder
		for i := 0; i < perFile; i++ {
			ts := start.Add(time.Duration(f*perFile+i) * 37 * time.Minute)
			fmt.Fprintf(&sb, `{"id":"%d-%d","amount":"%d.%02d","category":"%s","title":"item","merchant":"m%d","timestamp":"%s"}`+"\n",
				f, i, i%90+1, i%100, benchCategories[i%len(benchCategories)], i%17, ts.Format(time.RFC3339))
		}
		path := filepath.Join(dir, fmt.Sprintf("ledger-%02d.jsonl", f))
		if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
			b.Fatal(err)
		}
	}
	return dir
}

func BenchmarkLoad(b *testing.B) {
	dir := synthLedgers(b, 12, 2000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := Load(LoadOptions{DataDir: dir})
		if err != nil {
			b.Fatal(err)
		}
		_ = result
	}
}

func BenchmarkParseFile(b *testing.B) {
	dir := synthLedgers(b, 1, 20000)

	files, err := source.ScanDir(dir)
	if err != nil || len(files) != 1 {
		b.Fatalf("ScanDir: %v (%d files)", err, len(files))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result := source.ParseFile(files[0], time.UTC)
		if result.Err != nil {
			b.Fatal(result.Err)
		}
	}
}

func BenchmarkLoadWithCache(b *testing.B) {
	dir := synthLedgers(b, 12, 2000)

	cache, err := store.Open(filepath.Join(b.TempDir(), "ledger.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cr, err := LoadWithCache(LoadOptions{DataDir: dir}, cache)
		if err != nil {
			b.Fatal(err)
		}
		_ = cr
	}
}
