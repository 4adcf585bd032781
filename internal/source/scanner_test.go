package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "card.csv"))
	touch(t, filepath.Join(dir, "personal", "2025-05.jsonl"))
	touch(t, filepath.Join(dir, "personal", "2025-06.JSONL"))
	touch(t, filepath.Join(dir, "personal", "readme.txt"))
	touch(t, filepath.Join(dir, ".trash", "old.jsonl"))

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3: %+v", len(files), files)
	}

	if files[0].Ledger != "card" || files[0].Format != FormatCSV {
		t.Errorf("files[0] = %+v, want card csv", files[0])
	}
	for _, f := range files[1:] {
		if f.Ledger != "personal" || f.Format != FormatJSONL {
			t.Errorf("file = %+v, want personal jsonl", f)
		}
	}
	if n := CountLedgers(files); n != 2 {
		t.Errorf("CountLedgers = %d, want 2", n)
	}
}

func TestScanDir_Missing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil || files != nil {
		t.Errorf("ScanDir(missing) = %v, %v; want nil, nil", files, err)
	}
}

func TestLedgerName(t *testing.T) {
	tests := map[string]string{
		"card.csv":                              "card",
		filepath.Join("personal", "2025.jsonl"): "personal",
		filepath.Join("a", "b", "deep.jsonl"):   "a",
	}
	for in, want := range tests {
		if got := ledgerName(in); got != want {
			t.Errorf("ledgerName(%q) = %q, want %q", in, got, want)
		}
	}
}
