package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks the data directory and discovers all ledger files.
// A missing directory yields no files and no error.
func ScanDir(dataDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != dataDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		var format string
		switch strings.ToLower(filepath.Ext(path)) {
		case ".jsonl":
			format = FormatJSONL
		case ".csv":
			format = FormatCSV
		default:
			return nil
		}

		rel, _ := filepath.Rel(dataDir, path)
		files = append(files, DiscoveredFile{
			Path:   path,
			Ledger: ledgerName(rel),
			Format: format,
		})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// ledgerName uses the first directory component, or the file stem for
// files directly under the data directory.
//
//	"personal/2025-06.jsonl" -> "personal"
//	"card.csv"               -> "card"
func ledgerName(rel string) string {
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) > 1 {
		return parts[0]
	}
	return strings.TrimSuffix(parts[0], filepath.Ext(parts[0]))
}

// CountLedgers returns the number of unique ledgers in a set of discovered files.
func CountLedgers(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.Ledger] = struct{}{}
	}
	return len(seen)
}
