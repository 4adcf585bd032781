package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/receiptia/receiptia/internal/source"
	"github.com/receiptia/receiptia/internal/store"

	"go.uber.org/zap"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
	Removed   int
}

// LoadWithCache discovers, diffs against cache, parses only changed files,
// and returns the combined result set. Ledgers that disappeared from the
// data directory are evicted from the cache.
func LoadWithCache(opts LoadOptions, cache *store.Cache) (*CachedLoadResult, error) {
	opts = opts.withDefaults()

	files, err := source.ScanDir(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", opts.DataDir, err)
	}

	result := &CachedLoadResult{
		LoadResult: LoadResult{
			TotalFiles:  len(files),
			LedgerCount: source.CountLedgers(files),
		},
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	// Diff: partition into changed and unchanged. A ledger read in another
	// zone counts as changed, since its zone-less timestamps and night flags
	// depend on it.
	zone := opts.Location.String()
	var toReparse []source.DiscoveredFile
	unchanged := make(map[string]struct{})
	present := make(map[string]struct{}, len(files))

	for _, f := range files {
		present[f.Path] = struct{}{}
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}

		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() && cached.Location == zone {
			unchanged[f.Path] = struct{}{}
			result.ParseErrors += cached.ParseErrors
		} else {
			toReparse = append(toReparse, f)
		}
	}

	for path := range tracked {
		if _, ok := present[path]; ok {
			continue
		}
		if err := cache.DeleteFile(path); err != nil {
			opts.Logger.Warn("evicting ledger from cache", zap.String("path", path), zap.Error(err))
			continue
		}
		result.Removed++
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	if len(unchanged) > 0 {
		cached, err := cache.LoadAllExpenses()
		if err != nil {
			return nil, fmt.Errorf("loading cached expenses: %w", err)
		}
		for _, e := range cached {
			if _, ok := unchanged[e.SourceFile]; ok {
				e.Timestamp = e.Timestamp.In(opts.Location)
				result.Expenses = append(result.Expenses, e)
			}
		}
		result.ParsedFiles += len(unchanged)
	}

	if len(toReparse) > 0 {
		results := parseAll(toReparse, opts, result.CacheHits, result.TotalFiles)

		for i, pr := range results {
			path := toReparse[i].Path
			if pr.Err != nil {
				result.FileErrors++
				opts.Logger.Warn("ledger unreadable", zap.String("path", path), zap.Error(pr.Err))
				continue
			}
			result.ParsedFiles++
			result.ParseErrors += pr.ParseErrors
			result.Expenses = append(result.Expenses, pr.Expenses...)

			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			fi := store.FileInfo{
				MtimeNs:     info.ModTime().UnixNano(),
				SizeBytes:   info.Size(),
				ParseErrors: pr.ParseErrors,
				Location:    zone,
			}
			if err := cache.SaveFile(path, pr.Expenses, fi); err != nil {
				opts.Logger.Warn("caching ledger", zap.String("path", path), zap.Error(err))
			}
		}
	}

	SortByTime(result.Expenses)
	opts.Logger.Debug("ledgers loaded",
		zap.Int("cache_hits", result.CacheHits),
		zap.Int("reparsed", result.Reparsed),
		zap.Int("removed", result.Removed),
		zap.Int("expenses", len(result.Expenses)))

	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "receiptia")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "receiptia")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "ledger.db")
}
