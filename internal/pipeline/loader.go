package pipeline

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/receiptia/receiptia/internal/model"
	"github.com/receiptia/receiptia/internal/source"

	"go.uber.org/zap"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Expenses    []model.Expense
	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	FileErrors  int
	LedgerCount int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// LoadOptions configures a pipeline run.
type LoadOptions struct {
	DataDir  string
	Location *time.Location // zone-less timestamps are read here; defaults to time.Local
	Logger   *zap.Logger
	Progress ProgressFunc
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Load discovers and parses all ledger files in the data directory.
// It uses a bounded worker pool for parallel parsing.
func Load(opts LoadOptions) (*LoadResult, error) {
	opts = opts.withDefaults()

	files, err := source.ScanDir(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", opts.DataDir, err)
	}

	result := &LoadResult{
		TotalFiles:  len(files),
		LedgerCount: source.CountLedgers(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	results := parseAll(files, opts, 0, len(files))

	for i, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			opts.Logger.Warn("ledger unreadable", zap.String("path", files[i].Path), zap.Error(pr.Err))
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		result.Expenses = append(result.Expenses, pr.Expenses...)
	}

	SortByTime(result.Expenses)
	opts.Logger.Debug("ledgers loaded",
		zap.Int("files", result.ParsedFiles),
		zap.Int("expenses", len(result.Expenses)),
		zap.Int("parse_errors", result.ParseErrors))

	return result, nil
}

// parseAll parses files with a worker pool sized to GOMAXPROCS.
// Progress is reported as offset+done out of total.
func parseAll(files []source.DiscoveredFile, opts LoadOptions, offset, total int) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx], opts.Location)
				n := processed.Add(1)
				if opts.Progress != nil {
					opts.Progress(offset+int(n), total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}

// SortByTime orders expenses oldest first, keeping file order for ties.
func SortByTime(expenses []model.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Timestamp.Before(expenses[j].Timestamp)
	})
}
