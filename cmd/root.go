// Package cmd implements the receiptia CLI commands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/config"
	"github.com/receiptia/receiptia/internal/logging"
	"github.com/receiptia/receiptia/internal/model"
	"github.com/receiptia/receiptia/internal/pipeline"
	"github.com/receiptia/receiptia/internal/store"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagRange    string
	flagCategory string
	flagMerchant string
	flagNoCache  bool
	flagDataDir  string
	flagQuiet    bool
	flagNow      string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:           "receiptia",
	Short:         "Spending analytics for your expense ledgers",
	Long:          "Analyze your expenses: daily status, night and impulsive purchases, forgotten subscriptions, weekly trends, and budget.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagRange, "range", "r", "", "Time range: 24h, 7d, 30d or month (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Filter to category (e.g. food, shopping)")
	rootCmd.PersistentFlags().StringVarP(&flagMerchant, "merchant", "m", "", "Filter to merchant (substring match)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Expense ledger directory (default from config or ~/.receiptia)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagNow, "now", "", "Evaluate as if the current time were this RFC3339 instant")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose logging to stderr")
}

// runEnv is resolved once per command: config, clock, window and filters.
type runEnv struct {
	cfg      config.Config
	log      *zap.Logger
	loc      *time.Location
	now      time.Time
	rng      analysis.Range
	window   analysis.Window
	category model.Category
	currency string
	budget   decimal.Decimal
	dataDir  string
}

// newEnv merges config and flags. Flags win over config values.
func newEnv() (*runEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(flagVerbose)
	if err != nil {
		return nil, err
	}

	loc, err := config.Location(cfg)
	if err != nil {
		return nil, err
	}

	now, err := resolveNow(flagNow, loc)
	if err != nil {
		return nil, err
	}

	rangeStr := cfg.General.DefaultRange
	if flagRange != "" {
		rangeStr = flagRange
	}
	rng, err := analysis.ParseRange(rangeStr)
	if err != nil {
		return nil, err
	}

	var category model.Category
	if flagCategory != "" {
		c, ok := model.ParseCategory(flagCategory)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", flagCategory)
		}
		category = c
	}

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = config.DataDir(cfg)
	}

	currency := cfg.General.Currency
	if currency == "" {
		currency = analysis.DefaultCurrency
	}

	return &runEnv{
		cfg:      cfg,
		log:      log,
		loc:      loc,
		now:      now,
		rng:      rng,
		window:   analysis.SelectWindow(rng, now),
		category: category,
		currency: currency,
		budget:   config.MonthlyBudget(cfg),
		dataDir:  dataDir,
	}, nil
}

// resolveNow parses the --now replay clock, or returns the wall clock in loc.
func resolveNow(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q (want RFC3339): %w", s, err)
	}
	return t.In(loc), nil
}

// clockFrom returns the clock for long-running surfaces: frozen at --now
// when replaying, otherwise the wall clock in the user's zone.
func clockFrom(env *runEnv) func() time.Time {
	if flagNow != "" {
		now := env.now
		return func() time.Time { return now }
	}
	loc := env.loc
	return func() time.Time { return time.Now().In(loc) }
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData(env *runEnv) (*pipeline.LoadResult, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning ledgers...\n")
	}

	opts := pipeline.LoadOptions{
		DataDir:  env.dataDir,
		Location: env.loc,
		Logger:   env.log,
		Progress: func(current, total int) {
			if flagQuiet {
				return
			}
			if current%50 == 0 || current == total {
				fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
			}
		},
	}

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			env.log.Warn("cache unavailable, doing full parse", zap.Error(err))
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(opts, cache)
			if err != nil {
				env.log.Warn("cache error, falling back to full parse", zap.Error(err))
			} else {
				if !flagQuiet && cr.TotalFiles > 0 {
					if cr.Reparsed == 0 {
						fmt.Fprintf(os.Stderr, "\r  Loaded %s expenses from cache (%d ledgers)    \n",
							cli.FormatNumber(int64(len(cr.Expenses))), cr.LedgerCount)
					} else {
						fmt.Fprintf(os.Stderr, "\r  %s cached + %d reparsed (%d ledgers)    \n",
							cli.FormatNumber(int64(cr.CacheHits)), cr.Reparsed, cr.LedgerCount)
					}
				}
				return &cr.LoadResult, nil
			}
		}
	}

	result, err := pipeline.Load(opts)
	if err != nil {
		return nil, err
	}

	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s expenses across %d ledgers    \n",
			cli.FormatNumber(int64(len(result.Expenses))), result.LedgerCount)
	}
	return result, nil
}

// applyFilters narrows expenses by the --category and --merchant flags.
func applyFilters(env *runEnv, expenses []model.Expense) []model.Expense {
	filtered := expenses
	if env.category != "" {
		filtered = pipeline.FilterByCategory(filtered, env.category)
	}
	if flagMerchant != "" {
		filtered = pipeline.FilterByMerchant(filtered, flagMerchant)
	}
	return filtered
}

// loadFiltered loads ledgers and applies the filters. It returns nil
// expenses with a printed hint when the data directory holds nothing.
func loadFiltered(env *runEnv) ([]model.Expense, *pipeline.LoadResult, error) {
	result, err := loadData(env)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Expenses) == 0 {
		fmt.Println("\n  No expenses found in " + env.dataDir + ".")
		fmt.Println("  Add a .jsonl or .csv ledger there, then come back!")
		return nil, result, nil
	}
	return applyFilters(env, result.Expenses), result, nil
}

func (env *runEnv) analyze(expenses []model.Expense) analysis.Report {
	return analysis.Analyzer{Currency: env.currency}.Analyze(expenses, env.window, env.now)
}

func (env *runEnv) title(name string) string {
	t := fmt.Sprintf("%s  %s", name, env.rng.Label())
	if env.category != "" {
		t += "  · " + env.category.Label()
	}
	if flagMerchant != "" {
		t += "  · " + flagMerchant
	}
	return t
}

func printFileWarnings(result *pipeline.LoadResult) {
	if result == nil {
		return
	}
	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be read\n", result.FileErrors)
	}
	if result.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d malformed lines skipped\n", result.ParseErrors)
	}
}
