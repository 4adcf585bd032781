package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// Config holds all receiptia configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Budget     BudgetConfig     `toml:"budget"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
	TUI        TUIConfig        `toml:"tui"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultRange string `toml:"default_range"`
	DataDir      string `toml:"data_dir,omitempty"`
	Timezone     string `toml:"timezone,omitempty"`
	Currency     string `toml:"currency"`
}

// BudgetConfig holds budget tracking settings.
type BudgetConfig struct {
	Monthly *float64 `toml:"monthly,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds background analysis settings.
type DaemonConfig struct {
	Addr     string `toml:"addr"`
	Schedule string `toml:"schedule"`
}

// TUIConfig holds dashboard refresh settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DefaultMonthlyBudget applies when no budget is configured.
const DefaultMonthlyBudget = 1000

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultRange: "24h",
			Currency:     "€",
		},
		Appearance: AppearanceConfig{
			Theme: "receiptia",
		},
		Daemon: DaemonConfig{
			Addr:     "127.0.0.1:8787",
			Schedule: "@every 5m",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 60,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "receiptia")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "receiptia")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DataDir resolves the expense ledger directory: env var, then config,
// then ~/.receiptia.
func DataDir(cfg Config) string {
	if dir := os.Getenv("RECEIPTIA_DATA_DIR"); dir != "" {
		return dir
	}
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".receiptia")
}

// Location returns the configured timezone, or the system local zone.
func Location(cfg Config) (*time.Location, error) {
	if cfg.General.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.General.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.General.Timezone, err)
	}
	return loc, nil
}

// MonthlyBudget returns the configured monthly budget or the default.
func MonthlyBudget(cfg Config) decimal.Decimal {
	if cfg.Budget.Monthly != nil && *cfg.Budget.Monthly > 0 {
		return decimal.NewFromFloat(*cfg.Budget.Monthly)
	}
	return decimal.NewFromInt(DefaultMonthlyBudget)
}

// RefreshInterval returns the TUI auto-refresh period, never below 10s.
func RefreshInterval(cfg Config) time.Duration {
	sec := cfg.TUI.RefreshIntervalSec
	if sec < 10 {
		sec = 10
	}
	return time.Duration(sec) * time.Second
}
