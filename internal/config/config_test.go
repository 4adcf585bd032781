package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.General.DefaultRange = "7d"
	cfg.General.Currency = "$"
	cfg.General.Timezone = "Europe/Rome"
	monthly := 850.5
	cfg.Budget.Monthly = &monthly
	cfg.Daemon.Schedule = "*/10 * * * *"

	require.NoError(t, SaveTo(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[general]\ncurrency = \"£\"\n\n[budget]\nmonthly = 400.0\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "£", cfg.General.Currency)
	assert.Equal(t, "24h", cfg.General.DefaultRange)
	assert.Equal(t, "@every 5m", cfg.Daemon.Schedule)
	assert.True(t, MonthlyBudget(cfg).Equal(MonthlyBudget(Config{Budget: BudgetConfig{Monthly: ptr(400)}})))
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[general\n"), 0o600))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestDataDir(t *testing.T) {
	t.Setenv("RECEIPTIA_DATA_DIR", "")
	cfg := DefaultConfig()
	cfg.General.DataDir = "/srv/ledger"
	assert.Equal(t, "/srv/ledger", DataDir(cfg))

	t.Setenv("RECEIPTIA_DATA_DIR", "/tmp/override")
	assert.Equal(t, "/tmp/override", DataDir(cfg))
}

func TestConfigDirHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "receiptia", "config.toml"), ConfigPath())
	assert.False(t, Exists())

	require.NoError(t, Save(DefaultConfig()))
	assert.True(t, Exists())
}

func TestLocation(t *testing.T) {
	loc, err := Location(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg := DefaultConfig()
	cfg.General.Timezone = "UTC"
	loc, err = Location(cfg)
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.General.Timezone = "Mars/Olympus"
	_, err = Location(cfg)
	assert.Error(t, err)
}

func TestMonthlyBudget(t *testing.T) {
	assert.Equal(t, "1000", MonthlyBudget(DefaultConfig()).String())
	assert.Equal(t, "1000", MonthlyBudget(Config{Budget: BudgetConfig{Monthly: ptr(-5)}}).String())
	assert.Equal(t, "250.75", MonthlyBudget(Config{Budget: BudgetConfig{Monthly: ptr(250.75)}}).String())
}

func TestRefreshInterval(t *testing.T) {
	assert.Equal(t, 60*time.Second, RefreshInterval(DefaultConfig()))
	assert.Equal(t, 10*time.Second, RefreshInterval(Config{}))
}

func ptr(f float64) *float64 { return &f }
