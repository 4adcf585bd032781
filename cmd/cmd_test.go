package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/receiptia/receiptia/internal/analysis"
	"github.com/receiptia/receiptia/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores persistent flag values changed by a test.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		flagRange, flagCategory, flagMerchant, flagDataDir, flagNow = "", "", "", "", ""
		flagNoCache, flagQuiet, flagVerbose = false, false, false
	})
}

func TestResolveNow(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	got, err := resolveNow("2025-01-15T21:30:00Z", rome)
	require.NoError(t, err)
	assert.Equal(t, 22, got.Hour(), "converted to the user's zone")
	assert.Equal(t, rome, got.Location())

	_, err = resolveNow("yesterday", rome)
	assert.Error(t, err)

	live, err := resolveNow("", rome)
	require.NoError(t, err)
	assert.Equal(t, rome, live.Location())
}

func TestNewEnvMergesFlagsOverConfig(t *testing.T) {
	resetFlags(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RECEIPTIA_DATA_DIR", "")

	flagNow = "2025-03-12T15:00:00Z"
	flagRange = "7d"
	flagCategory = "Cibo"
	flagDataDir = "/tmp/ledgers"

	env, err := newEnv()
	require.NoError(t, err)

	assert.Equal(t, analysis.Last7d, env.rng)
	assert.Equal(t, model.CategoryFood, env.category)
	assert.Equal(t, "/tmp/ledgers", env.dataDir)
	assert.Equal(t, "€", env.currency)
	assert.Equal(t, "1000", env.budget.String())
	assert.True(t, env.window.End.Equal(env.now))
	assert.True(t, env.window.Start.Equal(env.now.AddDate(0, 0, -7)))
}

func TestNewEnvDefaultsToConfigRange(t *testing.T) {
	resetFlags(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	env, err := newEnv()
	require.NoError(t, err)
	assert.Equal(t, analysis.Last24h, env.rng)
}

func TestNewEnvRejectsBadFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	for name, set := range map[string]func(){
		"range":    func() { flagRange = "fortnight" },
		"category": func() { flagCategory = "gadgets" },
		"now":      func() { flagNow = "noon" },
	} {
		t.Run(name, func(t *testing.T) {
			resetFlags(t)
			set()
			_, err := newEnv()
			assert.Error(t, err)
		})
	}
}

func TestClockFromFreezesReplayTime(t *testing.T) {
	resetFlags(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	flagNow = "2025-03-12T15:00:00Z"

	env, err := newEnv()
	require.NoError(t, err)
	clock := clockFrom(env)
	assert.True(t, clock().Equal(env.now))
}

func TestApplyFilters(t *testing.T) {
	resetFlags(t)
	expenses := []model.Expense{
		{ID: "1", Category: model.CategoryFood, Merchant: "Esselunga"},
		{ID: "2", Category: model.CategoryShopping, Merchant: "Zalando"},
		{ID: "3", Category: model.CategoryFood, Merchant: "Bar Centrale"},
	}

	env := &runEnv{category: model.CategoryFood}
	assert.Len(t, applyFilters(env, expenses), 2)

	flagMerchant = "bar"
	got := applyFilters(env, expenses)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
}

func TestStripDetachFlag(t *testing.T) {
	got := stripDetachFlag([]string{"daemon", "--detach", "--addr", "x", "--detach=true"})
	assert.Equal(t, []string{"daemon", "--addr", "x"}, got)
}

func TestPIDFileRoundTrip(t *testing.T) {
	pf := pidFile(filepath.Join(t.TempDir(), "run", "receiptiad.pid"))
	want := daemonRuntimeState{
		PID:       4242,
		Addr:      "127.0.0.1:9999",
		DataDir:   "/data",
		Schedule:  "@every 1m",
		StartedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, pf.write(want))

	pid, err := pf.pid()
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)

	got, err := pf.state()
	require.NoError(t, err)
	assert.Equal(t, want.Addr, got.Addr)
	assert.Equal(t, want.Schedule, got.Schedule)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))

	require.NoError(t, os.WriteFile(string(pf), []byte("nope\n"), 0o600))
	_, err = pf.pid()
	assert.Error(t, err)
}

func TestPIDFileEnsureFreeClearsStaleFiles(t *testing.T) {
	pf := pidFile(filepath.Join(t.TempDir(), "receiptiad.pid"))
	assert.NoError(t, pf.ensureFree(), "missing pid file")

	// far above any real pid_max
	require.NoError(t, pf.write(daemonRuntimeState{PID: 0x7ffffffe}))
	assert.NoError(t, pf.ensureFree())

	_, err := os.Stat(string(pf))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(pf.statePath())
	assert.True(t, os.IsNotExist(err))
}

func TestPIDFileEnsureFreeRejectsLiveDaemon(t *testing.T) {
	pf := pidFile(filepath.Join(t.TempDir(), "receiptiad.pid"))
	require.NoError(t, pf.write(daemonRuntimeState{PID: os.Getpid()}))
	assert.Error(t, pf.ensureFree())
}

func TestConfiguredDaemonAddr(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Cleanup(func() { flagDaemonAddr = "" })

	cfgPath := filepath.Join(dir, "receiptia", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o755))
	require.NoError(t, os.WriteFile(cfgPath, []byte("[daemon]\naddr = \"127.0.0.1:9999\"\n"), 0o600))

	addr, err := configuredDaemonAddr()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", addr)

	flagDaemonAddr = "127.0.0.1:1234"
	addr, err = configuredDaemonAddr()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1234", addr)
}

func TestConfiguredDaemonAddrReportsBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	flagDaemonAddr = ""

	cfgPath := filepath.Join(dir, "receiptia", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o755))
	require.NoError(t, os.WriteFile(cfgPath, []byte("[daemon\naddr = "), 0o600))

	_, err := configuredDaemonAddr()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}
