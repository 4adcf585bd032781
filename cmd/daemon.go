package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/receiptia/receiptia/internal/cli"
	"github.com/receiptia/receiptia/internal/config"
	"github.com/receiptia/receiptia/internal/daemon"
	"github.com/receiptia/receiptia/internal/logging"
	"github.com/receiptia/receiptia/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonSchedule     string
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a background spending monitor with HTTP/SSE endpoints",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	defaultPID := filepath.Join(pipeline.CacheDir(), "receiptiad.pid")
	defaultLog := filepath.Join(pipeline.CacheDir(), "receiptiad.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonSchedule, "schedule", "", "Cron schedule for re-analysis, e.g. \"@every 1m\" (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// daemonAddr resolves the listen address: flag, then config.
func daemonAddr(cfg config.Config) string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return cfg.Daemon.Addr
}

// configuredDaemonAddr is daemonAddr over the config file on disk.
func configuredDaemonAddr() (string, error) {
	if flagDaemonAddr != "" {
		return flagDaemonAddr, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return daemonAddr(cfg), nil
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	if flagDaemonDetach {
		return startDaemonDetached()
	}

	return runDaemonForeground()
}

func startDaemonDetached() error {
	if err := pidFile(flagDaemonPIDFile).ensureFree(); err != nil {
		return err
	}

	addr, err := configuredDaemonAddr()
	if err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := stripDetachFlag(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonPIDFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagDaemonPIDFile)
	fmt.Printf("  API: http://%s/v1/status\n", addr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func runDaemonForeground() error {
	env, err := newEnv()
	if err != nil {
		return err
	}

	log, err := logging.NewDaemon(flagVerbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	pf := pidFile(flagDaemonPIDFile)
	if err := pf.ensureFree(); err != nil {
		return err
	}

	addr := daemonAddr(env.cfg)
	schedule := flagDaemonSchedule
	if schedule == "" {
		schedule = env.cfg.Daemon.Schedule
	}

	err = pf.write(daemonRuntimeState{
		PID:       os.Getpid(),
		Addr:      addr,
		StartedAt: time.Now(),
		DataDir:   env.dataDir,
		Schedule:  schedule,
	})
	if err != nil {
		return err
	}
	defer pf.remove()

	svc := daemon.New(daemon.Config{
		DataDir:      env.dataDir,
		Range:        env.rng,
		Category:     env.category,
		Merchant:     flagMerchant,
		UseCache:     !flagNoCache,
		Schedule:     schedule,
		Addr:         addr,
		EventsBuffer: flagDaemonEventsBuffer,
		Currency:     env.currency,
		Location:     env.loc,
		Logger:       log,
		Now:          clockFrom(env),
	})

	fmt.Printf("  receiptia daemon listening on http://%s\n", addr)
	fmt.Printf("  Re-analyzing %s on %q\n", env.dataDir, schedule)
	fmt.Printf("  Stop with: receiptia daemon stop --pid-file %s\n", flagDaemonPIDFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	pid, err := pf.pid()
	if err != nil {
		fmt.Println("  Daemon: not running (pid file not found)")
		return nil
	}
	if !processAlive(pid) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := flagDaemonAddr
	if st, err := pf.state(); err == nil && st.Addr != "" {
		addr = st.Addr
	} else if addr, err = configuredDaemonAddr(); err != nil {
		return err
	}

	rows := [][]string{
		{"PID", strconv.Itoa(pid)},
		{"Address", "http://" + addr},
	}

	st, err := fetchDaemonStatus(addr)
	if err != nil {
		rows = append(rows, []string{"API", err.Error()})
	} else {
		lastPoll := "pending"
		if !st.LastPollAt.IsZero() {
			lastPoll = cli.FormatRelative(st.LastPollAt, time.Now())
		}
		rows = append(rows,
			[]string{"Schedule", st.Schedule},
			[]string{"Last poll", lastPoll},
			[]string{"Polls", cli.FormatNumber(st.PollCount)},
			[]string{"---"},
			[]string{"Range", st.Range},
			[]string{"Expenses", cli.FormatNumber(int64(st.Summary.Expenses))},
			[]string{"Spent", cli.FormatMoney(st.Summary.AmountWindow, cfg.General.Currency)},
			[]string{"Status", st.Summary.StatusMessage},
			[]string{"Insights", strconv.Itoa(st.Summary.InsightCount)},
			[]string{"Stream clients", strconv.Itoa(st.SubscriberCount)},
		)
		if st.LastError != "" {
			rows = append(rows, []string{"Last error", st.LastError})
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Daemon",
		Headers: []string{"", ""},
		Rows:    rows,
	}))
	return nil
}

// fetchDaemonStatus probes /v1/status with a short timeout.
func fetchDaemonStatus(addr string) (daemon.Status, error) {
	var st daemon.Status

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response: %w", err)
	}
	return st, nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	pid, err := pf.pid()
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(8 * time.Second)
	for {
		select {
		case <-ticker.C:
			if !processAlive(pid) {
				pf.remove()
				fmt.Printf("  Stopped daemon (pid %d)\n", pid)
				return nil
			}
		case <-timeout:
			return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
		}
	}
}
