package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// daemonRuntimeState is written next to the pid file so `daemon status`
// can find the listen address.
type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DataDir   string    `json:"data_dir"`
	Schedule  string    `json:"schedule"`
}

// pidFile is the daemon pid file path. Its state sidecar lives at path+".json".
type pidFile string

func (p pidFile) statePath() string { return string(p) + ".json" }

// write records st.PID and the full state. The pid file is written first so
// a crash between the two leaves a usable pid file.
func (p pidFile) write(st daemonRuntimeState) error {
	if err := os.MkdirAll(filepath.Dir(string(p)), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.WriteFile(string(p), []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(p.statePath(), append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write daemon state: %w", err)
	}
	return nil
}

func (p pidFile) pid() (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(string(p))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", p)
	}
	return pid, nil
}

func (p pidFile) state() (daemonRuntimeState, error) {
	var st daemonRuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(p.statePath())
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

func (p pidFile) remove() {
	_ = os.Remove(string(p))
	_ = os.Remove(p.statePath())
}

// ensureFree fails if a live daemon owns the pid file and clears stale files.
func (p pidFile) ensureFree() error {
	pid, err := p.pid()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case processAlive(pid):
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	p.remove()
	return nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// stripDetachFlag drops --detach so the re-executed child runs in the foreground.
func stripDetachFlag(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
