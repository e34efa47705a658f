package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/eventledger/internal/model"
)

var ErrDisabled = errors.New("backup not configured: passphrase missing")

const (
	filePrefix = "ledger-"
	fileSuffix = ".json.enc"
	fileStamp  = "20060102-150405.000"
)

// Source supplies the ledger blob to back up.
type Source interface {
	Snapshot() ([]byte, error)
}

// Config holds backup manager configuration.
type Config struct {
	Dir        string
	Passphrase string
	// Schedule is a five-field cron expression. Empty disables scheduled runs.
	Schedule string
	// Retain is how many of the newest backups Cleanup keeps.
	Retain int
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	LastFile   string     `json:"last_file,omitempty"`
	Error      string     `json:"error,omitempty"`
	InProgress bool       `json:"in_progress"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

// Manager writes encrypted ledger snapshots to a directory, on demand and on
// a cron schedule.
type Manager struct {
	mu       sync.RWMutex
	runMu    sync.Mutex
	cfg      Config
	source   Source
	status   Status
	callback StatusCallback
	cron     *cron.Cron
	logger   *slog.Logger
	now      func() time.Time
}

// NewManager creates a backup manager. Without a passphrase it stays disabled.
func NewManager(cfg Config, source Source, callback StatusCallback, logger *slog.Logger) *Manager {
	if cfg.Retain <= 0 {
		cfg.Retain = 30
	}
	m := &Manager{
		cfg:      cfg,
		source:   source,
		callback: callback,
		logger:   logger,
		now:      time.Now,
		status:   Status{State: StateDisabled},
	}
	if cfg.Passphrase != "" && cfg.Dir != "" {
		m.status.State = StateIdle
	}
	return m
}

// Enabled reports whether backups can run.
func (m *Manager) Enabled() bool {
	return m.Status().State != StateDisabled
}

// Start schedules backups according to cfg.Schedule.
func (m *Manager) Start(ctx context.Context) error {
	if !m.Enabled() || m.cfg.Schedule == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(m.cfg.Schedule, func() {
		if _, err := m.RunNow(ctx); err != nil {
			m.logger.Error("scheduled backup failed", "error", err)
			return
		}
		if err := m.Cleanup(); err != nil {
			m.logger.Error("backup cleanup failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("parse backup schedule %q: %w", m.cfg.Schedule, err)
	}

	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()

	c.Start()
	m.logger.Info("backup schedule started", "schedule", m.cfg.Schedule, "dir", m.cfg.Dir)
	return nil
}

// Stop halts the schedule and waits for a running backup to finish.
func (m *Manager) Stop() {
	m.mu.RLock()
	c := m.cron
	m.mu.RUnlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

// RunNow writes one encrypted snapshot and returns its path.
func (m *Manager) RunNow(ctx context.Context) (string, error) {
	if !m.Enabled() {
		return "", ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.runMu.Lock()
	defer m.runMu.Unlock()

	prev := m.Status()
	m.setStatus(Status{State: StateRunning, InProgress: true, LastBackup: prev.LastBackup, LastFile: prev.LastFile})

	path, err := m.runBackup()
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error(), LastBackup: prev.LastBackup, LastFile: prev.LastFile})
		return "", err
	}

	now := m.now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &now, LastFile: path})
	m.logger.Info("backup written", "path", path)
	return path, nil
}

func (m *Manager) runBackup() (string, error) {
	data, err := m.source.Snapshot()
	if err != nil {
		return "", fmt.Errorf("snapshot ledger: %w", err)
	}

	if err := os.MkdirAll(m.cfg.Dir, 0o700); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := filePrefix + m.now().UTC().Format(fileStamp) + fileSuffix
	path := filepath.Join(m.cfg.Dir, name)
	if err := EncryptFile(data, path, m.cfg.Passphrase); err != nil {
		return "", err
	}
	return path, nil
}

// List returns backup file paths, oldest first.
func (m *Manager) List() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(m.cfg.Dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	slices.Sort(paths)
	return paths, nil
}

// Cleanup removes all but the newest cfg.Retain backups.
func (m *Manager) Cleanup() error {
	paths, err := m.List()
	if err != nil {
		return err
	}
	if len(paths) <= m.cfg.Retain {
		return nil
	}
	for _, p := range paths[:len(paths)-m.cfg.Retain] {
		if err := os.Remove(p); err != nil {
			m.logger.Warn("remove old backup", "path", p, "error", err)
		}
	}
	return nil
}

// ReadEvents decrypts a backup file and decodes the ledger it holds.
func ReadEvents(path, passphrase string) ([]model.Event, error) {
	data, err := DecryptFile(path, passphrase)
	if err != nil {
		return nil, err
	}
	var events []model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return events, nil
}
