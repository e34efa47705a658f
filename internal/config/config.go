package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Storage backends for the ledger slot.
const (
	StorageSQLite = "sqlite"
	StorageBadger = "badger"
)

// Config is the process configuration, read from EVENTLEDGER_* variables.
type Config struct {
	Port      string `env:"EVENTLEDGER_PORT,default=8080"`
	LogLevel  string `env:"EVENTLEDGER_LOG_LEVEL,default=info"`
	LogFormat string `env:"EVENTLEDGER_LOG_FORMAT,default=text"`
	Storage   string `env:"EVENTLEDGER_STORAGE,default=sqlite"`
	DBPath    string `env:"EVENTLEDGER_DB_PATH,default=eventledger.db"`
	BadgerDir string `env:"EVENTLEDGER_BADGER_DIR,default=eventledger-badger"`
	Slot      string `env:"EVENTLEDGER_SLOT,default=events"`

	ProposalEndpoint string        `env:"EVENTLEDGER_PROPOSAL_ENDPOINT"`
	ProposalAPIKey   string        `env:"EVENTLEDGER_PROPOSAL_API_KEY"`
	ProposalModel    string        `env:"EVENTLEDGER_PROPOSAL_MODEL"`
	ProposalTimeout  time.Duration `env:"EVENTLEDGER_PROPOSAL_TIMEOUT,default=20s"`

	BackupDir        string `env:"EVENTLEDGER_BACKUP_DIR,default=backups"`
	BackupPassphrase string `env:"EVENTLEDGER_BACKUP_PASSPHRASE"`
	BackupSchedule   string `env:"EVENTLEDGER_BACKUP_SCHEDULE,default=0 3 * * *"`
	BackupRetain     int    `env:"EVENTLEDGER_BACKUP_RETAIN,default=30"`

	// RegisterLimit is the number of registrations one client may attempt per minute.
	RegisterLimit int `env:"EVENTLEDGER_REGISTER_LIMIT,default=30"`
	// WSOrigins is a comma-separated list of extra origins allowed to open /ws.
	WSOrigins string `env:"EVENTLEDGER_WS_ORIGINS"`
}

// Load reads envFile into the environment when it exists, without overriding
// variables already set, then decodes the environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, cfg.validate()
}

// FromEnvSet decodes an explicit set of variables.
func FromEnvSet(es env.EnvSet) (Config, error) {
	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Storage {
	case StorageSQLite, StorageBadger:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	if c.RegisterLimit <= 0 {
		return fmt.Errorf("register limit must be positive, got %d", c.RegisterLimit)
	}
	return nil
}

// Origins splits WSOrigins.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.WSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
