package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/dompetku/internal/common"
	"github.com/Veraticus/dompetku/internal/storage"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Configuration keys.
const (
	KeyDatabasePath = "database.path"
	KeyBackend      = "storage.backend"
	KeyPrefix       = "storage.prefix"
	KeyQuotaBytes   = "storage.quota_bytes"
	KeyLogLevel     = "logging.level"
	KeyLogFormat    = "logging.format"
)

// DefaultDatabasePath is where the SQLite ledger lives unless configured.
const DefaultDatabasePath = "$HOME/.local/share/dompetku/dompetku.db"

// DefaultQuotaBytes mirrors the few megabytes a browser grants local storage.
const DefaultQuotaBytes = 5 * 1024 * 1024

// Config holds the resolved application settings.
type Config struct {
	DatabasePath string
	Backend      string
	Prefix       string
	LogLevel     string
	LogFormat    string
	QuotaBytes   int64
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyBackend, BackendSQLite)
	v.SetDefault(KeyPrefix, storage.DefaultPrefix)
	v.SetDefault(KeyQuotaBytes, DefaultQuotaBytes)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load resolves the configuration from v, which may carry values from a
// config file, DOMPETKU_ environment variables and bound flags.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString(KeyDatabasePath)),
		Backend:      strings.ToLower(strings.TrimSpace(v.GetString(KeyBackend))),
		Prefix:       v.GetString(KeyPrefix),
		QuotaBytes:   v.GetInt64(KeyQuotaBytes),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("%w: %s is required for the sqlite backend", common.ErrMissingConfig, KeyDatabasePath)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", common.ErrInvalidConfig, c.Backend)
	}

	if c.QuotaBytes < 0 {
		return fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyQuotaBytes)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "text", "json", "":
	default:
		return fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// EnvPrefix namespaces environment overrides, e.g. DOMPETKU_STORAGE_BACKEND.
const EnvPrefix = "DOMPETKU"

func envKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// BindEnv makes every key overridable from the environment.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer())
	v.AutomaticEnv()
}
