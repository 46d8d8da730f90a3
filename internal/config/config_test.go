package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dompetku/internal/common"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/home/tester/.local/share/dompetku/dompetku.db", cfg.DatabasePath)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "dompetku_", cfg.Prefix)
	assert.Equal(t, int64(DefaultQuotaBytes), cfg.QuotaBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_FromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/ledger.db
storage:
  backend: Memory
  quota_bytes: 1024
logging:
  level: debug
`), 0o600))

	t.Setenv("DOMPETKU_LOGGING_FORMAT", "json")

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	BindEnv(v)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ledger.db", cfg.DatabasePath)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, int64(1024), cfg.QuotaBytes)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Backend: BackendSQLite, DatabasePath: "/tmp/x.db", LogLevel: "info", LogFormat: "console"}

	tests := []struct {
		mutate  func(c *Config)
		wantErr error
		name    string
	}{
		{func(*Config) {}, nil, "valid"},
		{func(c *Config) { c.Backend = "redis" }, common.ErrInvalidConfig, "unknown backend"},
		{func(c *Config) { c.DatabasePath = "" }, common.ErrMissingConfig, "sqlite without path"},
		{func(c *Config) { c.Backend = BackendMemory; c.DatabasePath = "" }, nil, "memory without path"},
		{func(c *Config) { c.QuotaBytes = -1 }, common.ErrInvalidConfig, "negative quota"},
		{func(c *Config) { c.LogLevel = "loud" }, common.ErrInvalidConfig, "bad level"},
		{func(c *Config) { c.LogFormat = "xml" }, common.ErrInvalidConfig, "bad format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("LEDGER_DIR", "/srv/ledger")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", "/home/tester"},
		{"~/data/x.db", "/home/tester/data/x.db"},
		{"$LEDGER_DIR/x.db", "/srv/ledger/x.db"},
		{"/abs/x.db", "/abs/x.db"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPath(tt.in), tt.in)
	}
}

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "ledger.db")
	require.NoError(t, EnsureDir(path))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
