package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
app:
  name: lol-v2
  environment: development
  log_level: debug
database:
  host: localhost
  port: 5432
  name: lol_bets
  user: app
  password: secret
bet365:
  api_url: https://api.b365api.com
  token: abc123
team_aliases:
  "T1 Esports": "T1"
`

func TestLoadWithDefaults(t *testing.T) {
	path := writeConfig(t, minimalConfig)

	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)

	assert.Equal(t, "lol-v2", cfg.App.Name)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.True(t, cfg.IsDevelopment())

	// Defaults fill what the file leaves out.
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 3500, cfg.Bet365.RequestsPerHour)
	assert.Equal(t, 10, cfg.Analysis.MaxBetsPerEvent)
	assert.Equal(t, 60, cfg.Stats.HorizonDays)
	assert.Equal(t, 10, cfg.Stats.WindowShort)
	assert.Equal(t, 20, cfg.Stats.WindowLong)
	assert.Equal(t, 7, cfg.Settlement.OldThresholdDays)

	assert.Equal(t, "T1", cfg.TeamAliases["T1 Esports"])

	require.NoError(t, Validate(cfg))
}

func TestLoadExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "hunter2")

	path := writeConfig(t, `
app:
  name: lol-v2
  environment: development
  log_level: info
database:
  host: localhost
  port: 5432
  name: lol_bets
  user: app
  password: ${TEST_DB_PASSWORD}
bet365:
  api_url: https://api.b365api.com
  token: abc123
`)

	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.Database.Password)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)

	cfg.App.Environment = "prod"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "development, staging, production")
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)

	cfg.App.LogLevel = "verbose"
	require.Error(t, Validate(cfg))
}

func TestValidateCrossFieldRules(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)

	cfg.Database.MaxIdleConnections = cfg.Database.MaxConnections + 1
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_idle_connections")

	cfg, err = LoadWithDefaults(path)
	require.NoError(t, err)
	cfg.Stats.WindowShort = 30
	require.Error(t, Validate(cfg))
}

func TestValidateProductionRequiresSSL(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	cfg, err := LoadWithDefaults(path)
	require.NoError(t, err)

	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "disable"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SSL")
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{}
	cfg.Database = DatabaseConfig{
		Host: "db", Port: 5432, Name: "lol_bets",
		User: "app", Password: "secret", SSLMode: "require",
	}
	assert.Equal(t,
		"postgres://app:secret@db:5432/lol_bets?sslmode=require",
		cfg.GetDatabaseDSN())
}
