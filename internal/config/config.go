// Package config provides configuration management for the lol-v2 services.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Bet365     Bet365Config     `mapstructure:"bet365" validate:"required"`
	Analysis   AnalysisConfig   `mapstructure:"analysis" validate:"required"`
	Settlement SettlementConfig `mapstructure:"settlement" validate:"required"`
	Stats      StatsConfig      `mapstructure:"stats" validate:"required"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`

	// TeamAliases maps provider team spellings to canonical names used
	// by the historical database.
	TeamAliases map[string]string `mapstructure:"team_aliases"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// Bet365Config represents odds/results provider configuration
type Bet365Config struct {
	APIURL          string   `mapstructure:"api_url" validate:"required,url"`
	Token           string   `mapstructure:"token" validate:"required"`
	RequestsPerHour int      `mapstructure:"requests_per_hour" validate:"required,gt=0,lte=3600"`
	TimeoutSeconds  int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts   int      `mapstructure:"retry_attempts" validate:"gte=0"`
	LeagueIDs       []string `mapstructure:"league_ids"`
}

// AnalysisConfig governs bet evaluation
type AnalysisConfig struct {
	MinROI          float64 `mapstructure:"min_roi" validate:"required,gt=0"`
	Stake           float64 `mapstructure:"stake" validate:"required,gt=0"`
	MaxBetsPerEvent int     `mapstructure:"max_bets_per_event" validate:"required,gt=0"`
	Workers         int     `mapstructure:"workers" validate:"required,gt=0"`
	MinOdds         float64 `mapstructure:"min_odds" validate:"gte=1"`
	MaxOdds         float64 `mapstructure:"max_odds" validate:"gte=0"`
}

// SettlementConfig governs the result reconciler
type SettlementConfig struct {
	Workers          int `mapstructure:"workers" validate:"required,gt=0"`
	DayTolerance     int `mapstructure:"day_tolerance" validate:"gte=0"`
	OldThresholdDays int `mapstructure:"old_threshold_days" validate:"required,gt=0"`
}

// StatsConfig governs the historical sample store
type StatsConfig struct {
	HorizonDays int `mapstructure:"horizon_days" validate:"required,gt=0"`
	WindowShort int `mapstructure:"window_short" validate:"required,gt=0"`
	WindowLong  int `mapstructure:"window_long" validate:"required,gt=0"`
}

// ScheduleConfig holds cron expressions for the periodic runs
type ScheduleConfig struct {
	OddsSync   string `mapstructure:"odds_sync"`
	Settlement string `mapstructure:"settlement"`
	ResultSync string `mapstructure:"result_sync"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ProviderTimeout returns the configured provider request timeout
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Bet365.TimeoutSeconds) * time.Second
}

// StatsHorizon returns the lookback horizon for historical samples
func (c *Config) StatsHorizon() time.Duration {
	return time.Duration(c.Stats.HorizonDays) * 24 * time.Hour
}
