package contract

import (
	"fmt"
	"maps"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/pulse/schema"
)

// Default values for configuration.
const (
	DefaultCapacity     = 1000
	MaxCapacity         = 100000
	DefaultSeasonLength = 24
	DefaultTrendingTTL  = 60 * time.Minute
	DefaultPrecision    = 1
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ThresholdRaw holds one metric threshold from the YAML config file.
type ThresholdRaw struct {
	Value     *float64 `mapstructure:"value"`
	Direction string   `mapstructure:"direction"`
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	StateDir string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Capacity     int
	SeasonLength int
	TrendingTTL  time.Duration

	LogLevel string
	LogFile  string

	User   string
	Admins []string

	// Thresholds is the per-metric insight threshold, defaults merged with overrides
	Thresholds map[schema.MetricName]schema.MetricThreshold

	MetricsAddr string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	StateDir         string `mapstructure:"state-dir"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Capacity         int    `mapstructure:"capacity"`
	SeasonLength     int    `mapstructure:"season-length"`
	TrendingTTL      string `mapstructure:"trending-ttl"`
	LogLevel         string `mapstructure:"log-level"`
	LogFile          string `mapstructure:"log-file"`
	User             string `mapstructure:"user"`
	Admins           string `mapstructure:"admins"`

	// --- Fields from insightsCmd.Flags() ---
	ThresholdsStr string `mapstructure:"thresholds-override"`

	// --- Fields from mcpCmd.Flags() ---
	MetricsAddr string `mapstructure:"metrics-addr"`

	// --- Thresholds from config file ---
	Thresholds map[string]ThresholdRaw `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Admins != nil {
		clone.Admins = make([]string, len(c.Admins))
		copy(clone.Admins, c.Admins)
	}
	if c.Thresholds != nil {
		clone.Thresholds = make(map[schema.MetricName]schema.MetricThreshold, len(c.Thresholds))
		maps.Copy(clone.Thresholds, c.Thresholds)
	}
	return &clone
}

// IsAdmin reports whether user may curate the featured list.
func (c *Config) IsAdmin(user string) bool {
	for _, a := range c.Admins {
		if a == user {
			return true
		}
	}
	return false
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processEngineInputs(cfg, input); err != nil {
		return err
	}
	return processThresholds(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.JSONBackend, schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	cfg.LogFile = input.LogFile
	cfg.User = strings.TrimSpace(input.User)
	cfg.MetricsAddr = strings.TrimSpace(input.MetricsAddr)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.StateDir = strings.TrimSpace(input.StateDir)
	if cfg.StateDir == "" {
		cfg.StateDir = GetStateDir()
	}

	cfg.Admins = nil
	for a := range strings.SplitSeq(input.Admins, ",") {
		if trimmed := strings.TrimSpace(a); trimmed != "" {
			cfg.Admins = append(cfg.Admins, trimmed)
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be json, sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if _, ok := schema.ValidHistoryBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// For SQLite, resolve default paths under the state dir and catch conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.CacheDBConnect == "" {
		cfg.CacheDBConnect = filepath.Join(cfg.StateDir, "cache.db")
	}
	if cfg.HistoryBackend == schema.SQLiteBackend && cfg.HistoryDBConnect == "" {
		cfg.HistoryDBConnect = filepath.Join(cfg.StateDir, "history.db")
	}
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend &&
		filepath.Clean(cfg.CacheDBConnect) == filepath.Clean(cfg.HistoryDBConnect) {
		return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cfg.CacheDBConnect)
	}
	return nil
}

// ProcessProfilingConfig enables profiling when a prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// processEngineInputs validates buffer, seasonality and cache freshness settings.
func processEngineInputs(cfg *Config, input *ConfigRawInput) error {
	if input.Capacity <= 0 || input.Capacity > MaxCapacity {
		return fmt.Errorf("capacity must be greater than 0 and cannot exceed %d (received %d)", MaxCapacity, input.Capacity)
	}
	cfg.Capacity = input.Capacity

	if input.SeasonLength < 2 {
		return fmt.Errorf("season-length must be at least 2 (received %d)", input.SeasonLength)
	}
	cfg.SeasonLength = input.SeasonLength

	cfg.TrendingTTL = DefaultTrendingTTL
	if input.TrendingTTL != "" {
		ttl, err := ParseDuration(input.TrendingTTL)
		if err != nil {
			return fmt.Errorf("invalid trending-ttl: %w", err)
		}
		cfg.TrendingTTL = ttl
	}
	return nil
}

// processThresholds merges the default thresholds with config file values and
// the --thresholds-override flag, which takes precedence.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	thresholds := schema.DefaultThresholds()

	for key, raw := range input.Thresholds {
		name := schema.MetricName(strings.ToLower(key))
		if !schema.IsValidMetric(name) {
			return fmt.Errorf("invalid threshold metric '%s'", key)
		}
		current := thresholds[name]
		if raw.Value != nil {
			current.Value = *raw.Value
		}
		if raw.Direction != "" {
			dir, err := parseDirection(raw.Direction)
			if err != nil {
				return err
			}
			current.Direction = dir
		}
		thresholds[name] = current
	}

	if input.ThresholdsStr != "" {
		parsed, err := parseThresholdsString(input.ThresholdsStr)
		if err != nil {
			return fmt.Errorf("invalid --thresholds-override format: %w", err)
		}
		for name, value := range parsed {
			current := thresholds[name]
			current.Value = value
			thresholds[name] = current
		}
	}

	cfg.Thresholds = thresholds
	return nil
}

func parseDirection(s string) (schema.ThresholdDirection, error) {
	switch schema.ThresholdDirection(strings.ToLower(strings.TrimSpace(s))) {
	case schema.AboveDirection:
		return schema.AboveDirection, nil
	case schema.BelowDirection:
		return schema.BelowDirection, nil
	default:
		return "", fmt.Errorf("invalid threshold direction '%s', must be above or below", s)
	}
}

// parseThresholdsString parses a string like "cost:200,error_count:25"
// into a map of MetricName to float64.
func parseThresholdsString(s string) (map[schema.MetricName]float64, error) {
	thresholds := make(map[schema.MetricName]float64)

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		keyValue := strings.Split(part, ":")
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid threshold format '%s', expected 'metric:value'", part)
		}

		name := schema.MetricName(strings.ToLower(strings.TrimSpace(keyValue[0])))
		if !schema.IsValidMetric(name) {
			return nil, fmt.Errorf("invalid metric '%s'", keyValue[0])
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(keyValue[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold value '%s' for metric %s: %w", keyValue[1], name, err)
		}
		thresholds[name] = value
	}

	return thresholds, nil
}
