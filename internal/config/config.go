package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level exhaust configuration.
type Config struct {
	SessionsDir    string    `mapstructure:"sessions_dir"`
	DBPath         string    `mapstructure:"db_path"`
	OperatorID     string    `mapstructure:"operator_id"`
	MainSessionKey string    `mapstructure:"main_session_key"`
	Ingest         Ingest    `mapstructure:"ingest"`
	Classify       Classify  `mapstructure:"classify"`
	Synthesis      Synthesis `mapstructure:"synthesis"`
	Output         Output    `mapstructure:"output"`
}

// Ingest holds watcher tuning.
type Ingest struct {
	CatchupWindowHours int `mapstructure:"catchup_window_hours"`
}

// Classify holds classifier tuning.
type Classify struct {
	BatchSize int `mapstructure:"batch_size"`
}

// Synthesis holds rollup eligibility thresholds.
type Synthesis struct {
	WindowDays       int `mapstructure:"window_days"`
	MinEventsPerHour int `mapstructure:"min_events_per_hour"`
	MinHoursPerDay   int `mapstructure:"min_hours_per_day"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
}

// CatchupWindow returns the startup catch-up window as a duration.
func (c *Config) CatchupWindow() time.Duration {
	return time.Duration(c.Ingest.CatchupWindowHours) * time.Hour
}

// SynthesisWindow returns the trailing synthesis window as a duration.
func (c *Config) SynthesisWindow() time.Duration {
	return time.Duration(c.Synthesis.WindowDays) * 24 * time.Hour
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("sessions_dir", DefaultSessionsDir)
	v.SetDefault("db_path", filepath.Join(DefaultConfigDir, DefaultDBName))
	v.SetDefault("operator_id", DefaultOperatorID)
	v.SetDefault("main_session_key", DefaultMainSessionKey)
	v.SetDefault("ingest.catchup_window_hours", DefaultCatchupWindowHours)
	v.SetDefault("classify.batch_size", DefaultClassifyBatchSize)
	v.SetDefault("synthesis.window_days", DefaultSynthesisWindowDays)
	v.SetDefault("synthesis.min_events_per_hour", DefaultMinEventsPerHour)
	v.SetDefault("synthesis.min_hours_per_day", DefaultMinHoursPerDay)
	v.SetDefault("output.color", true)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error for problems other than file not found.
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Expand paths.
	cfg.SessionsDir = expandPath(cfg.SessionsDir)
	cfg.DBPath = expandPath(cfg.DBPath)

	return &cfg, nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
