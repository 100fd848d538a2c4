package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Backend      BackendConfig      `mapstructure:"backend"`
	Download     DownloadConfig     `mapstructure:"download"`
	Storage      StorageConfig      `mapstructure:"storage"`
	UI           UIConfig           `mapstructure:"ui"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// ServerConfig contains local API server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BackendConfig points at the extraction backend
type BackendConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	Dir             string        `mapstructure:"dir"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	RetryMultiplier float64       `mapstructure:"retry_multiplier"`
	MaxRetryDelay   time.Duration `mapstructure:"max_retry_delay"`
	MaxReconnects   int           `mapstructure:"max_reconnects"`
	OpenFallback    bool          `mapstructure:"open_fallback"`
}

// StorageConfig contains the history database location
type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// UIConfig contains presentation timings
type UIConfig struct {
	ToastDuration     time.Duration `mapstructure:"toast_duration"`
	CopyToastDuration time.Duration `mapstructure:"copy_toast_duration"`
	HistoryLimit      int           `mapstructure:"history_limit"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// MetricsConfig toggles the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8090,
			ShutdownTimeout: 30 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL:      "http://localhost:8081",
			Timeout:      30 * time.Second,
			ProbeTimeout: 10 * time.Second,
			UserAgent:    "vidgrab/1.0",
		},
		Download: DownloadConfig{
			Dir:             "$HOME/Downloads/vidgrab",
			RetryDelay:      2 * time.Second,
			RetryMultiplier: 2.0,
			MaxRetryDelay:   30 * time.Second,
			MaxReconnects:   5,
			OpenFallback:    true,
		},
		Storage: StorageConfig{
			DatabasePath: "$HOME/.vidgrab/vidgrab.db",
		},
		UI: UIConfig{
			ToastDuration:     3 * time.Second,
			CopyToastDuration: 1500 * time.Millisecond,
			HistoryLimit:      100,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
