package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/vidgrab/vidgrab/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, config)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.vidgrab")
		v.AddConfigPath("/etc/vidgrab")
	}

	v.SetEnvPrefix("VIDGRAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file, defaults and environment apply
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// configKeys flattens config into viper keys
func configKeys(config *domain.Config) map[string]interface{} {
	return map[string]interface{}{
		"server.host":             config.Server.Host,
		"server.port":             config.Server.Port,
		"server.shutdown_timeout": config.Server.ShutdownTimeout,

		"backend.base_url":      config.Backend.BaseURL,
		"backend.timeout":       config.Backend.Timeout,
		"backend.probe_timeout": config.Backend.ProbeTimeout,
		"backend.user_agent":    config.Backend.UserAgent,

		"download.dir":              config.Download.Dir,
		"download.retry_delay":      config.Download.RetryDelay,
		"download.retry_multiplier": config.Download.RetryMultiplier,
		"download.max_retry_delay":  config.Download.MaxRetryDelay,
		"download.max_reconnects":   config.Download.MaxReconnects,
		"download.open_fallback":    config.Download.OpenFallback,

		"storage.database_path": config.Storage.DatabasePath,

		"ui.toast_duration":      config.UI.ToastDuration,
		"ui.copy_toast_duration": config.UI.CopyToastDuration,
		"ui.history_limit":       config.UI.HistoryLimit,

		"notification.enabled": config.Notification.Enabled,
		"notification.method":  config.Notification.Method,

		"logging.level":       config.Logging.Level,
		"logging.format":      config.Logging.Format,
		"logging.output_path": config.Logging.OutputPath,
		"logging.max_size_mb": config.Logging.MaxSizeMB,
		"logging.max_backups": config.Logging.MaxBackups,

		"metrics.enabled": config.Metrics.Enabled,
		"metrics.path":    config.Metrics.Path,
	}
}

// setDefaults registers every key so AutomaticEnv can override it without a config file
func setDefaults(v *viper.Viper, config *domain.Config) {
	for key, value := range configKeys(config) {
		v.SetDefault(key, value)
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.Dir = expandPath(config.Download.Dir)
	if config.Storage.DatabasePath != ":memory:" {
		config.Storage.DatabasePath = expandPath(config.Storage.DatabasePath)
	}

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	if strings.Contains(path, "$HOME") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Backend.BaseURL == "" {
		return fmt.Errorf("backend base url not configured")
	}

	if config.Download.Dir == "" {
		return fmt.Errorf("download directory not configured")
	}

	if config.Download.MaxReconnects < 0 {
		return fmt.Errorf("max reconnects cannot be negative")
	}

	if config.Download.RetryDelay <= 0 {
		return fmt.Errorf("retry delay must be positive")
	}

	if config.Download.RetryMultiplier < 1 {
		return fmt.Errorf("retry multiplier must be at least 1")
	}

	if config.Storage.DatabasePath == "" {
		return fmt.Errorf("database path not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range configKeys(config) {
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		v.Set(key, value)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
