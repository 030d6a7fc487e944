package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"fabricmux/internal/logger"
)

type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

type TelemetryConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
}

type FileLoggerConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

type LoggerConfig struct {
	Active   bool             `yaml:"active"`
	Level    string           `yaml:"level"`
	Encoding string           `yaml:"encoding"`
	Mode     string           `yaml:"mode"`
	File     FileLoggerConfig `yaml:"file"`
}

// FabricFileConfig points at the YAML topology file (internal/fabricfile)
// describing the matrices, sources and groups to build at startup.
type FabricFileConfig struct {
	Path string `yaml:"path"`
}

// DaemonConfig holds the identity and bind/advertise settings for a
// fabricd process.
type DaemonConfig struct {
	Name string `yaml:"name"`
	Bind string `yaml:"bind"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Config struct {
	Logger    LoggerConfig     `yaml:"logger"`
	Fabric    FabricFileConfig `yaml:"fabric"`
	Daemon    DaemonConfig     `yaml:"daemon"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`
}

// LoadConfig loads the configuration from a YAML file at the given path.
//
// This function performs only syntactic parsing of the YAML file. To
// validate the configuration structure, call cfg.ValidateConfig() after
// loading.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Supported overrides:
//
//	DAEMON_NAME          -> cfg.Daemon.Name
//	DAEMON_BIND          -> cfg.Daemon.Bind
//	DAEMON_HOST          -> cfg.Daemon.Host
//	DAEMON_PORT          -> cfg.Daemon.Port
//	FABRIC_FILE          -> cfg.Fabric.Path
//	TRACE_ENABLED        -> cfg.Telemetry.Tracing.Enabled
//	TRACE_EXPORTER       -> cfg.Telemetry.Tracing.Exporter
//	TRACE_ENDPOINT       -> cfg.Telemetry.Tracing.Endpoint
//	LOGGER_ENABLED       -> cfg.Logger.Active
//	LOGGER_LEVEL         -> cfg.Logger.Level
//	LOGGER_ENCODING      -> cfg.Logger.Encoding
//	LOGGER_MODE          -> cfg.Logger.Mode
//	LOGGER_FILE_PATH     -> cfg.Logger.File.Path
func (cfg *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DAEMON_NAME"); v != "" {
		cfg.Daemon.Name = v
	}
	if v := os.Getenv("DAEMON_BIND"); v != "" {
		cfg.Daemon.Bind = v
	} else if cfg.Daemon.Bind == "" {
		cfg.Daemon.Bind = "0.0.0.0"
	}
	if v := os.Getenv("DAEMON_HOST"); v != "" {
		cfg.Daemon.Host = v
	}
	if v := os.Getenv("DAEMON_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Daemon.Port = port
		}
	}
	if v := os.Getenv("FABRIC_FILE"); v != "" {
		cfg.Fabric.Path = v
	}
	if v := os.Getenv("TRACE_ENABLED"); v != "" {
		v = strings.ToLower(v)
		cfg.Telemetry.Tracing.Enabled = v == "true" || v == "1" || v == "yes"
	}
	if v := os.Getenv("TRACE_EXPORTER"); v != "" {
		cfg.Telemetry.Tracing.Exporter = v
	}
	if v := os.Getenv("TRACE_ENDPOINT"); v != "" {
		cfg.Telemetry.Tracing.Endpoint = v
	}
	if v := os.Getenv("LOGGER_ENABLED"); v != "" {
		v = strings.ToLower(v)
		cfg.Logger.Active = v == "true" || v == "1" || v == "yes"
	}
	if v := os.Getenv("LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("LOGGER_ENCODING"); v != "" {
		cfg.Logger.Encoding = v
	}
	if v := os.Getenv("LOGGER_MODE"); v != "" {
		cfg.Logger.Mode = v
	}
	if v := os.Getenv("LOGGER_FILE_PATH"); v != "" {
		cfg.Logger.File.Path = v
	}
}

// ValidateConfig performs structural validation of the loaded
// configuration: required fields are present and values are within valid
// ranges. It does not validate the fabric topology file itself — that is
// internal/fabricfile's job, since it requires parsing the file.
func (cfg *Config) ValidateConfig() error {
	var errs []string

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.level: %s", cfg.Logger.Level))
	}
	switch cfg.Logger.Encoding {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.encoding: %s", cfg.Logger.Encoding))
	}
	switch cfg.Logger.Mode {
	case "stdout":
	case "file":
		if cfg.Logger.File.Path == "" {
			errs = append(errs, "logger.file.path is required when mode=file")
		}
		if cfg.Logger.File.MaxSize < 0 || cfg.Logger.File.MaxBackups < 0 || cfg.Logger.File.MaxAge < 0 {
			errs = append(errs, "logger.file.* values must be non-negative")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.mode: %s", cfg.Logger.Mode))
	}

	if cfg.Fabric.Path == "" {
		errs = append(errs, "fabric.path is required")
	}

	if cfg.Daemon.Name == "" {
		errs = append(errs, "daemon.name is required")
	}
	if cfg.Daemon.Port < 0 || cfg.Daemon.Port > 65535 {
		errs = append(errs, fmt.Sprintf("daemon.port must be in [0,65535], got %d", cfg.Daemon.Port))
	}

	if cfg.Telemetry.Tracing.Enabled {
		switch cfg.Telemetry.Tracing.Exporter {
		case "stdout", "otlp":
		default:
			errs = append(errs, fmt.Sprintf("invalid telemetry.tracing.exporter: %s", cfg.Telemetry.Tracing.Exporter))
		}
		if cfg.Telemetry.Tracing.Exporter == "otlp" && cfg.Telemetry.Tracing.Endpoint == "" {
			errs = append(errs, "telemetry.tracing.endpoint is required for the otlp exporter")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LogConfig prints the loaded configuration at DEBUG level. Useful for
// debugging startup issues and verifying the configuration was parsed as
// expected.
func (cfg *Config) LogConfig(lgr logger.Logger) {
	lgr.Debug("loaded configuration",
		logger.F("logger.active", cfg.Logger.Active),
		logger.F("logger.level", cfg.Logger.Level),
		logger.F("logger.encoding", cfg.Logger.Encoding),
		logger.F("logger.mode", cfg.Logger.Mode),
		logger.F("logger.file.path", cfg.Logger.File.Path),
		logger.F("logger.file.maxSizeMB", cfg.Logger.File.MaxSize),
		logger.F("logger.file.maxBackups", cfg.Logger.File.MaxBackups),
		logger.F("logger.file.maxAgeDays", cfg.Logger.File.MaxAge),
		logger.F("logger.file.compress", cfg.Logger.File.Compress),

		logger.F("fabric.path", cfg.Fabric.Path),

		logger.F("daemon.name", cfg.Daemon.Name),
		logger.F("daemon.bind", cfg.Daemon.Bind),
		logger.F("daemon.host", cfg.Daemon.Host),
		logger.F("daemon.port", cfg.Daemon.Port),

		logger.F("telemetry.tracing.enabled", cfg.Telemetry.Tracing.Enabled),
		logger.F("telemetry.tracing.exporter", cfg.Telemetry.Tracing.Exporter),
		logger.F("telemetry.tracing.endpoint", cfg.Telemetry.Tracing.Endpoint),
	)
}
