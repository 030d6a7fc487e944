package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Logger: LoggerConfig{Level: "info", Encoding: "console", Mode: "stdout"},
		Fabric: FabricFileConfig{Path: "/etc/fabricmux/fabric.yaml"},
		Daemon: DaemonConfig{Name: "fabricd-1", Port: 9090},
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.ValidateConfig(); err != nil {
		t.Fatalf("ValidateConfig() = %v, want nil", err)
	}
}

func TestValidateConfig_RejectsBadLoggerLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("expected an error for an invalid logger.level")
	}
}

func TestValidateConfig_RequiresFilePathInFileMode(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Mode = "file"
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("expected an error when logger.mode=file has no path")
	}
}

func TestValidateConfig_RequiresFabricPath(t *testing.T) {
	cfg := validConfig()
	cfg.Fabric.Path = ""
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("expected an error for a missing fabric.path")
	}
}

func TestValidateConfig_RejectsOutOfRangePort(t *testing.T) {
	cfg := validConfig()
	cfg.Daemon.Port = 70000
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("expected an error for an out-of-range daemon.port")
	}
}

func TestValidateConfig_OtlpExporterRequiresEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Tracing.Enabled = true
	cfg.Telemetry.Tracing.Exporter = "otlp"
	if err := cfg.ValidateConfig(); err == nil {
		t.Fatal("expected an error for an otlp exporter with no endpoint")
	}
	cfg.Telemetry.Tracing.Endpoint = "localhost:4317"
	if err := cfg.ValidateConfig(); err != nil {
		t.Fatalf("ValidateConfig() = %v, want nil once endpoint is set", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DAEMON_NAME", "fabricd-2")
	t.Setenv("DAEMON_PORT", "9191")
	t.Setenv("FABRIC_FILE", "/tmp/fabric.yaml")
	t.Setenv("LOGGER_LEVEL", "debug")

	cfg := &Config{}
	cfg.ApplyEnvOverrides()

	if cfg.Daemon.Name != "fabricd-2" {
		t.Errorf("Daemon.Name = %q, want fabricd-2", cfg.Daemon.Name)
	}
	if cfg.Daemon.Port != 9191 {
		t.Errorf("Daemon.Port = %d, want 9191", cfg.Daemon.Port)
	}
	if cfg.Fabric.Path != "/tmp/fabric.yaml" {
		t.Errorf("Fabric.Path = %q, want /tmp/fabric.yaml", cfg.Fabric.Path)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want debug", cfg.Logger.Level)
	}
	if cfg.Daemon.Bind != "0.0.0.0" {
		t.Errorf("Daemon.Bind = %q, want default 0.0.0.0", cfg.Daemon.Bind)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fabricd.yaml")
	yaml := `
logger:
  level: info
  encoding: console
  mode: stdout
fabric:
  path: /etc/fabricmux/fabric.yaml
daemon:
  name: fabricd-1
  port: 9090
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Daemon.Name != "fabricd-1" || cfg.Daemon.Port != 9090 {
		t.Fatalf("LoadConfig() = %+v, unexpected daemon fields", cfg.Daemon)
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Fatalf("ValidateConfig() after load = %v", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/fabricd.yaml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
