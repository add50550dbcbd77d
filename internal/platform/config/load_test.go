package config_test

import (
	"testing"
	"time"

	"github.com/teamsuite/workflow-core/internal/platform/config"
)

func TestLoad_LocalProfile(t *testing.T) {
	t.Chdir("../../..")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load(\"local\") error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want \"debug\"", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want \"text\"", cfg.Log.Format)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver = %q, want \"memory\" for local", cfg.Storage.Driver)
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = true, want false for local")
	}
}

func TestLoad_ProdProfile(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("APP_STORAGE_POSTGRES_DSN", "postgres://workflow:secret@db:5432/workflow")

	cfg, err := config.Load("prod")
	if err != nil {
		t.Fatalf("Load(\"prod\") error: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want \"info\"", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want \"json\"", cfg.Log.Format)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Errorf("Storage.Driver = %q, want \"postgres\" for prod", cfg.Storage.Driver)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = false, want true for prod")
	}
	if cfg.Telemetry.Exporter != "otlp" {
		t.Errorf("Telemetry.Exporter = %q, want \"otlp\"", cfg.Telemetry.Exporter)
	}
	if cfg.Telemetry.Endpoint == "" {
		t.Error("Telemetry.Endpoint is empty, want non-empty for prod")
	}
}

func TestLoad_ProdWithoutDSNFails(t *testing.T) {
	t.Chdir("../../..")

	if _, err := config.Load("prod"); err == nil {
		t.Fatal("Load(\"prod\") without a DSN returned nil error, want validation error")
	}
}

func TestLoad_BaseConfigInheritance(t *testing.T) {
	t.Chdir("../../..")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load(\"local\") error: %v", err)
	}

	// These come from base.yaml, not overridden by local.yaml.
	if cfg.Notifier.Retry.MaxAttempts != 3 {
		t.Errorf("Notifier.Retry.MaxAttempts = %d, want 3 (from base)", cfg.Notifier.Retry.MaxAttempts)
	}
	if cfg.Notifier.CircuitBreaker.MaxFailures != 5 {
		t.Errorf("Notifier.CircuitBreaker.MaxFailures = %d, want 5 (from base)",
			cfg.Notifier.CircuitBreaker.MaxFailures)
	}
	if cfg.Sweeper.EndingHorizon != 72*time.Hour {
		t.Errorf("Sweeper.EndingHorizon = %v, want 72h (from base)", cfg.Sweeper.EndingHorizon)
	}

	// local.yaml overrides single nested keys without clobbering siblings.
	if cfg.Sweeper.Interval != time.Minute {
		t.Errorf("Sweeper.Interval = %v, want 1m (from local)", cfg.Sweeper.Interval)
	}
	if cfg.Notifier.BaseURL != "http://localhost:8081" {
		t.Errorf("Notifier.BaseURL = %q, want localhost override", cfg.Notifier.BaseURL)
	}
}

func TestLoad_EnvOverrideSimpleKey(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("APP_SERVER_PORT", "9090")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090 (env override)", cfg.Server.Port)
	}
}

func TestLoad_EnvOverrideSnakeCaseKey(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("APP_SERVER_READ_TIMEOUT", "15s")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := 15 * time.Second
	if cfg.Server.ReadTimeout != want {
		t.Errorf("Server.ReadTimeout = %v, want %v (env override)", cfg.Server.ReadTimeout, want)
	}
}

func TestLoad_EnvOverrideDeeplyNestedKey(t *testing.T) {
	t.Chdir("../../..")
	t.Setenv("APP_NOTIFIER_RETRY_MAX_ATTEMPTS", "7")

	cfg, err := config.Load("local")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Notifier.Retry.MaxAttempts != 7 {
		t.Errorf("Notifier.Retry.MaxAttempts = %d, want 7 (env override)", cfg.Notifier.Retry.MaxAttempts)
	}
}

func TestLoad_MissingProfile(t *testing.T) {
	t.Chdir("../../..")

	_, err := config.Load("nonexistent")
	if err == nil {
		t.Fatal("Load(\"nonexistent\") returned nil error, want error")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Server.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() returned nil, want error for port=0")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Log.Level = "verbose"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() returned nil, want error for invalid log level")
	}
}

func TestValidate_UnknownStorageDriver(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Storage.Driver = "sqlite"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() returned nil, want error for unknown storage driver")
	}
}

func TestValidate_SweeperDisabledSkipsChecks(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Sweeper = config.SweeperConfig{Enabled: false}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil when sweeper is disabled", err)
	}
}

func TestValidate_OtlpWithoutEndpoint(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Exporter = "otlp"
	cfg.Telemetry.Endpoint = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() returned nil, want error for otlp without endpoint")
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	cfg := validBaseConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error for valid config: %v", err)
	}
}

// validBaseConfig returns a Config with all fields set to valid values.
func validBaseConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: config.StorageConfig{
			Driver: "memory",
		},
		Notifier: config.ClientConfig{
			BaseURL: "http://localhost:8081",
			Timeout: 30 * time.Second,
			Retry: config.RetryConfig{
				MaxAttempts:     3,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     10 * time.Second,
				Multiplier:      2.0,
			},
			CircuitBreaker: config.CircuitBreakerConfig{
				MaxFailures:   5,
				Timeout:       30 * time.Second,
				HalfOpenLimit: 1,
			},
		},
		Sweeper: config.SweeperConfig{
			Enabled:       true,
			Interval:      24 * time.Hour,
			EndingHorizon: 72 * time.Hour,
			Workers:       4,
		},
		Telemetry: config.TelemetryConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
	}
}
