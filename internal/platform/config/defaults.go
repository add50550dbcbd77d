package config

const (
	defaultServerPort = 8080

	defaultRetryMaxAttempts = 3
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1

	defaultSweeperWorkers = 4
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",

		"log.level":  "info",
		"log.format": "json",

		"storage.driver":             "memory",
		"storage.postgres.dsn":       "",
		"storage.postgres.max_conns": 10,

		"notifier.base_url":                        "http://localhost:8081",
		"notifier.timeout":                         "30s",
		"notifier.retry.max_attempts":              defaultRetryMaxAttempts,
		"notifier.retry.initial_interval":          "100ms",
		"notifier.retry.max_interval":              "10s",
		"notifier.retry.multiplier":                defaultRetryMultiplier,
		"notifier.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"notifier.circuit_breaker.timeout":         "30s",
		"notifier.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"notifier.rate_limit.requests_per_second":  0.0,
		"notifier.rate_limit.burst_size":           1,

		"sweeper.enabled":        true,
		"sweeper.interval":       "24h",
		"sweeper.ending_horizon": "72h",
		"sweeper.workers":        defaultSweeperWorkers,

		"telemetry.enabled":  false,
		"telemetry.exporter": "stdout",
		"telemetry.endpoint": "",
	}
}
