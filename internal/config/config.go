package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Environment    string
	ServiceName    string
	ServiceVersion string

	HTTPAddr    string
	DatabaseDSN string

	// FastSpringPrivateKey is the shared secret used to authenticate
	// inbound webhook notifications. An empty value disables ingestion.
	FastSpringPrivateKey string

	// UpgradeURL is returned to trial-lapsed tenants alongside the 402.
	UpgradeURL string

	TrialDays       int
	BillingCycleDay int

	Worker  WorkerConfig
	Tracing TracingConfig

	Bootstrap BootstrapConfig
}

// WorkerConfig controls the webhook dispatch pool and reconciliation sweep.
type WorkerConfig struct {
	QueueSize      int
	Workers        int
	HandlerTimeout time.Duration
	SweepInterval  time.Duration
	SweepBatchSize int
	// SweepGrace is how long a logged event may stay unprocessed before the
	// sweep retries it; it keeps the sweep from racing the in-process dispatch.
	SweepGrace  time.Duration
	MaxAttempts int
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// BootstrapConfig controls startup seeding for non-cloud deployments.
type BootstrapConfig struct {
	EnsureDefaultAdmin bool
	EnsureDemoTenant   bool
}

func Load() Config {
	return Config{
		Environment:          getEnv("ENVIRONMENT", "development"),
		ServiceName:          getEnv("SERVICE_NAME", "modulyn-billing"),
		ServiceVersion:       getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseDSN:          getEnv("DATABASE_DSN", "file:modulyn.db?_fk=1"),
		FastSpringPrivateKey: os.Getenv("FASTSPRING_PRIVATE_KEY"),
		UpgradeURL:           getEnv("UPGRADE_URL", "https://app.modulyn.com/settings/billing/upgrade"),
		TrialDays:            getEnvInt("TRIAL_DAYS", 14),
		BillingCycleDay:      getEnvInt("BILLING_CYCLE_DAYS", 30),
		Worker: WorkerConfig{
			QueueSize:      getEnvInt("WEBHOOK_QUEUE_SIZE", 256),
			Workers:        getEnvInt("WEBHOOK_WORKERS", 2),
			HandlerTimeout: getEnvDuration("WEBHOOK_HANDLER_TIMEOUT", 5*time.Second),
			SweepInterval:  getEnvDuration("WEBHOOK_SWEEP_INTERVAL", 30*time.Second),
			SweepBatchSize: getEnvInt("WEBHOOK_SWEEP_BATCH_SIZE", 50),
			SweepGrace:     getEnvDuration("WEBHOOK_SWEEP_GRACE", time.Minute),
			MaxAttempts:    getEnvInt("WEBHOOK_MAX_ATTEMPTS", 5),
		},
		Tracing: TracingConfig{
			Enabled:          getEnvBool("TRACING_ENABLED", false),
			ExporterEndpoint: os.Getenv("OTLP_ENDPOINT"),
			ExporterProtocol: getEnv("OTLP_PROTOCOL", "grpc"),
			SamplingRatio:    getEnvFloat("TRACING_SAMPLING_RATIO", 0.1),
		},
		Bootstrap: BootstrapConfig{
			EnsureDefaultAdmin: getEnvBool("BOOTSTRAP_DEFAULT_ADMIN", true),
			EnsureDemoTenant:   getEnvBool("BOOTSTRAP_DEMO_TENANT", false),
		},
	}
}

// IsProduction reports whether the service runs in the production environment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
