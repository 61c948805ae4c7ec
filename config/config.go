package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Observability ObservabilityConfig `yaml:"observability"`
	Rating        RatingConfig        `yaml:"rating"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	ServiceName     string  `yaml:"service_name"`
	Environment     string  `yaml:"environment"`
	LogLevel        string  `yaml:"log_level"`
	MetricsAddress  string  `yaml:"metrics_address"` // empty disables the ops server
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`   // empty disables tracing
	OTLPInsecure    bool    `yaml:"otlp_insecure"`
	TraceSampleRate float64 `yaml:"trace_sample_rate"`
}

// RatingConfig holds the defaults applied to seasons created without their
// own configuration.
type RatingConfig struct {
	KFactorNew         int                `yaml:"k_factor_new"`
	KFactorRegular     int                `yaml:"k_factor_regular"`
	KFactorExperienced int                `yaml:"k_factor_experienced"`
	PositionFactors    map[string]float64 `yaml:"position_factors"`
}

// SchedulerConfig holds the season-end job queue settings.
type SchedulerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	MaxWorkers   int           `yaml:"max_workers"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// LoadConfig loads the configuration from a YAML file. Environment
// variables override file values; without a file the configuration is read
// from the environment alone.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		cfg.Observability.ServiceName = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		cfg.Observability.OTLPInsecure = v == "true"
	}
	if v := os.Getenv("TRACE_SAMPLE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TRACE_SAMPLE_RATE value: %w", err)
		}
		cfg.Observability.TraceSampleRate = f
	}
	if v := os.Getenv("RATING_K_FACTORS"); v != "" {
		tiers, err := parseKFactors(v)
		if err != nil {
			return fmt.Errorf("invalid RATING_K_FACTORS value: %w", err)
		}
		cfg.Rating.KFactorNew, cfg.Rating.KFactorRegular, cfg.Rating.KFactorExperienced = tiers[0], tiers[1], tiers[2]
	}
	if v := os.Getenv("SCHEDULER_ENABLED"); v != "" {
		cfg.Scheduler.Enabled = v == "true"
	}
	if v := os.Getenv("SCHEDULER_MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCHEDULER_MAX_WORKERS value: %w", err)
		}
		cfg.Scheduler.MaxWorkers = n
	}
	if v := os.Getenv("SCHEDULER_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SCHEDULER_POLL_INTERVAL value: %w", err)
		}
		cfg.Scheduler.PollInterval = d
	}
	return nil
}

// parseKFactors reads "new,regular,experienced".
func parseKFactors(v string) ([3]int, error) {
	var tiers [3]int
	parts := strings.Split(v, ",")
	if len(parts) != len(tiers) {
		return tiers, fmt.Errorf("want 3 comma separated values, got %d", len(parts))
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return tiers, err
		}
		tiers[i] = n
	}
	return tiers, nil
}

func (c *Config) applyDefaults() {
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "inhouse-bot"
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.TraceSampleRate == 0 {
		c.Observability.TraceSampleRate = 0.1
	}
	if c.Rating.KFactorNew == 0 {
		c.Rating.KFactorNew = 32
	}
	if c.Rating.KFactorRegular == 0 {
		c.Rating.KFactorRegular = 24
	}
	if c.Rating.KFactorExperienced == 0 {
		c.Rating.KFactorExperienced = 16
	}
	if c.Scheduler.MaxWorkers == 0 {
		c.Scheduler.MaxWorkers = 2
	}
	if c.Scheduler.PollInterval == 0 {
		c.Scheduler.PollInterval = 5 * time.Second
	}
}
