// Package config centralises configuration parsing for the registry service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config captures runtime configuration values for the registry service.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Static   StaticConfig   `mapstructure:"static"`
	Registry RegistryConfig `mapstructure:"registry"`
	Log      LogConfig      `mapstructure:"log"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// HTTPConfig controls the listener and server timeouts.
type HTTPConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
}

// StaticConfig locates the front-end bundle.
type StaticConfig struct {
	Dir string `mapstructure:"dir"`
}

// RegistryConfig controls how the activity registry is seeded and enforced.
type RegistryConfig struct {
	SeedFile        string `mapstructure:"seed_file"`
	EnforceCapacity bool   `mapstructure:"enforce_capacity"`
}

// LogConfig selects logger level and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NotifyConfig configures roster change sinks. Empty values disable a sink.
type NotifyConfig struct {
	KafkaBrokers string        `mapstructure:"kafka_brokers"`
	KafkaTopic   string        `mapstructure:"kafka_topic"`
	WebhookURL   string        `mapstructure:"webhook_url"`
	WebhookToken string        `mapstructure:"webhook_token"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// Brokers returns the configured Kafka brokers.
func (n NotifyConfig) Brokers() []string {
	return splitAndTrim(n.KafkaBrokers)
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// envBindings maps configuration keys to the environment variables that override them.
var envBindings = map[string]string{
	"http.address":              "HTTP_ADDRESS",
	"http.read_timeout":         "HTTP_READ_TIMEOUT",
	"http.write_timeout":        "HTTP_WRITE_TIMEOUT",
	"http.idle_timeout":         "HTTP_IDLE_TIMEOUT",
	"http.shutdown_timeout":     "HTTP_SHUTDOWN_TIMEOUT",
	"http.cors_origin":          "HTTP_CORS_ORIGIN",
	"static.dir":                "STATIC_DIR",
	"registry.seed_file":        "REGISTRY_SEED_FILE",
	"registry.enforce_capacity": "REGISTRY_ENFORCE_CAPACITY",
	"log.level":                 "LOG_LEVEL",
	"log.format":                "LOG_FORMAT",
	"notify.kafka_brokers":      "KAFKA_BROKERS",
	"notify.kafka_topic":        "KAFKA_TOPIC",
	"notify.webhook_url":        "ROSTER_WEBHOOK_URL",
	"notify.webhook_token":      "ROSTER_WEBHOOK_TOKEN",
	"notify.timeout":            "NOTIFY_TIMEOUT",
	"metrics.enabled":           "METRICS_ENABLED",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("http.cors_origin", "http://localhost:5173")
	v.SetDefault("static.dir", "./static")
	v.SetDefault("registry.seed_file", "")
	v.SetDefault("registry.enforce_capacity", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("notify.kafka_brokers", "")
	v.SetDefault("notify.kafka_topic", "activity_roster_events")
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.webhook_token", "")
	v.SetDefault("notify.timeout", 5*time.Second)
	v.SetDefault("metrics.enabled", true)
}

// Load reads an optional .env file, an optional YAML file at path and the
// environment, in increasing order of precedence, applying defaults for local dev.
func Load(path string) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTP.Address) == "" {
		errs = append(errs, errors.New("http.address is required"))
	}
	for name, d := range map[string]time.Duration{
		"http.read_timeout":     c.HTTP.ReadTimeout,
		"http.write_timeout":    c.HTTP.WriteTimeout,
		"http.idle_timeout":     c.HTTP.IdleTimeout,
		"http.shutdown_timeout": c.HTTP.ShutdownTimeout,
		"notify.timeout":        c.Notify.Timeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0", name))
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if len(c.Notify.Brokers()) > 0 && strings.TrimSpace(c.Notify.KafkaTopic) == "" {
		errs = append(errs, errors.New("notify.kafka_topic is required when kafka brokers are set"))
	}
	return errors.Join(errs...)
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
