package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/safetrade/site/internal/errors"
	"github.com/safetrade/site/internal/inbox"
)

const (
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "site.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "SAFETRADE_"

	// DefaultPort is the default HTTP port.
	DefaultPort = 8080

	// DefaultHost is the default bind address.
	DefaultHost = "localhost"
)

// Config is the complete site configuration.
type Config struct {
	// Dev enables development behaviour: text logs at debug level,
	// unfingerprinted asset URLs.
	Dev bool `json:"dev,omitempty" env:"DEV"`

	Server    ServerConfig    `json:"server" envPrefix:"SERVER_"`
	Site      SiteConfig      `json:"site" envPrefix:"SITE_"`
	Contact   ContactConfig   `json:"contact" envPrefix:"CONTACT_"`
	RateLimit RateLimitConfig `json:"rateLimit" envPrefix:"RATE_LIMIT_"`
	Metrics   MetricsConfig   `json:"metrics" envPrefix:"METRICS_"`
	Tracing   TracingConfig   `json:"tracing" envPrefix:"TRACING_"`
	Log       LogConfig       `json:"log" envPrefix:"LOG_"`

	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string   `json:"host,omitempty" env:"HOST"`
	Port            int      `json:"port,omitempty" env:"PORT"`
	ReadTimeout     Duration `json:"readTimeout,omitempty" env:"READ_TIMEOUT"`
	WriteTimeout    Duration `json:"writeTimeout,omitempty" env:"WRITE_TIMEOUT"`
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty" env:"SHUTDOWN_TIMEOUT"`

	// PingInterval is how often live connections are pinged.
	PingInterval Duration `json:"pingInterval,omitempty" env:"PING_INTERVAL"`
}

// SiteConfig contains content settings.
type SiteConfig struct {
	// DefaultLocale is served when negotiation finds no better match.
	DefaultLocale string `json:"defaultLocale,omitempty" env:"DEFAULT_LOCALE"`
}

// ContactConfig contains contact form settings.
type ContactConfig struct {
	// Backend is one of simulated, memory or s3.
	Backend string `json:"backend,omitempty" env:"BACKEND"`

	// SubmitDelay is the latency of the simulated backend.
	SubmitDelay Duration `json:"submitDelay,omitempty" env:"SUBMIT_DELAY"`

	// SuccessDisplay is how long the confirmation stays up.
	SuccessDisplay Duration `json:"successDisplay,omitempty" env:"SUCCESS_DISPLAY"`

	S3 S3Config `json:"s3" envPrefix:"S3_"`
}

// S3Config contains the S3 inbox settings.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty" env:"BUCKET"`
	Prefix   string `json:"prefix,omitempty" env:"PREFIX"`
	Region   string `json:"region,omitempty" env:"REGION"`
	Endpoint string `json:"endpoint,omitempty" env:"ENDPOINT"`
}

// RateLimitConfig bounds contact submissions per client IP.
type RateLimitConfig struct {
	RPS   float64 `json:"rps,omitempty" env:"RPS"`
	Burst int     `json:"burst,omitempty" env:"BURST"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Disabled  bool   `json:"disabled,omitempty" env:"DISABLED"`
	Namespace string `json:"namespace,omitempty" env:"NAMESPACE"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	TracerName string `json:"tracerName,omitempty" env:"TRACER_NAME"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" env:"LEVEL"`

	// Format is text or json.
	Format string `json:"format,omitempty" env:"FORMAT"`
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path, or returns defaults when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		return New(), nil
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("S001").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("S001").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("S002").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides fields from SAFETRADE_* variables. A nil environ reads
// the process environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.New("S003").Wrap(err)
	}
	c.applyDefaults()
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(15 * time.Second)
	}
	if c.Server.PingInterval == 0 {
		c.Server.PingInterval = Duration(30 * time.Second)
	}

	if c.Site.DefaultLocale == "" {
		c.Site.DefaultLocale = "en-US"
	}

	if c.Contact.Backend == "" {
		c.Contact.Backend = inbox.BackendSimulated
	}
	if c.Contact.SubmitDelay == 0 {
		c.Contact.SubmitDelay = Duration(1500 * time.Millisecond)
	}
	if c.Contact.SuccessDisplay == 0 {
		c.Contact.SuccessDisplay = Duration(5000 * time.Millisecond)
	}

	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 0.1
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "safetrade"
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "safetrade"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
		if c.Dev {
			c.Log.Level = "debug"
		}
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
		if c.Dev {
			c.Log.Format = "text"
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New("S002").WithDetailf(format, args...)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Contact.Backend {
	case inbox.BackendSimulated, inbox.BackendMemory:
	case inbox.BackendS3:
		if c.Contact.S3.Bucket == "" {
			return invalid("contact.s3.bucket is required for the s3 backend")
		}
	default:
		return invalid("contact.backend %q is not one of simulated, memory, s3", c.Contact.Backend)
	}
	if c.Contact.SubmitDelay < 0 || c.Contact.SuccessDisplay < 0 {
		return invalid("contact durations must not be negative")
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 1 {
		return invalid("rateLimit.rps must be >= 0 and rateLimit.burst >= 1")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return invalid("%v", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Inbox returns the submission backend settings.
func (c *Config) Inbox() inbox.Config {
	return inbox.Config{
		Backend:     c.Contact.Backend,
		SubmitDelay: c.Contact.SubmitDelay.Std(),
		S3: inbox.S3Config{
			Bucket:   c.Contact.S3.Bucket,
			Prefix:   c.Contact.S3.Prefix,
			Region:   c.Contact.S3.Region,
			Endpoint: c.Contact.S3.Endpoint,
		},
	}
}
