package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// Options selects the optional behaviors of the service. The three original
// deployments of this service were near-duplicate copies differing only in
// these switches; they are unified here behind one configuration.
type Options struct {
	EnableRateLimit bool `yaml:"enableRateLimit"`
	EnableCORS      bool `yaml:"enableCors"`
	EnableCaching   bool `yaml:"enableCaching"`
	EnableCaptions  bool `yaml:"enableCaptions"`
	EnableReset     bool `yaml:"enableReset"`
}

// Config holds server configuration.
type Config struct {
	// Server identity
	Name    string
	Version string

	// Listener
	Address string
	Port    int

	// Storage and public URL
	StorageDir    string
	PublicBaseURL string

	// Feature switches
	Options Options

	// Rate limiting (per client IP)
	RateLimit           rate.Limit // requests per second
	RateLimitBurst      int
	RateLimitMaxClients int
	RateLimitTTL        time.Duration

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewConfig returns a Config with defaults and environment overrides
// applied. Use this when customizing config programmatically.
func NewConfig() *Config {
	return parseConfig()
}

// parseConfig returns sensible defaults
func parseConfig() *Config {
	cfg := &Config{
		Name:          "server",
		Version:       "undefined",
		Address:       "",
		Port:          3000,
		StorageDir:    "storage",
		PublicBaseURL: "http://localhost:3000",
		Options: Options{
			EnableRateLimit: true,
			EnableCORS:      true,
			EnableCaching:   true,
			EnableReset:     true,
		},
		RateLimit:           1, // 1 req/s per client
		RateLimitBurst:      1,
		RateLimitMaxClients: 1024,
		RateLimitTTL:        10 * time.Minute,
		ReadTimeout:         10 * time.Second,
		WriteTimeout:        30 * time.Second,
		IdleTimeout:         120 * time.Second,
		ShutdownTimeout:     30 * time.Second,
	}

	// Override with environment variables if set
	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Port = port
		}
	}

	if addr := os.Getenv("ADDRESS"); addr != "" {
		cfg.Address = addr
	}

	if dir := os.Getenv("STORAGE_DIR"); dir != "" {
		cfg.StorageDir = dir
	}

	if base := os.Getenv("PUBLIC_BASE_URL"); base != "" {
		cfg.PublicBaseURL = base
	}

	if limitStr := os.Getenv("RATE_LIMIT"); limitStr != "" {
		if limit, err := strconv.ParseFloat(limitStr, 64); err == nil && limit > 0 {
			cfg.RateLimit = rate.Limit(limit)
		}
	}

	if burstStr := os.Getenv("RATE_LIMIT_BURST"); burstStr != "" {
		if burst, err := strconv.Atoi(burstStr); err == nil && burst > 0 {
			cfg.RateLimitBurst = burst
		}
	}

	if shutdownStr := os.Getenv("SHUTDOWN_TIMEOUT_SECONDS"); shutdownStr != "" {
		if seconds, err := strconv.Atoi(shutdownStr); err == nil && seconds > 0 {
			cfg.ShutdownTimeout = time.Duration(seconds) * time.Second
		}
	}

	return cfg
}

// LoadOptions reads a YAML options file and applies it to the config.
func (c *Config) LoadOptions(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read options file %q: %w", path, err)
	}

	var opts Options
	if err := yaml.Unmarshal(b, &opts); err != nil {
		return fmt.Errorf("failed to parse options file %q: %w", path, err)
	}

	c.Options = opts
	return nil
}
