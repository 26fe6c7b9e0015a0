// Package config loads the shop server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultProbePort       = 9090
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultAuthMode        = "none"
	DefaultSeedInventory   = false
	DefaultWSPingPeriod    = 54 * time.Second
	DefaultCORSOrigins     = "*"
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvProbePort       = "APP_PROBE_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvAuthMode        = "APP_AUTH_MODE"
	EnvBasicAuthUsers  = "APP_BASIC_AUTH_USERS"
	EnvAPIKeys         = "APP_API_KEYS" //nolint:gosec // env var name, not a credential
	EnvSeedInventory   = "APP_SEED_INVENTORY"
	EnvWSPingPeriod    = "APP_WS_PING_PERIOD"
	EnvCORSOrigins     = "APP_CORS_ORIGINS"
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	ProbePort       int // 0 disables the probe server.
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
	CORSOrigins     []string

	// AuthMode is one of none, basic, apikey, multi.
	AuthMode string
	// BasicAuthUsers has the form "user1:bcrypt_hash,user2:bcrypt_hash".
	BasicAuthUsers string
	// APIKeys has the form "key1:name1,key2:name2".
	APIKeys string

	// Shop settings.
	SeedInventory bool
	WSPingPeriod  time.Duration
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidProbePort       = errors.New("probe port must be between 0 and 65535")
	ErrProbePortConflict      = errors.New("probe port must differ from server port when probe port is not 0")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidWSPingPeriod    = errors.New("websocket ping period must be positive")
	ErrInvalidAuthMode        = errors.New("auth mode must be one of: none, basic, apikey, multi")
	ErrInvalidBasicAuthConfig = errors.New("basic auth users must be set when auth mode is basic")
	ErrInvalidAPIKeyConfig    = errors.New("API keys must be set when auth mode is apikey")
	ErrInvalidMultiAuthConfig = errors.New("basic auth users or API keys must be set when auth mode is multi")
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validAuthModes = map[string]bool{
	"none":   true,
	"basic":  true,
	"apikey": true,
	"multi":  true,
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      DefaultServerPort,
		ProbePort:       DefaultProbePort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		CORSOrigins:     splitList(DefaultCORSOrigins),
		AuthMode:        DefaultAuthMode,
		SeedInventory:   DefaultSeedInventory,
		WSPingPeriod:    DefaultWSPingPeriod,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromEnv() error {
	if err := c.loadServerEnv(); err != nil {
		return err
	}

	c.loadAuthEnv()

	return c.loadShopEnv()
}

func (c *Config) loadServerEnv() error {
	if err := intFromEnv(EnvServerPort, &c.ServerPort); err != nil {
		return err
	}

	if err := intFromEnv(EnvProbePort, &c.ProbePort); err != nil {
		return err
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = strings.ToLower(val)
	}

	if err := durationFromEnv(EnvShutdownTimeout, &c.ShutdownTimeout); err != nil {
		return err
	}

	if err := boolFromEnv(EnvMetricsEnabled, &c.MetricsEnabled); err != nil {
		return err
	}

	if val := os.Getenv(EnvCORSOrigins); val != "" {
		c.CORSOrigins = splitList(val)
	}

	return nil
}

func (c *Config) loadAuthEnv() {
	if val := os.Getenv(EnvAuthMode); val != "" {
		c.AuthMode = strings.ToLower(val)
	}

	if val := os.Getenv(EnvBasicAuthUsers); val != "" {
		c.BasicAuthUsers = val
	}

	if val := os.Getenv(EnvAPIKeys); val != "" {
		c.APIKeys = val
	}
}

func (c *Config) loadShopEnv() error {
	if err := boolFromEnv(EnvSeedInventory, &c.SeedInventory); err != nil {
		return err
	}

	return durationFromEnv(EnvWSPingPeriod, &c.WSPingPeriod)
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if c.WSPingPeriod <= 0 {
		return ErrInvalidWSPingPeriod
	}

	return c.validateAuth()
}

func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	if c.ProbePort < 0 || c.ProbePort > 65535 {
		return ErrInvalidProbePort
	}

	if c.ProbePort != 0 && c.ProbePort == c.ServerPort {
		return ErrProbePortConflict
	}

	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

func (c *Config) validateAuth() error {
	mode := c.AuthMode
	if mode == "" {
		mode = DefaultAuthMode
	}

	if !validAuthModes[mode] {
		return ErrInvalidAuthMode
	}

	switch mode {
	case "basic":
		if c.BasicAuthUsers == "" {
			return ErrInvalidBasicAuthConfig
		}
	case "apikey":
		if c.APIKeys == "" {
			return ErrInvalidAPIKeyConfig
		}
	case "multi":
		if c.BasicAuthUsers == "" && c.APIKeys == "" {
			return ErrInvalidMultiAuthConfig
		}
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// ProbeAddress returns the probe server address in host:port format.
func (c *Config) ProbeAddress() string {
	return fmt.Sprintf(":%d", c.ProbePort)
}

func intFromEnv(name string, dst *int) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	*dst = n

	return nil
}

func boolFromEnv(name string, dst *bool) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	*dst = b

	return nil
}

func durationFromEnv(name string, dst *time.Duration) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	*dst = d

	return nil
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
