package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains all configuration for the fleetd control plane.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	Liveness  LivenessConfig  `koanf:"liveness"`
	Placement PlacementConfig `koanf:"placement"`
	Log       LogConfig       `koanf:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// AdvertiseURL is the control plane address handed to agents at
	// registration, which may differ from the bind address behind a proxy.
	AdvertiseURL string `koanf:"advertise_url"`
}

// DatabaseConfig configures the sqlite-backed store.
type DatabaseConfig struct {
	DSN   string `koanf:"dsn"`
	Debug bool   `koanf:"debug"`
}

// AuthConfig configures node token issuance. The signing key is only ever
// read from the environment so it never lands in a config file.
type AuthConfig struct {
	JWTSecretKey string        `koanf:"-"`
	TokenTTL     time.Duration `koanf:"token_ttl"`
}

// LivenessConfig configures the background sweep that marks silent nodes
// offline.
type LivenessConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
	Timeout  time.Duration `koanf:"timeout"`
}

// PlacementConfig holds the scoring weights of the placement engine.
type PlacementConfig struct {
	WeightMemory float64 `koanf:"weight_memory"`
	WeightDisk   float64 `koanf:"weight_disk"`
	WeightGPU    float64 `koanf:"weight_gpu"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `koanf:"level"`
}

// jwtSecretEnv is the environment variable carrying the token signing key.
const jwtSecretEnv = "FLEETD_JWT_SECRET"

// Load loads configuration from the given YAML file, applies defaults, and
// pulls the JWT secret from the environment.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Defaults are seeded first; unmarshal only overrides keys the file sets.
	var cfg Config
	cfg.applyDefaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Auth.JWTSecretKey = os.Getenv(jwtSecretEnv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with all defaults applied and the JWT
// secret read from the environment. Used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Auth.JWTSecretKey = os.Getenv(jwtSecretEnv)
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = "0.0.0.0:8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.AdvertiseURL == "" {
		c.Server.AdvertiseURL = "http://localhost:8080"
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "file:./fleetd.db"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	c.Liveness.Enabled = true
	if c.Liveness.Interval == 0 {
		c.Liveness.Interval = 30 * time.Second
	}
	if c.Liveness.Timeout == 0 {
		c.Liveness.Timeout = 5 * time.Minute
	}
	if c.Placement.WeightMemory == 0 {
		c.Placement.WeightMemory = 1.0
	}
	if c.Placement.WeightDisk == 0 {
		c.Placement.WeightDisk = 0.5
	}
	if c.Placement.WeightGPU == 0 {
		c.Placement.WeightGPU = 2.0
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	if c.Auth.JWTSecretKey == "" {
		return fmt.Errorf("%s environment variable is required", jwtSecretEnv)
	}

	if len(c.Auth.JWTSecretKey) < 32 {
		return fmt.Errorf("%s must be at least 32 characters long", jwtSecretEnv)
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}

	if c.Liveness.Enabled {
		if c.Liveness.Interval <= 0 {
			return fmt.Errorf("liveness.interval must be positive when liveness sweep is enabled")
		}
		if c.Liveness.Timeout <= 0 {
			return fmt.Errorf("liveness.timeout must be positive when liveness sweep is enabled")
		}
	}

	if c.Placement.WeightMemory < 0 || c.Placement.WeightDisk < 0 || c.Placement.WeightGPU < 0 {
		return fmt.Errorf("placement weights must not be negative")
	}

	return nil
}
