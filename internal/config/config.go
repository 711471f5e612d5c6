package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is everything the app reads from config.toml. Credentials come
// from the environment (optionally a .env next to the config file) and are
// deliberately kept out of the file.
type Config struct {
	API     APIConfig     `toml:"api"`
	Cache   CacheConfig   `toml:"cache"`
	Logging LoggingConfig `toml:"logging"`
	Debug   bool          `toml:"debug"`
}

type APIConfig struct {
	Endpoint       string `toml:"endpoint"`
	AuthPath       string `toml:"auth_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type CacheConfig struct {
	Enabled      bool `toml:"enabled"`
	MaxSizeMB    int  `toml:"max_size_mb"`
	CoverMaxEdge int  `toml:"cover_max_edge"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Credentials are read from the environment, never from config.toml.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

func Default() *Config {
	return &Config{
		API: APIConfig{
			Endpoint:       "https://music.alexmbugua.me/api",
			AuthPath:       "/auth",
			TimeoutSeconds: 30,
		},
		Cache: CacheConfig{
			Enabled:      true,
			MaxSizeMB:    512,
			CoverMaxEdge: 600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads config.toml, creating it with defaults on first run.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Save(configPath string) error {
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.API.Endpoint == "" {
		return fmt.Errorf("api endpoint cannot be empty")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// LoadCredentials reads client credentials from the environment, loading
// envFile first when it exists.
func LoadCredentials(envFile string) (Credentials, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Credentials{}, fmt.Errorf("load env file: %w", err)
			}
		}
	}

	creds := Credentials{
		ClientID:     os.Getenv("KASETI_CLIENT_ID"),
		ClientSecret: os.Getenv("KASETI_CLIENT_SECRET"),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return Credentials{}, fmt.Errorf("KASETI_CLIENT_ID and KASETI_CLIENT_SECRET must be set")
	}

	return creds, nil
}
