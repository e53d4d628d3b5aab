// internal/config/config.go
//
// Server configuration.
//
// Sources, later ones win:
//  1. Built-in defaults.
//  2. An optional YAML file: CONFIG_FILE, or ./config.yaml when present.
//  3. Environment variables (a .env file is loaded first when present).

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "config.yaml"

// Config holds every setting the server reads at startup.
type Config struct {
	Port         string        `yaml:"port"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"` // json | console
	ClientOrigin string        `yaml:"client_origin"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TicketTTL    time.Duration `yaml:"ticket_ttl"`
	Rules        string        `yaml:"rules"`       // classic | hardcore
	SecretSeed   uint64        `yaml:"secret_seed"` // 0 = crypto/rand

	Leaderboard struct {
		Backend string `yaml:"backend"` // memory | csv | sqlite | postgres
		Path    string `yaml:"path"`
		DSN     string `yaml:"dsn"`
	} `yaml:"leaderboard"`

	NATS struct {
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.Port = "5175"
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.ClientOrigin = "http://localhost:5173"
	c.JWTSecret = "dev_secret_change_me"
	c.TicketTTL = 24 * time.Hour
	c.Rules = "classic"
	c.Leaderboard.Backend = "sqlite"
	c.Leaderboard.Path = "./data/leaderboard.db"
	c.NATS.SubjectPrefix = "numguess"
	return c
}

// Load reads .env, the YAML file and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	c := Default()
	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if err := c.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return c, err
		}
	}
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.ClientOrigin = getEnv("CLIENT_ORIGIN", c.ClientOrigin)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.Rules = getEnv("RULES", c.Rules)
	c.Leaderboard.Backend = getEnv("LEADERBOARD_BACKEND", c.Leaderboard.Backend)
	c.Leaderboard.Path = getEnv("LEADERBOARD_PATH", c.Leaderboard.Path)
	c.Leaderboard.DSN = getEnv("LEADERBOARD_DSN", c.Leaderboard.DSN)
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.NATS.SubjectPrefix = getEnv("NATS_SUBJECT_PREFIX", c.NATS.SubjectPrefix)

	if v := os.Getenv("TICKET_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TICKET_TTL: %w", err)
		}
		c.TicketTTL = d
	}
	if v := os.Getenv("SECRET_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SECRET_SEED: %w", err)
		}
		c.SecretSeed = n
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: port is required")
	}
	if c.TicketTTL <= 0 {
		return errors.New("config: ticket_ttl must be positive")
	}
	if c.JWTSecret == "" {
		return errors.New("config: jwt_secret is required")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	return nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
