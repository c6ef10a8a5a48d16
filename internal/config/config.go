package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type ProjectConfig struct {
	Project   string         `yaml:"project"`
	Version   int            `yaml:"version"`
	Database  DatabaseConfig `yaml:"database"`
	Server    ServerConfig   `yaml:"server"`
	Puzzle    PuzzleConfig   `yaml:"puzzle"`
	Log       LogConfig      `yaml:"log"`
	Corpus    []string       `yaml:"corpus"`
	Standards string         `yaml:"standards"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type PuzzleConfig struct {
	MaxAttempts       int    `yaml:"max_attempts"`
	IndexTTL          string `yaml:"index_ttl"`
	DefaultDifficulty int    `yaml:"default_difficulty"`

	indexTTL time.Duration
}

// TTL is the parsed index_ttl.
func (p PuzzleConfig) TTL() time.Duration { return p.indexTTL }

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no config file exists.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{
		Project:  "charnnections",
		Version:  1,
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: "sqlite://charnnections.db"},
	}
	applyDefaults(cfg)
	if err := validateProjectConfig(cfg); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides file settings with DATABASE_URL, DATABASE_DRIVER, PORT
// and LOG_LEVEL, then re-validates.
func (cfg *ProjectConfig) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("DATABASE_URL")); v != "" {
		cfg.Database.DSN = v
		if driver := driverFromDSN(v); driver != "" {
			cfg.Database.Driver = driver
		}
	}
	if v := strings.TrimSpace(getenv("DATABASE_DRIVER")); v != "" {
		cfg.Database.Driver = v
	}
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		host, _, err := net.SplitHostPort(cfg.Server.Addr)
		if err != nil {
			host = ""
		}
		cfg.Server.Addr = net.JoinHostPort(host, v)
	}
	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if err := validateProjectConfig(cfg); err != nil {
		return fmt.Errorf("applying environment: %w", err)
	}
	return nil
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = driverFromDSN(cfg.Database.DSN)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "0.0.0.0:3001"
	}
	if cfg.Puzzle.MaxAttempts == 0 {
		cfg.Puzzle.MaxAttempts = 50
	}
	if cfg.Puzzle.IndexTTL == "" {
		cfg.Puzzle.IndexTTL = "5m"
	}
	if cfg.Puzzle.DefaultDifficulty == 0 {
		cfg.Puzzle.DefaultDifficulty = 3
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func driverFromDSN(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(dsn, "sqlite://"):
		return DriverSQLite
	}
	return ""
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}

	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
	case "":
		return fmt.Errorf("database driver is required")
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
		return fmt.Errorf("invalid server addr %q: %w", cfg.Server.Addr, err)
	}

	if cfg.Puzzle.MaxAttempts < 1 {
		return fmt.Errorf("puzzle max_attempts must be positive, got %d", cfg.Puzzle.MaxAttempts)
	}
	ttl, err := time.ParseDuration(cfg.Puzzle.IndexTTL)
	if err != nil {
		return fmt.Errorf("invalid puzzle index_ttl %q: %w", cfg.Puzzle.IndexTTL, err)
	}
	if ttl <= 0 {
		return fmt.Errorf("puzzle index_ttl must be positive, got %s", ttl)
	}
	cfg.Puzzle.indexTTL = ttl
	if cfg.Puzzle.DefaultDifficulty < 1 || cfg.Puzzle.DefaultDifficulty > 4 {
		return fmt.Errorf("puzzle default_difficulty must be between 1 and 4, got %d", cfg.Puzzle.DefaultDifficulty)
	}

	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return err
	}

	for i, path := range cfg.Corpus {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("corpus path %d is empty", i)
		}
	}

	return nil
}
