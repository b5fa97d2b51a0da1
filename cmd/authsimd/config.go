package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config for the standalone dev server. Values come from a yaml file
// (optional --config flag) with environment variables taking over.
type Config struct {
	Addr     string `yaml:"addr" env:"AUTHSIM_ADDR" env-default:":8080"`
	BasePath string `yaml:"base_path" env:"AUTHSIM_BASE_PATH" env-default:""`

	// Store selects the directory backend: memory, file, or postgres.
	Store       string `yaml:"store" env:"AUTHSIM_STORE" env-default:"file"`
	StoreFile   string `yaml:"store_file" env:"AUTHSIM_STORE_FILE" env-default:"authsim.json"`
	DatabaseURL string `yaml:"database_url" env:"AUTHSIM_DATABASE_URL"`

	// Latency is slept before every request, modeling the round trip.
	Latency  time.Duration `yaml:"latency" env:"AUTHSIM_LATENCY" env-default:"0s"`
	LogLevel string        `yaml:"log_level" env:"AUTHSIM_LOG_LEVEL" env-default:"info"`
}

func loadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case "memory", "file":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("store %q requires AUTHSIM_DATABASE_URL", c.Store)
		}
	default:
		return fmt.Errorf("unknown store %q (want memory, file, or postgres)", c.Store)
	}
	if c.Store == "file" && c.StoreFile == "" {
		return fmt.Errorf("store %q requires a store_file path", c.Store)
	}
	return nil
}

func mustLoadConfig(path string) *Config {
	cfg, err := loadConfig(path)
	if err == nil {
		err = cfg.validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "authsimd:", err)
		os.Exit(2)
	}
	return cfg
}
