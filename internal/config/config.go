package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env    string `yaml:"env"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL        string `yaml:"ttl"`
		SessionTTL string `yaml:"session_ttl"`
		File       string `yaml:"file"`
		DefaultID  string `yaml:"default_id"`
	} `yaml:"quiz"`
	Notify struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		FromName  string `yaml:"from_name"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"notify"`
	Telemetry struct {
		Sink   string `yaml:"sink"` // log, redis, both or none
		Stream string `yaml:"stream"`
		MaxLen int64  `yaml:"max_len"`
	} `yaml:"telemetry"`
}

// Load reads YAML config from path and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadOrDefault behaves like Load but treats a missing file as an empty config.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Config{}
		cfg.applyEnv()
		return cfg, nil
	}
	return cfg, err
}

func (c *Config) applyEnv() {
	if env := os.Getenv("APP_ENV"); env != "" {
		c.Env = env
	}
	if key := os.Getenv("NOTIFY_ACCESS_KEY"); key != "" {
		c.Notify.AccessKey = key
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Postgres.URL = url
	}
	if c.Env == "" {
		c.Env = "local"
	}
}

// Production reports whether the service runs with production logging and quiet delivery logs.
func (c Config) Production() bool {
	return c.Env == "production"
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
