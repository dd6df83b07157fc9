// Package config loads the host configuration from an optional YAML file
// with environment-variable overrides. The backend base URL and feed
// address are opaque here; the core never inspects them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the host configuration.
type Config struct {
	BackendBaseURL string        `yaml:"backend_base_url"`
	FeedAddr       string        `yaml:"feed_addr"`
	ListenAddr     string        `yaml:"listen_addr"`
	MenuTopic      string        `yaml:"menu_topic"`
	OrdersTopic    string        `yaml:"orders_topic"`
	FlowPreset     string        `yaml:"flow_preset"`
	HighlightTTL   time.Duration `yaml:"highlight_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// UnmarshalYAML merges the file values over whatever the receiver already
// holds, so unset keys keep their defaults. Durations are written in Go
// syntax ("6s", "1m30s"), which yaml.v3 does not decode natively.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		BackendBaseURL string `yaml:"backend_base_url"`
		FeedAddr       string `yaml:"feed_addr"`
		ListenAddr     string `yaml:"listen_addr"`
		MenuTopic      string `yaml:"menu_topic"`
		OrdersTopic    string `yaml:"orders_topic"`
		FlowPreset     string `yaml:"flow_preset"`
		HighlightTTL   string `yaml:"highlight_ttl"`
		RequestTimeout string `yaml:"request_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	setString(&c.BackendBaseURL, raw.BackendBaseURL)
	setString(&c.FeedAddr, raw.FeedAddr)
	setString(&c.ListenAddr, raw.ListenAddr)
	setString(&c.MenuTopic, raw.MenuTopic)
	setString(&c.OrdersTopic, raw.OrdersTopic)
	setString(&c.FlowPreset, raw.FlowPreset)
	if err := setDuration(&c.HighlightTTL, "highlight_ttl", raw.HighlightTTL); err != nil {
		return err
	}
	return setDuration(&c.RequestTimeout, "request_timeout", raw.RequestTimeout)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BackendBaseURL: "http://localhost:8080/api",
		FeedAddr:       "localhost:6379",
		ListenAddr:     ":9090",
		MenuTopic:      "menu",
		OrdersTopic:    "orders",
		FlowPreset:     "kitchen",
		HighlightTTL:   6 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

// Load reads path (when it exists) over the defaults and then applies env
// overrides. A missing file is fine; an unreadable or invalid one is not.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to env overrides
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("KDS_BACKEND_URL"); v != "" {
		cfg.BackendBaseURL = v
	}
	if v := os.Getenv("KDS_FEED_ADDR"); v != "" {
		cfg.FeedAddr = v
	}
	if v := os.Getenv("KDS_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("KDS_FLOW_PRESET"); v != "" {
		cfg.FlowPreset = v
	}
}

func (c Config) validate() error {
	if c.BackendBaseURL == "" {
		return errors.New("invalid config: missing backend base URL")
	}
	if c.FeedAddr == "" {
		return errors.New("invalid config: missing feed address")
	}
	return nil
}
