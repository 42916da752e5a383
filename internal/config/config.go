package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv is consulted when theirstack.api_key is empty in the config file.
const APIKeyEnv = "THEIRSTACK_API_KEY"

// Config is the root configuration for leadradar.
type Config struct {
	PollingInterval time.Duration
	Companies       []CompanyConfig
	TheirStack      TheirStackConfig
	Ingest          IngestConfig
	Filters         FilterConfig
	Notification    NotificationConfig
	Store           StoreConfig
	Server          ServerConfig
}

// TheirStackConfig holds the job-postings provider settings.
type TheirStackConfig struct {
	BaseURL string        // defaults to https://api.theirstack.com/v1
	APIKey  string        // expanded from env vars by Load; may be empty
	Timeout time.Duration // per-company request timeout
}

// IngestConfig controls how a batch fans out across companies.
type IngestConfig struct {
	Concurrency int // 1 = strictly sequential
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// CompanyConfig describes a single target account to watch.
type CompanyConfig struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

// FilterConfig decides which computed signals trigger alerts.
type FilterConfig struct {
	MinStrength      int
	ExcludeCompanies []string
}

// StoreConfig selects the signal persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	Path   string `yaml:"path"`   // sqlite database file
	DSN    string `yaml:"dsn"`    // postgres connection string
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Persist    bool   `yaml:"persist"` // save signals computed by POST requests
}

// EnabledCompanies returns the names of all enabled companies, in config order.
func (c *Config) EnabledCompanies() []string {
	var names []string
	for _, co := range c.Companies {
		if co.Enabled {
			names = append(names, co.Name)
		}
	}
	return names
}

const (
	defaultPollingInterval = 6 * time.Hour
	defaultRequestTimeout  = 15 * time.Second
	defaultMinStrength     = 50
	defaultListenAddr      = ":8080"
	defaultSQLitePath      = "signals.db"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	PollingInterval string             `yaml:"polling_interval"`
	Companies       []CompanyConfig    `yaml:"companies"`
	TheirStack      rawTheirStack      `yaml:"theirstack"`
	Ingest          rawIngest          `yaml:"ingest"`
	Filters         rawFilterConfig    `yaml:"filters"`
	Notification    NotificationConfig `yaml:"notification"`
	Store           StoreConfig        `yaml:"store"`
	Server          ServerConfig       `yaml:"server"`
}

type rawTheirStack struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

type rawIngest struct {
	Concurrency int `yaml:"concurrency"`
}

type rawFilterConfig struct {
	MinStrength      *int     `yaml:"min_strength"`
	ExcludeCompanies []string `yaml:"exclude_companies"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// A missing provider API key is not an error here; it fails each batch instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from raw YAML, expanding environment variables first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := defaultPollingInterval
	if raw.PollingInterval != "" {
		var err error
		interval, err = time.ParseDuration(raw.PollingInterval)
		if err != nil {
			return nil, fmt.Errorf("parse polling_interval %q: %w", raw.PollingInterval, err)
		}
	}

	timeout := defaultRequestTimeout
	if raw.TheirStack.Timeout != "" {
		var err error
		timeout, err = time.ParseDuration(raw.TheirStack.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse theirstack.timeout %q: %w", raw.TheirStack.Timeout, err)
		}
	}

	apiKey := strings.TrimSpace(raw.TheirStack.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(APIKeyEnv))
	}

	concurrency := raw.Ingest.Concurrency
	if concurrency == 0 {
		concurrency = 1
	}

	minStrength := defaultMinStrength
	if raw.Filters.MinStrength != nil {
		minStrength = *raw.Filters.MinStrength
	}

	store := raw.Store
	if store.Driver == "" {
		store.Driver = "sqlite"
	}
	if store.Driver == "sqlite" && store.Path == "" {
		store.Path = defaultSQLitePath
	}

	server := raw.Server
	if server.ListenAddr == "" {
		server.ListenAddr = defaultListenAddr
	}

	cfg := &Config{
		PollingInterval: interval,
		Companies:       raw.Companies,
		TheirStack: TheirStackConfig{
			BaseURL: raw.TheirStack.BaseURL,
			APIKey:  apiKey,
			Timeout: timeout,
		},
		Ingest: IngestConfig{Concurrency: concurrency},
		Filters: FilterConfig{
			MinStrength:      minStrength,
			ExcludeCompanies: raw.Filters.ExcludeCompanies,
		},
		Notification: raw.Notification,
		Store:        store,
		Server:       server,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.PollingInterval <= 0 {
		return fmt.Errorf("polling_interval must be positive, got %v", cfg.PollingInterval)
	}
	if cfg.TheirStack.Timeout <= 0 {
		return fmt.Errorf("theirstack.timeout must be positive, got %v", cfg.TheirStack.Timeout)
	}
	if cfg.Ingest.Concurrency < 1 || cfg.Ingest.Concurrency > 32 {
		return fmt.Errorf("ingest.concurrency must be between 1 and 32, got %d", cfg.Ingest.Concurrency)
	}
	if cfg.Filters.MinStrength < 0 || cfg.Filters.MinStrength > 100 {
		return fmt.Errorf("filters.min_strength must be between 0 and 100, got %d", cfg.Filters.MinStrength)
	}
	for i, c := range cfg.Companies {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("companies[%d].name is required", i)
		}
	}

	switch cfg.Store.Driver {
	case "sqlite":
	case "postgres":
		if cfg.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required when store.driver is \"postgres\"")
		}
	default:
		return fmt.Errorf("store.driver must be \"sqlite\" or \"postgres\", got %q", cfg.Store.Driver)
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	return nil
}
