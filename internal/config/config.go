package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/keith-mcqueen/Temples/internal/shared/errors"
)

// Config holds all application configuration.
type Config struct {
	Logging LogConfig
	Fetch   FetchConfig
	Sources SourcesConfig
	Metrics MetricsConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL"`
	Development bool   `envconfig:"LOG_DEV"`
}

// FetchConfig holds settings for the document fetcher.
type FetchConfig struct {
	Timeout   time.Duration `envconfig:"FETCH_TIMEOUT"`
	UserAgent string        `envconfig:"FETCH_USER_AGENT"`
	// RateLimit is requests per second; zero or less disables limiting.
	RateLimit float64 `envconfig:"FETCH_RATE_LIMIT"`
}

// SourcesConfig holds the scrape endpoints.
type SourcesConfig struct {
	DirectoryURL string `envconfig:"TEMPLES_DIRECTORY_URL"`
	MediaURL     string `envconfig:"TEMPLES_MEDIA_URL"`
	KMLURL       string `envconfig:"TEMPLES_KML_URL"`
	// BaseURL is prepended to site-relative links.
	BaseURL string `envconfig:"TEMPLES_BASE_URL"`
	// ImagePrefix is the path prefix in image sources replaced by BaseURL.
	ImagePrefix string `envconfig:"TEMPLES_IMAGE_PREFIX"`
}

// MetricsConfig holds run metrics settings.
type MetricsConfig struct {
	// File is a node-exporter textfile path; empty disables the dump.
	File string `envconfig:"METRICS_FILE"`
}

// fileConfig mirrors Config for YAML and TOML files. Durations are strings.
type fileConfig struct {
	Logging struct {
		Level       string `yaml:"level" toml:"level"`
		Development *bool  `yaml:"development" toml:"development"`
	} `yaml:"logging" toml:"logging"`
	Fetch struct {
		Timeout   string   `yaml:"timeout" toml:"timeout"`
		UserAgent string   `yaml:"user_agent" toml:"user_agent"`
		RateLimit *float64 `yaml:"rate_limit" toml:"rate_limit"`
	} `yaml:"fetch" toml:"fetch"`
	Sources struct {
		DirectoryURL string `yaml:"directory_url" toml:"directory_url"`
		MediaURL     string `yaml:"media_url" toml:"media_url"`
		KMLURL       string `yaml:"kml_url" toml:"kml_url"`
		BaseURL      string `yaml:"base_url" toml:"base_url"`
		ImagePrefix  string `yaml:"image_prefix" toml:"image_prefix"`
	} `yaml:"sources" toml:"sources"`
	Metrics struct {
		File string `yaml:"file" toml:"file"`
	} `yaml:"metrics" toml:"metrics"`
}

// Load builds the configuration. Defaults are overlaid by the optional file
// at path, then by environment variables (a .env file in the working
// directory is read first if present).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, errors.NewConfigError("environment", "failed to load config", err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load("")
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			UserAgent: "temples-bot/1.0 (+https://github.com/keith-mcqueen/Temples)",
			RateLimit: 0,
		},
		Sources: SourcesConfig{
			DirectoryURL: "http://www.lds.org/church/temples/find-a-temple?lang=eng",
			MediaURL:     "https://www.lds.org/media-library/images/categories/temples_list?lang=eng",
			KMLURL:       "http://www.ldschurchtemples.com/maps/downloads/kml.php",
			BaseURL:      "https://www.lds.org",
			ImagePrefix:  "/bc/content",
		},
	}
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewConfigError("config file", fmt.Sprintf("cannot read %s", path), err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	default:
		return errors.NewConfigError("config file", fmt.Sprintf("unsupported config format %q", filepath.Ext(path)), nil)
	}
	if err != nil {
		return errors.NewConfigError("config file", fmt.Sprintf("cannot parse %s", path), err)
	}

	setString(&c.Logging.Level, fc.Logging.Level)
	if fc.Logging.Development != nil {
		c.Logging.Development = *fc.Logging.Development
	}

	if fc.Fetch.Timeout != "" {
		d, err := time.ParseDuration(fc.Fetch.Timeout)
		if err != nil {
			return errors.NewConfigError("config file", "invalid fetch.timeout", err)
		}
		c.Fetch.Timeout = d
	}
	setString(&c.Fetch.UserAgent, fc.Fetch.UserAgent)
	if fc.Fetch.RateLimit != nil {
		c.Fetch.RateLimit = *fc.Fetch.RateLimit
	}

	setString(&c.Sources.DirectoryURL, fc.Sources.DirectoryURL)
	setString(&c.Sources.MediaURL, fc.Sources.MediaURL)
	setString(&c.Sources.KMLURL, fc.Sources.KMLURL)
	setString(&c.Sources.BaseURL, fc.Sources.BaseURL)
	setString(&c.Sources.ImagePrefix, fc.Sources.ImagePrefix)

	setString(&c.Metrics.File, fc.Metrics.File)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
