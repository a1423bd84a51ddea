// Package config loads initbot settings from a YAML file, a .env file and
// the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfig   = "INITBOT_CONFIG"
	EnvStore    = "INITBOT_STORE"
	EnvDB       = "INITBOT_DB"
	EnvAPIKey   = "GEMINI_API_KEY"
	EnvModel    = "INITBOT_MODEL"
	EnvLogLevel = "INITBOT_LOG_LEVEL"
)

// Store drivers.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Full-text extractors.
const (
	ExtractorTrafilatura = "trafilatura"
	ExtractorReadability = "readability"
)

// Configuration validation errors.
var (
	ErrInvalidDriver      = errors.New("store.driver must be 'json' or 'sqlite'")
	ErrMissingStorePath   = errors.New("store.path is required")
	ErrMissingIndexURL    = errors.New("source.index_url is required")
	ErrInvalidTimeout     = errors.New("source.timeout must be positive")
	ErrInvalidRate        = errors.New("source.requests_per_second must be non-negative")
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
	ErrInvalidExtractor   = errors.New("source.extractor must be 'trafilatura' or 'readability'")
	ErrInvalidTTL         = errors.New("cache.ttl must be non-negative")
	ErrInvalidScore       = errors.New("chat scores must be between 0 and 1")
	ErrInvalidLimit       = errors.New("chat.limit must be at least 1")
	ErrMissingAddr        = errors.New("server.addr is required")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat   = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the complete initbot configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Source  SourceConfig  `yaml:"source"`
	Cache   CacheConfig   `yaml:"cache"`
	LLM     LLMConfig     `yaml:"llm"`
	Chat    ChatConfig    `yaml:"chat"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig selects where initiatives are kept.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// SourceConfig controls scraping.
type SourceConfig struct {
	IndexURL          string        `yaml:"index_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Concurrency       int           `yaml:"concurrency"`
	Browser           bool          `yaml:"browser"`
	Extractor         string        `yaml:"extractor"`
	UserAgent         string        `yaml:"user_agent"`
}

// CacheConfig controls when the cache is refreshed.
type CacheConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	AutoRefresh bool          `yaml:"auto_refresh"`
}

// LLMConfig configures the Gemini summarizer. Without an API key the
// offline summarizer is used.
type LLMConfig struct {
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`
	Language    string `yaml:"language"`
	Concurrency int    `yaml:"concurrency"`
}

// ChatConfig holds the chatbot thresholds.
type ChatConfig struct {
	MinScore    float64 `yaml:"min_score"`
	DetailScore float64 `yaml:"detail_score"`
	Limit       int     `yaml:"limit"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Driver: DriverJSON, Path: "initiatives.json"},
		Source: SourceConfig{
			IndexURL:          "https://www.bk.admin.ch/ch/d/pore/vi/vis_2_2_5_1.html",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			Concurrency:       4,
			Extractor:         ExtractorTrafilatura,
		},
		Cache:   CacheConfig{TTL: 24 * time.Hour, AutoRefresh: true},
		LLM:     LLMConfig{Model: "gemini-2.5-flash", Language: "English", Concurrency: 2},
		Chat:    ChatConfig{MinScore: 0.5, DetailScore: 0.75, Limit: 5},
		Server:  ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Env looks up an environment variable, returning "" if it is unset.
type Env func(key string) string

// NewEnv returns an Env reading the process environment first and the
// .env file at dotenvPath second. A missing .env file is not an error.
func NewEnv(dotenvPath string) (Env, error) {
	vars := map[string]string{}
	if dotenvPath != "" {
		m, err := godotenv.Read(dotenvPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", dotenvPath, err)
		}
		if m != nil {
			vars = m
		}
	}
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return vars[key]
	}, nil
}

// Load builds the configuration from defaults, the YAML file at path and
// env. The path in INITBOT_CONFIG takes precedence over path. An empty
// path skips the file.
func Load(path string, env Env) (*Config, error) {
	if env == nil {
		env = func(string) string { return "" }
	}
	if p := env(EnvConfig); p != "" {
		path = p
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(env); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// decode overlays YAML onto c. Unknown fields are rejected.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(env Env) error {
	if v := env(EnvStore); v != "" {
		c.Store.Driver = strings.ToLower(v)
	}
	if v := env(EnvDB); v != "" {
		c.Store.Path = v
	}
	if v := env(EnvAPIKey); v != "" {
		c.LLM.APIKey = v
	}
	if v := env(EnvModel); v != "" {
		c.LLM.Model = v
	}
	if v := env(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := env("INITBOT_AUTO_REFRESH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("INITBOT_AUTO_REFRESH: %w", err)
		}
		c.Cache.AutoRefresh = b
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Store.Driver != DriverJSON && c.Store.Driver != DriverSQLite {
		return ErrInvalidDriver
	}
	if c.Store.Path == "" {
		return ErrMissingStorePath
	}

	if c.Source.IndexURL == "" {
		return ErrMissingIndexURL
	}
	if c.Source.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Source.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}
	if c.Source.Concurrency < 1 {
		return fmt.Errorf("%w: source.concurrency", ErrInvalidConcurrency)
	}
	if c.Source.Extractor != ExtractorTrafilatura && c.Source.Extractor != ExtractorReadability {
		return ErrInvalidExtractor
	}

	if c.Cache.TTL < 0 {
		return ErrInvalidTTL
	}

	if c.LLM.Concurrency < 1 {
		return fmt.Errorf("%w: llm.concurrency", ErrInvalidConcurrency)
	}

	if c.Chat.MinScore < 0 || c.Chat.MinScore > 1 || c.Chat.DetailScore < 0 || c.Chat.DetailScore > 1 {
		return ErrInvalidScore
	}
	if c.Chat.Limit < 1 {
		return ErrInvalidLimit
	}

	if c.Server.Addr == "" {
		return ErrMissingAddr
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}
	return nil
}

// Stale reports whether a cache last fetched at fetchedAt needs a refresh.
// An empty cache (zero time) is always stale. A zero TTL never expires.
func (c *CacheConfig) Stale(fetchedAt, now time.Time) bool {
	if fetchedAt.IsZero() {
		return true
	}
	if c.TTL == 0 {
		return false
	}
	return now.Sub(fetchedAt) > c.TTL
}
