package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the profile analyzer service
type Config struct {
	// TikTok scraping client settings
	TikTok TikTokConfig `yaml:"tiktok" json:"tiktok"`

	// Retry policy for signed requests
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Rate limiting against the upstream API
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Analyzer settings
	Analyzer AnalyzerConfig `yaml:"analyzer" json:"analyzer"`

	// Persistent store settings
	Store StoreConfig `yaml:"store" json:"store"`

	// HTTP server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TikTokConfig holds settings for the browser-backed scraping client
type TikTokConfig struct {
	// MsToken is the upstream access token. Left empty, it is harvested from
	// the session's cookie jar after the first navigation.
	MsToken           string        `yaml:"ms_token" json:"ms_token"`
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	PageSizePosts     int           `yaml:"page_size_posts" json:"page_size_posts"`
	PageSizeComments  int           `yaml:"page_size_comments" json:"page_size_comments"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	Headless          bool          `yaml:"headless" json:"headless"`
}

// RetryConfig holds the signed request retry policy
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// AnalyzerConfig bounds a profile analysis run
type AnalyzerConfig struct {
	// MaxPosts caps how many recent posts are fetched per user.
	MaxPosts int `yaml:"max_posts" json:"max_posts"`
	// MaxComments caps how many comments are fetched per post.
	MaxComments int `yaml:"max_comments" json:"max_comments"`
	// Language is the working language; comments tagged with any other
	// language are dropped before classification.
	Language string `yaml:"language" json:"language"`
	// ResultTTL is the expiry applied to persisted statuses and comments.
	ResultTTL time.Duration `yaml:"result_ttl" json:"result_ttl"`
}

// StoreConfig holds Valkey connection settings
type StoreConfig struct {
	Address  string `yaml:"address" json:"address"`
	Password string `yaml:"password" json:"password"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		TikTok: TikTokConfig{
			BaseURL:           "https://www.tiktok.com",
			PageSizePosts:     35,
			PageSizeComments:  20,
			NavigationTimeout: 30 * time.Second,
			Headless:          true,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Analyzer: AnalyzerConfig{
			MaxPosts:    50,
			MaxComments: 100,
			Language:    "en",
			ResultTTL:   time.Hour,
		},
		Store: StoreConfig{
			Address: "127.0.0.1:6379",
		},
		Server: ServerConfig{
			Addr: ":3000",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("TOKPULSE_MS_TOKEN"); token != "" {
		c.TikTok.MsToken = token
	}
	if baseURL := os.Getenv("TOKPULSE_BASE_URL"); baseURL != "" {
		c.TikTok.BaseURL = baseURL
	}

	if addr := os.Getenv("TOKPULSE_VALKEY_ADDRESS"); addr != "" {
		c.Store.Address = addr
	}
	if password := os.Getenv("TOKPULSE_VALKEY_PASSWORD"); password != "" {
		c.Store.Password = password
	}

	if addr := os.Getenv("TOKPULSE_ADDR"); addr != "" {
		c.Server.Addr = addr
	} else if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}

	if lang := os.Getenv("TOKPULSE_LANGUAGE"); lang != "" {
		c.Analyzer.Language = lang
	}
	if maxPosts := os.Getenv("TOKPULSE_MAX_POSTS"); maxPosts != "" {
		val, err := strconv.Atoi(maxPosts)
		if err != nil {
			return fmt.Errorf("invalid TOKPULSE_MAX_POSTS %q: %w", maxPosts, err)
		}
		c.Analyzer.MaxPosts = val
	}
	if maxComments := os.Getenv("TOKPULSE_MAX_COMMENTS"); maxComments != "" {
		val, err := strconv.Atoi(maxComments)
		if err != nil {
			return fmt.Errorf("invalid TOKPULSE_MAX_COMMENTS %q: %w", maxComments, err)
		}
		c.Analyzer.MaxComments = val
	}

	if rpm := os.Getenv("TOKPULSE_REQUESTS_PER_MINUTE"); rpm != "" {
		val, err := strconv.Atoi(rpm)
		if err != nil {
			return fmt.Errorf("invalid TOKPULSE_REQUESTS_PER_MINUTE %q: %w", rpm, err)
		}
		c.RateLimit.RequestsPerMinute = val
	}

	if logLevel := os.Getenv("TOKPULSE_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".tokpulse.yaml",
		".tokpulse.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tokpulse", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tokpulse", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.TikTok.BaseURL == "" {
		errs = append(errs, errors.New("tiktok base URL is required"))
	}
	if c.TikTok.PageSizePosts <= 0 {
		errs = append(errs, errors.New("post page size must be positive"))
	}
	if c.TikTok.PageSizeComments <= 0 {
		errs = append(errs, errors.New("comment page size must be positive"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("retry max attempts must be positive"))
	}
	if c.Retry.BaseDelay <= 0 {
		errs = append(errs, errors.New("retry base delay must be positive"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}

	if c.Analyzer.MaxPosts <= 0 {
		errs = append(errs, errors.New("max posts must be positive"))
	}
	if c.Analyzer.MaxComments <= 0 {
		errs = append(errs, errors.New("max comments must be positive"))
	}
	if c.Analyzer.Language == "" {
		errs = append(errs, errors.New("analyzer language is required"))
	}
	if c.Analyzer.ResultTTL <= 0 {
		errs = append(errs, errors.New("result TTL must be positive"))
	}

	if c.Store.Address == "" {
		errs = append(errs, errors.New("store address is required"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Environment variables > .env file > Config file > Defaults
func Load(configPath string) (*Config, error) {
	// Try to load a .env file (don't fail if it doesn't exist)
	_ = godotenv.Load(".env")

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
