// Package config loads scout's layered configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	scouterrors "github.com/Aman-CERP/scout/internal/errors"
	"github.com/Aman-CERP/scout/internal/logging"
)

const (
	// DefaultBaseURL is where the search service listens in local development.
	DefaultBaseURL = "http://localhost:5000"

	// DefaultLimit is the number of results requested per search.
	DefaultLimit = 20

	// DefaultDebounce is the quiet period after typing before a search fires.
	DefaultDebounce = "300ms"

	// DefaultTimeout bounds each request to the search service.
	DefaultTimeout = "10s"
)

// Config represents the complete scout configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	API     APIConfig     `yaml:"api" json:"api"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	History HistoryConfig `yaml:"history" json:"history"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// APIConfig locates the remote search service.
type APIConfig struct {
	// BaseURL is the service root; /search, /filters and /health hang off it.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Timeout is a Go duration string applied per request.
	Timeout string `yaml:"timeout" json:"timeout"`
}

// SearchConfig tunes how searches are issued.
type SearchConfig struct {
	// Limit is the maximum number of results requested.
	Limit int `yaml:"limit" json:"limit"`

	// Debounce is the typing quiet period as a Go duration string.
	Debounce string `yaml:"debounce" json:"debounce"`
}

// HistoryConfig controls the recent-query list.
type HistoryConfig struct {
	// Path is the JSON file holding recent queries.
	Path string `yaml:"path" json:"path"`

	// Disabled keeps history in memory only.
	Disabled bool `yaml:"disabled" json:"disabled"`
}

// UIConfig controls terminal presentation.
type UIConfig struct {
	NoColor bool `yaml:"no_color" json:"no_color"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	FilePath  string `yaml:"file_path" json:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Addr is a listen address such as ":9464". Empty disables the endpoint.
	Addr string `yaml:"addr" json:"addr"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Search: SearchConfig{
			Limit:    DefaultLimit,
			Debounce: DefaultDebounce,
		},
		History: HistoryConfig{
			Path: DefaultHistoryPath(),
		},
		Logging: LoggingConfig{
			Level:     "info",
			FilePath:  logging.DefaultLogPath(),
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// DefaultDataDir returns ~/.scout, falling back to the temp directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".scout")
	}
	return filepath.Join(home, ".scout")
}

// DefaultHistoryPath returns the default history file location.
func DefaultHistoryPath() string {
	return filepath.Join(DefaultDataDir(), "history.json")
}

// GetUserConfigPath returns the path to the user configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/scout/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/scout/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scout", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "scout", "config.yaml")
	}
	return filepath.Join(home, ".config", "scout", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load builds the configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/scout/config.yaml)
//  3. The explicit file, when path is non-empty (it must exist)
//  4. Environment variables (SCOUT_*)
//
// Command-line flags are applied by the caller on top of the result.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if userPath := GetUserConfigPath(); fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, err
		}
	}

	if path != "" {
		if !fileExists(path) {
			return nil, scouterrors.New(scouterrors.ErrCodeConfigNotFound,
				fmt.Sprintf("config file not found: %s", path), nil).
				WithSuggestion("Run 'scout config init' to create one")
		}
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, scouterrors.ConfigError("invalid configuration: "+err.Error(), err)
	}

	return cfg, nil
}

// loadYAML reads path and merges its non-zero values into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		code := scouterrors.ErrCodeConfigNotFound
		if os.IsPermission(err) {
			code = scouterrors.ErrCodeConfigPermission
		}
		return scouterrors.New(code, fmt.Sprintf("failed to read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return scouterrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.API.BaseURL != "" {
		c.API.BaseURL = other.API.BaseURL
	}
	if other.API.Timeout != "" {
		c.API.Timeout = other.API.Timeout
	}

	if other.Search.Limit != 0 {
		c.Search.Limit = other.Search.Limit
	}
	if other.Search.Debounce != "" {
		c.Search.Debounce = other.Search.Debounce
	}

	if other.History.Path != "" {
		c.History.Path = other.History.Path
	}
	if other.History.Disabled {
		c.History.Disabled = true
	}

	if other.UI.NoColor {
		c.UI.NoColor = true
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.FilePath != "" {
		c.Logging.FilePath = other.Logging.FilePath
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}

	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
}

// applyEnvOverrides applies SCOUT_* environment variable overrides.
// Malformed numbers are ignored and leave the previous value.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SCOUT_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("SCOUT_API_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := os.Getenv("SCOUT_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Search.Limit = n
		}
	}
	if v := os.Getenv("SCOUT_DEBOUNCE"); v != "" {
		c.Search.Debounce = v
	}
	if v := os.Getenv("SCOUT_HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
	if v := os.Getenv("SCOUT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SCOUT_NO_COLOR"); v != "" {
		c.UI.NoColor = parseBool(v)
	}
	if v := os.Getenv("SCOUT_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if c.API.BaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url scheme must be http or https, got %q", u.Scheme)
	}

	if _, err := parsePositiveDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("api.timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Search.Debounce); err != nil {
		return fmt.Errorf("search.debounce: invalid duration %q", c.Search.Debounce)
	}

	if c.Search.Limit <= 0 {
		return fmt.Errorf("search.limit must be positive, got %d", c.Search.Limit)
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// APITimeout returns the parsed per-request timeout.
func (c *Config) APITimeout() time.Duration {
	d, err := parsePositiveDuration(c.API.Timeout)
	if err != nil {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

// DebounceDuration returns the parsed debounce delay. Negative values clamp to zero.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Search.Debounce)
	if err != nil {
		d, _ = time.ParseDuration(DefaultDebounce)
	}
	if d < 0 {
		return 0
	}
	return d
}

// LogSetup converts the logging section into a logging.Config.
func (c *Config) LogSetup() logging.Config {
	return logging.Config{
		Level:     c.Logging.Level,
		FilePath:  c.Logging.FilePath,
		MaxSizeMB: c.Logging.MaxSizeMB,
		MaxFiles:  c.Logging.MaxFiles,
	}
}

// WriteConfigFile writes data to path, creating its directory.
func WriteConfigFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
