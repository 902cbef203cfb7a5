package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete notemcp configuration.
type Config struct {
	Version    int            `yaml:"version" json:"version"`
	Sources    []SourceConfig `yaml:"sources,omitempty" json:"sources,omitempty"`
	Extensions []string       `yaml:"extensions" json:"extensions"`
	Paths      PathsConfig    `yaml:"paths" json:"paths"`
	Search     SearchConfig   `yaml:"search" json:"search"`
	Cache      CacheConfig    `yaml:"cache" json:"cache"`
	Server     ServerConfig   `yaml:"server" json:"server"`
}

// SourceConfig names a root directory contributing notes.
// An empty Name defaults to the directory's base name.
type SourceConfig struct {
	Path string `yaml:"path" json:"path"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// PathsConfig controls directory traversal.
type PathsConfig struct {
	// Exclude holds doublestar patterns matched against paths relative to
	// each source root.
	Exclude []string `yaml:"exclude" json:"exclude"`
	// MaxDepth caps traversal depth below a source root. 0 means unlimited.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
}

// SearchConfig configures the search engine.
type SearchConfig struct {
	MaxResults   int `yaml:"max_results" json:"max_results"`
	ContextLines int `yaml:"context_lines" json:"context_lines"`

	// CaseSensitive applies to every backend, external or in-memory.
	CaseSensitive bool `yaml:"case_sensitive" json:"case_sensitive"`

	// Timeout bounds a single external tool invocation. Expiry skips the
	// source (or source/extension pair) being searched.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Parallel runs per-source invocations concurrently, up to Workers at a
	// time. Result order is unchanged.
	Parallel bool `yaml:"parallel" json:"parallel"`
	Workers  int  `yaml:"workers" json:"workers"`

	// CircuitFailures consecutive backend failures trip the circuit for
	// CircuitReset, during which the engine goes straight to the in-memory scan.
	CircuitFailures int           `yaml:"circuit_failures" json:"circuit_failures"`
	CircuitReset    time.Duration `yaml:"circuit_reset" json:"circuit_reset"`
}

// CacheConfig configures the note content cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Size    int  `yaml:"size" json:"size"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Name      string `yaml:"name" json:"name"`
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// defaultExcludePatterns are always excluded.
var defaultExcludePatterns = []string{
	"**/.git/**",
	"**/.hg/**",
	"**/.svn/**",
	"**/node_modules/**",
	"**/.obsidian/**",
	"**/.trash/**",
}

// DefaultExtensions are indexed when nothing else is configured.
var DefaultExtensions = []string{"md", "org", "txt"}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version:    1,
		Extensions: append([]string(nil), DefaultExtensions...),
		Paths: PathsConfig{
			Exclude:  append([]string(nil), defaultExcludePatterns...),
			MaxDepth: 0,
		},
		Search: SearchConfig{
			MaxResults:      10,
			ContextLines:    2,
			CaseSensitive:   false,
			Timeout:         30 * time.Second,
			Parallel:        false,
			Workers:         4,
			CircuitFailures: 3,
			CircuitReset:    time.Minute,
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    512,
		},
		Server: ServerConfig{
			Name:      "Notebook",
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/notemcp/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "notemcp", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "notemcp", "config.yaml")
	}
	return filepath.Join(home, ".config", "notemcp", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user config.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// Load loads configuration with precedence:
// defaults < user config < project config (file) < environment variables.
// CLI flags are applied by the caller on top of the result.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFile loads defaults overlaid with one explicit file and the environment.
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromFile loads the project configuration file from dir.
// .notemcp.yaml wins over .notemcp.yml.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".notemcp.yaml", ".notemcp.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	return nil
}

// presence tracks which boolean keys a file actually set, since a zero
// bool is indistinguishable from an absent one after unmarshaling.
type presence struct {
	Search struct {
		CaseSensitive *bool `yaml:"case_sensitive"`
		Parallel      *bool `yaml:"parallel"`
	} `yaml:"search"`
	Cache struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"cache"`
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	var set presence
	if err := yaml.Unmarshal(data, &set); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed, &set)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config, set *presence) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if len(other.Sources) > 0 {
		c.Sources = other.Sources
	}
	if len(other.Extensions) > 0 {
		c.Extensions = other.Extensions
	}

	// Exclude patterns accumulate
	if len(other.Paths.Exclude) > 0 {
		c.Paths.Exclude = append(c.Paths.Exclude, other.Paths.Exclude...)
	}
	if other.Paths.MaxDepth != 0 {
		c.Paths.MaxDepth = other.Paths.MaxDepth
	}

	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.ContextLines != 0 {
		c.Search.ContextLines = other.Search.ContextLines
	}
	if other.Search.Timeout != 0 {
		c.Search.Timeout = other.Search.Timeout
	}
	if other.Search.Workers != 0 {
		c.Search.Workers = other.Search.Workers
	}
	if other.Search.CircuitFailures != 0 {
		c.Search.CircuitFailures = other.Search.CircuitFailures
	}
	if other.Search.CircuitReset != 0 {
		c.Search.CircuitReset = other.Search.CircuitReset
	}
	if set.Search.CaseSensitive != nil {
		c.Search.CaseSensitive = *set.Search.CaseSensitive
	}
	if set.Search.Parallel != nil {
		c.Search.Parallel = *set.Search.Parallel
	}

	if set.Cache.Enabled != nil {
		c.Cache.Enabled = *set.Cache.Enabled
	}
	if other.Cache.Size != 0 {
		c.Cache.Size = other.Cache.Size
	}

	if other.Server.Name != "" {
		c.Server.Name = other.Server.Name
	}
	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies NOTEMCP_* environment variables.
// Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NOTEMCP_EXTENSIONS"); v != "" {
		if exts := SplitList(v); len(exts) > 0 {
			c.Extensions = exts
		}
	}
	if v := os.Getenv("NOTEMCP_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("NOTEMCP_CONTEXT_LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Search.ContextLines = n
		}
	}
	if v := os.Getenv("NOTEMCP_CASE_SENSITIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Search.CaseSensitive = b
		}
	}
	if v := os.Getenv("NOTEMCP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Search.Timeout = d
		}
	}
	if v := os.Getenv("NOTEMCP_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("NOTEMCP_SERVER_NAME"); v != "" {
		c.Server.Name = v
	}
}

// SplitList splits a comma-separated list, trimming blanks and leading dots.
// "md, .Org,txt" yields [md org txt].
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if strings.TrimPrefix(strings.TrimSpace(ext), ".") == "" {
			return fmt.Errorf("extensions must not contain blank entries")
		}
	}

	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be non-negative, got %d", c.Search.MaxResults)
	}
	if c.Search.ContextLines < 0 {
		return fmt.Errorf("search.context_lines must be non-negative, got %d", c.Search.ContextLines)
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive, got %s", c.Search.Timeout)
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("search.workers must be non-negative, got %d", c.Search.Workers)
	}
	if c.Paths.MaxDepth < 0 {
		return fmt.Errorf("paths.max_depth must be non-negative, got %d", c.Paths.MaxDepth)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must be non-negative, got %d", c.Cache.Size)
	}

	if !strings.EqualFold(c.Server.Transport, "stdio") {
		return fmt.Errorf("server.transport must be 'stdio', got %s", c.Server.Transport)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
