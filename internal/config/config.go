package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how findings are printed.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Linters toggles the AST linters.
type Linters struct {
	AnonymousComponent bool `yaml:"anonymous_component"`
	ConstantSignal     bool `yaml:"constant_signal"`
	Loops              bool `yaml:"loops"`
}

// Checks toggles the flow-sensitive analyses.
type Checks struct {
	// Assignment runs the per-path single assignment check.
	Assignment bool `yaml:"assignment"`
	// Constraints runs the constraint tracker over `<==` statements.
	Constraints bool `yaml:"constraints"`
	// QualifyConstraintKeys keys tracker history by template and symbol.
	// When false same-named signals of different templates share history.
	QualifyConstraintKeys bool `yaml:"qualify_constraint_keys"`
	// Variables also checks local variables, not only signals.
	Variables bool `yaml:"variables"`
}

// Config holds all configuration for flowlint
type Config struct {
	Linters Linters `yaml:"linters"`
	Checks  Checks  `yaml:"checks"`

	// MinLevel hides lints below this severity: note, warning or error.
	MinLevel string `yaml:"min_level" env:"FLOWLINT_MIN_LEVEL"`

	// Format is the output format of check and lint.
	Format OutputFormat `yaml:"format" env:"FLOWLINT_FORMAT"`

	// Report cache
	CacheDir  string `yaml:"cache_dir" env:"FLOWLINT_CACHE_DIR"`
	CacheSize int    `yaml:"cache_size" env:"FLOWLINT_CACHE_SIZE"`
	UseCache  bool   `yaml:"use_cache" env:"FLOWLINT_USE_CACHE"`

	// Logging
	Verbose bool `yaml:"verbose" env:"FLOWLINT_VERBOSE"`
	LogJSON bool `yaml:"log_json" env:"FLOWLINT_LOG_JSON"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Linters: Linters{
			AnonymousComponent: true,
			ConstantSignal:     true,
			Loops:              true,
		},
		Checks: Checks{
			Assignment:            true,
			Constraints:           true,
			QualifyConstraintKeys: true,
			Variables:             false,
		},
		MinLevel:  "note",
		Format:    FormatText,
		CacheDir:  defaultCacheDir(),
		CacheSize: 256,
		UseCache:  true,
		Verbose:   false,
		LogJSON:   false,
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "flowlint")
	}
	return filepath.Join(".flowlint", "cache")
}

// GlobalConfigFilePath returns the global config file path (~/.flowlint/config.yaml)
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ProjectConfigFilePath()
	}
	return filepath.Join(home, ".flowlint", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.flowlint/config.yaml)
func ProjectConfigFilePath() string {
	return filepath.Join(".flowlint", "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.flowlint/config.yaml)
// 3. Global config (~/.flowlint/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigFilePath(), ProjectConfigFilePath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FLOWLINT_MIN_LEVEL"); v != "" {
		cfg.MinLevel = strings.ToLower(v)
	}
	if v := os.Getenv("FLOWLINT_FORMAT"); v != "" {
		cfg.Format = OutputFormat(strings.ToLower(v))
	}
	if v := os.Getenv("FLOWLINT_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("FLOWLINT_CACHE_SIZE"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.CacheSize = i
		}
	}
	if v := os.Getenv("FLOWLINT_USE_CACHE"); v != "" {
		cfg.UseCache = parseBool(v)
	}
	if v := os.Getenv("FLOWLINT_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
	if v := os.Getenv("FLOWLINT_LOG_JSON"); v != "" {
		cfg.LogJSON = parseBool(v)
	}
	if v := os.Getenv("FLOWLINT_CHECK_VARIABLES"); v != "" {
		cfg.Checks.Variables = parseBool(v)
	}
	if v := os.Getenv("FLOWLINT_QUALIFY_CONSTRAINT_KEYS"); v != "" {
		cfg.Checks.QualifyConstraintKeys = parseBool(v)
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	switch c.MinLevel {
	case "note", "warning", "error":
	default:
		return fmt.Errorf("invalid min_level: %s (must be 'note', 'warning' or 'error')", c.MinLevel)
	}

	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", c.Format)
	}

	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative")
	}
	if c.UseCache && c.CacheDir == "" {
		return fmt.Errorf("cache_dir is required when use_cache is enabled")
	}
	return nil
}

// CacheFile is the path of the persisted report cache.
func (c *Config) CacheFile() string {
	return filepath.Join(c.CacheDir, "reports.msgpack")
}

// Fingerprint identifies the settings that change analysis results, so that
// cached reports are not reused across incompatible configurations.
func (c *Config) Fingerprint() string {
	data, err := yaml.Marshal(struct {
		Linters Linters `yaml:"linters"`
		Checks  Checks  `yaml:"checks"`
	}{c.Linters, c.Checks})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0
	}
	return i
}
