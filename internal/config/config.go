package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	domintent "github.com/shopgrid/prodsearch/internal/domain/intent"
	"github.com/shopgrid/prodsearch/internal/domain/match"
)

// Config holds the prodsearch API configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Cache       CacheConfig       `yaml:"cache"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
	Matching    MatchingConfig    `yaml:"matching"`
	Vocabulary  VocabularyConfig  `yaml:"vocabulary"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig holds the WooCommerce store connection settings.
type CatalogConfig struct {
	BaseURL        string `yaml:"base_url"`
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	TimeoutSec     int    `yaml:"timeout_sec"`
}

// CacheConfig holds the optional Redis taxonomy cache settings.
// An empty Addrs list disables the cache.
type CacheConfig struct {
	Addrs               []string `yaml:"addrs"`
	Password            string   `yaml:"password"`
	TTLSec              int      `yaml:"ttl_sec"`
	ReadinessTimeoutSec int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache store is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// SuggestionsConfig holds the optional LLM suggestion provider settings.
// An empty APIKey disables generated suggestions.
type SuggestionsConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Enabled reports whether a suggestion provider is configured.
func (s SuggestionsConfig) Enabled() bool { return s.APIKey != "" }

// MatchingConfig holds the lexicon matcher thresholds.
type MatchingConfig struct {
	FuzzyThreshold       float64 `yaml:"fuzzy_threshold"`
	StrictFuzzyThreshold float64 `yaml:"strict_fuzzy_threshold"`
}

// VocabularyConfig optionally overrides the built-in intent keyword tables,
// e.g. for localized storefronts. Empty lists keep the defaults.
type VocabularyConfig struct {
	PriceAscending  []string `yaml:"price_ascending"`
	PriceDescending []string `yaml:"price_descending"`
	UpperBound      []string `yaml:"upper_bound"`
	LowerBound      []string `yaml:"lower_bound"`
	Temporal        []string `yaml:"temporal"`
	Promotional     []string `yaml:"promotional"`
	Currencies      []string `yaml:"currencies"`
	Stopwords       []string `yaml:"stopwords"`
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Catalog.TimeoutSec <= 0 {
		c.Catalog.TimeoutSec = 10
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.ReadinessTimeoutSec <= 0 {
		c.Cache.ReadinessTimeoutSec = 10
	}
	if c.Matching.FuzzyThreshold <= 0 {
		c.Matching.FuzzyThreshold = match.RelaxedFuzzyThreshold
	}
	if c.Matching.StrictFuzzyThreshold <= 0 {
		c.Matching.StrictFuzzyThreshold = match.StrictFuzzyThreshold
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	if c.Matching.FuzzyThreshold >= 1 {
		return fmt.Errorf("matching.fuzzy_threshold must be below 1, got %v", c.Matching.FuzzyThreshold)
	}
	if c.Matching.StrictFuzzyThreshold >= 1 {
		return fmt.Errorf("matching.strict_fuzzy_threshold must be below 1, got %v",
			c.Matching.StrictFuzzyThreshold)
	}
	return nil
}

// RelaxedMatcher returns the matcher tuning for the fallback product search.
func (c *Config) RelaxedMatcher() match.Config {
	return match.Config{FuzzyThreshold: c.Matching.FuzzyThreshold}
}

// StrictMatcher returns the matcher tuning for the standalone intent
// analysis.
func (c *Config) StrictMatcher() match.Config {
	return match.Config{FuzzyThreshold: c.Matching.StrictFuzzyThreshold}
}

// BuildVocabulary merges the configured overrides over the built-in
// vocabulary.
func (c *Config) BuildVocabulary() domintent.Vocabulary {
	v := domintent.DefaultVocabulary()
	override := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	override(&v.PriceAscending, c.Vocabulary.PriceAscending)
	override(&v.PriceDescending, c.Vocabulary.PriceDescending)
	override(&v.UpperBound, c.Vocabulary.UpperBound)
	override(&v.LowerBound, c.Vocabulary.LowerBound)
	override(&v.Temporal, c.Vocabulary.Temporal)
	override(&v.Promotional, c.Vocabulary.Promotional)
	override(&v.Currencies, c.Vocabulary.Currencies)
	override(&v.Stopwords, c.Vocabulary.Stopwords)
	return v
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(m []byte) []byte {
		expr := string(m[2 : len(m)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
