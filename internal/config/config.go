package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/heritage/internal/domain/risk"
)

// Config holds the heritage API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Reference ReferenceConfig `yaml:"reference"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Index     IndexConfig     `yaml:"index"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	Providers   map[string]ProviderConfig `yaml:"providers"`
	Vectorizer  VectorizerConfig          `yaml:"vectorizer"`
	CacheTTLSec int                       `yaml:"cache_ttl_sec"` // 0 = keep forever
}

// ProviderConfig holds embedding provider settings.
type ProviderConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// VectorizerConfig selects the provider and model used for descriptions.
type VectorizerConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	Instruction string `yaml:"instruction"`
}

// ReferenceConfig holds web search settings for the digital reference signal.
type ReferenceConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	EngineID    string  `yaml:"engine_id"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	RateLimit   float64 `yaml:"rate_limit"` // requests per second
	Burst       int     `yaml:"burst"`
	SinhalaSite string  `yaml:"sinhala_site"`
}

// ScoringConfig overrides the risk model. Unset values keep the defaults.
type ScoringConfig struct {
	Weights        *WeightsConfig     `yaml:"weights"`
	Levels         *LevelsConfig      `yaml:"levels"`
	Distances      []float64          `yaml:"distance_thresholds"`
	LanguageRarity map[string]float64 `yaml:"language_rarity"`
	Neighbors      int                `yaml:"neighbors"`
}

// WeightsConfig holds the component weights; they must sum to 1.0.
type WeightsConfig struct {
	Length   float64 `yaml:"length"`
	Language float64 `yaml:"language"`
	Digital  float64 `yaml:"digital"`
	Local    float64 `yaml:"local"`
}

// LevelsConfig holds the lower bounds of the Medium, High and Critical bands.
type LevelsConfig struct {
	Medium   float64 `yaml:"medium"`
	High     float64 `yaml:"high"`
	Critical float64 `yaml:"critical"`
}

// IndexConfig controls when the similarity index is rebuilt.
// Both values zero rebuild it on every assessment.
type IndexConfig struct {
	RefreshIntervalSec int `yaml:"refresh_interval_sec"`
	WriteThreshold     int `yaml:"write_threshold"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML with ${VAR} substitution, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "heritage:"
	}
	for name, p := range c.Embedding.Providers {
		if p.TimeoutSec <= 0 {
			p.TimeoutSec = 10
			c.Embedding.Providers[name] = p
		}
	}
	if c.Reference.TimeoutSec <= 0 {
		c.Reference.TimeoutSec = 5
	}
	if c.Reference.RateLimit <= 0 {
		c.Reference.RateLimit = 5
	}
	if c.Reference.Burst <= 0 {
		c.Reference.Burst = 5
	}
	if c.Reference.SinhalaSite == "" {
		c.Reference.SinhalaSite = "si.wikipedia.org"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis", "valkey":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"valkey\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return errors.New("database.addrs is required")
	}
	if p := c.Embedding.Vectorizer.Provider; p != "" {
		if _, ok := c.Embedding.Providers[p]; !ok {
			return fmt.Errorf("embedding.vectorizer.provider %q is not configured in embedding.providers", p)
		}
	}
	if c.Embedding.Vectorizer.Dimensions < 0 {
		return fmt.Errorf("embedding.vectorizer.dimensions must not be negative, got %d", c.Embedding.Vectorizer.Dimensions)
	}
	if c.Index.RefreshIntervalSec < 0 || c.Index.WriteThreshold < 0 {
		return errors.New("index.refresh_interval_sec and index.write_threshold must not be negative")
	}
	if len(c.Scoring.Distances) != 0 && len(c.Scoring.Distances) != len(risk.DistanceThresholds{}) {
		return fmt.Errorf("scoring.distance_thresholds must have %d values, got %d",
			len(risk.DistanceThresholds{}), len(c.Scoring.Distances))
	}
	params := c.Scoring.Params()
	if err := params.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	return nil
}

// Params merges the overrides into the default risk model.
func (s ScoringConfig) Params() risk.Params {
	p := risk.DefaultParams()
	if s.Weights != nil {
		p.Weights = risk.Weights(*s.Weights)
	}
	if s.Levels != nil {
		p.Levels = risk.LevelThresholds(*s.Levels)
	}
	if len(s.Distances) == len(p.Distances) {
		copy(p.Distances[:], s.Distances)
	}
	if len(s.LanguageRarity) > 0 {
		p.LanguageRarity = make(map[string]float64, len(s.LanguageRarity))
		for k, v := range s.LanguageRarity {
			p.LanguageRarity[k] = v
		}
	}
	if s.Neighbors > 0 {
		p.Neighbors = s.Neighbors
	}
	return p
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
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
