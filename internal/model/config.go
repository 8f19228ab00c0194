package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete runtime configuration
type Config struct {
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Export       ExportConfig       `yaml:"export" mapstructure:"export"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Reference    ReferenceConfig    `yaml:"reference" mapstructure:"reference"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	JSON    bool   `yaml:"json" mapstructure:"json"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`

	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

type ExportConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ApplyFormMask zeroes the skinfolds the selected protocol's form does not collect
	ApplyFormMask bool `yaml:"apply_form_mask" mapstructure:"apply_form_mask"`
}

type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, ollama, "" (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"` // never written back to disk
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Language  string `yaml:"language" mapstructure:"language"`

	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

type ReferenceConfig struct {
	// BodyFatTable points at a YAML file replacing the built-in classification table
	BodyFatTable string `yaml:"body_fat_table,omitempty" mapstructure:"body_fat_table"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:           ".",
			JSON:          true,
			IncludeFooter: true,
		},
		Export: ExportConfig{
			Enabled:       true,
			ApplyFormMask: true,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 600,
			Language:  "pt-BR",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bodycomp-cache"
	}
	return filepath.Join(home, ".bodycomp", "cache")
}
