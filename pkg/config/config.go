// Package config loads the hoopla configuration from an optional YAML file,
// applies HOOPLA_* environment overrides and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Config struct {
	Data      DataConfig      `yaml:"data"`
	Store     StoreConfig     `yaml:"store"`
	Search    SearchConfig    `yaml:"search"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// DataConfig points at the build inputs.
type DataConfig struct {
	Corpus    string `yaml:"corpus" validate:"required"`
	StopWords string `yaml:"stopwords" validate:"required"`
}

type StoreConfig struct {
	Backend string      `yaml:"backend" validate:"oneof=file redis"`
	Dir     string      `yaml:"dir" validate:"required_if=Backend file"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	Prefix   string        `yaml:"prefix"`
	Timeout  time.Duration `yaml:"timeout" validate:"gte=0"`
}

type SearchConfig struct {
	Limit     int `yaml:"limit" validate:"gt=0"`
	CacheSize int `yaml:"cache_size" validate:"gt=0"`
}

// TokenizerConfig toggles optional preprocessing. Off by default so the
// token stream matches plain punctuation stripping.
type TokenizerConfig struct {
	StripMarkup bool `yaml:"strip_markup"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// MetricsConfig names the Prometheus textfile written at exit; empty
// disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

var validate = validator.New()

// Load reads path when it exists, falls back to defaults when it does not,
// then applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if cfg.Store.Backend == "redis" && cfg.Store.Redis.Addr == "" {
		return nil, errors.New("invalid config: store.redis.addr is required for the redis backend")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Data: DataConfig{
			Corpus:    "./data/movies.json",
			StopWords: "./data/stopwords.txt",
		},
		Store: StoreConfig{
			Backend: "file",
			Dir:     "./cache",
			Redis: RedisConfig{
				Addr:    "localhost:6379",
				Prefix:  "hoopla",
				Timeout: 5 * time.Second,
			},
		},
		Search: SearchConfig{
			Limit:     5,
			CacheSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// applyEnvOverrides reads HOOPLA_* variables on top of the file values.
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"HOOPLA_DATA_CORPUS":          &cfg.Data.Corpus,
		"HOOPLA_DATA_STOPWORDS":       &cfg.Data.StopWords,
		"HOOPLA_STORE_BACKEND":        &cfg.Store.Backend,
		"HOOPLA_STORE_DIR":            &cfg.Store.Dir,
		"HOOPLA_STORE_REDIS_ADDR":     &cfg.Store.Redis.Addr,
		"HOOPLA_STORE_REDIS_PASSWORD": &cfg.Store.Redis.Password,
		"HOOPLA_STORE_REDIS_PREFIX":   &cfg.Store.Redis.Prefix,
		"HOOPLA_LOGGING_LEVEL":        &cfg.Logging.Level,
		"HOOPLA_LOGGING_FORMAT":       &cfg.Logging.Format,
		"HOOPLA_METRICS_TEXTFILE":     &cfg.Metrics.Textfile,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"HOOPLA_STORE_REDIS_DB":    &cfg.Store.Redis.DB,
		"HOOPLA_SEARCH_LIMIT":      &cfg.Search.Limit,
		"HOOPLA_SEARCH_CACHE_SIZE": &cfg.Search.CacheSize,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	if v := os.Getenv("HOOPLA_TOKENIZER_STRIP_MARKUP"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HOOPLA_TOKENIZER_STRIP_MARKUP: %w", err)
		}
		cfg.Tokenizer.StripMarkup = b
	}
	if v := os.Getenv("HOOPLA_STORE_REDIS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HOOPLA_STORE_REDIS_TIMEOUT: %w", err)
		}
		cfg.Store.Redis.Timeout = d
	}
	return nil
}
