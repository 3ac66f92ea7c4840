// Package config loads nereval settings from a file, the environment and defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/jamesainslie/go-nereval/filter"
	"github.com/jamesainslie/go-nereval/internal/tabular"
)

// EnvPrefix prefixes every environment override, e.g. NEREVAL_LOG_LEVEL.
const EnvPrefix = "NEREVAL"

// Config holds all configuration for the application
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Filter   filter.Config  `mapstructure:"filter"`
	Output   OutputConfig   `mapstructure:"output"`
	Sentence SentenceConfig `mapstructure:"sentence"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json
}

// OutputConfig controls the result tables.
type OutputConfig struct {
	Format string `mapstructure:"format"` // csv, parquet
}

// SentenceConfig holds sentence resolution settings. An empty Model selects the rule
// splitter.
type SentenceConfig struct {
	Model     string  `mapstructure:"model"`
	Tokenizer string  `mapstructure:"tokenizer"`
	Threshold float32 `mapstructure:"threshold"`
	PoolSize  int     `mapstructure:"pool_size"` // 0 selects runtime.NumCPU()
	Workers   int     `mapstructure:"workers"`
}

// Load reads configuration. path may be empty, in which case ./nereval.yaml is used
// when it exists. Environment variables override the file, and the file overrides defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("nereval")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	f := filter.DefaultConfig()
	v.SetDefault("filter.allowed_types", f.AllowedTypes)
	v.SetDefault("filter.exception_concepts", f.ExceptionConcepts)
	v.SetDefault("filter.concept_length", f.ConceptLength)
	v.SetDefault("filter.concept_prefix", f.ConceptPrefix)
	v.SetDefault("filter.problem_only", f.ProblemOnly)
	v.SetDefault("filter.problem_semantic", f.ProblemSemantic)

	v.SetDefault("output.format", string(tabular.FormatCSV))

	v.SetDefault("sentence.model", "")
	v.SetDefault("sentence.tokenizer", "")
	v.SetDefault("sentence.threshold", 0.025)
	v.SetDefault("sentence.pool_size", 0)
	v.SetDefault("sentence.workers", 4)
}

// Validate checks values that cannot be decoded into a usable setting.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if _, err := tabular.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Sentence.Model != "" && c.Sentence.Tokenizer == "" {
		return errors.New("config: sentence.tokenizer is required with sentence.model")
	}
	return nil
}

// Logger builds a slog logger writing to w.
func (l LogConfig) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", s, err)
	}
	return level, nil
}
