// Package config loads engine configuration by layering defaults, an
// optional YAML file, and environment variables.
//
// Precedence (low -> high):
//  1. defaults (Default())
//  2. file (YAML) if MATCH_CONFIG is set or a path is passed to Load
//  3. env (prefix MATCH_, double underscore for nesting:
//     MATCH_RANKER__MAX_CONCURRENCY -> ranker.max_concurrency)
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jusmatch/matchengine/internal/ranking"
	"github.com/jusmatch/matchengine/internal/softskill"
)

var validate = validator.New()

// Config contains process configuration for the matching engine.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// WeightsFile points at a YAML preset override document. Empty keeps
	// the built-in presets.
	WeightsFile string `koanf:"weights_file"`

	// RedisAddr enables the shared static-feature cache when set, e.g.
	// "localhost:6379". Empty runs with the in-process cache only.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"min=0"`

	// CacheTTL bounds how long cached static features stay fresh.
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"min=1s"`

	// SoftSkillStrategy selects the review analyzer: lexicon or model.
	SoftSkillStrategy string `koanf:"softskill_strategy" validate:"oneof=lexicon model"`

	// SoftSkillModel names the chat model used by the model strategy.
	SoftSkillModel string `koanf:"softskill_model"`

	// OpenAIAPIKey authorizes the model strategy. Empty degrades to the
	// lexicon analyzer.
	OpenAIAPIKey string `koanf:"openai_api_key"`

	// Ranker tunes the ranking pass itself.
	Ranker ranking.Config `koanf:"ranker"`
}

// Default returns the production defaults.
func Default() *Config {
	return &Config{
		LogLevel:          "info",
		CacheTTL:          15 * time.Minute,
		SoftSkillStrategy: string(softskill.StrategyLexicon),
		SoftSkillModel:    softskill.DefaultModel,
		Ranker:            ranking.DefaultConfig(),
	}
}

// Load builds a Config. path overrides the MATCH_CONFIG file location;
// pass "" to use the environment variable or no file at all.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("MATCH_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// MATCH_CACHE_TTL -> cache_ttl, MATCH_RANKER__TIE_EPSILON -> ranker.tie_epsilon.
	envProvider := env.Provider("MATCH_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "MATCH_"))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps LogLevel onto the slog scale. Unknown values already
// fail validation, so this only sees the four accepted names.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
