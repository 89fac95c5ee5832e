package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "match.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "lexicon", cfg.SoftSkillStrategy)
	assert.Equal(t, 10, cfg.Ranker.DefaultTopN)

	require.NoError(t, validate.Struct(cfg))
}

func TestLoad(t *testing.T) {
	t.Run("no file keeps defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
log_level: debug
cache_ttl: 30m
redis_addr: localhost:6379
ranker:
  default_top_n: 25
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr)
		assert.Equal(t, 25, cfg.Ranker.DefaultTopN)
		// Untouched nested fields keep their defaults.
		assert.Equal(t, Default().Ranker.TieEpsilon, cfg.Ranker.TieEpsilon)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := writeConfigFile(t, "log_level: debug\n")
		t.Setenv("MATCH_LOG_LEVEL", "warn")
		t.Setenv("MATCH_RANKER__MAX_CONCURRENCY", "4")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, 4, cfg.Ranker.MaxConcurrency)
	})

	t.Run("MATCH_CONFIG points at the file", func(t *testing.T) {
		path := writeConfigFile(t, "softskill_strategy: model\n")
		t.Setenv("MATCH_CONFIG", path)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "model", cfg.SoftSkillStrategy)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, "log_level: verbose\n"))
		require.Error(t, err)

		_, err = Load(writeConfigFile(t, "cache_ttl: 10ms\n"))
		require.Error(t, err)

		_, err = Load(writeConfigFile(t, "softskill_strategy: oracle\n"))
		require.Error(t, err)
	})
}

func TestSlogLevel(t *testing.T) {
	for name, want := range map[string]string{
		"debug": "DEBUG", "info": "INFO", "warn": "WARN", "error": "ERROR",
	} {
		cfg := Default()
		cfg.LogLevel = name
		assert.Equal(t, want, cfg.SlogLevel().String())
	}
}
