package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, MaskerFixed, cfg.Privacy.Masker)
	assert.Equal(t, "Anonymous Reviewer", cfg.Privacy.AnonymousAuthor)
	assert.False(t, cfg.Privacy.CountBasedExportDone)
	assert.Equal(t, 1000, cfg.Privacy.MaxPages)
	assert.Equal(t, 5*time.Minute, cfg.Privacy.ProductCacheTTL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Redis.URL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PRIVACY_EXPORT_COUNT_DONE", "true")
	t.Setenv("PRIVACY_MASKER", "hash")
	t.Setenv("PRIVACY_MASK_KEY", "secret")
	t.Setenv("REDIS_DIAL_TIMEOUT", "2s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Privacy.CountBasedExportDone)
	assert.Equal(t, MaskerHash, cfg.Privacy.Masker)
	assert.Equal(t, 2*time.Second, cfg.Redis.DialTimeout)
}

func TestValidate(t *testing.T) {
	t.Run("hash masker requires key", func(t *testing.T) {
		t.Setenv("PRIVACY_MASKER", "hash")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PRIVACY_MASK_KEY")
	})

	t.Run("unknown masker", func(t *testing.T) {
		t.Setenv("PRIVACY_MASKER", "rot13")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PRIVACY_MASKER")
	})

	t.Run("a single sweep cannot confirm an erasure", func(t *testing.T) {
		t.Setenv("PRIVACY_MAX_SWEEPS", "1")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PRIVACY_MAX_SWEEPS")
	})

	t.Run("bad log format and page cap are both reported", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "xml")
		t.Setenv("PRIVACY_MAX_PAGES", "0")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LOG_FORMAT")
		assert.Contains(t, err.Error(), "PRIVACY_MAX_PAGES")
	})
}
