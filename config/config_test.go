package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadPostgresRequiresUser(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_USER", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_USER", "recipes")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadS3BackendRequiresBucket(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "s3")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("S3_BUCKET_NAME", "recipe-images")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "recipe-images", cfg.S3Bucket)
}

func TestRedisEnabled(t *testing.T) {
	t.Setenv("REDIS_HOST", "localhost")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.RedisEnabled())
}
