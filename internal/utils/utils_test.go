package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	t.Setenv("PG_DSN", "")
	t.Setenv("PG_USER", "runner")
	t.Setenv("PG_PASSWORD", "pw")
	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_PORT", "5433")
	t.Setenv("PG_DB", "marathon")
	t.Setenv("PG_SSLMODE", "")
	assert.Equal(t, "postgres://runner:pw@db:5433/marathon?sslmode=disable", BuildPostgresDSNFromEnv())

	t.Setenv("PG_DSN", "postgres://x@y/z")
	assert.Equal(t, "postgres://x@y/z", BuildPostgresDSNFromEnv())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "abc")
	assert.Equal(t, 7, EnvInt("X_INT", 7))
	t.Setenv("X_INT", "12")
	assert.Equal(t, 12, EnvInt("X_INT", 7))

	t.Setenv("X_DUR", "90m")
	assert.Equal(t, 90*time.Minute, EnvDuration("X_DUR", time.Hour))
	t.Setenv("X_DUR", "-1s")
	assert.Equal(t, time.Hour, EnvDuration("X_DUR", time.Hour))

	t.Setenv("X_BOOL", "true")
	assert.True(t, EnvBool("X_BOOL", false))
	t.Setenv("X_BOOL", "maybe")
	assert.False(t, EnvBool("X_BOOL", false))
}

func TestOpenRedisFromEnv_Disabled(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	assert.Nil(t, OpenRedisFromEnv())
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_ENABLED", "false")
	assert.Nil(t, OpenRedisFromEnv())
}

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "certs", "server.crt")
	key := filepath.Join(dir, "certs", "server.key")
	require.NoError(t, EnsureSelfSignedCert(cert, key, "marathon.local"))
	first, err := os.ReadFile(cert)
	require.NoError(t, err)

	require.NoError(t, EnsureSelfSignedCert(cert, key, "marathon.local"))
	second, err := os.ReadFile(cert)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
