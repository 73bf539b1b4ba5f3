package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"MODE", "HTTP_ADDR", "DB_DRIVER", "MCQ_SCORING", "TOKEN_TTL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	assert.Equal(t, ModeOffline, cfg.Mode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "binary", cfg.MCQScoring)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, cfg.CORSOriginsOffline, cfg.CORSOrigins())
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("AUTH_HMAC_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("MCQ_SCORING", "rational")
	t.Setenv("OPEN_ENDED_NORMALIZE", "yes")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("REQUEST_TIMEOUT", "bogus")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ModeOnline, cfg.Mode)
	assert.True(t, cfg.OpenEndedNormalize)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		t.Setenv("MODE", "")
		return FromEnv()
	}
	cfg := base()
	cfg.DBDriver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.MCQScoring = "partial"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Mode = ModeOnline
	cfg.AuthHMACSecret = "dev-secret-change"
	assert.Error(t, cfg.Validate())
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("QUIZCRAFT_TEST_ADDR=:9999\n"), 0o600))
	t.Setenv("QUIZCRAFT_TEST_ADDR", "")
	require.NoError(t, os.Unsetenv("QUIZCRAFT_TEST_ADDR"))
	t.Setenv("HTTP_ADDR", "")

	_, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", os.Getenv("QUIZCRAFT_TEST_ADDR"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoad_DoesNotValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	t.Setenv("DB_DRIVER", "mysql")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Error(t, cfg.Validate())
}
