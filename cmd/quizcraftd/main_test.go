package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/quizcraft/internal/config"
	"github.com/mind-engage/quizcraft/internal/quiz"
)

func TestApplyFlags(t *testing.T) {
	cfg := config.Config{HTTPAddr: ":8080", DBDriver: "sqlite", LogLevel: "info"}
	applyFlags(&cfg, ":9090", "memory", "", "debug")
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Empty(t, cfg.DBDSN)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := openStore(ctx, config.Config{DBDriver: "memory"})
	require.NoError(t, err)
	closeFn()
	assert.NotNil(t, s)

	dsn := "file:" + filepath.Join(t.TempDir(), "q.db") + "?_pragma=foreign_keys(1)"
	s, closeFn, err = openStore(ctx, config.Config{DBDriver: "sqlite", DBDSN: dsn})
	require.NoError(t, err)
	defer closeFn()
	_, ok := s.(*quiz.SQLStore)
	assert.True(t, ok)
}

func TestRun_BadFlag(t *testing.T) {
	assert.Error(t, run(context.Background(), []string{"--no-such-flag"}))
}

func TestLoadConfig_FlagsOverrideInvalidEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, nil, 0o600))
	t.Setenv("DB_DRIVER", "mysql")

	_, err := loadConfig([]string{"--env-file", envFile})
	assert.Error(t, err)

	cfg, err := loadConfig([]string{"--env-file", envFile, "--db-driver", "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DBDriver)
}
