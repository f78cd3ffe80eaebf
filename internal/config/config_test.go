package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/study-buddy/server/internal/core"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, 1<<20, cfg.HTTP.BodyLimit)
	assert.Equal(t, "memory", cfg.Conversation.Store)
	assert.Equal(t, 24*time.Hour, cfg.Conversation.TTL)
	assert.Equal(t, 20*time.Second, cfg.Conversation.CapabilityTimeout)
	assert.Equal(t, 5, cfg.Conversation.Classifier.MaxTurns)
	assert.Equal(t, "log", cfg.PlanStore.Kind)
	assert.Equal(t, 5*time.Second, cfg.PlanStore.PersistTimeout)
	assert.Equal(t, "data/plans.db", cfg.SQLite.Path)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.Classifier.Model)
	assert.Equal(t, "gemini-2.5-flash", cfg.Response.Model)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CONVERSATION_STORE", "Redis")
	t.Setenv("CONVERSATION_TTL", "90m")
	t.Setenv("CONVERSATION_CLASSIFIER_MAX_TURNS", "2")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("PLAN_STORE", "sqlite")
	t.Setenv("PLAN_SQLITE_PATH", "/tmp/plans.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, core.Production, cfg.Environment)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "redis", cfg.Conversation.Store)
	assert.Equal(t, 90*time.Minute, cfg.Conversation.TTL)
	assert.Equal(t, 2, cfg.Conversation.Classifier.MaxTurns)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, "sqlite", cfg.PlanStore.Kind)
	assert.Equal(t, "/tmp/plans.db", cfg.SQLite.Path)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RESPONSE_MODEL=gemini-2.5-pro\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("RESPONSE_MODEL") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", cfg.Response.Model)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CONVERSATION_STORE", "postgres"},
		{"PLAN_STORE", "s3"},
		{"HTTP_PORT", "http"},
		{"CONVERSATION_TTL", "forever"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
