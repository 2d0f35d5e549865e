package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "ENVIRONMENT", "LOG_MODE", "DB_HOST", "DB_PORT", "DB_USER", "DB_NAME", "DB_SSLMODE",
	"QUESTION_BANK_PATH", "QUESTION_TIME_SECONDS", "QUIZ_UNLOCK_ALL",
	"PERSIST_QUEUE_SIZE", "PERSIST_TIMEOUT_SECONDS", "CORS_ORIGINS",
	"SEED_DEMO_DATA", "SEED_DEMO_PASSWORD", "SESSION_IDLE_TIMEOUT_MINUTES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	clearEnv(t)
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "development", cfg.LogMode)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, 60, cfg.QuestionTime)
	assert.Equal(t, 64, cfg.PersistQueueSize)
	assert.Equal(t, 5*time.Second, cfg.PersistTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTimeout)
	assert.False(t, cfg.UnlockAllLevels)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.SeedDemoData)
	assert.Equal(t, "password123", cfg.DemoPassword)
}

func TestDemoSeedNeverRunsInProduction(t *testing.T) {
	setRequired(t)
	t.Setenv("SEED_DEMO_DATA", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.SeedDemoData)

	t.Setenv("ENVIRONMENT", "production")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.SeedDemoData)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("QUESTION_TIME_SECONDS", "30")
	t.Setenv("QUIZ_UNLOCK_ALL", "true")
	t.Setenv("PERSIST_TIMEOUT_SECONDS", "2")
	t.Setenv("CORS_ORIGINS", "https://quiz.example.com, https://admin.example.com,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "production", cfg.LogMode)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, 30, cfg.QuestionTime)
	assert.True(t, cfg.UnlockAllLevels)
	assert.Equal(t, 2*time.Second, cfg.PersistTimeout)
	assert.Equal(t, []string{"https://quiz.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing db password", map[string]string{"DB_PASSWORD": "", "JWT_SECRET": "x"}, "DB_PASSWORD is required"},
		{"missing jwt secret", map[string]string{"DB_PASSWORD": "x", "JWT_SECRET": ""}, "JWT_SECRET is required"},
		{"bad port", map[string]string{"DB_PASSWORD": "x", "JWT_SECRET": "x", "DB_PORT": "five"}, "invalid DB_PORT"},
		{"bad toggle", map[string]string{"DB_PASSWORD": "x", "JWT_SECRET": "x", "QUIZ_UNLOCK_ALL": "maybe"}, "invalid QUIZ_UNLOCK_ALL"},
		{"zero question time", map[string]string{"DB_PASSWORD": "x", "JWT_SECRET": "x", "QUESTION_TIME_SECONDS": "0"}, "must be positive"},
		{"zero idle timeout", map[string]string{"DB_PASSWORD": "x", "JWT_SECRET": "x", "SESSION_IDLE_TIMEOUT_MINUTES": "0"}, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
