package config

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(envTrackingSecret, testSecret)

	cfg, err := NewConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, defaultServerAddress, cfg.ServerAddress)
	assert.Equal(t, defaultUsersFile, cfg.UsersFile)
	assert.True(t, cfg.CookieHTTPOnly)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, http.SameSiteLaxMode, cfg.SameSite())
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Zero(t, cfg.RateLimit)
	assert.Equal(t, []byte(testSecret), cfg.TrackingKey())
}

func TestNewConfig_EnvOverridesFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(envTrackingSecret, testSecret)
	t.Setenv(envServerAddress, ":9090")
	t.Setenv(envCookieSecure, "true")
	t.Setenv(envCookieSameSite, "Strict")
	t.Setenv(envOneTimeTokenTTL, "15m")
	t.Setenv(envRateLimit, "0.5")
	t.Setenv(envRedisAddr, "localhost:6379")

	cfg, err := NewConfig([]string{"-a", "127.0.0.1:7000", "-log-level", "debug"})
	require.NoError(t, err)

	assert.Equal(t, "localhost:9090", cfg.ServerAddress)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, http.SameSiteStrictMode, cfg.SameSite())
	assert.Equal(t, 15*time.Minute, cfg.OneTimeTokenTTL)
	assert.Equal(t, 0.5, cfg.RateLimit)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestNewConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TRACKING_SECRET="+testSecret+"\nSQLITE_PATH=board.db\n"), 0600))
	// godotenv не перезаписывает уже заданные переменные; после теста их нужно убрать
	t.Setenv(envTrackingSecret, "")
	os.Unsetenv(envTrackingSecret)
	t.Setenv(envSQLitePath, "")
	os.Unsetenv(envSQLitePath)

	cfg, err := NewConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.TrackingSecret)
	assert.Equal(t, "board.db", cfg.SQLitePath)
}

func TestNewConfig_GeneratedSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(envTrackingSecret, "")
	os.Unsetenv(envTrackingSecret)

	cfg, err := NewConfig(nil)
	require.NoError(t, err)
	assert.Len(t, cfg.TrackingKey(), minTrackingSecretLen)
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "Короткий секрет", env: map[string]string{envTrackingSecret: "short"}},
		{name: "Неизвестный SameSite", env: map[string]string{envTrackingSecret: testSecret, envCookieSameSite: "sometimes"}},
		{name: "Неизвестный уровень логов", env: map[string]string{envTrackingSecret: testSecret, envLogLevel: "loud"}},
		{name: "Адрес Redis без порта", env: map[string]string{envTrackingSecret: testSecret, envRedisAddr: "redis"}},
		{name: "Отрицательный лимит", env: map[string]string{envTrackingSecret: testSecret}, args: []string{"-rate-limit", "-1"}},
		{name: "Неизвестный флаг", env: map[string]string{envTrackingSecret: testSecret}, args: []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewConfig(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestNewConfig_FileStoragePathResolved(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(envTrackingSecret, testSecret)
	t.Setenv(envFileStoragePath, "data/posts.jsonl")

	cfg, err := NewConfig(nil)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.FileStoragePath))
	assert.Equal(t, "posts.jsonl", filepath.Base(cfg.FileStoragePath))
}
