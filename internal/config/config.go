package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	envServerAddress   = "SERVER_ADDRESS"
	envDatabaseDSN     = "DATABASE_DSN"
	envSQLitePath      = "SQLITE_PATH"
	envFileStoragePath = "FILE_STORAGE_PATH"
	envUsersFile       = "USERS_FILE"
	envTrackingSecret  = "TRACKING_SECRET"
	envCookieSecure    = "COOKIE_SECURE"
	envCookieHTTPOnly  = "COOKIE_HTTP_ONLY"
	envCookieSameSite  = "COOKIE_SAME_SITE"
	envRedisAddr       = "REDIS_ADDR"
	envRedisPassword   = "REDIS_PASSWORD"
	envRedisDB         = "REDIS_DB"
	envOneTimeTokenTTL = "ONE_TIME_TOKEN_TTL"
	envRateLimit       = "RATE_LIMIT"
	envRateBurst       = "RATE_BURST"
	envLogLevel        = "LOG_LEVEL"
	envTimezone        = "TIMEZONE"
)

const (
	defaultServerAddress  = "localhost:8000"
	defaultUsersFile      = "users.yaml"
	defaultCookieHTTPOnly = true
	defaultCookieSameSite = "lax"
	defaultRateBurst      = 5
	defaultLogLevel       = "info"
	defaultTimezone       = "Asia/Tokyo"

	minTrackingSecretLen = 32
)

type Config struct {
	ServerAddress   string `validate:"required"`
	DatabaseDSN     string
	SQLitePath      string
	FileStoragePath string
	UsersFile       string `validate:"required"`

	TrackingSecret string `validate:"required,min=32"` // не меньше 32 байт после декодирования base64
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite string `validate:"oneof=lax strict none"`

	RedisAddr       string `validate:"omitempty,hostname_port"`
	RedisPassword   string
	RedisDB         int           `validate:"gte=0"`
	OneTimeTokenTTL time.Duration `validate:"gte=0"`

	RateLimit float64 `validate:"gte=0"` // запросов в секунду на пользователя, 0 - без ограничения
	RateBurst int     `validate:"gte=1"`

	LogLevel string `validate:"oneof=trace debug info warn error"`
	Timezone string `validate:"required"`
}

// NewConfig собирает конфигурацию: значения по умолчанию, затем .env,
// затем флаги командной строки, затем переменные окружения.
func NewConfig(args []string) (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		ServerAddress:  defaultServerAddress,
		UsersFile:      defaultUsersFile,
		CookieHTTPOnly: defaultCookieHTTPOnly,
		CookieSameSite: defaultCookieSameSite,
		RateBurst:      defaultRateBurst,
		LogLevel:       defaultLogLevel,
		Timezone:       defaultTimezone,
	}

	fsFlags := flag.NewFlagSet("secretboard", flag.ContinueOnError)
	fsFlags.StringVar(&cfg.ServerAddress, "a", cfg.ServerAddress, "Server address")
	fsFlags.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")
	fsFlags.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "SQLite database path")
	fsFlags.StringVar(&cfg.FileStoragePath, "f", cfg.FileStoragePath, "File storage path for in-memory posts")
	fsFlags.StringVar(&cfg.UsersFile, "users", cfg.UsersFile, "Users YAML file")
	fsFlags.BoolVar(&cfg.CookieSecure, "cookie-secure", cfg.CookieSecure, "Set Secure on tracking cookie")
	fsFlags.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for one-time tokens")
	fsFlags.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Submissions per second per user (0 disables)")
	fsFlags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	if err := fsFlags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	cfg.applyEnv(envServerAddress, &cfg.ServerAddress)
	cfg.applyEnv(envDatabaseDSN, &cfg.DatabaseDSN)
	cfg.applyEnv(envSQLitePath, &cfg.SQLitePath)
	cfg.applyEnv(envFileStoragePath, &cfg.FileStoragePath)
	cfg.applyEnv(envUsersFile, &cfg.UsersFile)
	cfg.applyEnv(envTrackingSecret, &cfg.TrackingSecret)
	cfg.applyEnvBool(envCookieSecure, &cfg.CookieSecure)
	cfg.applyEnvBool(envCookieHTTPOnly, &cfg.CookieHTTPOnly)
	cfg.applyEnv(envCookieSameSite, &cfg.CookieSameSite)
	cfg.applyEnv(envRedisAddr, &cfg.RedisAddr)
	cfg.applyEnv(envRedisPassword, &cfg.RedisPassword)
	cfg.applyEnvInt(envRedisDB, &cfg.RedisDB)
	cfg.applyEnvDuration(envOneTimeTokenTTL, &cfg.OneTimeTokenTTL)
	cfg.applyEnvFloat(envRateLimit, &cfg.RateLimit)
	cfg.applyEnvInt(envRateBurst, &cfg.RateBurst)
	cfg.applyEnv(envLogLevel, &cfg.LogLevel)
	cfg.applyEnv(envTimezone, &cfg.Timezone)

	cfg.CookieSameSite = strings.ToLower(cfg.CookieSameSite)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.ensureTrackingSecret(); err != nil {
		return nil, err
	}
	cfg.normalizeServerAddress()
	if cfg.FileStoragePath != "" {
		cfg.FileStoragePath = resolveFilePath(cfg.FileStoragePath)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SameSite переводит строковое значение в http.SameSite
func (c *Config) SameSite() http.SameSite {
	switch c.CookieSameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// TrackingKey - секрет подписи tracking_id в байтах
func (c *Config) TrackingKey() []byte {
	if key, err := base64.StdEncoding.DecodeString(c.TrackingSecret); err == nil && len(key) >= minTrackingSecretLen {
		return key
	}
	return []byte(c.TrackingSecret)
}

func (c *Config) applyEnv(key string, target *string) {
	if val, ok := os.LookupEnv(key); ok {
		*target = val
	}
}

func (c *Config) applyEnvBool(key string, target *bool) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			*target = b
		}
	}
}

func (c *Config) applyEnvInt(key string, target *int) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			*target = i
		}
	}
}

func (c *Config) applyEnvFloat(key string, target *float64) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*target = f
		}
	}
}

func (c *Config) applyEnvDuration(key string, target *time.Duration) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			*target = d
		}
	}
}

func (c *Config) ensureTrackingSecret() error {
	if c.TrackingSecret != "" {
		return nil
	}

	// Для разработки генерируем случайный ключ: после рестарта все tracking_id будут перевыпущены
	key := make([]byte, minTrackingSecretLen)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate tracking secret: %w", err)
	}
	c.TrackingSecret = base64.StdEncoding.EncodeToString(key)
	fmt.Fprintln(os.Stderr, "WARNING: Using auto-generated tracking secret. For production, set TRACKING_SECRET environment variable.")
	return nil
}

func resolveFilePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return absPath
}

func (c *Config) normalizeServerAddress() {
	if strings.HasPrefix(c.ServerAddress, ":") {
		c.ServerAddress = "localhost" + c.ServerAddress
	}
}
