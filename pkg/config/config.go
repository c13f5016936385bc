package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Catalog   CatalogConfig
	Realtime  RealtimeConfig
	Websocket WebsocketConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig governs course record caching and dashboard fan-out.
type CatalogConfig struct {
	CacheEnabled     bool
	CacheTTL         time.Duration
	// CourseFetchLimit caps concurrent course lookups while building a dashboard.
	CourseFetchLimit int
}

// RealtimeConfig configures the change-notification listener and its dispatcher.
type RealtimeConfig struct {
	Channel         string
	MinReconnect    time.Duration
	MaxReconnect    time.Duration
	PingInterval    time.Duration
	DispatchWorkers int
	DispatchBuffer  int
}

// WebsocketConfig tunes live screen connections.
type WebsocketConfig struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		CacheEnabled:     v.GetBool("ENABLE_COURSE_CACHE"),
		CacheTTL:         parseDuration(v.GetString("COURSE_CACHE_TTL"), 10*time.Minute),
		CourseFetchLimit: v.GetInt("DASHBOARD_FETCH_LIMIT"),
	}

	cfg.Realtime = RealtimeConfig{
		Channel:         v.GetString("REALTIME_CHANNEL"),
		MinReconnect:    parseDuration(v.GetString("REALTIME_MIN_RECONNECT"), 10*time.Second),
		MaxReconnect:    parseDuration(v.GetString("REALTIME_MAX_RECONNECT"), time.Minute),
		PingInterval:    parseDuration(v.GetString("REALTIME_PING_INTERVAL"), 90*time.Second),
		DispatchWorkers: v.GetInt("REALTIME_DISPATCH_WORKERS"),
		DispatchBuffer:  v.GetInt("REALTIME_BUFFER"),
	}

	cfg.Websocket = WebsocketConfig{
		WriteTimeout: parseDuration(v.GetString("WS_WRITE_TIMEOUT"), 10*time.Second),
		PingInterval: parseDuration(v.GetString("WS_PING_INTERVAL"), 30*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "course_catalog")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_COURSE_CACHE", false)
	v.SetDefault("COURSE_CACHE_TTL", "10m")
	v.SetDefault("DASHBOARD_FETCH_LIMIT", 8)

	v.SetDefault("REALTIME_CHANNEL", "catalog_changes")
	v.SetDefault("REALTIME_MIN_RECONNECT", "10s")
	v.SetDefault("REALTIME_MAX_RECONNECT", "1m")
	v.SetDefault("REALTIME_PING_INTERVAL", "90s")
	v.SetDefault("REALTIME_DISPATCH_WORKERS", 1)
	v.SetDefault("REALTIME_BUFFER", 64)

	v.SetDefault("WS_WRITE_TIMEOUT", "10s")
	v.SetDefault("WS_PING_INTERVAL", "30s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
