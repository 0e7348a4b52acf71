package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Clark-Hu/readlog/internal/analytics"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string
	DBURL             string
	AuthURL           string
	AuthAPIKey        string
	AuthTimeoutSecs   int
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int
	RatingScale       analytics.RatingScale
	DefaultGoal       int
	FeedPageSize      int
	LogLevel          string
}

// Load reads configuration from environment variables, applying defaults and validation.
// When CONFIG_FILE points at a YAML document of KEY: value pairs, those values
// act as defaults that the environment still overrides.
func Load() (Config, error) {
	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:              src.get("PORT", "8080"),
		DBURL:             src.get("DB_URL", ""),
		AuthURL:           src.get("AUTH_URL", ""),
		AuthAPIKey:        src.get("AUTH_API_KEY", ""),
		AuthTimeoutSecs:   src.getInt("AUTH_TIMEOUT_SECS", 5),
		ReadTimeoutSecs:   src.getInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:  src.getInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:   src.getInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:        src.getInt("DB_MAX_CONNS", 20),
		DBMinConns:        src.getInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:     src.getInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:     src.getInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs: src.getInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:  src.getInt("DB_STATEMENT_CACHE_CAPACITY", 256),
		DefaultGoal:       src.getInt("DEFAULT_GOAL", analytics.DefaultGoal),
		FeedPageSize:      src.getInt("FEED_PAGE_SIZE", 20),
		LogLevel:          strings.ToLower(src.get("LOG_LEVEL", "info")),
	}

	scale, err := analytics.ParseScale(src.get("RATING_SCALE", analytics.HalfStar.Name))
	if err != nil {
		return Config{}, fmt.Errorf("RATING_SCALE: %w", err)
	}
	cfg.RatingScale = scale

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.AuthURL == "" {
		return Config{}, fmt.Errorf("AUTH_URL is required")
	}
	if cfg.AuthAPIKey == "" {
		return Config{}, fmt.Errorf("AUTH_API_KEY is required")
	}
	if cfg.AuthTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("AUTH_TIMEOUT_SECS must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if cfg.DefaultGoal <= 0 {
		return Config{}, fmt.Errorf("DEFAULT_GOAL must be positive")
	}
	if cfg.FeedPageSize <= 0 || cfg.FeedPageSize > 100 {
		return Config{}, fmt.Errorf("FEED_PAGE_SIZE must be between 1 and 100")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	return cfg, nil
}

// LoadDatabase reads only the settings needed to reach Postgres. The CLI uses
// it so that maintenance commands do not require identity provider settings.
func LoadDatabase() (Config, error) {
	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		DBURL:             src.get("DB_URL", ""),
		DBMaxConns:        src.getInt("DB_MAX_CONNS", 4),
		DBConnTimeoutSecs: src.getInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:  src.getInt("DB_STATEMENT_CACHE_CAPACITY", 256),
		DefaultGoal:       src.getInt("DEFAULT_GOAL", analytics.DefaultGoal),
	}
	scale, err := analytics.ParseScale(src.get("RATING_SCALE", analytics.HalfStar.Name))
	if err != nil {
		return Config{}, fmt.Errorf("RATING_SCALE: %w", err)
	}
	cfg.RatingScale = scale
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	return cfg, nil
}

type source struct {
	file map[string]string
}

func newSource(path string) (source, error) {
	if path == "" {
		return source{}, nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return source{}, fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	values := make(map[string]string)
	if err := yaml.Unmarshal(payload, &values); err != nil {
		return source{}, fmt.Errorf("parse CONFIG_FILE: %w", err)
	}
	return source{file: values}, nil
}

func (s source) get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if val, ok := s.file[key]; ok && val != "" {
		return val
	}
	return fallback
}

func (s source) getInt(key string, fallback int) int {
	if val := s.get(key, ""); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
