package config

import (
	"fmt"
	"os"
	"strconv"
)

// Ratings backend selectors.
const (
	RatingsMemory   = "memory"
	RatingsPostgres = "postgres"
	RatingsTMDB     = "tmdb"
)

// Config captures all runtime configuration derived from environment variables.
// The TMDB API key lives server-side only; it is never exposed to clients.
type Config struct {
	Port             string
	TMDBBaseURL      string
	TMDBAPIKey       string
	TMDBTimeoutSecs  int
	TMDBRateLimit    int
	ReadTimeoutSecs  int
	WriteTimeoutSecs int
	IdleTimeoutSecs  int
	RatingsBackend   string
	DBURL            string
	DBMaxConns       int
	DBMinConns       int
	DBMaxIdleSecs    int
	DBMaxLifeSecs    int
	DBConnTimeout    int
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		TMDBBaseURL:      getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBAPIKey:       os.Getenv("TMDB_API_KEY"),
		TMDBTimeoutSecs:  getEnvInt("TMDB_TIMEOUT_SECS", 10),
		TMDBRateLimit:    getEnvInt("TMDB_RATE_LIMIT", 40),
		ReadTimeoutSecs:  getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		RatingsBackend:   getEnv("RATINGS_BACKEND", RatingsMemory),
		DBURL:            os.Getenv("DB_URL"),
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:       getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:    getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:    getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeout:    getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
	}

	if cfg.TMDBAPIKey == "" {
		return Config{}, fmt.Errorf("TMDB_API_KEY is required")
	}
	if cfg.TMDBBaseURL == "" {
		return Config{}, fmt.Errorf("TMDB_BASE_URL cannot be empty")
	}
	if cfg.TMDBTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("TMDB_TIMEOUT_SECS must be positive")
	}
	if cfg.TMDBRateLimit <= 0 {
		return Config{}, fmt.Errorf("TMDB_RATE_LIMIT must be positive")
	}
	switch cfg.RatingsBackend {
	case RatingsMemory, RatingsTMDB:
	case RatingsPostgres:
		if cfg.DBURL == "" {
			return Config{}, fmt.Errorf("DB_URL is required when RATINGS_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("RATINGS_BACKEND must be one of memory, postgres, tmdb")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
