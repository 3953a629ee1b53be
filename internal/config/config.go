package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string        `env:"SERVER_PORT" envDefault:"5000"`
	ServerReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT" envDefault:"15s"`
	ServerWriteTimeout      time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ServerIdleTimeout       time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	RequestTimeout          time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"1"`

	JWTSecret        string        `env:"JWT_SECRET"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	JWTAccessTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	JWTRefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10"`
	ResetTokenTTL    time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	ClientURL        string        `env:"CLIENT_URL" envDefault:"http://localhost:5173"`

	EmailHost string `env:"EMAIL_HOST"`
	EmailPort int    `env:"EMAIL_PORT" envDefault:"587"`
	EmailUser string `env:"EMAIL_USER"`
	EmailPass string `env:"EMAIL_PASS"`
	EmailFrom string `env:"EMAIL_FROM" envDefault:"no-reply@watchlist.local"`

	TMDBAPIKey  string        `env:"TMDB_API_KEY"`
	TMDBBaseURL string        `env:"TMDB_BASE_URL" envDefault:"https://api.themoviedb.org/3"`
	TMDBTimeout time.Duration `env:"TMDB_TIMEOUT" envDefault:"10s"`

	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	SearchCacheTTL time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"10m"`

	CORSOrigins      []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
	RateLimitRPM     int      `env:"RATE_LIMIT_RPM" envDefault:"100"`
	AuthRateLimitRPM int      `env:"AUTH_RATE_LIMIT_RPM" envDefault:"10"`

	AvatarRoot    string `env:"AVATAR_ROOT" envDefault:"./data/avatars"`
	AvatarSize    int    `env:"AVATAR_SIZE" envDefault:"256"`
	MaxAvatarSize int64  `env:"MAX_AVATAR_SIZE" envDefault:"5242880"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"pretty"`
	DocsPath  string `env:"DOCS_PATH" envDefault:"./docs/openapi.yaml"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerPort) == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if strings.TrimSpace(c.JWTRefreshSecret) == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if c.JWTSecret == c.JWTRefreshSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}

	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive")
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	if c.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be positive")
	}

	if strings.TrimSpace(c.TMDBAPIKey) == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS are inconsistent")
	}

	if strings.TrimSpace(c.AvatarRoot) == "" {
		return fmt.Errorf("AVATAR_ROOT cannot be empty")
	}

	if c.AvatarSize <= 0 || c.MaxAvatarSize <= 0 {
		return fmt.Errorf("AVATAR_SIZE and MAX_AVATAR_SIZE must be positive")
	}

	return nil
}

// MailEnabled reports whether outbound SMTP is configured.
func (c *Config) MailEnabled() bool {
	return strings.TrimSpace(c.EmailHost) != ""
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
