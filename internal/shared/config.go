package shared

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	LogFile     string

	BackendURL     string
	BackendRPS     int
	BackendTimeout time.Duration
	TunnelSkip     string

	BookingsPageSize int
	ImagesMax        int
	ImagesMinCreate  int
	SessionTTL       time.Duration

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	AuditDSN      string
	ImportWorkers int
}

var ErrMissingBackendURL = errors.New("BACKEND_URL is required")

// Load reads the environment, after merging an optional .env file. It fails
// when the backend base URL is absent since nothing works without it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env present but unreadable")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric setting")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		LogFile:     env("LOG_FILE", ""),

		BackendURL:     strings.TrimRight(env("BACKEND_URL", ""), "/"),
		BackendRPS:     atoi("BACKEND_RPS", 10),
		BackendTimeout: time.Duration(atoi("BACKEND_TIMEOUT_SECONDS", 20)) * time.Second,
		TunnelSkip:     env("TUNNEL_SKIP_WARNING", "6941"),

		BookingsPageSize: atoi("BOOKINGS_PAGE_SIZE", 10),
		ImagesMax:        atoi("IMAGES_MAX", 6),
		ImagesMinCreate:  atoi("IMAGES_MIN_ON_CREATE", 0),
		SessionTTL:       time.Duration(atoi("SESSION_TTL_SECONDS", 3600)) * time.Second,

		RedisAddr: env("REDIS_ADDR", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		RedisPass: env("REDIS_PASSWORD", ""),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 30)) * time.Second,

		AuditDSN:      env("AUDIT_MYSQL_DSN", ""),
		ImportWorkers: atoi("IMPORT_WORKERS", 4),
	}
	if c.BackendURL == "" {
		return c, ErrMissingBackendURL
	}
	if c.ImagesMinCreate > c.ImagesMax {
		log.Warn().Int("min", c.ImagesMinCreate).Int("max", c.ImagesMax).Msg("image minimum above maximum; clamping")
		c.ImagesMinCreate = c.ImagesMax
	}
	return c, nil
}

func (c Config) IsDev() bool { return c.AppEnv == "dev" || c.AppEnv == "development" }

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
