package app

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/fleetops/fleet-console/internal/platform/cache"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionCookie string        `envconfig:"SESSION_COOKIE" default:"fleet_session"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	LOVAPIURL      string        `envconfig:"LOV_API_URL" default:"http://127.0.0.1:9090"`
	LOVAPIToken    string        `envconfig:"LOV_API_TOKEN"`
	LOVAPITimeout  time.Duration `envconfig:"LOV_API_TIMEOUT" default:"15s"`
	LOVCacheTTL    time.Duration `envconfig:"LOV_CACHE_TTL" default:"5m"`
	LOVSaveLockTTL time.Duration `envconfig:"LOV_SAVE_LOCK_TTL" default:"30s"`
	LOVWarmupOrgs  []string      `envconfig:"LOV_WARMUP_ORGS"`
	LOVWarmupCron  string        `envconfig:"LOV_WARMUP_CRON" default:"*/15 * * * *"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	WorkerConcurrency  int `envconfig:"WORKER_CONCURRENCY" default:"5"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if strings.TrimSpace(cfg.LOVAPIURL) == "" {
		return nil, errors.New("reference-data api url must be provided")
	}
	cfg.LOVWarmupOrgs = compact(cfg.LOVWarmupOrgs)
	return &cfg, nil
}

// RedisOptions returns the connection settings shared by sessions, caches and the job queue.
func (c *Config) RedisOptions() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

func compact(values []string) []string {
	out := values[:0]
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
