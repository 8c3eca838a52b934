package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	DatabaseURL     string
	Redis           RedisConfig
	ProgramCacheTTL time.Duration
	ProgramsFile    string
	Batch           BatchConfig
	RateLimit       RateLimitConfig
	Log             LogConfig
}

// RedisConfig configures the optional program cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// BatchConfig bounds batch eligibility evaluation.
type BatchConfig struct {
	Concurrency int
	MaxSize     int
}

// RateLimitConfig sets per-client request budgets. A zero budget leaves the
// endpoint class unthrottled.
type RateLimitConfig struct {
	Disabled  bool
	Window    time.Duration
	Evaluate  int
	Authoring int
	Read      int
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// DefaultProgramCacheTTL bounds how long a cached program may lag an update
// made by another replica that bypassed the cache.
const DefaultProgramCacheTTL = 5 * time.Minute

// Load reads an optional .env file and then builds the config from the
// environment. Variables already set in the environment win over the file.
func Load(envFile string) (Server, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Server{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var errs []string
	durationVar := func(key string, def time.Duration) time.Duration {
		d, err := envDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return d
	}
	intVar := func(key string, def int) int {
		n, err := envInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return n
	}

	boolVar := func(key string, def bool) bool {
		b, err := envBool(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return b
	}

	cfg := Server{
		Addr:            envString("GRANTGATE_ADDR", ":8080"),
		ShutdownTimeout: durationVar("SHUTDOWN_TIMEOUT", 10*time.Second),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intVar("REDIS_POOL_SIZE", 10),
			MinIdleConns: intVar("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationVar("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationVar("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationVar("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		ProgramCacheTTL: durationVar("PROGRAM_CACHE_TTL", DefaultProgramCacheTTL),
		ProgramsFile:    os.Getenv("PROGRAMS_FILE"),
		Batch: BatchConfig{
			Concurrency: intVar("BATCH_CONCURRENCY", 8),
			MaxSize:     intVar("BATCH_MAX_SIZE", 500),
		},
		RateLimit: RateLimitConfig{
			Disabled:  boolVar("RATE_LIMIT_DISABLED", false),
			Window:    durationVar("RATE_LIMIT_WINDOW", time.Minute),
			Evaluate:  intVar("RATE_LIMIT_EVALUATE", 120),
			Authoring: intVar("RATE_LIMIT_AUTHORING", 30),
			Read:      intVar("RATE_LIMIT_READ", 0),
		},
		Log: LogConfig{
			Level:  strings.ToLower(envString("LOG_LEVEL", "info")),
			Format: strings.ToLower(envString("LOG_FORMAT", "json")),
		},
	}

	if cfg.Batch.Concurrency < 1 {
		errs = append(errs, "BATCH_CONCURRENCY must be at least 1")
	}
	if cfg.Batch.MaxSize < 1 {
		errs = append(errs, "BATCH_MAX_SIZE must be at least 1")
	}
	if cfg.RateLimit.Window <= 0 {
		errs = append(errs, "RATE_LIMIT_WINDOW must be positive")
	}
	if cfg.RateLimit.Evaluate < 0 || cfg.RateLimit.Authoring < 0 || cfg.RateLimit.Read < 0 {
		errs = append(errs, "RATE_LIMIT budgets must not be negative")
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		errs = append(errs, "LOG_FORMAT must be json or text")
	}
	if len(errs) > 0 {
		return Server{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not a duration", key, v)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not a boolean", key, v)
	}
	return b, nil
}
