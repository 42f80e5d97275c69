package utils

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	CacheURLScheme  string `env:"CACHE_URL_SCHEME" envDefault:"redis"`
	CacheClusterURL string `env:"CACHE_CLUSTER_URL" envDefault:"localhost"`
	CachePort       string `env:"CACHE_PORT" envDefault:"6379"`
	CachePassword   string `env:"CACHE_PASSWORD" envDefault:""`
	CacheUsername   string `env:"CACHE_USERNAME" envDefault:""`
	CacheTLSDomain  string `env:"CACHE_TLS_DOMAIN" envDefault:""`
	PodID           string `env:"POD_ID" envDefault:""`
	NextJobCount    int    `env:"NEXT_JOB_COUNT" envDefault:"1000"`

	// SchedulesFile optionally overrides the built-in command schedules.
	SchedulesFile    string        `env:"SCHEDULES_FILE" envDefault:""`
	SchedulingWindow time.Duration `env:"SCHEDULING_WINDOW" envDefault:"5m"`
	PlanInterval     time.Duration `env:"PLAN_INTERVAL" envDefault:"5s"`
	RunInterval      time.Duration `env:"RUN_INTERVAL" envDefault:"1s"`
	JobTTL           time.Duration `env:"JOB_TTL" envDefault:"24h"`
	PodTTL           time.Duration `env:"POD_TTL" envDefault:"2s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:""`
	DGN      string `env:"DGN" envDefault:""`
}

var appConfig *Config

func GetConfig(ctx context.Context) *Config {
	if appConfig != nil {
		return appConfig
	}

	err := godotenv.Load(".env")
	if err != nil {
		GetAppLogger(ctx).Warnf("Unable to load .env file. Continuing without loading it...")
	}
	appConfig = &Config{}
	if err = env.Parse(appConfig); err != nil {
		panic(err)
	}
	if err = appConfig.validate(); err != nil {
		panic(err)
	}
	return appConfig
}

// ParseConfig builds a Config from an explicit environment instead of the
// process one.
func ParseConfig(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CacheAddr is the host:port of the redis server.
func (c *Config) CacheAddr() string {
	return net.JoinHostPort(c.CacheClusterURL, c.CachePort)
}

func (c *Config) LoggerOptions() LoggerOptions {
	return LoggerOptions{Level: c.LogLevel, Local: c.DGN == "local"}
}

func (c *Config) validate() error {
	var errs []string
	if c.CacheURLScheme != "redis" && c.CacheURLScheme != "rediss" {
		errs = append(errs, fmt.Sprintf("CACHE_URL_SCHEME must be redis or rediss, got %q", c.CacheURLScheme))
	}
	if c.SchedulingWindow <= 0 {
		errs = append(errs, "SCHEDULING_WINDOW must be positive")
	}
	if c.PlanInterval <= 0 {
		errs = append(errs, "PLAN_INTERVAL must be positive")
	}
	if c.RunInterval <= 0 {
		errs = append(errs, "RUN_INTERVAL must be positive")
	}
	if c.PodTTL <= 0 {
		errs = append(errs, "POD_TTL must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
