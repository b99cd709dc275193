package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppEnv    string
	HTTPAddr  string
	RedisAddr string
	RedisPass string

	SourcesFile     string
	RefreshInterval int // minutes between scheduled cycles
	FreshnessDays   int // drop records older than this, unless source overrides
	Workers         int // concurrent scraping workers, one browser session each

	TaskMaxRetries int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Load() Config {
	cfg := Config{
		AppEnv:    getenv("APP_ENV", "development"),
		HTTPAddr:  getenv("HTTP_ADDR", ":8082"),
		RedisAddr: getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		SourcesFile:     getenv("SOURCES_FILE", "./sources.yaml"),
		RefreshInterval: getenvInt("REFRESH_INTERVAL_MINUTES", 60),
		FreshnessDays:   getenvInt("FRESHNESS_DAYS", 7),
		Workers:         getenvInt("SCRAPE_WORKERS", 3),

		TaskMaxRetries: getenvInt("TASK_MAX_RETRIES", 3),
	}
	if cfg.RedisAddr == "" {
		panic(fmt.Errorf("REDIS_ADDR is required"))
	}
	if cfg.RefreshInterval < 1 {
		cfg.RefreshInterval = 60
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg
}
