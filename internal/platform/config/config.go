package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	RedisURL    string
	CacheTTL    time.Duration
	PreviewRows int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("MANIFESTCONV_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	cacheTTL := time.Hour
	if raw := os.Getenv("MANIFESTCONV_CACHE_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cacheTTL = d
		}
	}

	previewRows := 50
	if raw := os.Getenv("MANIFESTCONV_PREVIEW_ROWS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			previewRows = n
		}
	}

	return Server{
		Addr:        addr,
		RedisURL:    os.Getenv("REDIS_URL"),
		CacheTTL:    cacheTTL,
		PreviewRows: previewRows,
	}
}
