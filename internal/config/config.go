package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        int
	NatsURL     string
	NatsToken   string
	DatabaseURL string
	LogLevel    string
	BrowserURL  string
	ArchiveDir  string
	Workers     int
}

func Load() Config {
	return Config{
		Port:        envInt("GEMCTX_PORT", 8760),
		NatsURL:     envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:   envStr("NATS_TOKEN", ""),
		DatabaseURL: envStr("DATABASE_URL", ""),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		BrowserURL:  envStr("GEMCTX_BROWSER_URL", "http://localhost:8761"),
		ArchiveDir:  envStr("GEMCTX_ARCHIVE_DIR", "gemini_extracts"),
		Workers:     envInt("GEMCTX_WORKERS", 4),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
