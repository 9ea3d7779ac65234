package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Init loads environment configuration. A missing .env file is not an
// error: in deployed environments everything comes from real env vars.
func Init() {
	_ = godotenv.Load()
	InitLogger()
}

func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func EnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
