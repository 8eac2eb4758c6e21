package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Env      string // reported by /api/health
	HTTPAddr string

	DBDriver string
	DBDSN    string

	SessionTTL   time.Duration
	CookieSecure bool

	// Tier-2 evaluator. An empty API key disables the remote call entirely.
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	// Emails that register with admin rights.
	AdminEmails []string

	CORSOrigins []string
}

func FromEnv() Config {
	return Config{
		Env:      envOr("APP_ENV", "dev"),
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		SessionTTL:   durOr("SESSION_TTL", 30*24*time.Hour),
		CookieSecure: envBool("COOKIE_SECURE", false),

		GeminiAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:   envOr("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		GeminiBaseURL: envOr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiTimeout: durOr("GEMINI_TIMEOUT", 12*time.Second),

		AdminEmails: csvOr("ADMIN_EMAILS", ""),
		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func durOr(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
