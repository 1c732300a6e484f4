package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string
	DatabaseDSN     string
	DatabaseTimeout time.Duration
	BooksAPIKey     string
	PageDelay       time.Duration
	LogLevel        string
	LogFormat       string
	CORSOrigins     []string
}

// LoadEnvFiles loads .env and .env.local. Variables already present in the
// process environment win.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads configuration from the environment. The search API key is optional
// here; callers that search must check it.
func Load() (Config, error) {
	LoadEnvFiles()

	cfg := Config{
		Addr:        getEnv("APP_ADDR", ":8080"),
		DatabaseDSN: os.Getenv("DB_DSN"),
		BooksAPIKey: os.Getenv("GOOGLE_BOOKS_API_KEY"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		CORSOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = buildDSN(
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_NAME", "bookscape"),
		)
	}

	var err error
	if cfg.DatabaseTimeout, err = getDuration("DB_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PageDelay, err = getDuration("SEARCH_PAGE_DELAY", time.Second); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func buildDSN(host, port, user, password, name string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   host + ":" + port,
		Path:   "/" + name,
	}
	switch {
	case user != "" && password != "":
		u.User = url.UserPassword(user, password)
	case user != "":
		u.User = url.User(user)
	}
	return u.String()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList parses a comma separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, v)
	}
	return d, nil
}

// RedactDSN hides the credentials of a postgres URL for logging.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
