package config

import (
	"errors"
	"os"
	"strconv"
	"sync"
)

// PlaceholderAPIKey is the value shipped in .env.example; a key equal to
// it is treated the same as no key at all (demo mode).
const PlaceholderAPIKey = "your-openai-api-key-here"

type Config struct {
	Env      string
	LogLevel string

	// Storage
	StorageBackend string // file, sqlite, postgres
	PostgresDSN    string
	SQLitePath     string
	UserFile       string
	LogsFile       string
	DocsFile       string

	// Auth
	AuthToken      string
	AuthServiceURL string

	// Remote extraction collaborator
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	OpenAITemperature  float64
	OpenAIMaxPerMinute int

	// OCR collaborator; empty URL disables OCR entirely.
	OCRServiceURL string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = loadDotEnv()
		cfg = &Config{
			Env:            getEnv("APP_ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			StorageBackend: getEnv("STORAGE_BACKEND", "file"),
			PostgresDSN:    getEnv("POSTGRES_DSN", ""),
			SQLitePath:     getEnv("SQLITE_PATH", "data/helsi.db"),
			UserFile:       getEnv("USER_FILE", "data/user.json"),
			LogsFile:       getEnv("LOGS_FILE", "data/logs.json"),
			DocsFile:       getEnv("DOCS_FILE", "data/documents.json"),
			AuthToken:      getEnv("AUTH_TOKEN", "LOCAL-SESSION"),
			AuthServiceURL: getEnv("AUTH_SERVICE_URL", ""),

			OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAITemperature:  getEnvFloat("OPENAI_TEMPERATURE", 0.1),
			OpenAIMaxPerMinute: getEnvInt("OPENAI_MAX_REQUESTS_PER_MINUTE", 3),

			OCRServiceURL: getEnv("OCR_SERVICE_URL", ""),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	case "file":
		if c.UserFile == "" || c.LogsFile == "" || c.DocsFile == "" {
			return errors.New("File storage requires USER_FILE, LOGS_FILE and DOCS_FILE to be set")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: file, sqlite, postgres")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.AuthServiceURL == "" {
		return errors.New("AUTH_SERVICE_URL is required outside development")
	}
	if c.OpenAIMaxPerMinute < 1 {
		return errors.New("OPENAI_MAX_REQUESTS_PER_MINUTE must be at least 1")
	}
	return nil
}

// RemoteExtractionEnabled reports whether a usable API credential is
// configured. The placeholder key counts as absent.
func (c *Config) RemoteExtractionEnabled() bool {
	return c.OpenAIAPIKey != "" && c.OpenAIAPIKey != PlaceholderAPIKey
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		f, err := os.Open(".env")
		if err != nil {
			return err
		}
		defer f.Close()
		var lines []string
		buf := make([]byte, 4096)
		for {
			n, err := f.Read(buf)
			if n > 0 {
				lines = append(lines, string(buf[:n]))
			}
			if err != nil {
				break
			}
		}
		for _, line := range lines {
			for _, l := range splitLines(line) {
				if len(l) == 0 || l[0] == '#' {
					continue
				}
				kv := splitKV(l)
				if len(kv) == 2 {
					os.Setenv(kv[0], kv[1])
				}
			}
		}
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' || c == '\r' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func splitKV(s string) []string {
	for i, c := range s {
		if c == '=' {
			return []string{s[:i], s[i+1:]}
		}
	}
	return nil
}
