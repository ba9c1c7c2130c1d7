package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	// Raw service-account JSON for the document store (client_email,
	// private_key, project_id, token_uri).
	ServiceAccountJSON string

	FirestoreBaseURL    string
	FirestoreCollection string
	OAuthTokenURL       string

	ContentProvider  string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	PlaceholderDelay time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	DrainTimeout     time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		ServiceAccountJSON:  os.Getenv("FIREBASE_SERVICE_ACCOUNT"),
		FirestoreBaseURL:    getEnv("FIRESTORE_BASE_URL", "https://firestore.googleapis.com/v1"),
		FirestoreCollection: getEnv("FIRESTORE_COLLECTION", "itineraries"),
		OAuthTokenURL:       getEnv("OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token"),
		ContentProvider:     os.Getenv("CONTENT_PROVIDER"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		PlaceholderDelay:    time.Millisecond * time.Duration(getEnvInt("PLACEHOLDER_DELAY_MS", 3000)),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		DrainTimeout:        time.Second * time.Duration(getEnvInt("SHUTDOWN_DRAIN_TIMEOUT_SECONDS", 120)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:         splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.ServiceAccountJSON == "" {
		return nil, fmt.Errorf("FIREBASE_SERVICE_ACCOUNT is required")
	}

	if cfg.ContentProvider == "" {
		if cfg.GeminiAPIKey != "" {
			cfg.ContentProvider = "gemini"
		} else {
			cfg.ContentProvider = "static"
		}
	}
	switch cfg.ContentProvider {
	case "gemini", "static":
	default:
		return nil, fmt.Errorf("CONTENT_PROVIDER must be gemini or static, got %q", cfg.ContentProvider)
	}
	if cfg.ContentProvider == "gemini" && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required when CONTENT_PROVIDER=gemini")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
