// Package config loads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port         int
	AllowOrigins []string
	SecretKey    string
	TokenTTL     time.Duration

	DB DBSettings

	RedisAddr     string
	MongoURI      string
	MongoDatabase string
	GCSBucket     string

	AdviceProvider string
	OpenAIKey      string
	OpenAIModel    string
	OpenAIBaseURL  string
	GeminiKey      string
	GeminiModel    string
	UsageLogSink   string
	AdviceTimeout  time.Duration

	RateLimitPerSecond uint
	JobCacheTTL        time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	AdminUsername string
	AdminPassword string
	AdminEmail    string
	LogLevel      string
}

// DBSettings mirrors the DB_* variables understood by the database package.
type DBSettings struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	ConnStr      string
	UseConnStr   bool
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration
}

// Load reads .env (when present) and then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:         getInt("PORT", 8080),
		AllowOrigins: splitList(getEnv("ALLOW_ORIGIN", "http://localhost:3000")),
		SecretKey:    getEnv("SECRET_KEY", ""),
		TokenTTL:     getDuration("ACCESS_TOKEN_TTL", time.Hour),

		DB: DBSettings{
			Host:         getEnv("DB_HOST", ""),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USERNAME", ""),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_DATABASE", ""),
			ConnStr:      getEnv("DB_CONNECTION_STR", ""),
			UseConnStr:   getBool("USE_CONNECTION_STR", false),
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLife:  getDuration("DB_CONN_MAX_LIFE", 30*time.Minute),
		},

		RedisAddr:     firstNonEmpty(getEnv("REDIS_ADDR", ""), getEnv("REDIS_URL", "")),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "jobmatch"),
		GCSBucket:     getEnv("GCS_BUCKET", ""),

		AdviceProvider: strings.ToLower(getEnv("ADVICE_PROVIDER", "openai")),
		OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		UsageLogSink:   strings.ToLower(getEnv("AI_USAGE_LOG_SINK", "postgres")),
		AdviceTimeout:  getDuration("ADVICE_TIMEOUT", 60*time.Second),

		RateLimitPerSecond: uint(max(getInt("RATE_LIMIT_REQUESTS_PER_SECOND", 5), 1)),
		JobCacheTTL:        getDuration("JOB_CACHE_TTL", 30*time.Second),

		GoogleClientID:     getEnv("GOOGLE_OAUTH_CLIENT", ""),
		GoogleClientSecret: getEnv("GOOGLE_OAUTH_SECRET", ""),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", ""),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
