package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// RateLimit describes one fixed-window policy.
type RateLimit struct {
	Window time.Duration
	Max    int
}

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SwaggerHost string
	FrontendURL string
	LogLevel    string
	ResetDB     bool
	// TrustedProxies lists the proxy addresses or CIDR ranges whose
	// X-Forwarded-For header is believed. Empty means the socket address is the client.
	TrustedProxies []string

	JWTSecret   string
	JWTExpiry   time.Duration
	JWTIssuer   string
	JWTAudience string
	// EnforcePasswordChange rejects tokens issued before the identity's last password change.
	EnforcePasswordChange bool

	APIRateLimit    RateLimit
	LoginRateLimit  RateLimit
	SignupRateLimit RateLimit
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/tasks?charset=utf8mb4&parseTime=True&loc=UTC"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ResetDB:     getEnvBool("RESET_DB", false),

		TrustedProxies: getEnvList("TRUSTED_PROXIES"),

		JWTSecret:             getEnv("JWT_SECRET", "change-me"),
		JWTExpiry:             getEnvDuration("JWT_EXPIRES_IN", 7*24*time.Hour),
		JWTIssuer:             getEnv("JWT_ISSUER", "taskapi"),
		JWTAudience:           getEnv("JWT_AUDIENCE", "taskapi-client"),
		EnforcePasswordChange: getEnvBool("ENFORCE_PASSWORD_CHANGE", false),

		APIRateLimit: RateLimit{
			Window: getEnvDuration("RATE_LIMIT_API_WINDOW", 15*time.Minute),
			Max:    getEnvInt("RATE_LIMIT_API_MAX", 100),
		},
		LoginRateLimit: RateLimit{
			Window: getEnvDuration("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute),
			Max:    getEnvInt("RATE_LIMIT_LOGIN_MAX", 10),
		},
		SignupRateLimit: RateLimit{
			Window: getEnvDuration("RATE_LIMIT_SIGNUP_WINDOW", time.Hour),
			Max:    getEnvInt("RATE_LIMIT_SIGNUP_MAX", 10),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// ParseDuration accepts Go durations ("15m", "2h") and whole days ("7d").
func ParseDuration(v string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}
