package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env                  string
	ServerAddr           string
	FrontendOrigin       string
	StripeSecretKey      string
	StripePublishableKey string
	BrevoAPIKey          string
	BrevoSenderEmail     string
	BrevoSenderName      string
	BrevoSandbox         bool
	NotifyEmail          string
	NotifyName           string
	RateLimitPayments    int
	RateLimitEmail       int
	RateLimitWindowSec   int
	RedisURL             string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	Timezone             *time.Location
}

// IsDevelopment gates error-detail exposure on both public endpoints.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("TZ", "Australia/Brisbane"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		ServerAddr:           getEnv("SERVER_ADDR", ":8080"),
		FrontendOrigin:       getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
		StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
		StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		BrevoAPIKey:          getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail:     getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:      getEnv("BREVO_SENDER_NAME", "Movement Based Training Website"),
		BrevoSandbox:         getEnv("BREVO_SANDBOX", "false") == "true",
		NotifyEmail:          getEnv("NOTIFY_EMAIL", "movementbasedtraining@gmail.com"),
		NotifyName:           getEnv("NOTIFY_NAME", "Movement Based Training"),
		RateLimitPayments:    getEnvInt("RATE_LIMIT_PAYMENTS", 10),
		RateLimitEmail:       getEnvInt("RATE_LIMIT_EMAIL", 5),
		RateLimitWindowSec:   getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		Timezone:             loc,
	}

	return cfg, nil
}
