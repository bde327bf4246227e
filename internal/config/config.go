package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	Server    ServerConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	BodyLimit    string
}

type AIConfig struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads the application configuration from the environment and .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	serverPort, err := parseIntEnv("PORT", 3001)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 2*time.Minute)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		BodyLimit:    getEnv("SERVER_BODY_LIMIT", "10M"),
	}

	aiTimeout, err := parseDurationEnv("AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	aiMaxOutputTokens, err := parseIntEnv("AI_MAX_OUTPUT_TOKENS", 4096)
	if err != nil {
		return cfg, err
	}

	cfg.AI = AIConfig{
		APIKey:          getEnv("GEMINI_API_KEY", ""),
		Model:           getEnv("AI_MODEL", "gemini-2.0-flash"),
		Timeout:         aiTimeout,
		MaxOutputTokens: aiMaxOutputTokens,
	}

	rateLimitMax, err := parseIntEnv("RATE_LIMIT_MAX_REQUESTS", 30)
	if err != nil {
		return cfg, err
	}

	rateLimitWindow, err := parseDurationEnv("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return cfg, err
	}

	cfg.RateLimit = RateLimitConfig{
		MaxRequests: rateLimitMax,
		Window:      rateLimitWindow,
	}

	origins := parseCSVEnv("CORS_ALLOWED_ORIGINS")
	if origins == nil {
		origins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: origins}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("PORT must be greater than 0")
	}

	if c.AI.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	if c.AI.Model == "" {
		return fmt.Errorf("AI_MODEL is required")
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be greater than 0")
	}

	if c.AI.MaxOutputTokens <= 0 {
		return fmt.Errorf("AI_MAX_OUTPUT_TOKENS must be greater than 0")
	}

	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be greater than 0")
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be greater than 0")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseCSVEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
