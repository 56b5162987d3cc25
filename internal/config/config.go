package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type DBConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	AdminUser     string
	AdminPassword string
}

type OAuthSettings struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type Config struct {
	Port               int
	DB                 DBConfig
	RedisAddr          string
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	DemoMode           bool
	DMDBrowserURL      string
	DMDCacheTTL        time.Duration
	GPDataURL          string
	GPDataAPIKey       string
	GeminiAPIKey       string
	GeminiModel        string
	Google             OAuthSettings
	CORSOrigins        []string
	RateLimitRPS       float64
	RateLimitBurst     int
	ReminderInterval   time.Duration
	LogLevel           string
}

// Load reads the process environment. The .env file, if any, is loaded by
// the godotenv autoload import in the server package before this runs.
func Load() (*Config, error) {
	cfg := &Config{
		DB: DBConfig{
			Host:          os.Getenv("DB_HOST"),
			Port:          os.Getenv("DB_PORT"),
			User:          os.Getenv("DB_USERNAME"),
			Password:      os.Getenv("DB_PASSWORD"),
			Database:      os.Getenv("DB_DATABASE"),
			AdminUser:     os.Getenv("DB_ADMIN_USER"),
			AdminPassword: os.Getenv("DB_ADMIN_PASSWORD"),
		},
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		AccessTokenSecret:  []byte(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshTokenSecret: []byte(os.Getenv("REFRESH_TOKEN_SECRET")),
		DMDBrowserURL:      getEnv("DMD_BROWSER_URL", "https://services.nhsbsa.nhs.uk/dmd-browser"),
		GPDataURL:          os.Getenv("GP_DATA_URL"),
		GPDataAPIKey:       os.Getenv("GP_DATA_API_KEY"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		Google: OAuthSettings{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil {
		return nil, fmt.Errorf("PORT must be a valid integer: %w", err)
	}
	if cfg.DemoMode, err = strconv.ParseBool(getEnv("DEMO_MODE", "false")); err != nil {
		return nil, fmt.Errorf("DEMO_MODE must be a boolean: %w", err)
	}
	if cfg.DMDCacheTTL, err = time.ParseDuration(getEnv("DMD_CACHE_TTL", "168h")); err != nil {
		return nil, fmt.Errorf("DMD_CACHE_TTL must be a duration: %w", err)
	}
	if cfg.ReminderInterval, err = time.ParseDuration(getEnv("REMINDER_INTERVAL", "1h")); err != nil {
		return nil, fmt.Errorf("REMINDER_INTERVAL must be a duration: %w", err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "20"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be a number: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "40")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be a valid integer: %w", err)
	}

	for _, origin := range strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	required := map[string]string{
		"DB_HOST":              c.DB.Host,
		"DB_PORT":              c.DB.Port,
		"DB_USERNAME":          c.DB.User,
		"DB_PASSWORD":          c.DB.Password,
		"DB_DATABASE":          c.DB.Database,
		"ACCESS_TOKEN_SECRET":  string(c.AccessTokenSecret),
		"REFRESH_TOKEN_SECRET": string(c.RefreshTokenSecret),
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s environment variable is required", name)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
