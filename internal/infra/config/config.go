package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the triage service.
type AppConfig struct {
	DatabaseURL        string
	DocumentWebhookURL string
	EmailWebhookURL    string
	HTTPListenAddr     string
	LogLevel           string
	Environment        string
	CronSpecRefresh    string
	SentDisplay        time.Duration

	// Optional ops notifications. Disabled when the token is unset.
	TelegramToken   string
	AdminTelegramID int64
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables; a missing .env
	// file is not an error.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.DocumentWebhookURL = os.Getenv("DOCUMENT_WEBHOOK_URL")
	if cfg.DocumentWebhookURL == "" {
		return nil, fmt.Errorf("DOCUMENT_WEBHOOK_URL is not set")
	}

	cfg.EmailWebhookURL = os.Getenv("EMAIL_WEBHOOK_URL")
	if cfg.EmailWebhookURL == "" {
		return nil, fmt.Errorf("EMAIL_WEBHOOK_URL is not set")
	}

	cfg.HTTPListenAddr = os.Getenv("HTTP_LISTEN_ADDR")
	if cfg.HTTPListenAddr == "" {
		cfg.HTTPListenAddr = ":8080"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecRefresh = os.Getenv("CRON_SPEC_REFRESH")
	if cfg.CronSpecRefresh == "" {
		cfg.CronSpecRefresh = "*/5 * * * *" // Default: refresh the request list every 5 minutes
	}

	sentDisplayStr := os.Getenv("SENT_DISPLAY_SECONDS")
	if sentDisplayStr == "" {
		cfg.SentDisplay = 5 * time.Second
	} else {
		seconds, err := strconv.Atoi(sentDisplayStr)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid SENT_DISPLAY_SECONDS: %q", sentDisplayStr)
		}
		cfg.SentDisplay = time.Duration(seconds) * time.Second
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
		if adminIDStr == "" {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set but TELEGRAM_TOKEN is")
		}
		adminID, err := strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
		cfg.AdminTelegramID = adminID
	}

	return cfg, nil
}
