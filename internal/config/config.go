package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AppEnv          string
	Debug           bool
	Version         string
	BotToken        string
	AdminID         int64
	ChannelID       int64
	ChannelLink     string
	DefaultLanguage string
	SentryDSN       string
	MongoDBURI      string
	MongoDBDatabase string
}

// LoadConfig loads configuration from environment variables.
// It attempts to load a .env file if present but prioritizes
// actual environment variables set in the system (e.g., by Docker).
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))

	adminID, err := parseID(getEnv("ADMIN_ID", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_ID: %w", err)
	}

	channelID, err := parseID(getEnv("CHANNEL_ID", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid CHANNEL_ID: %w", err)
	}

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Debug:           debug,
		Version:         getEnv("VERSION", "dev"),
		BotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		AdminID:         adminID,
		ChannelID:       channelID,
		ChannelLink:     getEnv("CHANNEL_LINK", ""),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "uk"),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		MongoDBURI:      getEnv("MONGODB_URI", ""),
		MongoDBDatabase: getEnv("MONGODB_DATABASE", ""),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.AdminID == 0 {
		return nil, fmt.Errorf("ADMIN_ID is required")
	}
	if cfg.ChannelID == 0 {
		return nil, fmt.Errorf("CHANNEL_ID is required")
	}
	if cfg.ChannelLink == "" {
		log.Println("Warning: CHANNEL_LINK is not set. Publication permalinks will be relative.")
	}
	if cfg.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}
	if cfg.MongoDBURI == "" {
		log.Println("Warning: MONGODB_URI is not set. Audit logging disabled.")
	} else if cfg.MongoDBDatabase == "" {
		return nil, fmt.Errorf("MONGODB_DATABASE is required when MONGODB_URI is set")
	}

	return cfg, nil
}

func parseID(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
