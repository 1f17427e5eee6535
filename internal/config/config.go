package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	SessionSecret          string
	SessionTTL             time.Duration
	UnreadCountCacheTTL    time.Duration
	NotificationRetention  int
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	UploadMaxSizeMB        int
	CORSOrigins            string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an optional
// .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NEARBUY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Nearbuy API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("unread.cache_ttl", "30s")
	v.SetDefault("notification.retention_days", 30)
	v.SetDefault("cloudinary.folder", "nearbuy/listings")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("cors.origins", "*")

	sessionTTL, err := time.ParseDuration(v.GetString("session.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	unreadTTL, err := time.ParseDuration(v.GetString("unread.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid unread cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		SessionSecret:          v.GetString("session.secret"),
		SessionTTL:             sessionTTL,
		UnreadCountCacheTTL:    unreadTTL,
		NotificationRetention:  v.GetInt("notification.retention_days"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		CORSOrigins:            v.GetString("cors.origins"),
	}

	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("session secret must be provided")
	}

	if cfg.NotificationRetention <= 0 {
		cfg.NotificationRetention = 30
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 10
	}

	return cfg, nil
}
