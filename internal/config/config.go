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
	AppName           string
	AppEnv            string
	AppPort           string
	AppBaseURL        string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	EventChannelBase  string
	JWTSecret         string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SMTPFrom          string
	FanOutWorkers     int
	AnalyticsCacheTTL time.Duration
	UploadMaxSizeMB   int
	CloudinaryName    string
	CloudinaryKey     string
	CloudinarySecret  string
	CloudinaryFolder  string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("COLLABFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CollabFlow API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.base_url", "http://localhost:3000")
	v.SetDefault("event.channel_base", "collabflow")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "CollabFlow <noreply@collabflow.com>")
	v.SetDefault("fanout.workers", 4)
	v.SetDefault("analytics.cache_ttl", "5m")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("cloudinary.folder", "collabflow/attachments")

	ttlString := v.GetString("analytics.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid analytics cache ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		AppBaseURL:        strings.TrimRight(v.GetString("app.base_url"), "/"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		EventChannelBase:  v.GetString("event.channel_base"),
		JWTSecret:         v.GetString("jwt.secret"),
		SMTPHost:          v.GetString("smtp.host"),
		SMTPPort:          v.GetInt("smtp.port"),
		SMTPUsername:      v.GetString("smtp.username"),
		SMTPPassword:      v.GetString("smtp.password"),
		SMTPFrom:          v.GetString("smtp.from"),
		FanOutWorkers:     v.GetInt("fanout.workers"),
		AnalyticsCacheTTL: ttl,
		UploadMaxSizeMB:   v.GetInt("upload.max_size_mb"),
		CloudinaryName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryKey:     v.GetString("cloudinary.api_key"),
		CloudinarySecret:  v.GetString("cloudinary.api_secret"),
		CloudinaryFolder:  v.GetString("cloudinary.folder"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.FanOutWorkers <= 0 {
		cfg.FanOutWorkers = 4
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 10
	}

	if cfg.SMTPPort <= 0 {
		cfg.SMTPPort = 587
	}

	return cfg, nil
}
