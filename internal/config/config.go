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
	JWTSecret              string
	TokenTTL               time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	UploadMaxMB            int
	UploadTimeout          time.Duration
	MaxProjectImages       int
	AnalyticsCacheTTL      time.Duration
	AuditDedupeWindow      time.Duration
	AuditAnalyticsWindow   time.Duration
	AuditDashboardWindow   time.Duration
	AuditSkipPaths         []string
	AuditBodyLimit         int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production error masking.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FOLIO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Folio API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "folio/projects")
	v.SetDefault("token.ttl", "720h")
	v.SetDefault("upload.max_mb", 10)
	v.SetDefault("upload.timeout", "30s")
	v.SetDefault("upload.max_images", 10)
	v.SetDefault("analytics.cache_ttl", "60s")
	v.SetDefault("audit.dedupe_window", "1s")
	v.SetDefault("audit.analytics_window", "30s")
	v.SetDefault("audit.dashboard_window", "2m")
	v.SetDefault("audit.body_limit", 2048)
	v.SetDefault("audit.skip_paths", "/statistics,/analytics,/activity-feed,/health,/metrics,/favicon.ico")

	tokenTTL, err := parseDurationDefault(v.GetString("token.ttl"), 720*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	uploadTimeout, err := parseDurationDefault(v.GetString("upload.timeout"), 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid upload timeout: %w", err)
	}

	analyticsTTL, err := parseDurationDefault(v.GetString("analytics.cache_ttl"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid analytics cache ttl: %w", err)
	}

	dedupeWindow, err := parseDurationDefault(v.GetString("audit.dedupe_window"), time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid audit dedupe window: %w", err)
	}

	analyticsWindow, err := parseDurationDefault(v.GetString("audit.analytics_window"), 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid audit analytics window: %w", err)
	}

	dashboardWindow, err := parseDurationDefault(v.GetString("audit.dashboard_window"), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid audit dashboard window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		TokenTTL:               tokenTTL,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		UploadMaxMB:            v.GetInt("upload.max_mb"),
		UploadTimeout:          uploadTimeout,
		MaxProjectImages:       v.GetInt("upload.max_images"),
		AnalyticsCacheTTL:      analyticsTTL,
		AuditDedupeWindow:      dedupeWindow,
		AuditAnalyticsWindow:   analyticsWindow,
		AuditDashboardWindow:   dashboardWindow,
		AuditSkipPaths:         splitPaths(v.GetString("audit.skip_paths")),
		AuditBodyLimit:         v.GetInt("audit.body_limit"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 10
	}

	if cfg.MaxProjectImages <= 0 {
		cfg.MaxProjectImages = 10
	}

	if cfg.AuditBodyLimit <= 0 {
		cfg.AuditBodyLimit = 2048
	}

	return cfg, nil
}

func parseDurationDefault(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}

func splitPaths(raw string) []string {
	parts := strings.Split(raw, ",")
	paths := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return paths
}
