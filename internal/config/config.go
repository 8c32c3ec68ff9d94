package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Schedule configuration
	ReportSchedule string // "daily" or "weekly"

	// Storage configuration. When StorageAccount is empty the local file
	// backend under DataDir is used instead of Azure Blob Storage.
	StorageAccount   string
	StorageContainer string
	DataDir          string

	// API keys for optional capabilities. An empty key disables the
	// corresponding component rather than failing startup.
	TavilyAPIKey string
	OpenAIAPIKey string

	// Search terms monitored on the schedule
	WatchTerms []string

	// Adapter behavior
	AdapterTimeout time.Duration
	MaxResults     int
	PacingInterval time.Duration
	PacingJitter   time.Duration

	// Enrichment
	EnableEnrichment bool
	AnalysisDelay    time.Duration

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Debug:          getBoolEnv("DEBUG", false),
		ReportSchedule: getEnv("REPORT_SCHEDULE", "weekly"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "mentions"),
		DataDir:          getEnv("DATA_DIR", "data"),

		TavilyAPIKey: getEnv("TAVILY_API_KEY", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		WatchTerms: getSliceEnv("WATCH_TERMS", nil),

		AdapterTimeout: getDurationEnv("ADAPTER_TIMEOUT", 30*time.Second),
		MaxResults:     getIntEnv("MAX_RESULTS", 20),
		PacingInterval: getDurationEnv("PACING_INTERVAL", time.Second),
		PacingJitter:   getDurationEnv("PACING_JITTER", 500*time.Millisecond),

		EnableEnrichment: getBoolEnv("ENABLE_ENRICHMENT", true),
		AnalysisDelay:    getDurationEnv("ANALYSIS_DELAY", time.Second),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ReportSchedule != "daily" && c.ReportSchedule != "weekly" {
		return fmt.Errorf("REPORT_SCHEDULE must be 'daily' or 'weekly'")
	}

	if c.MaxResults <= 0 {
		return fmt.Errorf("MAX_RESULTS must be positive")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var terms []string
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				terms = append(terms, p)
			}
		}
		return terms
	}
	return defaultValue
}
