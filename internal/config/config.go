package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	SendGrid  SendGridConfig  `yaml:"sendgrid"`
	SMS       SMSConfig       `yaml:"sms"`
	JWT       JWTConfig       `yaml:"jwt"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Archival  ArchivalConfig  `yaml:"archival"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SendGridConfig contains the primary notification channel settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// SMSConfig contains the secondary notification channel settings
type SMSConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// JWTConfig contains token validation settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// PricingConfig contains the platform rate card
type PricingConfig struct {
	BaseCityPriceCents  int64 `yaml:"base_city_price_cents"`
	PerKmPriceCents     int64 `yaml:"per_km_price_cents"`
	HelpAtHomeBaseCents int64 `yaml:"help_at_home_base_cents"`
	PerHourRateCents    int64 `yaml:"per_hour_rate_cents"`
}

// ArchivalConfig controls the completed-booking archive job
type ArchivalConfig struct {
	AfterDays int `yaml:"after_days"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ArchiveCompletedBookings string `yaml:"archive_completed_bookings"`
	SendStartReminders       string `yaml:"send_start_reminders"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}

	if val := os.Getenv("SMS_ENDPOINT"); val != "" {
		c.SMS.Endpoint = val
	}
	if val := os.Getenv("SMS_API_KEY"); val != "" {
		c.SMS.APIKey = val
	}

	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.SendGrid.APIKey == "" {
		return fmt.Errorf("sendgrid api key is required")
	}
	if c.SendGrid.FromEmail == "" {
		return fmt.Errorf("sendgrid from address is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if c.Pricing.BaseCityPriceCents <= 0 {
		return fmt.Errorf("base city price must be positive")
	}
	if c.Pricing.PerKmPriceCents < 0 {
		return fmt.Errorf("per-km price must not be negative")
	}
	if c.Pricing.HelpAtHomeBaseCents < 0 || c.Pricing.PerHourRateCents < 0 {
		return fmt.Errorf("hourly rates must not be negative")
	}

	// Archival and scheduler defaults
	if c.Archival.AfterDays == 0 {
		c.Archival.AfterDays = 30
	}
	if c.Scheduler.ArchiveCompletedBookings == "" {
		c.Scheduler.ArchiveCompletedBookings = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.SendStartReminders == "" {
		c.Scheduler.SendStartReminders = "0 0 7 * * *" // 7 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
