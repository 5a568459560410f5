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
	Stripe    StripeConfig    `yaml:"stripe"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Meeting   MeetingConfig   `yaml:"meeting"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings for the webhook surface
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

// SendGridConfig contains notification delivery settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// StripeConfig contains billing provider settings
type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
}

// CalendarConfig contains the operating timezone and slot grid settings.
// All day-boundary and weekend decisions use the operating timezone; the
// store keeps UTC instants.
type CalendarConfig struct {
	Timezone       string `yaml:"timezone"`
	FirstSlotHour  int    `yaml:"first_slot_hour"`
	LastSlotHour   int    `yaml:"last_slot_hour"`
	SessionMinutes int    `yaml:"session_minutes"`
}

// MeetingConfig contains Google Calendar settings for meeting provisioning
type MeetingConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	CalendarID      string `yaml:"calendar_id"`
	MentorEmail     string `yaml:"mentor_email"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	CompleteElapsedSessions  string `yaml:"complete_elapsed_sessions"`
	PurgeStalePending        string `yaml:"purge_stale_pending"`
	RetryMissingMeetingLinks string `yaml:"retry_missing_meeting_links"`
	SendPackExpiryReminders  string `yaml:"send_pack_expiry_reminders"`
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
	// Database
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

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}

	// Stripe
	if val := os.Getenv("STRIPE_SECRET_KEY"); val != "" {
		c.Stripe.SecretKey = val
	}
	if val := os.Getenv("STRIPE_WEBHOOK_SECRET"); val != "" {
		c.Stripe.WebhookSecret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
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

// Validate checks if the configuration is valid and fills in defaults
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

	// Calendar defaults: hourly slots 10:00-18:00, 60 minute sessions
	if c.Calendar.Timezone == "" {
		c.Calendar.Timezone = "Europe/Madrid"
	}
	if c.Calendar.FirstSlotHour == 0 && c.Calendar.LastSlotHour == 0 {
		c.Calendar.FirstSlotHour = 10
		c.Calendar.LastSlotHour = 18
	}
	if c.Calendar.FirstSlotHour < 0 || c.Calendar.LastSlotHour > 23 || c.Calendar.LastSlotHour < c.Calendar.FirstSlotHour {
		return fmt.Errorf("invalid slot hours: %d-%d", c.Calendar.FirstSlotHour, c.Calendar.LastSlotHour)
	}
	if c.Calendar.SessionMinutes == 0 {
		c.Calendar.SessionMinutes = 60
	}

	// Scheduler defaults
	if c.Scheduler.CompleteElapsedSessions == "" {
		c.Scheduler.CompleteElapsedSessions = "0 */15 * * * *" // every 15 minutes
	}
	if c.Scheduler.PurgeStalePending == "" {
		c.Scheduler.PurgeStalePending = "0 0 3 * * *" // 3 AM
	}
	if c.Scheduler.RetryMissingMeetingLinks == "" {
		c.Scheduler.RetryMissingMeetingLinks = "0 */30 * * * *" // every 30 minutes
	}
	if c.Scheduler.SendPackExpiryReminders == "" {
		c.Scheduler.SendPackExpiryReminders = "0 0 9 * * *" // 9 AM
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
