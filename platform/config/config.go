// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetBrevoAPIKey() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// BusinessConfig provides the identity of the business the site promotes.
type BusinessConfig interface {
	GetBusinessName() string
	GetOwnerEmail() string
	GetAppBaseURL() string
}

// BookingConfig provides settings for the appointment booking window.
type BookingConfig interface {
	GetBookingTimezone() string
	GetBookingOpenHour() int
	GetBookingCloseHour() int
	GetBookingSlotMinutes() int
	GetBookingWeekdays() []time.Weekday
	GetMeetingPlatform() string
}

// CalendarConfig provides settings for the external calendar provider.
type CalendarConfig interface {
	GetCalendarID() string
	GetCalendarToken() string
	IsCalendarEnabled() bool
}

// SchedulerConfig provides settings for the asynq background scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetNurtureInterval() time.Duration
}

// CronConfig provides the shared secret guarding cron-trigger endpoints.
type CronConfig interface {
	GetCronSecret() string
}

// GotenbergConfig provides settings for the Gotenberg HTML-to-PDF service.
type GotenbergConfig interface {
	GetGotenbergURL() string
	GetGotenbergUsername() string
	GetGotenbergPassword() string
	IsGotenbergEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	CORSAllowAll       bool
	CORSOrigins        []string
	CORSAllowCreds     bool
	AppBaseURL         string
	BusinessName       string
	OwnerEmail         string
	EmailEnabled       bool
	BrevoAPIKey        string
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	EmailFromName      string
	EmailFromAddress   string
	BookingTimezone    string
	BookingOpenHour    int
	BookingCloseHour   int
	BookingSlotMinutes int
	BookingWeekdays    []time.Weekday
	MeetingPlatform    string
	CalendarID         string
	CalendarToken      string
	RedisURL           string
	RedisTLSInsecure   bool
	AsynqQueueName     string
	AsynqConcurrency   int
	NurtureInterval    time.Duration
	CronSecret         string
	GotenbergURL       string
	GotenbergUsername  string
	GotenbergPassword  string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetBrevoAPIKey() string      { return c.BrevoAPIKey }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// BusinessConfig implementation
func (c *Config) GetBusinessName() string { return c.BusinessName }
func (c *Config) GetOwnerEmail() string   { return c.OwnerEmail }
func (c *Config) GetAppBaseURL() string   { return c.AppBaseURL }

// BookingConfig implementation
func (c *Config) GetBookingTimezone() string          { return c.BookingTimezone }
func (c *Config) GetBookingOpenHour() int             { return c.BookingOpenHour }
func (c *Config) GetBookingCloseHour() int            { return c.BookingCloseHour }
func (c *Config) GetBookingSlotMinutes() int          { return c.BookingSlotMinutes }
func (c *Config) GetBookingWeekdays() []time.Weekday  { return c.BookingWeekdays }
func (c *Config) GetMeetingPlatform() string          { return c.MeetingPlatform }

// CalendarConfig implementation
func (c *Config) GetCalendarID() string    { return c.CalendarID }
func (c *Config) GetCalendarToken() string { return c.CalendarToken }
func (c *Config) IsCalendarEnabled() bool {
	return c.CalendarID != "" && c.CalendarToken != ""
}

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                 { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool           { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string           { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int            { return c.AsynqConcurrency }
func (c *Config) GetNurtureInterval() time.Duration   { return c.NurtureInterval }

// CronConfig implementation
func (c *Config) GetCronSecret() string { return c.CronSecret }

// GotenbergConfig implementation
func (c *Config) GetGotenbergURL() string      { return c.GotenbergURL }
func (c *Config) GetGotenbergUsername() string { return c.GotenbergUsername }
func (c *Config) GetGotenbergPassword() string { return c.GotenbergPassword }
func (c *Config) IsGotenbergEnabled() bool     { return c.GotenbergURL != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	brevoAPIKey := getEnv("BREVO_API_KEY", "")
	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:3000"),
		BusinessName:       getEnv("BUSINESS_NAME", "Vitrine"),
		OwnerEmail:         getEnv("OWNER_EMAIL", ""),
		EmailEnabled:       emailEnabled && (brevoAPIKey != "" || smtpHost != ""),
		BrevoAPIKey:        brevoAPIKey,
		SMTPHost:           smtpHost,
		SMTPPort:           mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "Vitrine"),
		EmailFromAddress:   getEnv("EMAIL_FROM_ADDRESS", ""),
		BookingTimezone:    getEnv("BOOKING_TIMEZONE", "Europe/Paris"),
		BookingOpenHour:    mustInt(getEnv("BOOKING_OPEN_HOUR", "11")),
		BookingCloseHour:   mustInt(getEnv("BOOKING_CLOSE_HOUR", "15")),
		BookingSlotMinutes: mustInt(getEnv("BOOKING_SLOT_MINUTES", "60")),
		BookingWeekdays:    parseWeekdays(getEnv("BOOKING_WEEKDAYS", "1,2,3,4")),
		MeetingPlatform:    getEnv("MEETING_PLATFORM", "meet"),
		CalendarID:         getEnv("CALENDAR_ID", ""),
		CalendarToken:      getEnv("CALENDAR_TOKEN", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		NurtureInterval:    mustDuration(getEnv("NURTURE_INTERVAL", "1h")),
		CronSecret:         getEnv("CRON_SECRET", ""),
		GotenbergURL:       getEnv("GOTENBERG_URL", ""),
		GotenbergUsername:  getEnv("GOTENBERG_USERNAME", ""),
		GotenbergPassword:  getEnv("GOTENBERG_PASSWORD", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CronSecret == "" {
		return nil, fmt.Errorf("CRON_SECRET is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.EmailEnabled && cfg.OwnerEmail == "" {
		return nil, fmt.Errorf("OWNER_EMAIL is required when email is enabled")
	}
	if cfg.BookingCloseHour <= cfg.BookingOpenHour {
		return nil, fmt.Errorf("BOOKING_CLOSE_HOUR must be after BOOKING_OPEN_HOUR")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

// parseWeekdays parses a CSV of weekday numbers (0=Sunday..6=Saturday).
func parseWeekdays(value string) []time.Weekday {
	parts := splitCSV(value)
	days := make([]time.Weekday, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
