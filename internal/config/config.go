package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Mail      MailConfig
	OTP       OTPConfig
	Deletion  DeletionConfig
	Sweeper   SweeperConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration. An empty URL disables the
// redis-backed resend cooldown, sweep lock and mail queue.
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// Mail transports
const (
	MailTransportSMTP  = "smtp"
	MailTransportQueue = "queue"
	MailTransportLog   = "log"
)

// MailConfig holds outgoing email configuration
type MailConfig struct {
	Transport     string
	From          string
	SubjectPrefix string
	SiteName      string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
}

// OTPConfig holds one-time code policy
type OTPConfig struct {
	Length         int
	TTL            time.Duration
	MaxAttempts    int
	ActivationTTL  time.Duration
	ResendCooldown time.Duration
}

// DeletionConfig holds the account deletion policy
type DeletionConfig struct {
	GracePeriod time.Duration
}

// SweeperConfig holds the pending deletion sweep schedule
type SweeperConfig struct {
	Enabled   bool
	Schedule  string
	BatchSize int
	LockTTL   time.Duration
}

// RateLimitConfig holds per-client limits for the public endpoints
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvAsInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "appstore"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Mail: MailConfig{
			Transport:     strings.ToLower(getEnv("MAIL_TRANSPORT", MailTransportLog)),
			From:          getEnv("MAIL_FROM", "JN App Store <no-reply@appstore.local>"),
			SubjectPrefix: getEnv("MAIL_SUBJECT_PREFIX", "[JN App Store] "),
			SiteName:      getEnv("MAIL_SITE_NAME", "JN App Store"),
			SMTPHost:      getEnv("SMTP_HOST", "localhost"),
			SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:      getEnv("SMTP_USER", ""),
			SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		},
		OTP: OTPConfig{
			Length:         getEnvAsInt("OTP_LENGTH", 6),
			TTL:            getEnvAsDuration("OTP_TTL", 10*time.Minute),
			MaxAttempts:    getEnvAsInt("OTP_MAX_ATTEMPTS", 5),
			ActivationTTL:  getEnvAsDuration("OTP_ACTIVATION_TTL", 24*time.Hour),
			ResendCooldown: getEnvAsDuration("OTP_RESEND_COOLDOWN", 30*time.Second),
		},
		Deletion: DeletionConfig{
			GracePeriod: getEnvAsDuration("DELETION_GRACE_PERIOD", 72*time.Hour),
		},
		Sweeper: SweeperConfig{
			Enabled:   getEnvAsBool("SWEEPER_ENABLED", true),
			Schedule:  getEnv("SWEEPER_SCHEDULE", "@every 1h"),
			BatchSize: getEnvAsInt("SWEEPER_BATCH_SIZE", 100),
			LockTTL:   getEnvAsDuration("SWEEPER_LOCK_TTL", 10*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
