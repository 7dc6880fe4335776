package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	Schema       string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RateLimitConfig limits mutation requests per client
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerWindow int
	Window            time.Duration
}

// SchedulerConfig drives the maintenance job process
type SchedulerConfig struct {
	APIURL         string
	RequestTimeout time.Duration
	MetricsPort    string

	HeartbeatInterval time.Duration
	RestockInterval   time.Duration
	ReminderInterval  time.Duration
	ReportInterval    time.Duration
	ReminderWindow    time.Duration

	HeartbeatEnabled bool
	RestockEnabled   bool
	ReminderEnabled  bool
	ReportEnabled    bool

	HeartbeatLog string
	RestockLog   string
	ReminderLog  string
	ReportLog    string
}

// IsDevelopment reports whether the server runs in development mode
func (c ServerConfig) IsDevelopment() bool {
	return c.Env != "production"
}

// Load reads configuration from an optional .env file and the environment
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_REQUESTS", 60)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)
	v.SetDefault("SCHEDULER_API_URL", "http://localhost:8080")
	v.SetDefault("SCHEDULER_REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("SCHEDULER_METRICS_PORT", "9091")
	v.SetDefault("SCHEDULER_HEARTBEAT_INTERVAL", 5*time.Minute)
	v.SetDefault("SCHEDULER_RESTOCK_INTERVAL", 12*time.Hour)
	v.SetDefault("SCHEDULER_REMINDER_INTERVAL", 24*time.Hour)
	v.SetDefault("SCHEDULER_REPORT_INTERVAL", 7*24*time.Hour)
	v.SetDefault("SCHEDULER_REMINDER_WINDOW", 7*24*time.Hour)
	v.SetDefault("SCHEDULER_HEARTBEAT_ENABLED", true)
	v.SetDefault("SCHEDULER_RESTOCK_ENABLED", true)
	v.SetDefault("SCHEDULER_REMINDER_ENABLED", true)
	v.SetDefault("SCHEDULER_REPORT_ENABLED", true)
	v.SetDefault("SCHEDULER_HEARTBEAT_LOG", "/tmp/crm_heartbeat_log.txt")
	v.SetDefault("SCHEDULER_RESTOCK_LOG", "/tmp/low_stock_updates_log.txt")
	v.SetDefault("SCHEDULER_REMINDER_LOG", "/tmp/order_reminders_log.txt")
	v.SetDefault("SCHEDULER_REPORT_LOG", "/tmp/crm_report_log.txt")

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Database:     v.GetString("DB_DATABASE"),
			Schema:       v.GetString("DB_SCHEMA"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           v.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerWindow: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Scheduler: SchedulerConfig{
			APIURL:            strings.TrimRight(v.GetString("SCHEDULER_API_URL"), "/"),
			RequestTimeout:    v.GetDuration("SCHEDULER_REQUEST_TIMEOUT"),
			MetricsPort:       v.GetString("SCHEDULER_METRICS_PORT"),
			HeartbeatInterval: v.GetDuration("SCHEDULER_HEARTBEAT_INTERVAL"),
			RestockInterval:   v.GetDuration("SCHEDULER_RESTOCK_INTERVAL"),
			ReminderInterval:  v.GetDuration("SCHEDULER_REMINDER_INTERVAL"),
			ReportInterval:    v.GetDuration("SCHEDULER_REPORT_INTERVAL"),
			ReminderWindow:    v.GetDuration("SCHEDULER_REMINDER_WINDOW"),
			HeartbeatEnabled:  v.GetBool("SCHEDULER_HEARTBEAT_ENABLED"),
			RestockEnabled:    v.GetBool("SCHEDULER_RESTOCK_ENABLED"),
			ReminderEnabled:   v.GetBool("SCHEDULER_REMINDER_ENABLED"),
			ReportEnabled:     v.GetBool("SCHEDULER_REPORT_ENABLED"),
			HeartbeatLog:      v.GetString("SCHEDULER_HEARTBEAT_LOG"),
			RestockLog:        v.GetString("SCHEDULER_RESTOCK_LOG"),
			ReminderLog:       v.GetString("SCHEDULER_REMINDER_LOG"),
			ReportLog:         v.GetString("SCHEDULER_REPORT_LOG"),
		},
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
