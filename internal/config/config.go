package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone AuthMode = "none" // No authentication required (default)
	AuthModeJWT  AuthMode = "jwt"  // Bearer JWT required on mutating routes
)

type (
	Config struct {
		HTTP
		Database
		Auth
		Redis
		Tasks
		Maintenance
		Log
		Global
	}

	HTTP struct {
		Port               int32
		Host               string
		CORSAllowedOrigins []string
		BooksMaxPerPage    int
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver          string // sqlite, postgres or mysql
		DSN             string
		Path            string
		LogLevel        string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
	}
	Auth struct {
		Mode       AuthMode
		JWTSecret  string
		TokenTTL   time.Duration
		BcryptCost int

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Redis struct {
		Addr     string // empty disables redis; logout revocation stays in memory
		Password string
		DB       int
	}
	Tasks struct {
		Enabled           bool
		DatabasePath      string // sqlite file for the queue; derived from Database.Path when empty
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Maintenance struct {
		Enabled  bool
		Schedule string // Cron format: "30 3 * * *" = daily at 03:30
	}
	Log struct {
		Mode  string // development or production
		Level string
	}
)

// firstSet returns the first of keys that has a non-empty value.
func firstSet(v *viper.Viper, keys ...string) string {
	for _, key := range keys {
		if s := v.GetString(key); s != "" {
			return s
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadDotEnv loads variables from the given files (".env" when none are
// named) without overriding variables already set in the environment.
// Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("books_max_per_page", MaxBooksPerPage)
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	// Database defaults
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_log_level", "silent")
	v.SetDefault("database_max_open_conns", 10)
	v.SetDefault("database_max_idle_conns", 5)
	v.SetDefault("database_conn_max_lifetime", "1h")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("jwt_ttl", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	v.SetDefault("redis_db", 0)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("maintenance_enabled", false)
	v.SetDefault("maintenance_schedule", "30 3 * * *")

	v.SetDefault("log_mode", "production")
	v.SetDefault("log_level", "info")

	port := v.GetInt32("PORT")
	if appPort := v.GetInt32("APP_PORT"); appPort > 0 {
		port = appPort
	}

	return &Config{
		HTTP: HTTP{
			Port:               port,
			Host:               v.GetString("HOST"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			BooksMaxPerPage:    v.GetInt("BOOKS_MAX_PER_PAGE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:          v.GetString("DATABASE_DRIVER"),
			DSN:             v.GetString("DATABASE_DSN"),
			Path:            v.GetString("DATABASE_PATH"),
			LogLevel:        v.GetString("DATABASE_LOG_LEVEL"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		Auth: Auth{
			Mode:             AuthMode(strings.ToLower(v.GetString("AUTH_MODE"))),
			JWTSecret:        firstSet(v, "JWT_SECRET", "JWTSECRET"),
			TokenTTL:         v.GetDuration("JWT_TTL"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			DatabasePath:      v.GetString("TASKS_DATABASE_PATH"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Maintenance: Maintenance{
			Enabled:  v.GetBool("MAINTENANCE_ENABLED"),
			Schedule: v.GetString("MAINTENANCE_SCHEDULE"),
		},
		Log: Log{
			Mode:  v.GetString("LOG_MODE"),
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}
