package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// ConfigurationError reports missing or invalid settings.
type ConfigurationError struct {
	Missing []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	switch {
	case len(e.Missing) > 0 && e.Err != nil:
		return fmt.Sprintf("missing required environment variables: %v; %v", e.Missing, e.Err)
	case len(e.Missing) > 0:
		return fmt.Sprintf("missing required environment variables: %v", e.Missing)
	case e.Err != nil:
		return "invalid configuration: " + e.Err.Error()
	default:
		return "invalid configuration"
	}
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Config aggregates runtime configuration for the bot and supporting services.
type Config struct {
	BotToken        string
	BotID           int64
	DBDriver        string
	MySQLDSN        string
	SQLitePath      string
	TablePrefix     string
	LogLevel        string
	PollTimeout     int
	LimiterEnabled  bool
	LimiterInterval time.Duration
	LimiterTimeout  time.Duration
	AdminListenAddr string
	AdminUsername   string
	AdminPassword   string
	WebhookSecret   string
	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3UsePathStyle  bool
	S3Prefix        string
}

// ArchiveEnabled reports whether raw updates should be copied to S3.
func (c Config) ArchiveEnabled() bool {
	return c.S3Bucket != ""
}

// Load reads configuration from environment variables, applying sane defaults.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, &ConfigurationError{Err: err}
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		BotToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		BotID:           getInt64("BOT_ID", 0),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		MySQLDSN:        os.Getenv("MYSQL_DSN"),
		SQLitePath:      getEnv("SQLITE_PATH", "updates.db"),
		TablePrefix:     os.Getenv("TABLE_PREFIX"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		PollTimeout:     getInt("POLL_TIMEOUT_SECONDS", 60),
		LimiterEnabled:  getBool("LIMITER_ENABLED", true),
		LimiterInterval: time.Millisecond * time.Duration(getInt("LIMITER_INTERVAL_MS", 1000)),
		LimiterTimeout:  time.Second * time.Duration(getInt("LIMITER_TIMEOUT_SECONDS", 60)),
		AdminListenAddr: getEnv("ADMIN_LISTEN_ADDR", ":8080"),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		WebhookSecret:   os.Getenv("WEBHOOK_SECRET"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3Region:        os.Getenv("S3_REGION"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3UsePathStyle:  getBool("S3_USE_PATH_STYLE", false),
		S3Prefix:        getEnv("S3_PREFIX", "updates"),
	}

	if cfg.BotID == 0 {
		cfg.BotID = BotIDFromToken(cfg.BotToken)
	}

	var missing []string
	var problems []error
	if cfg.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if cfg.BotID == 0 && cfg.BotToken != "" {
		problems = append(problems, errors.New("bot id cannot be derived from TELEGRAM_BOT_TOKEN, set BOT_ID"))
	}
	if cfg.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}

	switch cfg.DBDriver {
	case DriverMySQL:
		if cfg.MySQLDSN == "" {
			missing = append(missing, "MYSQL_DSN")
		} else if _, err := mysql.ParseDSN(cfg.MySQLDSN); err != nil {
			problems = append(problems, fmt.Errorf("parse MYSQL_DSN: %w", err))
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	default:
		problems = append(problems, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver))
	}

	if cfg.ArchiveEnabled() {
		if cfg.S3Region == "" {
			missing = append(missing, "S3_REGION")
		}
		if cfg.S3AccessKey == "" {
			missing = append(missing, "S3_ACCESS_KEY")
		}
		if cfg.S3SecretKey == "" {
			missing = append(missing, "S3_SECRET_KEY")
		}
	}

	if len(missing) > 0 || len(problems) > 0 {
		return Config{}, &ConfigurationError{Missing: missing, Err: errors.Join(problems...)}
	}

	return cfg, nil
}

// BotIDFromToken extracts the numeric bot id that prefixes a bot token.
func BotIDFromToken(token string) int64 {
	head, _, found := strings.Cut(token, ":")
	if !found {
		return 0
	}
	id, err := strconv.ParseInt(head, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// loadEnvFile loads the first env file found. A missing file is not an
// error: the process environment may already carry everything.
func loadEnvFile() error {
	candidates := []string{}
	if custom, ok := os.LookupEnv("CONFIG_ENV_PATH"); ok && custom != "" {
		candidates = append(candidates, custom)
	}
	candidates = append(candidates,
		filepath.Join("configs", ".env"),
		".env",
	)

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("access env file %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	return nil
}
