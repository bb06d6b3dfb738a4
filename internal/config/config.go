package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Database
	DBDriver    string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	SQLitePath  string
	AutoMigrate bool

	// Server
	Port                       string
	CORSOrigins                string
	RateLimitPerMinute         int
	RegisterRateLimitPerMinute int

	// Retention
	SweepInterval        time.Duration
	LogRetention         time.Duration
	PurgeExpiredMessages bool
	SignalMaxAge         time.Duration

	// Events
	NATSURL           string
	NATSSubjectPrefix string

	// Observability
	LogLevel  string
	SentryDSN string
	AppEnv    string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var defaults = map[string]any{
	"DB_DRIVER":    DriverPostgres,
	"DB_HOST":      "localhost",
	"DB_PORT":      "5432",
	"DB_USER":      "postgres",
	"DB_PASSWORD":  "",
	"DB_NAME":      "spysignal",
	"DB_SSLMODE":   "disable",
	"SQLITE_PATH":  "spysignal.db",
	"AUTO_MIGRATE": true,

	"PORT":                           "8080",
	"CORS_ORIGINS":                   "*",
	"RATE_LIMIT_PER_MINUTE":          60,
	"REGISTER_RATE_LIMIT_PER_MINUTE": 10,

	"SWEEP_INTERVAL":         "1h",
	"LOG_RETENTION":          "720h",
	"PURGE_EXPIRED_MESSAGES": false,
	"SIGNAL_MAX_AGE":         "0s",

	"NATS_URL":            "",
	"NATS_SUBJECT_PREFIX": "spysignal",

	"LOG_LEVEL":  "info",
	"SENTRY_DSN": "",
	"APP_ENV":    "development",
}

// Load resolves configuration from defaults, an optional CONFIG_FILE and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:      v.GetString("DB_HOST"),
		DBPort:      v.GetString("DB_PORT"),
		DBUser:      v.GetString("DB_USER"),
		DBPassword:  v.GetString("DB_PASSWORD"),
		DBName:      v.GetString("DB_NAME"),
		DBSSLMode:   v.GetString("DB_SSLMODE"),
		SQLitePath:  v.GetString("SQLITE_PATH"),
		AutoMigrate: v.GetBool("AUTO_MIGRATE"),

		Port:                       v.GetString("PORT"),
		CORSOrigins:                v.GetString("CORS_ORIGINS"),
		RateLimitPerMinute:         v.GetInt("RATE_LIMIT_PER_MINUTE"),
		RegisterRateLimitPerMinute: v.GetInt("REGISTER_RATE_LIMIT_PER_MINUTE"),

		SweepInterval:        v.GetDuration("SWEEP_INTERVAL"),
		LogRetention:         v.GetDuration("LOG_RETENTION"),
		PurgeExpiredMessages: v.GetBool("PURGE_EXPIRED_MESSAGES"),
		SignalMaxAge:         v.GetDuration("SIGNAL_MAX_AGE"),

		NATSURL:           v.GetString("NATS_URL"),
		NATSSubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		SentryDSN: v.GetString("SENTRY_DSN"),
		AppEnv:    v.GetString("APP_ENV"),
	}
	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD environment variable is required")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must not be empty")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
