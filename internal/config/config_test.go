package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key Load reads; viper treats empty variables as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	for key := range defaults {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "spysignal", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, 10, cfg.RegisterRateLimitPerMinute)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, 720*time.Hour, cfg.LogRetention)
	assert.False(t, cfg.PurgeExpiredMessages)
	assert.Zero(t, cfg.SignalMaxAge)
	assert.Equal(t, "spysignal", cfg.NATSSubjectPrefix)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/chat.db")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("SIGNAL_MAX_AGE", "10m")
	t.Setenv("PURGE_EXPIRED_MESSAGES", "true")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/chat.db", cfg.SQLitePath)
	assert.Equal(t, 0, cfg.RateLimitPerMinute)
	assert.Equal(t, 10*time.Minute, cfg.SignalMaxAge)
	assert.True(t, cfg.PurgeExpiredMessages)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "spysignal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"db_password: from-file\nport: \"9090\"\nsweep_interval: 15m\n",
	), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.DBPassword)
	assert.Equal(t, "7070", cfg.Port, "environment wins over the file")
	assert.Equal(t, 15*time.Minute, cfg.SweepInterval)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"postgres with password", Config{DBDriver: DriverPostgres, DBPassword: "pw", SweepInterval: time.Hour}, ""},
		{"postgres without password", Config{DBDriver: DriverPostgres, SweepInterval: time.Hour}, "DB_PASSWORD"},
		{"sqlite without path", Config{DBDriver: DriverSQLite, SweepInterval: time.Hour}, "SQLITE_PATH"},
		{"unknown driver", Config{DBDriver: "mysql", SweepInterval: time.Hour}, "unsupported DB_DRIVER"},
		{"zero sweep interval", Config{DBDriver: DriverSQLite, SQLitePath: "x.db"}, "SWEEP_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
