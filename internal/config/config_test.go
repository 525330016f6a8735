package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimal = `
[database]
user = "appointments"
dbname = "appointments"
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logs.Level)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 30, cfg.Booking.SlotStepMinutes)
	assert.Equal(t, "09:00", cfg.Booking.DefaultOpensAt)
	assert.Equal(t, 10, cfg.Dispatcher.BatchSize)
	assert.Equal(t, 3, cfg.Dispatcher.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.Cache.TTL())

	closed, err := cfg.Booking.ClosedWeekdays()
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Sunday}, closed)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load(writeConfig(t, minimal+`
[kafka]
enabled = true
brokers = ["ignored:9092"]
`))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Contains(t, cfg.Database.DSN(), "password=secret")
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no dbname", `[database]
user = "u"`},
		{"bad timezone", minimal + `
[booking]
default_timezone = "Mars/Olympus"`},
		{"bad weekday", minimal + `
[booking]
default_closed_days = ["caturday"]`},
		{"bad opening time", minimal + `
[booking]
default_opens_at = "25:00"`},
		{"rate limit without redis", minimal + `
[rate_limit]
enabled = true`},
		{"kafka without brokers", minimal + `
[kafka]
enabled = true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
