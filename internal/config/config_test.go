package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	path := writeConfig(t, `
[server]
http_port = 8090

[database]
host = "localhost"
user = "booking"
password = "${TEST_DB_PASSWORD}"
dbname = "booking_engine"

[booking]
timezone = "Europe/London"
cancellation_window_hours = 12

[pricing]
customer_commission_percent = 7.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.HTTPPort)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, 12, cfg.Booking.CancellationWindowHours)
	assert.Equal(t, "Europe/London", cfg.Booking.Location().String())
	assert.Equal(t, 7.5, cfg.Pricing.CustomerCommissionPercent)
	assert.Equal(t, 10.0, cfg.Pricing.PartnerCommissionPercent, "default kept")
	assert.Equal(t, LockBackendMemory, cfg.Booking.LockBackend)
	assert.Contains(t, cfg.Database.DSN(), "password=s3cret")
	assert.Contains(t, cfg.Database.DSN(), "port=5432")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad timezone", func(c *Config) { c.Booking.Timezone = "Mars/Olympus" }},
		{"redis lock without redis", func(c *Config) { c.Booking.LockBackend = LockBackendRedis }},
		{"unknown lock backend", func(c *Config) { c.Booking.LockBackend = "etcd" }},
		{"commission over 100", func(c *Config) { c.Pricing.PartnerCommissionPercent = 150 }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"zero attempts", func(c *Config) { c.Booking.AllocationMaxAttempts = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			cfg.Database.Host = "localhost"
			cfg.Database.DBName = "db"
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
