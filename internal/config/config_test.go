package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  host: 0.0.0.0
  port: 8080
database:
  host: localhost
  port: 5432
  user: runnerly
  password: secret
  database: runnerly
  ssl_mode: disable
sendgrid:
  api_key: SG.test-key
  from_email: noreply@example.com
jwt:
  secret: test-secret-value-of-at-least-32-chars
pricing:
  base_city_price_cents: 1500
  per_km_price_cents: 120
  help_at_home_base_cents: 1000
  per_hour_rate_cents: 2500
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddress())
	assert.Equal(t, int64(1500), cfg.Pricing.BaseCityPriceCents)

	// Unset sections fall back to defaults.
	assert.Equal(t, 30, cfg.Archival.AfterDays)
	assert.Equal(t, "0 0 2 * * *", cfg.Scheduler.ArchiveCompletedBookings)
	assert.Equal(t, "0 0 7 * * *", cfg.Scheduler.SendStartReminders)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_SECRET", "env-secret-value-of-at-least-32-chars!")

	cfg, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "env-secret-value-of-at-least-32-chars!", cfg.JWT.Secret)
	assert.Contains(t, cfg.GetDatabaseConnectionString(), "db.internal")
}

func TestLoadRejectsShortJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")

	_, err := Load(writeConfig(t, testYAML))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
