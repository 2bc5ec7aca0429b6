package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "PORT", "DB_DRIVER", "DATABASE_URL", "SQLITE_PATH", "JWT_SECRET",
		"JWT_ISSUER", "JWT_TTL_MINUTES", "BCRYPT_COST", "ADMIN_NAME", "ADMIN_EMAIL", "ADMIN_PASSWORD",
	} {
		t.Setenv(k, "")
	}
	// Keep godotenv from picking up a developer's .env.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaultsWithSQLite(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", DriverSQLite)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "taskhub.db", cfg.SQLitePath)
	assert.Equal(t, "taskhub", cfg.JWTIssuer)
	assert.Equal(t, 60, cfg.JWTTTLMinutes)
	assert.False(t, cfg.Admin.Enabled())
}

func TestLoadRequiresDatabaseURLForPostgres(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown DB_DRIVER")
}

func TestLoadYAMLThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
db_driver: postgres
database_url: postgres://yaml@localhost/db
jwt_ttl_minutes: 15
admin:
  email: admin@example.com
  password: admin123
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7070")
	t.Setenv("JWT_TTL_MINUTES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "postgres://yaml@localhost/db", cfg.DatabaseURL)
	assert.Equal(t, 15, cfg.JWTTTLMinutes)
	assert.Equal(t, "Admin User", cfg.Admin.Name)
	assert.True(t, cfg.Admin.Enabled())
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.ErrorContains(t, err, "parse config file")
}

func TestLoadMissingYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.ErrorContains(t, err, "read config file")
}
