package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 5000
  env: production
database:
  driver: mysql
  url: "user:pass@tcp(localhost:3306)/portal"
jwt:
  secret: from-file
google:
  itikaf_spreadsheet_id: sheet-123
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "6000")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "sheet-123", cfg.Google.ItikafSpreadsheetID)
	assert.Equal(t, "local", cfg.Storage.Type, "defaults survive when the file omits a section")
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("DATABASE_URL", "postgres://localhost/portal")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestRedisAndSheetsToggles(t *testing.T) {
	cfg := Defaults()
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Google.SheetsEnabled())

	cfg.Redis.Addr = "localhost:6379"
	cfg.Google.CredentialsJSON = "{}"
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Google.SheetsEnabled())
}
