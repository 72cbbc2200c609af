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
	path := filepath.Join(t.TempDir(), "fieldops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAMLWithDefaults(t *testing.T) {
	path := writeConfig(t, `
db_url: postgres://fieldops@localhost/fieldops
jwt_secret: yaml-secret
log:
  level: debug
archive:
  bucket: havs-archive
  region: eu-west-2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:5173", cfg.CORSOrigin)
	assert.Equal(t, "yaml-secret", cfg.JWTSecret)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
	assert.Equal(t, "havs-archive", cfg.Archive.Bucket)
	assert.Equal(t, "havs", cfg.Archive.Prefix)
	assert.False(t, cfg.Google.Enabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
port: "9000"
db_url: postgres://yaml
jwt_secret: yaml-secret
`)
	t.Setenv("DB_URL", "postgres://env")
	t.Setenv("PORT", "9100")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("GOOGLE_REDIRECT_URL", "https://fieldops.example.com/auth/google/callback")
	t.Setenv("ARCHIVE_ENDPOINT", "http://localhost:9000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.DBURL)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "yaml-secret", cfg.JWTSecret)
	assert.True(t, cfg.Google.Enabled())
	assert.Equal(t, "http://localhost:9000", cfg.Archive.Endpoint)
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("DB_URL", "postgres://env")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
}

func TestLoadValidation(t *testing.T) {
	for _, key := range []string{"PORT", "DB_URL", "JWT_SECRET", "ARCHIVE_ENDPOINT"} {
		t.Setenv(key, "")
	}
	cases := map[string]string{
		"missing secret":   "db_url: postgres://x\n",
		"missing db":       "jwt_secret: s\n",
		"non-numeric port": "port: http\ndb_url: postgres://x\njwt_secret: s\n",
		"bad endpoint":     "db_url: postgres://x\njwt_secret: s\narchive:\n  endpoint: not a url\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.ErrorContains(t, err, "config validation failed")
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = Load(writeConfig(t, "port: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse config file")
}
