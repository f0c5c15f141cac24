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

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  port: "9090"
  registration_url: https://tickets.example.com/register
assets:
  public_root: /srv/public
  cleanup_orphaned_assets: true
provisioning:
  workers: 8
  timeout: 30s
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, "https://tickets.example.com/register", conf.API.RegistrationURL)
	assert.Equal(t, "/srv/public", conf.Assets.PublicRoot)
	assert.True(t, conf.Assets.CleanupOrphanedAssets)
	assert.Equal(t, 8, conf.Provisioning.Workers)
	assert.Equal(t, 30*time.Second, conf.Provisioning.Timeout)

	// defaults fill in what the file leaves out
	assert.Equal(t, "uploads", conf.Assets.UploadsDir)
	assert.Equal(t, "tickets", conf.Assets.TicketsDir)
	assert.Equal(t, 3, conf.Provisioning.TokenAttempts)
	assert.Equal(t, "disable", conf.Postgres.SSLMode)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
api:
  port: "9090"
`)
	t.Setenv("API_PORT", "7070")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("PROVISIONING_WORKERS", "2")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", conf.API.Port)
	assert.Equal(t, "db.internal", conf.Postgres.Host)
	assert.Equal(t, 2, conf.Provisioning.Workers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{
			name: "zero workers",
			body: "provisioning:\n  workers: 0\n",
			want: errInvalidWorkers,
		},
		{
			name: "zero token attempts",
			body: "provisioning:\n  token_attempts: 0\n",
			want: errInvalidTokenAttempts,
		},
		{
			name: "same asset dirs",
			body: "assets:\n  uploads_dir: files\n  tickets_dir: files\n",
			want: errSameAssetDirs,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
