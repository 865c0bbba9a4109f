package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDriverWithSecret(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(`
db:
  driver: memory
jwt:
  secret: test-secret
`), 0o600))

	cfg, err := Load("local", dir)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "portfolio", cfg.Storage.Bucket)
	assert.Equal(t, 2*time.Second, cfg.Site.SplashMin)
	assert.Equal(t, 30*time.Millisecond, cfg.Site.TypewriterInterval)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
}

func TestLoad_MissingRequiredIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("db:\n  driver: postgres\n"), 0o600))
	t.Setenv("JWT_SECRET", "")

	_, err := Load("local", dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingConfig))
	assert.Contains(t, err.Error(), "jwt.secret")
	assert.Contains(t, err.Error(), "db.host")
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := Config{}
	cfg.JWT.Secret = "x"
	cfg.DB.Driver = "mysql"
	assert.Error(t, cfg.Validate())
}
