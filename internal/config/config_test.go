package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEOMARK_AUTH_JWTSECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr)
	assert.Equal(t, "data/geomark.db", cfg.Database.Path)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, "marker-backups", cfg.Storage.KeyPrefix)
	assert.Equal(t, 2, cfg.Backup.Workers)
	assert.Equal(t, 16, cfg.Backup.QueueSize)
	assert.Equal(t, 15*time.Minute, cfg.Backup.URLTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEOMARK_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("GEOMARK_AUTH_TOKENTTL", "1h")
	t.Setenv("GEOMARK_AUTH_BCRYPTCOST", "12")
	t.Setenv("GEOMARK_STORAGE_BUCKET", "backups")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "backups", cfg.Storage.Bucket)
}

func TestValidate(t *testing.T) {
	var cfg Config
	cfg.Auth.TokenTTL = time.Hour
	cfg.Auth.BcryptCost = 10

	assert.Error(t, cfg.Validate(), "empty secret must be rejected")

	cfg.Auth.JWTSecret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Auth.BcryptCost = 99
	assert.Error(t, cfg.Validate())

	cfg.Auth.BcryptCost = 10
	cfg.Auth.TokenTTL = 0
	assert.Error(t, cfg.Validate())
}
