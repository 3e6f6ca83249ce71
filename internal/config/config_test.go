package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("ALMANAC_DB_PASSWORD", "s3cret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  host: db
  user: almanac
  password: ${ALMANAC_DB_PASSWORD}
  dbname: almanac
rabbitmq:
  enabled: true
harvest:
  auto_approve_threshold: 70
schedule:
  run_all: "0 2 * * *"
http:
  admin_token: token
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "host=db port=5432 user=almanac password=s3cret dbname=almanac sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, "almanac", cfg.RabbitMQ.Exchange)
	assert.Equal(t, 70, cfg.Harvest.AutoApproveThreshold)
	assert.Equal(t, 30*time.Second, cfg.Harvest.FetchTimeout)
	assert.Equal(t, "0 2 * * *", cfg.Schedule.RunAll)
	assert.Empty(t, cfg.Schedule.Publish)
	assert.Equal(t, 10*time.Minute, cfg.Schedule.RunTimeout)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "read config file")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 60, cfg.Harvest.AutoApproveThreshold)
	assert.Equal(t, "system@solarpunkalmanac.org", cfg.Harvest.SystemUserEmail)
	assert.False(t, cfg.RabbitMQ.Enabled)
}
