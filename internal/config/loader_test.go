package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hast/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultWorkdir, cfg.Storage.Workdir)
	assert.Equal(t, config.BackendLocal, cfg.Storage.Backend)
	assert.Equal(t, config.DefaultAddress, cfg.Server.Address)
	assert.Equal(t, config.DefaultReadTimeout, cfg.Server.ReadTimeout)
	assert.False(t, cfg.Server.SharedLookups)
	assert.True(t, cfg.Server.Metrics)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Kafka.Enabled)

	limit, err := cfg.Server.BodyLimit()
	require.NoError(t, err)
	assert.Equal(t, int64(32<<20), limit)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hast.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  workdir: /var/lib/hast
  atomic_writes: true
  compression: zstd
server:
  address: 127.0.0.1:9999
  shared_lookups: true
  read_timeout: 5s
logging:
  level: debug
  format: json
kafka:
  enabled: true
  brokers: [k1:9092, k2:9092]
  topic: reports
`), 0o644))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/hast", cfg.Storage.Workdir)
	assert.True(t, cfg.Storage.AtomicWrites)
	assert.Equal(t, "zstd", cfg.Storage.Compression)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Address)
	assert.True(t, cfg.Server.SharedLookups)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "reports", cfg.Kafka.Topic)
	assert.Equal(t, config.DefaultKafkaGroup, cfg.Kafka.Group)
}

func TestLoad_EnvAndOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HAST_STORAGE_WORKDIR", "/from/env")
	t.Setenv("HAST_SERVER_ADDRESS", "0.0.0.0:1")

	cfg, err := config.Load("", map[string]any{"server.address": "127.0.0.1:2"})
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.Storage.Workdir)
	assert.Equal(t, "127.0.0.1:2", cfg.Server.Address)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hast.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: ftp\n"), 0o644))

	_, err := config.Load(path, nil)
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
}
