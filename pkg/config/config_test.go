package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 150, cfg.Parser.MaxLength)
	assert.Equal(t, []string{"中国", "中华人民共和国"}, cfg.Parser.StopWords)
	assert.Equal(t, SourceFile, cfg.Catalog.Source)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, `
[parser]
max_length = 80

[catalog]
source = "postgres"
dsn = "postgres://localhost/regions"

[cache]
enabled = true
size = 50
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Parser.MaxLength)
	assert.Equal(t, []string{"中国", "中华人民共和国"}, cfg.Parser.StopWords, "missing keys keep defaults")
	assert.Equal(t, SourcePostgres, cfg.Catalog.Source)
	assert.Equal(t, "postgres://localhost/regions", cfg.Catalog.DSN)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 50, cfg.Cache.Size)
	assert.Equal(t, 3600, cfg.Cache.TTLSeconds)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := writeFile(t, `
[parser]
max_length = "long"
stop_words = ["中国"]

[batch]
workers = 4

[log]
formatter = "json"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.Parser.MaxLength, "bad value falls back to default")
	assert.Equal(t, []string{"中国"}, cfg.Parser.StopWords)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, "json", cfg.Log.Formatter)
}

func TestLoadConfigUnparsable(t *testing.T) {
	path := writeFile(t, "[parser\nmax_length = ")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.FileExists(t, path)

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	n := 60
	require.NoError(t, cfg.Update(path, &n, []string{"中国"}))

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 60, reloaded.Parser.MaxLength)
	assert.Equal(t, []string{"中国"}, reloaded.Parser.StopWords)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvCatalog, "")
	t.Setenv(EnvPGDSN, "postgres://db/regions")
	t.Setenv(EnvRedisAddr, "cache:6379")
	t.Setenv(EnvRedisDB, "2")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, SourcePostgres, cfg.Catalog.Source)
	assert.Equal(t, "postgres://db/regions", cfg.Catalog.DSN)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 2, cfg.Cache.RedisDB)
}

func TestApplyEnvFile(t *testing.T) {
	t.Setenv(EnvPGDSN, "")
	t.Setenv(EnvRedisAddr, "")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvCatalog+"=/srv/regions.snap\n"), 0644))
	t.Setenv(EnvCatalog, "")
	os.Unsetenv(EnvCatalog)

	LoadEnvFile(envFile)
	assert.Equal(t, "/srv/regions.snap", os.Getenv(EnvCatalog))

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, SourceFile, cfg.Catalog.Source)
	assert.Equal(t, "/srv/regions.snap", cfg.Catalog.Path)
}
