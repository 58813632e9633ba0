package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParse_AppliesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte("database:\n  username: root\n"))
	require.NoError(t, err)

	assert.Equal(t, "root", cfg.Database.Username)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.HTTP.Addr)
	assert.Equal(t, 0, cfg.Prediction.MinDigit)
	assert.Equal(t, 1000, cfg.Prediction.MaxDigit)
	assert.Equal(t, 201, cfg.Prediction.FallbackMin)
	assert.Equal(t, 400, cfg.Prediction.FallbackMax)
	assert.Equal(t, 6, cfg.Prediction.HistoryMonths)
	assert.Equal(t, 30, cfg.Prediction.RecentWindow)
	assert.Equal(t, "uniform", cfg.Prediction.Algorithm)
	assert.Equal(t, 30*time.Second, cfg.App.CacheTTL)
}

func TestParse_LegacyRange(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte("prediction:\n  min_digit: 1\n  max_digit: 200\n  fallback_min: 50\n  fallback_max: 150\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Prediction.MinDigit)
	assert.Equal(t, 200, cfg.Prediction.MaxDigit)
}

func TestParse_RejectsFallbackOutsideRange(t *testing.T) {
	clearEnv(t)

	_, err := Parse([]byte("prediction:\n  min_digit: 1\n  max_digit: 200\n"))
	assert.Error(t, err)
}

func TestParse_RejectsInvertedRange(t *testing.T) {
	clearEnv(t)

	_, err := Parse([]byte("prediction:\n  min_digit: 500\n  max_digit: 100\n"))
	assert.Error(t, err)
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")

	cfg, err := Parse([]byte("database:\n  host: localhost\n  password: plain\n"))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 3307, cfg.Database.Port)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "http://pushgateway:9091", cfg.App.PushgatewayURL)
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: \":8080\"\nprediction:\n  algorithm: weighted\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "weighted", cfg.Prediction.Algorithm)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDatabase_DSN(t *testing.T) {
	d := Database{Username: "u", Password: "p", Host: "h", Port: 3306, Database: "db"}
	assert.Equal(t, "u:p@tcp(h:3306)/db?charset=utf8mb4&parseTime=True&loc=Local", d.GetDSN())
	assert.Equal(t, "mysql://u:p@tcp(h:3306)/db?multiStatements=true", d.GetMigrationURL())
}
