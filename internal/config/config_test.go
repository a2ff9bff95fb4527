package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "Interventi - Finalmente Casa", cfg.App.SiteTitle)
	assert.Equal(t, "info", cfg.Log.Level)
	read, write, idle := cfg.Server.Timeouts()
	assert.Equal(t, 15.0, read.Seconds())
	assert.Equal(t, 15.0, write.Seconds())
	assert.Equal(t, 60.0, idle.Seconds())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("MIGRATIONS", "yes")
	t.Setenv("APP_SITE_TITLE", "Prova")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Database.Migrations)
	assert.Equal(t, "Prova", cfg.App.SiteTitle)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7000\"\nlog_format: json\n"), 0o600))
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "console", cfg.Log.Format, "environment wins over the file")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_DRIVER", "mysql")
	_, err := Load("")
	assert.ErrorContains(t, err, "DATABASE_DRIVER")

	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("APP_ENV", "production")
	_, err = Load("")
	assert.ErrorContains(t, err, "SESSION_SECRET")
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "YES", " on "} {
		assert.True(t, ParseBool(s), s)
	}
	for _, s := range []string{"", "0", "false", "nope"} {
		assert.False(t, ParseBool(s), s)
	}
}
