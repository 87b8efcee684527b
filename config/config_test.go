package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "overtime.db", cfg.DatabaseURL)
	assert.Equal(t, "KCAL", cfg.CompanyName)
	assert.Equal(t, "Packaging", cfg.DefaultDepartment)
	assert.Equal(t, "static/kcal_logo.png", cfg.LogoPath)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.UsesDefaultSecret())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COMPANY_NAME", "Acme")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgresql://postgres@localhost:5432/overtime")
	t.Setenv("SESSION_TTL", "8h")
	t.Setenv("SECRET_KEY", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Acme", cfg.CompanyName)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.UsesDefaultSecret())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "overtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("DEFAULT_DEPARTMENT: Filling\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Filling", cfg.DefaultDepartment)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}
