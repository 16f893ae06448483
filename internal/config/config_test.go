package config

import (
	"testing"

	apperrors "gtdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATA_SOURCE", "DATA_FILE", "PORT", "SAMPLE_SIZE", "SAMPLE_SEED", "CHART_CACHE_SIZE", "PPROF_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceFile, cfg.Data.Source)
	assert.Equal(t, "gtd_insight_ready.csv", cfg.Data.FilePath)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5000, cfg.Dashboard.SampleSize)
	assert.Equal(t, int64(5), cfg.Dashboard.SampleSeed)
	assert.Equal(t, 128, cfg.Dashboard.CacheSize)
	assert.False(t, cfg.Profiling.Enabled)
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	t.Setenv("DATA_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	t.Setenv("DATA_SOURCE", "s3")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_SOURCE")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_SOURCE", "FILE")
	t.Setenv("DATA_FILE", "/data/gtd.xlsx")
	t.Setenv("SAMPLE_SIZE", "250")
	t.Setenv("SAMPLE_SEED", "not-a-number")
	t.Setenv("PPROF_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SourceFile, cfg.Data.Source)
	assert.Equal(t, "/data/gtd.xlsx", cfg.Data.FilePath)
	assert.Equal(t, 250, cfg.Dashboard.SampleSize)
	assert.Equal(t, int64(5), cfg.Dashboard.SampleSeed)
	assert.True(t, cfg.Profiling.Enabled)
}

func TestLoadWithDataFile(t *testing.T) {
	t.Setenv("DATA_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(WithDataFile("/tmp/gtd.csv"))
	require.NoError(t, err)
	assert.Equal(t, SourceFile, cfg.Data.Source)
	assert.Equal(t, "/tmp/gtd.csv", cfg.Data.FilePath)
}
