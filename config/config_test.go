package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"case_strategy_editor/services/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"RENDER_ENGINE", "EXPORT_TIMEOUT", "FRAME_INTERVAL", "GEOMETRY_FILE", "ARCHIVE_EXPORTS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "chromedp", cfg.RenderEngine)
	assert.Equal(t, 60*time.Second, cfg.ExportTimeout)
	assert.Equal(t, pagination.DefaultFrameInterval, cfg.FrameInterval)
	assert.False(t, cfg.ArchiveExports)
	assert.Equal(t, pagination.DefaultGeometry(), cfg.Geometry)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RENDER_ENGINE", "rod")
	t.Setenv("EXPORT_TIMEOUT", "45")
	t.Setenv("FRAME_INTERVAL", "32ms")
	t.Setenv("ARCHIVE_EXPORTS", "yes")
	t.Setenv("GEOMETRY_FILE", "")

	cfg := Load()
	assert.Equal(t, "rod", cfg.RenderEngine)
	assert.Equal(t, 45*time.Second, cfg.ExportTimeout)
	assert.Equal(t, 32*time.Millisecond, cfg.FrameInterval)
	assert.True(t, cfg.ArchiveExports)
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	t.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("TEST_DURATION", time.Minute))
}

func TestLoadGeometry(t *testing.T) {
	dir := t.TempDir()

	t.Run("partial override keeps defaults", func(t *testing.T) {
		path := filepath.Join(dir, "geometry.yaml")
		require.NoError(t, os.WriteFile(path, []byte("page_height: 1056\nmargins:\n  top: 40\n  bottom: 40\n  left: 70\n  right: 70\n"), 0o644))

		g, err := LoadGeometry(path)
		require.NoError(t, err)
		assert.Equal(t, 1056.0, g.PageHeight)
		assert.Equal(t, 40.0, g.Margins.Top)
		assert.Equal(t, 818.0, g.PageWidth)
		assert.Equal(t, "Letter", g.Sheet.Name)
	})

	t.Run("drifting geometry is rejected", func(t *testing.T) {
		path := filepath.Join(dir, "a4.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sheet:\n  name: A4\n  width_in: 8.27\n  height_in: 11.69\n"), 0o644))

		_, err := LoadGeometry(path)
		assert.ErrorIs(t, err, pagination.ErrInvalidGeometry)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadGeometry(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("no file", func(t *testing.T) {
		g, err := LoadGeometry("")
		require.NoError(t, err)
		assert.Equal(t, pagination.DefaultGeometry(), g)
	})
}
