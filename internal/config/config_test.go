package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
env: "prod"
storage_path: "/var/lib/students/storage.db"
collection:
  page_size: 25
visualizer:
  algorithm: "selection"
  field: "name"
  descending: true
  step_delay: 100ms
autosave:
  interval: 1m
import:
  path: "seed.csv"
export:
  path: "out.xml"
  format: "xml"
metrics:
  textfile: "students.prom"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "/var/lib/students/storage.db", cfg.StoragePath)
	assert.Equal(t, 25, cfg.Collection.PageSize)
	assert.Equal(t, Visualizer{
		StepDelay:  100 * time.Millisecond,
		Algorithm:  "selection",
		Field:      "name",
		Descending: true,
	}, cfg.Visualizer)
	assert.Equal(t, time.Minute, cfg.Autosave.Interval)
	assert.Equal(t, "seed.csv", cfg.Import.Path)
	assert.Equal(t, Export{Path: "out.xml", Format: "xml"}, cfg.Export)
	assert.Equal(t, "students.prom", cfg.Metrics.Textfile)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "env: dev\nstorage_path: storage.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Collection.PageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Visualizer.StepDelay)
	assert.Equal(t, "id", cfg.Visualizer.Field)
	assert.False(t, cfg.Visualizer.Descending)
	assert.Empty(t, cfg.Visualizer.Algorithm)
	assert.Equal(t, 30*time.Second, cfg.Autosave.Interval)
	assert.Equal(t, "json", cfg.Export.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "env: dev\nstorage_path: storage.db\ncollection:\n  page_size: 5\n")
	t.Setenv("COLLECTION_PAGE_SIZE", "50")
	t.Setenv("AUTOSAVE_INTERVAL", "-1s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Collection.PageSize)
	assert.Equal(t, -time.Second, cfg.Autosave.Interval)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "does not exist")

	_, err = Load(writeConfig(t, "env: dev\n"))
	assert.Error(t, err, "storage_path is required")

	_, err = Load(writeConfig(t, "env: dev\nstorage_path: s.db\ncollection:\n  page_size: -3\n"))
	assert.ErrorContains(t, err, "page_size")
}
