package configutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name  string  `json:"name"`
	Delay float64 `json:"delay"`
	Year  int     `json:"year"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0644)
	require.NoError(t, err)
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{
		// comments are allowed
		name: "base",
		delay: 1.5,
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ name: "local" }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Name)
	require.Equal(t, 1.5, cfg.Delay)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadConfigWithDefaults(t *testing.T) {
	dir := t.TempDir()
	defaults := testConfig{Name: "default", Delay: 1, Year: 1998}

	cfg, err := ReadConfigWithDefaults(filepath.Join(dir, "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)

	writeFile(t, filepath.Join(dir, "config.json5"), `{ year: 2020 }`)
	cfg, err = ReadConfigWithDefaults(filepath.Join(dir, "config.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "default", Delay: 1, Year: 2020}, cfg)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{ name: `)

	_, err := ReadConfigWithDefaults(filepath.Join(dir, "config.json5"), testConfig{})
	require.Error(t, err)
}
