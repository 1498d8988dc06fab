package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(BaseURLEnv, "")
	return dir
}

func TestSaveConfigCreatesDirectories(t *testing.T) {
	withHome(t)

	cfg := Config{BaseURL: "http://localhost:8080"}
	err := cfg.Save()
	require.NoError(t, err)

	info, err := os.Stat(Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadConfigNonExistent(t *testing.T) {
	withHome(t)

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveLoadRoundtripWithAllFields(t *testing.T) {
	withHome(t)

	original := Config{
		BaseURL:   "http://hub.internal:8080",
		APIKey:    "hub_verylongkeystring12345",
		Username:  "admin",
		PrefsPath: "/tmp/prefs.db",
		LogFile:   "/tmp/hubctl.log",
		LogLevel:  "debug",
	}

	require.NoError(t, original.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, original, *loaded)
}

func TestSaveConfigOverwritesExisting(t *testing.T) {
	withHome(t)

	require.NoError(t, (&Config{BaseURL: "http://one"}).Save())
	require.NoError(t, (&Config{BaseURL: "http://two"}).Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://two", loaded.BaseURL)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	dir := withHome(t)

	cfgDir := filepath.Join(dir, ".hubctl")
	require.NoError(t, os.MkdirAll(cfgDir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config"), []byte(""), 0600))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := withHome(t)

	cfgDir := filepath.Join(dir, ".hubctl")
	require.NoError(t, os.MkdirAll(cfgDir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config"), []byte("invalid: yaml: content:"), 0600))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadConfigMissingBaseURL(t *testing.T) {
	withHome(t)

	require.NoError(t, (&Config{APIKey: "key"}).Save())

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}

func TestConfigPermissionsStrictlyEnforced(t *testing.T) {
	withHome(t)

	require.NoError(t, (&Config{BaseURL: "http://localhost:8080"}).Save())
	require.NoError(t, os.Chmod(Path(), 0644))

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "permissions")
}

func TestSaveTightensExistingPermissions(t *testing.T) {
	withHome(t)

	require.NoError(t, (&Config{BaseURL: "http://localhost:8080"}).Save())
	require.NoError(t, os.Chmod(Path(), 0644))
	require.NoError(t, (&Config{BaseURL: "http://localhost:8080"}).Save())

	info, err := os.Stat(Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestResolvedBaseURLEnvOverride(t *testing.T) {
	withHome(t)
	cfg := &Config{BaseURL: "http://from-file"}
	assert.Equal(t, "http://from-file", cfg.ResolvedBaseURL())

	t.Setenv(BaseURLEnv, "http://from-env")
	assert.Equal(t, "http://from-env", cfg.ResolvedBaseURL())

	var missing *Config
	assert.Equal(t, "http://from-env", missing.ResolvedBaseURL())
}

func TestPrefsFileDefault(t *testing.T) {
	dir := withHome(t)
	assert.Equal(t, filepath.Join(dir, ".hubctl", "prefs.db"), (&Config{}).PrefsFile())
	assert.Equal(t, "/x/p.db", (&Config{PrefsPath: "/x/p.db"}).PrefsFile())

	var missing *Config
	assert.Equal(t, filepath.Join(dir, ".hubctl", "prefs.db"), missing.PrefsFile())
}

func TestPathReturnsCorrectLocation(t *testing.T) {
	path := Path()
	assert.Contains(t, path, ".hubctl")
	assert.Contains(t, path, "config")
}
