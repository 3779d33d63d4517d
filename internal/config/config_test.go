package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	gderr "github.com/gdasset/gdasset/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileYieldsZeroConfig(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Config{}, cfg)
}

func TestLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	yes := true
	in := Config{
		Title:        "Dummy Plugin",
		Version:      "1.2.0",
		Licence:      "MIT",
		Category:     "Tools",
		RepoURL:      "https://github.com/someuser/dummy-repo",
		RepoProvider: "GitHub",
		AssetID:      "3133",
		Username:     "someuser",
		KeepImages:   &yes,
	}
	require.NoError(t, in.Save(root))

	out, err := Load(root)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, "title = \"x\"\npassword = \"hunter2\"\n")

	_, err := Load(root)
	require.Error(t, err)
	require.True(t, gderr.IsCategory(err, gderr.CategoryConfig))
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, "title = \n")

	_, err := Load(root)
	require.Error(t, err)
	require.True(t, gderr.IsCategory(err, gderr.CategoryConfig))
}

func TestMergePrefersReceiver(t *testing.T) {
	yes, no := true, false
	base := Config{Title: "From Flags", UnwrapLinks: &no}
	saved := Config{Title: "From File", Version: "0.9", UnwrapLinks: &yes, KeepImages: &yes}

	merged := base.Merge(saved)
	require.Equal(t, "From Flags", merged.Title)
	require.Equal(t, "0.9", merged.Version)
	require.Equal(t, &no, merged.UnwrapLinks)
	require.Equal(t, &yes, merged.KeepImages)
}

func TestLoadPlugin(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plugin.cfg", `[plugin]

name="Dummy Plugin"
description="Does dummy things."
author="someuser"
version="1.2.0"
script="plugin.gd"
`)

	plugin, err := LoadPlugin(path)
	require.NoError(t, err)
	require.Equal(t, "Dummy Plugin", plugin.Name)
	require.Equal(t, "Does dummy things.", plugin.Description)
	require.Equal(t, "someuser", plugin.Author)
	require.Equal(t, "1.2.0", plugin.Version)
}

func TestPluginAppliesOnlyMissingFields(t *testing.T) {
	plugin := PluginDescriptor{Name: "Dummy Plugin", Version: "1.2.0"}

	cfg := plugin.Apply(Config{Title: "Kept"})
	require.Equal(t, "Kept", cfg.Title)
	require.Equal(t, "1.2.0", cfg.Version)
}

func TestLoadSecretsFromDotEnv(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env", "GDASSET_TOKEN=tok123\nGDASSET_USERNAME=someuser\n")
	t.Setenv(EnvToken, "")
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")
	os.Unsetenv(EnvToken)
	os.Unsetenv(EnvUsername)

	secrets := LoadSecrets(root)
	require.Equal(t, "tok123", secrets.Token)
	require.Equal(t, "someuser", secrets.Username)
	require.Empty(t, secrets.Password)
}

func TestEnvironmentWinsOverDotEnv(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env", "GDASSET_TOKEN=from-file\n")
	t.Setenv(EnvToken, "from-env")

	secrets := LoadSecrets(root)
	require.Equal(t, "from-env", secrets.Token)
}
