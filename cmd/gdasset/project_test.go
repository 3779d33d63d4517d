package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gdasset/gdasset/internal/config"
	gderr "github.com/gdasset/gdasset/internal/errors"
	"github.com/gdasset/gdasset/internal/library"
	"github.com/gdasset/gdasset/internal/markdown"
)

func projectDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestResolveProjectFlagsWinOverSavedConfig(t *testing.T) {
	root := projectDir(t, map[string]string{
		config.FileName: "title = \"Saved Title\"\nversion = \"0.9\"\nlicence = \"MIT\"\n",
	})

	project, err := resolveProject(sharedFlags{Root: root, Title: "Flag Title"})
	require.NoError(t, err)
	require.Equal(t, "Flag Title", project.cfg.Title)
	require.Equal(t, "0.9", project.cfg.Version)
	require.Equal(t, "MIT", project.cfg.Licence)
}

func TestResolveProjectFillsFromPlugin(t *testing.T) {
	root := projectDir(t, map[string]string{
		config.FileName: "",
		"addons/dummy/plugin.cfg": `[plugin]
name="Dummy Plugin"
version="1.2.0"
`,
	})

	project, err := resolveProject(sharedFlags{
		Root:   root,
		Plugin: filepath.Join(root, "addons", "dummy", "plugin.cfg"),
	})
	require.NoError(t, err)
	require.Equal(t, "Dummy Plugin", project.cfg.Title)
	require.Equal(t, "1.2.0", project.cfg.Version)
}

func TestDescribeRendersReadme(t *testing.T) {
	root := projectDir(t, map[string]string{
		config.FileName: "",
		"README.md":     "A handy plugin.\n\n![screenshot](https://example.org/shot.png)\n",
	})

	project, err := resolveProject(sharedFlags{Root: root, Readme: "README.md"})
	require.NoError(t, err)

	description, previews, err := project.describe()
	require.NoError(t, err)
	require.Equal(t, "A handy plugin.\n", description)
	require.Equal(t, []markdown.Preview{{Type: markdown.PreviewImage, Link: "https://example.org/shot.png"}}, previews)
}

func TestPayloadAssembly(t *testing.T) {
	root := projectDir(t, map[string]string{config.FileName: ""})
	project, err := resolveProject(sharedFlags{
		Root:     root,
		Title:    "Dummy Plugin",
		Version:  "1.2.0",
		Licence:  "MIT",
		Category: "Addons/Misc",
	})
	require.NoError(t, err)

	payload, err := project.payload("A handy plugin.\n", []markdown.Preview{
		{Type: markdown.PreviewVideo, Link: "https://youtube.com/watch?v=dQw4w9WgXcQ"},
	})
	require.NoError(t, err)
	require.Equal(t, "Dummy Plugin", payload["title"])
	require.Equal(t, "1.2.0", payload["version_string"])
	require.Equal(t, "MIT", payload["cost"])
	require.Equal(t, "7", payload["category_id"])
	require.Equal(t, []map[string]any{
		{"type": "video", "link": "https://youtube.com/watch?v=dQw4w9WgXcQ"},
	}, payload["previews"])
}

func TestPayloadRejectsUnknownCategory(t *testing.T) {
	root := projectDir(t, map[string]string{config.FileName: ""})
	project, err := resolveProject(sharedFlags{Root: root, Category: "zzz"})
	require.NoError(t, err)

	_, err = project.payload("", nil)
	require.Error(t, err)
	require.True(t, gderr.IsCategory(err, gderr.CategoryValidation))
}

func TestRequireFieldsNamesTheGaps(t *testing.T) {
	root := projectDir(t, map[string]string{config.FileName: ""})
	project, err := resolveProject(sharedFlags{Root: root, Title: "Dummy Plugin"})
	require.NoError(t, err)

	err = project.requireFields()
	require.Error(t, err)
	require.Contains(t, err.Error(), "version")
	require.Contains(t, err.Error(), "licence")
	require.Contains(t, err.Error(), "category")
	require.NotContains(t, err.Error(), "title")
}

func TestApplyListingFillsMissingFields(t *testing.T) {
	root := projectDir(t, map[string]string{config.FileName: ""})
	project, err := resolveProject(sharedFlags{Root: root, Title: "Flag Title"})
	require.NoError(t, err)

	project.applyListing(library.Payload{
		"title":          "Listing Title",
		"version_string": "2.0",
		"cost":           "MIT",
		"browse_url":     "https://github.com/someuser/dummy-repo",
	})
	require.Equal(t, "Flag Title", project.cfg.Title)
	require.Equal(t, "2.0", project.cfg.Version)
	require.Equal(t, "MIT", project.cfg.Licence)
	require.Equal(t, "https://github.com/someuser/dummy-repo", project.cfg.RepoURL)
}
