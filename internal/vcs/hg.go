package vcs

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	gderr "github.com/gdasset/gdasset/internal/errors"
)

// Minimal Mercurial support: enough to read the default remote path and the
// working directory's parent revision without shelling out to hg.

func hasHgRepo(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".hg"))
	return err == nil && info.IsDir()
}

// hgRemoteURL reads paths.default from .hg/hgrc.
func hgRemoteURL(dir string) (string, error) {
	hgrc := filepath.Join(dir, ".hg", "hgrc")
	if _, err := os.Stat(hgrc); err != nil {
		return "", nil
	}
	cfg, err := ini.Load(hgrc)
	if err != nil {
		return "", gderr.Wrap(err, gderr.CategoryVCS, "reading %s", hgrc)
	}
	return cfg.Section("paths").Key("default").String(), nil
}

// hgCommit reads the first working-directory parent from .hg/dirstate; its
// first 20 bytes are the parent changeset hash.
func hgCommit(dir string) (string, error) {
	dirstate := filepath.Join(dir, ".hg", "dirstate")
	data, err := os.ReadFile(dirstate)
	if err != nil {
		return "", gderr.Wrap(err, gderr.CategoryVCS, "reading %s", dirstate)
	}
	if len(data) < 20 {
		return "", gderr.New(gderr.CategoryVCS, "%s is truncated", dirstate)
	}
	return hex.EncodeToString(data[:20]), nil
}
