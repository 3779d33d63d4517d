package vcs

import (
	"os"
	"path/filepath"

	"github.com/gdasset/gdasset/internal/config"
	gderr "github.com/gdasset/gdasset/internal/errors"
)

// Info is everything the submission flow wants to know about the project's
// repository.
type Info struct {
	RepoURL     string // https browse URL
	Provider    Provider
	Commit      string
	IssuesURL   string
	DownloadURL string
}

type repoKind int

const (
	repoNone repoKind = iota
	repoGit
	repoHg
)

func detectRepoKind(dir string) repoKind {
	// Mercurial first, matching the original tool's probe order; a
	// directory with both is pathological either way.
	if hasHgRepo(dir) {
		return repoHg
	}
	if hasGitRepo(dir) {
		return repoGit
	}
	return repoNone
}

// FindProjectRoot finds the closest project root containing path: the
// nearest ancestor (or path itself) that holds a gdasset config file or a
// supported repository (Git or Mercurial).
func FindProjectRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", gderr.Wrap(err, gderr.CategoryVCS, "resolving %s", path)
	}
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}
	for dir := abs; ; dir = filepath.Dir(dir) {
		if _, statErr := os.Stat(filepath.Join(dir, config.FileName)); statErr == nil {
			return dir, nil
		}
		if detectRepoKind(dir) != repoNone {
			return dir, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}
	return "", gderr.New(gderr.CategoryVCS, "no project root found starting at %s (no %s file or repository)", path, config.FileName)
}

// Detect gathers repository facts for the project rooted at dir. Fields stay
// empty when the repository has no usable remote; only hard failures (no
// repository at all) return an error.
func Detect(dir string) (Info, error) {
	var remote, commit string
	var err error

	switch detectRepoKind(dir) {
	case repoGit:
		if remote, err = gitRemoteURL(dir); err != nil {
			return Info{}, err
		}
		if commit, err = gitCommit(dir); err != nil {
			return Info{}, err
		}
	case repoHg:
		if remote, err = hgRemoteURL(dir); err != nil {
			return Info{}, err
		}
		if commit, err = hgCommit(dir); err != nil {
			return Info{}, err
		}
	default:
		return Info{}, gderr.New(gderr.CategoryVCS, "no supported repository at %s", dir)
	}

	info := Info{
		RepoURL:  RemoteToHTTPS(remote),
		Provider: GuessProvider(remote),
		Commit:   commit,
	}
	info.IssuesURL = GuessIssuesURL(remote)
	info.DownloadURL = GuessDownloadURL(remote, commit)
	return info, nil
}
