package vcs

import (
	"github.com/go-git/go-git/v5"

	gderr "github.com/gdasset/gdasset/internal/errors"
)

func hasGitRepo(dir string) bool {
	_, err := git.PlainOpen(dir)
	return err == nil
}

// gitCommit returns the HEAD commit hash of the repository rooted at dir.
func gitCommit(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", gderr.Wrap(err, gderr.CategoryVCS, "opening git repository at %s", dir)
	}
	head, err := repo.Head()
	if err != nil {
		return "", gderr.Wrap(err, gderr.CategoryVCS, "resolving HEAD at %s", dir)
	}
	return head.Hash().String(), nil
}

// gitRemoteURL finds the URL of the repository's effective remote. Remotes
// are assigned per branch, so we try the current branch's remote, then its
// pushRemote, then the repository-wide pushDefault, and finally fall back to
// origin. This mirrors what git-aware UIs show even when the branch has no
// remote configured directly.
func gitRemoteURL(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", gderr.Wrap(err, gderr.CategoryVCS, "opening git repository at %s", dir)
	}
	cfg, err := repo.Config()
	if err != nil {
		return "", gderr.Wrap(err, gderr.CategoryVCS, "reading git config at %s", dir)
	}

	remoteName := ""
	if head, headErr := repo.Head(); headErr == nil && head.Name().IsBranch() {
		branch := head.Name().Short()
		if b, ok := cfg.Branches[branch]; ok && b.Remote != "" {
			remoteName = b.Remote
		} else if push := cfg.Raw.Section("branch").Subsection(branch).Option("pushRemote"); push != "" {
			remoteName = push
		} else if push := cfg.Raw.Section("remote").Option("pushDefault"); push != "" {
			remoteName = push
		}
	}
	if remoteName == "" {
		remoteName = "origin"
	}

	remote, ok := cfg.Remotes[remoteName]
	if !ok || len(remote.URLs) == 0 {
		return "", nil
	}
	return remote.URLs[0], nil
}
