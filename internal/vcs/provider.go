// Package vcs discovers the project root and derives repository facts the
// asset library wants: remote URL, hosting provider, head commit, issues
// URL, download URL, and the raw-content base used to absolutize relative
// README links.
package vcs

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	gderr "github.com/gdasset/gdasset/internal/errors"
)

// Provider is a recognized repository hosting provider.
type Provider string

const (
	ProviderCustom    Provider = "Custom"
	ProviderGitHub    Provider = "GitHub"
	ProviderGitLab    Provider = "GitLab"
	ProviderBitbucket Provider = "BitBucket"
	// Heptapod is a GitLab fork and the main hosted Mercurial provider; it
	// is detected separately because its archive URLs differ.
	ProviderHeptapod Provider = "Heptapod"
)

// Normalised returns the provider name the asset library accepts. Heptapod
// listings are submitted as GitLab.
func (p Provider) Normalised() string {
	if p == ProviderHeptapod {
		return string(ProviderGitLab)
	}
	return string(p)
}

// endpoint holds the parts of a remote URL we care about.
type endpoint struct {
	host  string
	owner string
	repo  string
}

// parseRemote parses a remote URL in any of the usual forms (https, ssh,
// scp-like) into host and owner/repo parts.
func parseRemote(remote string) (endpoint, bool) {
	if remote == "" {
		return endpoint{}, false
	}
	ep, err := transport.NewEndpoint(remote)
	if err != nil || ep.Host == "" {
		return endpoint{}, false
	}
	path := strings.Trim(ep.Path, "/")
	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return endpoint{}, false
	}
	// GitLab allows nested groups; everything before the last segment is
	// the owner path.
	return endpoint{
		host:  strings.ToLower(ep.Host),
		owner: strings.Join(parts[:len(parts)-1], "/"),
		repo:  parts[len(parts)-1],
	}, true
}

// RemoteToHTTPS normalises a remote URL to its https browse form, or returns
// "" when the remote does not look like a hosted repository.
func RemoteToHTTPS(remote string) string {
	ep, ok := parseRemote(remote)
	if !ok {
		return ""
	}
	return "https://" + ep.host + "/" + ep.owner + "/" + ep.repo
}

// GuessProvider identifies the hosting provider from a remote URL.
func GuessProvider(remote string) Provider {
	ep, ok := parseRemote(remote)
	if !ok {
		return ProviderCustom
	}
	switch {
	case strings.Contains(ep.host, "heptapod.net"):
		return ProviderHeptapod
	case ep.host == "github.com" || strings.Contains(ep.host, "github"):
		return ProviderGitHub
	case strings.Contains(ep.host, "gitlab"):
		return ProviderGitLab
	case strings.Contains(ep.host, "bitbucket"):
		return ProviderBitbucket
	}
	return ProviderCustom
}

// GuessIssuesURL derives the issue tracker URL from the remote URL, or ""
// when the provider's URL scheme is unknown.
func GuessIssuesURL(remote string) string {
	switch GuessProvider(remote) {
	case ProviderGitHub, ProviderGitLab, ProviderBitbucket, ProviderHeptapod:
		if https := RemoteToHTTPS(remote); https != "" {
			return https + "/issues"
		}
	}
	return ""
}

// GuessDownloadURL derives the commit archive URL from the remote URL, or ""
// when the provider's URL scheme is unknown.
func GuessDownloadURL(remote, commit string) string {
	https := RemoteToHTTPS(remote)
	if https == "" || commit == "" {
		return ""
	}
	switch GuessProvider(remote) {
	case ProviderGitHub, ProviderGitLab:
		return https + "/archive/" + commit + ".zip"
	case ProviderHeptapod:
		return https + "/-/archive/" + commit + "/" + commit + ".zip"
	case ProviderBitbucket:
		return https + "/get/" + commit + ".zip"
	}
	return ""
}

// ResolveContentURL resolves a relative file path against the provider's
// raw-content URL for the given commit, e.g.
// https://raw.githubusercontent.com/owner/repo/commit/relative/path.
//
// pathOffset, when non-empty, is the slash-separated location of the source
// document relative to the repository root (links in docs/README.md resolve
// under docs/).
func ResolveContentURL(remote, commit, relativePath, pathOffset string) (string, error) {
	ep, ok := parseRemote(remote)
	if !ok {
		return "", gderr.New(gderr.CategoryVCS, "cannot resolve relative path %q: unrecognized remote %q", relativePath, remote)
	}
	rel := relativePath
	if pathOffset != "" {
		rel = strings.Trim(pathOffset, "/") + "/" + rel
	}
	switch GuessProvider(remote) {
	case ProviderGitHub:
		return "https://raw.githubusercontent.com/" + ep.owner + "/" + ep.repo + "/" + commit + "/" + rel, nil
	case ProviderGitLab, ProviderHeptapod:
		return "https://" + ep.host + "/" + ep.owner + "/" + ep.repo + "/-/raw/" + commit + "/" + rel, nil
	case ProviderBitbucket:
		return "", gderr.New(gderr.CategoryVCS, "cannot resolve relative path %q: not supported for Bitbucket repositories", relativePath)
	}
	return "", gderr.New(gderr.CategoryVCS, "cannot resolve relative path %q for provider %q", relativePath, GuessProvider(remote))
}
