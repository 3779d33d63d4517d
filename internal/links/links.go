// Package links classifies URLs found in a project README: whether a link is
// a plausible preview candidate, whether it points at an image, and whether
// it can be canonicalized into a video URL the asset library accepts.
package links

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".ogv":  true,
	".ogg":  true,
}

// emailRegexp requires a letter TLD, so bare package references like
// foo/bar@1.0.0 do not count as email addresses.
var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsInteresting reports whether href is a plausible preview candidate: any
// http(s) or scheme-relative URL qualifies, while mailto/ftp/etc. and bare
// email addresses (which Markdown autolinking would otherwise pick up) do
// not.
func IsInteresting(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	if u.Scheme != "" {
		return u.Scheme == "http" || u.Scheme == "https"
	}
	return !emailRegexp.MatchString(href)
}

// IsImage reports whether the URL path ends in a recognized image extension,
// case-insensitively and regardless of scheme, host, or query string.
func IsImage(href string) bool {
	return imageExtensions[pathExtension(href)]
}

// NormaliseVideo returns the canonical video URL for href and true if href is
// recognized as a video. YouTube URLs are rewritten to the single canonical
// watch form; other URLs qualify unchanged when their path has a known video
// file extension.
func NormaliseVideo(href string) (string, bool) {
	if canonical, ok := normaliseYouTube(href); ok {
		return canonical, true
	}
	if videoExtensions[pathExtension(href)] {
		return href, true
	}
	return "", false
}

func pathExtension(href string) string {
	p := href
	if u, err := url.Parse(href); err == nil {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}
