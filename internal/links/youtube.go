package links

import (
	"net/url"
	"strings"
)

// youtubeHosts are the long-form hosts that carry video ids in their path or
// query. The short-link host youtu.be is handled separately because of its
// malformed-but-accepted `id&param=value` form.
var youtubeHosts = map[string]bool{
	"youtube.com":          true,
	"m.youtube.com":        true,
	"music.youtube.com":    true,
	"youtube-nocookie.com": true,
}

// normaliseYouTube rewrites recognized YouTube URL shapes to the canonical
// https://youtube.com/watch?v=<id> form. Shapes that do not reliably map to
// a single video id (e.g. attribution_link) are rejected.
func normaliseYouTube(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	if host == "youtu.be" {
		// Short links in the wild frequently glue parameters on without a
		// '?' separator; YouTube accepts them, so we do too.
		id := strings.Trim(u.Path, "/")
		id, _, _ = strings.Cut(id, "&")
		return canonicalWatchURL(id)
	}
	if !youtubeHosts[host] {
		return "", false
	}

	segments := splitPath(u.Path)
	if len(segments) == 0 {
		return "", false
	}
	switch segments[0] {
	case "watch", "embed", "v", "e", "live", "shorts":
		// The id rides either in the v query parameter or as the last path
		// segment, for every one of these prefixes.
		if id := u.Query().Get("v"); id != "" {
			return canonicalWatchURL(id)
		}
		if len(segments) > 1 {
			return canonicalWatchURL(segments[len(segments)-1])
		}
	case "oembed":
		// The oembed endpoint wraps the real video URL in its url query
		// parameter; unwrap and canonicalize that instead.
		if wrapped := u.Query().Get("url"); wrapped != "" {
			return normaliseYouTube(wrapped)
		}
	}
	return "", false
}

func canonicalWatchURL(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	return "https://youtube.com/watch?v=" + id, true
}

func splitPath(p string) []string {
	var segments []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
