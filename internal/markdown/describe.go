package markdown

import (
	"net/url"

	"github.com/gdasset/gdasset/internal/links"
)

// PreviewType distinguishes the two preview media kinds the asset library
// accepts.
type PreviewType string

const (
	PreviewImage PreviewType = "image"
	PreviewVideo PreviewType = "video"
)

// Preview is one media reference extracted from the document for separate
// display. The preview list preserves document order of first encounter and
// is not deduplicated here.
type Preview struct {
	Type PreviewType
	Link string
}

// Options controls description assembly.
type Options struct {
	// UnwrapLinks rewrites interesting links to their bare URL, since the
	// asset library does not support any form of markup. When false, the
	// original source syntax is preserved.
	UnwrapLinks bool
	// PreserveHTML keeps raw HTML fragments verbatim instead of dropping
	// them.
	PreserveHTML bool
	// KeepImages leaves image syntax in the text in addition to recording
	// the preview entry.
	KeepImages bool

	// PrepImageURL and PrepLinkURL rewrite relative targets into absolute
	// URLs (typically against the repository's raw-content base and commit).
	// They are called only for non-absolute targets.
	PrepImageURL func(string) string
	PrepLinkURL  func(string) string

	// Changelog supplies the changelog source for changelog directives.
	Changelog ChangelogLoader
}

// DefaultOptions returns the defaults used by the CLI: links unwrapped, HTML
// dropped, images stripped from the text.
func DefaultOptions() Options {
	return Options{UnwrapLinks: true}
}

// Describe renders readme into the plain-text listing description and the
// ordered preview list. Images always produce a preview entry; interesting
// links that canonicalize to a video or carry an image extension become
// preview entries and disappear from the text; everything else follows
// Options.
func Describe(readme []byte, opts Options) (string, []Preview, error) {
	previews := []Preview{}

	prepImage := prepFunc(opts.PrepImageURL)
	prepLink := prepFunc(opts.PrepLinkURL)

	callbacks := Callbacks{
		Image: func(src string) Dispatch {
			previews = append(previews, Preview{Type: PreviewImage, Link: prepImage(src)})
			if opts.KeepImages {
				return RenderDefault()
			}
			return Drop()
		},
		Link: func(dest string) Dispatch {
			if !links.IsInteresting(dest) {
				return RenderDefault()
			}
			full := prepLink(dest)
			if video, ok := links.NormaliseVideo(full); ok {
				previews = append(previews, Preview{Type: PreviewVideo, Link: video})
				return Drop()
			}
			if links.IsImage(full) {
				previews = append(previews, Preview{Type: PreviewImage, Link: full})
				return Drop()
			}
			if opts.UnwrapLinks {
				return ReplaceWith(full)
			}
			return RenderDefault()
		},
		HTML: func(raw string) Dispatch {
			if opts.PreserveHTML {
				return RenderDefault()
			}
			return Drop()
		},
	}

	doc := Parse(readme)
	renderer := NewRenderer(readme, callbacks, opts.Changelog)
	description, err := renderer.Render(doc)
	if err != nil {
		return "", nil, err
	}
	return description, previews, nil
}

// prepFunc wraps a caller-supplied URL rewriter so it only sees non-absolute
// targets.
func prepFunc(prep func(string) string) func(string) string {
	return func(target string) string {
		if prep == nil {
			return target
		}
		if u, err := url.Parse(target); err == nil && u.IsAbs() {
			return target
		}
		return prep(target)
	}
}
