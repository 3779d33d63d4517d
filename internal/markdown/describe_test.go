package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"

	gderr "github.com/gdasset/gdasset/internal/errors"
)

func TestDescribe_EndToEnd(t *testing.T) {
	readme := "A handy plugin.\n\n" +
		"![screenshot](https://example.com/shot.png)\n\n" +
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s\n"

	description, previews, err := Describe([]byte(readme), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "A handy plugin.\n", description)
	require.Equal(t, []Preview{
		{Type: PreviewImage, Link: "https://example.com/shot.png"},
		{Type: PreviewVideo, Link: "https://youtube.com/watch?v=dQw4w9WgXcQ"},
	}, previews)
}

func TestDescribe_ImageSuffixedLinkBecomesPreview(t *testing.T) {
	readme := "Grab [the screenshot](https://example.com/pic.png) here.\n"
	description, previews, err := Describe([]byte(readme), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "Grab  here.\n", description)
	require.Equal(t, []Preview{{Type: PreviewImage, Link: "https://example.com/pic.png"}}, previews)
}

func TestDescribe_UnwrapLinks(t *testing.T) {
	readme := "Read [the manual](https://example.com/manual).\n"

	description, previews, err := Describe([]byte(readme), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "Read https://example.com/manual.\n", description)
	require.Empty(t, previews)

	opts := DefaultOptions()
	opts.UnwrapLinks = false
	description, _, err = Describe([]byte(readme), opts)
	require.NoError(t, err)
	require.Equal(t, "Read [the manual](https://example.com/manual).\n", description)
}

func TestDescribe_NonInterestingLinksKeepDefaultRendering(t *testing.T) {
	readme := "Contact <someone@example.com> or [ftp mirror](ftp://mirror.example.com/pub).\n"
	description, previews, err := Describe([]byte(readme), DefaultOptions())
	require.NoError(t, err)
	require.Empty(t, previews)
	require.Contains(t, description, "<someone@example.com>")
	require.Contains(t, description, "[ftp mirror](ftp://mirror.example.com/pub)")
}

func TestDescribe_PreserveHTML(t *testing.T) {
	readme := "text\n\n<center>banner</center>\n"

	description, _, err := Describe([]byte(readme), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "text\n", description)

	opts := DefaultOptions()
	opts.PreserveHTML = true
	description, _, err = Describe([]byte(readme), opts)
	require.NoError(t, err)
	require.Equal(t, "text\n\n<center>banner</center>\n", description)
}

func TestDescribe_KeepImages(t *testing.T) {
	readme := "![alt](https://example.com/a.png)\n"
	opts := DefaultOptions()
	opts.KeepImages = true
	description, previews, err := Describe([]byte(readme), opts)
	require.NoError(t, err)
	require.Equal(t, "![alt](https://example.com/a.png)\n", description)
	require.Len(t, previews, 1)
}

func TestDescribe_PrepFuncsResolveRelativeTargets(t *testing.T) {
	const base = "https://raw.example.com/owner/repo/12345deadbeef/"
	readme := "![shot](images/shot.png)\n\nSee [the guide](docs/guide.md).\n"
	opts := DefaultOptions()
	opts.PrepImageURL = func(u string) string { return base + u }
	opts.PrepLinkURL = func(u string) string { return base + u }

	description, previews, err := Describe([]byte(readme), opts)
	require.NoError(t, err)
	require.Equal(t, []Preview{{Type: PreviewImage, Link: base + "images/shot.png"}}, previews)
	require.Contains(t, description, "See "+base+"docs/guide.md.\n")
}

func TestDescribe_PrepFuncsSkipAbsoluteTargets(t *testing.T) {
	called := false
	opts := DefaultOptions()
	opts.PrepImageURL = func(u string) string { called = true; return u }
	_, previews, err := Describe([]byte("![a](https://example.com/a.png)\n"), opts)
	require.NoError(t, err)
	require.False(t, called)
	require.Equal(t, "https://example.com/a.png", previews[0].Link)
}

func TestDescribe_DuplicatePreviewsAreKept(t *testing.T) {
	readme := "![a](https://example.com/a.png)\n\n![a](https://example.com/a.png)\n"
	_, previews, err := Describe([]byte(readme), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, previews, 2)
}

func TestDescribe_ChangelogDirectiveWired(t *testing.T) {
	opts := DefaultOptions()
	opts.Changelog = func() ([]byte, error) { return []byte("- first\n- second\n"), nil }
	description, _, err := Describe([]byte("Changes:\n\n<!-- gdasset: changelog: 1 -->\n"), opts)
	require.NoError(t, err)
	require.Equal(t, "Changes:\n\n- first\n", description)
}

func TestDescribe_ChangelogErrorAbortsWholeDescription(t *testing.T) {
	opts := DefaultOptions()
	opts.Changelog = func() ([]byte, error) { return []byte("no list here\n"), nil }
	description, previews, err := Describe([]byte("text\n\n<!-- gdasset: changelog -->\n"), opts)
	require.Error(t, err)
	require.True(t, gderr.IsCategory(err, gderr.CategoryConfig))
	require.Empty(t, description)
	require.Nil(t, previews)
}
