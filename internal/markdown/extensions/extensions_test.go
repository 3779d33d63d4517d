package extensions

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func parse(t *testing.T, src string) ast.Node {
	t.Helper()
	md := goldmark.New(goldmark.WithExtensions(New()))
	return md.Parser().Parse(text.NewReader([]byte(src)))
}

func findDirectives(root ast.Node) []*DirectiveBlock {
	var out []*DirectiveBlock
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if d, ok := n.(*DirectiveBlock); ok {
				out = append(out, d)
			}
		}
		return ast.WalkContinue, nil
	})
	return out
}

func TestDirective_SingleLine(t *testing.T) {
	root := parse(t, "before\n\n<!-- gdasset: exclude -->\n\nafter\n")
	blocks := findDirectives(root)
	require.Len(t, blocks, 1)
	d := blocks[0].Directive()
	require.NotNil(t, d)
	require.Equal(t, "exclude", d.Tag)
	require.Empty(t, d.Value)
	require.Empty(t, d.Attrs)
	require.Equal(t, 3, blocks[0].LineNumber)
}

func TestDirective_TagIsCaseInsensitive(t *testing.T) {
	root := parse(t, "<!-- gdasset: EXCLUDE -->\n")
	blocks := findDirectives(root)
	require.Len(t, blocks, 1)
	require.Equal(t, "exclude", blocks[0].Directive().Tag)
}

func TestDirective_ValueAfterColon(t *testing.T) {
	root := parse(t, "<!-- gdasset: changelog: 5 -->\n")
	blocks := findDirectives(root)
	require.Len(t, blocks, 1)
	d := blocks[0].Directive()
	require.Equal(t, "changelog", d.Tag)
	require.Equal(t, "5", d.Value)
}

func TestDirective_MultiLineAttributes(t *testing.T) {
	src := "<!-- gdasset: changelog: 3\nheading: Recent changes\n-->\n"
	root := parse(t, src)
	blocks := findDirectives(root)
	require.Len(t, blocks, 1)
	d := blocks[0].Directive()
	require.Equal(t, "changelog", d.Tag)
	require.Equal(t, "3", d.Value)
	require.Equal(t, map[string]string{"heading": "Recent changes"}, d.Attrs)
}

func TestDirective_AttributeOnClosingLine(t *testing.T) {
	src := "<!-- gdasset: changelog\nheading: What's new -->\n"
	root := parse(t, src)
	blocks := findDirectives(root)
	require.Len(t, blocks, 1)
	d := blocks[0].Directive()
	require.Equal(t, "changelog", d.Tag)
	require.Equal(t, "What's new", d.Attrs["heading"])
}

func TestDirective_UnknownTagIsStillParsed(t *testing.T) {
	// Tag validation is a render-time concern; the parser stores it as-is.
	root := parse(t, "<!-- gdasset: frobnicate -->\n")
	blocks := findDirectives(root)
	require.Len(t, blocks, 1)
	require.Equal(t, "frobnicate", blocks[0].Directive().Tag)
}

func TestDirective_PayloadIsOpaqueToInlineParsing(t *testing.T) {
	// The parsed payload is attribute text, not Markdown; the inline phase
	// must leave it alone instead of descending into it.
	root := parse(t, "<!-- gdasset: changelog: 2\nheading: *Recent* changes\n-->\n\ntrailing *emphasis*\n")
	blocks := findDirectives(root)
	require.Len(t, blocks, 1)
	d := blocks[0].Directive()
	require.True(t, d.IsRaw())
	require.False(t, d.HasChildren())
	require.Equal(t, "*Recent* changes", d.Attrs["heading"])
}

func TestDirective_PlainHTMLCommentIsNotADirective(t *testing.T) {
	root := parse(t, "<!-- just a comment -->\n")
	require.Empty(t, findDirectives(root))
}

func TestRawMarkdownBlock_CapturesContent(t *testing.T) {
	src := "<!-- gdasset: markdown -->\n# Kept heading\n\n- item\n-->\n\ntail\n"
	root := parse(t, src)

	var raw *RawMarkdownBlock
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if r, ok := n.(*RawMarkdownBlock); ok {
				raw = r
			}
		}
		return ast.WalkContinue, nil
	})
	require.NotNil(t, raw)
	require.Equal(t, "# Kept heading\n\n- item\n", string(raw.Content()))
}

func findAutolinks(root ast.Node) []*ExtendedAutolink {
	var out []*ExtendedAutolink
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if a, ok := n.(*ExtendedAutolink); ok {
				out = append(out, a)
			}
		}
		return ast.WalkContinue, nil
	})
	return out
}

func TestExtendedAutolink_ParsedFromPlainText(t *testing.T) {
	found := findAutolinks(parse(t, "Watch https://example.com/demo now.\n"))
	require.Len(t, found, 1)
	require.Equal(t, "https://example.com/demo", found[0].URL())
}

func TestExtendedAutolink_AtLineStart(t *testing.T) {
	found := findAutolinks(parse(t, "https://example.com/first of the line\n"))
	require.Len(t, found, 1)
	require.Equal(t, "https://example.com/first", found[0].URL())
}

func TestExtendedAutolink_AfterOpeningParen(t *testing.T) {
	found := findAutolinks(parse(t, "demo (https://example.com/demo) here\n"))
	require.Len(t, found, 1)
	require.Equal(t, "https://example.com/demo", found[0].URL())
}

func TestExtendedAutolink_WithTrackingParams(t *testing.T) {
	found := findAutolinks(parse(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s\n"))
	require.Len(t, found, 1)
	require.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", found[0].URL())
}

func TestExtendedAutolink_NotInsideBracketedLink(t *testing.T) {
	root := parse(t, "[label](https://example.com/page)\n")
	count := 0
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == KindExtendedAutolink {
			count++
		}
		return ast.WalkContinue, nil
	})
	require.Zero(t, count)
}

func TestFindExtendedAutolinks_TrimsTrailingPunctuation(t *testing.T) {
	matches := FindExtendedAutolinks("see https://example.com/a.")
	require.Len(t, matches, 1)
	require.Equal(t, "https://example.com/a", matches[0].URL)

	matches = FindExtendedAutolinks("really? https://example.com/b?!")
	require.Len(t, matches, 1)
	require.Equal(t, "https://example.com/b", matches[0].URL)
}

func TestFindExtendedAutolinks_UnmatchedParens(t *testing.T) {
	matches := FindExtendedAutolinks("(see https://example.com/c)")
	require.Len(t, matches, 1)
	require.Equal(t, "https://example.com/c", matches[0].URL)

	// Balanced parens inside the URL survive.
	matches = FindExtendedAutolinks("https://example.com/wiki/Go_(game)")
	require.Len(t, matches, 1)
	require.Equal(t, "https://example.com/wiki/Go_(game)", matches[0].URL)
}

func TestFindExtendedAutolinks_TrailingEntityReference(t *testing.T) {
	matches := FindExtendedAutolinks("https://example.com/d&amp;")
	require.Len(t, matches, 1)
	require.Equal(t, "https://example.com/d", matches[0].URL)
}

func TestFindExtendedAutolinks_SpansAndOrder(t *testing.T) {
	s := "a https://one.example/x, then http://two.example/y."
	matches := FindExtendedAutolinks(s)
	require.Len(t, matches, 2)
	require.Equal(t, "https://one.example/x", matches[0].URL)
	require.Equal(t, s[matches[0].Start:matches[0].End], matches[0].URL)
	require.Equal(t, "http://two.example/y", matches[1].URL)
	require.Equal(t, s[matches[1].Start:matches[1].End], matches[1].URL)
}

func TestFindExtendedAutolinks_RejectsInvalid(t *testing.T) {
	require.Empty(t, FindExtendedAutolinks("https://"))
	require.Empty(t, FindExtendedAutolinks("no links here"))
}
