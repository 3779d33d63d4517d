// Package extensions provides the custom goldmark tokens gdasset embeds in a
// README: directive comments (<!-- gdasset: ... -->), the raw-markdown
// passthrough block, and bare-URL extended autolinks.
package extensions

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Directive tags understood by the renderer. The tag is stored verbatim
// (lowercased); validation happens at render time so an unknown tag can be
// reported as a content error rather than silently parsed as HTML.
const (
	TagInclude   = "include"
	TagExclude   = "exclude"
	TagChangelog = "changelog"

	// tagMarkdown opens the raw-markdown passthrough block rather than a
	// directive.
	tagMarkdown = "markdown"
)

// KindDirective is the node kind of the Directive inline token.
var KindDirective = ast.NewNodeKind("Directive")

// Directive is the parsed payload of one gdasset comment: a tag, an optional
// free-text value, and secondary key:value attributes from continuation
// lines.
type Directive struct {
	ast.BaseInline
	Tag   string
	Value string
	Attrs map[string]string
}

func (n *Directive) Kind() ast.NodeKind { return KindDirective }

// IsRaw reports that the directive carries no inline Markdown content; the
// inline phase must not descend into it.
func (n *Directive) IsRaw() bool { return true }

func (n *Directive) Dump(source []byte, level int) {
	m := map[string]string{"Tag": n.Tag, "Value": n.Value}
	ast.DumpHelper(n, source, level, m, nil)
}

// KindDirectiveBlock is the node kind of the block wrapping a Directive.
var KindDirectiveBlock = ast.NewNodeKind("DirectiveBlock")

// DirectiveBlock is the block-level container for one directive comment. Its
// single child is the Directive token. LineNumber is the 1-based source line
// of the opening marker, kept for diagnostics.
type DirectiveBlock struct {
	ast.BaseBlock
	LineNumber int

	closed bool
	lines  []string
}

func (n *DirectiveBlock) Kind() ast.NodeKind { return KindDirectiveBlock }

func (n *DirectiveBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// Directive returns the parsed directive child, or nil if parsing never
// completed (which would be a bug in the block parser).
func (n *DirectiveBlock) Directive() *Directive {
	if d, ok := n.FirstChild().(*Directive); ok {
		return d
	}
	return nil
}

// IsRaw reports that directive block content is not parsed as Markdown.
func (n *DirectiveBlock) IsRaw() bool { return true }

// finish parses the accumulated comment body into the Directive child.
// The first logical line is "tag[: value]"; each further line is an
// "attr: value" pair. Lines without a colon (and blank lines) are skipped.
func (n *DirectiveBlock) finish() {
	d := &Directive{Attrs: map[string]string{}}
	if len(n.lines) > 0 {
		header := strings.TrimSpace(n.lines[0])
		if tag, value, ok := strings.Cut(header, ":"); ok {
			d.Tag = strings.ToLower(strings.TrimSpace(tag))
			d.Value = strings.TrimSpace(value)
		} else if tag, value, ok := strings.Cut(header, " "); ok {
			d.Tag = strings.ToLower(strings.TrimSpace(tag))
			d.Value = strings.TrimSpace(value)
		} else {
			d.Tag = strings.ToLower(header)
		}
	}
	for _, line := range n.lines[min(1, len(n.lines)):] {
		if key, value, ok := strings.Cut(line, ":"); ok {
			d.Attrs[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
		}
	}
	n.AppendChild(n, d)
}

// directiveOpen matches the opening marker line. Group 1 is the comment body
// up to the optional closing marker; group 2 is present when the comment is
// closed on the same line.
var directiveOpen = regexp.MustCompile(`^ {0,3}<!--\s*gdasset:\s*(.*?)\s*(-->)?\s*$`)

// directiveClose matches a continuation line carrying the closing marker,
// capturing any attribute content preceding it.
var directiveClose = regexp.MustCompile(`^(.*?)\s*-->\s*$`)

// directiveBlockParser recognizes both directive comments and the
// raw-markdown passthrough block; they share the opening marker and differ
// only in the tag.
type directiveBlockParser struct{}

// NewDirectiveBlockParser returns the block parser for gdasset comments.
func NewDirectiveBlockParser() parser.BlockParser {
	return &directiveBlockParser{}
}

func (p *directiveBlockParser) Trigger() []byte { return []byte{'<'} }

func (p *directiveBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	m := directiveOpen.FindSubmatch(line)
	if m == nil {
		return nil, parser.NoChildren
	}
	body := string(m[1])
	closedSameLine := len(m[2]) > 0
	lineNum, _ := reader.Position()

	tag := strings.ToLower(body)
	if i := strings.IndexAny(tag, ": "); i >= 0 {
		tag = tag[:i]
	}
	reader.Advance(segment.Len() - 1)

	if tag == tagMarkdown {
		// The passthrough opener is always closed on its own line; the block
		// then consumes lines verbatim until the closing-comment line.
		return &RawMarkdownBlock{LineNumber: lineNum + 1}, parser.NoChildren
	}

	node := &DirectiveBlock{LineNumber: lineNum + 1, closed: closedSameLine}
	if body != "" {
		node.lines = append(node.lines, body)
	}
	return node, parser.NoChildren
}

func (p *directiveBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	switch n := node.(type) {
	case *DirectiveBlock:
		if n.closed {
			return parser.Close
		}
		line, segment := reader.PeekLine()
		trimmed := strings.TrimSpace(string(line))
		if m := directiveClose.FindStringSubmatch(trimmed); m != nil {
			if m[1] != "" {
				n.lines = append(n.lines, m[1])
			}
			n.closed = true
			reader.Advance(segment.Len() - 1)
			return parser.Close
		}
		if trimmed != "" {
			n.lines = append(n.lines, trimmed)
		}
		reader.Advance(segment.Len() - 1)
		return parser.Continue | parser.NoChildren
	case *RawMarkdownBlock:
		line, segment := reader.PeekLine()
		// The closing-comment line is matched case-sensitively and must
		// stand alone; anything else is literal Markdown content.
		if strings.TrimSpace(string(line)) == "-->" {
			reader.Advance(segment.Len() - 1)
			return parser.Close
		}
		n.content = append(n.content, line...)
		reader.Advance(segment.Len() - 1)
		return parser.Continue | parser.NoChildren
	}
	return parser.Close
}

func (p *directiveBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	if n, ok := node.(*DirectiveBlock); ok {
		n.finish()
	}
}

func (p *directiveBlockParser) CanInterruptParagraph() bool { return true }

func (p *directiveBlockParser) CanAcceptIndentedLine() bool { return false }
