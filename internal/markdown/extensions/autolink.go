package extensions

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// KindExtendedAutolink is the node kind of the ExtendedAutolink inline.
var KindExtendedAutolink = ast.NewNodeKind("ExtendedAutolink")

// ExtendedAutolink is a bare http(s) URL recognized in plain inline text
// without Markdown link syntax, per the extended-autolink trimming rules.
type ExtendedAutolink struct {
	ast.BaseInline
	value []byte
}

func (n *ExtendedAutolink) Kind() ast.NodeKind { return KindExtendedAutolink }

func (n *ExtendedAutolink) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Value": string(n.value)}, nil)
}

// URL returns the matched URL.
func (n *ExtendedAutolink) URL() string { return string(n.value) }

// AutolinkMatch is one bare URL found in a text span.
type AutolinkMatch struct {
	Start int
	End   int
	URL   string
}

var (
	autolinkCandidate = regexp.MustCompile(`https?://[^\s<]+`)
	trailingEntity    = regexp.MustCompile(`&[a-zA-Z][a-zA-Z0-9]*;$|&#[0-9]+;$|&#[xX][0-9a-fA-F]+;$`)
)

// trailingPunctuation are the characters excluded from the end of a match.
// A trailing semicolon is only removed as part of an entity reference.
const trailingPunctuation = `?!.,:*_~'"`

// FindExtendedAutolinks scans a text span for bare http(s) URLs, applying
// the extended-autolink trimming rules: trailing sentence punctuation,
// unmatched closing parentheses, and trailing HTML entity references are
// excluded. Candidates that do not survive as valid absolute URLs are
// discarded.
func FindExtendedAutolinks(s string) []AutolinkMatch {
	var matches []AutolinkMatch
	for _, loc := range autolinkCandidate.FindAllStringIndex(s, -1) {
		candidate := trimAutolink(s[loc[0]:loc[1]])
		if candidate == "" || !validAutolinkURL(candidate) {
			continue
		}
		matches = append(matches, AutolinkMatch{
			Start: loc[0],
			End:   loc[0] + len(candidate),
			URL:   candidate,
		})
	}
	return matches
}

// trimAutolink applies the trimming rules repeatedly until the candidate is
// stable.
func trimAutolink(s string) string {
	for {
		trimmed := trailingEntity.ReplaceAllString(s, "")
		trimmed = strings.TrimRight(trimmed, trailingPunctuation)
		for strings.HasSuffix(trimmed, ")") &&
			strings.Count(trimmed, ")") > strings.Count(trimmed, "(") {
			trimmed = trimmed[:len(trimmed)-1]
		}
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

func validAutolinkURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// extendedAutolinkParser recognizes bare URLs during inline parsing. Inline
// parsers are only consulted at whitespace and punctuation, so it triggers
// on the character preceding a URL rather than the URL itself, consuming
// that character as plain text before matching.
type extendedAutolinkParser struct{}

// NewExtendedAutolinkParser returns the inline parser for bare URLs.
func NewExtendedAutolinkParser() parser.InlineParser {
	return &extendedAutolinkParser{}
}

func (p *extendedAutolinkParser) Trigger() []byte {
	// ' ' also stands for a line head.
	return []byte{' ', '('}
}

func (p *extendedAutolinkParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	if pc.IsInLinkLabel() {
		return nil
	}
	line, segment := block.PeekLine()
	consumed := 0
	if c := line[0]; c == ' ' || c == '(' {
		consumed = 1
		line = line[1:]
	}
	matches := FindExtendedAutolinks(string(line))
	if len(matches) == 0 || matches[0].Start != 0 {
		return nil
	}
	if consumed != 0 {
		ast.MergeOrAppendTextSegment(parent, segment.WithStop(segment.Start+1))
	}
	m := matches[0]
	block.Advance(consumed + m.End)
	return &ExtendedAutolink{value: []byte(m.URL)}
}
