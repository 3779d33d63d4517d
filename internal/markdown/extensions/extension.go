package extensions

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

// Parser priorities. The directive block parser must run ahead of goldmark's
// HTMLBlockParser (900), which would otherwise swallow the comment; the
// extended autolink parser runs after the standard inline parsers, mirroring
// where GFM's linkify sits.
const (
	directiveBlockParserPriority   = 100
	extendedAutolinkParserPriority = 999
)

type assetExtension struct{}

// New returns the goldmark extension registering the directive block, the
// raw-markdown passthrough block, and extended autolinks.
func New() goldmark.Extender {
	return &assetExtension{}
}

func (e *assetExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(
			util.Prioritized(NewDirectiveBlockParser(), directiveBlockParserPriority),
		),
		parser.WithInlineParsers(
			util.Prioritized(NewExtendedAutolinkParser(), extendedAutolinkParserPriority),
		),
	)
}
