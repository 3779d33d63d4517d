package extensions

import (
	"github.com/yuin/goldmark/ast"
)

// KindRawMarkdownBlock is the node kind of the raw-markdown passthrough
// block.
var KindRawMarkdownBlock = ast.NewNodeKind("RawMarkdownBlock")

// RawMarkdownBlock holds the lines between <!-- gdasset: markdown --> and the
// closing comment line. The content is ordinary Markdown that the author
// wants re-parsed and rendered as real structure (typically because the
// renderer would otherwise strip it as raw HTML). It is captured verbatim at
// parse time and re-tokenized against its own source buffer at render time.
type RawMarkdownBlock struct {
	ast.BaseBlock
	LineNumber int

	content []byte
}

func (n *RawMarkdownBlock) Kind() ast.NodeKind { return KindRawMarkdownBlock }

func (n *RawMarkdownBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// IsRaw reports that the enclosed lines are not parsed in the enclosing
// document; they form their own source buffer.
func (n *RawMarkdownBlock) IsRaw() bool { return true }

// Content returns the captured Markdown source.
func (n *RawMarkdownBlock) Content() []byte { return n.content }
