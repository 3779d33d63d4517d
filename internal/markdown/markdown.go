// Package markdown turns a project README into the plain-text description
// and preview list the Godot Asset Library accepts. Parsing is goldmark with
// the gdasset extension tokens registered; rendering is a suppression-aware
// tree walk that dispatches links, images, and raw HTML through caller
// callbacks.
package markdown

import (
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/gdasset/gdasset/internal/markdown/extensions"
)

func newMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extensions.New()))
}

// Parse parses Markdown source into a document tree with the gdasset custom
// tokens (directives, raw-markdown passthrough, extended autolinks) spliced
// into the grammar.
func Parse(source []byte) gmast.Node {
	return newMarkdown().Parser().Parse(text.NewReader(source))
}
