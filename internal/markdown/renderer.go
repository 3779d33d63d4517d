package markdown

import (
	"strconv"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	gderr "github.com/gdasset/gdasset/internal/errors"
	"github.com/gdasset/gdasset/internal/markdown/extensions"
	"github.com/gdasset/gdasset/internal/util/sets"
)

type dispatchAction int

const (
	actionDefault dispatchAction = iota
	actionDrop
	actionReplace
)

// Dispatch is the outcome of an image/link/HTML callback: render the node
// with its default behavior, drop it entirely, or emit replacement text.
type Dispatch struct {
	action      dispatchAction
	replacement string
}

// RenderDefault lets the node render with its default behavior.
func RenderDefault() Dispatch { return Dispatch{action: actionDefault} }

// Drop suppresses the node's output entirely.
func Drop() Dispatch { return Dispatch{action: actionDrop} }

// ReplaceWith emits text instead of the node's default rendering.
func ReplaceWith(text string) Dispatch {
	return Dispatch{action: actionReplace, replacement: text}
}

// Callbacks classify or rewrite media and markup during rendering. A nil
// callback means the node renders with its default behavior. Callbacks are
// invoked synchronously and must not re-enter the renderer.
type Callbacks struct {
	// Image receives the image source URL.
	Image func(src string) Dispatch
	// Link receives the destination of bracketed links, standard autolinks,
	// and extended (bare-URL) autolinks, so all three syntaxes are
	// classified identically.
	Link func(dest string) Dispatch
	// HTML receives raw HTML text, span or block level.
	HTML func(raw string) Dispatch
}

// ChangelogLoader supplies the changelog source text for the changelog
// directive.
type ChangelogLoader func() ([]byte, error)

// Renderer walks a parsed document depth-first and emits plain text. It is a
// single-use object: one Render call per instance, no concurrent use. Any
// error aborts the pass; no partial output is returned.
type Renderer struct {
	source    []byte
	callbacks Callbacks
	changelog ChangelogLoader

	// suppressed holds blocks marked by an exclude directive, keyed by node
	// identity. Removal-on-visit is the documented invariant: whenever a
	// node is skipped because the set is non-empty, that node is deleted
	// from the set. Since exclude marks the skipped nodes' *parent*, the
	// mark survives until a matching include deletes it.
	suppressed sets.Set[gmast.Node]

	lines []string
	cur   strings.Builder
	spent bool
}

// NewRenderer creates a renderer for one document parsed from source.
func NewRenderer(source []byte, callbacks Callbacks, changelog ChangelogLoader) *Renderer {
	return &Renderer{
		source:     source,
		callbacks:  callbacks,
		changelog:  changelog,
		suppressed: sets.New[gmast.Node](),
	}
}

// Render walks doc and returns the accumulated plain text. Line-buffering
// state is flushed on exit even when rendering fails.
func (r *Renderer) Render(doc gmast.Node) (out string, err error) {
	if r.spent {
		return "", gderr.New(gderr.CategoryInternal, "renderer instances are single-use")
	}
	r.spent = true
	defer func() {
		r.flushLine()
		if err == nil {
			out = r.output()
		}
	}()
	err = r.renderChildren(doc)
	return
}

func (r *Renderer) renderChildren(parent gmast.Node) error {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if err := r.renderBlock(c); err != nil {
			return err
		}
	}
	return nil
}

// skipSuppressed implements the suppression discipline: if any block is
// currently marked, the node about to be rendered is skipped and dropped
// from the set.
func (r *Renderer) skipSuppressed(n gmast.Node) bool {
	if r.suppressed.Len() == 0 {
		return false
	}
	r.suppressed.Delete(n)
	return true
}

func (r *Renderer) renderBlock(n gmast.Node) error {
	// Directives execute even while suppression is active; exclude/include
	// could never pair up otherwise.
	if d, ok := n.(*extensions.DirectiveBlock); ok {
		return r.executeDirective(d)
	}
	if r.skipSuppressed(n) {
		return nil
	}
	// A node is consumed once per traversal: when its rendering completes it
	// leaves the suppression set, so an exclude mark on an ancestor expires
	// the moment that ancestor finishes rendering.
	defer r.suppressed.Delete(n)

	switch n := n.(type) {
	case *extensions.RawMarkdownBlock:
		return r.renderRawMarkdown(n)
	case *gmast.Paragraph, *gmast.TextBlock, *gmast.Heading:
		if err := r.renderInlineChildren(n); err != nil {
			return err
		}
		r.endBlock()
	case *gmast.List:
		if err := r.renderList(n, ""); err != nil {
			return err
		}
		r.endBlock()
	case *gmast.Blockquote:
		return r.renderChildren(n)
	case *gmast.FencedCodeBlock:
		r.writeVerbatimLines(n.Lines())
		r.endBlock()
	case *gmast.CodeBlock:
		r.writeVerbatimLines(n.Lines())
		r.endBlock()
	case *gmast.HTMLBlock:
		return r.renderHTMLBlock(n)
	case *gmast.ThematicBreak:
		// No textual content.
	default:
		if n.HasChildren() {
			return r.renderChildren(n)
		}
	}
	return nil
}

func (r *Renderer) renderInlineChildren(parent gmast.Node) error {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if err := r.renderInline(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderInline(n gmast.Node) error {
	if r.skipSuppressed(n) {
		return nil
	}
	defer r.suppressed.Delete(n)

	switch n := n.(type) {
	case *gmast.Text:
		r.write(string(n.Segment.Value(r.source)))
		if n.SoftLineBreak() || n.HardLineBreak() {
			r.flushLine()
		}
	case *gmast.String:
		r.write(string(n.Value))
	case *gmast.CodeSpan:
		r.write(textContent(n, r.source))
	case *gmast.Link:
		dest := string(n.Destination)
		label := textContent(n, r.source)
		return r.dispatchLink(dest, func() {
			r.write("[" + label + "](" + dest + ")")
		})
	case *gmast.AutoLink:
		dest := string(n.URL(r.source))
		return r.dispatchLink(dest, func() {
			r.write("<" + dest + ">")
		})
	case *extensions.ExtendedAutolink:
		dest := n.URL()
		return r.dispatchLink(dest, func() {
			r.write(dest)
		})
	case *gmast.Image:
		return r.renderImage(n)
	case *gmast.RawHTML:
		return r.dispatchHTML(segmentsText(n.Segments, r.source), false)
	default:
		if n.HasChildren() {
			// Emphasis and friends contribute no markers in plain text.
			return r.renderInlineChildren(n)
		}
	}
	return nil
}

func (r *Renderer) dispatchLink(dest string, renderDefault func()) error {
	d := RenderDefault()
	if r.callbacks.Link != nil {
		d = r.callbacks.Link(dest)
	}
	switch d.action {
	case actionDefault:
		renderDefault()
	case actionReplace:
		r.write(d.replacement)
	}
	return nil
}

func (r *Renderer) renderImage(n *gmast.Image) error {
	src := string(n.Destination)
	d := RenderDefault()
	if r.callbacks.Image != nil {
		d = r.callbacks.Image(src)
	}
	switch d.action {
	case actionDefault:
		r.write("![" + textContent(n, r.source) + "](" + src + ")")
	case actionReplace:
		r.write(d.replacement)
	}
	return nil
}

func (r *Renderer) dispatchHTML(raw string, block bool) error {
	d := RenderDefault()
	if r.callbacks.HTML != nil {
		d = r.callbacks.HTML(raw)
	}
	switch d.action {
	case actionDefault:
		if block {
			for _, line := range strings.Split(strings.TrimRight(raw, "\n"), "\n") {
				r.write(line)
				r.flushLine()
			}
			r.endBlock()
		} else {
			r.write(raw)
		}
	case actionReplace:
		r.write(d.replacement)
		if block {
			r.endBlock()
		}
	}
	return nil
}

func (r *Renderer) renderHTMLBlock(n *gmast.HTMLBlock) error {
	var sb strings.Builder
	l := n.Lines()
	for i := 0; i < l.Len(); i++ {
		seg := l.At(i)
		sb.Write(seg.Value(r.source))
	}
	if n.HasClosure() {
		sb.Write(n.ClosureLine.Value(r.source))
	}
	return r.dispatchHTML(sb.String(), true)
}

func (r *Renderer) renderRawMarkdown(n *extensions.RawMarkdownBlock) error {
	content := n.Content()
	doc := Parse(content)
	return r.withSource(content, func() error {
		return r.renderChildren(doc)
	})
}

func (r *Renderer) renderList(list *gmast.List, indent string) error {
	num := list.Start
	if num == 0 {
		num = 1
	}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		if r.skipSuppressed(item) {
			continue
		}
		marker := "- "
		if list.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		wroteMarker := false
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *gmast.TextBlock, *gmast.Paragraph:
				// A directive earlier in the item may have suppressed the rest
				// of it; the marker must vanish with the text.
				if r.skipSuppressed(c) {
					continue
				}
				if wroteMarker {
					r.write(indent + strings.Repeat(" ", len(marker)))
				} else {
					r.write(indent + marker)
					wroteMarker = true
				}
				if err := r.renderInlineChildren(c); err != nil {
					return err
				}
				r.flushLine()
			case *gmast.List:
				if err := r.renderList(c, indent+"  "); err != nil {
					return err
				}
			default:
				if err := r.renderBlock(c); err != nil {
					return err
				}
			}
		}
		r.suppressed.Delete(item)
	}
	return nil
}

func (r *Renderer) executeDirective(block *extensions.DirectiveBlock) error {
	d := block.Directive()
	if d == nil {
		return gderr.New(gderr.CategoryInternal, "directive block without parsed directive on line %d", block.LineNumber)
	}
	switch d.Tag {
	case extensions.TagExclude:
		if p := block.Parent(); p != nil {
			r.suppressed.Add(p)
		}
		return nil
	case extensions.TagInclude:
		if p := block.Parent(); p != nil {
			r.suppressed.Delete(p)
		}
		return nil
	case extensions.TagChangelog:
		return r.renderChangelog(block, d)
	default:
		return gderr.New(gderr.CategoryMarkdown, "unsupported directive %q on line %d", d.Tag, block.LineNumber)
	}
}

// renderChangelog splices the first list found in the changelog source in
// place of the directive, optionally truncated and prefixed with a heading
// paragraph. The substitute subtree is constructed before rendering descends
// into it; the enclosing document is never mutated.
func (r *Renderer) renderChangelog(block *extensions.DirectiveBlock, d *extensions.Directive) error {
	if r.changelog == nil {
		return gderr.New(gderr.CategoryConfig, "changelog directive on line %d but no changelog is available", block.LineNumber)
	}
	src, err := r.changelog()
	if err != nil {
		return gderr.Wrap(err, gderr.CategoryConfig, "loading changelog for directive on line %d", block.LineNumber)
	}

	doc := Parse(src)
	var list *gmast.List
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if l, ok := c.(*gmast.List); ok {
			list = l
			break
		}
	}
	if list == nil {
		return gderr.New(gderr.CategoryConfig, "changelog does not contain a list")
	}

	if d.Value != "" {
		limit, convErr := strconv.Atoi(d.Value)
		if convErr != nil || limit < 0 {
			return gderr.New(gderr.CategoryMarkdown, "changelog item count %q on line %d is not a non-negative integer", d.Value, block.LineNumber)
		}
		truncateList(list, limit)
	}

	if heading := d.Attrs["heading"]; heading != "" {
		r.write(heading + ":")
		r.endBlock()
	}
	return r.withSource(src, func() error {
		if err := r.renderList(list, ""); err != nil {
			return err
		}
		r.endBlock()
		return nil
	})
}

// withSource renders a subtree parsed from a different source buffer
// (changelog or raw-markdown content) with the renderer's state intact.
func (r *Renderer) withSource(src []byte, fn func() error) error {
	saved := r.source
	r.source = src
	defer func() { r.source = saved }()
	return fn()
}

func truncateList(list *gmast.List, limit int) {
	count := 0
	for item := list.FirstChild(); item != nil; {
		next := item.NextSibling()
		count++
		if count > limit {
			list.RemoveChild(list, item)
		}
		item = next
	}
}

func (r *Renderer) write(s string) {
	r.cur.WriteString(s)
}

// writeVerbatimLines emits code block content unchanged, one buffered line
// per source line.
func (r *Renderer) writeVerbatimLines(segs *gmtext.Segments) {
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		r.write(strings.TrimRight(string(seg.Value(r.source)), "\n"))
		r.flushLine()
	}
}

func (r *Renderer) flushLine() {
	if r.cur.Len() > 0 {
		r.lines = append(r.lines, r.cur.String())
		r.cur.Reset()
	}
}

// endBlock terminates the current block with a blank separator line.
func (r *Renderer) endBlock() {
	r.flushLine()
	if n := len(r.lines); n > 0 && r.lines[n-1] != "" {
		r.lines = append(r.lines, "")
	}
}

func (r *Renderer) output() string {
	if len(r.lines) == 0 {
		return ""
	}
	return strings.TrimRight(strings.Join(r.lines, "\n"), "\n") + "\n"
}

// textContent flattens the text runs under n, ignoring markup.
func textContent(n gmast.Node, source []byte) string {
	var sb strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *gmast.Text:
			sb.Write(c.Segment.Value(source))
		case *gmast.String:
			sb.Write(c.Value)
		}
		return gmast.WalkContinue, nil
	})
	return sb.String()
}

func segmentsText(segs *gmtext.Segments, source []byte) string {
	var sb strings.Builder
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}
