// Package markdown converts article bodies to HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Options controls conversion.
type Options struct {
	// HighlightStyle names a chroma style used for the generated stylesheet.
	HighlightStyle string
	LineNumbers    bool
	// Unsafe passes raw HTML in bodies through unchanged.
	Unsafe bool
}

// Converter renders Markdown bodies. It is safe for concurrent use.
type Converter struct {
	md        goldmark.Markdown
	highlight *highlighter
}

// NewConverter builds a Converter with GFM, footnotes and heading IDs enabled.
func NewConverter(opts Options) *Converter {
	hl := newHighlighter(opts.HighlightStyle, opts.LineNumbers)

	rendererOpts := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(hl, 200)),
	}
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &Converter{md: md, highlight: hl}
}

// Convert renders body to HTML. Output depends only on body and the
// converter options.
func (c *Converter) Convert(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// StyleSheet returns CSS for the classes emitted by highlighted code blocks.
func (c *Converter) StyleSheet() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.highlight.formatter.WriteCSS(&buf, c.highlight.style); err != nil {
		return nil, fmt.Errorf("write highlight css: %w", err)
	}
	return buf.Bytes(), nil
}

// StyleName reports the resolved chroma style, which may differ from the
// requested one when that style is unknown.
func (c *Converter) StyleName() string {
	return c.highlight.style.Name
}
