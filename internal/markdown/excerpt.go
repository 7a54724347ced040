package markdown

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FirstParagraphText returns the plain text of the first top-level <p> in
// rendered HTML, whitespace collapsed and cut at a word boundary to at most
// limit runes (an ellipsis is appended when cut). limit <= 0 disables the cut.
func FirstParagraphText(rendered []byte, limit int) string {
	nodes, err := html.ParseFragment(bytes.NewReader(rendered), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return ""
	}

	for _, n := range nodes {
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			var b strings.Builder
			collectText(n, &b)
			return truncate(strings.Join(strings.Fields(b.String()), " "), limit)
		}
	}
	return ""
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
	case html.ElementNode:
		if n.DataAtom == atom.Sup {
			// footnote references
			return
		}
		if n.DataAtom == atom.Br {
			b.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
