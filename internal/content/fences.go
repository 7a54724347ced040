package content

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// fenceTracker wraps the fenced code block parser and remembers blocks that
// end without a closing fence: at end of input, or because the blockquote or
// list item holding them ended first.
type fenceTracker struct {
	parser.BlockParser

	opened     map[ast.Node]int
	closed     map[ast.Node]bool
	unclosedAt int
}

func newFenceTracker() *fenceTracker {
	return &fenceTracker{
		BlockParser: parser.NewFencedCodeBlockParser(),
		opened:      make(map[ast.Node]int),
		closed:      make(map[ast.Node]bool),
	}
}

func (f *fenceTracker) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	_, seg := reader.PeekLine()
	node, state := f.BlockParser.Open(parent, reader, pc)
	if node != nil {
		f.opened[node] = bytes.Count(reader.Source()[:seg.Start], []byte("\n")) + 1
	}
	return node, state
}

func (f *fenceTracker) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	state := f.BlockParser.Continue(node, reader, pc)
	if state&parser.Close != 0 {
		f.closed[node] = true
	}
	return state
}

func (f *fenceTracker) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	f.BlockParser.Close(node, reader, pc)
	if line, ok := f.opened[node]; ok && !f.closed[node] {
		if f.unclosedAt == 0 || line < f.unclosedAt {
			f.unclosedAt = line
		}
	}
}

// unterminatedFence returns the 1-based line (relative to body) of the first
// fenced code block that is never closed, or 0. Fences nested in blockquotes
// and list items count.
func unterminatedFence(body []byte) int {
	tracker := newFenceTracker()
	fenced := parser.NewFencedCodeBlockParser()

	defaults := parser.DefaultBlockParsers()
	blocks := make([]util.PrioritizedValue, 0, len(defaults))
	for _, v := range defaults {
		if v.Value == fenced {
			v = util.Prioritized(tracker, v.Priority)
		}
		blocks = append(blocks, v)
	}

	p := parser.NewParser(parser.WithBlockParsers(blocks...))
	p.Parse(text.NewReader(body))
	return tracker.unclosedAt
}
