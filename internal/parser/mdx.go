package parser

import (
	"bytes"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindESMBlock is the goldmark node kind of top-level import/export blocks
var KindESMBlock = gast.NewNodeKind("ESMBlock")

// KindJSXBlock is the goldmark node kind of top-level component markup blocks
var KindJSXBlock = gast.NewNodeKind("JSXBlock")

// ESMBlock holds the lines of an import or export block verbatim
type ESMBlock struct {
	gast.BaseBlock
	Export bool
}

func (n *ESMBlock) Kind() gast.NodeKind { return KindESMBlock }
func (n *ESMBlock) IsRaw() bool         { return true }
func (n *ESMBlock) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}

// JSXBlock holds the lines of a component markup block verbatim
type JSXBlock struct {
	gast.BaseBlock
}

func (n *JSXBlock) Kind() gast.NodeKind { return KindJSXBlock }
func (n *JSXBlock) IsRaw() bool         { return true }
func (n *JSXBlock) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}

var (
	importKeyword = []byte("import")
	exportKeyword = []byte("export")
)

// esmParser opens a block on a top-level line that starts with the import
// or export keyword. The block runs until the next blank line.
type esmParser struct{}

func (b *esmParser) Trigger() []byte {
	return []byte{'i', 'e'}
}

func (b *esmParser) Open(parent gast.Node, reader text.Reader, pc gparser.Context) (gast.Node, gparser.State) {
	if parent.Kind() != gast.KindDocument {
		return nil, gparser.NoChildren
	}
	line, segment := reader.PeekLine()
	if pc.BlockOffset() != 0 {
		return nil, gparser.NoChildren
	}

	node := &ESMBlock{}
	switch {
	case hasKeyword(line, importKeyword):
	case hasKeyword(line, exportKeyword):
		node.Export = true
	default:
		return nil, gparser.NoChildren
	}

	node.Lines().Append(segment)
	reader.Advance(segment.Len() - util.TrimRightSpaceLength(line))
	return node, gparser.NoChildren
}

func hasKeyword(line, keyword []byte) bool {
	if !bytes.HasPrefix(line, keyword) || len(line) == len(keyword) {
		return false
	}
	switch line[len(keyword)] {
	case ' ', '\t', '{', '*', '\n', '\r':
		return true
	}
	return false
}

func (b *esmParser) Continue(node gast.Node, reader text.Reader, pc gparser.Context) gparser.State {
	return continueUntilBlank(node, reader)
}

func (b *esmParser) Close(node gast.Node, reader text.Reader, pc gparser.Context) {}

func (b *esmParser) CanInterruptParagraph() bool { return false }

func (b *esmParser) CanAcceptIndentedLine() bool { return false }

// jsxBlockParser opens a block on a top-level line that starts with a tag,
// a closing tag or a fragment. The block runs until the next blank line.
type jsxBlockParser struct{}

func (b *jsxBlockParser) Trigger() []byte {
	return []byte{'<'}
}

func (b *jsxBlockParser) Open(parent gast.Node, reader text.Reader, pc gparser.Context) (gast.Node, gparser.State) {
	if parent.Kind() != gast.KindDocument {
		return nil, gparser.NoChildren
	}
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos+1 >= len(line) || line[pos] != '<' {
		return nil, gparser.NoChildren
	}
	if c := line[pos+1]; !util.IsAlphaNumeric(c) && c != '/' && c != '>' {
		return nil, gparser.NoChildren
	}
	if isAutoLink(line[pos+1:]) {
		return nil, gparser.NoChildren
	}

	node := &JSXBlock{}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - util.TrimRightSpaceLength(line))
	return node, gparser.NoChildren
}

// isAutoLink reports whether the text after `<` is a URI or email autolink
// rather than a tag name
func isAutoLink(rest []byte) bool {
	for _, c := range rest {
		switch {
		case c == ':' || c == '@':
			return true
		case util.IsAlphaNumeric(c) || c == '.' || c == '-' || c == '+' || c == '_':
		default:
			return false
		}
	}
	return false
}

func (b *jsxBlockParser) Continue(node gast.Node, reader text.Reader, pc gparser.Context) gparser.State {
	return continueUntilBlank(node, reader)
}

func (b *jsxBlockParser) Close(node gast.Node, reader text.Reader, pc gparser.Context) {}

func (b *jsxBlockParser) CanInterruptParagraph() bool { return false }

func (b *jsxBlockParser) CanAcceptIndentedLine() bool { return false }

func continueUntilBlank(node gast.Node, reader text.Reader) gparser.State {
	line, segment := reader.PeekLine()
	if util.IsBlank(line) {
		return gparser.Close
	}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - util.TrimRightSpaceLength(line))
	return gparser.Continue | gparser.NoChildren
}

type mdx struct{}

// MDX is a goldmark extension recognizing top-level import/export blocks and
// component markup blocks
var MDX goldmark.Extender = &mdx{}

func (e *mdx) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(gparser.WithBlockParsers(
		util.Prioritized(&esmParser{}, 50),
		util.Prioritized(&jsxBlockParser{}, 850),
	))
}
