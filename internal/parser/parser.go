// Package parser turns MDX source text into an mdast tree: a YAML metadata
// block split off the top, followed by CommonMark content with top-level
// import/export statements and component markup.
package parser

import (
	"fmt"
	"strings"

	yfm "github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"github.com/gerunddev/mdxbridge/internal/frontmatter"
	"github.com/gerunddev/mdxbridge/internal/mdast"
	"github.com/gerunddev/mdxbridge/internal/meta"
)

// Delimiter is a pair of fence lines enclosing a metadata block
type Delimiter struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultDelimiters are the YAML fences recognized by default
var DefaultDelimiters = []Delimiter{
	{Start: "---", End: "---"},
	{Start: "---yaml", End: "---"},
}

// Options configures Parse
type Options struct {
	// MetadataBlocks lists the fences a leading metadata block may use. An
	// empty list disables metadata blocks.
	MetadataBlocks []Delimiter

	// Decode decodes metadata payloads. Defaults to meta.Decode.
	Decode frontmatter.DecodeFunc
}

// DefaultOptions returns options recognizing `---` and `---yaml` fences
func DefaultOptions() Options {
	delims := make([]Delimiter, len(DefaultDelimiters))
	copy(delims, DefaultDelimiters)
	return Options{MetadataBlocks: delims, Decode: meta.Decode}
}

var markdown = goldmark.New(goldmark.WithExtensions(MDX))

// Parse parses source into a tree and lifts its metadata into root.Meta.
// A metadata block that does not decode fails the parse with a
// *meta.MetadataDecodeError.
func Parse(source string, opts Options) (*mdast.Root, error) {
	root, err := ParseTree(source, opts)
	if err != nil {
		return nil, err
	}
	if err := frontmatter.Extract(root, opts.Decode); err != nil {
		return nil, err
	}
	return root, nil
}

// ParseTree parses source without extracting metadata. A leading metadata
// block stays in the tree as the first *mdast.Yaml child.
func ParseTree(source string, opts Options) (*mdast.Root, error) {
	payload, body, found, err := splitMetadata(source, opts.MetadataBlocks)
	if err != nil {
		return nil, err
	}

	src := []byte(body)
	doc := markdown.Parser().Parse(text.NewReader(src))

	b := &builder{source: src}
	root := &mdast.Root{}
	if found {
		root.Children = append(root.Children, &mdast.Yaml{Value: payload})
	}
	root.Children = append(root.Children, b.children(doc)...)
	return root, nil
}

type metadataBlock struct {
	value string
	found bool
}

func captureBlock(data []byte, v any) error {
	block, ok := v.(*metadataBlock)
	if !ok {
		return fmt.Errorf("unexpected metadata target %T", v)
	}
	block.value = strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
	block.found = true
	return nil
}

// splitMetadata separates a leading fenced metadata block from the body. An
// unterminated fence is not a metadata block.
func splitMetadata(source string, delims []Delimiter) (payload, body string, found bool, err error) {
	if len(delims) == 0 {
		return "", source, false, nil
	}

	formats := make([]*yfm.Format, 0, len(delims))
	for _, d := range delims {
		formats = append(formats, yfm.NewFormat(d.Start, d.End, captureBlock))
	}

	var block metadataBlock
	rest, err := yfm.Parse(strings.NewReader(source), &block, formats...)
	if err != nil {
		return "", "", false, fmt.Errorf("failed to split metadata block: %w", err)
	}
	if !block.found {
		return "", source, false, nil
	}
	return block.value, string(rest), true, nil
}
