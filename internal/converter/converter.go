// Package converter ties the pipeline together: MDX text is parsed into a
// syntax tree, optionally rewritten so its metadata becomes a component tag,
// converted into a document tree and serialized back to text.
package converter

import (
	"fmt"

	"github.com/gerunddev/mdxbridge/internal/convert"
	"github.com/gerunddev/mdxbridge/internal/logger"
	"github.com/gerunddev/mdxbridge/internal/mdast"
	"github.com/gerunddev/mdxbridge/internal/metatag"
	"github.com/gerunddev/mdxbridge/internal/model"
	"github.com/gerunddev/mdxbridge/internal/parser"
	"github.com/gerunddev/mdxbridge/internal/schema"
	"github.com/gerunddev/mdxbridge/internal/serialize"
)

// Options configures every stage of the pipeline
type Options struct {
	Parser parser.Options
	// EmitMetaTag runs the metadata rewrite as part of Import
	EmitMetaTag bool
	MetaTag     metatag.Options
	JSXToNode   convert.JSXFunc
	Serialize   serialize.Options

	// Custom node and mark types, with the rules that serialize them
	Nodes     schema.NodeSpecs
	Marks     schema.MarkSpecs
	NodeRules serialize.NodeRules
	MarkRules serialize.MarkRules
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Parser:  parser.DefaultOptions(),
		MetaTag: metatag.DefaultOptions(),
	}
}

// Converter handles conversion between MDX text and document trees
type Converter struct {
	opts       Options
	schema     *schema.Schema
	converter  *convert.Converter
	serializer *serialize.Serializer
	rewriter   *metatag.Rewriter
	logger     *logger.Logger
}

// NewConverter creates a converter instance. A nil logger discards
// diagnostics.
func NewConverter(opts Options, log *logger.Logger) (*Converter, error) {
	if log == nil {
		log = logger.Discard()
	}
	s, err := schema.Compose(opts.Nodes, opts.Marks)
	if err != nil {
		return nil, fmt.Errorf("failed to compose schema: %w", err)
	}
	return &Converter{
		opts:       opts,
		schema:     s,
		converter:  convert.New(s, convert.Options{JSXToNode: opts.JSXToNode}),
		serializer: serialize.Compose(opts.NodeRules, opts.MarkRules),
		rewriter:   metatag.NewRewriter(opts.MetaTag, log),
		logger:     log,
	}, nil
}

// Schema returns the composed document schema
func (c *Converter) Schema() *schema.Schema {
	return c.schema
}

// Parse reads MDX text into a syntax tree with its metadata extracted
func (c *Converter) Parse(text string) (*mdast.Root, error) {
	return parser.Parse(text, c.opts.Parser)
}

// Normalize appends the metadata component tag to root and imports it.
// The root is modified in place.
func (c *Converter) Normalize(root *mdast.Root) *mdast.Root {
	return c.rewriter.Rewrite(root)
}

// ToDocument converts a syntax tree into a validated document tree
func (c *Converter) ToDocument(root *mdast.Root) (*model.Node, error) {
	return c.converter.Convert(root)
}

// FromDocument serializes a document tree to MDX text
func (c *Converter) FromDocument(doc *model.Node) (string, error) {
	return c.serializer.Serialize(doc, c.opts.Serialize)
}

// Import parses text and converts it into a document tree
func (c *Converter) Import(text string) (*model.Node, error) {
	root, err := c.Parse(text)
	if err != nil {
		return nil, err
	}
	if c.opts.EmitMetaTag {
		root = c.Normalize(root)
	}
	return c.ToDocument(root)
}

// RoundTrip imports text and serializes the resulting document
func (c *Converter) RoundTrip(text string) (string, error) {
	doc, err := c.Import(text)
	if err != nil {
		return "", err
	}
	return c.FromDocument(doc)
}
