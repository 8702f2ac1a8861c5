// Package schema describes which document trees are legal: node and mark
// types with their attributes, content expressions and groups. A composed
// Schema builds nodes and validates whole documents.
package schema

// AttrSpec declares one attribute. Attributes without a default are
// required.
type AttrSpec struct {
	Default    any
	HasDefault bool
}

// Optional declares an attribute that falls back to def
func Optional(def any) AttrSpec {
	return AttrSpec{Default: def, HasDefault: true}
}

// Required declares an attribute that must always be given
func Required() AttrSpec {
	return AttrSpec{}
}

// NodeSpec describes a node type.
//
// Content is a content expression such as "paragraph block*" or "inline*".
// Group is a space separated list of groups the type belongs to. Marks lists
// the mark types or mark groups allowed on the node's children; nil allows
// all, an empty slice allows none.
type NodeSpec struct {
	Content string
	Group   string
	Inline  bool
	Atom    bool
	Code    bool
	Marks   []string
	Attrs   map[string]AttrSpec
}

// MarkSpec describes a mark type. Excludes is a space separated list of mark
// types or groups that cannot coexist with this mark; empty excludes only
// marks of the same type and "_" excludes all others.
type MarkSpec struct {
	Attrs     map[string]AttrSpec
	Inclusive bool
	Excludes  string
	Group     string
	Code      bool
}

// NodeSpecs maps node type names to their specs
type NodeSpecs map[string]NodeSpec

// MarkSpecs maps mark type names to their specs
type MarkSpecs map[string]MarkSpec

// Baseline node type names
const (
	Doc            = "doc"
	Paragraph      = "paragraph"
	Blockquote     = "blockquote"
	HorizontalRule = "horizontal_rule"
	Heading        = "heading"
	CodeBlock      = "code_block"
	OrderedList    = "ordered_list"
	BulletList     = "bullet_list"
	ListItem       = "list_item"
	Text           = "text"
	Image          = "image"
	HardBreak      = "hard_break"
)

// Passthrough node type names. Each holds raw source text in its "value"
// attribute.
const (
	MDXImport    = "mdx_import"
	MDXExport    = "mdx_export"
	MDXJSX       = "mdx_jsx"
	MDXInlineJSX = "mdx_inline_jsx"
)

// Baseline mark type names
const (
	Em     = "em"
	Strong = "strong"
	Link   = "link"
	Code   = "code"
)

// FrontmatterAttr is the document attribute holding the decoded metadata
const FrontmatterAttr = "frontmatter"

// BaselineNodes returns the Markdown node specs
func BaselineNodes() NodeSpecs {
	return NodeSpecs{
		Doc: {
			Content: "block+",
		},
		Paragraph: {
			Content: "inline*",
			Group:   "block",
		},
		Blockquote: {
			Content: "block+",
			Group:   "block",
		},
		HorizontalRule: {
			Group: "block",
		},
		Heading: {
			Content: "inline*",
			Group:   "block",
			Attrs:   map[string]AttrSpec{"level": Optional(1)},
		},
		CodeBlock: {
			Content: "text*",
			Group:   "block",
			Code:    true,
			Marks:   []string{},
			Attrs:   map[string]AttrSpec{"params": Optional("")},
		},
		OrderedList: {
			Content: "list_item+",
			Group:   "block",
			Attrs: map[string]AttrSpec{
				"order": Optional(1),
				"tight": Optional(false),
			},
		},
		BulletList: {
			Content: "list_item+",
			Group:   "block",
			Attrs:   map[string]AttrSpec{"tight": Optional(false)},
		},
		ListItem: {
			Content: "paragraph block*",
		},
		Text: {
			Inline: true,
			Group:  "inline",
		},
		Image: {
			Inline: true,
			Group:  "inline",
			Attrs: map[string]AttrSpec{
				"src":   Required(),
				"alt":   Optional(nil),
				"title": Optional(nil),
			},
		},
		HardBreak: {
			Inline: true,
			Group:  "inline",
		},
	}
}

// PassthroughNodes returns the opaque node specs holding import, export and
// component markup text verbatim
func PassthroughNodes() NodeSpecs {
	value := map[string]AttrSpec{"value": Required()}
	return NodeSpecs{
		MDXImport:    {Atom: true, Group: "block", Attrs: value},
		MDXExport:    {Atom: true, Group: "block", Attrs: value},
		MDXJSX:       {Atom: true, Group: "block", Attrs: value},
		MDXInlineJSX: {Atom: true, Inline: true, Group: "inline", Attrs: value},
	}
}

// BaselineMarks returns the Markdown mark specs
func BaselineMarks() MarkSpecs {
	return MarkSpecs{
		Em:     {Inclusive: true},
		Strong: {Inclusive: true},
		Link: {
			Attrs: map[string]AttrSpec{
				"href":  Required(),
				"title": Optional(nil),
			},
		},
		Code: {Inclusive: true, Code: true},
	}
}
