// Package metatag rewrites a document's decoded metadata into a component tag
// appended to the document, and makes sure the tag is imported.
package metatag

import (
	"strings"

	"github.com/gerunddev/mdxbridge/internal/esm"
	"github.com/gerunddev/mdxbridge/internal/frontmatter"
	"github.com/gerunddev/mdxbridge/internal/logger"
	"github.com/gerunddev/mdxbridge/internal/mdast"
	"github.com/gerunddev/mdxbridge/internal/meta"
)

const (
	DefaultTagName       = "Meta"
	DefaultImportPackage = "@storybook/addon-docs/blocks"
)

// Options configures the generated tag and its import
type Options struct {
	TagName       string
	ImportPackage string
}

// DefaultOptions returns the Storybook docs defaults
func DefaultOptions() Options {
	return Options{
		TagName:       DefaultTagName,
		ImportPackage: DefaultImportPackage,
	}
}

func (o Options) withDefaults() Options {
	if o.TagName == "" {
		o.TagName = DefaultTagName
	}
	if o.ImportPackage == "" {
		o.ImportPackage = DefaultImportPackage
	}
	return o
}

// Rewriter turns root metadata into markup
type Rewriter struct {
	Options Options
	Logger  *logger.Logger
}

// NewRewriter creates a rewriter. A nil logger discards diagnostics.
func NewRewriter(opts Options, log *logger.Logger) *Rewriter {
	if log == nil {
		log = logger.Discard()
	}
	return &Rewriter{Options: opts.withDefaults(), Logger: log}
}

type candidate struct {
	node   *mdast.Import
	parsed *esm.Parsed
	stmt   *esm.Statement
}

// Rewrite imports the tag and appends it, carrying root.Meta as attributes.
// The root is modified in place and returned. Roots without metadata are
// returned unchanged.
func (r *Rewriter) Rewrite(root *mdast.Root) *mdast.Root {
	if root.Meta.Len() == 0 {
		return root
	}
	opts := r.Options.withDefaults()
	log := r.Logger
	if log == nil {
		log = logger.Discard()
	}

	var (
		candidates []candidate
		imported   bool
	)
	mdast.Visit(root, func(n mdast.Node, _ mdast.Parent) bool {
		node, ok := n.(*mdast.Import)
		if !ok || imported {
			return !imported
		}

		switch result := esm.ParseImport(node.Value).(type) {
		case *esm.Unparseable:
			log.ImportUnparseable(result.Raw, result.Err)
		case *esm.Parsed:
			for _, stmt := range result.Statements {
				if stmt.Source() != opts.ImportPackage {
					continue
				}
				if stmt.Binds(opts.TagName) {
					imported = true
					return false
				}
				candidates = append(candidates, candidate{node: node, parsed: result, stmt: stmt})
			}
		}
		return true
	})

	if !imported {
		for _, c := range candidates {
			if err := c.stmt.AddNamed(opts.TagName); err != nil {
				log.Debug("import statement cannot take the tag", "import", c.stmt.String(), "error", err)
				continue
			}
			c.node.Value = "\n" + c.parsed.String() + "\n"
			imported = true
			break
		}
	}

	if !imported {
		source := jsonText(opts.ImportPackage)
		stmt := &mdast.Import{Value: "import { " + opts.TagName + " } from " + source + ";\n"}
		root.Children = append([]mdast.Node{stmt}, root.Children...)
	}

	root.Children = append(root.Children, &mdast.JSX{
		Value: "\n" + RenderTag(opts.TagName, root.Meta) + "\n",
	})
	return root
}

// RenderTag renders a self-closing tag with one attribute per entry of m, in
// key order
func RenderTag(tag string, m *meta.Map) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	m.Range(func(key string, value any) bool {
		b.WriteString(" ")
		b.WriteString(RenderAttribute(key, value))
		return true
	})
	b.WriteString(" />")
	return b.String()
}

// RenderAttribute renders one metadata entry as a tag attribute:
//
//	string      key="value"
//	true        key
//	false       key={false}
//	JSRef       key={Identifier}
//	otherwise   key={<JSON>}
func RenderAttribute(key string, value any) string {
	switch v := value.(type) {
	case string:
		return key + "=" + jsonText(v)
	case bool:
		if v {
			return key
		}
		return key + "={false}"
	case meta.JSRef:
		return key + "={" + v.Value + "}"
	}
	return key + "={" + jsonText(value) + "}"
}

// jsonText renders v as JSON, falling back to null for values JSON cannot
// represent (NaN and infinities)
func jsonText(v any) string {
	text, err := meta.JSON(v)
	if err != nil {
		return "null"
	}
	return text
}

// Transform returns a pass that extracts the metadata blocks of a root and
// then rewrites them into markup
func Transform(opts Options, log *logger.Logger) func(*mdast.Root) (*mdast.Root, error) {
	rw := NewRewriter(opts, log)
	return func(root *mdast.Root) (*mdast.Root, error) {
		if err := frontmatter.Extract(root, meta.Decode); err != nil {
			return nil, err
		}
		return rw.Rewrite(root), nil
	}
}
