// Package frontmatter lifts YAML metadata blocks out of a parsed document and
// attaches the merged result to the root.
package frontmatter

import (
	"github.com/gerunddev/mdxbridge/internal/mdast"
	"github.com/gerunddev/mdxbridge/internal/meta"
)

// DecodeFunc turns a metadata block payload into a mapping
type DecodeFunc func(source string) (*meta.Map, error)

// Extract decodes every metadata block that is a direct child of root, folds
// the mappings in document order into root.Meta and removes the blocks.
//
// A root without metadata blocks is left untouched. If any block fails to
// decode, the error is returned and root is not modified. A nil decode uses
// meta.Decode.
func Extract(root *mdast.Root, decode DecodeFunc) error {
	if decode == nil {
		decode = meta.Decode
	}

	var (
		maps []*meta.Map
		kept = make([]mdast.Node, 0, len(root.Children))
	)
	for _, child := range root.Children {
		block, ok := child.(*mdast.Yaml)
		if !ok {
			kept = append(kept, child)
			continue
		}
		m, err := decode(block.Value)
		if err != nil {
			return err
		}
		maps = append(maps, m)
	}

	if len(maps) == 0 {
		return nil
	}

	root.Children = kept
	root.Meta = meta.Fold(maps)
	return nil
}
