// Package diff shows what a round trip through the document model changes
// in an MDX file.
package diff

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/gerunddev/mdxbridge/internal/converter"
)

// Format represents the output format for diffs
type Format int

const (
	// FormatTerminal renders the diff with glamour (default)
	FormatTerminal Format = iota
	// FormatPlain returns the fenced diff as is
	FormatPlain
)

// RoundTrip converts the file at path into a document, serializes it again
// and diffs the result against the original text. An empty string means the
// round trip is lossless.
func RoundTrip(path string, conv *converter.Converter, format Format) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	serialized, err := conv.RoundTrip(string(source))
	if err != nil {
		return "", fmt.Errorf("failed to convert %s: %w", path, err)
	}

	name := filepath.Base(path)
	return Text(name, string(source), serialized, format)
}

// Text diffs before against after, labelling both sides with name
func Text(name, before, after string, format Format) (string, error) {
	if before == after {
		return "", nil
	}

	edits := myers.ComputeEdits(span.URIFromPath(name), before, after)
	unified := fmt.Sprint(gotextdiff.ToUnified(name, name+" (round trip)", before, edits))
	fenced := fmt.Sprintf("```diff\n%s```\n", unified)

	switch format {
	case FormatPlain:
		return fenced, nil
	case FormatTerminal:
		return render(fenced), nil
	default:
		return "", fmt.Errorf("unsupported diff format: %d", format)
	}
}

// render falls back to the plain diff when glamour cannot render it
func render(fenced string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return fenced
	}

	rendered, err := renderer.Render(fenced)
	if err != nil {
		return fenced
	}
	return rendered
}
