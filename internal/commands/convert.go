package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gerunddev/mdxbridge/internal/converter"
	"github.com/gerunddev/mdxbridge/internal/diff"
	"github.com/gerunddev/mdxbridge/internal/mdast"
	"github.com/gerunddev/mdxbridge/internal/model"
)

// Parse prints the syntax tree of an MDX file
func Parse(args []string) {
	e := mustSetup(args)
	defer e.cleanup()
	if err := runParse(os.Stdout, e.conv, args); err != nil {
		fail(err)
	}
}

// Convert prints the document JSON of an MDX file
func Convert(args []string) {
	e := mustSetup(args)
	defer e.cleanup()
	if err := runConvert(os.Stdout, e.conv, args); err != nil {
		fail(err)
	}
}

// Serialize prints the MDX text of a document JSON file
func Serialize(args []string) {
	e := mustSetup(args)
	defer e.cleanup()
	if err := runSerialize(os.Stdout, e.conv, args); err != nil {
		fail(err)
	}
}

// RoundTrip converts an MDX file into a document and prints it serialized
func RoundTrip(args []string) {
	e := mustSetup(args)
	defer e.cleanup()
	if err := runRoundTrip(os.Stdout, e.conv, args); err != nil {
		fail(err)
	}
}

// Meta turns the metadata block of an MDX file into a component tag and
// prints the result
func Meta(args []string) {
	e := mustSetup(args)
	defer e.cleanup()
	if err := runMeta(os.Stdout, e.conv, args); err != nil {
		fail(err)
	}
}

// Diff prints what a round trip changes in an MDX file
func Diff(args []string) {
	e := mustSetup(args)
	defer e.cleanup()
	if err := runDiff(os.Stdout, e.conv, args); err != nil {
		fail(err)
	}
}

func runParse(w io.Writer, conv *converter.Converter, args []string) error {
	path, err := inputPath(args, "parse [--json] <file>")
	if err != nil {
		return err
	}
	text, err := readInput(path)
	if err != nil {
		return err
	}
	root, err := conv.Parse(text)
	if err != nil {
		return err
	}

	if hasFlag(args, "--json") {
		data, err := mdast.MarshalJSON(root)
		if err != nil {
			return err
		}
		return writeIndentedJSON(w, data)
	}
	_, err = io.WriteString(w, mdast.Inspect(root))
	return err
}

func runConvert(w io.Writer, conv *converter.Converter, args []string) error {
	path, err := inputPath(args, "convert <file>")
	if err != nil {
		return err
	}
	text, err := readInput(path)
	if err != nil {
		return err
	}
	doc, err := conv.Import(text)
	if err != nil {
		return err
	}
	data, err := doc.MarshalJSON()
	if err != nil {
		return err
	}
	return writeIndentedJSON(w, data)
}

func runSerialize(w io.Writer, conv *converter.Converter, args []string) error {
	path, err := inputPath(args, "serialize <file.json>")
	if err != nil {
		return err
	}
	text, err := readInput(path)
	if err != nil {
		return err
	}
	doc, err := decodeDocument([]byte(text))
	if err != nil {
		return err
	}
	if err := conv.Schema().Validate(doc); err != nil {
		return err
	}
	out, err := conv.FromDocument(doc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// decodeDocument accepts a bare document or a build output envelope
func decodeDocument(data []byte) (*model.Node, error) {
	var envelope struct {
		Document json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Document) > 0 {
		data = envelope.Document
	}
	return model.FromJSON(data)
}

func runRoundTrip(w io.Writer, conv *converter.Converter, args []string) error {
	path, err := inputPath(args, "roundtrip <file>")
	if err != nil {
		return err
	}
	text, err := readInput(path)
	if err != nil {
		return err
	}
	out, err := conv.RoundTrip(text)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func runMeta(w io.Writer, conv *converter.Converter, args []string) error {
	path, err := inputPath(args, "meta <file>")
	if err != nil {
		return err
	}
	text, err := readInput(path)
	if err != nil {
		return err
	}
	root, err := conv.Parse(text)
	if err != nil {
		return err
	}
	doc, err := conv.ToDocument(conv.Normalize(root))
	if err != nil {
		return err
	}
	out, err := conv.FromDocument(doc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func runDiff(w io.Writer, conv *converter.Converter, args []string) error {
	path, err := inputPath(args, "diff [--plain] <file>")
	if err != nil {
		return err
	}
	format := diff.FormatTerminal
	if hasFlag(args, "--plain") {
		format = diff.FormatPlain
	}
	out, err := diff.RoundTrip(path, conv, format)
	if err != nil {
		return err
	}
	if out == "" {
		out = "Round trip is lossless\n"
	}
	_, err = io.WriteString(w, out)
	return err
}
