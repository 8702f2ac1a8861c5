package main

import (
	"fmt"
	"os"

	"github.com/gerunddev/mdxbridge/internal/commands"
	"github.com/gerunddev/mdxbridge/internal/config"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "parse":
		commands.Parse(args)
	case "convert":
		commands.Convert(args)
	case "serialize":
		commands.Serialize(args)
	case "roundtrip":
		commands.RoundTrip(args)
	case "meta":
		commands.Meta(args)
	case "build":
		commands.Build(args)
	case "diff":
		commands.Diff(args)
	case "browse", "files":
		commands.Browse(args)
	case "config":
		commands.Config(args)
	case "version", "-v", "--version":
		fmt.Printf("mdxbridge v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := fmt.Sprintf(`mdxbridge - Convert MDX documents to and from a structured document model

Usage:
  mdxbridge <command> [options]

Commands:
  parse [--json] <file>     Print the syntax tree of an MDX file
  convert <file>            Print the document JSON of an MDX file
  serialize <file.json>     Print the MDX text of a document (or build output)
  roundtrip <file>          Convert an MDX file and serialize it back
  meta <file>               Turn front matter into a component tag and print the result
  diff [--plain] <file>     Show what a round trip changes
  build [--dry-run] [--quiet]
                            Convert every changed document under src_dir
  browse                    Browse source documents and their round-trip diffs
  config [init [--force]]   Show the configuration, or write the defaults
  version                   Show version information
  help                      Show this help message

Every command accepts --verbose to log to standard error.

Files may be "-" to read standard input.

Configuration: %s
`, config.ConfigPath())
	fmt.Print(usage)
}
