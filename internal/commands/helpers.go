package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/gerunddev/mdxbridge/internal/config"
	"github.com/gerunddev/mdxbridge/internal/converter"
	"github.com/gerunddev/mdxbridge/internal/logger"
	"github.com/gerunddev/mdxbridge/internal/styles"
)

// env bundles what the commands share
type env struct {
	cfg     *config.Config
	log     *logger.Logger
	conv    *converter.Converter
	cleanup func()
}

// setup loads the configuration and builds the pipeline it describes. Logs
// go to the configured log file, or nowhere if it cannot be opened. With
// --verbose they go to standard error instead, debug messages included.
func setup(args []string) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Discard()
	cleanup := func() {}
	switch {
	case hasFlag(args, "--verbose"):
		log = logger.NewWithLevel(os.Stderr, charmlog.DebugLevel)
	case cfg.LogFile != "":
		if l, closeFile, err := logger.NewFileLogger(cfg.LogFile); err == nil {
			log, cleanup = l, closeFile
		}
	}
	log.ConfigLoaded(cfg.SrcDir, cfg.OutDir)

	conv, err := converter.NewConverter(cfg.ConverterOptions(), log)
	if err != nil {
		cleanup()
		return nil, err
	}
	return &env{cfg: cfg, log: log, conv: conv, cleanup: cleanup}, nil
}

// mustSetup is setup for commands that cannot continue without it
func mustSetup(args []string) *env {
	e, err := setup(args)
	if err != nil {
		fail(err)
	}
	return e
}

// fail prints err and exits
func fail(err error) {
	fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("✗ Error: "+err.Error()))
	os.Exit(1)
}

// hasFlag reports whether args contain the flag
func hasFlag(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag {
			return true
		}
	}
	return false
}

// positional returns the arguments that are not flags
func positional(args []string) []string {
	var out []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			out = append(out, arg)
		}
	}
	return out
}

// inputPath returns the single file argument of a command
func inputPath(args []string, usage string) (string, error) {
	files := positional(args)
	if len(files) != 1 {
		return "", fmt.Errorf("usage: mdxbridge %s", usage)
	}
	return files[0], nil
}

// readInput reads path, or standard input when path is "-"
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeIndentedJSON writes data indented, followed by a newline
func writeIndentedJSON(w io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
