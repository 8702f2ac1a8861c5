// Package build converts every MDX document under a source directory into
// a document JSON file, skipping sources unchanged since the last build.
package build

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gerunddev/mdxbridge/internal/config"
	"github.com/gerunddev/mdxbridge/internal/converter"
	"github.com/gerunddev/mdxbridge/internal/logger"
	"github.com/gerunddev/mdxbridge/internal/model"
	"github.com/gerunddev/mdxbridge/internal/state"
)

// Namespace is the UUID namespace document IDs are derived in
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/gerunddev/mdxbridge"))

// Extensions lists the source file extensions a build picks up
var Extensions = []string{".mdx", ".md"}

// DocumentID returns the stable ID of the document at rel, a path relative
// to the source directory
func DocumentID(rel string) string {
	return uuid.NewSHA1(Namespace, []byte(filepath.ToSlash(rel))).String()
}

// Envelope is the JSON file written for each document
type Envelope struct {
	ID       string      `json:"id"`
	Source   string      `json:"source"`
	Document *model.Node `json:"document"`
}

// DocumentError records a document that failed to build
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Progress reports a document about to be processed
type Progress struct {
	File  string
	Done  int
	Total int
}

// Builder handles batch conversion from the source to the output directory
type Builder struct {
	config    *config.Config
	state     *state.State
	converter *converter.Converter
	logger    *logger.Logger

	// DryRun converts documents without writing outputs or state
	DryRun bool
	// OnProgress, when set, is called before each document
	OnProgress func(Progress)
}

// NewBuilder creates a new builder instance. A nil logger discards
// diagnostics.
func NewBuilder(cfg *config.Config, st *state.State, conv *converter.Converter, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Discard()
	}
	return &Builder{
		config:    cfg,
		state:     st,
		converter: conv,
		logger:    log,
	}
}

// Result represents the result of a build
type Result struct {
	Converted []string
	Skipped   []string
	Removed   []string
	Errors    []*DocumentError
	DryRun    bool
	StartTime time.Time
	EndTime   time.Time
}

// Build converts every changed source document. Failures of single
// documents are collected in the result; only failures to scan the source
// directory abort the build.
func (b *Builder) Build() (*Result, error) {
	result := &Result{
		DryRun:    b.DryRun,
		StartTime: time.Now(),
	}
	b.logger.BuildStarted(b.config.SrcDir, b.config.OutDir)

	files, err := b.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", b.config.SrcDir, err)
	}

	seen := make(map[string]bool, len(files))
	for i, rel := range files {
		src := filepath.Join(b.config.SrcDir, rel)
		seen[src] = true
		if b.OnProgress != nil {
			b.OnProgress(Progress{File: rel, Done: i, Total: len(files)})
		}

		changed, err := b.state.HasChanged(src)
		if err != nil {
			b.fail(result, rel, err)
			continue
		}
		if !changed {
			b.logger.Skipped(rel, "unchanged since last build")
			result.Skipped = append(result.Skipped, rel)
			continue
		}

		if err := b.buildFile(rel); err != nil {
			b.fail(result, rel, err)
			continue
		}
		result.Converted = append(result.Converted, rel)
	}

	for _, src := range b.state.Missing(seen) {
		rel, err := filepath.Rel(b.config.SrcDir, src)
		if err != nil {
			rel = src
		}
		result.Removed = append(result.Removed, rel)
		if b.DryRun {
			continue
		}
		if out := b.state.Files[src].Output; out != "" {
			if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
				b.fail(result, rel, err)
				continue
			}
		}
		b.state.Forget(src)
	}

	result.EndTime = time.Now()
	b.logger.BuildCompleted(len(result.Converted), len(result.Skipped), len(result.Errors), result.EndTime.Sub(result.StartTime))
	return result, nil
}

func (b *Builder) fail(result *Result, rel string, err error) {
	b.logger.DocumentFailed(rel, err)
	result.Errors = append(result.Errors, &DocumentError{Path: rel, Err: err})
}

func (b *Builder) buildFile(rel string) error {
	src := filepath.Join(b.config.SrcDir, rel)
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	doc, err := b.converter.Import(string(data))
	if err != nil {
		return err
	}

	id := DocumentID(rel)
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Envelope{ID: id, Source: filepath.ToSlash(rel), Document: doc}); err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if b.DryRun {
		return nil
	}

	dest := b.OutputPath(rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(dest, out.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	b.logger.DocumentConverted(rel, dest)

	if err := b.state.Update(src, dest, id); err != nil {
		b.logger.StateError("update", err)
	}
	return nil
}

// OutputPath returns where the document at rel is written
func (b *Builder) OutputPath(rel string) string {
	return filepath.Join(b.config.OutDir, rel+".json")
}

// Scan lists the source documents as paths relative to the source
// directory, in lexical order. The output directory and excluded paths are
// left out.
func (b *Builder) Scan() ([]string, error) {
	root := b.config.SrcDir
	outDir := filepath.Clean(b.config.OutDir)

	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && (filepath.Clean(p) == outDir || b.excluded(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if hasExtension(p) && !b.excluded(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// excluded reports whether rel matches an exclude pattern. A pattern ending
// in "/**" excludes everything below that directory; any other pattern is
// matched against the whole path and against the base name.
func (b *Builder) excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range b.config.ExcludePatterns {
		if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
			if rel == dir || strings.HasPrefix(rel, dir+"/") {
				return true
			}
			continue
		}
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

func hasExtension(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	for _, want := range Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the build result
func (r *Result) String() string {
	verb := "converted"
	if r.DryRun {
		verb = "would convert"
	}
	return fmt.Sprintf(
		"Build complete: %d %s, %d unchanged, %d removed, %d errors (took %v)",
		len(r.Converted),
		verb,
		len(r.Skipped),
		len(r.Removed),
		len(r.Errors),
		r.EndTime.Sub(r.StartTime).Round(time.Millisecond),
	)
}
