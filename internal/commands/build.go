package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdxbridge/internal/build"
	"github.com/gerunddev/mdxbridge/internal/config"
	"github.com/gerunddev/mdxbridge/internal/diff"
	"github.com/gerunddev/mdxbridge/internal/state"
	"github.com/gerunddev/mdxbridge/internal/styles"
	"github.com/gerunddev/mdxbridge/internal/tui"
)

// Build converts every changed document under the source directory, showing
// progress while it runs
func Build(args []string) {
	e := mustSetup(args)
	defer e.cleanup()

	st, err := state.Load(config.StateFilePath())
	if err != nil {
		fail(fmt.Errorf("failed to load state: %w", err))
	}

	builder := build.NewBuilder(e.cfg, st, e.conv, e.log)
	builder.DryRun = hasFlag(args, "--dry-run")

	var result *build.Result
	if hasFlag(args, "--quiet") {
		result, err = builder.Build()
		if err == nil {
			fmt.Print(tui.Summary(result))
		}
	} else {
		result, err = runBuildUI(builder)
	}
	if err != nil {
		fail(err)
	}

	if !builder.DryRun {
		if err := st.Save(config.StateFilePath()); err != nil {
			e.log.StateError("save", err)
			fail(fmt.Errorf("failed to save state: %w", err))
		}
	}
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}

// runBuildUI runs the build in the background while a spinner reports its
// progress
func runBuildUI(builder *build.Builder) (*build.Result, error) {
	p := tea.NewProgram(tui.InitBuildModel())
	builder.OnProgress = func(pr build.Progress) {
		p.Send(tui.ProgressMsg(pr))
	}

	var result *build.Result
	var buildErr error
	go func() {
		result, buildErr = builder.Build()
		p.Send(tui.BuildMsg{Result: result, Err: buildErr})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if m, ok := final.(interface{ Done() bool }); ok && !m.Done() {
		return nil, fmt.Errorf("build interrupted")
	}
	return result, buildErr
}

// Browse opens the document browser
func Browse(args []string) {
	e := mustSetup(args)
	defer e.cleanup()

	st, err := state.Load(config.StateFilePath())
	if err != nil {
		fail(fmt.Errorf("failed to load state: %w", err))
	}

	builder := build.NewBuilder(e.cfg, st, e.conv, e.log)
	load := func() (*tui.BrowseData, error) {
		return browseData(builder, st, e.cfg.SrcDir)
	}
	diffFunc := func(rel string) (string, error) {
		return diff.RoundTrip(filepath.Join(e.cfg.SrcDir, rel), e.conv, diff.FormatTerminal)
	}

	p := tea.NewProgram(tui.InitBrowseModel(load, diffFunc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fail(err)
	}
}

// browseData lists the source documents with their build status
func browseData(builder *build.Builder, st *state.State, srcDir string) (*tui.BrowseData, error) {
	files, err := builder.Scan()
	if err != nil {
		return nil, err
	}

	data := &tui.BrowseData{SrcDir: srcDir}
	for _, rel := range files {
		src := filepath.Join(srcDir, rel)
		info := tui.FileInfo{Path: rel, Status: tui.StatusNew}
		if fs, ok := st.Files[src]; ok {
			info.ID = fs.ID
			changed, err := st.HasChanged(src)
			if err != nil {
				return nil, err
			}
			info.Status = tui.StatusBuilt
			if changed {
				info.Status = tui.StatusChanged
			}
		}
		data.Files = append(data.Files, info)
	}
	return data, nil
}

// Config prints the configuration, or writes the defaults with "init"
func Config(args []string) {
	if err := runConfig(os.Stdout, args); err != nil {
		fail(err)
	}
}

func runConfig(w io.Writer, args []string) error {
	if files := positional(args); len(files) > 0 && files[0] == "init" {
		if _, err := os.Stat(config.ConfigPath()); err == nil && !hasFlag(args, "--force") {
			return fmt.Errorf("%s already exists (use --force to overwrite)", config.ConfigPath())
		}
		if err := config.DefaultConfig().Save(); err != nil {
			return err
		}
		fmt.Fprintln(w, styles.SuccessStyle.Render("✓ Wrote "+config.ConfigPath()))
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, styles.LabelStyle.Render("Config file: ")+styles.ValueStyle.Render(config.ConfigPath()))
	fmt.Fprintln(w, styles.LabelStyle.Render("State file:  ")+styles.ValueStyle.Render(config.StateFilePath()))
	fmt.Fprintln(w)
	fields := []struct {
		name  string
		value any
	}{
		{"src_dir", cfg.SrcDir},
		{"out_dir", cfg.OutDir},
		{"log_file", cfg.LogFile},
		{"tag_name", cfg.TagName},
		{"import_package", cfg.ImportPackage},
		{"metadata_delimiters", cfg.MetadataDelimiters},
		{"tight_lists", cfg.TightLists},
		{"emit_meta_tag", cfg.EmitMetaTag},
		{"exclude_patterns", cfg.ExcludePatterns},
	}
	for _, f := range fields {
		fmt.Fprintf(w, "  %s %v\n", styles.LabelStyle.Render(fmt.Sprintf("%-20s", f.name)), f.value)
	}
	return nil
}
