package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdxbridge/internal/build"
	"github.com/gerunddev/mdxbridge/internal/styles"
)

// maxListedErrors caps the failed documents listed under a build summary
const maxListedErrors = 10

// buildModel is the Bubble Tea model for the build progress display
type buildModel struct {
	spinner  spinner.Model
	status   string
	done     int
	total    int
	complete bool
	result   *build.Result
	err      error
}

// BuildMsg is sent when the build completes
type BuildMsg struct {
	Result *build.Result
	Err    error
}

// ProgressMsg is sent before each document is processed
type ProgressMsg build.Progress

// InitBuildModel creates a new build progress model
func InitBuildModel() buildModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return buildModel{
		spinner: s,
		status:  "Scanning sources...",
	}
}

// Done reports whether the build finished before the program quit
func (m buildModel) Done() bool {
	return m.complete
}

func (m buildModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case ProgressMsg:
		m.done = msg.Done
		m.total = msg.Total
		m.status = "Converting " + msg.File
		return m, nil

	case BuildMsg:
		m.complete = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m buildModel) View() string {
	if !m.complete {
		counter := ""
		if m.total > 0 {
			counter = styles.DimStyle.Render(fmt.Sprintf(" (%d/%d)", m.done+1, m.total))
		}
		return fmt.Sprintf("\n%s %s%s\n\n", m.spinner.View(), m.status, counter)
	}
	if m.err != nil {
		return styles.ErrorStyle.Render("✗ Build failed: "+m.err.Error()) + "\n"
	}
	return Summary(m.result)
}

// Summary renders a finished build result
func Summary(r *build.Result) string {
	var b strings.Builder
	duration := r.EndTime.Sub(r.StartTime).Round(time.Millisecond)

	verb := "Converted"
	if r.DryRun {
		verb = "Would convert"
	}

	if len(r.Converted) == 0 && len(r.Removed) == 0 && len(r.Errors) == 0 {
		b.WriteString(styles.SuccessStyle.Render("✓ Nothing to build"))
	} else {
		b.WriteString(styles.SuccessStyle.Render(fmt.Sprintf("✓ %s %d document(s)", verb, len(r.Converted))))
		if len(r.Removed) > 0 {
			b.WriteString(", " + styles.WarningStyle.Render(fmt.Sprintf("%d removed", len(r.Removed))))
		}
		if len(r.Errors) > 0 {
			b.WriteString(", " + styles.ErrorStyle.Render(fmt.Sprintf("%d error(s)", len(r.Errors))))
		}
	}
	b.WriteString("\n")

	for i, docErr := range r.Errors {
		if i == maxListedErrors {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  ... and %d more", len(r.Errors)-i)) + "\n")
			break
		}
		b.WriteString(styles.ErrorStyle.Render("  ✗ "+docErr.Path) + styles.DimStyle.Render(": "+docErr.Err.Error()) + "\n")
	}

	b.WriteString(styles.HelpStyle.Render(fmt.Sprintf("%d unchanged • completed in %v", len(r.Skipped), duration)) + "\n")
	return b.String()
}
