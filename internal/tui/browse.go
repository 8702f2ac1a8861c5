package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gerunddev/mdxbridge/internal/styles"
)

// Document statuses shown in the browser
const (
	StatusBuilt   = "built"
	StatusChanged = "changed"
	StatusNew     = "new"
)

// BrowseData holds the source documents and their build status
type BrowseData struct {
	SrcDir string
	Files  []FileInfo
}

// FileInfo represents a source document
type FileInfo struct {
	Path   string // relative to the source directory
	Status string
	ID     string
}

// Icon returns the status marker shown next to the document
func (f FileInfo) Icon() string {
	switch f.Status {
	case StatusBuilt:
		return "✓"
	case StatusChanged:
		return "→"
	}
	return "+"
}

// BrowseMsg is sent when browse data is ready
type BrowseMsg struct {
	Data *BrowseData
	Err  error
}

// DiffMsg is sent when a round-trip diff is ready
type DiffMsg struct {
	Path    string
	Content string
	Err     error
}

// DiffFunc produces the round-trip diff of the document at a relative path
type DiffFunc func(path string) (string, error)

type browseModel struct {
	table       table.Model
	viewport    viewport.Model
	data        *BrowseData
	err         error
	ready       bool
	showingDiff bool
	selected    *FileInfo
	diffFunc    DiffFunc
	loadFunc    func() (*BrowseData, error)
}

// InitBrowseModel creates a new document browser. load lists the documents,
// diff renders the round trip of one of them.
func InitBrowseModel(load func() (*BrowseData, error), diff DiffFunc) browseModel {
	columns := []table.Column{
		{Title: "Document", Width: 50},
		{Title: "Status", Width: 12},
		{Title: "ID", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(styles.Border)).
		BorderBottom(true).
		Bold(false)
	ts.Selected = styles.SelectedStyle
	t.SetStyles(ts)

	vp := viewport.New(100, 20)
	vp.Style = styles.ViewportStyle

	return browseModel{
		table:    t,
		viewport: vp,
		diffFunc: diff,
		loadFunc: load,
	}
}

func (m browseModel) Init() tea.Cmd {
	return m.load()
}

func (m browseModel) load() tea.Cmd {
	return func() tea.Msg {
		data, err := m.loadFunc()
		return BrowseMsg{Data: data, Err: err}
	}
}

func (m browseModel) loadDiff(path string) tea.Cmd {
	return func() tea.Msg {
		content, err := m.diffFunc(path)
		return DiffMsg{Path: path, Content: content, Err: err}
	}
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 6

	case tea.KeyMsg:
		if m.showingDiff {
			switch msg.String() {
			case "q", "esc":
				m.showingDiff = false
				return m, nil
			case "up", "k", "down", "j", "pgup", "pgdown":
				m.viewport, cmd = m.viewport.Update(msg)
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.load()
		case "up", "k", "down", "j":
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		case "enter", "d":
			if m.data == nil || len(m.data.Files) == 0 {
				return m, nil
			}
			idx := m.table.Cursor()
			if idx >= len(m.data.Files) {
				return m, nil
			}
			m.selected = &m.data.Files[idx]
			m.showingDiff = true
			m.viewport.SetContent(styles.DimStyle.Render("Converting..."))
			m.viewport.GotoTop()
			return m, m.loadDiff(m.selected.Path)
		}

	case BrowseMsg:
		m.ready = true
		m.data = msg.Data
		m.err = msg.Err
		if m.data != nil {
			rows := make([]table.Row, 0, len(m.data.Files))
			for _, file := range m.data.Files {
				rows = append(rows, table.Row{
					file.Path,
					file.Icon() + " " + file.Status,
					file.ID,
				})
			}
			m.table.SetRows(rows)
		}
		return m, nil

	case DiffMsg:
		if m.selected == nil || msg.Path != m.selected.Path {
			return m, nil
		}
		switch {
		case msg.Err != nil:
			m.viewport.SetContent(styles.ErrorStyle.Render("✗ " + msg.Err.Error()))
		case msg.Content == "":
			m.viewport.SetContent(styles.SuccessStyle.Render("✓ Round trip is lossless"))
		default:
			m.viewport.SetContent(msg.Content)
		}
		m.viewport.GotoTop()
		return m, nil
	}

	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("mdxbridge documents"))
	b.WriteString("\n\n")

	if m.err != nil {
		return styles.ErrorStyle.Render("✗ Error: "+m.err.Error()) + "\n"
	}
	if !m.ready || m.data == nil {
		return b.String()
	}

	if m.showingDiff {
		b.WriteString(styles.LabelStyle.Render("Round trip: " + m.selected.Path))
		b.WriteString("\n\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • esc/q back"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(styles.LabelStyle.Render(fmt.Sprintf("%s: %d document(s)", m.data.SrcDir, len(m.data.Files))))
	b.WriteString("\n\n")
	b.WriteString(styles.TableStyle.Render(m.table.View()))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • enter/d round-trip diff • r refresh • q quit"))
	b.WriteString("\n")
	return b.String()
}
