package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Watch view styles
var (
	watchBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	watchErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
	watchLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

// maxDiagnosticLines bounds how much of a failed render is shown.
const maxDiagnosticLines = 12

// =============================================================================
// Messages
// =============================================================================

// renderStartMsg reports that a render has begun.
type renderStartMsg struct{}

// renderDoneMsg reports a finished render.
type renderDoneMsg struct {
	at      time.Time
	elapsed time.Duration
	err     error
}

// =============================================================================
// WatchModel - Live status for the watch command
// =============================================================================

// WatchModel is the bubbletea model showing the state of a watched file.
type WatchModel struct {
	File    string
	Backend string
	URL     string

	Renders   int
	Failures  int
	Rendering bool
	LastAt    time.Time
	Elapsed   time.Duration
	Err       error
}

// NewWatchModel creates a watch model for file shown in backend.
func NewWatchModel(file, backend, url string) WatchModel {
	return WatchModel{File: file, Backend: backend, URL: url}
}

func (m WatchModel) Init() tea.Cmd {
	return nil
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case renderStartMsg:
		m.Rendering = true
	case renderDoneMsg:
		m.Rendering = false
		m.LastAt = msg.at
		m.Elapsed = msg.elapsed
		m.Err = msg.err
		if msg.err != nil {
			m.Failures++
		} else {
			m.Renders++
		}
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Watching " + m.File))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	rows := []string{
		watchLabelStyle.Render("Backend") + " " + StyleValue.Render(m.Backend),
	}
	if m.URL != "" {
		rows = append(rows, watchLabelStyle.Render("URL")+" "+StyleLink.Render(m.URL))
	}
	rows = append(rows, watchLabelStyle.Render("Renders")+" "+
		StyleNumber.Render(fmt.Sprint(m.Renders))+StyleDim.Render(fmt.Sprintf(" ok · %d failed", m.Failures)))
	rows = append(rows, watchLabelStyle.Render("Status")+" "+m.status())
	b.WriteString(watchBoxStyle.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	if m.Err != nil && !m.Rendering {
		b.WriteString("\n")
		b.WriteString(watchErrorStyle.Render(truncateLines(m.Err.Error(), maxDiagnosticLines)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m WatchModel) status() string {
	switch {
	case m.Rendering:
		return StyleHighlight.Render("rendering...")
	case m.LastAt.IsZero():
		return StyleDim.Render("waiting")
	case m.Err != nil:
		return styleIconError.Render(iconError) + " " +
			StyleDim.Render(fmt.Sprintf("failed at %s", m.LastAt.Format("15:04:05")))
	default:
		return styleIconSuccess.Render(iconSuccess) + " " +
			StyleDim.Render(fmt.Sprintf("shown at %s (%s)", m.LastAt.Format("15:04:05"), m.Elapsed.Round(time.Millisecond)))
	}
}

// truncateLines keeps the first n lines of s.
func truncateLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:n], "\n") + fmt.Sprintf("\n... %d more lines", len(lines)-n)
}
