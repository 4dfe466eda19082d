// Package ui renders interactive scan progress for TTY sessions.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"sable/internal/linter"
)

// scanModel tracks a streaming scan: files are discovered and scanned
// concurrently, so the denominator grows while the bar fills.
type scanModel struct {
	title   string
	events  <-chan linter.Event
	spinner spinner.Model
	prog    progress.Model

	discovered int
	scanned    int
	findings   int
	failed     int
	current    string
	width      int
	done       bool
}

type eventMsg linter.Event
type doneMsg struct{}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	findingsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// NewScanModel returns a Bubble Tea model that renders scan progress from
// the engine's event stream.
func NewScanModel(title string, events <-chan linter.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &scanModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		width:   80,
	}
}

func (m *scanModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(linter.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progModel, cmd := m.prog.Update(msg)
		m.prog = progModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *scanModel) View() string {
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	counts := countStyle.Render(fmt.Sprintf("scanned %d/%d", m.scanned, m.discovered))
	if m.findings > 0 {
		counts += "   " + findingsStyle.Render(fmt.Sprintf("findings %d", m.findings))
	}
	if m.failed > 0 {
		counts += "   " + failedStyle.Render(fmt.Sprintf("failed %d", m.failed))
	}
	b.WriteString("  ")
	b.WriteString(counts)
	b.WriteString("\n")

	if m.current != "" && !m.done {
		nameWidth := m.width - 4
		if nameWidth < 20 {
			nameWidth = 20
		}
		b.WriteString("  ")
		b.WriteString(pathStyle.Render(truncate(m.current, nameWidth)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *scanModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *scanModel) applyEvent(ev linter.Event) tea.Cmd {
	switch ev.Stage {
	case linter.StageDiscovered:
		m.discovered++
	case linter.StageScanned:
		m.scanned++
		m.findings += ev.Findings
		if ev.Err != nil {
			m.failed++
		}
		m.current = ev.Path
	default:
		return nil
	}
	// знаменатель растёт по ходу обхода, бар может временно откатываться
	if m.discovered == 0 {
		return nil
	}
	pct := float64(m.scanned) / float64(m.discovered)
	return m.prog.SetPercent(pct)
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
