package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dealdesk/viz"
)

func (m Model) renderGraphView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("PIPELINE GRAPH"))
	s.WriteString("\n\n")

	if m.graphDOT == "" {
		s.WriteString("Generating graph...\n")
	} else {
		lines := strings.Split(m.graphDOT, "\n")
		start := min(m.graphOffset, len(lines)-1)
		end := min(start+max(m.height-8, 5), len(lines))
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Render(strings.Join(lines[start:end], "\n")))
	}

	s.WriteString("\n\n")
	s.WriteString(m.renderGraphHelp())

	return s.String()
}

func (m Model) renderGraphHelp() string {
	help := []string{
		"↑/↓: Scroll",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleGraphKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.graphDOT = ""
	case "down", "j":
		m.graphOffset++
	case "up", "k":
		if m.graphOffset > 0 {
			m.graphOffset--
		}
	}

	return m, nil
}

func (m Model) graphCmd() tea.Cmd {
	ctx, c := m.ctx, m.app
	return func() tea.Msg {
		dot, err := viz.NewGraphGenerator(c.Logger).GeneratePipelineGraph(ctx, c.Snapshot(ctx))
		return graphMsg{dot: dot, err: err}
	}
}
