package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.finish(false)
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Left):
		m.confirmSelection = 0
	case key.Matches(msg, m.keys.Right):
		m.confirmSelection = 1
	case key.Matches(msg, m.keys.Yes):
		m.confirmSelection = 0
		return m.finish(true)
	case key.Matches(msg, m.keys.No):
		return m.finish(false)
	case key.Matches(msg, m.keys.Confirm):
		return m.finish(m.confirmSelection == 0)
	case key.Matches(msg, m.keys.Up):
		if m.scroll > 0 {
			m.scroll--
		}
	case key.Matches(msg, m.keys.Down):
		if m.scroll < m.maxScroll() {
			m.scroll++
		}
	}
	return m, nil
}

func (m Model) finish(confirmed bool) (tea.Model, tea.Cmd) {
	m.confirmed = confirmed
	m.done = true
	return m, tea.Quit
}

// visibleEntries is how many plan lines fit on screen
func (m Model) visibleEntries() int {
	// banner, branch info, buttons and help take roughly 20 lines
	v := m.height - 20
	if v < 5 {
		v = 5
	}
	return v
}

func (m Model) maxScroll() int {
	n := len(m.plan.Entries) - m.visibleEntries()
	if n < 0 {
		return 0
	}
	return n
}
