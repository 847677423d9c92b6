package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensigniasec/pizza-timer/internal/timer"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { // nolint:ireturn
	switch x := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = x.Width, x.Height
		m.progress.Width = progressWidth(x.Width)
		m.history.SetWidth(m.progress.Width)
		m.help.Width = x.Width
		return m, nil

	case tea.KeyMsg:
		if m.settings.visible {
			return m.handleSettingsKey(x)
		}
		return m.handleKey(x)

	case engineEventMsg:
		m.snap = x.Event.Snapshot
		var cmd tea.Cmd
		if x.Event.Type == timer.EventTransition {
			cmd = m.recordTransition(x.Event)
		}
		return m, tea.Batch(cmd, m.listenForEvents())

	case engineClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(x)
		return m, cmd
	}

	return m, nil
}

func progressWidth(windowWidth int) int {
	w := windowWidth - frameMargin
	if w > maxProgressWidth {
		return maxProgressWidth
	}
	if w < minProgressWidth {
		return minProgressWidth
	}
	return w
}
