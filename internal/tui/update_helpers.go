package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKey processes key bindings and returns updated model and command.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) { // nolint:ireturn
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		m.helpVisible = false
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		m.engine.Toggle()
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.engine.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Settings):
		return m.openSettings()
	}

	return m, nil
}

// openSettings shows the duration dialog prefilled with the configured minutes.
func (m Model) openSettings() (Model, tea.Cmd) {
	m.helpVisible = false
	m.settings.visible = true
	m.settings.err = ""
	m.settings.inputs[focusField].SetValue(strconv.Itoa(m.snap.FocusSeconds / 60))
	m.settings.inputs[breakField].SetValue(strconv.Itoa(m.snap.BreakSeconds / 60))
	return m, m.focusSettingsField(focusField)
}

func (m *Model) focusSettingsField(field settingsField) tea.Cmd {
	m.settings.focused = field
	var cmd tea.Cmd
	for i := range m.settings.inputs {
		if settingsField(i) == field {
			cmd = m.settings.inputs[i].Focus()
			continue
		}
		m.settings.inputs[i].Blur()
	}
	return cmd
}

// handleSettingsKey processes input while the settings dialog is open.
func (m Model) handleSettingsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.formKeys.Cancel):
		m.closeSettings()
		return m, nil

	case key.Matches(msg, m.formKeys.Next):
		return m, m.focusSettingsField((m.settings.focused + 1) % settingsFieldCount)

	case key.Matches(msg, m.formKeys.Prev):
		return m, m.focusSettingsField((m.settings.focused + settingsFieldCount - 1) % settingsFieldCount)

	case key.Matches(msg, m.formKeys.Save):
		if err := m.applySettings(); err != nil {
			m.settings.err = invalidSettings
			return m, nil
		}
		m.closeSettings()
		return m, nil
	}

	var cmd tea.Cmd
	field := m.settings.focused
	m.settings.inputs[field], cmd = m.settings.inputs[field].Update(msg)
	return m, cmd
}

// applySettings parses both inputs and hands them to the Engine, which
// owns validation.
func (m Model) applySettings() error {
	focus, err := strconv.ParseFloat(strings.TrimSpace(m.settings.inputs[focusField].Value()), 64)
	if err != nil {
		return err
	}
	brk, err := strconv.ParseFloat(strings.TrimSpace(m.settings.inputs[breakField].Value()), 64)
	if err != nil {
		return err
	}
	return m.engine.SetDurations(focus, brk)
}

func (m *Model) closeSettings() {
	m.settings.visible = false
	m.settings.err = ""
	for i := range m.settings.inputs {
		m.settings.inputs[i].Blur()
	}
}
