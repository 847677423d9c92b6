package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ensigniasec/pizza-timer/internal/timer"
)

//nolint:gochecknoglobals // Static styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("160")).
			Padding(0, 2)
	sessionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	clockStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	yayStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	buttonStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 2).Border(lipgloss.RoundedBorder())
	dialogStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).Foreground(lipgloss.Color("69"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	sections := []string{renderHeader()}
	switch {
	case m.settings.visible:
		sections = append(sections, renderSettings(m))
	case m.helpVisible:
		sections = append(sections, renderHelp(m.snap))
	default:
		sections = append(sections, renderTimer(m)...)
	}
	sections = append(sections, m.renderFooter())

	body := lipgloss.JoinVertical(lipgloss.Center, sections...)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	return body + "\n"
}

func renderHeader() string {
	return headerStyle.Render(headerText)
}

// renderTimer lays out the pizza, status and controls.
func renderTimer(m Model) []string {
	s := m.snap
	out := []string{"", renderPizza(s.Progress)}
	if s.JustCompleted {
		width := m.progress.Width
		out = append(out,
			renderConfetti(width, s.At.Second()),
			yayStyle.Render("YAY!"),
			renderConfetti(width, s.At.Second()+1),
		)
	} else {
		out = append(out, "")
	}
	out = append(out,
		sessionStyle.Render(sessionLine(s)),
		clockStyle.Render(s.Clock()),
		m.progress.ViewAs(s.Progress),
		renderButton(m),
	)
	if len(m.history.Items()) > 0 {
		out = append(out, mutedStyle.Render("Completed"), m.history.View())
	}
	return out
}

// sessionLine labels the current interval, e.g. "FOCUS SESSION • SESSION 2".
func sessionLine(s timer.Snapshot) string {
	if s.Mode == timer.ModeBreak {
		return fmt.Sprintf("BREAK • SESSION %d", s.SessionCount)
	}
	return fmt.Sprintf("FOCUS SESSION • SESSION %d", s.SessionCount)
}

// buttonLabel is the action the toggle key performs next.
func buttonLabel(s timer.Snapshot) string {
	if s.Running {
		return "PAUSE"
	}
	return "START"
}

func renderButton(m Model) string {
	label := buttonLabel(m.snap)
	color := lipgloss.Color("46")
	if m.snap.Running {
		label = m.spinner.View() + " " + label
		color = lipgloss.Color("208")
	}
	return buttonStyle.BorderForeground(color).Foreground(color).Render(label)
}

func (m Model) renderFooter() string {
	if m.settings.visible {
		return m.help.View(m.formKeys)
	}
	return m.help.View(m.keys)
}

func renderSettings(m Model) string {
	content := []string{
		"Settings",
		"",
		m.settings.inputs[focusField].View(),
		m.settings.inputs[breakField].View(),
	}
	if m.settings.err != "" {
		content = append(content, "", errorStyle.Render(m.settings.err))
	}
	return dialogStyle.Render(strings.Join(content, "\n"))
}

func renderHelp(s timer.Snapshot) string {
	content := []string{
		"How to Use",
		"",
		"The Pomodoro Technique breaks work into focused",
		"intervals separated by short breaks.",
		"",
		fmt.Sprintf("Focus Session: work for %d minutes, then take a short break.", s.FocusSeconds/60),
		fmt.Sprintf("Break: rest for %d minutes before your next focus session.", s.BreakSeconds/60),
		"",
		"Each slice of pizza is an eighth of the current interval.",
		"",
		"space/p: start or pause • r: reset to session 1",
		"s: settings • esc: close • q: quit",
	}
	return dialogStyle.Render(strings.Join(content, "\n"))
}
