package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensigniasec/pizza-timer/internal/timer"
)

// Controller is the part of the Engine the TUI drives.
type Controller interface {
	Toggle() bool
	Reset()
	SetDurations(focusMinutes, breakMinutes float64) error
	Snapshot() timer.Snapshot
}

// settingsField indexes the settings dialog inputs.
type settingsField int

const (
	focusField settingsField = iota
	breakField
	settingsFieldCount
)

// settingsForm is the duration dialog state.
type settingsForm struct {
	visible bool
	inputs  [settingsFieldCount]textinput.Model
	focused settingsField
	err     string
}

// Model is the root Bubble Tea model.
type Model struct {
	engine Controller
	events <-chan timer.Event
	snap   timer.Snapshot

	progress progress.Model
	spinner  spinner.Model
	help     help.Model
	history  list.Model
	keys     keyMap
	formKeys settingsKeyMap

	settings    settingsForm
	helpVisible bool

	width    int
	height   int
	quitting bool
}

// NewModel constructs a Model showing engine's current state. events is the
// Engine subscription the model listens on.
func NewModel(engine Controller, events <-chan timer.Event) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	focus := textinput.New()
	focus.Prompt = "Focus (minutes): "
	focus.CharLimit = settingsCharLimit
	focus.Width = settingsWidth

	brk := textinput.New()
	brk.Prompt = "Break (minutes): "
	brk.CharLimit = settingsCharLimit
	brk.Width = settingsWidth

	return Model{
		engine:   engine,
		events:   events,
		snap:     engine.Snapshot(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxProgressWidth)),
		spinner:  sp,
		help:     help.New(),
		history:  newHistoryList(),
		keys:     newKeyMap(),
		formKeys: newSettingsKeyMap(),
		settings: settingsForm{inputs: [settingsFieldCount]textinput.Model{focus, brk}},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.listenForEvents(),
		m.spinner.Tick,
	)
}

// listenForEvents returns a Tea command that waits for the next Engine event.
func (m Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return engineClosedMsg{}
		}
		return engineEventMsg{Event: ev}
	}
}
