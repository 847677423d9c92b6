package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/pizza-timer/internal/timer"
	"github.com/ensigniasec/pizza-timer/internal/timer/timertest"
)

// fakeController records calls made by the model.
type fakeController struct {
	snap      timer.Snapshot
	toggles   int
	resets    int
	durations [][2]float64
	err       error
}

func (f *fakeController) Toggle() bool {
	f.toggles++
	f.snap.Running = !f.snap.Running
	return f.snap.Running
}

func (f *fakeController) Reset() { f.resets++ }

func (f *fakeController) SetDurations(focus, brk float64) error {
	f.durations = append(f.durations, [2]float64{focus, brk})
	return f.err
}

func (f *fakeController) Snapshot() timer.Snapshot { return f.snap }

func defaultSnapshot() timer.Snapshot {
	return timer.Snapshot{
		Mode:         timer.ModeFocus,
		Remaining:    1500,
		Duration:     1500,
		SessionCount: 1,
		FocusSeconds: 1500,
		BreakSeconds: 300,
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModel_KeysDriveController(t *testing.T) {
	ctrl := &fakeController{snap: defaultSnapshot()}
	m := NewModel(ctrl, nil)

	m, _ = update(t, m, runes("p"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m, _ = update(t, m, runes("r"))

	assert.Equal(t, 2, ctrl.toggles)
	assert.Equal(t, 1, ctrl.resets)
	assert.False(t, m.quitting)
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(&fakeController{snap: defaultSnapshot()}, nil)
	m, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
	assert.Equal(t, "Shutting down...\n", m.View())
}

func TestModel_EngineEvents(t *testing.T) {
	m := NewModel(&fakeController{snap: defaultSnapshot()}, nil)

	snap := defaultSnapshot()
	snap.Remaining = 750
	snap.Progress = 0.5
	snap.Running = true
	m, cmd := update(t, m, engineEventMsg{Event: timer.Event{Type: timer.EventSnapshot, Snapshot: snap}})
	assert.NotNil(t, cmd, "keeps listening")
	assert.Equal(t, snap, m.snap)

	view := m.View()
	assert.Contains(t, view, "12:30")
	assert.Contains(t, view, "PAUSE")

	brk := snap
	brk.Mode = timer.ModeBreak
	brk.Remaining = 300
	brk.Duration = 300
	brk.Progress = 0
	brk.JustCompleted = true
	brk.At = time.Date(2024, 1, 1, 9, 25, 0, 0, time.UTC)
	m, _ = update(t, m, engineEventMsg{Event: timer.Event{Type: timer.EventTransition, Snapshot: brk, Exited: timer.ModeFocus}})

	require.Len(t, m.history.Items(), 1)
	item, ok := m.history.Items()[0].(historyItem)
	require.True(t, ok)
	assert.Equal(t, historyItem{Exited: timer.ModeFocus, Session: 1, At: brk.At}, item)

	view = m.View()
	assert.Contains(t, view, "YAY!")
	assert.Contains(t, view, "BREAK • SESSION 1")
	assert.Contains(t, view, "session 1  09:25")
}

func TestModel_EngineClosedQuits(t *testing.T) {
	m := NewModel(&fakeController{snap: defaultSnapshot()}, nil)
	m, cmd := update(t, m, engineClosedMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
}

func TestModel_HistoryAttributesBreakToPreviousSession(t *testing.T) {
	m := NewModel(&fakeController{snap: defaultSnapshot()}, nil)
	snap := defaultSnapshot()
	snap.SessionCount = 2
	m, _ = update(t, m, engineEventMsg{Event: timer.Event{Type: timer.EventTransition, Snapshot: snap, Exited: timer.ModeBreak}})

	item, ok := m.history.Items()[0].(historyItem)
	require.True(t, ok)
	assert.Equal(t, 1, item.Session)
}

func TestModel_InitialView(t *testing.T) {
	m := NewModel(&fakeController{snap: defaultSnapshot()}, nil)
	view := m.View()
	assert.Contains(t, view, headerText)
	assert.Contains(t, view, "FOCUS SESSION • SESSION 1")
	assert.Contains(t, view, "25:00")
	assert.Contains(t, view, "START")
	assert.NotContains(t, view, "YAY!")
}

func TestModel_HelpDialog(t *testing.T) {
	m := NewModel(&fakeController{snap: defaultSnapshot()}, nil)

	m, _ = update(t, m, runes("h"))
	require.True(t, m.helpVisible)
	view := m.View()
	assert.Contains(t, view, "How to Use")
	assert.Contains(t, view, "work for 25 minutes")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.helpVisible)

	m, _ = update(t, m, runes("?"))
	m, _ = update(t, m, runes("?"))
	assert.False(t, m.helpVisible)
}

func TestModel_SettingsSave(t *testing.T) {
	ctrl := &fakeController{snap: defaultSnapshot()}
	m := NewModel(ctrl, nil)

	m, _ = update(t, m, runes("s"))
	require.True(t, m.settings.visible)
	assert.Equal(t, "25", m.settings.inputs[focusField].Value())
	assert.Equal(t, "5", m.settings.inputs[breakField].Value())
	assert.Equal(t, focusField, m.settings.focused)
	assert.Contains(t, m.View(), "Settings")

	// Keys go to the form, not the timer.
	m, _ = update(t, m, runes("p"))
	assert.Zero(t, ctrl.toggles)
	assert.Equal(t, "25p", m.settings.inputs[focusField].Value())

	m.settings.inputs[focusField].SetValue(" 50 ")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, breakField, m.settings.focused)
	m.settings.inputs[breakField].SetValue("10")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.settings.visible)
	assert.Equal(t, [][2]float64{{50, 10}}, ctrl.durations)
}

func TestModel_SettingsCancel(t *testing.T) {
	ctrl := &fakeController{snap: defaultSnapshot()}
	m := NewModel(ctrl, nil)

	m, _ = update(t, m, runes("s"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, breakField, m.settings.focused)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.settings.visible)
	assert.Empty(t, ctrl.durations)
}

func TestModel_SettingsRejectsInvalidInput(t *testing.T) {
	clock := timertest.NewManualClock()
	engine := timer.New(timer.Options{Clock: clock})
	defer engine.Close()

	tests := []struct {
		name       string
		focus, brk string
	}{
		{name: "zero", focus: "0", brk: "5"},
		{name: "negative break", focus: "25", brk: "-1"},
		{name: "not a number", focus: "abc", brk: "5"},
		{name: "empty", focus: "", brk: "5"},
		{name: "floors to zero", focus: "0.5", brk: "5"},
		{name: "nan", focus: "NaN", brk: "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(engine, nil)
			m, _ = update(t, m, runes("s"))
			m.settings.inputs[focusField].SetValue(tt.focus)
			m.settings.inputs[breakField].SetValue(tt.brk)

			m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

			assert.True(t, m.settings.visible, "dialog stays open")
			assert.Equal(t, invalidSettings, m.settings.err)
			assert.Contains(t, m.View(), invalidSettings)
			snap := engine.Snapshot()
			assert.Equal(t, 1500, snap.FocusSeconds)
			assert.Equal(t, 300, snap.BreakSeconds)
		})
	}
}

func TestModel_SettingsAppliesToEngine(t *testing.T) {
	clock := timertest.NewManualClock()
	engine := timer.New(timer.Options{Clock: clock})
	defer engine.Close()
	events := engine.Subscribe(8)

	m := NewModel(engine, events)
	m, _ = update(t, m, runes("s"))
	m.settings.inputs[focusField].SetValue("30.9")
	m.settings.inputs[breakField].SetValue("7")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.settings.visible)

	ev := <-events
	m, _ = update(t, m, engineEventMsg{Event: ev})
	assert.Equal(t, 1800, m.snap.FocusSeconds)
	assert.Equal(t, 420, m.snap.BreakSeconds)
	assert.Contains(t, m.View(), "30:00")
}

func TestModel_WindowResize(t *testing.T) {
	m := NewModel(&fakeController{snap: defaultSnapshot()}, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 40})
	assert.Equal(t, 26, m.progress.Width)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	assert.Equal(t, maxProgressWidth, m.progress.Width)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 5, Height: 40})
	assert.Equal(t, minProgressWidth, m.progress.Width)
}
