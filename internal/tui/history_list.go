package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ensigniasec/pizza-timer/internal/timer"
)

// historyItem is one completed interval.
type historyItem struct {
	Exited  timer.Mode
	Session int
	At      time.Time
}

// List item interface methods.
func (it historyItem) Title() string       { return strings.ToUpper(string(it.Exited)) }
func (it historyItem) Description() string { return "" }
func (it historyItem) FilterValue() string { return it.Title() }

// historyDelegate renders one line per completed interval.
type historyDelegate struct{}

func (d historyDelegate) Height() int                             { return 1 }
func (d historyDelegate) Spacing() int                            { return 0 }
func (d historyDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d historyDelegate) Render(w io.Writer, _ list.Model, _ int, listItem list.Item) {
	it, ok := listItem.(historyItem)
	if !ok {
		return
	}
	color := lipgloss.Color("46")
	if it.Exited == timer.ModeBreak {
		color = lipgloss.Color("69")
	}
	line := fmt.Sprintf("✓ %-5s session %d  %s", it.Title(), it.Session, it.At.Format("15:04"))
	fmt.Fprint(w, lipgloss.NewStyle().Foreground(color).Render(line))
}

func newHistoryList() list.Model {
	lst := list.New([]list.Item{}, historyDelegate{}, maxProgressWidth, historyViewLines)
	lst.SetShowTitle(false)
	lst.SetShowStatusBar(false)
	lst.SetFilteringEnabled(false)
	lst.SetShowHelp(false)
	lst.SetShowPagination(false)
	return lst
}

// recordTransition prepends the interval a transition event completed.
// Session is the one the exited interval belonged to.
func (m *Model) recordTransition(ev timer.Event) tea.Cmd {
	session := ev.Snapshot.SessionCount
	if ev.Exited == timer.ModeBreak && session > 1 {
		session--
	}
	cmd := m.history.InsertItem(0, historyItem{Exited: ev.Exited, Session: session, At: ev.Snapshot.At})
	for len(m.history.Items()) > historyMax {
		m.history.RemoveItem(len(m.history.Items()) - 1)
	}
	return cmd
}
