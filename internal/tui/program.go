package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/pizza-timer/internal/timer"
)

// Options configures Run.
type Options struct {
	// KeepLogs leaves logrus output in place. Set it only when logs go to a
	// file, since anything written to the terminal corrupts the view.
	KeepLogs bool
}

// Run starts the Bubble Tea TUI program on engine and blocks until the user
// quits or ctx is cancelled. The Engine is left open for the caller to close.
func Run(ctx context.Context, engine *timer.Engine, opts Options) error {
	events := engine.Subscribe(eventBufferSize)
	model := NewModel(engine, events)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if !opts.KeepLogs {
		// Silence external logs (WARN/ERRO) during TUI to avoid corrupting the view.
		prevOut := logrus.StandardLogger().Out
		logrus.SetOutput(io.Discard)
		defer logrus.SetOutput(prevOut)
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
