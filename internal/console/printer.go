// Package console renders Engine events as plain text or JSON lines for
// headless runs.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ensigniasec/pizza-timer/internal/timer"
)

const reportWidth = 48

// Printer writes one line per Engine event to w.
type Printer struct {
	w          io.Writer
	jsonOutput bool
	runID      string

	// last is the most recent snapshot written, used by Summary.
	last        timer.Snapshot
	completed   int
	startedAt   time.Time
	haveStarted bool
}

// jsonLine is the machine-readable form of one event.
type jsonLine struct {
	RunID    string          `json:"run_id,omitempty"`
	Type     timer.EventType `json:"type"`
	Snapshot timer.Snapshot  `json:"snapshot"`
	Signal   *timer.Signal   `json:"signal,omitempty"`
	Exited   timer.Mode      `json:"exited,omitempty"`
}

// NewPrinter returns a Printer. runID is attached to every JSON line.
func NewPrinter(w io.Writer, jsonOutput bool, runID string) *Printer {
	return &Printer{w: w, jsonOutput: jsonOutput, runID: runID}
}

// Print writes ev. In text mode cue events are not shown.
func (p *Printer) Print(ev timer.Event) error {
	if !p.haveStarted {
		p.haveStarted = true
		p.startedAt = ev.Snapshot.At
	}
	p.last = ev.Snapshot
	if ev.Type == timer.EventTransition {
		p.completed++
	}

	if p.jsonOutput {
		return p.printJSON(ev)
	}

	var err error
	switch ev.Type {
	case timer.EventSnapshot:
		_, err = fmt.Fprintln(p.w, FormatSnapshot(ev.Snapshot))
	case timer.EventTransition:
		_, err = fmt.Fprintf(p.w, "YAY! %s complete, starting %s (session %d)\n",
			strings.ToUpper(string(ev.Exited)), strings.ToUpper(string(ev.Snapshot.Mode)), ev.Snapshot.SessionCount)
	case timer.EventCue:
	}
	return err
}

func (p *Printer) printJSON(ev timer.Event) error {
	line := jsonLine{
		RunID:    p.runID,
		Type:     ev.Type,
		Snapshot: ev.Snapshot,
		Exited:   ev.Exited,
	}
	if ev.Type == timer.EventCue {
		signal := ev.Signal
		line.Signal = &signal
	}
	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

// Run prints events until the channel closes or ctx is done.
func (p *Printer) Run(ctx context.Context, events <-chan timer.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := p.Print(ev); err != nil {
				return err
			}
		}
	}
}

// Summary writes a closing report. It is a no-op in JSON mode.
func (p *Printer) Summary() error {
	if p.jsonOutput {
		return nil
	}
	var elapsed time.Duration
	if p.haveStarted {
		elapsed = p.last.At.Sub(p.startedAt)
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("=", reportWidth) + "\n")
	b.WriteString("PIZZA TIMER SUMMARY\n")
	b.WriteString(strings.Repeat("=", reportWidth) + "\n")
	fmt.Fprintf(&b, "Intervals completed: %d\n", p.completed)
	fmt.Fprintf(&b, "Stopped in: %s, session %d, %s left\n",
		strings.ToUpper(string(p.last.Mode)), p.last.SessionCount, p.last.Clock())
	fmt.Fprintf(&b, "Elapsed: %s\n", HumanDuration(elapsed))
	_, err := io.WriteString(p.w, b.String())
	return err
}

// FormatSnapshot renders a snapshot as a single status line, for example
// "[FOCUS] SESSION 1 24:59 0% (running)".
func FormatSnapshot(s timer.Snapshot) string {
	state := "paused"
	if s.Running {
		state = "running"
	}
	line := fmt.Sprintf("[%s] SESSION %d %s %d%% (%s)",
		strings.ToUpper(string(s.Mode)), s.SessionCount, s.Clock(), int(s.Progress*100), state)
	if s.JustCompleted {
		line += " YAY!"
	}
	return line
}

// HumanDuration returns a compact, human-readable duration string.
// Examples: 850ms, 1.23s, 2m05s, 1h02m.
func HumanDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d/time.Millisecond)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%02ds", d/time.Minute, (d%time.Minute)/time.Second)
	}
	return fmt.Sprintf("%dh%02dm", d/time.Hour, (d%time.Hour)/time.Minute)
}
