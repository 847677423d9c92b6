package console

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/pizza-timer/internal/timer"
	"github.com/ensigniasec/pizza-timer/internal/timer/timertest"
)

func TestFormatSnapshot(t *testing.T) {
	tests := []struct {
		name string
		snap timer.Snapshot
		want string
	}{
		{
			name: "running focus",
			snap: timer.Snapshot{Mode: timer.ModeFocus, Remaining: 1499, Duration: 1500, Progress: 0.5, SessionCount: 1, Running: true},
			want: "[FOCUS] SESSION 1 24:59 50% (running)",
		},
		{
			name: "paused break just completed",
			snap: timer.Snapshot{Mode: timer.ModeBreak, Remaining: 300, Duration: 300, SessionCount: 2, JustCompleted: true},
			want: "[BREAK] SESSION 2 05:00 0% (paused) YAY!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSnapshot(tt.snap))
		})
	}
}

func TestPrinter_TextRun(t *testing.T) {
	clock := timertest.NewManualClock()
	engine := timer.New(timer.Options{Focus: 2 * time.Second, Break: time.Second, Clock: clock})
	events := engine.Subscribe(32)

	engine.Start()
	clock.Advance(2 * time.Second)
	engine.Close()

	var out bytes.Buffer
	p := NewPrinter(&out, false, "")
	require.NoError(t, p.Run(context.Background(), events))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"[FOCUS] SESSION 1 00:02 0% (running)",
		"[FOCUS] SESSION 1 00:01 50% (running)",
		"YAY! FOCUS complete, starting BREAK (session 1)",
		"[BREAK] SESSION 1 00:01 0% (running) YAY!",
	}, lines)

	out.Reset()
	require.NoError(t, p.Summary())
	summary := out.String()
	assert.Contains(t, summary, "PIZZA TIMER SUMMARY")
	assert.Contains(t, summary, "Intervals completed: 1")
	assert.Contains(t, summary, "Stopped in: BREAK, session 1, 00:01 left")
	assert.Contains(t, summary, "Elapsed: 2.00s")
}

func TestPrinter_JSONLines(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, true, "run-123")

	snap := timer.Snapshot{Mode: timer.ModeFocus, Remaining: 10, Duration: 10, SessionCount: 1}
	require.NoError(t, p.Print(timer.Event{Type: timer.EventSnapshot, Snapshot: snap}))
	require.NoError(t, p.Print(timer.Event{
		Type:     timer.EventCue,
		Snapshot: snap,
		Signal:   timer.Signal{Cue: timer.CueAmbientFocus, Action: timer.ActionPlay},
	}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "run-123", first["run_id"])
	assert.Equal(t, "snapshot", first["type"])
	assert.NotContains(t, first, "signal")
	snapshot, ok := first["snapshot"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 10, snapshot["remaining_seconds"], 0)

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, map[string]any{"cue": "ambient_focus", "action": "play"}, second["signal"])

	out.Reset()
	require.NoError(t, p.Summary())
	assert.Empty(t, out.String())
}

func TestPrinter_RunStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPrinter(&bytes.Buffer{}, false, "")
	require.NoError(t, p.Run(ctx, make(chan timer.Event)))
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "850ms", HumanDuration(850*time.Millisecond))
	assert.Equal(t, "1.50s", HumanDuration(1500*time.Millisecond))
	assert.Equal(t, "2m05s", HumanDuration(125*time.Second))
	assert.Equal(t, "1h02m", HumanDuration(62*time.Minute))
}
