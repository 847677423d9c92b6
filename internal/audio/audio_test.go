package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensigniasec/pizza-timer/internal/timer"
	"github.com/ensigniasec/pizza-timer/internal/timer/timertest"
)

// recordingPlayer captures calls and fails for cues listed in failing.
type recordingPlayer struct {
	mu      sync.Mutex
	calls   []timer.Signal
	failing map[timer.Cue]bool
}

func (p *recordingPlayer) record(cue timer.Cue, action timer.Action) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, timer.Signal{Cue: cue, Action: action})
	if p.failing[cue] {
		return ErrCueUnavailable
	}
	return nil
}

func (p *recordingPlayer) Play(cue timer.Cue) error  { return p.record(cue, timer.ActionPlay) }
func (p *recordingPlayer) Pause(cue timer.Cue) error { return p.record(cue, timer.ActionPause) }
func (p *recordingPlayer) Stop(cue timer.Cue) error  { return p.record(cue, timer.ActionStop) }
func (p *recordingPlayer) Close() error              { return nil }

func (p *recordingPlayer) snapshot() []timer.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]timer.Signal(nil), p.calls...)
}

func TestDispatcher_HandleRoutesActions(t *testing.T) {
	player := &recordingPlayer{}
	d := NewDispatcher(player, nil)

	d.Handle(timer.Signal{Cue: timer.CueAmbientFocus, Action: timer.ActionPlay})
	d.Handle(timer.Signal{Cue: timer.CueAmbientFocus, Action: timer.ActionPause})
	d.Handle(timer.Signal{Cue: timer.CueAmbientFocus, Action: timer.ActionStop})
	d.Handle(timer.Signal{Cue: timer.CueSessionEnd, Action: timer.ActionPlay})

	assert.Equal(t, []timer.Signal{
		{Cue: timer.CueAmbientFocus, Action: timer.ActionPlay},
		{Cue: timer.CueAmbientFocus, Action: timer.ActionPause},
		{Cue: timer.CueAmbientFocus, Action: timer.ActionStop},
		{Cue: timer.CueSessionEnd, Action: timer.ActionPlay},
	}, player.snapshot())
}

func TestDispatcher_FailuresAreLoggedAndSwallowed(t *testing.T) {
	logger, hook := test.NewNullLogger()
	player := &recordingPlayer{failing: map[timer.Cue]bool{timer.CueBreakEnd: true}}
	d := NewDispatcher(player, logger)

	d.Handle(timer.Signal{Cue: timer.CueBreakEnd, Action: timer.ActionPlay})

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "audio playback failed")
	assert.Equal(t, timer.CueBreakEnd, entry.Data["cue"])
}

func TestDispatcher_RunFollowsEngine(t *testing.T) {
	clock := timertest.NewManualClock()
	engine := timer.New(timer.Options{Focus: 2 * time.Second, Break: time.Second, Clock: clock})
	player := &recordingPlayer{failing: map[timer.Cue]bool{timer.CueSessionEnd: true}}
	logger, _ := test.NewNullLogger()
	d := NewDispatcher(player, logger)

	done := make(chan struct{})
	events := engine.Subscribe(EventBuffer)
	go func() {
		defer close(done)
		d.Run(context.Background(), events)
	}()

	engine.Start()
	clock.Advance(2 * time.Second)
	engine.Reset()
	engine.Close() // closes events and ends Run

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop after engine close")
	}

	assert.Equal(t, []timer.Signal{
		{Cue: timer.CueAmbientFocus, Action: timer.ActionPlay},
		{Cue: timer.CueSessionEnd, Action: timer.ActionPlay},
		{Cue: timer.CueAmbientFocus, Action: timer.ActionPause},
		{Cue: timer.CueAmbientFocus, Action: timer.ActionStop},
	}, player.snapshot())
	// A failing cue never disturbs the engine.
	assert.Equal(t, timer.ModeFocus, engine.Snapshot().Mode)
}

func TestDispatcher_RunStopsOnContext(t *testing.T) {
	d := NewDispatcher(NopPlayer{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx, make(chan timer.Event))
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher ignored context cancellation")
	}
}

func TestBellPlayer(t *testing.T) {
	var out bytes.Buffer
	p := NewBellPlayer(&out)

	require.NoError(t, p.Play(timer.CueAmbientFocus))
	require.NoError(t, p.Play(timer.CueSessionEnd))
	require.NoError(t, p.Play(timer.CueBreakEnd))
	require.NoError(t, p.Pause(timer.CueAmbientFocus))
	require.NoError(t, p.Stop(timer.CueAmbientFocus))

	assert.Equal(t, "\a\a", out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("tty gone") }

func TestBellPlayer_WriteError(t *testing.T) {
	p := NewBellPlayer(failingWriter{})
	err := p.Play(timer.CueSessionEnd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ring bell")
}

func TestLocateCues(t *testing.T) {
	root := t.TempDir()
	write := func(rel string) string {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("ID3"), 0o644))
		return path
	}
	ambient := write("lofi_music.mp3")
	sessionEnd := write(filepath.Join("cues", "Session_End.MP3"))
	_ = write(filepath.Join("cues", "deeper", "lofi_music.mp3"))
	_ = write(filepath.Join(".cache", "break_end.mp3"))
	_ = write("notes.txt")

	found, err := LocateCues(root)
	require.NoError(t, err)

	assert.Equal(t, ambient, found[timer.CueAmbientFocus])
	assert.Equal(t, sessionEnd, found[timer.CueSessionEnd])
	_, ok := found[timer.CueBreakEnd]
	assert.False(t, ok, "hidden directories are skipped")
}

func TestLocateCues_MissingDir(t *testing.T) {
	_, err := LocateCues(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestNopPlayer(t *testing.T) {
	var p Player = NopPlayer{}
	assert.NoError(t, p.Play(timer.CueSessionEnd))
	assert.NoError(t, p.Pause(timer.CueAmbientFocus))
	assert.NoError(t, p.Stop(timer.CueAmbientFocus))
	assert.NoError(t, p.Close())
}
