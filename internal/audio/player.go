// Package audio turns Engine cue signals into sound. Playback is best
// effort: every failure is logged and swallowed so it never reaches the
// timer state.
package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ensigniasec/pizza-timer/internal/timer"
)

// ErrCueUnavailable is returned when a cue has no loaded resource.
var ErrCueUnavailable = errors.New("cue unavailable")

// Player plays cues. Stop halts playback and rewinds; Pause keeps the position.
type Player interface {
	Play(cue timer.Cue) error
	Pause(cue timer.Cue) error
	Stop(cue timer.Cue) error
	Close() error
}

// NopPlayer ignores every cue. Used with --mute.
type NopPlayer struct{}

func (NopPlayer) Play(timer.Cue) error  { return nil }
func (NopPlayer) Pause(timer.Cue) error { return nil }
func (NopPlayer) Stop(timer.Cue) error  { return nil }
func (NopPlayer) Close() error          { return nil }

// BellPlayer rings the terminal bell for the one-shot completion cues and
// has no ambient track.
type BellPlayer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewBellPlayer writes bell characters to out.
func NewBellPlayer(out io.Writer) *BellPlayer {
	return &BellPlayer{out: out}
}

func (p *BellPlayer) Play(cue timer.Cue) error {
	if cue == timer.CueAmbientFocus {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := io.WriteString(p.out, "\a"); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}
	return nil
}

func (p *BellPlayer) Pause(timer.Cue) error { return nil }
func (p *BellPlayer) Stop(timer.Cue) error  { return nil }
func (p *BellPlayer) Close() error          { return nil }
