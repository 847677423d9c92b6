package timer

import (
	"fmt"
	"time"
)

// Mode is the interval the Engine is currently counting down.
type Mode string

const (
	ModeFocus Mode = "focus"
	ModeBreak Mode = "break"
)

// Opposite returns the mode that follows m.
func (m Mode) Opposite() Mode {
	if m == ModeFocus {
		return ModeBreak
	}
	return ModeFocus
}

// Cue identifies an audio resource the Engine can signal.
type Cue string

const (
	CueAmbientFocus Cue = "ambient_focus"
	CueSessionEnd   Cue = "session_end"
	CueBreakEnd     Cue = "break_end"
)

// Action is what the audio collaborator should do with a cue.
type Action string

const (
	ActionPlay  Action = "play"
	ActionPause Action = "pause"
	// ActionStop halts playback and rewinds to the beginning.
	ActionStop Action = "stop"
)

// Signal is a discrete instruction for the audio collaborator.
type Signal struct {
	Cue    Cue    `json:"cue"`
	Action Action `json:"action"`
}

func (s Signal) String() string {
	return fmt.Sprintf("%s(%s)", s.Action, s.Cue)
}

// EventType defines the type of Engine event.
type EventType string

const (
	EventSnapshot   EventType = "snapshot"
	EventCue        EventType = "cue"
	EventTransition EventType = "transition"
)

// Event is an Engine update for observers. Snapshot is always populated;
// Signal is set for EventCue and Exited for EventTransition.
type Event struct {
	Type     EventType `json:"type"`
	Snapshot Snapshot  `json:"snapshot"`
	Signal   Signal    `json:"signal"`
	Exited   Mode      `json:"exited,omitempty"`
}

// Snapshot is the read-only projection of Engine state.
type Snapshot struct {
	Mode          Mode      `json:"mode"`
	Remaining     int       `json:"remaining_seconds"`
	Duration      int       `json:"duration_seconds"`
	Progress      float64   `json:"progress"`
	SessionCount  int       `json:"session"`
	Running       bool      `json:"running"`
	JustCompleted bool      `json:"just_completed"`
	FocusSeconds  int       `json:"focus_seconds"`
	BreakSeconds  int       `json:"break_seconds"`
	At            time.Time `json:"at"`
}

// Clock renders the remaining time as MM:SS.
func (s Snapshot) Clock() string {
	return FormatClock(s.Remaining)
}

// FormatClock renders whole seconds as zero-padded MM:SS. Minutes are not
// wrapped into hours, so 90 minutes renders as "90:00".
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Progress returns the fraction of an interval already elapsed, clamped to [0, 1].
func Progress(remaining, duration int) float64 {
	if duration <= 0 {
		return 1
	}
	progress := 1 - float64(remaining)/float64(duration)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
