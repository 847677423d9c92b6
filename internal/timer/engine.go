package timer

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/pizza-timer/internal/validate"
)

const (
	DefaultFocusMinutes = 25
	DefaultBreakMinutes = 5
	// MaxMinutes bounds each configured duration.
	MaxMinutes = 24 * 60

	DefaultTickInterval     = time.Second
	DefaultCompletionWindow = 2 * time.Second
)

//nolint:gochecknoglobals // Derived from MaxMinutes.
var minutesTag = fmt.Sprintf("finite,gt=0,lte=%d", MaxMinutes)

// Options contains construction-time settings for the Engine.
// Zero values select the defaults.
type Options struct {
	// Focus and Break are truncated to whole seconds.
	Focus            time.Duration
	Break            time.Duration
	TickInterval     time.Duration
	CompletionWindow time.Duration
	Clock            Clock
	Logger           logrus.FieldLogger
}

// Engine is the focus/break state machine. It is the sole authority for
// mode, remaining time and session counting; collaborators observe it via
// Subscribe and change it only through its methods.
type Engine struct {
	mu      sync.Mutex
	clock   Clock
	log     logrus.FieldLogger
	options Options

	focusSeconds int
	breakSeconds int

	mode          Mode
	remaining     int
	session       int
	running       bool
	justCompleted bool
	ambient       bool
	closed        bool

	// tickGen and completionGen identify the currently armed callbacks.
	// Bumping a generation turns any in-flight callback into a no-op.
	tickTimer     Timer
	tickGen       uint64
	clearTimer    Timer
	completionGen uint64

	events []chan Event
}

// New creates an Engine in its initial state: paused, FOCUS, session 1.
func New(options Options) *Engine {
	if options.Focus < time.Second {
		options.Focus = DefaultFocusMinutes * time.Minute
	}
	if options.Break < time.Second {
		options.Break = DefaultBreakMinutes * time.Minute
	}
	if options.TickInterval <= 0 {
		options.TickInterval = DefaultTickInterval
	}
	if options.CompletionWindow <= 0 {
		options.CompletionWindow = DefaultCompletionWindow
	}
	if options.Clock == nil {
		options.Clock = SystemClock
	}
	if options.Logger == nil {
		options.Logger = logrus.StandardLogger()
	}

	engine := &Engine{
		clock:        options.Clock,
		log:          options.Logger,
		options:      options,
		focusSeconds: int(options.Focus / time.Second),
		breakSeconds: int(options.Break / time.Second),
	}
	engine.resetLocked()
	return engine
}

// Subscribe registers a new observer channel. Sends never block: when the
// buffer is full the event is dropped for that observer.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		close(ch)
		return ch
	}
	engine.events = append(engine.events, ch)
	return ch
}

// Start sets running and arms the tick driver. Starting a running Engine is a no-op.
func (engine *Engine) Start() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.startLocked()
}

// Pause clears running and halts the tick driver before any further tick fires.
func (engine *Engine) Pause() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.pauseLocked()
}

// Toggle flips between running and paused and reports the new running state.
func (engine *Engine) Toggle() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.running {
		engine.pauseLocked()
	} else {
		engine.startLocked()
	}
	return engine.running
}

// Tick advances the countdown by one second, running the transition when
// the interval is exhausted. It reports false, changing nothing, when the
// Engine is paused or closed.
func (engine *Engine) Tick() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.tickLocked()
}

// SetDurations floors both values to whole minutes and applies them. While
// paused, remaining is reset to the active mode's new full duration; while
// running, only future intervals are affected. Rejected values leave the
// configuration untouched and return a *ValidationError.
func (engine *Engine) SetDurations(focusMinutes, breakMinutes float64) error {
	focus, brk, err := ValidateDurations(focusMinutes, breakMinutes)
	if err != nil {
		return err
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return nil
	}
	engine.focusSeconds = focus * 60
	engine.breakSeconds = brk * 60
	if !engine.running {
		engine.remaining = engine.durationLocked(engine.mode)
	}
	engine.log.WithFields(logrus.Fields{
		"focus_seconds": engine.focusSeconds,
		"break_seconds": engine.breakSeconds,
	}).Debug("durations updated")
	engine.emitSnapshotLocked()
	return nil
}

// ValidateDurations floors both values to whole minutes and checks that
// each is finite, positive and at most MaxMinutes.
func ValidateDurations(focusMinutes, breakMinutes float64) (focus, brk int, err error) {
	floored := [2]float64{math.Floor(focusMinutes), math.Floor(breakMinutes)}
	for _, minutes := range floored {
		if err := validate.Var(minutes, minutesTag); err != nil {
			return 0, 0, &ValidationError{Focus: focusMinutes, Break: breakMinutes, Err: err}
		}
	}
	return int(floored[0]), int(floored[1]), nil
}

// Reset returns to FOCUS, session 1, full focus duration, paused, and
// cancels every pending timer. Configured durations are kept.
func (engine *Engine) Reset() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return
	}
	engine.resetLocked()
	engine.ambient = false
	engine.emitCueLocked(Signal{Cue: CueAmbientFocus, Action: ActionStop})
	engine.emitSnapshotLocked()
}

// Progress returns the elapsed fraction of the current interval.
func (engine *Engine) Progress() float64 {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return Progress(engine.remaining, engine.durationLocked(engine.mode))
}

// Snapshot returns the current read-only projection of Engine state.
func (engine *Engine) Snapshot() Snapshot {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.snapshotLocked()
}

// Close stops every timer and closes all observer channels. The Engine
// ignores further operations.
func (engine *Engine) Close() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.closed = true
	engine.running = false
	engine.cancelTickLocked()
	engine.cancelClearanceLocked()
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (engine *Engine) startLocked() {
	if engine.closed || engine.running {
		return
	}
	engine.running = true
	engine.armTickLocked()
	engine.syncAmbientLocked()
	engine.emitSnapshotLocked()
}

func (engine *Engine) pauseLocked() {
	if engine.closed || !engine.running {
		return
	}
	engine.running = false
	engine.cancelTickLocked()
	engine.syncAmbientLocked()
	engine.emitSnapshotLocked()
}

func (engine *Engine) tickLocked() bool {
	if engine.closed || !engine.running {
		engine.log.Debug("tick ignored: engine not running")
		return false
	}
	if engine.remaining > 1 {
		engine.remaining--
	} else {
		engine.transitionLocked()
	}
	engine.emitSnapshotLocked()
	return true
}

func (engine *Engine) transitionLocked() {
	exited := engine.mode

	engine.justCompleted = true
	engine.scheduleClearanceLocked()

	if exited == ModeFocus {
		engine.emitCueLocked(Signal{Cue: CueSessionEnd, Action: ActionPlay})
	} else {
		engine.emitCueLocked(Signal{Cue: CueBreakEnd, Action: ActionPlay})
	}

	engine.mode = exited.Opposite()
	if engine.mode == ModeFocus {
		engine.session++
	}
	engine.remaining = engine.durationLocked(engine.mode)
	engine.syncAmbientLocked()

	engine.log.WithFields(logrus.Fields{
		"exited":  exited,
		"entered": engine.mode,
		"session": engine.session,
	}).Info("interval complete")
	engine.emitLocked(Event{Type: EventTransition, Snapshot: engine.snapshotLocked(), Exited: exited})
}

func (engine *Engine) resetLocked() {
	engine.cancelTickLocked()
	engine.cancelClearanceLocked()
	engine.mode = ModeFocus
	engine.session = 1
	engine.remaining = engine.focusSeconds
	engine.running = false
	engine.justCompleted = false
}

// armTickLocked schedules the next tick. The callback re-arms only after
// its own tick and emissions completed, so ticks never overlap.
func (engine *Engine) armTickLocked() {
	gen := engine.tickGen
	engine.tickTimer = engine.clock.AfterFunc(engine.options.TickInterval, func() {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		if gen != engine.tickGen {
			return
		}
		if engine.tickLocked() {
			engine.armTickLocked()
		}
	})
}

func (engine *Engine) cancelTickLocked() {
	engine.tickGen++
	if engine.tickTimer != nil {
		engine.tickTimer.Stop()
		engine.tickTimer = nil
	}
}

func (engine *Engine) scheduleClearanceLocked() {
	engine.cancelClearanceLocked()
	gen := engine.completionGen
	engine.clearTimer = engine.clock.AfterFunc(engine.options.CompletionWindow, func() {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		if engine.closed || gen != engine.completionGen {
			return
		}
		engine.justCompleted = false
		engine.clearTimer = nil
		engine.emitSnapshotLocked()
	})
}

func (engine *Engine) cancelClearanceLocked() {
	engine.completionGen++
	if engine.clearTimer != nil {
		engine.clearTimer.Stop()
		engine.clearTimer = nil
	}
}

// syncAmbientLocked emits play/pause for the ambient track whenever
// running && mode == FOCUS changes value.
func (engine *Engine) syncAmbientLocked() {
	want := engine.running && engine.mode == ModeFocus
	if want == engine.ambient {
		return
	}
	engine.ambient = want
	if want {
		engine.emitCueLocked(Signal{Cue: CueAmbientFocus, Action: ActionPlay})
	} else {
		engine.emitCueLocked(Signal{Cue: CueAmbientFocus, Action: ActionPause})
	}
}

func (engine *Engine) durationLocked(mode Mode) int {
	if mode == ModeBreak {
		return engine.breakSeconds
	}
	return engine.focusSeconds
}

func (engine *Engine) snapshotLocked() Snapshot {
	duration := engine.durationLocked(engine.mode)
	return Snapshot{
		Mode:          engine.mode,
		Remaining:     engine.remaining,
		Duration:      duration,
		Progress:      Progress(engine.remaining, duration),
		SessionCount:  engine.session,
		Running:       engine.running,
		JustCompleted: engine.justCompleted,
		FocusSeconds:  engine.focusSeconds,
		BreakSeconds:  engine.breakSeconds,
		At:            engine.clock.Now(),
	}
}

func (engine *Engine) emitSnapshotLocked() {
	engine.emitLocked(Event{Type: EventSnapshot, Snapshot: engine.snapshotLocked()})
}

func (engine *Engine) emitCueLocked(signal Signal) {
	engine.emitLocked(Event{Type: EventCue, Snapshot: engine.snapshotLocked(), Signal: signal})
}

func (engine *Engine) emitLocked(event Event) {
	for _, ch := range engine.events {
		select {
		case ch <- event:
		default:
			engine.log.WithField("event", event.Type).Debug("subscriber full, event dropped")
		}
	}
}
