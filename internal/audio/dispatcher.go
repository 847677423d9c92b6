package audio

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/pizza-timer/internal/timer"
)

// EventBuffer is the subscription size the dispatcher asks the Engine for.
const EventBuffer = 64

// Dispatcher forwards Engine cue signals to a Player on its own goroutine,
// so slow audio backends never hold the Engine lock.
type Dispatcher struct {
	player Player
	log    logrus.FieldLogger
}

// NewDispatcher creates a dispatcher for player. A nil logger uses the standard logrus logger.
func NewDispatcher(player Player, log logrus.FieldLogger) *Dispatcher {
	if player == nil {
		player = NopPlayer{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{player: player, log: log}
}

// Run consumes events until ctx is done or the channel closes.
func (d *Dispatcher) Run(ctx context.Context, events <-chan timer.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type == timer.EventCue {
				d.Handle(ev.Signal)
			}
		}
	}
}

// Handle executes a single signal, logging instead of returning any failure.
func (d *Dispatcher) Handle(signal timer.Signal) {
	var err error
	switch signal.Action {
	case timer.ActionPlay:
		err = d.player.Play(signal.Cue)
	case timer.ActionPause:
		err = d.player.Pause(signal.Cue)
	case timer.ActionStop:
		err = d.player.Stop(signal.Cue)
	default:
		d.log.WithField("action", signal.Action).Debug("unknown audio action")
		return
	}
	if err != nil {
		d.log.WithFields(logrus.Fields{
			"cue":    signal.Cue,
			"action": signal.Action,
		}).Warnf("audio playback failed: %v", err)
		return
	}
	d.log.WithField("signal", signal.String()).Debug("audio signal handled")
}
