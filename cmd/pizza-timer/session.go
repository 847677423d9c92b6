package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ensigniasec/pizza-timer/internal/audio"
	"github.com/ensigniasec/pizza-timer/internal/config"
	"github.com/ensigniasec/pizza-timer/internal/timer"
)

// printerBuffer is sized for accelerated --tick-interval runs.
const printerBuffer = 1024

// session bundles the Engine with its audio side for one process run.
type session struct {
	runID    string
	log      logrus.FieldLogger
	engine   *timer.Engine
	player   audio.Player
	logClose func()
	done     chan struct{}
}

// newSession loads settings, configures logging and wires the Engine to
// the audio dispatcher. A tickInterval of 0 selects real time.
func newSession(ctx context.Context, cmd *cobra.Command, tickInterval time.Duration) (*session, error) {
	settings, path, err := effectiveSettings(cmd)
	if err != nil {
		return nil, err
	}
	logClose, err := configureLogging(settings.LogLevel)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := logrus.WithField("run_id", runID)
	log.WithField("settings", path).Debug("settings loaded")

	engine := timer.New(timer.Options{
		Focus:        time.Duration(settings.FocusMinutes) * time.Minute,
		Break:        time.Duration(settings.BreakMinutes) * time.Minute,
		TickInterval: tickInterval,
		Logger:       log,
	})
	player := newPlayer(settings.Audio, log)

	s := &session{
		runID:    runID,
		log:      log,
		engine:   engine,
		player:   player,
		logClose: logClose,
		done:     make(chan struct{}),
	}
	dispatcher := audio.NewDispatcher(player, log)
	events := engine.Subscribe(audio.EventBuffer)
	go func() {
		defer close(s.done)
		dispatcher.Run(ctx, events)
	}()
	return s, nil
}

// Close stops the Engine, waits for the dispatcher to drain and releases audio.
func (s *session) Close() {
	s.engine.Close()
	<-s.done
	if err := s.player.Close(); err != nil {
		s.log.Debugf("close audio player: %v", err)
	}
	s.logClose()
}

// settingsPath returns the --config path or the per-user default.
func settingsPath() (string, error) {
	return config.ResolvePath(configFile)
}

// effectiveSettings layers command-line flags over the settings file.
func effectiveSettings(cmd *cobra.Command) (config.Settings, string, error) {
	path, err := settingsPath()
	if err != nil {
		return config.Settings{}, "", err
	}
	settings, err := config.Load(path)
	if err != nil {
		return settings, path, fmt.Errorf("load settings from %s: %w", path, err)
	}

	flags := cmd.Flags()
	if flags.Changed("focus") || flags.Changed("break") {
		focus, brk := float64(settings.FocusMinutes), float64(settings.BreakMinutes)
		if flags.Changed("focus") {
			focus = focusMinutes
		}
		if flags.Changed("break") {
			brk = breakMinutes
		}
		settings.FocusMinutes, settings.BreakMinutes, err = timer.ValidateDurations(focus, brk)
		if err != nil {
			return settings, path, fmt.Errorf("--focus/--break: %w", err)
		}
	}
	if audioDir != "" {
		settings.Audio.Dir = audioDir
		settings.Audio.Enabled = true
	}
	if mute {
		settings.Audio.Enabled = false
	}
	return settings, path, nil
}

// configureLogging sets the level and destination of the standard logger.
// The returned func closes the log file, if any.
func configureLogging(level string) (func(), error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	logrus.SetLevel(lvl)

	if logFile == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)
	return func() {
		logrus.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

// newPlayer picks mp3 playback when an audio directory is configured,
// falling back to the terminal bell, then to silence.
func newPlayer(settings config.AudioSettings, log logrus.FieldLogger) audio.Player {
	if !settings.Enabled {
		return audio.NopPlayer{}
	}
	if settings.Dir != "" {
		p, err := audio.NewBeepPlayer(audio.BeepOptions{
			Dir:           settings.Dir,
			AmbientVolume: settings.AmbientVolume,
			Logger:        log,
		})
		if err == nil {
			return p
		}
		log.Warnf("mp3 playback unavailable: %v", err)
	}
	if settings.Bell {
		return audio.NewBellPlayer(os.Stderr)
	}
	return audio.NopPlayer{}
}
