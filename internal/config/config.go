package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ensigniasec/pizza-timer/internal/timer"
	"github.com/ensigniasec/pizza-timer/internal/validate"
)

const (
	appDirName       = "pizza-timer"
	settingsFileName = "config.yaml"

	defaultAmbientVolume = 0.5
)

// AudioSettings controls the audio collaborator.
type AudioSettings struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Dir holds lofi_music.mp3, session_end.mp3 and break_end.mp3. When
	// empty, the terminal bell is used for completion cues if Bell is set.
	Dir           string  `yaml:"dir" json:"dir"`
	AmbientVolume float64 `yaml:"ambient_volume" json:"ambient_volume" validate:"finite,gte=0,lte=1"`
	Bell          bool    `yaml:"bell" json:"bell"`
}

// Settings represents the structure of the settings file.
type Settings struct {
	FocusMinutes int           `yaml:"focus_minutes" json:"focus_minutes" validate:"gt=0,lte=1440"`
	BreakMinutes int           `yaml:"break_minutes" json:"break_minutes" validate:"gt=0,lte=1440"`
	LogLevel     string        `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Audio        AudioSettings `yaml:"audio" json:"audio"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		FocusMinutes: timer.DefaultFocusMinutes,
		BreakMinutes: timer.DefaultBreakMinutes,
		LogLevel:     "info",
		Audio: AudioSettings{
			Enabled:       true,
			AmbientVolume: defaultAmbientVolume,
			Bell:          true,
		},
	}
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appDirName, settingsFileName), nil
}

// ResolvePath returns path with the tilde expanded, or DefaultPath when
// path is empty.
func ResolvePath(path string) (string, error) {
	if path == "" {
		return DefaultPath()
	}
	return expandTilde(path)
}

// Load reads settings from path, layered over the defaults. A missing file
// yields the defaults. Individual invalid values are replaced by their
// defaults with a warning instead of failing the whole load.
func Load(path string) (Settings, error) {
	settings := Default()
	expandedPath, err := expandTilde(path)
	if err != nil {
		return settings, err
	}

	logrus.Debug("Loading settings file from: ", expandedPath)
	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Default(), fmt.Errorf("parse settings yaml: %w", err)
	}
	settings.Audio.Dir, err = expandTilde(settings.Audio.Dir)
	if err != nil {
		return Default(), err
	}

	heal(&settings)
	return settings, nil
}

// Save writes settings to path, creating parent directories.
func Save(path string, settings Settings) error {
	expandedPath, err := expandTilde(path)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	logrus.Debug("Saving settings file to: ", expandedPath)
	if err := os.MkdirAll(filepath.Dir(expandedPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	serialized, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}
	if err := os.WriteFile(expandedPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// Validate checks every field against its constraints.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// heal resets each invalid field to its default.
func heal(s *Settings) {
	if validate.Struct(*s) == nil {
		return
	}
	defaults := Default()
	if validate.Var(s.FocusMinutes, "gt=0,lte=1440") != nil {
		logrus.Warnf("Invalid focus_minutes %d in settings; using %d.", s.FocusMinutes, defaults.FocusMinutes)
		s.FocusMinutes = defaults.FocusMinutes
	}
	if validate.Var(s.BreakMinutes, "gt=0,lte=1440") != nil {
		logrus.Warnf("Invalid break_minutes %d in settings; using %d.", s.BreakMinutes, defaults.BreakMinutes)
		s.BreakMinutes = defaults.BreakMinutes
	}
	if validate.Var(s.LogLevel, "omitempty,oneof=debug info warn error") != nil {
		logrus.Warnf("Invalid log_level %q in settings; using %q.", s.LogLevel, defaults.LogLevel)
		s.LogLevel = defaults.LogLevel
	}
	if validate.Var(s.Audio.AmbientVolume, "finite,gte=0,lte=1") != nil {
		logrus.Warnf("Invalid audio.ambient_volume %v in settings; using %v.", s.Audio.AmbientVolume, defaults.Audio.AmbientVolume)
		s.Audio.AmbientVolume = defaults.Audio.AmbientVolume
	}
}

// expandTilde expands the tilde in a path to the user's home directory.
func expandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}
