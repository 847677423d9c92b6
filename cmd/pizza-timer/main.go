package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ensigniasec/pizza-timer/internal/config"
	"github.com/ensigniasec/pizza-timer/internal/console"
	"github.com/ensigniasec/pizza-timer/internal/tui"
)

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var (
	// Version metadata populated at build time via -ldflags.
	releaseVersion = "dev"
	commit         = "none"
	date           = "unknown"

	// Used for flags.
	configFile   string
	focusMinutes float64
	breakMinutes float64
	mute         bool
	audioDir     string
	logFile      string
	verbose      bool

	jsonOutput   bool
	stopAfter    time.Duration
	tickInterval time.Duration

	rootCmd = &cobra.Command{
		Use:           "pizza-timer",
		Short:         "A pomodoro timer where every focus session is a pizza.",
		Long:          `A pomodoro timer for your terminal. Focus and break intervals alternate while a pizza loses one slice for every eighth of the interval. Audio cues mark each transition.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}
)

//nolint:gochecknoinits // Cobra command wiring performed in init in current structure.
func init() {
	// Route logs to stderr to avoid polluting stdout, especially for --json output.
	logrus.SetOutput(os.Stderr)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Settings file (default is $XDG_CONFIG_HOME/pizza-timer/config.yaml)")
	rootCmd.PersistentFlags().Float64Var(&focusMinutes, "focus", 0, "Focus interval in minutes (overrides settings)")
	rootCmd.PersistentFlags().Float64Var(&breakMinutes, "break", 0, "Break interval in minutes (overrides settings)")
	rootCmd.PersistentFlags().BoolVar(&mute, "mute", false, "Disable all audio cues")
	rootCmd.PersistentFlags().StringVar(&audioDir, "audio-dir", "", "Directory holding lofi_music.mp3, session_end.mp3 and break_end.mp3")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append logs to this file instead of stderr")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable detailed logging output")

	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output one JSON object per event instead of text")
	runCmd.Flags().DurationVar(&stopAfter, "stop-after", 0, "Stop after this wall-clock duration (0 runs until interrupted)")
	runCmd.Flags().DurationVar(&tickInterval, "tick-interval", time.Second, "Wall-clock length of one timer second")
	_ = runCmd.Flags().MarkHidden("tick-interval")

	configShowCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print settings as JSON instead of YAML")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	// Built-in version flag: set version string and a custom template.
	rootCmd.Version = releaseVersion
	rootCmd.Annotations = map[string]string{"commit": commit, "date": date}
	rootCmd.SetVersionTemplate("{{printf \"%s %s\\ncommit: %s\\ndate: %s\\n\" .DisplayName .Version (index .Annotations \"commit\") (index .Annotations \"date\")}}")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, cmd, 0)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := tui.Run(ctx, s.engine, tui.Options{KeepLogs: logFile != ""}); err != nil {
		return fmt.Errorf("TUI mode failed: %w", err)
	}
	return nil
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the timer headless, printing every update",
	Long:  "Start the timer immediately in headless mode, without the interactive view. Each update is printed as a status line, or as a JSON object with --json. Interrupt to stop.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if stopAfter > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, stopAfter)
			defer cancel()
		}

		s, err := newSession(ctx, cmd, tickInterval)
		if err != nil {
			return err
		}
		defer s.Close()

		printer := console.NewPrinter(os.Stdout, jsonOutput, s.runID)
		events := s.engine.Subscribe(printerBuffer)
		s.engine.Start()

		if err := printer.Run(ctx, events); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		s.log.Debug("headless run finished")
		return printer.Summary()
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the settings file",
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long:  "Print the settings after layering the settings file and command-line flags over the defaults.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, _, err := effectiveSettings(cmd)
		if err != nil {
			return err
		}
		var out []byte
		if jsonOutput {
			out, err = json.MarshalIndent(settings, "", "  ")
			if err == nil {
				out = append(out, '\n')
			}
		} else {
			out, err = yaml.Marshal(settings)
		}
		if err != nil {
			return fmt.Errorf("marshal settings: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the defaults",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		path, err := settingsPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stdout, "Settings file already exists at %s\n", path)
			return nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("check settings file: %w", err)
		}
		if err := config.Save(path, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Wrote default settings to %s\n", path)
		return nil
	},
}

func main() {
	Execute()
}
