package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lowaak/tabata-timer/internal/config"
	"github.com/lowaak/tabata-timer/internal/countdown"
	"github.com/lowaak/tabata-timer/internal/go_func_utils"
	"github.com/lowaak/tabata-timer/internal/logging"
	"github.com/lowaak/tabata-timer/internal/speech"
	"github.com/lowaak/tabata-timer/internal/trainer"
	"github.com/lowaak/tabata-timer/internal/workout"
)

// Exit codes. Configuration problems (bad file, bad settings) and contract
// violations are reported differently so logs can tell them apart.
const (
	exitOK       = 0
	exitConfig   = 1
	exitContract = 2
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func configError(err error) error { return &exitError{code: exitConfig, err: err} }

func main() {
	root := rootCmd()
	if err := root.Execute(); err != nil {
		code := exitConfig
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
		fmt.Fprintln(os.Stderr, color.RedString("tabata: %v", err))
		os.Exit(code)
	}
	os.Exit(exitOK)
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tabata",
		Short:         "Run a Tabata interval workout in the terminal",
		Version:       trainer.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkout(cmd)
		},
	}
	config.RegisterFlags(cmd.Flags())

	cmd.AddCommand(validateCmd(), listCmd())
	return cmd
}

func runWorkout(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return configError(err)
	}

	runID := uuid.NewString()[:8]
	sink, err := logging.New(logging.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		RunID:      runID,
		UILines:    true,
	})
	if err != nil {
		return configError(fmt.Errorf("opening log: %w", err))
	}
	defer sink.Close()
	logger := sink.Logger
	logger.Printf("Main: run %s, config %q, workout %q", runID, cfg.File, cfg.Workout)

	plan, err := workout.LoadFile(cfg.Workout)
	if err != nil {
		logger.Printf("Main: %v", err)
		return configError(err)
	}

	speaker, err := speech.New(speech.NewArg{
		Backend: cfg.Speech.Backend,
		Command: cfg.Speech.Command,
		Args:    cfg.Speech.Args,
		Logger:  logger,
	})
	if err != nil {
		return configError(err)
	}

	plain := usePlainUI(cfg.UI.Mode)

	model := trainer.NewUIModel(logger, sink.Lines)
	defer model.Shutdown()

	runner, err := trainer.NewWorkoutRunner(trainer.NewWorkoutRunnerArg{
		Model:      model,
		Plan:       plan,
		Speaker:    speaker,
		MaxSeconds: cfg.Countdown.MaxSeconds,
		Logger:     logger,
	})
	if err != nil {
		if errors.Is(err, trainer.ErrContract) {
			return &exitError{code: exitContract, err: err}
		}
		return configError(err)
	}

	controller := trainer.NewUIController(trainer.NewUIControllerArg{
		Model:         model,
		Runner:        runner,
		CloseOnFinish: plain,
		Logger:        logger,
	})
	defer controller.Shutdown()

	var impl trainer.UIViewImpl
	if plain {
		impl = trainer.NewPlainUIView(trainer.NewPlainUIViewArg{
			Logger:         logger,
			Out:            color.Output,
			RedZoneSeconds: cfg.UI.RedZoneSeconds,
		})
	} else {
		impl = trainer.NewCursesUIView(trainer.NewCursesUIViewArg{
			Logger:         logger,
			App:            tview.NewApplication(),
			RedZoneSeconds: cfg.UI.RedZoneSeconds,
		})
	}
	view := trainer.NewBaseUIView(trainer.NewBaseUIViewArg{
		UIViewImpl:   impl,
		UIModel:      model,
		UIController: controller,
		Logger:       logger,
	})
	defer view.Shutdown()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	exited := make(chan struct{})
	defer close(exited)
	go_func_utils.SafeGo(logger, "signal watcher", func() {
		select {
		case sig := <-sigCh:
			logger.Printf("Main: %v received", sig)
			controller.Quit()
		case <-exited:
		}
	})

	if plain {
		controller.StartWorkout()
	}

	if err := view.Run(); err != nil {
		return configError(fmt.Errorf("ui: %w", err))
	}
	runner.Quit()
	<-runner.Done()

	state := model.GetWorkoutState()
	logger.Printf("Main: workout %s", state.Status)
	if state.Status == trainer.RunStatusFailed {
		if errors.Is(state.Err, trainer.ErrContract) {
			return &exitError{code: exitContract, err: state.Err}
		}
		return configError(state.Err)
	}
	return nil
}

// usePlainUI resolves the ui mode; auto picks the full-screen UI only
// when both stdin and stdout are terminals.
func usePlainUI(mode string) bool {
	switch mode {
	case config.UIModePlain:
		return true
	case config.UIModeCurses:
		return false
	}
	return !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd()))
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <workout-file>",
		Short: "Check a workout file and print its schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := workout.LoadFile(args[0])
			if err != nil {
				return configError(err)
			}
			if err := printSchedule(cmd.OutOrStdout(), plan); err != nil {
				if errors.Is(err, workout.ErrInvalidRestSentinel) || errors.Is(err, countdown.ErrDurationOutOfRange) {
					return &exitError{code: exitContract, err: err}
				}
				return configError(err)
			}
			return nil
		},
	}
}

func printSchedule(w io.Writer, plan *workout.Plan) error {
	phases, err := checkPhases(plan)
	if err != nil {
		return err
	}
	total, err := plan.TotalSeconds()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s  %d set(s) x %d circuit(s), %s total\n",
		color.New(color.Bold).Sprint(plan.Name), len(plan.Sets), plan.CircuitsPerSet, trainer.FormatClock(total))
	for i, ph := range phases {
		label := ph.Label
		if ph.Kind == workout.PhaseComplete {
			label = "done"
		}
		fmt.Fprintf(w, "%3d  %-12s %-24s %s  %s %s\n",
			i+1, ph.Kind, label, color.CyanString(trainer.FormatClock(ph.Seconds)),
			color.HiBlackString("next:"), ph.Upcoming)
	}
	return nil
}

// checkPhases builds the schedule and rejects phases the countdown would
// refuse to run.
func checkPhases(plan *workout.Plan) ([]workout.Phase, error) {
	phases, err := plan.Phases()
	if err != nil {
		return nil, err
	}
	for i, ph := range phases {
		if err := countdown.CheckDuration(ph.Seconds, countdown.DefaultMaxSeconds); err != nil {
			return nil, fmt.Errorf("phase %d (%s %q): %w", i+1, ph.Kind, ph.Label, err)
		}
	}
	return phases, nil
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [dir]",
		Short: "Find workout files below a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			entries, err := workout.Discover(root)
			if err != nil {
				return configError(err)
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

func printEntries(w io.Writer, entries []workout.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No workout files found")
		return
	}
	for _, e := range entries {
		if e.Err != nil {
			fmt.Fprintf(w, "%s %s  %s\n", color.RedString("✗"), e.Path, color.HiBlackString(e.Err.Error()))
			continue
		}
		phases, err := checkPhases(e.Plan)
		if err != nil {
			fmt.Fprintf(w, "%s %s  %s\n", color.RedString("✗"), e.Path, color.HiBlackString(err.Error()))
			continue
		}
		total := 0
		for _, ph := range phases {
			total += ph.Seconds
		}
		fmt.Fprintf(w, "%s %s  %s, %d set(s) %s\n",
			color.GreenString("✓"), e.Path, e.Plan.Name, len(e.Plan.Sets), color.CyanString(trainer.FormatClock(total)))
	}
}
