package speech

import (
	"context"
	"fmt"
	"log"
	osexec "os/exec"
	"time"

	"github.com/lowaak/tabata-timer/internal/go_func_utils"
)

// Runner starts external processes. Inject a fake in tests.
type Runner interface {
	// Run executes the command and waits for it to exit.
	Run(ctx context.Context, name string, args ...string) error
	// Start launches the command without waiting. The returned wait func
	// reaps the process and reports its exit error.
	Start(ctx context.Context, name string, args ...string) (wait func() error, err error)
}

// OSRunner implements Runner with os/exec.
type OSRunner struct{}

func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

func (r *OSRunner) Run(ctx context.Context, name string, args ...string) error {
	return osexec.CommandContext(ctx, name, args...).Run()
}

func (r *OSRunner) Start(ctx context.Context, name string, args ...string) (func() error, error) {
	cmd := osexec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd.Wait, nil
}

// CommandSpeaker voices messages through a text-to-speech executable such
// as macOS `say` or `espeak`. The message is passed as the last argument.
type CommandSpeaker struct {
	runner  Runner
	command string
	args    []string
	logger  *log.Logger
}

func NewCommandSpeaker(runner Runner, command string, args []string, logger *log.Logger) *CommandSpeaker {
	if runner == nil {
		panic("CommandSpeaker: runner cannot be nil")
	}
	if logger == nil {
		panic("CommandSpeaker: logger cannot be nil")
	}
	return &CommandSpeaker{
		runner:  runner,
		command: command,
		args:    append([]string(nil), args...),
		logger:  logger,
	}
}

// Speak runs the command. Detached utterances outlive ctx: they are
// fire-and-forget, and a cancelled workout should not cut off "Great job".
func (s *CommandSpeaker) Speak(ctx context.Context, message string, mode Mode) (time.Duration, error) {
	argv := append(append([]string(nil), s.args...), message)
	s.logger.Printf("CommandSpeaker: %s %q (%s)", s.command, message, mode)

	start := time.Now()
	switch mode {
	case Detached:
		wait, err := s.runner.Start(context.WithoutCancel(ctx), s.command, argv...)
		if err != nil {
			return time.Since(start), fmt.Errorf("starting %s: %w", s.command, err)
		}
		go_func_utils.SafeGo(s.logger, "speech reaper", func() {
			if err := wait(); err != nil {
				s.logger.Printf("CommandSpeaker: detached %q failed: %v", message, err)
			}
		})
		return time.Since(start), nil
	default:
		if err := s.runner.Run(ctx, s.command, argv...); err != nil {
			return time.Since(start), fmt.Errorf("running %s: %w", s.command, err)
		}
		return time.Since(start), nil
	}
}
