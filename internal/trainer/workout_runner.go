package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/lowaak/tabata-timer/internal/countdown"
	"github.com/lowaak/tabata-timer/internal/go_func_utils"
	"github.com/lowaak/tabata-timer/internal/speech"
	"github.com/lowaak/tabata-timer/internal/workout"
)

// runnerCommand represents commands sent to the runner goroutine
type runnerCommand int

const (
	cmdStart runnerCommand = iota
)

// ErrContract wraps failures caused by a programming-contract violation
// (an out-of-range phase duration or an invalid rest sentinel), as opposed
// to a bad workout file.
var ErrContract = errors.New("contract violation")

type NewWorkoutRunnerArg struct {
	Model      *UIModel
	Plan       *workout.Plan
	Speaker    speech.Speaker
	Clock      countdown.Clock // optional
	MaxSeconds int             // optional
	Logger     *log.Logger
}

// WorkoutRunner walks the plan's phases on its own goroutine, speaking each
// phase's cue and handing its duration to the countdown engine. Operator
// commands arrive from the UI goroutine.
type WorkoutRunner struct {
	model   *UIModel
	plan    *workout.Plan
	phases  []workout.Phase
	speaker speech.Speaker
	engine  *countdown.Engine
	control *countdown.Control
	logger  *log.Logger

	cmdChan chan runnerCommand
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.RWMutex
	err error

	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

func NewWorkoutRunner(arg NewWorkoutRunnerArg) (*WorkoutRunner, error) {
	if arg.Model == nil {
		panic("WorkoutRunner: model cannot be nil")
	}
	if arg.Plan == nil {
		panic("WorkoutRunner: plan cannot be nil")
	}
	if arg.Speaker == nil {
		panic("WorkoutRunner: speaker cannot be nil")
	}
	if arg.Logger == nil {
		panic("WorkoutRunner: logger cannot be nil")
	}

	phases, err := arg.Plan.Phases()
	if err != nil {
		if errors.Is(err, workout.ErrInvalidRestSentinel) {
			return nil, fmt.Errorf("%w: %w", ErrContract, err)
		}
		return nil, err
	}

	control := countdown.NewControl()
	engine := countdown.NewEngine(countdown.NewEngineArg{
		Speaker:    arg.Speaker,
		Clock:      arg.Clock,
		Control:    control,
		Logger:     arg.Logger,
		MaxSeconds: arg.MaxSeconds,
	})
	// Reject the whole plan up front rather than minutes into the run.
	for i, phase := range phases {
		if err := engine.CheckDuration(phase.Seconds); err != nil {
			return nil, fmt.Errorf("%w: phase %d (%s %q): %w", ErrContract, i+1, phase.Kind, phase.Label, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &WorkoutRunner{
		model:   arg.Model,
		plan:    arg.Plan,
		phases:  phases,
		speaker: arg.Speaker,
		engine:  engine,
		control: control,
		logger:  arg.Logger,
		cmdChan: make(chan runnerCommand, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	r.model.SetWorkoutState(WorkoutState{
		Status:         RunStatusWaitingToStart,
		PlanName:       arg.Plan.Name,
		Phase:          workout.Phase{SetIndex: -1},
		PhaseCount:     len(phases),
		Sets:           len(arg.Plan.Sets),
		CircuitsPerSet: arg.Plan.CircuitsPerSet,
	})

	go_func_utils.SafeGoWG(&r.wg, r.logger, "WorkoutRunner loop", r.runLoop)
	return r, nil
}

// Start begins the workout. Only valid while waiting to start.
func (r *WorkoutRunner) Start() {
	if r.model.GetWorkoutState().Status != RunStatusWaitingToStart {
		r.logger.Printf("WorkoutRunner: Cannot start - already started")
		return
	}
	select {
	case r.cmdChan <- cmdStart:
		r.logger.Printf("WorkoutRunner: Starting workout %q", r.plan.Name)
	default:
	}
}

// Pause stops the clock at the next tick boundary.
func (r *WorkoutRunner) Pause() {
	if r.model.GetWorkoutState().Status != RunStatusRunning {
		r.logger.Printf("WorkoutRunner: Cannot pause - workout not running")
		return
	}
	r.control.Pause()
}

// Resume restarts a paused clock from where it stopped.
func (r *WorkoutRunner) Resume() {
	if r.model.GetWorkoutState().Status != RunStatusPaused {
		r.logger.Printf("WorkoutRunner: Cannot resume - workout not paused")
		return
	}
	r.control.Resume()
}

// RepeatAnnouncement speaks the current phase's cue again, detached.
// Only a running workout speaks; a paused one stays silent.
func (r *WorkoutRunner) RepeatAnnouncement() {
	state := r.model.GetWorkoutState()
	if state.Status != RunStatusRunning {
		r.logger.Printf("WorkoutRunner: Cannot announce - workout %s", state.Status)
		return
	}
	phase := state.Phase
	if phase.Message == "" {
		return
	}
	go_func_utils.SafeGo(r.logger, "repeat announcement", func() {
		if _, err := r.speaker.Speak(r.ctx, phase.Message, speech.Detached); err != nil {
			r.logger.Printf("WorkoutRunner: repeat announcement failed: %v", err)
		}
	})
}

// Quit cancels the run. A countdown in progress stops at the next tick
// boundary, or at once when paused.
func (r *WorkoutRunner) Quit() {
	r.logger.Printf("WorkoutRunner: Quit requested")
	r.cancel()
}

// Done is closed when the run has reached a terminal status.
func (r *WorkoutRunner) Done() <-chan struct{} {
	return r.done
}

// Err returns why the run failed, nil unless the status is RunStatusFailed.
func (r *WorkoutRunner) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Shutdown cancels the run and waits for the runner goroutine.
// Safe to call multiple times.
func (r *WorkoutRunner) Shutdown() {
	r.shutdownOnce.Do(func() {
		r.logger.Printf("WorkoutRunner: Shutting down")
		r.cancel()
		r.wg.Wait()
		r.logger.Printf("WorkoutRunner: Shutdown complete")
	})
}

// OnTick implements countdown.Observer.
func (r *WorkoutRunner) OnTick(remaining int) {
	r.model.UpdateWorkoutState(func(s *WorkoutState) { s.Remaining = remaining })
}

// OnPauseChanged implements countdown.Observer.
func (r *WorkoutRunner) OnPauseChanged(paused bool) {
	r.model.UpdateWorkoutState(func(s *WorkoutState) {
		if paused {
			s.Status = RunStatusPaused
		} else {
			s.Status = RunStatusRunning
		}
	})
}

func (r *WorkoutRunner) runLoop() {
	defer close(r.done)

	select {
	case <-r.ctx.Done():
		r.finish(RunStatusCancelled, nil)
		return
	case <-r.cmdChan:
	}

	status, err := r.runPhases()
	r.finish(status, err)
}

func (r *WorkoutRunner) runPhases() (RunStatus, error) {
	for i, phase := range r.phases {
		if r.ctx.Err() != nil {
			return RunStatusCancelled, nil
		}
		r.model.UpdateWorkoutState(func(s *WorkoutState) {
			s.Status = RunStatusRunning
			s.Phase = phase
			s.PhaseIndex = i
			s.Remaining = phase.Seconds
		})
		r.logger.Printf("WorkoutRunner: phase %d/%d %s %q for %ds", i+1, len(r.phases), phase.Kind, phase.Label, phase.Seconds)

		if phase.Kind != workout.PhaseComplete {
			r.say(phase.Message, phase.MessageMode)
		}

		outcome, err := r.engine.Run(r.ctx, phase.Seconds, phase.Announcements, r)
		if err != nil {
			if errors.Is(err, countdown.ErrDurationOutOfRange) {
				err = fmt.Errorf("%w: %w", ErrContract, err)
			}
			return RunStatusFailed, fmt.Errorf("phase %d (%s %q): %w", i+1, phase.Kind, phase.Label, err)
		}
		if outcome == countdown.Cancelled {
			return RunStatusCancelled, nil
		}

		if phase.Kind == workout.PhaseComplete {
			r.say(phase.Message, phase.MessageMode)
		}
	}
	return RunStatusFinished, nil
}

// say voices a phase cue. Failures are logged; the workout carries on.
func (r *WorkoutRunner) say(message string, mode speech.Mode) {
	if message == "" {
		return
	}
	if _, err := r.speaker.Speak(r.ctx, message, mode); err != nil {
		r.logger.Printf("WorkoutRunner: speech failed for %q: %v", message, err)
	}
}

func (r *WorkoutRunner) finish(status RunStatus, err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	if err != nil {
		r.logger.Printf("WorkoutRunner: workout failed: %v", err)
	} else {
		r.logger.Printf("WorkoutRunner: workout %s", status)
	}
	r.model.UpdateWorkoutState(func(s *WorkoutState) {
		s.Status = status
		s.Err = err
	})
}
