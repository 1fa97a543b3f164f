// Package countdown runs the per-second tick loop for a single workout
// phase: render, honour pause, announce, then sleep off whatever part of
// the second the announcement did not use.
package countdown

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/lowaak/tabata-timer/internal/speech"
)

const (
	// DefaultMaxSeconds is 99 minutes, the most the MM:SS clock can show.
	DefaultMaxSeconds = 5940
	// FinalCountdownSeconds is where bare-number announcements take over.
	FinalCountdownSeconds = 5
	tickLength            = time.Second
)

// ErrDurationOutOfRange is returned for negative durations or ones above
// the engine's ceiling.
var ErrDurationOutOfRange = errors.New("countdown duration out of range")

// Outcome tells how a Run ended. NotRun comes with a non-nil error and
// carries no other meaning.
type Outcome int

const (
	NotRun Outcome = iota
	Completed
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case NotRun:
		return "not-run"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Observer receives the engine's render events. Calls are made from the
// goroutine running Run.
type Observer interface {
	OnTick(remaining int)
	OnPauseChanged(paused bool)
}

// Clock abstracts sleeping so tests can run without wall-clock delays.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// RealClock sleeps on a timer, returning early if ctx is cancelled.
func RealClock() Clock {
	return realClock{}
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type NewEngineArg struct {
	Speaker    speech.Speaker
	Clock      Clock    // optional, RealClock when nil
	Control    *Control // optional, pause is unavailable when nil
	Logger     *log.Logger
	MaxSeconds int // optional, DefaultMaxSeconds when zero
}

// Engine runs countdowns one at a time. It keeps no state between runs.
type Engine struct {
	speaker    speech.Speaker
	clock      Clock
	control    *Control
	logger     *log.Logger
	maxSeconds int
}

func NewEngine(arg NewEngineArg) *Engine {
	if arg.Speaker == nil {
		panic("Engine: speaker cannot be nil")
	}
	if arg.Logger == nil {
		panic("Engine: logger cannot be nil")
	}
	if arg.Clock == nil {
		arg.Clock = RealClock()
	}
	if arg.Control == nil {
		arg.Control = NewControl()
	}
	if arg.MaxSeconds <= 0 {
		arg.MaxSeconds = DefaultMaxSeconds
	}
	return &Engine{
		speaker:    arg.Speaker,
		clock:      arg.Clock,
		control:    arg.Control,
		logger:     arg.Logger,
		maxSeconds: arg.MaxSeconds,
	}
}

// Run counts down from seconds to zero, calling obs.OnTick once per
// second and a final time at 0. A zero duration only renders 0.
//
// Announcements maps a remaining-seconds value to a suffix; at that
// second "<N> seconds. <suffix>" is spoken. In the last
// FinalCountdownSeconds the bare number is spoken instead, whatever the
// map says. Speech failures are logged and the tick carries on.
//
// Cancelling ctx stops the loop at the next tick boundary (or while
// paused) and returns Cancelled with a nil error. When err is non-nil the
// outcome is NotRun.
func (e *Engine) Run(ctx context.Context, seconds int, announcements map[int]string, obs Observer) (Outcome, error) {
	if err := e.CheckDuration(seconds); err != nil {
		return NotRun, err
	}
	if obs == nil {
		panic("Engine: observer cannot be nil")
	}

	for remaining := seconds; remaining > 0; remaining-- {
		if ctx.Err() != nil {
			return Cancelled, nil
		}
		obs.OnTick(remaining)

		if e.control.pauseRequested() {
			e.logger.Printf("Engine: paused at %d", remaining)
			obs.OnPauseChanged(true)
			if err := e.control.waitResume(ctx); err != nil {
				return Cancelled, nil
			}
			e.logger.Printf("Engine: resumed at %d", remaining)
			obs.OnPauseChanged(false)
		}

		elapsed := e.announce(ctx, remaining, announcements)
		if err := e.clock.Sleep(ctx, max(0, tickLength-elapsed)); err != nil {
			return Cancelled, nil
		}
	}

	obs.OnTick(0)
	return Completed, nil
}

// CheckDuration reports whether Run would accept seconds.
func (e *Engine) CheckDuration(seconds int) error {
	return CheckDuration(seconds, e.maxSeconds)
}

// CheckDuration validates seconds against maxSeconds, or against
// DefaultMaxSeconds when maxSeconds is not positive.
func CheckDuration(seconds, maxSeconds int) error {
	if maxSeconds <= 0 {
		maxSeconds = DefaultMaxSeconds
	}
	if seconds < 0 || seconds > maxSeconds {
		return fmt.Errorf("%w: %d (max %d)", ErrDurationOutOfRange, seconds, maxSeconds)
	}
	return nil
}

// announce speaks at most one message for this tick and returns how long
// the speaker took.
func (e *Engine) announce(ctx context.Context, remaining int, announcements map[int]string) time.Duration {
	message, ok := AnnouncementFor(remaining, announcements)
	if !ok {
		return 0
	}
	elapsed, err := e.speaker.Speak(ctx, message, speech.Detached)
	if err != nil {
		e.logger.Printf("Engine: speech failed at %d: %v", remaining, err)
		return 0
	}
	return elapsed
}

// AnnouncementFor returns what should be said with remaining seconds
// left, if anything.
func AnnouncementFor(remaining int, announcements map[int]string) (string, bool) {
	if remaining <= FinalCountdownSeconds {
		return strconv.Itoa(remaining), true
	}
	suffix, ok := announcements[remaining]
	if !ok {
		return "", false
	}
	if suffix == "" {
		return fmt.Sprintf("%d seconds.", remaining), true
	}
	return fmt.Sprintf("%d seconds. %s", remaining, suffix), true
}
