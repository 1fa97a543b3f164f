// Package speech announces workout cues. A Speaker turns a message into
// sound and reports how long the call held up its caller, which the
// countdown uses to keep each tick close to one wall-clock second.
package speech

import (
	"context"
	"errors"
	"log"
	"time"
)

// Mode selects whether Speak waits for the utterance to finish.
type Mode int

const (
	// Blocking waits until the utterance has finished; the returned
	// elapsed time is the real duration of the call.
	Blocking Mode = iota
	// Detached starts the utterance and returns at once; elapsed is ~0 and
	// the utterance is never joined or cancelled.
	Detached
)

func (m Mode) String() string {
	switch m {
	case Blocking:
		return "blocking"
	case Detached:
		return "detached"
	default:
		return "unknown"
	}
}

// Speaker says a message. Implementations must be safe for use from
// several goroutines; detached utterances may overlap.
type Speaker interface {
	Speak(ctx context.Context, message string, mode Mode) (time.Duration, error)
}

// ErrAudioUnavailable is returned by speakers whose output device could not
// be opened. Callers treat it like any other speech failure.
var ErrAudioUnavailable = errors.New("audio output unavailable")

// Backend names accepted by New.
const (
	BackendCommand = "command"
	BackendTone    = "tone"
	BackendNone    = "none"
)

// NewArg holds the arguments for New
type NewArg struct {
	Backend string
	Command string   // executable for BackendCommand, e.g. "say" or "espeak"
	Args    []string // extra arguments placed before the message
	Runner  Runner   // nil means os/exec
	Logger  *log.Logger
}

// New builds the speaker for a configured backend.
func New(args NewArg) (Speaker, error) {
	if args.Logger == nil {
		panic("speech: logger cannot be nil")
	}
	switch args.Backend {
	case BackendCommand:
		if args.Command == "" {
			return nil, errors.New("speech: command backend needs a command")
		}
		runner := args.Runner
		if runner == nil {
			runner = NewOSRunner()
		}
		return NewCommandSpeaker(runner, args.Command, args.Args, args.Logger), nil
	case BackendTone:
		return NewToneSpeaker(args.Logger), nil
	case BackendNone:
		return NewSilentSpeaker(args.Logger), nil
	default:
		return nil, errors.New("speech: unknown backend " + args.Backend)
	}
}

// SilentSpeaker logs messages instead of voicing them.
type SilentSpeaker struct {
	logger *log.Logger
}

func NewSilentSpeaker(logger *log.Logger) *SilentSpeaker {
	return &SilentSpeaker{logger: logger}
}

func (s *SilentSpeaker) Speak(_ context.Context, message string, mode Mode) (time.Duration, error) {
	s.logger.Printf("SilentSpeaker: %q (%s)", message, mode)
	return 0, nil
}
