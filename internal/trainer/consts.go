package trainer

import "github.com/lowaak/tabata-timer/internal/workout"

const (
	Title       = "TABATA TIMER"
	Version     = "V3.2.0"
	PromptLabel = "COMMAND"

	// DefaultRedZoneSeconds is where the clock turns red.
	DefaultRedZoneSeconds = 10
)

// RunStatus is the lifecycle of a single workout run
type RunStatus int

const (
	RunStatusWaitingToStart RunStatus = iota // loaded, waiting for the start key
	RunStatusRunning
	RunStatusPaused
	RunStatusFinished  // all phases completed
	RunStatusCancelled // operator quit
	RunStatusFailed    // a phase could not run, see WorkoutState.Err
)

func (s RunStatus) String() string {
	switch s {
	case RunStatusWaitingToStart:
		return "waiting"
	case RunStatusRunning:
		return "running"
	case RunStatusPaused:
		return "paused"
	case RunStatusFinished:
		return "finished"
	case RunStatusCancelled:
		return "cancelled"
	case RunStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run is over.
func (s RunStatus) Terminal() bool {
	return s == RunStatusFinished || s == RunStatusCancelled || s == RunStatusFailed
}

// KeyBinding maps an operator key to the command it triggers
type KeyBinding struct {
	Key  rune
	Help string
}

var (
	KeyStart    = KeyBinding{Key: 's', Help: "(s)tart"}
	KeyPause    = KeyBinding{Key: 'p', Help: "(p)ause"}
	KeyResume   = KeyBinding{Key: 'r', Help: "(r)esume"}
	KeyAnnounce = KeyBinding{Key: 'a', Help: "(a)nnounce"}
	KeyQuit     = KeyBinding{Key: 'q', Help: "(q)uit"}
)

// KeysFor lists the keys that do something in the given status, in
// prompt order.
func KeysFor(status RunStatus) []KeyBinding {
	switch status {
	case RunStatusWaitingToStart:
		return []KeyBinding{KeyStart, KeyQuit}
	case RunStatusRunning:
		return []KeyBinding{KeyPause, KeyAnnounce, KeyQuit}
	case RunStatusPaused:
		return []KeyBinding{KeyResume, KeyQuit}
	default:
		return []KeyBinding{KeyQuit}
	}
}

// phaseLabel is what the status lines show for a phase. Synthetic phases
// without a label show NONE, like a missing next interval.
func phaseLabel(label string) string {
	if label == "" {
		return workout.NoInterval
	}
	return label
}
