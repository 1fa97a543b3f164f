package workout

import (
	"fmt"

	"github.com/lowaak/tabata-timer/internal/speech"
)

// PhaseKind identifies what a Phase represents. Intervals map to
// PhaseExercise/PhaseRest/PhaseSwitch; the others are synthetic.
type PhaseKind int

const (
	PhaseStartDelay PhaseKind = iota
	PhaseExercise
	PhaseRest
	PhaseSwitch
	PhaseCircuitRest
	PhaseSetRest
	PhaseComplete
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseStartDelay:
		return "start-delay"
	case PhaseExercise:
		return "exercise"
	case PhaseRest:
		return "rest"
	case PhaseSwitch:
		return "switch"
	case PhaseCircuitRest:
		return "circuit-rest"
	case PhaseSetRest:
		return "set-rest"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Phase is one unit of work handed to the countdown: an interval or a
// synthetic rest/start/completion step.
type Phase struct {
	Kind     PhaseKind
	Label    string // current interval name or sentinel, empty outside the workout body
	Upcoming string // what comes next, for the status line
	Seconds  int

	// Message is spoken when the phase starts (after the countdown for
	// PhaseComplete), using MessageMode.
	Message     string
	MessageMode speech.Mode

	// Announcements maps remaining seconds to an optional suffix for the
	// countdown's "<N> seconds." cues.
	Announcements map[int]string

	SetIndex   int // -1 when not inside a set
	CircuitNum int // 1-based repetition, 0 when not inside a set
}

// Label shown while the start delay runs.
const StartDelayLabel = "get ready to start"

func phaseKindFor(k IntervalKind) (PhaseKind, error) {
	switch k {
	case KindExercise:
		return PhaseExercise, nil
	case KindRest:
		return PhaseRest, nil
	case KindSwitch:
		return PhaseSwitch, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownIntervalKind, k)
}

// Phases walks the plan and returns every phase in execution order:
// start delay, then per set and per circuit-repetition each interval,
// a circuit rest between repetitions, a set rest between sets, and a
// final completion phase.
func (p *Plan) Phases() ([]Phase, error) {
	first := p.FirstIntervalName()
	phases := []Phase{{
		Kind:          PhaseStartDelay,
		Label:         StartDelayLabel,
		Upcoming:      first,
		Seconds:       p.StartDelay,
		Message:       fmt.Sprintf("Starting in %d seconds. Get ready for %s!", p.StartDelay, first),
		MessageMode:   speech.Detached,
		Announcements: map[int]string{15: ""},
		SetIndex:      -1,
	}}

	for setIdx := range p.Sets {
		intervals := p.flat[setIdx]
		for circuitNum := 1; circuitNum <= p.CircuitsPerSet; circuitNum++ {
			for intervalIdx, iv := range intervals {
				next := p.NextIntervalName(setIdx, circuitNum, intervalIdx)
				phase, err := p.intervalPhase(iv, next)
				if err != nil {
					return nil, err
				}
				phase.SetIndex = setIdx
				phase.CircuitNum = circuitNum
				phases = append(phases, phase)
			}

			if circuitNum < p.CircuitsPerSet {
				next, err := p.ResolveAfterRest(setIdx, RestBetweenCircuits)
				if err != nil {
					return nil, err
				}
				phases = append(phases, Phase{
					Kind:          PhaseCircuitRest,
					Label:         RestBetweenCircuits,
					Upcoming:      next,
					Seconds:       p.CircuitRest,
					Message:       fmt.Sprintf("Rest! Get ready for %s!", next),
					MessageMode:   speech.Detached,
					Announcements: map[int]string{15: ""},
					SetIndex:      setIdx,
					CircuitNum:    circuitNum,
				})
			}
		}

		if setIdx < p.LastSetIndex() {
			next, err := p.ResolveAfterRest(setIdx, RestBetweenSets)
			if err != nil {
				return nil, err
			}
			phases = append(phases, Phase{
				Kind:        PhaseSetRest,
				Label:       RestBetweenSets,
				Upcoming:    next,
				Seconds:     p.SetRest,
				Message:     "Rest and hydrate!",
				MessageMode: speech.Detached,
				Announcements: map[int]string{
					15: "",
					30: fmt.Sprintf("Get ready for %s!", next),
					60: "",
				},
				SetIndex:   setIdx,
				CircuitNum: p.CircuitsPerSet,
			})
		}
	}

	phases = append(phases, Phase{
		Kind:        PhaseComplete,
		Message:     "Great job! You did it!",
		MessageMode: speech.Blocking,
		SetIndex:    -1,
	})
	return phases, nil
}

func (p *Plan) intervalPhase(iv Interval, next string) (Phase, error) {
	kind, err := phaseKindFor(iv.Kind)
	if err != nil {
		return Phase{}, err
	}
	seconds, err := p.EffectiveDuration(iv)
	if err != nil {
		return Phase{}, err
	}
	phase := Phase{
		Kind:     kind,
		Label:    iv.Name,
		Upcoming: next,
		Seconds:  seconds,
	}
	switch kind {
	case PhaseExercise:
		phase.Message = fmt.Sprintf("%s! START!", iv.Name)
		phase.MessageMode = speech.Blocking
	case PhaseRest:
		phase.Message = fmt.Sprintf("Rest! Get ready for %s!", next)
		phase.MessageMode = speech.Detached
		phase.Announcements = map[int]string{15: ""}
	case PhaseSwitch:
		phase.Message = "Switch sides!"
		phase.MessageMode = speech.Detached
	}
	return phase, nil
}

// TotalSeconds is the nominal workout length: the sum of all phase
// durations, excluding any time spent speaking or paused.
func (p *Plan) TotalSeconds() (int, error) {
	phases, err := p.Phases()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, ph := range phases {
		total += ph.Seconds
	}
	return total, nil
}
