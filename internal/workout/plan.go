// Package workout holds the loaded Tabata workout: sets of circuits of
// timed intervals, plus the lookups a driver needs while walking it.
// A Plan is built once by Load/NewPlan and never mutated afterwards.
package workout

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownIntervalKind means an interval type is not exercise, rest or switch.
	ErrUnknownIntervalKind = errors.New("unknown interval kind")
	// ErrInvalidRestSentinel is a programming error: ResolveAfterRest was
	// called with something other than a rest sentinel, or past the last set.
	ErrInvalidRestSentinel = errors.New("invalid rest sentinel")
	// ErrInvalidPlan covers structural problems (empty sets, zero durations...).
	ErrInvalidPlan = errors.New("invalid workout plan")
)

// Labels that stand in for an interval name at structural boundaries.
const (
	RestBetweenCircuits = "rest between circuits"
	RestBetweenSets     = "rest between sets"
	NoInterval          = "none"
)

// IntervalKind is the type of a plan-declared interval
type IntervalKind string

const (
	KindExercise IntervalKind = "exercise"
	KindRest     IntervalKind = "rest"
	KindSwitch   IntervalKind = "switch"
)

// Valid reports whether k is one of the known kinds.
func (k IntervalKind) Valid() bool {
	switch k {
	case KindExercise, KindRest, KindSwitch:
		return true
	}
	return false
}

// Interval is the atomic timed unit of a workout.
type Interval struct {
	Name    string
	Kind    IntervalKind
	Seconds int // 0 means "use the plan default for Kind"
}

// Circuit is one pass through a fixed sequence of intervals
type Circuit struct {
	Intervals []Interval
}

// Set is the top-level grouping. One circuit-repetition of a set walks
// all of its circuits in order.
type Set struct {
	Circuits []Circuit
}

// Intervals returns the set's circuits flattened into execution order.
func (s Set) Intervals() []Interval {
	var out []Interval
	for _, c := range s.Circuits {
		out = append(out, c.Intervals...)
	}
	return out
}

// Defaults holds the per-kind fallback durations in seconds
type Defaults struct {
	Exercise int
	Rest     int
	Switch   int
}

// Plan is an immutable, validated workout.
type Plan struct {
	Name           string
	StartDelay     int // seconds before the first interval
	Defaults       Defaults
	CircuitsPerSet int
	CircuitRest    int // seconds between circuit repetitions
	SetRest        int // seconds between sets
	Sets           []Set

	// flattened interval lists per set, computed once by NewPlan
	flat [][]Interval
}

// NewPlan validates p and returns a ready-to-use copy. A zero CircuitRest
// falls back to the rest default.
func NewPlan(p Plan) (*Plan, error) {
	if p.CircuitRest == 0 {
		p.CircuitRest = p.Defaults.Rest
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	p.flat = make([][]Interval, len(p.Sets))
	for i, s := range p.Sets {
		p.flat[i] = s.Intervals()
	}
	return &p, nil
}

func (p *Plan) validate() error {
	if len(p.Sets) == 0 {
		return fmt.Errorf("%w: no sets", ErrInvalidPlan)
	}
	if p.CircuitsPerSet < 1 {
		return fmt.Errorf("%w: circuits_per_set must be at least 1, got %d", ErrInvalidPlan, p.CircuitsPerSet)
	}
	positive := map[string]int{
		"start_time":             p.StartDelay,
		"interval_exercise_time": p.Defaults.Exercise,
		"interval_rest_time":     p.Defaults.Rest,
		"interval_switch_time":   p.Defaults.Switch,
		"circuit_rest_time":      p.CircuitRest,
		"set_rest_time":          p.SetRest,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidPlan, name, v)
		}
	}
	for si, s := range p.Sets {
		if len(s.Circuits) == 0 {
			return fmt.Errorf("%w: set %d has no circuits", ErrInvalidPlan, si+1)
		}
		for ci, c := range s.Circuits {
			if len(c.Intervals) == 0 {
				return fmt.Errorf("%w: set %d circuit %d has no intervals", ErrInvalidPlan, si+1, ci+1)
			}
			for ii, iv := range c.Intervals {
				if !iv.Kind.Valid() {
					return fmt.Errorf("%w %q (set %d, circuit %d, interval %d)", ErrUnknownIntervalKind, iv.Kind, si+1, ci+1, ii+1)
				}
				if iv.Name == "" {
					return fmt.Errorf("%w: set %d circuit %d interval %d has no name", ErrInvalidPlan, si+1, ci+1, ii+1)
				}
				if iv.Seconds < 0 {
					return fmt.Errorf("%w: interval %q has negative time", ErrInvalidPlan, iv.Name)
				}
			}
		}
	}
	return nil
}

// FirstIntervalName is the name announced before the workout starts.
func (p *Plan) FirstIntervalName() string {
	return p.flat[0][0].Name
}

// LastSetIndex returns the index of the final set
func (p *Plan) LastSetIndex() int {
	return len(p.Sets) - 1
}

// SetIntervals returns the flattened intervals of a set. The slice is
// shared; callers must not modify it.
func (p *Plan) SetIntervals(setIdx int) []Interval {
	return p.flat[setIdx]
}

// NextIntervalName returns what follows interval intervalIdx of set setIdx
// during circuit-repetition circuitNum (1-based): the next interval of the
// set, then a rest sentinel, then NoInterval once the workout is done.
func (p *Plan) NextIntervalName(setIdx, circuitNum, intervalIdx int) string {
	intervals := p.flat[setIdx]
	switch {
	case intervalIdx < len(intervals)-1:
		return intervals[intervalIdx+1].Name
	case circuitNum < p.CircuitsPerSet:
		return RestBetweenCircuits
	case setIdx < p.LastSetIndex():
		return RestBetweenSets
	default:
		return NoInterval
	}
}

// ResolveAfterRest returns the interval that follows a rest sentinel:
// the first interval of the same set after a circuit rest, or of the
// next set after a set rest.
func (p *Plan) ResolveAfterRest(setIdx int, sentinel string) (string, error) {
	if setIdx < 0 || setIdx > p.LastSetIndex() {
		return "", fmt.Errorf("%w: set index %d out of range", ErrInvalidRestSentinel, setIdx)
	}
	switch sentinel {
	case RestBetweenCircuits:
		return p.flat[setIdx][0].Name, nil
	case RestBetweenSets:
		if setIdx == p.LastSetIndex() {
			return "", fmt.Errorf("%w: no set follows set %d", ErrInvalidRestSentinel, setIdx+1)
		}
		return p.flat[setIdx+1][0].Name, nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidRestSentinel, sentinel)
	}
}

// EffectiveDuration returns the interval's own time or its kind default.
func (p *Plan) EffectiveDuration(iv Interval) (int, error) {
	if iv.Seconds > 0 {
		return iv.Seconds, nil
	}
	switch iv.Kind {
	case KindExercise:
		return p.Defaults.Exercise, nil
	case KindRest:
		return p.Defaults.Rest, nil
	case KindSwitch:
		return p.Defaults.Switch, nil
	default:
		return 0, fmt.Errorf("%w %q (interval %q)", ErrUnknownIntervalKind, iv.Kind, iv.Name)
	}
}
