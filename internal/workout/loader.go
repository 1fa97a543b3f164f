package workout

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingField means a required top-level key is absent from the file.
	ErrMissingField = errors.New("missing required field")
	// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported workout file format")
)

// intervalDoc is one interval entry as written in a workout file.
type intervalDoc struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Time *int   `json:"time,omitempty" yaml:"time,omitempty"`
}

// document mirrors the on-disk layout. Either Circuits (one circuit per
// set) or Sets (several circuits per set) must be present.
type document struct {
	Name                 string            `json:"name" yaml:"name"`
	StartTime            *int              `json:"start_time" yaml:"start_time"`
	IntervalExerciseTime *int              `json:"interval_exercise_time" yaml:"interval_exercise_time"`
	IntervalRestTime     *int              `json:"interval_rest_time" yaml:"interval_rest_time"`
	IntervalSwitchTime   *int              `json:"interval_switch_time" yaml:"interval_switch_time"`
	CircuitsPerSet       *int              `json:"circuits_per_set" yaml:"circuits_per_set"`
	CircuitRestTime      *int              `json:"circuit_rest_time,omitempty" yaml:"circuit_rest_time,omitempty"`
	SetRestTime          *int              `json:"set_rest_time" yaml:"set_rest_time"`
	Circuits             [][]intervalDoc   `json:"circuits,omitempty" yaml:"circuits,omitempty"`
	Sets                 [][][]intervalDoc `json:"sets,omitempty" yaml:"sets,omitempty"`
}

// LoadFile reads and validates a workout file. The format is chosen by
// extension: .json, .yaml or .yml.
func LoadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workout %s: %w", path, err)
	}
	plan, err := Parse(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("loading workout %s: %w", path, err)
	}
	if plan.Name == "" {
		plan.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return plan, nil
}

// Format of a workout document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return Format(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Parse decodes a workout document and builds a validated Plan.
func Parse(data []byte, format Format) (*Plan, error) {
	var doc document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
	return doc.plan()
}

func (d *document) plan() (*Plan, error) {
	required := []struct {
		key string
		val *int
	}{
		{"start_time", d.StartTime},
		{"interval_exercise_time", d.IntervalExerciseTime},
		{"interval_rest_time", d.IntervalRestTime},
		{"interval_switch_time", d.IntervalSwitchTime},
		{"circuits_per_set", d.CircuitsPerSet},
		{"set_rest_time", d.SetRestTime},
	}
	for _, r := range required {
		if r.val == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, r.key)
		}
	}

	var sets []Set
	switch {
	case len(d.Sets) > 0 && len(d.Circuits) > 0:
		return nil, fmt.Errorf("%w: both circuits and sets given", ErrInvalidPlan)
	case len(d.Sets) > 0:
		for si, docSet := range d.Sets {
			set := Set{}
			for ci, docCircuit := range docSet {
				c, err := convertCircuit(docCircuit, si, ci)
				if err != nil {
					return nil, err
				}
				set.Circuits = append(set.Circuits, c)
			}
			sets = append(sets, set)
		}
	case len(d.Circuits) > 0:
		for si, docCircuit := range d.Circuits {
			c, err := convertCircuit(docCircuit, si, 0)
			if err != nil {
				return nil, err
			}
			sets = append(sets, Set{Circuits: []Circuit{c}})
		}
	default:
		return nil, fmt.Errorf("%w: circuits", ErrMissingField)
	}

	circuitRest := 0
	if d.CircuitRestTime != nil {
		if *d.CircuitRestTime <= 0 {
			return nil, fmt.Errorf("%w: circuit_rest_time must be positive, got %d", ErrInvalidPlan, *d.CircuitRestTime)
		}
		circuitRest = *d.CircuitRestTime
	}

	return NewPlan(Plan{
		Name:       d.Name,
		StartDelay: *d.StartTime,
		Defaults: Defaults{
			Exercise: *d.IntervalExerciseTime,
			Rest:     *d.IntervalRestTime,
			Switch:   *d.IntervalSwitchTime,
		},
		CircuitsPerSet: *d.CircuitsPerSet,
		CircuitRest:    circuitRest,
		SetRest:        *d.SetRestTime,
		Sets:           sets,
	})
}

func convertCircuit(docs []intervalDoc, si, ci int) (Circuit, error) {
	c := Circuit{Intervals: make([]Interval, 0, len(docs))}
	for ii, doc := range docs {
		iv := Interval{Name: doc.Name, Kind: IntervalKind(doc.Type)}
		if doc.Time != nil {
			if *doc.Time <= 0 {
				return Circuit{}, fmt.Errorf("%w: set %d circuit %d interval %d time must be positive, got %d",
					ErrInvalidPlan, si+1, ci+1, ii+1, *doc.Time)
			}
			iv.Seconds = *doc.Time
		}
		c.Intervals = append(c.Intervals, iv)
	}
	return c, nil
}
