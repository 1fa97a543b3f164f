package trainer

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// PlainUIViewImpl implements UIViewImpl as line-oriented colored output,
// for pipes and terminals where a full-screen UI is unwanted. It has no
// keyboard input; cmd starts the workout and SIGINT quits it.
type PlainUIViewImpl struct {
	logger         *log.Logger
	out            io.Writer
	redZoneSeconds int

	mu            sync.Mutex
	lastPhase     int
	lastRemaining int
	lastStatus    RunStatus
	stopped       chan struct{}
	stopOnce      sync.Once

	label *color.Color
	value *color.Color
	red   *color.Color
	ok    *color.Color
}

type NewPlainUIViewArg struct {
	Logger         *log.Logger
	Out            io.Writer
	RedZoneSeconds int
}

func NewPlainUIView(arg NewPlainUIViewArg) *PlainUIViewImpl {
	if arg.Logger == nil {
		panic("PlainUIViewImpl: logger cannot be nil")
	}
	if arg.Out == nil {
		panic("PlainUIViewImpl: out cannot be nil")
	}
	return &PlainUIViewImpl{
		logger:         arg.Logger,
		out:            arg.Out,
		redZoneSeconds: arg.RedZoneSeconds,
		lastPhase:      -1,
		lastRemaining:  -1,
		lastStatus:     RunStatusWaitingToStart,
		stopped:        make(chan struct{}),
		label:          color.New(color.FgHiBlack),
		value:          color.New(color.FgCyan, color.Bold),
		red:            color.New(color.FgRed, color.Bold),
		ok:             color.New(color.FgGreen),
	}
}

func (ui *PlainUIViewImpl) Initialize(controller *UIController) {
	fmt.Fprintf(ui.out, "%s %s\n", ui.value.Sprint(Title), ui.label.Sprint(Version))
}

func (ui *PlainUIViewImpl) SetupKeyboardHandlers(controller *UIController) {}

// UpdateWorkoutState prints a header when the phase changes, then one
// clock line per tick.
func (ui *PlainUIViewImpl) UpdateWorkoutState(state WorkoutState) {
	ui.mu.Lock()
	defer ui.mu.Unlock()

	if state.Status == RunStatusWaitingToStart {
		return
	}

	if state.PhaseIndex != ui.lastPhase && !state.Status.Terminal() {
		ui.lastPhase = state.PhaseIndex
		ui.lastRemaining = -1
		fmt.Fprintf(ui.out, "\n%s %s  %s %s  %s %s\n",
			ui.label.Sprint("SET/CIRCUIT"), ui.value.Sprint(state.SetCircuitLine()),
			ui.label.Sprint("CURRENT"), ui.value.Sprint(strings.ToUpper(state.CurrentLabel())),
			ui.label.Sprint("NEXT"), ui.value.Sprint(strings.ToUpper(state.NextLabel())),
		)
	}

	if state.Status != ui.lastStatus {
		ui.lastStatus = state.Status
		switch state.Status {
		case RunStatusPaused:
			fmt.Fprintln(ui.out, ui.label.Sprint("  paused"))
		case RunStatusFinished:
			fmt.Fprintln(ui.out, ui.ok.Sprint("Workout complete"))
			return
		case RunStatusCancelled:
			fmt.Fprintln(ui.out, ui.label.Sprint("Workout cancelled"))
			return
		case RunStatusFailed:
			fmt.Fprintln(ui.out, ui.red.Sprintf("Workout failed: %v", state.Err))
			return
		}
	}
	if state.Status.Terminal() || state.Status == RunStatusPaused || state.Remaining == ui.lastRemaining {
		return
	}
	ui.lastRemaining = state.Remaining

	clock := FormatClock(state.Remaining)
	if state.Remaining > 0 && state.Remaining <= ui.redZoneSeconds {
		clock = ui.red.Sprint(clock)
	}
	fmt.Fprintf(ui.out, "  %s\n", clock)
}

func (ui *PlainUIViewImpl) GetLogViewHeight() int          { return 0 }
func (ui *PlainUIViewImpl) ClearLogView()                  {}
func (ui *PlainUIViewImpl) WriteLogLine(line string) error { return nil }
func (ui *PlainUIViewImpl) Draw() error                    { return nil }

// Run blocks until Stop.
func (ui *PlainUIViewImpl) Run() error {
	<-ui.stopped
	return nil
}

func (ui *PlainUIViewImpl) Stop() {
	ui.stopOnce.Do(func() { close(ui.stopped) })
}
