package trainer

import (
	"context"
	"log"
	"strconv"
	"sync"

	"github.com/lowaak/tabata-timer/internal/events"
	"github.com/lowaak/tabata-timer/internal/go_func_utils"
	"github.com/lowaak/tabata-timer/internal/workout"
)

// WorkoutState is everything a view needs to draw the run
type WorkoutState struct {
	Status   RunStatus
	PlanName string

	// Phase is the phase being counted down. Before the start key it is
	// empty, with SetIndex -1.
	Phase      workout.Phase
	PhaseIndex int
	PhaseCount int
	Remaining  int

	Sets           int
	CircuitsPerSet int

	Err error // set with RunStatusFailed
}

// SetCircuitLine is the "set/circuit" status text, e.g. "2/3", with NONE
// for either part outside a set.
func (s WorkoutState) SetCircuitLine() string {
	set, circuit := "NONE", "NONE"
	if s.Phase.SetIndex >= 0 {
		set = strconv.Itoa(s.Phase.SetIndex + 1)
	}
	if s.Phase.CircuitNum > 0 {
		circuit = strconv.Itoa(s.Phase.CircuitNum)
	}
	return set + "/" + circuit
}

// CurrentLabel and NextLabel are the status-line texts.
func (s WorkoutState) CurrentLabel() string { return phaseLabel(s.Phase.Label) }
func (s WorkoutState) NextLabel() string    { return phaseLabel(s.Phase.Upcoming) }

type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	workoutStateEvent     *events.ChannelEvent[WorkoutState]
	workoutState          WorkoutState
	statusEvent           *events.CallbackEvent[RunStatus]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
}

const maxLogLines = 1000

func NewUIModel(logger *log.Logger, uiLogChan <-chan string) *UIModel {
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false),
		workoutStateEvent:     events.NewChannelEvent[WorkoutState](true),
		workoutState:          WorkoutState{Status: RunStatusWaitingToStart},
		statusEvent:           events.NewCallbackEvent[RunStatus](true),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true),
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                logger,
	}

	go_func_utils.SafeGoWG(&model.wg, logger, "UIModel log reader", func() {
		model.readFromLogChannel(ctx, uiLogChan)
	})

	return model
}

// Shutdown stops the log reader and waits for it
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive each new log line.
// Returns a deregistration function.
func (m *UIModel) ListenToLog(ch chan string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToWorkoutState registers a channel for workout state changes. The
// latest state is replayed on registration.
func (m *UIModel) ListenToWorkoutState(ch chan WorkoutState) func() {
	return m.workoutStateEvent.Listen(ch)
}

// ListenToStatus calls fn on every status transition, and at once with
// the current status.
func (m *UIModel) ListenToStatus(fn func(RunStatus)) func() {
	return m.statusEvent.Listen(fn)
}

func (m *UIModel) ListenToCloseApplication(ch chan struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals the view to stop
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

func (m *UIModel) GetWorkoutState() WorkoutState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workoutState
}

// SetWorkoutState replaces the whole state.
func (m *UIModel) SetWorkoutState(state WorkoutState) {
	m.UpdateWorkoutState(func(s *WorkoutState) { *s = state })
}

// UpdateWorkoutState applies fn under the model lock and notifies
// listeners with the result. Status listeners only hear about changes.
func (m *UIModel) UpdateWorkoutState(fn func(*WorkoutState)) {
	m.mu.Lock()
	before := m.workoutState.Status
	fn(&m.workoutState)
	state := m.workoutState
	m.mu.Unlock()

	m.workoutStateEvent.Notify(state)
	if state.Status != before {
		m.statusEvent.Notify(state.Status)
	}
}

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}
			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()
			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns up to n of the most recent log lines
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()
	if n <= 0 {
		return nil
	}
	if n > len(m.logLines) {
		n = len(m.logLines)
	}
	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}
