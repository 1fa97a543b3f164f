package countdown

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/tabata-timer/internal/speech"
)

type spoken struct {
	message string
	mode    speech.Mode
}

type fakeSpeaker struct {
	mu      sync.Mutex
	calls   []spoken
	elapsed map[string]time.Duration
	err     error
}

func (s *fakeSpeaker) Speak(_ context.Context, message string, mode speech.Mode) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, spoken{message: message, mode: mode})
	return s.elapsed[message], s.err
}

func (s *fakeSpeaker) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.message)
	}
	return out
}

type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	return ctx.Err()
}

type recorder struct {
	mu     sync.Mutex
	ticks  []int
	pauses []bool
	onTick func(int)
}

func (r *recorder) OnTick(remaining int) {
	r.mu.Lock()
	r.ticks = append(r.ticks, remaining)
	hook := r.onTick
	r.mu.Unlock()
	if hook != nil {
		hook(remaining)
	}
}

func (r *recorder) OnPauseChanged(paused bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauses = append(r.pauses, paused)
}

func newTestEngine(sp speech.Speaker, clock Clock, control *Control) (*Engine, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewEngine(NewEngineArg{
		Speaker: sp,
		Clock:   clock,
		Control: control,
		Logger:  log.New(&buf, "", 0),
	}), &buf
}

func TestRun_ThreeSeconds(t *testing.T) {
	sp := &fakeSpeaker{}
	clock := &fakeClock{}
	engine, _ := newTestEngine(sp, clock, nil)
	rec := &recorder{}

	outcome, err := engine.Run(context.Background(), 3, nil, rec)
	require.NoError(t, err)
	assert.Equal(t, Completed, outcome)
	assert.Equal(t, []int{3, 2, 1, 0}, rec.ticks)
	assert.Equal(t, []string{"3", "2", "1"}, sp.messages())
	for _, c := range sp.calls {
		assert.Equal(t, speech.Detached, c.mode)
	}
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, clock.sleeps)
}

func TestRun_AnnouncementsAndFinalCountdownPrecedence(t *testing.T) {
	sp := &fakeSpeaker{}
	engine, _ := newTestEngine(sp, &fakeClock{}, nil)
	rec := &recorder{}

	announcements := map[int]string{15: "get ready", 10: "", 4: "ignored"}
	outcome, err := engine.Run(context.Background(), 20, announcements, rec)
	require.NoError(t, err)
	assert.Equal(t, Completed, outcome)
	require.Len(t, rec.ticks, 21)
	assert.Equal(t, 20, rec.ticks[0])
	assert.Equal(t, 0, rec.ticks[20])

	assert.Equal(t, []string{
		"15 seconds. get ready",
		"10 seconds.",
		"5", "4", "3", "2", "1",
	}, sp.messages())
}

func TestRun_SleepCompensatesSpeechTime(t *testing.T) {
	sp := &fakeSpeaker{elapsed: map[string]time.Duration{
		"3": 300 * time.Millisecond,
		"2": 1500 * time.Millisecond,
	}}
	clock := &fakeClock{}
	engine, _ := newTestEngine(sp, clock, nil)

	_, err := engine.Run(context.Background(), 3, nil, &recorder{})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{700 * time.Millisecond, 0, time.Second}, clock.sleeps)
}

func TestRun_SpeechFailureDoesNotAbort(t *testing.T) {
	sp := &fakeSpeaker{
		err:     errors.New("espeak: not found"),
		elapsed: map[string]time.Duration{"2": 400 * time.Millisecond},
	}
	clock := &fakeClock{}
	engine, logs := newTestEngine(sp, clock, nil)
	rec := &recorder{}

	outcome, err := engine.Run(context.Background(), 2, nil, rec)
	require.NoError(t, err)
	assert.Equal(t, Completed, outcome)
	assert.Equal(t, []int{2, 1, 0}, rec.ticks)
	// failed calls count as taking no time
	assert.Equal(t, []time.Duration{time.Second, time.Second}, clock.sleeps)
	assert.Contains(t, logs.String(), "espeak: not found")
}

func TestRun_PauseStopsTheClock(t *testing.T) {
	sp := &fakeSpeaker{}
	clock := &fakeClock{}
	control := NewControl()
	engine, _ := newTestEngine(sp, clock, control)

	resumed := make(chan struct{})
	rec := &recorder{}
	rec.onTick = func(remaining int) {
		if remaining == 10 {
			control.Pause()
			go func() {
				time.Sleep(50 * time.Millisecond)
				close(resumed)
				control.Resume()
			}()
		}
	}

	outcome, err := engine.Run(context.Background(), 12, map[int]string{11: "", 10: "halfway"}, rec)
	require.NoError(t, err)
	assert.Equal(t, Completed, outcome)

	select {
	case <-resumed:
	default:
		t.Fatal("run finished without waiting for resume")
	}

	expected := []int{12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	assert.Equal(t, expected, rec.ticks, "no seconds skipped or repeated")
	assert.Equal(t, []bool{true, false}, rec.pauses)
	// the tick at 10 speaks once, after resume
	assert.Equal(t, []string{"11 seconds.", "10 seconds. halfway", "5", "4", "3", "2", "1"}, sp.messages())
	assert.Len(t, clock.sleeps, 12)
}

func TestRun_CancelledWhilePaused(t *testing.T) {
	sp := &fakeSpeaker{}
	control := NewControl()
	engine, _ := newTestEngine(sp, &fakeClock{}, control)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &recorder{}
	rec.onTick = func(remaining int) {
		if remaining == 8 {
			control.Pause()
			go cancel()
		}
	}

	outcome, err := engine.Run(ctx, 10, nil, rec)
	require.NoError(t, err)
	assert.Equal(t, Cancelled, outcome)
	assert.Equal(t, []int{10, 9, 8}, rec.ticks)
	assert.Empty(t, sp.messages())
}

func TestRun_CancelledBetweenTicks(t *testing.T) {
	sp := &fakeSpeaker{}
	engine, _ := newTestEngine(sp, &fakeClock{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	rec.onTick = func(remaining int) {
		if remaining == 7 {
			cancel()
		}
	}

	outcome, err := engine.Run(ctx, 9, nil, rec)
	require.NoError(t, err)
	assert.Equal(t, Cancelled, outcome)
	assert.Equal(t, []int{9, 8, 7}, rec.ticks, "no final zero render after cancel")
}

func TestRun_DurationBounds(t *testing.T) {
	sp := &fakeSpeaker{}
	engine, _ := newTestEngine(sp, &fakeClock{}, nil)
	rec := &recorder{}

	outcome, err := engine.Run(context.Background(), DefaultMaxSeconds+1, nil, rec)
	assert.ErrorIs(t, err, ErrDurationOutOfRange)
	assert.Equal(t, NotRun, outcome)

	_, err = engine.Run(context.Background(), -1, nil, rec)
	assert.ErrorIs(t, err, ErrDurationOutOfRange)
	assert.Empty(t, rec.ticks)

	outcome, err = engine.Run(context.Background(), 0, nil, rec)
	require.NoError(t, err)
	assert.Equal(t, Completed, outcome)
	assert.Equal(t, []int{0}, rec.ticks)
	assert.Empty(t, sp.messages())

	capped := NewEngine(NewEngineArg{Speaker: sp, Clock: &fakeClock{}, Logger: log.New(&bytes.Buffer{}, "", 0), MaxSeconds: 60})
	_, err = capped.Run(context.Background(), 61, nil, rec)
	assert.ErrorIs(t, err, ErrDurationOutOfRange)
	assert.ErrorIs(t, capped.CheckDuration(61), ErrDurationOutOfRange)
	assert.NoError(t, capped.CheckDuration(60))
}

func TestCheckDuration(t *testing.T) {
	assert.NoError(t, CheckDuration(0, 0))
	assert.NoError(t, CheckDuration(DefaultMaxSeconds, 0))
	assert.ErrorIs(t, CheckDuration(DefaultMaxSeconds+1, 0), ErrDurationOutOfRange)
	assert.ErrorIs(t, CheckDuration(-1, 0), ErrDurationOutOfRange)
	assert.NoError(t, CheckDuration(7200, 9999))
	assert.ErrorIs(t, CheckDuration(11, 10), ErrDurationOutOfRange)
}

func TestAnnouncementFor(t *testing.T) {
	msg, ok := AnnouncementFor(30, map[int]string{30: "Get ready for Squats!"})
	assert.True(t, ok)
	assert.Equal(t, "30 seconds. Get ready for Squats!", msg)

	msg, ok = AnnouncementFor(15, map[int]string{15: ""})
	assert.True(t, ok)
	assert.Equal(t, "15 seconds.", msg)

	msg, ok = AnnouncementFor(5, map[int]string{5: "soon"})
	assert.True(t, ok)
	assert.Equal(t, "5", msg)

	_, ok = AnnouncementFor(14, map[int]string{15: ""})
	assert.False(t, ok)
}

func TestControl_DrainKeepsLatest(t *testing.T) {
	c := NewControl()
	assert.False(t, c.pauseRequested())

	c.Pause()
	c.Resume()
	assert.False(t, c.pauseRequested())

	c.Resume()
	c.Pause()
	assert.True(t, c.pauseRequested())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.waitResume(ctx), context.Canceled)
}

func TestRealClock_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := RealClock().Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
