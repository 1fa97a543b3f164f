package speech

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const toneSampleRate = beep.SampleRate(44100)

// tone describes a single sine beep.
type tone struct {
	freq   float64
	length time.Duration
}

var (
	countTone   = tone{freq: 880, length: 150 * time.Millisecond}
	cueTone     = tone{freq: 660, length: 300 * time.Millisecond}
	goTone      = tone{freq: 1320, length: 600 * time.Millisecond}
	toneGainCut = -0.6
)

// ToneSpeaker replaces words with beeps for machines without a TTS
// executable: a short high beep per countdown digit, a longer one for
// spoken cues, and a long bright beep for blocking cues ("START!").
type ToneSpeaker struct {
	logger   *log.Logger
	initOnce sync.Once
	initErr  error
}

func NewToneSpeaker(logger *log.Logger) *ToneSpeaker {
	if logger == nil {
		panic("ToneSpeaker: logger cannot be nil")
	}
	return &ToneSpeaker{logger: logger}
}

// init opens the audio device on first use, so constructing a ToneSpeaker
// on a machine without sound does not fail the whole program.
func (s *ToneSpeaker) init() error {
	s.initOnce.Do(func() {
		if err := speaker.Init(toneSampleRate, toneSampleRate.N(time.Second/10)); err != nil {
			s.initErr = fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
			s.logger.Printf("ToneSpeaker: audio disabled: %v", err)
		}
	})
	return s.initErr
}

func (s *ToneSpeaker) Speak(ctx context.Context, message string, mode Mode) (time.Duration, error) {
	start := time.Now()
	if err := s.init(); err != nil {
		return 0, err
	}

	t := toneFor(message, mode)
	stream, err := t.streamer()
	if err != nil {
		return time.Since(start), err
	}

	if mode == Detached {
		speaker.Play(stream)
		return time.Since(start), nil
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(stream, beep.Callback(func() { close(done) })))
	select {
	case <-done:
	case <-ctx.Done():
		speaker.Clear()
		return time.Since(start), ctx.Err()
	}
	return time.Since(start), nil
}

func toneFor(message string, mode Mode) tone {
	if _, err := strconv.Atoi(message); err == nil {
		return countTone
	}
	if mode == Blocking {
		return goTone
	}
	return cueTone
}

func (t tone) streamer() (beep.Streamer, error) {
	sine, err := generators.SineTone(toneSampleRate, t.freq)
	if err != nil {
		return nil, fmt.Errorf("generating %.0fHz tone: %w", t.freq, err)
	}
	return &effects.Gain{
		Streamer: beep.Take(toneSampleRate.N(t.length), sine),
		Gain:     toneGainCut,
	}, nil
}
