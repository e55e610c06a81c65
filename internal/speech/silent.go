package speech

import (
	"sync"
	"time"

	"github.com/voxreader/vox/internal/playback"
)

const (
	silentBaseDelay    = 60 * time.Millisecond
	silentPerCharDelay = 25 * time.Millisecond
	silentMaxRate      = 8.0
)

// SilentSynth produces no audio: each utterance "speaks" for a duration
// proportional to its length and inversely proportional to rate. It backs
// the highlight-only reading mode and the engine's scenario tests.
type SilentSynth struct {
	mu        sync.Mutex
	gen       uint64
	timer     *time.Timer
	remaining time.Duration
	startedAt time.Time
	ev        playback.UtteranceEvents
	paused    bool
}

// NewSilentSynth creates a silent synthesizer.
func NewSilentSynth() *SilentSynth {
	return &SilentSynth{}
}

// Speak schedules the utterance's start and end events.
func (s *SilentSynth) Speak(text string, rate float64, ev playback.UtteranceEvents) {
	if rate <= 0 {
		rate = 1.0
	}
	d := time.Duration(float64(silentBaseDelay+time.Duration(len(text))*silentPerCharDelay) / rate)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.ev = ev
	s.paused = false
	s.remaining = d
	s.mu.Unlock()

	go func() {
		if ev.OnStart != nil {
			ev.OnStart()
		}
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.startedAt = time.Now()
		s.timer = time.AfterFunc(d, func() { s.fireEnd(gen) })
		s.mu.Unlock()
	}()
}

func (s *SilentSynth) fireEnd(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.paused {
		s.mu.Unlock()
		return
	}
	ev := s.ev
	s.timer = nil
	s.mu.Unlock()
	if ev.OnEnd != nil {
		ev.OnEnd()
	}
}

// Pause freezes the utterance clock.
func (s *SilentSynth) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused || s.timer == nil {
		return
	}
	s.paused = true
	s.timer.Stop()
	elapsed := time.Since(s.startedAt)
	if elapsed < s.remaining {
		s.remaining -= elapsed
	} else {
		s.remaining = time.Millisecond
	}
}

// Resume restarts the clock with the time the utterance had left.
func (s *SilentSynth) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return
	}
	s.paused = false
	s.startedAt = time.Now()
	gen := s.gen
	s.timer = time.AfterFunc(s.remaining, func() { s.fireEnd(gen) })
}

// Cancel discards the current utterance.
func (s *SilentSynth) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.paused = false
}

// MaxRate is generous: nothing audible constrains it.
func (s *SilentSynth) MaxRate() float64 { return silentMaxRate }
