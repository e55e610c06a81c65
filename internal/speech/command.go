package speech

import (
	"fmt"
	"os/exec"
	"sync"
	"syscall"

	"github.com/voxreader/vox/internal/playback"
)

// Words-per-minute the TTS binaries treat as natural speed.
const naturalWPM = 175

const commandMaxRate = 4.0

// candidate TTS binaries, in preference order.
var ttsCandidates = []string{"say", "espeak-ng", "espeak"}

// CommandSynth speaks through a local TTS binary, one subprocess per
// utterance. Pause and resume suspend the subprocess with SIGSTOP/SIGCONT,
// so a paused utterance only completes after Resume.
type CommandSynth struct {
	mu      sync.Mutex
	program string
	voice   string
	cmd     *exec.Cmd
	stopped bool // cancelled; suppress events from the dying process
}

// NewCommandSynth locates a TTS binary (or uses the given override).
func NewCommandSynth(program, voice string) (*CommandSynth, error) {
	if program != "" {
		if _, err := exec.LookPath(program); err != nil {
			return nil, fmt.Errorf("tts command %q not found: %w", program, err)
		}
		return &CommandSynth{program: program, voice: voice}, nil
	}
	for _, c := range ttsCandidates {
		if _, err := exec.LookPath(c); err == nil {
			return &CommandSynth{program: c, voice: voice}, nil
		}
	}
	return nil, fmt.Errorf("no TTS command found (tried %v); install espeak-ng or use --engine silent", ttsCandidates)
}

// Speak vocalizes text at rate (1.0 = natural speed). Events fire from a
// background goroutine, never synchronously.
func (s *CommandSynth) Speak(text string, rate float64, ev playback.UtteranceEvents) {
	cmd := exec.Command(s.program, s.argsFor(text, rate)...)

	s.mu.Lock()
	s.cmd = cmd
	s.stopped = false
	s.mu.Unlock()

	go func() {
		if err := cmd.Start(); err != nil {
			if ev.OnError != nil {
				ev.OnError(fmt.Errorf("starting %s: %w", s.program, err))
			}
			return
		}
		if ev.OnStart != nil {
			ev.OnStart()
		}
		err := cmd.Wait()

		s.mu.Lock()
		cancelled := s.stopped
		if s.cmd == cmd {
			s.cmd = nil
		}
		s.mu.Unlock()
		if cancelled {
			return
		}
		if err != nil {
			if ev.OnError != nil {
				ev.OnError(fmt.Errorf("%s exited: %w", s.program, err))
			}
			return
		}
		if ev.OnEnd != nil {
			ev.OnEnd()
		}
	}()
}

// argsFor maps rate onto the binary's words-per-minute flag. Pitch and
// volume are left at the binary's defaults.
func (s *CommandSynth) argsFor(text string, rate float64) []string {
	if rate <= 0 {
		rate = 1.0
	}
	wpm := int(naturalWPM * rate)
	var args []string
	switch s.program {
	case "say":
		args = []string{"-r", fmt.Sprint(wpm)}
		if s.voice != "" {
			args = append(args, "-v", s.voice)
		}
	default: // espeak and espeak-ng share flags
		args = []string{"-s", fmt.Sprint(wpm)}
		if s.voice != "" {
			args = append(args, "-v", s.voice)
		}
	}
	return append(args, text)
}

// Pause suspends the speaking subprocess.
func (s *CommandSynth) Pause() { s.signal(syscall.SIGSTOP) }

// Resume continues a suspended subprocess.
func (s *CommandSynth) Resume() { s.signal(syscall.SIGCONT) }

// Cancel kills the current utterance's subprocess; its events are
// suppressed.
func (s *CommandSynth) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.cmd != nil && s.cmd.Process != nil {
		// SIGCONT first: a stopped process ignores SIGKILL delivery order
		// quirks on some platforms.
		_ = s.cmd.Process.Signal(syscall.SIGCONT)
		_ = s.cmd.Process.Kill()
	}
}

// MaxRate reports the highest usable rate.
func (s *CommandSynth) MaxRate() float64 { return commandMaxRate }

func (s *CommandSynth) signal(sig syscall.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(sig)
	}
}
