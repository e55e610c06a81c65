package speech

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/voxreader/vox/internal/playback"
)

const (
	openAIDefaultModel = openai.SpeechModelTTS1
	openAIDefaultVoice = "onyx"

	// OpenAI speech accepts speeds from 0.25 to 4.0.
	openAIMaxRate = 4.0

	openAITimeout = 60 * time.Second
)

// candidate WAV-capable players, in preference order.
var playerCandidates = []string{"afplay", "aplay", "ffplay", "mpv"}

// OpenAIConfig configures the OpenAI synthesizer.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	Voice   string
	Player  string // audio player binary override
	BaseURL string // tests
}

// OpenAISynth synthesizes each utterance through the OpenAI speech API and
// plays it with a local audio player subprocess. Pause/resume suspend the
// player; cancel aborts both the request and the player.
type OpenAISynth struct {
	client openai.Client
	model  string
	voice  string
	player string

	mu      sync.Mutex
	cancel  context.CancelFunc
	playCmd *exec.Cmd
	stopped bool
}

// NewOpenAISynth builds the synthesizer and locates an audio player.
func NewOpenAISynth(cfg OpenAIConfig) (*OpenAISynth, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai speech engine requires an API key (OPENAI_API_KEY)")
	}
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Voice == "" {
		cfg.Voice = openAIDefaultVoice
	}

	player := cfg.Player
	if player == "" {
		for _, c := range playerCandidates {
			if _, err := exec.LookPath(c); err == nil {
				player = c
				break
			}
		}
	}
	if player == "" {
		return nil, fmt.Errorf("no audio player found (tried %v)", playerCandidates)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAISynth{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		voice:  cfg.Voice,
		player: player,
	}, nil
}

// Speak synthesizes text at rate and plays the resulting audio. OnStart
// fires when audible playback begins, not when the request is issued.
func (s *OpenAISynth) Speak(text string, rate float64, ev playback.UtteranceEvents) {
	ctx, cancel := context.WithTimeout(context.Background(), openAITimeout)

	s.mu.Lock()
	s.cancel = cancel
	s.stopped = false
	s.mu.Unlock()

	go func() {
		defer cancel()

		speed := rate
		if speed <= 0 {
			speed = 1.0
		}
		if speed > openAIMaxRate {
			speed = openAIMaxRate
		}

		resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
			Input:          text,
			Model:          openai.SpeechModel(s.model),
			Voice:          openai.AudioSpeechNewParamsVoice(s.voice),
			ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
			Speed:          openai.Float(speed),
		})
		if err != nil {
			s.report(ev, fmt.Errorf("openai speech request: %w", err))
			return
		}
		defer resp.Body.Close()

		audioPath, err := writeTempAudio(resp.Body)
		if err != nil {
			s.report(ev, err)
			return
		}
		defer os.Remove(audioPath)

		cmd := exec.Command(s.player, s.playerArgs(audioPath)...)

		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		s.playCmd = cmd
		s.mu.Unlock()

		if err := cmd.Start(); err != nil {
			s.report(ev, fmt.Errorf("starting %s: %w", s.player, err))
			return
		}
		if ev.OnStart != nil {
			ev.OnStart()
		}
		waitErr := cmd.Wait()

		s.mu.Lock()
		cancelled := s.stopped
		if s.playCmd == cmd {
			s.playCmd = nil
		}
		s.mu.Unlock()
		if cancelled {
			return
		}
		if waitErr != nil {
			s.report(ev, fmt.Errorf("%s exited: %w", s.player, waitErr))
			return
		}
		if ev.OnEnd != nil {
			ev.OnEnd()
		}
	}()
}

func (s *OpenAISynth) playerArgs(path string) []string {
	switch s.player {
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}
	case "mpv":
		return []string{"--no-video", "--really-quiet", path}
	default:
		return []string{path}
	}
}

// Pause suspends the player subprocess.
func (s *OpenAISynth) Pause() { s.signal(syscall.SIGSTOP) }

// Resume continues a suspended player subprocess.
func (s *OpenAISynth) Resume() { s.signal(syscall.SIGCONT) }

// Cancel aborts the in-flight request and kills the player.
func (s *OpenAISynth) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	if s.playCmd != nil && s.playCmd.Process != nil {
		_ = s.playCmd.Process.Signal(syscall.SIGCONT)
		_ = s.playCmd.Process.Kill()
	}
}

// MaxRate reports the API's speed ceiling.
func (s *OpenAISynth) MaxRate() float64 { return openAIMaxRate }

func (s *OpenAISynth) report(ev playback.UtteranceEvents, err error) {
	s.mu.Lock()
	cancelled := s.stopped
	s.mu.Unlock()
	if cancelled {
		return
	}
	if ev.OnError != nil {
		ev.OnError(err)
	}
}

func (s *OpenAISynth) signal(sig syscall.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playCmd != nil && s.playCmd.Process != nil {
		_ = s.playCmd.Process.Signal(sig)
	}
}

func writeTempAudio(r io.Reader) (string, error) {
	f, err := os.CreateTemp("", "vox-utterance-*.wav")
	if err != nil {
		return "", fmt.Errorf("creating temp audio file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing audio: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return filepath.Clean(f.Name()), nil
}
