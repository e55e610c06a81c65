// Package speech provides Synthesizer implementations: local TTS binaries,
// OpenAI speech synthesis, and a silent timed engine for tests and
// audio-less reading.
package speech

import (
	"fmt"

	"github.com/voxreader/vox/internal/playback"
)

// Config selects and configures a synthesizer.
type Config struct {
	Engine  string // "command" (default), "openai", "silent"
	Command string // TTS binary override for the command engine
	Voice   string // voice name where the engine supports one
	APIKey  string // openai engine
	Model   string // openai engine
	Player  string // audio player override for the openai engine
}

// New builds the configured synthesizer.
func New(cfg Config) (playback.Synthesizer, error) {
	switch cfg.Engine {
	case "", "command":
		return NewCommandSynth(cfg.Command, cfg.Voice)
	case "openai":
		return NewOpenAISynth(OpenAIConfig{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Voice:  cfg.Voice,
			Player: cfg.Player,
		})
	case "silent":
		return NewSilentSynth(), nil
	}
	return nil, fmt.Errorf("unknown speech engine %q", cfg.Engine)
}
