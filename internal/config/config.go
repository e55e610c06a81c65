// Package config loads reader configuration from a YAML file and
// VOX_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Config holds vox configuration.
// Stored at: $HOME/.vox/config.yaml (or --config).
type Config struct {
	Speech SpeechCfg `mapstructure:"speech" yaml:"speech"`
	Server ServerCfg `mapstructure:"server" yaml:"server"`
	Reader ReaderCfg `mapstructure:"reader" yaml:"reader"`
}

// SpeechCfg selects and configures the speech synthesizer.
type SpeechCfg struct {
	Engine  string `mapstructure:"engine" yaml:"engine"`   // "command", "openai", "silent"
	Command string `mapstructure:"command" yaml:"command"` // override TTS binary for "command"
	Voice   string `mapstructure:"voice" yaml:"voice"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	Model   string `mapstructure:"model" yaml:"model"`
	Player  string `mapstructure:"player" yaml:"player"` // override audio player for "openai"
}

// ServerCfg configures the processing service and the client's view of it.
type ServerCfg struct {
	Port          string `mapstructure:"port" yaml:"port"`
	URL           string `mapstructure:"url" yaml:"url"` // base URL for remote processing
	UploadDir     string `mapstructure:"upload_dir" yaml:"upload_dir"`
	ExtractImages bool   `mapstructure:"extract_images" yaml:"extract_images"`
}

// ReaderCfg holds playback defaults.
type ReaderCfg struct {
	Rate            float64 `mapstructure:"rate" yaml:"rate"`
	WordGapMS       int     `mapstructure:"word_gap_ms" yaml:"word_gap_ms"`
	SkipBoilerplate bool    `mapstructure:"skip_boilerplate" yaml:"skip_boilerplate"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Speech: SpeechCfg{
			Engine: "command",
			APIKey: "${OPENAI_API_KEY}",
			Model:  "gpt-4o-mini-tts",
			Voice:  "",
		},
		Server: ServerCfg{
			Port:          "8000",
			URL:           "http://localhost:8000",
			ExtractImages: true,
		},
		Reader: ReaderCfg{
			Rate:            1.0,
			WordGapMS:       200,
			SkipBoilerplate: true,
		},
	}
}

// Load reads configuration from cfgFile (or the default search paths) and
// the environment.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("speech", map[string]any{
		"engine":  defaults.Speech.Engine,
		"api_key": defaults.Speech.APIKey,
		"model":   defaults.Speech.Model,
	})
	v.SetDefault("server", map[string]any{
		"port":           defaults.Server.Port,
		"url":            defaults.Server.URL,
		"extract_images": defaults.Server.ExtractImages,
	})
	v.SetDefault("reader", map[string]any{
		"rate":             defaults.Reader.Rate,
		"word_gap_ms":      defaults.Reader.WordGapMS,
		"skip_boilerplate": defaults.Reader.SkipBoilerplate,
	})

	v.SetEnvPrefix("VOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.vox")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRef.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}
