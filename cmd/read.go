package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/voxreader/vox/internal/config"
	"github.com/voxreader/vox/internal/document"
	"github.com/voxreader/vox/internal/gui"
	"github.com/voxreader/vox/internal/ingest"
	"github.com/voxreader/vox/internal/playback"
	"github.com/voxreader/vox/internal/speech"
	"github.com/voxreader/vox/internal/tui"
	"github.com/voxreader/vox/internal/upload"
)

func newReadCmd(cfgFile *string) *cobra.Command {
	var (
		engineName string
		voice      string
		serverURL  string
		rate       float64
		remote     bool
		useGUI     bool
	)

	cmd := &cobra.Command{
		Use:   "read <file>",
		Short: "Read a document aloud with word-level highlighting",
		Long: `Opens the interactive reader for a document.

PDF, EPUB, Markdown, and plain text files are loaded locally by default.
With --remote, PDFs are uploaded to the processing service instead, which
also extracts page images and detects repeated headers and footers.`,
		Example: `  # Read a file with the default speech engine
  vox read book.epub

  # Read a PDF through the processing service
  vox read --remote paper.pdf

  # Silent run at double speed
  vox read --engine silent --rate 2 notes.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}
			if engineName != "" {
				cfg.Speech.Engine = engineName
			}
			if voice != "" {
				cfg.Speech.Voice = voice
			}
			if serverURL != "" {
				cfg.Server.URL = serverURL
			}
			if rate > 0 {
				cfg.Reader.Rate = rate
			}
			return runRead(cmd.Context(), cfg, args[0], remote, useGUI)
		},
	}

	cmd.Flags().StringVar(&engineName, "engine", "", "speech engine: command, openai, silent")
	cmd.Flags().StringVar(&voice, "voice", "", "voice name for the speech engine")
	cmd.Flags().StringVar(&serverURL, "server", "", "processing service base URL")
	cmd.Flags().Float64Var(&rate, "rate", 0, "initial speech rate (e.g. 1.5)")
	cmd.Flags().BoolVar(&remote, "remote", false, "process PDFs through the vox service")
	cmd.Flags().BoolVar(&useGUI, "gui", false, "open the desktop window (requires a gui build)")

	return cmd
}

func runRead(ctx context.Context, cfg *config.Config, path string, remote, useGUI bool) error {
	synth, err := speech.New(speech.Config{
		Engine:  cfg.Speech.Engine,
		Command: cfg.Speech.Command,
		Voice:   cfg.Speech.Voice,
		APIKey:  config.ResolveEnvVars(cfg.Speech.APIKey),
		Model:   cfg.Speech.Model,
		Player:  cfg.Speech.Player,
	})
	if err != nil {
		return err
	}

	loader := func() (*document.Document, error) {
		if remote {
			if !strings.EqualFold(filepath.Ext(path), ".pdf") {
				return nil, fmt.Errorf("--remote only applies to PDFs")
			}
			return upload.NewClient(cfg.Server.URL).Upload(ctx, path)
		}
		return ingest.Load(path)
	}

	wordGap := playback.WithWordGap(time.Duration(cfg.Reader.WordGapMS) * time.Millisecond)
	title := filepath.Base(path)

	if useGUI {
		events := make(chan playback.Event, 64)
		engine := playback.NewEngine(synth, func(ev playback.Event) { events <- ev }, wordGap)
		applyReaderDefaults(engine, cfg)
		return gui.Run(engine, events, gui.Loader(loader), title)
	}

	relay := tui.NewRelay()
	engine := playback.NewEngine(synth, relay.Notify, wordGap)
	applyReaderDefaults(engine, cfg)

	m := tui.New(engine, loader, title)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	relay.Attach(p)

	_, err = p.Run()
	return err
}

func applyReaderDefaults(engine *playback.Engine, cfg *config.Config) {
	if cfg.Reader.Rate > 0 {
		engine.SetRate(cfg.Reader.Rate)
	}
	if !cfg.Reader.SkipBoilerplate {
		engine.SetWordSource(false)
	}
}
