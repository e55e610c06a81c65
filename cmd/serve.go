package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxreader/vox/internal/config"
	"github.com/voxreader/vox/internal/process"
	"github.com/voxreader/vox/internal/server"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the document processing service",
		Long: `Starts the HTTP service that turns uploaded PDFs into the document
model used by the reader: per-page text, word positions, page images,
and detected header/footer patterns.`,
		Example: `  # Start on the default port 8000
  vox serve

  # Start on a custom port
  vox serve --port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	processor := process.NewProcessor(logger, cfg.Server.ExtractImages)
	handler := server.New(logger, processor, cfg.Server.UploadDir)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: handler.Routes(),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("vox processing service listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
			return err
		}
		logger.Info("stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}
