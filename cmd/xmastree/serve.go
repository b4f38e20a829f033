package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"christmas-tree/config"
	"christmas-tree/gesture"
	"christmas-tree/media"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the ornament listing, media files and gesture stream only",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			if opts.addr == "" {
				return errors.New("serve needs --addr")
			}
			lib := media.Library{Root: opts.mediaRoot}
			return listen(cmd.Context(), opts.addr, media.NewServer(lib, gesture.NewSource(logger), logger), logger)
		},
	}
}

// listen serves h on addr until ctx is done, then shuts down gracefully.
func listen(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("media server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("media server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown media server: %w", err)
	}
	logger.Info("media server stopped")
	return nil
}

// services are the background pieces shared by the window and terminal
// front ends.
type services struct {
	lib      media.Library
	gestures *gesture.Source
	configs  <-chan config.Config
	media    <-chan []media.File
	files    []media.File
}

// startServices scans the ornament folder, starts the settings and folder
// watchers and, when an address is set, the media server. Failures are
// logged and the matching feature stays off.
func startServices(ctx context.Context, opts *options, logger *slog.Logger) *services {
	s := &services{lib: media.Library{Root: opts.mediaRoot}}

	files, err := s.lib.Scan()
	if err != nil {
		logger.Warn("scan ornaments", "dir", s.lib.OrnamentsDir(), "error", err)
	}
	s.files = files

	if s.configs, err = config.Watch(ctx, opts.configPath, logger); err != nil {
		logger.Warn("settings reload disabled", "error", err)
	}
	if s.media, err = media.Watch(ctx, s.lib.OrnamentsDir(), logger); err != nil {
		logger.Warn("ornament folder watch disabled", "error", err)
	}

	if opts.addr != "" {
		s.gestures = gesture.NewSource(logger)
		srv := media.NewServer(s.lib, s.gestures, logger)
		go func() {
			if err := listen(ctx, opts.addr, srv, logger); err != nil {
				logger.Error("media server", "error", err)
			}
		}()
	}
	return s
}
