package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"christmas-tree/app"
	"christmas-tree/scene"
	"christmas-tree/termview"
)

func newTermCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Show the greeting card in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			cfg := opts.loadConfig(logger)

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer screen.Fini()
			screen.EnableMouse()
			screen.HideCursor()

			svc := startServices(ctx, opts, logger)
			// Terminal cells are too coarse for ornament pictures.
			a := app.New(cfg, app.Options{
				Library:    svc.lib,
				Loader:     scene.NewPlaceholderTexture,
				Gestures:   svc.gestures,
				Configs:    svc.configs,
				Media:      svc.media,
				ExportPath: opts.exportPath,
				Seed:       opts.seed,
				Logger:     logger,
			})
			defer a.Close()
			if len(svc.files) > 0 {
				a.SetMedia(svc.files)
			}
			return termview.New(screen, a, logger).Run(ctx)
		},
	}
}
