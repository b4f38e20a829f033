package main

import (
	"github.com/spf13/cobra"

	"christmas-tree/app"
	"christmas-tree/media"
	"christmas-tree/scene"
)

func newExportCmd(opts *options) *cobra.Command {
	var withImages bool
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Build a tree from the settings and write it as binary glTF",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			path := opts.exportPath
			if len(args) == 1 {
				path = args[0]
			}
			lib := media.Library{Root: opts.mediaRoot}
			o := app.Options{
				Library:    lib,
				ExportPath: path,
				Seed:       opts.seed,
				Logger:     logger,
			}
			if !withImages {
				o.Loader = scene.NewPlaceholderTexture
			}
			a := app.New(opts.loadConfig(logger), o)
			defer a.Close()
			if files, err := lib.Scan(); err == nil && len(files) > 0 {
				a.SetMedia(files)
			}
			return a.Export()
		},
	}
	cmd.Flags().BoolVar(&withImages, "images", true, "embed the ornament pictures, otherwise placeholders")
	return cmd
}
