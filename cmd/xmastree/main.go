// Command xmastree shows the Christmas tree greeting card, in a window or a
// terminal, and serves its media.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"christmas-tree/config"
)

type options struct {
	configPath string
	mediaRoot  string
	addr       string
	logLevel   string
	width      int
	height     int
	exportPath string
	seed       int64
}

func main() {
	opts := &options{}
	root := &cobra.Command{
		Use:           "xmastree",
		Short:         "A particle Christmas tree greeting card",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "settings.yaml", "settings file (.yaml, .yml or .json), reloaded on change")
	f.StringVar(&opts.mediaRoot, "media", "public", "media root holding ornaments/ and music/")
	f.StringVar(&opts.addr, "addr", "127.0.0.1:8787", "media and gesture server address, empty to disable")
	f.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	f.IntVar(&opts.width, "width", 1280, "window width")
	f.IntVar(&opts.height, "height", 720, "window height")
	f.StringVar(&opts.exportPath, "export", "tree.glb", "binary glTF path written by the export key")
	f.Int64Var(&opts.seed, "seed", 0, "random seed, 0 picks one from the clock")

	root.AddCommand(
		newRunCmd(opts),
		newTermCmd(opts),
		newServeCmd(opts),
		newExportCmd(opts),
	)
	// The window is the default.
	root.RunE = newRunCmd(opts).RunE

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "xmastree:", err)
		os.Exit(1)
	}
}

func (o *options) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(o.logLevel))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", o.logLevel, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// loadConfig reads the settings file. A corrupt file is logged and the
// defaults are used.
func (o *options) loadConfig(logger *slog.Logger) config.Config {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		logger.Warn("settings unreadable, using defaults", "path", o.configPath, "error", err)
	}
	return cfg
}
