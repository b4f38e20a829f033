package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"christmas-tree/app"
	"christmas-tree/audio"
	"christmas-tree/core"
	"christmas-tree/renderer"
)

func newRunCmd(opts *options) *cobra.Command {
	var showHUD bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the greeting card in a window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWindow(cmd, opts, showHUD)
		},
	}
	cmd.Flags().BoolVar(&showHUD, "hud", false, "show frame statistics")
	return cmd
}

// glfwKeys maps window keys to app commands.
var glfwKeys = map[int]app.Key{
	core.KeyEscape: app.KeyEscape,
	core.KeySpace:  app.KeyFullscreen,
	core.KeyD:      app.KeyDrawSnow,
	core.KeyE:      app.KeyExport,
	core.KeyG:      app.KeyGesture,
	core.KeyM:      app.KeyMusic,
	core.KeyN:      app.KeyNextTrack,
	core.KeyR:      app.KeyRebuild,
	core.KeyS:      app.KeyStyle,
	core.KeyQ:      app.KeyQuit,
}

// scrollStep is the wheel delta one scroll notch stands for, in pixels.
const scrollStep = 100

func runWindow(cmd *cobra.Command, opts *options, showHUD bool) error {
	ctx := cmd.Context()
	logger, err := opts.logger()
	if err != nil {
		return err
	}
	cfg := opts.loadConfig(logger)

	wc := core.DefaultWindowConfig()
	wc.Width, wc.Height = opts.width, opts.height
	window, err := core.NewWindow(wc)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	engine, err := renderer.NewRenderEngine(window)
	if err != nil {
		return fmt.Errorf("create render engine: %w", err)
	}
	defer engine.Destroy()
	logger.Info("render engine ready", "gl", engine.Version())

	if err := engine.EnablePostProcess(); err != nil {
		logger.Warn("post-processing unavailable, bloom disabled", "error", err)
	}

	svc := startServices(ctx, opts, logger)
	music := audio.NewPlayer(svc.lib.Path, logger.With("component", "audio"))

	winW, winH := window.Size()
	a := app.New(cfg, app.Options{
		Width:      winW,
		Height:     winH,
		Library:    svc.lib,
		Releaser:   engine.Releaser(),
		Music:      music,
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
	engine.SetScene(a.Scene)
	fbW, fbH := window.GetFramebufferSize()
	engine.Resize(fbW, fbH)

	viewer := &textureCache{load: a.LoadTexture, release: engine.ReleaseTexture}
	defer viewer.drop()

	window.SetCursorCallback(func(x, y float64) {
		a.PointerMove(float32(x), float32(y))
	})
	window.SetMouseButtonCallback(func(button int, pressed bool, x, y float64) {
		if button != core.MouseLeft {
			return
		}
		if pressed {
			a.PointerDown(float32(x), float32(y))
		} else {
			a.PointerUp(float32(x), float32(y))
		}
	})
	window.SetScrollCallback(func(_, yoff float64) {
		x, y := window.Handle.GetCursorPos()
		// Scrolling up zooms in.
		a.Wheel(float32(-yoff*scrollStep), float32(x), float32(y))
	})
	window.SetKeyCallback(func(key int) {
		if k, ok := glfwKeys[key]; ok {
			a.Press(k)
		}
	})
	window.SetLeaveCallback(a.PointerLeave)
	window.SetResizeCallback(func(width, height int) {
		engine.Resize(width, height)
		a.Resize(window.Size())
	})

	var stats hud
	for !window.ShouldClose() && !a.Done() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		window.PollEvents()
		a.Tick()

		engine.SetBloomStrength(a.Config.BloomIntensity)
		if err := engine.Render(); err != nil {
			logger.Error("render", "error", err)
			return err
		}

		winW, winH := window.Size()
		drawOverlays(engine, a, viewer, winW, winH)
		if showHUD {
			objects, points := engine.Stats()
			stats.frame(time.Now())
			stats.update(a, objects, points)
			stats.draw(engine)
		}
		window.SetTitle(windowTitle(a.Title()))
		engine.Present()
	}
	return nil
}

func windowTitle(typed string) string {
	if typed == "" {
		return core.DefaultWindowConfig().Title
	}
	return typed
}
