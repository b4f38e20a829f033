package app

import (
	"christmas-tree/config"
	sceneio "christmas-tree/io"
)

// Key is a command key, independent of the front end that produced it.
type Key int

const (
	KeyNone       Key = iota
	KeyEscape         // leave fullscreen, close the viewer, leave snow drawing, quit
	KeyFullscreen     // viewer fullscreen toggle
	KeyDrawSnow       // snow-drawing mode toggle
	KeyExport         // write the tree to the export path
	KeyGesture        // gesture input toggle
	KeyMusic          // play/pause
	KeyNextTrack
	KeyRebuild // reshuffle with fresh randomness
	KeyStyle   // frames <-> shapes
	KeyQuit
)

// Routing: the media viewer takes pointer input first, then the snow
// canvas, then the camera controller.

// PointerDown handles a primary button press at (x, y) in window pixels.
func (a *App) PointerDown(x, y float32) {
	switch {
	case a.Viewer.IsOpen():
		a.Viewer.Close()
	case a.Canvas.Enabled():
		a.Canvas.PointerDown(x, y, a.now())
	default:
		a.Controls.PointerDown(x, y)
	}
}

// PointerMove handles cursor motion.
func (a *App) PointerMove(x, y float32) {
	switch {
	case a.Viewer.IsOpen():
	case a.Canvas.Enabled():
		a.Canvas.PointerMove(x, y, a.now())
	default:
		a.Controls.PointerMove(x, y)
	}
}

// PointerUp handles the primary button release.
func (a *App) PointerUp(x, y float32) {
	switch {
	case a.Viewer.IsOpen():
	case a.Canvas.Enabled():
		a.Canvas.PointerUp()
	default:
		a.Controls.PointerUp(x, y)
	}
}

// PointerLeave handles the cursor leaving the window.
func (a *App) PointerLeave() {
	if a.Canvas.Enabled() {
		a.Canvas.PointerUp()
	}
	a.Controls.PointerLeave()
}

// Wheel zooms; positive deltaY zooms out.
func (a *App) Wheel(deltaY, x, y float32) {
	if a.Viewer.IsOpen() || a.Canvas.Enabled() {
		return
	}
	a.Controls.Wheel(deltaY, x, y)
}

// Resize follows a viewport change. The snow canvas starts over.
func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.width, a.height = width, height
	a.Controls.Resize(width, height)
	if a.Canvas.Enabled() {
		a.Canvas.Resize(width, height)
	}
}

// Press runs the command bound to k.
func (a *App) Press(k Key) {
	switch k {
	case KeyEscape:
		switch {
		case a.Viewer.IsOpen():
			a.Viewer.Escape()
		case a.Canvas.Enabled():
			a.SetDrawing(false)
		default:
			a.quit = true
		}
	case KeyFullscreen:
		if a.Viewer.IsOpen() {
			a.Viewer.ToggleFullscreen()
		}
	case KeyDrawSnow:
		a.SetDrawing(!a.Canvas.Enabled())
	case KeyExport:
		a.Export()
	case KeyGesture:
		if a.gestures == nil {
			a.log.Warn("gesture input needs the media server")
			return
		}
		a.gestures.SetEnabled(!a.gestures.Enabled())
		a.log.Info("gesture input", "status", a.gestures.Status())
	case KeyMusic:
		if a.music != nil {
			a.log.Info("music", "playing", a.music.Toggle())
		}
	case KeyNextTrack:
		cfg := a.base
		cfg.MusicTrack = nextTrack(cfg.MusicTrack)
		a.ApplyConfig(cfg)
	case KeyRebuild:
		a.rebuild()
	case KeyStyle:
		cfg := a.base
		if cfg.OrnamentStyle == config.StyleShapes {
			cfg.OrnamentStyle = config.StyleFrame
		} else {
			cfg.OrnamentStyle = config.StyleShapes
		}
		a.ApplyConfig(cfg)
	case KeyQuit:
		a.quit = true
	}
}

// SetDrawing turns the snow-drawing mode on or off. While drawing, the
// camera ignores the pointer.
func (a *App) SetDrawing(on bool) {
	if on == a.Canvas.Enabled() {
		return
	}
	if on {
		a.Canvas.Enable(a.width, a.height, a.now())
	} else {
		a.Canvas.Disable()
	}
	a.Controls.SetEnabled(!on)
}

// Export writes the current generation to the export path as binary glTF.
func (a *App) Export() error {
	if a.exportPath == "" {
		a.log.Warn("export skipped: no export path")
		return nil
	}
	if err := sceneio.ExportGLB(a.Gen, a.exportPath); err != nil {
		a.log.Error("export tree", "path", a.exportPath, "error", err)
		return err
	}
	a.log.Info("exported tree", "path", a.exportPath)
	return nil
}

func nextTrack(cur string) string {
	for i, t := range config.MusicTracks {
		if t == cur {
			return config.MusicTracks[(i+1)%len(config.MusicTracks)]
		}
	}
	return config.MusicTracks[0]
}
