package main

import (
	"fmt"
	"path"
	"time"

	"christmas-tree/app"
	"christmas-tree/core"
	"christmas-tree/renderer"
	"christmas-tree/scene"
	"christmas-tree/snowcanvas"
)

// hud collects the debug lines shown in the top-left corner.
type hud struct {
	lines []string

	frames int
	since  time.Time
	fps    int
}

func (h *hud) addLine(format string, args ...any) {
	h.lines = append(h.lines, fmt.Sprintf(format, args...))
}

func (h *hud) clear() {
	h.lines = h.lines[:0]
}

// frame counts one presented frame and refreshes the FPS once a second.
func (h *hud) frame(now time.Time) {
	h.frames++
	if h.since.IsZero() {
		h.since = now
	}
	if el := now.Sub(h.since); el >= time.Second {
		h.fps = int(float64(h.frames) / el.Seconds())
		h.frames = 0
		h.since = now
	}
}

// update rebuilds the lines from the app state and the last render stats.
func (h *hud) update(a *app.App, objects, points int) {
	h.clear()
	mode := a.Controls.Mode().String()
	if a.Canvas.Enabled() {
		mode = "drawing: " + a.Canvas.Phase().String()
	}
	h.addLine("FPS: %d   meshes=%d  sprites=%d", h.fps, objects, points)
	h.addLine("Camera: %s  yaw=%.2f  zoom=%.2f", mode, a.Controls.State.Yaw, a.Controls.State.Zoom)
	h.addLine("Style: %s   Gestures: %s   Track: %s", a.Config.OrnamentStyle, a.GestureStatus(), path.Base(a.Config.MusicTrack))
	h.addLine("D=draw snow  S=style  R=reshuffle  M=music  N=next  G=gestures  E=export  Esc/Q=quit")
}

const hudLineHeight = 16

func (h *hud) draw(re *renderer.RenderEngine) {
	for i, l := range h.lines {
		re.DrawText(l, 10, 10+i*hudLineHeight, 1, core.ColorWhite)
	}
}

// textureCache holds the one texture the media viewer shows and releases
// it when the selection changes.
type textureCache struct {
	load    func(url string) *scene.Texture
	release func(*scene.Texture)

	url string
	tex *scene.Texture
}

// get returns the texture for url, or nil for no url.
func (c *textureCache) get(url string) *scene.Texture {
	if url == c.url {
		return c.tex
	}
	c.drop()
	if url != "" {
		c.url, c.tex = url, c.load(url)
	}
	return c.tex
}

func (c *textureCache) drop() {
	if c.tex != nil {
		c.release(c.tex)
	}
	c.url, c.tex = "", nil
}

// drawOverlays queues everything drawn over the scene: the snow canvas, the
// media viewer, the typed message and the drawing hint.
func drawOverlays(re *renderer.RenderEngine, a *app.App, viewer *textureCache, winW, winH int) {
	if a.Canvas.Enabled() {
		re.DrawSnowCanvas(a.Canvas)
		if a.Canvas.ShowHint() {
			p := a.Canvas.HintPosition()
			w, _ := renderer.TextSize(snowcanvas.HintText, 2)
			re.DrawText(snowcanvas.HintText, int(p.X-w/2), int(p.Y), 2, snowcanvas.HintColor)
		}
	}

	if title := a.Title(); title != "" {
		const scale = 4
		w, _ := renderer.TextSize(title, scale)
		re.DrawText(title, int((float32(winW)-w)/2), winH/8, scale, core.ColorGold)
	}

	url, open := a.Viewer.Current()
	if !open {
		viewer.get("")
		return
	}
	if a.Viewer.Video() {
		// Video frames are not decoded; the viewer names the clip instead.
		re.DrawMediaViewer(nil, a.Viewer.Fullscreen())
		caption := "video: " + path.Base(url)
		w, h := renderer.TextSize(caption, 2)
		re.DrawText(caption, int((float32(winW)-w)/2), int((float32(winH)-h)/2), 2, core.ColorWhite)
		return
	}
	re.DrawMediaViewer(viewer.get(url), a.Viewer.Fullscreen())
}
