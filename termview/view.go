// Package termview is a terminal front end: it renders the app's scene into
// half-block characters with tcell and forwards keys and the mouse.
package termview

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/gdamore/tcell/v2"

	"christmas-tree/app"
	"christmas-tree/core"
	"christmas-tree/math"
	"christmas-tree/snowcanvas"
)

// FrameInterval is the redraw period (25 FPS).
const FrameInterval = 40 * time.Millisecond

// View owns the screen; the app is driven from Run's goroutine only.
type View struct {
	screen tcell.Screen
	app    *app.App
	raster *Raster
	log    *slog.Logger

	buttonDown bool
}

// New wraps an initialized screen. The app is resized to the screen's
// pixel grid: one column by two half-rows per cell.
func New(screen tcell.Screen, a *app.App, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	v := &View{screen: screen, app: a, raster: &Raster{}, log: logger}
	v.resize()
	return v
}

// PixelSize is the raster size for a cols x rows terminal.
func PixelSize(cols, rows int) (w, h int) { return cols, rows * 2 }

func (v *View) resize() {
	w, h := PixelSize(v.screen.Size())
	v.raster.Resize(w, h)
	v.app.Resize(w, h)
	v.log.Debug("terminal resized", "width", w, "height", h)
}

// Run polls events on a separate goroutine and ticks, draws and handles
// input on the caller's goroutine until ctx ends or the user quits.
func (v *View) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		defer close(events)
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			v.Handle(ev)
		case <-ticker.C:
			v.app.Tick()
			v.Draw()
		}
		if v.app.Done() {
			return nil
		}
	}
}

// Handle applies one tcell event to the app.
func (v *View) Handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
		v.resize()
	case *tcell.EventKey:
		if k := KeyFor(ev); k != app.KeyNone {
			v.app.Press(k)
		}
	case *tcell.EventMouse:
		v.mouse(ev)
	}
}

// KeyFor maps a terminal key press to an app command.
func KeyFor(ev *tcell.EventKey) app.Key {
	switch ev.Key() {
	case tcell.KeyEscape:
		return app.KeyEscape
	case tcell.KeyCtrlC:
		return app.KeyQuit
	case tcell.KeyRune:
	default:
		return app.KeyNone
	}
	switch ev.Rune() {
	case ' ':
		return app.KeyFullscreen
	case 'd':
		return app.KeyDrawSnow
	case 'e':
		return app.KeyExport
	case 'g':
		return app.KeyGesture
	case 'm':
		return app.KeyMusic
	case 'n':
		return app.KeyNextTrack
	case 'r':
		return app.KeyRebuild
	case 's':
		return app.KeyStyle
	case 'q':
		return app.KeyQuit
	}
	return app.KeyNone
}

// wheelStep is the pixel delta one wheel notch stands for.
const wheelStep = 100

func (v *View) mouse(ev *tcell.EventMouse) {
	cx, cy := ev.Position()
	x, y := float32(cx)+0.5, float32(cy)*2+1
	btn := ev.Buttons()

	switch {
	case btn&tcell.WheelUp != 0:
		v.app.Wheel(-wheelStep, x, y)
	case btn&tcell.WheelDown != 0:
		v.app.Wheel(wheelStep, x, y)
	case btn&tcell.Button1 != 0:
		if !v.buttonDown {
			v.buttonDown = true
			v.app.PointerDown(x, y)
			return
		}
		v.app.PointerMove(x, y)
	default:
		if v.buttonDown {
			v.buttonDown = false
			v.app.PointerUp(x, y)
			return
		}
		v.app.PointerMove(x, y)
	}
}

// Draw renders one frame and shows it.
func (v *View) Draw() {
	a := v.app
	r := v.raster
	r.Clear(a.Scene.Background)
	r.DrawGeneration(a.Gen, a.Scene.Camera)
	r.DrawCanvas(a.Canvas)

	cols, rows := v.screen.Size()
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			st := tcell.StyleDefault.
				Foreground(toTcell(r.At(cx, cy*2))).
				Background(toTcell(r.At(cx, cy*2+1)))
			v.screen.SetContent(cx, cy, '▀', nil, st)
		}
	}

	v.drawText(a.Title(), rows/8, gold, true)
	if a.Canvas.ShowHint() {
		hp := a.Canvas.HintPosition()
		v.drawText(snowcanvas.HintText, int(hp.Y/2), toTcell(snowcanvas.HintColor), false)
	}
	if url, ok := a.Viewer.Current(); ok {
		v.drawViewer(url, a.Viewer.Video(), a.Viewer.Fullscreen())
	}
	v.drawStatus()
	v.screen.Show()
}

var gold = tcell.NewRGBColor(255, 215, 0)

func toTcell(c core.Color) tcell.Color {
	r, g, b, _ := core.Color{
		R: math.Clamp(c.R, 0, 1),
		G: math.Clamp(c.G, 0, 1),
		B: math.Clamp(c.B, 0, 1),
		A: 1,
	}.RGBA8()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// drawText centers s on row, keeping the cell backgrounds underneath.
func (v *View) drawText(s string, row int, fg tcell.Color, bold bool) {
	if s == "" {
		return
	}
	cols, rows := v.screen.Size()
	if row < 0 || row >= rows {
		return
	}
	runes := []rune(s)
	x := (cols - len(runes)) / 2
	for i, ch := range runes {
		cx := x + i
		if cx < 0 || cx >= cols {
			continue
		}
		bg := toTcell(v.raster.At(cx, row*2+1))
		v.screen.SetContent(cx, row, ch, nil, tcell.StyleDefault.Foreground(fg).Background(bg).Bold(bold))
	}
}

func (v *View) put(x, y int, s string, st tcell.Style) {
	for i, ch := range []rune(s) {
		v.screen.SetContent(x+i, y, ch, nil, st)
	}
}

// drawViewer frames the selected media. A terminal cannot show the picture,
// so the box names it.
func (v *View) drawViewer(url string, video, fullscreen bool) {
	cols, rows := v.screen.Size()
	w, h := cols*9/10, rows*9/10
	if fullscreen {
		w, h = cols, rows
	}
	x0, y0 := (cols-w)/2, (rows-h)/2
	box := tcell.StyleDefault.Background(tcell.NewRGBColor(10, 10, 10)).Foreground(gold)
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			ch := ' '
			switch {
			case (y == y0 || y == y0+h-1) && (x == x0 || x == x0+w-1):
				ch = '+'
			case y == y0 || y == y0+h-1:
				ch = '-'
			case x == x0 || x == x0+w-1:
				ch = '|'
			}
			v.screen.SetContent(x, y, ch, nil, box)
		}
	}
	kind := "image"
	if video {
		kind = "video"
	}
	lines := []string{
		path.Base(url),
		fmt.Sprintf("%s  %s", kind, url),
		"",
		"[space] fullscreen   [esc] close",
	}
	mid := y0 + h/2 - len(lines)/2
	for i, l := range lines {
		v.put((cols-len([]rune(l)))/2, mid+i, l, box)
	}
}

func (v *View) drawStatus() {
	cols, rows := v.screen.Size()
	a := v.app
	mode := a.Controls.Mode().String()
	if a.Canvas.Enabled() {
		mode = "drawing: " + a.Canvas.Phase().String()
	}
	line := fmt.Sprintf(" %s | %s | gestures: %s | [d]raw [s]tyle [r]eshuffle [m]usic [n]ext [g]estures [e]xport [q]uit",
		mode, a.Config.OrnamentStyle, a.GestureStatus())
	st := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.NewRGBColor(170, 170, 170))
	runes := []rune(line)
	for x := 0; x < cols; x++ {
		ch := ' '
		if x < len(runes) {
			ch = runes[x]
		}
		v.screen.SetContent(x, rows-1, ch, nil, st)
	}
}
