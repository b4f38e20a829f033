// Package gesture turns hand-landmark frames from an external tracker into
// zoom, drag and tap input for the camera controller.
package gesture

import (
	"time"

	"github.com/chewxy/math32"

	"christmas-tree/math"
)

// Landmark indices used by the mapper (MediaPipe hand model).
const (
	Wrist      = 0
	ThumbTip   = 4
	IndexBase  = 5
	IndexTip   = 8
	MiddleTip  = 12
	PinkyBase  = 17
	HandPoints = 21
)

const (
	PinchThreshold = 0.08
	ZoomThreshold  = 0.005
	ZoomGain       = 20
	DragScale      = 5
	DragThreshold  = 0.01
	DragGain       = 100
	TapCooldown    = 500 * time.Millisecond
)

// Landmark is a normalized tracker point; x and y are in [0,1] of the
// camera image.
type Landmark struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Frame is one tracker result. Only the first hand is used.
type Frame struct {
	Hands [][]Landmark `json:"hands"`
}

// Hand returns the first complete hand in the frame.
func (f Frame) Hand() ([]Landmark, bool) {
	if len(f.Hands) == 0 || len(f.Hands[0]) < HandPoints {
		return nil, false
	}
	return f.Hands[0], true
}

// Sink receives the input a gesture maps to. controls.Controller
// satisfies it.
type Sink interface {
	Zoom(delta float32)
	Drag(dx, dy float32)
	Tap(x, y float32)
}

// Mapper keeps the history needed to turn frames into deltas.
type Mapper struct {
	sink Sink

	lastPalm     math.Vec2
	hasPalm      bool
	lastZoomDist float32
	hasZoomDist  bool
	lastTap      time.Time
	tapped       bool
}

// NewMapper returns a mapper emitting into sink.
func NewMapper(sink Sink) *Mapper {
	return &Mapper{sink: sink}
}

// Reset forgets the previous hand so the next frame emits no deltas.
func (m *Mapper) Reset() {
	m.hasPalm = false
	m.hasZoomDist = false
}

func dist(a, b Landmark) float32 {
	return math32.Hypot(a.X-b.X, a.Y-b.Y)
}

// Process consumes one frame observed at now.
func (m *Mapper) Process(f Frame, now time.Time) {
	hand, ok := f.Hand()
	if !ok {
		m.Reset()
		return
	}

	thumb, index, middle := hand[ThumbTip], hand[IndexTip], hand[MiddleTip]
	palm := math.Vec2{
		X: (hand[Wrist].X + hand[IndexBase].X + hand[PinkyBase].X) / 3,
		Y: (hand[Wrist].Y + hand[IndexBase].Y + hand[PinkyBase].Y) / 3,
	}
	pinching := dist(thumb, index) < PinchThreshold

	zoomDist := dist(thumb, middle)
	if m.hasZoomDist {
		if d := zoomDist - m.lastZoomDist; math32.Abs(d) > ZoomThreshold {
			m.sink.Zoom(d * ZoomGain)
		}
	}
	m.lastZoomDist, m.hasZoomDist = zoomDist, true

	if !pinching && m.hasPalm {
		dx := (palm.X - m.lastPalm.X) * DragScale
		dy := (palm.Y - m.lastPalm.Y) * DragScale
		if math32.Abs(dx) > DragThreshold || math32.Abs(dy) > DragThreshold {
			m.sink.Drag(-dx*DragGain, dy*DragGain)
		}
	}
	m.lastPalm, m.hasPalm = palm, true

	// A held pinch taps again each time the cooldown runs out.
	if pinching && (!m.tapped || now.Sub(m.lastTap) >= TapCooldown) {
		m.tapped = true
		m.lastTap = now
		m.sink.Tap(index.X, index.Y)
	}
}
