// Package controls turns pointer, wheel and gesture input into camera and
// tree-rotation state, and maps clicks onto ornaments.
package controls

import (
	"time"

	"github.com/chewxy/math32"

	"christmas-tree/math"
	"christmas-tree/scene"
)

// Interaction constants. These values are part of how the scene feels and
// are not meant to be tuned per configuration.
const (
	YawGain         = 0.005 // radians per pixel of horizontal drag
	PitchGain       = 0.003 // radians per pixel of vertical drag
	PitchLimit      = 0.5
	ClickThreshold  = 5 // pixels; below this a press-release is a click
	ZoomGain        = 0.005
	MinZoom         = 1.5
	MaxZoom         = 15
	InitialZoom     = 6
	ZoomEpsilon     = 0.001
	ZoomTargetBlend = 0.3 // times |zoom change| when zooming in
	ZoomOutBlend    = 0.1
	ZoomBlend       = 0.08 // per frame
	TargetBlend     = 0.05 // per frame
	AutoRotateStep  = 0.016
	IdleTimeout     = 3000 * time.Millisecond
)

var (
	// HomeTarget is the look-at point the camera drifts back to.
	HomeTarget = math.Vec3{Y: 0.3}
	targetMin  = math.Vec3{X: -2, Y: -1, Z: -2}
	targetMax  = math.Vec3{X: 2, Y: 3, Z: 2}
)

// Mode is the controller's interaction state.
type Mode int

const (
	ModeAutoRotating Mode = iota
	ModeIdle              // user took over; waiting for the idle timeout
	ModeDragging
)

func (m Mode) String() string {
	switch m {
	case ModeAutoRotating:
		return "auto-rotating"
	case ModeIdle:
		return "idle"
	case ModeDragging:
		return "dragging"
	}
	return "unknown"
}

// CameraState is everything the controller tracks between frames.
type CameraState struct {
	Zoom         float32
	TargetZoom   float32
	LookAt       math.Vec3
	TargetLookAt math.Vec3
	Yaw          float32
	Pitch        float32
	AutoRotate   bool
	Dragging     bool

	LastInteraction time.Time
	DragStart       math.Vec2
	DragLast        math.Vec2
}

// Target is a clickable ornament.
type Target struct {
	Node  *scene.Node
	URL   string
	Index int
}

// SelectFunc receives the ornament a click landed on.
type SelectFunc func(url string, index int)

// Controller owns CameraState and applies it to a scene each frame.
type Controller struct {
	State CameraState

	// Now is the clock; tests replace it.
	Now func() time.Time

	scene    *scene.Scene
	width    float32
	height   float32
	enabled  bool
	targets  []Target
	onSelect SelectFunc
}

// NewController starts auto-rotating at the initial zoom.
func NewController(s *scene.Scene, width, height int, onSelect SelectFunc) *Controller {
	c := &Controller{
		Now:      time.Now,
		scene:    s,
		enabled:  true,
		onSelect: onSelect,
	}
	c.State = CameraState{
		Zoom:         InitialZoom,
		TargetZoom:   InitialZoom,
		LookAt:       HomeTarget,
		TargetLookAt: HomeTarget,
		AutoRotate:   true,
	}
	c.State.LastInteraction = c.Now()
	c.Resize(width, height)
	c.applyCamera()
	return c
}

// Mode reports the current interaction state.
func (c *Controller) Mode() Mode {
	switch {
	case c.State.Dragging:
		return ModeDragging
	case c.State.AutoRotate:
		return ModeAutoRotating
	}
	return ModeIdle
}

// Resize updates the viewport used for picking and the camera aspect.
func (c *Controller) Resize(width, height int) {
	c.width, c.height = float32(width), float32(height)
	c.scene.Camera.UpdateAspectRatio(c.width, c.height)
}

// SetTargets replaces the clickable ornaments, typically after a rebuild.
func (c *Controller) SetTargets(targets []Target) {
	c.targets = targets
}

// SetEnabled turns pointer input on or off. Disabling ends any drag.
func (c *Controller) SetEnabled(enabled bool) {
	c.enabled = enabled
	if !enabled {
		c.State.Dragging = false
	}
}

// Enabled reports whether pointer input is accepted.
func (c *Controller) Enabled() bool { return c.enabled }

func (c *Controller) touch() {
	c.State.LastInteraction = c.Now()
	c.State.AutoRotate = false
}

// PointerDown starts a drag at (x, y) in pixels.
func (c *Controller) PointerDown(x, y float32) {
	if !c.enabled {
		return
	}
	c.touch()
	c.State.Dragging = true
	c.State.DragStart = math.Vec2{X: x, Y: y}
	c.State.DragLast = c.State.DragStart
}

// PointerMove rotates the tree while dragging.
func (c *Controller) PointerMove(x, y float32) {
	if !c.enabled || !c.State.Dragging {
		return
	}
	p := math.Vec2{X: x, Y: y}
	d := p.Sub(c.State.DragLast)
	c.rotate(d.X, d.Y)
	c.State.DragLast = p
}

// PointerUp ends a drag. A release within ClickThreshold of the press is a
// click and is hit-tested against the ornaments.
func (c *Controller) PointerUp(x, y float32) {
	if !c.enabled || !c.State.Dragging {
		return
	}
	c.State.Dragging = false
	if (math.Vec2{X: x, Y: y}).Distance(c.State.DragStart) < ClickThreshold {
		c.click(x, y)
	}
}

// PointerLeave ends a drag without a click.
func (c *Controller) PointerLeave() {
	c.State.Dragging = false
}

// Wheel zooms by deltaY (positive zooms out). Zooming in pulls the look-at
// point toward whatever is under the cursor; zooming out eases it home.
func (c *Controller) Wheel(deltaY, x, y float32) {
	if !c.enabled {
		return
	}
	c.touch()

	newZoom := math.Clamp(c.State.TargetZoom+deltaY*ZoomGain, MinZoom, MaxZoom)
	change := newZoom - c.State.TargetZoom
	if math32.Abs(change) <= ZoomEpsilon {
		return
	}

	if change < 0 {
		ray := ScreenToRay(x, y, c.width, c.height, c.scene.Camera)
		focal := ray.At(c.State.Zoom)
		c.State.TargetLookAt = c.State.TargetLookAt.Lerp(focal, math32.Abs(change)*ZoomTargetBlend).ClampBox(targetMin, targetMax)
	} else {
		c.State.TargetLookAt = c.State.TargetLookAt.Lerp(HomeTarget, ZoomOutBlend)
	}
	c.State.TargetZoom = newZoom
}

// Zoom moves the target zoom by delta. Gesture entry point; like the
// pointer entry points it is ignored while the controller is disabled.
func (c *Controller) Zoom(delta float32) {
	if !c.enabled {
		return
	}
	c.touch()
	c.State.TargetZoom = math.Clamp(c.State.TargetZoom+delta, MinZoom, MaxZoom)
}

// Drag rotates as if the pointer moved by (dx, dy) pixels. Gesture entry
// point.
func (c *Controller) Drag(dx, dy float32) {
	if !c.enabled {
		return
	}
	c.touch()
	c.rotate(dx, dy)
}

// Tap clicks at normalized camera coordinates. The tracker sees a mirrored
// selfie image, so x is flipped. Gesture entry point.
func (c *Controller) Tap(x, y float32) {
	if !c.enabled {
		return
	}
	c.touch()
	c.click((1-x)*c.width, y*c.height)
}

func (c *Controller) rotate(dx, dy float32) {
	c.State.Yaw += dx * YawGain
	c.State.Pitch = math.Clamp(c.State.Pitch+dy*PitchGain, -PitchLimit, PitchLimit)
}

// Pick returns the ornament under pixel (x, y), nearest first.
func (c *Controller) Pick(x, y float32) (Target, bool) {
	if len(c.targets) == 0 {
		return Target{}, false
	}
	nodes := make([]*scene.Node, len(c.targets))
	for i, t := range c.targets {
		nodes[i] = t.Node
	}
	hit := Raycast(ScreenToRay(x, y, c.width, c.height, c.scene.Camera), nodes)
	if !hit.Hit {
		return Target{}, false
	}
	for _, t := range c.targets {
		if t.Node == hit.Node {
			return t, true
		}
	}
	return Target{}, false
}

func (c *Controller) click(x, y float32) {
	t, ok := c.Pick(x, y)
	if ok && c.onSelect != nil {
		c.onSelect(t.URL, t.Index)
	}
}

// Tick runs once per frame: resumes auto-rotate after the idle timeout,
// advances the spin, eases zoom and look-at toward their targets and
// writes the result into the scene.
func (c *Controller) Tick(rotationSpeed float32) {
	s := &c.State
	if !s.AutoRotate && !s.Dragging && c.Now().Sub(s.LastInteraction) > IdleTimeout {
		s.AutoRotate = true
		s.TargetLookAt = HomeTarget
	}
	if s.AutoRotate && !s.Dragging {
		s.Yaw += rotationSpeed * AutoRotateStep
	}

	s.Zoom += (s.TargetZoom - s.Zoom) * ZoomBlend
	s.LookAt = s.LookAt.Lerp(s.TargetLookAt, TargetBlend)
	c.applyCamera()
}

func (c *Controller) applyCamera() {
	c.scene.SetGroupRotation(c.State.Yaw, c.State.Pitch)
	eye := c.State.LookAt.Add(math.Vec3{Z: c.State.Zoom})
	c.scene.Camera.LookAt(eye, c.State.LookAt)
}
