package media

// Overlay is the full-size view of a selected ornament.
type Overlay struct {
	url        string
	fullscreen bool
}

// Open shows url, replacing whatever was open.
func (o *Overlay) Open(url string) {
	o.url = url
	o.fullscreen = false
}

// Close hides the overlay.
func (o *Overlay) Close() {
	o.url = ""
	o.fullscreen = false
}

// Current returns the open URL.
func (o *Overlay) Current() (string, bool) {
	return o.url, o.url != ""
}

// IsOpen reports whether media is showing.
func (o *Overlay) IsOpen() bool { return o.url != "" }

// Video reports whether the open media is a video.
func (o *Overlay) Video() bool { return o.IsOpen() && IsVideo(o.url) }

// Fullscreen reports whether the overlay fills the window without a frame.
func (o *Overlay) Fullscreen() bool { return o.fullscreen }

// ToggleFullscreen switches between the framed and the borderless view.
func (o *Overlay) ToggleFullscreen() {
	if o.IsOpen() {
		o.fullscreen = !o.fullscreen
	}
}

// Escape leaves fullscreen first; a second press closes the overlay.
func (o *Overlay) Escape() {
	if o.fullscreen {
		o.fullscreen = false
		return
	}
	o.Close()
}
