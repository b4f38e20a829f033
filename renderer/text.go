package renderer

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"christmas-tree/scene"
)

var textFace = basicfont.Face7x13

// TextTexture rasterizes s in white with the 7x13 bitmap face. Vertex
// colors tint it when drawn.
func TextTexture(s string) *scene.Texture {
	m := textFace.Metrics()
	w := max(font.MeasureString(textFace, s).Ceil(), 1)
	h := m.Height.Ceil()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: textFace,
		Dot:  fixed.P(0, m.Ascent.Ceil()),
	}
	d.DrawString(s)
	return &scene.Texture{Name: "text:" + s, Width: w, Height: h, Pixels: img.Pix}
}

// textCache keeps one texture per distinct string drawn recently. Entries
// not drawn during a frame are evicted at the end of it.
type textCache struct {
	entries map[string]*textEntry
}

type textEntry struct {
	tex  *scene.Texture
	used bool
}

func newTextCache() *textCache {
	return &textCache{entries: map[string]*textEntry{}}
}

func (c *textCache) get(s string) *scene.Texture {
	e, ok := c.entries[s]
	if !ok {
		e = &textEntry{tex: TextTexture(s)}
		c.entries[s] = e
	}
	e.used = true
	return e.tex
}

// sweep returns the textures that went unused and clears the marks.
func (c *textCache) sweep() []*scene.Texture {
	var stale []*scene.Texture
	for s, e := range c.entries {
		if !e.used {
			stale = append(stale, e.tex)
			delete(c.entries, s)
			continue
		}
		e.used = false
	}
	return stale
}
