package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"christmas-tree/app"
	"christmas-tree/core"
	"christmas-tree/scene"
)

func TestTextureCacheReleasesOnChange(t *testing.T) {
	var loaded []string
	var released []*scene.Texture
	c := &textureCache{
		load: func(url string) *scene.Texture {
			loaded = append(loaded, url)
			return scene.NewPlaceholderTexture(url)
		},
		release: func(tex *scene.Texture) { released = append(released, tex) },
	}

	a := c.get("/ornaments/a.jpg")
	require.NotNil(t, a)
	assert.Same(t, a, c.get("/ornaments/a.jpg"), "same URL reuses the texture")
	assert.Equal(t, []string{"/ornaments/a.jpg"}, loaded)

	b := c.get("/ornaments/b.jpg")
	assert.NotSame(t, a, b)
	assert.Equal(t, []*scene.Texture{a}, released)

	assert.Nil(t, c.get(""))
	assert.Equal(t, []*scene.Texture{a, b}, released)
	c.drop()
	assert.Len(t, released, 2, "nothing left to release")
}

func TestHUDFrameRate(t *testing.T) {
	var h hud
	t0 := time.Unix(100, 0)
	for i := 0; i < 30; i++ {
		h.frame(t0.Add(time.Duration(i) * 20 * time.Millisecond))
	}
	assert.Zero(t, h.fps, "no full second yet")
	h.frame(t0.Add(time.Second))
	assert.Equal(t, 31, h.fps)
}

func TestHUDLines(t *testing.T) {
	var h hud
	h.addLine("a %d", 1)
	h.addLine("b")
	assert.Equal(t, []string{"a 1", "b"}, h.lines)
	h.clear()
	assert.Empty(t, h.lines)
}

func TestWindowKeys(t *testing.T) {
	assert.Equal(t, app.KeyEscape, glfwKeys[core.KeyEscape])
	assert.Equal(t, app.KeyFullscreen, glfwKeys[core.KeySpace])
	assert.Equal(t, app.KeyDrawSnow, glfwKeys[core.KeyD])
	_, ok := glfwKeys[core.MouseLeft]
	assert.False(t, ok)
}

func TestWindowTitle(t *testing.T) {
	assert.Equal(t, "Merry Christmas", windowTitle(""))
	assert.Equal(t, "Merry", windowTitle("Merry"))
}

func TestLoggerLevel(t *testing.T) {
	o := &options{logLevel: "DEBUG"}
	l, err := o.logger()
	require.NoError(t, err)
	assert.NotNil(t, l)

	o.logLevel = "loud"
	_, err = o.logger()
	assert.Error(t, err)
}
