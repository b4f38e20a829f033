package scene

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

// ErrNotImage is returned for media that cannot be used as a texture, such as
// video files.
var ErrNotImage = errors.New("not an image")

// Texture holds CPU-side pixel data for a 2D texture.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
	// GLID is the OpenGL texture object ID, set by opengl.UploadTexture.
	GLID uint32
}

// LoadTexture reads an image file (PNG, JPEG, GIF or WebP) and returns a
// CPU-side RGBA8 Texture. The content is sniffed before decoding so videos
// are rejected with ErrNotImage rather than a decoder error.
func LoadTexture(path string) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	return DecodeTexture(path, data)
}

// DecodeTexture decodes in-memory image bytes.
func DecodeTexture(name string, data []byte) (*Texture, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, fmt.Errorf("sniff texture %q: %w", name, err)
	}
	if kind != filetype.Unknown && !filetype.IsImage(data) {
		return nil, fmt.Errorf("texture %q is %s: %w", name, kind.MIME.Value, ErrNotImage)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", name, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return &Texture{
		Name:   name,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: rgba.Pix,
	}, nil
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
	}
}

// NewPlaceholderTexture is shown in a frame whose media failed to load: a
// soft diagonal wash of deep red to gold.
func NewPlaceholderTexture(name string) *Texture {
	const size = 32
	pix := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			t := float32(x+y) / float32(2*(size-1))
			i := (y*size + x) * 4
			pix[i+0] = uint8(120 + t*135)
			pix[i+1] = uint8(20 + t*160)
			pix[i+2] = uint8(20 + t*20)
			pix[i+3] = 255
		}
	}
	return &Texture{Name: name, Width: size, Height: size, Pixels: pix}
}
