// Package config holds the scene configuration: a flat record of tunables
// with defaults, clamping to the ranges the settings surface allows, and
// JSON/YAML persistence that merges stored values over the defaults.
package config

import (
	"github.com/chewxy/math32"

	"christmas-tree/math"
)

// OrnamentStyle selects how ornaments are drawn.
type OrnamentStyle string

const (
	// StyleFrame draws each ornament as a golden photo frame.
	StyleFrame OrnamentStyle = "frame"
	// StyleShapes draws each ornament as one of the procedural solids.
	StyleShapes OrnamentStyle = "shapes"
)

// MaxOrnaments bounds letterCount regardless of how many images exist.
const MaxOrnaments = 200

// Config is passed by value; a copy is a snapshot for one rebuild or frame.
type Config struct {
	ParticleCount    int     `json:"particleCount" yaml:"particleCount"`
	ParticleSize     float32 `json:"particleSize" yaml:"particleSize"`
	TreeScale        float32 `json:"treeScale" yaml:"treeScale"`
	Blur             float32 `json:"blur" yaml:"blur"`
	TwinkleBlur      float32 `json:"twinkleBlur" yaml:"twinkleBlur"`
	TwinkleSize      float32 `json:"twinkleSize" yaml:"twinkleSize"`
	StarSize         float32 `json:"starSize" yaml:"starSize"`
	StarBrightness   float32 `json:"starBrightness" yaml:"starBrightness"`
	LetterCount      int     `json:"letterCount" yaml:"letterCount"`
	LetterSize       float32 `json:"letterSize" yaml:"letterSize"`
	LetterSpinSpeed  float32 `json:"letterSpinSpeed" yaml:"letterSpinSpeed"`
	LetterBrightness float32 `json:"letterBrightness" yaml:"letterBrightness"`
	LetterFlowSpeed  float32 `json:"letterFlowSpeed" yaml:"letterFlowSpeed"`
	LetterBevel      float32 `json:"letterBevel" yaml:"letterBevel"`
	BackgroundColor  string  `json:"backgroundColor" yaml:"backgroundColor"`
	MusicTrack       string  `json:"musicTrack" yaml:"musicTrack"`
	OrnamentCount    int     `json:"ornamentCount" yaml:"ornamentCount"`
	// OrnamentImages are media URLs; ornament i shows image i mod len.
	OrnamentImages []string `json:"ornamentImages" yaml:"ornamentImages"`
	TwinkleSpeed   float32  `json:"twinkleSpeed" yaml:"twinkleSpeed"`
	RotationSpeed  float32  `json:"rotationSpeed" yaml:"rotationSpeed"`
	SnowEnabled    bool     `json:"snowEnabled" yaml:"snowEnabled"`
	SnowCount      int      `json:"snowCount" yaml:"snowCount"`
	SnowSpeed      float32  `json:"snowSpeed" yaml:"snowSpeed"`
	SnowSize       float32  `json:"snowSize" yaml:"snowSize"`
	WindDirection  float32  `json:"windDirection" yaml:"windDirection"`
	BloomIntensity float32  `json:"bloomIntensity" yaml:"bloomIntensity"`

	OrnamentStyle OrnamentStyle `json:"ornamentStyle" yaml:"ornamentStyle"`
	Message       string        `json:"message" yaml:"message"`
}

// MusicTracks lists the bundled background tracks.
var MusicTracks = []string{
	"/music/jingle-bells.mp3",
	"/music/silent-night.mp3",
	"/music/we-wish-you.mp3",
	"/music/deck-the-halls.mp3",
	"/music/christmas.mp3",
}

func Default() Config {
	return Config{
		ParticleCount:    3000,
		ParticleSize:     0.1,
		TreeScale:        1,
		Blur:             0,
		TwinkleBlur:      0.3,
		TwinkleSize:      0.3,
		StarSize:         0.5,
		StarBrightness:   1,
		LetterCount:      15,
		LetterSize:       0.1,
		LetterSpinSpeed:  1,
		LetterBrightness: 1,
		LetterFlowSpeed:  3,
		LetterBevel:      0.5,
		BackgroundColor:  "#2a0a0a",
		MusicTrack:       MusicTracks[0],
		OrnamentCount:    25,
		OrnamentImages: []string{
			"/ornaments/1.jpg",
			"/ornaments/2.jpg",
			"/ornaments/3.jpg",
			"/ornaments/4.jpg",
			"/ornaments/5.jpg",
		},
		TwinkleSpeed:   4,
		RotationSpeed:  0.15,
		SnowEnabled:    true,
		SnowCount:      1000,
		SnowSpeed:      0.015,
		SnowSize:       1,
		WindDirection:  0,
		BloomIntensity: 0.5,
		OrnamentStyle:  StyleFrame,
		Message:        "Merry Christmas!",
	}
}

// Sanitize returns c with every numeric field clamped to its allowed range.
// NaN or infinite values fall back to the default for that field.
func (c Config) Sanitize() Config {
	d := Default()

	c.ParticleCount = clampInt(c.ParticleCount, 1000, 6000)
	c.ParticleSize = clampF(c.ParticleSize, d.ParticleSize, 0.05, 0.8)
	c.TreeScale = clampF(c.TreeScale, d.TreeScale, 0.5, 2)
	c.Blur = clampF(c.Blur, d.Blur, 0, 1)
	c.TwinkleBlur = clampF(c.TwinkleBlur, d.TwinkleBlur, 0, 1)
	c.TwinkleSize = clampF(c.TwinkleSize, d.TwinkleSize, 0, 1)
	c.StarSize = clampF(c.StarSize, d.StarSize, 0.2, 1.5)
	c.StarBrightness = clampF(c.StarBrightness, d.StarBrightness, 0.3, 2)
	c.LetterCount = clampInt(c.LetterCount, 0, MaxOrnaments)
	c.LetterSize = clampF(c.LetterSize, d.LetterSize, 0.05, 0.3)
	c.LetterSpinSpeed = clampF(c.LetterSpinSpeed, d.LetterSpinSpeed, 0, 3)
	c.LetterBrightness = clampF(c.LetterBrightness, d.LetterBrightness, 0.3, 2)
	c.LetterFlowSpeed = clampF(c.LetterFlowSpeed, d.LetterFlowSpeed, 0, 10)
	c.LetterBevel = clampF(c.LetterBevel, d.LetterBevel, 0, 1)
	c.OrnamentCount = clampInt(c.OrnamentCount, 0, MaxOrnaments)
	c.TwinkleSpeed = clampF(c.TwinkleSpeed, d.TwinkleSpeed, 1, 10)
	c.RotationSpeed = clampF(c.RotationSpeed, d.RotationSpeed, 0, 0.5)
	c.SnowCount = clampInt(c.SnowCount, 200, 2000)
	c.SnowSpeed = clampF(c.SnowSpeed, d.SnowSpeed, 0.005, 0.05)
	c.SnowSize = clampF(c.SnowSize, d.SnowSize, 0.5, 2)
	c.WindDirection = clampF(c.WindDirection, d.WindDirection, -1, 1)
	c.BloomIntensity = clampF(c.BloomIntensity, d.BloomIntensity, 0, 2)

	if c.OrnamentStyle != StyleFrame && c.OrnamentStyle != StyleShapes {
		c.OrnamentStyle = StyleFrame
	}
	if c.BackgroundColor == "" {
		c.BackgroundColor = d.BackgroundColor
	}
	// Never share the backing array with the caller's snapshot.
	images := make([]string, len(c.OrnamentImages))
	copy(images, c.OrnamentImages)
	c.OrnamentImages = images
	return c
}

// ImageFor returns the media URL for ornament index i, or "" when no images
// are configured.
func (c Config) ImageFor(i int) string {
	if len(c.OrnamentImages) == 0 || i < 0 {
		return ""
	}
	return c.OrnamentImages[i%len(c.OrnamentImages)]
}

func clampF(v, def, lo, hi float32) float32 {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return def
	}
	return math.Clamp(v, lo, hi)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
