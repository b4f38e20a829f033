package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"christmas-tree/config"
	"christmas-tree/core"
	"christmas-tree/math"
	"christmas-tree/media"
	"christmas-tree/scene"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

type countingReleaser struct{ meshes, textures, clouds int }

func (r *countingReleaser) ReleaseMesh(*scene.Mesh)         { r.meshes++ }
func (r *countingReleaser) ReleaseTexture(*scene.Texture)   { r.textures++ }
func (r *countingReleaser) ReleasePoints(*scene.PointCloud) { r.clouds++ }

type fakeMusic struct {
	tracks  []string
	playing bool
	closed  bool
}

func (m *fakeMusic) SetTrack(url string) { m.tracks = append(m.tracks, url) }
func (m *fakeMusic) Play()               { m.playing = true }
func (m *fakeMusic) Toggle() bool        { m.playing = !m.playing; return m.playing }
func (m *fakeMusic) Close()              { m.closed = true }

func placeholders(url string) *scene.Texture { return scene.NewPlaceholderTexture(url) }

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.ParticleCount = 1000
	cfg.SnowCount = 200
	cfg.LetterCount = 6
	return cfg
}

func newTestApp(t *testing.T, opts Options) (*App, *fakeClock, *countingReleaser) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	rel := &countingReleaser{}
	opts.Width, opts.Height = 800, 600
	opts.Now = clock.now
	opts.Releaser = rel
	opts.Seed = 7
	if opts.Loader == nil {
		opts.Loader = placeholders
	}
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(smallConfig(), opts), clock, rel
}

func TestNewBuildsAttachedGeneration(t *testing.T) {
	a, _, _ := newTestApp(t, Options{})
	require.NotNil(t, a.Gen)
	assert.Len(t, a.Gen.Ornaments, 6)
	assert.NotEmpty(t, a.Scene.Group.Children)
	assert.Equal(t, "Merry Christmas!", a.Typing.Message())
	bg, err := core.ParseHexColor("#2a0a0a")
	require.NoError(t, err)
	assert.Equal(t, bg, a.Scene.Background)
}

func TestLiveChangesDoNotRebuild(t *testing.T) {
	a, _, rel := newTestApp(t, Options{})
	gen := a.Gen

	cfg := a.Config
	cfg.RotationSpeed = 0.4
	cfg.TwinkleSpeed = 9
	cfg.BackgroundColor = "#000000"
	a.ApplyConfig(cfg)
	assert.Same(t, gen, a.Gen)
	assert.Zero(t, rel.meshes)
	assert.Equal(t, core.Color{A: 1}, a.Scene.Background)

	cfg.ParticleCount = 2000
	a.ApplyConfig(cfg)
	assert.NotSame(t, gen, a.Gen)
	assert.True(t, gen.Released(), "previous generation is released before replacement")
	assert.Positive(t, rel.meshes)
	assert.Equal(t, 2000, a.Gen.Foliage.Cloud.Count())
}

func TestBadBackgroundFallsBack(t *testing.T) {
	a, _, _ := newTestApp(t, Options{})
	cfg := a.Config
	cfg.BackgroundColor = "not a color"
	a.ApplyConfig(cfg)
	want, _ := core.ParseHexColor(config.Default().BackgroundColor)
	assert.Equal(t, want, a.Scene.Background)
}

func TestNeedsRebuild(t *testing.T) {
	base := config.Default()
	tests := []struct {
		name   string
		change func(*config.Config)
		want   bool
	}{
		{"nothing", func(*config.Config) {}, false},
		{"rotation", func(c *config.Config) { c.RotationSpeed = 0.3 }, false},
		{"flow", func(c *config.Config) { c.LetterFlowSpeed = 7 }, false},
		{"particles", func(c *config.Config) { c.ParticleCount = 4000 }, true},
		{"style", func(c *config.Config) { c.OrnamentStyle = config.StyleShapes }, true},
		{"snow off", func(c *config.Config) { c.SnowEnabled = false }, true},
		{"images", func(c *config.Config) { c.OrnamentImages = []string{"/ornaments/x.png"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base.Sanitize()
			tt.change(&cfg)
			assert.Equal(t, tt.want, NeedsRebuild(base.Sanitize(), cfg))
		})
	}
}

func TestSetMediaDrivesOrnaments(t *testing.T) {
	a, _, _ := newTestApp(t, Options{})
	a.SetMedia([]media.File{
		{Full: "/ornaments/a.png", Thumb: "/ornaments/a.png"},
		{Full: "/ornaments/b.jpg", Thumb: "/ornaments/b.jpg"},
		{Full: "/ornaments/clip.mp4", Thumb: "/ornaments/clip.mp4"},
	})
	assert.Equal(t, []string{"/ornaments/a.png", "/ornaments/b.jpg", "/ornaments/clip.mp4"}, a.Config.OrnamentImages)
	assert.Equal(t, 3, a.Config.LetterCount)
	assert.Len(t, a.Gen.Ornaments, 3)

	cfg := a.Config
	cfg.LetterCount = 40
	a.ApplyConfig(cfg)
	assert.Equal(t, 3, a.Config.LetterCount, "scanned folder keeps driving the count")
}

func TestEmptiedFolderRestoresConfig(t *testing.T) {
	a, _, _ := newTestApp(t, Options{})
	want := smallConfig().Sanitize()

	a.SetMedia([]media.File{
		{Full: "/ornaments/a.png", Thumb: "/ornaments/a.png"},
		{Full: "/ornaments/b.jpg", Thumb: "/ornaments/b.jpg"},
	})
	require.Equal(t, 2, a.Config.LetterCount)

	a.Press(KeyStyle)
	assert.Equal(t, config.StyleShapes, a.Config.OrnamentStyle)

	a.SetMedia(nil)
	assert.Equal(t, want.OrnamentImages, a.Config.OrnamentImages)
	assert.Equal(t, want.LetterCount, a.Config.LetterCount)
	assert.Len(t, a.Gen.Ornaments, want.LetterCount)
	assert.Equal(t, config.StyleShapes, a.Config.OrnamentStyle, "key edits survive the folder change")
}

func TestVideoOnlyFolderHangsClickableOrnament(t *testing.T) {
	a, _, _ := newTestApp(t, Options{})
	const clip = "/ornaments/clip.mp4"
	a.SetMedia([]media.File{{Full: clip, Thumb: clip}})

	require.Len(t, a.Gen.Ornaments, 1)
	o := a.Gen.Ornaments[0]
	assert.Equal(t, clip, o.URL)
	assert.NotNil(t, a.LoadTexture(clip), "videos get a placeholder texture")

	center := o.Node.GetWorldMatrix().MulVec3(math.Vec3{})
	ndc := a.Scene.Camera.GetViewProjectionMatrix().MulVec3(center)
	x := (ndc.X*0.5 + 0.5) * 800
	y := (0.5 - ndc.Y*0.5) * 600

	a.PointerDown(x, y)
	a.PointerUp(x, y)
	url, ok := a.Viewer.Current()
	require.True(t, ok)
	assert.Equal(t, clip, url)
	assert.True(t, a.Viewer.Video())
}

func TestSelectOpensViewer(t *testing.T) {
	var got []string
	a, _, _ := newTestApp(t, Options{Hooks: Hooks{OrnamentSelected: func(url string, _ int) {
		got = append(got, url)
	}}})

	a.selectOrnament("", 0)
	assert.False(t, a.Viewer.IsOpen(), "empty URL selects nothing")

	a.selectOrnament("/ornaments/1.jpg", 0)
	url, ok := a.Viewer.Current()
	require.True(t, ok)
	assert.Equal(t, "/ornaments/1.jpg", url)
	assert.Equal(t, []string{"/ornaments/1.jpg"}, got)

	yaw := a.Controls.State.Yaw
	a.PointerDown(10, 10)
	a.PointerMove(300, 10)
	a.PointerUp(300, 10)
	assert.False(t, a.Viewer.IsOpen(), "a press closes the viewer")
	assert.Equal(t, yaw, a.Controls.State.Yaw, "the closing press does not rotate")
}

func TestEscapeOrder(t *testing.T) {
	a, _, _ := newTestApp(t, Options{})
	a.selectOrnament("/ornaments/1.jpg", 0)
	a.Press(KeyFullscreen)
	require.True(t, a.Viewer.Fullscreen())

	a.Press(KeyEscape)
	assert.True(t, a.Viewer.IsOpen())
	assert.False(t, a.Viewer.Fullscreen())
	a.Press(KeyEscape)
	assert.False(t, a.Viewer.IsOpen())

	a.Press(KeyDrawSnow)
	require.True(t, a.Canvas.Enabled())
	a.Press(KeyEscape)
	assert.False(t, a.Canvas.Enabled())
	assert.False(t, a.Done())

	a.Press(KeyEscape)
	assert.True(t, a.Done())
}

func TestDrawingModeOwnsPointer(t *testing.T) {
	a, clock, _ := newTestApp(t, Options{})
	a.Press(KeyDrawSnow)
	require.True(t, a.Canvas.Enabled())
	assert.False(t, a.Controls.Enabled())

	yaw := a.Controls.State.Yaw
	zoom := a.Controls.State.TargetZoom
	a.PointerDown(100, 590)
	a.PointerMove(300, 590)
	a.PointerUp(300, 590)
	a.Wheel(500, 400, 300)
	assert.Equal(t, yaw, a.Controls.State.Yaw)
	assert.Equal(t, zoom, a.Controls.State.TargetZoom)

	clock.advance(time.Second)
	a.Resize(640, 480)
	assert.Equal(t, 640, a.Canvas.Width)
	assert.Len(t, a.Canvas.Heights, 640)

	a.SetDrawing(false)
	assert.True(t, a.Controls.Enabled())
}

func TestMusicFollowsConfig(t *testing.T) {
	m := &fakeMusic{}
	a, _, _ := newTestApp(t, Options{Music: m})
	assert.Equal(t, []string{config.MusicTracks[0]}, m.tracks)
	assert.True(t, m.playing)

	a.Press(KeyNextTrack)
	assert.Equal(t, config.MusicTracks[1], a.Config.MusicTrack)
	assert.Equal(t, config.MusicTracks[1], m.tracks[len(m.tracks)-1])

	a.Press(KeyMusic)
	assert.False(t, m.playing)

	a.Close()
	assert.True(t, m.closed)
}

func TestNextTrackWraps(t *testing.T) {
	last := config.MusicTracks[len(config.MusicTracks)-1]
	assert.Equal(t, config.MusicTracks[0], nextTrack(last))
	assert.Equal(t, config.MusicTracks[0], nextTrack("/music/unknown.mp3"))
}

func TestTickDrainsReloads(t *testing.T) {
	configs := make(chan config.Config, 1)
	files := make(chan []media.File, 1)
	a, clock, _ := newTestApp(t, Options{Configs: configs, Media: files})

	cfg := smallConfig()
	cfg.Message = "Happy holidays"
	configs <- cfg
	files <- []media.File{{Full: "/ornaments/x.png"}}
	close(configs)

	clock.advance(16 * time.Millisecond)
	a.Tick()
	assert.Equal(t, "Happy holidays", a.Typing.Message())
	assert.Equal(t, []string{"/ornaments/x.png"}, a.Config.OrnamentImages)
	assert.Len(t, a.Gen.Ornaments, 1)
	assert.InDelta(t, 0.016, a.Time(), 1e-4)

	clock.advance(16 * time.Millisecond)
	a.Tick()
	assert.InDelta(t, 0.032, a.Time(), 1e-4)
}

func TestTickAnimates(t *testing.T) {
	a, clock, _ := newTestApp(t, Options{})
	yaw := a.Controls.State.Yaw
	clock.advance(100 * time.Millisecond)
	a.Tick()
	assert.Greater(t, a.Controls.State.Yaw, yaw, "auto-rotate advances")
	assert.InDelta(t, 0.1, a.Gen.Foliage.Cloud.Uniforms.Time, 1e-4)
}

func TestTitleTypesMessage(t *testing.T) {
	a, clock, _ := newTestApp(t, Options{})
	assert.Equal(t, "", a.Title())
	clock.advance(3 * 80 * time.Millisecond)
	assert.Equal(t, "Mer", a.Title())
}

func TestLoadTextureFallsBackToPlaceholder(t *testing.T) {
	dir := t.TempDir()
	a, _, _ := newTestApp(t, Options{Library: media.Library{Root: dir}})

	tex := a.LoadTexture("/ornaments/missing.png")
	require.NotNil(t, tex)
	assert.Equal(t, "/ornaments/missing.png", tex.Name)

	tex = a.LoadTexture("/etc/passwd")
	assert.Equal(t, 32, tex.Width, "URLs outside the media root get the placeholder")
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.glb")
	a, _, _ := newTestApp(t, Options{ExportPath: path})
	require.NoError(t, a.Export())
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	b, _, _ := newTestApp(t, Options{})
	assert.NoError(t, b.Export(), "no path is a no-op")
}

func TestCloseReleasesGeneration(t *testing.T) {
	a, _, rel := newTestApp(t, Options{})
	gen := a.Gen
	a.Close()
	assert.True(t, gen.Released())
	assert.Positive(t, rel.clouds)
}
