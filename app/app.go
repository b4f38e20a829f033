// Package app owns the whole interactive state: configuration, the current
// tree generation, camera controller, snow canvas, media viewer, music and
// the typed message. Front ends forward input to it and call Tick once per
// frame, all on one goroutine.
package app

import (
	"log/slog"
	"math/rand"
	"slices"
	"time"

	"christmas-tree/config"
	"christmas-tree/controls"
	"christmas-tree/core"
	"christmas-tree/gesture"
	"christmas-tree/media"
	"christmas-tree/scene"
	"christmas-tree/shading"
	"christmas-tree/snowcanvas"
	"christmas-tree/tree"
	"christmas-tree/typing"
)

// Hooks are the outward callbacks. Any of them may be nil.
type Hooks struct {
	OrnamentSelected func(url string, index int)
}

// Music is the background player. audio.Player satisfies it.
type Music interface {
	SetTrack(url string)
	Play()
	Toggle() bool
	Close()
}

// Options wire the app to its surroundings. Zero values are usable: no
// GPU resources to free, no music, no gesture source, no live reloads.
type Options struct {
	Width, Height int
	Library       media.Library
	// Loader overrides how ornament media become textures.
	Loader   tree.TextureLoader
	Releaser tree.Releaser
	Music    Music
	Gestures *gesture.Source
	// Configs and Media deliver reloads from background watchers; Tick
	// drains them.
	Configs    <-chan config.Config
	Media      <-chan []media.File
	ExportPath string
	Seed       int64
	Now        func() time.Time
	Logger     *slog.Logger
	Hooks      Hooks
}

// App is the single owned state struct behind every front end.
type App struct {
	// Config is the effective configuration: the last applied config with
	// the scanned ornament folder laid over it.
	Config   config.Config
	Scene    *scene.Scene
	Gen      *tree.Generation
	Controls *controls.Controller
	Canvas   *snowcanvas.Canvas
	Viewer   media.Overlay
	Typing   *typing.Typewriter
	Hooks    Hooks

	shading  *shading.Engine
	clock    shading.Clock
	mapper   *gesture.Mapper
	gestures *gesture.Source
	music    Music
	releaser tree.Releaser
	loader   tree.TextureLoader
	lib      media.Library
	log      *slog.Logger
	rng      *rand.Rand
	now      func() time.Time
	last     time.Time
	base     config.Config

	width, height int
	mediaURLs     []string
	configs       <-chan config.Config
	mediaUpdates  <-chan []media.File
	exportPath    string
	quit          bool
}

type nopReleaser struct{}

func (nopReleaser) ReleaseMesh(*scene.Mesh)         {}
func (nopReleaser) ReleaseTexture(*scene.Texture)   {}
func (nopReleaser) ReleasePoints(*scene.PointCloud) {}

// New builds the first generation for cfg and starts the music.
func New(cfg config.Config, opts Options) *App {
	a := &App{
		Hooks:        opts.Hooks,
		gestures:     opts.Gestures,
		music:        opts.Music,
		releaser:     opts.Releaser,
		loader:       opts.Loader,
		lib:          opts.Library,
		log:          opts.Logger,
		now:          opts.Now,
		width:        max(opts.Width, 1),
		height:       max(opts.Height, 1),
		configs:      opts.Configs,
		mediaUpdates: opts.Media,
		exportPath:   opts.ExportPath,
	}
	if a.releaser == nil {
		a.releaser = nopReleaser{}
	}
	if a.log == nil {
		a.log = slog.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.loader == nil {
		a.loader = a.LoadTexture
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	a.rng = rand.New(rand.NewSource(seed))
	a.last = a.now()

	a.Scene = scene.NewScene()
	a.Controls = controls.NewController(a.Scene, a.width, a.height, a.selectOrnament)
	a.Controls.Now = a.now
	a.mapper = gesture.NewMapper(a.Controls)
	a.shading = shading.NewEngine(a.rng)
	a.Canvas = snowcanvas.New(a.rng)
	a.Typing = typing.New("", a.last)

	a.ApplyConfig(cfg)
	if a.music != nil {
		a.music.SetTrack(a.Config.MusicTrack)
		a.music.Play()
	}
	return a
}

// LoadTexture resolves a media URL under the library root. Anything that
// cannot be shown as an image comes back as a placeholder; videos always do.
func (a *App) LoadTexture(url string) *scene.Texture {
	if media.IsVideo(url) {
		return scene.NewPlaceholderTexture(url)
	}
	path, err := a.lib.Path(url)
	if err == nil {
		var tex *scene.Texture
		if tex, err = scene.LoadTexture(path); err == nil {
			return tex
		}
	}
	a.log.Warn("ornament media unavailable", "url", url, "error", err)
	return scene.NewPlaceholderTexture(url)
}

// ApplyConfig switches to cfg. Changes that alter geometry rebuild the
// tree; everything else takes effect on the next frame. cfg is kept as the
// base that later folder scans are laid over.
func (a *App) ApplyConfig(cfg config.Config) {
	a.base = cfg
	cfg = a.withMedia(cfg).Sanitize()
	old := a.Config
	a.Config = cfg

	bg, err := core.ParseHexColor(cfg.BackgroundColor)
	if err != nil {
		a.log.Warn("bad background color", "value", cfg.BackgroundColor, "error", err)
		bg, _ = core.ParseHexColor(config.Default().BackgroundColor)
	}
	a.Scene.Background = bg
	a.Typing.SetMessage(cfg.Message, a.now())

	if a.music != nil && a.Gen != nil && cfg.MusicTrack != old.MusicTrack {
		a.music.SetTrack(cfg.MusicTrack)
	}
	if a.Gen == nil || NeedsRebuild(old, cfg) {
		a.rebuild()
	}
}

// SetMedia adopts a fresh ornament folder listing: every file becomes an
// ornament, up to config.MaxOrnaments. Videos hang as placeholders and open
// in the viewer. An empty folder restores the configured images and count.
func (a *App) SetMedia(files []media.File) {
	a.mediaURLs = media.URLs(files)
	a.ApplyConfig(a.base)
}

func (a *App) withMedia(cfg config.Config) config.Config {
	if len(a.mediaURLs) == 0 {
		return cfg
	}
	cfg.OrnamentImages = a.mediaURLs
	cfg.LetterCount = min(len(a.mediaURLs), config.MaxOrnaments)
	return cfg
}

// NeedsRebuild reports whether moving from old to cfg changes anything
// baked into the generation's geometry or textures.
func NeedsRebuild(old, cfg config.Config) bool {
	return old.ParticleCount != cfg.ParticleCount ||
		old.ParticleSize != cfg.ParticleSize ||
		old.TreeScale != cfg.TreeScale ||
		old.StarSize != cfg.StarSize ||
		old.LetterCount != cfg.LetterCount ||
		old.LetterSize != cfg.LetterSize ||
		old.LetterBevel != cfg.LetterBevel ||
		old.OrnamentStyle != cfg.OrnamentStyle ||
		old.SnowEnabled != cfg.SnowEnabled ||
		old.SnowCount != cfg.SnowCount ||
		old.SnowSize != cfg.SnowSize ||
		!slices.Equal(old.OrnamentImages, cfg.OrnamentImages)
}

// rebuild releases the current generation and replaces it.
func (a *App) rebuild() {
	if a.Gen != nil {
		a.Gen.Release(a.releaser)
	}
	a.Gen = tree.Build(a.Config, a.rng, a.loader)
	a.Gen.Attach(a.Scene)

	targets := make([]controls.Target, 0, len(a.Gen.Ornaments))
	for _, o := range a.Gen.Ornaments {
		targets = append(targets, controls.Target{Node: o.Node, URL: o.URL, Index: o.Index})
	}
	a.Controls.SetTargets(targets)
	a.log.Debug("built tree",
		"particles", a.Gen.Foliage.Cloud.Count(),
		"ornaments", len(a.Gen.Ornaments),
		"style", a.Config.OrnamentStyle,
		"snow", a.Gen.Snow != nil)
}

func (a *App) selectOrnament(url string, index int) {
	if url == "" {
		return
	}
	a.log.Info("ornament selected", "url", url, "index", index)
	a.Viewer.Open(url)
	if a.Hooks.OrnamentSelected != nil {
		a.Hooks.OrnamentSelected(url, index)
	}
}

// Tick advances one frame: drains reloads and gesture input, eases the
// camera, animates the generation and steps the snow canvas.
func (a *App) Tick() {
	now := a.now()
	t := a.clock.Advance(float32(now.Sub(a.last).Seconds()))
	a.last = now

	a.drain()
	if a.gestures != nil {
		if f, ok := a.gestures.Latest(); ok {
			a.mapper.Process(f, now)
		}
	}
	a.Controls.Tick(a.Config.RotationSpeed)
	a.shading.Update(a.Gen, a.Config, t)
	if a.Canvas.Enabled() {
		a.Canvas.Step(now)
	}
}

func (a *App) drain() {
	for {
		select {
		case cfg, ok := <-a.configs:
			if !ok {
				a.configs = nil
				continue
			}
			a.log.Info("settings reloaded")
			a.ApplyConfig(cfg)
		case files, ok := <-a.mediaUpdates:
			if !ok {
				a.mediaUpdates = nil
				continue
			}
			a.log.Info("ornaments changed", "files", len(files))
			a.SetMedia(files)
		default:
			return
		}
	}
}

// Time is the simulation time of the last Tick in seconds.
func (a *App) Time() float32 { return a.clock.Elapsed() }

// Title is the typed greeting as currently revealed.
func (a *App) Title() string { return a.Typing.Text(a.now()) }

// Done reports whether the user asked to quit.
func (a *App) Done() bool { return a.quit }

// Size is the viewport the app was last resized to.
func (a *App) Size() (width, height int) { return a.width, a.height }

// GestureStatus describes the gesture source, or reports Disabled when
// there is none.
func (a *App) GestureStatus() gesture.Status {
	if a.gestures == nil {
		return gesture.Status{}
	}
	return a.gestures.Status()
}

// Close releases the current generation and stops the edges.
func (a *App) Close() {
	if a.Gen != nil {
		a.Gen.Release(a.releaser)
	}
	if a.gestures != nil {
		a.gestures.SetEnabled(false)
	}
	if a.music != nil {
		a.music.Close()
	}
}
