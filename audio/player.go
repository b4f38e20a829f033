// Package audio plays the looping background music.
package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// SampleRate is the device rate; tracks at other rates are resampled.
const SampleRate beep.SampleRate = 44100

// Output is the sound device. The speaker package is the real one.
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Init(sr beep.SampleRate, n int) error { return speaker.Init(sr, n) }
func (speakerOutput) Play(s beep.Streamer)                 { speaker.Play(s) }
func (speakerOutput) Clear()                               { speaker.Clear() }
func (speakerOutput) Lock()                                { speaker.Lock() }
func (speakerOutput) Unlock()                              { speaker.Unlock() }

// Decoder turns an encoded track into a stream.
type Decoder func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

// Player loops one track at a time. Failures are logged and leave the music
// off; they never reach the caller's frame loop.
type Player struct {
	// Resolve maps a track URL such as /music/jingle-bells.mp3 to a file.
	Resolve func(url string) (string, error)
	Decode  Decoder
	Out     Output

	log *slog.Logger

	mu      sync.Mutex
	initErr error
	inited  bool
	track   string
	stream  beep.StreamSeekCloser
	ctrl    *beep.Ctrl
	playing bool
}

// NewPlayer returns a player on the default speaker decoding mp3.
func NewPlayer(resolve func(string) (string, error), log *slog.Logger) *Player {
	return &Player{
		Resolve: resolve,
		Decode:  mp3.Decode,
		Out:     speakerOutput{},
		log:     log,
	}
}

// Track is the selected track URL.
func (p *Player) Track() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track
}

// Playing reports whether music is audible.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Play starts the current track, or resumes it if paused.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		if err := p.load(p.track); err != nil {
			p.log.Warn("music unavailable", "track", p.track, "error", err)
			return
		}
	}
	p.setPaused(false)
}

// Pause silences the music and keeps the position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setPaused(true)
}

// Toggle flips between Play and Pause and reports the new state.
func (p *Player) Toggle() bool {
	if p.Playing() {
		p.Pause()
	} else {
		p.Play()
	}
	return p.Playing()
}

// SetTrack selects url. If music is playing the new track starts from the
// beginning right away; otherwise it is loaded on the next Play.
func (p *Player) SetTrack(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if url == p.track && p.ctrl != nil {
		return
	}
	wasPlaying := p.playing
	p.stop()
	p.track = url
	if !wasPlaying {
		return
	}
	if err := p.load(url); err != nil {
		p.log.Warn("music unavailable", "track", url, "error", err)
		return
	}
	p.setPaused(false)
}

// Close stops playback and releases the decoder.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop()
}

func (p *Player) setPaused(paused bool) {
	if p.ctrl == nil {
		p.playing = false
		return
	}
	p.Out.Lock()
	p.ctrl.Paused = paused
	p.Out.Unlock()
	p.playing = !paused
}

func (p *Player) stop() {
	if p.ctrl != nil {
		p.Out.Clear()
		p.ctrl = nil
	}
	if p.stream != nil {
		p.stream.Close()
		p.stream = nil
	}
	p.playing = false
}

// load opens and decodes url and queues it paused on the device.
func (p *Player) load(url string) error {
	if url == "" {
		return errors.New("no track selected")
	}
	path, err := p.Resolve(url)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open track: %w", err)
	}
	stream, format, err := p.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode track: %w", err)
	}
	if err := p.initDevice(); err != nil {
		stream.Close()
		return err
	}

	var s beep.Streamer = beep.Loop(-1, stream)
	if format.SampleRate != SampleRate {
		s = beep.Resample(4, format.SampleRate, SampleRate, s)
	}
	p.stream = stream
	p.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	p.Out.Play(p.ctrl)
	return nil
}

func (p *Player) initDevice() error {
	if !p.inited {
		p.inited = true
		p.initErr = p.Out.Init(SampleRate, SampleRate.N(time.Second/10))
		if p.initErr != nil {
			p.initErr = fmt.Errorf("open audio device: %w", p.initErr)
		}
	}
	return p.initErr
}
