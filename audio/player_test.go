package audio

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOut struct {
	initErr error
	inits   int
	played  []beep.Streamer
	clears  int
}

func (f *fakeOut) Init(beep.SampleRate, int) error { f.inits++; return f.initErr }
func (f *fakeOut) Play(s beep.Streamer)            { f.played = append(f.played, s) }
func (f *fakeOut) Clear()                          { f.clears++ }
func (f *fakeOut) Lock()                           {}
func (f *fakeOut) Unlock()                         {}

// pull reads n samples from the most recently queued streamer.
func (f *fakeOut) pull(n int) [][2]float64 {
	buf := make([][2]float64, n)
	f.played[len(f.played)-1].Stream(buf)
	return buf
}

// tone is a short constant-level track.
type tone struct {
	rc     io.ReadCloser
	pos    int
	n      int
	level  float64
	closed bool
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	if t.pos >= t.n {
		return 0, false
	}
	k := min(len(samples), t.n-t.pos)
	for i := 0; i < k; i++ {
		samples[i] = [2]float64{t.level, t.level}
	}
	t.pos += k
	return k, true
}

func (t *tone) Err() error       { return nil }
func (t *tone) Len() int         { return t.n }
func (t *tone) Position() int    { return t.pos }
func (t *tone) Seek(p int) error { t.pos = p; return nil }
func (t *tone) Close() error     { t.closed = true; return t.rc.Close() }

type harness struct {
	p     *Player
	out   *fakeOut
	tones map[string]*tone
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"jingle-bells.mp3", "silent-night.mp3", "broken.mp3"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	h := &harness{out: &fakeOut{}, tones: map[string]*tone{}}
	resolve := func(url string) (string, error) {
		return filepath.Join(dir, strings.TrimPrefix(url, "/music/")), nil
	}
	h.p = NewPlayer(resolve, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.p.Out = h.out
	h.p.Decode = func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		data, _ := io.ReadAll(rc)
		name := string(data)
		if name == "broken.mp3" {
			return nil, beep.Format{}, errors.New("bad frame header")
		}
		level := 0.25
		if name == "silent-night.mp3" {
			level = 0.5
		}
		tn := &tone{rc: rc, n: 100, level: level}
		h.tones[name] = tn
		return tn, beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}, nil
	}
	return h
}

func TestPlayLoopsAndPauses(t *testing.T) {
	h := newHarness(t)
	h.p.SetTrack("/music/jingle-bells.mp3")
	assert.False(t, h.p.Playing())
	assert.Empty(t, h.out.played, "nothing loads before play")

	h.p.Play()
	require.True(t, h.p.Playing())
	require.Len(t, h.out.played, 1)
	assert.Equal(t, 1, h.out.inits)

	got := h.out.pull(250)
	assert.Equal(t, 0.25, got[249][0], "the track loops past its end")

	assert.False(t, h.p.Toggle())
	got = h.out.pull(10)
	assert.Zero(t, got[0][0], "paused output is silent")
	assert.True(t, h.p.Toggle())
}

func TestSetTrackWhilePlayingSwitches(t *testing.T) {
	h := newHarness(t)
	h.p.SetTrack("/music/jingle-bells.mp3")
	h.p.Play()

	h.p.SetTrack("/music/silent-night.mp3")
	assert.True(t, h.p.Playing())
	assert.True(t, h.tones["jingle-bells.mp3"].closed)
	assert.Equal(t, 1, h.out.clears)
	require.Len(t, h.out.played, 2)
	assert.Equal(t, 0.5, h.out.pull(1)[0][0])
	assert.Equal(t, 1, h.out.inits, "the device opens once")

	h.p.SetTrack("/music/silent-night.mp3")
	assert.Len(t, h.out.played, 2, "same track is a no-op")
}

func TestFailuresLeaveMusicOff(t *testing.T) {
	h := newHarness(t)
	h.p.SetTrack("/music/broken.mp3")
	h.p.Play()
	assert.False(t, h.p.Playing())

	h.p.SetTrack("/music/missing.mp3")
	h.p.Play()
	assert.False(t, h.p.Playing())

	h.p.SetTrack("")
	h.p.Play()
	assert.False(t, h.p.Playing())
	assert.Empty(t, h.out.played)
}

func TestDeviceFailureLeavesMusicOff(t *testing.T) {
	h := newHarness(t)
	h.out.initErr = errors.New("no audio device")
	h.p.SetTrack("/music/jingle-bells.mp3")
	h.p.Play()
	h.p.Play()
	assert.False(t, h.p.Playing())
	assert.Equal(t, 1, h.out.inits)
	assert.True(t, h.tones["jingle-bells.mp3"].closed)
}

func TestClose(t *testing.T) {
	h := newHarness(t)
	h.p.SetTrack("/music/jingle-bells.mp3")
	h.p.Play()
	h.p.Close()
	assert.False(t, h.p.Playing())
	assert.True(t, h.tones["jingle-bells.mp3"].closed)
}
