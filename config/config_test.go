package config

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsAlreadySanitized(t *testing.T) {
	d := Default()
	assert.Equal(t, d, d.Sanitize())
}

func TestSanitizeClampsRanges(t *testing.T) {
	cfg := Default()
	cfg.ParticleCount = 50
	cfg.ParticleSize = 9
	cfg.LetterCount = -3
	cfg.SnowCount = 99999
	cfg.WindDirection = -7
	cfg.TwinkleSpeed = float32(math.NaN())
	cfg.BloomIntensity = float32(math.Inf(1))
	cfg.OrnamentStyle = "spirals"

	got := cfg.Sanitize()
	assert.Equal(t, 1000, got.ParticleCount)
	assert.Equal(t, float32(0.8), got.ParticleSize)
	assert.Equal(t, 0, got.LetterCount)
	assert.Equal(t, 2000, got.SnowCount)
	assert.Equal(t, float32(-1), got.WindDirection)
	assert.Equal(t, Default().TwinkleSpeed, got.TwinkleSpeed)
	assert.Equal(t, Default().BloomIntensity, got.BloomIntensity)
	assert.Equal(t, StyleFrame, got.OrnamentStyle)
}

func TestSanitizeCopiesImages(t *testing.T) {
	cfg := Default()
	got := cfg.Sanitize()
	got.OrnamentImages[0] = "changed"
	assert.Equal(t, "/ornaments/1.jpg", cfg.OrnamentImages[0])
}

func TestImageForWrapsByIndex(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "/ornaments/1.jpg", cfg.ImageFor(0))
	assert.Equal(t, "/ornaments/3.jpg", cfg.ImageFor(7))

	cfg.OrnamentImages = nil
	assert.Equal(t, "", cfg.ImageFor(3))
}

func TestDecodeMergesOverDefaults(t *testing.T) {
	cfg, err := Decode([]byte(`{"particleCount": 4000, "someFutureKey": true}`), false)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.ParticleCount)
	assert.Equal(t, Default().LetterCount, cfg.LetterCount)
	assert.True(t, cfg.SnowEnabled)
}

func TestDecodeYAML(t *testing.T) {
	cfg, err := Decode([]byte("letterCount: 3\nsnowEnabled: false\nornamentStyle: shapes\n"), true)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.LetterCount)
	assert.False(t, cfg.SnowEnabled)
	assert.Equal(t, StyleShapes, cfg.OrnamentStyle)
}

func TestDecodeCorruptFallsBackToDefaults(t *testing.T) {
	cfg, err := Decode([]byte(`{"particleCount": `), false)
	require.ErrorIs(t, err, ErrCorrupt)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFileIsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"settings.json", "settings.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := Default()
			cfg.LetterCount = 9
			cfg.Message = "Happy holidays"
			require.NoError(t, Save(path, cfg))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}

func TestWatchDeliversReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, Save(path, Default()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	updates, err := Watch(ctx, path, logger)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"letterCount": 4}`), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-updates:
			// A write can be observed before its contents land; wait for them.
			if cfg.LetterCount == 4 {
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
