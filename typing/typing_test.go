package typing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypewriterCycle(t *testing.T) {
	start := time.Unix(1700000000, 0)
	tw := New("Noël!", start)
	at := func(d time.Duration) time.Time { return start.Add(d) }

	tests := []struct {
		name string
		at   time.Duration
		text string
		done bool
	}{
		{"start", 0, "", false},
		{"first char", 80 * time.Millisecond, "N", false},
		{"mid char", 250 * time.Millisecond, "Noë", false},
		{"complete", 400 * time.Millisecond, "Noël!", true},
		{"holding", 400*time.Millisecond + 9*time.Second, "Noël!", true},
		{"restarted", 400*time.Millisecond + Hold, "", false},
		{"second pass", 400*time.Millisecond + Hold + 160*time.Millisecond, "No", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.text, tw.Text(at(tc.at)))
			assert.Equal(t, tc.done, tw.Complete(at(tc.at)))
		})
	}
}

func TestSetMessageRestarts(t *testing.T) {
	start := time.Unix(0, 0)
	tw := New("abc", start)
	later := start.Add(time.Second)

	tw.SetMessage("abc", later)
	assert.Equal(t, "abc", tw.Text(later), "same text keeps its clock")

	tw.SetMessage("xyz", later)
	assert.Equal(t, "", tw.Text(later))
	assert.Equal(t, "x", tw.Text(later.Add(CharInterval)))
	assert.Equal(t, "xyz", tw.Message())
}

func TestEmptyMessage(t *testing.T) {
	tw := New("", time.Unix(0, 0))
	assert.Equal(t, "", tw.Text(time.Unix(5, 0)))
	assert.True(t, tw.Complete(time.Unix(5, 0)))
}
