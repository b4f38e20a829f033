// Package typing reveals the greeting message one character at a time.
package typing

import "time"

const (
	CharInterval = 80 * time.Millisecond
	Hold         = 10 * time.Second
)

// Typewriter reveals a message and restarts after holding the full text.
// It is driven by the caller's clock so a frame tick can sample it.
type Typewriter struct {
	runes []rune
	start time.Time
}

// New starts typing msg at now.
func New(msg string, now time.Time) *Typewriter {
	return &Typewriter{runes: []rune(msg), start: now}
}

// SetMessage replaces the text and restarts.
func (t *Typewriter) SetMessage(msg string, now time.Time) {
	if string(t.runes) == msg {
		return
	}
	t.runes = []rune(msg)
	t.start = now
}

// Message is the full text.
func (t *Typewriter) Message() string { return string(t.runes) }

func (t *Typewriter) cycle() time.Duration {
	return time.Duration(len(t.runes))*CharInterval + Hold
}

// Shown is how many characters are visible at now.
func (t *Typewriter) Shown(now time.Time) int {
	if len(t.runes) == 0 {
		return 0
	}
	elapsed := now.Sub(t.start)
	if elapsed < 0 {
		return 0
	}
	elapsed %= t.cycle()
	return min(int(elapsed/CharInterval), len(t.runes))
}

// Text is the visible prefix at now.
func (t *Typewriter) Text(now time.Time) string {
	return string(t.runes[:t.Shown(now)])
}

// Complete reports whether the whole message is showing; the cursor is
// hidden then.
func (t *Typewriter) Complete(now time.Time) bool {
	return t.Shown(now) == len(t.runes)
}
