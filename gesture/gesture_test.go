package gesture

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	kind string
	a, b float32
}

type recorder struct{ calls []call }

func (r *recorder) Zoom(d float32)      { r.calls = append(r.calls, call{"zoom", d, 0}) }
func (r *recorder) Drag(dx, dy float32) { r.calls = append(r.calls, call{"drag", dx, dy}) }
func (r *recorder) Tap(x, y float32)    { r.calls = append(r.calls, call{"tap", x, y}) }

func (r *recorder) of(kind string) []call {
	var out []call
	for _, c := range r.calls {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// hand builds an open hand with the palm at (px, py), thumb-middle spread
// zs and thumb-index spread ps.
func hand(px, py, zs, ps float32) Frame {
	lm := make([]Landmark, HandPoints)
	for i := range lm {
		lm[i] = Landmark{X: px, Y: py}
	}
	lm[ThumbTip] = Landmark{X: 0.5, Y: 0.5}
	lm[IndexTip] = Landmark{X: 0.5 + ps, Y: 0.5}
	lm[MiddleTip] = Landmark{X: 0.5, Y: 0.5 + zs}
	return Frame{Hands: [][]Landmark{lm}}
}

var t0 = time.Unix(1700000000, 0)

func ms(n int) time.Time { return t0.Add(time.Duration(n) * time.Millisecond) }

func TestZoomFromSpreadChange(t *testing.T) {
	r := &recorder{}
	m := NewMapper(r)
	m.Process(hand(0.3, 0.3, 0.2, 0.3), ms(0))
	assert.Empty(t, r.calls, "first frame has no history")

	m.Process(hand(0.3, 0.3, 0.25, 0.3), ms(30))
	zooms := r.of("zoom")
	require.Len(t, zooms, 1)
	assert.InDelta(t, 0.05*ZoomGain, zooms[0].a, 1e-4)

	m.Process(hand(0.3, 0.3, 0.252, 0.3), ms(60))
	assert.Len(t, r.of("zoom"), 1, "changes under the threshold are ignored")
}

func TestOpenHandDrags(t *testing.T) {
	r := &recorder{}
	m := NewMapper(r)
	m.Process(hand(0.3, 0.3, 0.2, 0.3), ms(0))
	m.Process(hand(0.4, 0.35, 0.2, 0.3), ms(30))

	drags := r.of("drag")
	require.Len(t, drags, 1)
	assert.InDelta(t, -0.1*DragScale*DragGain, drags[0].a, 1e-3)
	assert.InDelta(t, 0.05*DragScale*DragGain, drags[0].b, 1e-3)

	m.Process(hand(0.401, 0.35, 0.2, 0.3), ms(60))
	assert.Len(t, r.of("drag"), 1, "jitter is ignored")
}

func TestPinchTapsWithCooldown(t *testing.T) {
	r := &recorder{}
	m := NewMapper(r)
	m.Process(hand(0.3, 0.3, 0.2, 0.02), ms(0))
	m.Process(hand(0.6, 0.3, 0.2, 0.02), ms(100))
	m.Process(hand(0.3, 0.3, 0.2, 0.02), ms(499))

	taps := r.of("tap")
	require.Len(t, taps, 1)
	assert.InDelta(t, 0.52, taps[0].a, 1e-6)
	assert.InDelta(t, 0.5, taps[0].b, 1e-6)
	assert.Empty(t, r.of("drag"), "pinching never drags")

	m.Process(hand(0.3, 0.3, 0.2, 0.02), ms(500))
	assert.Len(t, r.of("tap"), 2)
}

func TestNoHandResetsHistory(t *testing.T) {
	r := &recorder{}
	m := NewMapper(r)
	m.Process(hand(0.3, 0.3, 0.2, 0.3), ms(0))
	m.Process(Frame{}, ms(30))
	m.Process(hand(0.8, 0.8, 0.5, 0.3), ms(60))
	assert.Empty(t, r.calls)

	short := Frame{Hands: [][]Landmark{make([]Landmark, 5)}}
	m.Process(short, ms(90))
	m.Process(hand(0.1, 0.1, 0.1, 0.3), ms(120))
	assert.Empty(t, r.calls, "an incomplete hand counts as no hand")
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Disabled", Status{}.String())
	assert.Equal(t, "Tracking", Status{State: StateTracking}.String())
	assert.Equal(t, "Unavailable: no camera", Status{State: StateUnavailable, Reason: "no camera"}.String())
}

func newTestSource(t *testing.T) (*Source, string) {
	t.Helper()
	src := NewSource(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(src)
	t.Cleanup(srv.Close)
	return src, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSourceRejectsWhenDisabled(t *testing.T) {
	_, url := newTestSource(t)
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSourceDeliversLatestFrame(t *testing.T) {
	src, url := newTestSource(t)
	src.SetEnabled(true)
	assert.Equal(t, StateWaiting, src.Status().State)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return src.Status().State == StateTracking }, time.Second, 5*time.Millisecond)

	_, _, err = websocket.DefaultDialer.Dial(url, nil)
	assert.Error(t, err, "one tracker at a time")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(hand(0.1, 0.2, 0.3, 0.4)))

	var got Frame
	require.Eventually(t, func() bool {
		f, ok := src.Latest()
		if ok {
			got = f
		}
		return ok
	}, time.Second, 5*time.Millisecond)
	h, ok := got.Hand()
	require.True(t, ok)
	assert.InDelta(t, 0.1, h[Wrist].X, 1e-6)

	_, ok = src.Latest()
	assert.False(t, ok, "frames are drained once")

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool { return src.Status().State == StateWaiting }, time.Second, 5*time.Millisecond)
}

func TestSourceDisableDropsConnection(t *testing.T) {
	src, url := newTestSource(t)
	src.SetEnabled(true)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return src.Status().State == StateTracking }, time.Second, 5*time.Millisecond)

	src.SetEnabled(false)
	assert.Equal(t, "Disabled", src.Status().String())
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
