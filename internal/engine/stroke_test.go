package engine

import (
	"encoding/json"
	"image"
	"image/color"
	"sync"
	"testing"

	"PeerStudio/internal/board"
)

var testBackground = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// recorder captures outbound envelopes for assertions.
type recorder struct {
	mu   sync.Mutex
	envs []Envelope
}

func (r *recorder) Send(env Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envs = append(r.envs, env)
	return nil
}

func (r *recorder) byType(k Kind) []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Envelope
	for _, env := range r.envs {
		if env.Type == k {
			out = append(out, env)
		}
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.envs)
}

func newTestStroke(rec *recorder) (*StrokeEngine, *board.Surface) {
	surface := board.NewSurface(64, 64, false, testBackground)
	return NewStrokeEngine(surface, "peer-a", rec), surface
}

func TestGestureEmitsOneSegmentPerSample(t *testing.T) {
	rec := &recorder{}
	e, _ := newTestStroke(rec)
	e.SetColor("#ff0000")

	e.BeginStroke(10, 10)
	e.StrokeTo(10, 20)
	e.StrokeTo(10, 30)
	e.StrokeTo(10, 40)
	e.EndStroke()

	strokes := rec.byType(KindStroke)
	if len(strokes) != 3 {
		t.Fatalf("got %d stroke envelopes, want 3", len(strokes))
	}
	for i, env := range strokes {
		if env.Stroke == nil {
			t.Fatalf("stroke envelope %d has no payload", i)
		}
		if env.Stroke.Seq != uint64(i+1) {
			t.Errorf("envelope %d has seq %d, want %d", i, env.Stroke.Seq, i+1)
		}
		if env.Stroke.Peer != "peer-a" {
			t.Errorf("envelope %d has peer %q", i, env.Stroke.Peer)
		}
	}
	// Anchor must advance: the second segment starts where the first ended.
	if strokes[1].Stroke.FromY != 20 || strokes[1].Stroke.ToY != 30 {
		t.Errorf("anchor did not advance: second segment %+v", strokes[1].Stroke.Segment)
	}
}

func TestStrokeToOutsideGestureIsNoop(t *testing.T) {
	rec := &recorder{}
	e, _ := newTestStroke(rec)
	e.StrokeTo(10, 20)
	if rec.count() != 0 {
		t.Fatalf("idle StrokeTo emitted %d envelopes", rec.count())
	}
}

// Applying a peer's segments through the remote path must produce the same
// pixels as the originating gesture, and must emit nothing back.
func TestRemoteReplayConvergesWithoutEcho(t *testing.T) {
	recA := &recorder{}
	engineA, surfaceA := newTestStroke(recA)
	engineA.SetColor("#ff0000")
	engineA.SetWidth(3)

	engineA.BeginStroke(10, 10)
	engineA.StrokeTo(10, 40)
	engineA.StrokeTo(45, 48)
	engineA.SetTool(board.ToolEraser)
	engineA.StrokeTo(20, 20)
	engineA.EndStroke()

	recB := &recorder{}
	surfaceB := board.NewSurface(64, 64, false, testBackground)
	engineB := NewStrokeEngine(surfaceB, "peer-b", recB)
	dispatch := &Dispatcher{Stroke: engineB}

	for _, env := range recA.byType(KindStroke) {
		frame, err := json.Marshal(env)
		if err != nil {
			t.Fatal(err)
		}
		dispatch.HandleFrame(frame)
	}

	if !board.Equal(surfaceA, surfaceB) {
		t.Error("remote replay did not converge with the originating surface")
	}
	if recB.count() != 0 {
		t.Errorf("remote applies re-emitted %d envelopes, echo loop", recB.count())
	}
	if !engineB.RemoteActive() {
		t.Error("inbound segments did not raise the remote-activity indicator")
	}
}

func TestRemoteActivityIdleByDefault(t *testing.T) {
	e, _ := newTestStroke(&recorder{})
	if e.RemoteActive() {
		t.Error("indicator active before any inbound segment")
	}
}

func TestSequenceGapIsToleratedNotFatal(t *testing.T) {
	rec := &recorder{}
	e, _ := newTestStroke(rec)
	seg := board.Segment{Tool: board.ToolPen, Color: "#000000", Width: 2, ToX: 5, ToY: 5}
	e.ApplyRemote(StrokeData{Segment: seg, Peer: "peer-b", Seq: 1})
	e.ApplyRemote(StrokeData{Segment: seg, Peer: "peer-b", Seq: 4}) // gap: logged, still applied
	if rec.count() != 0 {
		t.Errorf("gap handling emitted %d envelopes", rec.count())
	}
}

func TestClearBroadcastRules(t *testing.T) {
	rec := &recorder{}
	e, surface := newTestStroke(rec)
	e.ApplySegment(board.Segment{Tool: board.ToolPen, Color: "#ff0000", Width: 3, FromX: 5, FromY: 5, ToX: 30, ToY: 30}, OriginLocal)

	e.Clear(OriginLocal)
	if got := len(rec.byType(KindClear)); got != 1 {
		t.Fatalf("local clear broadcast %d clear envelopes, want 1", got)
	}
	if surface.Snapshot().RGBAAt(15, 15) != testBackground {
		t.Error("clear did not wipe the surface")
	}

	before := rec.count()
	e.Clear(OriginRemote)
	if rec.count() != before {
		t.Error("remote clear was re-broadcast")
	}
}

func TestEndStrokeThumbnailIsLocalOnly(t *testing.T) {
	rec := &recorder{}
	e, _ := newTestStroke(rec)
	got := 0
	e.OnThumbnail = func(img *image.RGBA) { got++ }

	e.BeginStroke(1, 1)
	e.StrokeTo(5, 5)
	sent := rec.count()
	e.EndStroke()

	if got != 1 {
		t.Fatalf("thumbnail callback fired %d times, want 1", got)
	}
	if rec.count() != sent {
		t.Error("gesture end transmitted something; thumbnails must stay local")
	}
}
