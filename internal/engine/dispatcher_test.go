package engine

import (
	"testing"

	"PeerStudio/internal/board"
)

func newTestDispatcher(rec *recorder) (*Dispatcher, *board.Surface) {
	surface := board.NewSurface(32, 32, false, testBackground)
	code := NewCodeEngine("python", rec)
	return &Dispatcher{
		Stroke:   NewStrokeEngine(surface, "peer-a", rec),
		Settings: NewSettingsEngine(surface, rec, DisplaySettings{}),
		Code:     code,
		Exec:     NewExecEngine(code, &blockingRunner{}, rec),
	}, surface
}

func TestDispatcherSurvivesHostileFrames(t *testing.T) {
	rec := &recorder{}
	d, _ := newTestDispatcher(rec)

	frames := [][]byte{
		[]byte(`{"type":"`),                       // truncated JSON
		[]byte(`not json at all`),                 //
		[]byte(`{"type":"shrug"}`),                // unknown kind
		[]byte(`{"type":"whiteboard-stroke"}`),    // stroke with no payload
		[]byte(`{"type":"whiteboard-settings"}`),  // settings with no payload
		[]byte(`{"type":"language-change"}`),      // empty language
		[]byte(`{"type":"code-change"}`),          // empty snapshot, still valid
		[]byte(`{"type":"whiteboard-stroke","strokeData":{"tool":"pen","color":"??","strokeWidth":2,"toX":5,"toY":5}}`),
	}
	for _, frame := range frames {
		d.HandleFrame(frame) // must not panic
	}
	if rec.count() != 0 {
		t.Errorf("defensive handling emitted %d envelopes", rec.count())
	}
}

func TestDispatcherRoutesEveryKind(t *testing.T) {
	rec := &recorder{}
	d, surface := newTestDispatcher(rec)

	d.Handle(Envelope{Type: KindStroke, Stroke: &StrokeData{
		Segment: board.Segment{Tool: board.ToolPen, Color: "#ff0000", Width: 3, FromX: 4, FromY: 4, ToX: 20, ToY: 20},
	}})
	if surface.Snapshot().RGBAAt(10, 10) == testBackground {
		t.Error("stroke envelope not rendered")
	}

	d.Handle(Envelope{Type: KindClear})
	if surface.Snapshot().RGBAAt(10, 10) != testBackground {
		t.Error("clear envelope not applied")
	}

	d.Handle(Envelope{Type: KindSettings, Settings: &DisplaySettings{Transparent: true}})
	if !surface.Transparent() {
		t.Error("settings envelope not applied")
	}

	d.Handle(Envelope{Type: KindCodeChange, Code: "x = 1", Language: "go"})
	if text, lang := d.Code.Snapshot(); text != "x = 1" || lang != "go" {
		t.Errorf("code-change not applied: (%q, %q)", text, lang)
	}

	d.Handle(Envelope{Type: KindLanguageChange, Language: "rust"})
	if d.Code.Language() != "rust" {
		t.Error("language-change not applied")
	}

	d.Handle(Envelope{Type: KindCodeOutput, Output: "ok\n"})
	if d.Exec.Output() != "ok\n" {
		t.Error("code-output not applied")
	}

	if rec.count() != 0 {
		t.Errorf("inbound routing emitted %d envelopes, echo loop", rec.count())
	}
}

// Two fully wired peers, each delivering directly into the other's
// dispatcher: every local operation must arrive exactly once and provoke no
// further traffic.
func TestTwoPeerRoundTripNoFeedback(t *testing.T) {
	var a, b *Dispatcher
	var aSent, bSent int

	surfaceA := board.NewSurface(32, 32, false, testBackground)
	surfaceB := board.NewSurface(32, 32, false, testBackground)

	toB := SendFunc(func(env Envelope) error { aSent++; b.Handle(env); return nil })
	toA := SendFunc(func(env Envelope) error { bSent++; a.Handle(env); return nil })

	codeA := NewCodeEngine("python", toB)
	codeB := NewCodeEngine("python", toA)
	a = &Dispatcher{
		Stroke:   NewStrokeEngine(surfaceA, "peer-a", toB),
		Settings: NewSettingsEngine(surfaceA, toB, DisplaySettings{}),
		Code:     codeA,
	}
	b = &Dispatcher{
		Stroke:   NewStrokeEngine(surfaceB, "peer-b", toA),
		Settings: NewSettingsEngine(surfaceB, toA, DisplaySettings{}),
		Code:     codeB,
	}

	a.Stroke.BeginStroke(10, 10)
	a.Stroke.StrokeTo(10, 40)
	a.Stroke.EndStroke()
	b.Code.SetText("x = 1", OriginLocal)
	a.Settings.SetTransparent(true)

	if aSent != 2 || bSent != 1 {
		t.Errorf("traffic a→b=%d b→a=%d, want 2 and 1: feedback loop", aSent, bSent)
	}
	if !board.Equal(surfaceA, surfaceB) {
		t.Error("surfaces diverged after round trip")
	}
	if textA, _ := codeA.Snapshot(); textA != "x = 1" {
		t.Error("code document did not replicate")
	}
}
