// Package engine contains the synchronization engines that keep two peers'
// whiteboard surface and code document converged. Each engine owns its
// local state outright; the peer's copy is reconciled purely by message
// passing with last-writer-wins semantics. Echo loops are prevented by an
// explicit Origin parameter on every apply call.
package engine

import (
	"image"
	"log"
	"sync"
	"time"

	"PeerStudio/internal/board"
)

// remoteActivityWindow is how long the remote-drawing indicator stays up
// after an inbound segment. UI feedback only, no convergence semantics.
const remoteActivityWindow = 500 * time.Millisecond

// StrokeEngine turns pointer gestures into stroke segments, applies them to
// the surface and emits them to the peer. Inbound segments from the remote
// applier go through the same ApplySegment path with OriginRemote, which is
// what makes the two raster buffers converge: both peers run the identical
// renderer over the identical ordered segment stream.
type StrokeEngine struct {
	mu      sync.Mutex
	surface *board.Surface
	send    Sender
	peerID  string

	drawing          bool
	anchorX, anchorY float64
	tool             board.Tool
	color            string
	width            float64

	seq      uint64            // outbound, this peer's segments only
	lastSeen map[string]uint64 // inbound, per emitting peer

	remoteUntil time.Time

	// OnThumbnail, when set, receives a surface snapshot at gesture end.
	// The thumbnail is local-only; convergence relies solely on the
	// segment stream, never on snapshots.
	OnThumbnail func(*image.RGBA)

	// OnRemoteActivity fires on every inbound segment with the deadline
	// until which the indicator should stay visible.
	OnRemoteActivity func(until time.Time)
}

func NewStrokeEngine(surface *board.Surface, peerID string, send Sender) *StrokeEngine {
	return &StrokeEngine{
		surface:  surface,
		send:     send,
		peerID:   peerID,
		tool:     board.ToolPen,
		color:    "#000000",
		width:    3,
		lastSeen: make(map[string]uint64),
	}
}

func (e *StrokeEngine) SetTool(t board.Tool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tool = t
}

func (e *StrokeEngine) SetColor(c string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.color = c
}

func (e *StrokeEngine) SetWidth(w float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.width = w
}

// BeginStroke records the gesture anchor and enters the Drawing state.
func (e *StrokeEngine) BeginStroke(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drawing = true
	e.anchorX, e.anchorY = x, y
}

// StrokeTo handles one pointer-move sample while drawing: it builds the
// anchor→current segment, applies it locally, emits it, then advances the
// anchor. Outside the Drawing state it is a no-op.
func (e *StrokeEngine) StrokeTo(x, y float64) {
	e.mu.Lock()
	if !e.drawing {
		e.mu.Unlock()
		return
	}
	seg := board.Segment{
		Tool:  e.tool,
		Color: e.color,
		Width: e.width,
		FromX: e.anchorX,
		FromY: e.anchorY,
		ToX:   x,
		ToY:   y,
	}
	e.anchorX, e.anchorY = x, y
	e.mu.Unlock()

	e.ApplySegment(seg, OriginLocal)
}

// EndStroke leaves the Drawing state and hands a local-only thumbnail to
// the registered callback.
func (e *StrokeEngine) EndStroke() {
	e.mu.Lock()
	wasDrawing := e.drawing
	e.drawing = false
	cb := e.OnThumbnail
	e.mu.Unlock()

	if wasDrawing && cb != nil {
		cb(e.surface.Snapshot())
	}
}

// ApplySegment renders one segment. It is the single entry point for both
// call sites: local gestures pass OriginLocal and the segment is emitted to
// the peer; remote applies pass OriginRemote and emit nothing. The origin
// check happens before any network call; rendering never decides network
// behaviour.
func (e *StrokeEngine) ApplySegment(seg board.Segment, origin Origin) {
	if origin == OriginLocal {
		e.emit(seg)
	}
	e.surface.ApplySegment(seg)
	if origin == OriginRemote {
		e.markRemoteActivity()
	}
}

func (e *StrokeEngine) emit(seg board.Segment) {
	e.mu.Lock()
	e.seq++
	data := &StrokeData{Segment: seg, Peer: e.peerID, Seq: e.seq}
	send := e.send
	e.mu.Unlock()

	if send == nil {
		return
	}
	if err := send.Send(Envelope{Type: KindStroke, Stroke: data}); err != nil {
		log.Printf("[stroke] send failed: %v", err)
	}
}

// ApplyRemote is the inbound path for whiteboard-stroke envelopes. The
// per-peer sequence number is gap-checked first: the channel contract is
// ordered reliable delivery, so a gap means the surfaces may have diverged
// and we log loudly instead of silently drifting.
func (e *StrokeEngine) ApplyRemote(data StrokeData) {
	if data.Peer != "" && data.Seq > 0 {
		e.mu.Lock()
		if last, ok := e.lastSeen[data.Peer]; ok && data.Seq != last+1 {
			log.Printf("[stroke] sequence gap from peer %s: have %d, got %d; surfaces may have diverged", data.Peer, last, data.Seq)
		}
		e.lastSeen[data.Peer] = data.Seq
		e.mu.Unlock()
	}
	e.ApplySegment(data.Segment, OriginRemote)
}

// Clear wipes the surface. A local clear is broadcast; a remote one is the
// result of a broadcast and must not echo.
func (e *StrokeEngine) Clear(origin Origin) {
	if origin == OriginLocal && e.send != nil {
		if err := e.send.Send(Envelope{Type: KindClear}); err != nil {
			log.Printf("[stroke] send clear failed: %v", err)
		}
	}
	e.surface.Clear()
}

func (e *StrokeEngine) markRemoteActivity() {
	until := time.Now().Add(remoteActivityWindow)
	e.mu.Lock()
	e.remoteUntil = until
	cb := e.OnRemoteActivity
	e.mu.Unlock()
	if cb != nil {
		cb(until)
	}
}

// RemoteActive reports whether the remote-drawing indicator should show.
func (e *StrokeEngine) RemoteActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Now().Before(e.remoteUntil)
}

// Drawing reports whether a local gesture is in progress.
func (e *StrokeEngine) Drawing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drawing
}
