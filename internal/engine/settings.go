package engine

import (
	"log"
	"sync"

	"PeerStudio/internal/board"
)

// SettingsEngine owns the panel's display settings: transparency mode plus
// the overlay position and size. The local copy is the single authority;
// the peer's copy is reconciled by whole-value, last-writer-wins broadcast.
//
// Broadcast rules:
//   - drag/resize gestures update locally on every sample but broadcast
//     only at gesture completion, and only while transparent
//   - toggling transparency broadcasts immediately, carrying position and
//     size only when the resulting state is transparent
//   - an inbound settings snapshot replaces everything atomically and
//     cancels any in-progress local gesture
type SettingsEngine struct {
	mu      sync.Mutex
	surface *board.Surface
	send    Sender

	transparent bool
	position    Position
	size        Size

	gesture bool
	open    bool

	// OnChange fires after every applied settings change, local or remote.
	OnChange func(DisplaySettings, Origin)
	// OnPeerPresence fires when the peer's panel opens or closes.
	OnPeerPresence func(open bool)
}

func NewSettingsEngine(surface *board.Surface, send Sender, initial DisplaySettings) *SettingsEngine {
	e := &SettingsEngine{surface: surface, send: send, transparent: initial.Transparent}
	if initial.Position != nil {
		e.position = *initial.Position
	}
	if initial.Size != nil {
		e.size = *initial.Size
	}
	return e
}

// Settings returns the current snapshot, always carrying position and size.
func (e *SettingsEngine) Settings() DisplaySettings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(true)
}

func (e *SettingsEngine) snapshotLocked(withGeometry bool) DisplaySettings {
	ds := DisplaySettings{Transparent: e.transparent}
	if withGeometry {
		p, s := e.position, e.size
		ds.Position = &p
		ds.Size = &s
	}
	return ds
}

// BeginGesture marks the start of a local drag or resize.
func (e *SettingsEngine) BeginGesture() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gesture = true
}

// DragTo updates the overlay position for one pointer sample. The update is
// local-only: every sample repaints the local UI, but nothing is broadcast
// until the gesture completes.
func (e *SettingsEngine) DragTo(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.gesture {
		return
	}
	e.position = Position{X: x, Y: y}
}

// ResizeTo updates the overlay size for one pointer sample, local-only.
func (e *SettingsEngine) ResizeTo(width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.gesture {
		return
	}
	e.size = Size{Width: width, Height: height}
}

// EndGesture completes a drag/resize. Position and size are broadcast only
// while transparent: an opaque peer is not compositing an overlay, so the
// geometry would be meaningless to it. A gesture cancelled by an inbound
// settings snapshot broadcasts nothing.
func (e *SettingsEngine) EndGesture() {
	e.mu.Lock()
	if !e.gesture {
		e.mu.Unlock()
		return
	}
	e.gesture = false
	broadcast := e.transparent
	ds := e.snapshotLocked(true)
	e.mu.Unlock()

	if broadcast {
		e.broadcast(ds)
	}
}

// SetTransparent toggles the compositing mode. The toggle itself always
// broadcasts immediately; geometry rides along only when the new state is
// transparent.
func (e *SettingsEngine) SetTransparent(transparent bool) {
	e.mu.Lock()
	e.transparent = transparent
	ds := e.snapshotLocked(transparent)
	cb := e.OnChange
	e.mu.Unlock()

	e.surface.SetTransparent(transparent)
	e.broadcast(ds)
	if cb != nil {
		cb(ds, OriginLocal)
	}
}

// Apply installs an inbound settings snapshot atomically: transparency,
// position and size together, last-writer-wins. Any in-progress local
// gesture is cancelled; there is no merging with in-flight local state.
func (e *SettingsEngine) Apply(ds DisplaySettings, origin Origin) {
	e.mu.Lock()
	e.gesture = false
	e.transparent = ds.Transparent
	if ds.Position != nil {
		e.position = *ds.Position
	}
	if ds.Size != nil {
		e.size = *ds.Size
	}
	cb := e.OnChange
	e.mu.Unlock()

	e.surface.SetTransparent(ds.Transparent)
	if cb != nil {
		cb(ds, origin)
	}
}

func (e *SettingsEngine) broadcast(ds DisplaySettings) {
	if e.send == nil {
		return
	}
	if err := e.send.Send(Envelope{Type: KindSettings, Settings: &ds}); err != nil {
		log.Printf("[settings] send failed: %v", err)
	}
}

// Open announces the panel's lifecycle start to the peer.
func (e *SettingsEngine) Open() {
	e.mu.Lock()
	e.open = true
	e.mu.Unlock()
	if e.send != nil {
		if err := e.send.Send(Envelope{Type: KindOpened}); err != nil {
			log.Printf("[settings] send opened failed: %v", err)
		}
	}
}

// Close announces the panel's lifecycle end.
func (e *SettingsEngine) Close() {
	e.mu.Lock()
	e.open = false
	e.mu.Unlock()
	if e.send != nil {
		if err := e.send.Send(Envelope{Type: KindClosed}); err != nil {
			log.Printf("[settings] send closed failed: %v", err)
		}
	}
}

// HandleOpened processes the peer's whiteboard-opened signal. If our panel
// is already open both sides now have a viewer, so the surface is cleared
// to keep a newly-joined peer from seeing stale drawings. The clear is not
// re-broadcast: the peer runs the same rule on its own copy.
func (e *SettingsEngine) HandleOpened() {
	e.mu.Lock()
	open := e.open
	cb := e.OnPeerPresence
	e.mu.Unlock()

	if open {
		log.Printf("[settings] peer opened while local panel open, clearing surface")
		e.surface.Clear()
	}
	if cb != nil {
		cb(true)
	}
}

// HandleClosed processes the peer's whiteboard-closed signal.
func (e *SettingsEngine) HandleClosed() {
	e.mu.Lock()
	cb := e.OnPeerPresence
	e.mu.Unlock()
	if cb != nil {
		cb(false)
	}
}
