package engine

import (
	"PeerStudio/internal/board"
)

// Kind discriminates the envelope types exchanged over the peer channel.
type Kind string

const (
	KindCodeChange     Kind = "code-change"
	KindLanguageChange Kind = "language-change"
	KindCodeOutput     Kind = "code-output"
	KindStroke         Kind = "whiteboard-stroke"
	KindClear          Kind = "whiteboard-clear"
	KindSettings       Kind = "whiteboard-settings"
	KindOpened         Kind = "whiteboard-opened"
	KindClosed         Kind = "whiteboard-closed"
)

// Envelope is the single wire message. Only the fields for the given Type
// are populated; everything else stays at its zero value and is omitted.
type Envelope struct {
	Type     Kind             `json:"type"`
	Code     string           `json:"code,omitempty"`
	Language string           `json:"language,omitempty"`
	Output   string           `json:"output,omitempty"`
	Stroke   *StrokeData      `json:"strokeData,omitempty"`
	Settings *DisplaySettings `json:"settings,omitempty"`
}

// StrokeData carries one stroke segment plus the emitting peer's identity
// and a per-peer sequence number. The sequence number is a divergence
// tripwire only: the channel is required to deliver in order, and a gap
// means the requirement was broken somewhere.
type StrokeData struct {
	board.Segment
	Peer string `json:"peer,omitempty"`
	Seq  uint64 `json:"seq,omitempty"`
}

// Position is the panel's top-left corner in viewport points.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the panel's extent in viewport points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DisplaySettings is the whole-value settings snapshot. Position and Size
// are pointers because an opaque-mode broadcast intentionally omits them:
// they are meaningless to a peer that is not compositing an overlay.
type DisplaySettings struct {
	Transparent bool      `json:"isTransparent"`
	Position    *Position `json:"position,omitempty"`
	Size        *Size     `json:"size,omitempty"`
}

// Sender emits one envelope to the peer. Implementations must deliver
// reliably and in emission order; the engines never retry or reorder.
type Sender interface {
	Send(Envelope) error
}

// SendFunc adapts a function to the Sender interface.
type SendFunc func(Envelope) error

func (f SendFunc) Send(env Envelope) error { return f(env) }
