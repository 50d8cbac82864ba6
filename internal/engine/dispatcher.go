package engine

import (
	"encoding/json"
	"log"
)

// Dispatcher decodes inbound channel frames and routes them to the engines.
// It is deliberately paranoid: an unknown message type or a
// partially-populated payload is logged and dropped, never fatal. The
// channel carries peer-authored data and must not be able to crash the
// engine.
type Dispatcher struct {
	Stroke   *StrokeEngine
	Settings *SettingsEngine
	Code     *CodeEngine
	Exec     *ExecEngine
}

// HandleFrame processes one raw inbound frame.
func (d *Dispatcher) HandleFrame(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("[dispatch] dropping malformed frame: %v", err)
		return
	}
	d.Handle(env)
}

// Handle routes one decoded envelope.
func (d *Dispatcher) Handle(env Envelope) {
	switch env.Type {
	case KindStroke:
		if d.Stroke == nil || env.Stroke == nil {
			log.Printf("[dispatch] dropping stroke envelope with no payload")
			return
		}
		d.Stroke.ApplyRemote(*env.Stroke)
	case KindClear:
		if d.Stroke != nil {
			d.Stroke.Clear(OriginRemote)
		}
	case KindSettings:
		if d.Settings == nil || env.Settings == nil {
			log.Printf("[dispatch] dropping settings envelope with no payload")
			return
		}
		d.Settings.Apply(*env.Settings, OriginRemote)
	case KindOpened:
		if d.Settings != nil {
			d.Settings.HandleOpened()
		}
	case KindClosed:
		if d.Settings != nil {
			d.Settings.HandleClosed()
		}
	case KindCodeChange:
		if d.Code != nil {
			d.Code.ApplySnapshot(env.Code, env.Language)
		}
	case KindLanguageChange:
		if d.Code != nil && env.Language != "" {
			d.Code.SetLanguage(env.Language, OriginRemote)
		}
	case KindCodeOutput:
		if d.Exec != nil {
			d.Exec.ApplyRemoteOutput(env.Output)
		}
	default:
		log.Printf("[dispatch] ignoring unknown message type %q", env.Type)
	}
}
