package engine

import (
	"log"
	"sync"
)

// CodeEngine keeps the shared code document converged by broadcasting whole
// {code, language} snapshots on every local edit. Diffing is deliberately
// out of scope: the snapshot is simple and unambiguous, at the cost of
// bandwidth amplification under high edit frequency or large documents.
// There is no debouncing; callers that need it must add it outside.
type CodeEngine struct {
	mu       sync.Mutex
	text     string
	language string
	send     Sender

	// OnChange fires after every applied edit with the new document state.
	// The origin lets consumers (editor widgets) distinguish their own
	// edits from replayed remote ones.
	OnChange func(text, language string, origin Origin)
}

func NewCodeEngine(language string, send Sender) *CodeEngine {
	return &CodeEngine{language: language, send: send}
}

func (e *CodeEngine) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

func (e *CodeEngine) Language() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.language
}

// Snapshot returns the current document as one atomic pair.
func (e *CodeEngine) Snapshot() (text, language string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text, e.language
}

// SetText applies one text edit. Local origin stores, notifies and
// broadcasts the whole snapshot; remote origin stores and notifies only.
func (e *CodeEngine) SetText(text string, origin Origin) {
	e.mu.Lock()
	e.text = text
	language := e.language
	cb := e.OnChange
	e.mu.Unlock()

	if origin == OriginLocal {
		e.broadcast(Envelope{Type: KindCodeChange, Code: text, Language: language})
	}
	if cb != nil {
		cb(text, language, origin)
	}
}

// SetLanguage switches the document language. It follows the same broadcast
// pattern as SetText and may be applied on its own, with no accompanying
// text snapshot.
func (e *CodeEngine) SetLanguage(language string, origin Origin) {
	e.mu.Lock()
	e.language = language
	text := e.text
	cb := e.OnChange
	e.mu.Unlock()

	if origin == OriginLocal {
		e.broadcast(Envelope{Type: KindLanguageChange, Language: language})
	}
	if cb != nil {
		cb(text, language, origin)
	}
}

// ApplySnapshot is the inbound path for code-change envelopes: text and
// language are replaced atomically in one update, and the notification it
// triggers is attributed to the remote origin so it is never re-broadcast.
// An empty language keeps the current one.
func (e *CodeEngine) ApplySnapshot(text, language string) {
	e.mu.Lock()
	e.text = text
	if language != "" {
		e.language = language
	}
	language = e.language
	cb := e.OnChange
	e.mu.Unlock()

	if cb != nil {
		cb(text, language, OriginRemote)
	}
}

// Reset replaces the document with starter code. It is an ordinary local
// edit and flows through the same broadcast path as typing.
func (e *CodeEngine) Reset(starter string) {
	e.SetText(starter, OriginLocal)
}

func (e *CodeEngine) broadcast(env Envelope) {
	if e.send == nil {
		return
	}
	if err := e.send.Send(env); err != nil {
		log.Printf("[code] send failed: %v", err)
	}
}
