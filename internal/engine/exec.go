package engine

import (
	"context"
	"log"
	"sync"
)

// Runner is the external execution collaborator: an opaque side-effecting
// service that runs code and returns stdout and error text.
type Runner interface {
	Run(ctx context.Context, code, language string) (output, errText string, err error)
}

// ExecEngine relays execution results between peers. The triggering peer
// calls the runner, concatenates stdout and error text into one display
// string, and broadcasts that final string, so both peers display
// byte-identical output regardless of who may execute. A runner failure is
// shown locally only and never broadcast: the peer keeps its last
// known-good output. That asymmetry is intentional.
type ExecEngine struct {
	mu       sync.Mutex
	inFlight bool
	output   string

	code   *CodeEngine
	runner Runner
	send   Sender

	// OnOutput fires whenever the displayed output changes.
	OnOutput func(output string, origin Origin)
}

func NewExecEngine(code *CodeEngine, runner Runner, send Sender) *ExecEngine {
	return &ExecEngine{code: code, runner: runner, send: send}
}

// Run executes the current document. While one call is outstanding a second
// trigger is a silent no-op: not queued, not an error. The outstanding call
// is not abortable; the flag is the only duplicate-invocation guard.
func (e *ExecEngine) Run(ctx context.Context) {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return
	}
	e.inFlight = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	code, language := e.code.Snapshot()
	output, errText, err := e.runner.Run(ctx, code, language)
	if err != nil {
		log.Printf("[exec] run failed: %v", err)
		e.setOutput("Execution failed: "+err.Error(), OriginLocal, false)
		return
	}

	e.setOutput(output+errText, OriginLocal, true)
}

// ApplyRemoteOutput installs the peer's relayed output verbatim. It is
// never re-executed and never re-broadcast.
func (e *ExecEngine) ApplyRemoteOutput(output string) {
	e.setOutput(output, OriginRemote, false)
}

func (e *ExecEngine) setOutput(output string, origin Origin, broadcast bool) {
	e.mu.Lock()
	e.output = output
	cb := e.OnOutput
	e.mu.Unlock()

	if broadcast && e.send != nil {
		if err := e.send.Send(Envelope{Type: KindCodeOutput, Output: output}); err != nil {
			log.Printf("[exec] send output failed: %v", err)
		}
	}
	if cb != nil {
		cb(output, origin)
	}
}

// Output returns the currently displayed execution output.
func (e *ExecEngine) Output() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.output
}

// InFlight reports whether an execution call is outstanding.
func (e *ExecEngine) InFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}
