// Package server implements the node API services over a store.Reader
// and guards them with a readiness state machine.
package server

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrNotReady is returned for calls made before Start or after Close.
var ErrNotReady = errors.New("nodeapi: server is not ready")

// serverState represents a state in the readiness state machine.
type serverState uint32

const (
	// stateInit: constructed, not yet serving. Every call fails.
	stateInit serverState = iota
	// stateReady: serving. Calls may run concurrently.
	stateReady
	// stateClosed: shut down. Every call fails; there is no way back.
	stateClosed
)

func (s serverState) String() string {
	switch s {
	case stateInit:
		return "Init"
	case stateReady:
		return "Ready"
	case stateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// ReadinessGuard enforces Init → Ready → Closed.
type ReadinessGuard struct {
	state atomic.Uint32
}

// NewReadinessGuard creates a guard in the Init state.
func NewReadinessGuard() *ReadinessGuard {
	return &ReadinessGuard{}
}

// State returns the current state.
func (g *ReadinessGuard) State() string {
	return serverState(g.state.Load()).String()
}

// Start transitions Init → Ready.
// Panics if not in Init state.
func (g *ReadinessGuard) Start() {
	if !g.state.CompareAndSwap(uint32(stateInit), uint32(stateReady)) {
		panic(fmt.Sprintf("nodeapi: Start called in state %s (expected Init)",
			serverState(g.state.Load())))
	}
}

// Close transitions to Closed. It reports whether this call did the
// transition; closing twice is harmless.
func (g *ReadinessGuard) Close() bool {
	return serverState(g.state.Swap(uint32(stateClosed))) != stateClosed
}

// Check returns ErrNotReady unless the guard is Ready.
func (g *ReadinessGuard) Check() error {
	if state := serverState(g.state.Load()); state != stateReady {
		return fmt.Errorf("%w (state %s)", ErrNotReady, state)
	}
	return nil
}

// IsReady returns true if the guard is in the Ready state.
func (g *ReadinessGuard) IsReady() bool {
	return serverState(g.state.Load()) == stateReady
}
