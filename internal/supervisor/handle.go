// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package supervisor

import "sync"

// ExitUnknown is the exit code recorded when the process did not exit normally.
const ExitUnknown = -1

// State is the lifecycle state of a supervised process.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateExited
	StateKilled
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return "unknown"
	}
}

// Handle tracks one encoder process from start until it is reaped.
type Handle struct {
	pid     int
	cmdline string
	// done is closed by the reaper after the exit code is recorded.
	done chan struct{}

	mu       sync.Mutex
	state    State
	exitCode int
}

func newHandle(cmdline string) *Handle {
	return &Handle{
		cmdline:  cmdline,
		done:     make(chan struct{}),
		state:    StateStarting,
		exitCode: ExitUnknown,
	}
}

// PID returns the OS process ID, or 0 before start.
func (h *Handle) PID() int {
	return h.pid
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// ExitCode returns the recorded exit code, ExitUnknown until reaped.
func (h *Handle) ExitCode() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitCode
}

// Done is closed once the process has been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) setRunning(pid int) {
	h.mu.Lock()
	h.pid = pid
	h.state = StateRunning
	h.mu.Unlock()
}

// markKilled records that the supervisor is forcing the process down.
// It returns false if the process already exited on its own.
func (h *Handle) markKilled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateExited {
		return false
	}
	h.state = StateKilled
	return true
}

// finish records the exit code. A handle marked killed stays killed.
func (h *Handle) finish(code int) State {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exitCode = code
	if h.state != StateKilled {
		h.state = StateExited
	}
	return h.state
}
